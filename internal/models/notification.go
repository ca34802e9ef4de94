package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// NotificationType is the closed set of notification kinds. Unknown kinds are
// rejected when an event is dispatched, never stored.
type NotificationType string

const (
	NotificationWave         NotificationType = "wave"
	NotificationHeart        NotificationType = "heart"
	NotificationStar         NotificationType = "star"
	NotificationComment      NotificationType = "comment"
	NotificationTag          NotificationType = "tag"
	NotificationJoinRequest  NotificationType = "join-request"
	NotificationJoinApproved NotificationType = "join-approved"
)

// Valid reports whether t is a known notification type.
func (t NotificationType) Valid() bool {
	switch t {
	case NotificationWave, NotificationHeart, NotificationStar,
		NotificationComment, NotificationTag,
		NotificationJoinRequest, NotificationJoinApproved:
		return true
	}
	return false
}

// Notification represents a durable user notification stored in MongoDB.
// Immutable once created except for the read flag and deletion.
type Notification struct {
	ID         primitive.ObjectID  `json:"id,omitempty" bson:"_id,omitempty"`
	ReceiverID uint                `json:"receiver_id" bson:"receiver_id"`
	SenderID   uint                `json:"sender_id,omitempty" bson:"sender_id,omitempty"`
	Type       NotificationType    `json:"type" bson:"type"`
	Message    string              `json:"message" bson:"message"`
	PostID     *primitive.ObjectID `json:"post_id,omitempty" bson:"post_id,omitempty"`
	GroupID    *primitive.ObjectID `json:"group_id,omitempty" bson:"group_id,omitempty"`
	CommentID  *primitive.ObjectID `json:"comment_id,omitempty" bson:"comment_id,omitempty"`
	IsRead     bool                `json:"is_read" bson:"is_read"`
	CreatedAt  time.Time           `json:"created_at" bson:"created_at"`
}
