package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// JoinRequest is a pending membership request embedded in a group document
type JoinRequest struct {
	UserID      uint      `json:"user_id" bson:"user_id"`
	RequestedAt time.Time `json:"requested_at" bson:"requested_at"`
}

// GroupStats holds the group's denormalized counters. They are maintained
// with atomic increments, never recomputed in the request path.
type GroupStats struct {
	MemberCount int `json:"member_count" bson:"member_count"`
	PostCount   int `json:"post_count" bson:"post_count"`
	VideoCount  int `json:"video_count" bson:"video_count"`
}

// Group represents a campus group stored in MongoDB. The creator is always a
// member and a moderator; a user never holds a pending request and a
// membership at the same time.
type Group struct {
	ID           primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	Name         string             `json:"name" bson:"name"`
	Description  string             `json:"description" bson:"description"`
	AvatarURL    string             `json:"avatar_url" bson:"avatar_url"`
	Private      bool               `json:"private" bson:"private"`
	CreatorID    uint               `json:"creator_id" bson:"creator_id"`
	Members      []uint             `json:"members" bson:"members"`
	Moderators   []uint             `json:"moderators" bson:"moderators"`
	JoinRequests []JoinRequest      `json:"join_requests" bson:"join_requests"`
	Stats        GroupStats         `json:"stats" bson:"stats"`
	CreatedAt    time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt    time.Time          `json:"updated_at" bson:"updated_at"`
}

// IsMember reports whether userID is in the group's member list
func (g *Group) IsMember(userID uint) bool {
	for _, id := range g.Members {
		if id == userID {
			return true
		}
	}
	return false
}

// IsModerator reports whether userID is the creator or in the moderator list
func (g *Group) IsModerator(userID uint) bool {
	if g.CreatorID == userID {
		return true
	}
	for _, id := range g.Moderators {
		if id == userID {
			return true
		}
	}
	return false
}

// HasPendingRequest reports whether userID has a pending join request
func (g *Group) HasPendingRequest(userID uint) bool {
	for _, r := range g.JoinRequests {
		if r.UserID == userID {
			return true
		}
	}
	return false
}

// CreateGroupRequest defines the request body for creating a new group
type CreateGroupRequest struct {
	Name        string `json:"name" validate:"required,min=2,max=80"`
	Description string `json:"description" validate:"omitempty,max=500"`
	AvatarURL   string `json:"avatar_url" validate:"omitempty,url"`
	Private     bool   `json:"private"`
}

// AcceptJoinRequest defines the request body for approving a join request
type AcceptJoinRequest struct {
	UserID         uint   `json:"userId" validate:"required"`
	NotificationID string `json:"notificationId" validate:"required"`
}
