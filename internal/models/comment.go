package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Reply is a nested reply embedded in a comment document. The reply list is
// append-only; deletion removes a specific reply by id without reordering.
type Reply struct {
	ID         primitive.ObjectID `json:"id" bson:"_id"`
	UserID     uint               `json:"user_id" bson:"user_id"`
	Text       string             `json:"text" bson:"text"`
	ReplyingTo string             `json:"replying_to" bson:"replying_to"` // username label shown in the UI
	CreatedAt  time.Time          `json:"created_at" bson:"created_at"`
}

// Comment represents a top-level comment on a post stored in MongoDB
type Comment struct {
	ID        primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	PostID    primitive.ObjectID `json:"post_id" bson:"post_id"`
	UserID    uint               `json:"user_id" bson:"user_id"`
	Text      string             `json:"text" bson:"text"`
	Replies   []Reply            `json:"replies" bson:"replies"`
	CreatedAt time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time          `json:"updated_at" bson:"updated_at"`
}

// CreateCommentRequest defines the request body for creating a new comment
type CreateCommentRequest struct {
	Text string `json:"text" validate:"required,min=1,max=500"`
}

// CreateReplyRequest defines the request body for replying to a comment
type CreateReplyRequest struct {
	Text       string `json:"text" validate:"required,min=1,max=500"`
	ReplyingTo string `json:"replyingTo" validate:"omitempty,max=50"`
}
