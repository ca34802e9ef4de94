package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ReactionKind is the closed set of reactions a post accepts. Unknown kinds
// are rejected at the API boundary, never stored.
type ReactionKind string

const (
	ReactionHeart ReactionKind = "heart"
	ReactionStar  ReactionKind = "star"
)

// Valid reports whether k is a known reaction kind.
func (k ReactionKind) Valid() bool {
	switch k {
	case ReactionHeart, ReactionStar:
		return true
	}
	return false
}

// Post represents a feed or group post stored in MongoDB
type Post struct {
	ID            primitive.ObjectID   `json:"id,omitempty" bson:"_id,omitempty"`
	UserID        uint                 `json:"user_id" bson:"user_id"`
	GroupID       *primitive.ObjectID  `json:"group_id,omitempty" bson:"group_id,omitempty"` // nil for public-feed posts
	Content       string               `json:"content" bson:"content"`
	ImageURLs     []string             `json:"image_urls,omitempty" bson:"image_urls,omitempty"`
	VideoURLs     []string             `json:"video_urls,omitempty" bson:"video_urls,omitempty"`
	CommentIDs    []primitive.ObjectID `json:"comment_ids" bson:"comment_ids"`
	CommentsCount int                  `json:"comments_count" bson:"comments_count"`
	HeartsCount   int                  `json:"hearts_count" bson:"hearts_count"`
	StarsCount    int                  `json:"stars_count" bson:"stars_count"`
	CreatedAt     time.Time            `json:"created_at" bson:"created_at"`
	UpdatedAt     time.Time            `json:"updated_at" bson:"updated_at"`
}

// CreatePostRequest defines the request body for creating a new post
type CreatePostRequest struct {
	Content   string   `json:"content" validate:"required,min=1,max=500"`
	GroupID   string   `json:"group_id,omitempty"`
	ImageURLs []string `json:"image_urls,omitempty" validate:"omitempty,dive,url"`
	VideoURLs []string `json:"video_urls,omitempty" validate:"omitempty,dive,url"`
}

// ReactionRequest defines the request body for reacting to a post
type ReactionRequest struct {
	Type string `json:"type" validate:"required"`
}
