package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Like records a user's like state for a post. At most one document exists per
// (user_id, post_id) pair, enforced by a unique compound index. The record is
// never deleted on unlike; Liked flips instead, so repeated toggles reuse the
// same document. Removed only when the whole post is deleted.
type Like struct {
	ID        primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	UserID    uint               `json:"user_id" bson:"user_id"`
	PostID    primitive.ObjectID `json:"post_id" bson:"post_id"`
	Liked     bool               `json:"liked" bson:"liked"`
	CreatedAt time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time          `json:"updated_at" bson:"updated_at"`
}

// ToggleLikeRequest defines the request body for toggling a like
type ToggleLikeRequest struct {
	PostID string `json:"post_id" validate:"required"`
}

// LikeStatus is the authoritative like view returned after a toggle or a
// status query. LikeCount always comes from the post's counter.
type LikeStatus struct {
	IsLiked   bool  `json:"is_liked"`
	LikeCount int64 `json:"like_count"`
}
