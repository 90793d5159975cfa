package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Post represents a tweet stored in MongoDB. LikesCount and CommentsCount are
// denormalized counters; the likes and comments collections are the source of
// truth and the only writers of these fields.
type Post struct {
	ID            primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	UserID        uint               `json:"user_id" bson:"user_id"` // ID of the authoring user (PostgreSQL)
	Content       string             `json:"content" bson:"content"`
	LikesCount    int                `json:"likes_count" bson:"likes_count"`
	CommentsCount int                `json:"comments_count" bson:"comments_count"`
	CreatedAt     time.Time          `json:"created_at" bson:"created_at"`
}

// CreatePostRequest defines the request body for creating a new post
type CreatePostRequest struct {
	Content string `json:"content" validate:"required,notblank,max=280"`
}

// PostWithAuthor is a post annotated with the author's display info and the
// requesting user's like state
type PostWithAuthor struct {
	Post
	Author  UserCompact `json:"author"`
	IsLiked bool        `json:"is_liked"`
}

// TrendingPost is a post annotated for the trending views. EngagementScore is
// only populated by the engagement ranking.
type TrendingPost struct {
	Post
	Author          UserCompact `json:"author"`
	EngagementScore float64     `json:"engagement_score,omitempty"`
}
