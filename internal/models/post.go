package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Post statuses. Posts in moderated groups start pending and flip to
// approved or rejected by the group owner.
const (
	PostApproved = "approved"
	PostPending  = "pending"
	PostRejected = "rejected"
)

// Post represents a piece of group content stored in MongoDB. ReactionCount,
// CommentCount and ViewCount are denormalized counters kept via atomic $inc
// updates; ReactionCount mirrors the live reaction ledger rows for the post.
type Post struct {
	ID            primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	UserID        uint               `json:"user_id" bson:"user_id"`
	AuthorName    string             `json:"author_name" bson:"author_name"` // denormalized for feed search
	GroupID       uint               `json:"group_id,omitempty" bson:"group_id,omitempty"`
	Title         string             `json:"title" bson:"title"`
	Content       string             `json:"content" bson:"content"`
	Status        string             `json:"status" bson:"status"`
	ReactionCount int                `json:"reaction_count" bson:"reaction_count"`
	CommentCount  int                `json:"comment_count" bson:"comment_count"`
	ViewCount     int                `json:"view_count" bson:"view_count"`
	CreatedAt     time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt     time.Time          `json:"updated_at" bson:"updated_at"`
}

// CreatePostRequest defines the request body for creating a new post
type CreatePostRequest struct {
	Title   string `json:"title" validate:"required,min=1,max=200"`
	Content string `json:"content" validate:"required,min=1,max=5000"`
	GroupID uint   `json:"group_id,omitempty"`
}
