package models

import "gorm.io/gorm"

// Comment represents a comment on a post. ReactionCount mirrors the live
// reaction ledger rows for the comment and is bumped atomically alongside
// every ledger mutation.
type Comment struct {
	gorm.Model
	PostID        string `json:"post_id" gorm:"index"` // MongoDB ObjectID of the parent post, as hex
	UserID        uint   `json:"user_id" gorm:"index"`
	Content       string `json:"content"`
	ReactionCount int    `json:"reaction_count"`
}

// CreateCommentRequest defines the request body for creating a new comment
type CreateCommentRequest struct {
	Content string `json:"content" validate:"required,min=1,max=2000"`
}
