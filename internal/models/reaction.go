package models

import "time"

// Reaction is one row of the reaction ledger. At most one live row exists per
// (target_type, target_id, user_id); a second reaction from the same user to
// the same target deletes the first (toggle), it never updates in place.
type Reaction struct {
	ID         uint       `json:"id" gorm:"primaryKey"`
	TargetType TargetType `json:"target_type" gorm:"size:20;uniqueIndex:idx_target_user_reaction"`
	TargetID   string     `json:"target_id" gorm:"size:64;uniqueIndex:idx_target_user_reaction"`
	UserID     uint       `json:"user_id" gorm:"index;uniqueIndex:idx_target_user_reaction"`
	Kind       string     `json:"kind" gorm:"size:30"` // free-form short token, e.g. "like"
	CreatedAt  time.Time  `json:"created_at"`
}

// ToggleReactionRequest defines the request body for toggling a reaction.
type ToggleReactionRequest struct {
	Kind string `json:"kind" validate:"omitempty,min=1,max=30"`
}
