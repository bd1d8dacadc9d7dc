package models

import "time"

// Subscription holds a user's per-target delivery-channel flags. One row per
// (user_id, target_type, target_id); subscribing again replaces the flags.
type Subscription struct {
	ID         uint       `json:"id" gorm:"primaryKey"`
	UserID     uint       `json:"user_id" gorm:"index;uniqueIndex:idx_user_target_subscription"`
	TargetType TargetType `json:"target_type" gorm:"size:20;uniqueIndex:idx_user_target_subscription"`
	TargetID   string     `json:"target_id" gorm:"size:64;uniqueIndex:idx_user_target_subscription"`
	InApp      bool       `json:"in_app"`
	Email      bool       `json:"email"`
	Push       bool       `json:"push"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// SubscribeRequest defines the request body for subscribing to a target.
type SubscribeRequest struct {
	TargetType string `json:"target_type" validate:"required,oneof=post comment"`
	TargetID   string `json:"target_id" validate:"required"`
	InApp      bool   `json:"in_app"`
	Email      bool   `json:"email"`
	Push       bool   `json:"push"`
}
