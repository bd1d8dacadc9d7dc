package models

import "time"

// Group is a community users post into.
type Group struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	OwnerID     uint      `json:"owner_id" gorm:"index"`
	Moderated   bool      `json:"moderated"` // posts require owner approval before appearing
	CreatedAt   time.Time `json:"created_at"`
}

// GroupMember links a user to a group. One row per (group_id, user_id).
type GroupMember struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	GroupID   uint      `json:"group_id" gorm:"index;uniqueIndex:idx_group_user_member"`
	UserID    uint      `json:"user_id" gorm:"index;uniqueIndex:idx_group_user_member"`
	Role      string    `json:"role" gorm:"size:20;default:member"` // member, owner
	CreatedAt time.Time `json:"created_at"`
}

// CreateGroupRequest defines the request body for creating a group
type CreateGroupRequest struct {
	Name        string `json:"name" validate:"required,min=2,max=100"`
	Description string `json:"description" validate:"max=500"`
	Moderated   bool   `json:"moderated"`
}
