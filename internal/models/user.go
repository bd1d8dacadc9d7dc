package models

import (
	"time"

	"github.com/golang-jwt/jwt/v4"
)

type User struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	DisplayName string    `json:"display_name"`
	Handle      string    `json:"handle" gorm:"uniqueIndex"` // short unique @handle used in mentions
	Email       string    `json:"email" gorm:"uniqueIndex"`
	Password    string    `json:"-"` // Store hashed password, ignore for JSON serialization
	FCMToken    string    `json:"-"` // Device token for best-effort push, empty if none registered
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// UserCompact is the embedded author/actor shape returned inside other payloads.
type UserCompact struct {
	ID          uint   `json:"id"`
	DisplayName string `json:"display_name"`
	Handle      string `json:"handle"`
}

func (u *User) ToCompact() UserCompact {
	return UserCompact{
		ID:          u.ID,
		DisplayName: u.DisplayName,
		Handle:      u.Handle,
	}
}

// Name returns the best human-readable label for the user: display name,
// falling back to the handle when the display name is empty.
func (u *User) Name() string {
	if u.DisplayName != "" {
		return u.DisplayName
	}
	return u.Handle
}

type RegisterRequest struct {
	DisplayName string `json:"display_name" validate:"required,min=2,max=50"`
	Handle      string `json:"handle" validate:"required,min=2,max=30,alphanum"`
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=8"`
}

// RegisterFCMTokenRequest defines the request body for registering a device
// token for push delivery.
type RegisterFCMTokenRequest struct {
	Token string `json:"token" validate:"required"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// JwtCustomClaims are custom claims extending standard jwt.RegisteredClaims
type JwtCustomClaims struct {
	UserID uint   `json:"user_id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}
