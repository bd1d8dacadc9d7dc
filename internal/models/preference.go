package models

import "time"

// ChannelFlags are the per-category delivery toggles.
type ChannelFlags struct {
	InApp bool `json:"inApp"`
	Email bool `json:"email"`
	Push  bool `json:"push"`
}

// QuietHours is a daily window during which the user prefers silence.
type QuietHours struct {
	Enabled bool   `json:"enabled"`
	Start   string `json:"start" validate:"omitempty,datetime=15:04"` // HH:MM
	End     string `json:"end" validate:"omitempty,datetime=15:04"`   // HH:MM
}

// Digest configures periodic summary delivery.
type Digest struct {
	Enabled   bool   `json:"enabled"`
	Frequency string `json:"frequency" validate:"omitempty,oneof=daily weekly monthly"`
}

// PreferenceSettings is the full per-user preference record, read and
// replaced wholesale. It is stored but not consulted when notifications are
// created; see the dispatcher.
type PreferenceSettings struct {
	Mentions            ChannelFlags `json:"mentions"`
	Replies             ChannelFlags `json:"replies"`
	Reactions           ChannelFlags `json:"reactions"`
	PostApprovals       ChannelFlags `json:"postApprovals"`
	GroupInvites        ChannelFlags `json:"groupInvites"`
	ModerationActions   ChannelFlags `json:"moderationActions"`
	SystemAnnouncements ChannelFlags `json:"systemAnnouncements"`
	QuietHours          QuietHours   `json:"quietHours"`
	Digest              Digest       `json:"digest"`
}

// DefaultPreferenceSettings returns the record used for users who never
// saved one: in-app on everywhere, email and push off.
func DefaultPreferenceSettings() PreferenceSettings {
	inAppOnly := ChannelFlags{InApp: true}
	return PreferenceSettings{
		Mentions:            inAppOnly,
		Replies:             inAppOnly,
		Reactions:           inAppOnly,
		PostApprovals:       inAppOnly,
		GroupInvites:        inAppOnly,
		ModerationActions:   inAppOnly,
		SystemAnnouncements: inAppOnly,
		QuietHours:          QuietHours{Start: "22:00", End: "08:00"},
		Digest:              Digest{Frequency: "daily"},
	}
}

// NotificationPreference is the persisted row holding a user's settings as a
// JSON document (PostgreSQL).
type NotificationPreference struct {
	ID        uint      `json:"-" gorm:"primaryKey"`
	UserID    uint      `json:"-" gorm:"uniqueIndex"`
	Settings  string    `json:"-" gorm:"type:text"`
	UpdatedAt time.Time `json:"-"`
}
