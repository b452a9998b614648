package model

import "time"

type Role string

const (
	RoleAdmin  Role = "admin"
	RoleMember Role = "member"
	RoleChild  Role = "child"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleMember, RoleChild:
		return true
	}
	return false
}

// Privileged reports whether the role may complete any task and act on behalf
// of other users.
func (r Role) Privileged() bool {
	return r == RoleAdmin || r == RoleMember
}

type User struct {
	ID             int64     `json:"id"`
	Name           string    `json:"name"`
	Role           Role      `json:"role"`
	Color          string    `json:"color"`
	AvatarEmoji    string    `json:"avatar_emoji"`
	HasPIN         bool      `json:"has_pin"`
	TelegramChatID *int64    `json:"telegram_chat_id,omitempty"`
	Coins          int       `json:"coins"`
	CurrentStreak  int       `json:"current_streak"`
	LongestStreak  int       `json:"longest_streak"`
	LastActiveDate string    `json:"last_active_date,omitempty"` // YYYY-MM-DD, empty if never active
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}
