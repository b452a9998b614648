package model

import "time"

// Notification type constants
const (
	NotifTypeAchievementUnlocked = "achievement_unlocked"
	NotifTypeRewardRequested     = "reward_requested"
	NotifTypeTasksDue            = "tasks_due"
)

// NotificationTypes lists every type that can be toggled.
var NotificationTypes = []string{
	NotifTypeAchievementUnlocked,
	NotifTypeRewardRequested,
	NotifTypeTasksDue,
}

type PushSubscription struct {
	ID         int64     `json:"id"`
	UserID     int64     `json:"user_id"`
	Endpoint   string    `json:"endpoint"`
	P256dhKey  string    `json:"p256dh_key"`
	AuthKey    string    `json:"auth_key"`
	DeviceName string    `json:"device_name"`
	CreatedAt  time.Time `json:"created_at"`
}

type NotificationPreference struct {
	UserID           int64     `json:"user_id"`
	NotificationType string    `json:"notification_type"`
	Enabled          bool      `json:"enabled"`
	UpdatedAt        time.Time `json:"updated_at"`
}
