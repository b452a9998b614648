package model

import "time"

// MinFrequencyDays is the smallest accepted task frequency (one hour).
const MinFrequencyDays = 1.0 / 24

// MaxFrequencyDays is the largest accepted task frequency (about 100 years).
const MaxFrequencyDays = 36500.0

type AssignmentMode string

const (
	ModeFirst  AssignmentMode = "first"
	ModeShared AssignmentMode = "shared"
	ModeCustom AssignmentMode = "custom"
)

func (m AssignmentMode) Valid() bool {
	switch m {
	case ModeFirst, ModeShared, ModeCustom:
		return true
	}
	return false
}

type Task struct {
	ID                 int64          `json:"id"`
	RoomID             int64          `json:"room_id"`
	Name               string         `json:"name"`
	Notes              string         `json:"notes"`
	FrequencyDays      float64        `json:"frequency_days"`
	Effort             int            `json:"effort"`
	IsSeasonal         bool           `json:"is_seasonal"`
	LastCompletedAt    *time.Time     `json:"last_completed_at"`
	AssignmentMode     AssignmentMode `json:"assignment_mode"`
	AssignedToChildren bool           `json:"assigned_to_children"`
	CreatedAt          time.Time      `json:"created_at"`
	UpdatedAt          time.Time      `json:"updated_at"`
}

type TaskAssignee struct {
	TaskID         int64 `json:"task_id"`
	UserID         int64 `json:"user_id"`
	CoinPercentage int   `json:"coin_percentage"`
}

type TaskCompletion struct {
	ID          int64     `json:"id"`
	TaskID      int64     `json:"task_id"`
	UserID      int64     `json:"user_id"`
	CompletedAt time.Time `json:"completed_at"`
	CoinsEarned int       `json:"coins_earned"`
}
