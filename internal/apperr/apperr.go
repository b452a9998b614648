// Package apperr defines the named failures reported to callers of the
// chore engine.
package apperr

import (
	"errors"
	"fmt"
)

type Kind int

const (
	Validation Kind = iota + 1
	Permission
	Conflict
	NotFound
)

func (k Kind) String() string {
	switch k {
	case Validation:
		return "validation"
	case Permission:
		return "permission"
	case Conflict:
		return "conflict"
	case NotFound:
		return "not_found"
	}
	return "unknown"
}

// Reason is the stable failure string returned to clients.
type Reason string

const (
	NotAssigned        Reason = "not_assigned"
	AdminOnly          Reason = "admin_only"
	AlreadyDoneToday   Reason = "already_done_today"
	AlreadyDoneByOther Reason = "already_done_by_other"
	InsufficientCoins  Reason = "insufficient_coins"
	InvalidFrequency   Reason = "invalid_frequency"
	InvalidEffort      Reason = "invalid_effort"
	InvalidPercentages Reason = "invalid_percentages"
	InvalidInput       Reason = "invalid_input"
	TaskNotFound       Reason = "task_not_found"
	RoomNotFound       Reason = "room_not_found"
	UserNotFound       Reason = "user_not_found"
	CompletionNotFound Reason = "completion_not_found"
	RewardNotFound     Reason = "reward_not_found"
	RedemptionNotFound Reason = "redemption_not_found"
)

var kinds = map[Reason]Kind{
	NotAssigned:        Permission,
	AdminOnly:          Permission,
	AlreadyDoneToday:   Conflict,
	AlreadyDoneByOther: Conflict,
	InsufficientCoins:  Conflict,
	InvalidFrequency:   Validation,
	InvalidEffort:      Validation,
	InvalidPercentages: Validation,
	InvalidInput:       Validation,
	TaskNotFound:       NotFound,
	RoomNotFound:       NotFound,
	UserNotFound:       NotFound,
	CompletionNotFound: NotFound,
	RewardNotFound:     NotFound,
	RedemptionNotFound: NotFound,
}

// Kind reports the category a reason belongs to.
func (r Reason) Kind() Kind {
	return kinds[r]
}

// Error implements error so a bare Reason can be used as an errors.Is target.
func (r Reason) Error() string {
	return string(r)
}

type Error struct {
	Reason Reason
	Msg    string
}

// New returns an error for reason with a human readable message.
func New(reason Reason, format string, args ...any) *Error {
	return &Error{Reason: reason, Msg: fmt.Sprintf(format, args...)}
}

func (e *Error) Error() string {
	if e.Msg == "" {
		return string(e.Reason)
	}
	return fmt.Sprintf("%s: %s", e.Reason, e.Msg)
}

func (e *Error) Kind() Kind {
	return e.Reason.Kind()
}

// Is matches another *Error or a bare Reason with the same reason.
func (e *Error) Is(target error) bool {
	switch t := target.(type) {
	case Reason:
		return e.Reason == t
	case *Error:
		return e.Reason == t.Reason
	}
	return false
}

// As extracts an *Error from err's chain.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// KindOf returns the kind of err, or zero when err is not an *Error.
func KindOf(err error) Kind {
	if e, ok := As(err); ok {
		return e.Kind()
	}
	return 0
}
