package engine

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dukerupert/choreboard/internal/apperr"
	"github.com/dukerupert/choreboard/internal/assign"
	"github.com/dukerupert/choreboard/internal/coins"
	"github.com/dukerupert/choreboard/internal/model"
)

type TaskState string

const (
	StateOpen          TaskState = "open"
	StatePartiallyDone TaskState = "partially_done"
	StateDone          TaskState = "done"
)

type CompleteRequest struct {
	TaskID  int64
	ActorID int64
	// OnBehalfOf credits another user. Only admins and members may set it.
	OnBehalfOf *int64
}

type Result struct {
	Completion    model.TaskCompletion `json:"completion"`
	CoinsEarned   int                  `json:"coins_earned"`
	Balance       int                  `json:"balance"`
	State         TaskState            `json:"state"`
	Streak        int                  `json:"streak"`
	StreakChanged bool                 `json:"streak_changed"`
	Events        []Event              `json:"events"`
}

// Complete records a completion of a task for the acting user, or for the
// user they act on behalf of. The duplicate checks, the insert, the
// last-completed update, the coin credit and the streak update commit
// together. Achievements are evaluated afterwards and only produce events.
func (e *Engine) Complete(ctx context.Context, req CompleteRequest) (*Result, error) {
	res, mode, err := e.complete(ctx, req)
	if err != nil {
		if ae, ok := apperr.As(err); ok {
			e.metrics.CompletionRejected(string(ae.Reason))
			e.logger.Debug("completion rejected", "task_id", req.TaskID, "actor_id", req.ActorID, "reason", ae.Reason)
		}
		return nil, err
	}
	e.metrics.CompletionRecorded(string(mode), res.CoinsEarned)

	res.Events = e.unlockEvents(ctx, res.Completion.UserID)
	e.logger.Info("task completed",
		"task_id", req.TaskID,
		"user_id", res.Completion.UserID,
		"coins", res.CoinsEarned,
		"state", res.State,
		"streak", res.Streak,
	)
	return res, nil
}

func (e *Engine) complete(ctx context.Context, req CompleteRequest) (*Result, model.AssignmentMode, error) {
	now := e.Now()

	targetID := req.ActorID
	actor, err := e.users.GetByID(req.ActorID)
	if err != nil {
		return nil, "", err
	}
	if actor == nil {
		return nil, "", apperr.New(apperr.UserNotFound, "user %d", req.ActorID)
	}
	if req.OnBehalfOf != nil && *req.OnBehalfOf != actor.ID {
		if !actor.Role.Privileged() {
			return nil, "", apperr.New(apperr.AdminOnly, "only admins and members can complete tasks for others")
		}
		targetID = *req.OnBehalfOf
	}

	vac, err := e.settings.Vacation(now)
	if err != nil {
		return nil, "", err
	}
	policy, err := e.settings.CoinPolicy()
	if err != nil {
		return nil, "", err
	}
	start, end := e.dayBounds(now)

	var res Result
	var mode model.AssignmentMode
	err = e.inTx(ctx, func(tx *sql.Tx) error {
		s := e.bind(tx)

		target, err := s.users.GetByID(targetID)
		if err != nil {
			return err
		}
		if target == nil {
			return apperr.New(apperr.UserNotFound, "user %d", targetID)
		}
		task, err := s.tasks.GetByID(req.TaskID)
		if err != nil {
			return err
		}
		if task == nil {
			return apperr.New(apperr.TaskNotFound, "task %d", req.TaskID)
		}
		mode = task.AssignmentMode

		p, err := s.policyFor(task)
		if err != nil {
			return err
		}
		today, err := s.completions.ListForTaskBetween(task.ID, start, end)
		if err != nil {
			return err
		}
		if err := guard(p, today, *target); err != nil {
			return err
		}

		earned := coins.Share(p, policy.For(task.Effort), target.ID)
		c, err := s.completions.Create(task.ID, target.ID, now, earned)
		if err != nil {
			return err
		}

		doneBy := append(userIDs(today), target.ID)
		satisfied := assign.Satisfied(p, doneBy)
		switch p.(type) {
		case assign.FirstCome:
			err = s.tasks.SetLastCompletedAt(task.ID, &now)
		case assign.Shared, assign.Custom:
			if satisfied {
				err = s.tasks.SetLastCompletedAt(task.ID, &now)
			}
		default:
			err = fmt.Errorf("unknown assignment policy %T", p)
		}
		if err != nil {
			return err
		}

		balance, err := s.users.AddCoins(target.ID, earned)
		if err != nil {
			return err
		}

		st, changed, err := e.advanceStreak(s, target, now, vac)
		if err != nil {
			return err
		}

		res = Result{
			Completion:    *c,
			CoinsEarned:   earned,
			Balance:       balance,
			State:         stateOf(satisfied, doneBy),
			Streak:        st.Current,
			StreakChanged: changed,
		}
		return nil
	})
	if err != nil {
		return nil, "", err
	}
	return &res, mode, nil
}

// guard applies the completion rules in order: one completion per user per
// day, one completion per day for first-come tasks, then assignment.
func guard(p assign.Policy, today []model.TaskCompletion, target model.User) error {
	for _, c := range today {
		if c.UserID == target.ID {
			return apperr.New(apperr.AlreadyDoneToday, "already completed today")
		}
	}
	if _, first := p.(assign.FirstCome); first && len(today) > 0 {
		return apperr.New(apperr.AlreadyDoneByOther, "completed today by user %d", today[0].UserID)
	}
	if !assign.CanComplete(p, target) {
		return apperr.New(apperr.NotAssigned, "user %d is not assigned", target.ID)
	}
	return nil
}

func stateOf(satisfied bool, doneBy []int64) TaskState {
	switch {
	case satisfied:
		return StateDone
	case len(doneBy) > 0:
		return StatePartiallyDone
	default:
		return StateOpen
	}
}

func userIDs(cs []model.TaskCompletion) []int64 {
	ids := make([]int64, 0, len(cs)+1)
	for _, c := range cs {
		ids = append(ids, c.UserID)
	}
	return ids
}

// Eligibility answers whether a user could complete a task right now.
type Eligibility struct {
	Allowed bool          `json:"allowed"`
	Reason  apperr.Reason `json:"reason,omitempty"`
	State   TaskState     `json:"state"`
}

// CanComplete runs the completion checks without recording anything.
func (e *Engine) CanComplete(ctx context.Context, taskID, userID int64) (*Eligibility, error) {
	user, err := e.users.GetByID(userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperr.New(apperr.UserNotFound, "user %d", userID)
	}
	task, err := e.tasks.GetByID(taskID)
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, apperr.New(apperr.TaskNotFound, "task %d", taskID)
	}

	s := e.plain()
	p, err := s.policyFor(task)
	if err != nil {
		return nil, err
	}
	start, end := e.dayBounds(e.Now())
	today, err := e.completions.ListForTaskBetween(task.ID, start, end)
	if err != nil {
		return nil, err
	}

	doneBy := userIDs(today)
	el := &Eligibility{Allowed: true, State: stateOf(assign.Satisfied(p, doneBy), doneBy)}
	if err := guard(p, today, *user); err != nil {
		ae, ok := apperr.As(err)
		if !ok {
			return nil, err
		}
		el.Allowed = false
		el.Reason = ae.Reason
	}
	return el, nil
}

// Assignment is the effective assignee set of a task.
type Assignment struct {
	TaskID       int64                `json:"task_id"`
	Mode         model.AssignmentMode `json:"mode"`
	UserIDs      []int64              `json:"user_ids"`
	Percentages  map[int64]int        `json:"percentages,omitempty"`
	RoomOverride bool                 `json:"room_override"`
	Unrestricted bool                 `json:"unrestricted"`
}

// EffectiveAssignees resolves who a task belongs to after room precedence.
func (e *Engine) EffectiveAssignees(ctx context.Context, taskID int64) (*Assignment, error) {
	task, err := e.tasks.GetByID(taskID)
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, apperr.New(apperr.TaskNotFound, "task %d", taskID)
	}
	s := e.plain()
	room, err := s.roomOf(task)
	if err != nil {
		return nil, err
	}
	p, err := s.policyFor(task)
	if err != nil {
		return nil, err
	}

	a := &Assignment{
		TaskID:       task.ID,
		UserIDs:      p.Members(),
		RoomOverride: room.AssignedUserID != nil,
	}
	switch p := p.(type) {
	case assign.FirstCome:
		a.Mode = model.ModeFirst
	case assign.Shared:
		a.Mode = model.ModeShared
	case assign.Custom:
		a.Mode = model.ModeCustom
		a.Percentages = p.Percentages
	}
	a.Unrestricted = len(a.UserIDs) == 0
	if a.UserIDs == nil {
		a.UserIDs = []int64{}
	}
	return a, nil
}

type CancelResult struct {
	Completion      model.TaskCompletion `json:"completion"`
	Balance         int                  `json:"balance"`
	LastCompletedAt *time.Time           `json:"last_completed_at"`
}

// CancelCompletion deletes a completion, takes back its coins without going
// below zero, and rewinds the task's last-completed anchor to the newest
// remaining completion. Streaks are left alone. Admin only.
func (e *Engine) CancelCompletion(ctx context.Context, actorID, completionID int64) (*CancelResult, error) {
	if err := e.requireAdmin(actorID); err != nil {
		return nil, err
	}

	var res CancelResult
	err := e.inTx(ctx, func(tx *sql.Tx) error {
		s := e.bind(tx)

		c, err := s.completions.GetByID(completionID)
		if err != nil {
			return err
		}
		if c == nil {
			return apperr.New(apperr.CompletionNotFound, "completion %d", completionID)
		}

		balance, err := s.users.AddCoins(c.UserID, -c.CoinsEarned)
		if err != nil {
			return err
		}
		if err := s.completions.Delete(c.ID); err != nil {
			return err
		}
		latest, err := s.completions.Latest(c.TaskID)
		if err != nil {
			return err
		}
		if err := s.tasks.SetLastCompletedAt(c.TaskID, latest); err != nil {
			return err
		}

		res = CancelResult{Completion: *c, Balance: balance, LastCompletedAt: latest}
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.metrics.CompletionCancelled()
	e.logger.Info("completion cancelled", "completion_id", completionID, "task_id", res.Completion.TaskID, "actor_id", actorID)
	return &res, nil
}

func (e *Engine) requireAdmin(actorID int64) error {
	actor, err := e.users.GetByID(actorID)
	if err != nil {
		return err
	}
	if actor == nil {
		return apperr.New(apperr.UserNotFound, "user %d", actorID)
	}
	if actor.Role != model.RoleAdmin {
		return apperr.New(apperr.AdminOnly, "admin only")
	}
	return nil
}
