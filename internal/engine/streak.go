package engine

import (
	"context"
	"database/sql"
	"time"

	"github.com/dukerupert/choreboard/internal/apperr"
	"github.com/dukerupert/choreboard/internal/model"
	"github.com/dukerupert/choreboard/internal/streak"
)

// AdvanceStreak credits activity by a user at the given instant and saves
// the result.
func (e *Engine) AdvanceStreak(ctx context.Context, userID int64, at time.Time) (streak.State, bool, error) {
	at = at.In(e.loc)
	vac, err := e.settings.Vacation(at)
	if err != nil {
		return streak.State{}, false, err
	}

	var st streak.State
	var changed bool
	err = e.inTx(ctx, func(tx *sql.Tx) error {
		s := e.bind(tx)
		user, err := s.users.GetByID(userID)
		if err != nil {
			return err
		}
		if user == nil {
			return apperr.New(apperr.UserNotFound, "user %d", userID)
		}
		st, changed, err = e.advanceStreak(s, user, at, vac)
		return err
	})
	return st, changed, err
}

func (e *Engine) advanceStreak(s txStores, user *model.User, at time.Time, vac model.Vacation) (streak.State, bool, error) {
	st := streak.State{
		Current:    user.CurrentStreak,
		Longest:    user.LongestStreak,
		LastActive: user.LastActiveDate,
	}
	if vac.ActiveAt(at) {
		return st, false, nil
	}

	var history []streak.TaskHistory
	if e.hasGap(st, at) {
		var err error
		if history, err = e.history(s, at); err != nil {
			return st, false, err
		}
	}

	next, changed := streak.Advance(st, at, vac, history)
	if !changed {
		return st, false, nil
	}
	if err := s.users.UpdateStreak(user.ID, next.Current, next.Longest, next.LastActive); err != nil {
		return st, false, err
	}
	return next, true, nil
}

// hasGap reports whether the last active day is older than yesterday, the
// only case that needs task history.
func (e *Engine) hasGap(st streak.State, at time.Time) bool {
	if st.LastActive == "" {
		return false
	}
	last, err := time.ParseInLocation(streak.DateLayout, st.LastActive, e.loc)
	if err != nil {
		return false
	}
	start, _ := e.dayBounds(at)
	return last.Before(start.AddDate(0, 0, -1))
}

// history collects every task with its completions before at's day.
func (e *Engine) history(s txStores, at time.Time) ([]streak.TaskHistory, error) {
	tasks, err := s.tasks.List()
	if err != nil {
		return nil, err
	}
	start, _ := e.dayBounds(at)
	completions, err := s.completions.ListBefore(start)
	if err != nil {
		return nil, err
	}

	byTask := make(map[int64][]time.Time)
	for _, c := range completions {
		byTask[c.TaskID] = append(byTask[c.TaskID], c.CompletedAt.In(e.loc))
	}

	out := make([]streak.TaskHistory, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, streak.TaskHistory{
			FrequencyDays: t.FrequencyDays,
			Seasonal:      t.IsSeasonal,
			CreatedAt:     t.CreatedAt.In(e.loc),
			Completions:   byTask[t.ID],
		})
	}
	return out, nil
}
