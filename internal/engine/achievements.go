package engine

import (
	"context"
	"time"

	"github.com/dukerupert/choreboard/internal/achievement"
	"github.com/dukerupert/choreboard/internal/apperr"
	"github.com/dukerupert/choreboard/internal/health"
	"github.com/dukerupert/choreboard/internal/model"
)

// Stats derives a user's achievement statistics from raw history.
func (e *Engine) Stats(ctx context.Context, userID int64) (achievement.Stats, error) {
	user, err := e.users.GetByID(userID)
	if err != nil {
		return achievement.Stats{}, err
	}
	if user == nil {
		return achievement.Stats{}, apperr.New(apperr.UserNotFound, "user %d", userID)
	}

	now := e.Now()
	completions, err := e.completions.ListByUser(userID)
	if err != nil {
		return achievement.Stats{}, err
	}
	times := make([]time.Time, 0, len(completions))
	for _, c := range completions {
		times = append(times, c.CompletedAt.In(e.loc))
	}

	rooms, err := e.roomHealth(now)
	if err != nil {
		return achievement.Stats{}, err
	}
	roomHealth := make([]int, 0, len(rooms))
	for _, r := range rooms {
		roomHealth = append(roomHealth, r.Health)
	}

	return achievement.Collect(achievement.Input{
		Completions:   times,
		CurrentStreak: user.CurrentStreak,
		Coins:         user.Coins,
		RoomHealth:    roomHealth,
		Now:           now,
	}), nil
}

// EvaluateAchievements reports progress on every achievement for a user.
func (e *Engine) EvaluateAchievements(ctx context.Context, userID int64) ([]achievement.Progress, error) {
	stats, err := e.Stats(ctx, userID)
	if err != nil {
		return nil, err
	}
	return achievement.Evaluate(stats), nil
}

// unlockEvents evaluates a user's achievements and returns an event for each
// unlock that has not been announced before. Nothing is marked announced
// while unlock notifications are off for the household or the user, so
// switching them back on announces what was missed. Failures are logged and
// never reach the caller.
func (e *Engine) unlockEvents(ctx context.Context, userID int64) []Event {
	on, err := e.unlockNotificationsOn(userID)
	if err != nil {
		e.logger.Warn("check unlock notifications", "user_id", userID, "error", err)
		return nil
	}
	if !on {
		return nil
	}

	progress, err := e.EvaluateAchievements(ctx, userID)
	if err != nil {
		e.logger.Warn("evaluate achievements", "user_id", userID, "error", err)
		return nil
	}

	var events []Event
	for _, id := range achievement.Unlocked(progress) {
		first, err := e.achievements.MarkNotified(userID, id)
		if err != nil {
			e.logger.Warn("mark achievement notified", "user_id", userID, "achievement_id", id, "error", err)
			continue
		}
		if first {
			events = append(events, Event{
				Type:          model.NotifTypeAchievementUnlocked,
				UserID:        userID,
				AchievementID: id,
			})
		}
	}
	return events
}

func (e *Engine) unlockNotificationsOn(userID int64) (bool, error) {
	on, err := e.settings.NotificationTypeEnabled(model.NotifTypeAchievementUnlocked)
	if err != nil || !on {
		return false, err
	}
	return e.push.IsPreferenceEnabled(userID, model.NotifTypeAchievementUnlocked)
}

// roomHealth scores every room at now.
func (e *Engine) roomHealth(now time.Time) ([]RoomSummary, error) {
	vac, err := e.settings.Vacation(now)
	if err != nil {
		return nil, err
	}
	rooms, err := e.rooms.List()
	if err != nil {
		return nil, err
	}
	tasks, err := e.tasks.List()
	if err != nil {
		return nil, err
	}
	byRoom := make(map[int64][]model.Task)
	for _, t := range tasks {
		byRoom[t.RoomID] = append(byRoom[t.RoomID], t)
	}

	out := make([]RoomSummary, 0, len(rooms))
	for _, r := range rooms {
		out = append(out, RoomSummary{
			Room:      r,
			Health:    health.RoomHealth(byRoom[r.ID], vac, now),
			TaskCount: len(byRoom[r.ID]),
		})
	}
	return out, nil
}
