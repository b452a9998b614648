package engine

import (
	"context"
	"sort"
	"time"

	"github.com/dukerupert/choreboard/internal/apperr"
	"github.com/dukerupert/choreboard/internal/assign"
	"github.com/dukerupert/choreboard/internal/health"
	"github.com/dukerupert/choreboard/internal/model"
)

type RoomSummary struct {
	model.Room
	Health    int `json:"health"`
	TaskCount int `json:"task_count"`
}

type Dashboard struct {
	HouseHealth int             `json:"house_health"`
	Rooms       []RoomSummary   `json:"rooms"`
	Quests      []health.Scored `json:"quests"`
	Upcoming    []health.Scored `json:"upcoming"`
	Vacation    model.Vacation  `json:"vacation"`
	Leaderboard []model.User    `json:"leaderboard"`
	GeneratedAt time.Time       `json:"generated_at"`
}

// Dashboard scores the whole house at the current instant.
func (e *Engine) Dashboard(ctx context.Context) (*Dashboard, error) {
	now := e.Now()
	vac, err := e.settings.Vacation(now)
	if err != nil {
		return nil, err
	}
	tasks, err := e.tasks.List()
	if err != nil {
		return nil, err
	}
	rooms, err := e.roomHealth(now)
	if err != nil {
		return nil, err
	}
	users, err := e.users.List()
	if err != nil {
		return nil, err
	}
	sortByCoins(users)

	byRoom := make(map[int64][]model.Task)
	for _, t := range tasks {
		byRoom[t.RoomID] = append(byRoom[t.RoomID], t)
	}
	due, upcoming := health.ListDueAndUpcoming(tasks, vac, now)

	d := &Dashboard{
		HouseHealth: health.HouseHealth(byRoom, vac, now),
		Rooms:       rooms,
		Quests:      nonNil(due),
		Upcoming:    nonNil(upcoming),
		Vacation:    vac,
		Leaderboard: users,
		GeneratedAt: now,
	}
	e.metrics.SetHouseHealth(d.HouseHealth)
	return d, nil
}

// QuestsFor returns today's due tasks that user can still complete: tasks
// they may complete, have not completed today, and that are not yet fully
// satisfied.
func (e *Engine) QuestsFor(ctx context.Context, userID int64) ([]health.Scored, error) {
	user, err := e.users.GetByID(userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperr.New(apperr.UserNotFound, "user %d", userID)
	}

	now := e.Now()
	vac, err := e.settings.Vacation(now)
	if err != nil {
		return nil, err
	}
	tasks, err := e.tasks.List()
	if err != nil {
		return nil, err
	}
	policies, err := e.plain().policies(tasks)
	if err != nil {
		return nil, err
	}
	start, end := e.dayBounds(now)

	due, _ := health.ListDueAndUpcoming(tasks, vac, now)
	var out []health.Scored
	for _, q := range due {
		p := policies[q.ID]
		if !assign.CanComplete(p, *user) {
			continue
		}
		today, err := e.completions.ListForTaskBetween(q.ID, start, end)
		if err != nil {
			return nil, err
		}
		if guard(p, today, *user) != nil || assign.Satisfied(p, userIDs(today)) {
			continue
		}
		out = append(out, q)
	}
	return nonNil(out), nil
}

func sortByCoins(users []model.User) {
	sort.SliceStable(users, func(i, j int) bool { return users[i].Coins > users[j].Coins })
}

func nonNil(s []health.Scored) []health.Scored {
	if s == nil {
		return []health.Scored{}
	}
	return s
}
