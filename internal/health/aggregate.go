package health

import (
	"math"
	"sort"
	"time"

	"github.com/dukerupert/choreboard/internal/model"
)

// Scored is a task paired with its health at a given instant.
type Scored struct {
	model.Task
	Health      int       `json:"health"`
	DueAt       time.Time `json:"due_at"`
	DaysOverdue int       `json:"days_overdue"`
}

// Score computes health and due information for each task.
func Score(tasks []model.Task, vac model.Vacation, now time.Time) []Scored {
	out := make([]Scored, 0, len(tasks))
	for _, t := range tasks {
		due := DueAt(t.LastCompletedAt, t.FrequencyDays, now)
		out = append(out, Scored{
			Task:        t,
			Health:      ForTask(t, vac, now),
			DueAt:       due,
			DaysOverdue: daysBetween(StartOfDay(due.In(now.Location())), StartOfDay(now)),
		})
	}
	return out
}

// Weighted returns the effort-weighted average health of the scored tasks.
// Seasonal tasks are ignored when at least one non-seasonal task exists. An
// empty set is vacuously healthy.
func Weighted(tasks []Scored) int {
	eligible := tasks
	var regular []Scored
	for _, t := range tasks {
		if !t.IsSeasonal {
			regular = append(regular, t)
		}
	}
	if len(regular) > 0 {
		eligible = regular
	}

	var sum, weight float64
	for _, t := range eligible {
		sum += float64(t.Health * t.Effort)
		weight += float64(t.Effort)
	}
	if weight == 0 {
		return Full
	}
	return int(math.Round(sum / weight))
}

// RoomHealth computes a room's health from its tasks.
func RoomHealth(tasks []model.Task, vac model.Vacation, now time.Time) int {
	return Weighted(Score(tasks, vac, now))
}

// HouseHealth computes whole-house health over the union of every room's tasks.
func HouseHealth(rooms map[int64][]model.Task, vac model.Vacation, now time.Time) int {
	var all []model.Task
	for _, tasks := range rooms {
		all = append(all, tasks...)
	}
	return RoomHealth(all, vac, now)
}

// ListDueAndUpcoming splits non-seasonal tasks into those due today or earlier
// and those due later. Both lists are ordered most overdue first, then least
// healthy first. now must carry the household's location.
func ListDueAndUpcoming(tasks []model.Task, vac model.Vacation, now time.Time) (due, upcoming []Scored) {
	endOfToday := StartOfDay(now).AddDate(0, 0, 1)

	for _, s := range Score(tasks, vac, now) {
		if s.IsSeasonal {
			continue
		}
		if s.DueAt.Before(endOfToday) {
			due = append(due, s)
		} else {
			upcoming = append(upcoming, s)
		}
	}

	sortQuests(due)
	sortQuests(upcoming)
	return due, upcoming
}

func sortQuests(s []Scored) {
	sort.SliceStable(s, func(i, j int) bool {
		if !s[i].DueAt.Equal(s[j].DueAt) {
			return s[i].DueAt.Before(s[j].DueAt)
		}
		return s[i].Health < s[j].Health
	})
}

// daysBetween counts whole calendar days from a to b (positive when a is
// earlier). Rounding absorbs DST shifts.
func daysBetween(a, b time.Time) int {
	return int(math.Round(b.Sub(a).Hours() / 24))
}
