// Package health derives decay-based health scores for recurring tasks and
// rolls them up into room and house health.
package health

import (
	"math"
	"time"

	"github.com/dukerupert/choreboard/internal/model"
)

const (
	Full  = 100
	Stale = 0

	day = 24 * time.Hour
)

// Compute returns the 0-100 health of a task that was last completed at
// lastCompletedAt and recurs every frequencyDays. A task that was never
// completed has zero health. While vacation is active, time after the
// vacation start does not count toward decay.
func Compute(lastCompletedAt *time.Time, frequencyDays float64, vac model.Vacation, now time.Time) int {
	if lastCompletedAt == nil || frequencyDays <= 0 {
		return Stale
	}

	end := now
	if vac.ActiveAt(now) && vac.Start.Before(end) {
		end = *vac.Start
	}

	elapsed := end.Sub(*lastCompletedAt)
	if elapsed < 0 {
		elapsed = 0
	}

	period := frequencyDays * float64(day.Milliseconds())
	h := 100 * (1 - float64(elapsed.Milliseconds())/period)
	return int(math.Round(clamp(h, Stale, Full)))
}

// DueAt returns the instant a task becomes fully due: one frequency after its
// last completion, or now if it was never completed.
func DueAt(lastCompletedAt *time.Time, frequencyDays float64, now time.Time) time.Time {
	if lastCompletedAt == nil {
		return now
	}
	return lastCompletedAt.Add(frequencyDuration(frequencyDays))
}

// ForTask is Compute applied to a task's own fields.
func ForTask(t model.Task, vac model.Vacation, now time.Time) int {
	return Compute(t.LastCompletedAt, t.FrequencyDays, vac, now)
}

// frequencyDuration saturates instead of overflowing for huge frequencies.
func frequencyDuration(frequencyDays float64) time.Duration {
	d := frequencyDays * float64(day)
	if d >= math.MaxInt64 {
		return math.MaxInt64
	}
	return time.Duration(d)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// StartOfDay truncates t to midnight in its own location.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
