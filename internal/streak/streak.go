// Package streak maintains a user's consecutive-day activity streak. Days on
// which nothing was due do not break a streak.
package streak

import (
	"time"

	"github.com/dukerupert/choreboard/internal/health"
	"github.com/dukerupert/choreboard/internal/model"
)

// DateLayout is the storage format of LastActive.
const DateLayout = "2006-01-02"

type State struct {
	Current    int
	Longest    int
	LastActive string // DateLayout, empty if never active
}

// TaskHistory is what the gap check needs to know about one task.
type TaskHistory struct {
	FrequencyDays float64
	Seasonal      bool
	CreatedAt     time.Time
	// Completions holds every completion up to the day being credited, in
	// any order. The latest one before the gap anchors the due date.
	Completions []time.Time
}

// Advance credits a qualifying completion made at `at` (expressed in the
// household's location) and returns the new state and whether it changed.
//
// Same-day activity changes nothing. Activity on consecutive days extends the
// streak. After a gap, the streak still extends if no regular task was due and
// left incomplete on any gap day; otherwise it restarts at 1. Gap days inside
// a recorded vacation are skipped. While a vacation is active nothing changes.
func Advance(st State, at time.Time, vac model.Vacation, history []TaskHistory) (State, bool) {
	if vac.ActiveAt(at) {
		return st, false
	}

	today := health.StartOfDay(at)
	next := st
	next.LastActive = today.Format(DateLayout)

	if st.LastActive == "" {
		next.Current = 1
		return withLongest(next), true
	}

	last, err := time.ParseInLocation(DateLayout, st.LastActive, at.Location())
	if err != nil {
		next.Current = 1
		return withLongest(next), true
	}

	if !last.Before(today) {
		return st, false
	}

	yesterday := today.AddDate(0, 0, -1)
	switch {
	case last.Equal(yesterday):
		next.Current = st.Current + 1
	case Forgiven(last.AddDate(0, 0, 1), yesterday, vac, history):
		next.Current = st.Current + 1
	default:
		next.Current = 1
	}
	return withLongest(next), true
}

// Forgiven reports whether every day from first through last (inclusive) was
// free of due, incomplete regular tasks.
func Forgiven(first, last time.Time, vac model.Vacation, history []TaskHistory) bool {
	for d := first; !d.After(last); d = d.AddDate(0, 0, 1) {
		if vac.Covers(d) {
			continue
		}
		if DueAndIncomplete(d, history) {
			return false
		}
	}
	return true
}

// DueAndIncomplete reports whether any regular task was due by the end of
// day and had no completion during it.
func DueAndIncomplete(day time.Time, history []TaskHistory) bool {
	start := health.StartOfDay(day)
	end := start.AddDate(0, 0, 1)

	for _, h := range history {
		if h.Seasonal || !h.CreatedAt.Before(end) {
			continue
		}

		var anchor *time.Time
		doneThatDay := false
		for i := range h.Completions {
			c := h.Completions[i]
			switch {
			case c.Before(start):
				if anchor == nil || c.After(*anchor) {
					anchor = &h.Completions[i]
				}
			case c.Before(end):
				doneThatDay = true
			}
		}
		if doneThatDay {
			continue
		}

		if health.DueAt(anchor, h.FrequencyDays, h.CreatedAt).Before(end) {
			return true
		}
	}
	return false
}

func withLongest(st State) State {
	if st.Current > st.Longest {
		st.Longest = st.Current
	}
	return st
}
