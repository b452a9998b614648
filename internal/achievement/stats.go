package achievement

import (
	"time"

	"github.com/dukerupert/choreboard/internal/health"
)

// CleanRoomHealth is the room health at which a room counts as clean.
const CleanRoomHealth = 70

// Input is the raw material for a user's statistics. Completions are the
// user's completion timestamps; RoomHealth holds the current health of every
// room. Now must carry the household's location.
type Input struct {
	Completions   []time.Time
	CurrentStreak int
	Coins         int
	RoomHealth    []int
	Now           time.Time
}

// Collect derives a Stats snapshot from raw history.
func Collect(in Input) Stats {
	clean := 0
	for _, h := range in.RoomHealth {
		if h >= CleanRoomHealth {
			clean++
		}
	}
	return Stats{
		TotalCompletions:   len(in.Completions),
		CurrentStreak:      in.CurrentStreak,
		Coins:              in.Coins,
		CleanRooms:         clean,
		WeekCompletions:    WeekCompletions(in.Completions, in.Now),
		WeekendCompletions: WeekendCompletions(in.Completions, in.Now),
		PerfectWeeks:       PerfectWeeks(in.Completions, in.Now),
	}
}

// Monday returns midnight of the ISO week's Monday containing t.
func Monday(t time.Time) time.Time {
	d := health.StartOfDay(t)
	offset := (int(d.Weekday()) + 6) % 7
	return d.AddDate(0, 0, -offset)
}

// WeekCompletions counts completions in the current ISO week.
func WeekCompletions(completions []time.Time, now time.Time) int {
	start := Monday(now)
	return countBetween(completions, start, start.AddDate(0, 0, 7), now.Location())
}

// WeekendCompletions counts completions on the most recent weekend: the
// current one if today is Saturday or Sunday, else the one just past.
func WeekendCompletions(completions []time.Time, now time.Time) int {
	saturday := Monday(now).AddDate(0, 0, 5)
	if saturday.After(now) {
		saturday = saturday.AddDate(0, 0, -7)
	}
	return countBetween(completions, saturday, saturday.AddDate(0, 0, 2), now.Location())
}

// PerfectWeeks scans every full Monday-Sunday week from the week of the
// first completion up to the last week that has ended, counting weeks in
// which every day had at least one completion.
func PerfectWeeks(completions []time.Time, now time.Time) int {
	if len(completions) == 0 {
		return 0
	}
	loc := now.Location()

	days := make(map[string]bool, len(completions))
	first := completions[0].In(loc)
	for _, c := range completions {
		c = c.In(loc)
		days[c.Format("2006-01-02")] = true
		if c.Before(first) {
			first = c
		}
	}

	current := Monday(now)
	count := 0
	for week := Monday(first); week.Before(current); week = week.AddDate(0, 0, 7) {
		perfect := true
		for i := 0; i < 7; i++ {
			if !days[week.AddDate(0, 0, i).Format("2006-01-02")] {
				perfect = false
				break
			}
		}
		if perfect {
			count++
		}
	}
	return count
}

func countBetween(completions []time.Time, start, end time.Time, loc *time.Location) int {
	n := 0
	for _, c := range completions {
		c = c.In(loc)
		if !c.Before(start) && c.Before(end) {
			n++
		}
	}
	return n
}
