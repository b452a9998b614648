// Package achievement evaluates achievement thresholds against statistics
// derived from raw completion history. Nothing here is cached; eligibility is
// recomputed on every call.
package achievement

import "math"

type Metric string

const (
	MetricTotalCompletions   Metric = "total_completions"
	MetricCurrentStreak      Metric = "current_streak"
	MetricCoins              Metric = "coins"
	MetricCleanRooms         Metric = "clean_rooms"
	MetricWeekCompletions    Metric = "week_completions"
	MetricWeekendCompletions Metric = "weekend_completions"
	MetricPerfectWeeks       Metric = "perfect_weeks"
)

type Definition struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
	Metric      Metric `json:"metric"`
	Threshold   int    `json:"threshold"`
}

// Definitions is the static achievement table.
var Definitions = []Definition{
	{ID: "first_task", Name: "First Steps", Description: "Complete your first task", Icon: "🌱", Metric: MetricTotalCompletions, Threshold: 1},
	{ID: "tasks_10", Name: "Getting Started", Description: "Complete 10 tasks", Icon: "🧹", Metric: MetricTotalCompletions, Threshold: 10},
	{ID: "tasks_50", Name: "Tidy Habit", Description: "Complete 50 tasks", Icon: "🧽", Metric: MetricTotalCompletions, Threshold: 50},
	{ID: "tasks_100", Name: "Centurion", Description: "Complete 100 tasks", Icon: "💯", Metric: MetricTotalCompletions, Threshold: 100},
	{ID: "tasks_500", Name: "Household Hero", Description: "Complete 500 tasks", Icon: "🦸", Metric: MetricTotalCompletions, Threshold: 500},
	{ID: "streak_3", Name: "On a Roll", Description: "Reach a 3 day streak", Icon: "🔥", Metric: MetricCurrentStreak, Threshold: 3},
	{ID: "streak_7", Name: "Week Warrior", Description: "Reach a 7 day streak", Icon: "📅", Metric: MetricCurrentStreak, Threshold: 7},
	{ID: "streak_30", Name: "Unstoppable", Description: "Reach a 30 day streak", Icon: "⚡", Metric: MetricCurrentStreak, Threshold: 30},
	{ID: "streak_100", Name: "Legend", Description: "Reach a 100 day streak", Icon: "👑", Metric: MetricCurrentStreak, Threshold: 100},
	{ID: "coins_100", Name: "Piggy Bank", Description: "Hold 100 coins", Icon: "🐷", Metric: MetricCoins, Threshold: 100},
	{ID: "coins_500", Name: "Treasure Chest", Description: "Hold 500 coins", Icon: "💰", Metric: MetricCoins, Threshold: 500},
	{ID: "coins_1000", Name: "Dragon Hoard", Description: "Hold 1000 coins", Icon: "🐉", Metric: MetricCoins, Threshold: 1000},
	{ID: "clean_rooms_3", Name: "Spotless", Description: "Have 3 rooms at 70% health or better", Icon: "✨", Metric: MetricCleanRooms, Threshold: 3},
	{ID: "clean_rooms_5", Name: "Show Home", Description: "Have 5 rooms at 70% health or better", Icon: "🏡", Metric: MetricCleanRooms, Threshold: 5},
	{ID: "busy_week", Name: "Busy Bee", Description: "Complete 20 tasks in one week", Icon: "🐝", Metric: MetricWeekCompletions, Threshold: 20},
	{ID: "weekend_warrior", Name: "Weekend Warrior", Description: "Complete 10 tasks over a weekend", Icon: "🏋", Metric: MetricWeekendCompletions, Threshold: 10},
	{ID: "perfect_week", Name: "Perfect Week", Description: "Complete a task every day for a week", Icon: "🌟", Metric: MetricPerfectWeeks, Threshold: 1},
	{ID: "perfect_month", Name: "Perfect Month", Description: "Achieve 4 perfect weeks", Icon: "🏆", Metric: MetricPerfectWeeks, Threshold: 4},
}

// Stats is a snapshot of the values achievements are measured against.
type Stats struct {
	TotalCompletions   int `json:"total_completions"`
	CurrentStreak      int `json:"current_streak"`
	Coins              int `json:"coins"`
	CleanRooms         int `json:"clean_rooms"`
	WeekCompletions    int `json:"week_completions"`
	WeekendCompletions int `json:"weekend_completions"`
	PerfectWeeks       int `json:"perfect_weeks"`
}

// Value returns the statistic a metric measures.
func (s Stats) Value(m Metric) int {
	switch m {
	case MetricTotalCompletions:
		return s.TotalCompletions
	case MetricCurrentStreak:
		return s.CurrentStreak
	case MetricCoins:
		return s.Coins
	case MetricCleanRooms:
		return s.CleanRooms
	case MetricWeekCompletions:
		return s.WeekCompletions
	case MetricWeekendCompletions:
		return s.WeekendCompletions
	case MetricPerfectWeeks:
		return s.PerfectWeeks
	}
	return 0
}

type Progress struct {
	Definition
	Value    int  `json:"value"`
	Unlocked bool `json:"unlocked"`
	Percent  int  `json:"progress"`
}

// Evaluate compares stats against every definition.
func Evaluate(stats Stats) []Progress {
	out := make([]Progress, 0, len(Definitions))
	for _, d := range Definitions {
		v := stats.Value(d.Metric)
		out = append(out, Progress{
			Definition: d,
			Value:      v,
			Unlocked:   v >= d.Threshold,
			Percent:    percent(v, d.Threshold),
		})
	}
	return out
}

// Unlocked returns the IDs of unlocked achievements.
func Unlocked(progress []Progress) []string {
	var ids []string
	for _, p := range progress {
		if p.Unlocked {
			ids = append(ids, p.ID)
		}
	}
	return ids
}

// Lookup finds a definition by ID.
func Lookup(id string) (Definition, bool) {
	for _, d := range Definitions {
		if d.ID == id {
			return d, true
		}
	}
	return Definition{}, false
}

func percent(v, threshold int) int {
	if threshold <= 0 {
		return 100
	}
	if v <= 0 {
		return 0
	}
	p := int(math.Round(100 * float64(v) / float64(threshold)))
	if p > 100 {
		return 100
	}
	return p
}
