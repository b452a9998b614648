package assign

import (
	"github.com/dukerupert/choreboard/internal/apperr"
	"github.com/dukerupert/choreboard/internal/model"
)

// ValidateAssignees checks a task's assignee list against its mode. Custom
// tasks with assignees must have percentages summing to exactly 100.
func ValidateAssignees(mode model.AssignmentMode, assignees []model.TaskAssignee) error {
	seen := make(map[int64]bool, len(assignees))
	for _, a := range assignees {
		if seen[a.UserID] {
			return apperr.New(apperr.InvalidInput, "user %d assigned more than once", a.UserID)
		}
		seen[a.UserID] = true
	}

	if mode != model.ModeCustom || len(assignees) == 0 {
		return nil
	}

	total := 0
	for _, a := range assignees {
		if a.CoinPercentage < 0 || a.CoinPercentage > 100 {
			return apperr.New(apperr.InvalidPercentages, "coin percentage for user %d must be 0-100", a.UserID)
		}
		total += a.CoinPercentage
	}
	if total != 100 {
		return apperr.New(apperr.InvalidPercentages, "coin percentages must sum to 100, got %d", total)
	}
	return nil
}
