// Package assign resolves who may complete a task and when a task counts as
// satisfied for the day.
package assign

import (
	"sort"

	"github.com/dukerupert/choreboard/internal/model"
)

// Policy is the effective assignment of a task after room precedence has been
// applied. It is one of FirstCome, Shared or Custom.
type Policy interface {
	// Members returns the effective assignee set, sorted by user ID. An empty
	// set means anyone may complete the task.
	Members() []int64
	isPolicy()
}

// FirstCome is satisfied by the first completion of the day.
type FirstCome struct {
	Assignees []int64
}

// Shared splits coins evenly and needs every assignee to complete.
type Shared struct {
	Assignees []int64
}

// Custom splits coins by explicit percentages and needs every assignee to
// complete. Percentages sum to 100.
type Custom struct {
	Percentages map[int64]int
}

func (p FirstCome) Members() []int64 { return p.Assignees }
func (p Shared) Members() []int64    { return p.Assignees }
func (p Custom) Members() []int64 {
	ids := make([]int64, 0, len(p.Percentages))
	for id := range p.Percentages {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func (FirstCome) isPolicy() {}
func (Shared) isPolicy()    {}
func (Custom) isPolicy()    {}

// Resolve computes a task's effective policy. A room-level assignee always
// wins over task-level assignees. With no task assignees, a task flagged for
// children is assigned to every child in childIDs.
func Resolve(task model.Task, assignees []model.TaskAssignee, room model.Room, childIDs []int64) Policy {
	if room.AssignedUserID != nil {
		only := *room.AssignedUserID
		switch task.AssignmentMode {
		case model.ModeShared:
			return Shared{Assignees: []int64{only}}
		case model.ModeCustom:
			return Custom{Percentages: map[int64]int{only: 100}}
		default:
			return FirstCome{Assignees: []int64{only}}
		}
	}

	var ids []int64
	for _, a := range assignees {
		ids = append(ids, a.UserID)
	}
	if len(ids) == 0 && task.AssignedToChildren {
		ids = append(ids, childIDs...)
	}
	ids = dedupe(ids)

	switch task.AssignmentMode {
	case model.ModeShared:
		return Shared{Assignees: ids}
	case model.ModeCustom:
		if len(assignees) == 0 {
			return Shared{Assignees: ids}
		}
		pct := make(map[int64]int, len(assignees))
		for _, a := range assignees {
			pct[a.UserID] = a.CoinPercentage
		}
		return Custom{Percentages: pct}
	default:
		return FirstCome{Assignees: ids}
	}
}

// Contains reports whether userID is in the policy's effective set.
func Contains(p Policy, userID int64) bool {
	for _, id := range p.Members() {
		if id == userID {
			return true
		}
	}
	return false
}

// CanComplete reports whether user may mark a task with policy p as done.
// Admins and members act as overseers and may complete anything.
func CanComplete(p Policy, user model.User) bool {
	if user.Role.Privileged() {
		return true
	}
	members := p.Members()
	return len(members) == 0 || Contains(p, user.ID)
}

// Satisfied reports whether the day's completions (user IDs, in order) fully
// satisfy the task. First-come tasks are satisfied by any completion; shared
// and custom tasks need every effective assignee. A shared task with nobody
// assigned is satisfied by any completion.
func Satisfied(p Policy, completedBy []int64) bool {
	switch p := p.(type) {
	case FirstCome:
		return len(completedBy) > 0
	case Shared, Custom:
		members := p.Members()
		if len(members) == 0 {
			return len(completedBy) > 0
		}
		return Covered(p, completedBy) == len(members)
	default:
		return false
	}
}

// Covered counts distinct effective assignees present in completedBy.
func Covered(p Policy, completedBy []int64) int {
	seen := make(map[int64]bool)
	for _, id := range completedBy {
		if Contains(p, id) {
			seen[id] = true
		}
	}
	return len(seen)
}

func dedupe(ids []int64) []int64 {
	if len(ids) == 0 {
		return nil
	}
	seen := make(map[int64]bool, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
