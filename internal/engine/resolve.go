package engine

import (
	"github.com/dukerupert/choreboard/internal/apperr"
	"github.com/dukerupert/choreboard/internal/assign"
	"github.com/dukerupert/choreboard/internal/model"
)

func (e *Engine) plain() txStores {
	return txStores{
		users:       e.users,
		rooms:       e.rooms,
		tasks:       e.tasks,
		completions: e.completions,
		rewards:     e.rewards,
	}
}

func (s txStores) roomOf(task *model.Task) (*model.Room, error) {
	room, err := s.rooms.GetByID(task.RoomID)
	if err != nil {
		return nil, err
	}
	if room == nil {
		return nil, apperr.New(apperr.RoomNotFound, "room %d", task.RoomID)
	}
	return room, nil
}

// policyFor resolves one task's effective assignment.
func (s txStores) policyFor(task *model.Task) (assign.Policy, error) {
	room, err := s.roomOf(task)
	if err != nil {
		return nil, err
	}
	assignees, err := s.tasks.ListAssignees(task.ID)
	if err != nil {
		return nil, err
	}
	var childIDs []int64
	if task.AssignedToChildren && len(assignees) == 0 {
		if childIDs, err = s.users.ListIDsByRole(model.RoleChild); err != nil {
			return nil, err
		}
	}
	return assign.Resolve(*task, assignees, *room, childIDs), nil
}

// policies resolves every task in one pass over rooms and assignees.
func (s txStores) policies(tasks []model.Task) (map[int64]assign.Policy, error) {
	rooms, err := s.rooms.List()
	if err != nil {
		return nil, err
	}
	byID := make(map[int64]model.Room, len(rooms))
	for _, r := range rooms {
		byID[r.ID] = r
	}
	assignees, err := s.tasks.AllAssignees()
	if err != nil {
		return nil, err
	}
	childIDs, err := s.users.ListIDsByRole(model.RoleChild)
	if err != nil {
		return nil, err
	}

	out := make(map[int64]assign.Policy, len(tasks))
	for _, t := range tasks {
		out[t.ID] = assign.Resolve(t, assignees[t.ID], byID[t.RoomID], childIDs)
	}
	return out, nil
}
