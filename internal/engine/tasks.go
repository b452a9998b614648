package engine

import (
	"context"
	"database/sql"
	"strings"

	"github.com/dukerupert/choreboard/internal/apperr"
	"github.com/dukerupert/choreboard/internal/assign"
	"github.com/dukerupert/choreboard/internal/coins"
	"github.com/dukerupert/choreboard/internal/model"
)

type TaskInput struct {
	RoomID             int64                `json:"room_id"`
	Name               string               `json:"name"`
	Notes              string               `json:"notes"`
	FrequencyDays      float64              `json:"frequency_days"`
	Effort             int                  `json:"effort"`
	IsSeasonal         bool                 `json:"is_seasonal"`
	AssignmentMode     model.AssignmentMode `json:"assignment_mode"`
	AssignedToChildren bool                 `json:"assigned_to_children"`
	Assignees          []model.TaskAssignee `json:"assignees"`
}

type TaskDetail struct {
	model.Task
	Assignees []model.TaskAssignee `json:"assignees"`
}

// ValidateTask checks a task definition before anything is written.
func ValidateTask(in *TaskInput) error {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return apperr.New(apperr.InvalidInput, "name is required")
	}
	if in.FrequencyDays < model.MinFrequencyDays {
		return apperr.New(apperr.InvalidFrequency, "frequency must be at least one hour, got %g days", in.FrequencyDays)
	}
	if in.FrequencyDays > model.MaxFrequencyDays {
		return apperr.New(apperr.InvalidFrequency, "frequency must be at most %g days, got %g", model.MaxFrequencyDays, in.FrequencyDays)
	}
	if in.Effort < coins.MinEffort || in.Effort > coins.MaxEffort {
		return apperr.New(apperr.InvalidEffort, "effort must be %d-%d, got %d", coins.MinEffort, coins.MaxEffort, in.Effort)
	}
	if in.AssignmentMode == "" {
		in.AssignmentMode = model.ModeFirst
	}
	if !in.AssignmentMode.Valid() {
		return apperr.New(apperr.InvalidInput, "unknown assignment mode %q", in.AssignmentMode)
	}
	return assign.ValidateAssignees(in.AssignmentMode, in.Assignees)
}

func (e *Engine) CreateTask(ctx context.Context, in TaskInput) (*TaskDetail, error) {
	return e.saveTask(ctx, 0, in)
}

func (e *Engine) UpdateTask(ctx context.Context, id int64, in TaskInput) (*TaskDetail, error) {
	return e.saveTask(ctx, id, in)
}

// saveTask creates a task when id is zero and updates it otherwise. The task
// row and its assignee list are written together.
func (e *Engine) saveTask(ctx context.Context, id int64, in TaskInput) (*TaskDetail, error) {
	if err := ValidateTask(&in); err != nil {
		return nil, err
	}

	var detail TaskDetail
	err := e.inTx(ctx, func(tx *sql.Tx) error {
		s := e.bind(tx)

		room, err := s.rooms.GetByID(in.RoomID)
		if err != nil {
			return err
		}
		if room == nil {
			return apperr.New(apperr.RoomNotFound, "room %d", in.RoomID)
		}
		for _, a := range in.Assignees {
			u, err := s.users.GetByID(a.UserID)
			if err != nil {
				return err
			}
			if u == nil {
				return apperr.New(apperr.UserNotFound, "user %d", a.UserID)
			}
		}

		t := model.Task{
			ID:                 id,
			RoomID:             in.RoomID,
			Name:               in.Name,
			Notes:              in.Notes,
			FrequencyDays:      in.FrequencyDays,
			Effort:             in.Effort,
			IsSeasonal:         in.IsSeasonal,
			AssignmentMode:     in.AssignmentMode,
			AssignedToChildren: in.AssignedToChildren,
		}

		var saved *model.Task
		if id == 0 {
			t.CreatedAt = e.Now()
			saved, err = s.tasks.Create(t)
		} else {
			existing, gerr := s.tasks.GetByID(id)
			if gerr != nil {
				return gerr
			}
			if existing == nil {
				return apperr.New(apperr.TaskNotFound, "task %d", id)
			}
			saved, err = s.tasks.Update(t)
		}
		if err != nil {
			return err
		}

		assignees := make([]model.TaskAssignee, 0, len(in.Assignees))
		for _, a := range in.Assignees {
			a.TaskID = saved.ID
			if in.AssignmentMode != model.ModeCustom {
				a.CoinPercentage = 0
			}
			assignees = append(assignees, a)
		}
		if err := s.tasks.ReplaceAssignees(saved.ID, assignees); err != nil {
			return err
		}

		detail = TaskDetail{Task: *saved, Assignees: assignees}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &detail, nil
}

// GetTask returns a task with its assignee list.
func (e *Engine) GetTask(ctx context.Context, id int64) (*TaskDetail, error) {
	t, err := e.tasks.GetByID(id)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, apperr.New(apperr.TaskNotFound, "task %d", id)
	}
	assignees, err := e.tasks.ListAssignees(id)
	if err != nil {
		return nil, err
	}
	if assignees == nil {
		assignees = []model.TaskAssignee{}
	}
	return &TaskDetail{Task: *t, Assignees: assignees}, nil
}
