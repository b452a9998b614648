package store

import (
	"testing"
	"time"

	"github.com/dukerupert/choreboard/internal/model"
)

func TestTaskCreate(t *testing.T) {
	db := setupTestDB(t)
	ts := NewTaskStore(db)
	roomID := firstRoomID(t, db)

	task, err := ts.Create(model.Task{
		RoomID:             roomID,
		Name:               "Wipe counters",
		Notes:              "use the blue cloth",
		FrequencyDays:      0.5,
		Effort:             2,
		IsSeasonal:         true,
		AssignmentMode:     model.ModeShared,
		AssignedToChildren: true,
	})
	if err != nil {
		t.Fatalf("create task: %v", err)
	}
	if task.FrequencyDays != 0.5 {
		t.Errorf("frequency = %v, want 0.5", task.FrequencyDays)
	}
	if !task.IsSeasonal || !task.AssignedToChildren {
		t.Errorf("flags not stored: %+v", task)
	}
	if task.AssignmentMode != model.ModeShared {
		t.Errorf("mode = %q, want %q", task.AssignmentMode, model.ModeShared)
	}
	if task.LastCompletedAt != nil {
		t.Errorf("last_completed_at = %v, want nil", task.LastCompletedAt)
	}
	if task.CreatedAt.IsZero() {
		t.Error("expected created_at to be set")
	}
}

func TestTaskRejectsBadEffort(t *testing.T) {
	db := setupTestDB(t)
	ts := NewTaskStore(db)

	_, err := ts.Create(model.Task{RoomID: firstRoomID(t, db), Name: "x", FrequencyDays: 1, Effort: 9, AssignmentMode: model.ModeFirst})
	if err == nil {
		t.Fatal("expected error for effort 9, got nil")
	}
}

func TestTaskSetLastCompletedAt(t *testing.T) {
	db := setupTestDB(t)
	ts := NewTaskStore(db)
	task, _ := ts.Create(model.Task{RoomID: firstRoomID(t, db), Name: "Sweep", FrequencyDays: 7, Effort: 3, AssignmentMode: model.ModeFirst})

	at := time.Date(2024, 6, 12, 9, 30, 0, 0, time.UTC)
	if err := ts.SetLastCompletedAt(task.ID, &at); err != nil {
		t.Fatalf("set last completed: %v", err)
	}
	got, _ := ts.GetByID(task.ID)
	if got.LastCompletedAt == nil || !got.LastCompletedAt.Equal(at) {
		t.Errorf("last_completed_at = %v, want %v", got.LastCompletedAt, at)
	}

	if err := ts.SetLastCompletedAt(task.ID, nil); err != nil {
		t.Fatalf("clear last completed: %v", err)
	}
	got, _ = ts.GetByID(task.ID)
	if got.LastCompletedAt != nil {
		t.Errorf("last_completed_at = %v, want nil", got.LastCompletedAt)
	}
}

func TestTaskUpdateKeepsLastCompleted(t *testing.T) {
	db := setupTestDB(t)
	ts := NewTaskStore(db)
	task, _ := ts.Create(model.Task{RoomID: firstRoomID(t, db), Name: "Sweep", FrequencyDays: 7, Effort: 3, AssignmentMode: model.ModeFirst})
	at := time.Date(2024, 6, 12, 9, 30, 0, 0, time.UTC)
	ts.SetLastCompletedAt(task.ID, &at)

	task.Name = "Sweep floors"
	task.Effort = 4
	task.LastCompletedAt = nil
	updated, err := ts.Update(*task)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Name != "Sweep floors" || updated.Effort != 4 {
		t.Errorf("updated = %+v", updated)
	}
	if updated.LastCompletedAt == nil {
		t.Error("update should not touch last_completed_at")
	}
}

func TestTaskAssignees(t *testing.T) {
	db := setupTestDB(t)
	ts := NewTaskStore(db)
	us := NewUserStore(db)
	a := mustUser(t, us, "A", model.RoleChild)
	b := mustUser(t, us, "B", model.RoleChild)
	task, _ := ts.Create(model.Task{RoomID: firstRoomID(t, db), Name: "Dishes", FrequencyDays: 1, Effort: 2, AssignmentMode: model.ModeCustom})

	err := ts.ReplaceAssignees(task.ID, []model.TaskAssignee{
		{UserID: a.ID, CoinPercentage: 60},
		{UserID: b.ID, CoinPercentage: 40},
	})
	if err != nil {
		t.Fatalf("replace assignees: %v", err)
	}

	got, err := ts.ListAssignees(task.ID)
	if err != nil {
		t.Fatalf("list assignees: %v", err)
	}
	if len(got) != 2 || got[0].CoinPercentage != 60 || got[1].CoinPercentage != 40 {
		t.Errorf("assignees = %+v", got)
	}

	ts.ReplaceAssignees(task.ID, []model.TaskAssignee{{UserID: b.ID, CoinPercentage: 100}})
	all, err := ts.AllAssignees()
	if err != nil {
		t.Fatalf("all assignees: %v", err)
	}
	if len(all[task.ID]) != 1 || all[task.ID][0].UserID != b.ID {
		t.Errorf("all[%d] = %+v", task.ID, all[task.ID])
	}
}
