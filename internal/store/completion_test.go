package store

import (
	"testing"
	"time"

	"github.com/dukerupert/choreboard/internal/model"
)

func setupCompletionTest(t *testing.T) (*CompletionStore, int64, int64) {
	t.Helper()
	db := setupTestDB(t)
	u := mustUser(t, NewUserStore(db), "Alice", model.RoleMember)
	task, err := NewTaskStore(db).Create(model.Task{RoomID: firstRoomID(t, db), Name: "Sweep", FrequencyDays: 1, Effort: 1, AssignmentMode: model.ModeFirst})
	if err != nil {
		t.Fatalf("create task: %v", err)
	}
	return NewCompletionStore(db), task.ID, u.ID
}

func TestCompletionCreateAndGet(t *testing.T) {
	cs, taskID, userID := setupCompletionTest(t)

	at := time.Date(2024, 6, 12, 9, 0, 0, 0, time.UTC)
	c, err := cs.Create(taskID, userID, at, 15)
	if err != nil {
		t.Fatalf("create completion: %v", err)
	}
	if c.TaskID != taskID || c.UserID != userID || c.CoinsEarned != 15 {
		t.Errorf("completion = %+v", c)
	}
	if !c.CompletedAt.Equal(at) {
		t.Errorf("completed_at = %v, want %v", c.CompletedAt, at)
	}

	missing, err := cs.GetByID(c.ID + 100)
	if err != nil {
		t.Fatalf("get missing: %v", err)
	}
	if missing != nil {
		t.Errorf("expected nil, got %+v", missing)
	}
}

func TestCompletionListForTaskBetween(t *testing.T) {
	cs, taskID, userID := setupCompletionTest(t)

	cs.Create(taskID, userID, time.Date(2024, 6, 11, 23, 59, 0, 0, time.UTC), 5)
	cs.Create(taskID, userID, time.Date(2024, 6, 12, 0, 0, 0, 0, time.UTC), 5)
	cs.Create(taskID, userID, time.Date(2024, 6, 12, 18, 30, 15, 500, time.UTC), 5)
	cs.Create(taskID, userID, time.Date(2024, 6, 13, 0, 0, 0, 0, time.UTC), 5)

	start := time.Date(2024, 6, 12, 0, 0, 0, 0, time.UTC)
	got, err := cs.ListForTaskBetween(taskID, start, start.AddDate(0, 0, 1))
	if err != nil {
		t.Fatalf("list between: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d completions, want 2", len(got))
	}
	if !got[0].CompletedAt.Equal(start) {
		t.Errorf("first = %v, want %v", got[0].CompletedAt, start)
	}
}

func TestCompletionLatestAfterDelete(t *testing.T) {
	cs, taskID, userID := setupCompletionTest(t)

	first := time.Date(2024, 6, 10, 9, 0, 0, 0, time.UTC)
	cs.Create(taskID, userID, first, 5)
	second, _ := cs.Create(taskID, userID, time.Date(2024, 6, 11, 9, 0, 0, 0, time.UTC), 5)

	if err := cs.Delete(second.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	latest, err := cs.Latest(taskID)
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	if latest == nil || !latest.Equal(first) {
		t.Errorf("latest = %v, want %v", latest, first)
	}

	cs.Delete(second.ID - 1)
	latest, _ = cs.Latest(taskID)
	if latest != nil {
		t.Errorf("latest = %v, want nil", latest)
	}
}

func TestCompletionListByUserAndRecent(t *testing.T) {
	cs, taskID, userID := setupCompletionTest(t)

	for d := 1; d <= 3; d++ {
		cs.Create(taskID, userID, time.Date(2024, 6, d, 9, 0, 0, 0, time.UTC), d)
	}

	mine, err := cs.ListByUser(userID)
	if err != nil {
		t.Fatalf("list by user: %v", err)
	}
	if len(mine) != 3 || mine[0].CoinsEarned != 1 {
		t.Errorf("by user = %+v", mine)
	}

	recent, err := cs.ListRecent(2)
	if err != nil {
		t.Fatalf("list recent: %v", err)
	}
	if len(recent) != 2 || recent[0].CoinsEarned != 3 {
		t.Errorf("recent = %+v", recent)
	}

	before, err := cs.ListBefore(time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("list before: %v", err)
	}
	if len(before) != 2 {
		t.Errorf("got %d before, want 2", len(before))
	}
}
