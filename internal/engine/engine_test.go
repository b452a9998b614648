package engine

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/dukerupert/choreboard/internal/apperr"
	"github.com/dukerupert/choreboard/internal/database"
	"github.com/dukerupert/choreboard/internal/model"
	"github.com/dukerupert/choreboard/internal/store"
)

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) Now() time.Time { return c.t }

func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

type fixture struct {
	db     *sql.DB
	engine *Engine
	clock  *fakeClock
	users  *store.UserStore
	rooms  *store.RoomStore
	tasks  *store.TaskStore
	roomID int64
	admin  *model.User
	kidA   *model.User
	kidB   *model.User
	kidC   *model.User
}

// 2024-06-12 is a Wednesday.
var day1 = time.Date(2024, 6, 12, 9, 0, 0, 0, time.UTC)

func setup(t *testing.T) *fixture {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	f := &fixture{
		db:    db,
		clock: &fakeClock{t: day1},
		users: store.NewUserStore(db),
		rooms: store.NewRoomStore(db),
		tasks: store.NewTaskStore(db),
	}
	f.engine = New(db,
		WithClock(f.clock.Now),
		WithLocation(time.UTC),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)

	f.admin = f.user(t, "Parent", model.RoleAdmin)
	f.kidA = f.user(t, "Ada", model.RoleChild)
	f.kidB = f.user(t, "Ben", model.RoleChild)
	f.kidC = f.user(t, "Cy", model.RoleChild)

	rooms, err := f.rooms.List()
	if err != nil || len(rooms) == 0 {
		t.Fatalf("list rooms: %v", err)
	}
	f.roomID = rooms[0].ID
	return f
}

func (f *fixture) user(t *testing.T, name string, role model.Role) *model.User {
	t.Helper()
	u, err := f.users.Create(name, role, "", "")
	if err != nil {
		t.Fatalf("create user %s: %v", name, err)
	}
	return u
}

func (f *fixture) task(t *testing.T, in TaskInput) *TaskDetail {
	t.Helper()
	if in.RoomID == 0 {
		in.RoomID = f.roomID
	}
	if in.Name == "" {
		in.Name = "Chore"
	}
	if in.FrequencyDays == 0 {
		in.FrequencyDays = 1
	}
	if in.Effort == 0 {
		in.Effort = 3
	}
	d, err := f.engine.CreateTask(context.Background(), in)
	if err != nil {
		t.Fatalf("create task: %v", err)
	}
	return d
}

func (f *fixture) complete(t *testing.T, taskID, userID int64) *Result {
	t.Helper()
	res, err := f.engine.Complete(context.Background(), CompleteRequest{TaskID: taskID, ActorID: userID})
	if err != nil {
		t.Fatalf("complete task %d as %d: %v", taskID, userID, err)
	}
	return res
}

func (f *fixture) reload(t *testing.T, id int64) *model.Task {
	t.Helper()
	task, err := f.tasks.GetByID(id)
	if err != nil || task == nil {
		t.Fatalf("reload task %d: %v", id, err)
	}
	return task
}

func (f *fixture) coins(t *testing.T, userID int64) int {
	t.Helper()
	u, err := f.users.GetByID(userID)
	if err != nil || u == nil {
		t.Fatalf("reload user %d: %v", userID, err)
	}
	return u.Coins
}

func assignees(ids ...int64) []model.TaskAssignee {
	out := make([]model.TaskAssignee, 0, len(ids))
	for _, id := range ids {
		out = append(out, model.TaskAssignee{UserID: id})
	}
	return out
}

func wantReason(t *testing.T, err error, reason apperr.Reason) {
	t.Helper()
	if !errors.Is(err, reason) {
		t.Fatalf("err = %v, want %s", err, reason)
	}
}
