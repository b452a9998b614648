package notify

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/dukerupert/choreboard/internal/database"
	"github.com/dukerupert/choreboard/internal/engine"
	"github.com/dukerupert/choreboard/internal/model"
	"github.com/dukerupert/choreboard/internal/store"
	"github.com/dukerupert/choreboard/internal/websocket"
)

type sent struct {
	userID int64
	msg    Message
}

type recorder struct {
	mu   sync.Mutex
	sent []sent
}

func (r *recorder) Name() string { return "test" }

func (r *recorder) Send(ctx context.Context, user model.User, msg Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, sent{userID: user.ID, msg: msg})
	return nil
}

func (r *recorder) all() []sent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]sent(nil), r.sent...)
}

type env struct {
	db       *sql.DB
	users    *store.UserStore
	settings *store.SettingsStore
	push     *store.PushStore
	rewards  *store.RewardStore
	rec      *recorder
	d        *Dispatcher
	logger   *slog.Logger
}

func setup(t *testing.T) *env {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	e := &env{
		db:       db,
		users:    store.NewUserStore(db),
		settings: store.NewSettingsStore(db),
		push:     store.NewPushStore(db),
		rewards:  store.NewRewardStore(db),
		rec:      &recorder{},
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	e.d = NewDispatcher(e.settings, e.push, e.users, e.rewards, nil, e.logger, e.rec)
	return e
}

func (e *env) user(t *testing.T, name string, role model.Role) *model.User {
	t.Helper()
	u, err := e.users.Create(name, role, "", "")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	return u
}

func TestDispatchAchievement(t *testing.T) {
	e := setup(t)
	kid := e.user(t, "Ada", model.RoleChild)

	e.d.Dispatch([]engine.Event{{Type: model.NotifTypeAchievementUnlocked, UserID: kid.ID, AchievementID: "first_task"}})
	e.d.Wait()

	got := e.rec.all()
	if len(got) != 1 {
		t.Fatalf("sent %d messages, want 1", len(got))
	}
	if got[0].userID != kid.ID || got[0].msg.Tag != "achievement-first_task" {
		t.Errorf("sent = %+v", got[0])
	}
}

func TestDispatchRespectsGlobalToggle(t *testing.T) {
	e := setup(t)
	kid := e.user(t, "Ada", model.RoleChild)
	if err := e.settings.SetNotificationTypeEnabled(model.NotifTypeAchievementUnlocked, false); err != nil {
		t.Fatalf("disable type: %v", err)
	}

	e.d.Dispatch([]engine.Event{{Type: model.NotifTypeAchievementUnlocked, UserID: kid.ID, AchievementID: "first_task"}})
	e.d.Wait()

	if got := e.rec.all(); len(got) != 0 {
		t.Errorf("sent = %+v, want nothing", got)
	}
}

func TestDispatchRespectsUserPreference(t *testing.T) {
	e := setup(t)
	kid := e.user(t, "Ada", model.RoleChild)
	if err := e.push.SetPreference(kid.ID, model.NotifTypeAchievementUnlocked, false); err != nil {
		t.Fatalf("set preference: %v", err)
	}

	enabled, err := e.d.Enabled(kid.ID, model.NotifTypeAchievementUnlocked)
	if err != nil {
		t.Fatalf("enabled: %v", err)
	}
	if enabled {
		t.Error("expected type disabled for user")
	}

	e.d.Dispatch([]engine.Event{{Type: model.NotifTypeAchievementUnlocked, UserID: kid.ID, AchievementID: "first_task"}})
	e.d.Wait()
	if got := e.rec.all(); len(got) != 0 {
		t.Errorf("sent = %+v, want nothing", got)
	}
}

func TestDispatchRewardRequestedToAdmins(t *testing.T) {
	e := setup(t)
	mom := e.user(t, "Mom", model.RoleAdmin)
	dad := e.user(t, "Dad", model.RoleAdmin)
	e.user(t, "Aunt", model.RoleMember)
	kid := e.user(t, "Ada", model.RoleChild)
	reward, err := e.rewards.Create("Ice cream", "", 30, true)
	if err != nil {
		t.Fatalf("create reward: %v", err)
	}

	e.d.Dispatch([]engine.Event{{Type: model.NotifTypeRewardRequested, UserID: kid.ID, RewardID: reward.ID, RedemptionID: 7}})
	e.d.Wait()

	got := e.rec.all()
	if len(got) != 2 {
		t.Fatalf("sent %d messages, want 2", len(got))
	}
	to := map[int64]bool{}
	for _, s := range got {
		to[s.userID] = true
		if s.msg.Body != "Ada wants Ice cream (30 coins)" {
			t.Errorf("body = %q", s.msg.Body)
		}
	}
	if !to[mom.ID] || !to[dad.ID] {
		t.Errorf("recipients = %v, want both admins", to)
	}
}

func TestDispatchEmpty(t *testing.T) {
	e := setup(t)
	e.d.Dispatch(nil)
	e.d.Wait()
	if got := e.rec.all(); len(got) != 0 {
		t.Errorf("sent = %+v", got)
	}
}

type clock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *clock) Set(t time.Time) {
	c.mu.Lock()
	c.t = t
	c.mu.Unlock()
}

func TestSchedulerDailyReminder(t *testing.T) {
	e := setup(t)
	kid := e.user(t, "Ada", model.RoleChild)
	c := &clock{t: time.Date(2024, 6, 12, 6, 0, 0, 0, time.UTC)}
	eng := engine.New(e.db, engine.WithClock(c.Now), engine.WithLocation(time.UTC), engine.WithLogger(e.logger))

	rooms, err := store.NewRoomStore(e.db).List()
	if err != nil {
		t.Fatalf("list rooms: %v", err)
	}
	if _, err := eng.CreateTask(context.Background(), engine.TaskInput{RoomID: rooms[0].ID, Name: "Dishes", FrequencyDays: 1, Effort: 2}); err != nil {
		t.Fatalf("create task: %v", err)
	}

	s := NewScheduler(eng, e.users, e.push, e.d, 8, e.logger)
	ctx := context.Background()

	if n, err := s.tick(ctx); err != nil || n != 0 {
		t.Fatalf("before hour: n = %d err = %v", n, err)
	}

	c.Set(time.Date(2024, 6, 12, 8, 1, 0, 0, time.UTC))
	n, err := s.tick(ctx)
	if err != nil {
		t.Fatalf("tick: %v", err)
	}
	if n != 1 {
		t.Fatalf("reminded %d users, want 1", n)
	}
	got := e.rec.all()
	if len(got) != 1 || got[0].userID != kid.ID || got[0].msg.Body != "Quest due today: Dishes" {
		t.Errorf("sent = %+v", got)
	}

	if n, err := s.tick(ctx); err != nil || n != 0 {
		t.Errorf("second tick: n = %d err = %v, want deduped", n, err)
	}
}

func TestSchedulerSkipsVacation(t *testing.T) {
	e := setup(t)
	e.user(t, "Ada", model.RoleChild)
	c := &clock{t: time.Date(2024, 6, 12, 9, 0, 0, 0, time.UTC)}
	eng := engine.New(e.db, engine.WithClock(c.Now), engine.WithLocation(time.UTC), engine.WithLogger(e.logger))

	rooms, _ := store.NewRoomStore(e.db).List()
	if _, err := eng.CreateTask(context.Background(), engine.TaskInput{RoomID: rooms[0].ID, Name: "Dishes", FrequencyDays: 1, Effort: 2}); err != nil {
		t.Fatalf("create task: %v", err)
	}
	if _, err := eng.SetVacation(context.Background(), true, nil); err != nil {
		t.Fatalf("set vacation: %v", err)
	}

	s := NewScheduler(eng, e.users, e.push, e.d, 8, e.logger)
	if n, err := s.tick(context.Background()); err != nil || n != 0 {
		t.Errorf("n = %d err = %v, want skipped", n, err)
	}
	if got := e.rec.all(); len(got) != 0 {
		t.Errorf("sent = %+v", got)
	}
}

func TestDueMessage(t *testing.T) {
	msg := dueMessage([]string{"Dishes", "Laundry"})
	if msg.Body != "You have 2 quests today: Dishes, Laundry" {
		t.Errorf("body = %q", msg.Body)
	}
	if msg.Type != model.NotifTypeTasksDue {
		t.Errorf("type = %q", msg.Type)
	}
}

func TestLiveChannel(t *testing.T) {
	hub := websocket.NewHub(slog.New(slog.NewTextHandler(io.Discard, nil)))
	l := NewLive(hub)
	if err := l.Send(context.Background(), model.User{ID: 3}, Message{Type: model.NotifTypeTasksDue, Title: "t"}); err != nil {
		t.Errorf("send with no connections: %v", err)
	}
	if l.Name() != "live" {
		t.Errorf("name = %q", l.Name())
	}
}
