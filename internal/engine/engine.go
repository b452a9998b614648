// Package engine is the single writer of completions, coins, streaks and
// last-completed anchors. It combines the pure calculators with the stores
// and returns notification events instead of delivering them.
package engine

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/dukerupert/choreboard/internal/health"
	"github.com/dukerupert/choreboard/internal/metrics"
	"github.com/dukerupert/choreboard/internal/model"
	"github.com/dukerupert/choreboard/internal/store"
)

// Event is a notification the caller may deliver after a mutation commits.
type Event struct {
	Type          string `json:"type"`
	UserID        int64  `json:"user_id"`
	AchievementID string `json:"achievement_id,omitempty"`
	RewardID      int64  `json:"reward_id,omitempty"`
	RedemptionID  int64  `json:"redemption_id,omitempty"`
}

type Engine struct {
	db           *sql.DB
	users        *store.UserStore
	rooms        *store.RoomStore
	tasks        *store.TaskStore
	completions  *store.CompletionStore
	settings     *store.SettingsStore
	achievements *store.AchievementStore
	rewards      *store.RewardStore
	push         *store.PushStore

	loc     *time.Location
	clock   func() time.Time
	metrics *metrics.Metrics
	logger  *slog.Logger
}

type Option func(*Engine)

// WithClock replaces time.Now.
func WithClock(clock func() time.Time) Option {
	return func(e *Engine) { e.clock = clock }
}

// WithLocation sets the household time zone that defines calendar days.
func WithLocation(loc *time.Location) Option {
	return func(e *Engine) {
		if loc != nil {
			e.loc = loc
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(e *Engine) { e.metrics = m }
}

func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

func New(db *sql.DB, opts ...Option) *Engine {
	e := &Engine{
		db:           db,
		users:        store.NewUserStore(db),
		rooms:        store.NewRoomStore(db),
		tasks:        store.NewTaskStore(db),
		completions:  store.NewCompletionStore(db),
		settings:     store.NewSettingsStore(db),
		achievements: store.NewAchievementStore(db),
		rewards:      store.NewRewardStore(db),
		push:         store.NewPushStore(db),
		loc:          time.Local,
		clock:        time.Now,
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.logger = e.logger.With("component", "engine")
	return e
}

// Location returns the household time zone.
func (e *Engine) Location() *time.Location {
	return e.loc
}

// Now returns the engine clock in the household time zone.
func (e *Engine) Now() time.Time {
	return e.clock().In(e.loc)
}

// dayBounds returns [midnight, next midnight) of t's household day.
func (e *Engine) dayBounds(t time.Time) (time.Time, time.Time) {
	start := health.StartOfDay(t.In(e.loc))
	return start, start.AddDate(0, 0, 1)
}

// Vacation returns the current vacation window, expiring it if its end date
// has passed.
func (e *Engine) Vacation(ctx context.Context) (model.Vacation, error) {
	return e.settings.Vacation(e.Now())
}

// inTx runs fn in a transaction, committing only when fn succeeds.
func (e *Engine) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := e.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// txStores are the stores bound to one transaction.
type txStores struct {
	users       *store.UserStore
	rooms       *store.RoomStore
	tasks       *store.TaskStore
	completions *store.CompletionStore
	rewards     *store.RewardStore
}

func (e *Engine) bind(tx *sql.Tx) txStores {
	return txStores{
		users:       e.users.WithTx(tx),
		rooms:       e.rooms.WithTx(tx),
		tasks:       e.tasks.WithTx(tx),
		completions: e.completions.WithTx(tx),
		rewards:     e.rewards.WithTx(tx),
	}
}
