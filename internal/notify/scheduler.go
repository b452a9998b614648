package notify

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/dukerupert/choreboard/internal/engine"
	"github.com/dukerupert/choreboard/internal/model"
	"github.com/dukerupert/choreboard/internal/store"
)

const sentRetention = 30 * 24 * time.Hour

// Scheduler sends each user a daily summary of the quests they can still
// complete, once per day after the reminder hour.
type Scheduler struct {
	mu       sync.RWMutex
	engine   *engine.Engine
	users    *store.UserStore
	push     *store.PushStore
	notifier *Dispatcher
	hour     int
	interval time.Duration
	logger   *slog.Logger
	cancel   context.CancelFunc
	done     chan struct{}
}

func NewScheduler(eng *engine.Engine, users *store.UserStore, push *store.PushStore, notifier *Dispatcher, hour int, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		engine:   eng,
		users:    users,
		push:     push,
		notifier: notifier,
		hour:     hour,
		interval: time.Minute,
		logger:   logger.With("component", "scheduler"),
	}
}

// Start runs the scheduler loop until Stop or ctx is cancelled.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	ctx, s.cancel = context.WithCancel(ctx)
	s.done = make(chan struct{})
	s.mu.Unlock()

	go func() {
		defer close(s.done)
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if _, err := s.tick(ctx); err != nil {
					s.logger.Error("daily reminder", "error", err)
				}
			}
		}
	}()
}

// Stop waits for the loop to exit.
func (s *Scheduler) Stop() {
	s.mu.RLock()
	cancel := s.cancel
	done := s.done
	s.mu.RUnlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}
}

// tick sends today's reminders if they are due and have not gone out yet.
// It returns the number of users reminded.
func (s *Scheduler) tick(ctx context.Context) (int, error) {
	now := s.engine.Now()
	if now.Hour() < s.hour {
		return 0, nil
	}

	refID := "daily-" + now.Format("2006-01-02")
	sent, err := s.push.WasSent(model.NotifTypeTasksDue, refID)
	if err != nil || sent {
		return 0, err
	}

	vac, err := s.engine.Vacation(ctx)
	if err != nil {
		return 0, err
	}
	if vac.ActiveAt(now) {
		return 0, nil
	}

	users, err := s.users.List()
	if err != nil {
		return 0, fmt.Errorf("list users: %w", err)
	}

	reminded := 0
	for _, u := range users {
		quests, err := s.engine.QuestsFor(ctx, u.ID)
		if err != nil {
			s.logger.Warn("quests for user", "user_id", u.ID, "error", err)
			continue
		}
		if len(quests) == 0 {
			continue
		}
		names := make([]string, 0, len(quests))
		for _, q := range quests {
			names = append(names, q.Name)
		}
		if err := s.notifier.Deliver(ctx, u.ID, dueMessage(names)); err != nil {
			s.logger.Warn("send daily reminder", "user_id", u.ID, "error", err)
			continue
		}
		reminded++
	}

	if err := s.push.RecordSent(model.NotifTypeTasksDue, refID); err != nil {
		return reminded, err
	}
	if err := s.push.CleanupSent(now.Add(-sentRetention)); err != nil {
		s.logger.Warn("cleanup sent notifications", "error", err)
	}
	s.logger.Info("daily reminders sent", "users", reminded)
	return reminded, nil
}

func dueMessage(names []string) Message {
	body := fmt.Sprintf("You have %d quests today: %s", len(names), strings.Join(names, ", "))
	if len(names) == 1 {
		body = "Quest due today: " + names[0]
	}
	return Message{
		Type:  model.NotifTypeTasksDue,
		Title: "Today's quests",
		Body:  body,
		URL:   "/",
		Tag:   "tasks-due",
	}
}
