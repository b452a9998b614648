// Package notify delivers household notifications over web push, Telegram
// and the live websocket feed.
package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dukerupert/choreboard/internal/achievement"
	"github.com/dukerupert/choreboard/internal/engine"
	"github.com/dukerupert/choreboard/internal/metrics"
	"github.com/dukerupert/choreboard/internal/model"
	"github.com/dukerupert/choreboard/internal/store"
)

const deliverTimeout = 30 * time.Second

// Message is a rendered notification for a single user.
type Message struct {
	Type  string `json:"type"`
	Title string `json:"title"`
	Body  string `json:"body"`
	URL   string `json:"url,omitempty"`
	Tag   string `json:"tag,omitempty"`
}

// Channel is one delivery medium. Send returns nil when the user simply has
// no address on the channel.
type Channel interface {
	Name() string
	Send(ctx context.Context, user model.User, msg Message) error
}

// Dispatcher turns engine events into messages and fans them out to every
// channel. Delivery never blocks the caller.
type Dispatcher struct {
	settings *store.SettingsStore
	push     *store.PushStore
	users    *store.UserStore
	rewards  *store.RewardStore
	channels []Channel
	metrics  *metrics.Metrics
	logger   *slog.Logger
	wg       sync.WaitGroup
}

func NewDispatcher(settings *store.SettingsStore, push *store.PushStore, users *store.UserStore, rewards *store.RewardStore, m *metrics.Metrics, logger *slog.Logger, channels ...Channel) *Dispatcher {
	return &Dispatcher{
		settings: settings,
		push:     push,
		users:    users,
		rewards:  rewards,
		channels: channels,
		metrics:  m,
		logger:   logger.With("component", "notify"),
	}
}

// Enabled reports whether a notification type is switched on for the whole
// household and for the user.
func (d *Dispatcher) Enabled(userID int64, notifType string) (bool, error) {
	on, err := d.settings.NotificationTypeEnabled(notifType)
	if err != nil || !on {
		return false, err
	}
	return d.push.IsPreferenceEnabled(userID, notifType)
}

// Dispatch delivers events in the background.
func (d *Dispatcher) Dispatch(events []engine.Event) {
	if len(events) == 0 {
		return
	}
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), deliverTimeout)
		defer cancel()
		for _, ev := range events {
			if err := d.dispatch(ctx, ev); err != nil {
				d.logger.Warn("dispatch event", "type", ev.Type, "user_id", ev.UserID, "error", err)
			}
		}
	}()
}

// Wait blocks until background deliveries finish.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

func (d *Dispatcher) dispatch(ctx context.Context, ev engine.Event) error {
	switch ev.Type {
	case model.NotifTypeAchievementUnlocked:
		def, ok := achievement.Lookup(ev.AchievementID)
		if !ok {
			return fmt.Errorf("unknown achievement %q", ev.AchievementID)
		}
		return d.Deliver(ctx, ev.UserID, Message{
			Type:  ev.Type,
			Title: "Achievement unlocked",
			Body:  fmt.Sprintf("%s %s: %s", def.Icon, def.Name, def.Description),
			URL:   "/achievements",
			Tag:   "achievement-" + def.ID,
		})

	case model.NotifTypeRewardRequested:
		return d.rewardRequested(ctx, ev)

	default:
		return fmt.Errorf("unhandled event type %q", ev.Type)
	}
}

// rewardRequested tells every admin except the requester.
func (d *Dispatcher) rewardRequested(ctx context.Context, ev engine.Event) error {
	requester, err := d.users.GetByID(ev.UserID)
	if err != nil {
		return err
	}
	reward, err := d.rewards.GetByID(ev.RewardID)
	if err != nil {
		return err
	}
	if requester == nil || reward == nil {
		return nil
	}
	admins, err := d.users.ListIDsByRole(model.RoleAdmin)
	if err != nil {
		return err
	}

	msg := Message{
		Type:  ev.Type,
		Title: "Reward requested",
		Body:  fmt.Sprintf("%s wants %s (%d coins)", requester.Name, reward.Title, reward.CoinCost),
		URL:   "/rewards",
		Tag:   fmt.Sprintf("redemption-%d", ev.RedemptionID),
	}
	var errs []error
	for _, id := range admins {
		if id == requester.ID {
			continue
		}
		errs = append(errs, d.Deliver(ctx, id, msg))
	}
	return errors.Join(errs...)
}

// Deliver sends msg to one user over every channel if the user has the
// message type enabled.
func (d *Dispatcher) Deliver(ctx context.Context, userID int64, msg Message) error {
	enabled, err := d.Enabled(userID, msg.Type)
	if err != nil {
		return err
	}
	if !enabled {
		return nil
	}
	user, err := d.users.GetByID(userID)
	if err != nil {
		return err
	}
	if user == nil {
		return nil
	}

	var errs []error
	for _, ch := range d.channels {
		err := ch.Send(ctx, *user, msg)
		d.metrics.NotificationSent(ch.Name(), err)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", ch.Name(), err))
		}
	}
	return errors.Join(errs...)
}
