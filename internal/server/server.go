package server

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/dukerupert/choreboard/internal/config"
	"github.com/dukerupert/choreboard/internal/engine"
	"github.com/dukerupert/choreboard/internal/handler"
	"github.com/dukerupert/choreboard/internal/metrics"
	"github.com/dukerupert/choreboard/internal/middleware"
	"github.com/dukerupert/choreboard/internal/notify"
	"github.com/dukerupert/choreboard/internal/store"
	ws "github.com/dukerupert/choreboard/internal/websocket"
)

const sessionCleanupInterval = time.Hour

type Server struct {
	db      *sql.DB
	hub     *ws.Hub
	engine  *engine.Engine
	metrics *metrics.Metrics

	authH      *handler.AuthHandler
	userH      *handler.UserHandler
	roomH      *handler.RoomHandler
	taskH      *handler.TaskHandler
	dashboardH *handler.DashboardHandler
	rewardH    *handler.RewardHandler
	settingsH  *handler.SettingsHandler
	pushH      *handler.PushHandler

	sessionStore *store.SessionStore
	userStore    *store.UserStore
	rateLimiter  *middleware.RateLimiter
	dispatcher   *notify.Dispatcher
	scheduler    *notify.Scheduler

	cancel context.CancelFunc
	wg     sync.WaitGroup
	logger *slog.Logger
}

// New wires stores, the engine, notification channels and handlers. The
// Telegram channel is only added when a bot token is configured; web push
// only when both VAPID keys are.
func New(db *sql.DB, cfg config.Config, logger *slog.Logger) (*Server, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	var m *metrics.Metrics
	if cfg.Metrics {
		m = metrics.New()
	}

	hub := ws.NewHub(logger)

	userStore := store.NewUserStore(db)
	roomStore := store.NewRoomStore(db)
	taskStore := store.NewTaskStore(db)
	completionStore := store.NewCompletionStore(db)
	rewardStore := store.NewRewardStore(db)
	settingsStore := store.NewSettingsStore(db)
	sessionStore := store.NewSessionStore(db)
	pushStore := store.NewPushStore(db)

	eng := engine.New(db,
		engine.WithLocation(loc),
		engine.WithMetrics(m),
		engine.WithLogger(logger),
	)

	channels := []notify.Channel{notify.NewLive(hub)}
	var webPush *notify.WebPush
	if cfg.PushEnabled() {
		webPush = notify.NewWebPush(cfg.VAPIDPublicKey, cfg.VAPIDPrivateKey, cfg.VAPIDSubscriber, pushStore)
		channels = append(channels, webPush)
	}
	if cfg.TelegramToken != "" {
		tg, err := notify.NewTelegram(cfg.TelegramToken)
		if err != nil {
			return nil, fmt.Errorf("telegram: %w", err)
		}
		channels = append(channels, tg)
	}

	dispatcher := notify.NewDispatcher(settingsStore, pushStore, userStore, rewardStore, m, logger, channels...)
	scheduler := notify.NewScheduler(eng, userStore, pushStore, dispatcher, cfg.ReminderHour, logger)

	return &Server{
		db:      db,
		hub:     hub,
		engine:  eng,
		metrics: m,

		authH:      handler.NewAuthHandler(userStore, sessionStore, cfg.SecureCookies, logger.With("component", "auth")),
		userH:      handler.NewUserHandler(userStore, eng, hub, logger.With("component", "user")),
		roomH:      handler.NewRoomHandler(eng, roomStore, taskStore, hub, logger.With("component", "room")),
		taskH:      handler.NewTaskHandler(eng, taskStore, completionStore, dispatcher, hub, logger.With("component", "task")),
		dashboardH: handler.NewDashboardHandler(eng, logger.With("component", "dashboard")),
		rewardH:    handler.NewRewardHandler(eng, rewardStore, dispatcher, hub, logger.With("component", "reward")),
		settingsH:  handler.NewSettingsHandler(eng, settingsStore, hub, logger.With("component", "settings")),
		pushH:      handler.NewPushHandler(pushStore, userStore, webPush, logger.With("component", "push_handler")),

		sessionStore: sessionStore,
		userStore:    userStore,
		rateLimiter:  middleware.NewRateLimiter(),
		dispatcher:   dispatcher,
		scheduler:    scheduler,
		logger:       logger,
	}, nil
}

// Engine exposes the engine for CLI reports.
func (s *Server) Engine() *engine.Engine {
	return s.engine
}

// Start launches background work: the daily reminder scheduler, rate limiter
// cleanup and expired session removal.
func (s *Server) Start(ctx context.Context) {
	ctx, s.cancel = context.WithCancel(ctx)
	s.scheduler.Start(ctx)
	s.rateLimiter.StartCleanup(ctx, 5*time.Minute)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(sessionCleanupInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				n, err := s.sessionStore.DeleteExpired()
				if err != nil {
					s.logger.Error("session cleanup", "error", err)
					continue
				}
				if n > 0 {
					s.logger.Info("expired sessions removed", "count", n)
				}
			}
		}
	}()
}

// Stop ends background work and waits for in-flight notifications.
func (s *Server) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	s.scheduler.Stop()
	s.wg.Wait()
	s.dispatcher.Wait()
}

func (s *Server) Router() http.Handler {
	outerMux := http.NewServeMux()

	// Public routes (no auth required)
	outerMux.HandleFunc("POST /api/login", s.rateLimitedHandler(s.authH.Login))
	outerMux.HandleFunc("GET /health", s.healthHandler)
	if s.metrics != nil {
		outerMux.Handle("GET /metrics", s.metrics.Handler())
	}

	protectedMux := http.NewServeMux()
	s.registerProtectedRoutes(protectedMux)

	authMiddleware := middleware.RequireAuth(s.sessionStore, s.userStore)
	outerMux.Handle("/", authMiddleware(protectedMux))

	return middleware.RequestLogger(s.logger.With("component", "http"))(outerMux)
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	status, code := "ok", http.StatusOK
	if err := s.db.PingContext(r.Context()); err != nil {
		status, code = "unavailable", http.StatusServiceUnavailable
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]any{"status": status, "clients": s.hub.ClientCount()})
}

func (s *Server) rateLimitedHandler(h http.HandlerFunc) http.HandlerFunc {
	keyFunc := func(r *http.Request) string {
		return middleware.RealIP(r)
	}
	rl := middleware.RateLimit(s.rateLimiter, keyFunc, 10, time.Minute)
	return func(w http.ResponseWriter, r *http.Request) {
		rl(http.HandlerFunc(h)).ServeHTTP(w, r)
	}
}

func admin(h http.HandlerFunc) http.Handler {
	return middleware.RequireAdmin(h)
}

func (s *Server) registerProtectedRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/logout", s.authH.Logout)
	mux.HandleFunc("GET /api/me", s.authH.Me)

	mux.HandleFunc("GET /api/dashboard", s.dashboardH.Get)

	// Users
	mux.HandleFunc("GET /api/users", s.userH.List)
	mux.HandleFunc("GET /api/users/{id}", s.userH.Get)
	mux.Handle("POST /api/users", admin(s.userH.Create))
	mux.Handle("PUT /api/users/{id}", admin(s.userH.Update))
	mux.Handle("DELETE /api/users/{id}", admin(s.userH.Delete))
	mux.HandleFunc("POST /api/users/{id}/pin", s.userH.SetPIN)
	mux.Handle("POST /api/users/{id}/coins", admin(s.userH.AdjustCoins))
	mux.HandleFunc("GET /api/users/{id}/achievements", s.userH.Achievements)
	mux.HandleFunc("GET /api/users/{id}/quests", s.userH.Quests)

	// Rooms
	mux.HandleFunc("GET /api/rooms", s.roomH.List)
	mux.HandleFunc("GET /api/rooms/{id}/tasks", s.roomH.Tasks)
	mux.Handle("POST /api/rooms", admin(s.roomH.Create))
	mux.Handle("PUT /api/rooms/order", admin(s.roomH.Reorder))
	mux.Handle("PUT /api/rooms/{id}", admin(s.roomH.Update))
	mux.Handle("DELETE /api/rooms/{id}", admin(s.roomH.Delete))

	// Tasks and completions
	mux.HandleFunc("GET /api/tasks", s.taskH.List)
	mux.HandleFunc("GET /api/tasks/{id}", s.taskH.Get)
	mux.Handle("POST /api/tasks", admin(s.taskH.Create))
	mux.Handle("PUT /api/tasks/{id}", admin(s.taskH.Update))
	mux.Handle("DELETE /api/tasks/{id}", admin(s.taskH.Delete))
	mux.HandleFunc("GET /api/tasks/{id}/assignees/effective", s.taskH.EffectiveAssignees)
	mux.HandleFunc("GET /api/tasks/{id}/can-complete", s.taskH.CanComplete)
	mux.HandleFunc("POST /api/tasks/{id}/complete", s.taskH.Complete)
	mux.HandleFunc("GET /api/completions", s.taskH.ListCompletions)
	mux.HandleFunc("DELETE /api/completions/{id}", s.taskH.CancelCompletion)

	// Rewards
	mux.HandleFunc("GET /api/rewards", s.rewardH.List)
	mux.Handle("POST /api/rewards", admin(s.rewardH.Create))
	mux.Handle("PUT /api/rewards/{id}", admin(s.rewardH.Update))
	mux.Handle("DELETE /api/rewards/{id}", admin(s.rewardH.Delete))
	mux.HandleFunc("POST /api/rewards/{id}/redeem", s.rewardH.Redeem)
	mux.HandleFunc("GET /api/redemptions", s.rewardH.ListRedemptions)
	mux.HandleFunc("DELETE /api/redemptions/{id}", s.rewardH.CancelRedemption)

	// Settings
	mux.HandleFunc("GET /api/settings/vacation", s.settingsH.GetVacation)
	mux.Handle("PUT /api/settings/vacation", admin(s.settingsH.UpdateVacation))
	mux.HandleFunc("GET /api/settings/coins", s.settingsH.GetCoinPolicy)
	mux.Handle("PUT /api/settings/coins", admin(s.settingsH.UpdateCoinPolicy))
	mux.Handle("DELETE /api/settings/coins", admin(s.settingsH.ResetCoinPolicy))
	mux.HandleFunc("GET /api/settings/notifications", s.settingsH.GetNotifications)
	mux.Handle("PUT /api/settings/notifications", admin(s.settingsH.UpdateNotifications))

	// Push notifications
	mux.HandleFunc("POST /api/push/subscribe", s.pushH.Subscribe)
	mux.HandleFunc("DELETE /api/push/subscriptions/{id}", s.pushH.Unsubscribe)
	mux.HandleFunc("GET /api/push/subscriptions", s.pushH.ListSubscriptions)
	mux.HandleFunc("GET /api/push/vapid-key", s.pushH.GetVAPIDKey)
	mux.HandleFunc("GET /api/push/preferences", s.pushH.GetPreferences)
	mux.HandleFunc("PUT /api/push/preferences", s.pushH.UpdatePreferences)
	mux.HandleFunc("POST /api/push/test", s.pushH.TestNotification)

	// WebSocket
	mux.HandleFunc("GET /ws", ws.HandleWebSocket(s.hub, s.logger))
}
