package notify

import (
	"context"

	"github.com/dukerupert/choreboard/internal/model"
	"github.com/dukerupert/choreboard/internal/websocket"
)

// Live shows notifications in open browser tabs through the websocket hub.
type Live struct {
	hub *websocket.Hub
}

func NewLive(hub *websocket.Hub) *Live {
	return &Live{hub: hub}
}

func (l *Live) Name() string { return "live" }

func (l *Live) Send(ctx context.Context, user model.User, msg Message) error {
	l.hub.SendToUser(user.ID, websocket.NewMessage("notification", msg.Type, 0, map[string]any{
		"title": msg.Title,
		"body":  msg.Body,
		"url":   msg.URL,
	}))
	return nil
}
