package engine

import (
	"context"
	"database/sql"
	"strings"

	"github.com/dukerupert/choreboard/internal/apperr"
	"github.com/dukerupert/choreboard/internal/model"
)

type RoomInput struct {
	Name           string `json:"name"`
	Icon           string `json:"icon"`
	Color          string `json:"color"`
	AssignedUserID *int64 `json:"assigned_user_id"`
	SortOrder      int    `json:"sort_order"`
}

// SaveRoom creates a room when id is zero and updates it otherwise. An
// assigned user takes over every task in the room.
func (e *Engine) SaveRoom(ctx context.Context, id int64, in RoomInput) (*model.Room, error) {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return nil, apperr.New(apperr.InvalidInput, "name is required")
	}

	var room *model.Room
	err := e.inTx(ctx, func(tx *sql.Tx) error {
		s := e.bind(tx)
		if in.AssignedUserID != nil {
			u, err := s.users.GetByID(*in.AssignedUserID)
			if err != nil {
				return err
			}
			if u == nil {
				return apperr.New(apperr.UserNotFound, "user %d", *in.AssignedUserID)
			}
		}

		var err error
		if id == 0 {
			room, err = s.rooms.Create(in.Name, in.Icon, in.Color, in.AssignedUserID, in.SortOrder)
			return err
		}
		existing, err := s.rooms.GetByID(id)
		if err != nil {
			return err
		}
		if existing == nil {
			return apperr.New(apperr.RoomNotFound, "room %d", id)
		}
		room, err = s.rooms.Update(id, in.Name, in.Icon, in.Color, in.AssignedUserID, in.SortOrder)
		return err
	})
	if err != nil {
		return nil, err
	}
	return room, nil
}

// ReorderRooms sets the display order to the order of ids.
func (e *Engine) ReorderRooms(ctx context.Context, ids []int64) error {
	return e.inTx(ctx, func(tx *sql.Tx) error {
		s := e.bind(tx)
		for _, id := range ids {
			r, err := s.rooms.GetByID(id)
			if err != nil {
				return err
			}
			if r == nil {
				return apperr.New(apperr.RoomNotFound, "room %d", id)
			}
		}
		return s.rooms.UpdateSortOrder(ids)
	})
}

// Rooms lists rooms with their current health.
func (e *Engine) Rooms(ctx context.Context) ([]RoomSummary, error) {
	return e.roomHealth(e.Now())
}
