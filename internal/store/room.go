package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/dukerupert/choreboard/internal/model"
)

type RoomStore struct {
	db DBTX
}

func NewRoomStore(db DBTX) *RoomStore {
	return &RoomStore{db: db}
}

func (s *RoomStore) WithTx(tx *sql.Tx) *RoomStore {
	return &RoomStore{db: tx}
}

func scanRoom(sc scanner) (*model.Room, error) {
	var r model.Room
	var assigned sql.NullInt64
	err := sc.Scan(&r.ID, &r.Name, &r.Icon, &r.Color, &assigned, &r.SortOrder, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		return nil, err
	}
	r.AssignedUserID = int64Ptr(assigned)
	return &r, nil
}

const roomCols = `id, name, icon, color, assigned_user_id, sort_order, created_at, updated_at`

func (s *RoomStore) List() ([]model.Room, error) {
	rows, err := s.db.Query(`SELECT ` + roomCols + ` FROM rooms ORDER BY sort_order ASC, name ASC`)
	if err != nil {
		return nil, fmt.Errorf("list rooms: %w", err)
	}
	defer rows.Close()

	var rooms []model.Room
	for rows.Next() {
		r, err := scanRoom(rows)
		if err != nil {
			return nil, fmt.Errorf("scan room: %w", err)
		}
		rooms = append(rooms, *r)
	}
	return rooms, rows.Err()
}

func (s *RoomStore) GetByID(id int64) (*model.Room, error) {
	row := s.db.QueryRow(`SELECT `+roomCols+` FROM rooms WHERE id = ?`, id)
	r, err := scanRoom(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get room: %w", err)
	}
	return r, nil
}

func (s *RoomStore) Create(name, icon, color string, assignedUserID *int64, sortOrder int) (*model.Room, error) {
	result, err := s.db.Exec(
		`INSERT INTO rooms (name, icon, color, assigned_user_id, sort_order) VALUES (?, ?, ?, ?, ?)`,
		name, icon, color, nullInt64(assignedUserID), sortOrder,
	)
	if err != nil {
		return nil, fmt.Errorf("insert room: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *RoomStore) Update(id int64, name, icon, color string, assignedUserID *int64, sortOrder int) (*model.Room, error) {
	_, err := s.db.Exec(
		`UPDATE rooms SET name = ?, icon = ?, color = ?, assigned_user_id = ?, sort_order = ?, updated_at = ? WHERE id = ?`,
		name, icon, color, nullInt64(assignedUserID), sortOrder, time.Now().UTC(), id,
	)
	if err != nil {
		return nil, fmt.Errorf("update room: %w", err)
	}
	return s.GetByID(id)
}

func (s *RoomStore) Delete(id int64) error {
	_, err := s.db.Exec(`DELETE FROM rooms WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete room: %w", err)
	}
	return nil
}

// UpdateSortOrder assigns sort positions in the order of ids. It must be
// called on a store bound to a transaction.
func (s *RoomStore) UpdateSortOrder(ids []int64) error {
	for i, id := range ids {
		if _, err := s.db.Exec(`UPDATE rooms SET sort_order = ? WHERE id = ?`, i, id); err != nil {
			return fmt.Errorf("update sort order: %w", err)
		}
	}
	return nil
}
