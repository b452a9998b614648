package store

import (
	"database/sql"
	"testing"

	"github.com/dukerupert/choreboard/internal/database"
	"github.com/dukerupert/choreboard/internal/model"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func mustUser(t *testing.T, us *UserStore, name string, role model.Role) *model.User {
	t.Helper()
	u, err := us.Create(name, role, "#888888", "")
	if err != nil {
		t.Fatalf("create user %s: %v", name, err)
	}
	return u
}

func firstRoomID(t *testing.T, db *sql.DB) int64 {
	t.Helper()
	var id int64
	if err := db.QueryRow(`SELECT id FROM rooms ORDER BY sort_order LIMIT 1`).Scan(&id); err != nil {
		t.Fatalf("first room: %v", err)
	}
	return id
}
