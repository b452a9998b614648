package store

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/dukerupert/choreboard/internal/model"
)

func setupSessionTest(t *testing.T) (*SessionStore, int64) {
	t.Helper()
	db := setupTestDB(t)
	u := mustUser(t, NewUserStore(db), "Alice", model.RoleAdmin)
	return NewSessionStore(db), u.ID
}

func TestSessionCreate(t *testing.T) {
	ss, uid := setupSessionTest(t)

	sess, err := ss.Create(uid)
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	if _, err := uuid.Parse(sess.Token); err != nil {
		t.Errorf("token %q is not a uuid: %v", sess.Token, err)
	}
	if sess.UserID != uid {
		t.Errorf("user_id = %d, want %d", sess.UserID, uid)
	}
	if time.Until(sess.ExpiresAt) < SessionTTL-time.Minute {
		t.Errorf("expires_at = %v, too soon", sess.ExpiresAt)
	}
}

func TestSessionGetByToken(t *testing.T) {
	ss, uid := setupSessionTest(t)
	created, _ := ss.Create(uid)

	sess, err := ss.GetByToken(created.Token)
	if err != nil {
		t.Fatalf("get by token: %v", err)
	}
	if sess == nil {
		t.Fatal("expected session, got nil")
	}
	if sess.ID != created.ID {
		t.Errorf("id = %d, want %d", sess.ID, created.ID)
	}
}

func TestSessionGetByTokenNotFound(t *testing.T) {
	ss, _ := setupSessionTest(t)

	sess, err := ss.GetByToken("nonexistent")
	if err != nil {
		t.Fatalf("get by token: %v", err)
	}
	if sess != nil {
		t.Errorf("expected nil, got %+v", sess)
	}
}

func TestSessionExpired(t *testing.T) {
	ss, uid := setupSessionTest(t)
	created, _ := ss.Create(uid)

	ss.db.Exec(`UPDATE sessions SET expires_at = ? WHERE id = ?`, time.Now().UTC().Add(-time.Minute), created.ID)

	sess, err := ss.GetByToken(created.Token)
	if err != nil {
		t.Fatalf("get by token: %v", err)
	}
	if sess != nil {
		t.Error("expected expired session to be hidden")
	}

	n, err := ss.DeleteExpired()
	if err != nil {
		t.Fatalf("delete expired: %v", err)
	}
	if n != 1 {
		t.Errorf("deleted = %d, want 1", n)
	}
}

func TestSessionDelete(t *testing.T) {
	ss, uid := setupSessionTest(t)
	a, _ := ss.Create(uid)
	b, _ := ss.Create(uid)

	if err := ss.Delete(a.Token); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if sess, _ := ss.GetByToken(a.Token); sess != nil {
		t.Error("expected session to be deleted")
	}

	if err := ss.DeleteByUserID(uid); err != nil {
		t.Fatalf("delete by user: %v", err)
	}
	if sess, _ := ss.GetByToken(b.Token); sess != nil {
		t.Error("expected all user sessions to be deleted")
	}
}
