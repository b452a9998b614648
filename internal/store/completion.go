package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/dukerupert/choreboard/internal/model"
)

type CompletionStore struct {
	db DBTX
}

func NewCompletionStore(db DBTX) *CompletionStore {
	return &CompletionStore{db: db}
}

func (s *CompletionStore) WithTx(tx *sql.Tx) *CompletionStore {
	return &CompletionStore{db: tx}
}

func scanCompletion(sc scanner) (*model.TaskCompletion, error) {
	var c model.TaskCompletion
	if err := sc.Scan(&c.ID, &c.TaskID, &c.UserID, &c.CompletedAt, &c.CoinsEarned); err != nil {
		return nil, err
	}
	return &c, nil
}

const completionCols = `id, task_id, user_id, completed_at, coins_earned`

func (s *CompletionStore) Create(taskID, userID int64, at time.Time, coins int) (*model.TaskCompletion, error) {
	result, err := s.db.Exec(
		`INSERT INTO task_completions (task_id, user_id, completed_at, coins_earned) VALUES (?, ?, ?, ?)`,
		taskID, userID, at.UTC(), coins,
	)
	if err != nil {
		return nil, fmt.Errorf("insert completion: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *CompletionStore) GetByID(id int64) (*model.TaskCompletion, error) {
	row := s.db.QueryRow(`SELECT `+completionCols+` FROM task_completions WHERE id = ?`, id)
	c, err := scanCompletion(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get completion: %w", err)
	}
	return c, nil
}

func (s *CompletionStore) Delete(id int64) error {
	_, err := s.db.Exec(`DELETE FROM task_completions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete completion: %w", err)
	}
	return nil
}

// ListForTaskBetween returns a task's completions in [start, end), oldest
// first.
func (s *CompletionStore) ListForTaskBetween(taskID int64, start, end time.Time) ([]model.TaskCompletion, error) {
	return s.list(
		`SELECT `+completionCols+` FROM task_completions
		 WHERE task_id = ? AND completed_at >= ? AND completed_at < ? ORDER BY completed_at ASC, id ASC`,
		taskID, start.UTC(), end.UTC(),
	)
}

// ListByUser returns every completion by a user, oldest first.
func (s *CompletionStore) ListByUser(userID int64) ([]model.TaskCompletion, error) {
	return s.list(
		`SELECT `+completionCols+` FROM task_completions WHERE user_id = ? ORDER BY completed_at ASC, id ASC`,
		userID,
	)
}

// ListRecent returns the newest completions across the house.
func (s *CompletionStore) ListRecent(limit int) ([]model.TaskCompletion, error) {
	return s.list(
		`SELECT `+completionCols+` FROM task_completions ORDER BY completed_at DESC, id DESC LIMIT ?`,
		limit,
	)
}

// ListBefore returns every completion strictly before t, oldest first.
func (s *CompletionStore) ListBefore(t time.Time) ([]model.TaskCompletion, error) {
	return s.list(
		`SELECT `+completionCols+` FROM task_completions WHERE completed_at < ? ORDER BY completed_at ASC, id ASC`,
		t.UTC(),
	)
}

// Latest returns the newest remaining completion time for a task, or nil.
func (s *CompletionStore) Latest(taskID int64) (*time.Time, error) {
	row := s.db.QueryRow(
		`SELECT `+completionCols+` FROM task_completions WHERE task_id = ? ORDER BY completed_at DESC, id DESC LIMIT 1`,
		taskID,
	)
	c, err := scanCompletion(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("latest completion: %w", err)
	}
	return &c.CompletedAt, nil
}

func (s *CompletionStore) list(query string, args ...any) ([]model.TaskCompletion, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list completions: %w", err)
	}
	defer rows.Close()

	var out []model.TaskCompletion
	for rows.Next() {
		c, err := scanCompletion(rows)
		if err != nil {
			return nil, fmt.Errorf("scan completion: %w", err)
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}
