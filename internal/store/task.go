package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/dukerupert/choreboard/internal/model"
)

type TaskStore struct {
	db DBTX
}

func NewTaskStore(db DBTX) *TaskStore {
	return &TaskStore{db: db}
}

func (s *TaskStore) WithTx(tx *sql.Tx) *TaskStore {
	return &TaskStore{db: tx}
}

func scanTask(sc scanner) (*model.Task, error) {
	var t model.Task
	var last sql.NullTime
	var seasonal, children int

	err := sc.Scan(
		&t.ID, &t.RoomID, &t.Name, &t.Notes, &t.FrequencyDays, &t.Effort,
		&seasonal, &last, &t.AssignmentMode, &children,
		&t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	t.IsSeasonal = seasonal != 0
	t.AssignedToChildren = children != 0
	if last.Valid {
		v := last.Time
		t.LastCompletedAt = &v
	}
	return &t, nil
}

const taskCols = `id, room_id, name, notes, frequency_days, effort, is_seasonal, last_completed_at, assignment_mode, assigned_to_children, created_at, updated_at`

// Create inserts a task. A zero CreatedAt is set to the current time.
func (s *TaskStore) Create(t model.Task) (*model.Task, error) {
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now()
	}
	result, err := s.db.Exec(
		`INSERT INTO tasks (room_id, name, notes, frequency_days, effort, is_seasonal, assignment_mode, assigned_to_children, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.RoomID, t.Name, t.Notes, t.FrequencyDays, t.Effort, boolInt(t.IsSeasonal),
		t.AssignmentMode, boolInt(t.AssignedToChildren), t.CreatedAt.UTC(), t.CreatedAt.UTC(),
	)
	if err != nil {
		return nil, fmt.Errorf("insert task: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *TaskStore) GetByID(id int64) (*model.Task, error) {
	row := s.db.QueryRow(`SELECT `+taskCols+` FROM tasks WHERE id = ?`, id)
	t, err := scanTask(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get task: %w", err)
	}
	return t, nil
}

func (s *TaskStore) List() ([]model.Task, error) {
	return s.list(`SELECT ` + taskCols + ` FROM tasks ORDER BY room_id ASC, name ASC`)
}

func (s *TaskStore) ListByRoom(roomID int64) ([]model.Task, error) {
	return s.list(`SELECT `+taskCols+` FROM tasks WHERE room_id = ? ORDER BY name ASC`, roomID)
}

func (s *TaskStore) list(query string, args ...any) ([]model.Task, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	var tasks []model.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, *t)
	}
	return tasks, rows.Err()
}

// Update rewrites a task's editable fields. last_completed_at is left alone.
func (s *TaskStore) Update(t model.Task) (*model.Task, error) {
	_, err := s.db.Exec(
		`UPDATE tasks SET room_id = ?, name = ?, notes = ?, frequency_days = ?, effort = ?, is_seasonal = ?,
		 assignment_mode = ?, assigned_to_children = ?, updated_at = ? WHERE id = ?`,
		t.RoomID, t.Name, t.Notes, t.FrequencyDays, t.Effort, boolInt(t.IsSeasonal),
		t.AssignmentMode, boolInt(t.AssignedToChildren), time.Now().UTC(), t.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("update task: %w", err)
	}
	return s.GetByID(t.ID)
}

func (s *TaskStore) Delete(id int64) error {
	_, err := s.db.Exec(`DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	return nil
}

// SetLastCompletedAt moves the decay anchor. nil clears it.
func (s *TaskStore) SetLastCompletedAt(id int64, at *time.Time) error {
	var v sql.NullTime
	if at != nil {
		v = sql.NullTime{Time: at.UTC(), Valid: true}
	}
	_, err := s.db.Exec(`UPDATE tasks SET last_completed_at = ? WHERE id = ?`, v, id)
	if err != nil {
		return fmt.Errorf("set last completed: %w", err)
	}
	return nil
}

// --- Assignees ---

func (s *TaskStore) ListAssignees(taskID int64) ([]model.TaskAssignee, error) {
	rows, err := s.db.Query(
		`SELECT task_id, user_id, coin_percentage FROM task_assignees WHERE task_id = ? ORDER BY user_id ASC`,
		taskID,
	)
	if err != nil {
		return nil, fmt.Errorf("list assignees: %w", err)
	}
	defer rows.Close()
	return scanAssignees(rows)
}

// AllAssignees returns every assignee row keyed by task ID.
func (s *TaskStore) AllAssignees() (map[int64][]model.TaskAssignee, error) {
	rows, err := s.db.Query(`SELECT task_id, user_id, coin_percentage FROM task_assignees ORDER BY task_id ASC, user_id ASC`)
	if err != nil {
		return nil, fmt.Errorf("list all assignees: %w", err)
	}
	defer rows.Close()

	list, err := scanAssignees(rows)
	if err != nil {
		return nil, err
	}
	out := make(map[int64][]model.TaskAssignee)
	for _, a := range list {
		out[a.TaskID] = append(out[a.TaskID], a)
	}
	return out, nil
}

// ReplaceAssignees swaps a task's assignee list. Callers that need atomicity
// use a store bound to a transaction.
func (s *TaskStore) ReplaceAssignees(taskID int64, assignees []model.TaskAssignee) error {
	if _, err := s.db.Exec(`DELETE FROM task_assignees WHERE task_id = ?`, taskID); err != nil {
		return fmt.Errorf("clear assignees: %w", err)
	}
	for _, a := range assignees {
		_, err := s.db.Exec(
			`INSERT INTO task_assignees (task_id, user_id, coin_percentage) VALUES (?, ?, ?)`,
			taskID, a.UserID, a.CoinPercentage,
		)
		if err != nil {
			return fmt.Errorf("insert assignee: %w", err)
		}
	}
	return nil
}

func scanAssignees(rows *sql.Rows) ([]model.TaskAssignee, error) {
	var out []model.TaskAssignee
	for rows.Next() {
		var a model.TaskAssignee
		if err := rows.Scan(&a.TaskID, &a.UserID, &a.CoinPercentage); err != nil {
			return nil, fmt.Errorf("scan assignee: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
