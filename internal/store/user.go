package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/dukerupert/choreboard/internal/model"
)

type UserStore struct {
	db DBTX
}

func NewUserStore(db DBTX) *UserStore {
	return &UserStore{db: db}
}

// WithTx returns a UserStore bound to tx.
func (s *UserStore) WithTx(tx *sql.Tx) *UserStore {
	return &UserStore{db: tx}
}

func scanUser(sc scanner) (*model.User, error) {
	var u model.User
	var pin sql.NullString
	var chatID sql.NullInt64
	var lastActive sql.NullString

	err := sc.Scan(
		&u.ID, &u.Name, &u.Role, &u.Color, &u.AvatarEmoji, &pin, &chatID,
		&u.Coins, &u.CurrentStreak, &u.LongestStreak, &lastActive,
		&u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	u.HasPIN = pin.Valid && pin.String != ""
	u.TelegramChatID = int64Ptr(chatID)
	u.LastActiveDate = lastActive.String
	return &u, nil
}

const userCols = `id, name, role, color, avatar_emoji, pin, telegram_chat_id, coins, current_streak, longest_streak, last_active_date, created_at, updated_at`

func (s *UserStore) Create(name string, role model.Role, color, avatarEmoji string) (*model.User, error) {
	result, err := s.db.Exec(
		`INSERT INTO users (name, role, color, avatar_emoji) VALUES (?, ?, ?, ?)`,
		name, role, color, avatarEmoji,
	)
	if err != nil {
		return nil, fmt.Errorf("insert user: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *UserStore) GetByID(id int64) (*model.User, error) {
	row := s.db.QueryRow(`SELECT `+userCols+` FROM users WHERE id = ?`, id)
	u, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

func (s *UserStore) GetByName(name string) (*model.User, error) {
	row := s.db.QueryRow(`SELECT `+userCols+` FROM users WHERE name = ?`, name)
	u, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user by name: %w", err)
	}
	return u, nil
}

func (s *UserStore) List() ([]model.User, error) {
	rows, err := s.db.Query(`SELECT ` + userCols + ` FROM users ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

// ListIDsByRole returns the IDs of every user with role, ascending.
func (s *UserStore) ListIDsByRole(role model.Role) ([]int64, error) {
	rows, err := s.db.Query(`SELECT id FROM users WHERE role = ? ORDER BY id ASC`, role)
	if err != nil {
		return nil, fmt.Errorf("list user ids by role: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan user id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (s *UserStore) Update(id int64, name string, role model.Role, color, avatarEmoji string, telegramChatID *int64) (*model.User, error) {
	_, err := s.db.Exec(
		`UPDATE users SET name = ?, role = ?, color = ?, avatar_emoji = ?, telegram_chat_id = ?, updated_at = ? WHERE id = ?`,
		name, role, color, avatarEmoji, nullInt64(telegramChatID), time.Now().UTC(), id,
	)
	if err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}
	return s.GetByID(id)
}

func (s *UserStore) Delete(id int64) error {
	_, err := s.db.Exec(`DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	return nil
}

// SetPIN stores a bcrypt hash. An empty hash clears the PIN.
func (s *UserStore) SetPIN(id int64, hash string) error {
	var v sql.NullString
	if hash != "" {
		v = sql.NullString{String: hash, Valid: true}
	}
	_, err := s.db.Exec(`UPDATE users SET pin = ?, updated_at = ? WHERE id = ?`, v, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("set pin: %w", err)
	}
	return nil
}

// PINHash returns the stored hash, or "" when no PIN is set.
func (s *UserStore) PINHash(id int64) (string, error) {
	var pin sql.NullString
	err := s.db.QueryRow(`SELECT pin FROM users WHERE id = ?`, id).Scan(&pin)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("get pin: %w", err)
	}
	return pin.String, nil
}

// AddCoins adjusts a balance by delta and returns the new balance. The
// balance never drops below zero.
func (s *UserStore) AddCoins(id int64, delta int) (int, error) {
	_, err := s.db.Exec(
		`UPDATE users SET coins = MAX(0, coins + ?), updated_at = ? WHERE id = ?`,
		delta, time.Now().UTC(), id,
	)
	if err != nil {
		return 0, fmt.Errorf("add coins: %w", err)
	}
	var coins int
	if err := s.db.QueryRow(`SELECT coins FROM users WHERE id = ?`, id).Scan(&coins); err != nil {
		return 0, fmt.Errorf("read coins: %w", err)
	}
	return coins, nil
}

// SpendCoins deducts amount only if the balance covers it. It reports
// whether the deduction happened.
func (s *UserStore) SpendCoins(id int64, amount int) (bool, error) {
	result, err := s.db.Exec(
		`UPDATE users SET coins = coins - ?, updated_at = ? WHERE id = ? AND coins >= ?`,
		amount, time.Now().UTC(), id, amount,
	)
	if err != nil {
		return false, fmt.Errorf("spend coins: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n > 0, nil
}

func (s *UserStore) UpdateStreak(id int64, current, longest int, lastActive string) error {
	var la sql.NullString
	if lastActive != "" {
		la = sql.NullString{String: lastActive, Valid: true}
	}
	_, err := s.db.Exec(
		`UPDATE users SET current_streak = ?, longest_streak = ?, last_active_date = ?, updated_at = ? WHERE id = ?`,
		current, longest, la, time.Now().UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("update streak: %w", err)
	}
	return nil
}
