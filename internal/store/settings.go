package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/dukerupert/choreboard/internal/coins"
	"github.com/dukerupert/choreboard/internal/model"
)

const (
	keyVacationActive = "vacation_active"
	keyVacationStart  = "vacation_start"
	keyVacationEnd    = "vacation_end"
	keyCoinPolicy     = "coin_policy"
	notifyKeyPrefix   = "notify_"
)

type SettingsStore struct {
	db DBTX
}

func NewSettingsStore(db DBTX) *SettingsStore {
	return &SettingsStore{db: db}
}

func (s *SettingsStore) WithTx(tx *sql.Tx) *SettingsStore {
	return &SettingsStore{db: tx}
}

// Get returns a setting's value, or "" when the key is absent.
func (s *SettingsStore) Get(key string) (string, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("get setting %q: %w", key, err)
	}
	return value, nil
}

func (s *SettingsStore) GetAll() (map[string]string, error) {
	rows, err := s.db.Query(`SELECT key, value FROM settings ORDER BY key`)
	if err != nil {
		return nil, fmt.Errorf("get all settings: %w", err)
	}
	defer rows.Close()

	settings := make(map[string]string)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("scan setting: %w", err)
		}
		settings[key] = value
	}
	return settings, rows.Err()
}

func (s *SettingsStore) Set(key, value string) error {
	_, err := s.db.Exec(
		`INSERT INTO settings (key, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("set setting %q: %w", key, err)
	}
	return nil
}

func (s *SettingsStore) Delete(key string) error {
	if _, err := s.db.Exec(`DELETE FROM settings WHERE key = ?`, key); err != nil {
		return fmt.Errorf("delete setting %q: %w", key, err)
	}
	return nil
}

// --- Vacation ---

// Vacation loads the vacation window. An active vacation whose end date has
// passed at now is switched off and saved; its dates are kept so past gap
// days stay excused. Dates are interpreted in now's location.
func (s *SettingsStore) Vacation(now time.Time) (model.Vacation, error) {
	all, err := s.GetAll()
	if err != nil {
		return model.Vacation{}, err
	}

	v := model.Vacation{Active: all[keyVacationActive] == "true"}
	if v.Start, err = parseDate(all[keyVacationStart], now.Location()); err != nil {
		return model.Vacation{}, fmt.Errorf("parse vacation start: %w", err)
	}
	if v.End, err = parseDate(all[keyVacationEnd], now.Location()); err != nil {
		return model.Vacation{}, fmt.Errorf("parse vacation end: %w", err)
	}

	if v.Active && v.End != nil && !v.ActiveAt(now) && now.After(*v.End) {
		v.Active = false
		if err := s.Set(keyVacationActive, "false"); err != nil {
			return model.Vacation{}, err
		}
	}
	return v, nil
}

func (s *SettingsStore) SetVacation(v model.Vacation) error {
	if err := s.Set(keyVacationActive, strconv.FormatBool(v.Active)); err != nil {
		return err
	}
	if err := s.Set(keyVacationStart, formatDate(v.Start)); err != nil {
		return err
	}
	return s.Set(keyVacationEnd, formatDate(v.End))
}

// parseDate accepts RFC 3339 instants and bare YYYY-MM-DD dates.
func parseDate(value string, loc *time.Location) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		t = t.In(loc)
		return &t, nil
	}
	t, err := time.ParseInLocation("2006-01-02", value, loc)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(time.RFC3339)
}

// --- Coin policy ---

// CoinPolicy returns the saved effort table, or the default when none is
// saved or the saved value is unreadable.
func (s *SettingsStore) CoinPolicy() (coins.Policy, error) {
	raw, err := s.Get(keyCoinPolicy)
	if err != nil {
		return nil, err
	}
	if raw == "" {
		return coins.Default(), nil
	}
	var p coins.Policy
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return coins.Default(), nil
	}
	return p, nil
}

func (s *SettingsStore) SetCoinPolicy(p coins.Policy) error {
	b, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal coin policy: %w", err)
	}
	return s.Set(keyCoinPolicy, string(b))
}

// ResetCoinPolicy drops any saved table so the default applies.
func (s *SettingsStore) ResetCoinPolicy() error {
	return s.Delete(keyCoinPolicy)
}

// --- Notification toggles ---

// NotificationTypeEnabled reports the household-wide switch for a
// notification type. Missing switches default to on.
func (s *SettingsStore) NotificationTypeEnabled(notifType string) (bool, error) {
	v, err := s.Get(notifyKeyPrefix + notifType)
	if err != nil {
		return false, err
	}
	return v != "false", nil
}

func (s *SettingsStore) SetNotificationTypeEnabled(notifType string, enabled bool) error {
	return s.Set(notifyKeyPrefix+notifType, strconv.FormatBool(enabled))
}
