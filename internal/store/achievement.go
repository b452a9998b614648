package store

import (
	"fmt"
	"time"
)

// AchievementStore records which unlocks have been announced. It never
// decides eligibility.
type AchievementStore struct {
	db DBTX
}

func NewAchievementStore(db DBTX) *AchievementStore {
	return &AchievementStore{db: db}
}

// MarkNotified records that userID was told about achievementID. It reports
// true only the first time.
func (s *AchievementStore) MarkNotified(userID int64, achievementID string) (bool, error) {
	result, err := s.db.Exec(
		`INSERT OR IGNORE INTO achievement_notifications (user_id, achievement_id, notified_at) VALUES (?, ?, ?)`,
		userID, achievementID, time.Now().UTC(),
	)
	if err != nil {
		return false, fmt.Errorf("mark achievement notified: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n > 0, nil
}

func (s *AchievementStore) ListNotified(userID int64) ([]string, error) {
	rows, err := s.db.Query(
		`SELECT achievement_id FROM achievement_notifications WHERE user_id = ? ORDER BY notified_at ASC, achievement_id ASC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list notified achievements: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan achievement id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
