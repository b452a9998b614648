package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/dukerupert/choreboard/internal/model"
)

type RewardStore struct {
	db DBTX
}

func NewRewardStore(db DBTX) *RewardStore {
	return &RewardStore{db: db}
}

func (s *RewardStore) WithTx(tx *sql.Tx) *RewardStore {
	return &RewardStore{db: tx}
}

// --- Reward methods ---

func scanReward(sc scanner) (*model.Reward, error) {
	var r model.Reward
	var active int

	err := sc.Scan(&r.ID, &r.Title, &r.Description, &r.CoinCost, &active, &r.CreatedAt)
	if err != nil {
		return nil, err
	}

	r.Active = active != 0
	return &r, nil
}

const rewardCols = `id, title, description, coin_cost, active, created_at`

func (s *RewardStore) Create(title, description string, coinCost int, active bool) (*model.Reward, error) {
	result, err := s.db.Exec(
		`INSERT INTO rewards (title, description, coin_cost, active) VALUES (?, ?, ?, ?)`,
		title, description, coinCost, boolInt(active),
	)
	if err != nil {
		return nil, fmt.Errorf("insert reward: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *RewardStore) GetByID(id int64) (*model.Reward, error) {
	row := s.db.QueryRow(`SELECT `+rewardCols+` FROM rewards WHERE id = ?`, id)
	r, err := scanReward(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get reward: %w", err)
	}
	return r, nil
}

// List returns all rewards, active first, then by title. With activeOnly set
// inactive rewards are left out.
func (s *RewardStore) List(activeOnly bool) ([]model.Reward, error) {
	query := `SELECT ` + rewardCols + ` FROM rewards ORDER BY active DESC, title ASC`
	if activeOnly {
		query = `SELECT ` + rewardCols + ` FROM rewards WHERE active = 1 ORDER BY title ASC`
	}
	rows, err := s.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("list rewards: %w", err)
	}
	defer rows.Close()

	var rewards []model.Reward
	for rows.Next() {
		r, err := scanReward(rows)
		if err != nil {
			return nil, fmt.Errorf("scan reward: %w", err)
		}
		rewards = append(rewards, *r)
	}
	return rewards, rows.Err()
}

func (s *RewardStore) Update(id int64, title, description string, coinCost int, active bool) (*model.Reward, error) {
	_, err := s.db.Exec(
		`UPDATE rewards SET title = ?, description = ?, coin_cost = ?, active = ? WHERE id = ?`,
		title, description, coinCost, boolInt(active), id,
	)
	if err != nil {
		return nil, fmt.Errorf("update reward: %w", err)
	}
	return s.GetByID(id)
}

func (s *RewardStore) Delete(id int64) error {
	_, err := s.db.Exec(`DELETE FROM rewards WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete reward: %w", err)
	}
	return nil
}

// --- Redemption methods ---

func scanRedemption(sc scanner) (*model.RewardRedemption, error) {
	var r model.RewardRedemption
	if err := sc.Scan(&r.ID, &r.RewardID, &r.UserID, &r.CoinsSpent, &r.RequestedAt); err != nil {
		return nil, err
	}
	return &r, nil
}

const redemptionCols = `id, reward_id, user_id, coins_spent, requested_at`

func (s *RewardStore) CreateRedemption(rewardID, userID int64, coinsSpent int, at time.Time) (*model.RewardRedemption, error) {
	result, err := s.db.Exec(
		`INSERT INTO reward_redemptions (reward_id, user_id, coins_spent, requested_at) VALUES (?, ?, ?, ?)`,
		rewardID, userID, coinsSpent, at.UTC(),
	)
	if err != nil {
		return nil, fmt.Errorf("insert redemption: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetRedemption(id)
}

func (s *RewardStore) GetRedemption(id int64) (*model.RewardRedemption, error) {
	row := s.db.QueryRow(`SELECT `+redemptionCols+` FROM reward_redemptions WHERE id = ?`, id)
	r, err := scanRedemption(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get redemption: %w", err)
	}
	return r, nil
}

// ListRedemptions returns redemptions newest first, optionally for a single
// user.
func (s *RewardStore) ListRedemptions(userID *int64) ([]model.RewardRedemption, error) {
	query := `SELECT ` + redemptionCols + ` FROM reward_redemptions ORDER BY requested_at DESC, id DESC`
	var args []any
	if userID != nil {
		query = `SELECT ` + redemptionCols + ` FROM reward_redemptions WHERE user_id = ? ORDER BY requested_at DESC, id DESC`
		args = append(args, *userID)
	}
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list redemptions: %w", err)
	}
	defer rows.Close()

	var redemptions []model.RewardRedemption
	for rows.Next() {
		r, err := scanRedemption(rows)
		if err != nil {
			return nil, fmt.Errorf("scan redemption: %w", err)
		}
		redemptions = append(redemptions, *r)
	}
	return redemptions, rows.Err()
}

func (s *RewardStore) DeleteRedemption(id int64) error {
	_, err := s.db.Exec(`DELETE FROM reward_redemptions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete redemption: %w", err)
	}
	return nil
}
