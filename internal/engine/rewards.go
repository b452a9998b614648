package engine

import (
	"context"
	"database/sql"

	"github.com/dukerupert/choreboard/internal/apperr"
	"github.com/dukerupert/choreboard/internal/model"
)

// RequestReward spends a user's coins on an active reward.
func (e *Engine) RequestReward(ctx context.Context, userID, rewardID int64) (*model.RewardRedemption, []Event, error) {
	now := e.Now()

	var red *model.RewardRedemption
	err := e.inTx(ctx, func(tx *sql.Tx) error {
		s := e.bind(tx)

		reward, err := s.rewards.GetByID(rewardID)
		if err != nil {
			return err
		}
		if reward == nil || !reward.Active {
			return apperr.New(apperr.RewardNotFound, "reward %d", rewardID)
		}
		user, err := s.users.GetByID(userID)
		if err != nil {
			return err
		}
		if user == nil {
			return apperr.New(apperr.UserNotFound, "user %d", userID)
		}

		ok, err := s.users.SpendCoins(userID, reward.CoinCost)
		if err != nil {
			return err
		}
		if !ok {
			return apperr.New(apperr.InsufficientCoins, "need %d coins, have %d", reward.CoinCost, user.Coins)
		}
		red, err = s.rewards.CreateRedemption(rewardID, userID, reward.CoinCost, now)
		return err
	})
	if err != nil {
		return nil, nil, err
	}

	e.metrics.RewardRequested()
	e.logger.Info("reward requested", "reward_id", rewardID, "user_id", userID, "coins", red.CoinsSpent)
	events := []Event{{
		Type:         model.NotifTypeRewardRequested,
		UserID:       userID,
		RewardID:     rewardID,
		RedemptionID: red.ID,
	}}
	return red, events, nil
}

// CancelRedemption refunds and deletes a redemption. Admin only.
func (e *Engine) CancelRedemption(ctx context.Context, actorID, redemptionID int64) (*model.RewardRedemption, int, error) {
	if err := e.requireAdmin(actorID); err != nil {
		return nil, 0, err
	}

	var red *model.RewardRedemption
	var balance int
	err := e.inTx(ctx, func(tx *sql.Tx) error {
		s := e.bind(tx)

		var err error
		red, err = s.rewards.GetRedemption(redemptionID)
		if err != nil {
			return err
		}
		if red == nil {
			return apperr.New(apperr.RedemptionNotFound, "redemption %d", redemptionID)
		}
		if balance, err = s.users.AddCoins(red.UserID, red.CoinsSpent); err != nil {
			return err
		}
		return s.rewards.DeleteRedemption(red.ID)
	})
	if err != nil {
		return nil, 0, err
	}

	e.logger.Info("redemption cancelled", "redemption_id", redemptionID, "actor_id", actorID)
	return red, balance, nil
}

// AdjustCoins adds delta to a user's balance, never going below zero. Admin
// only.
func (e *Engine) AdjustCoins(ctx context.Context, actorID, userID int64, delta int) (int, error) {
	if err := e.requireAdmin(actorID); err != nil {
		return 0, err
	}
	user, err := e.users.GetByID(userID)
	if err != nil {
		return 0, err
	}
	if user == nil {
		return 0, apperr.New(apperr.UserNotFound, "user %d", userID)
	}

	balance, err := e.users.AddCoins(userID, delta)
	if err != nil {
		return 0, err
	}
	e.logger.Info("coins adjusted", "user_id", userID, "delta", delta, "balance", balance, "actor_id", actorID)
	return balance, nil
}
