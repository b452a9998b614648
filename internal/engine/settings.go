package engine

import (
	"context"
	"time"

	"github.com/dukerupert/choreboard/internal/apperr"
	"github.com/dukerupert/choreboard/internal/coins"
	"github.com/dukerupert/choreboard/internal/health"
	"github.com/dukerupert/choreboard/internal/model"
)

// SetVacation turns vacation on or off. Turning it on starts the pause now
// and optionally schedules an end date. Turning it off closes the window at
// today so the paused days stay excused for streaks.
func (e *Engine) SetVacation(ctx context.Context, active bool, end *time.Time) (model.Vacation, error) {
	now := e.Now()
	current, err := e.settings.Vacation(now)
	if err != nil {
		return model.Vacation{}, err
	}

	var v model.Vacation
	if active {
		start := now
		if current.ActiveAt(now) && current.Start != nil {
			start = *current.Start
		}
		if end != nil {
			d := health.StartOfDay(end.In(e.loc))
			if d.Before(health.StartOfDay(now)) {
				return model.Vacation{}, apperr.New(apperr.InvalidInput, "vacation end date is in the past")
			}
			end = &d
		}
		v = model.Vacation{Active: true, Start: &start, End: end}
	} else {
		v = current
		if current.ActiveAt(now) {
			today := health.StartOfDay(now)
			v.End = &today
		}
		v.Active = false
	}

	if err := e.settings.SetVacation(v); err != nil {
		return model.Vacation{}, err
	}
	e.logger.Info("vacation updated", "active", v.Active)
	return v, nil
}

func (e *Engine) CoinPolicy(ctx context.Context) (coins.Policy, error) {
	return e.settings.CoinPolicy()
}

func (e *Engine) SetCoinPolicy(ctx context.Context, p coins.Policy) (coins.Policy, error) {
	if err := p.Validate(); err != nil {
		return nil, apperr.New(apperr.InvalidInput, "%v", err)
	}
	if err := e.settings.SetCoinPolicy(p); err != nil {
		return nil, err
	}
	return e.settings.CoinPolicy()
}

func (e *Engine) ResetCoinPolicy(ctx context.Context) (coins.Policy, error) {
	if err := e.settings.ResetCoinPolicy(); err != nil {
		return nil, err
	}
	return coins.Default(), nil
}
