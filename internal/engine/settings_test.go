package engine

import (
	"context"
	"testing"
	"time"

	"github.com/dukerupert/choreboard/internal/apperr"
	"github.com/dukerupert/choreboard/internal/coins"
)

func TestSetVacation(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	past := day1.AddDate(0, 0, -1)
	_, err := f.engine.SetVacation(ctx, true, &past)
	wantReason(t, err, apperr.InvalidInput)

	end := day1.AddDate(0, 0, 5)
	v, err := f.engine.SetVacation(ctx, true, &end)
	if err != nil {
		t.Fatalf("set vacation: %v", err)
	}
	if !v.Active || v.Start == nil || !v.Start.Equal(day1) {
		t.Errorf("vacation = %+v", v)
	}

	// Re-enabling keeps the original start.
	f.clock.Advance(24 * time.Hour)
	v, err = f.engine.SetVacation(ctx, true, &end)
	if err != nil {
		t.Fatalf("set vacation: %v", err)
	}
	if !v.Start.Equal(day1) {
		t.Errorf("start = %v, want %v", v.Start, day1)
	}

	v, err = f.engine.SetVacation(ctx, false, nil)
	if err != nil {
		t.Fatalf("end vacation: %v", err)
	}
	today := time.Date(2024, 6, 13, 0, 0, 0, 0, time.UTC)
	if v.Active || v.End == nil || !v.End.Equal(today) {
		t.Errorf("vacation = %+v, want ended today", v)
	}

	got, err := f.engine.Vacation(ctx)
	if err != nil {
		t.Fatalf("vacation: %v", err)
	}
	if got.Active {
		t.Error("vacation still active after turning off")
	}
}

func TestVacationAutoExpires(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	end := day1.AddDate(0, 0, 1)
	if _, err := f.engine.SetVacation(ctx, true, &end); err != nil {
		t.Fatalf("set vacation: %v", err)
	}
	f.clock.Advance(3 * 24 * time.Hour)

	v, err := f.engine.Vacation(ctx)
	if err != nil {
		t.Fatalf("vacation: %v", err)
	}
	if v.Active {
		t.Errorf("vacation = %+v, want expired", v)
	}
}

func TestCoinPolicySettings(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	_, err := f.engine.SetCoinPolicy(ctx, coins.Policy{1: -1})
	wantReason(t, err, apperr.InvalidInput)

	p, err := f.engine.SetCoinPolicy(ctx, coins.Policy{1: 2, 2: 4, 3: 6, 4: 8, 5: 10})
	if err != nil {
		t.Fatalf("set coin policy: %v", err)
	}
	if p.For(5) != 10 {
		t.Errorf("effort 5 = %d, want 10", p.For(5))
	}

	p, err = f.engine.ResetCoinPolicy(ctx)
	if err != nil {
		t.Fatalf("reset coin policy: %v", err)
	}
	if p.For(5) != 25 {
		t.Errorf("effort 5 after reset = %d, want 25", p.For(5))
	}
}
