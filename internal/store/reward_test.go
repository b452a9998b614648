package store

import (
	"testing"
	"time"

	"github.com/dukerupert/choreboard/internal/model"
)

func TestRewardCRUD(t *testing.T) {
	rs := NewRewardStore(setupTestDB(t))

	r, err := rs.Create("Movie night", "Pick the film", 100, true)
	if err != nil {
		t.Fatalf("create reward: %v", err)
	}
	if r.CoinCost != 100 || !r.Active {
		t.Errorf("reward = %+v", r)
	}

	rs.Create("Stay up late", "", 50, false)

	all, err := rs.List(false)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 2 || all[0].Title != "Movie night" {
		t.Errorf("list = %+v", all)
	}
	active, _ := rs.List(true)
	if len(active) != 1 {
		t.Errorf("got %d active, want 1", len(active))
	}

	r, err = rs.Update(r.ID, "Movie night", "Pick the film", 120, false)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if r.CoinCost != 120 || r.Active {
		t.Errorf("updated = %+v", r)
	}

	if err := rs.Delete(r.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if got, _ := rs.GetByID(r.ID); got != nil {
		t.Error("expected reward to be deleted")
	}
}

func TestRewardCreateNegativeCost(t *testing.T) {
	rs := NewRewardStore(setupTestDB(t))

	if _, err := rs.Create("Bad", "", -5, true); err == nil {
		t.Fatal("expected error for negative cost, got nil")
	}
}

func TestRedemptions(t *testing.T) {
	db := setupTestDB(t)
	rs := NewRewardStore(db)
	us := NewUserStore(db)
	a := mustUser(t, us, "A", model.RoleChild)
	b := mustUser(t, us, "B", model.RoleChild)
	r, _ := rs.Create("Ice cream", "", 30, true)

	at := time.Date(2024, 6, 12, 15, 0, 0, 0, time.UTC)
	red, err := rs.CreateRedemption(r.ID, a.ID, 30, at)
	if err != nil {
		t.Fatalf("create redemption: %v", err)
	}
	if red.CoinsSpent != 30 || !red.RequestedAt.Equal(at) {
		t.Errorf("redemption = %+v", red)
	}
	rs.CreateRedemption(r.ID, b.ID, 30, at.Add(time.Hour))

	all, err := rs.ListRedemptions(nil)
	if err != nil {
		t.Fatalf("list redemptions: %v", err)
	}
	if len(all) != 2 || all[0].UserID != b.ID {
		t.Errorf("all = %+v", all)
	}
	mine, _ := rs.ListRedemptions(&a.ID)
	if len(mine) != 1 || mine[0].ID != red.ID {
		t.Errorf("mine = %+v", mine)
	}

	if err := rs.DeleteRedemption(red.ID); err != nil {
		t.Fatalf("delete redemption: %v", err)
	}
	if got, _ := rs.GetRedemption(red.ID); got != nil {
		t.Error("expected redemption to be deleted")
	}
}
