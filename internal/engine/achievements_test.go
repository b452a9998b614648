package engine

import (
	"context"
	"testing"
	"time"

	"github.com/dukerupert/choreboard/internal/model"
	"github.com/dukerupert/choreboard/internal/store"
)

func eventIDs(events []Event) map[string]bool {
	ids := make(map[string]bool)
	for _, e := range events {
		if e.Type == model.NotifTypeAchievementUnlocked {
			ids[e.AchievementID] = true
		}
	}
	return ids
}

func TestAchievementUnlockedOnce(t *testing.T) {
	f := setup(t)
	task := f.task(t, TaskInput{})

	res := f.complete(t, task.ID, f.kidA.ID)
	got := eventIDs(res.Events)
	if !got["first_task"] {
		t.Errorf("events = %+v, want first_task", res.Events)
	}
	// Every room is clean once its only task is done.
	if !got["clean_rooms_3"] || !got["clean_rooms_5"] {
		t.Errorf("events = %+v, want clean room achievements", res.Events)
	}

	f.clock.Advance(24 * time.Hour)
	res = f.complete(t, task.ID, f.kidA.ID)
	if got := eventIDs(res.Events); got["first_task"] || got["clean_rooms_3"] {
		t.Errorf("events = %+v, want no repeats", res.Events)
	}
}

func TestAchievementsPerUser(t *testing.T) {
	f := setup(t)
	task := f.task(t, TaskInput{AssignmentMode: model.ModeShared})

	f.complete(t, task.ID, f.kidA.ID)
	res := f.complete(t, task.ID, f.kidB.ID)
	if !eventIDs(res.Events)["first_task"] {
		t.Errorf("events = %+v, want first_task for second user", res.Events)
	}
}

func TestAchievementAnnouncedAfterReenable(t *testing.T) {
	f := setup(t)
	task := f.task(t, TaskInput{})
	settings := store.NewSettingsStore(f.db)

	if err := settings.SetNotificationTypeEnabled(model.NotifTypeAchievementUnlocked, false); err != nil {
		t.Fatalf("disable: %v", err)
	}
	res := f.complete(t, task.ID, f.kidA.ID)
	if len(res.Events) != 0 {
		t.Errorf("events = %+v, want none while disabled", res.Events)
	}

	if err := settings.SetNotificationTypeEnabled(model.NotifTypeAchievementUnlocked, true); err != nil {
		t.Fatalf("enable: %v", err)
	}
	f.clock.Advance(24 * time.Hour)
	res = f.complete(t, task.ID, f.kidA.ID)
	if !eventIDs(res.Events)["first_task"] {
		t.Errorf("events = %+v, want first_task after re-enable", res.Events)
	}
}

func TestAchievementUserPreferenceOff(t *testing.T) {
	f := setup(t)
	task := f.task(t, TaskInput{AssignmentMode: model.ModeShared})
	push := store.NewPushStore(f.db)

	if err := push.SetPreference(f.kidA.ID, model.NotifTypeAchievementUnlocked, false); err != nil {
		t.Fatalf("set preference: %v", err)
	}
	if res := f.complete(t, task.ID, f.kidA.ID); len(res.Events) != 0 {
		t.Errorf("events = %+v, want none for opted-out user", res.Events)
	}
	if res := f.complete(t, task.ID, f.kidB.ID); !eventIDs(res.Events)["first_task"] {
		t.Errorf("events = %+v, want first_task for other user", res.Events)
	}

	if err := push.SetPreference(f.kidA.ID, model.NotifTypeAchievementUnlocked, true); err != nil {
		t.Fatalf("set preference: %v", err)
	}
	progress, err := f.engine.EvaluateAchievements(context.Background(), f.kidA.ID)
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	for _, p := range progress {
		if p.ID == "first_task" && p.Percent != 100 {
			t.Errorf("first_task = %d, want 100 regardless of notifications", p.Percent)
		}
	}
}

func TestEvaluateAchievements(t *testing.T) {
	f := setup(t)
	task := f.task(t, TaskInput{})
	f.complete(t, task.ID, f.kidA.ID)

	progress, err := f.engine.EvaluateAchievements(context.Background(), f.kidA.ID)
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	byID := make(map[string]int)
	for _, p := range progress {
		byID[p.ID] = p.Percent
	}
	if byID["first_task"] != 100 {
		t.Errorf("first_task = %d, want 100", byID["first_task"])
	}
	if byID["tasks_10"] != 10 {
		t.Errorf("tasks_10 = %d, want 10", byID["tasks_10"])
	}
	if byID["coins_100"] != 15 {
		t.Errorf("coins_100 = %d, want 15", byID["coins_100"])
	}
}

func TestStats(t *testing.T) {
	f := setup(t)
	task := f.task(t, TaskInput{})
	f.complete(t, task.ID, f.kidA.ID)

	stats, err := f.engine.Stats(context.Background(), f.kidA.ID)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.TotalCompletions != 1 || stats.CurrentStreak != 1 || stats.Coins != 15 {
		t.Errorf("stats = %+v", stats)
	}
	if stats.WeekCompletions != 1 {
		t.Errorf("week completions = %d, want 1", stats.WeekCompletions)
	}
}
