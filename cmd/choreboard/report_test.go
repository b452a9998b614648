package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dukerupert/choreboard/internal/engine"
	"github.com/dukerupert/choreboard/internal/health"
	"github.com/dukerupert/choreboard/internal/model"
)

func TestWriteReport(t *testing.T) {
	d := &engine.Dashboard{
		HouseHealth: 62,
		Rooms: []engine.RoomSummary{
			{Room: model.Room{Name: "Kitchen", Icon: "🍳"}, Health: 40, TaskCount: 2},
			{Room: model.Room{Name: "Bedroom", Icon: "🛏️"}, Health: 100},
		},
		Quests: []health.Scored{
			{Task: model.Task{Name: "Dishes"}, Health: 0, DaysOverdue: 2},
			{Task: model.Task{Name: "Wipe counters"}, Health: 30},
		},
		Vacation: model.Vacation{Active: true},
	}

	var buf bytes.Buffer
	require.NoError(t, writeReport(&buf, d))
	out := buf.String()

	assert.Contains(t, out, "House health: 62%")
	assert.Contains(t, out, "Vacation mode is on")
	assert.Contains(t, out, "Kitchen")
	assert.Contains(t, out, "Today's quests (2)")
	assert.Contains(t, out, "2d overdue")
	assert.Contains(t, out, "Wipe counters")
}

func TestRootCommandHasSubcommands(t *testing.T) {
	cmd := newRootCommand()
	for _, name := range []string{"serve", "migrate", "report", "useradd", "vapid"} {
		sub, _, err := cmd.Find([]string{name})
		require.NoError(t, err)
		assert.Equal(t, name, sub.Name())
	}
}
