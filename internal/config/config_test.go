package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envMap(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestDefaultIsValid(t *testing.T) {
	require.NoError(t, Default().Validate())
}

func TestApplyEnv(t *testing.T) {
	cfg := Default()
	err := cfg.applyEnv(envMap(map[string]string{
		"CHOREBOARD_PORT":          "9090",
		"CHOREBOARD_TIMEZONE":      "UTC",
		"CHOREBOARD_METRICS":       "false",
		"CHOREBOARD_REMINDER_HOUR": "19",
	}))
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "UTC", cfg.Timezone)
	assert.False(t, cfg.Metrics)
	assert.Equal(t, 19, cfg.ReminderHour)
	assert.Equal(t, "choreboard.db", cfg.DBPath)
}

func TestApplyEnvBadValues(t *testing.T) {
	cfg := Default()
	assert.Error(t, cfg.applyEnv(envMap(map[string]string{"CHOREBOARD_METRICS": "maybe"})))
	assert.Error(t, cfg.applyEnv(envMap(map[string]string{"CHOREBOARD_REMINDER_HOUR": "noon"})))
}

func TestLoadFileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "choreboard.yaml")
	yaml := "port: \"7000\"\ndb_path: /var/lib/choreboard.db\nreminder_hour: 6\n"
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))

	cfg := Default()
	require.NoError(t, cfg.loadFile(path))
	require.NoError(t, cfg.applyEnv(envMap(map[string]string{"CHOREBOARD_PORT": "7001"})))

	assert.Equal(t, "7001", cfg.Port)
	assert.Equal(t, "/var/lib/choreboard.db", cfg.DBPath)
	assert.Equal(t, 6, cfg.ReminderHour)
}

func TestLoadFileMissing(t *testing.T) {
	cfg := Default()
	assert.Error(t, cfg.loadFile(filepath.Join(t.TempDir(), "nope.yaml")))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		edit func(*Config)
	}{
		{"hour too large", func(c *Config) { c.ReminderHour = 24 }},
		{"bad timezone", func(c *Config) { c.Timezone = "Mars/Olympus" }},
		{"bad log format", func(c *Config) { c.LogFormat = "xml" }},
		{"half vapid", func(c *Config) { c.VAPIDPublicKey = "pub" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.edit(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestPushEnabled(t *testing.T) {
	cfg := Default()
	assert.False(t, cfg.PushEnabled())
	cfg.VAPIDPublicKey, cfg.VAPIDPrivateKey = "pub", "priv"
	assert.True(t, cfg.PushEnabled())
}
