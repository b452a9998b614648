// Package config loads process configuration from an optional YAML file,
// an optional .env file and CHOREBOARD_* environment variables, in
// increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Port          string `yaml:"port"`
	DBPath        string `yaml:"db_path"`
	LogLevel      string `yaml:"log_level"`
	LogFormat     string `yaml:"log_format"`
	Timezone      string `yaml:"timezone"`
	SecureCookies bool   `yaml:"secure_cookies"`
	Metrics       bool   `yaml:"metrics"`

	VAPIDPublicKey  string `yaml:"vapid_public_key"`
	VAPIDPrivateKey string `yaml:"vapid_private_key"`
	VAPIDSubscriber string `yaml:"vapid_subscriber"`
	TelegramToken   string `yaml:"telegram_token"`
	ReminderHour    int    `yaml:"reminder_hour"`
}

func Default() Config {
	return Config{
		Port:         "8080",
		DBPath:       "choreboard.db",
		LogLevel:     "info",
		LogFormat:    "text",
		Timezone:     "Local",
		Metrics:      true,
		ReminderHour: 8,
	}
}

// Load builds the configuration. A missing .env file is not an error; a
// missing file named by CHOREBOARD_CONFIG is.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	cfg := Default()
	if path := os.Getenv("CHOREBOARD_CONFIG"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return Config{}, err
		}
	}
	if err := cfg.applyEnv(os.Getenv); err != nil {
		return Config{}, err
	}
	return cfg, cfg.Validate()
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv(getenv func(string) string) error {
	str := map[string]*string{
		"CHOREBOARD_PORT":              &c.Port,
		"CHOREBOARD_DB_PATH":           &c.DBPath,
		"CHOREBOARD_LOG_LEVEL":         &c.LogLevel,
		"CHOREBOARD_LOG_FORMAT":        &c.LogFormat,
		"CHOREBOARD_TIMEZONE":          &c.Timezone,
		"CHOREBOARD_VAPID_PUBLIC_KEY":  &c.VAPIDPublicKey,
		"CHOREBOARD_VAPID_PRIVATE_KEY": &c.VAPIDPrivateKey,
		"CHOREBOARD_VAPID_SUBSCRIBER":  &c.VAPIDSubscriber,
		"CHOREBOARD_TELEGRAM_TOKEN":    &c.TelegramToken,
	}
	for key, dst := range str {
		if v := getenv(key); v != "" {
			*dst = v
		}
	}

	flags := map[string]*bool{
		"CHOREBOARD_METRICS":        &c.Metrics,
		"CHOREBOARD_SECURE_COOKIES": &c.SecureCookies,
	}
	for key, dst := range flags {
		if v := getenv(key); v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("%s: %w", key, err)
			}
			*dst = b
		}
	}

	if v := getenv("CHOREBOARD_REMINDER_HOUR"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("CHOREBOARD_REMINDER_HOUR: %w", err)
		}
		c.ReminderHour = n
	}
	return nil
}

func (c Config) Validate() error {
	if c.ReminderHour < 0 || c.ReminderHour > 23 {
		return fmt.Errorf("reminder hour must be 0-23, got %d", c.ReminderHour)
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		return fmt.Errorf("log format must be text or json, got %q", c.LogFormat)
	}
	if (c.VAPIDPublicKey == "") != (c.VAPIDPrivateKey == "") {
		return errors.New("both VAPID keys must be set to enable web push")
	}
	return nil
}

// Location resolves the household timezone that defines calendar days.
func (c Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

func (c Config) PushEnabled() bool {
	return c.VAPIDPublicKey != "" && c.VAPIDPrivateKey != ""
}
