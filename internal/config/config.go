package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	BackendSQLite = "sqlite"
	BackendFile   = "file"
	BackendMemory = "memory"
)

// EnvPrefix is prepended to every environment override, e.g. TADIB_STORAGE_BACKEND.
const EnvPrefix = "TADIB"

type StorageConfig struct {
	// Backend is one of sqlite, file or memory.
	Backend string `mapstructure:"backend" yaml:"backend"`

	// Path is the database or record file. Empty selects the backend default.
	Path string `mapstructure:"path" yaml:"path"`
}

type HistoryConfig struct {
	RetentionDays int `mapstructure:"retention_days" yaml:"retention_days"`
}

type AchievementsConfig struct {
	// MergeAliases credits alias categories (Gym, Fitness...) with their
	// group's combined points.
	MergeAliases bool `mapstructure:"merge_aliases" yaml:"merge_aliases"`
}

// Config is the top-level application configuration.
type Config struct {
	User         string             `mapstructure:"user" yaml:"user"`
	Timezone     string             `mapstructure:"timezone" yaml:"timezone"`
	Storage      StorageConfig      `mapstructure:"storage" yaml:"storage"`
	History      HistoryConfig      `mapstructure:"history" yaml:"history"`
	Achievements AchievementsConfig `mapstructure:"achievements" yaml:"achievements"`
}

// DefaultPath returns ~/.config/tadibsync/config.yaml.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "config.yaml")
	}
	return filepath.Join(home, ".config", "tadibsync", "config.yaml")
}

func Default() *Config {
	return &Config{
		User:     "main_user",
		Timezone: "Local",
		Storage:  StorageConfig{Backend: BackendSQLite},
		History:  HistoryConfig{RetentionDays: 30},
	}
}

func setDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("user", d.User)
	v.SetDefault("timezone", d.Timezone)
	v.SetDefault("storage.backend", d.Storage.Backend)
	v.SetDefault("storage.path", d.Storage.Path)
	v.SetDefault("history.retention_days", d.History.RetentionDays)
	v.SetDefault("achievements.merge_aliases", d.Achievements.MergeAliases)
}

// Load reads the YAML file at path, applying defaults and TADIB_* environment
// overrides. A missing file yields the defaults plus any overrides.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		var pathErr *os.PathError
		if !errors.As(err, &notFound) && !errors.As(err, &pathErr) {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	cfg := Default()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes cfg to path as YAML, creating parent directories if needed.
func Save(path string, cfg *Config) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.Set("user", cfg.User)
	v.Set("timezone", cfg.Timezone)
	v.Set("storage.backend", cfg.Storage.Backend)
	v.Set("storage.path", cfg.Storage.Path)
	v.Set("history.retention_days", cfg.History.RetentionDays)
	v.Set("achievements.merge_aliases", cfg.Achievements.MergeAliases)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case BackendSQLite, BackendFile, BackendMemory:
	default:
		return fmt.Errorf("unknown storage backend %q (want sqlite, file or memory)", c.Storage.Backend)
	}
	if c.History.RetentionDays <= 0 {
		return fmt.Errorf("history.retention_days must be positive, got %d", c.History.RetentionDays)
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

// Location resolves Timezone. Empty and "Local" mean the system zone.
func (c *Config) Location() (*time.Location, error) {
	tz := strings.TrimSpace(c.Timezone)
	if tz == "" || strings.EqualFold(tz, "local") {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", tz, err)
	}
	return loc, nil
}

// Set assigns a dotted key from a string, as typed on the command line.
func (c *Config) Set(key, value string) error {
	switch key {
	case "user":
		c.User = value
	case "timezone":
		c.Timezone = value
	case "storage.backend":
		c.Storage.Backend = value
	case "storage.path":
		c.Storage.Path = value
	case "history.retention_days":
		var n int
		if _, err := fmt.Sscanf(value, "%d", &n); err != nil {
			return fmt.Errorf("history.retention_days: %q is not a number", value)
		}
		c.History.RetentionDays = n
	case "achievements.merge_aliases":
		switch strings.ToLower(strings.TrimSpace(value)) {
		case "true", "yes", "on", "1":
			c.Achievements.MergeAliases = true
		case "false", "no", "off", "0":
			c.Achievements.MergeAliases = false
		default:
			return fmt.Errorf("achievements.merge_aliases: %q is not a boolean", value)
		}
	default:
		return fmt.Errorf("unknown config key %q", key)
	}
	return c.Validate()
}
