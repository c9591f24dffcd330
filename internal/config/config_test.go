package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	require.Equal(t, Default(), cfg)
}

func TestSaveThenLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	want := &Config{
		User:         "alice",
		Timezone:     "UTC",
		Storage:      StorageConfig{Backend: BackendFile, Path: "/tmp/records.json"},
		History:      HistoryConfig{RetentionDays: 14},
		Achievements: AchievementsConfig{MergeAliases: true},
	}
	require.NoError(t, Save(path, want))

	got, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, want, got)

	loc, err := got.Location()
	require.NoError(t, err)
	require.Equal(t, time.UTC, loc)
}

func TestLoadPartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("storage:\n  backend: memory\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, BackendMemory, cfg.Storage.Backend)
	require.Equal(t, 30, cfg.History.RetentionDays)
	require.Equal(t, "main_user", cfg.User)
}

func TestEnvOverride(t *testing.T) {
	t.Setenv("TADIB_USER", "bob")
	t.Setenv("TADIB_HISTORY_RETENTION_DAYS", "7")

	cfg, err := Load(filepath.Join(t.TempDir(), "config.yaml"))
	require.NoError(t, err)
	require.Equal(t, "bob", cfg.User)
	require.Equal(t, 7, cfg.History.RetentionDays)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("storage:\n  backend: postgres\n"), 0o644))
	_, err := Load(path)
	require.ErrorContains(t, err, "unknown storage backend")

	require.NoError(t, os.WriteFile(path, []byte("timezone: Mars/Olympus\n"), 0o644))
	_, err = Load(path)
	require.ErrorContains(t, err, "invalid timezone")
}

func TestSet(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Set("achievements.merge_aliases", "yes"))
	require.True(t, cfg.Achievements.MergeAliases)
	require.NoError(t, cfg.Set("history.retention_days", "45"))
	require.Equal(t, 45, cfg.History.RetentionDays)
	require.Error(t, cfg.Set("history.retention_days", "0"))
	require.Error(t, cfg.Set("storage.backend", "redis"))
	require.Error(t, cfg.Set("colour", "blue"))
}
