package root

import (
	"context"
	"log/slog"
	"os"

	"github.com/notsao/tadibsync/internal/config"
	"github.com/notsao/tadibsync/internal/engine"
	"github.com/notsao/tadibsync/internal/storage"
)

func loadConfig() (*config.Config, error) {
	return config.Load(cfgPath)
}

func openKV(ctx context.Context, cfg *config.Config) (storage.KV, func(), error) {
	switch cfg.Storage.Backend {
	case config.BackendMemory:
		return storage.NewMemoryKV(), func() {}, nil
	case config.BackendFile:
		path := cfg.Storage.Path
		if path == "" {
			p, err := storage.DefaultRecordPath()
			if err != nil {
				return nil, nil, err
			}
			path = p
		}
		return storage.NewRecordFile(path), func() {}, nil
	default:
		path := cfg.Storage.Path
		if path == "" {
			p, err := storage.DefaultDBPath()
			if err != nil {
				return nil, nil, err
			}
			path = p
		}
		db, err := storage.Open(ctx, path)
		if err != nil {
			return nil, nil, err
		}
		cleanup := func() {
			_ = db.Close()
		}
		return storage.NewSQLiteKV(db), cleanup, nil
	}
}

// openService wires the configured backend into an engine.Service and returns
// the tenant commands should act on.
func openService(ctx context.Context) (*engine.Service, string, func(), error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, "", nil, err
	}
	loc, err := cfg.Location()
	if err != nil {
		return nil, "", nil, err
	}
	kv, cleanup, err := openKV(ctx, cfg)
	if err != nil {
		return nil, "", nil, err
	}

	opts := []engine.Option{
		engine.WithLocation(loc),
		engine.WithRetentionDays(cfg.History.RetentionDays),
		engine.WithAliasMerging(cfg.Achievements.MergeAliases),
	}
	if verbose {
		opts = append(opts, engine.WithLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))))
	}

	tenant := cfg.User
	if userID != "" {
		tenant = userID
	}
	return engine.NewService(kv, opts...), storage.NormalizeTenant(tenant), cleanup, nil
}
