package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/mewoai/mewoai/internal/config"
	"github.com/mewoai/mewoai/internal/mongodb"
	"github.com/mewoai/mewoai/internal/sqlite"
)

// CloseFunc releases a store's connections.
type CloseFunc func(ctx context.Context) error

// OpenStore opens the configured member store and prepares its schema.
func OpenStore(ctx context.Context, cfg config.DBConfig, logger *slog.Logger) (Store, CloseFunc, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	switch cfg.Driver {
	case "mongo":
		db, err := mongodb.New(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			return nil, nil, err
		}
		if err := db.EnsureIndexes(ctx); err != nil {
			_ = db.Close(ctx)
			return nil, nil, err
		}
		logger.Info("connected to mongodb", "database", cfg.MongoDatabase)
		return mongodb.NewMemberRepository(db), db.Close, nil

	case "sqlite", "":
		if err := ensureDBDir(cfg.Path); err != nil {
			return nil, nil, fmt.Errorf("prepare database path: %w", err)
		}
		db, err := sqlite.New(cfg.Path)
		if err != nil {
			return nil, nil, err
		}
		if err := db.RunMigrations(); err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		logger.Info("opened sqlite database", "path", cfg.Path)
		return sqlite.NewMemberRepository(db), func(context.Context) error { return db.Close() }, nil

	default:
		return nil, nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
	}
}

func ensureDBDir(path string) error {
	if path == ":memory:" || path == "" {
		return nil
	}
	dir := filepath.Dir(path)
	if dir == "." {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
