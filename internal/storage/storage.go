// Package storage opens the key-value backend selected in the config.
package storage

import (
	"context"
	"fmt"

	"github.com/at-ishikawa/literacy/internal/config"
	"github.com/at-ishikawa/literacy/internal/database"
	"github.com/at-ishikawa/literacy/internal/kvstore"
)

const (
	DriverMemory = "memory"
	DriverFile   = "file"
)

// Open returns the store for cfg and a function releasing it. Database schemas are migrated.
func Open(ctx context.Context, cfg config.StorageConfig) (kvstore.Store, func() error, error) {
	noop := func() error { return nil }
	switch cfg.Driver {
	case DriverMemory:
		return kvstore.NewMemoryStore(), noop, nil
	case DriverFile:
		return kvstore.NewFileStore(cfg.File), noop, nil
	case database.DriverSQLite, database.DriverMySQL:
		db, err := database.Open(cfg.Driver, cfg.Database)
		if err != nil {
			return nil, nil, fmt.Errorf("database.Open() > %w", err)
		}
		if err := database.Migrate(ctx, db, cfg.Driver); err != nil {
			_ = db.Close()
			return nil, nil, fmt.Errorf("database.Migrate() > %w", err)
		}
		return kvstore.NewDBStore(db), db.Close, nil
	default:
		return nil, nil, fmt.Errorf("unsupported storage driver %q", cfg.Driver)
	}
}
