// Package backend opens the content store selected by the database config.
package backend

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/udisondev/ttmgo/internal/config"
	"github.com/udisondev/ttmgo/internal/db"
	"github.com/udisondev/ttmgo/internal/litestore"
	"github.com/udisondev/ttmgo/internal/store"
)

// Backend is an open, migrated content store.
type Backend struct {
	Store  store.Store
	Driver string
	close  func()
}

// Open connects to the configured database and brings its schema up to date.
func Open(ctx context.Context, cfg config.DatabaseConfig) (*Backend, error) {
	switch cfg.Driver {
	case config.DriverPostgres:
		database, err := db.New(ctx, cfg.DSN())
		if err != nil {
			return nil, err
		}
		if err := db.MigratePool(ctx, database.Pool()); err != nil {
			database.Close()
			return nil, err
		}
		slog.Info("database ready", "driver", cfg.Driver, "host", cfg.Host, "dbname", cfg.DBName)
		return &Backend{Store: database.Store(), Driver: cfg.Driver, close: database.Close}, nil

	case config.DriverSQLite:
		ls, err := litestore.Open(ctx, cfg.Path)
		if err != nil {
			return nil, err
		}
		slog.Info("database ready", "driver", cfg.Driver, "path", cfg.Path)
		return &Backend{Store: ls, Driver: cfg.Driver, close: func() {
			if err := ls.Close(); err != nil {
				slog.Warn("closing sqlite", "err", err)
			}
		}}, nil

	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
	}
}

// Close releases the connection.
func (b *Backend) Close() {
	b.close()
}
