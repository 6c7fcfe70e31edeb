package storage

import (
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
)

// Open connects to the configured relational backend and returns a bun handle
// with the dialect matching the driver. The "memory" driver has no relational
// backend and is rejected here; callers decide between memory repositories and
// Open before calling.
func Open(cfg Config) (*bun.DB, error) {
	switch cfg.Driver {
	case "sqlite", "sqlite3":
		sqldb, err := sql.Open("sqlite3", cfg.DSN)
		if err != nil {
			return nil, fmt.Errorf("storage: open sqlite: %w", err)
		}
		return bun.NewDB(sqldb, sqlitedialect.New()), nil
	case "postgres", "postgresql":
		sqldb, err := sql.Open("postgres", cfg.DSN)
		if err != nil {
			return nil, fmt.Errorf("storage: open postgres: %w", err)
		}
		return bun.NewDB(sqldb, pgdialect.New()), nil
	default:
		return nil, fmt.Errorf("storage: driver %q has no relational backend", cfg.Driver)
	}
}
