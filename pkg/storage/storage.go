package storage

import "context"

// Provider encapsulates the raw storage operations required by go-til
// components that write artifacts or run ad-hoc statements. Repositories use
// bun directly; this contract exists for pluggable sinks (filesystem site
// output, tests) and optional runtime hooks.
type Provider interface {
	Query(ctx context.Context, query string, args ...any) (Rows, error)
	Exec(ctx context.Context, query string, args ...any) (Result, error)
	Transaction(ctx context.Context, fn func(tx Transaction) error) error
}

// Config captures the runtime configuration for a storage backend. Detailed
// validation is handled by higher layers (runtimeconfig).
type Config struct {
	Name   string
	Driver string
	DSN    string
}

type Rows interface {
	Next() bool
	Scan(dest ...any) error
	Close() error
}

type Result interface {
	RowsAffected() (int64, error)
	LastInsertId() (int64, error)
}

type Transaction interface {
	Provider
	Commit() error
	Rollback() error
}
