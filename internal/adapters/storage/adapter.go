package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/goliatone/go-til/pkg/interfaces"
)

// BunExecutor is the executor surface shared by bun.DB, bun.Tx and *sql.DB.
type BunExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
}

// NewBunProvider adapts a bun-compatible executor to the storage provider
// contract so raw statements (schema migrations, maintenance queries) run
// through the same interface as artifact sinks.
func NewBunProvider(db BunExecutor) interfaces.StorageProvider {
	return &bunProvider{db: db}
}

type bunProvider struct {
	db BunExecutor
}

func (p *bunProvider) Query(ctx context.Context, query string, args ...any) (interfaces.Rows, error) {
	rows, err := p.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	if rows == nil {
		return emptyRows{}, nil
	}
	return &sqlRows{rows: rows}, nil
}

func (p *bunProvider) Exec(ctx context.Context, query string, args ...any) (interfaces.Result, error) {
	result, err := p.db.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return sqlResult{Result: result}, nil
}

func (p *bunProvider) Transaction(ctx context.Context, fn func(tx interfaces.Transaction) error) error {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	wrapped := &sqlTx{tx: tx}
	if err := fn(wrapped); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("rollback failed after error %w: %v", err, rbErr)
		}
		return err
	}
	return tx.Commit()
}

type sqlRows struct {
	rows *sql.Rows
}

func (r *sqlRows) Next() bool {
	if r.rows == nil {
		return false
	}
	return r.rows.Next()
}

func (r *sqlRows) Scan(dest ...any) error {
	if r.rows == nil {
		return errors.New("no rows available")
	}
	return r.rows.Scan(dest...)
}

func (r *sqlRows) Close() error {
	if r.rows == nil {
		return nil
	}
	return r.rows.Close()
}

// emptyRows stands in when a backend has nothing to return. Callers expect a
// non-nil Rows whose Next reports false.
type emptyRows struct{}

func (emptyRows) Next() bool        { return false }
func (emptyRows) Scan(...any) error { return errors.New("no rows available") }
func (emptyRows) Close() error      { return nil }

type sqlResult struct {
	sql.Result
}

// emptyResult reports zero rows without touching a database handle.
type emptyResult struct{}

func (emptyResult) RowsAffected() (int64, error) { return 0, nil }
func (emptyResult) LastInsertId() (int64, error) { return 0, nil }

type sqlTx struct {
	tx *sql.Tx
}

func (t *sqlTx) Query(ctx context.Context, query string, args ...any) (interfaces.Rows, error) {
	rows, err := t.tx.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	if rows == nil {
		return emptyRows{}, nil
	}
	return &sqlRows{rows: rows}, nil
}

func (t *sqlTx) Exec(ctx context.Context, query string, args ...any) (interfaces.Result, error) {
	result, err := t.tx.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return sqlResult{Result: result}, nil
}

func (t *sqlTx) Transaction(context.Context, func(interfaces.Transaction) error) error {
	return errors.New("nested transactions not supported")
}

func (t *sqlTx) Commit() error {
	return t.tx.Commit()
}

func (t *sqlTx) Rollback() error {
	return t.tx.Rollback()
}

// NewNoOpProvider returns a provider that accepts every operation and stores
// nothing. Dry runs and disabled subsystems use it as the default sink.
func NewNoOpProvider() interfaces.StorageProvider {
	return &noOpProvider{}
}

type noOpProvider struct{}

func (*noOpProvider) Query(context.Context, string, ...any) (interfaces.Rows, error) {
	return emptyRows{}, nil
}

func (*noOpProvider) Exec(context.Context, string, ...any) (interfaces.Result, error) {
	return emptyResult{}, nil
}

func (*noOpProvider) Transaction(_ context.Context, fn func(tx interfaces.Transaction) error) error {
	if fn == nil {
		return nil
	}
	return fn(&noOpTx{})
}

type noOpTx struct{}

func (noOpTx) Query(context.Context, string, ...any) (interfaces.Rows, error) {
	return emptyRows{}, nil
}

func (noOpTx) Exec(context.Context, string, ...any) (interfaces.Result, error) {
	return emptyResult{}, nil
}

func (noOpTx) Transaction(context.Context, func(interfaces.Transaction) error) error {
	return nil
}

func (noOpTx) Commit() error {
	return nil
}

func (noOpTx) Rollback() error {
	return nil
}
