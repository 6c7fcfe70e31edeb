package storage_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/goliatone/go-til/internal/adapters/storage"
	"github.com/goliatone/go-til/pkg/interfaces"
)

type stubExecutor struct {
	execQueries []string
	beginErr    error
}

func (s *stubExecutor) ExecContext(_ context.Context, query string, _ ...any) (sql.Result, error) {
	s.execQueries = append(s.execQueries, query)
	return stubResult{}, nil
}

func (s *stubExecutor) QueryContext(context.Context, string, ...any) (*sql.Rows, error) {
	return nil, nil
}

func (s *stubExecutor) BeginTx(context.Context, *sql.TxOptions) (*sql.Tx, error) {
	if s.beginErr != nil {
		return nil, s.beginErr
	}
	return nil, errors.New("begin not wired")
}

type stubResult struct{}

func (stubResult) LastInsertId() (int64, error) { return 0, nil }
func (stubResult) RowsAffected() (int64, error) { return 0, nil }

func TestProvidersImplementInterface(t *testing.T) {
	var (
		_ interfaces.StorageProvider = storage.NewBunProvider(&stubExecutor{})
		_ interfaces.StorageProvider = storage.NewNoOpProvider()
		_ interfaces.StorageProvider = storage.NewFilesystemProvider(t.TempDir(), "")
	)
}

func TestBunProviderDelegatesToExecutor(t *testing.T) {
	ctx := context.Background()
	executor := &stubExecutor{}
	provider := storage.NewBunProvider(executor)

	if _, err := provider.Exec(ctx, "DELETE FROM notes"); err != nil {
		t.Fatalf("exec: %v", err)
	}
	if len(executor.execQueries) != 1 || executor.execQueries[0] != "DELETE FROM notes" {
		t.Fatalf("unexpected recorded queries %v", executor.execQueries)
	}

	rows, err := provider.Query(ctx, "SELECT 1")
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if rows == nil {
		t.Fatal("expected non-nil rows")
	}
	if rows.Next() {
		t.Fatal("expected empty rows")
	}
}

func TestBunProviderTransactionBeginError(t *testing.T) {
	boom := errors.New("database locked")
	provider := storage.NewBunProvider(&stubExecutor{beginErr: boom})

	err := provider.Transaction(context.Background(), func(interfaces.Transaction) error {
		t.Fatal("transaction body should not run")
		return nil
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected begin error, got %v", err)
	}
}

func TestNoOpProviderAcceptsEverything(t *testing.T) {
	ctx := context.Background()
	provider := storage.NewNoOpProvider()

	result, err := provider.Exec(ctx, "site.write", "public/index.html")
	if err != nil {
		t.Fatalf("exec: %v", err)
	}
	if affected, err := result.RowsAffected(); err != nil || affected != 0 {
		t.Fatalf("unexpected result %d %v", affected, err)
	}

	rows, err := provider.Query(ctx, "site.read", "public/index.html")
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if rows == nil || rows.Next() {
		t.Fatal("expected empty non-nil rows")
	}

	err = provider.Transaction(ctx, func(tx interfaces.Transaction) error {
		if _, err := tx.Exec(ctx, "site.remove", "public"); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		t.Fatalf("transaction: %v", err)
	}
}
