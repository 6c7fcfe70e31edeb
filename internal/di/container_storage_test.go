package di_test

import (
	"context"
	"testing"

	til "github.com/goliatone/go-til"
	"github.com/goliatone/go-til/internal/di"
	"github.com/goliatone/go-til/note"
	"github.com/goliatone/go-til/pkg/testsupport"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
)

func newSQLiteBunDB(t *testing.T) *bun.DB {
	t.Helper()
	sqlDB, err := testsupport.NewSQLiteMemoryDB()
	if err != nil {
		t.Fatalf("new sqlite db: %v", err)
	}
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})

	bunDB := bun.NewDB(sqlDB, sqlitedialect.New())
	bunDB.SetMaxOpenConns(1)
	return bunDB
}

func TestContainerAppliesEmbeddedMigrations(t *testing.T) {
	bunDB := newSQLiteBunDB(t)
	cfg := memoryConfig(t)

	container, err := di.NewContainer(cfg, di.WithBunDB(bunDB))
	if err != nil {
		t.Fatalf("new container: %v", err)
	}

	ctx := context.Background()
	if err := container.ApplyMigrations(ctx, til.GetMigrationsFS()); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	// Same files twice must not fail; the DDL is IF NOT EXISTS throughout.
	if err := container.ApplyMigrations(ctx, til.GetMigrationsFS()); err != nil {
		t.Fatalf("re-apply migrations: %v", err)
	}

	svc := container.NoteService()
	created, err := svc.Create(ctx, note.CreateNoteRequest{
		Slug:       "default-struct-tags",
		Category:   "go",
		Title:      "Bun defaults come from struct tags",
		SourcePath: "go/default-struct-tags.md",
		Checksum:   "feedface",
		Tags:       []string{"go", "bun"},
	})
	if err != nil {
		t.Fatalf("create note against sqlite: %v", err)
	}

	fetched, err := svc.GetBySlug(ctx, "default-struct-tags")
	if err != nil {
		t.Fatalf("get by slug: %v", err)
	}
	if fetched.ID != created.ID {
		t.Fatalf("expected id %s, got %s", created.ID, fetched.ID)
	}
	if fetched.Category != "go" {
		t.Fatalf("expected category go, got %s", fetched.Category)
	}

	count, err := bunDB.NewSelect().Model((*note.Note)(nil)).Count(ctx)
	if err != nil {
		t.Fatalf("count notes: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 note row, got %d", count)
	}
}
