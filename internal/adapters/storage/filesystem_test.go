package storage_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goliatone/go-til/internal/adapters/storage"
	"github.com/goliatone/go-til/pkg/interfaces"
)

func TestFilesystemProviderWriteAndRead(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	provider := storage.NewFilesystemProvider(root, "")

	content := "<html><body>ok</body></html>"
	_, err := provider.Exec(ctx, "site.write",
		"public/index.html",
		strings.NewReader(content),
		int64(len(content)),
		"page",
		"text/html; charset=utf-8",
		"abc123",
		map[string]string{"route": "/"},
	)
	if err != nil {
		t.Fatalf("write: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(root, "public", "index.html"))
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if string(data) != content {
		t.Fatalf("unexpected file contents %q", data)
	}

	rows, err := provider.Query(ctx, "site.read", "public/index.html")
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	defer rows.Close()
	if !rows.Next() {
		t.Fatal("expected one row")
	}
	var read []byte
	if err := rows.Scan(&read); err != nil {
		t.Fatalf("scan: %v", err)
	}
	if string(read) != content {
		t.Fatalf("unexpected scanned contents %q", read)
	}
	if rows.Next() {
		t.Fatal("expected a single row")
	}
}

func TestFilesystemProviderScanString(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	provider := storage.NewFilesystemProvider(root, "")

	if _, err := provider.Exec(ctx, "site.write", "public/robots.txt", strings.NewReader("User-agent: *\n")); err != nil {
		t.Fatalf("write: %v", err)
	}

	rows, err := provider.Query(ctx, "site.read", "public/robots.txt")
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	defer rows.Close()
	if !rows.Next() {
		t.Fatal("expected one row")
	}
	var text string
	if err := rows.Scan(&text); err != nil {
		t.Fatalf("scan: %v", err)
	}
	if text != "User-agent: *\n" {
		t.Fatalf("unexpected contents %q", text)
	}
}

func TestFilesystemProviderMissingFile(t *testing.T) {
	provider := storage.NewFilesystemProvider(t.TempDir(), "")

	rows, err := provider.Query(context.Background(), "site.read", "public/.til-manifest.json")
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if rows == nil {
		t.Fatal("expected non-nil rows for missing file")
	}
	if rows.Next() {
		t.Fatal("expected no rows for missing file")
	}
}

func TestFilesystemProviderEnsureDirAndRemove(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	provider := storage.NewFilesystemProvider(root, "")

	if _, err := provider.Exec(ctx, "site.ensure_dir", "public/go"); err != nil {
		t.Fatalf("ensure_dir: %v", err)
	}
	info, err := os.Stat(filepath.Join(root, "public", "go"))
	if err != nil || !info.IsDir() {
		t.Fatalf("expected directory, got %v %v", info, err)
	}

	if _, err := provider.Exec(ctx, "site.write", "public/go/index.html", strings.NewReader("x")); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := provider.Exec(ctx, "site.remove", "public"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if _, err := os.Stat(filepath.Join(root, "public")); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected output tree removed, got %v", err)
	}

	// Removing something already gone is not an error.
	if _, err := provider.Exec(ctx, "site.remove", "public"); err != nil {
		t.Fatalf("second remove: %v", err)
	}
}

func TestFilesystemProviderTrimsBasePrefix(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	provider := storage.NewFilesystemProvider(root, "public")

	if _, err := provider.Exec(ctx, "site.write", "public/index.html", strings.NewReader("trimmed")); err != nil {
		t.Fatalf("write: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(root, "index.html"))
	if err != nil {
		t.Fatalf("expected file directly under root: %v", err)
	}
	if string(data) != "trimmed" {
		t.Fatalf("unexpected contents %q", data)
	}
}

func TestFilesystemProviderTransaction(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	provider := storage.NewFilesystemProvider(root, "")

	err := provider.Transaction(ctx, func(tx interfaces.Transaction) error {
		if _, err := tx.Exec(ctx, "site.write", "public/atom.xml", strings.NewReader("<feed/>")); err != nil {
			return err
		}
		if err := tx.Transaction(ctx, func(interfaces.Transaction) error { return nil }); err == nil {
			return errors.New("expected nested transaction error")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("transaction: %v", err)
	}

	if _, err := os.Stat(filepath.Join(root, "public", "atom.xml")); err != nil {
		t.Fatalf("expected transactional write on disk: %v", err)
	}
}

func TestFilesystemProviderIgnoresUnknownOps(t *testing.T) {
	provider := storage.NewFilesystemProvider(t.TempDir(), "")

	if _, err := provider.Exec(context.Background(), "SELECT 1"); err != nil {
		t.Fatalf("unknown op should be ignored: %v", err)
	}
	rows, err := provider.Query(context.Background(), "SELECT 1")
	if err != nil {
		t.Fatalf("unknown query op: %v", err)
	}
	if rows == nil || rows.Next() {
		t.Fatal("expected empty rows for unknown query op")
	}
}
