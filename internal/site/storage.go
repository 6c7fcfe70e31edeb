package site

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"sync"

	"github.com/goliatone/go-til/pkg/interfaces"
)

// Storage operations issued by the builder. Providers route on the operation
// name, so filesystem sinks and test doubles can interpret the same calls.
const (
	opEnsureDir = "site.ensure_dir"
	opWrite     = "site.write"
	opRead      = "site.read"
	opRemove    = "site.remove"
)

type writeCategory string

// Artifact categories attached to write requests.
const (
	categoryPage     writeCategory = "page"
	categoryAsset    writeCategory = "asset"
	categoryFeed     writeCategory = "feed"
	categorySitemap  writeCategory = "sitemap"
	categoryRobots   writeCategory = "robots"
	categoryManifest writeCategory = "manifest"
)

// writeFileRequest describes a file write routed through the artifact
// writer. It is flattened into positional Exec arguments: path, content,
// size, category, content type, checksum, metadata.
type writeFileRequest struct {
	Path        string
	Content     io.Reader
	Size        int64
	Category    writeCategory
	ContentType string
	Checksum    string
	Metadata    map[string]string
}

// artifactWriter abstracts artifact persistence so dry runs can swap in a
// no-op sink without touching the build pipeline.
type artifactWriter interface {
	EnsureDir(ctx context.Context, dir string) error
	WriteFile(ctx context.Context, req writeFileRequest) error
	Remove(ctx context.Context, target string) error
}

func newArtifactWriter(storage interfaces.StorageProvider) artifactWriter {
	if storage == nil {
		return noopWriter{}
	}
	return &storageWriter{
		storage: storage,
		dirs:    make(map[string]struct{}),
	}
}

type storageWriter struct {
	storage interfaces.StorageProvider

	mu   sync.Mutex
	dirs map[string]struct{}
}

func (w *storageWriter) EnsureDir(ctx context.Context, dir string) error {
	dir = strings.TrimSpace(dir)
	if dir == "" || dir == "." {
		return nil
	}

	w.mu.Lock()
	if _, ok := w.dirs[dir]; ok {
		w.mu.Unlock()
		return nil
	}
	w.mu.Unlock()

	if _, err := w.storage.Exec(ctx, opEnsureDir, dir); err != nil {
		return fmt.Errorf("site: ensure dir %q: %w", dir, err)
	}

	w.mu.Lock()
	w.dirs[dir] = struct{}{}
	w.mu.Unlock()
	return nil
}

func (w *storageWriter) WriteFile(ctx context.Context, req writeFileRequest) error {
	if strings.TrimSpace(req.Path) == "" {
		return errors.New("site: write requires a path")
	}
	if req.Content == nil {
		return fmt.Errorf("site: write %q requires content", req.Path)
	}
	if req.Metadata == nil {
		req.Metadata = map[string]string{}
	}
	if err := w.EnsureDir(ctx, path.Dir(req.Path)); err != nil {
		return err
	}

	args := []any{
		req.Path,
		req.Content,
		req.Size,
		string(req.Category),
		req.ContentType,
		req.Checksum,
		req.Metadata,
	}
	if _, err := w.storage.Exec(ctx, opWrite, args...); err != nil {
		return fmt.Errorf("site: write %q: %w", req.Path, err)
	}
	return nil
}

func (w *storageWriter) Remove(ctx context.Context, target string) error {
	target = strings.TrimSpace(target)
	if target == "" {
		return nil
	}
	if _, err := w.storage.Exec(ctx, opRemove, target); err != nil {
		return fmt.Errorf("site: remove %q: %w", target, err)
	}
	return nil
}

// noopWriter satisfies artifactWriter for dry runs.
type noopWriter struct{}

func (noopWriter) EnsureDir(context.Context, string) error           { return nil }
func (noopWriter) WriteFile(context.Context, writeFileRequest) error { return nil }
func (noopWriter) Remove(context.Context, string) error              { return nil }
