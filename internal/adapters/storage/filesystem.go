package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/goliatone/go-til/pkg/interfaces"
)

// Operation names understood by the filesystem provider. They match the
// artifact protocol the site builder issues against its storage dependency.
const (
	opEnsureDir = "site.ensure_dir"
	opWrite     = "site.write"
	opRead      = "site.read"
	opRemove    = "site.remove"
)

// NewFilesystemProvider returns a provider that persists site artifacts under
// root. base should match the builder's output directory when root already
// points inside it, so duplicated prefixes are trimmed; pass "" when root is
// the project directory and paths arrive output-dir qualified.
func NewFilesystemProvider(root, base string) interfaces.StorageProvider {
	base = filepath.ToSlash(filepath.Clean(base))
	if base == "." {
		base = ""
	}
	return &filesystemProvider{root: root, base: base}
}

type filesystemProvider struct {
	root string
	base string
}

func (s *filesystemProvider) Query(_ context.Context, query string, args ...any) (interfaces.Rows, error) {
	if query != opRead || len(args) == 0 {
		return emptyRows{}, nil
	}
	target := s.normalizePath(args[0])
	data, err := os.ReadFile(s.abs(target))
	if errors.Is(err, os.ErrNotExist) {
		return &fileRows{}, nil
	}
	if err != nil {
		return nil, err
	}
	return &fileRows{data: data, exists: true}, nil
}

func (s *filesystemProvider) Exec(_ context.Context, query string, args ...any) (interfaces.Result, error) {
	switch query {
	case opEnsureDir:
		if len(args) == 0 {
			return emptyResult{}, fmt.Errorf("ensure_dir requires path")
		}
		path := s.normalizePath(args[0])
		return emptyResult{}, os.MkdirAll(s.abs(path), 0o755)
	case opWrite:
		if len(args) < 2 {
			return emptyResult{}, fmt.Errorf("write requires path and reader")
		}
		path := s.normalizePath(args[0])
		reader, ok := args[1].(io.Reader)
		if !ok || reader == nil {
			return emptyResult{}, fmt.Errorf("write expects io.Reader content")
		}
		full := s.abs(path)
		if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
			return emptyResult{}, err
		}
		file, err := os.Create(full)
		if err != nil {
			return emptyResult{}, err
		}
		defer file.Close()
		if _, err := io.Copy(file, reader); err != nil {
			return emptyResult{}, err
		}
		return emptyResult{}, nil
	case opRemove:
		if len(args) == 0 {
			return emptyResult{}, fmt.Errorf("remove requires path")
		}
		path := s.normalizePath(args[0])
		err := os.RemoveAll(s.abs(path))
		if errors.Is(err, os.ErrNotExist) {
			return emptyResult{}, nil
		}
		return emptyResult{}, err
	default:
		return emptyResult{}, nil
	}
}

func (s *filesystemProvider) Transaction(_ context.Context, fn func(tx interfaces.Transaction) error) error {
	if fn == nil {
		return nil
	}
	return fn(&filesystemTx{provider: s})
}

func (s *filesystemProvider) abs(rel string) string {
	if rel == "" {
		return s.root
	}
	return filepath.Join(s.root, filepath.FromSlash(rel))
}

func (s *filesystemProvider) normalizePath(arg any) string {
	path, _ := arg.(string)
	path = filepath.ToSlash(filepath.Clean(path))
	if s.base != "" && strings.HasPrefix(path, s.base) {
		path = strings.TrimPrefix(path, s.base)
		path = strings.TrimPrefix(path, "/")
	}
	return path
}

type filesystemTx struct {
	provider *filesystemProvider
}

func (tx *filesystemTx) Query(ctx context.Context, query string, args ...any) (interfaces.Rows, error) {
	return tx.provider.Query(ctx, query, args...)
}

func (tx *filesystemTx) Exec(ctx context.Context, query string, args ...any) (interfaces.Result, error) {
	return tx.provider.Exec(ctx, query, args...)
}

func (tx *filesystemTx) Transaction(context.Context, func(interfaces.Transaction) error) error {
	return errors.New("nested transactions not supported")
}

func (tx *filesystemTx) Commit() error {
	return nil
}

func (tx *filesystemTx) Rollback() error {
	return nil
}

// fileRows yields a single file's contents. A zero value reports no rows,
// which is how missing files degrade readers to their fallback path.
type fileRows struct {
	data   []byte
	exists bool
	read   bool
}

func (r *fileRows) Next() bool {
	if !r.exists || r.read {
		return false
	}
	r.read = true
	return true
}

func (r *fileRows) Scan(dest ...any) error {
	if len(dest) == 0 {
		return fmt.Errorf("scan requires destination")
	}
	switch target := dest[0].(type) {
	case *[]byte:
		*target = append((*target)[:0], r.data...)
		return nil
	case *string:
		*target = string(r.data)
		return nil
	default:
		return fmt.Errorf("unsupported scan destination %T", dest[0])
	}
}

func (r *fileRows) Close() error {
	return nil
}
