package markdown

import (
	"context"
	"crypto/sha256"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/goliatone/go-til/pkg/interfaces"
)

// DefaultIncludeGlobs matches every Markdown file under the notes root.
var DefaultIncludeGlobs = []string{"**/*.md"}

// DefaultIgnoreGlobs keeps machine directories and generated README digests
// out of the note corpus. READMEs match at any depth because category
// directories carry generated index pages too.
var DefaultIgnoreGlobs = []string{
	"**/.git/**",
	"**/node_modules/**",
	".til/**",
	"public/**",
	"**/README.md",
}

// LoaderConfig configures how note files are discovered within a base
// directory. Include and Ignore hold doublestar globs matched against paths
// relative to BasePath.
type LoaderConfig struct {
	// BasePath is the root directory where the note tree lives.
	BasePath string
	// Include limits discovered files (defaults to DefaultIncludeGlobs).
	Include []string
	// Ignore excludes files and directories on top of DefaultIgnoreGlobs.
	Ignore []string
}

// Loader turns filesystem paths into Markdown documents with metadata. The
// first path segment under the notes root becomes the note category.
type Loader struct {
	fs       fs.FS
	basePath string
	include  []string
	ignore   []string
}

// NewLoader constructs a Loader using the provided filesystem and configuration.
func NewLoader(filesystem fs.FS, cfg LoaderConfig) *Loader {
	include := NormalizeGlobs(cfg.Include)
	if len(include) == 0 {
		include = append([]string(nil), DefaultIncludeGlobs...)
	}

	ignore := append([]string(nil), DefaultIgnoreGlobs...)
	ignore = append(ignore, NormalizeGlobs(cfg.Ignore)...)

	return &Loader{
		fs:       filesystem,
		basePath: filepath.Clean(cfg.BasePath),
		include:  include,
		ignore:   ignore,
	}
}

// LoadFile reads and parses a single note file. Explicit single-file loads
// bypass the include and ignore globs; the caller named the file.
func (l *Loader) LoadFile(ctx context.Context, path string, opts LoadParams) (*DocumentResult, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	rel, err := l.makeRelative(path)
	if err != nil {
		return nil, err
	}
	rel = filepath.ToSlash(rel)

	data, err := fs.ReadFile(l.fs, rel)
	if err != nil {
		return nil, fmt.Errorf("markdown loader read %s: %w", rel, err)
	}

	info, err := fs.Stat(l.fs, rel)
	if err != nil {
		return nil, fmt.Errorf("markdown loader stat %s: %w", rel, err)
	}

	doc, err := BuildDocument(rel, CategoryFromPath(rel), data, info.ModTime())
	if err != nil {
		return nil, fmt.Errorf("markdown loader parse %s: %w", rel, err)
	}
	sum := sha256.Sum256(data)
	doc.Checksum = sum[:]

	return &DocumentResult{
		Document: doc,
		Source:   data,
	}, nil
}

// LoadDirectory discovers note files under dir and returns parsed documents
// in deterministic path order.
func (l *Loader) LoadDirectory(ctx context.Context, dir string, opts LoadParams) ([]*DocumentResult, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	root, err := l.makeRelative(dir)
	if err != nil {
		return nil, err
	}
	root = filepath.ToSlash(filepath.Clean(root))

	include := NormalizeGlobs(opts.Include)
	if len(include) == 0 {
		include = l.include
	}
	ignore := l.ignore
	if extra := NormalizeGlobs(opts.Ignore); len(extra) > 0 {
		ignore = append(append([]string(nil), ignore...), extra...)
	}

	var results []*DocumentResult

	walkErr := fs.WalkDir(l.fs, root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}

		rel := filepath.ToSlash(path)

		if d.IsDir() {
			if rel != root && IgnoredDir(rel, ignore) {
				return fs.SkipDir
			}
			return nil
		}

		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		if !MatchesAny(rel, include) || MatchesAny(rel, ignore) {
			return nil
		}

		result, err := l.LoadFile(ctx, rel, opts)
		if err != nil {
			return err
		}
		results = append(results, result)
		return nil
	})

	if walkErr != nil {
		return nil, walkErr
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].Document.FilePath < results[j].Document.FilePath
	})

	return results, nil
}

// Paths walks dir and returns the relative paths LoadDirectory would load,
// without reading or parsing the files. Lint uses it so one malformed file
// becomes a finding instead of aborting the whole run.
func (l *Loader) Paths(ctx context.Context, dir string, opts LoadParams) ([]string, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	root, err := l.makeRelative(dir)
	if err != nil {
		return nil, err
	}
	root = filepath.ToSlash(filepath.Clean(root))

	include := NormalizeGlobs(opts.Include)
	if len(include) == 0 {
		include = l.include
	}
	ignore := l.ignore
	if extra := NormalizeGlobs(opts.Ignore); len(extra) > 0 {
		ignore = append(append([]string(nil), ignore...), extra...)
	}

	var paths []string

	walkErr := fs.WalkDir(l.fs, root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}

		rel := filepath.ToSlash(path)

		if d.IsDir() {
			if rel != root && IgnoredDir(rel, ignore) {
				return fs.SkipDir
			}
			return nil
		}

		if MatchesAny(rel, include) && !MatchesAny(rel, ignore) {
			paths = append(paths, rel)
		}
		return nil
	})

	if walkErr != nil {
		return nil, walkErr
	}

	sort.Strings(paths)
	return paths, nil
}

// CategoryFromPath derives the note category from the first path segment
// under the notes root. Files at the root have no category; the note service
// substitutes its default.
func CategoryFromPath(rel string) string {
	rel = filepath.ToSlash(rel)
	if idx := strings.Index(rel, "/"); idx > 0 {
		return strings.ToLower(rel[:idx])
	}
	return ""
}

// MatchesAny reports whether any glob matches the slash-relative path. The
// watch package shares these semantics so live events and directory scans
// agree on which files are notes.
func MatchesAny(path string, globs []string) bool {
	for _, glob := range globs {
		if ok, err := doublestar.Match(glob, path); err == nil && ok {
			return true
		}
	}
	return false
}

// IgnoredDir reports whether an ignore glob covers the directory itself so
// the walk can skip the whole subtree.
func IgnoredDir(path string, globs []string) bool {
	for _, glob := range globs {
		dirGlob := strings.TrimSuffix(glob, "/**")
		if dirGlob == glob {
			continue
		}
		if ok, err := doublestar.Match(dirGlob, path); err == nil && ok {
			return true
		}
	}
	return false
}

// NormalizeGlobs slashes, trims, and drops invalid patterns.
func NormalizeGlobs(globs []string) []string {
	var out []string
	for _, glob := range globs {
		glob = strings.TrimSpace(filepath.ToSlash(glob))
		if glob == "" || !doublestar.ValidatePattern(glob) {
			continue
		}
		out = append(out, glob)
	}
	return out
}

func (l *Loader) makeRelative(path string) (string, error) {
	clean := filepath.Clean(path)
	if !filepath.IsAbs(clean) {
		return clean, nil
	}
	if l.basePath == "" {
		return "", fmt.Errorf("markdown loader: absolute path %s provided without base path", path)
	}
	rel, err := filepath.Rel(l.basePath, clean)
	if err != nil {
		return "", fmt.Errorf("markdown loader: make relative %s: %w", path, err)
	}
	return rel, nil
}

// DocumentResult carries the parsed document along with the raw source.
type DocumentResult struct {
	Document *interfaces.Document
	Source   []byte
}

// LoadParams provide call-specific glob overrides.
type LoadParams struct {
	Include []string
	Ignore  []string
}
