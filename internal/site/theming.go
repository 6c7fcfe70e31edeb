package site

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	gotheme "github.com/goliatone/go-theme"
)

type themeManifestLoader interface {
	Load(themePath string) (*gotheme.Manifest, error)
}

type fsThemeManifestLoader struct{}

// themeManifestFile is the go-theme manifest name inside a theme directory.
// Template-only themes without one fall back to bare template names.
const themeManifestFile = "theme.json"

func (fsThemeManifestLoader) Load(themePath string) (*gotheme.Manifest, error) {
	trimmed := strings.TrimSpace(themePath)
	if trimmed == "" {
		return nil, fs.ErrNotExist
	}

	cleaned := filepath.Clean(trimmed)
	if _, err := os.Stat(cleaned); err != nil {
		return nil, err
	}
	if _, err := os.Stat(filepath.Join(cleaned, themeManifestFile)); err != nil {
		return nil, err
	}

	return gotheme.LoadDir(os.DirFS(cleaned), ".")
}

// themeSelector resolves the configured theme directory into a go-theme
// selection, once, shared by every page render. A missing theme directory is
// not an error: pages fall back to bare template names and empty tokens.
type themeSelector struct {
	loader  themeManifestLoader
	dir     string
	variant string

	mu        sync.Mutex
	resolved  bool
	selection *gotheme.Selection
	loadErr   error
}

func newThemeSelector(dir, variant string, loader themeManifestLoader) *themeSelector {
	if loader == nil {
		loader = fsThemeManifestLoader{}
	}
	return &themeSelector{
		loader:  loader,
		dir:     strings.TrimSpace(dir),
		variant: strings.TrimSpace(variant),
	}
}

func (s *themeSelector) Selection() (*gotheme.Selection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.resolved {
		return s.selection, s.loadErr
	}
	s.resolved = true

	if s.dir == "" {
		return nil, nil
	}

	manifest, err := s.loader.Load(s.dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		s.loadErr = fmt.Errorf("site: load theme manifest from %s: %w", s.dir, err)
		return nil, s.loadErr
	}
	if manifest == nil {
		return nil, nil
	}

	normalized := *manifest
	if strings.TrimSpace(normalized.Name) == "" {
		normalized.Name = filepath.Base(s.dir)
	}

	registry := gotheme.NewRegistry()
	if err := registry.Register(&normalized); err != nil {
		s.loadErr = fmt.Errorf("site: register theme manifest: %w", err)
		return nil, s.loadErr
	}

	selector := gotheme.Selector{
		Registry:       registry,
		DefaultTheme:   normalized.Name,
		DefaultVariant: s.variant,
	}

	selection, err := selector.Select(normalized.Name, s.variant)
	if err != nil {
		s.loadErr = fmt.Errorf("site: select theme %s: %w", normalized.Name, err)
		return nil, s.loadErr
	}

	s.selection = selection
	return s.selection, nil
}

// themeFingerprint contributes the active theme to page dependency hashes so
// switching themes invalidates every cached page.
func themeFingerprint(selection *gotheme.Selection) string {
	if selection == nil {
		return "none"
	}
	version := ""
	if selection.Manifest != nil {
		version = selection.Manifest.Version
	}
	return selection.Theme + "@" + version + "#" + selection.Variant
}
