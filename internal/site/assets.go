package site

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	gotheme "github.com/goliatone/go-theme"
)

// AssetResolver lists and opens theme assets for copying into the output
// tree. Asset paths are slash separated and relative to the theme root.
type AssetResolver interface {
	List(ctx context.Context) ([]string, error)
	Open(ctx context.Context, asset string) (io.ReadCloser, error)
}

// dirAssetResolver serves assets from the theme directory on disk.
type dirAssetResolver struct {
	dir string
}

// NewDirAssetResolver returns an AssetResolver rooted at the given theme
// directory.
func NewDirAssetResolver(dir string) AssetResolver {
	return &dirAssetResolver{dir: filepath.Clean(strings.TrimSpace(dir))}
}

// List walks the theme's assets/ subdirectory. A theme without assets is not
// an error.
func (r *dirAssetResolver) List(ctx context.Context) ([]string, error) {
	if r.dir == "" || r.dir == "." {
		return nil, nil
	}

	root := filepath.Join(r.dir, "assets")
	info, err := os.Stat(root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("site: list theme assets: %w", err)
	}
	if !info.IsDir() {
		return nil, nil
	}

	var assets []string
	err = filepath.WalkDir(root, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, relErr := filepath.Rel(r.dir, p)
		if relErr != nil {
			return relErr
		}
		assets = append(assets, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("site: list theme assets: %w", err)
	}

	sort.Strings(assets)
	return assets, nil
}

func (r *dirAssetResolver) Open(ctx context.Context, asset string) (io.ReadCloser, error) {
	resolved, err := r.resolve(asset)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(resolved)
	if err != nil {
		return nil, fmt.Errorf("site: open theme asset %q: %w", asset, err)
	}
	return file, nil
}

func (r *dirAssetResolver) resolve(asset string) (string, error) {
	cleaned := path.Clean(strings.TrimPrefix(strings.TrimSpace(asset), "/"))
	if cleaned == "" || cleaned == "." || cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return "", fmt.Errorf("site: theme asset %q escapes theme directory", asset)
	}
	return filepath.Join(r.dir, filepath.FromSlash(cleaned)), nil
}

// collectThemeAssets prefers the manifest's declared asset files and falls
// back to walking the theme's assets directory.
func collectThemeAssets(ctx context.Context, selection *gotheme.Selection, resolver AssetResolver) ([]string, error) {
	if assets := collectManifestAssets(selection); len(assets) > 0 {
		return assets, nil
	}
	if resolver == nil {
		return nil, nil
	}
	return resolver.List(ctx)
}

func collectManifestAssets(selection *gotheme.Selection) []string {
	if selection == nil || selection.Manifest == nil {
		return nil
	}

	assets := selection.Manifest.Assets.Files
	if variant := strings.TrimSpace(selection.Variant); variant != "" {
		if v, ok := selection.Manifest.Variants[variant]; ok && len(v.Assets.Files) > 0 {
			merged := make(map[string]string, len(selection.Manifest.Assets.Files)+len(v.Assets.Files))
			for key, file := range selection.Manifest.Assets.Files {
				merged[key] = file
			}
			for key, file := range v.Assets.Files {
				merged[key] = file
			}
			assets = merged
		}
	}

	seen := map[string]struct{}{}
	var out []string
	for _, asset := range assets {
		asset = strings.TrimPrefix(strings.TrimSpace(asset), "/")
		if asset == "" {
			continue
		}
		if _, ok := seen[asset]; ok {
			continue
		}
		seen[asset] = struct{}{}
		out = append(out, filepath.ToSlash(asset))
	}

	sort.Strings(out)
	return out
}

func detectAssetContentType(asset string) string {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(asset), "."))
	switch ext {
	case "css":
		return "text/css"
	case "js":
		return "application/javascript"
	case "json":
		return "application/json"
	case "svg":
		return "image/svg+xml"
	case "png":
		return "image/png"
	case "jpg", "jpeg":
		return "image/jpeg"
	case "gif":
		return "image/gif"
	case "webp":
		return "image/webp"
	case "ico":
		return "image/x-icon"
	case "woff":
		return "font/woff"
	case "woff2":
		return "font/woff2"
	default:
		return "application/octet-stream"
	}
}
