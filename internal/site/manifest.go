package site

import (
	"context"
	"encoding/json"
	"sort"
	"time"

	"github.com/goliatone/go-til/pkg/interfaces"
)

const (
	manifestFileName = ".til-manifest.json"
	manifestVersion  = 1
)

// buildManifest tracks what the previous build produced so unchanged pages
// and assets can be skipped. Workers only read it while the pool runs;
// writes happen after the pool drains, so no lock is needed.
type buildManifest struct {
	pages  map[string]manifestPage
	assets map[string]manifestAsset
}

type manifestDocument struct {
	Version     int             `json:"version"`
	GeneratedAt time.Time       `json:"generated_at"`
	Pages       []manifestPage  `json:"pages,omitempty"`
	Assets      []manifestAsset `json:"assets,omitempty"`
}

type manifestPage struct {
	Route        string    `json:"route"`
	Output       string    `json:"output"`
	Template     string    `json:"template,omitempty"`
	Hash         string    `json:"hash"`
	Checksum     string    `json:"checksum,omitempty"`
	LastModified time.Time `json:"last_modified"`
	RenderedAt   time.Time `json:"rendered_at"`
}

type manifestAsset struct {
	Source   string    `json:"source"`
	Output   string    `json:"output"`
	Checksum string    `json:"checksum"`
	Size     int64     `json:"size"`
	CopiedAt time.Time `json:"copied_at"`
}

func newBuildManifest() *buildManifest {
	return &buildManifest{
		pages:  make(map[string]manifestPage),
		assets: make(map[string]manifestAsset),
	}
}

// loadManifest reads the previous build manifest through the storage
// provider. Any failure yields a fresh manifest so builds degrade to a full
// render instead of aborting.
func loadManifest(ctx context.Context, provider interfaces.StorageProvider, manifestPath string) *buildManifest {
	manifest := newBuildManifest()
	if provider == nil {
		return manifest
	}

	rows, err := provider.Query(ctx, opRead, manifestPath)
	if err != nil || rows == nil {
		return manifest
	}
	defer rows.Close()

	if !rows.Next() {
		return manifest
	}

	var data []byte
	if err := rows.Scan(&data); err != nil {
		return manifest
	}

	var doc manifestDocument
	if err := json.Unmarshal(data, &doc); err != nil || doc.Version != manifestVersion {
		return manifest
	}

	for _, page := range doc.Pages {
		manifest.pages[normalizeRoute(page.Route)] = page
	}
	for _, asset := range doc.Assets {
		manifest.assets[asset.Source] = asset
	}
	return manifest
}

func (m *buildManifest) setPage(page RenderedPage, renderedAt time.Time) {
	m.pages[normalizeRoute(page.Route)] = manifestPage{
		Route:        page.Route,
		Output:       page.Output,
		Template:     page.Template,
		Hash:         page.Metadata.Hash,
		Checksum:     page.Checksum,
		LastModified: page.Metadata.LastModified,
		RenderedAt:   renderedAt,
	}
}

func (m *buildManifest) page(route string) (manifestPage, bool) {
	page, ok := m.pages[normalizeRoute(route)]
	return page, ok
}

// shouldSkipPage reports whether a page with the given dependency hash and
// output location already exists from a previous build. Route keys are
// normalized so trailing slash variants compare equal.
func (m *buildManifest) shouldSkipPage(route, hash, output string) bool {
	page, ok := m.pages[normalizeRoute(route)]
	if !ok {
		return false
	}
	if hash == "" || page.Hash == "" {
		return false
	}
	return page.Hash == hash && page.Output == output
}

func (m *buildManifest) setAsset(asset manifestAsset) {
	m.assets[asset.Source] = asset
}

func (m *buildManifest) shouldSkipAsset(source, checksum, output string) bool {
	asset, ok := m.assets[source]
	if !ok {
		return false
	}
	if checksum == "" || asset.Checksum == "" {
		return false
	}
	return asset.Checksum == checksum && asset.Output == output
}

// prunePages drops manifest entries whose routes are no longer produced and
// returns them so the caller can remove the stale artifacts.
func (m *buildManifest) prunePages(live map[string]struct{}) []manifestPage {
	var removed []manifestPage
	for route, page := range m.pages {
		if _, ok := live[route]; ok {
			continue
		}
		removed = append(removed, page)
		delete(m.pages, route)
	}
	sort.Slice(removed, func(i, j int) bool { return removed[i].Route < removed[j].Route })
	return removed
}

func (m *buildManifest) pruneAssets(live map[string]struct{}) []manifestAsset {
	var removed []manifestAsset
	for source, asset := range m.assets {
		if _, ok := live[source]; ok {
			continue
		}
		removed = append(removed, asset)
		delete(m.assets, source)
	}
	sort.Slice(removed, func(i, j int) bool { return removed[i].Source < removed[j].Source })
	return removed
}

// encode serializes the manifest with stable ordering so repeated builds
// produce byte-identical output.
func (m *buildManifest) encode(generatedAt time.Time) ([]byte, error) {
	doc := manifestDocument{
		Version:     manifestVersion,
		GeneratedAt: generatedAt.UTC(),
	}

	routes := make([]string, 0, len(m.pages))
	for route := range m.pages {
		routes = append(routes, route)
	}
	sort.Strings(routes)
	for _, route := range routes {
		doc.Pages = append(doc.Pages, m.pages[route])
	}

	sources := make([]string, 0, len(m.assets))
	for source := range m.assets {
		sources = append(sources, source)
	}
	sort.Strings(sources)
	for _, source := range sources {
		doc.Assets = append(doc.Assets, m.assets[source])
	}

	return json.MarshalIndent(doc, "", "  ")
}
