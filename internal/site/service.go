package site

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"runtime"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/goliatone/go-til/internal/logging"
	"github.com/goliatone/go-til/internal/nav"
	"github.com/goliatone/go-til/note"
	"github.com/goliatone/go-til/pkg/interfaces"
)

var (
	// ErrServiceDisabled indicates site generation is disabled by configuration.
	ErrServiceDisabled = errors.New("site: service disabled")
	// ErrNoteNotFound indicates a targeted build referenced an unknown note slug.
	ErrNoteNotFound = errors.New("site: note not found")

	errRendererRequired = errors.New("site: template renderer is required")
	errNotesRequired    = errors.New("site: notes service is required")
	errMarkdownRequired = errors.New("site: markdown service is required")
	errNavRequired      = errors.New("site: navigation service is required")
	errStorageRequired  = errors.New("site: storage provider is required")
)

// Config captures runtime behaviour toggles for site generation.
type Config struct {
	OutputDir         string
	BaseURL           string
	Title             string
	Description       string
	Author            string
	ThemeDir          string
	ThemeVariant      string
	CSSVariablePrefix string
	PartialFallbacks  map[string]string
	CleanBuild        bool
	Incremental       bool
	CopyAssets        bool
	GenerateSitemap   bool
	GenerateRobots    bool
	GenerateFeeds     bool
	FeedLimit         int
	Workers           int
}

// BuildOptions narrows the scope of a build run.
type BuildOptions struct {
	// Force re-renders every page, ignoring the previous build manifest.
	// Combined with CleanBuild it wipes the output directory first.
	Force bool
	// IncludeScheduled renders notes whose publish time is still in the
	// future.
	IncludeScheduled bool
	// DryRun renders without writing any artifacts.
	DryRun bool
}

// BuildResult reports aggregated build metadata.
type BuildResult struct {
	PagesBuilt    int
	PagesSkipped  int
	PagesPruned   int
	AssetsBuilt   int
	AssetsSkipped int
	AssetsPruned  int
	FeedsBuilt    int
	Duration      time.Duration
	Rendered      []RenderedPage
	Diagnostics   []RenderDiagnostic
	Errors        []error
	DryRun        bool
}

// Dependencies lists the services site generation draws from.
type Dependencies struct {
	Notes    note.Service
	Markdown interfaces.MarkdownService
	Nav      *nav.Service
	Renderer interfaces.TemplateRenderer
	Storage  interfaces.StorageProvider
	Assets   AssetResolver
	Logger   interfaces.Logger
}

// Service renders the note index into static site artifacts.
type Service struct {
	cfg      Config
	deps     Dependencies
	themes   *themeSelector
	clock    func() time.Time
	disabled bool
}

// NewService wires a site builder with the provided configuration and
// dependencies.
func NewService(cfg Config, deps Dependencies) *Service {
	if deps.Logger == nil {
		deps.Logger = logging.NoOp()
	}
	if deps.Assets == nil && strings.TrimSpace(cfg.ThemeDir) != "" {
		deps.Assets = NewDirAssetResolver(cfg.ThemeDir)
	}
	return &Service{
		cfg:    cfg,
		deps:   deps,
		themes: newThemeSelector(cfg.ThemeDir, cfg.ThemeVariant, nil),
		clock:  time.Now,
	}
}

// NewDisabledService returns a Service whose operations fail with
// ErrServiceDisabled.
func NewDisabledService() *Service {
	return &Service{disabled: true, clock: time.Now}
}

func (s *Service) validate(opts BuildOptions) error {
	switch {
	case s.deps.Notes == nil:
		return errNotesRequired
	case s.deps.Markdown == nil:
		return errMarkdownRequired
	case s.deps.Nav == nil:
		return errNavRequired
	case s.deps.Renderer == nil:
		return errRendererRequired
	case s.deps.Storage == nil && !opts.DryRun:
		return errStorageRequired
	}
	return nil
}

// Build renders every page the current note set produces, copies theme
// assets, and writes feeds, sitemap, and robots artifacts. Per note load
// failures accumulate in the result instead of aborting the run; the build
// manifest is only persisted after an error free pass.
func (s *Service) Build(ctx context.Context, opts BuildOptions) (*BuildResult, error) {
	if s.disabled {
		return nil, ErrServiceDisabled
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := s.validate(opts); err != nil {
		return nil, err
	}

	start := time.Now()
	bc, err := s.loadContext(ctx, opts)
	if err != nil {
		return nil, err
	}

	result := &BuildResult{
		DryRun:      opts.DryRun,
		Diagnostics: make([]RenderDiagnostic, 0, len(bc.pages)),
	}

	var (
		mu          sync.Mutex
		rendered    = make([]RenderedPage, 0, len(bc.pages))
		errorsSlice []error
	)
	errorsSlice = append(errorsSlice, bc.loadErrors...)

	var writer artifactWriter = noopWriter{}
	if !opts.DryRun {
		writer = newArtifactWriter(s.deps.Storage)
	}

	manifest := newBuildManifest()
	if opts.Force {
		if s.cfg.CleanBuild && !opts.DryRun {
			if err := writer.Remove(ctx, s.outputBase()); err != nil {
				return nil, err
			}
		}
	} else {
		manifest = loadManifest(ctx, s.deps.Storage, s.manifestTargetPath())
	}

	meta := s.siteMetadata()
	theme := buildThemeContext(bc.theme, s.cfg.CSSVariablePrefix, s.cfg.PartialFallbacks)

	collect := func(outcome renderOutcome) {
		mu.Lock()
		defer mu.Unlock()
		result.Diagnostics = append(result.Diagnostics, outcome.diagnostic)
		if outcome.err != nil {
			errorsSlice = append(errorsSlice, outcome.err)
			return
		}
		if outcome.skipped {
			result.PagesSkipped++
			return
		}
		result.PagesBuilt++
		rendered = append(rendered, outcome.page)
	}

	workers := s.effectiveWorkerCount(len(bc.pages))
	if workers <= 1 || len(bc.pages) <= 1 {
		for _, spec := range bc.pages {
			if err := ctx.Err(); err != nil {
				errorsSlice = append(errorsSlice, err)
				result.Errors = errorsSlice
				return result, err
			}
			outcome := s.renderPage(ctx, bc, meta, theme, spec, manifest)
			collect(outcome)
			if outcome.err != nil {
				break
			}
		}
	} else if err := s.renderConcurrently(ctx, bc, meta, theme, workers, manifest, collect); err != nil {
		errorsSlice = append(errorsSlice, err)
		result.Errors = errorsSlice
		return result, err
	}

	sortRendered(rendered)
	sortDiagnostics(result.Diagnostics)

	if opts.DryRun {
		result.Rendered = rendered
		result.Duration = time.Since(start)
		if len(errorsSlice) > 0 {
			result.Errors = errorsSlice
			return result, errors.Join(errorsSlice...)
		}
		return result, nil
	}

	if err := s.persistPages(ctx, writer, rendered); err != nil {
		errorsSlice = append(errorsSlice, err)
	}

	var liveAssets map[string]struct{}
	if s.cfg.CopyAssets {
		summary, err := s.copyAssets(ctx, writer, bc, manifest)
		if err != nil {
			errorsSlice = append(errorsSlice, err)
		} else {
			result.AssetsBuilt = summary.Built
			result.AssetsSkipped = summary.Skipped
			liveAssets = summary.seen
		}
	}

	if s.cfg.GenerateFeeds {
		written, err := s.writeFeeds(ctx, writer, bc, meta)
		result.FeedsBuilt = written
		if err != nil {
			errorsSlice = append(errorsSlice, err)
		}
	}

	if s.cfg.GenerateSitemap {
		sitemapPages := s.mergeRenderedForSitemap(bc, rendered, manifest)
		if err := s.writeSitemap(ctx, writer, meta, bc, sitemapPages); err != nil {
			errorsSlice = append(errorsSlice, err)
		}
	}

	if s.cfg.GenerateRobots {
		if err := s.writeRobots(ctx, writer, bc); err != nil {
			errorsSlice = append(errorsSlice, err)
		}
	}

	if len(errorsSlice) == 0 {
		for _, page := range rendered {
			if strings.TrimSpace(page.Checksum) == "" {
				continue
			}
			manifest.setPage(page, bc.generatedAt)
		}

		livePages := make(map[string]struct{}, len(bc.pages))
		for _, spec := range bc.pages {
			livePages[normalizeRoute(spec.route)] = struct{}{}
		}
		pagesPruned, assetsPruned, pruneErr := s.pruneStale(ctx, writer, manifest, livePages, liveAssets)
		result.PagesPruned = pagesPruned
		result.AssetsPruned = assetsPruned
		if pruneErr != nil {
			errorsSlice = append(errorsSlice, pruneErr)
		}
	}
	if len(errorsSlice) == 0 {
		if err := s.persistManifest(ctx, writer, manifest, bc.generatedAt); err != nil {
			errorsSlice = append(errorsSlice, err)
		}
	}

	result.Rendered = rendered
	result.Duration = time.Since(start)

	s.deps.Logger.Info("site.build",
		"pages", result.PagesBuilt,
		"skipped", result.PagesSkipped,
		"assets", result.AssetsBuilt,
		"feeds", result.FeedsBuilt,
		"errors", len(errorsSlice),
		"duration", result.Duration,
	)

	if len(errorsSlice) > 0 {
		result.Errors = errorsSlice
		return result, errors.Join(errorsSlice...)
	}
	return result, nil
}

// BuildPage rebuilds a single note page along with the home and category
// listings that include it. Feeds and the sitemap refresh on the next full
// build.
func (s *Service) BuildPage(ctx context.Context, slug string) (*BuildResult, error) {
	if s.disabled {
		return nil, ErrServiceDisabled
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if err := s.validate(BuildOptions{}); err != nil {
		return nil, err
	}

	slug = strings.ToLower(strings.TrimSpace(slug))
	if slug == "" {
		return nil, fmt.Errorf("%w: empty slug", ErrNoteNotFound)
	}

	start := time.Now()
	bc, err := s.loadContext(ctx, BuildOptions{})
	if err != nil {
		return nil, err
	}

	var target *pageSpec
	for _, spec := range bc.pages {
		if spec.kind == PageKindNote && spec.note != nil && spec.note.Note.Slug == slug {
			target = spec
			break
		}
	}
	if target == nil {
		return nil, fmt.Errorf("%w: %q", ErrNoteNotFound, slug)
	}

	scoped := make([]*pageSpec, 0, 3)
	for _, spec := range bc.pages {
		switch {
		case spec == target:
			scoped = append(scoped, spec)
		case spec.kind == PageKindHome:
			scoped = append(scoped, spec)
		case spec.kind == PageKindCategory && spec.category == target.category:
			scoped = append(scoped, spec)
		}
	}

	writer := newArtifactWriter(s.deps.Storage)
	manifest := loadManifest(ctx, s.deps.Storage, s.manifestTargetPath())
	meta := s.siteMetadata()
	theme := buildThemeContext(bc.theme, s.cfg.CSSVariablePrefix, s.cfg.PartialFallbacks)

	result := &BuildResult{Diagnostics: make([]RenderDiagnostic, 0, len(scoped))}
	var rendered []RenderedPage
	errs := append([]error(nil), bc.loadErrors...)

	for _, spec := range scoped {
		outcome := s.renderPage(ctx, bc, meta, theme, spec, manifest)
		result.Diagnostics = append(result.Diagnostics, outcome.diagnostic)
		if outcome.err != nil {
			errs = append(errs, outcome.err)
			break
		}
		if outcome.skipped {
			result.PagesSkipped++
			continue
		}
		result.PagesBuilt++
		rendered = append(rendered, outcome.page)
	}

	if err := s.persistPages(ctx, writer, rendered); err != nil {
		errs = append(errs, err)
	}

	if len(errs) == 0 {
		for _, page := range rendered {
			manifest.setPage(page, bc.generatedAt)
		}
		if err := s.persistManifest(ctx, writer, manifest, bc.generatedAt); err != nil {
			errs = append(errs, err)
		}
	}

	result.Rendered = rendered
	result.Duration = time.Since(start)
	if len(errs) > 0 {
		result.Errors = errs
		return result, errors.Join(errs...)
	}
	return result, nil
}

// Clean removes the generated output directory.
func (s *Service) Clean(ctx context.Context) error {
	if s.disabled {
		return ErrServiceDisabled
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if s.deps.Storage == nil {
		return errStorageRequired
	}
	base := s.outputBase()
	if base == "" {
		return fmt.Errorf("site: output directory required")
	}
	return newArtifactWriter(s.deps.Storage).Remove(ctx, base)
}

func (s *Service) renderConcurrently(
	ctx context.Context,
	bc *buildContext,
	meta SiteMetadata,
	theme ThemeContext,
	workers int,
	manifest *buildManifest,
	collect func(renderOutcome),
) error {
	poolCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	jobs := make(chan *pageSpec)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for spec := range jobs {
				select {
				case <-poolCtx.Done():
					// Drain remaining jobs without rendering.
					continue
				default:
				}
				outcome := s.renderPage(poolCtx, bc, meta, theme, spec, manifest)
				collect(outcome)
				if outcome.err != nil {
					cancel()
				}
			}
		}()
	}

feed:
	for _, spec := range bc.pages {
		select {
		case <-poolCtx.Done():
			break feed
		case jobs <- spec:
		}
	}
	close(jobs)
	wg.Wait()

	// Render errors travel through collect; only parent cancellation aborts
	// the rest of the build.
	return ctx.Err()
}

func (s *Service) renderPage(
	ctx context.Context,
	bc *buildContext,
	meta SiteMetadata,
	theme ThemeContext,
	spec *pageSpec,
	manifest *buildManifest,
) renderOutcome {
	outcome := renderOutcome{
		diagnostic: RenderDiagnostic{Route: spec.route, Template: spec.template},
	}

	select {
	case <-ctx.Done():
		outcome.err = ctx.Err()
		outcome.diagnostic.Err = ctx.Err()
		return outcome
	default:
	}

	output := joinOutputPath(s.outputBase(), spec.output)
	if s.cfg.Incremental && manifest.shouldSkipPage(spec.route, spec.metadata.Hash, output) {
		outcome.skipped = true
		outcome.diagnostic.Skipped = true
		return outcome
	}

	templateCtx := TemplateContext{
		Site: meta,
		Page: PageContext{
			Kind:     spec.kind,
			Title:    spec.title,
			Route:    spec.route,
			Category: spec.category,
			Note:     spec.note,
			Notes:    spec.notes,
			Metadata: spec.metadata,
		},
		Nav:     bc.treeFor(spec),
		Build:   BuildMetadata{GeneratedAt: bc.generatedAt, Options: bc.options},
		Theme:   theme,
		Helpers: newTemplateHelpers(s.cfg.BaseURL),
	}

	start := time.Now()
	html, err := s.deps.Renderer.RenderTemplate(spec.template, templateCtx)
	duration := time.Since(start)
	outcome.diagnostic.Duration = duration
	if err != nil {
		wrapped := fmt.Errorf("site: render template %q for route %s: %w", spec.template, spec.route, err)
		outcome.err = wrapped
		outcome.diagnostic.Err = wrapped
		return outcome
	}

	outcome.page = RenderedPage{
		Kind:     spec.kind,
		Route:    spec.route,
		Output:   output,
		Template: spec.template,
		Title:    spec.title,
		HTML:     html,
		Metadata: spec.metadata,
		Duration: duration,
		Checksum: computeHash([]byte(html)),
	}
	return outcome
}

func (s *Service) persistPages(ctx context.Context, writer artifactWriter, pages []RenderedPage) error {
	for _, page := range pages {
		req := writeFileRequest{
			Path:        page.Output,
			Content:     strings.NewReader(page.HTML),
			Size:        int64(len(page.HTML)),
			Category:    categoryPage,
			ContentType: "text/html; charset=utf-8",
			Checksum:    page.Checksum,
			Metadata: map[string]string{
				"kind":     page.Kind,
				"route":    page.Route,
				"template": page.Template,
			},
		}
		if err := writer.WriteFile(ctx, req); err != nil {
			return err
		}
	}
	return nil
}

type assetCopySummary struct {
	Built   int
	Skipped int

	seen map[string]struct{}
}

func (s *Service) copyAssets(ctx context.Context, writer artifactWriter, bc *buildContext, manifest *buildManifest) (assetCopySummary, error) {
	summary := assetCopySummary{seen: map[string]struct{}{}}
	if s.deps.Assets == nil {
		return summary, nil
	}

	assets, err := collectThemeAssets(ctx, bc.theme, s.deps.Assets)
	if err != nil {
		return summary, err
	}

	for _, asset := range assets {
		if _, ok := summary.seen[asset]; ok {
			continue
		}
		summary.seen[asset] = struct{}{}

		reader, err := s.deps.Assets.Open(ctx, asset)
		if err != nil {
			return summary, err
		}
		data, err := io.ReadAll(reader)
		_ = reader.Close()
		if err != nil {
			return summary, fmt.Errorf("site: read theme asset %q: %w", asset, err)
		}

		fullPath := joinOutputPath(s.outputBase(), asset)
		checksum := computeHash(data)
		if s.cfg.Incremental && manifest.shouldSkipAsset(asset, checksum, fullPath) {
			summary.Skipped++
			continue
		}

		req := writeFileRequest{
			Path:        fullPath,
			Content:     bytes.NewReader(data),
			Size:        int64(len(data)),
			Category:    categoryAsset,
			ContentType: detectAssetContentType(asset),
			Checksum:    checksum,
			Metadata:    map[string]string{"asset": asset},
		}
		if err := writer.WriteFile(ctx, req); err != nil {
			return summary, err
		}
		summary.Built++

		manifest.setAsset(manifestAsset{
			Source:   asset,
			Output:   fullPath,
			Checksum: checksum,
			Size:     int64(len(data)),
			CopiedAt: s.clock().UTC(),
		})
	}
	return summary, nil
}

// pruneStale drops manifest entries for routes and assets this build no
// longer produces and removes their artifacts. A nil liveAssets set skips
// asset pruning, which keeps disabled asset copying from deleting outputs.
func (s *Service) pruneStale(
	ctx context.Context,
	writer artifactWriter,
	manifest *buildManifest,
	livePages map[string]struct{},
	liveAssets map[string]struct{},
) (int, int, error) {
	removedPages := manifest.prunePages(livePages)
	for _, page := range removedPages {
		if strings.TrimSpace(page.Output) == "" {
			continue
		}
		if err := writer.Remove(ctx, page.Output); err != nil {
			return len(removedPages), 0, err
		}
	}

	if liveAssets == nil {
		return len(removedPages), 0, nil
	}

	removedAssets := manifest.pruneAssets(liveAssets)
	for _, asset := range removedAssets {
		if strings.TrimSpace(asset.Output) == "" {
			continue
		}
		if err := writer.Remove(ctx, asset.Output); err != nil {
			return len(removedPages), len(removedAssets), err
		}
	}

	if len(removedPages) > 0 || len(removedAssets) > 0 {
		s.deps.Logger.Debug("site.prune", "pages", len(removedPages), "assets", len(removedAssets))
	}
	return len(removedPages), len(removedAssets), nil
}

func (s *Service) mergeRenderedForSitemap(bc *buildContext, rendered []RenderedPage, manifest *buildManifest) []RenderedPage {
	renderedByRoute := make(map[string]RenderedPage, len(rendered))
	for _, page := range rendered {
		renderedByRoute[normalizeRoute(page.Route)] = page
	}

	pages := make([]RenderedPage, 0, len(bc.pages))
	for _, spec := range bc.pages {
		if page, ok := renderedByRoute[normalizeRoute(spec.route)]; ok {
			pages = append(pages, page)
			continue
		}
		if entry, ok := manifest.page(spec.route); ok {
			pages = append(pages, RenderedPage{
				Kind:     spec.kind,
				Route:    spec.route,
				Output:   entry.Output,
				Template: entry.Template,
				Metadata: DependencyMetadata{Hash: entry.Hash, LastModified: entry.LastModified},
				Checksum: entry.Checksum,
			})
			continue
		}
		pages = append(pages, RenderedPage{
			Kind:     spec.kind,
			Route:    spec.route,
			Template: spec.template,
			Metadata: spec.metadata,
		})
	}
	return pages
}

func (s *Service) writeSitemap(ctx context.Context, writer artifactWriter, meta SiteMetadata, bc *buildContext, pages []RenderedPage) error {
	content := buildSitemap(meta.BaseURL, pages, bc.generatedAt)
	target := joinOutputPath(s.outputBase(), "sitemap.xml")
	return writer.WriteFile(ctx, writeFileRequest{
		Path:        target,
		Content:     strings.NewReader(content),
		Size:        int64(len(content)),
		Category:    categorySitemap,
		ContentType: "application/xml",
		Checksum:    computeHash([]byte(content)),
		Metadata: map[string]string{
			"generated_at": bc.generatedAt.UTC().Format(time.RFC3339),
		},
	})
}

func (s *Service) writeRobots(ctx context.Context, writer artifactWriter, bc *buildContext) error {
	content := buildRobots(s.cfg.BaseURL, s.cfg.GenerateSitemap)
	target := joinOutputPath(s.outputBase(), "robots.txt")
	return writer.WriteFile(ctx, writeFileRequest{
		Path:        target,
		Content:     strings.NewReader(content),
		Size:        int64(len(content)),
		Category:    categoryRobots,
		ContentType: "text/plain; charset=utf-8",
		Checksum:    computeHash([]byte(content)),
		Metadata: map[string]string{
			"generated_at": bc.generatedAt.UTC().Format(time.RFC3339),
		},
	})
}

func (s *Service) persistManifest(ctx context.Context, writer artifactWriter, manifest *buildManifest, generatedAt time.Time) error {
	data, err := manifest.encode(generatedAt)
	if err != nil {
		return fmt.Errorf("site: encode manifest: %w", err)
	}
	return writer.WriteFile(ctx, writeFileRequest{
		Path:        s.manifestTargetPath(),
		Content:     bytes.NewReader(data),
		Size:        int64(len(data)),
		Category:    categoryManifest,
		ContentType: "application/json",
		Checksum:    computeHash(data),
		Metadata: map[string]string{
			"version":      strconv.Itoa(manifestVersion),
			"generated_at": generatedAt.UTC().Format(time.RFC3339),
		},
	})
}

func (s *Service) siteMetadata() SiteMetadata {
	return SiteMetadata{
		Title:       strings.TrimSpace(s.cfg.Title),
		Description: strings.TrimSpace(s.cfg.Description),
		Author:      strings.TrimSpace(s.cfg.Author),
		BaseURL:     strings.TrimRight(strings.TrimSpace(s.cfg.BaseURL), "/"),
		Metadata:    map[string]any{},
	}
}

func (s *Service) outputBase() string {
	return strings.Trim(strings.TrimSpace(s.cfg.OutputDir), "/")
}

func (s *Service) manifestTargetPath() string {
	return joinOutputPath(s.outputBase(), manifestFileName)
}

func (s *Service) effectiveWorkerCount(pageCount int) int {
	workers := s.cfg.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers < 1 {
		workers = 1
	}
	if pageCount > 0 && workers > pageCount {
		return pageCount
	}
	return workers
}

func sortRendered(pages []RenderedPage) {
	sort.Slice(pages, func(i, j int) bool { return pages[i].Route < pages[j].Route })
}

func sortDiagnostics(diags []RenderDiagnostic) {
	sort.Slice(diags, func(i, j int) bool { return diags[i].Route < diags[j].Route })
}
