package di

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"strings"
	"time"

	command "github.com/goliatone/go-command"
	repocache "github.com/goliatone/go-repository-cache/cache"
	urlkit "github.com/goliatone/go-urlkit"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-til/internal/adapters/noop"
	storageadapter "github.com/goliatone/go-til/internal/adapters/storage"
	lintcmd "github.com/goliatone/go-til/internal/commands/lint"
	notescmd "github.com/goliatone/go-til/internal/commands/notes"
	readmecmd "github.com/goliatone/go-til/internal/commands/readme"
	sitecmd "github.com/goliatone/go-til/internal/commands/site"
	"github.com/goliatone/go-til/internal/index"
	"github.com/goliatone/go-til/internal/jobs"
	"github.com/goliatone/go-til/internal/lint"
	"github.com/goliatone/go-til/internal/logging"
	"github.com/goliatone/go-til/internal/logging/console"
	"github.com/goliatone/go-til/internal/logging/gologger"
	"github.com/goliatone/go-til/internal/markdown"
	"github.com/goliatone/go-til/internal/nav"
	"github.com/goliatone/go-til/internal/notes"
	"github.com/goliatone/go-til/internal/runtimeconfig"
	tilscheduler "github.com/goliatone/go-til/internal/scheduler"
	"github.com/goliatone/go-til/internal/site"
	"github.com/goliatone/go-til/internal/watch"
	"github.com/goliatone/go-til/note"
	"github.com/goliatone/go-til/pkg/interfaces"
	pkgstorage "github.com/goliatone/go-til/pkg/storage"
)

// ErrWatchDisabled is returned by Watcher when the watch feature is off.
var ErrWatchDisabled = errors.New("di: watch feature is disabled")

// CommandRegistry is the registration surface the container expects from a
// host command bus.
type CommandRegistry interface {
	RegisterCommand(handler any) error
}

// CronRegistrar schedules a recurring command on the host scheduler.
type CronRegistrar func(command.HandlerConfig, any) error

// Container wires the TIL services from a validated configuration. Every
// binding can be overridden through an Option before defaults are built.
type Container struct {
	Config runtimeconfig.Config

	provider  interfaces.LoggerProvider
	artifacts interfaces.StorageProvider
	db        interfaces.StorageProvider
	template  interfaces.TemplateRenderer

	bunDB         *bun.DB
	cacheTTL      time.Duration
	cacheService  repocache.CacheService
	keySerializer repocache.KeySerializer

	noteRepo notes.NoteRepository
	linkRepo notes.LinkRepository

	scheduler    interfaces.Scheduler
	routeManager *urlkit.RouteManager

	noteSvc     note.Service
	markdownSvc interfaces.MarkdownService
	linter      interfaces.Linter
	indexSvc    *index.Service
	navSvc      *nav.Service
	siteSvc     *site.Service
	worker      *jobs.Worker
	audit       jobs.AuditRecorder

	noteCommands   *notescmd.HandlerSet
	lintCommands   *lintcmd.HandlerSet
	siteCommands   *sitecmd.HandlerSet
	readmeCommands *readmecmd.HandlerSet
}

// Option mutates the container before defaults are finalised.
type Option func(*Container)

// WithLoggerProvider overrides the logger provider built from configuration.
func WithLoggerProvider(provider interfaces.LoggerProvider) Option {
	return func(c *Container) {
		if provider != nil {
			c.provider = provider
		}
	}
}

// WithStorage overrides the artifact sink the site builder writes through.
func WithStorage(sp interfaces.StorageProvider) Option {
	return func(c *Container) {
		c.artifacts = sp
	}
}

// WithTemplate overrides the template renderer used for site pages.
func WithTemplate(tr interfaces.TemplateRenderer) Option {
	return func(c *Container) {
		c.template = tr
	}
}

// WithCache overrides the repository cache service and key serializer.
func WithCache(service repocache.CacheService, serializer repocache.KeySerializer) Option {
	return func(c *Container) {
		c.cacheService = service
		c.keySerializer = serializer
	}
}

// WithBunDB supplies an existing database handle instead of opening one from
// the storage configuration.
func WithBunDB(db *bun.DB) Option {
	return func(c *Container) {
		c.bunDB = db
	}
}

// WithScheduler overrides the publish scheduler binding.
func WithScheduler(scheduler interfaces.Scheduler) Option {
	return func(c *Container) {
		c.scheduler = scheduler
	}
}

// WithAuditRecorder overrides the journal status flips are recorded into.
func WithAuditRecorder(recorder jobs.AuditRecorder) Option {
	return func(c *Container) {
		if recorder != nil {
			c.audit = recorder
		}
	}
}

// WithRouteManager overrides the urlkit route table.
func WithRouteManager(manager *urlkit.RouteManager) Option {
	return func(c *Container) {
		c.routeManager = manager
	}
}

// WithNoteService overrides the default note service binding.
func WithNoteService(svc note.Service) Option {
	return func(c *Container) {
		c.noteSvc = svc
	}
}

// WithMarkdownService overrides the default markdown service binding.
func WithMarkdownService(svc interfaces.MarkdownService) Option {
	return func(c *Container) {
		c.markdownSvc = svc
	}
}

// WithLinter overrides the default linter binding.
func WithLinter(linter interfaces.Linter) Option {
	return func(c *Container) {
		c.linter = linter
	}
}

func WithIndexService(svc *index.Service) Option {
	return func(c *Container) {
		c.indexSvc = svc
	}
}

func WithNavService(svc *nav.Service) Option {
	return func(c *Container) {
		c.navSvc = svc
	}
}

func WithSiteService(svc *site.Service) Option {
	return func(c *Container) {
		c.siteSvc = svc
	}
}

// NewContainer creates a container from the provided configuration.
func NewContainer(cfg runtimeconfig.Config, opts ...Option) (*Container, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	cacheTTL := cfg.Cache.DefaultTTL.Std()
	if cacheTTL <= 0 {
		cacheTTL = time.Minute
	}

	c := &Container{
		Config:   cfg,
		db:       storageadapter.NewNoOpProvider(),
		cacheTTL: cacheTTL,
		noteRepo: notes.NewMemoryNoteRepository(),
		linkRepo: notes.NewMemoryLinkRepository(),
		audit:    jobs.NewInMemoryAuditRecorder(),
	}

	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}

	if err := c.configureLogging(); err != nil {
		return nil, err
	}
	c.configureCacheDefaults()
	if err := c.configureStorage(); err != nil {
		return nil, err
	}
	c.configureScheduler()
	c.configureNavigation()

	if err := c.configureServices(); err != nil {
		return nil, err
	}
	if err := c.configureCommands(); err != nil {
		return nil, err
	}

	return c, nil
}

func (c *Container) configureLogging() error {
	if c.provider != nil || !c.Config.Features.Logger {
		return nil
	}

	logCfg := c.Config.Logging
	switch strings.ToLower(strings.TrimSpace(logCfg.Provider)) {
	case "gologger":
		provider, err := gologger.NewProvider(gologger.Config{
			Level:     logCfg.Level,
			Format:    logCfg.Format,
			AddSource: logCfg.AddSource,
			Focus:     logCfg.Focus,
		})
		if err != nil {
			return err
		}
		c.provider = provider
	default:
		c.provider = console.NewProvider(console.Options{MinLevel: logCfg.Level})
	}
	return nil
}

func (c *Container) configureCacheDefaults() {
	if !c.Config.Cache.Enabled {
		return
	}

	if c.cacheService == nil {
		cfg := repocache.DefaultConfig()
		if c.cacheTTL > 0 {
			cfg.TTL = c.cacheTTL
		}
		service, err := repocache.NewCacheService(cfg)
		if err == nil {
			c.cacheService = service
		}
	}

	if c.cacheService != nil && c.keySerializer == nil {
		c.keySerializer = repocache.NewDefaultKeySerializer()
	}
}

func (c *Container) configureStorage() error {
	driver := strings.ToLower(strings.TrimSpace(c.Config.Storage.Driver))
	if c.bunDB == nil && driver != "" && driver != "memory" {
		db, err := pkgstorage.Open(pkgstorage.Config{
			Name:   "til",
			Driver: driver,
			DSN:    c.Config.Storage.DSN,
		})
		if err != nil {
			return err
		}
		c.bunDB = db
	}

	if c.bunDB != nil {
		c.noteRepo = notes.NewBunNoteRepositoryWithCache(c.bunDB, c.cacheService, c.keySerializer)
		c.linkRepo = notes.NewBunLinkRepositoryWithCache(c.bunDB, c.cacheService, c.keySerializer)
		c.db = storageadapter.NewBunProvider(c.bunDB.DB)
	}
	return nil
}

func (c *Container) configureScheduler() {
	if c.scheduler != nil {
		return
	}
	if c.Config.Features.Scheduling {
		c.scheduler = tilscheduler.NewInMemory()
		return
	}
	c.scheduler = tilscheduler.NewNoOp()
}

func (c *Container) configureNavigation() {
	if c.routeManager != nil {
		return
	}

	routeCfg := c.Config.Navigation.RouteConfig
	if routeCfg == nil {
		routeCfg = defaultRouteConfig(c.Config.Navigation)
	}
	c.routeManager = urlkit.NewRouteManager(routeCfg)
}

// defaultRouteConfig builds the fallback route table: home at the site root,
// notes at /:category/:slug/, categories at /:category/.
func defaultRouteConfig(navCfg runtimeconfig.NavigationConfig) *urlkit.Config {
	group := strings.TrimSpace(navCfg.Group)
	if group == "" {
		group = "site"
	}
	noteRoute := strings.TrimSpace(navCfg.NoteRoute)
	if noteRoute == "" {
		noteRoute = "note"
	}
	categoryRoute := strings.TrimSpace(navCfg.CategoryRoute)
	if categoryRoute == "" {
		categoryRoute = "category"
	}
	return &urlkit.Config{
		Groups: []urlkit.GroupConfig{
			{
				Name: group,
				Paths: map[string]string{
					"home":        "/",
					noteRoute:     "/:category/:slug/",
					categoryRoute: "/:category/",
				},
			},
		},
	}
}

func (c *Container) configureServices() error {
	if c.noteSvc == nil {
		svc, err := notes.NewService(c.noteRepo, c.linkRepo,
			notes.WithScheduler(c.scheduler),
			notes.WithSchedulingEnabled(c.Config.Features.Scheduling),
			notes.WithLogger(c.provider),
		)
		if err != nil {
			return err
		}
		c.noteSvc = svc
	}

	if c.markdownSvc == nil {
		svc, err := markdown.NewService(markdown.Config{
			BasePath: c.Config.NotesDir,
			Include:  c.Config.Markdown.Include,
			Ignore:   c.Config.Markdown.Ignore,
			Parser:   parseOptions(c.Config.Markdown.Parser),
		}, nil,
			markdown.WithNotesService(c.noteSvc),
			markdown.WithLogger(logging.MarkdownLogger(c.provider)),
		)
		if err != nil {
			return err
		}
		c.markdownSvc = svc
	}

	if c.linter == nil {
		lintOpts := []lint.Option{
			lint.WithParseOptions(parseOptions(c.Config.Markdown.Parser)),
			lint.WithLogger(logging.LintLogger(c.provider)),
		}
		for rule, level := range c.Config.Lint.Rules {
			lintOpts = append(lintOpts, lint.WithSeverity(rule, parseSeverity(level)))
		}
		if schemes := c.Config.Lint.Schemes; len(schemes) > 0 {
			lintOpts = append(lintOpts, lint.WithAllowedSchemes(schemes...))
		}
		if tags := c.Config.Lint.FenceTags; len(tags) > 0 {
			lintOpts = append(lintOpts, lint.WithFenceLanguages(tags...))
		}
		linter, err := lint.New(c.markdownSvc, lintOpts...)
		if err != nil {
			return err
		}
		c.linter = linter
	}

	if c.indexSvc == nil {
		svc, err := index.NewService(c.noteSvc, index.WithLogger(logging.IndexLogger(c.provider)))
		if err != nil {
			return err
		}
		c.indexSvc = svc
	}

	if c.navSvc == nil {
		navCfg := c.Config.Navigation
		navOpts := []nav.Option{
			nav.WithGroup(navCfg.Group),
			nav.WithRoutes(navCfg.CategoryRoute, navCfg.NoteRoute),
			nav.WithLogger(logging.ModuleLogger(c.provider, "til.nav")),
		}
		if len(navCfg.Pinned) > 0 {
			pins := make([]nav.Pinned, 0, len(navCfg.Pinned))
			for _, pin := range navCfg.Pinned {
				pins = append(pins, nav.Pinned{Label: pin.Label, URL: pin.URL})
			}
			navOpts = append(navOpts, nav.WithPinned(pins...))
		}
		svc, err := nav.NewService(c.noteSvc, c.routeManager, navOpts...)
		if err != nil {
			return err
		}
		c.navSvc = svc
	}

	if c.siteSvc == nil {
		if !c.Config.Features.Site {
			c.siteSvc = site.NewDisabledService()
		} else {
			renderer := c.template
			if renderer == nil {
				built, err := site.NewTemplateRenderer(c.Config.Site.ThemeDir)
				if err != nil {
					return err
				}
				renderer = built
			}
			artifacts := c.artifacts
			if artifacts == nil {
				// Rooting the provider at the output dir keeps absolute
				// OutputDir configs on disk where they point; the builder
				// emits output-dir qualified paths, which base trims back.
				artifacts = storageadapter.NewFilesystemProvider(c.Config.Site.OutputDir, c.Config.Site.OutputDir)
				c.artifacts = artifacts
			}
			siteCfg := c.Config.Site
			c.siteSvc = site.NewService(site.Config{
				OutputDir:       siteCfg.OutputDir,
				BaseURL:         c.Config.BaseURL,
				Title:           siteCfg.Title,
				Description:     siteCfg.Description,
				Author:          siteCfg.Author,
				ThemeDir:        siteCfg.ThemeDir,
				ThemeVariant:    siteCfg.ThemeVariant,
				CleanBuild:      siteCfg.CleanBuild,
				Incremental:     siteCfg.Incremental,
				CopyAssets:      siteCfg.CopyAssets,
				GenerateSitemap: siteCfg.GenerateSitemap,
				GenerateRobots:  siteCfg.GenerateRobots,
				GenerateFeeds:   siteCfg.GenerateFeeds,
				FeedLimit:       siteCfg.FeedLimit,
				Workers:         siteCfg.Workers,
			}, site.Dependencies{
				Notes:    c.noteSvc,
				Markdown: c.markdownSvc,
				Nav:      c.navSvc,
				Renderer: renderer,
				Storage:  artifacts,
				Assets:   site.NewDirAssetResolver(siteCfg.ThemeDir),
				Logger:   logging.SiteLogger(c.provider),
			})
		}
	}

	if c.worker == nil {
		workerOpts := []jobs.Option{
			jobs.WithLogger(logging.SchedulerLogger(c.provider)),
			jobs.WithAuditRecorder(c.audit),
		}
		if size := c.Config.Commands.PublishBatchSize; size > 0 {
			workerOpts = append(workerOpts, jobs.WithBatchSize(size))
		}
		c.worker = jobs.NewWorker(c.scheduler, c.noteRepo, workerOpts...)
	}

	return nil
}

func (c *Container) configureCommands() error {
	if !c.Config.Commands.Enabled {
		return nil
	}

	noteSet, err := notescmd.RegisterNoteCommands(nil, c.markdownSvc, c.provider, notescmd.FeatureGates{})
	if err != nil {
		return err
	}
	c.noteCommands = noteSet

	lintSet, err := lintcmd.RegisterLintCommands(nil, c.linter, c.provider, lintcmd.FeatureGates{})
	if err != nil {
		return err
	}
	c.lintCommands = lintSet

	siteSet, err := sitecmd.RegisterSiteCommands(nil, c.siteSvc, c.provider, c.siteGates())
	if err != nil {
		return err
	}
	c.siteCommands = siteSet

	readmeSet, err := readmecmd.RegisterReadmeCommands(nil, c.indexSvc, c.provider, readmecmd.FeatureGates{})
	if err != nil {
		return err
	}
	c.readmeCommands = readmeSet

	return nil
}

func (c *Container) siteGates() sitecmd.FeatureGates {
	enabled := c.Config.Features.Site
	return sitecmd.FeatureGates{SiteEnabled: func() bool { return enabled }}
}

// RegisterCommands registers the note, lint, site, and readme command
// handlers with a host command bus. It is a no-op when the command layer is
// disabled by configuration.
func (c *Container) RegisterCommands(reg CommandRegistry) error {
	if reg == nil || !c.Config.Commands.Enabled {
		return nil
	}
	if _, err := notescmd.RegisterNoteCommands(reg, c.markdownSvc, c.provider, notescmd.FeatureGates{}); err != nil {
		return err
	}
	if _, err := lintcmd.RegisterLintCommands(reg, c.linter, c.provider, lintcmd.FeatureGates{}); err != nil {
		return err
	}
	if _, err := sitecmd.RegisterSiteCommands(reg, c.siteSvc, c.provider, c.siteGates()); err != nil {
		return err
	}
	if _, err := readmecmd.RegisterReadmeCommands(reg, c.indexSvc, c.provider, readmecmd.FeatureGates{}); err != nil {
		return err
	}
	return nil
}

// RegisterCrons wires the recurring sync and build commands into the host
// scheduler. Expressions come from the commands configuration; an empty
// expression skips that job.
func (c *Container) RegisterCrons(registrar CronRegistrar) error {
	if registrar == nil || !c.Config.Commands.Enabled {
		return nil
	}

	if expr := strings.TrimSpace(c.Config.Commands.SyncSchedule); expr != "" && c.noteCommands != nil {
		msg := notescmd.SyncDirectoryCommand{
			Directory:      ".",
			DeleteOrphaned: true,
			UpdateExisting: true,
		}
		cfg := command.HandlerConfig{Expression: expr}
		if err := notescmd.RegisterNoteSyncCron(notescmd.CronRegistrar(registrar), c.noteCommands.Sync, cfg, msg); err != nil {
			return err
		}
	}

	if expr := strings.TrimSpace(c.Config.Commands.BuildSchedule); expr != "" && c.siteCommands != nil {
		cfg := command.HandlerConfig{Expression: expr}
		if err := sitecmd.RegisterSiteBuildCron(sitecmd.CronRegistrar(registrar), c.siteCommands.Build, cfg, sitecmd.BuildSiteCommand{}); err != nil {
			return err
		}
	}

	return nil
}

// Watcher builds a notes-tree watcher delivering debounced batches to the
// handler. The watch feature must be enabled by configuration.
func (c *Container) Watcher(handler watch.Handler) (*watch.Watcher, error) {
	if !c.Config.Features.Watch {
		return nil, ErrWatchDisabled
	}

	opts := []watch.Option{
		watch.WithLogger(logging.WatchLogger(c.provider)),
	}
	if debounce := c.Config.Watch.Debounce.Std(); debounce > 0 {
		opts = append(opts, watch.WithDebounce(debounce))
	}
	if include := c.Config.Markdown.Include; len(include) > 0 {
		opts = append(opts, watch.WithInclude(include...))
	}
	ignore := append(append([]string(nil), c.Config.Markdown.Ignore...), c.Config.Watch.Ignore...)
	if len(ignore) > 0 {
		opts = append(opts, watch.WithIgnore(ignore...))
	}
	return watch.NewWatcher(c.Config.NotesDir, handler, opts...)
}

// ApplyMigrations runs the embedded schema files against the configured
// database in name order. The memory driver has no schema, so the call is a
// no-op there.
func (c *Container) ApplyMigrations(ctx context.Context, files fs.FS) error {
	if c.bunDB == nil || files == nil {
		return nil
	}

	var names []string
	err := fs.WalkDir(files, ".", func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !entry.IsDir() && strings.HasSuffix(path, ".sql") {
			names = append(names, path)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("di: list migrations: %w", err)
	}
	sort.Strings(names)

	for _, name := range names {
		blob, err := fs.ReadFile(files, name)
		if err != nil {
			return fmt.Errorf("di: read migration %s: %w", name, err)
		}
		err = c.db.Transaction(ctx, func(tx interfaces.Transaction) error {
			for _, stmt := range splitStatements(string(blob)) {
				if _, err := tx.Exec(ctx, stmt); err != nil {
					return fmt.Errorf("di: apply migration %s: %w", name, err)
				}
			}
			return nil
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func splitStatements(blob string) []string {
	var out []string
	for _, stmt := range strings.Split(blob, ";") {
		if stmt = strings.TrimSpace(stmt); stmt != "" {
			out = append(out, stmt)
		}
	}
	return out
}

func parseOptions(cfg runtimeconfig.MarkdownParserConfig) interfaces.ParseOptions {
	return interfaces.ParseOptions{
		Extensions: cfg.Extensions,
		Sanitize:   cfg.Sanitize,
		HardWraps:  cfg.HardWraps,
		SafeMode:   cfg.SafeMode,
	}
}

func parseSeverity(level string) interfaces.Severity {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "off":
		return interfaces.SeverityOff
	case "warn", "warning":
		return interfaces.SeverityWarning
	default:
		return interfaces.SeverityError
	}
}

// LoggerProvider exposes the configured logger provider, nil when logging is
// disabled.
func (c *Container) LoggerProvider() interfaces.LoggerProvider {
	return c.provider
}

// StorageProvider exposes the artifact sink used for site output.
func (c *Container) StorageProvider() interfaces.StorageProvider {
	if c.artifacts == nil {
		return storageadapter.NewNoOpProvider()
	}
	return c.artifacts
}

// DBProvider exposes the raw statement surface over the configured database.
func (c *Container) DBProvider() interfaces.StorageProvider {
	return c.db
}

// TemplateRenderer exposes the configured template renderer.
func (c *Container) TemplateRenderer() interfaces.TemplateRenderer {
	if c.template == nil {
		return noop.Template()
	}
	return c.template
}

// BunDB exposes the database handle, nil for the memory driver.
func (c *Container) BunDB() *bun.DB {
	return c.bunDB
}

// NoteService returns the configured note service.
func (c *Container) NoteService() note.Service {
	return c.noteSvc
}

// MarkdownService returns the configured markdown service.
func (c *Container) MarkdownService() interfaces.MarkdownService {
	return c.markdownSvc
}

// Linter returns the configured linter.
func (c *Container) Linter() interfaces.Linter {
	return c.linter
}

// IndexService returns the README and category digest builder.
func (c *Container) IndexService() *index.Service {
	return c.indexSvc
}

// NavService returns the navigation resolver.
func (c *Container) NavService() *nav.Service {
	return c.navSvc
}

// SiteService returns the static site builder. When the site feature is
// disabled its operations fail with site.ErrServiceDisabled.
func (c *Container) SiteService() *site.Service {
	return c.siteSvc
}

// Scheduler returns the publish scheduler.
func (c *Container) Scheduler() interfaces.Scheduler {
	return c.scheduler
}

// PublishWorker returns the worker that applies due status transitions.
func (c *Container) PublishWorker() *jobs.Worker {
	return c.worker
}

// AuditRecorder returns the journal status flips are recorded into.
func (c *Container) AuditRecorder() jobs.AuditRecorder {
	return c.audit
}

// RouteManager returns the urlkit route table backing navigation.
func (c *Container) RouteManager() *urlkit.RouteManager {
	return c.routeManager
}

// NoteCommands returns the note command handlers, nil when the command layer
// is disabled.
func (c *Container) NoteCommands() *notescmd.HandlerSet {
	return c.noteCommands
}

// LintCommands returns the lint command handlers.
func (c *Container) LintCommands() *lintcmd.HandlerSet {
	return c.lintCommands
}

// SiteCommands returns the site command handlers.
func (c *Container) SiteCommands() *sitecmd.HandlerSet {
	return c.siteCommands
}

// ReadmeCommands returns the readme command handlers.
func (c *Container) ReadmeCommands() *readmecmd.HandlerSet {
	return c.readmeCommands
}
