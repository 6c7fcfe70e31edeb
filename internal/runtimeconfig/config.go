package runtimeconfig

import (
	"errors"
	"fmt"
	"strings"
	"time"

	urlkit "github.com/goliatone/go-urlkit"
	"gopkg.in/yaml.v3"
)

// Duration wraps time.Duration so YAML configs accept values like "250ms".
type Duration time.Duration

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

func (d Duration) String() string { return time.Duration(d).String() }

// MarshalYAML renders the duration in its humane string form.
func (d Duration) MarshalYAML() (any, error) { return time.Duration(d).String(), nil }

// UnmarshalYAML accepts either a duration string or raw nanoseconds.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw any
	if err := value.Decode(&raw); err != nil {
		return err
	}
	switch v := raw.(type) {
	case int:
		*d = Duration(time.Duration(v))
	case int64:
		*d = Duration(time.Duration(v))
	case float64:
		*d = Duration(time.Duration(v))
	case string:
		parsed, err := time.ParseDuration(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("til config: parse duration %q: %w", v, err)
		}
		*d = Duration(parsed)
	default:
		return fmt.Errorf("til config: invalid duration value %v", raw)
	}
	return nil
}

// ErrNotesDirRequired indicates the engine has no notes tree to operate on.
var ErrNotesDirRequired = errors.New("til config: notes directory is required")

// ErrSiteOutputDirRequired ensures site builds have a destination.
var ErrSiteOutputDirRequired = errors.New("til config: site output directory is required when the site feature is enabled")

// ErrSiteThemeRequired ensures site builds have a theme directory to render through.
var ErrSiteThemeRequired = errors.New("til config: site theme directory is required when the site feature is enabled")

// ErrStorageDriverUnknown rejects storage drivers the container cannot wire.
var ErrStorageDriverUnknown = errors.New("til config: storage driver is invalid")

// ErrStorageDSNRequired ensures database-backed drivers carry a connection string.
var ErrStorageDSNRequired = errors.New("til config: storage dsn is required for database drivers")

// ErrAdvancedCacheRequiresEnabledCache ensures advanced cache builds only when cache is enabled.
var ErrAdvancedCacheRequiresEnabledCache = errors.New("til config: advanced cache feature requires cache to be enabled")

// ErrWatchDebounceInvalid rejects negative debounce windows.
var ErrWatchDebounceInvalid = errors.New("til config: watch debounce must be zero or positive")

var ErrSiteFeedLimitInvalid = errors.New("til config: site feed limit must be zero or positive")
var ErrSiteWorkersInvalid = errors.New("til config: site workers must be zero or positive")
var ErrLintSeverityInvalid = errors.New("til config: lint severity is invalid")
var ErrLoggingProviderRequired = errors.New("til config: logging provider is required when logging feature is enabled")
var ErrLoggingProviderUnknown = errors.New("til config: logging provider is invalid")
var ErrLoggingLevelInvalid = errors.New("til config: logging level is invalid")
var ErrLoggingFormatInvalid = errors.New("til config: logging format is invalid")

// Config aggregates feature flags and adapter bindings for the TIL engine.
// Fields use simple types so host applications can load them from til.yaml or
// construct them in code.
type Config struct {
	Enabled    bool             `yaml:"enabled"`
	NotesDir   string           `yaml:"notes_dir"`
	BaseURL    string           `yaml:"base_url"`
	Site       SiteConfig       `yaml:"site"`
	Markdown   MarkdownConfig   `yaml:"markdown"`
	Lint       LintConfig       `yaml:"lint"`
	Index      IndexConfig      `yaml:"index"`
	Storage    StorageConfig    `yaml:"storage"`
	Cache      CacheConfig      `yaml:"cache"`
	Navigation NavigationConfig `yaml:"navigation"`
	Watch      WatchConfig      `yaml:"watch"`
	Features   Features         `yaml:"features"`
	Commands   CommandsConfig   `yaml:"commands"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// SiteConfig captures behaviour for the static site builder.
type SiteConfig struct {
	Title            string   `yaml:"title"`
	Description      string   `yaml:"description"`
	Author           string   `yaml:"author"`
	OutputDir        string   `yaml:"output_dir"`
	ThemeDir         string   `yaml:"theme_dir"`
	ThemeVariant     string   `yaml:"theme_variant"`
	FeedLimit        int      `yaml:"feed_limit"`
	CleanBuild       bool     `yaml:"clean_build"`
	Incremental      bool     `yaml:"incremental"`
	CopyAssets       bool     `yaml:"copy_assets"`
	GenerateSitemap  bool     `yaml:"generate_sitemap"`
	GenerateRobots   bool     `yaml:"generate_robots"`
	GenerateFeeds    bool     `yaml:"generate_feeds"`
	Workers          int      `yaml:"workers"`
	RenderTimeout    Duration `yaml:"render_timeout"`
	AssetCopyTimeout Duration `yaml:"asset_copy_timeout"`
}

// MarkdownConfig captures filesystem and parser behaviour for note ingestion.
type MarkdownConfig struct {
	Include []string             `yaml:"include"`
	Ignore  []string             `yaml:"ignore"`
	Parser  MarkdownParserConfig `yaml:"parser"`
}

// MarkdownParserConfig mirrors interfaces.ParseOptions for runtime configuration.
type MarkdownParserConfig struct {
	Extensions []string `yaml:"extensions"`
	Sanitize   bool     `yaml:"sanitize"`
	HardWraps  bool     `yaml:"hard_wraps"`
	SafeMode   bool     `yaml:"safe_mode"`
}

// LintConfig tunes the verification rules applied to the corpus.
type LintConfig struct {
	// Rules maps rule IDs (markdown/parse, link/url, fence/lang,
	// frontmatter/schema, note/title) to a severity: off, warning, or error.
	Rules map[string]string `yaml:"rules"`
	// Schemes lists URL schemes accepted by the link rule.
	Schemes []string `yaml:"schemes"`
	// FenceTags extends the built-in language tag table.
	FenceTags []string `yaml:"fence_tags"`
}

// IndexConfig captures README/category digest behaviour.
type IndexConfig struct {
	ReadmePath    string `yaml:"readme_path"`
	HeaderTitle   string `yaml:"header_title"`
	ShowTimestamp bool   `yaml:"show_timestamp"`
}

// StorageConfig selects the derived index store.
type StorageConfig struct {
	// Driver is one of memory, sqlite, or postgres.
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn"`
}

// CacheConfig captures cache behaviour toggles.
type CacheConfig struct {
	Enabled    bool     `yaml:"enabled"`
	DefaultTTL Duration `yaml:"default_ttl"`
}

// NavigationConfig captures routing configuration for site URL resolution.
type NavigationConfig struct {
	RouteConfig   *urlkit.Config `yaml:"-"`
	Group         string         `yaml:"group"`
	NoteRoute     string         `yaml:"note_route"`
	CategoryRoute string         `yaml:"category_route"`
	Pinned        []PinnedLink   `yaml:"pinned"`
}

// PinnedLink is a navigation entry that is not derived from a category.
type PinnedLink struct {
	Label string `yaml:"label"`
	URL   string `yaml:"url"`
}

// WatchConfig tunes the filesystem watcher.
type WatchConfig struct {
	Debounce Duration `yaml:"debounce"`
	Ignore   []string `yaml:"ignore"`
}

// Features toggles module functionality.
type Features struct {
	Site          bool `yaml:"site"`
	Scheduling    bool `yaml:"scheduling"`
	Watch         bool `yaml:"watch"`
	AdvancedCache bool `yaml:"advanced_cache"`
	Logger        bool `yaml:"logger"`
}

// CommandsConfig captures optional command-layer behaviour. The schedule
// expressions use go-command cron syntax; empty expressions register no
// recurring job.
type CommandsConfig struct {
	Enabled          bool   `yaml:"enabled"`
	PublishBatchSize int    `yaml:"publish_batch_size"`
	SyncSchedule     string `yaml:"sync_schedule"`
	BuildSchedule    string `yaml:"build_schedule"`
}

// LoggingConfig captures provider-specific options for runtime logging.
type LoggingConfig struct {
	Provider  string   `yaml:"provider"`
	Level     string   `yaml:"level"`
	Format    string   `yaml:"format"`
	AddSource bool     `yaml:"add_source"`
	Focus     []string `yaml:"focus"`
}

// DefaultConfig returns opinionated defaults for a freshly initialised log.
func DefaultConfig() Config {
	return Config{
		Enabled:  true,
		NotesDir: "notes",
		Site: SiteConfig{
			Title:           "Today I Learned",
			OutputDir:       "public",
			ThemeDir:        "theme",
			FeedLimit:       20,
			CleanBuild:      true,
			Incremental:     true,
			CopyAssets:      true,
			GenerateSitemap: true,
			GenerateRobots:  true,
			GenerateFeeds:   true,
		},
		Markdown: MarkdownConfig{
			Include: []string{"**/*.md"},
			Ignore:  []string{".git/**", "node_modules/**", "**/README.md"},
		},
		Lint: LintConfig{
			Rules:   map[string]string{},
			Schemes: []string{"http", "https", "mailto"},
		},
		Index: IndexConfig{
			ReadmePath:    "README.md",
			HeaderTitle:   "Today I Learned",
			ShowTimestamp: true,
		},
		Storage: StorageConfig{
			Driver: "memory",
		},
		Cache: CacheConfig{
			Enabled:    true,
			DefaultTTL: Duration(time.Minute),
		},
		Navigation: NavigationConfig{
			Group:         "site",
			NoteRoute:     "note",
			CategoryRoute: "category",
		},
		Watch: WatchConfig{
			Debounce: Duration(250 * time.Millisecond),
		},
		Features: Features{},
		Commands: CommandsConfig{
			Enabled:          true,
			PublishBatchSize: 50,
		},
		Logging: LoggingConfig{
			Provider: "console",
			Level:    "info",
		},
	}
}

// Validate performs high-level consistency checks.
func (cfg Config) Validate() error {
	if strings.TrimSpace(cfg.NotesDir) == "" {
		return ErrNotesDirRequired
	}
	if cfg.Features.Site {
		if strings.TrimSpace(cfg.Site.OutputDir) == "" {
			return ErrSiteOutputDirRequired
		}
		if strings.TrimSpace(cfg.Site.ThemeDir) == "" {
			return ErrSiteThemeRequired
		}
	}
	if cfg.Site.FeedLimit < 0 {
		return ErrSiteFeedLimitInvalid
	}
	if cfg.Site.Workers < 0 {
		return ErrSiteWorkersInvalid
	}
	if driver := normalizeDriver(cfg.Storage.Driver); driver != "" {
		if !isSupportedDriver(driver) {
			return fmt.Errorf("%w: %s", ErrStorageDriverUnknown, driver)
		}
		if driver != "memory" && strings.TrimSpace(cfg.Storage.DSN) == "" {
			return fmt.Errorf("%w: %s", ErrStorageDSNRequired, driver)
		}
	}
	if cfg.Features.AdvancedCache && !cfg.Cache.Enabled {
		return ErrAdvancedCacheRequiresEnabledCache
	}
	if cfg.Watch.Debounce < 0 {
		return ErrWatchDebounceInvalid
	}
	for rule, severity := range cfg.Lint.Rules {
		if !isSupportedSeverity(severity) {
			return fmt.Errorf("%w: %s=%s", ErrLintSeverityInvalid, rule, severity)
		}
	}
	if cfg.Features.Logger {
		provider := normalizeProvider(cfg.Logging.Provider)
		if provider == "" {
			return ErrLoggingProviderRequired
		}
		if !isSupportedProvider(provider) {
			return fmt.Errorf("%w: %s", ErrLoggingProviderUnknown, provider)
		}
		if level := strings.TrimSpace(cfg.Logging.Level); level != "" && !isSupportedLevel(level) {
			return fmt.Errorf("%w: %s", ErrLoggingLevelInvalid, level)
		}
		if provider == "gologger" {
			if format := strings.TrimSpace(cfg.Logging.Format); format != "" && !isSupportedFormat(format) {
				return fmt.Errorf("%w: %s", ErrLoggingFormatInvalid, format)
			}
		}
	}
	return nil
}

func normalizeDriver(driver string) string {
	return strings.ToLower(strings.TrimSpace(driver))
}

func isSupportedDriver(driver string) bool {
	switch driver {
	case "memory", "sqlite", "sqlite3", "postgres":
		return true
	default:
		return false
	}
}

func isSupportedSeverity(severity string) bool {
	switch strings.ToLower(strings.TrimSpace(severity)) {
	case "off", "warning", "warn", "error":
		return true
	default:
		return false
	}
}

func normalizeProvider(provider string) string {
	return strings.ToLower(strings.TrimSpace(provider))
}

func isSupportedProvider(provider string) bool {
	switch provider {
	case "console", "gologger":
		return true
	default:
		return false
	}
}

func isSupportedLevel(level string) bool {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace", "debug", "info", "warn", "warning", "error", "fatal":
		return true
	default:
		return false
	}
}

func isSupportedFormat(format string) bool {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "json", "console", "pretty":
		return true
	default:
		return false
	}
}
