package til

import "github.com/goliatone/go-til/internal/runtimeconfig"

// DefaultConfigFile is the conventional config file name at the log root.
const DefaultConfigFile = runtimeconfig.DefaultConfigFile

var (
	ErrNotesDirRequired                  = runtimeconfig.ErrNotesDirRequired
	ErrSiteOutputDirRequired             = runtimeconfig.ErrSiteOutputDirRequired
	ErrSiteThemeRequired                 = runtimeconfig.ErrSiteThemeRequired
	ErrStorageDriverUnknown              = runtimeconfig.ErrStorageDriverUnknown
	ErrStorageDSNRequired                = runtimeconfig.ErrStorageDSNRequired
	ErrAdvancedCacheRequiresEnabledCache = runtimeconfig.ErrAdvancedCacheRequiresEnabledCache
	ErrWatchDebounceInvalid              = runtimeconfig.ErrWatchDebounceInvalid
	ErrSiteFeedLimitInvalid              = runtimeconfig.ErrSiteFeedLimitInvalid
	ErrSiteWorkersInvalid                = runtimeconfig.ErrSiteWorkersInvalid
	ErrLintSeverityInvalid               = runtimeconfig.ErrLintSeverityInvalid
	ErrLoggingProviderRequired           = runtimeconfig.ErrLoggingProviderRequired
	ErrLoggingProviderUnknown            = runtimeconfig.ErrLoggingProviderUnknown
	ErrLoggingLevelInvalid               = runtimeconfig.ErrLoggingLevelInvalid
	ErrLoggingFormatInvalid              = runtimeconfig.ErrLoggingFormatInvalid
)

type (
	Config               = runtimeconfig.Config
	SiteConfig           = runtimeconfig.SiteConfig
	MarkdownConfig       = runtimeconfig.MarkdownConfig
	MarkdownParserConfig = runtimeconfig.MarkdownParserConfig
	LintConfig           = runtimeconfig.LintConfig
	IndexConfig          = runtimeconfig.IndexConfig
	StorageConfig        = runtimeconfig.StorageConfig
	CacheConfig          = runtimeconfig.CacheConfig
	NavigationConfig     = runtimeconfig.NavigationConfig
	PinnedLink           = runtimeconfig.PinnedLink
	WatchConfig          = runtimeconfig.WatchConfig
	Features             = runtimeconfig.Features
	CommandsConfig       = runtimeconfig.CommandsConfig
	LoggingConfig        = runtimeconfig.LoggingConfig
	Duration             = runtimeconfig.Duration
)

func DefaultConfig() Config {
	return runtimeconfig.DefaultConfig()
}

// LoadConfig reads a YAML configuration file and applies environment
// overrides on top of it.
func LoadConfig(path string) (Config, error) {
	return runtimeconfig.Load(path)
}
