package runtimeconfig_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/goliatone/go-til/internal/runtimeconfig"
)

func TestDefaultConfigValidates(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() returned unexpected error: %v", err)
	}
}

func TestConfigValidate_NotesDirRequired(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.NotesDir = "  "

	if err := cfg.Validate(); !errors.Is(err, runtimeconfig.ErrNotesDirRequired) {
		t.Fatalf("expected ErrNotesDirRequired, got %v", err)
	}
}

func TestConfigValidate_RequiresOutputDirWhenSiteEnabled(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Features.Site = true
	cfg.Site.OutputDir = " "

	if err := cfg.Validate(); !errors.Is(err, runtimeconfig.ErrSiteOutputDirRequired) {
		t.Fatalf("expected ErrSiteOutputDirRequired, got %v", err)
	}
}

func TestConfigValidate_RequiresThemeWhenSiteEnabled(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Features.Site = true
	cfg.Site.ThemeDir = ""

	if err := cfg.Validate(); !errors.Is(err, runtimeconfig.ErrSiteThemeRequired) {
		t.Fatalf("expected ErrSiteThemeRequired, got %v", err)
	}
}

func TestConfigValidate_AllowsDisabledSiteWithoutOutput(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Site.OutputDir = ""
	cfg.Site.ThemeDir = ""

	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() returned unexpected error: %v", err)
	}
}

func TestConfigValidate_StorageDriver(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Storage.Driver = "mongodb"
	if err := cfg.Validate(); !errors.Is(err, runtimeconfig.ErrStorageDriverUnknown) {
		t.Fatalf("expected ErrStorageDriverUnknown, got %v", err)
	}

	cfg = runtimeconfig.DefaultConfig()
	cfg.Storage.Driver = "sqlite"
	cfg.Storage.DSN = ""
	if err := cfg.Validate(); !errors.Is(err, runtimeconfig.ErrStorageDSNRequired) {
		t.Fatalf("expected ErrStorageDSNRequired, got %v", err)
	}

	cfg.Storage.DSN = "file:til.db"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() returned unexpected error: %v", err)
	}
}

func TestConfigValidate_AdvancedCacheRequiresCache(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Cache.Enabled = false
	cfg.Features.AdvancedCache = true

	if err := cfg.Validate(); !errors.Is(err, runtimeconfig.ErrAdvancedCacheRequiresEnabledCache) {
		t.Fatalf("expected ErrAdvancedCacheRequiresEnabledCache, got %v", err)
	}
}

func TestConfigValidate_LintSeverity(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Lint.Rules = map[string]string{"fence/lang": "loud"}

	if err := cfg.Validate(); !errors.Is(err, runtimeconfig.ErrLintSeverityInvalid) {
		t.Fatalf("expected ErrLintSeverityInvalid, got %v", err)
	}
}

func TestConfigValidate_RequiresLoggingProviderWhenFeatureEnabled(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Features.Logger = true
	cfg.Logging.Provider = ""

	if err := cfg.Validate(); !errors.Is(err, runtimeconfig.ErrLoggingProviderRequired) {
		t.Fatalf("expected ErrLoggingProviderRequired, got %v", err)
	}
}

func TestConfigValidate_LoggingProviderUnknown(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Features.Logger = true
	cfg.Logging.Provider = "zap"

	if err := cfg.Validate(); !errors.Is(err, runtimeconfig.ErrLoggingProviderUnknown) {
		t.Fatalf("expected ErrLoggingProviderUnknown, got %v", err)
	}
}

func TestConfigValidate_GologgerFormatInvalid(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Features.Logger = true
	cfg.Logging.Provider = "gologger"
	cfg.Logging.Format = "xml"

	if err := cfg.Validate(); !errors.Is(err, runtimeconfig.ErrLoggingFormatInvalid) {
		t.Fatalf("expected ErrLoggingFormatInvalid, got %v", err)
	}
}

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	t.Setenv("TIL_CONFIG", filepath.Join(t.TempDir(), "absent.yaml"))

	cfg, err := runtimeconfig.Load("")
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}
	if cfg.NotesDir != "notes" {
		t.Fatalf("expected default notes dir, got %q", cfg.NotesDir)
	}
}

func TestLoad_AppliesFileAndEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "til.yaml")
	payload := []byte(`
notes_dir: log
base_url: https://til.example.com
site:
  title: Field Notes
  output_dir: public
  theme_dir: theme
watch:
  debounce: 500ms
features:
  site: true
`)
	if err := os.WriteFile(path, payload, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("TIL_LOG_LEVEL", "debug")

	cfg, err := runtimeconfig.Load(path)
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}
	if cfg.NotesDir != "log" {
		t.Fatalf("expected notes_dir override, got %q", cfg.NotesDir)
	}
	if cfg.Site.Title != "Field Notes" {
		t.Fatalf("expected site title override, got %q", cfg.Site.Title)
	}
	if !cfg.Features.Site {
		t.Fatal("expected site feature enabled")
	}
	if cfg.Watch.Debounce.Std() != 500*time.Millisecond {
		t.Fatalf("expected watch debounce 500ms, got %s", cfg.Watch.Debounce)
	}
	if cfg.Logging.Level != "debug" {
		t.Fatalf("expected env log level override, got %q", cfg.Logging.Level)
	}
}

func TestLoad_ExplicitMissingFileFails(t *testing.T) {
	if _, err := runtimeconfig.Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for explicitly named missing file")
	}
}
