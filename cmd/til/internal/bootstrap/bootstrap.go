package bootstrap

import (
	"context"
	"fmt"
	"strings"

	til "github.com/goliatone/go-til"
	"github.com/goliatone/go-til/internal/di"
	"github.com/goliatone/go-til/internal/logging"
	"github.com/goliatone/go-til/pkg/interfaces"
)

// Options captures configuration for til CLI bootstraps.
type Options struct {
	// ConfigPath selects the config file; empty falls back to til.yaml and
	// the TIL_CONFIG environment variable.
	ConfigPath string
	// Verbose lowers the log level to debug.
	Verbose bool
	// Site enables the static site builder for this invocation.
	Site bool
	// Scheduling enables the publish scheduler for this invocation.
	Scheduling bool
	// Watch enables the filesystem watcher for this invocation.
	Watch bool
	// LoggerProvider overrides the logging stack, used by tests.
	LoggerProvider interfaces.LoggerProvider
}

// Module wraps the til module with the logger CLI commands report through.
type Module struct {
	Module *til.Module
	Config til.Config
	Logger interfaces.Logger
}

// BuildModule constructs a TIL module configured for CLI operations. The
// embedded schema migrations run before the module is handed back so database
// drivers work without a separate migrate step.
func BuildModule(opts Options) (*Module, error) {
	cfg, err := til.LoadConfig(strings.TrimSpace(opts.ConfigPath))
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return buildFromConfig(cfg, opts)
}

func buildFromConfig(cfg til.Config, opts Options) (*Module, error) {
	if opts.Site {
		cfg.Features.Site = true
	}
	if opts.Scheduling {
		cfg.Features.Scheduling = true
	}
	if opts.Watch {
		cfg.Features.Watch = true
	}

	cfg.Features.Logger = true
	if strings.TrimSpace(cfg.Logging.Provider) == "" {
		cfg.Logging.Provider = "console"
	}
	if opts.Verbose {
		cfg.Logging.Level = "debug"
	} else if strings.TrimSpace(cfg.Logging.Level) == "" {
		cfg.Logging.Level = "info"
	}

	diOpts := []di.Option{}
	if opts.LoggerProvider != nil {
		diOpts = append(diOpts, di.WithLoggerProvider(opts.LoggerProvider))
	}

	module, err := til.New(cfg, diOpts...)
	if err != nil {
		return nil, fmt.Errorf("initialise til module: %w", err)
	}

	if err := module.Migrate(context.Background()); err != nil {
		return nil, fmt.Errorf("apply migrations: %w", err)
	}

	return &Module{
		Module: module,
		Config: cfg,
		Logger: logging.ModuleLogger(module.Container().LoggerProvider(), "til.cli"),
	}, nil
}
