package sitecmd

import (
	"context"
	"errors"

	"github.com/goliatone/go-til/internal/commands"
	"github.com/goliatone/go-til/pkg/interfaces"
	command "github.com/goliatone/go-command"
)

// CommandRegistry is the minimal registration contract expected when wiring command handlers.
type CommandRegistry interface {
	RegisterCommand(handler any) error
}

// CronRegistrar matches the function signature used by go-command registries.
type CronRegistrar func(command.HandlerConfig, any) error

// HandlerSet groups the site command handlers produced by RegisterSiteCommands.
type HandlerSet struct {
	Build     *BuildSiteHandler
	BuildPage *BuildPageHandler
	Clean     *CleanSiteHandler
}

// Option customises handler wiring during registration.
type Option func(*options)

type options struct {
	buildHandlerOpts     []commands.HandlerOption[BuildSiteCommand]
	buildPageHandlerOpts []commands.HandlerOption[BuildPageCommand]
	cleanHandlerOpts     []commands.HandlerOption[CleanSiteCommand]
}

// WithBuildHandlerOptions forwards options to the BuildSiteHandler constructor.
func WithBuildHandlerOptions(opts ...commands.HandlerOption[BuildSiteCommand]) Option {
	return func(cfg *options) {
		cfg.buildHandlerOpts = append(cfg.buildHandlerOpts, opts...)
	}
}

// WithBuildPageHandlerOptions forwards options to the BuildPageHandler constructor.
func WithBuildPageHandlerOptions(opts ...commands.HandlerOption[BuildPageCommand]) Option {
	return func(cfg *options) {
		cfg.buildPageHandlerOpts = append(cfg.buildPageHandlerOpts, opts...)
	}
}

// WithCleanHandlerOptions forwards options to the CleanSiteHandler constructor.
func WithCleanHandlerOptions(opts ...commands.HandlerOption[CleanSiteCommand]) Option {
	return func(cfg *options) {
		cfg.cleanHandlerOpts = append(cfg.cleanHandlerOpts, opts...)
	}
}

// RegisterSiteCommands builds site command handlers and registers them with
// the provided registry. A HandlerSet containing the constructed handlers is
// returned so callers can wire additional integrations (dispatcher, cron) as
// needed.
func RegisterSiteCommands(reg CommandRegistry, service Service, provider interfaces.LoggerProvider, gates FeatureGates, opts ...Option) (*HandlerSet, error) {
	if service == nil {
		return nil, errors.New("site command registration: service is nil")
	}

	cfg := options{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	logger := commands.CommandLogger(provider, "site")

	buildHandler := NewBuildSiteHandler(service, logger, gates, cfg.buildHandlerOpts...)
	buildPageHandler := NewBuildPageHandler(service, logger, gates, cfg.buildPageHandlerOpts...)
	cleanHandler := NewCleanSiteHandler(service, logger, gates, cfg.cleanHandlerOpts...)

	if reg != nil {
		if err := reg.RegisterCommand(buildHandler); err != nil {
			return nil, err
		}
		if err := reg.RegisterCommand(buildPageHandler); err != nil {
			return nil, err
		}
		if err := reg.RegisterCommand(cleanHandler); err != nil {
			return nil, err
		}
	}

	return &HandlerSet{
		Build:     buildHandler,
		BuildPage: buildPageHandler,
		Clean:     cleanHandler,
	}, nil
}

// RegisterSiteBuildCron wires the provided build handler into a cron registrar
// using the supplied command configuration and message payload. The handler is
// executed with a background context.
func RegisterSiteBuildCron(reg CronRegistrar, handler *BuildSiteHandler, cfg command.HandlerConfig, msg BuildSiteCommand) error {
	if reg == nil || handler == nil {
		return nil
	}
	return reg(cfg, func() error {
		return handler.Execute(context.Background(), msg)
	})
}
