package readmecmd

import (
	"errors"

	"github.com/goliatone/go-til/internal/commands"
	"github.com/goliatone/go-til/pkg/interfaces"
)

// CommandRegistry is the minimal registration contract expected when wiring command handlers.
type CommandRegistry interface {
	RegisterCommand(handler any) error
}

// HandlerSet groups the README command handlers produced by RegisterReadmeCommands.
type HandlerSet struct {
	Refresh *RefreshReadmeHandler
}

// Option customises handler wiring during registration.
type Option func(*options)

type options struct {
	refreshHandlerOpts []commands.HandlerOption[RefreshReadmeCommand]
}

// WithRefreshHandlerOptions forwards options to the RefreshReadmeHandler constructor.
func WithRefreshHandlerOptions(opts ...commands.HandlerOption[RefreshReadmeCommand]) Option {
	return func(cfg *options) {
		cfg.refreshHandlerOpts = append(cfg.refreshHandlerOpts, opts...)
	}
}

// RegisterReadmeCommands builds README command handlers and registers them
// with the provided registry. A HandlerSet containing the constructed
// handlers is returned so callers can wire additional integrations as needed.
func RegisterReadmeCommands(reg CommandRegistry, service Service, provider interfaces.LoggerProvider, gates FeatureGates, opts ...Option) (*HandlerSet, error) {
	if service == nil {
		return nil, errors.New("readme command registration: service is nil")
	}

	cfg := options{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	logger := commands.CommandLogger(provider, "readme")

	refreshHandler := NewRefreshReadmeHandler(service, logger, gates, cfg.refreshHandlerOpts...)

	if reg != nil {
		if err := reg.RegisterCommand(refreshHandler); err != nil {
			return nil, err
		}
	}

	return &HandlerSet{
		Refresh: refreshHandler,
	}, nil
}
