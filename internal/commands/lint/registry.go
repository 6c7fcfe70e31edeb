package lintcmd

import (
	"errors"

	"github.com/goliatone/go-til/internal/commands"
	"github.com/goliatone/go-til/pkg/interfaces"
)

// CommandRegistry is the minimal registration contract expected when wiring command handlers.
type CommandRegistry interface {
	RegisterCommand(handler any) error
}

// HandlerSet groups the lint command handlers produced by RegisterLintCommands.
type HandlerSet struct {
	Tree *CheckTreeHandler
	File *CheckFileHandler
}

// Option customises handler wiring during registration.
type Option func(*options)

type options struct {
	treeHandlerOpts []commands.HandlerOption[CheckTreeCommand]
	fileHandlerOpts []commands.HandlerOption[CheckFileCommand]
}

// WithTreeHandlerOptions forwards options to the CheckTreeHandler constructor.
func WithTreeHandlerOptions(opts ...commands.HandlerOption[CheckTreeCommand]) Option {
	return func(cfg *options) {
		cfg.treeHandlerOpts = append(cfg.treeHandlerOpts, opts...)
	}
}

// WithFileHandlerOptions forwards options to the CheckFileHandler constructor.
func WithFileHandlerOptions(opts ...commands.HandlerOption[CheckFileCommand]) Option {
	return func(cfg *options) {
		cfg.fileHandlerOpts = append(cfg.fileHandlerOpts, opts...)
	}
}

// RegisterLintCommands builds lint command handlers and registers them with
// the provided registry. A HandlerSet containing the constructed handlers is
// returned so callers can wire additional integrations as needed.
func RegisterLintCommands(reg CommandRegistry, linter interfaces.Linter, provider interfaces.LoggerProvider, gates FeatureGates, opts ...Option) (*HandlerSet, error) {
	if linter == nil {
		return nil, errors.New("lint command registration: linter is nil")
	}

	cfg := options{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	logger := commands.CommandLogger(provider, "lint")

	treeHandler := NewCheckTreeHandler(linter, logger, gates, cfg.treeHandlerOpts...)
	fileHandler := NewCheckFileHandler(linter, logger, gates, cfg.fileHandlerOpts...)

	if reg != nil {
		if err := reg.RegisterCommand(treeHandler); err != nil {
			return nil, err
		}
		if err := reg.RegisterCommand(fileHandler); err != nil {
			return nil, err
		}
	}

	return &HandlerSet{
		Tree: treeHandler,
		File: fileHandler,
	}, nil
}
