package lintcmd

import (
	"context"
	"errors"

	"github.com/goliatone/go-til/internal/commands"
	"github.com/goliatone/go-til/internal/logging"
	"github.com/goliatone/go-til/pkg/interfaces"
	command "github.com/goliatone/go-command"
)

const (
	checkTreeOperation = "lint.check_tree"
	checkFileOperation = "lint.check_file"
)

// ErrLintFeatureDisabled is returned when the lint feature flag is disabled at runtime.
var ErrLintFeatureDisabled = errors.New("lint command: feature disabled")

var (
	_ command.Commander[CheckTreeCommand] = (*CheckTreeHandler)(nil)
	_ command.Commander[CheckFileCommand] = (*CheckFileHandler)(nil)
)

// CheckTreeHandler lints a notes tree via the shared command handler foundation.
type CheckTreeHandler struct {
	inner *commands.Handler[CheckTreeCommand]
}

// NewCheckTreeHandler creates a handler bound to the supplied linter.
func NewCheckTreeHandler(linter interfaces.Linter, logger interfaces.Logger, gates FeatureGates, opts ...commands.HandlerOption[CheckTreeCommand]) *CheckTreeHandler {
	baseLogger := logger
	if baseLogger == nil {
		baseLogger = logging.NoOp()
	}

	exec := func(ctx context.Context, msg CheckTreeCommand) error {
		if !gates.lintEnabled() {
			return ErrLintFeatureDisabled
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		report, err := linter.CheckTree(ctx, msg.Directory)
		invokeCallback(msg.ResultCallback, ResultEnvelope{
			Report: report,
			Metadata: map[string]any{
				"operation": "check_tree",
				"directory": msg.Directory,
			},
		})
		if err != nil {
			return err
		}
		if report != nil {
			logging.WithFields(baseLogger, map[string]any{
				"checked_count": report.Checked,
				"finding_count": len(report.Findings),
				"warning_count": report.Warnings(),
				"failed":        report.Failed(),
			}).Info("lint.command.check_tree.completed")
		}
		return nil
	}

	handlerOpts := []commands.HandlerOption[CheckTreeCommand]{
		commands.WithLogger[CheckTreeCommand](baseLogger),
		commands.WithOperation[CheckTreeCommand](checkTreeOperation),
		commands.WithMessageFields(func(msg CheckTreeCommand) map[string]any {
			return map[string]any{
				"directory": msg.Directory,
			}
		}),
		commands.WithTelemetry(commands.DefaultTelemetry[CheckTreeCommand](baseLogger)),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &CheckTreeHandler{
		inner: commands.NewHandler(exec, handlerOpts...),
	}
}

// Execute satisfies command.Commander[CheckTreeCommand].
func (h *CheckTreeHandler) Execute(ctx context.Context, msg CheckTreeCommand) error {
	return h.inner.Execute(ctx, msg)
}

// CheckFileHandler lints a single note file via the shared command handler foundation.
type CheckFileHandler struct {
	inner *commands.Handler[CheckFileCommand]
}

// NewCheckFileHandler creates a handler bound to the supplied linter.
func NewCheckFileHandler(linter interfaces.Linter, logger interfaces.Logger, gates FeatureGates, opts ...commands.HandlerOption[CheckFileCommand]) *CheckFileHandler {
	baseLogger := logger
	if baseLogger == nil {
		baseLogger = logging.NoOp()
	}

	exec := func(ctx context.Context, msg CheckFileCommand) error {
		if !gates.lintEnabled() {
			return ErrLintFeatureDisabled
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		report, err := linter.CheckFile(ctx, msg.Path)
		invokeCallback(msg.ResultCallback, ResultEnvelope{
			Report: report,
			Metadata: map[string]any{
				"operation": "check_file",
				"path":      msg.Path,
			},
		})
		if err != nil {
			return err
		}
		if report != nil {
			logging.WithFields(baseLogger, map[string]any{
				"finding_count": len(report.Findings),
				"warning_count": report.Warnings(),
				"failed":        report.Failed(),
			}).Info("lint.command.check_file.completed")
		}
		return nil
	}

	handlerOpts := []commands.HandlerOption[CheckFileCommand]{
		commands.WithLogger[CheckFileCommand](baseLogger),
		commands.WithOperation[CheckFileCommand](checkFileOperation),
		commands.WithMessageFields(func(msg CheckFileCommand) map[string]any {
			return map[string]any{
				"path": msg.Path,
			}
		}),
		commands.WithTelemetry(commands.DefaultTelemetry[CheckFileCommand](baseLogger)),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &CheckFileHandler{
		inner: commands.NewHandler(exec, handlerOpts...),
	}
}

// Execute satisfies command.Commander[CheckFileCommand].
func (h *CheckFileHandler) Execute(ctx context.Context, msg CheckFileCommand) error {
	return h.inner.Execute(ctx, msg)
}

func invokeCallback(cb ResultCallback, envelope ResultEnvelope) {
	if cb == nil {
		return
	}
	cb(envelope)
}
