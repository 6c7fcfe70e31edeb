package readmecmd

import (
	"context"
	"errors"

	"github.com/goliatone/go-til/internal/commands"
	"github.com/goliatone/go-til/internal/index"
	"github.com/goliatone/go-til/internal/logging"
	"github.com/goliatone/go-til/pkg/interfaces"
	command "github.com/goliatone/go-command"
)

const refreshOperation = "readme.refresh"

// ErrReadmeFeatureDisabled is returned when the README feature flag is disabled at runtime.
var ErrReadmeFeatureDisabled = errors.New("readme command: feature disabled")

var _ command.Commander[RefreshReadmeCommand] = (*RefreshReadmeHandler)(nil)

// RefreshReadmeHandler orchestrates README digests via the shared command
// handler foundation.
type RefreshReadmeHandler struct {
	inner *commands.Handler[RefreshReadmeCommand]
}

// NewRefreshReadmeHandler creates a handler bound to the supplied index service.
func NewRefreshReadmeHandler(service Service, logger interfaces.Logger, gates FeatureGates, opts ...commands.HandlerOption[RefreshReadmeCommand]) *RefreshReadmeHandler {
	baseLogger := logger
	if baseLogger == nil {
		baseLogger = logging.NoOp()
	}

	exec := func(ctx context.Context, msg RefreshReadmeCommand) error {
		if !gates.readmeEnabled() {
			return ErrReadmeFeatureDisabled
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		readmeOpts := index.ReadmeOptions{
			Title:         msg.Title,
			Intro:         msg.Intro,
			IncludeDrafts: msg.IncludeDrafts,
			LinkPrefix:    msg.LinkPrefix,
		}

		if msg.Check {
			stale, err := service.CheckReadme(ctx, msg.File, readmeOpts)
			invokeCallback(msg.ResultCallback, ResultEnvelope{
				Stale: stale,
				Metadata: map[string]any{
					"operation": "check",
					"file":      msg.File,
				},
			})
			if err != nil {
				return err
			}
			logging.WithFields(baseLogger, map[string]any{
				"file":  msg.File,
				"stale": stale,
			}).Info("readme.command.check.completed")
			return nil
		}

		wrote, err := service.WriteReadme(ctx, msg.File, readmeOpts)
		if err != nil {
			invokeCallback(msg.ResultCallback, ResultEnvelope{
				Metadata: map[string]any{
					"operation": "refresh",
					"file":      msg.File,
				},
			})
			return err
		}

		categoryPages := 0
		if msg.CategoryPages {
			categoryPages, err = service.WriteCategoryPages(ctx, msg.NotesDir)
		}
		invokeCallback(msg.ResultCallback, ResultEnvelope{
			Wrote:         wrote,
			CategoryPages: categoryPages,
			Metadata: map[string]any{
				"operation": "refresh",
				"file":      msg.File,
			},
		})
		if err != nil {
			return err
		}

		logging.WithFields(baseLogger, map[string]any{
			"file":           msg.File,
			"wrote":          wrote,
			"category_pages": categoryPages,
		}).Info("readme.command.refresh.completed")
		return nil
	}

	handlerOpts := []commands.HandlerOption[RefreshReadmeCommand]{
		commands.WithLogger[RefreshReadmeCommand](baseLogger),
		commands.WithOperation[RefreshReadmeCommand](refreshOperation),
		commands.WithMessageFields(func(msg RefreshReadmeCommand) map[string]any {
			fields := map[string]any{
				"file": msg.File,
			}
			if msg.Check {
				fields["check"] = true
			}
			if msg.IncludeDrafts {
				fields["include_drafts"] = true
			}
			if msg.CategoryPages {
				fields["category_pages"] = true
			}
			return fields
		}),
		commands.WithTelemetry(commands.DefaultTelemetry[RefreshReadmeCommand](baseLogger)),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &RefreshReadmeHandler{
		inner: commands.NewHandler(exec, handlerOpts...),
	}
}

// Execute satisfies command.Commander[RefreshReadmeCommand].
func (h *RefreshReadmeHandler) Execute(ctx context.Context, msg RefreshReadmeCommand) error {
	return h.inner.Execute(ctx, msg)
}

func invokeCallback(cb ResultCallback, envelope ResultEnvelope) {
	if cb == nil {
		return
	}
	cb(envelope)
}
