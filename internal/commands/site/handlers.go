package sitecmd

import (
	"context"

	"github.com/goliatone/go-til/internal/commands"
	"github.com/goliatone/go-til/internal/logging"
	"github.com/goliatone/go-til/internal/site"
	"github.com/goliatone/go-til/pkg/interfaces"
	command "github.com/goliatone/go-command"
)

var (
	_ command.Commander[BuildSiteCommand] = (*BuildSiteHandler)(nil)
	_ command.Commander[BuildPageCommand] = (*BuildPageHandler)(nil)
	_ command.Commander[CleanSiteCommand] = (*CleanSiteHandler)(nil)
)

// BuildSiteHandler orchestrates site builds using the shared command handler foundation.
type BuildSiteHandler struct {
	inner *commands.Handler[BuildSiteCommand]
}

// NewBuildSiteHandler constructs a handler wired to the provided site service.
func NewBuildSiteHandler(service Service, logger interfaces.Logger, gates FeatureGates, opts ...commands.HandlerOption[BuildSiteCommand]) *BuildSiteHandler {
	baseLogger := logger
	if baseLogger == nil {
		baseLogger = logging.NoOp()
	}

	exec := func(ctx context.Context, msg BuildSiteCommand) error {
		if service == nil || !gates.siteEnabled() {
			return site.ErrServiceDisabled
		}

		result, err := service.Build(ctx, site.BuildOptions{
			Force:            msg.Force,
			IncludeScheduled: msg.IncludeScheduled,
			DryRun:           msg.DryRun,
		})
		invokeCallback(msg.ResultCallback, ResultEnvelope{
			Result: result,
			Metadata: map[string]any{
				"operation": "build",
			},
		})
		if err != nil {
			return err
		}
		if result != nil {
			logging.WithFields(baseLogger, map[string]any{
				"pages_built":   result.PagesBuilt,
				"pages_skipped": result.PagesSkipped,
				"pages_pruned":  result.PagesPruned,
				"assets_built":  result.AssetsBuilt,
				"feeds_built":   result.FeedsBuilt,
				"error_count":   len(result.Errors),
				"dry_run":       result.DryRun,
			}).Info("site.command.build.completed")
		}
		return nil
	}

	handlerOpts := []commands.HandlerOption[BuildSiteCommand]{
		commands.WithLogger[BuildSiteCommand](baseLogger),
		commands.WithOperation[BuildSiteCommand]("site.build"),
		commands.WithMessageFields(func(msg BuildSiteCommand) map[string]any {
			fields := map[string]any{}
			if msg.Force {
				fields["force"] = true
			}
			if msg.IncludeScheduled {
				fields["include_scheduled"] = true
			}
			if msg.DryRun {
				fields["dry_run"] = true
			}
			return fields
		}),
		commands.WithTelemetry(commands.DefaultTelemetry[BuildSiteCommand](baseLogger)),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &BuildSiteHandler{
		inner: commands.NewHandler(exec, handlerOpts...),
	}
}

// Execute satisfies command.Commander[BuildSiteCommand].
func (h *BuildSiteHandler) Execute(ctx context.Context, msg BuildSiteCommand) error {
	return h.inner.Execute(ctx, msg)
}

// BuildPageHandler rebuilds a single note page and its listings.
type BuildPageHandler struct {
	inner *commands.Handler[BuildPageCommand]
}

// NewBuildPageHandler constructs a handler that rebuilds one page by slug.
func NewBuildPageHandler(service Service, logger interfaces.Logger, gates FeatureGates, opts ...commands.HandlerOption[BuildPageCommand]) *BuildPageHandler {
	baseLogger := logger
	if baseLogger == nil {
		baseLogger = logging.NoOp()
	}

	exec := func(ctx context.Context, msg BuildPageCommand) error {
		if service == nil || !gates.siteEnabled() {
			return site.ErrServiceDisabled
		}

		result, err := service.BuildPage(ctx, msg.Slug)
		invokeCallback(msg.ResultCallback, ResultEnvelope{
			Result: result,
			Metadata: map[string]any{
				"operation": "build_page",
				"slug":      msg.Slug,
			},
		})
		if err != nil {
			return err
		}
		if result != nil {
			logging.WithFields(baseLogger, map[string]any{
				"slug":        msg.Slug,
				"pages_built": result.PagesBuilt,
				"error_count": len(result.Errors),
			}).Info("site.command.build_page.completed")
		}
		return nil
	}

	handlerOpts := []commands.HandlerOption[BuildPageCommand]{
		commands.WithLogger[BuildPageCommand](baseLogger),
		commands.WithOperation[BuildPageCommand]("site.build_page"),
		commands.WithMessageFields(func(msg BuildPageCommand) map[string]any {
			return map[string]any{
				"slug": msg.Slug,
			}
		}),
		commands.WithTelemetry(commands.DefaultTelemetry[BuildPageCommand](baseLogger)),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &BuildPageHandler{
		inner: commands.NewHandler(exec, handlerOpts...),
	}
}

// Execute satisfies command.Commander[BuildPageCommand].
func (h *BuildPageHandler) Execute(ctx context.Context, msg BuildPageCommand) error {
	return h.inner.Execute(ctx, msg)
}

// CleanSiteHandler clears build artifacts.
type CleanSiteHandler struct {
	inner *commands.Handler[CleanSiteCommand]
}

// NewCleanSiteHandler constructs a handler that cleans site output.
func NewCleanSiteHandler(service Service, logger interfaces.Logger, gates FeatureGates, opts ...commands.HandlerOption[CleanSiteCommand]) *CleanSiteHandler {
	baseLogger := logger
	if baseLogger == nil {
		baseLogger = logging.NoOp()
	}

	exec := func(ctx context.Context, msg CleanSiteCommand) error {
		if service == nil || !gates.siteEnabled() {
			return site.ErrServiceDisabled
		}
		return service.Clean(ctx)
	}

	handlerOpts := []commands.HandlerOption[CleanSiteCommand]{
		commands.WithLogger[CleanSiteCommand](baseLogger),
		commands.WithOperation[CleanSiteCommand]("site.clean"),
		commands.WithTelemetry(commands.DefaultTelemetry[CleanSiteCommand](baseLogger)),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &CleanSiteHandler{
		inner: commands.NewHandler(exec, handlerOpts...),
	}
}

// Execute satisfies command.Commander[CleanSiteCommand].
func (h *CleanSiteHandler) Execute(ctx context.Context, msg CleanSiteCommand) error {
	return h.inner.Execute(ctx, msg)
}

func invokeCallback(cb ResultCallback, envelope ResultEnvelope) {
	if cb == nil {
		return
	}
	cb(envelope)
}
