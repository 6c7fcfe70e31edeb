package sitecmd

import (
	"context"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/goliatone/go-til/internal/site"
)

const (
	buildSiteMessageType = "til.site.build"
	buildPageMessageType = "til.site.build_page"
	cleanSiteMessageType = "til.site.clean"
)

// Service is the slice of the site builder the command layer drives.
type Service interface {
	Build(ctx context.Context, opts site.BuildOptions) (*site.BuildResult, error)
	BuildPage(ctx context.Context, slug string) (*site.BuildResult, error)
	Clean(ctx context.Context) error
}

// ResultCallback receives build results produced by site operations. The
// callback is optional and is invoked synchronously from the handler when a
// BuildResult is available.
type ResultCallback func(ResultEnvelope)

// ResultEnvelope captures the outcome of a site command execution.
type ResultEnvelope struct {
	Result   *site.BuildResult
	Metadata map[string]any
}

// BuildSiteCommand executes a full site build.
type BuildSiteCommand struct {
	// Force re-renders every page, ignoring the previous build manifest.
	Force bool `json:"force,omitempty"`
	// IncludeScheduled renders notes whose publish time is still in the future.
	IncludeScheduled bool `json:"include_scheduled,omitempty"`
	// DryRun renders without writing artifacts.
	DryRun         bool           `json:"dry_run,omitempty"`
	ResultCallback ResultCallback `json:"-"`
}

// Type implements command.Message.
func (BuildSiteCommand) Type() string { return buildSiteMessageType }

// Validate satisfies command.Message; there are no payload constraints.
func (BuildSiteCommand) Validate() error { return nil }

// BuildPageCommand rebuilds the output for a single note and the listings
// that reference it.
type BuildPageCommand struct {
	// Slug identifies the note to rebuild.
	Slug           string         `json:"slug"`
	ResultCallback ResultCallback `json:"-"`
}

// Type implements command.Message.
func (BuildPageCommand) Type() string { return buildPageMessageType }

// Validate ensures a slug is present before handlers execute.
func (cmd BuildPageCommand) Validate() error {
	return validation.ValidateStruct(&cmd,
		validation.Field(&cmd.Slug, validation.Required, validation.By(func(value any) error {
			if strings.TrimSpace(value.(string)) == "" {
				return validation.NewError("til.site.build_page.slug_required", "slug is required")
			}
			return nil
		})),
	)
}

// CleanSiteCommand clears build artifacts from the configured output backend.
type CleanSiteCommand struct{}

// Type implements command.Message.
func (CleanSiteCommand) Type() string { return cleanSiteMessageType }

// Validate satisfies command.Message; there are no payload constraints.
func (CleanSiteCommand) Validate() error { return nil }

// FeatureGates exposes runtime switches used to guard handler execution.
// Site generation is opt-in, so a missing gate counts as disabled.
type FeatureGates struct {
	SiteEnabled func() bool
}

func (g FeatureGates) siteEnabled() bool {
	if g.SiteEnabled == nil {
		return false
	}
	return g.SiteEnabled()
}
