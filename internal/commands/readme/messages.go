package readmecmd

import (
	"context"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/goliatone/go-til/internal/index"
)

const refreshReadmeMessageType = "til.readme.refresh"

// Service is the slice of the index digests the command layer drives.
type Service interface {
	WriteReadme(ctx context.Context, file string, opts index.ReadmeOptions) (bool, error)
	CheckReadme(ctx context.Context, file string, opts index.ReadmeOptions) (bool, error)
	WriteCategoryPages(ctx context.Context, dir string) (int, error)
}

// ResultCallback receives the outcome of a README refresh. The callback is
// optional and is invoked synchronously from the handler before any error is
// returned.
type ResultCallback func(ResultEnvelope)

// ResultEnvelope captures the outcome of a README command execution.
type ResultEnvelope struct {
	// Wrote reports whether the README file changed.
	Wrote bool
	// Stale reports the check outcome when the command ran in check mode.
	Stale bool
	// CategoryPages counts per-category digests rewritten.
	CategoryPages int
	Metadata      map[string]any
}

// RefreshReadmeCommand regenerates the README digest, optionally refreshing
// the per-category pages, or verifies freshness in check mode.
type RefreshReadmeCommand struct {
	// File is the README path to manage.
	File string `json:"file"`
	// Title overrides the digest heading.
	Title string `json:"title,omitempty"`
	// Intro renders as a blockquote under the title.
	Intro string `json:"intro,omitempty"`
	// IncludeDrafts lists notes that are not currently visible.
	IncludeDrafts bool `json:"include_drafts,omitempty"`
	// LinkPrefix is prepended to note paths in the digest.
	LinkPrefix string `json:"link_prefix,omitempty"`
	// Check verifies freshness without writing.
	Check bool `json:"check,omitempty"`
	// CategoryPages refreshes per-category README digests under NotesDir.
	CategoryPages bool `json:"category_pages,omitempty"`
	// NotesDir is the notes tree root that category pages are written into.
	NotesDir       string         `json:"notes_dir,omitempty"`
	ResultCallback ResultCallback `json:"-"`
}

// Type implements command.Message.
func (RefreshReadmeCommand) Type() string { return refreshReadmeMessageType }

// Validate ensures the README path is present, and a notes directory when
// category pages are requested.
func (cmd RefreshReadmeCommand) Validate() error {
	return validation.ValidateStruct(&cmd,
		validation.Field(&cmd.File, validation.Required, validation.By(func(value any) error {
			if strings.TrimSpace(value.(string)) == "" {
				return validation.NewError("til.readme.refresh.file_required", "file is required")
			}
			return nil
		})),
		validation.Field(&cmd.NotesDir, validation.By(func(value any) error {
			if cmd.CategoryPages && strings.TrimSpace(value.(string)) == "" {
				return validation.NewError("til.readme.refresh.notes_dir_required", "notes dir is required for category pages")
			}
			return nil
		})),
	)
}

// FeatureGates exposes runtime feature toggles required by README command
// handlers. The digest is a core workflow, so a missing gate counts as enabled.
type FeatureGates struct {
	ReadmeEnabled func() bool
}

func (g FeatureGates) readmeEnabled() bool {
	if g.ReadmeEnabled == nil {
		return true
	}
	return g.ReadmeEnabled()
}
