package notescmd

import (
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/goliatone/go-til/internal/domain"
	"github.com/goliatone/go-til/pkg/interfaces"
)

const (
	importDirectoryMessageType = "til.notes.import_directory"
	syncDirectoryMessageType   = "til.notes.sync_directory"
)

// ResultCallback receives the outcome of an import or sync run. The callback
// is optional and is invoked synchronously from the handler before any error
// is returned, so callers always see partial results.
type ResultCallback func(ResultEnvelope)

// ResultEnvelope carries whichever result the executed operation produced.
type ResultEnvelope struct {
	Import   *interfaces.ImportResult
	Sync     *interfaces.SyncResult
	Metadata map[string]any
}

// ImportDirectoryCommand walks Directory for Markdown notes and imports each
// into the index, mirroring interfaces.MarkdownService.ImportDirectory.
type ImportDirectoryCommand struct {
	// Directory selects the filesystem path (relative or absolute) to load notes from.
	Directory string `json:"directory"`
	// StatusOverride forces the stored status regardless of front matter.
	StatusOverride string `json:"status_override,omitempty"`
	// DryRun collects the import diff without persisting changes.
	DryRun         bool           `json:"dry_run,omitempty"`
	ResultCallback ResultCallback `json:"-"`
}

// Type implements command.Message.
func (ImportDirectoryCommand) Type() string { return importDirectoryMessageType }

// Validate ensures directory input is present and any status override names a
// known lifecycle state.
func (cmd ImportDirectoryCommand) Validate() error {
	return validation.ValidateStruct(&cmd,
		validation.Field(&cmd.Directory, validation.Required, validation.By(func(value any) error {
			if strings.TrimSpace(value.(string)) == "" {
				return validation.NewError("til.notes.import_directory.directory_required", "directory is required")
			}
			return nil
		})),
		validation.Field(&cmd.StatusOverride, validation.By(validStatusOverride("til.notes.import_directory.status_invalid"))),
	)
}

// SyncDirectoryCommand reconciles the index against the notes under
// Directory, applying update and orphan-deletion flags consistent with
// interfaces.SyncOptions.
type SyncDirectoryCommand struct {
	// Directory selects the filesystem path (relative or absolute) to load notes from.
	Directory string `json:"directory"`
	// StatusOverride forces the stored status regardless of front matter.
	StatusOverride string `json:"status_override,omitempty"`
	// DryRun collects the sync diff without persisting changes.
	DryRun bool `json:"dry_run,omitempty"`
	// DeleteOrphaned removes index records without matching note files.
	DeleteOrphaned bool `json:"delete_orphaned,omitempty"`
	// UpdateExisting overwrites index records when note files have changed.
	UpdateExisting bool `json:"update_existing,omitempty"`
	// Scope limits orphan deletion to notes under the given directory.
	Scope          string         `json:"scope,omitempty"`
	ResultCallback ResultCallback `json:"-"`
}

// Type implements command.Message.
func (SyncDirectoryCommand) Type() string { return syncDirectoryMessageType }

// Validate ensures directory input is present and any status override names a
// known lifecycle state.
func (cmd SyncDirectoryCommand) Validate() error {
	return validation.ValidateStruct(&cmd,
		validation.Field(&cmd.Directory, validation.Required, validation.By(func(value any) error {
			if strings.TrimSpace(value.(string)) == "" {
				return validation.NewError("til.notes.sync_directory.directory_required", "directory is required")
			}
			return nil
		})),
		validation.Field(&cmd.StatusOverride, validation.By(validStatusOverride("til.notes.sync_directory.status_invalid"))),
	)
}

func validStatusOverride(code string) func(any) error {
	return func(value any) error {
		raw := strings.TrimSpace(value.(string))
		if raw == "" {
			return nil
		}
		if !domain.ValidStatus(domain.ParseStatus(raw)) {
			return validation.NewError(code, "status override must be a known lifecycle state")
		}
		return nil
	}
}
