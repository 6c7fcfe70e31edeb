package interfaces

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// MarkdownParser defines how raw Markdown bytes are converted into HTML.
// Implementations should expose reusable parser instances and extension
// toggles so hosts can tailor rendering without rewriting the core service.
type MarkdownParser interface {
	// Parse converts Markdown into HTML using the parser's default settings.
	Parse(markdown []byte) ([]byte, error)
	// ParseWithOptions converts Markdown into HTML using the supplied overrides.
	ParseWithOptions(markdown []byte, opts ParseOptions) ([]byte, error)
}

// ParseOptions customises Markdown parsing behaviour, keeping option names
// readable for configuration unmarshalling and CLI flags.
type ParseOptions struct {
	Extensions []string
	Sanitize   bool
	HardWraps  bool
	SafeMode   bool
}

// MarkdownService exposes the file workflows for a notes tree: load Markdown
// documents, convert them into HTML, and synchronise them into the derived
// note index.
type MarkdownService interface {
	Load(ctx context.Context, path string, opts LoadOptions) (*Document, error)
	LoadDirectory(ctx context.Context, dir string, opts LoadOptions) ([]*Document, error)
	ListPaths(ctx context.Context, dir string, opts LoadOptions) ([]string, error)
	Render(ctx context.Context, markdown []byte, opts ParseOptions) ([]byte, error)
	RenderDocument(ctx context.Context, doc *Document, opts ParseOptions) ([]byte, error)
	Import(ctx context.Context, doc *Document, opts ImportOptions) (*ImportResult, error)
	ImportDirectory(ctx context.Context, dir string, opts ImportOptions) (*ImportResult, error)
	Sync(ctx context.Context, dir string, opts SyncOptions) (*SyncResult, error)
}

// Document represents a Markdown note file with parsed metadata and content.
// The struct is shared between the interfaces package and internal
// implementations so consumers can depend on a stable contract.
type Document struct {
	FilePath    string
	Category    string
	FrontMatter FrontMatter
	Body        []byte
	BodyHTML    []byte
	// BodyLine is the 1-based line in the original file where Body starts,
	// offset past any front matter block. Lint findings use it to report
	// file-accurate line numbers.
	BodyLine     int
	Excerpt      string
	WordCount    int
	LastModified time.Time
	// Checksum stores a digest of the original file content (SHA-256) so sync
	// workflows can detect changes without re-importing unchanged files.
	Checksum []byte
}

// FrontMatter models metadata extracted from note files. The typed fields
// cover the conventional TIL header; everything else lands in Custom and the
// untouched Raw map.
type FrontMatter struct {
	Title       string         `yaml:"title" json:"title"`
	Slug        string         `yaml:"slug" json:"slug"`
	Summary     string         `yaml:"summary" json:"summary"`
	Status      string         `yaml:"status" json:"status"`
	Tags        []string       `yaml:"tags" json:"tags"`
	Source      string         `yaml:"source" json:"source"`
	Date        time.Time      `yaml:"date" json:"date"`
	Draft       bool           `yaml:"draft" json:"draft"`
	PublishAt   *time.Time     `yaml:"publish_at" json:"publish_at"`
	UnpublishAt *time.Time     `yaml:"unpublish_at" json:"unpublish_at"`
	Custom      map[string]any `yaml:",inline" json:"custom"`
	Raw         map[string]any `yaml:"-" json:"raw"`
}

// LoadOptions fine-tunes how documents are discovered and parsed from disk.
// Include and Ignore hold doublestar globs relative to the notes root.
type LoadOptions struct {
	Include []string
	Ignore  []string
	Parser  ParseOptions
}

// ImportOptions controls how Markdown documents become note records.
type ImportOptions struct {
	// StatusOverride forces the stored status regardless of front matter.
	StatusOverride string
	DryRun         bool
}

// SyncOptions extends ImportOptions to handle update/delete semantics for
// repeated synchronisation runs.
type SyncOptions struct {
	ImportOptions
	DeleteOrphaned bool
	UpdateExisting bool
	// Scope limits orphan deletion to notes whose source path sits under the
	// given directory. Empty means the whole index is in scope.
	Scope string
}

// ImportResult reports the outcome of a single import operation, exposing
// counts and IDs so callers can audit behaviour or trigger follow-up actions.
type ImportResult struct {
	CreatedNoteIDs []uuid.UUID
	UpdatedNoteIDs []uuid.UUID
	SkippedNoteIDs []uuid.UUID
	Errors         []error
}

// SyncResult summarises a bulk sync run across many files.
type SyncResult struct {
	Created int
	Updated int
	Deleted int
	Skipped int
	Errors  []error
}
