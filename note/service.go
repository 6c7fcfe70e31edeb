package note

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Service exposes note indexing and lifecycle use cases.
type Service interface {
	Create(ctx context.Context, req CreateNoteRequest) (*Note, error)
	Get(ctx context.Context, id uuid.UUID, opts ...NoteListOption) (*Note, error)
	GetBySlug(ctx context.Context, slug string, opts ...NoteListOption) (*Note, error)
	GetByPath(ctx context.Context, sourcePath string, opts ...NoteListOption) (*Note, error)
	List(ctx context.Context, opts ...NoteListOption) ([]*Note, error)
	Update(ctx context.Context, req UpdateNoteRequest) (*Note, error)
	Delete(ctx context.Context, req DeleteNoteRequest) error
	Restore(ctx context.Context, id uuid.UUID) (*Note, error)
	Publish(ctx context.Context, req PublishNoteRequest) (*Note, error)
	Unpublish(ctx context.Context, req UnpublishNoteRequest) (*Note, error)
	Archive(ctx context.Context, req ArchiveNoteRequest) (*Note, error)
	Schedule(ctx context.Context, req ScheduleNoteRequest) (*Note, error)
	ReplaceLinks(ctx context.Context, req ReplaceLinksRequest) ([]*Link, error)
	Backlinks(ctx context.Context, slug string) ([]*Note, error)
	Orphans(ctx context.Context) ([]*Note, error)
	BrokenLinks(ctx context.Context) ([]*Link, error)
	Categories(ctx context.Context) ([]CategoryCount, error)
	Stats(ctx context.Context) (*Stats, error)
}

// NoteListOption configures note list behavior. It is an alias to string so
// call sites can pass bare tokens alongside the helper constructors.
type NoteListOption = string

const (
	noteListWithLinks      NoteListOption = "note:list:with_links"
	noteListIncludeDeleted NoteListOption = "note:list:include_deleted"
	noteListVisibleOnly    NoteListOption = "note:list:visible"
	noteListCategoryPrefix NoteListOption = "note:list:category:"
	noteListStatusPrefix   NoteListOption = "note:list:status:"
	noteListTagPrefix      NoteListOption = "note:list:tag:"
	noteListLimitPrefix    NoteListOption = "note:list:limit:"
	noteListOffsetPrefix   NoteListOption = "note:list:offset:"
	noteListOrderPrefix    NoteListOption = "note:list:order:"
)

// WithLinks preloads extracted links when listing or fetching notes.
func WithLinks() NoteListOption {
	return noteListWithLinks
}

// IncludeDeleted widens list and get calls to soft-deleted notes.
func IncludeDeleted() NoteListOption {
	return noteListIncludeDeleted
}

// VisibleOnly restricts results to notes whose effective status is published.
func VisibleOnly() NoteListOption {
	return noteListVisibleOnly
}

// InCategory filters results to a single category.
func InCategory(name string) NoteListOption {
	normalized := strings.ToLower(strings.TrimSpace(name))
	if normalized == "" {
		return ""
	}
	return noteListCategoryPrefix + normalized
}

// WithStatus filters results by stored status.
func WithStatus(status string) NoteListOption {
	normalized := strings.ToLower(strings.TrimSpace(status))
	if normalized == "" {
		return ""
	}
	return noteListStatusPrefix + normalized
}

// WithTag filters results to notes carrying the tag.
func WithTag(tag string) NoteListOption {
	normalized := strings.ToLower(strings.TrimSpace(tag))
	if normalized == "" {
		return ""
	}
	return noteListTagPrefix + normalized
}

// WithLimit caps the number of results.
func WithLimit(n int) NoteListOption {
	if n <= 0 {
		return ""
	}
	return noteListLimitPrefix + strconv.Itoa(n)
}

// WithOffset skips the first n results.
func WithOffset(n int) NoteListOption {
	if n <= 0 {
		return ""
	}
	return noteListOffsetPrefix + strconv.Itoa(n)
}

// OrderBy sorts results by a known field name, optionally prefixed with "-"
// for descending order (e.g. "-created_at").
func OrderBy(field string) NoteListOption {
	normalized := strings.ToLower(strings.TrimSpace(field))
	if normalized == "" {
		return ""
	}
	return noteListOrderPrefix + normalized
}

// CreateNoteRequest captures the information required to index a note.
type CreateNoteRequest struct {
	ID          uuid.UUID
	Slug        string
	Category    string
	Title       string
	Summary     *string
	SourcePath  string
	Checksum    string
	Status      string
	Source      *string
	Tags        []string
	Metadata    map[string]any
	WordCount   int
	PublishAt   *time.Time
	UnpublishAt *time.Time
	Links       []LinkInput
}

// LinkInput represents one extracted reference supplied during create or update.
type LinkInput struct {
	Kind       string
	TargetSlug string
	TargetURL  string
	Text       string
	Position   int
}

// UpdateNoteRequest captures mutable fields for an indexed note. Nil pointers
// leave the stored value untouched.
type UpdateNoteRequest struct {
	ID            uuid.UUID
	Slug          *string
	Category      *string
	Title         *string
	Summary       *string
	SourcePath    *string
	Checksum      *string
	Status        *string
	Source        *string
	Tags          []string
	Metadata      map[string]any
	WordCount     *int
	PublishAt     *time.Time
	UnpublishAt   *time.Time
	Links         []LinkInput
	ClearSchedule bool
}

// DeleteNoteRequest captures the information required to remove a note from
// the index.
type DeleteNoteRequest struct {
	ID         uuid.UUID
	HardDelete bool
}

// PublishNoteRequest moves a note to the published state.
type PublishNoteRequest struct {
	ID          uuid.UUID
	PublishedAt *time.Time
}

// UnpublishNoteRequest returns a note to draft.
type UnpublishNoteRequest struct {
	ID uuid.UUID
}

// ArchiveNoteRequest retires a note from indexes while keeping its history.
type ArchiveNoteRequest struct {
	ID uuid.UUID
}

// ScheduleNoteRequest captures details to schedule publish/unpublish events.
type ScheduleNoteRequest struct {
	ID          uuid.UUID
	PublishAt   *time.Time
	UnpublishAt *time.Time
}

// ReplaceLinksRequest swaps the extracted link set for a note.
type ReplaceLinksRequest struct {
	NoteID uuid.UUID
	Links  []LinkInput
}
