package note

import (
	"time"

	"github.com/goliatone/go-til/domain"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Link kinds recorded for each note reference.
const (
	LinkKindWiki     = "wiki"
	LinkKindInline   = "inline"
	LinkKindImage    = "image"
	LinkKindAutolink = "autolink"
)

// Note is the indexed record for a single Markdown note. The Markdown file is
// canonical; rows in the notes table are derived from it and can be rebuilt
// with a sync at any time.
type Note struct {
	bun.BaseModel `bun:"table:notes,alias:n"`

	ID          uuid.UUID      `bun:",pk,type:uuid"    json:"id"`
	Slug        string         `bun:"slug,notnull"     json:"slug"`
	Category    string         `bun:"category,notnull" json:"category"`
	Title       string         `bun:"title,notnull"    json:"title"`
	Summary     *string        `bun:"summary"          json:"summary,omitempty"`
	SourcePath  string         `bun:"source_path,notnull" json:"source_path"`
	Checksum    string         `bun:"checksum,notnull"  json:"checksum"`
	Status      string         `bun:"status,notnull,default:'draft'" json:"status"`
	Source      *string        `bun:"source"            json:"source,omitempty"`
	Tags        []string       `bun:"tags,type:jsonb"   json:"tags,omitempty"`
	Metadata    map[string]any `bun:"metadata,type:jsonb" json:"metadata,omitempty"`
	WordCount   int            `bun:"word_count,notnull,default:0" json:"word_count"`
	PublishAt   *time.Time     `bun:"publish_at,nullzero"   json:"publish_at,omitempty"`
	UnpublishAt *time.Time     `bun:"unpublish_at,nullzero" json:"unpublish_at,omitempty"`
	PublishedAt *time.Time     `bun:"published_at,nullzero" json:"published_at,omitempty"`
	DeletedAt   *time.Time     `bun:"deleted_at,nullzero"   json:"deleted_at,omitempty"`
	CreatedAt   time.Time      `bun:"created_at,nullzero,default:current_timestamp" json:"created_at"`
	UpdatedAt   time.Time      `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at"`

	Links           []*Link       `bun:"rel:has-many,join:id=note_id" json:"links,omitempty"`
	EffectiveStatus domain.Status `bun:"-" json:"effective_status"`
	IsVisible       bool          `bun:"-" json:"is_visible"`
}

// Link records one outgoing reference extracted from a note body. Wiki links
// carry a target slug, inline and image links a URL; autolinks are bare URLs.
type Link struct {
	bun.BaseModel `bun:"table:note_links,alias:nl"`

	ID         uuid.UUID `bun:",pk,type:uuid" json:"id"`
	NoteID     uuid.UUID `bun:"note_id,notnull,type:uuid" json:"note_id"`
	Kind       string    `bun:"kind,notnull"  json:"kind"`
	TargetSlug *string   `bun:"target_slug"   json:"target_slug,omitempty"`
	TargetURL  *string   `bun:"target_url"    json:"target_url,omitempty"`
	Text       string    `bun:"text"          json:"text,omitempty"`
	Position   int       `bun:"position,notnull,default:0" json:"position"`
	CreatedAt  time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at"`

	Note *Note `bun:"rel:belongs-to,join:note_id=id" json:"note,omitempty"`
}

// CategoryCount pairs a category name with the number of notes in it.
type CategoryCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// TagCount pairs a tag with the number of notes carrying it.
type TagCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// Stats aggregates the state of the note index.
type Stats struct {
	Notes      int             `json:"notes"`
	ByStatus   map[string]int  `json:"by_status"`
	Categories []CategoryCount `json:"categories"`
	Tags       []TagCount      `json:"tags"`
	Words      int             `json:"words"`
	Links      int             `json:"links"`
	Broken     int             `json:"broken_links"`
	Orphans    int             `json:"orphans"`
	Newest     *time.Time      `json:"newest,omitempty"`
	Oldest     *time.Time      `json:"oldest,omitempty"`
}
