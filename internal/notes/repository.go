package notes

import (
	"context"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// NoteRepository abstracts storage operations for note index records.
type NoteRepository interface {
	Create(ctx context.Context, record *Note) (*Note, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Note, error)
	GetBySlug(ctx context.Context, slug string) (*Note, error)
	GetByPath(ctx context.Context, sourcePath string) (*Note, error)
	List(ctx context.Context, filter ListFilter) ([]*Note, error)
	Update(ctx context.Context, record *Note) (*Note, error)
	Delete(ctx context.Context, id uuid.UUID, hard bool) error
}

// LinkRepository abstracts storage for extracted note references.
type LinkRepository interface {
	ReplaceForNote(ctx context.Context, noteID uuid.UUID, links []*Link) ([]*Link, error)
	ListByNote(ctx context.Context, noteID uuid.UUID) ([]*Link, error)
	ListByTargetSlug(ctx context.Context, slug string) ([]*Link, error)
	List(ctx context.Context) ([]*Link, error)
	DeleteForNote(ctx context.Context, noteID uuid.UUID) error
}

// ListFilter narrows repository list queries. Zero values mean "no filter";
// soft-deleted rows are excluded unless IncludeDeleted is set.
type ListFilter struct {
	Slug           string
	Category       string
	Status         string
	Tag            string
	IncludeDeleted bool
	Limit          int
	Offset         int
	OrderBy        string
	Descending     bool
}

func NewNoteRepository(db *bun.DB) repository.Repository[*Note] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*Note]{
		NewRecord: func() *Note { return &Note{} },
		GetID: func(n *Note) uuid.UUID {
			return n.ID
		},
		SetID: func(n *Note, id uuid.UUID) {
			n.ID = id
		},
		GetIdentifier: func() string {
			return "slug"
		},
		GetIdentifierValue: func(n *Note) string {
			return n.Slug
		},
	})
}

func NewLinkRepository(db *bun.DB) repository.Repository[*Link] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*Link]{
		NewRecord: func() *Link { return &Link{} },
		GetID: func(l *Link) uuid.UUID {
			return l.ID
		},
		SetID: func(l *Link, id uuid.UUID) {
			l.ID = id
		},
		GetIdentifier: func() string {
			return "id"
		},
		GetIdentifierValue: func(l *Link) string {
			if l == nil {
				return ""
			}
			return l.ID.String()
		},
	})
}
