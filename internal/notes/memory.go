package notes

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/goliatone/go-til/internal/util"
	"github.com/google/uuid"
)

// MemoryNoteRepository is an in-memory implementation backing the default
// driver and tests. Records are cloned on the way in and out so callers can
// never mutate shared state.
type MemoryNoteRepository struct {
	mu        sync.RWMutex
	notes     map[uuid.UUID]*Note
	pathIndex map[string]uuid.UUID
	now       func() time.Time
}

// NewMemoryNoteRepository creates an empty in-memory note repository.
func NewMemoryNoteRepository() *MemoryNoteRepository {
	return &MemoryNoteRepository{
		notes:     make(map[uuid.UUID]*Note),
		pathIndex: make(map[string]uuid.UUID),
		now:       time.Now,
	}
}

// Create inserts the supplied note.
func (m *MemoryNoteRepository) Create(_ context.Context, record *Note) (*Note, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	copied := cloneNote(record)
	m.notes[copied.ID] = copied
	m.pathIndex[copied.SourcePath] = copied.ID
	return cloneNote(copied), nil
}

// GetByID retrieves a note by identifier.
func (m *MemoryNoteRepository) GetByID(_ context.Context, id uuid.UUID) (*Note, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rec, ok := m.notes[id]
	if !ok {
		return nil, &NotFoundError{Resource: "note", Key: id.String()}
	}
	return cloneNote(rec), nil
}

// GetBySlug retrieves a note by slug regardless of category. When several
// categories share the slug, the first by category order wins.
func (m *MemoryNoteRepository) GetBySlug(_ context.Context, slug string) (*Note, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var matches []*Note
	for _, rec := range m.notes {
		if rec.Slug == slug && rec.DeletedAt == nil {
			matches = append(matches, rec)
		}
	}
	if len(matches) == 0 {
		return nil, &NotFoundError{Resource: "note", Key: slug}
	}
	sort.Slice(matches, func(i, j int) bool { return matches[i].Category < matches[j].Category })
	return cloneNote(matches[0]), nil
}

// GetByPath retrieves a note by its source file path.
func (m *MemoryNoteRepository) GetByPath(_ context.Context, sourcePath string) (*Note, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	id, ok := m.pathIndex[sourcePath]
	if !ok {
		return nil, &NotFoundError{Resource: "note", Key: sourcePath}
	}
	return cloneNote(m.notes[id]), nil
}

// List returns notes matching the filter, ordered by the requested field.
func (m *MemoryNoteRepository) List(_ context.Context, filter ListFilter) ([]*Note, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*Note, 0, len(m.notes))
	for _, rec := range m.notes {
		if !matchesFilter(rec, filter) {
			continue
		}
		out = append(out, cloneNote(rec))
	}

	sortNotes(out, filter.OrderBy, filter.Descending)

	if filter.Offset > 0 {
		if filter.Offset >= len(out) {
			return []*Note{}, nil
		}
		out = out[filter.Offset:]
	}
	if filter.Limit > 0 && filter.Limit < len(out) {
		out = out[:filter.Limit]
	}
	return out, nil
}

// Update replaces the stored record.
func (m *MemoryNoteRepository) Update(_ context.Context, record *Note) (*Note, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.notes[record.ID]
	if !ok {
		return nil, &NotFoundError{Resource: "note", Key: record.ID.String()}
	}

	delete(m.pathIndex, existing.SourcePath)

	copied := cloneNote(record)
	m.notes[copied.ID] = copied
	m.pathIndex[copied.SourcePath] = copied.ID
	return cloneNote(copied), nil
}

// Delete removes a note. Soft deletion stamps DeletedAt and keeps the row so
// a later sync can resurrect it; hard deletion drops it entirely.
func (m *MemoryNoteRepository) Delete(_ context.Context, id uuid.UUID, hard bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.notes[id]
	if !ok {
		return &NotFoundError{Resource: "note", Key: id.String()}
	}

	if hard {
		delete(m.pathIndex, rec.SourcePath)
		delete(m.notes, id)
		return nil
	}

	now := m.now()
	rec.DeletedAt = &now
	rec.UpdatedAt = now
	return nil
}

func matchesFilter(rec *Note, filter ListFilter) bool {
	if rec == nil {
		return false
	}
	if !filter.IncludeDeleted && rec.DeletedAt != nil {
		return false
	}
	if filter.Slug != "" && rec.Slug != filter.Slug {
		return false
	}
	if filter.Category != "" && !strings.EqualFold(rec.Category, filter.Category) {
		return false
	}
	if filter.Status != "" && rec.Status != filter.Status {
		return false
	}
	if filter.Tag != "" {
		found := false
		for _, tag := range rec.Tags {
			if strings.EqualFold(tag, filter.Tag) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func sortNotes(records []*Note, orderBy string, descending bool) {
	if orderBy == "" {
		orderBy = "created_at"
	}
	sort.SliceStable(records, func(i, j int) bool {
		less := compareNotes(records[i], records[j], orderBy)
		if descending {
			return !less
		}
		return less
	})
}

func compareNotes(a, b *Note, field string) bool {
	switch field {
	case "slug":
		return a.Slug < b.Slug
	case "category":
		if a.Category == b.Category {
			return a.Slug < b.Slug
		}
		return a.Category < b.Category
	case "title":
		return a.Title < b.Title
	case "status":
		return a.Status < b.Status
	case "word_count":
		return a.WordCount < b.WordCount
	case "updated_at":
		return a.UpdatedAt.Before(b.UpdatedAt)
	case "published_at":
		return timePtrBefore(a.PublishedAt, b.PublishedAt)
	default:
		return a.CreatedAt.Before(b.CreatedAt)
	}
}

func timePtrBefore(a, b *time.Time) bool {
	switch {
	case a == nil && b == nil:
		return false
	case a == nil:
		return true
	case b == nil:
		return false
	default:
		return a.Before(*b)
	}
}

func cloneNote(src *Note) *Note {
	if src == nil {
		return nil
	}

	copied := *src
	copied.Tags = util.CloneStringSlice(src.Tags)
	if src.Metadata != nil {
		copied.Metadata = util.CloneAnyMap(src.Metadata)
	}
	if len(src.Links) > 0 {
		copied.Links = make([]*Link, len(src.Links))
		for i, link := range src.Links {
			copied.Links[i] = cloneLink(link)
		}
	}
	return &copied
}

func cloneLink(src *Link) *Link {
	if src == nil {
		return nil
	}
	copied := *src
	copied.Note = nil
	return &copied
}

// MemoryLinkRepository stores extracted links grouped by note.
type MemoryLinkRepository struct {
	mu    sync.RWMutex
	links map[uuid.UUID][]*Link
}

// NewMemoryLinkRepository constructs the repository.
func NewMemoryLinkRepository() *MemoryLinkRepository {
	return &MemoryLinkRepository{
		links: make(map[uuid.UUID][]*Link),
	}
}

// ReplaceForNote swaps the stored link set for a note.
func (m *MemoryLinkRepository) ReplaceForNote(_ context.Context, noteID uuid.UUID, links []*Link) ([]*Link, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored := make([]*Link, 0, len(links))
	for _, link := range links {
		if link == nil {
			continue
		}
		copied := cloneLink(link)
		copied.NoteID = noteID
		stored = append(stored, copied)
	}
	sort.SliceStable(stored, func(i, j int) bool { return stored[i].Position < stored[j].Position })
	m.links[noteID] = stored

	return cloneLinks(stored), nil
}

// ListByNote returns the links extracted from one note in position order.
func (m *MemoryLinkRepository) ListByNote(_ context.Context, noteID uuid.UUID) ([]*Link, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return cloneLinks(m.links[noteID]), nil
}

// ListByTargetSlug returns wiki links pointing at the given slug.
func (m *MemoryLinkRepository) ListByTargetSlug(_ context.Context, slug string) ([]*Link, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []*Link
	for _, links := range m.links {
		for _, link := range links {
			if link.TargetSlug != nil && strings.EqualFold(*link.TargetSlug, slug) {
				out = append(out, cloneLink(link))
			}
		}
	}
	return out, nil
}

// List returns every stored link.
func (m *MemoryLinkRepository) List(_ context.Context) ([]*Link, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []*Link
	for _, links := range m.links {
		out = append(out, cloneLinks(links)...)
	}
	return out, nil
}

// DeleteForNote drops all links recorded for a note.
func (m *MemoryLinkRepository) DeleteForNote(_ context.Context, noteID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.links, noteID)
	return nil
}

func cloneLinks(src []*Link) []*Link {
	if src == nil {
		return nil
	}
	out := make([]*Link, len(src))
	for i, link := range src {
		out[i] = cloneLink(link)
	}
	return out
}
