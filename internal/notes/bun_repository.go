package notes

import (
	"context"
	"fmt"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/goliatone/go-repository-cache/cache"
	repositorycache "github.com/goliatone/go-repository-cache/repositorycache"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type BunNoteRepository struct {
	repo repository.Repository[*Note]
}

func NewBunNoteRepository(db *bun.DB) *BunNoteRepository {
	return NewBunNoteRepositoryWithCache(db, nil, nil)
}

func NewBunNoteRepositoryWithCache(db *bun.DB, cacheService cache.CacheService, keySerializer cache.KeySerializer) *BunNoteRepository {
	base := NewNoteRepository(db)
	wrapped := wrapWithCache(base, cacheService, keySerializer)
	return &BunNoteRepository{repo: wrapped}
}

func (r *BunNoteRepository) Create(ctx context.Context, record *Note) (*Note, error) {
	created, err := r.repo.Create(ctx, record)
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (r *BunNoteRepository) GetByID(ctx context.Context, id uuid.UUID) (*Note, error) {
	result, err := r.repo.GetByID(ctx, id.String())
	if err != nil {
		return nil, mapRepositoryError(err, "note", id.String())
	}
	return result, nil
}

func (r *BunNoteRepository) GetBySlug(ctx context.Context, slug string) (*Note, error) {
	records, _, err := r.repo.List(ctx,
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("?TableAlias.slug = ?", slug).
				Where("?TableAlias.deleted_at IS NULL").
				OrderExpr("?TableAlias.category ASC")
		}),
		repository.SelectPaginate(1, 0),
	)
	if err != nil {
		return nil, mapRepositoryError(err, "note", slug)
	}
	if len(records) == 0 {
		return nil, &NotFoundError{Resource: "note", Key: slug}
	}
	return records[0], nil
}

func (r *BunNoteRepository) GetByPath(ctx context.Context, sourcePath string) (*Note, error) {
	records, _, err := r.repo.List(ctx,
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("?TableAlias.source_path = ?", sourcePath)
		}),
		repository.SelectPaginate(1, 0),
	)
	if err != nil {
		return nil, mapRepositoryError(err, "note", sourcePath)
	}
	if len(records) == 0 {
		return nil, &NotFoundError{Resource: "note", Key: sourcePath}
	}
	return records[0], nil
}

func (r *BunNoteRepository) List(ctx context.Context, filter ListFilter) ([]*Note, error) {
	criteria := []repository.SelectCriteria{
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			return applyListFilter(q, filter)
		}),
	}
	if filter.Limit > 0 {
		criteria = append(criteria, repository.SelectPaginate(filter.Limit, filter.Offset))
	} else if filter.Offset > 0 {
		criteria = append(criteria, repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Offset(filter.Offset)
		}))
	}

	records, _, err := r.repo.List(ctx, criteria...)
	if err != nil {
		return nil, fmt.Errorf("note repository error: %w", err)
	}
	return records, nil
}

func (r *BunNoteRepository) Update(ctx context.Context, record *Note) (*Note, error) {
	updated, err := r.repo.Update(ctx, record)
	if err != nil {
		return nil, mapRepositoryError(err, "note", record.ID.String())
	}
	return updated, nil
}

func (r *BunNoteRepository) Delete(ctx context.Context, id uuid.UUID, hard bool) error {
	record, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if hard {
		if err := r.repo.Delete(ctx, &Note{ID: id}); err != nil {
			return mapRepositoryError(err, "note", id.String())
		}
		return nil
	}

	now := time.Now().UTC()
	record.DeletedAt = &now
	record.UpdatedAt = now
	if _, err := r.repo.Update(ctx, record,
		repository.UpdateColumns("deleted_at", "updated_at"),
	); err != nil {
		return mapRepositoryError(err, "note", id.String())
	}
	return nil
}

// applyListFilter translates a ListFilter into WHERE/ORDER clauses. The tag
// match runs against the serialized JSON array so it behaves the same on
// sqlite and postgres.
func applyListFilter(q *bun.SelectQuery, filter ListFilter) *bun.SelectQuery {
	if !filter.IncludeDeleted {
		q = q.Where("?TableAlias.deleted_at IS NULL")
	}
	if filter.Slug != "" {
		q = q.Where("?TableAlias.slug = ?", filter.Slug)
	}
	if filter.Category != "" {
		q = q.Where("LOWER(?TableAlias.category) = ?", strings.ToLower(filter.Category))
	}
	if filter.Status != "" {
		q = q.Where("?TableAlias.status = ?", filter.Status)
	}
	if filter.Tag != "" {
		pattern := "%\"" + strings.ToLower(filter.Tag) + "\"%"
		q = q.Where("CAST(?TableAlias.tags AS TEXT) LIKE ?", pattern)
	}

	order := filter.OrderBy
	if order == "" {
		order = "created_at"
	}
	direction := "ASC"
	if filter.Descending {
		direction = "DESC"
	}
	return q.OrderExpr("?TableAlias." + order + " " + direction)
}

type BunLinkRepository struct {
	repo repository.Repository[*Link]
	db   *bun.DB
}

func NewBunLinkRepository(db *bun.DB) *BunLinkRepository {
	return NewBunLinkRepositoryWithCache(db, nil, nil)
}

func NewBunLinkRepositoryWithCache(db *bun.DB, cacheService cache.CacheService, keySerializer cache.KeySerializer) *BunLinkRepository {
	base := NewLinkRepository(db)
	wrapped := wrapWithCache(base, cacheService, keySerializer)
	return &BunLinkRepository{repo: wrapped, db: db}
}

func (r *BunLinkRepository) ReplaceForNote(ctx context.Context, noteID uuid.UUID, links []*Link) ([]*Link, error) {
	if err := r.DeleteForNote(ctx, noteID); err != nil {
		return nil, err
	}

	out := make([]*Link, 0, len(links))
	for _, link := range links {
		if link == nil {
			continue
		}
		link.NoteID = noteID
		created, err := r.repo.Create(ctx, link)
		if err != nil {
			return nil, fmt.Errorf("note_link repository error: %w", err)
		}
		out = append(out, created)
	}
	return out, nil
}

func (r *BunLinkRepository) ListByNote(ctx context.Context, noteID uuid.UUID) ([]*Link, error) {
	records, _, err := r.repo.List(ctx,
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("?TableAlias.note_id = ?", noteID).
				OrderExpr("?TableAlias.position ASC")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("note_link repository error: %w", err)
	}
	return records, nil
}

func (r *BunLinkRepository) ListByTargetSlug(ctx context.Context, slug string) ([]*Link, error) {
	records, _, err := r.repo.List(ctx,
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("LOWER(?TableAlias.target_slug) = ?", strings.ToLower(slug))
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("note_link repository error: %w", err)
	}
	return records, nil
}

func (r *BunLinkRepository) List(ctx context.Context) ([]*Link, error) {
	records, _, err := r.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("note_link repository error: %w", err)
	}
	return records, nil
}

func (r *BunLinkRepository) DeleteForNote(ctx context.Context, noteID uuid.UUID) error {
	if _, err := r.db.NewDelete().
		Model((*Link)(nil)).
		Where("note_id = ?", noteID).
		Exec(ctx); err != nil {
		return fmt.Errorf("note_link repository error: %w", err)
	}
	return nil
}

func mapRepositoryError(err error, resource, key string) error {
	if err == nil {
		return nil
	}
	if goerrors.IsCategory(err, repository.CategoryDatabaseNotFound) {
		return &NotFoundError{
			Resource: resource,
			Key:      key,
		}
	}
	return fmt.Errorf("%s repository error: %w", resource, err)
}

func wrapWithCache[T any](base repository.Repository[T], cacheService cache.CacheService, keySerializer cache.KeySerializer) repository.Repository[T] {
	if cacheService == nil || keySerializer == nil {
		return base
	}
	return repositorycache.New(base, cacheService, keySerializer)
}
