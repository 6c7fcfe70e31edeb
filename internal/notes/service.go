package notes

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/goliatone/go-til/internal/domain"
	"github.com/goliatone/go-til/internal/identity"
	"github.com/goliatone/go-til/internal/logging"
	tilscheduler "github.com/goliatone/go-til/internal/scheduler"
	"github.com/goliatone/go-til/internal/util"
	tilnote "github.com/goliatone/go-til/note"
	"github.com/goliatone/go-til/pkg/interfaces"
	"github.com/google/uuid"
)

// ServiceOption configures the service at construction time.
type ServiceOption func(*service)

// WithClock overrides the clock used to stamp records.
func WithClock(clock func() time.Time) ServiceOption {
	return func(s *service) {
		if clock != nil {
			s.now = clock
		}
	}
}

type IDGenerator func() uuid.UUID

// WithIDGenerator overrides how fallback identifiers are minted. Notes with a
// source path always derive their ID from that path.
func WithIDGenerator(generator IDGenerator) ServiceOption {
	return func(s *service) {
		if generator != nil {
			s.id = generator
		}
	}
}

// WithScheduler overrides the scheduler used to register publish/unpublish jobs.
func WithScheduler(scheduler interfaces.Scheduler) ServiceOption {
	return func(s *service) {
		if scheduler != nil {
			s.scheduler = scheduler
		}
	}
}

// WithSchedulingEnabled toggles scheduling-related workflows.
func WithSchedulingEnabled(enabled bool) ServiceOption {
	return func(s *service) {
		s.schedulingEnabled = enabled
	}
}

// WithLogger attaches a logger provider; entries land under til.notes.
func WithLogger(provider interfaces.LoggerProvider) ServiceOption {
	return func(s *service) {
		s.logger = logging.NotesLogger(provider)
	}
}

type service struct {
	notes             NoteRepository
	links             LinkRepository
	now               func() time.Time
	id                IDGenerator
	scheduler         interfaces.Scheduler
	schedulingEnabled bool
	logger            interfaces.Logger
}

// NewService constructs a note service with the required dependencies.
func NewService(notes NoteRepository, links LinkRepository, opts ...ServiceOption) (Service, error) {
	if notes == nil {
		return nil, ErrRepositoryRequired
	}
	if links == nil {
		return nil, ErrLinkRepoRequired
	}

	s := &service{
		notes:     notes,
		links:     links,
		now:       time.Now,
		id:        uuid.New,
		scheduler: tilscheduler.NewNoOp(),
		logger:    logging.NoOp(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s, nil
}

// Create validates and indexes a new note.
func (s *service) Create(ctx context.Context, req CreateNoteRequest) (*Note, error) {
	slug := strings.TrimSpace(req.Slug)
	if slug == "" {
		return nil, ErrSlugRequired
	}
	if !tilnote.IsValidSlug(slug) {
		return nil, ErrSlugInvalid
	}
	if strings.TrimSpace(req.Title) == "" {
		return nil, ErrTitleRequired
	}
	sourcePath := strings.TrimSpace(req.SourcePath)
	if sourcePath == "" {
		return nil, ErrSourcePathRequired
	}

	status := domain.ParseStatus(req.Status)
	if !domain.ValidStatus(status) {
		return nil, ErrStatusInvalid
	}

	category := normalizeCategory(req.Category)

	if existing, err := s.notes.GetByPath(ctx, sourcePath); err == nil && existing != nil {
		return nil, &tilnote.SourcePathExistsError{SourcePath: sourcePath, Existing: existing.ID}
	} else if err != nil {
		var notFound *NotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	if conflict, err := s.findSlugConflict(ctx, category, slug, uuid.Nil); err != nil {
		return nil, err
	} else if conflict != nil {
		return nil, &tilnote.SlugExistsError{Slug: slug, Category: category, Existing: conflict.ID}
	}

	id := req.ID
	if id == uuid.Nil {
		id = identity.NoteUUID(sourcePath)
	}
	if id == uuid.Nil {
		id = s.id()
	}

	now := s.now()
	record := &Note{
		ID:          id,
		Slug:        slug,
		Category:    category,
		Title:       strings.TrimSpace(req.Title),
		Summary:     req.Summary,
		SourcePath:  sourcePath,
		Checksum:    req.Checksum,
		Status:      string(status),
		Source:      req.Source,
		Tags:        util.NormalizeTags(req.Tags),
		Metadata:    cloneMetadata(req.Metadata),
		WordCount:   req.WordCount,
		PublishAt:   cloneTimePtr(req.PublishAt),
		UnpublishAt: cloneTimePtr(req.UnpublishAt),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	created, err := s.notes.Create(ctx, record)
	if err != nil {
		return nil, err
	}

	if len(req.Links) > 0 {
		links, err := s.buildLinks(created.ID, req.Links)
		if err != nil {
			return nil, err
		}
		if created.Links, err = s.links.ReplaceForNote(ctx, created.ID, links); err != nil {
			return nil, err
		}
	}

	s.logger.Debug("note.indexed", "note_id", created.ID, "slug", created.Slug, "category", created.Category)

	return s.decorateNote(created), nil
}

// Get fetches a note by identifier.
func (s *service) Get(ctx context.Context, id uuid.UUID, opts ...NoteListOption) (*Note, error) {
	if id == uuid.Nil {
		return nil, ErrIDRequired
	}
	record, err := s.notes.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.finishGet(ctx, record, opts...)
}

// GetBySlug fetches a note by slug.
func (s *service) GetBySlug(ctx context.Context, slug string, opts ...NoteListOption) (*Note, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return nil, ErrSlugRequired
	}
	record, err := s.notes.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	return s.finishGet(ctx, record, opts...)
}

// GetByPath fetches a note by its source file path.
func (s *service) GetByPath(ctx context.Context, sourcePath string, opts ...NoteListOption) (*Note, error) {
	sourcePath = strings.TrimSpace(sourcePath)
	if sourcePath == "" {
		return nil, ErrSourcePathRequired
	}
	record, err := s.notes.GetByPath(ctx, sourcePath)
	if err != nil {
		return nil, err
	}
	return s.finishGet(ctx, record, opts...)
}

func (s *service) finishGet(ctx context.Context, record *Note, opts ...NoteListOption) (*Note, error) {
	parsed := parseNoteListOptions(opts...)
	if parsed.withLinks {
		links, err := s.links.ListByNote(ctx, record.ID)
		if err != nil {
			return nil, err
		}
		record.Links = links
	}
	return s.decorateNote(record), nil
}

// List returns notes matching the supplied options.
func (s *service) List(ctx context.Context, opts ...NoteListOption) ([]*Note, error) {
	parsed := parseNoteListOptions(opts...)

	records, err := s.notes.List(ctx, parsed.filter())
	if err != nil {
		return nil, err
	}

	out := records[:0]
	for _, record := range records {
		s.decorateNote(record)
		if parsed.visibleOnly && !record.IsVisible {
			continue
		}
		if parsed.withLinks {
			links, err := s.links.ListByNote(ctx, record.ID)
			if err != nil {
				return nil, err
			}
			record.Links = links
		}
		out = append(out, record)
	}
	return out, nil
}

// Update applies partial changes to an indexed note.
func (s *service) Update(ctx context.Context, req UpdateNoteRequest) (*Note, error) {
	if req.ID == uuid.Nil {
		return nil, ErrIDRequired
	}

	record, err := s.notes.GetByID(ctx, req.ID)
	if err != nil {
		return nil, err
	}

	if req.Slug != nil {
		slug := strings.TrimSpace(*req.Slug)
		if slug == "" {
			return nil, ErrSlugRequired
		}
		if !tilnote.IsValidSlug(slug) {
			return nil, ErrSlugInvalid
		}
		record.Slug = slug
	}
	if req.Category != nil {
		record.Category = normalizeCategory(*req.Category)
	}
	if req.Slug != nil || req.Category != nil {
		if conflict, err := s.findSlugConflict(ctx, record.Category, record.Slug, record.ID); err != nil {
			return nil, err
		} else if conflict != nil {
			return nil, &tilnote.SlugExistsError{Slug: record.Slug, Category: record.Category, Existing: conflict.ID}
		}
	}

	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			return nil, ErrTitleRequired
		}
		record.Title = title
	}
	if req.Summary != nil {
		record.Summary = req.Summary
	}
	if req.SourcePath != nil {
		sourcePath := strings.TrimSpace(*req.SourcePath)
		if sourcePath == "" {
			return nil, ErrSourcePathRequired
		}
		if existing, err := s.notes.GetByPath(ctx, sourcePath); err == nil && existing != nil && existing.ID != record.ID {
			return nil, &tilnote.SourcePathExistsError{SourcePath: sourcePath, Existing: existing.ID}
		} else if err != nil {
			var notFound *NotFoundError
			if !errors.As(err, &notFound) {
				return nil, err
			}
		}
		record.SourcePath = sourcePath
	}
	if req.Checksum != nil {
		record.Checksum = *req.Checksum
	}
	if req.Status != nil {
		status := domain.ParseStatus(*req.Status)
		if !domain.ValidStatus(status) {
			return nil, ErrStatusInvalid
		}
		if !domain.CanTransition(domain.Status(record.Status), status) {
			return nil, &tilnote.StatusTransitionError{NoteID: record.ID, From: record.Status, To: string(status)}
		}
		record.Status = string(status)
	}
	if req.Source != nil {
		record.Source = req.Source
	}
	if req.Tags != nil {
		record.Tags = util.NormalizeTags(req.Tags)
	}
	if req.Metadata != nil {
		record.Metadata = cloneMetadata(req.Metadata)
	}
	if req.WordCount != nil {
		record.WordCount = *req.WordCount
	}
	if req.ClearSchedule {
		record.PublishAt = nil
		record.UnpublishAt = nil
	} else {
		if req.PublishAt != nil {
			record.PublishAt = cloneTimePtr(req.PublishAt)
		}
		if req.UnpublishAt != nil {
			record.UnpublishAt = cloneTimePtr(req.UnpublishAt)
		}
	}

	record.UpdatedAt = s.now()

	updated, err := s.notes.Update(ctx, record)
	if err != nil {
		return nil, err
	}

	if req.Links != nil {
		links, err := s.buildLinks(updated.ID, req.Links)
		if err != nil {
			return nil, err
		}
		if updated.Links, err = s.links.ReplaceForNote(ctx, updated.ID, links); err != nil {
			return nil, err
		}
	}

	return s.decorateNote(updated), nil
}

// Delete removes a note from the index. Soft deletion keeps the row so a sync
// can resurrect the note when the file reappears.
func (s *service) Delete(ctx context.Context, req DeleteNoteRequest) error {
	if req.ID == uuid.Nil {
		return ErrIDRequired
	}
	if err := s.notes.Delete(ctx, req.ID, req.HardDelete); err != nil {
		return err
	}
	if req.HardDelete {
		if err := s.links.DeleteForNote(ctx, req.ID); err != nil {
			return err
		}
	}
	s.logger.Debug("note.deleted", "note_id", req.ID, "hard", req.HardDelete)
	return nil
}

// Restore clears the soft-delete marker so the note reappears in the index.
// Restoring a live note is a no-op.
func (s *service) Restore(ctx context.Context, id uuid.UUID) (*Note, error) {
	if id == uuid.Nil {
		return nil, ErrIDRequired
	}

	record, err := s.notes.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if record.DeletedAt == nil {
		return s.decorateNote(record), nil
	}

	record.DeletedAt = nil
	record.UpdatedAt = s.now()

	updated, err := s.notes.Update(ctx, record)
	if err != nil {
		return nil, err
	}

	s.logger.Info("note.restored", "note_id", updated.ID, "slug", updated.Slug)

	return s.decorateNote(updated), nil
}

// Publish moves a note to the published state and cancels pending publish jobs.
func (s *service) Publish(ctx context.Context, req PublishNoteRequest) (*Note, error) {
	if req.ID == uuid.Nil {
		return nil, ErrIDRequired
	}

	record, err := s.notes.GetByID(ctx, req.ID)
	if err != nil {
		return nil, err
	}

	if !domain.CanTransition(domain.Status(record.Status), domain.StatusPublished) {
		return nil, &tilnote.StatusTransitionError{NoteID: record.ID, From: record.Status, To: string(domain.StatusPublished)}
	}

	publishedAt := s.now()
	if req.PublishedAt != nil && !req.PublishedAt.IsZero() {
		publishedAt = *req.PublishedAt
	}

	record.Status = string(domain.StatusPublished)
	record.PublishedAt = &publishedAt
	record.PublishAt = nil
	record.UpdatedAt = s.now()

	if err := s.cancelJob(ctx, tilscheduler.NotePublishJobKey(record.ID)); err != nil {
		return nil, err
	}

	updated, err := s.notes.Update(ctx, record)
	if err != nil {
		return nil, err
	}

	s.logger.Info("note.published", "note_id", updated.ID, "slug", updated.Slug)

	return s.decorateNote(updated), nil
}

// Unpublish returns a note to draft.
func (s *service) Unpublish(ctx context.Context, req UnpublishNoteRequest) (*Note, error) {
	if req.ID == uuid.Nil {
		return nil, ErrIDRequired
	}

	record, err := s.notes.GetByID(ctx, req.ID)
	if err != nil {
		return nil, err
	}

	if !domain.CanTransition(domain.Status(record.Status), domain.StatusDraft) {
		return nil, &tilnote.StatusTransitionError{NoteID: record.ID, From: record.Status, To: string(domain.StatusDraft)}
	}

	record.Status = string(domain.StatusDraft)
	record.PublishedAt = nil
	record.UnpublishAt = nil
	record.UpdatedAt = s.now()

	if err := s.cancelJob(ctx, tilscheduler.NoteUnpublishJobKey(record.ID)); err != nil {
		return nil, err
	}

	updated, err := s.notes.Update(ctx, record)
	if err != nil {
		return nil, err
	}

	s.logger.Info("note.unpublished", "note_id", updated.ID, "slug", updated.Slug)

	return s.decorateNote(updated), nil
}

// Archive retires a note from indexes while keeping its history.
func (s *service) Archive(ctx context.Context, req ArchiveNoteRequest) (*Note, error) {
	if req.ID == uuid.Nil {
		return nil, ErrIDRequired
	}

	record, err := s.notes.GetByID(ctx, req.ID)
	if err != nil {
		return nil, err
	}

	if !domain.CanTransition(domain.Status(record.Status), domain.StatusArchived) {
		return nil, &tilnote.StatusTransitionError{NoteID: record.ID, From: record.Status, To: string(domain.StatusArchived)}
	}

	record.Status = string(domain.StatusArchived)
	record.UpdatedAt = s.now()

	updated, err := s.notes.Update(ctx, record)
	if err != nil {
		return nil, err
	}

	return s.decorateNote(updated), nil
}

// Schedule registers publish and unpublish windows for a note and dispatches
// scheduler jobs.
func (s *service) Schedule(ctx context.Context, req ScheduleNoteRequest) (*Note, error) {
	if !s.schedulingEnabled {
		return nil, ErrSchedulingDisabled
	}
	if req.ID == uuid.Nil {
		return nil, ErrIDRequired
	}
	if req.PublishAt != nil && req.UnpublishAt != nil && req.UnpublishAt.Before(*req.PublishAt) {
		return nil, ErrScheduleWindow
	}
	if req.PublishAt != nil && req.PublishAt.IsZero() {
		return nil, ErrScheduleTimestamp
	}
	if req.UnpublishAt != nil && req.UnpublishAt.IsZero() {
		return nil, ErrScheduleTimestamp
	}

	record, err := s.notes.GetByID(ctx, req.ID)
	if err != nil {
		return nil, err
	}

	record.PublishAt = cloneTimePtr(req.PublishAt)
	record.UnpublishAt = cloneTimePtr(req.UnpublishAt)
	record.UpdatedAt = s.now()

	// An unpublish-only window must not demote an already published note.
	if record.PublishAt != nil {
		record.Status = string(domain.StatusScheduled)
	} else if record.PublishedAt != nil || record.Status == string(domain.StatusPublished) {
		record.Status = string(domain.StatusPublished)
	} else {
		record.Status = string(domain.StatusDraft)
	}

	if record.PublishAt != nil {
		if _, err := s.scheduler.Enqueue(ctx, interfaces.JobSpec{
			Key:     tilscheduler.NotePublishJobKey(record.ID),
			Type:    tilscheduler.JobTypeNotePublish,
			RunAt:   *record.PublishAt,
			Payload: map[string]any{"note_id": record.ID.String()},
		}); err != nil {
			return nil, err
		}
	} else if err := s.cancelJob(ctx, tilscheduler.NotePublishJobKey(record.ID)); err != nil {
		return nil, err
	}

	if record.UnpublishAt != nil {
		if _, err := s.scheduler.Enqueue(ctx, interfaces.JobSpec{
			Key:     tilscheduler.NoteUnpublishJobKey(record.ID),
			Type:    tilscheduler.JobTypeNoteUnpublish,
			RunAt:   *record.UnpublishAt,
			Payload: map[string]any{"note_id": record.ID.String()},
		}); err != nil {
			return nil, err
		}
	} else if err := s.cancelJob(ctx, tilscheduler.NoteUnpublishJobKey(record.ID)); err != nil {
		return nil, err
	}

	updated, err := s.notes.Update(ctx, record)
	if err != nil {
		return nil, err
	}

	s.logger.Info("note.scheduled", "note_id", updated.ID, "publish_at", updated.PublishAt, "unpublish_at", updated.UnpublishAt)

	return s.decorateNote(updated), nil
}

// ReplaceLinks swaps the extracted link set for a note.
func (s *service) ReplaceLinks(ctx context.Context, req ReplaceLinksRequest) ([]*Link, error) {
	if req.NoteID == uuid.Nil {
		return nil, ErrIDRequired
	}
	if _, err := s.notes.GetByID(ctx, req.NoteID); err != nil {
		return nil, err
	}

	links, err := s.buildLinks(req.NoteID, req.Links)
	if err != nil {
		return nil, err
	}
	return s.links.ReplaceForNote(ctx, req.NoteID, links)
}

// Backlinks returns notes containing wiki links that target the given slug.
func (s *service) Backlinks(ctx context.Context, slug string) ([]*Note, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return nil, ErrSlugRequired
	}

	links, err := s.links.ListByTargetSlug(ctx, slug)
	if err != nil {
		return nil, err
	}

	seen := map[uuid.UUID]struct{}{}
	out := []*Note{}
	for _, link := range links {
		if _, ok := seen[link.NoteID]; ok {
			continue
		}
		seen[link.NoteID] = struct{}{}

		record, err := s.notes.GetByID(ctx, link.NoteID)
		if err != nil {
			var notFound *NotFoundError
			if errors.As(err, &notFound) {
				continue
			}
			return nil, err
		}
		if record.DeletedAt != nil {
			continue
		}
		out = append(out, s.decorateNote(record))
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Slug < out[j].Slug })
	return out, nil
}

// Orphans returns notes that no other note links to.
func (s *service) Orphans(ctx context.Context) ([]*Note, error) {
	records, err := s.notes.List(ctx, ListFilter{})
	if err != nil {
		return nil, err
	}
	links, err := s.links.List(ctx)
	if err != nil {
		return nil, err
	}

	targeted := map[string]struct{}{}
	for _, link := range links {
		if link.TargetSlug != nil {
			targeted[strings.ToLower(*link.TargetSlug)] = struct{}{}
		}
	}

	out := []*Note{}
	for _, record := range records {
		if _, ok := targeted[strings.ToLower(record.Slug)]; ok {
			continue
		}
		out = append(out, s.decorateNote(record))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Slug < out[j].Slug })
	return out, nil
}

// BrokenLinks returns wiki links whose target slug matches no indexed note.
func (s *service) BrokenLinks(ctx context.Context) ([]*Link, error) {
	records, err := s.notes.List(ctx, ListFilter{})
	if err != nil {
		return nil, err
	}
	links, err := s.links.List(ctx)
	if err != nil {
		return nil, err
	}

	known := map[string]struct{}{}
	active := map[uuid.UUID]struct{}{}
	for _, record := range records {
		known[strings.ToLower(record.Slug)] = struct{}{}
		active[record.ID] = struct{}{}
	}

	out := []*Link{}
	for _, link := range links {
		if link.Kind != tilnote.LinkKindWiki || link.TargetSlug == nil {
			continue
		}
		if _, ok := active[link.NoteID]; !ok {
			continue
		}
		if _, ok := known[strings.ToLower(*link.TargetSlug)]; ok {
			continue
		}
		out = append(out, link)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].NoteID == out[j].NoteID {
			return out[i].Position < out[j].Position
		}
		return out[i].NoteID.String() < out[j].NoteID.String()
	})
	return out, nil
}

// Categories aggregates note counts per category.
func (s *service) Categories(ctx context.Context) ([]CategoryCount, error) {
	records, err := s.notes.List(ctx, ListFilter{})
	if err != nil {
		return nil, err
	}

	counts := map[string]int{}
	for _, record := range records {
		counts[record.Category]++
	}

	out := make([]CategoryCount, 0, len(counts))
	for name, count := range counts {
		out = append(out, CategoryCount{Name: name, Count: count})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// Stats aggregates the state of the note index.
func (s *service) Stats(ctx context.Context) (*Stats, error) {
	records, err := s.notes.List(ctx, ListFilter{})
	if err != nil {
		return nil, err
	}
	links, err := s.links.List(ctx)
	if err != nil {
		return nil, err
	}
	broken, err := s.BrokenLinks(ctx)
	if err != nil {
		return nil, err
	}
	orphans, err := s.Orphans(ctx)
	if err != nil {
		return nil, err
	}

	stats := &Stats{
		Notes:    len(records),
		ByStatus: map[string]int{},
		Links:    len(links),
		Broken:   len(broken),
		Orphans:  len(orphans),
	}

	categories := map[string]int{}
	tags := map[string]int{}
	for _, record := range records {
		stats.ByStatus[record.Status]++
		stats.Words += record.WordCount
		categories[record.Category]++
		for _, tag := range record.Tags {
			tags[tag]++
		}
		created := record.CreatedAt
		if stats.Oldest == nil || created.Before(*stats.Oldest) {
			oldest := created
			stats.Oldest = &oldest
		}
		if stats.Newest == nil || created.After(*stats.Newest) {
			newest := created
			stats.Newest = &newest
		}
	}

	for name, count := range categories {
		stats.Categories = append(stats.Categories, CategoryCount{Name: name, Count: count})
	}
	sort.Slice(stats.Categories, func(i, j int) bool { return stats.Categories[i].Name < stats.Categories[j].Name })

	for name, count := range tags {
		stats.Tags = append(stats.Tags, TagCount{Name: name, Count: count})
	}
	sort.Slice(stats.Tags, func(i, j int) bool {
		if stats.Tags[i].Count == stats.Tags[j].Count {
			return stats.Tags[i].Name < stats.Tags[j].Name
		}
		return stats.Tags[i].Count > stats.Tags[j].Count
	})

	return stats, nil
}

func (s *service) findSlugConflict(ctx context.Context, category, slug string, selfID uuid.UUID) (*Note, error) {
	matches, err := s.notes.List(ctx, ListFilter{Category: category, Slug: slug})
	if err != nil {
		return nil, err
	}
	for _, match := range matches {
		if match.ID != selfID {
			return match, nil
		}
	}
	return nil, nil
}

func (s *service) buildLinks(noteID uuid.UUID, inputs []LinkInput) ([]*Link, error) {
	out := make([]*Link, 0, len(inputs))
	for _, input := range inputs {
		kind := strings.ToLower(strings.TrimSpace(input.Kind))
		switch kind {
		case tilnote.LinkKindWiki, tilnote.LinkKindInline, tilnote.LinkKindImage, tilnote.LinkKindAutolink:
		default:
			return nil, ErrLinkKindInvalid
		}

		targetSlug := strings.TrimSpace(input.TargetSlug)
		targetURL := strings.TrimSpace(input.TargetURL)
		if targetSlug == "" && targetURL == "" {
			return nil, ErrLinkTargetRequired
		}

		target := targetSlug
		if target == "" {
			target = targetURL
		}

		link := &Link{
			ID:        identity.LinkUUID(noteID, target, input.Position),
			NoteID:    noteID,
			Kind:      kind,
			Text:      input.Text,
			Position:  input.Position,
			CreatedAt: s.now(),
		}
		if targetSlug != "" {
			link.TargetSlug = &targetSlug
		}
		if targetURL != "" {
			link.TargetURL = &targetURL
		}
		out = append(out, link)
	}
	return out, nil
}

func (s *service) cancelJob(ctx context.Context, key string) error {
	if s.scheduler == nil {
		return nil
	}
	if err := s.scheduler.CancelByKey(ctx, key); err != nil && !errors.Is(err, interfaces.ErrJobNotFound) {
		return err
	}
	return nil
}

func (s *service) decorateNote(record *Note) *Note {
	if record == nil {
		return nil
	}
	status := effectiveNoteStatus(record, s.now())
	record.EffectiveStatus = status
	record.IsVisible = status == domain.StatusPublished && record.DeletedAt == nil
	return record
}

func effectiveNoteStatus(record *Note, now time.Time) domain.Status {
	if record == nil {
		return domain.StatusDraft
	}
	status := domain.Status(record.Status)
	if status == "" {
		status = domain.StatusDraft
	}
	if status == domain.StatusArchived {
		return status
	}
	if record.UnpublishAt != nil && !record.UnpublishAt.After(now) {
		return domain.StatusArchived
	}
	if record.PublishAt != nil {
		if record.PublishAt.After(now) {
			return domain.StatusScheduled
		}
		return domain.StatusPublished
	}
	if record.PublishedAt != nil && !record.PublishedAt.After(now) {
		return domain.StatusPublished
	}
	return status
}

func normalizeCategory(category string) string {
	category = strings.ToLower(strings.TrimSpace(category))
	if category == "" {
		return "uncategorized"
	}
	return category
}

func cloneTimePtr(value *time.Time) *time.Time {
	if value == nil {
		return nil
	}
	cloned := *value
	return &cloned
}

func cloneMetadata(src map[string]any) map[string]any {
	if src == nil {
		return nil
	}
	return util.CloneAnyMap(src)
}
