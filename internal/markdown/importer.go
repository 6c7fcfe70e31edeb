package markdown

import (
	"bytes"
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"path"
	"slices"
	"strings"

	"github.com/google/uuid"

	"github.com/goliatone/go-til/internal/domain"
	"github.com/goliatone/go-til/internal/identity"
	"github.com/goliatone/go-til/internal/logging"
	"github.com/goliatone/go-til/note"
	"github.com/goliatone/go-til/pkg/interfaces"
)

var (
	ErrNoteServiceRequired = errors.New("markdown importer: note service is required")
	ErrSlugUnresolvable    = errors.New("markdown importer: slug could not be derived")
)

// ImporterConfig encapsulates dependencies required to index note documents.
type ImporterConfig struct {
	Notes  note.Service
	Parser interfaces.ParseOptions
	Logger interfaces.Logger
}

// Importer turns loaded Markdown documents into note index records. The
// Markdown file stays canonical: every import writes the file's state over
// whatever the index holds.
type Importer struct {
	notes  note.Service
	parser interfaces.ParseOptions
	logger interfaces.Logger
}

// NewImporter builds an Importer from the supplied configuration.
func NewImporter(cfg ImporterConfig) *Importer {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.NoOp()
	}
	return &Importer{
		notes:  cfg.Notes,
		parser: cfg.Parser,
		logger: logger,
	}
}

// ImportDocument indexes a single document. Dry runs report the would-be
// outcome without writing.
func (i *Importer) ImportDocument(ctx context.Context, doc *interfaces.Document, opts interfaces.ImportOptions) (*interfaces.ImportResult, error) {
	if i.notes == nil {
		return nil, ErrNoteServiceRequired
	}

	acc := newImportAccumulator()
	params := applyParams{ImportOptions: opts, updateExisting: true}
	if err := i.applyDocument(ctx, doc, params, acc); err != nil {
		acc.addError(wrapDocError(doc, err))
	}
	return acc.result(), firstError(acc.errors)
}

// ImportDocuments indexes a set of documents in deterministic path order.
// Per-file failures are collected instead of aborting the run.
func (i *Importer) ImportDocuments(ctx context.Context, docs []*interfaces.Document, opts interfaces.ImportOptions) (*interfaces.ImportResult, error) {
	if i.notes == nil {
		return nil, ErrNoteServiceRequired
	}

	acc := newImportAccumulator()
	params := applyParams{
		ImportOptions:  opts,
		updateExisting: true,
		knownPaths:     pathSet(docs),
	}
	for _, doc := range sortDocuments(docs) {
		if err := i.applyDocument(ctx, doc, params, acc); err != nil {
			acc.addError(wrapDocError(doc, err))
		}
	}
	return acc.result(), firstError(acc.errors)
}

// SyncDocuments imports all provided documents and optionally soft-deletes
// notes whose files disappeared.
func (i *Importer) SyncDocuments(ctx context.Context, docs []*interfaces.Document, opts interfaces.SyncOptions) (*interfaces.SyncResult, error) {
	if i.notes == nil {
		return nil, ErrNoteServiceRequired
	}

	acc := newSyncAccumulator()
	params := applyParams{
		ImportOptions:  opts.ImportOptions,
		updateExisting: opts.UpdateExisting,
		knownPaths:     pathSet(docs),
	}
	for _, doc := range sortDocuments(docs) {
		res := newImportAccumulator()
		if err := i.applyDocument(ctx, doc, params, res); err != nil {
			res.addError(wrapDocError(doc, err))
		}
		acc.merge(res.result())
	}

	if opts.DeleteOrphaned {
		i.deleteOrphaned(ctx, params.knownPaths, opts, acc)
	}

	return acc.result(), firstError(acc.errors)
}

// applyParams carries per-run import settings alongside the caller options.
type applyParams struct {
	interfaces.ImportOptions
	updateExisting bool
	knownPaths     map[string]struct{}
}

func (i *Importer) applyDocument(ctx context.Context, doc *interfaces.Document, params applyParams, acc *importAccumulator) error {
	if doc == nil {
		return errors.New("markdown importer: nil document")
	}

	slug, err := DeriveSlug(doc)
	if err != nil {
		return err
	}

	existing, err := i.lookupByPath(ctx, doc.FilePath)
	if err != nil {
		return err
	}

	if existing == nil {
		return i.createNote(ctx, doc, slug, params, acc)
	}
	return i.updateNote(ctx, doc, slug, existing, params, acc)
}

func (i *Importer) lookupByPath(ctx context.Context, sourcePath string) (*note.Note, error) {
	record, err := i.notes.GetByPath(ctx, sourcePath)
	if err != nil {
		var notFound *note.NotFoundError
		if errors.As(err, &notFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("markdown importer: lookup %s: %w", sourcePath, err)
	}
	return record, nil
}

func (i *Importer) createNote(ctx context.Context, doc *interfaces.Document, slug string, params applyParams, acc *importAccumulator) error {
	if params.DryRun {
		acc.created(identity.NoteUUID(doc.FilePath))
		return nil
	}

	created, err := i.notes.Create(ctx, i.buildCreateRequest(doc, slug, params))
	if err != nil {
		var slugErr *note.SlugExistsError
		if errors.As(err, &slugErr) {
			return i.adoptConflict(ctx, doc, slug, slugErr.Existing, params, acc)
		}
		var pathErr *note.SourcePathExistsError
		if errors.As(err, &pathErr) {
			existing, lookupErr := i.notes.Get(ctx, pathErr.Existing)
			if lookupErr != nil {
				return lookupErr
			}
			return i.updateNote(ctx, doc, slug, existing, params, acc)
		}
		return fmt.Errorf("markdown importer: create %s: %w", slug, err)
	}

	if err := i.applySchedule(ctx, created.ID, doc, false); err != nil {
		return err
	}

	acc.created(created.ID)
	i.logger.Debug("note.imported", "note_id", created.ID, "slug", created.Slug, "path", doc.FilePath)
	return nil
}

// adoptConflict resolves a slug collision during create. When the existing
// row's file is still part of the import set the collision is a real
// duplicate; otherwise the file moved and the row follows it.
func (i *Importer) adoptConflict(ctx context.Context, doc *interfaces.Document, slug string, existingID uuid.UUID, params applyParams, acc *importAccumulator) error {
	existing, err := i.notes.Get(ctx, existingID)
	if err != nil {
		return err
	}

	if params.knownPaths != nil {
		if _, live := params.knownPaths[existing.SourcePath]; live {
			return fmt.Errorf("markdown importer: slug %s/%s already used by %s", existing.Category, slug, existing.SourcePath)
		}
	}
	return i.updateNote(ctx, doc, slug, existing, params, acc)
}

func (i *Importer) updateNote(ctx context.Context, doc *interfaces.Document, slug string, existing *note.Note, params applyParams, acc *importAccumulator) error {
	checksum := hex.EncodeToString(doc.Checksum)
	if existing.Checksum == checksum && existing.SourcePath == doc.FilePath && existing.DeletedAt == nil {
		acc.skip(existing.ID)
		return nil
	}
	if !params.updateExisting {
		acc.skip(existing.ID)
		return nil
	}
	if params.DryRun {
		acc.updated(existing.ID)
		return nil
	}

	if existing.DeletedAt != nil {
		if _, err := i.notes.Restore(ctx, existing.ID); err != nil {
			return fmt.Errorf("markdown importer: restore %s: %w", slug, err)
		}
	}

	updated, err := i.notes.Update(ctx, i.buildUpdateRequest(doc, slug, existing, params))
	if err != nil {
		return fmt.Errorf("markdown importer: update %s: %w", slug, err)
	}

	hadWindows := existing.PublishAt != nil || existing.UnpublishAt != nil
	if err := i.applySchedule(ctx, updated.ID, doc, hadWindows); err != nil {
		return err
	}

	acc.updated(updated.ID)
	i.logger.Debug("note.reimported", "note_id", updated.ID, "slug", updated.Slug, "path", doc.FilePath)
	return nil
}

func (i *Importer) buildCreateRequest(doc *interfaces.Document, slug string, params applyParams) note.CreateNoteRequest {
	fm := doc.FrontMatter
	return note.CreateNoteRequest{
		Slug:        slug,
		Category:    doc.Category,
		Title:       noteTitle(doc, slug),
		Summary:     optionalString(firstNonEmpty(fm.Summary, doc.Excerpt)),
		SourcePath:  doc.FilePath,
		Checksum:    hex.EncodeToString(doc.Checksum),
		Status:      selectStatus(doc, params.StatusOverride),
		Source:      optionalString(fm.Source),
		Tags:        fm.Tags,
		Metadata:    documentMetadata(doc),
		WordCount:   doc.WordCount,
		PublishAt:   fm.PublishAt,
		UnpublishAt: fm.UnpublishAt,
		Links:       ExtractLinks(doc, i.parser),
	}
}

func (i *Importer) buildUpdateRequest(doc *interfaces.Document, slug string, existing *note.Note, params applyParams) note.UpdateNoteRequest {
	fm := doc.FrontMatter

	// The file is canonical: absent front matter fields clear stored values
	// instead of leaving them behind.
	tags := fm.Tags
	if tags == nil {
		tags = []string{}
	}
	links := ExtractLinks(doc, i.parser)
	if links == nil {
		links = []note.LinkInput{}
	}

	req := note.UpdateNoteRequest{
		ID:         existing.ID,
		Slug:       stringPtr(slug),
		Category:   stringPtr(doc.Category),
		Title:      stringPtr(noteTitle(doc, slug)),
		Summary:    optionalString(firstNonEmpty(fm.Summary, doc.Excerpt)),
		SourcePath: stringPtr(doc.FilePath),
		Checksum:   stringPtr(hex.EncodeToString(doc.Checksum)),
		Source:     optionalString(fm.Source),
		Tags:       tags,
		Metadata:   documentMetadata(doc),
		WordCount:  intPtr(doc.WordCount),
		Links:      links,
	}

	if fm.PublishAt != nil || fm.UnpublishAt != nil {
		req.PublishAt = fm.PublishAt
		req.UnpublishAt = fm.UnpublishAt
	} else if existing.PublishAt != nil || existing.UnpublishAt != nil {
		req.ClearSchedule = true
	}

	target := domain.ParseStatus(selectStatus(doc, params.StatusOverride))
	current := domain.ParseStatus(existing.Status)
	if target != current {
		if domain.CanTransition(current, target) {
			req.Status = stringPtr(string(target))
		} else {
			i.logger.Debug("note.status_transition_skipped", "note_id", existing.ID, "from", string(current), "to", string(target))
		}
	}

	return req
}

// applySchedule mirrors the front matter windows into scheduler jobs. With
// scheduling disabled the windows are already stored on the row and effective
// status resolves them without jobs.
func (i *Importer) applySchedule(ctx context.Context, id uuid.UUID, doc *interfaces.Document, hadWindows bool) error {
	fm := doc.FrontMatter
	hasWindows := fm.PublishAt != nil || fm.UnpublishAt != nil
	if !hasWindows && !hadWindows {
		return nil
	}

	_, err := i.notes.Schedule(ctx, note.ScheduleNoteRequest{
		ID:          id,
		PublishAt:   fm.PublishAt,
		UnpublishAt: fm.UnpublishAt,
	})
	if err != nil {
		if errors.Is(err, note.ErrSchedulingDisabled) {
			return nil
		}
		return fmt.Errorf("markdown importer: schedule %s: %w", id, err)
	}
	return nil
}

func (i *Importer) deleteOrphaned(ctx context.Context, knownPaths map[string]struct{}, opts interfaces.SyncOptions, acc *syncAccumulator) {
	records, err := i.notes.List(ctx)
	if err != nil {
		acc.addError(fmt.Errorf("markdown importer: list notes: %w", err))
		return
	}

	scope := strings.Trim(path.Clean(strings.TrimSpace(opts.Scope)), "/")
	if scope == "." {
		scope = ""
	}

	for _, record := range records {
		if _, ok := knownPaths[record.SourcePath]; ok {
			continue
		}
		if !inScope(record.SourcePath, scope) {
			continue
		}
		if opts.DryRun {
			acc.deleted++
			continue
		}
		if err := i.notes.Delete(ctx, note.DeleteNoteRequest{ID: record.ID}); err != nil {
			acc.addError(fmt.Errorf("markdown importer: delete %s: %w", record.Slug, err))
			continue
		}
		acc.deleted++
		i.logger.Info("note.orphaned", "note_id", record.ID, "slug", record.Slug, "path", record.SourcePath)
	}
}

func inScope(sourcePath, scope string) bool {
	if scope == "" {
		return true
	}
	return sourcePath == scope || strings.HasPrefix(sourcePath, scope+"/")
}

// DeriveSlug resolves the slug a document imports under: the front matter
// slug when present, otherwise the file name stem, normalized either way.
func DeriveSlug(doc *interfaces.Document) (string, error) {
	if fmSlug := strings.TrimSpace(doc.FrontMatter.Slug); fmSlug != "" {
		normalized, err := note.NormalizeSlug(fmSlug)
		if err != nil || normalized == "" {
			return "", fmt.Errorf("%w: %q", ErrSlugUnresolvable, fmSlug)
		}
		return normalized, nil
	}

	stem := strings.TrimSuffix(path.Base(doc.FilePath), path.Ext(doc.FilePath))
	normalized, err := note.NormalizeSlug(stem)
	if err != nil || normalized == "" {
		return "", fmt.Errorf("%w: %q", ErrSlugUnresolvable, doc.FilePath)
	}
	return normalized, nil
}

func noteTitle(doc *interfaces.Document, slug string) string {
	if title := strings.TrimSpace(doc.FrontMatter.Title); title != "" {
		return title
	}
	if heading := firstHeading(doc.Body); heading != "" {
		return heading
	}
	return fallbackTitle(slug)
}

func firstHeading(body []byte) string {
	inFence := false
	for _, line := range strings.Split(string(body), "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "```") || strings.HasPrefix(trimmed, "~~~") {
			inFence = !inFence
			continue
		}
		if inFence {
			continue
		}
		if strings.HasPrefix(trimmed, "# ") {
			return strings.TrimSpace(trimmed[2:])
		}
	}
	return ""
}

func fallbackTitle(slug string) string {
	if slug == "" {
		return "Untitled"
	}
	words := strings.FieldsFunc(slug, func(r rune) bool {
		return r == '-' || r == '_'
	})
	for idx, word := range words {
		if word == "" {
			continue
		}
		words[idx] = strings.ToUpper(word[:1]) + word[1:]
	}
	return strings.Join(words, " ")
}

// selectStatus resolves the stored status for an imported note. Explicit
// front matter wins; loam-style draft flags and empty bodies hold a note
// back; everything else publishes on sync.
func selectStatus(doc *interfaces.Document, override string) string {
	if status := strings.TrimSpace(override); status != "" {
		return status
	}
	if status := strings.TrimSpace(doc.FrontMatter.Status); status != "" {
		return status
	}
	if doc.FrontMatter.Draft {
		return string(domain.StatusDraft)
	}
	if len(bytes.TrimSpace(doc.Body)) == 0 {
		return string(domain.StatusDraft)
	}
	return string(domain.StatusPublished)
}

func documentMetadata(doc *interfaces.Document) map[string]any {
	return map[string]any{
		"source":       "markdown",
		"path":         doc.FilePath,
		"checksum":     hex.EncodeToString(doc.Checksum),
		"modified":     doc.LastModified,
		"front_matter": doc.FrontMatter.Raw,
	}
}

func pathSet(docs []*interfaces.Document) map[string]struct{} {
	set := make(map[string]struct{}, len(docs))
	for _, doc := range docs {
		if doc == nil {
			continue
		}
		set[doc.FilePath] = struct{}{}
	}
	return set
}

func sortDocuments(docs []*interfaces.Document) []*interfaces.Document {
	sorted := append([]*interfaces.Document(nil), docs...)
	slices.SortFunc(sorted, func(a, b *interfaces.Document) int {
		if a == nil || b == nil {
			return 0
		}
		return strings.Compare(a.FilePath, b.FilePath)
	})
	return sorted
}

func wrapDocError(doc *interfaces.Document, err error) error {
	if doc == nil || err == nil {
		return err
	}
	return fmt.Errorf("%s: %w", doc.FilePath, err)
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			return trimmed
		}
	}
	return ""
}

func optionalString(value string) *string {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	return &value
}

func stringPtr(value string) *string {
	return &value
}

func intPtr(value int) *int {
	return &value
}

type importAccumulator struct {
	createdIDs []uuid.UUID
	updatedIDs []uuid.UUID
	skippedIDs []uuid.UUID
	errors     []error
}

func newImportAccumulator() *importAccumulator {
	return &importAccumulator{
		createdIDs: []uuid.UUID{},
		updatedIDs: []uuid.UUID{},
		skippedIDs: []uuid.UUID{},
		errors:     []error{},
	}
}

func (a *importAccumulator) created(id uuid.UUID) {
	if id != uuid.Nil {
		a.createdIDs = append(a.createdIDs, id)
	}
}

func (a *importAccumulator) updated(id uuid.UUID) {
	if id != uuid.Nil {
		a.updatedIDs = append(a.updatedIDs, id)
	}
}

func (a *importAccumulator) skip(id uuid.UUID) {
	if id != uuid.Nil {
		a.skippedIDs = append(a.skippedIDs, id)
	}
}

func (a *importAccumulator) addError(err error) {
	if err != nil {
		a.errors = append(a.errors, err)
	}
}

func (a *importAccumulator) result() *interfaces.ImportResult {
	return &interfaces.ImportResult{
		CreatedNoteIDs: a.createdIDs,
		UpdatedNoteIDs: a.updatedIDs,
		SkippedNoteIDs: a.skippedIDs,
		Errors:         a.errors,
	}
}

type syncAccumulator struct {
	created int
	updated int
	deleted int
	skipped int
	errors  []error
}

func newSyncAccumulator() *syncAccumulator {
	return &syncAccumulator{
		errors: []error{},
	}
}

func (s *syncAccumulator) merge(res *interfaces.ImportResult) {
	if res == nil {
		return
	}
	s.created += len(res.CreatedNoteIDs)
	s.updated += len(res.UpdatedNoteIDs)
	s.skipped += len(res.SkippedNoteIDs)
	s.errors = append(s.errors, res.Errors...)
}

func (s *syncAccumulator) addError(err error) {
	if err != nil {
		s.errors = append(s.errors, err)
	}
}

func (s *syncAccumulator) result() *interfaces.SyncResult {
	return &interfaces.SyncResult{
		Created: s.created,
		Updated: s.updated,
		Deleted: s.deleted,
		Skipped: s.skipped,
		Errors:  s.errors,
	}
}

func firstError(errs []error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
