package jobs

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goliatone/go-til/internal/domain"
	"github.com/goliatone/go-til/internal/logging"
	"github.com/goliatone/go-til/internal/notes"
	tilscheduler "github.com/goliatone/go-til/internal/scheduler"
	"github.com/goliatone/go-til/pkg/interfaces"
	"github.com/google/uuid"
)

// NoteRepository is the slice of note storage the worker needs to flip
// publication state.
type NoteRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*notes.Note, error)
	Update(ctx context.Context, record *notes.Note) (*notes.Note, error)
}

// Worker drains due scheduler jobs and applies their status transitions.
// Builds run it before rendering so future-dated notes flip to published
// exactly once, even when several builds race over the same window.
type Worker struct {
	scheduler interfaces.Scheduler
	notes     NoteRepository
	audit     AuditRecorder
	logger    interfaces.Logger
	now       func() time.Time
	batchSize int
}

type Option func(*Worker)

func WithAuditRecorder(recorder AuditRecorder) Option {
	return func(w *Worker) {
		w.audit = recorder
	}
}

func WithClock(clock func() time.Time) Option {
	return func(w *Worker) {
		if clock != nil {
			w.now = clock
		}
	}
}

func WithBatchSize(size int) Option {
	return func(w *Worker) {
		if size > 0 {
			w.batchSize = size
		}
	}
}

func WithLogger(logger interfaces.Logger) Option {
	return func(w *Worker) {
		if logger != nil {
			w.logger = logger
		}
	}
}

func NewWorker(scheduler interfaces.Scheduler, notesRepo NoteRepository, opts ...Option) *Worker {
	w := &Worker{
		scheduler: scheduler,
		notes:     notesRepo,
		logger:    logging.NoOp(),
		now:       time.Now,
		batchSize: 50,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Process lists jobs due at the current instant and handles each one. A
// failing job is marked failed and does not stop the batch.
func (w *Worker) Process(ctx context.Context) error {
	if w.scheduler == nil {
		return errors.New("jobs: scheduler is nil")
	}
	deadline := w.now()
	jobs, err := w.scheduler.ListDue(ctx, deadline, w.batchSize)
	if err != nil {
		return err
	}
	for _, job := range jobs {
		if job == nil {
			continue
		}
		if err := w.handleJob(ctx, job, deadline); err != nil {
			w.logger.Warn("scheduled job failed", "job_id", job.ID, "job_type", job.Type, "error", err.Error())
			_ = w.scheduler.MarkFailed(ctx, job.ID, err)
			continue
		}
		_ = w.scheduler.MarkDone(ctx, job.ID)
	}
	return nil
}

func (w *Worker) handleJob(ctx context.Context, job *interfaces.Job, now time.Time) error {
	switch job.Type {
	case tilscheduler.JobTypeNotePublish:
		return w.processNotePublish(ctx, job, now)
	case tilscheduler.JobTypeNoteUnpublish:
		return w.processNoteUnpublish(ctx, job, now)
	default:
		return nil
	}
}

func (w *Worker) processNotePublish(ctx context.Context, job *interfaces.Job, now time.Time) error {
	if w.notes == nil {
		return errors.New("jobs: note repository is nil")
	}
	id, err := parseNoteID(job.Payload)
	if err != nil {
		return err
	}
	record, err := w.notes.GetByID(ctx, id)
	if err != nil {
		return err
	}
	// A job left over from before the note was archived must not revive it.
	if domain.Status(record.Status) == domain.StatusArchived {
		return nil
	}
	originalStatus := noteStatus(record, now)
	statusChanged := originalStatus != domain.StatusPublished
	if record.PublishAt != nil {
		record.PublishAt = nil
		statusChanged = true
	}
	if statusChanged {
		record.Status = string(domain.StatusPublished)
		publishedAt := job.RunAt
		if publishedAt.IsZero() {
			publishedAt = now
		}
		record.PublishedAt = &publishedAt
		record.UpdatedAt = now
		if _, err := w.notes.Update(ctx, record); err != nil {
			return err
		}
		w.recordAudit(ctx, AuditEvent{
			EntityType: "note",
			EntityID:   id.String(),
			Action:     "publish",
			OccurredAt: now,
			Metadata:   buildAuditMetadata(job),
		})
		w.logger.Info("note published on schedule", "note_id", id.String(), "slug", record.Slug, "job_id", job.ID)
	}
	return nil
}

func (w *Worker) processNoteUnpublish(ctx context.Context, job *interfaces.Job, now time.Time) error {
	if w.notes == nil {
		return errors.New("jobs: note repository is nil")
	}
	id, err := parseNoteID(job.Payload)
	if err != nil {
		return err
	}
	record, err := w.notes.GetByID(ctx, id)
	if err != nil {
		return err
	}
	originalStatus := noteStatus(record, now)
	statusChanged := originalStatus == domain.StatusPublished
	if record.UnpublishAt != nil {
		record.UnpublishAt = nil
		statusChanged = true
	}
	if statusChanged {
		record.Status = string(domain.StatusArchived)
		record.UpdatedAt = now
		if _, err := w.notes.Update(ctx, record); err != nil {
			return err
		}
		w.recordAudit(ctx, AuditEvent{
			EntityType: "note",
			EntityID:   id.String(),
			Action:     "unpublish",
			OccurredAt: now,
			Metadata:   buildAuditMetadata(job),
		})
		w.logger.Info("note unpublished on schedule", "note_id", id.String(), "slug", record.Slug, "job_id", job.ID)
	}
	return nil
}

func (w *Worker) recordAudit(ctx context.Context, event AuditEvent) {
	if w.audit == nil {
		return
	}
	_ = w.audit.Record(ctx, event)
}

func parseNoteID(payload map[string]any) (uuid.UUID, error) {
	if payload == nil {
		return uuid.Nil, fmt.Errorf("jobs: missing payload")
	}
	rawID, ok := payload["note_id"]
	if !ok {
		return uuid.Nil, fmt.Errorf("jobs: payload missing note_id")
	}
	idStr, ok := rawID.(string)
	if !ok {
		return uuid.Nil, fmt.Errorf("jobs: invalid note_id payload")
	}
	return uuid.Parse(idStr)
}

func buildAuditMetadata(job *interfaces.Job) map[string]any {
	return map[string]any{
		"job_id":   job.ID,
		"job_type": job.Type,
		"run_at":   job.RunAt,
		"attempt":  job.Attempt,
	}
}

// noteStatus resolves the effective status at the supplied instant. Window
// fields win over the stored status so a stale row still flips correctly.
func noteStatus(record *notes.Note, now time.Time) domain.Status {
	if record == nil {
		return domain.StatusDraft
	}
	status := domain.Status(record.Status)
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
	if status == "" {
		return domain.StatusDraft
	}
	return status
}
