package jobs_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/goliatone/go-til/internal/domain"
	"github.com/goliatone/go-til/internal/jobs"
	"github.com/goliatone/go-til/internal/notes"
	tilscheduler "github.com/goliatone/go-til/internal/scheduler"
	"github.com/goliatone/go-til/pkg/interfaces"
	"github.com/google/uuid"
)

func TestWorkerProcessNotePublish(t *testing.T) {
	ctx := context.Background()
	scheduler := tilscheduler.NewInMemory()
	noteRepo := notes.NewMemoryNoteRepository()
	audit := jobs.NewInMemoryAuditRecorder()
	now := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	worker := jobs.NewWorker(scheduler, noteRepo, jobs.WithAuditRecorder(audit), jobs.WithClock(func() time.Time { return now }))

	noteID := uuid.New()
	record := &notes.Note{
		ID:         noteID,
		Slug:       "go-context-cancellation",
		Category:   "go",
		Title:      "Context cancellation",
		SourcePath: "notes/go/context-cancellation.md",
		Checksum:   "abc123",
		Status:     string(domain.StatusScheduled),
		PublishAt:  ptrTime(now.Add(-time.Minute)),
		UpdatedAt:  now.Add(-time.Hour),
	}
	if _, err := noteRepo.Create(ctx, record); err != nil {
		t.Fatalf("create note: %v", err)
	}

	enqueued, err := scheduler.Enqueue(ctx, interfaces.JobSpec{
		Key:     tilscheduler.NotePublishJobKey(noteID),
		Type:    tilscheduler.JobTypeNotePublish,
		RunAt:   now.Add(-time.Minute),
		Payload: map[string]any{"note_id": noteID.String()},
	})
	if err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	if err := worker.Process(ctx); err != nil {
		t.Fatalf("process: %v", err)
	}

	updated, err := noteRepo.GetByID(ctx, noteID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if updated.Status != string(domain.StatusPublished) {
		t.Fatalf("expected published status, got %s", updated.Status)
	}
	if updated.PublishAt != nil {
		t.Fatalf("expected publish_at cleared")
	}
	if updated.PublishedAt == nil || !updated.PublishedAt.Equal(now.Add(-time.Minute)) {
		t.Fatalf("unexpected published_at %v", updated.PublishedAt)
	}

	auditEvents := audit.Events()
	if len(auditEvents) != 1 {
		t.Fatalf("expected 1 audit event, got %d", len(auditEvents))
	}
	if auditEvents[0].Action != "publish" || auditEvents[0].EntityType != "note" {
		t.Fatalf("unexpected audit event %+v", auditEvents[0])
	}

	stored, err := scheduler.Get(ctx, enqueued.ID)
	if err != nil {
		t.Fatalf("get job: %v", err)
	}
	if stored.Status != interfaces.JobStatusCompleted {
		t.Fatalf("expected job completed, got %s", stored.Status)
	}
}

func TestWorkerProcessNoteUnpublish(t *testing.T) {
	ctx := context.Background()
	scheduler := tilscheduler.NewInMemory()
	noteRepo := notes.NewMemoryNoteRepository()
	audit := jobs.NewInMemoryAuditRecorder()
	now := time.Date(2026, 6, 1, 8, 0, 0, 0, time.UTC)
	worker := jobs.NewWorker(scheduler, noteRepo, jobs.WithAuditRecorder(audit), jobs.WithClock(func() time.Time { return now }))

	noteID := uuid.New()
	publishedAt := now.Add(-2 * time.Hour)
	record := &notes.Note{
		ID:          noteID,
		Slug:        "sqlite-wal-mode",
		Category:    "databases",
		Title:       "SQLite WAL mode",
		SourcePath:  "notes/databases/sqlite-wal-mode.md",
		Checksum:    "def456",
		Status:      string(domain.StatusPublished),
		PublishedAt: &publishedAt,
		UnpublishAt: ptrTime(now.Add(-time.Minute)),
		UpdatedAt:   now,
	}
	if _, err := noteRepo.Create(ctx, record); err != nil {
		t.Fatalf("create note: %v", err)
	}

	if _, err := scheduler.Enqueue(ctx, interfaces.JobSpec{
		Key:     tilscheduler.NoteUnpublishJobKey(noteID),
		Type:    tilscheduler.JobTypeNoteUnpublish,
		RunAt:   now.Add(-time.Minute),
		Payload: map[string]any{"note_id": noteID.String()},
	}); err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	if err := worker.Process(ctx); err != nil {
		t.Fatalf("process: %v", err)
	}

	updated, err := noteRepo.GetByID(ctx, noteID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if updated.Status != string(domain.StatusArchived) {
		t.Fatalf("expected archived status, got %s", updated.Status)
	}
	if updated.UnpublishAt != nil {
		t.Fatalf("expected unpublish_at cleared")
	}

	if len(audit.Events()) != 1 || audit.Events()[0].Action != "unpublish" {
		t.Fatalf("expected unpublish audit event")
	}
}

func TestWorkerSkipsArchivedNote(t *testing.T) {
	ctx := context.Background()
	scheduler := tilscheduler.NewInMemory()
	noteRepo := notes.NewMemoryNoteRepository()
	audit := jobs.NewInMemoryAuditRecorder()
	now := time.Date(2026, 7, 10, 9, 0, 0, 0, time.UTC)
	worker := jobs.NewWorker(scheduler, noteRepo, jobs.WithAuditRecorder(audit), jobs.WithClock(func() time.Time { return now }))

	noteID := uuid.New()
	record := &notes.Note{
		ID:         noteID,
		Slug:       "retired-tip",
		Category:   "misc",
		Title:      "Retired tip",
		SourcePath: "notes/misc/retired-tip.md",
		Checksum:   "ghi789",
		Status:     string(domain.StatusArchived),
		UpdatedAt:  now,
	}
	if _, err := noteRepo.Create(ctx, record); err != nil {
		t.Fatalf("create note: %v", err)
	}

	if _, err := scheduler.Enqueue(ctx, interfaces.JobSpec{
		Key:     tilscheduler.NotePublishJobKey(noteID),
		Type:    tilscheduler.JobTypeNotePublish,
		RunAt:   now.Add(-time.Minute),
		Payload: map[string]any{"note_id": noteID.String()},
	}); err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	if err := worker.Process(ctx); err != nil {
		t.Fatalf("process: %v", err)
	}

	updated, err := noteRepo.GetByID(ctx, noteID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if updated.Status != string(domain.StatusArchived) {
		t.Fatalf("expected note to stay archived, got %s", updated.Status)
	}
	if len(audit.Events()) != 0 {
		t.Fatalf("expected no audit events, got %d", len(audit.Events()))
	}
}

func TestWorkerPublishSurvivesAuditFailure(t *testing.T) {
	ctx := context.Background()
	scheduler := tilscheduler.NewInMemory()
	noteRepo := notes.NewMemoryNoteRepository()
	audit := jobs.NewInMemoryAuditRecorder()
	audit.Fail(errors.New("journal offline"))
	now := time.Date(2026, 8, 20, 7, 30, 0, 0, time.UTC)
	worker := jobs.NewWorker(scheduler, noteRepo, jobs.WithAuditRecorder(audit), jobs.WithClock(func() time.Time { return now }))

	noteID := uuid.New()
	record := &notes.Note{
		ID:         noteID,
		Slug:       "errgroup-limits",
		Category:   "go",
		Title:      "Errgroup limits",
		SourcePath: "notes/go/errgroup-limits.md",
		Checksum:   "mno345",
		Status:     string(domain.StatusScheduled),
		PublishAt:  ptrTime(now.Add(-time.Minute)),
		UpdatedAt:  now.Add(-time.Hour),
	}
	if _, err := noteRepo.Create(ctx, record); err != nil {
		t.Fatalf("create note: %v", err)
	}

	enqueued, err := scheduler.Enqueue(ctx, interfaces.JobSpec{
		Key:     tilscheduler.NotePublishJobKey(noteID),
		Type:    tilscheduler.JobTypeNotePublish,
		RunAt:   now.Add(-time.Minute),
		Payload: map[string]any{"note_id": noteID.String()},
	})
	if err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	if err := worker.Process(ctx); err != nil {
		t.Fatalf("process: %v", err)
	}

	updated, err := noteRepo.GetByID(ctx, noteID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if updated.Status != string(domain.StatusPublished) {
		t.Fatalf("expected published status despite journal failure, got %s", updated.Status)
	}
	stored, err := scheduler.Get(ctx, enqueued.ID)
	if err != nil {
		t.Fatalf("get job: %v", err)
	}
	if stored.Status != interfaces.JobStatusCompleted {
		t.Fatalf("expected job completed, got %s", stored.Status)
	}
	if len(audit.Events()) != 0 {
		t.Fatalf("expected no journaled events, got %d", len(audit.Events()))
	}
}

func TestWorkerMarksFailedJob(t *testing.T) {
	ctx := context.Background()
	scheduler := tilscheduler.NewInMemory()
	noteRepo := notes.NewMemoryNoteRepository()
	now := time.Date(2026, 8, 2, 12, 0, 0, 0, time.UTC)
	worker := jobs.NewWorker(scheduler, noteRepo, jobs.WithClock(func() time.Time { return now }))

	enqueued, err := scheduler.Enqueue(ctx, interfaces.JobSpec{
		Key:     "til:note:missing:publish",
		Type:    tilscheduler.JobTypeNotePublish,
		RunAt:   now.Add(-time.Minute),
		Payload: map[string]any{"note_id": uuid.NewString()},
	})
	if err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	if err := worker.Process(ctx); err != nil {
		t.Fatalf("process: %v", err)
	}

	stored, err := scheduler.Get(ctx, enqueued.ID)
	if err != nil {
		t.Fatalf("get job: %v", err)
	}
	if stored.Attempt != 1 {
		t.Fatalf("expected one failed attempt, got %d", stored.Attempt)
	}
	if stored.Status != interfaces.JobStatusPending {
		t.Fatalf("expected job pending for retry, got %s", stored.Status)
	}
	if stored.LastError == "" {
		t.Fatalf("expected last error recorded")
	}
}

func TestSchedulingCancellation(t *testing.T) {
	ctx := context.Background()
	scheduler := tilscheduler.NewInMemory()
	noteRepo := notes.NewMemoryNoteRepository()
	linkRepo := notes.NewMemoryLinkRepository()

	svc, err := notes.NewService(
		noteRepo,
		linkRepo,
		notes.WithScheduler(scheduler),
		notes.WithSchedulingEnabled(true),
	)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	record, err := svc.Create(ctx, notes.CreateNoteRequest{
		Slug:       "cancel-me",
		Category:   "go",
		Title:      "Cancel me",
		SourcePath: "notes/go/cancel-me.md",
		Checksum:   "jkl012",
	})
	if err != nil {
		t.Fatalf("create note: %v", err)
	}
	publishAt := time.Now().Add(time.Hour)
	if _, err := svc.Schedule(ctx, notes.ScheduleNoteRequest{ID: record.ID, PublishAt: &publishAt}); err != nil {
		t.Fatalf("schedule publish: %v", err)
	}
	if _, err := svc.Schedule(ctx, notes.ScheduleNoteRequest{ID: record.ID}); err != nil {
		t.Fatalf("cancel schedule: %v", err)
	}

	if _, err := scheduler.GetByKey(ctx, tilscheduler.NotePublishJobKey(record.ID)); !errors.Is(err, interfaces.ErrJobNotFound) {
		t.Fatalf("expected publish job removal, got %v", err)
	}
}

func ptrTime(value time.Time) *time.Time {
	return &value
}
