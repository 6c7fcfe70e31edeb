package readmecmd

import (
	"context"
	"errors"
	"testing"

	"github.com/goliatone/go-til/internal/commands"
	"github.com/goliatone/go-til/internal/commands/fixtures"
	"github.com/goliatone/go-til/internal/index"
	"github.com/goliatone/go-til/internal/logging"
)

type writeCall struct {
	file string
	opts index.ReadmeOptions
}

type stubIndexService struct {
	writeCalls    []writeCall
	checkCalls    []writeCall
	categoryCalls []string

	wrote         bool
	stale         bool
	categoryPages int
	err           error
}

var _ Service = (*stubIndexService)(nil)

func (s *stubIndexService) WriteReadme(ctx context.Context, file string, opts index.ReadmeOptions) (bool, error) {
	s.writeCalls = append(s.writeCalls, writeCall{file: file, opts: opts})
	return s.wrote, s.err
}

func (s *stubIndexService) CheckReadme(ctx context.Context, file string, opts index.ReadmeOptions) (bool, error) {
	s.checkCalls = append(s.checkCalls, writeCall{file: file, opts: opts})
	return s.stale, s.err
}

func (s *stubIndexService) WriteCategoryPages(ctx context.Context, dir string) (int, error) {
	s.categoryCalls = append(s.categoryCalls, dir)
	return s.categoryPages, s.err
}

func TestRefreshReadmeHandlerWrites(t *testing.T) {
	service := &stubIndexService{wrote: true, categoryPages: 2}
	handler := NewRefreshReadmeHandler(service, logging.NoOp(), FeatureGates{})

	var envelope *ResultEnvelope
	cmd := RefreshReadmeCommand{
		File:          "README.md",
		Title:         "Today I Learned",
		IncludeDrafts: true,
		LinkPrefix:    "notes/",
		CategoryPages: true,
		NotesDir:      "notes",
		ResultCallback: func(e ResultEnvelope) {
			envelope = &e
		},
	}

	if err := handler.Execute(context.Background(), cmd); err != nil {
		t.Fatalf("execute refresh: %v", err)
	}

	if len(service.writeCalls) != 1 {
		t.Fatalf("expected write call, got %d", len(service.writeCalls))
	}
	call := service.writeCalls[0]
	if call.file != "README.md" {
		t.Fatalf("expected README.md, got %q", call.file)
	}
	if call.opts.Title != "Today I Learned" || !call.opts.IncludeDrafts || call.opts.LinkPrefix != "notes/" {
		t.Fatalf("expected readme options forwarded, got %+v", call.opts)
	}
	if len(service.categoryCalls) != 1 || service.categoryCalls[0] != "notes" {
		t.Fatalf("expected category pages refreshed, got %v", service.categoryCalls)
	}

	if envelope == nil {
		t.Fatal("expected result callback invoked")
	}
	if !envelope.Wrote {
		t.Fatal("expected wrote flag in envelope")
	}
	if envelope.CategoryPages != 2 {
		t.Fatalf("expected category page count 2, got %d", envelope.CategoryPages)
	}
}

func TestRefreshReadmeHandlerCheckMode(t *testing.T) {
	service := &stubIndexService{stale: true}
	handler := NewRefreshReadmeHandler(service, logging.NoOp(), FeatureGates{})

	var envelope *ResultEnvelope
	err := handler.Execute(context.Background(), RefreshReadmeCommand{
		File:  "README.md",
		Check: true,
		ResultCallback: func(e ResultEnvelope) {
			envelope = &e
		},
	})
	if err != nil {
		t.Fatalf("execute check: %v", err)
	}

	if len(service.checkCalls) != 1 {
		t.Fatalf("expected check call, got %d", len(service.checkCalls))
	}
	if len(service.writeCalls) != 0 {
		t.Fatalf("expected no writes in check mode, got %d", len(service.writeCalls))
	}
	if envelope == nil || !envelope.Stale {
		t.Fatalf("expected stale flag in envelope, got %#v", envelope)
	}
	if envelope.Metadata["operation"] != "check" {
		t.Fatalf("expected check operation metadata, got %v", envelope.Metadata)
	}
}

func TestRefreshReadmeHandlerFeatureDisabled(t *testing.T) {
	service := &stubIndexService{}
	handler := NewRefreshReadmeHandler(service, logging.NoOp(), FeatureGates{
		ReadmeEnabled: func() bool { return false },
	})

	err := handler.Execute(context.Background(), RefreshReadmeCommand{File: "README.md"})
	if !errors.Is(err, ErrReadmeFeatureDisabled) {
		t.Fatalf("expected feature disabled error, got %v", err)
	}
	if len(service.writeCalls) != 0 {
		t.Fatalf("expected no write calls, got %d", len(service.writeCalls))
	}
}

func TestRefreshReadmeHandlerWriteErrorStillDeliversEnvelope(t *testing.T) {
	writeErr := errors.New("disk full")
	service := &stubIndexService{err: writeErr}
	handler := NewRefreshReadmeHandler(service, logging.NoOp(), FeatureGates{})

	delivered := false
	err := handler.Execute(context.Background(), RefreshReadmeCommand{
		File: "README.md",
		ResultCallback: func(e ResultEnvelope) {
			delivered = true
		},
	})
	if !errors.Is(err, writeErr) {
		t.Fatalf("expected write error surfaced, got %v", err)
	}
	if !delivered {
		t.Fatal("expected callback invoked before the error returned")
	}
}

func TestRefreshReadmeCommandValidate(t *testing.T) {
	if err := (RefreshReadmeCommand{}).Validate(); err == nil {
		t.Fatal("expected error when file missing")
	}
	if err := (RefreshReadmeCommand{File: "README.md", CategoryPages: true}).Validate(); err == nil {
		t.Fatal("expected error when category pages requested without notes dir")
	}
	if err := (RefreshReadmeCommand{File: "README.md", CategoryPages: true, NotesDir: "notes"}).Validate(); err != nil {
		t.Fatalf("unexpected error with notes dir provided: %v", err)
	}
	if err := (RefreshReadmeCommand{File: "README.md"}).Validate(); err != nil {
		t.Fatalf("unexpected error with file provided: %v", err)
	}
}

func TestRegisterReadmeCommands(t *testing.T) {
	reg := fixtures.NewRecordingRegistry()
	service := &stubIndexService{}

	applied := false
	set, err := RegisterReadmeCommands(reg, service, nil, FeatureGates{},
		WithRefreshHandlerOptions(func(h *commands.Handler[RefreshReadmeCommand]) {
			applied = true
		}),
	)
	if err != nil {
		t.Fatalf("register readme commands: %v", err)
	}
	if set == nil || set.Refresh == nil {
		t.Fatalf("expected refresh handler, got %#v", set)
	}
	if !applied {
		t.Fatal("expected refresh handler options applied")
	}
	if len(reg.Handlers) != 1 {
		t.Fatalf("expected one handler registered, got %d", len(reg.Handlers))
	}
}

func TestRegisterReadmeCommandsNilServiceError(t *testing.T) {
	if _, err := RegisterReadmeCommands(nil, nil, nil, FeatureGates{}); err == nil {
		t.Fatal("expected error when service nil")
	}
}
