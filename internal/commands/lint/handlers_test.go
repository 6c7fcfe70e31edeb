package lintcmd

import (
	"context"
	"errors"
	"testing"

	"github.com/goliatone/go-til/internal/commands"
	"github.com/goliatone/go-til/internal/commands/fixtures"
	"github.com/goliatone/go-til/internal/logging"
	"github.com/goliatone/go-til/pkg/interfaces"
)

type stubLinter struct {
	treeCalls []string
	fileCalls []string

	report *interfaces.Report
	err    error
}

var _ interfaces.Linter = (*stubLinter)(nil)

func (s *stubLinter) CheckTree(ctx context.Context, dir string) (*interfaces.Report, error) {
	s.treeCalls = append(s.treeCalls, dir)
	if s.err != nil {
		return nil, s.err
	}
	return s.report, nil
}

func (s *stubLinter) CheckFile(ctx context.Context, path string) (*interfaces.Report, error) {
	s.fileCalls = append(s.fileCalls, path)
	if s.err != nil {
		return nil, s.err
	}
	return s.report, nil
}

func (s *stubLinter) Rules() []interfaces.RuleInfo { return nil }

func TestCheckTreeHandlerInvokesLinter(t *testing.T) {
	linter := &stubLinter{
		report: &interfaces.Report{
			Checked: 4,
			Findings: []interfaces.Finding{
				{Rule: "fence-language", Severity: interfaces.SeverityError, Path: "go/sync-pool.md", Line: 12},
				{Rule: "link-target", Severity: interfaces.SeverityWarning, Path: "go/sync-pool.md", Line: 20},
			},
		},
	}
	handler := NewCheckTreeHandler(linter, logging.NoOp(), FeatureGates{})

	var envelope *ResultEnvelope
	err := handler.Execute(context.Background(), CheckTreeCommand{
		Directory: "notes",
		ResultCallback: func(e ResultEnvelope) {
			envelope = &e
		},
	})
	if err != nil {
		t.Fatalf("execute check tree: %v", err)
	}

	if len(linter.treeCalls) != 1 || linter.treeCalls[0] != "notes" {
		t.Fatalf("expected tree check on notes, got %v", linter.treeCalls)
	}
	if envelope == nil {
		t.Fatal("expected result callback invoked")
	}
	if envelope.Report != linter.report {
		t.Fatalf("expected report in envelope, got %#v", envelope.Report)
	}
	if envelope.Metadata["operation"] != "check_tree" {
		t.Fatalf("expected operation metadata, got %v", envelope.Metadata)
	}
	if !envelope.Report.Failed() {
		t.Fatal("expected error finding to fail the report")
	}
}

func TestCheckTreeHandlerFeatureDisabled(t *testing.T) {
	linter := &stubLinter{}
	handler := NewCheckTreeHandler(linter, logging.NoOp(), FeatureGates{
		LintEnabled: func() bool { return false },
	})

	err := handler.Execute(context.Background(), CheckTreeCommand{Directory: "notes"})
	if !errors.Is(err, ErrLintFeatureDisabled) {
		t.Fatalf("expected feature disabled error, got %v", err)
	}
	if len(linter.treeCalls) != 0 {
		t.Fatalf("expected no tree calls, got %d", len(linter.treeCalls))
	}
}

func TestCheckFileHandlerInvokesLinter(t *testing.T) {
	linter := &stubLinter{
		report: &interfaces.Report{Checked: 1},
	}
	handler := NewCheckFileHandler(linter, logging.NoOp(), FeatureGates{})

	var envelope *ResultEnvelope
	err := handler.Execute(context.Background(), CheckFileCommand{
		Path: "go/channels-select.md",
		ResultCallback: func(e ResultEnvelope) {
			envelope = &e
		},
	})
	if err != nil {
		t.Fatalf("execute check file: %v", err)
	}

	if len(linter.fileCalls) != 1 || linter.fileCalls[0] != "go/channels-select.md" {
		t.Fatalf("expected file check, got %v", linter.fileCalls)
	}
	if envelope == nil || envelope.Report != linter.report {
		t.Fatal("expected report delivered through the callback")
	}
	if envelope.Metadata["path"] != "go/channels-select.md" {
		t.Fatalf("expected path metadata, got %v", envelope.Metadata)
	}
}

func TestCheckFileHandlerErrorStillDeliversEnvelope(t *testing.T) {
	readErr := errors.New("read failed")
	linter := &stubLinter{err: readErr}
	handler := NewCheckFileHandler(linter, logging.NoOp(), FeatureGates{})

	delivered := false
	err := handler.Execute(context.Background(), CheckFileCommand{
		Path: "go/channels-select.md",
		ResultCallback: func(e ResultEnvelope) {
			delivered = true
		},
	})
	if !errors.Is(err, readErr) {
		t.Fatalf("expected linter error surfaced, got %v", err)
	}
	if !delivered {
		t.Fatal("expected callback invoked before the error returned")
	}
}

func TestCheckCommandsValidate(t *testing.T) {
	if err := (CheckTreeCommand{}).Validate(); err == nil {
		t.Fatal("expected error when directory missing")
	}
	if err := (CheckTreeCommand{Directory: "notes"}).Validate(); err != nil {
		t.Fatalf("unexpected error when directory provided: %v", err)
	}
	if err := (CheckFileCommand{Path: " "}).Validate(); err == nil {
		t.Fatal("expected error when path blank")
	}
	if err := (CheckFileCommand{Path: "go/channels-select.md"}).Validate(); err != nil {
		t.Fatalf("unexpected error when path provided: %v", err)
	}
}

func TestRegisterLintCommands(t *testing.T) {
	reg := fixtures.NewRecordingRegistry()
	linter := &stubLinter{}

	applied := false
	set, err := RegisterLintCommands(reg, linter, nil, FeatureGates{},
		WithTreeHandlerOptions(func(h *commands.Handler[CheckTreeCommand]) {
			applied = true
		}),
	)
	if err != nil {
		t.Fatalf("register lint commands: %v", err)
	}
	if set == nil || set.Tree == nil || set.File == nil {
		t.Fatalf("expected tree and file handlers, got %#v", set)
	}
	if !applied {
		t.Fatal("expected tree handler options applied")
	}
	if len(reg.Handlers) != 2 {
		t.Fatalf("expected two handlers registered, got %d", len(reg.Handlers))
	}
}

func TestRegisterLintCommandsNilLinterError(t *testing.T) {
	if _, err := RegisterLintCommands(nil, nil, nil, FeatureGates{}); err == nil {
		t.Fatal("expected error when linter nil")
	}
}
