package console_test

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-til/internal/logging"
	"github.com/goliatone/go-til/internal/logging/console"
)

func TestConsoleLogger_WritesStructuredEntry(t *testing.T) {
	var buf bytes.Buffer
	now := time.Date(2026, 2, 11, 9, 41, 3, 120455000, time.UTC)

	provider := console.NewProvider(console.Options{
		Writer:   &buf,
		TimeFunc: func() time.Time { return now },
		MinLevel: "debug",
	})

	logger := provider.GetLogger("til.notes")
	logger = logging.WithFields(logger, map[string]any{"module": "til.notes"})
	ctx := logging.ContextWithFields(context.Background(), map[string]any{
		"correlation_id": "sync-0042",
	})
	logger = logger.WithContext(ctx)

	noteID := uuid.MustParse("8a51a9b1-2d30-4b2c-8ecd-2c0b87dfa999")
	logger.Info("note.indexed",
		"note_id", noteID,
		"publish_at", time.Date(2026, 2, 12, 8, 0, 0, 0, time.UTC),
	)

	got := strings.TrimSpace(buf.String())
	want := "2026-02-11T09:41:03.120455Z INFO note.indexed correlation_id=sync-0042 logger=til.notes module=til.notes note_id=8a51a9b1-2d30-4b2c-8ecd-2c0b87dfa999 publish_at=2026-02-12T08:00:00Z"
	if got != want {
		t.Fatalf("unexpected log entry\nwant: %s\ngot:  %s", want, got)
	}
}

func TestConsoleLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	provider := console.NewProvider(console.Options{
		Writer:   &buf,
		TimeFunc: time.Now,
		MinLevel: "info",
	})

	logger := provider.GetLogger("til.test")
	logger.Debug("ignored.debug", "foo", "bar")
	logger.Info("included.info", "foo", "bar")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected single log line, got %d", len(lines))
	}
	if !strings.Contains(lines[0], "included.info") {
		t.Fatalf("expected info log to be written, got %s", lines[0])
	}
	if strings.Contains(lines[0], "ignored.debug") {
		t.Fatalf("unexpected debug log present: %s", lines[0])
	}
}

func TestParseLevelFallsBackToDebug(t *testing.T) {
	cases := map[string]console.Level{
		"":        console.LevelDebug,
		"trace":   console.LevelTrace,
		"warning": console.LevelWarn,
		"ERROR":   console.LevelError,
		"verbose": console.LevelDebug,
	}
	for input, want := range cases {
		if got := console.ParseLevel(input); got != want {
			t.Fatalf("ParseLevel(%q) = %v, want %v", input, got, want)
		}
	}
}
