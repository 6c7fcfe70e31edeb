package notes_test

import (
	"context"
	"testing"
	"time"

	"github.com/goliatone/go-til/internal/notes"
)

func seedListFixture(t *testing.T) (notes.Service, context.Context) {
	t.Helper()
	ctx := context.Background()
	now := time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)
	svc, _, _ := newNoteService(t, notes.WithClock(func() time.Time {
		now = now.Add(time.Minute)
		return now
	}))

	seed := []notes.CreateNoteRequest{
		{Slug: "zebra", Category: "go", Title: "Zebra", SourcePath: "notes/go/zebra.md", Checksum: "a", WordCount: 10,
			Links: []notes.LinkInput{{Kind: "wiki", TargetSlug: "apple", Position: 0}}},
		{Slug: "apple", Category: "go", Title: "Apple", SourcePath: "notes/go/apple.md", Checksum: "b", WordCount: 30},
		{Slug: "mango", Category: "sql", Title: "Mango", SourcePath: "notes/sql/mango.md", Checksum: "c", WordCount: 20},
	}
	for _, req := range seed {
		if _, err := svc.Create(ctx, req); err != nil {
			t.Fatalf("create %s: %v", req.Slug, err)
		}
	}
	return svc, ctx
}

func TestListOrderBySlug(t *testing.T) {
	svc, ctx := seedListFixture(t)

	listed, err := svc.List(ctx, notes.OrderBy("slug"))
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(listed) != 3 || listed[0].Slug != "apple" || listed[2].Slug != "zebra" {
		t.Fatalf("expected alphabetical order, got %v", slugsOf(listed))
	}
}

func TestListOrderByWordCountDescending(t *testing.T) {
	svc, ctx := seedListFixture(t)

	listed, err := svc.List(ctx, notes.OrderBy("-word_count"))
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if listed[0].Slug != "apple" || listed[1].Slug != "mango" || listed[2].Slug != "zebra" {
		t.Fatalf("expected word count descending, got %v", slugsOf(listed))
	}
}

func TestListUnknownOrderFieldFallsBackToCreatedAt(t *testing.T) {
	svc, ctx := seedListFixture(t)

	listed, err := svc.List(ctx, notes.OrderBy("drop table notes"))
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if listed[0].Slug != "zebra" || listed[2].Slug != "mango" {
		t.Fatalf("expected creation order fallback, got %v", slugsOf(listed))
	}
}

func TestListAcceptsRawTokens(t *testing.T) {
	svc, ctx := seedListFixture(t)

	listed, err := svc.List(ctx, "note:list:category:sql")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(listed) != 1 || listed[0].Slug != "mango" {
		t.Fatalf("expected raw category token to filter, got %v", slugsOf(listed))
	}
}

func TestListIgnoresEmptyOptions(t *testing.T) {
	svc, ctx := seedListFixture(t)

	listed, err := svc.List(ctx, notes.InCategory("  "), notes.WithLimit(0), "")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(listed) != 3 {
		t.Fatalf("expected blank options ignored, got %d records", len(listed))
	}
}

func TestListWithLinksPreloads(t *testing.T) {
	svc, ctx := seedListFixture(t)

	listed, err := svc.List(ctx, notes.OrderBy("slug"), notes.WithLinks())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	zebra := listed[2]
	if zebra.Slug != "zebra" {
		t.Fatalf("expected zebra last, got %s", zebra.Slug)
	}
	if len(zebra.Links) != 1 || zebra.Links[0].TargetSlug == nil || *zebra.Links[0].TargetSlug != "apple" {
		t.Fatalf("expected preloaded wiki link, got %+v", zebra.Links)
	}

	bare, err := svc.List(ctx, notes.OrderBy("slug"))
	if err != nil {
		t.Fatalf("list bare: %v", err)
	}
	if len(bare[2].Links) != 0 {
		t.Fatalf("expected links omitted by default, got %d", len(bare[2].Links))
	}
}
