package markdown

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goliatone/go-til/pkg/interfaces"
)

func TestServiceLoad(t *testing.T) {
	svc := newTestService(t)

	doc, err := svc.Load(context.Background(), "go/channels-select.md", interfaces.LoadOptions{})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if doc.Category != "go" {
		t.Fatalf("expected category go, got %s", doc.Category)
	}
	if doc.FrontMatter.Title != "Channel Select Fairness" {
		t.Fatalf("unexpected title %q", doc.FrontMatter.Title)
	}
	if len(doc.BodyHTML) == 0 {
		t.Fatalf("expected BodyHTML to be populated")
	}
	if len(doc.Checksum) == 0 {
		t.Fatalf("expected checksum to be populated")
	}
}

func TestServiceLoadDirectory(t *testing.T) {
	svc := newTestService(t)

	docs, err := svc.LoadDirectory(context.Background(), ".", interfaces.LoadOptions{})
	if err != nil {
		t.Fatalf("LoadDirectory: %v", err)
	}

	if len(docs) != 4 {
		paths := make([]string, 0, len(docs))
		for _, doc := range docs {
			paths = append(paths, doc.FilePath)
		}
		t.Fatalf("expected 4 documents, got %d: %v", len(docs), paths)
	}

	categories := map[string]int{}
	for _, doc := range docs {
		categories[doc.Category]++
		if filepath.Ext(doc.FilePath) != ".md" {
			t.Fatalf("expected markdown file, got %s", doc.FilePath)
		}
		if doc.FilePath == "README.md" {
			t.Fatalf("expected README.md to be ignored")
		}
		if len(doc.Checksum) == 0 {
			t.Fatalf("expected checksum set for %s", doc.FilePath)
		}
	}

	if categories["go"] != 2 || categories["paas"] != 1 || categories[""] != 1 {
		t.Fatalf("unexpected category distribution: %#v", categories)
	}
}

func TestServiceLoadDirectory_IncludeOverride(t *testing.T) {
	svc := newTestService(t)

	docs, err := svc.LoadDirectory(context.Background(), ".", interfaces.LoadOptions{
		Include: []string{"go/**"},
	})
	if err != nil {
		t.Fatalf("LoadDirectory override: %v", err)
	}

	if len(docs) != 2 {
		t.Fatalf("expected 2 documents, got %d", len(docs))
	}
	for _, doc := range docs {
		if doc.Category != "go" {
			t.Fatalf("expected go category only, got %s for %s", doc.Category, doc.FilePath)
		}
	}
}

func TestServiceLoadSubdirectory(t *testing.T) {
	svc := newTestService(t)

	docs, err := svc.LoadDirectory(context.Background(), "paas", interfaces.LoadOptions{})
	if err != nil {
		t.Fatalf("LoadDirectory: %v", err)
	}

	if len(docs) != 1 {
		t.Fatalf("expected 1 document, got %d", len(docs))
	}
	if docs[0].FilePath != "paas/dokploy-port-mapping.md" {
		t.Fatalf("expected paas/dokploy-port-mapping.md, got %s", docs[0].FilePath)
	}
}

func TestServiceRender(t *testing.T) {
	svc := newTestService(t)

	html, err := svc.Render(context.Background(), []byte("- [ ] try it\n- [x] done\n"), interfaces.ParseOptions{})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}

	if !strings.Contains(string(html), "checkbox") {
		t.Fatalf("expected task list rendering, got %q", string(html))
	}
}

func newTestService(tb testing.TB, opts ...ServiceOption) *Service {
	tb.Helper()

	svc, err := NewService(Config{
		BasePath: filepath.Join("testdata", "log"),
	}, nil, opts...)
	if err != nil {
		tb.Fatalf("NewService: %v", err)
	}
	return svc
}
