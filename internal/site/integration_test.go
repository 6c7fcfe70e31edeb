package site

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// The full pipeline against the html/template renderer: note bodies rendered
// by the Markdown service flow through real templates into storage.
func TestBuildThroughHTMLTemplates(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 6, 10, 8, 30, 0, 0, time.UTC)
	fx := newBuildFixtures(t, now)

	renderer, err := NewTemplateRenderer(writeSiteTemplates(t))
	if err != nil {
		t.Fatalf("NewTemplateRenderer: %v", err)
	}

	storage := &recordingStorage{}
	svc := fx.service(renderer, storage, now)

	result, err := svc.Build(ctx, BuildOptions{})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if result.PagesBuilt != 6 {
		t.Fatalf("expected 6 pages built, got %d", result.PagesBuilt)
	}

	home := string(mustFile(t, storage, "public/index.html"))
	if !strings.Contains(home, "<title>Today I Learned</title>") {
		t.Fatalf("expected site title in home page:\n%s", home)
	}
	if !strings.Contains(home, `<a href="/go/">Go</a>`) {
		t.Fatalf("expected category navigation in home page:\n%s", home)
	}
	if !strings.Contains(home, `<a href="/go/channels-select/">Channel Select Fairness</a>`) {
		t.Fatalf("expected note listing in home page:\n%s", home)
	}

	category := string(mustFile(t, storage, "public/go/index.html"))
	if !strings.Contains(category, "<h1>Go</h1>") {
		t.Fatalf("expected category heading:\n%s", category)
	}
	if !strings.Contains(category, "Sync Pool Reuse (Jun 10, 2025)") {
		t.Fatalf("expected formatted note date:\n%s", category)
	}

	notePage := string(mustFile(t, storage, "public/go/channels-select/index.html"))
	if !strings.Contains(notePage, "<h1>Channel Select Fairness</h1>") {
		t.Fatalf("expected note title heading:\n%s", notePage)
	}
	// The Markdown body passes through safeHTML unescaped.
	if !strings.Contains(notePage, "<code>select</code>") {
		t.Fatalf("expected rendered Markdown body:\n%s", notePage)
	}
	if strings.Contains(notePage, "&lt;code&gt;") {
		t.Fatalf("expected body to bypass HTML escaping:\n%s", notePage)
	}
	if !strings.Contains(notePage, `<a href="https://til.example.com/">home</a>`) {
		t.Fatalf("expected base URL helper output:\n%s", notePage)
	}
}

func TestTemplateRendererUnknownTemplate(t *testing.T) {
	renderer, err := NewTemplateRenderer(writeSiteTemplates(t))
	if err != nil {
		t.Fatalf("NewTemplateRenderer: %v", err)
	}

	if _, err := renderer.RenderTemplate("missing.html", TemplateContext{}); err == nil {
		t.Fatal("expected unknown template error")
	} else if !strings.Contains(err.Error(), `template "missing.html" not found`) {
		t.Fatalf("unexpected error %v", err)
	}
}

func TestTemplateRendererRenderString(t *testing.T) {
	renderer, err := NewTemplateRenderer(writeSiteTemplates(t))
	if err != nil {
		t.Fatalf("NewTemplateRenderer: %v", err)
	}

	out, err := renderer.RenderString(`{{formatDate .When "2006-01-02"}}`, map[string]any{
		"When": time.Date(2025, 6, 10, 8, 30, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("RenderString: %v", err)
	}
	if out != "2025-06-10" {
		t.Fatalf("unexpected inline render output %q", out)
	}
}

func TestNewTemplateRendererValidation(t *testing.T) {
	if _, err := NewTemplateRenderer(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Fatal("expected error for missing directory")
	}

	file := filepath.Join(t.TempDir(), "not-a-dir")
	if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := NewTemplateRenderer(file); err == nil {
		t.Fatal("expected error for non-directory path")
	}

	// An existing directory without templates fails at first render.
	renderer, err := NewTemplateRenderer(t.TempDir())
	if err != nil {
		t.Fatalf("NewTemplateRenderer: %v", err)
	}
	if _, err := renderer.RenderTemplate("index.html", TemplateContext{}); err == nil {
		t.Fatal("expected error for empty template directory")
	}
}

func writeSiteTemplates(tb testing.TB) string {
	tb.Helper()
	dir := tb.TempDir()

	templates := map[string]string{
		"index.html": `<!DOCTYPE html>
<html>
<head><title>{{.Site.Title}}</title></head>
<body>
<nav>{{range .Nav.Items}}<a href="{{.URL}}">{{.Label}}</a>{{end}}</nav>
<ul>
{{range .Page.Notes}}<li><a href="{{.URL}}">{{.Note.Title}}</a></li>
{{end}}</ul>
</body>
</html>
`,
		"category.html": `<h1>{{.Page.Title}}</h1>
<ul>
{{range .Page.Notes}}<li>{{.Note.Title}} ({{formatDate .Note.CreatedAt ""}})</li>
{{end}}</ul>
`,
		"note.html": `<article>
<h1>{{.Page.Note.Note.Title}}</h1>
{{safeHTML .Page.Note.HTML}}
</article>
<a href="{{.Helpers.WithBaseURL "/"}}">home</a>
`,
	}
	for name, content := range templates {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			tb.Fatalf("write template %s: %v", name, err)
		}
	}
	return dir
}
