package site

import (
	"strings"
	"time"

	gotheme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-til/internal/nav"
	"github.com/goliatone/go-til/note"
)

// Page kinds rendered by the builder.
const (
	PageKindNote     = "note"
	PageKindCategory = "category"
	PageKindHome     = "home"
)

// TemplateContext captures the data contract passed to TemplateRenderer
// implementations.
type TemplateContext struct {
	Site    SiteMetadata
	Page    PageContext
	Nav     *nav.Tree
	Build   BuildMetadata
	Theme   ThemeContext
	Helpers TemplateHelpers
}

// SiteMetadata exposes site-wide information to templates.
type SiteMetadata struct {
	Title       string
	Description string
	Author      string
	BaseURL     string
	Metadata    map[string]any
}

// BuildMetadata surfaces high level build information to templates.
type BuildMetadata struct {
	GeneratedAt time.Time
	Options     BuildOptions
}

// PageContext holds the resolved data for a single output page.
type PageContext struct {
	Kind     string
	Title    string
	Route    string
	Category string
	// Note is set for note pages.
	Note *NoteView
	// Notes lists the members of category and home pages.
	Notes    []*NoteView
	Metadata DependencyMetadata
}

// NoteView pairs an indexed note with its rendered body and resolved URL.
// HTML is trusted output from the Markdown renderer; templates mark it safe
// through the safeHTML helper.
type NoteView struct {
	Note    *note.Note
	URL     string
	HTML    string
	Excerpt string

	checksum string
	modified time.Time
}

// ThemeContext surfaces go-theme selection data to templates.
type ThemeContext struct {
	Name      string
	Variant   string
	Tokens    map[string]string
	CSSVars   map[string]string
	Partials  map[string]string
	AssetURL  func(string) string
	Template  func(string, string) string
	Selection *gotheme.Selection
}

// TemplateHelpers exposes convenience helpers for template authors.
type TemplateHelpers struct {
	baseURL string
}

func newTemplateHelpers(baseURL string) TemplateHelpers {
	return TemplateHelpers{baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/")}
}

// BaseURL returns the configured site base URL.
func (h TemplateHelpers) BaseURL() string {
	return h.baseURL
}

// WithBaseURL prefixes the provided path with the configured base URL.
func (h TemplateHelpers) WithBaseURL(path string) string {
	path = strings.TrimSpace(path)
	if path == "" {
		return h.baseURL
	}
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	if h.baseURL == "" {
		return path
	}
	return h.baseURL + path
}

// FormatDate renders a timestamp with the given layout, "Jan 2, 2006" when
// the layout is empty. Zero times render as an empty string.
func (h TemplateHelpers) FormatDate(ts time.Time, layout string) string {
	if ts.IsZero() {
		return ""
	}
	if strings.TrimSpace(layout) == "" {
		layout = "Jan 2, 2006"
	}
	return ts.UTC().Format(layout)
}

// RenderedPage captures the rendered HTML output for one route.
type RenderedPage struct {
	Kind     string
	Route    string
	Output   string
	Template string
	Title    string
	HTML     string
	Metadata DependencyMetadata
	Duration time.Duration
	Checksum string
}

// RenderDiagnostic records rendering timing and errors for individual pages.
type RenderDiagnostic struct {
	Route    string
	Template string
	Duration time.Duration
	Skipped  bool
	Err      error
}

// DependencyMetadata tracks hashes and timestamps for incremental builds.
type DependencyMetadata struct {
	Sources      map[string]string
	Hash         string
	LastModified time.Time
}

type renderOutcome struct {
	page       RenderedPage
	diagnostic RenderDiagnostic
	err        error
	skipped    bool
}

func buildThemeContext(selection *gotheme.Selection, cssPrefix string, fallbacks map[string]string) ThemeContext {
	empty := ThemeContext{
		Tokens:   map[string]string{},
		CSSVars:  map[string]string{},
		Partials: map[string]string{},
		AssetURL: func(string) string { return "" },
		Template: func(_ string, fallback string) string { return fallback },
	}
	if selection == nil {
		return empty
	}

	return ThemeContext{
		Name:      selection.Theme,
		Variant:   selection.Variant,
		Tokens:    selection.Tokens(),
		CSSVars:   selection.CSSVariables(cssPrefix),
		Partials:  selection.Partials(fallbacks),
		AssetURL:  func(key string) string { url, _ := selection.Asset(key); return url },
		Template:  selection.Template,
		Selection: selection,
	}
}
