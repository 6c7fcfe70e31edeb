package site

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-til/note"
)

func TestBuildFeedItems(t *testing.T) {
	now := time.Date(2025, 6, 10, 8, 30, 0, 0, time.UTC)
	published := now.Add(-time.Hour)
	id := uuid.MustParse("7d444840-9dc0-11d1-b245-5ffdce74fad2")

	svc := &Service{cfg: Config{BaseURL: "https://til.example.com", FeedLimit: 2}}
	bc := &buildContext{
		generatedAt: now,
		notes: []*NoteView{
			{
				Note: &note.Note{
					ID:          id,
					Title:       "Channel Select Fairness",
					Category:    "Go",
					CreatedAt:   now.Add(-3 * time.Hour),
					UpdatedAt:   now.Add(-2 * time.Hour),
					PublishedAt: &published,
				},
				URL:     "/go/channels-select/",
				Excerpt: "Cases  are chosen\nat random.",
			},
			{
				Note: &note.Note{Title: "Sync Pool Reuse", Category: "go", CreatedAt: now.Add(-4 * time.Hour)},
				URL:  "/go/sync-pool/",
			},
			{
				Note: &note.Note{Title: "Xargs Parallelism", Category: "shell", CreatedAt: now.Add(-5 * time.Hour)},
				URL:  "/shell/xargs-parallel/",
			},
		},
	}

	items := svc.buildFeedItems(bc)
	if len(items) != 2 {
		t.Fatalf("expected feed limit of 2 items, got %d", len(items))
	}

	first := items[0]
	if first.Link != "https://til.example.com/go/channels-select/" {
		t.Fatalf("unexpected link %q", first.Link)
	}
	if first.GUID != id.String() {
		t.Fatalf("unexpected GUID %q", first.GUID)
	}
	if first.Category != "go" {
		t.Fatalf("expected lowercased category, got %q", first.Category)
	}
	if !first.PublishedAt.Equal(published) {
		t.Fatalf("expected explicit publish time, got %v", first.PublishedAt)
	}
	if first.Summary != "Cases are chosen at random." {
		t.Fatalf("expected collapsed whitespace summary, got %q", first.Summary)
	}

	// Without a publish timestamp the creation time stands in.
	if !items[1].PublishedAt.Equal(now.Add(-4 * time.Hour)) {
		t.Fatalf("expected created-at fallback, got %v", items[1].PublishedAt)
	}
}

func TestBuildRSSFeed(t *testing.T) {
	now := time.Date(2025, 6, 10, 8, 30, 0, 0, time.UTC)
	meta := SiteMetadata{
		Title:       "Tips & Tricks",
		Description: "Short notes",
		BaseURL:     "https://til.example.com",
	}
	items := []feedItem{
		{
			Title:       "Channel <select> Fairness",
			Summary:     "Cases are chosen at random.",
			Category:    "go",
			Link:        "https://til.example.com/go/channels-select/",
			GUID:        "7d444840-9dc0-11d1-b245-5ffdce74fad2",
			PublishedAt: now.Add(-2 * time.Hour),
		},
	}

	rss := buildRSSFeed(meta, items, now)

	for _, want := range []string{
		`<rss version="2.0">`,
		"<title>Tips &amp; Tricks</title>",
		"<link>https://til.example.com</link>",
		"<lastBuildDate>Tue, 10 Jun 2025 08:30:00 +0000</lastBuildDate>",
		"<title>Channel &lt;select&gt; Fairness</title>",
		`<guid isPermaLink="false">7d444840-9dc0-11d1-b245-5ffdce74fad2</guid>`,
		"<pubDate>Tue, 10 Jun 2025 06:30:00 +0000</pubDate>",
		"<category>go</category>",
		"<description>Cases are chosen at random.</description>",
	} {
		if !strings.Contains(rss, want) {
			t.Fatalf("expected %q in RSS output:\n%s", want, rss)
		}
	}
}

func TestBuildRSSFeedFallsBackToBuildTime(t *testing.T) {
	now := time.Date(2025, 6, 10, 8, 30, 0, 0, time.UTC)
	rss := buildRSSFeed(SiteMetadata{}, []feedItem{{Title: "Untimed"}}, now)

	if !strings.Contains(rss, "<pubDate>Tue, 10 Jun 2025 08:30:00 +0000</pubDate>") {
		t.Fatalf("expected build time fallback in:\n%s", rss)
	}
	if !strings.Contains(rss, "<link>http://localhost</link>") {
		t.Fatalf("expected localhost fallback in:\n%s", rss)
	}
	if !strings.Contains(rss, "<description>Latest notes</description>") {
		t.Fatalf("expected default description in:\n%s", rss)
	}
}

func TestBuildAtomFeed(t *testing.T) {
	now := time.Date(2025, 6, 10, 8, 30, 0, 0, time.UTC)
	meta := SiteMetadata{
		Title:   "Today I Learned",
		BaseURL: "https://til.example.com",
		Author:  "Ada",
	}
	items := []feedItem{
		{
			Title:       "Channel Select Fairness",
			Summary:     "Cases are chosen at random.",
			Category:    "go",
			Link:        "https://til.example.com/go/channels-select/",
			GUID:        "7d444840-9dc0-11d1-b245-5ffdce74fad2",
			PublishedAt: now.Add(-2 * time.Hour),
			UpdatedAt:   now.Add(-time.Hour),
		},
	}

	atom := buildAtomFeed(meta, items, now)

	for _, want := range []string{
		`<feed xmlns="http://www.w3.org/2005/Atom">`,
		"<id>https://til.example.com/atom.xml</id>",
		"<updated>2025-06-10T08:30:00Z</updated>",
		"<name>Ada</name>",
		`<link rel="self" href="https://til.example.com/atom.xml" />`,
		"<id>urn:uuid:7d444840-9dc0-11d1-b245-5ffdce74fad2</id>",
		`<link href="https://til.example.com/go/channels-select/" />`,
		"<updated>2025-06-10T07:30:00Z</updated>",
		"<published>2025-06-10T06:30:00Z</published>",
		`<category term="go" />`,
		"<summary>Cases are chosen at random.</summary>",
	} {
		if !strings.Contains(atom, want) {
			t.Fatalf("expected %q in Atom output:\n%s", want, atom)
		}
	}
}

func TestBuildSitemap(t *testing.T) {
	now := time.Date(2025, 6, 10, 8, 30, 0, 0, time.UTC)
	modified := now.Add(-24 * time.Hour)

	pages := []RenderedPage{
		{Route: "/go/", Metadata: DependencyMetadata{LastModified: modified}},
		{Route: "/go/", Metadata: DependencyMetadata{LastModified: modified}},
		{Route: "/"},
	}

	sitemap := buildSitemap("https://til.example.com", pages, now)

	if got := strings.Count(sitemap, "<loc>https://til.example.com/go/</loc>"); got != 1 {
		t.Fatalf("expected duplicate routes collapsed, found %d entries", got)
	}
	if !strings.Contains(sitemap, "<lastmod>2025-06-09T08:30:00Z</lastmod>") {
		t.Fatalf("expected page last-modified in:\n%s", sitemap)
	}
	// The zero last-modified falls back to the build time.
	if !strings.Contains(sitemap, "<lastmod>2025-06-10T08:30:00Z</lastmod>") {
		t.Fatalf("expected build time fallback in:\n%s", sitemap)
	}

	home := strings.Index(sitemap, "<loc>https://til.example.com/</loc>")
	category := strings.Index(sitemap, "<loc>https://til.example.com/go/</loc>")
	if home < 0 || category < 0 || home > category {
		t.Fatalf("expected sorted locations in:\n%s", sitemap)
	}
}

func TestBuildRobots(t *testing.T) {
	robots := buildRobots("https://til.example.com", true)
	if !strings.Contains(robots, "User-agent: *") || !strings.Contains(robots, "Allow: /") {
		t.Fatalf("unexpected robots content:\n%s", robots)
	}
	if !strings.Contains(robots, "Sitemap: https://til.example.com/sitemap.xml") {
		t.Fatalf("expected sitemap reference in:\n%s", robots)
	}

	robots = buildRobots("https://til.example.com", false)
	if strings.Contains(robots, "Sitemap:") {
		t.Fatalf("expected no sitemap reference in:\n%s", robots)
	}

	robots = buildRobots("", true)
	if !strings.Contains(robots, "Sitemap: http://localhost/sitemap.xml") {
		t.Fatalf("expected localhost fallback in:\n%s", robots)
	}
}

func TestAbsoluteURL(t *testing.T) {
	cases := []struct {
		base  string
		route string
		want  string
	}{
		{"https://til.example.com", "/go/", "https://til.example.com/go/"},
		{"https://til.example.com/", "/go/", "https://til.example.com/go/"},
		{"https://til.example.com", "go/", "https://til.example.com/go/"},
		{"https://til.example.com", "", "https://til.example.com"},
		{"", "/go/", "http://localhost/go/"},
	}
	for _, tc := range cases {
		if got := absoluteURL(tc.base, tc.route); got != tc.want {
			t.Fatalf("absoluteURL(%q, %q) = %q, want %q", tc.base, tc.route, got, tc.want)
		}
	}
}
