package site

import (
	"context"
	"fmt"
	"html"
	"strings"
	"time"
)

const maxFeedItems = 100

const (
	feedRSSFile  = "feed.xml"
	feedAtomFile = "atom.xml"
)

type feedItem struct {
	Title       string
	Summary     string
	Category    string
	Link        string
	GUID        string
	PublishedAt time.Time
	UpdatedAt   time.Time
}

// buildFeedItems turns the newest-first note list into feed entries, capped
// by the configured feed limit.
func (s *Service) buildFeedItems(bc *buildContext) []feedItem {
	limit := s.cfg.FeedLimit
	if limit <= 0 {
		limit = maxFeedItems
	}

	items := make([]feedItem, 0, min(limit, len(bc.notes)))
	for _, view := range bc.notes {
		if len(items) >= limit {
			break
		}
		record := view.Note

		publishedAt := firstNonZeroTime(timePtrOrZero(record.PublishedAt), record.CreatedAt)
		if publishedAt.IsZero() {
			publishedAt = bc.generatedAt
		}
		updatedAt := firstNonZeroTime(record.UpdatedAt, publishedAt)

		items = append(items, feedItem{
			Title:       record.Title,
			Summary:     normalizeWhitespace(view.Excerpt),
			Category:    strings.ToLower(strings.TrimSpace(record.Category)),
			Link:        absoluteURL(s.cfg.BaseURL, routePath(view.URL)),
			GUID:        record.ID.String(),
			PublishedAt: publishedAt,
			UpdatedAt:   updatedAt,
		})
	}
	return items
}

// writeFeeds emits the RSS and Atom documents. Both are always written so
// the artifacts track the current note set, even when it is empty.
func (s *Service) writeFeeds(ctx context.Context, writer artifactWriter, bc *buildContext, meta SiteMetadata) (int, error) {
	items := s.buildFeedItems(bc)

	feeds := []struct {
		path        string
		content     string
		contentType string
		feedType    string
	}{
		{feedRSSFile, buildRSSFeed(meta, items, bc.generatedAt), "application/rss+xml", "rss"},
		{feedAtomFile, buildAtomFeed(meta, items, bc.generatedAt), "application/atom+xml", "atom"},
	}

	written := 0
	for _, feed := range feeds {
		target := joinOutputPath(s.outputBase(), feed.path)
		if err := writer.WriteFile(ctx, writeFileRequest{
			Path:        target,
			Content:     strings.NewReader(feed.content),
			Size:        int64(len(feed.content)),
			Category:    categoryFeed,
			ContentType: feed.contentType,
			Checksum:    computeHash([]byte(feed.content)),
			Metadata: map[string]string{
				"generated_at": bc.generatedAt.UTC().Format(time.RFC3339),
				"feed_type":    feed.feedType,
			},
		}); err != nil {
			return written, err
		}
		written++
	}
	return written, nil
}

func buildRSSFeed(meta SiteMetadata, items []feedItem, generatedAt time.Time) string {
	baseLink := baseURLWithFallback(meta.BaseURL)

	var builder strings.Builder
	builder.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	builder.WriteString(`<rss version="2.0">` + "\n")
	builder.WriteString("  <channel>\n")
	builder.WriteString(fmt.Sprintf("    <title>%s</title>\n", escapeXML(feedTitle(meta))))
	builder.WriteString(fmt.Sprintf("    <link>%s</link>\n", escapeXML(baseLink)))
	builder.WriteString(fmt.Sprintf("    <description>%s</description>\n", escapeXML(feedDescription(meta))))
	builder.WriteString(fmt.Sprintf("    <lastBuildDate>%s</lastBuildDate>\n", generatedAt.UTC().Format(time.RFC1123Z)))
	for _, item := range items {
		pub := item.PublishedAt
		if pub.IsZero() {
			pub = generatedAt
		}
		builder.WriteString("    <item>\n")
		builder.WriteString(fmt.Sprintf("      <title>%s</title>\n", escapeXML(item.Title)))
		builder.WriteString(fmt.Sprintf("      <link>%s</link>\n", escapeXML(item.Link)))
		builder.WriteString(fmt.Sprintf(`      <guid isPermaLink="false">%s</guid>`+"\n", escapeXML(item.GUID)))
		builder.WriteString(fmt.Sprintf("      <pubDate>%s</pubDate>\n", pub.UTC().Format(time.RFC1123Z)))
		if item.Category != "" {
			builder.WriteString(fmt.Sprintf("      <category>%s</category>\n", escapeXML(item.Category)))
		}
		if item.Summary != "" {
			builder.WriteString(fmt.Sprintf("      <description>%s</description>\n", escapeXML(item.Summary)))
		}
		builder.WriteString("    </item>\n")
	}
	builder.WriteString("  </channel>\n")
	builder.WriteString(`</rss>` + "\n")
	return builder.String()
}

func buildAtomFeed(meta SiteMetadata, items []feedItem, generatedAt time.Time) string {
	baseLink := baseURLWithFallback(meta.BaseURL)
	feedID := baseLink + "/" + feedAtomFile

	var builder strings.Builder
	builder.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	builder.WriteString(`<feed xmlns="http://www.w3.org/2005/Atom">` + "\n")
	builder.WriteString(fmt.Sprintf("  <id>%s</id>\n", escapeXML(feedID)))
	builder.WriteString(fmt.Sprintf("  <title>%s</title>\n", escapeXML(feedTitle(meta))))
	builder.WriteString(fmt.Sprintf("  <updated>%s</updated>\n", generatedAt.UTC().Format(time.RFC3339)))
	if author := strings.TrimSpace(meta.Author); author != "" {
		builder.WriteString("  <author>\n")
		builder.WriteString(fmt.Sprintf("    <name>%s</name>\n", escapeXML(author)))
		builder.WriteString("  </author>\n")
	}
	builder.WriteString(fmt.Sprintf(`  <link rel="alternate" href="%s" />`+"\n", escapeXMLAttr(baseLink)))
	builder.WriteString(fmt.Sprintf(`  <link rel="self" href="%s" />`+"\n", escapeXMLAttr(feedID)))
	for _, item := range items {
		updated := firstNonZeroTime(item.UpdatedAt, item.PublishedAt, generatedAt)
		builder.WriteString("  <entry>\n")
		builder.WriteString(fmt.Sprintf("    <id>urn:uuid:%s</id>\n", escapeXML(item.GUID)))
		builder.WriteString(fmt.Sprintf("    <title>%s</title>\n", escapeXML(item.Title)))
		builder.WriteString(fmt.Sprintf(`    <link href="%s" />`+"\n", escapeXMLAttr(item.Link)))
		builder.WriteString(fmt.Sprintf("    <updated>%s</updated>\n", updated.UTC().Format(time.RFC3339)))
		if !item.PublishedAt.IsZero() {
			builder.WriteString(fmt.Sprintf("    <published>%s</published>\n", item.PublishedAt.UTC().Format(time.RFC3339)))
		}
		if item.Category != "" {
			builder.WriteString(fmt.Sprintf(`    <category term="%s" />`+"\n", escapeXMLAttr(item.Category)))
		}
		if item.Summary != "" {
			builder.WriteString(fmt.Sprintf("    <summary>%s</summary>\n", escapeXML(item.Summary)))
		}
		builder.WriteString("  </entry>\n")
	}
	builder.WriteString(`</feed>` + "\n")
	return builder.String()
}

func feedTitle(meta SiteMetadata) string {
	if title := strings.TrimSpace(meta.Title); title != "" {
		return title
	}
	return baseURLWithFallback(meta.BaseURL)
}

func feedDescription(meta SiteMetadata) string {
	if desc := strings.TrimSpace(meta.Description); desc != "" {
		return desc
	}
	return "Latest notes"
}

func baseURLWithFallback(base string) string {
	trimmed := strings.TrimRight(strings.TrimSpace(base), "/")
	if trimmed == "" {
		return "http://localhost"
	}
	return trimmed
}

func absoluteURL(base, route string) string {
	targetBase := baseURLWithFallback(base)
	normalized := strings.TrimSpace(route)
	if normalized == "" {
		return targetBase
	}
	if !strings.HasPrefix(normalized, "/") {
		normalized = "/" + normalized
	}
	return targetBase + normalized
}

func timePtrOrZero(ts *time.Time) time.Time {
	if ts == nil {
		return time.Time{}
	}
	return ts.UTC()
}

func firstNonZeroTime(instants ...time.Time) time.Time {
	for _, ts := range instants {
		if !ts.IsZero() {
			return ts
		}
	}
	return time.Time{}
}

func normalizeWhitespace(input string) string {
	if strings.TrimSpace(input) == "" {
		return ""
	}
	return strings.Join(strings.Fields(input), " ")
}

func escapeXML(value string) string {
	return html.EscapeString(value)
}

func escapeXMLAttr(value string) string {
	return html.EscapeString(value)
}
