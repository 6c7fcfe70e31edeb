package index

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/goliatone/go-til/note"
)

const generatedPrefix = "_Generated by til on "

// BuildReadme renders the README digest: title, note count, one section per
// category with a link line per note, and a generation timestamp footer.
func (s *Service) BuildReadme(ctx context.Context, opts ReadmeOptions) (string, error) {
	records, err := s.listNotes(ctx, opts.IncludeDrafts)
	if err != nil {
		return "", err
	}
	groups := groupByCategory(records)

	var b strings.Builder

	title := strings.TrimSpace(opts.Title)
	if title == "" {
		title = "TIL"
	}
	fmt.Fprintf(&b, "# %s\n\n", title)

	if intro := strings.TrimSpace(opts.Intro); intro != "" {
		fmt.Fprintf(&b, "> %s\n\n", intro)
	}

	fmt.Fprintf(&b, "_%s across %s._\n\n",
		countNoun(len(records), "note", "notes"),
		countNoun(len(groups), "category", "categories"),
	)

	if len(groups) > 1 {
		b.WriteString("### Categories\n\n")
		for _, group := range groups {
			fmt.Fprintf(&b, "- [%s](#%s)\n", group.display, group.name)
		}
		b.WriteString("\n")
	}

	for _, group := range groups {
		fmt.Fprintf(&b, "### %s\n\n", group.display)
		for _, record := range group.notes {
			fmt.Fprintf(&b, "- [%s](%s)\n", record.Title, opts.LinkPrefix+record.SourcePath)
		}
		b.WriteString("\n")
	}

	b.WriteString("---\n\n")
	fmt.Fprintf(&b, "%s%s._\n", generatedPrefix, s.clock().UTC().Format(time.RFC3339))

	return b.String(), nil
}

// WriteReadme merges the digest into the README at file, respecting the
// managed markers, and reports whether it wrote. Content that only differs
// in the generation timestamp counts as unchanged.
func (s *Service) WriteReadme(ctx context.Context, file string, opts ReadmeOptions) (bool, error) {
	digest, err := s.BuildReadme(ctx, opts)
	if err != nil {
		return false, err
	}

	existing, err := os.ReadFile(file)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		content := MarkerBegin + "\n" + digest + MarkerEnd + "\n"
		if err := os.WriteFile(file, []byte(content), 0o644); err != nil {
			return false, fmt.Errorf("index: write readme %s: %w", file, err)
		}
		s.logger.Info("index.readme_created", "path", file)
		return true, nil
	case err != nil:
		return false, fmt.Errorf("index: read readme %s: %w", file, err)
	}

	merged := mergeManaged(string(existing), digest)
	if stripTimestampLines(merged) == stripTimestampLines(string(existing)) {
		return false, nil
	}

	if err := os.WriteFile(file, []byte(merged), 0o644); err != nil {
		return false, fmt.Errorf("index: write readme %s: %w", file, err)
	}
	s.logger.Info("index.readme_updated", "path", file)
	return true, nil
}

// CheckReadme reports whether the README at file is out of date with the
// current index, without touching it. A missing file counts as stale.
func (s *Service) CheckReadme(ctx context.Context, file string, opts ReadmeOptions) (bool, error) {
	digest, err := s.BuildReadme(ctx, opts)
	if err != nil {
		return false, err
	}

	existing, err := os.ReadFile(file)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return true, nil
	case err != nil:
		return false, fmt.Errorf("index: read readme %s: %w", file, err)
	}

	merged := mergeManaged(string(existing), digest)
	return stripTimestampLines(merged) != stripTimestampLines(string(existing)), nil
}

// BuildCategoryPage renders the digest for one category: heading, count,
// and a link line per visible note. Links are relative to the category
// directory.
func (s *Service) BuildCategoryPage(ctx context.Context, category string) (string, error) {
	normalized := strings.ToLower(strings.TrimSpace(category))
	if normalized == "" {
		return "", ErrCategoryRequired
	}

	records, err := s.notes.List(ctx, note.VisibleOnly(), note.InCategory(normalized))
	if err != nil {
		return "", err
	}
	sortNotes(records)

	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", displayCategory(normalized))
	fmt.Fprintf(&b, "_%s._\n\n", countNoun(len(records), "note", "notes"))

	for _, record := range records {
		line := fmt.Sprintf("- [%s](%s)", record.Title, path.Base(record.SourcePath))
		if summary := summaryOf(record); summary != "" {
			line += ": " + summary
		}
		b.WriteString(line + "\n")
	}

	return b.String(), nil
}

// WriteCategoryPages writes the per-category digest as a README.md inside
// each category directory under dir, so code hosts render an index when the
// tree is browsed. Returns how many files changed. Category pages are fully
// generated; the whole file is replaced when content differs.
func (s *Service) WriteCategoryPages(ctx context.Context, dir string) (int, error) {
	categories, err := s.notes.Categories(ctx)
	if err != nil {
		return 0, err
	}

	written := 0
	for _, category := range categories {
		name := strings.TrimSpace(category.Name)
		if name == "" {
			continue
		}
		page, err := s.BuildCategoryPage(ctx, name)
		if err != nil {
			return written, err
		}
		target := filepath.Join(dir, name, "README.md")
		existing, err := os.ReadFile(target)
		switch {
		case err == nil && string(existing) == page:
			continue
		case err != nil && !errors.Is(err, fs.ErrNotExist):
			return written, fmt.Errorf("index: read category page %s: %w", target, err)
		}
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return written, fmt.Errorf("index: create category dir %s: %w", filepath.Dir(target), err)
		}
		if err := os.WriteFile(target, []byte(page), 0o644); err != nil {
			return written, fmt.Errorf("index: write category page %s: %w", target, err)
		}
		s.logger.Info("index.category_page_updated", "path", target)
		written++
	}
	return written, nil
}

func (s *Service) listNotes(ctx context.Context, includeDrafts bool) ([]*note.Note, error) {
	if includeDrafts {
		return s.notes.List(ctx)
	}
	return s.notes.List(ctx, note.VisibleOnly())
}

// mergeManaged swaps the digest into the managed block of existing content.
// Without markers the block is appended so hand-written files pick one up.
func mergeManaged(existing, digest string) string {
	begin := strings.Index(existing, MarkerBegin)
	end := strings.Index(existing, MarkerEnd)
	if begin < 0 || end < 0 || end < begin {
		return strings.TrimRight(existing, "\n") + "\n\n" + MarkerBegin + "\n" + digest + MarkerEnd + "\n"
	}
	head := existing[:begin]
	tail := existing[end+len(MarkerEnd):]
	return head + MarkerBegin + "\n" + digest + MarkerEnd + tail
}

func stripTimestampLines(content string) string {
	lines := strings.Split(content, "\n")
	kept := make([]string, 0, len(lines))
	for _, line := range lines {
		if strings.HasPrefix(strings.TrimSpace(line), generatedPrefix) {
			continue
		}
		kept = append(kept, line)
	}
	return strings.Join(kept, "\n")
}

type categoryGroup struct {
	name    string
	display string
	notes   []*note.Note
}

func groupByCategory(records []*note.Note) []categoryGroup {
	byName := map[string][]*note.Note{}
	for _, record := range records {
		byName[record.Category] = append(byName[record.Category], record)
	}

	names := make([]string, 0, len(byName))
	for name := range byName {
		names = append(names, name)
	}
	sort.Strings(names)

	groups := make([]categoryGroup, 0, len(names))
	for _, name := range names {
		group := byName[name]
		sortNotes(group)
		groups = append(groups, categoryGroup{
			name:    name,
			display: displayCategory(name),
			notes:   group,
		})
	}
	return groups
}

func sortNotes(records []*note.Note) {
	sort.Slice(records, func(i, j int) bool {
		if records[i].Title != records[j].Title {
			return records[i].Title < records[j].Title
		}
		return records[i].Slug < records[j].Slug
	})
}

func displayCategory(name string) string {
	if name == "" {
		return "Notes"
	}
	return strings.ToUpper(name[:1]) + name[1:]
}

func summaryOf(record *note.Note) string {
	if record.Summary == nil {
		return ""
	}
	return strings.TrimSpace(*record.Summary)
}

func countNoun(n int, singular, plural string) string {
	if n == 1 {
		return "1 " + singular
	}
	return fmt.Sprintf("%d %s", n, plural)
}
