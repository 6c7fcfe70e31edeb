package markdown

import (
	"bytes"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/adrg/frontmatter"

	"github.com/goliatone/go-til/pkg/interfaces"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ParseFrontMatter extracts metadata and Markdown body content from the
// provided source bytes. It returns the structured front matter, the Markdown
// body without delimiters, and any error encountered. A missing front matter
// block is legal; everything is derived from the body in that case.
func ParseFrontMatter(source []byte) (interfaces.FrontMatter, []byte, error) {
	var meta frontMatterEnvelope

	reader := bytes.NewReader(bytes.TrimPrefix(source, utf8BOM))
	body, err := frontmatter.Parse(reader, &meta)
	if err != nil {
		return interfaces.FrontMatter{}, nil, fmt.Errorf("parse frontmatter: %w", err)
	}

	return envelopeToFrontMatter(meta), body, nil
}

// BuildDocument assembles an interfaces.Document from the supplied file path,
// category, raw content, and modification time. BodyHTML is intentionally
// left empty so callers can render lazily.
func BuildDocument(path string, category string, source []byte, modified time.Time) (*interfaces.Document, error) {
	fm, body, err := ParseFrontMatter(source)
	if err != nil {
		return nil, err
	}

	return &interfaces.Document{
		FilePath:     path,
		Category:     category,
		FrontMatter:  fm,
		Body:         body,
		BodyLine:     bodyStartLine(source, body),
		Excerpt:      deriveExcerpt(body),
		WordCount:    countWords(body),
		LastModified: modified,
	}, nil
}

// bodyStartLine locates the 1-based file line where the body begins. The
// parsed body is a suffix of the source, so the consumed prefix is exactly
// the front matter block.
func bodyStartLine(source, body []byte) int {
	trimmed := bytes.TrimPrefix(source, utf8BOM)
	consumed := len(trimmed) - len(body)
	if consumed <= 0 {
		return 1
	}
	return 1 + bytes.Count(trimmed[:consumed], []byte("\n"))
}

type frontMatterEnvelope struct {
	Title       string         `yaml:"title"`
	Slug        string         `yaml:"slug"`
	Summary     string         `yaml:"summary"`
	Status      string         `yaml:"status"`
	Tags        []string       `yaml:"tags"`
	Source      string         `yaml:"source"`
	Date        time.Time      `yaml:"date"`
	Draft       bool           `yaml:"draft"`
	PublishAt   *time.Time     `yaml:"publish_at"`
	UnpublishAt *time.Time     `yaml:"unpublish_at"`
	Custom      map[string]any `yaml:",inline"`
}

func envelopeToFrontMatter(env frontMatterEnvelope) interfaces.FrontMatter {
	if env.Custom == nil {
		env.Custom = map[string]any{}
	}

	custom := make(map[string]any, len(env.Custom))
	for key, value := range env.Custom {
		custom[key] = normalizeYAMLValue(value)
	}

	raw := make(map[string]any, len(custom)+8)
	for key, value := range custom {
		raw[key] = value
	}

	if env.Title != "" {
		raw["title"] = env.Title
	}
	if env.Slug != "" {
		raw["slug"] = env.Slug
	}
	if env.Summary != "" {
		raw["summary"] = env.Summary
	}
	if env.Status != "" {
		raw["status"] = env.Status
	}
	if len(env.Tags) > 0 {
		raw["tags"] = append([]string(nil), env.Tags...)
	}
	if env.Source != "" {
		raw["source"] = env.Source
	}
	if !env.Date.IsZero() {
		raw["date"] = env.Date
	}
	if env.PublishAt != nil {
		raw["publish_at"] = *env.PublishAt
	}
	if env.UnpublishAt != nil {
		raw["unpublish_at"] = *env.UnpublishAt
	}
	raw["draft"] = env.Draft

	return interfaces.FrontMatter{
		Title:       env.Title,
		Slug:        env.Slug,
		Summary:     env.Summary,
		Status:      env.Status,
		Tags:        append([]string(nil), env.Tags...),
		Source:      env.Source,
		Date:        env.Date,
		Draft:       env.Draft,
		PublishAt:   cloneTime(env.PublishAt),
		UnpublishAt: cloneTime(env.UnpublishAt),
		Custom:      cloneMap(custom),
		Raw:         raw,
	}
}

// normalizeYAMLValue rewrites decoded YAML values into JSON-encodable shapes.
// The YAML decoder produces map[interface{}]interface{} for nested mappings,
// which json.Marshal rejects, so map keys become strings recursively.
func normalizeYAMLValue(value any) any {
	switch typed := value.(type) {
	case map[any]any:
		out := make(map[string]any, len(typed))
		for key, item := range typed {
			out[fmt.Sprint(key)] = normalizeYAMLValue(item)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(typed))
		for key, item := range typed {
			out[key] = normalizeYAMLValue(item)
		}
		return out
	case []any:
		out := make([]any, len(typed))
		for i, item := range typed {
			out[i] = normalizeYAMLValue(item)
		}
		return out
	default:
		return value
	}
}

const excerptLimit = 280

// deriveExcerpt returns the first paragraph of prose in the body, skipping
// headings and fenced code, capped at excerptLimit runes.
func deriveExcerpt(body []byte) string {
	var (
		parts   []string
		inFence bool
	)

	for _, line := range strings.Split(string(body), "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "```") || strings.HasPrefix(trimmed, "~~~") {
			inFence = !inFence
			continue
		}
		if inFence {
			continue
		}
		if trimmed == "" {
			if len(parts) > 0 {
				break
			}
			continue
		}
		if strings.HasPrefix(trimmed, "#") {
			continue
		}
		parts = append(parts, trimmed)
	}

	excerpt := strings.Join(parts, " ")
	if utf8.RuneCountInString(excerpt) <= excerptLimit {
		return excerpt
	}

	runes := []rune(excerpt)
	cut := excerptLimit
	for cut > 0 && runes[cut-1] != ' ' {
		cut--
	}
	if cut == 0 {
		cut = excerptLimit
	}
	return strings.TrimSpace(string(runes[:cut])) + "..."
}

func countWords(body []byte) int {
	return len(strings.Fields(string(body)))
}

func cloneTime(value *time.Time) *time.Time {
	if value == nil {
		return nil
	}
	clone := *value
	return &clone
}

func cloneMap(input map[string]any) map[string]any {
	if input == nil {
		return map[string]any{}
	}

	out := make(map[string]any, len(input))
	for key, value := range input {
		out[key] = value
	}
	return out
}
