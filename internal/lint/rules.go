package lint

import (
	"bytes"
	"net/url"
	"path"
	"regexp"
	"sort"
	"strings"

	"github.com/yuin/goldmark/ast"

	"github.com/goliatone/go-til/internal/markdown"
	"github.com/goliatone/go-til/internal/wikilink"
)

// Rule implementations -------------------------------------------------------

// runMarkdownParse checks structural well-formedness: every fence closes,
// every [text][label] reference has a definition, and heading levels never
// skip. Heading jumps downgrade to warnings since they render, just badly.
func runMarkdownParse(rc *ruleContext) {
	for _, block := range rc.fences {
		if !block.Closed {
			rc.emit(rc.fileLine(block.Line), "fenced code block opened with %s is never closed", block.Marker)
		}
	}

	defs := referenceDefinitions(rc.lines, rc.prose)
	for _, use := range referenceUses(rc.lines, rc.prose) {
		if _, ok := defs[use.label]; ok {
			continue
		}
		rc.emit(rc.fileLine(use.line), "link reference %q is not defined", use.raw)
	}

	last := 0
	for i, line := range rc.lines {
		if !rc.prose[i] {
			continue
		}
		level, ok := headingLevel(line)
		if !ok {
			continue
		}
		if last > 0 && level > last+1 {
			rc.warn(rc.fileLine(i+1), "heading level jumps from h%d to h%d", last, level)
		}
		last = level
	}
}

// runLinkURL verifies every outgoing reference: wiki links against the note
// corpus, absolute URLs against the scheme allow-list, and relative targets
// against the file tree.
func runLinkURL(rc *ruleContext) {
	links, malformed := wikilink.Scan(rc.doc.Body)
	for _, bad := range malformed {
		rc.emit(rc.fileLine(bad.Line), "malformed wiki link %q: %s", bad.Span, bad.Reason)
	}
	for _, link := range links {
		if rc.corpus.hasSlug(link.Target) {
			continue
		}
		rc.emit(rc.fileLine(link.Line), "wiki link %q does not match any note", link.RawTarget)
	}

	loc := newLocator(rc.doc.Body)
	root := markdown.ParseAST(rc.doc.Body, rc.linter.parser)
	_ = ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch node := n.(type) {
		case *ast.Link:
			target := string(node.Destination)
			checkLinkTarget(rc, target, rc.fileLine(linkLine(node, loc, target)))
		case *ast.Image:
			target := string(node.Destination)
			checkLinkTarget(rc, target, rc.fileLine(linkLine(node, loc, target)))
		case *ast.AutoLink:
			if node.AutoLinkType == ast.AutoLinkEmail {
				return ast.WalkContinue, nil
			}
			label := string(node.Label(rc.doc.Body))
			checkLinkTarget(rc, string(node.URL(rc.doc.Body)), rc.fileLine(loc.locate(label)))
		}
		return ast.WalkContinue, nil
	})
}

// runNoteTitle wants exactly one title source: a front matter title, a single
// top-level heading, or both saying the same thing.
func runNoteTitle(rc *ruleContext) {
	var h1 []int
	for i, line := range rc.lines {
		if !rc.prose[i] {
			continue
		}
		if level, ok := headingLevel(line); ok && level == 1 {
			h1 = append(h1, i+1)
		}
	}

	title := strings.TrimSpace(rc.doc.FrontMatter.Title)
	switch {
	case title == "" && len(h1) == 0:
		rc.emit(1, "note has no title: add a front matter title or a top-level heading")
	case len(h1) > 1:
		rc.emit(rc.fileLine(h1[1]), "%d top-level headings; a note keeps a single title", len(h1))
	}
}

// Link target checks ----------------------------------------------------------

var schemePattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9+.-]*:`)

func checkLinkTarget(rc *ruleContext, target string, line int) {
	trimmed := strings.TrimSpace(target)
	// Empty destinations are legal Markdown; same-document anchors are
	// resolved by the renderer, not the tree.
	if trimmed == "" || strings.HasPrefix(trimmed, "#") {
		return
	}
	if strings.HasPrefix(trimmed, "//") {
		rc.emit(line, "protocol-relative link %q; use an explicit scheme", trimmed)
		return
	}
	if strings.Contains(trimmed, "://") || schemePattern.MatchString(trimmed) {
		checkAbsoluteTarget(rc, trimmed, line)
		return
	}
	checkFileTarget(rc, trimmed, line)
}

func checkAbsoluteTarget(rc *ruleContext, target string, line int) {
	parsed, err := url.Parse(target)
	if err != nil {
		rc.emit(line, "link target %q is not a valid URL: %v", target, err)
		return
	}

	scheme := strings.ToLower(parsed.Scheme)
	if scheme == "" {
		rc.emit(line, "link target %q has no URL scheme", target)
		return
	}
	if !rc.linter.schemeAllowed(scheme) {
		rc.emit(line, "link target %q uses scheme %q (allowed: %s)", target, scheme, rc.linter.allowedSchemes())
		return
	}
	if (scheme == "http" || scheme == "https") && parsed.Host == "" {
		rc.emit(line, "link target %q has no host", target)
	}
}

func checkFileTarget(rc *ruleContext, target string, line int) {
	clean := target
	if i := strings.IndexAny(clean, "#?"); i >= 0 {
		clean = clean[:i]
	}
	clean = strings.TrimSuffix(clean, "/")
	if clean == "" {
		return
	}

	var resolved string
	if strings.HasPrefix(clean, "/") {
		resolved = path.Clean(strings.TrimPrefix(clean, "/"))
	} else {
		resolved = path.Clean(path.Join(path.Dir(rc.doc.FilePath), clean))
	}

	if resolved == ".." || strings.HasPrefix(resolved, "../") {
		rc.emit(line, "link target %q points outside the notes tree", target)
		return
	}
	if resolved == "." {
		return
	}
	if !rc.corpus.hasPath(resolved) {
		rc.emit(line, "link target %q does not resolve to a file in the notes tree", target)
	}
}

// Line attribution ------------------------------------------------------------

// linkLine resolves the body line of an inline link node: the segment of its
// first text child when it has one, otherwise the next occurrence of the raw
// destination.
func linkLine(node ast.Node, loc *locator, fallback string) int {
	if offset, ok := firstTextOffset(node); ok {
		return loc.lineAt(offset)
	}
	return loc.locate(fallback)
}

func firstTextOffset(node ast.Node) (int, bool) {
	offset := -1
	_ = ast.Walk(node, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if text, ok := n.(*ast.Text); ok && text.Segment.Len() > 0 {
			offset = text.Segment.Start
			return ast.WalkStop, nil
		}
		return ast.WalkContinue, nil
	})
	return offset, offset >= 0
}

// locator maps body offsets to 1-based lines and finds successive
// occurrences of a needle so repeated targets land on distinct lines.
type locator struct {
	body    []byte
	offsets []int
	seen    map[string]int
}

func newLocator(body []byte) *locator {
	offsets := []int{0}
	for i, b := range body {
		if b == '\n' {
			offsets = append(offsets, i+1)
		}
	}
	return &locator{body: body, offsets: offsets, seen: map[string]int{}}
}

func (l *locator) lineAt(offset int) int {
	i := sort.Search(len(l.offsets), func(i int) bool { return l.offsets[i] > offset })
	if i < 1 {
		return 1
	}
	return i
}

func (l *locator) locate(needle string) int {
	if needle == "" {
		return 1
	}
	start := l.seen[needle]
	if start > len(l.body) {
		start = 0
	}
	idx := bytes.Index(l.body[start:], []byte(needle))
	if idx < 0 && start > 0 {
		start = 0
		idx = bytes.Index(l.body, []byte(needle))
	}
	if idx < 0 {
		return 1
	}
	abs := start + idx
	l.seen[needle] = abs + 1
	return l.lineAt(abs)
}

// Reference links -------------------------------------------------------------

var (
	refDefPattern = regexp.MustCompile(`^ {0,3}\[([^\[\]]+)\]:`)
	refUsePattern = regexp.MustCompile(`\[([^\[\]]*)\]\[([^\[\]]*)\]`)
)

type refUse struct {
	raw   string
	label string
	line  int
}

func referenceDefinitions(lines []string, prose []bool) map[string]struct{} {
	defs := map[string]struct{}{}
	for i, line := range lines {
		if !prose[i] {
			continue
		}
		if m := refDefPattern.FindStringSubmatch(line); m != nil {
			defs[refLabel(m[1])] = struct{}{}
		}
	}
	return defs
}

func referenceUses(lines []string, prose []bool) []refUse {
	var uses []refUse
	for i, line := range lines {
		if !prose[i] || refDefPattern.MatchString(line) {
			continue
		}
		masked := wikilink.MaskCodeSpans(line)
		for _, m := range refUsePattern.FindAllStringSubmatch(masked, -1) {
			// [text][] collapses to the text as its own label.
			label := m[2]
			if label == "" {
				label = m[1]
			}
			if label == "" {
				continue
			}
			uses = append(uses, refUse{raw: label, label: refLabel(label), line: i + 1})
		}
	}
	return uses
}

// refLabel normalizes a reference label the way Markdown matches them:
// case-insensitive with collapsed whitespace.
func refLabel(label string) string {
	return strings.ToLower(strings.Join(strings.Fields(label), " "))
}

// headingLevel reports the ATX heading level of a line, if it is one.
func headingLevel(line string) (int, bool) {
	trimmed := strings.TrimLeft(line, " ")
	if len(line)-len(trimmed) > 3 {
		return 0, false
	}
	n := 0
	for n < len(trimmed) && trimmed[n] == '#' {
		n++
	}
	if n == 0 || n > 6 {
		return 0, false
	}
	if n < len(trimmed) && trimmed[n] != ' ' && trimmed[n] != '\t' {
		return 0, false
	}
	return n, true
}
