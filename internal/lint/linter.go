package lint

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/goliatone/go-til/internal/logging"
	"github.com/goliatone/go-til/internal/markdown"
	"github.com/goliatone/go-til/pkg/interfaces"
)

// Rule identifiers, stable across releases so config files can reference them.
const (
	RuleMarkdownParse     = "markdown/parse"
	RuleLinkURL           = "link/url"
	RuleFenceLang         = "fence/lang"
	RuleFrontMatterSchema = "frontmatter/schema"
	RuleNoteTitle         = "note/title"
)

// ErrDocumentSourceRequired is returned by New when no document source is
// supplied.
var ErrDocumentSourceRequired = errors.New("lint: document source is required")

// DocumentSource is the slice of the Markdown service the linter needs:
// discover note paths and load individual documents. Loading stays per file
// so one malformed note becomes a finding instead of aborting the run.
type DocumentSource interface {
	Load(ctx context.Context, path string, opts interfaces.LoadOptions) (*interfaces.Document, error)
	ListPaths(ctx context.Context, dir string, opts interfaces.LoadOptions) ([]string, error)
}

// Option customises a Linter.
type Option func(*Linter)

// WithSeverity overrides the severity of a rule. SeverityOff disables it.
func WithSeverity(rule string, level interfaces.Severity) Option {
	return func(l *Linter) {
		l.levels[rule] = level
	}
}

// WithAllowedSchemes replaces the URL schemes the link rule accepts.
func WithAllowedSchemes(schemes ...string) Option {
	return func(l *Linter) {
		allowed := make(map[string]struct{}, len(schemes))
		for _, scheme := range schemes {
			scheme = strings.ToLower(strings.TrimSpace(scheme))
			if scheme != "" {
				allowed[scheme] = struct{}{}
			}
		}
		if len(allowed) > 0 {
			l.schemes = allowed
		}
	}
}

// WithFenceLanguages adds language tags to the set the fence rule accepts.
func WithFenceLanguages(tags ...string) Option {
	return func(l *Linter) {
		for _, tag := range tags {
			tag = strings.ToLower(strings.TrimSpace(tag))
			if tag != "" {
				l.tags[tag] = struct{}{}
			}
		}
	}
}

// WithParseOptions sets the Markdown parse options used when loading and
// walking documents.
func WithParseOptions(opts interfaces.ParseOptions) Option {
	return func(l *Linter) {
		l.parser = opts
	}
}

// WithLogger overrides the no-op logger.
func WithLogger(logger interfaces.Logger) Option {
	return func(l *Linter) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// Linter checks a notes tree against the built-in rule set. Construct with
// New; the zero value is not usable.
type Linter struct {
	docs    DocumentSource
	parser  interfaces.ParseOptions
	rules   []rule
	levels  map[string]interfaces.Severity
	schemes map[string]struct{}
	tags    map[string]struct{}
	schema  *jsonschema.Schema
	logger  interfaces.Logger
}

var _ interfaces.Linter = (*Linter)(nil)

type rule struct {
	info interfaces.RuleInfo
	run  func(*ruleContext)
}

func builtinRules() []rule {
	return []rule{
		{
			info: interfaces.RuleInfo{
				ID:          RuleMarkdownParse,
				Description: "markdown is well formed: fences close, link references resolve, headings nest",
				Default:     interfaces.SeverityError,
			},
			run: runMarkdownParse,
		},
		{
			info: interfaces.RuleInfo{
				ID:          RuleLinkURL,
				Description: "link targets are valid URLs, files in the tree, or known note slugs",
				Default:     interfaces.SeverityError,
			},
			run: runLinkURL,
		},
		{
			info: interfaces.RuleInfo{
				ID:          RuleFenceLang,
				Description: "fenced code blocks carry a known language tag",
				Default:     interfaces.SeverityError,
			},
			run: runFenceLang,
		},
		{
			info: interfaces.RuleInfo{
				ID:          RuleFrontMatterSchema,
				Description: "front matter conforms to the note schema",
				Default:     interfaces.SeverityError,
			},
			run: runFrontMatterSchema,
		},
		{
			info: interfaces.RuleInfo{
				ID:          RuleNoteTitle,
				Description: "a note has one title: front matter or a single top-level heading",
				Default:     interfaces.SeverityWarning,
			},
			run: runNoteTitle,
		},
	}
}

// New builds a Linter over the supplied document source.
func New(docs DocumentSource, opts ...Option) (*Linter, error) {
	if docs == nil {
		return nil, ErrDocumentSourceRequired
	}

	schema, err := compileFrontMatterSchema()
	if err != nil {
		return nil, fmt.Errorf("lint: compile front matter schema: %w", err)
	}

	l := &Linter{
		docs:    docs,
		rules:   builtinRules(),
		levels:  map[string]interfaces.Severity{},
		schemes: defaultSchemes(),
		tags:    knownFenceLanguages(),
		schema:  schema,
		logger:  logging.NoOp(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(l)
		}
	}
	return l, nil
}

// CheckFile lints a single note. The rest of the tree is still loaded so
// wiki links and relative paths resolve against the full corpus.
func (l *Linter) CheckFile(ctx context.Context, file string) (*interfaces.Report, error) {
	corp, err := l.loadCorpus(ctx)
	if err != nil {
		return nil, err
	}

	report := &interfaces.Report{Checked: 1}

	doc, err := l.docs.Load(ctx, file, interfaces.LoadOptions{Parser: l.parser})
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("lint: %w", err)
		}
		if finding, ok := l.loadFinding(file, err); ok {
			report.Findings = append(report.Findings, finding)
		}
		return report, nil
	}

	report.Findings = l.runRules(doc, corp)
	sortFindings(report.Findings)
	return report, nil
}

// CheckTree lints every note under dir. Findings come back sorted by path,
// line, and rule; the returned error is reserved for I/O failures.
func (l *Linter) CheckTree(ctx context.Context, dir string) (*interfaces.Report, error) {
	corp, err := l.loadCorpus(ctx)
	if err != nil {
		return nil, err
	}

	scope, err := l.docs.ListPaths(ctx, dir, interfaces.LoadOptions{})
	if err != nil {
		return nil, fmt.Errorf("lint: list notes: %w", err)
	}
	inScope := make(map[string]struct{}, len(scope))
	for _, p := range scope {
		inScope[p] = struct{}{}
	}

	report := &interfaces.Report{}

	for _, failure := range corp.failures {
		if _, ok := inScope[failure.path]; !ok {
			continue
		}
		report.Checked++
		if finding, ok := l.loadFinding(failure.path, failure.err); ok {
			report.Findings = append(report.Findings, finding)
		}
	}

	for _, doc := range corp.docs {
		if _, ok := inScope[doc.FilePath]; !ok {
			continue
		}
		report.Checked++
		report.Findings = append(report.Findings, l.runRules(doc, corp)...)
	}

	sortFindings(report.Findings)
	l.logger.Debug("lint.tree",
		"dir", dir,
		"checked", report.Checked,
		"findings", len(report.Findings),
	)
	return report, nil
}

// Rules lists the registered rules with their default severities.
func (l *Linter) Rules() []interfaces.RuleInfo {
	infos := make([]interfaces.RuleInfo, 0, len(l.rules))
	for _, entry := range l.rules {
		infos = append(infos, entry.info)
	}
	return infos
}

func (l *Linter) runRules(doc *interfaces.Document, corp *corpus) []interfaces.Finding {
	var findings []interfaces.Finding

	lines := splitLines(doc.Body)
	fences := scanFences(lines)
	rc := &ruleContext{
		linter:   l,
		doc:      doc,
		corpus:   corp,
		lines:    lines,
		prose:    proseLines(lines, fences),
		fences:   fences,
		findings: &findings,
	}

	for _, entry := range l.rules {
		level := l.effective(entry.info.ID)
		if level == interfaces.SeverityOff {
			continue
		}
		rc.ruleID = entry.info.ID
		rc.severity = level
		entry.run(rc)
	}
	return findings
}

func (l *Linter) effective(id string) interfaces.Severity {
	if level, ok := l.levels[id]; ok {
		return level
	}
	for _, entry := range l.rules {
		if entry.info.ID == id {
			return entry.info.Default
		}
	}
	return interfaces.SeverityOff
}

// loadFinding converts a per-file load error into a markdown/parse finding.
func (l *Linter) loadFinding(file string, err error) (interfaces.Finding, bool) {
	level := l.effective(RuleMarkdownParse)
	if level == interfaces.SeverityOff {
		return interfaces.Finding{}, false
	}
	return interfaces.Finding{
		Rule:     RuleMarkdownParse,
		Severity: level,
		Path:     strings.TrimPrefix(path.Clean(file), "./"),
		Line:     1,
		Message:  fmt.Sprintf("file does not parse: %v", err),
	}, true
}

func (l *Linter) schemeAllowed(scheme string) bool {
	_, ok := l.schemes[scheme]
	return ok
}

func (l *Linter) allowedSchemes() string {
	keys := make([]string, 0, len(l.schemes))
	for key := range l.schemes {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return strings.Join(keys, ", ")
}

func (l *Linter) fenceLanguageKnown(tag string) bool {
	_, ok := l.tags[tag]
	return ok
}

// corpus is the tree-wide context rules resolve against: every file path for
// relative links and every note slug for wiki links.
type corpus struct {
	files    map[string]struct{}
	dirs     map[string]struct{}
	slugs    map[string]struct{}
	docs     []*interfaces.Document
	failures []loadFailure
}

type loadFailure struct {
	path string
	err  error
}

func (c *corpus) hasPath(p string) bool {
	if _, ok := c.files[p]; ok {
		return true
	}
	_, ok := c.dirs[p]
	return ok
}

func (c *corpus) hasSlug(slug string) bool {
	_, ok := c.slugs[slug]
	return ok
}

func (l *Linter) loadCorpus(ctx context.Context) (*corpus, error) {
	notePaths, err := l.docs.ListPaths(ctx, ".", interfaces.LoadOptions{})
	if err != nil {
		return nil, fmt.Errorf("lint: list notes: %w", err)
	}
	allPaths, err := l.docs.ListPaths(ctx, ".", interfaces.LoadOptions{Include: []string{"**"}})
	if err != nil {
		return nil, fmt.Errorf("lint: list files: %w", err)
	}

	corp := &corpus{
		files: make(map[string]struct{}, len(allPaths)),
		dirs:  map[string]struct{}{},
		slugs: make(map[string]struct{}, len(notePaths)),
	}

	for _, p := range allPaths {
		corp.files[p] = struct{}{}
		for dir := path.Dir(p); dir != "." && dir != "/"; dir = path.Dir(dir) {
			corp.dirs[dir] = struct{}{}
		}
	}

	for _, p := range notePaths {
		doc, err := l.docs.Load(ctx, p, interfaces.LoadOptions{Parser: l.parser})
		if err != nil {
			corp.failures = append(corp.failures, loadFailure{path: p, err: err})
			l.logger.Debug("lint.load_failed", "path", p, "error", err)
			continue
		}
		corp.docs = append(corp.docs, doc)
		if slug, err := markdown.DeriveSlug(doc); err == nil {
			corp.slugs[slug] = struct{}{}
		}
	}

	return corp, nil
}

// ruleContext carries the per-document state shared by all rules: the split
// body, the fence map, and the emit sink bound to the active rule.
type ruleContext struct {
	linter   *Linter
	doc      *interfaces.Document
	corpus   *corpus
	lines    []string
	prose    []bool
	fences   []fenceBlock
	ruleID   string
	severity interfaces.Severity
	findings *[]interfaces.Finding
}

// fileLine translates a 1-based body line into the matching file line,
// offset past the front matter block.
func (rc *ruleContext) fileLine(bodyLine int) int {
	if bodyLine < 1 {
		bodyLine = 1
	}
	return rc.doc.BodyLine + bodyLine - 1
}

func (rc *ruleContext) emit(line int, format string, args ...any) {
	rc.emitAs(rc.severity, line, format, args...)
}

func (rc *ruleContext) warn(line int, format string, args ...any) {
	rc.emitAs(interfaces.SeverityWarning, line, format, args...)
}

func (rc *ruleContext) emitAs(level interfaces.Severity, line int, format string, args ...any) {
	if line < 1 {
		line = 1
	}
	*rc.findings = append(*rc.findings, interfaces.Finding{
		Rule:     rc.ruleID,
		Severity: level,
		Path:     rc.doc.FilePath,
		Line:     line,
		Message:  fmt.Sprintf(format, args...),
	})
}

func defaultSchemes() map[string]struct{} {
	return map[string]struct{}{
		"http":   {},
		"https":  {},
		"mailto": {},
	}
}

func sortFindings(findings []interfaces.Finding) {
	sort.Slice(findings, func(i, j int) bool {
		a, b := findings[i], findings[j]
		if a.Path != b.Path {
			return a.Path < b.Path
		}
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		if a.Rule != b.Rule {
			return a.Rule < b.Rule
		}
		return a.Message < b.Message
	})
}

func splitLines(body []byte) []string {
	lines := strings.Split(string(body), "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	return lines
}
