package site

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
	"time"

	gotheme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-til/domain"
	"github.com/goliatone/go-til/internal/nav"
	"github.com/goliatone/go-til/note"
	"github.com/goliatone/go-til/pkg/interfaces"
)

// Logical template names resolved through the theme manifest. Themes may
// remap them; these are the fallbacks.
const (
	templateNote     = "note.html"
	templateCategory = "category.html"
	templateHome     = "index.html"
)

// buildContext holds everything a build renders from: the selected notes
// with their rendered bodies, category groupings, pre-resolved navigation
// trees, and the page specs derived from them.
type buildContext struct {
	generatedAt time.Time
	options     BuildOptions
	theme       *gotheme.Selection
	notes       []*NoteView // newest first
	categories  []*categoryGroup
	// trees keys navigation trees by active category; "" is the home tree.
	trees      map[string]*nav.Tree
	pages      []*pageSpec
	loadErrors []error
}

// treeFor picks the navigation tree matching the page's active state.
func (bc *buildContext) treeFor(spec *pageSpec) *nav.Tree {
	if spec != nil && spec.category != "" {
		if tree, ok := bc.trees[spec.category]; ok {
			return tree
		}
	}
	return bc.trees[""]
}

type categoryGroup struct {
	name    string
	display string
	route   string
	notes   []*NoteView // title ascending
}

type pageSpec struct {
	kind     string
	route    string
	output   string
	template string
	title    string
	category string
	note     *NoteView
	notes    []*NoteView
	metadata DependencyMetadata
}

func (s *Service) loadContext(ctx context.Context, opts BuildOptions) (*buildContext, error) {
	selection, err := s.themes.Selection()
	if err != nil {
		return nil, err
	}

	records, err := s.deps.Notes.List(ctx, note.WithLinks())
	if err != nil {
		return nil, fmt.Errorf("site: list notes: %w", err)
	}

	bc := &buildContext{
		generatedAt: s.clock().UTC(),
		options:     opts,
		theme:       selection,
		trees:       map[string]*nav.Tree{},
	}

	for _, record := range records {
		if record == nil || !includeNote(record, opts) {
			continue
		}
		view, err := s.noteView(ctx, record)
		if err != nil {
			bc.loadErrors = append(bc.loadErrors, err)
			continue
		}
		bc.notes = append(bc.notes, view)
	}

	sortNotesNewestFirst(bc.notes)

	bc.categories, err = s.groupNotes(bc.notes)
	if err != nil {
		return nil, err
	}
	if err := s.resolveTrees(ctx, bc); err != nil {
		return nil, err
	}

	bc.pages = s.buildPageSpecs(bc, themeFingerprint(selection))
	return bc, nil
}

// includeNote keeps visible notes and, when requested, notes scheduled for a
// future publish time.
func includeNote(record *note.Note, opts BuildOptions) bool {
	if record.IsVisible {
		return true
	}
	return opts.IncludeScheduled && record.EffectiveStatus == domain.StatusScheduled
}

// noteView loads the note's Markdown source and resolves its route. The
// rendered body always comes from the file, so edits show up even before a
// sync refreshes the index row.
func (s *Service) noteView(ctx context.Context, record *note.Note) (*NoteView, error) {
	doc, err := s.deps.Markdown.Load(ctx, record.SourcePath, interfaces.LoadOptions{})
	if err != nil {
		return nil, fmt.Errorf("site: load note %q from %s: %w", record.Slug, record.SourcePath, err)
	}

	url, err := s.deps.Nav.NoteURL(record.Category, record.Slug)
	if err != nil {
		return nil, fmt.Errorf("site: resolve route for note %q: %w", record.Slug, err)
	}

	excerpt := strings.TrimSpace(doc.Excerpt)
	if excerpt == "" && record.Summary != nil {
		excerpt = strings.TrimSpace(*record.Summary)
	}

	return &NoteView{
		Note:     record,
		URL:      url,
		HTML:     string(doc.BodyHTML),
		Excerpt:  excerpt,
		checksum: hex.EncodeToString(doc.Checksum),
		modified: maxTime(record.UpdatedAt, doc.LastModified),
	}, nil
}

func (s *Service) groupNotes(views []*NoteView) ([]*categoryGroup, error) {
	byName := map[string]*categoryGroup{}
	for _, view := range views {
		name := strings.ToLower(strings.TrimSpace(view.Note.Category))
		if name == "" {
			name = "notes"
		}
		group, ok := byName[name]
		if !ok {
			group = &categoryGroup{name: name, display: displayCategory(name)}
			byName[name] = group
		}
		group.notes = append(group.notes, view)
	}

	names := make([]string, 0, len(byName))
	for name := range byName {
		names = append(names, name)
	}
	sort.Strings(names)

	groups := make([]*categoryGroup, 0, len(names))
	for _, name := range names {
		group := byName[name]
		url, err := s.deps.Nav.CategoryURL(group.name)
		if err != nil {
			return nil, fmt.Errorf("site: resolve route for category %q: %w", group.name, err)
		}
		group.route = routePath(url)

		sort.SliceStable(group.notes, func(i, j int) bool {
			a, b := group.notes[i].Note, group.notes[j].Note
			if a.Title == b.Title {
				return a.Slug < b.Slug
			}
			return a.Title < b.Title
		})
		groups = append(groups, group)
	}
	return groups, nil
}

// resolveTrees resolves one navigation tree per distinct active state so
// concurrent page renders never share mutable tree state.
func (s *Service) resolveTrees(ctx context.Context, bc *buildContext) error {
	home, err := s.deps.Nav.Resolve(ctx, nav.NavOptions{ActivePath: "/"})
	if err != nil {
		return fmt.Errorf("site: resolve navigation: %w", err)
	}
	bc.trees[""] = home

	for _, group := range bc.categories {
		tree, err := s.deps.Nav.Resolve(ctx, nav.NavOptions{ActiveCategory: group.name})
		if err != nil {
			return fmt.Errorf("site: resolve navigation for %q: %w", group.name, err)
		}
		bc.trees[group.name] = tree
	}
	return nil
}

func (s *Service) buildPageSpecs(bc *buildContext, fingerprint string) []*pageSpec {
	specs := make([]*pageSpec, 0, len(bc.notes)+len(bc.categories)+1)
	specs = append(specs, s.homePageSpec(bc, fingerprint))
	for _, group := range bc.categories {
		specs = append(specs, s.categoryPageSpec(bc, group, fingerprint))
	}
	for _, view := range bc.notes {
		specs = append(specs, s.notePageSpec(bc, view, fingerprint))
	}
	return specs
}

func (s *Service) homePageSpec(bc *buildContext, fingerprint string) *pageSpec {
	template := templateName(bc.theme, "home", templateHome)
	sources := map[string]string{
		"site":     joinParts(s.cfg.Title, s.cfg.Description, s.cfg.BaseURL),
		"theme":    fingerprint,
		"template": template,
	}
	modified := collectNoteSources(sources, bc.notes)

	return &pageSpec{
		kind:     PageKindHome,
		route:    "/",
		output:   buildOutputPath("/"),
		template: template,
		title:    s.cfg.Title,
		notes:    bc.notes,
		metadata: DependencyMetadata{
			Sources:      sources,
			Hash:         hashSources(sources),
			LastModified: modified,
		},
	}
}

func (s *Service) categoryPageSpec(bc *buildContext, group *categoryGroup, fingerprint string) *pageSpec {
	template := templateName(bc.theme, "category", templateCategory)
	sources := map[string]string{
		"category": group.name,
		"theme":    fingerprint,
		"template": template,
	}
	modified := collectNoteSources(sources, group.notes)

	return &pageSpec{
		kind:     PageKindCategory,
		route:    group.route,
		output:   buildOutputPath(group.route),
		template: template,
		title:    group.display,
		category: group.name,
		notes:    group.notes,
		metadata: DependencyMetadata{
			Sources:      sources,
			Hash:         hashSources(sources),
			LastModified: modified,
		},
	}
}

func (s *Service) notePageSpec(bc *buildContext, view *NoteView, fingerprint string) *pageSpec {
	record := view.Note
	template := templateName(bc.theme, "note", templateNote)
	sources := map[string]string{
		"note:" + record.Slug: noteSource(view),
		"theme":               fingerprint,
		"template":            template,
	}

	return &pageSpec{
		kind:     PageKindNote,
		route:    routePath(view.URL),
		output:   buildOutputPath(routePath(view.URL)),
		template: template,
		title:    record.Title,
		category: strings.ToLower(strings.TrimSpace(record.Category)),
		note:     view,
		metadata: DependencyMetadata{
			Sources:      sources,
			Hash:         hashSources(sources),
			LastModified: view.modified,
		},
	}
}

// collectNoteSources folds each note into the source map and returns the
// newest modification time among them.
func collectNoteSources(sources map[string]string, views []*NoteView) time.Time {
	var modified time.Time
	for _, view := range views {
		sources["note:"+view.Note.Slug] = noteSource(view)
		modified = maxTime(modified, view.modified)
	}
	return modified
}

func noteSource(view *NoteView) string {
	record := view.Note
	return joinParts(
		record.ID.String(),
		record.Status,
		view.checksum,
		record.UpdatedAt.UTC().Format(time.RFC3339Nano),
	)
}

func templateName(selection *gotheme.Selection, key, fallback string) string {
	if selection == nil {
		return fallback
	}
	return selection.Template(key, fallback)
}

// routePath reduces a resolved URL to its path component so route keys stay
// host independent.
func routePath(url string) string {
	url = strings.TrimSpace(url)
	if idx := strings.Index(url, "://"); idx >= 0 {
		rest := url[idx+3:]
		if slash := strings.Index(rest, "/"); slash >= 0 {
			return rest[slash:]
		}
		return "/"
	}
	if url == "" {
		return "/"
	}
	return url
}

func displayCategory(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return "Notes"
	}
	return strings.ToUpper(name[:1]) + name[1:]
}

func sortNotesNewestFirst(views []*NoteView) {
	sort.SliceStable(views, func(i, j int) bool {
		a := notePublishTime(views[i].Note)
		b := notePublishTime(views[j].Note)
		if a.Equal(b) {
			return views[i].Note.Slug < views[j].Note.Slug
		}
		return a.After(b)
	})
}

func notePublishTime(n *note.Note) time.Time {
	if n.PublishedAt != nil && !n.PublishedAt.IsZero() {
		return *n.PublishedAt
	}
	return n.CreatedAt
}

// Hashing helpers ------------------------------------------------------------

func joinParts(parts ...string) string {
	return strings.Join(parts, "|")
}

func hashSources(sources map[string]string) string {
	if len(sources) == 0 {
		return ""
	}
	keys := make([]string, 0, len(sources))
	for key := range sources {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	hasher := sha256.New()
	for _, key := range keys {
		hasher.Write([]byte(key))
		hasher.Write([]byte("="))
		hasher.Write([]byte(sources[key]))
		hasher.Write([]byte{0})
	}
	return hex.EncodeToString(hasher.Sum(nil))
}

func computeHash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

func maxTime(times ...time.Time) time.Time {
	var max time.Time
	for _, t := range times {
		if t.After(max) {
			max = t
		}
	}
	return max
}
