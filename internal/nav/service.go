package nav

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	urlkit "github.com/goliatone/go-urlkit"

	"github.com/goliatone/go-til/internal/logging"
	"github.com/goliatone/go-til/note"
	"github.com/goliatone/go-til/pkg/interfaces"
)

var (
	// ErrNotesServiceRequired is returned by NewService without a note index.
	ErrNotesServiceRequired = errors.New("nav: notes service is required")
	// ErrRouteManagerRequired is returned by NewService without a route table.
	ErrRouteManagerRequired = errors.New("nav: route manager is required")
)

// Service resolves navigation trees and page URLs from the note index and
// the configured route table.
type Service struct {
	notes  note.Service
	routes *routeResolver

	homeLabel     string
	homeRoute     string
	categoryRoute string
	noteRoute     string
	pinned        []Pinned

	logger interfaces.Logger
}

// Option customises the service.
type Option func(*Service)

// WithGroup points the resolver at a different route group. Dotted paths
// select nested groups.
func WithGroup(path string) Option {
	return func(s *Service) {
		if path = strings.TrimSpace(path); path != "" {
			s.routes.group = path
		}
	}
}

// WithRoutes overrides the route names used for category and note URLs.
func WithRoutes(category, note string) Option {
	return func(s *Service) {
		if category = strings.TrimSpace(category); category != "" {
			s.categoryRoute = category
		}
		if note = strings.TrimSpace(note); note != "" {
			s.noteRoute = note
		}
	}
}

// WithHome overrides the home entry label.
func WithHome(label string) Option {
	return func(s *Service) {
		if label = strings.TrimSpace(label); label != "" {
			s.homeLabel = label
		}
	}
}

// WithPinned appends hand-configured links after the category entries.
func WithPinned(links ...Pinned) Option {
	return func(s *Service) {
		s.pinned = append(s.pinned, links...)
	}
}

// WithLogger overrides the no-op logger.
func WithLogger(logger interfaces.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewService constructs a navigation service over the note index and route
// manager.
func NewService(notes note.Service, manager *urlkit.RouteManager, opts ...Option) (*Service, error) {
	if notes == nil {
		return nil, ErrNotesServiceRequired
	}
	if manager == nil {
		return nil, ErrRouteManagerRequired
	}

	svc := &Service{
		notes:         notes,
		routes:        newRouteResolver(manager, "site"),
		homeLabel:     "Home",
		homeRoute:     "home",
		categoryRoute: "category",
		noteRoute:     "note",
		logger:        logging.NoOp(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(svc)
		}
	}
	return svc, nil
}

// Resolve builds the navigation tree: home, one entry per category holding
// visible notes, then pinned links. Ordering is stable across runs.
func (s *Service) Resolve(ctx context.Context, opts NavOptions) (*Tree, error) {
	records, err := s.notes.List(ctx, note.VisibleOnly())
	if err != nil {
		return nil, err
	}

	counts := map[string]int{}
	for _, record := range records {
		counts[record.Category]++
	}
	names := make([]string, 0, len(counts))
	for name := range counts {
		names = append(names, name)
	}
	sort.Strings(names)

	marker := newActiveMarker(opts)
	items := make([]*Item, 0, len(names)+len(s.pinned)+1)

	home := &Item{Label: s.homeLabel, URL: s.HomeURL()}
	home.Active = marker.matches("", home.URL)
	items = append(items, home)

	for _, name := range names {
		url, err := s.CategoryURL(name)
		if err != nil {
			return nil, fmt.Errorf("nav: resolve category %q: %w", name, err)
		}
		items = append(items, &Item{
			Label:    displayLabel(name),
			URL:      url,
			Count:    counts[name],
			Active:   marker.matches(name, url),
			category: name,
		})
	}

	for _, link := range s.pinned {
		label := strings.TrimSpace(link.Label)
		url := strings.TrimSpace(link.URL)
		if label == "" || url == "" {
			continue
		}
		items = append(items, &Item{
			Label:    label,
			URL:      url,
			Active:   marker.matches("", url),
			External: strings.Contains(url, "://"),
		})
	}

	s.logger.Debug("nav.resolve", "items", len(items), "categories", len(names))
	return &Tree{Items: items}, nil
}

// HomeURL returns the home page URL, "/" when the route table has no home
// route.
func (s *Service) HomeURL() string {
	url, err := s.routes.resolve(s.homeRoute, nil)
	if err != nil || url == "" {
		return "/"
	}
	return url
}

// CategoryURL builds the URL for a category listing page.
func (s *Service) CategoryURL(name string) (string, error) {
	return s.routes.resolve(s.categoryRoute, map[string]any{"category": name})
}

// NoteURL builds the URL for a single note page.
func (s *Service) NoteURL(category, slug string) (string, error) {
	return s.routes.resolve(s.noteRoute, map[string]any{
		"category": category,
		"slug":     slug,
	})
}

func displayLabel(name string) string {
	if name == "" {
		return ""
	}
	return strings.ToUpper(name[:1]) + name[1:]
}
