package index

import (
	"errors"
	"time"

	"github.com/goliatone/go-til/internal/logging"
	"github.com/goliatone/go-til/note"
	"github.com/goliatone/go-til/pkg/interfaces"
)

// Managed-block markers. Everything between them belongs to the generator;
// everything outside is the author's.
const (
	MarkerBegin = "<!-- til:begin -->"
	MarkerEnd   = "<!-- til:end -->"
)

var (
	// ErrNotesServiceRequired is returned by NewService without a note index.
	ErrNotesServiceRequired = errors.New("index: notes service is required")
	// ErrCategoryRequired is returned when a category page is requested
	// without a category name.
	ErrCategoryRequired = errors.New("index: category is required")
)

// ReadmeOptions shape the generated README digest.
type ReadmeOptions struct {
	// Title is the top-level heading, "TIL" when empty.
	Title string
	// Intro renders as a blockquote under the title.
	Intro string
	// IncludeDrafts lists notes that are not currently visible.
	IncludeDrafts bool
	// LinkPrefix is prepended to note paths, for a README living above the
	// notes directory.
	LinkPrefix string
}

// Service builds README and category digests from the note index.
type Service struct {
	notes  note.Service
	clock  func() time.Time
	logger interfaces.Logger
}

// Option customises the service.
type Option func(*Service)

// WithClock overrides the timestamp source.
func WithClock(clock func() time.Time) Option {
	return func(s *Service) {
		if clock != nil {
			s.clock = clock
		}
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

// NewService constructs an index service over the supplied note index.
func NewService(notes note.Service, opts ...Option) (*Service, error) {
	if notes == nil {
		return nil, ErrNotesServiceRequired
	}

	svc := &Service{
		notes:  notes,
		clock:  time.Now,
		logger: logging.NoOp(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(svc)
		}
	}
	return svc, nil
}
