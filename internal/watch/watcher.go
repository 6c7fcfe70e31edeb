package watch

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/goliatone/go-til/internal/logging"
	"github.com/goliatone/go-til/internal/markdown"
	"github.com/goliatone/go-til/pkg/interfaces"
)

// DefaultDebounce is how long a path must stay quiet before its change is
// delivered. Editors that write through temp files emit several events per
// save; the window collapses them into one.
const DefaultDebounce = 250 * time.Millisecond

// flushInterval is how often the run loop sweeps the pending map for
// settled changes.
const flushInterval = 100 * time.Millisecond

// Op identifies the kind of filesystem change observed under the notes root.
type Op string

const (
	OpCreate Op = "create"
	OpWrite  Op = "write"
	OpRemove Op = "remove"
	OpRename Op = "rename"
)

// Event is a settled change. Path is slash-relative to the watched root so
// handlers can feed it straight to the markdown loader. Path names a
// directory only when a whole watched subtree was removed or renamed.
type Event struct {
	Path string
	Op   Op
}

// Handler receives each settled batch, ordered by path. The watcher blocks
// on the handler, so slow handlers delay later batches rather than piling
// up goroutines.
type Handler func(ctx context.Context, events []Event)

// Watcher turns raw fsnotify traffic on a notes tree into debounced batches
// of note-file events. It shares the loader's include and ignore globs so a
// change the loader would skip never reaches the handler.
type Watcher struct {
	root     string
	handler  Handler
	include  []string
	ignore   []string
	debounce time.Duration
	logger   interfaces.Logger
	now      func() time.Time

	mu      sync.Mutex
	pending map[string]pendingChange
	dirs    map[string]struct{}

	ready chan struct{}
}

type pendingChange struct {
	op Op
	at time.Time
}

type Option func(*Watcher)

func WithLogger(logger interfaces.Logger) Option {
	return func(w *Watcher) {
		if logger != nil {
			w.logger = logger
		}
	}
}

func WithDebounce(window time.Duration) Option {
	return func(w *Watcher) {
		if window > 0 {
			w.debounce = window
		}
	}
}

// WithInclude replaces the default include globs.
func WithInclude(globs ...string) Option {
	return func(w *Watcher) {
		if normalized := markdown.NormalizeGlobs(globs); len(normalized) > 0 {
			w.include = normalized
		}
	}
}

// WithIgnore adds ignore globs on top of the loader defaults.
func WithIgnore(globs ...string) Option {
	return func(w *Watcher) {
		w.ignore = append(w.ignore, markdown.NormalizeGlobs(globs)...)
	}
}

func WithClock(clock func() time.Time) Option {
	return func(w *Watcher) {
		if clock != nil {
			w.now = clock
		}
	}
}

func NewWatcher(root string, handler Handler, opts ...Option) (*Watcher, error) {
	if strings.TrimSpace(root) == "" {
		return nil, errors.New("watch: root is required")
	}
	if handler == nil {
		return nil, errors.New("watch: handler is required")
	}
	w := &Watcher{
		root:     filepath.Clean(root),
		handler:  handler,
		include:  append([]string(nil), markdown.DefaultIncludeGlobs...),
		ignore:   append([]string(nil), markdown.DefaultIgnoreGlobs...),
		debounce: DefaultDebounce,
		logger:   logging.NoOp(),
		now:      time.Now,
		pending:  make(map[string]pendingChange),
		dirs:     make(map[string]struct{}),
		ready:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Ready is closed once the watch tree is armed and events are flowing.
func (w *Watcher) Ready() <-chan struct{} {
	return w.ready
}

// Run watches the root until the context is cancelled. It returns nil on
// cancellation and an error only when the watch cannot be established.
func (w *Watcher) Run(ctx context.Context) error {
	info, err := os.Stat(w.root)
	if err != nil {
		return fmt.Errorf("watch: root %s: %w", w.root, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("watch: root %s is not a directory", w.root)
	}

	notifier, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch: create notifier: %w", err)
	}
	defer notifier.Close()

	// Startup discovery only arms watches; existing notes are not changes.
	if _, err := w.armTree(notifier, w.root); err != nil {
		return err
	}
	close(w.ready)

	w.logger.Info("watch.started", "root", w.root, "debounce_ms", w.debounce.Milliseconds())

	ticker := time.NewTicker(flushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-notifier.Events:
			if !ok {
				return nil
			}
			w.handleEvent(notifier, event)
		case err, ok := <-notifier.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("watch.notifier_error", "error", err.Error())
		case <-ticker.C:
			w.flush(ctx)
		}
	}
}

func (w *Watcher) handleEvent(notifier *fsnotify.Watcher, event fsnotify.Event) {
	rel, ok := w.relative(event.Name)
	if !ok {
		return
	}

	// A new directory re-arms the watch and surfaces any notes that were
	// moved in with it, since fsnotify never reports their files.
	if event.Op.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if markdown.IgnoredDir(rel, w.ignore) {
				return
			}
			found, err := w.armTree(notifier, event.Name)
			if err != nil {
				w.logger.Warn("watch.arm_failed", "path", rel, "error", err.Error())
				return
			}
			for _, note := range found {
				w.record(note, OpCreate)
			}
			return
		}
	}

	op, ok := mapOp(event.Op)
	if !ok {
		return
	}

	// Remove and rename cannot be stat'ed, so a tracked directory going
	// away is recognized by its watch entry instead.
	if op == OpRemove || op == OpRename {
		if w.forgetDir(rel) {
			w.record(rel, op)
			return
		}
	}

	if !markdown.MatchesAny(rel, w.include) || markdown.MatchesAny(rel, w.ignore) {
		return
	}
	w.record(rel, op)
}

func mapOp(op fsnotify.Op) (Op, bool) {
	switch {
	case op.Has(fsnotify.Create):
		return OpCreate, true
	case op.Has(fsnotify.Write):
		return OpWrite, true
	case op.Has(fsnotify.Remove):
		return OpRemove, true
	case op.Has(fsnotify.Rename):
		return OpRename, true
	default:
		return "", false
	}
}

// record notes a change and restarts its settle window. Later ops coalesce
// with what is already pending: remove and rename supersede anything, and a
// write after a create keeps the create so handlers see the file as new.
func (w *Watcher) record(rel string, op Op) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if prev, exists := w.pending[rel]; exists {
		op = coalesce(prev.op, op)
	}
	w.pending[rel] = pendingChange{op: op, at: w.now()}
}

func coalesce(prev, next Op) Op {
	switch {
	case next == OpRemove || next == OpRename:
		return next
	case prev == OpCreate && next == OpWrite:
		return OpCreate
	case (prev == OpRemove || prev == OpRename) && next == OpCreate:
		return OpCreate
	default:
		return next
	}
}

// flush delivers every pending change that has settled past the debounce
// window as one sorted batch.
func (w *Watcher) flush(ctx context.Context) {
	now := w.now()
	w.mu.Lock()
	var batch []Event
	for path, change := range w.pending {
		if now.Sub(change.at) < w.debounce {
			continue
		}
		batch = append(batch, Event{Path: path, Op: change.op})
		delete(w.pending, path)
	}
	w.mu.Unlock()

	if len(batch) == 0 {
		return
	}
	sort.Slice(batch, func(i, j int) bool { return batch[i].Path < batch[j].Path })

	w.logger.Debug("watch.batch", "event_count", len(batch))
	w.handler(ctx, batch)
}

// armTree watches dir and every non-ignored directory below it, returning
// the relative paths of note files it passed on the way.
func (w *Watcher) armTree(notifier *fsnotify.Watcher, dir string) ([]string, error) {
	var found []string
	err := filepath.WalkDir(dir, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, ok := w.relative(path)
		if !ok {
			return nil
		}
		if entry.IsDir() {
			if rel != "." && markdown.IgnoredDir(rel, w.ignore) {
				return filepath.SkipDir
			}
			if err := notifier.Add(path); err != nil {
				return fmt.Errorf("watch: add %s: %w", path, err)
			}
			w.mu.Lock()
			w.dirs[rel] = struct{}{}
			w.mu.Unlock()
			return nil
		}
		if markdown.MatchesAny(rel, w.include) && !markdown.MatchesAny(rel, w.ignore) {
			found = append(found, rel)
		}
		return nil
	})
	if err != nil {
		// The tree can disappear mid-walk when an editor swaps directories.
		if errors.Is(err, fs.ErrNotExist) {
			return found, nil
		}
		return nil, err
	}
	return found, nil
}

// forgetDir drops rel and everything below it from the tracked directory
// set, reporting whether rel was tracked at all.
func (w *Watcher) forgetDir(rel string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, tracked := w.dirs[rel]; !tracked {
		return false
	}
	prefix := rel + "/"
	for dir := range w.dirs {
		if dir == rel || strings.HasPrefix(dir, prefix) {
			delete(w.dirs, dir)
		}
	}
	return true
}

// relative maps an absolute event path onto the slash-relative form the
// loader globs expect. The root itself maps to ".".
func (w *Watcher) relative(path string) (string, bool) {
	rel, err := filepath.Rel(w.root, filepath.Clean(path))
	if err != nil {
		return "", false
	}
	rel = filepath.ToSlash(rel)
	if rel == ".." || strings.HasPrefix(rel, "../") {
		return "", false
	}
	return rel, true
}
