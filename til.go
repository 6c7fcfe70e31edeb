package til

import (
	"context"

	"github.com/goliatone/go-til/internal/di"
	"github.com/goliatone/go-til/internal/index"
	"github.com/goliatone/go-til/internal/jobs"
	"github.com/goliatone/go-til/internal/nav"
	"github.com/goliatone/go-til/internal/site"
	"github.com/goliatone/go-til/internal/watch"
	"github.com/goliatone/go-til/note"
	"github.com/goliatone/go-til/pkg/interfaces"
)

// NoteService exports the note index contract for consumers of the til package.
type NoteService = note.Service

// MarkdownService exports the Markdown file workflow contract.
type MarkdownService = interfaces.MarkdownService

// LintService exports the corpus verification contract.
type LintService = interfaces.Linter

// IndexService exports the README and category digest builder.
type IndexService = *index.Service

// NavService exports the navigation resolver.
type NavService = *nav.Service

// SiteService exports the static site builder.
type SiteService = *site.Service

// PublishWorker exports the worker that applies due status transitions.
type PublishWorker = jobs.Worker

// AuditRecorder exports the journal publish transitions are recorded into.
type AuditRecorder = jobs.AuditRecorder

// Watcher exports the notes-tree filesystem watcher.
type Watcher = watch.Watcher

// WatchEvent is a single coalesced filesystem change.
type WatchEvent = watch.Event

// WatchHandler receives debounced change batches.
type WatchHandler = watch.Handler

// Module represents the top level TIL runtime façade.
type Module struct {
	container *di.Container
}

// New constructs a TIL module using the provided configuration and optional DI overrides.
func New(cfg Config, opts ...di.Option) (*Module, error) {
	container, err := di.NewContainer(cfg, opts...)
	if err != nil {
		return nil, err
	}
	return &Module{container: container}, nil
}

// Container exposes the underlying DI container for advanced integrations.
func (m *Module) Container() *di.Container {
	return m.container
}

// Notes returns the configured note service.
func (m *Module) Notes() NoteService {
	return m.container.NoteService()
}

// Markdown returns the Markdown file workflow service.
func (m *Module) Markdown() MarkdownService {
	return m.container.MarkdownService()
}

// Linter returns the corpus verification service.
func (m *Module) Linter() LintService {
	return m.container.Linter()
}

// Index returns the README and category digest builder.
func (m *Module) Index() IndexService {
	return m.container.IndexService()
}

// Nav returns the navigation resolver.
func (m *Module) Nav() NavService {
	return m.container.NavService()
}

// Site returns the static site builder. Operations fail with
// site.ErrServiceDisabled when the site feature is off.
func (m *Module) Site() SiteService {
	return m.container.SiteService()
}

// Scheduler returns the scheduler used for publish automation.
func (m *Module) Scheduler() interfaces.Scheduler {
	return m.container.Scheduler()
}

// Publisher returns the worker that applies due publish and unpublish
// transitions to the note index.
func (m *Module) Publisher() *PublishWorker {
	return m.container.PublishWorker()
}

// Audit returns the journal of applied publish transitions.
func (m *Module) Audit() AuditRecorder {
	if m == nil || m.container == nil {
		return nil
	}
	return m.container.AuditRecorder()
}

// Watcher builds a filesystem watcher over the notes tree delivering
// debounced change batches to the handler. The watch feature must be enabled.
func (m *Module) Watcher(handler WatchHandler) (*Watcher, error) {
	return m.container.Watcher(handler)
}

// Migrate applies the embedded schema migrations to the configured database.
// It is a no-op for the memory driver.
func (m *Module) Migrate(ctx context.Context) error {
	return m.container.ApplyMigrations(ctx, migrationsFS)
}

// RegisterCommands registers the note, lint, site, and readme command
// handlers with a host command bus.
func (m *Module) RegisterCommands(reg di.CommandRegistry) error {
	return m.container.RegisterCommands(reg)
}

// RegisterCrons wires the recurring sync and build jobs into a host
// scheduler using the configured cron expressions.
func (m *Module) RegisterCrons(registrar di.CronRegistrar) error {
	return m.container.RegisterCrons(registrar)
}
