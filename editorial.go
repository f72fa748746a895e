// Package editorial is the publication lifecycle engine for a departmental
// content site. It manages news articles and research projects through their
// editorial states: validation, slugs, optimistic version tokens, autosave,
// timed publication, and markdown import.
package editorial

import (
	"fmt"
	"time"

	"github.com/deptworks/go-editorial/internal/autosave"
	"github.com/deptworks/go-editorial/internal/catalog"
	"github.com/deptworks/go-editorial/internal/domain"
	"github.com/deptworks/go-editorial/internal/jobs"
	"github.com/deptworks/go-editorial/internal/lifecycle"
	"github.com/deptworks/go-editorial/internal/logging"
	"github.com/deptworks/go-editorial/internal/logging/gologger"
	"github.com/deptworks/go-editorial/internal/markdown"
	"github.com/deptworks/go-editorial/internal/scheduler"
	"github.com/deptworks/go-editorial/internal/session"
	validationrules "github.com/deptworks/go-editorial/internal/validation"
	"github.com/deptworks/go-editorial/internal/workflow"
	"github.com/deptworks/go-editorial/pkg/interfaces"
)

// Service exports the lifecycle service contract for consumers of the editorial package.
type Service = lifecycle.Service

// CreateRequest exports the item creation request.
type CreateRequest = lifecycle.CreateRequest

// TransitionExtra exports the per-transition date payload.
type TransitionExtra = lifecycle.TransitionExtra

// Draft exports the editable item snapshot.
type Draft = domain.Draft

// Item exports the persisted catalog record.
type Item = catalog.Item

// Kind exports the content kind enum.
type Kind = domain.Kind

// Status exports the lifecycle status enum.
type Status = domain.Status

// VersionToken exports the opaque optimistic concurrency token.
type VersionToken = domain.VersionToken

// Session exports the explicit editing session.
type Session = session.Session

// Repository exports the catalog persistence contract.
type Repository = catalog.Repository

// Importer exports the markdown importer.
type Importer = markdown.Importer

// Debouncer exports the autosave debouncer.
type Debouncer = autosave.Debouncer

// Worker exports the due-job publication worker.
type Worker = jobs.Worker

// Kind and status values re-exported for hosts.
const (
	KindNews     = domain.KindNews
	KindResearch = domain.KindResearch

	StatusDraft     = domain.StatusDraft
	StatusScheduled = domain.StatusScheduled
	StatusPublished = domain.StatusPublished
	StatusActive    = domain.StatusActive
	StatusCompleted = domain.StatusCompleted
	StatusArchived  = domain.StatusArchived
)

// OpenSession starts an editing session for the given actor.
var OpenSession = session.New

// Module is the top level editorial runtime facade.
type Module struct {
	cfg      Config
	provider interfaces.LoggerProvider
	repo     catalog.Repository
	store    interfaces.Scheduler
	engine   *workflow.Engine
	service  lifecycle.Service
	worker   *jobs.Worker
	importer *markdown.Importer
	clock    func() time.Time
}

// Option overrides module wiring.
type Option func(*Module)

// WithRepository swaps the catalog repository. Hosts typically provide the
// bun-backed repository; tests lean on the in-memory one.
func WithRepository(repo catalog.Repository) Option {
	return func(m *Module) {
		if repo != nil {
			m.repo = repo
		}
	}
}

// WithScheduler swaps the publication job store.
func WithScheduler(store interfaces.Scheduler) Option {
	return func(m *Module) {
		if store != nil {
			m.store = store
		}
	}
}

// WithLoggerProvider swaps the logger provider built from LoggingConfig.
func WithLoggerProvider(provider interfaces.LoggerProvider) Option {
	return func(m *Module) {
		if provider != nil {
			m.provider = provider
		}
	}
}

// WithClock overrides time for deterministic tests.
func WithClock(clock func() time.Time) Option {
	return func(m *Module) {
		if clock != nil {
			m.clock = clock
		}
	}
}

// New constructs the editorial module from configuration.
func New(cfg Config, opts ...Option) (*Module, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	m := &Module{
		cfg:   cfg,
		clock: time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(m)
		}
	}

	if m.provider == nil {
		provider, err := gologger.NewProvider(gologger.Config{
			Level:     cfg.Logging.Level,
			Format:    cfg.Logging.Format,
			AddSource: cfg.Logging.AddSource,
		})
		if err != nil {
			return nil, err
		}
		m.provider = provider
	}

	if m.repo == nil {
		m.repo = catalog.NewMemoryRepository(catalog.WithMemoryClock(m.clock))
	}

	if m.store == nil {
		if cfg.Features.Scheduling {
			m.store = scheduler.NewInMemory(
				scheduler.WithClock(m.clock),
				scheduler.WithDefaultMaxAttempts(cfg.Scheduler.MaxAttempts),
			)
		} else {
			m.store = scheduler.NewNoOp()
		}
	}

	m.engine = workflow.New(workflow.WithClock(m.clock))

	serviceOpts := []lifecycle.Option{
		lifecycle.WithClock(m.clock),
		lifecycle.WithLogger(logging.LifecycleLogger(m.provider)),
	}
	if cfg.Features.Scheduling {
		serviceOpts = append(serviceOpts, lifecycle.WithScheduler(m.store))
	}
	if cfg.Features.MetadataSchemas {
		schemas := map[domain.Kind]map[string]any{
			domain.KindNews:     cfg.Content.News.MetadataSchema,
			domain.KindResearch: cfg.Content.Research.MetadataSchema,
		}
		for kind, schema := range schemas {
			if schema == nil {
				continue
			}
			if err := validationrules.ValidateSchema(schema); err != nil {
				return nil, fmt.Errorf("%s metadata schema: %w", kind, err)
			}
			serviceOpts = append(serviceOpts, lifecycle.WithMetadataSchema(kind, schema))
		}
	}
	m.service = lifecycle.New(m.repo, m.engine, serviceOpts...)

	if cfg.Features.Scheduling {
		m.worker = jobs.NewWorker(m.store, m.repo,
			jobs.WithClock(m.clock),
			jobs.WithBatchSize(cfg.Scheduler.WorkerBatchSize),
			jobs.WithLogger(logging.JobsLogger(m.provider)),
		)
	}

	m.importer = markdown.NewImporter(m.service,
		markdown.WithLogger(logging.MarkdownLogger(m.provider)),
	)

	return m, nil
}

// Content returns the configured lifecycle service.
func (m *Module) Content() Service {
	return m.service
}

// Repository returns the catalog repository backing the module.
func (m *Module) Repository() Repository {
	return m.repo
}

// Scheduler returns the job store used for publish automation.
func (m *Module) Scheduler() interfaces.Scheduler {
	return m.store
}

// WorkflowEngine returns the configured workflow engine.
func (m *Module) WorkflowEngine() *workflow.Engine {
	return m.engine
}

// PublishWorker returns the due-job worker, or nil when scheduling is disabled.
func (m *Module) PublishWorker() *Worker {
	return m.worker
}

// Markdown returns the markdown importer.
func (m *Module) Markdown() *Importer {
	return m.importer
}

// NewAutosave builds a per-session debouncer that persists drafts through the
// supplied save function. When sess is non-nil the debouncer closes together
// with the session.
func (m *Module) NewAutosave(sess *Session, save autosave.SaveFunc, opts ...autosave.Option) *Debouncer {
	all := []autosave.Option{
		autosave.WithLogger(logging.AutosaveLogger(m.provider)),
	}
	if m.cfg.Autosave.Interval > 0 {
		all = append(all, autosave.WithInterval(m.cfg.Autosave.Interval))
	}
	all = append(all, opts...)
	deb := autosave.New(save, all...)
	if sess != nil {
		sess.OnClose(deb.Close)
	}
	return deb
}

// Logger returns a named module logger from the configured provider.
func (m *Module) Logger(name string) interfaces.Logger {
	return logging.ModuleLogger(m.provider, name)
}
