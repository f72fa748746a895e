// Package lifecycle orchestrates content operations: it is the single write
// path through which drafts are validated, slugs checked, workflow rules
// applied, and version-guarded commits performed.
package lifecycle

import (
	"context"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"

	"github.com/deptworks/go-editorial/internal/catalog"
	"github.com/deptworks/go-editorial/internal/domain"
	"github.com/deptworks/go-editorial/internal/logging"
	"github.com/deptworks/go-editorial/internal/scheduler"
	"github.com/deptworks/go-editorial/internal/session"
	"github.com/deptworks/go-editorial/internal/slugs"
	validationrules "github.com/deptworks/go-editorial/internal/validation"
	"github.com/deptworks/go-editorial/internal/workflow"
	"github.com/deptworks/go-editorial/pkg/interfaces"
)

// CreateRequest carries the inputs for a new content item. Items always start
// in draft regardless of the status on the supplied draft.
type CreateRequest struct {
	Kind  domain.Kind
	Draft domain.Draft

	// ID, when set, fixes the new item's identifier. Importers use this with
	// deterministic IDs so re-imports stay idempotent.
	ID uuid.UUID
}

// TransitionExtra carries timestamps supplied together with a transition
// request, folded into the draft before validation.
type TransitionExtra struct {
	ScheduleAt *time.Time
	StartAt    *time.Time
	FinishAt   *time.Time
}

// Service is the lifecycle orchestrator for both content kinds.
type Service interface {
	Create(ctx context.Context, sess *session.Session, req CreateRequest) (*catalog.Item, error)
	Update(ctx context.Context, sess *session.Session, kind domain.Kind, id uuid.UUID, draft *domain.Draft) (*catalog.Item, error)
	Transition(ctx context.Context, sess *session.Session, kind domain.Kind, id uuid.UUID, target domain.Status, extra TransitionExtra, token domain.VersionToken) (*catalog.Item, error)
	Duplicate(ctx context.Context, sess *session.Session, kind domain.Kind, id uuid.UUID) (*catalog.Item, error)
	Get(ctx context.Context, kind domain.Kind, id uuid.UUID) (*catalog.Item, error)
	GetBySlug(ctx context.Context, kind domain.Kind, slug string) (*catalog.Item, error)
	List(ctx context.Context, kind domain.Kind) ([]*catalog.Item, error)
	Delete(ctx context.Context, sess *session.Session, kind domain.Kind, id uuid.UUID) error
}

type service struct {
	repo      catalog.Repository
	checker   *slugs.Checker
	engine    *workflow.Engine
	scheduler interfaces.Scheduler
	schedule  bool
	logger    interfaces.Logger
	now       func() time.Time
	newID     func() uuid.UUID
	schemas   map[domain.Kind]map[string]any
}

// Option configures the orchestrator.
type Option func(*service)

// WithClock overrides the service clock, used mainly for tests.
func WithClock(clock func() time.Time) Option {
	return func(s *service) {
		if clock != nil {
			s.now = clock
		}
	}
}

// WithIDGenerator overrides how new item IDs are minted.
func WithIDGenerator(generator func() uuid.UUID) Option {
	return func(s *service) {
		if generator != nil {
			s.newID = generator
		}
	}
}

// WithScheduler attaches a job store and enables timed publication.
func WithScheduler(sched interfaces.Scheduler) Option {
	return func(s *service) {
		if sched != nil {
			s.scheduler = sched
			s.schedule = true
		}
	}
}

// WithLogger overrides the default module logger.
func WithLogger(logger interfaces.Logger) Option {
	return func(s *service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMetadataSchema declares the JSON schema applied to the kind's metadata.
func WithMetadataSchema(kind domain.Kind, schema map[string]any) Option {
	return func(s *service) {
		if schema != nil {
			s.schemas[kind] = schema
		}
	}
}

// New builds the orchestrator over a repository and workflow engine.
func New(repo catalog.Repository, engine *workflow.Engine, opts ...Option) Service {
	s := &service{
		repo:    repo,
		checker: slugs.NewChecker(repo),
		engine:  engine,
		logger:  logging.LifecycleLogger(nil),
		now:     time.Now,
		newID:   uuid.New,
		schemas: make(map[domain.Kind]map[string]any),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.engine == nil {
		s.engine = workflow.New(workflow.WithClock(s.now))
	}
	return s
}

func (s *service) Create(ctx context.Context, sess *session.Session, req CreateRequest) (*catalog.Item, error) {
	if err := session.Ensure(sess); err != nil {
		return nil, wrapSessionError(err)
	}
	kind, err := domain.ParseKind(string(req.Kind))
	if err != nil {
		return nil, fieldFailure("kind", "content kind must be news or research")
	}

	draft := req.Draft.Clone()
	if draft == nil {
		return nil, wrapSentinel(ErrNilDraft)
	}
	draft.Status = domain.StatusDraft
	if draft.Slug == "" {
		draft.Slug = slugs.Generate(draft.Title)
	}

	if errs := s.validate(draft, kind, domain.StatusDraft); len(errs) > 0 {
		return nil, wrapValidation(errs)
	}

	// Advisory check; the repository enforces uniqueness at commit.
	unique, err := s.checker.IsUnique(ctx, kind, draft.Slug, uuid.Nil)
	if err != nil {
		return nil, wrapRepositoryError(err)
	}
	if !unique {
		return nil, wrapRepositoryError(&catalog.SlugConflictError{Kind: kind, Slug: draft.Slug})
	}

	id := req.ID
	if id == uuid.Nil {
		id = s.newID()
	}
	now := s.now()
	record := &catalog.Item{
		ID:        id,
		Kind:      kind,
		Status:    string(domain.StatusDraft),
		CreatedBy: sess.ActorID(),
		UpdatedBy: sess.ActorID(),
		CreatedAt: now,
		UpdatedAt: now,
	}
	applyDraft(record, draft)

	created, err := s.repo.Create(ctx, record)
	if err != nil {
		return nil, wrapRepositoryError(err)
	}
	s.logger.Info("content created", "kind", kind, "item_id", created.ID, "slug", created.Slug)
	return created, nil
}

func (s *service) Update(ctx context.Context, sess *session.Session, kind domain.Kind, id uuid.UUID, draft *domain.Draft) (*catalog.Item, error) {
	if err := session.Ensure(sess); err != nil {
		return nil, wrapSessionError(err)
	}
	if draft == nil {
		return nil, wrapSentinel(ErrNilDraft)
	}
	if draft.Token.IsZero() {
		return nil, wrapSentinel(ErrTokenRequired)
	}

	existing, err := s.repo.GetByID(ctx, kind, id)
	if err != nil {
		return nil, wrapRepositoryError(err)
	}

	working := draft.Clone()
	// Status changes never travel through Update; they go through Transition.
	current := domain.NormalizeStatus(existing.Status)
	working.Status = current
	// Title edits re-derive the slug until the editor overrides it by hand.
	if working.Title != existing.Title {
		slugs.Refresh(working)
	}

	if errs := s.validate(working, kind, current); len(errs) > 0 {
		return nil, wrapValidation(errs)
	}

	unique, err := s.checker.IsUnique(ctx, kind, working.Slug, id)
	if err != nil {
		return nil, wrapRepositoryError(err)
	}
	if !unique {
		return nil, wrapRepositoryError(&catalog.SlugConflictError{Kind: kind, Slug: working.Slug})
	}

	record := existing.Clone()
	applyDraft(record, working)
	record.UpdatedBy = sess.ActorID()

	updated, err := s.repo.Update(ctx, record, draft.Token)
	if err != nil {
		if catalog.IsConflict(err) {
			s.logger.Warn("update rejected on stale token", "kind", kind, "item_id", id)
		}
		return nil, wrapRepositoryError(err)
	}

	// A scheduled article whose publish time moved gets its job replaced.
	if kind == domain.KindNews && current == domain.StatusScheduled && updated.PublishAt != nil {
		s.enqueuePublish(ctx, sess, updated)
	}

	s.logger.Debug("content updated", "kind", kind, "item_id", id)
	return updated, nil
}

func (s *service) Transition(ctx context.Context, sess *session.Session, kind domain.Kind, id uuid.UUID, target domain.Status, extra TransitionExtra, token domain.VersionToken) (*catalog.Item, error) {
	if err := session.Ensure(sess); err != nil {
		return nil, wrapSessionError(err)
	}
	if token.IsZero() {
		return nil, wrapSentinel(ErrTokenRequired)
	}
	target = domain.NormalizeStatus(string(target))
	if !domain.KnownStatus(kind, target) {
		return nil, fieldFailure("status", "target status is not defined for this content kind")
	}

	existing, err := s.repo.GetByID(ctx, kind, id)
	if err != nil {
		return nil, wrapRepositoryError(err)
	}
	current := domain.NormalizeStatus(existing.Status)

	draft := existing.Draft()
	foldExtra(draft, extra)
	draft.Status = target

	// The draft must satisfy the rules of the state it is entering before any
	// workflow or persistence effect.
	if errs := s.validate(draft, kind, target); len(errs) > 0 {
		return nil, wrapValidation(errs)
	}

	result, err := s.engine.Transition(ctx, interfaces.TransitionInput{
		EntityID:     id,
		EntityType:   string(kind),
		CurrentState: interfaces.WorkflowState(current),
		TargetState:  interfaces.WorkflowState(target),
		ActorID:      sess.ActorID(),
	})
	if err != nil {
		return nil, wrapTransitionError(err)
	}

	record := existing.Clone()
	applyDraft(record, draft)
	record.Status = string(target)
	record.UpdatedBy = sess.ActorID()
	s.applyTransitionEffects(record, kind, current, target)

	updated, err := s.repo.Update(ctx, record, token)
	if err != nil {
		if catalog.IsConflict(err) {
			s.logger.Warn("transition rejected on stale token", "kind", kind, "item_id", id, "target", target)
		}
		return nil, wrapRepositoryError(err)
	}

	s.syncPublishJob(ctx, sess, kind, current, target, updated)

	s.logger.Info("content transitioned",
		"kind", kind, "item_id", id, "transition", result.Transition,
		"from", result.FromState, "to", result.ToState)
	return updated, nil
}

func (s *service) Duplicate(ctx context.Context, sess *session.Session, kind domain.Kind, id uuid.UUID) (*catalog.Item, error) {
	if err := session.Ensure(sess); err != nil {
		return nil, wrapSessionError(err)
	}

	source, err := s.repo.GetByID(ctx, kind, id)
	if err != nil {
		return nil, wrapRepositoryError(err)
	}

	title := copyTitle(source.Title)
	slug, err := s.checker.EnsureUnique(ctx, kind, slugs.Generate(title), uuid.Nil)
	if err != nil {
		return nil, wrapRepositoryError(err)
	}

	now := s.now()
	record := source.Clone()
	record.ID = s.newID()
	record.Title = title
	record.Slug = slug
	record.SlugEdited = false
	record.Status = string(domain.StatusDraft)
	record.PublishAt = nil
	record.PublishedAt = nil
	record.DeletedAt = nil
	record.CreatedBy = sess.ActorID()
	record.UpdatedBy = sess.ActorID()
	record.CreatedAt = now
	record.UpdatedAt = now

	if errs := s.validate(record.Draft(), kind, domain.StatusDraft); len(errs) > 0 {
		return nil, wrapValidation(errs)
	}

	created, err := s.repo.Create(ctx, record)
	if err != nil {
		return nil, wrapRepositoryError(err)
	}
	s.logger.Info("content duplicated", "kind", kind, "source_id", id, "item_id", created.ID, "slug", created.Slug)
	return created, nil
}

func (s *service) Get(ctx context.Context, kind domain.Kind, id uuid.UUID) (*catalog.Item, error) {
	item, err := s.repo.GetByID(ctx, kind, id)
	if err != nil {
		return nil, wrapRepositoryError(err)
	}
	return item, nil
}

func (s *service) GetBySlug(ctx context.Context, kind domain.Kind, slug string) (*catalog.Item, error) {
	item, err := s.repo.GetBySlug(ctx, kind, slug)
	if err != nil {
		return nil, wrapRepositoryError(err)
	}
	return item, nil
}

func (s *service) List(ctx context.Context, kind domain.Kind) ([]*catalog.Item, error) {
	items, err := s.repo.List(ctx, kind)
	if err != nil {
		return nil, wrapRepositoryError(err)
	}
	return items, nil
}

func (s *service) Delete(ctx context.Context, sess *session.Session, kind domain.Kind, id uuid.UUID) error {
	if err := session.Ensure(sess); err != nil {
		return wrapSessionError(err)
	}
	if err := s.repo.Delete(ctx, kind, id); err != nil {
		return wrapRepositoryError(err)
	}
	if s.schedule && kind == domain.KindNews {
		s.cancelPublish(ctx, id)
	}
	s.logger.Info("content deleted", "kind", kind, "item_id", id)
	return nil
}

func (s *service) validate(draft *domain.Draft, kind domain.Kind, target domain.Status) validation.Errors {
	return validationrules.ValidateWithOptions(draft, kind, target, s.now(), validationrules.Options{
		MetadataSchema: s.schemas[kind],
	})
}

// foldExtra merges transition-supplied timestamps into the draft so the
// validation pass sees them.
func foldExtra(draft *domain.Draft, extra TransitionExtra) {
	if extra.ScheduleAt != nil {
		draft.ScheduleAt = cloneTime(extra.ScheduleAt)
	}
	if extra.StartAt != nil {
		draft.StartAt = cloneTime(extra.StartAt)
	}
	if extra.FinishAt != nil {
		draft.FinishAt = cloneTime(extra.FinishAt)
	}
}

// applyTransitionEffects stamps the timestamps implied by entering the target
// state.
func (s *service) applyTransitionEffects(record *catalog.Item, kind domain.Kind, current, target domain.Status) {
	now := s.now()
	if kind == domain.KindNews {
		switch target {
		case domain.StatusPublished:
			record.PublishedAt = &now
			record.PublishAt = nil
		case domain.StatusDraft:
			record.PublishAt = nil
		}
		return
	}
	if target == domain.StatusActive && record.StartAt == nil {
		record.StartAt = &now
	}
}

// syncPublishJob keeps the scheduler in step with news status changes.
func (s *service) syncPublishJob(ctx context.Context, sess *session.Session, kind domain.Kind, current, target domain.Status, record *catalog.Item) {
	if !s.schedule || kind != domain.KindNews {
		return
	}
	switch {
	case target == domain.StatusScheduled && record.PublishAt != nil:
		s.enqueuePublish(ctx, sess, record)
	case current == domain.StatusScheduled && target != domain.StatusScheduled:
		s.cancelPublish(ctx, record.ID)
	}
}

func (s *service) enqueuePublish(ctx context.Context, sess *session.Session, record *catalog.Item) {
	if s.scheduler == nil || record.PublishAt == nil {
		return
	}
	_, err := s.scheduler.Enqueue(ctx, interfaces.JobSpec{
		Key:   scheduler.NewsPublishJobKey(record.ID),
		Type:  scheduler.JobTypeNewsPublish,
		RunAt: *record.PublishAt,
		Payload: map[string]any{
			"item_id":      record.ID.String(),
			"scheduled_by": sess.ActorID().String(),
		},
	})
	if err != nil {
		// Scheduling is best-effort here; the item is already committed as
		// scheduled and a later enqueue can recover it.
		s.logger.Error("failed to enqueue publish job", "item_id", record.ID, "error", err)
	}
}

func (s *service) cancelPublish(ctx context.Context, id uuid.UUID) {
	if s.scheduler == nil {
		return
	}
	if err := s.scheduler.CancelByKey(ctx, scheduler.NewsPublishJobKey(id)); err != nil && err != interfaces.ErrJobNotFound {
		s.logger.Error("failed to cancel publish job", "item_id", id, "error", err)
	}
}

// applyDraft copies the editable draft fields onto the persisted record.
func applyDraft(record *catalog.Item, draft *domain.Draft) {
	record.Title = draft.Title
	record.Slug = draft.Slug
	record.SlugEdited = draft.SlugEdited
	record.Summary = draft.Summary
	record.Body = draft.Body
	if len(draft.Tags) > 0 {
		record.Tags = append([]string(nil), draft.Tags...)
	} else {
		record.Tags = nil
	}
	if draft.MediaURL != "" {
		v := draft.MediaURL
		record.MediaURL = &v
	} else {
		record.MediaURL = nil
	}
	record.PublishAt = cloneTime(draft.ScheduleAt)
	record.StartAt = cloneTime(draft.StartAt)
	record.FinishAt = cloneTime(draft.FinishAt)
	if len(draft.Metadata) > 0 {
		record.Metadata = make(map[string]any, len(draft.Metadata))
		for k, v := range draft.Metadata {
			record.Metadata[k] = v
		}
	} else {
		record.Metadata = nil
	}
}

// copyTitle prefixes a duplicated item's title and trims it so the result
// stays inside the title length rule.
func copyTitle(title string) string {
	out := "Copy of " + title
	if runes := []rune(out); len(runes) > validationrules.TitleMaxLen {
		out = strings.TrimSpace(string(runes[:validationrules.TitleMaxLen]))
	}
	return out
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

func wrapSentinel(err error) error {
	return goerrors.Wrap(err, goerrors.CategoryValidation, "content validation failed").
		WithTextCode(codeValidationFailed)
}
