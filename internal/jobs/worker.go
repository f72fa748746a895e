// Package jobs runs the publication worker that flips scheduled news
// articles to published once their publish time arrives.
package jobs

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/deptworks/go-editorial/internal/catalog"
	"github.com/deptworks/go-editorial/internal/domain"
	"github.com/deptworks/go-editorial/internal/logging"
	"github.com/deptworks/go-editorial/internal/scheduler"
	"github.com/deptworks/go-editorial/pkg/interfaces"
)

// ItemRepository is the storage subset the worker needs.
type ItemRepository interface {
	GetByID(ctx context.Context, kind domain.Kind, id uuid.UUID) (*catalog.Item, error)
	Update(ctx context.Context, record *catalog.Item, token domain.VersionToken) (*catalog.Item, error)
}

// Worker drains due jobs from the scheduler and applies their effects.
type Worker struct {
	scheduler interfaces.Scheduler
	items     ItemRepository
	audit     AuditRecorder
	logger    interfaces.Logger
	now       func() time.Time
	batchSize int
}

// Option configures the worker.
type Option func(*Worker)

// WithAuditRecorder attaches an audit trail for applied publications.
func WithAuditRecorder(recorder AuditRecorder) Option {
	return func(w *Worker) {
		w.audit = recorder
	}
}

// WithClock overrides the worker clock, used mainly for tests.
func WithClock(clock func() time.Time) Option {
	return func(w *Worker) {
		if clock != nil {
			w.now = clock
		}
	}
}

// WithBatchSize limits how many due jobs a single Process pass drains.
func WithBatchSize(size int) Option {
	return func(w *Worker) {
		if size > 0 {
			w.batchSize = size
		}
	}
}

// WithLogger overrides the default module logger.
func WithLogger(logger interfaces.Logger) Option {
	return func(w *Worker) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// NewWorker builds a publication worker over the supplied scheduler and repository.
func NewWorker(sched interfaces.Scheduler, items ItemRepository, opts ...Option) *Worker {
	w := &Worker{
		scheduler: sched,
		items:     items,
		logger:    logging.JobsLogger(nil),
		now:       time.Now,
		batchSize: 50,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Process drains one batch of due jobs. Jobs that fail are marked for retry
// through the scheduler; processing continues with the rest of the batch.
func (w *Worker) Process(ctx context.Context) error {
	if w.scheduler == nil {
		return errors.New("jobs: scheduler is nil")
	}
	deadline := w.now()
	due, err := w.scheduler.ListDue(ctx, deadline, w.batchSize)
	if err != nil {
		return err
	}
	for _, job := range due {
		if job == nil {
			continue
		}
		if err := w.handleJob(ctx, job, deadline); err != nil {
			w.logger.Warn("job failed", "job_id", job.ID, "job_type", job.Type, "error", err)
			_ = w.scheduler.MarkFailed(ctx, job.ID, err)
			continue
		}
		_ = w.scheduler.MarkDone(ctx, job.ID)
	}
	return nil
}

func (w *Worker) handleJob(ctx context.Context, job *interfaces.Job, now time.Time) error {
	switch job.Type {
	case scheduler.JobTypeNewsPublish:
		return w.publishNews(ctx, job, now)
	default:
		// Unknown job types are acknowledged so they do not retry forever.
		return nil
	}
}

func (w *Worker) publishNews(ctx context.Context, job *interfaces.Job, now time.Time) error {
	if w.items == nil {
		return errors.New("jobs: item repository is nil")
	}
	id, triggeredBy, err := parseJobIdentifiers(job.Payload)
	if err != nil {
		return err
	}
	record, err := w.items.GetByID(ctx, domain.KindNews, id)
	if err != nil {
		if catalog.IsNotFound(err) {
			// The article was deleted after scheduling; nothing to publish.
			return nil
		}
		return err
	}

	status := domain.NormalizeStatus(record.Status)
	if status == domain.StatusPublished && record.PublishAt == nil {
		return nil
	}
	if status != domain.StatusScheduled && status != domain.StatusPublished {
		// The article was pulled back to draft after this job was enqueued.
		w.logger.Info("skipping publish for non-scheduled article",
			"item_id", id, "status", record.Status)
		return nil
	}

	token := record.VersionToken()
	publishedAt := job.RunAt
	if publishedAt.IsZero() {
		publishedAt = now
	}
	record.Status = string(domain.StatusPublished)
	record.PublishedAt = &publishedAt
	record.PublishAt = nil
	if triggeredBy != nil {
		record.UpdatedBy = *triggeredBy
	}

	if _, err := w.items.Update(ctx, record, token); err != nil {
		return err
	}

	w.recordAudit(ctx, AuditEvent{
		Kind:       domain.KindNews,
		ItemID:     id,
		Action:     "publish",
		OccurredAt: now,
		Metadata:   auditMetadata(job, triggeredBy),
	})
	w.logger.Info("published scheduled article", "item_id", id, "published_at", publishedAt)
	return nil
}

func (w *Worker) recordAudit(ctx context.Context, event AuditEvent) {
	if w.audit == nil {
		return
	}
	_ = w.audit.Record(ctx, event)
}

func parseJobIdentifiers(payload map[string]any) (uuid.UUID, *uuid.UUID, error) {
	if payload == nil {
		return uuid.Nil, nil, fmt.Errorf("jobs: missing payload")
	}
	rawID, ok := payload["item_id"]
	if !ok {
		return uuid.Nil, nil, fmt.Errorf("jobs: payload missing item_id")
	}
	idStr, ok := rawID.(string)
	if !ok {
		return uuid.Nil, nil, fmt.Errorf("jobs: invalid item_id payload")
	}
	id, err := uuid.Parse(idStr)
	if err != nil {
		return uuid.Nil, nil, err
	}
	var triggeredBy *uuid.UUID
	if rawScheduledBy, ok := payload["scheduled_by"]; ok {
		if str, ok := rawScheduledBy.(string); ok {
			if parsed, err := uuid.Parse(str); err == nil {
				triggeredBy = &parsed
			}
		}
	}
	return id, triggeredBy, nil
}

func auditMetadata(job *interfaces.Job, triggeredBy *uuid.UUID) map[string]any {
	meta := map[string]any{
		"job_id":   job.ID,
		"job_type": job.Type,
		"run_at":   job.RunAt,
		"attempt":  job.Attempt,
	}
	if triggeredBy != nil {
		meta["scheduled_by"] = triggeredBy.String()
	}
	return meta
}
