package scheduler_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/deptworks/go-editorial/internal/scheduler"
	"github.com/deptworks/go-editorial/pkg/interfaces"
)

func newStore(t *testing.T) (interfaces.Scheduler, time.Time) {
	t.Helper()
	now := time.Unix(1700000000, 0).UTC()
	counter := 0
	store := scheduler.NewInMemory(
		scheduler.WithClock(func() time.Time { return now }),
		scheduler.WithIDGenerator(func() string {
			counter++
			return fmt.Sprintf("job-%d", counter)
		}),
	)
	return store, now
}

func TestEnqueueRequiresRunAt(t *testing.T) {
	store, _ := newStore(t)

	_, err := store.Enqueue(context.Background(), interfaces.JobSpec{Type: scheduler.JobTypeNewsPublish})
	if err == nil {
		t.Fatalf("expected error for missing run_at")
	}
}

func TestEnqueueReplacesByKey(t *testing.T) {
	store, now := newStore(t)
	key := scheduler.NewsPublishJobKey(uuid.New())

	first, err := store.Enqueue(context.Background(), interfaces.JobSpec{
		Key:   key,
		Type:  scheduler.JobTypeNewsPublish,
		RunAt: now.Add(time.Hour),
	})
	if err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	second, err := store.Enqueue(context.Background(), interfaces.JobSpec{
		Key:   key,
		Type:  scheduler.JobTypeNewsPublish,
		RunAt: now.Add(2 * time.Hour),
	})
	if err != nil {
		t.Fatalf("re-enqueue: %v", err)
	}

	if _, err := store.Get(context.Background(), first.ID); !errors.Is(err, interfaces.ErrJobNotFound) {
		t.Fatalf("expected replaced job to be gone, got %v", err)
	}

	current, err := store.GetByKey(context.Background(), key)
	if err != nil {
		t.Fatalf("get by key: %v", err)
	}
	if current.ID != second.ID {
		t.Fatalf("expected key to resolve to %s, got %s", second.ID, current.ID)
	}
	if !current.RunAt.Equal(now.Add(2 * time.Hour)) {
		t.Fatalf("expected replacement run_at, got %v", current.RunAt)
	}
}

func TestListDueOrdersAndFilters(t *testing.T) {
	store, now := newStore(t)

	for i, offset := range []time.Duration{3 * time.Hour, time.Hour, 2 * time.Hour} {
		_, err := store.Enqueue(context.Background(), interfaces.JobSpec{
			Key:   fmt.Sprintf("key-%d", i),
			Type:  scheduler.JobTypeNewsPublish,
			RunAt: now.Add(offset),
		})
		if err != nil {
			t.Fatalf("enqueue %d: %v", i, err)
		}
	}

	due, err := store.ListDue(context.Background(), now.Add(2*time.Hour), 0)
	if err != nil {
		t.Fatalf("list due: %v", err)
	}
	if len(due) != 2 {
		t.Fatalf("expected 2 due jobs, got %d", len(due))
	}
	if due[0].RunAt.After(due[1].RunAt) {
		t.Fatalf("expected jobs ordered by run_at")
	}

	due, err = store.ListDue(context.Background(), now.Add(3*time.Hour), 1)
	if err != nil {
		t.Fatalf("list due with limit: %v", err)
	}
	if len(due) != 1 {
		t.Fatalf("expected limit to apply, got %d", len(due))
	}
}

func TestCancelByKeyReleasesJob(t *testing.T) {
	store, now := newStore(t)
	key := scheduler.NewsPublishJobKey(uuid.New())

	job, err := store.Enqueue(context.Background(), interfaces.JobSpec{
		Key:   key,
		Type:  scheduler.JobTypeNewsPublish,
		RunAt: now.Add(time.Minute),
	})
	if err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	if err := store.CancelByKey(context.Background(), key); err != nil {
		t.Fatalf("cancel by key: %v", err)
	}

	stored, err := store.Get(context.Background(), job.ID)
	if err != nil {
		t.Fatalf("get canceled job: %v", err)
	}
	if stored.Status != interfaces.JobStatusCanceled {
		t.Fatalf("expected canceled, got %s", stored.Status)
	}

	due, err := store.ListDue(context.Background(), now.Add(time.Hour), 0)
	if err != nil {
		t.Fatalf("list due: %v", err)
	}
	if len(due) != 0 {
		t.Fatalf("canceled job should not be due")
	}

	if err := store.CancelByKey(context.Background(), key); !errors.Is(err, interfaces.ErrJobNotFound) {
		t.Fatalf("expected not found after cancel, got %v", err)
	}
}

func TestMarkFailedRetriesUntilLimit(t *testing.T) {
	store, now := newStore(t)

	job, err := store.Enqueue(context.Background(), interfaces.JobSpec{
		Key:         "retry",
		Type:        scheduler.JobTypeNewsPublish,
		RunAt:       now,
		MaxAttempts: 2,
	})
	if err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	if err := store.MarkFailed(context.Background(), job.ID, errors.New("boom")); err != nil {
		t.Fatalf("mark failed: %v", err)
	}
	stored, _ := store.Get(context.Background(), job.ID)
	if stored.Status != interfaces.JobStatusPending {
		t.Fatalf("expected pending after first failure, got %s", stored.Status)
	}
	if stored.Attempt != 1 || stored.LastError != "boom" {
		t.Fatalf("expected attempt 1 with error, got %d %q", stored.Attempt, stored.LastError)
	}

	if err := store.MarkFailed(context.Background(), job.ID, errors.New("boom again")); err != nil {
		t.Fatalf("mark failed: %v", err)
	}
	stored, _ = store.Get(context.Background(), job.ID)
	if stored.Status != interfaces.JobStatusFailed {
		t.Fatalf("expected failed after reaching limit, got %s", stored.Status)
	}
}

func TestMarkDoneFreesKey(t *testing.T) {
	store, now := newStore(t)

	job, err := store.Enqueue(context.Background(), interfaces.JobSpec{
		Key:   "done",
		Type:  scheduler.JobTypeNewsPublish,
		RunAt: now,
	})
	if err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	if err := store.MarkDone(context.Background(), job.ID); err != nil {
		t.Fatalf("mark done: %v", err)
	}
	if _, err := store.GetByKey(context.Background(), "done"); !errors.Is(err, interfaces.ErrJobNotFound) {
		t.Fatalf("expected key released, got %v", err)
	}
	stored, err := store.Get(context.Background(), job.ID)
	if err != nil {
		t.Fatalf("get done job: %v", err)
	}
	if stored.Status != interfaces.JobStatusCompleted {
		t.Fatalf("expected completed, got %s", stored.Status)
	}
}

func TestNoOpScheduler(t *testing.T) {
	store := scheduler.NewNoOp()

	job, err := store.Enqueue(context.Background(), interfaces.JobSpec{Type: scheduler.JobTypeNewsPublish})
	if err != nil {
		t.Fatalf("noop enqueue: %v", err)
	}
	if job.Status != interfaces.JobStatusCompleted {
		t.Fatalf("expected completed, got %s", job.Status)
	}
	if _, err := store.Get(context.Background(), "anything"); !errors.Is(err, interfaces.ErrJobNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	due, err := store.ListDue(context.Background(), time.Now(), 10)
	if err != nil || len(due) != 0 {
		t.Fatalf("noop list: %v %d", err, len(due))
	}
}
