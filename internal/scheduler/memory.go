package scheduler

import (
	"context"
	"errors"
	"maps"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/deptworks/go-editorial/pkg/interfaces"
)

const defaultMaxAttempts = 3

// NewInMemory creates a deterministic scheduler implementation. It backs the
// timed publication flow in single-process deployments and in tests.
func NewInMemory(opts ...Option) interfaces.Scheduler {
	store := &memoryStore{
		now:         time.Now,
		newID:       uuid.NewString,
		entries:     make(map[string]*interfaces.Job),
		byKey:       make(map[string]string),
		maxAttempts: defaultMaxAttempts,
	}
	for _, opt := range opts {
		opt(store)
	}
	return store
}

// Option allows customizing the behaviour of the in-memory scheduler.
type Option func(*memoryStore)

// WithClock overrides the internal clock, used mainly for tests.
func WithClock(clock func() time.Time) Option {
	return func(s *memoryStore) {
		if clock != nil {
			s.now = clock
		}
	}
}

// WithIDGenerator overrides the ID generator used when enqueuing jobs.
func WithIDGenerator(generator func() string) Option {
	return func(s *memoryStore) {
		if generator != nil {
			s.newID = generator
		}
	}
}

// WithDefaultMaxAttempts overrides the retry limit applied when the job spec leaves it unset.
func WithDefaultMaxAttempts(limit int) Option {
	return func(s *memoryStore) {
		if limit > 0 {
			s.maxAttempts = limit
		}
	}
}

type memoryStore struct {
	mu          sync.Mutex
	now         func() time.Time
	newID       func() string
	maxAttempts int
	entries     map[string]*interfaces.Job
	byKey       map[string]string
}

func (s *memoryStore) Enqueue(_ context.Context, spec interfaces.JobSpec) (*interfaces.Job, error) {
	if spec.RunAt.IsZero() {
		return nil, errors.New("scheduler: run_at is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// A keyed enqueue replaces any previous job under the same key.
	if spec.Key != "" {
		if previous, ok := s.byKey[spec.Key]; ok {
			delete(s.entries, previous)
		}
	}

	stamp := s.now()
	job := &interfaces.Job{
		JobSpec:   spec,
		ID:        s.newID(),
		Status:    interfaces.JobStatusPending,
		CreatedAt: stamp,
		UpdatedAt: stamp,
	}
	job.Payload = maps.Clone(spec.Payload)
	if job.MaxAttempts == 0 {
		job.MaxAttempts = s.maxAttempts
	}

	s.entries[job.ID] = job
	if job.Key != "" {
		s.byKey[job.Key] = job.ID
	}

	return copyJob(job), nil
}

func (s *memoryStore) Cancel(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, ok := s.entries[id]
	if !ok {
		return interfaces.ErrJobNotFound
	}
	s.settle(job, interfaces.JobStatusCanceled)
	return nil
}

func (s *memoryStore) CancelByKey(_ context.Context, key string) error {
	if key == "" {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	job := s.lookupByKey(key)
	if job == nil {
		return interfaces.ErrJobNotFound
	}
	s.settle(job, interfaces.JobStatusCanceled)
	return nil
}

func (s *memoryStore) Get(_ context.Context, id string) (*interfaces.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, ok := s.entries[id]
	if !ok {
		return nil, interfaces.ErrJobNotFound
	}
	return copyJob(job), nil
}

func (s *memoryStore) GetByKey(_ context.Context, key string) (*interfaces.Job, error) {
	if key == "" {
		return nil, interfaces.ErrJobNotFound
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	job := s.lookupByKey(key)
	if job == nil {
		return nil, interfaces.ErrJobNotFound
	}
	return copyJob(job), nil
}

func (s *memoryStore) ListDue(_ context.Context, until time.Time, limit int) ([]*interfaces.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	due := make([]*interfaces.Job, 0, len(s.entries))
	for _, job := range s.entries {
		if job.Status != interfaces.JobStatusPending || job.RunAt.After(until) {
			continue
		}
		due = append(due, copyJob(job))
	}
	sort.SliceStable(due, func(i, j int) bool {
		if due[i].RunAt.Equal(due[j].RunAt) {
			return due[i].CreatedAt.Before(due[j].CreatedAt)
		}
		return due[i].RunAt.Before(due[j].RunAt)
	})
	if limit > 0 && len(due) > limit {
		due = due[:limit]
	}
	return due, nil
}

func (s *memoryStore) MarkDone(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, ok := s.entries[id]
	if !ok {
		return interfaces.ErrJobNotFound
	}
	s.settle(job, interfaces.JobStatusCompleted)
	return nil
}

func (s *memoryStore) MarkFailed(_ context.Context, id string, failure error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, ok := s.entries[id]
	if !ok {
		return interfaces.ErrJobNotFound
	}
	job.Attempt++
	job.UpdatedAt = s.now()
	job.LastError = ""
	if failure != nil {
		job.LastError = failure.Error()
	}
	if job.MaxAttempts > 0 && job.Attempt >= job.MaxAttempts {
		job.Status = interfaces.JobStatusFailed
		return nil
	}
	job.Status = interfaces.JobStatusPending
	return nil
}

// settle moves a job into a terminal status and frees its idempotency key.
// Callers must hold the mutex.
func (s *memoryStore) settle(job *interfaces.Job, status interfaces.JobStatus) {
	job.Status = status
	job.UpdatedAt = s.now()
	if job.Key != "" {
		delete(s.byKey, job.Key)
	}
}

// lookupByKey resolves the live job for a key. Callers must hold the mutex.
func (s *memoryStore) lookupByKey(key string) *interfaces.Job {
	id, ok := s.byKey[key]
	if !ok {
		return nil
	}
	return s.entries[id]
}

func copyJob(job *interfaces.Job) *interfaces.Job {
	if job == nil {
		return nil
	}
	clone := *job
	clone.Payload = maps.Clone(job.Payload)
	return &clone
}
