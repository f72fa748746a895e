package jobs

import (
	"context"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/deptworks/go-editorial/internal/domain"
)

// AuditEvent captures a status change applied by the publication worker.
type AuditEvent struct {
	Kind       domain.Kind
	ItemID     uuid.UUID
	Action     string
	OccurredAt time.Time
	Metadata   map[string]any
}

// AuditRecorder persists audit events.
type AuditRecorder interface {
	Record(ctx context.Context, event AuditEvent) error
	List(ctx context.Context) ([]AuditEvent, error)
	Clear(ctx context.Context) error
}

// MemoryAuditTrail accumulates audit events in memory. Hosts that need a
// durable trail supply their own AuditRecorder.
type MemoryAuditTrail struct {
	mu     sync.Mutex
	events []AuditEvent
	fail   error
}

// NewMemoryAuditTrail constructs an empty trail.
func NewMemoryAuditTrail() *MemoryAuditTrail {
	return &MemoryAuditTrail{}
}

// Record stores the supplied event.
func (tr *MemoryAuditTrail) Record(_ context.Context, event AuditEvent) error {
	tr.mu.Lock()
	defer tr.mu.Unlock()
	if tr.fail != nil {
		return tr.fail
	}
	event.Metadata = maps.Clone(event.Metadata)
	tr.events = append(tr.events, event)
	return nil
}

// List returns the audit events recorded so far.
func (tr *MemoryAuditTrail) List(context.Context) ([]AuditEvent, error) {
	tr.mu.Lock()
	defer tr.mu.Unlock()
	return slices.Clone(tr.events), nil
}

// Clear removes all recorded events.
func (tr *MemoryAuditTrail) Clear(context.Context) error {
	tr.mu.Lock()
	defer tr.mu.Unlock()
	tr.events = nil
	return nil
}

// Events is a convenience accessor for tests.
func (tr *MemoryAuditTrail) Events() []AuditEvent {
	events, _ := tr.List(context.Background())
	return events
}

// Fail makes subsequent Record calls return the supplied error.
func (tr *MemoryAuditTrail) Fail(err error) {
	tr.mu.Lock()
	defer tr.mu.Unlock()
	tr.fail = err
}
