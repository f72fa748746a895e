// Package session carries the explicit editing context handed to lifecycle
// operations. A Session identifies who is editing, when the session opened,
// and whether the client already ended it.
package session

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrClosed indicates an operation was attempted on a closed session.
var ErrClosed = errors.New("session: closed")

// Session is an explicit editing context. It is passed to every lifecycle
// operation rather than stashed in ambient globals, so services can attribute
// writes and tear down per-session resources on Close.
type Session struct {
	id       uuid.UUID
	actorID  uuid.UUID
	openedAt time.Time

	mu      sync.Mutex
	closed  bool
	onClose []func()
}

// Option configures a session.
type Option func(*Session)

// WithClock overrides the clock used for the opened timestamp.
func WithClock(clock func() time.Time) Option {
	return func(s *Session) {
		if clock != nil {
			s.openedAt = clock()
		}
	}
}

// WithID fixes the session identifier (primarily for testing).
func WithID(id uuid.UUID) Option {
	return func(s *Session) {
		if id != uuid.Nil {
			s.id = id
		}
	}
}

// New opens an editing session for the supplied actor.
func New(actorID uuid.UUID, opts ...Option) *Session {
	s := &Session{
		id:       uuid.New(),
		actorID:  actorID,
		openedAt: time.Now().UTC(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ID returns the session identifier.
func (s *Session) ID() uuid.UUID {
	return s.id
}

// ActorID returns the editing user.
func (s *Session) ActorID() uuid.UUID {
	return s.actorID
}

// OpenedAt returns when the session was opened.
func (s *Session) OpenedAt() time.Time {
	return s.openedAt
}

// Closed reports whether the session has ended.
func (s *Session) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// OnClose registers a callback invoked exactly once when the session closes.
// Registering on an already closed session invokes the callback immediately.
func (s *Session) OnClose(fn func()) {
	if fn == nil {
		return
	}
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		fn()
		return
	}
	s.onClose = append(s.onClose, fn)
	s.mu.Unlock()
}

// Close ends the session and runs registered teardown callbacks. Closing an
// already closed session is a no-op.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	callbacks := s.onClose
	s.onClose = nil
	s.mu.Unlock()

	for _, fn := range callbacks {
		fn()
	}
}

// Ensure verifies the session is usable for a write operation.
func Ensure(s *Session) error {
	if s == nil {
		return errors.New("session: required")
	}
	if s.Closed() {
		return ErrClosed
	}
	return nil
}
