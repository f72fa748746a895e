// Package autosave persists in-progress drafts on a debounce timer so editors
// do not lose work between explicit saves.
package autosave

import (
	"context"
	"sync"
	"time"

	"github.com/deptworks/go-editorial/internal/domain"
	"github.com/deptworks/go-editorial/internal/logging"
	"github.com/deptworks/go-editorial/pkg/interfaces"
)

// DefaultInterval is the debounce window applied when none is configured.
const DefaultInterval = 2 * time.Second

// SaveFunc commits a draft snapshot through the validated update path and
// returns the fresh version token on success.
type SaveFunc func(ctx context.Context, draft domain.Draft) (domain.VersionToken, error)

// Status reports the debouncer state to interested UIs.
type Status string

const (
	StatusIdle   Status = "idle"
	StatusArmed  Status = "armed"
	StatusSaving Status = "saving"
	StatusSaved  Status = "saved"
	StatusError  Status = "error"
)

// Notifier receives status changes. The error is non-nil only for StatusError.
// Notifications are advisory; failures never block editing.
type Notifier func(status Status, err error)

// Timer is the minimal handle the debouncer needs over a pending fire.
type Timer interface {
	Stop() bool
}

// TimerFactory schedules fn after d and returns a stoppable handle.
type TimerFactory func(d time.Duration, fn func()) Timer

// Debouncer batches draft edits and persists at most one snapshot at a time.
// Edits arriving while a save is in flight mark the state dirty and re-arm
// once the save settles.
type Debouncer struct {
	interval time.Duration
	save     SaveFunc
	notify   Notifier
	logger   interfaces.Logger
	newTimer TimerFactory

	mu       sync.Mutex
	timer    Timer
	pending  *domain.Draft
	token    domain.VersionToken
	inflight bool
	dirty    bool
	closed   bool
}

// Option configures a Debouncer.
type Option func(*Debouncer)

// WithInterval overrides the debounce window.
func WithInterval(interval time.Duration) Option {
	return func(d *Debouncer) {
		if interval > 0 {
			d.interval = interval
		}
	}
}

// WithNotifier installs a status callback for transient save indicators.
func WithNotifier(notify Notifier) Option {
	return func(d *Debouncer) {
		if notify != nil {
			d.notify = notify
		}
	}
}

// WithLogger overrides the default module logger.
func WithLogger(logger interfaces.Logger) Option {
	return func(d *Debouncer) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// WithTimerFactory overrides timer scheduling, used mainly for tests.
func WithTimerFactory(factory TimerFactory) Option {
	return func(d *Debouncer) {
		if factory != nil {
			d.newTimer = factory
		}
	}
}

// New builds a debouncer around the supplied save function.
func New(save SaveFunc, opts ...Option) *Debouncer {
	d := &Debouncer{
		interval: DefaultInterval,
		save:     save,
		notify:   func(Status, error) {},
		logger:   logging.AutosaveLogger(nil),
		newTimer: func(duration time.Duration, fn func()) Timer {
			return time.AfterFunc(duration, fn)
		},
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Touch records an edit and (re)arms the debounce timer. Only draft-status
// snapshots are auto-saved; anything else is ignored so that scheduling or
// publishing an item silently stops its autosave loop.
func (d *Debouncer) Touch(draft domain.Draft) {
	if domain.NormalizeStatus(string(draft.Status)) != domain.StatusDraft {
		d.Cancel()
		return
	}
	snapshot := draft.Clone()

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return
	}
	d.pending = snapshot
	if d.inflight {
		d.dirty = true
		return
	}
	d.armLocked()
}

// Cancel drops the pending snapshot and stops the timer. An in-flight save is
// allowed to finish; its result is still applied. Call this when a manual save
// supersedes the automatic one.
func (d *Debouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopTimerLocked()
	d.pending = nil
	d.dirty = false
}

// SetToken records the version token produced by an out-of-band save so the
// next autosave does not conflict with it.
func (d *Debouncer) SetToken(token domain.VersionToken) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.token = token
}

// Close tears the debouncer down. Pending snapshots are discarded and results
// from any in-flight save are ignored.
func (d *Debouncer) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return
	}
	d.closed = true
	d.stopTimerLocked()
	d.pending = nil
	d.dirty = false
}

func (d *Debouncer) armLocked() {
	d.stopTimerLocked()
	d.timer = d.newTimer(d.interval, d.fire)
	d.notify(StatusArmed, nil)
}

func (d *Debouncer) stopTimerLocked() {
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}

func (d *Debouncer) fire() {
	d.mu.Lock()
	if d.closed || d.pending == nil || d.inflight {
		d.mu.Unlock()
		return
	}
	snapshot := *d.pending
	d.pending = nil
	d.dirty = false
	d.inflight = true
	if !d.token.IsZero() {
		snapshot.Token = d.token
	}
	d.mu.Unlock()

	d.notify(StatusSaving, nil)
	token, err := d.save(context.Background(), snapshot)

	d.mu.Lock()
	d.inflight = false
	if d.closed {
		d.mu.Unlock()
		return
	}
	if err == nil {
		d.token = token
	}
	rearm := d.dirty && d.pending != nil
	if rearm {
		d.dirty = false
		d.armLocked()
	}
	d.mu.Unlock()

	if err != nil {
		d.logger.Warn("autosave failed", "error", err)
		d.notify(StatusError, err)
		return
	}
	d.notify(StatusSaved, nil)
}
