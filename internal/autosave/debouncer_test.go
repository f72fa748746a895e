package autosave_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/deptworks/go-editorial/internal/autosave"
	"github.com/deptworks/go-editorial/internal/domain"
)

// manualTimers lets tests fire debounce timers deterministically.
type manualTimers struct {
	mu      sync.Mutex
	pending []*manualTimer
}

type manualTimer struct {
	fn      func()
	stopped bool
}

func (t *manualTimer) Stop() bool {
	if t.stopped {
		return false
	}
	t.stopped = true
	return true
}

func (m *manualTimers) factory(_ time.Duration, fn func()) autosave.Timer {
	m.mu.Lock()
	defer m.mu.Unlock()
	timer := &manualTimer{fn: fn}
	m.pending = append(m.pending, timer)
	return timer
}

// fire runs the most recently armed, non-stopped timer.
func (m *manualTimers) fire(t *testing.T) {
	t.Helper()
	m.mu.Lock()
	var target *manualTimer
	for i := len(m.pending) - 1; i >= 0; i-- {
		if !m.pending[i].stopped {
			target = m.pending[i]
			break
		}
	}
	m.mu.Unlock()
	if target == nil {
		t.Fatalf("no armed timer to fire")
	}
	target.fn()
}

// armed counts timers that have not been stopped.
func (m *manualTimers) armed() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	count := 0
	for _, timer := range m.pending {
		if !timer.stopped {
			count++
		}
	}
	return count
}

type capture struct {
	mu     sync.Mutex
	drafts []domain.Draft
	status []autosave.Status
	errs   []error
}

func (c *capture) save(_ context.Context, draft domain.Draft) (domain.VersionToken, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.drafts = append(c.drafts, draft)
	return domain.TokenFromTime(time.Unix(int64(1700000000+len(c.drafts)), 0)), nil
}

func (c *capture) notify(status autosave.Status, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.status = append(c.status, status)
	c.errs = append(c.errs, err)
}

func (c *capture) saves() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.drafts)
}

func newsDraft(title string) domain.Draft {
	return domain.Draft{
		Title:  title,
		Slug:   "fixture",
		Status: domain.StatusDraft,
	}
}

func TestTouchArmsOnceAndSavesLatestSnapshot(t *testing.T) {
	timers := &manualTimers{}
	sink := &capture{}
	debouncer := autosave.New(sink.save,
		autosave.WithTimerFactory(timers.factory),
		autosave.WithNotifier(sink.notify),
	)
	defer debouncer.Close()

	debouncer.Touch(newsDraft("first"))
	debouncer.Touch(newsDraft("second"))
	debouncer.Touch(newsDraft("third"))

	if timers.armed() != 1 {
		t.Fatalf("expected a single armed timer, got %d", timers.armed())
	}

	timers.fire(t)

	if sink.saves() != 1 {
		t.Fatalf("expected one save, got %d", sink.saves())
	}
	if sink.drafts[0].Title != "third" {
		t.Fatalf("expected latest snapshot, got %q", sink.drafts[0].Title)
	}
}

func TestDirtyEditReArmsAfterInFlightSave(t *testing.T) {
	timers := &manualTimers{}

	var saved []string
	var debouncer *autosave.Debouncer
	var armedDuringSave int

	debouncer = autosave.New(func(_ context.Context, draft domain.Draft) (domain.VersionToken, error) {
		saved = append(saved, draft.Title)
		if len(saved) == 1 {
			// Edit arriving while this save is in flight: it must not
			// start a second save or arm a timer yet.
			debouncer.Touch(newsDraft("two"))
			armedDuringSave = timers.armed()
		}
		return domain.TokenFromTime(time.Unix(int64(1700000000+len(saved)), 0)), nil
	}, autosave.WithTimerFactory(timers.factory))
	defer debouncer.Close()

	debouncer.Touch(newsDraft("one"))
	timers.fire(t)

	if armedDuringSave != 0 {
		t.Fatalf("expected no timer while save in flight, got %d", armedDuringSave)
	}
	if timers.armed() != 1 {
		t.Fatalf("expected dirty edit to re-arm after settle, got %d armed", timers.armed())
	}

	timers.fire(t)

	if len(saved) != 2 || saved[1] != "two" {
		t.Fatalf("expected second save of dirty snapshot, got %v", saved)
	}
}

func TestNonDraftStatusCancelsAutosave(t *testing.T) {
	timers := &manualTimers{}
	sink := &capture{}
	debouncer := autosave.New(sink.save, autosave.WithTimerFactory(timers.factory))
	defer debouncer.Close()

	debouncer.Touch(newsDraft("pending"))
	if timers.armed() != 1 {
		t.Fatalf("expected armed timer")
	}

	published := newsDraft("pending")
	published.Status = domain.StatusPublished
	debouncer.Touch(published)

	if timers.armed() != 0 {
		t.Fatalf("expected publish to cancel pending autosave")
	}
	if sink.saves() != 0 {
		t.Fatalf("expected no saves, got %d", sink.saves())
	}
}

func TestCancelDropsPendingSnapshot(t *testing.T) {
	timers := &manualTimers{}
	sink := &capture{}
	debouncer := autosave.New(sink.save, autosave.WithTimerFactory(timers.factory))
	defer debouncer.Close()

	debouncer.Touch(newsDraft("pending"))
	debouncer.Cancel()

	if timers.armed() != 0 {
		t.Fatalf("expected cancel to stop the timer")
	}
	if sink.saves() != 0 {
		t.Fatalf("expected no saves after cancel")
	}
}

func TestSaveErrorSurfacesWithoutBlocking(t *testing.T) {
	timers := &manualTimers{}
	sink := &capture{}
	failure := errors.New("storage offline")

	debouncer := autosave.New(func(context.Context, domain.Draft) (domain.VersionToken, error) {
		return "", failure
	},
		autosave.WithTimerFactory(timers.factory),
		autosave.WithNotifier(sink.notify),
	)
	defer debouncer.Close()

	debouncer.Touch(newsDraft("doomed"))
	timers.fire(t)

	sink.mu.Lock()
	defer sink.mu.Unlock()
	sawError := false
	for i, status := range sink.status {
		if status == autosave.StatusError && errors.Is(sink.errs[i], failure) {
			sawError = true
		}
	}
	if !sawError {
		t.Fatalf("expected error notification, got %v", sink.status)
	}

	// The debouncer stays usable after a failure.
	debouncer.Touch(newsDraft("retry"))
	if timers.armed() != 1 {
		t.Fatalf("expected new edits to re-arm after a failure")
	}
}

func TestCloseDiscardsPendingWork(t *testing.T) {
	timers := &manualTimers{}
	sink := &capture{}
	debouncer := autosave.New(sink.save, autosave.WithTimerFactory(timers.factory))

	debouncer.Touch(newsDraft("pending"))
	debouncer.Close()

	if timers.armed() != 0 {
		t.Fatalf("expected close to stop timers")
	}

	debouncer.Touch(newsDraft("after-close"))
	if timers.armed() != 0 {
		t.Fatalf("expected closed debouncer to ignore edits")
	}
	if sink.saves() != 0 {
		t.Fatalf("expected no saves after close")
	}
}

func TestSuccessfulSaveCarriesTokenForward(t *testing.T) {
	timers := &manualTimers{}
	sink := &capture{}
	debouncer := autosave.New(sink.save, autosave.WithTimerFactory(timers.factory))
	defer debouncer.Close()

	debouncer.Touch(newsDraft("first"))
	timers.fire(t)

	debouncer.Touch(newsDraft("second"))
	timers.fire(t)

	sink.mu.Lock()
	defer sink.mu.Unlock()
	if len(sink.drafts) != 2 {
		t.Fatalf("expected two saves, got %d", len(sink.drafts))
	}
	first := domain.TokenFromTime(time.Unix(1700000001, 0))
	if !sink.drafts[1].Token.Equal(first) {
		t.Fatalf("expected second save to carry the refreshed token, got %q", sink.drafts[1].Token)
	}
}
