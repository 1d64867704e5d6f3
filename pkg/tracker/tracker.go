// Package tracker owns the client-side lifecycle of one crawl job: it submits
// the job, polls the backend on a fixed cadence until a terminal state, and
// notifies consumers exactly once when the job completes or fails.
package tracker

import (
	"context"
	"errors"
	"io"
	"log"
	"strings"
	"sync"
	"time"

	"review-crawler-go/pkg/models"
)

// DefaultPollInterval is the status cadence used when none is configured.
const DefaultPollInterval = 2 * time.Second

// Backend is the part of the crawl backend the tracker talks to.
type Backend interface {
	StartCrawl(ctx context.Context, req models.JobRequest) (*models.CrawlResponse, error)
	GetStatus(ctx context.Context, handle models.JobHandle) (*models.TaskStatus, error)
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithInterval sets the delay between the end of one status call and the
// start of the next.
func WithInterval(d time.Duration) Option {
	return func(t *Tracker) {
		if d > 0 {
			t.interval = d
		}
	}
}

// WithNotifier sets the notification sink.
func WithNotifier(n Notifier) Option {
	return func(t *Tracker) {
		if n != nil {
			t.notifier = n
		}
	}
}

// WithLogger sets the logger used for poll failures.
func WithLogger(l *log.Logger) Option {
	return func(t *Tracker) {
		if l != nil {
			t.logger = l
		}
	}
}

// PollHandle identifies one running poll loop. It is returned by
// StartTracking and consumed by Cancel.
type PollHandle struct {
	gen    uint64
	handle models.JobHandle
	cancel context.CancelFunc
	done   chan struct{}
}

// Handle returns the job the loop is polling.
func (p *PollHandle) Handle() models.JobHandle {
	return p.handle
}

// Done is closed once the loop goroutine has exited.
func (p *PollHandle) Done() <-chan struct{} {
	return p.done
}

// Tracker drives a single job at a time.
type Tracker struct {
	backend  Backend
	notifier Notifier
	interval time.Duration
	logger   *log.Logger

	mu      sync.Mutex
	rec     record
	poll    *PollHandle
	gen     uint64
	changed chan struct{}

	// notifyMu serializes notifier calls; the generation is re-checked
	// under it before each call.
	notifyMu sync.Mutex
}

// New creates an idle tracker.
func New(backend Backend, opts ...Option) *Tracker {
	t := &Tracker{
		backend:  backend,
		notifier: nopNotifier{},
		interval: DefaultPollInterval,
		logger:   log.New(io.Discard, "", 0),
		changed:  make(chan struct{}),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Status returns a copy of the current state record.
func (t *Tracker) Status() Status {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.rec.status()
}

// Submit starts a job from StateIdle. Any other state yields ErrAlreadyActive.
// A failed start call moves the tracker to StateFailed, fires the failure
// notification and returns a *SubmitError; it is never retried. If Reset
// runs before Submit returns, the job is discarded and ErrDiscarded is
// returned.
func (t *Tracker) Submit(ctx context.Context, req models.JobRequest) (models.JobHandle, error) {
	t.mu.Lock()
	if err := t.rec.beginSubmit(); err != nil {
		t.mu.Unlock()
		return "", err
	}
	gen := t.gen
	t.broadcastLocked()
	t.mu.Unlock()

	resp, err := t.backend.StartCrawl(ctx, req)
	if err == nil && (resp == nil || strings.TrimSpace(resp.TaskID) == "") {
		err = errors.New("backend accepted the crawl without a task id")
	}

	t.mu.Lock()
	if t.gen != gen {
		t.mu.Unlock()
		return "", ErrDiscarded
	}
	if err != nil {
		msg := userMessage(err)
		eff := t.rec.submitFailed(err, msg)
		st := t.rec.status()
		t.broadcastLocked()
		t.mu.Unlock()
		t.dispatch(gen, eff, st)
		return "", &SubmitError{Message: msg, Err: err}
	}

	handle := models.JobHandle(resp.TaskID)
	t.rec.submitted(handle)
	t.broadcastLocked()
	t.mu.Unlock()

	t.notify(gen, func() { t.notifier.Started(handle, resp.Message) })

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.gen != gen {
		return "", ErrDiscarded
	}
	if t.rec.handle == handle && t.poll == nil && !t.rec.state.Terminal() {
		t.startLocked(handle)
	}
	return handle, nil
}

// StartTracking begins polling handle. From StateIdle it adopts the handle as
// a pending job; for the current job it resumes a loop stopped by Cancel, or
// returns the loop already running. Any other job yields ErrAlreadyActive.
func (t *Tracker) StartTracking(handle models.JobHandle) (*PollHandle, error) {
	if strings.TrimSpace(handle.String()) == "" {
		return nil, errors.New("job handle is required")
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	switch t.rec.state {
	case StateIdle:
		t.rec.submitted(handle)
		t.broadcastLocked()
	case StatePending, StateProcessing:
		if t.rec.handle != handle {
			return nil, ErrAlreadyActive
		}
		if t.poll != nil {
			return t.poll, nil
		}
	case StateSubmitting, StateCompleted, StateFailed:
		return nil, ErrAlreadyActive
	}

	return t.startLocked(handle), nil
}

// Cancel stops the given poll loop. The state record is kept, so tracking can
// be resumed with StartTracking. Cancelling a stale or nil handle is a no-op.
func (t *Tracker) Cancel(ph *PollHandle) {
	if ph == nil {
		return
	}
	t.mu.Lock()
	if t.poll == ph {
		t.poll = nil
	}
	t.mu.Unlock()
	ph.cancel()
}

// Reset discards the handle, snapshot and notification latch and returns the
// tracker to StateIdle. It is safe to call in any state, including while a
// status call or a start call is in flight, and from inside a notifier.
// Notifications for the discarded job that have not begun are dropped; one
// already running completes before any notification for the next job.
func (t *Tracker) Reset() {
	t.mu.Lock()
	ph := t.poll
	t.poll = nil
	t.gen++
	t.rec.reset()
	t.broadcastLocked()
	t.mu.Unlock()

	if ph != nil {
		ph.cancel()
	}
}

// Close stops polling and waits for the loop goroutine to exit. The state
// record is kept.
func (t *Tracker) Close() {
	t.mu.Lock()
	ph := t.poll
	t.poll = nil
	t.mu.Unlock()

	if ph != nil {
		ph.cancel()
		<-ph.done
	}
}

// Wait blocks until the job reaches a terminal state, the tracker is idle
// (nothing to wait for, or Reset was called), or ctx is done.
func (t *Tracker) Wait(ctx context.Context) (Status, error) {
	for {
		t.mu.Lock()
		st := t.rec.status()
		changed := t.changed
		t.mu.Unlock()

		if st.State.Terminal() || st.State == StateIdle {
			return st, nil
		}

		select {
		case <-ctx.Done():
			return st, ctx.Err()
		case <-changed:
		}
	}
}

func (t *Tracker) startLocked(handle models.JobHandle) *PollHandle {
	ctx, cancel := context.WithCancel(context.Background())
	ph := &PollHandle{
		gen:    t.gen,
		handle: handle,
		cancel: cancel,
		done:   make(chan struct{}),
	}
	t.poll = ph
	go t.pollLoop(ctx, ph)
	return ph
}

// pollLoop polls immediately, then waits interval after each call returns,
// so ticks never overlap.
func (t *Tracker) pollLoop(ctx context.Context, ph *PollHandle) {
	defer close(ph.done)
	defer ph.cancel()

	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}

		if t.pollOnce(ctx, ph) {
			return
		}
		timer.Reset(t.interval)
	}
}

// pollOnce performs one status call and applies the result. It reports
// whether the loop should stop. Errors and panics are logged and swallowed.
func (t *Tracker) pollOnce(ctx context.Context, ph *PollHandle) (stop bool) {
	defer func() {
		if r := recover(); r != nil {
			t.logger.Printf("ERROR: status poll for %s panicked: %v", ph.handle, r)
			stop = stop || ctx.Err() != nil
		}
	}()

	status, err := t.backend.GetStatus(ctx, ph.handle)
	if ctx.Err() != nil {
		return true
	}
	if err != nil {
		t.logger.Printf("ERROR: status poll for %s failed: %v", ph.handle, err)
		return false
	}
	if status == nil {
		t.logger.Printf("ERROR: status poll for %s returned no body", ph.handle)
		return false
	}
	snap, err := status.Snapshot()
	if err != nil {
		t.logger.Printf("ERROR: status poll for %s: %v", ph.handle, err)
		return false
	}

	t.mu.Lock()
	if t.poll != ph {
		t.mu.Unlock()
		return true
	}
	eff := t.rec.observe(snap)
	st := t.rec.status()
	if st.State.Terminal() {
		t.poll = nil
		stop = true
	}
	if eff != effectNone {
		t.broadcastLocked()
	}
	t.mu.Unlock()

	t.dispatch(ph.gen, eff, st)
	return stop
}

func (t *Tracker) dispatch(gen uint64, eff effect, st Status) {
	switch eff {
	case effectProgress:
		if st.Snapshot != nil {
			t.notify(gen, func() { t.notifier.Progress(*st.Snapshot) })
		}
	case effectSucceeded:
		if st.Snapshot != nil {
			t.notify(gen, func() { t.notifier.Succeeded(*st.Snapshot) })
		}
	case effectFailed:
		if st.Failure != nil {
			t.notify(gen, func() { t.notifier.Failed(*st.Failure) })
		}
	case effectNone:
	}
}

// notify calls fn unless the job of generation gen has been reset.
func (t *Tracker) notify(gen uint64, fn func()) {
	t.notifyMu.Lock()
	defer t.notifyMu.Unlock()

	t.mu.Lock()
	current := t.gen == gen
	t.mu.Unlock()
	if current {
		fn()
	}
}

func (t *Tracker) broadcastLocked() {
	close(t.changed)
	t.changed = make(chan struct{})
}

// userMessage prefers a friendly message when the error carries one.
func userMessage(err error) string {
	var friendly interface{ UserMessage() string }
	if errors.As(err, &friendly) {
		if msg := friendly.UserMessage(); msg != "" {
			return msg
		}
	}
	return err.Error()
}
