package tracker

import (
	"fmt"

	"review-crawler-go/pkg/models"
)

// State is the client-side lifecycle state of one job.
type State int

const (
	StateIdle State = iota
	StateSubmitting
	StatePending
	StateProcessing
	StateCompleted
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSubmitting:
		return "submitting"
	case StatePending:
		return "pending"
	case StateProcessing:
		return "processing"
	case StateCompleted:
		return "completed"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Terminal reports whether the state is absorbing.
func (s State) Terminal() bool {
	return s == StateCompleted || s == StateFailed
}

// Active reports whether a job is in flight.
func (s State) Active() bool {
	switch s {
	case StateSubmitting, StatePending, StateProcessing:
		return true
	default:
		return false
	}
}

func stateFor(js models.JobState) State {
	switch js {
	case models.JobPending:
		return StatePending
	case models.JobProcessing:
		return StateProcessing
	case models.JobCompleted:
		return StateCompleted
	case models.JobFailed:
		return StateFailed
	default:
		panic(fmt.Sprintf("tracker: unhandled job state %q", js))
	}
}

// FailureStage says where a job failed.
type FailureStage string

const (
	StageSubmission FailureStage = "submission"
	StageJob        FailureStage = "job"
)

// DefaultFailureMessage is used when the backend marks a job failed without
// an error string.
const DefaultFailureMessage = "Crawling failed."

// Failure describes why a job ended in StateFailed.
type Failure struct {
	Stage   FailureStage
	Message string
	Err     error
}

// effect is what the caller must do after a transition.
type effect int

const (
	effectNone effect = iota
	effectProgress
	effectSucceeded
	effectFailed
)

// record is the tracker's state record. notified is the one-shot latch for
// terminal notifications; it is set in the same step as the terminal
// transition.
type record struct {
	state    State
	handle   models.JobHandle
	snapshot *models.JobSnapshot
	failure  *Failure
	notified bool
}

func (r *record) reset() {
	*r = record{}
}

func (r *record) beginSubmit() error {
	if r.state != StateIdle {
		return ErrAlreadyActive
	}
	r.state = StateSubmitting
	return nil
}

func (r *record) submitted(handle models.JobHandle) {
	r.state = StatePending
	r.handle = handle
}

func (r *record) submitFailed(err error, message string) effect {
	r.state = StateFailed
	r.failure = &Failure{Stage: StageSubmission, Message: message, Err: err}
	return r.latch(effectFailed)
}

// observe applies a polled snapshot. Snapshots for another handle, snapshots
// that would move the state backwards, and anything arriving after a
// terminal state are ignored.
func (r *record) observe(snap models.JobSnapshot) effect {
	switch r.state {
	case StatePending, StateProcessing:
	case StateIdle, StateSubmitting, StateCompleted, StateFailed:
		return effectNone
	default:
		return effectNone
	}
	if snap.Handle != "" && snap.Handle != r.handle {
		return effectNone
	}
	snap.Handle = r.handle

	next := stateFor(snap.State)
	if next < r.state {
		return effectNone
	}

	normalize(&snap, r.snapshot)
	r.snapshot = &snap
	r.state = next

	switch next {
	case StateCompleted:
		return r.latch(effectSucceeded)
	case StateFailed:
		msg := snap.Error
		if msg == "" {
			msg = DefaultFailureMessage
		}
		r.failure = &Failure{Stage: StageJob, Message: msg}
		return r.latch(effectFailed)
	case StatePending, StateProcessing:
		return effectProgress
	default:
		return effectNone
	}
}

func (r *record) latch(e effect) effect {
	if r.notified {
		return effectNone
	}
	r.notified = true
	return e
}

// normalize keeps progress non-decreasing and within [0,100], and clamps
// collected to target once the target is known.
func normalize(snap *models.JobSnapshot, prev *models.JobSnapshot) {
	if snap.Progress < 0 {
		snap.Progress = 0
	}
	if snap.Progress > 100 {
		snap.Progress = 100
	}
	if prev != nil && snap.Progress < prev.Progress {
		snap.Progress = prev.Progress
	}
	if snap.Collected < 0 {
		snap.Collected = 0
	}
	if snap.Target > 0 && snap.Collected > snap.Target {
		snap.Collected = snap.Target
	}
}

// Status is a point-in-time copy of the tracker's state record.
type Status struct {
	State    State
	Handle   models.JobHandle
	Snapshot *models.JobSnapshot
	Failure  *Failure
}

func (r *record) status() Status {
	st := Status{State: r.state, Handle: r.handle}
	if r.snapshot != nil {
		snap := *r.snapshot
		st.Snapshot = &snap
	}
	if r.failure != nil {
		f := *r.failure
		st.Failure = &f
	}
	return st
}
