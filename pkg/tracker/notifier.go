package tracker

import "review-crawler-go/pkg/models"

// Notifier receives lifecycle notifications. Started, Succeeded and Failed
// fire at most once per job. Calls are made one at a time without the tracker
// lock held, from the submitting goroutine or the poll goroutine. A notifier
// may call Reset or Status but must not call Submit.
type Notifier interface {
	Started(handle models.JobHandle, message string)
	Progress(snap models.JobSnapshot)
	Succeeded(snap models.JobSnapshot)
	Failed(failure Failure)
}

// NotifierFuncs adapts plain functions to Notifier. Nil fields are skipped.
type NotifierFuncs struct {
	OnStarted   func(handle models.JobHandle, message string)
	OnProgress  func(snap models.JobSnapshot)
	OnSucceeded func(snap models.JobSnapshot)
	OnFailed    func(failure Failure)
}

func (n NotifierFuncs) Started(handle models.JobHandle, message string) {
	if n.OnStarted != nil {
		n.OnStarted(handle, message)
	}
}

func (n NotifierFuncs) Progress(snap models.JobSnapshot) {
	if n.OnProgress != nil {
		n.OnProgress(snap)
	}
}

func (n NotifierFuncs) Succeeded(snap models.JobSnapshot) {
	if n.OnSucceeded != nil {
		n.OnSucceeded(snap)
	}
}

func (n NotifierFuncs) Failed(failure Failure) {
	if n.OnFailed != nil {
		n.OnFailed(failure)
	}
}

// EventKind identifies an Event.
type EventKind int

const (
	EventStarted EventKind = iota
	EventProgress
	EventSucceeded
	EventFailed
)

// Event is a notification delivered by ChanNotifier.
type Event struct {
	Kind     EventKind
	Handle   models.JobHandle
	Message  string
	Snapshot models.JobSnapshot
	Failure  Failure
}

// ChanNotifier delivers notifications on a buffered channel. Progress events
// are dropped when the buffer is full; the others block until received.
type ChanNotifier struct {
	events chan Event
}

// NewChanNotifier creates a notifier with the given buffer size.
func NewChanNotifier(buffer int) *ChanNotifier {
	if buffer <= 0 {
		buffer = 16
	}
	return &ChanNotifier{events: make(chan Event, buffer)}
}

// Events returns the receive side of the channel.
func (n *ChanNotifier) Events() <-chan Event {
	return n.events
}

func (n *ChanNotifier) Started(handle models.JobHandle, message string) {
	n.events <- Event{Kind: EventStarted, Handle: handle, Message: message}
}

func (n *ChanNotifier) Progress(snap models.JobSnapshot) {
	select {
	case n.events <- Event{Kind: EventProgress, Handle: snap.Handle, Snapshot: snap}:
	default:
	}
}

func (n *ChanNotifier) Succeeded(snap models.JobSnapshot) {
	n.events <- Event{Kind: EventSucceeded, Handle: snap.Handle, Snapshot: snap}
}

func (n *ChanNotifier) Failed(failure Failure) {
	n.events <- Event{Kind: EventFailed, Message: failure.Message, Failure: failure}
}

type nopNotifier struct{}

func (nopNotifier) Started(models.JobHandle, string) {}
func (nopNotifier) Progress(models.JobSnapshot)      {}
func (nopNotifier) Succeeded(models.JobSnapshot)     {}
func (nopNotifier) Failed(Failure)                   {}
