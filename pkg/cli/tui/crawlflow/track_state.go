package crawlflow

import (
	"time"

	"review-crawler-go/pkg/models"
	"review-crawler-go/pkg/tracker"
)

// TrackState holds what the flow shows about the job being tracked
type TrackState struct {
	Request   models.JobRequest
	Handle    models.JobHandle
	Message   string
	Snapshot  *models.JobSnapshot
	Failure   *tracker.Failure
	StartedAt time.Time
	Elapsed   time.Duration
}

// Sync copies the tracker status into the state and reports the flow step it
// implies. Idle and submitting statuses leave the step unchanged.
func (s *TrackState) Sync(st tracker.Status, step int) int {
	switch st.State {
	case tracker.StatePending, tracker.StateProcessing:
		s.Handle = st.Handle
		s.Snapshot = st.Snapshot
		return StepTracking
	case tracker.StateCompleted:
		s.Handle = st.Handle
		s.Snapshot = st.Snapshot
		s.Elapsed = time.Since(s.StartedAt)
		return StepDone
	case tracker.StateFailed:
		s.Handle = st.Handle
		s.Snapshot = st.Snapshot
		s.Failure = st.Failure
		s.Elapsed = time.Since(s.StartedAt)
		return StepFailed
	case tracker.StateIdle, tracker.StateSubmitting:
		return step
	default:
		return step
	}
}

// Percent returns the progress as a 0-1 fraction for the progress bar
func (s *TrackState) Percent() float64 {
	if s.Snapshot == nil {
		return 0
	}
	return float64(s.Snapshot.Progress) / 100
}
