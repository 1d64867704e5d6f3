package crawlflow

import (
	"testing"

	"review-crawler-go/pkg/models"
	"review-crawler-go/pkg/tracker"
)

func TestTrackStateSync(t *testing.T) {
	snap := &models.JobSnapshot{Handle: "h", State: models.JobProcessing, Progress: 40}

	var s TrackState
	if step := s.Sync(tracker.Status{State: tracker.StateIdle}, StepSubmitting); step != StepSubmitting {
		t.Fatalf("idle status must keep the step, got %d", step)
	}
	if step := s.Sync(tracker.Status{State: tracker.StateProcessing, Handle: "h", Snapshot: snap}, StepSubmitting); step != StepTracking {
		t.Fatalf("expected tracking, got %d", step)
	}
	if s.Percent() != 0.4 {
		t.Fatalf("unexpected percent %v", s.Percent())
	}

	failure := &tracker.Failure{Stage: tracker.StageJob, Message: "boom"}
	if step := s.Sync(tracker.Status{State: tracker.StateFailed, Handle: "h", Snapshot: snap, Failure: failure}, StepTracking); step != StepFailed {
		t.Fatalf("expected failed, got %d", step)
	}
	if s.Failure == nil || s.Failure.Message != "boom" {
		t.Fatalf("unexpected failure %+v", s.Failure)
	}
}
