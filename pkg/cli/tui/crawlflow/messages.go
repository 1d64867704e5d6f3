package crawlflow

import (
	"review-crawler-go/pkg/crawler"
	"review-crawler-go/pkg/models"
	"review-crawler-go/pkg/tracker"
)

// SubmittedMsg is emitted when the tracker's Submit call returns
type SubmittedMsg struct {
	Handle models.JobHandle
	Err    error
}

// TrackerEventMsg wraps a notification delivered by the tracker
type TrackerEventMsg struct {
	Event tracker.Event
}

// EventsClosedMsg is emitted if the tracker event channel is closed
type EventsClosedMsg struct{}

// DownloadDoneMsg is emitted when an artifact download finishes
type DownloadDoneMsg struct {
	Artifact *crawler.Artifact
	Err      error
}

// ShareDoneMsg is emitted when the summary has been copied
type ShareDoneMsg struct {
	Err error
}

// HealthCheckedMsg is emitted when the backend health check returns
type HealthCheckedMsg struct {
	Health *models.HealthResponse
	Err    error
}
