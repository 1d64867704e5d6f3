package crawlflow

// Step constants for the crawl flow state machine
const (
	StepForm = iota
	StepSubmitting
	StepTracking
	StepDone
	StepFailed
)

// LimitStep is how much ←/→ change the review limit
const LimitStep = 10

// DefaultWidth is the default terminal width fallback
const DefaultWidth = 80
