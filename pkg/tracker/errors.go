package tracker

import (
	"errors"
	"fmt"
)

var (
	// ErrAlreadyActive is returned by Submit when the tracker is not idle.
	ErrAlreadyActive = errors.New("a crawl job is already active")

	// ErrDiscarded is returned by Submit when Reset ran while the start call
	// was in flight; the accepted job is not tracked.
	ErrDiscarded = errors.New("tracker was reset during submission")
)

// SubmitError wraps a failed start call. The tracker is in StateFailed with
// no handle.
type SubmitError struct {
	Message string
	Err     error
}

func (e *SubmitError) Error() string {
	return fmt.Sprintf("failed to start crawl: %s", e.Message)
}

func (e *SubmitError) Unwrap() error {
	return e.Err
}
