package models

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Bounds accepted by the crawl backend.
const (
	MinRating      = 1
	MaxRating      = 5
	MinResultLimit = 10
	MaxResultLimit = 1000
)

// JobHandle is the opaque task identifier returned when a crawl is accepted.
type JobHandle string

func (h JobHandle) String() string {
	return string(h)
}

// Short returns a shortened handle for display (first 8 characters + "...").
func (h JobHandle) Short() string {
	if len(h) <= 8 {
		return string(h)
	}
	return string(h[:8]) + "..."
}

// RatingFilter is a set of star ratings. The zero value means "all ratings".
type RatingFilter struct {
	bits uint8
}

// NewRatingFilter builds a filter from the given ratings. Duplicates collapse;
// an empty argument list yields the unset filter.
func NewRatingFilter(ratings ...int) (RatingFilter, error) {
	var f RatingFilter
	for _, r := range ratings {
		if r < MinRating || r > MaxRating {
			return RatingFilter{}, fmt.Errorf("rating %d out of range %d-%d", r, MinRating, MaxRating)
		}
		f.bits |= 1 << uint(r)
	}
	return f, nil
}

// IsUnset reports whether the filter collects every rating.
func (f RatingFilter) IsUnset() bool {
	return f.bits == 0
}

// Contains reports whether rating r is selected. An unset filter contains
// every valid rating.
func (f RatingFilter) Contains(r int) bool {
	if r < MinRating || r > MaxRating {
		return false
	}
	if f.IsUnset() {
		return true
	}
	return f.bits&(1<<uint(r)) != 0
}

// Len returns the number of selected ratings (0 when unset).
func (f RatingFilter) Len() int {
	n := 0
	for r := MinRating; r <= MaxRating; r++ {
		if f.bits&(1<<uint(r)) != 0 {
			n++
		}
	}
	return n
}

// Values returns the selected ratings from highest to lowest, or nil when
// the filter is unset.
func (f RatingFilter) Values() []int {
	if f.IsUnset() {
		return nil
	}
	values := make([]int, 0, MaxRating)
	for r := MaxRating; r >= MinRating; r-- {
		if f.bits&(1<<uint(r)) != 0 {
			values = append(values, r)
		}
	}
	return values
}

func (f RatingFilter) String() string {
	if f.IsUnset() {
		return "all"
	}
	parts := make([]string, 0, MaxRating)
	for _, r := range f.Values() {
		parts = append(parts, strconv.Itoa(r))
	}
	return strings.Join(parts, ",")
}

// JobRequest is a validated, immutable crawl request.
type JobRequest struct {
	ProductURL string
	Ratings    RatingFilter
	MaxReviews int
}

// ToCrawlRequest converts the request to its wire form. An unset filter is
// sent as null.
func (r JobRequest) ToCrawlRequest() CrawlRequest {
	limit := r.MaxReviews
	return CrawlRequest{
		ProductURL:   r.ProductURL,
		RatingFilter: r.Ratings.Values(),
		MaxReviews:   &limit,
	}
}

// JobState is the server-reported state of a crawl job.
type JobState string

const (
	JobPending    JobState = "pending"
	JobProcessing JobState = "processing"
	JobCompleted  JobState = "completed"
	JobFailed     JobState = "failed"
)

// ParseJobState validates a wire status string.
func ParseJobState(s string) (JobState, error) {
	switch state := JobState(strings.ToLower(strings.TrimSpace(s))); state {
	case JobPending, JobProcessing, JobCompleted, JobFailed:
		return state, nil
	default:
		return "", fmt.Errorf("unknown job status %q", s)
	}
}

// Terminal reports whether no further transition can follow.
func (s JobState) Terminal() bool {
	return s == JobCompleted || s == JobFailed
}

// JobSnapshot is the latest known status of a job.
type JobSnapshot struct {
	Handle      JobHandle
	State       JobState
	Progress    int
	Collected   int
	Target      int
	Message     string
	Error       string
	DownloadURL string
}

// CompletionRatio is the collected/target percentage shown to the user.
func (s JobSnapshot) CompletionRatio() int {
	if s.Target <= 0 {
		return 0
	}
	return int(math.Round(float64(s.Collected) / float64(s.Target) * 100))
}
