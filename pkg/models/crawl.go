package models

import (
	"fmt"
	"strings"
)

// CrawlRequest is the body of POST /api/crawl. MaxReviews is nil when the
// field is absent; an explicit value must be in range.
type CrawlRequest struct {
	ProductURL   string `json:"product_url" binding:"required"`
	RatingFilter []int  `json:"rating_filter" binding:"omitempty,dive,min=1,max=5"`
	MaxReviews   *int   `json:"max_reviews,omitempty" binding:"omitempty,min=1,max=1000"`
}

// CrawlResponse is returned when a crawl job is accepted.
type CrawlResponse struct {
	TaskID  string `json:"task_id"`
	Status  string `json:"status"`
	Message string `json:"message"`
}

// TaskStatus is the body of GET /api/status/{task_id}.
type TaskStatus struct {
	TaskID         string  `json:"task_id"`
	Status         string  `json:"status"`
	Progress       int     `json:"progress"`
	CollectedCount int     `json:"collected_count"`
	TotalTarget    int     `json:"total_target"`
	Message        string  `json:"message"`
	Error          *string `json:"error"`
	DownloadURL    *string `json:"download_url"`
}

// Snapshot converts the wire status into a JobSnapshot.
func (t TaskStatus) Snapshot() (JobSnapshot, error) {
	state, err := ParseJobState(t.Status)
	if err != nil {
		return JobSnapshot{}, err
	}
	snap := JobSnapshot{
		Handle:    JobHandle(t.TaskID),
		State:     state,
		Progress:  t.Progress,
		Collected: t.CollectedCount,
		Target:    t.TotalTarget,
		Message:   t.Message,
	}
	if t.Error != nil {
		snap.Error = *t.Error
	}
	if t.DownloadURL != nil {
		snap.DownloadURL = *t.DownloadURL
	}
	return snap, nil
}

// HealthResponse is the body of GET /api/health.
type HealthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
}

// ExportFormat selects the artifact produced by GET /api/download.
type ExportFormat string

const (
	FormatExcel ExportFormat = "excel"
	FormatCSV   ExportFormat = "csv"
)

// ParseExportFormat accepts "excel", "xlsx" or "csv". Empty means excel.
func ParseExportFormat(s string) (ExportFormat, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "excel", "xlsx":
		return FormatExcel, nil
	case "csv":
		return FormatCSV, nil
	default:
		return "", fmt.Errorf("unsupported export format %q (expected excel or csv)", s)
	}
}

// Extension returns the file extension without the dot.
func (f ExportFormat) Extension() string {
	if f == FormatCSV {
		return "csv"
	}
	return "xlsx"
}

// MediaType returns the Content-Type served for the format.
func (f ExportFormat) MediaType() string {
	if f == FormatCSV {
		return "text/csv"
	}
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

// Label is the human-readable name of the format.
func (f ExportFormat) Label() string {
	if f == FormatCSV {
		return "CSV"
	}
	return "Excel"
}
