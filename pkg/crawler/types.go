package crawler

import "review-crawler-go/pkg/models"

// Artifact describes a downloaded export.
type Artifact struct {
	Filename    string
	ContentType string
	Format      models.ExportFormat
	Size        int64
	Path        string // set by SaveArtifact
}

// errorBody covers the error shapes the backend may return: FastAPI's
// {"detail": "..."} or {"detail": [{"msg": "..."}]}, and {"error": "..."}.
type errorBody struct {
	Detail any    `json:"detail"`
	Error  string `json:"error"`
}
