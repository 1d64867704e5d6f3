package report

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"review-crawler-go/pkg/models"
	"review-crawler-go/pkg/tracker"
)

// FormatStarted formats the line printed once a job is accepted
func FormatStarted(handle models.JobHandle, message string) string {
	if message == "" {
		message = "crawl started"
	}
	return fmt.Sprintf("⏳ Job %s accepted: %s\n", handle.Short(), message)
}

// FormatProgressLine formats a single progress line for headless output
func FormatProgressLine(snap models.JobSnapshot) string {
	return fmt.Sprintf("   %s %3d%%  %s  %s\n",
		ProgressBar(snap.Progress, 20),
		snap.Progress,
		FormatCounts(snap),
		snap.Message,
	)
}

// FormatCounts formats collected/target with the completion ratio
func FormatCounts(snap models.JobSnapshot) string {
	if snap.Target <= 0 {
		return fmt.Sprintf("%d reviews", snap.Collected)
	}
	return fmt.Sprintf("%d/%d reviews (%d%%)", snap.Collected, snap.Target, snap.CompletionRatio())
}

// FormatSuccessMessage formats the completion summary
func FormatSuccessMessage(snap models.JobSnapshot, savedTo string) string {
	var b strings.Builder

	b.WriteString("\n")
	b.WriteString("✓ Crawl completed successfully!\n")
	b.WriteString("\n")

	w := tabwriter.NewWriter(&b, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "  Job:\t%s\n", snap.Handle)
	fmt.Fprintf(w, "  Collected:\t%s\n", FormatCounts(snap))
	if snap.DownloadURL != "" {
		fmt.Fprintf(w, "  Download:\t%s\n", snap.DownloadURL)
	}
	if savedTo != "" {
		fmt.Fprintf(w, "  Saved to:\t%s\n", savedTo)
	}
	w.Flush()
	b.WriteString("\n")

	return b.String()
}

// FormatFailure formats a failed job or submission
func FormatFailure(f tracker.Failure) string {
	switch f.Stage {
	case tracker.StageSubmission:
		return fmt.Sprintf("❌ Could not start the crawl: %s\n", f.Message)
	case tracker.StageJob:
		return fmt.Sprintf("❌ Crawl failed: %s\n", f.Message)
	default:
		return fmt.Sprintf("❌ %s\n", f.Message)
	}
}

// FormatRequest summarizes a validated request before submission
func FormatRequest(req models.JobRequest) string {
	var b strings.Builder
	w := tabwriter.NewWriter(&b, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "  Product:\t%s\n", TruncateURL(req.ProductURL, 70))
	fmt.Fprintf(w, "  Ratings:\t%s\n", FormatRatings(req.Ratings))
	fmt.Fprintf(w, "  Max reviews:\t%d\n", req.MaxReviews)
	w.Flush()
	return b.String()
}

// FormatHealth formats the backend health response
func FormatHealth(baseURL string, h *models.HealthResponse) string {
	return fmt.Sprintf("✓ %s is %s (%s)\n", baseURL, h.Status, h.Service)
}

// ShareText is the summary copied when a result is shared
func ShareText(snap models.JobSnapshot) string {
	text := fmt.Sprintf("Collected %d reviews", snap.Collected)
	if snap.DownloadURL != "" {
		text += ": " + snap.DownloadURL
	}
	return text
}

// FormatErrorMessage formats an error message consistently
func FormatErrorMessage(err error) string {
	return fmt.Sprintf("❌ Error: %v\n", err)
}

// WriteToStderr writes formatted output to stderr
func WriteToStderr(content string) {
	fmt.Fprint(os.Stderr, content)
}
