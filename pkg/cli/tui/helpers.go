package tui

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"review-crawler-go/pkg/cli/report"
	"review-crawler-go/pkg/crawler"
	"review-crawler-go/pkg/models"
	"review-crawler-go/pkg/utils"
)

// renderErrorView renders a standard error view with exit message
func renderErrorView(err error) string {
	return "\n" + renderError(fmt.Sprintf("Error: %v", err)) + "\n\n" +
		helpStyle.Render("Press any key to return...") + "\n"
}

// renderLoadingState renders a standard loading message
func renderLoadingState(message string) string {
	return "\n" + infoStyle.Render(message) + "\n"
}

// renderSuccessView renders a standard success view with exit message
func renderSuccessView(message string) string {
	return "\n" + renderSuccess(message) + "\n\n" +
		helpStyle.Render("Press any key to return...") + "\n"
}

// renderRatingToggles renders the five rating toggles, highest first
func renderRatingToggles(sel utils.RatingSelection) string {
	parts := make([]string, 0, models.MaxRating)
	for r := models.MaxRating; r >= models.MinRating; r-- {
		label := fmt.Sprintf("[%d★]", r)
		if sel.Selected(r) {
			parts = append(parts, ratingOnStyle.Render(label))
		} else {
			parts = append(parts, ratingOffStyle.Render(label))
		}
	}
	out := strings.Join(parts, " ")
	if sel.Filter().IsUnset() {
		out += " " + mutedStyle.Render("(all ratings)")
	}
	return out
}

// renderRequestSummary renders the submitted request
func renderRequestSummary(req models.JobRequest) string {
	var b strings.Builder

	b.WriteString(fieldLabelStyle.Render("Product:"))
	b.WriteString(fmt.Sprintf(" %s\n", urlStyle.Render(truncateURL(req.ProductURL, 70))))

	b.WriteString(fieldLabelStyle.Render("Ratings:"))
	b.WriteString(fmt.Sprintf(" %s\n", report.FormatRatings(req.Ratings)))

	b.WriteString(fieldLabelStyle.Render("Max reviews:"))
	b.WriteString(fmt.Sprintf(" %d\n", req.MaxReviews))

	return b.String()
}

// renderSnapshotDetails renders the final snapshot of a finished job
func renderSnapshotDetails(snap models.JobSnapshot, elapsed time.Duration) string {
	var b strings.Builder

	b.WriteString(fieldLabelStyle.Render("Job:"))
	b.WriteString(fmt.Sprintf(" %s\n", handleStyle.Render(snap.Handle.String())))

	b.WriteString(fieldLabelStyle.Render("Collected:"))
	b.WriteString(fmt.Sprintf(" %s\n", report.FormatCounts(snap)))

	if snap.Message != "" {
		b.WriteString(fieldLabelStyle.Render("Message:"))
		b.WriteString(fmt.Sprintf(" %s\n", snap.Message))
	}

	if elapsed > 0 {
		b.WriteString(fieldLabelStyle.Render("Took:"))
		b.WriteString(fmt.Sprintf(" %s\n", elapsed.Round(time.Second)))
	}

	return b.String()
}

// truncateURL truncates a URL to the specified max length
func truncateURL(url string, maxLen int) string {
	return report.TruncateURL(url, maxLen)
}

// handleQuitKeys checks if a key should quit the current view
func handleQuitKeys(key string) bool {
	switch key {
	case "ctrl+c", "q", "esc":
		return true
	}
	return false
}

// renderInlineError renders an error message inline (without full error view formatting)
func renderInlineError(err error) string {
	if err == nil {
		return ""
	}
	return renderError(err.Error())
}

// userFacingError converts structured backend errors into friendly messages,
// while leaving other error types unchanged.
func userFacingError(err error) error {
	if err == nil {
		return nil
	}

	var crawlerErr *crawler.CrawlerError
	if errors.As(err, &crawlerErr) {
		return errors.New(crawlerErr.UserMessage())
	}

	return err
}
