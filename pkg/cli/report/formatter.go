package report

import (
	"strings"

	"review-crawler-go/pkg/models"
)

// TruncateURL truncates a URL to the specified max length
func TruncateURL(url string, maxLen int) string {
	if len(url) <= maxLen {
		return url
	}
	return url[:maxLen-3] + "..."
}

// FormatRatings renders a rating filter as stars, or "all ratings"
func FormatRatings(f models.RatingFilter) string {
	if f.IsUnset() {
		return "all ratings"
	}
	parts := make([]string, 0, f.Len())
	for _, r := range f.Values() {
		parts = append(parts, strings.Repeat("★", r))
	}
	return strings.Join(parts, ", ")
}

// ProgressBar renders a fixed-width text bar for a 0-100 percentage
func ProgressBar(percent, width int) string {
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	filled := percent * width / 100
	return "[" + strings.Repeat("█", filled) + strings.Repeat("░", width-filled) + "]"
}
