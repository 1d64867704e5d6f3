package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"review-crawler-go/pkg/models"
)

// Crawler palette. Naver green is the accent; stars use gold.
var (
	colorAccent  = lipgloss.Color("35")  // Naver green
	colorStar    = lipgloss.Color("220") // Gold
	colorBarFrom = "#1EC800"
	colorBarTo   = "#03C75A"
	colorSuccess = lipgloss.Color("42")
	colorError   = lipgloss.Color("196")
	colorWarning = lipgloss.Color("214")
	colorPending = lipgloss.Color("39")
	colorMuted   = lipgloss.Color("240")
	colorDim     = lipgloss.Color("237")
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorAccent).
			MarginBottom(1)

	boldStyle = lipgloss.NewStyle().Bold(true)

	mutedStyle = lipgloss.NewStyle().Foreground(colorMuted)

	successStyle = lipgloss.NewStyle().
			Foreground(colorSuccess).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(colorError).
			Bold(true)

	warningStyle = lipgloss.NewStyle().Foreground(colorWarning)

	infoStyle = lipgloss.NewStyle().Foreground(colorPending)

	// Job handle and product URL in the request summary
	handleStyle = lipgloss.NewStyle().
			Foreground(colorAccent).
			Bold(true)

	urlStyle = lipgloss.NewStyle().
			Foreground(colorMuted).
			Italic(true)

	ratingOnStyle = lipgloss.NewStyle().
			Foreground(colorStar).
			Bold(true)

	ratingOffStyle = lipgloss.NewStyle().Foreground(colorDim)

	fieldLabelStyle = lipgloss.NewStyle().
			Foreground(colorAccent).
			Bold(true).
			MarginRight(2)

	// Focused form section
	focusStyle = lipgloss.NewStyle().
			Foreground(colorStar).
			Bold(true)

	// Menu numbers and help keys
	keyStyle = lipgloss.NewStyle().
			Foreground(colorAccent).
			Bold(true)

	dividerStyle = lipgloss.NewStyle().Foreground(colorDim)

	helpStyle = lipgloss.NewStyle().
			Foreground(colorMuted).
			Italic(true)
)

// jobStateStyle colors the server-reported job state on the tracking screen.
func jobStateStyle(state models.JobState) lipgloss.Style {
	switch state {
	case models.JobProcessing:
		return boldStyle.Foreground(colorAccent)
	case models.JobCompleted:
		return successStyle
	case models.JobFailed:
		return errorStyle
	default:
		return boldStyle.Foreground(colorPending)
	}
}

func renderTitle(title string) string {
	return "\n" + titleStyle.Render(title) + "\n"
}

func renderSuccess(msg string) string {
	return successStyle.Render("✓ " + msg)
}

func renderError(msg string) string {
	return errorStyle.Render("❌ " + msg)
}

func renderWarning(msg string) string {
	return warningStyle.Render("⚠ " + msg)
}

func renderDivider(length int) string {
	return dividerStyle.Render(strings.Repeat("─", length))
}
