package tui

import (
	"fmt"
	"strings"
)

// HelpItem represents a single keyboard shortcut and its description
type HelpItem struct {
	Key         string
	Description string
}

// RootMenuHelpContent returns help for root menu
func RootMenuHelpContent() string {
	items := []HelpItem{
		{"1-2", "Select menu option (New crawl / Health)"},
		{"q / Esc", "Quit"},
	}
	return renderHelpItems(items)
}

// CrawlHelpContent returns help for the crawl flow
func CrawlHelpContent() string {
	items := []HelpItem{
		{"Tab", "Switch between URL and options"},
		{"1-5", "Toggle a star rating (none selected = all)"},
		{"a", "Clear rating selection"},
		{"← / →", "Change max reviews by 10"},
		{"f", "Switch export format"},
		{"Enter", "Start crawl"},
		{"x", "Stop tracking the running job"},
		{"e / c", "Download Excel / CSV"},
		{"s", "Copy summary to clipboard"},
		{"r", "Retry a failed crawl"},
		{"n", "New crawl"},
		{"m", "Return to menu"},
		{"?", "Show this help"},
	}
	return renderHelpItems(items)
}

// renderHelpItems formats help items into a readable string
func renderHelpItems(items []HelpItem) string {
	var b strings.Builder
	for _, item := range items {
		b.WriteString(fmt.Sprintf("  %s  %s\n",
			keyStyle.Render(item.Key),
			item.Description))
	}
	return b.String()
}
