package tui

import (
	"strings"

	"review-crawler-go/pkg/cli/tui/crawlflow"
	"review-crawler-go/pkg/crawler"
	"review-crawler-go/pkg/models"
	"review-crawler-go/pkg/tracker"

	tea "github.com/charmbracelet/bubbletea"
)

// Deps are the shared dependencies handed to every flow.
type Deps struct {
	Client      *crawler.Client
	Tracker     *tracker.Tracker
	Events      <-chan tracker.Event
	MaxReviews  int
	Format      models.ExportFormat
	DownloadDir string
	Share       func(models.JobSnapshot) error
}

// MenuNavigationMsg asks the root to return to the main menu.
type MenuNavigationMsg struct{}

// rootModel is the Bubble Tea model that acts as an app shell for multiple flows.
// It presents a simple menu and then hands control to a specific flow model.
// The root owns the single reader of the tracker event channel.
type rootModel struct {
	deps Deps

	// Current active flow (when nil, we are in the main menu)
	current  tea.Model
	showHelp bool
	width    int
	height   int
}

// NewRootModel constructs the root app-shell model that can launch multiple flows.
func NewRootModel(deps Deps) tea.Model {
	if deps.MaxReviews <= 0 {
		deps.MaxReviews = 100
	}
	if deps.Format == "" {
		deps.Format = models.FormatExcel
	}
	return &rootModel{deps: deps}
}

func (m *rootModel) Init() tea.Cmd {
	return waitForEvent(m.deps.Events)
}

// waitForEvent blocks on the next tracker notification.
func waitForEvent(events <-chan tracker.Event) tea.Cmd {
	if events == nil {
		return nil
	}
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return crawlflow.EventsClosedMsg{}
		}
		return crawlflow.TrackerEventMsg{Event: ev}
	}
}

func (m *rootModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height

	case MenuNavigationMsg:
		// Leaving a flow abandons its job so the next one starts from idle.
		m.deps.Tracker.Reset()
		m.current = nil
		return m, nil

	case crawlflow.TrackerEventMsg:
		// Re-arm the reader, then let the active flow refresh from the tracker.
		next := waitForEvent(m.deps.Events)
		if m.current == nil {
			return m, next
		}
		var cmd tea.Cmd
		m.current, cmd = m.current.Update(msg)
		return m, tea.Batch(next, cmd)
	}

	// If we have an active flow, delegate all messages to it.
	if m.current != nil {
		var cmd tea.Cmd
		m.current, cmd = m.current.Update(msg)
		return m, cmd
	}

	switch msg := msg.(type) {
	case tea.KeyMsg:
		key := msg.String()
		if m.showHelp {
			m.showHelp = false
			if key == "ctrl+c" {
				return m, tea.Quit
			}
			return m, nil
		}
		if handleQuitKeys(key) {
			return m, tea.Quit
		}

		switch key {
		case "?":
			m.showHelp = true
			return m, nil

		case "1":
			return m.start(NewCrawlModel(m.deps))

		case "2":
			return m.start(NewHealthModel(m.deps.Client))
		}
	}

	return m, nil
}

// start activates a flow and forwards the last known window size to it.
func (m *rootModel) start(flow tea.Model) (tea.Model, tea.Cmd) {
	m.current = flow
	cmds := []tea.Cmd{m.current.Init()}
	if m.width > 0 {
		var cmd tea.Cmd
		m.current, cmd = m.current.Update(tea.WindowSizeMsg{Width: m.width, Height: m.height})
		cmds = append(cmds, cmd)
	}
	return m, tea.Batch(cmds...)
}

func (m *rootModel) View() string {
	// When a flow is active, defer to its view.
	if m.current != nil {
		return m.current.View()
	}

	var b strings.Builder

	if m.showHelp {
		b.WriteString(renderTitle("Keyboard Shortcuts"))
		b.WriteString(RootMenuHelpContent())
		b.WriteString("\n" + helpStyle.Render("Press any key to close") + "\n")
		return b.String()
	}

	b.WriteString(renderTitle("Review Crawler"))
	b.WriteString(renderDivider(60))
	b.WriteString("\n\n")
	b.WriteString(boldStyle.Render("Select an action:") + "\n\n")
	b.WriteString("  " + keyStyle.Render("1)") + " New crawl\n")
	b.WriteString("  " + keyStyle.Render("2)") + " Check backend health\n")
	b.WriteString("\n")
	b.WriteString(mutedStyle.Render("Backend: "+m.deps.Client.BaseURL()) + "\n")
	b.WriteString(helpStyle.Render("Press the number of an option, '?' for help, or 'q' / Esc to quit.") + "\n")

	return b.String()
}
