package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// inputCapturer is implemented by flows with a focused text field. While it
// reports true, only ctrl+c is treated as a shortcut.
type inputCapturer interface {
	CapturingInput() bool
}

// ViewportWrapper wraps a model with viewport and common command support
type ViewportWrapper struct {
	model    tea.Model
	viewport viewport.Model
	width    int
	height   int
	config   ViewportConfig

	// Common commands
	showHelp    bool
	helpContent string
}

// ViewportConfig configures the wrapper behavior
type ViewportConfig struct {
	Title        string
	ShowHeader   bool
	ShowFooter   bool
	HeaderHeight int            // Fixed header height (0 = auto)
	FooterHeight int            // Fixed footer height (0 = auto)
	UseViewport  bool           // Enable scrolling (false = simple responsive)
	MinWidth     int            // Minimum terminal width
	MinHeight    int            // Minimum terminal height
	EnableHelp   bool           // Enable '?' for help
	EnableMenu   bool           // Enable 'm' to return to menu
	HelpContent  func() string  // Function to generate help text
	OnMenu       func() tea.Cmd // Callback for menu command
}

// NewViewportWrapper creates a new wrapper around a model
func NewViewportWrapper(model tea.Model, config ViewportConfig) *ViewportWrapper {
	return &ViewportWrapper{
		model:    model,
		viewport: viewport.New(0, 0),
		config:   config,
		width:    80, // Default
		height:   24, // Default
	}
}

func (w *ViewportWrapper) Init() tea.Cmd {
	if w.model == nil {
		return nil
	}
	return w.model.Init()
}

func (w *ViewportWrapper) capturing() bool {
	c, ok := w.model.(inputCapturer)
	return ok && c.CapturingInput()
}

func (w *ViewportWrapper) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		w.width = max(msg.Width, w.config.MinWidth)
		w.height = max(msg.Height, w.config.MinHeight)
		w.calculateLayout()

		var cmds []tea.Cmd
		if w.config.UseViewport {
			var vpCmd tea.Cmd
			w.viewport, vpCmd = w.viewport.Update(msg)
			cmds = append(cmds, vpCmd)
		}
		if w.model != nil {
			var cmd tea.Cmd
			w.model, cmd = w.model.Update(msg)
			cmds = append(cmds, cmd)
		}
		return w, tea.Batch(cmds...)

	case tea.KeyMsg:
		key := msg.String()

		// If help is showing, only handle help-related keys
		if w.showHelp {
			switch key {
			case "?", "esc", "q":
				w.showHelp = false
			case "ctrl+c":
				return w, tea.Quit
			}
			return w, nil
		}

		if key == "ctrl+c" {
			return w, tea.Quit
		}

		if !w.capturing() {
			switch key {
			case "?":
				if w.config.EnableHelp {
					w.showHelp = true
					if w.config.HelpContent != nil {
						w.helpContent = w.config.HelpContent()
					}
					return w, nil
				}
			case "m":
				if w.config.EnableMenu {
					if w.config.OnMenu != nil {
						return w, w.config.OnMenu()
					}
					return w, func() tea.Msg { return MenuNavigationMsg{} }
				}
			case "q", "esc":
				return w, tea.Quit
			}
		}
	}

	// Forward all other messages to wrapped model
	var cmd tea.Cmd
	if w.model != nil {
		w.model, cmd = w.model.Update(msg)
	}

	if w.config.UseViewport {
		var vpCmd tea.Cmd
		w.viewport, vpCmd = w.viewport.Update(msg)
		cmd = tea.Batch(cmd, vpCmd)
	}

	return w, cmd
}

func (w *ViewportWrapper) View() string {
	if w.showHelp {
		return w.renderHelpOverlay()
	}

	content := ""
	if w.model != nil {
		content = w.model.View()
	}

	if w.config.UseViewport {
		w.calculateLayout()
		w.viewport.SetContent(content)
		content = w.viewport.View()
	}

	var parts []string
	if w.config.ShowHeader {
		parts = append(parts, w.renderHeader())
	}
	parts = append(parts, content)
	if w.config.ShowFooter {
		parts = append(parts, "", w.renderFooter())
	}

	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (w *ViewportWrapper) calculateLayout() {
	headerH := w.config.HeaderHeight
	if headerH == 0 && w.config.ShowHeader {
		headerH = 3 // Default header height
	}

	footerH := w.config.FooterHeight
	if footerH == 0 && w.config.ShowFooter {
		footerH = 2 // Default footer height
	}

	if w.width <= 0 {
		w.width = 80
	}
	if w.height <= 0 {
		w.height = 24
	}

	w.viewport.Width = w.width
	w.viewport.Height = max(w.height-headerH-footerH, 1)
}

func (w *ViewportWrapper) renderHeader() string {
	var b strings.Builder

	if w.config.Title != "" {
		b.WriteString(renderTitle(w.config.Title))
	}
	b.WriteString(renderDivider(min(w.width, 60)))
	return b.String()
}

func (w *ViewportWrapper) renderFooter() string {
	shortcuts := []string{}
	if w.config.EnableHelp {
		shortcuts = append(shortcuts, "? help")
	}
	if w.config.EnableMenu {
		shortcuts = append(shortcuts, "m menu")
	}
	shortcuts = append(shortcuts, "q quit")

	if w.capturing() {
		return helpStyle.Render("typing… Tab to leave the field • ctrl+c quit")
	}
	return helpStyle.Render(strings.Join(shortcuts, " • "))
}

func (w *ViewportWrapper) renderHelpOverlay() string {
	helpText := w.helpContent
	if helpText == "" {
		helpText = "No help available"
	}

	overlayStyle := lipgloss.NewStyle().
		Width(max(w.width-4, 20)).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorAccent).
		Padding(1, 2)

	title := titleStyle.Render("Keyboard Shortcuts")
	closeHint := helpStyle.Render("Press '?' or Esc to close")

	return overlayStyle.Render(
		lipgloss.JoinVertical(lipgloss.Left, title, helpText, closeHint),
	)
}
