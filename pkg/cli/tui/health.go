package tui

import (
	"context"
	"fmt"
	"time"

	"review-crawler-go/pkg/cli/tui/crawlflow"
	"review-crawler-go/pkg/crawler"

	tea "github.com/charmbracelet/bubbletea"
)

// healthModel checks the backend once and shows the result.
type healthModel struct {
	client *crawler.Client
	result crawlflow.HealthCheckedMsg
	ready  bool
}

// NewHealthModel creates the health check flow.
func NewHealthModel(c *crawler.Client) tea.Model {
	return &healthModel{client: c}
}

func (m *healthModel) Init() tea.Cmd {
	client := m.client
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		health, err := client.CheckHealth(ctx)
		return crawlflow.HealthCheckedMsg{Health: health, Err: err}
	}
}

func (m *healthModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case crawlflow.HealthCheckedMsg:
		m.result = msg
		m.ready = true
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if m.ready {
			return m, func() tea.Msg { return MenuNavigationMsg{} }
		}
	}
	return m, nil
}

func (m *healthModel) View() string {
	if !m.ready {
		return renderLoadingState("Checking " + m.client.BaseURL() + "...")
	}
	if m.result.Err != nil {
		return renderErrorView(userFacingError(m.result.Err))
	}
	return renderSuccessView(fmt.Sprintf("%s is %s (%s)",
		m.client.BaseURL(), m.result.Health.Status, m.result.Health.Service))
}
