package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"review-crawler-go/pkg/cli/logger"
	"review-crawler-go/pkg/cli/report"
	"review-crawler-go/pkg/cli/tui/crawlflow"
	"review-crawler-go/pkg/models"
	"review-crawler-go/pkg/tracker"
	"review-crawler-go/pkg/utils"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

const (
	focusURL = iota
	focusOptions
)

// crawlModel is the Bubble Tea model for the crawl flow: request form,
// live progress while the tracker polls, and the result actions.
type crawlModel struct {
	deps Deps

	// Form
	urlInput textinput.Model
	ratings  utils.RatingSelection
	limit    int
	format   models.ExportFormat
	focus    int

	// Flow / state
	step        int
	err         error
	track       crawlflow.TrackState
	notice      string
	downloading bool
	width       int

	spinner spinner.Model
	bar     progress.Model
}

// NewCrawlModel creates the crawl flow wrapped with the common viewport shell.
func NewCrawlModel(deps Deps) tea.Model {
	return NewViewportWrapper(newCrawlModel(deps), ViewportConfig{
		Title:       "New Crawl",
		ShowHeader:  true,
		ShowFooter:  true,
		EnableHelp:  true,
		EnableMenu:  true,
		HelpContent: CrawlHelpContent,
		MinWidth:    60,
		MinHeight:   10,
	})
}

func newCrawlModel(deps Deps) *crawlModel {
	urlInput := textinput.New()
	urlInput.Placeholder = utils.RequiredURLPrefix + "..."
	urlInput.Focus()
	urlInput.CharLimit = 2048
	urlInput.Width = 60

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = infoStyle

	return &crawlModel{
		deps:     deps,
		urlInput: urlInput,
		limit:    clampLimit(deps.MaxReviews),
		format:   deps.Format,
		focus:    focusURL,
		step:     crawlflow.StepForm,
		spinner:  sp,
		bar:      progress.New(progress.WithGradient(colorBarFrom, colorBarTo), progress.WithWidth(50)),
		width:    crawlflow.DefaultWidth,
	}
}

// Init implements tea.Model.
func (m *crawlModel) Init() tea.Cmd {
	return textinput.Blink
}

// CapturingInput reports whether keystrokes belong to the URL field, so the
// shell must not treat them as shortcuts.
func (m *crawlModel) CapturingInput() bool {
	return m.step == crawlflow.StepForm && m.focus == focusURL
}

// Update implements tea.Model.
func (m *crawlModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.bar.Width = min(max(msg.Width-20, 20), 80)
		return m, nil

	case tea.KeyMsg:
		switch m.step {
		case crawlflow.StepForm:
			return m.handleFormKey(msg)
		case crawlflow.StepSubmitting, crawlflow.StepTracking:
			return m.handleTrackingKey(msg)
		case crawlflow.StepDone:
			return m.handleDoneKey(msg)
		case crawlflow.StepFailed:
			return m.handleFailedKey(msg)
		}

	case crawlflow.SubmittedMsg:
		if m.step != crawlflow.StepSubmitting {
			return m, nil
		}
		if msg.Err != nil {
			if errors.Is(msg.Err, tracker.ErrDiscarded) {
				return m, nil
			}
			if errors.Is(msg.Err, tracker.ErrAlreadyActive) {
				m.err = msg.Err
				return m.backToFormKeepError()
			}
			logger.LogError(msg.Err, "crawl submission failed")
		}
		m.step = m.track.Sync(m.deps.Tracker.Status(), m.step)
		return m, nil

	case crawlflow.TrackerEventMsg:
		if m.step != crawlflow.StepSubmitting && m.step != crawlflow.StepTracking {
			return m, nil
		}
		if msg.Event.Kind == tracker.EventStarted {
			m.track.Message = msg.Event.Message
		}
		m.step = m.track.Sync(m.deps.Tracker.Status(), m.step)
		return m, nil

	case crawlflow.DownloadDoneMsg:
		m.downloading = false
		if msg.Err != nil {
			m.err = userFacingError(msg.Err)
			m.notice = ""
			return m, nil
		}
		m.err = nil
		m.notice = fmt.Sprintf("Saved %s (%d bytes)", msg.Artifact.Path, msg.Artifact.Size)
		return m, nil

	case crawlflow.ShareDoneMsg:
		if msg.Err != nil {
			m.err = msg.Err
			m.notice = ""
			return m, nil
		}
		m.err = nil
		m.notice = "Summary copied to clipboard"
		return m, nil

	case spinner.TickMsg:
		if m.step != crawlflow.StepSubmitting && m.step != crawlflow.StepTracking && !m.downloading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	if m.CapturingInput() {
		var cmd tea.Cmd
		m.urlInput, cmd = m.urlInput.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *crawlModel) handleFormKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "tab", "shift+tab":
		m.toggleFocus()
		return m, textinput.Blink
	case "enter":
		return m.submit()
	}

	if m.focus == focusURL {
		var cmd tea.Cmd
		m.urlInput, cmd = m.urlInput.Update(msg)
		return m, cmd
	}

	switch key := msg.String(); key {
	case "1", "2", "3", "4", "5":
		_ = m.ratings.Toggle(int(key[0] - '0'))
	case "a":
		m.ratings = utils.RatingSelection{}
	case "left", "h":
		m.limit = clampLimit(m.limit - crawlflow.LimitStep)
	case "right", "l":
		m.limit = clampLimit(m.limit + crawlflow.LimitStep)
	case "f":
		if m.format == models.FormatExcel {
			m.format = models.FormatCSV
		} else {
			m.format = models.FormatExcel
		}
	}
	return m, nil
}

func (m *crawlModel) toggleFocus() {
	if m.focus == focusURL {
		m.focus = focusOptions
		m.urlInput.Blur()
		return
	}
	m.focus = focusURL
	m.urlInput.Focus()
}

// submit validates the form and hands the request to the tracker.
func (m *crawlModel) submit() (tea.Model, tea.Cmd) {
	req, err := utils.ValidateJobRequest(utils.JobInput{
		ProductURL: m.urlInput.Value(),
		Ratings:    m.ratings,
		MaxReviews: m.limit,
	})
	if err != nil {
		m.err = err
		return m, nil
	}

	m.err = nil
	m.notice = ""
	m.track = crawlflow.TrackState{Request: req, StartedAt: time.Now()}
	m.step = crawlflow.StepSubmitting
	m.urlInput.Blur()

	tr := m.deps.Tracker
	return m, tea.Batch(
		func() tea.Msg {
			handle, err := tr.Submit(context.Background(), req)
			return crawlflow.SubmittedMsg{Handle: handle, Err: err}
		},
		m.spinner.Tick,
	)
}

func (m *crawlModel) handleTrackingKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "x":
		// Abandon the job; the backend keeps running it.
		m.deps.Tracker.Reset()
		return m.backToForm()
	}
	return m, nil
}

func (m *crawlModel) handleDoneKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "e":
		return m.download(models.FormatExcel)
	case "c":
		return m.download(models.FormatCSV)
	case "d":
		return m.download(m.format)
	case "s":
		return m.share()
	case "n":
		m.deps.Tracker.Reset()
		return m.backToForm()
	}
	return m, nil
}

func (m *crawlModel) handleFailedKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "r":
		// Retry the same request as a new job.
		m.deps.Tracker.Reset()
		m.step = crawlflow.StepForm
		return m.submit()
	case "n":
		m.deps.Tracker.Reset()
		return m.backToForm()
	}
	return m, nil
}

// backToForm returns to the form keeping the previous input.
func (m *crawlModel) backToForm() (tea.Model, tea.Cmd) {
	m.err = nil
	return m.backToFormKeepError()
}

func (m *crawlModel) backToFormKeepError() (tea.Model, tea.Cmd) {
	m.step = crawlflow.StepForm
	m.track = crawlflow.TrackState{}
	m.notice = ""
	m.downloading = false
	m.focus = focusURL
	m.urlInput.Focus()
	return m, textinput.Blink
}

func (m *crawlModel) download(format models.ExportFormat) (tea.Model, tea.Cmd) {
	if m.downloading {
		return m, nil
	}
	m.downloading = true
	m.notice = ""
	m.err = nil

	client, handle, dir := m.deps.Client, m.track.Handle, m.deps.DownloadDir
	return m, tea.Batch(
		func() tea.Msg {
			art, err := client.SaveArtifact(context.Background(), handle, format, dir)
			if err == nil {
				logger.Log("saved %s artifact for %s to %s", format, handle, art.Path)
			}
			return crawlflow.DownloadDoneMsg{Artifact: art, Err: err}
		},
		m.spinner.Tick,
	)
}

func (m *crawlModel) share() (tea.Model, tea.Cmd) {
	if m.deps.Share == nil || m.track.Snapshot == nil {
		return m, nil
	}
	snap := *m.track.Snapshot
	if snap.DownloadURL == "" {
		snap.DownloadURL = m.deps.Client.DownloadURL(snap.Handle, m.format)
	}
	share := m.deps.Share
	return m, func() tea.Msg {
		return crawlflow.ShareDoneMsg{Err: share(snap)}
	}
}

func clampLimit(n int) int {
	return min(max(n, models.MinResultLimit), models.MaxResultLimit)
}

// View implements tea.Model.
func (m *crawlModel) View() string {
	switch m.step {
	case crawlflow.StepForm:
		return m.renderForm()
	case crawlflow.StepSubmitting, crawlflow.StepTracking:
		return m.renderTracking()
	case crawlflow.StepDone:
		return m.renderDone()
	case crawlflow.StepFailed:
		return m.renderFailed()
	}
	return ""
}

func (m *crawlModel) renderForm() string {
	var b strings.Builder

	b.WriteString(fieldLabelStyle.Render("Product URL:"))
	b.WriteString("\n")
	if m.focus == focusURL {
		b.WriteString(focusStyle.Render(m.urlInput.View()))
	} else {
		b.WriteString(m.urlInput.View())
	}
	b.WriteString("\n\n")

	optLabel := fieldLabelStyle
	if m.focus == focusOptions {
		optLabel = focusStyle
	}
	b.WriteString(optLabel.Render("Ratings:") + " " + renderRatingToggles(m.ratings) + "\n")
	b.WriteString(optLabel.Render("Max reviews:") + fmt.Sprintf(" ◀ %d ▶\n", m.limit))
	b.WriteString(optLabel.Render("Format:") + " " + m.format.Label() + "\n")

	if m.err != nil {
		b.WriteString("\n")
		b.WriteString(renderInlineError(m.err))
	}

	b.WriteString("\n\n")
	if m.focus == focusURL {
		b.WriteString(helpStyle.Render("[Tab] Options  [Enter] Start crawl  [Ctrl+C] Quit"))
	} else {
		b.WriteString(helpStyle.Render("[1-5] Toggle rating  [a] All  [←/→] Limit  [f] Format  [Tab] URL  [Enter] Start"))
	}
	return b.String()
}

func (m *crawlModel) renderTracking() string {
	var b strings.Builder

	b.WriteString(renderRequestSummary(m.track.Request))
	b.WriteString("\n")

	if m.step == crawlflow.StepSubmitting {
		b.WriteString(m.spinner.View() + " " + infoStyle.Render("Submitting crawl request..."))
		b.WriteString("\n")
		return b.String()
	}

	b.WriteString(fieldLabelStyle.Render("Job:"))
	b.WriteString(" " + handleStyle.Render(m.track.Handle.Short()) + "\n\n")
	b.WriteString(m.bar.ViewAs(m.track.Percent()))
	b.WriteString("\n")

	if snap := m.track.Snapshot; snap != nil {
		b.WriteString(fmt.Sprintf("%s %s  %s\n",
			m.spinner.View(),
			jobStateStyle(snap.State).Render(string(snap.State)),
			report.FormatCounts(*snap),
		))
		if snap.Message != "" {
			b.WriteString(mutedStyle.Render(snap.Message) + "\n")
		}
	} else {
		msg := m.track.Message
		if msg == "" {
			msg = "Waiting for the first status update..."
		}
		b.WriteString(m.spinner.View() + " " + infoStyle.Render(msg) + "\n")
	}

	b.WriteString("\n")
	b.WriteString(helpStyle.Render("[x] Stop tracking  [Ctrl+C] Quit"))
	return b.String()
}

func (m *crawlModel) renderDone() string {
	var b strings.Builder

	b.WriteString(renderSuccess("Crawl completed!"))
	b.WriteString("\n\n")
	if snap := m.track.Snapshot; snap != nil {
		b.WriteString(renderSnapshotDetails(*snap, m.track.Elapsed))
	}

	if m.downloading {
		b.WriteString("\n" + m.spinner.View() + " " + infoStyle.Render("Downloading..."))
	}
	if m.notice != "" {
		b.WriteString("\n" + renderSuccess(m.notice))
	}
	if m.err != nil {
		b.WriteString("\n" + renderInlineError(m.err))
	}

	b.WriteString("\n\n")
	b.WriteString(helpStyle.Render("[e] Excel  [c] CSV  [s] Share  [n] New crawl  [m] Menu  [q] Quit"))
	return b.String()
}

func (m *crawlModel) renderFailed() string {
	var b strings.Builder

	msg := tracker.DefaultFailureMessage
	if m.track.Failure != nil {
		msg = m.track.Failure.Message
	}
	if m.track.Failure != nil && m.track.Failure.Stage == tracker.StageSubmission {
		b.WriteString(renderError("Could not start the crawl"))
	} else {
		b.WriteString(renderError("Crawl failed"))
	}
	b.WriteString("\n\n")
	b.WriteString(renderWarning(msg))
	b.WriteString("\n\n")
	b.WriteString(helpStyle.Render("[r] Retry  [n] New crawl  [m] Menu  [q] Quit"))
	return b.String()
}
