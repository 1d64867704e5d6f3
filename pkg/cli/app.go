package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"review-crawler-go/pkg/cli/logger"
	"review-crawler-go/pkg/cli/report"
	"review-crawler-go/pkg/cli/tui"
	"review-crawler-go/pkg/config"
	"review-crawler-go/pkg/crawler"
	"review-crawler-go/pkg/models"
	"review-crawler-go/pkg/tracker"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
)

type App struct {
	cfg    *config.Config
	client *crawler.Client
	out    io.Writer
}

func NewApp(cfg *config.Config) *App {
	return &App{
		cfg: cfg,
		out: os.Stdout,
	}
}

// getClient returns the backend client, creating it if necessary
func (a *App) getClient() *crawler.Client {
	if a.client == nil {
		a.client = crawler.NewClient(a.cfg.Crawler.BaseURL, a.cfg.Timeout())
	}
	return a.client
}

// newTracker builds a tracker wired to the shared client and logger
func (a *App) newTracker(n tracker.Notifier) *tracker.Tracker {
	return tracker.New(a.getClient(),
		tracker.WithInterval(a.cfg.PollInterval()),
		tracker.WithNotifier(n),
		tracker.WithLogger(logger.Std()),
	)
}

// Run starts the interactive TUI
func (a *App) Run() error {
	notifier := tracker.NewChanNotifier(32)
	tr := a.newTracker(notifier)
	defer tr.Close()

	format, err := models.ParseExportFormat(a.cfg.Defaults.Format)
	if err != nil {
		format = models.FormatExcel
	}

	root := tui.NewRootModel(tui.Deps{
		Client:      a.getClient(),
		Tracker:     tr,
		Events:      notifier.Events(),
		MaxReviews:  a.cfg.Defaults.MaxReviews,
		Format:      format,
		DownloadDir: a.cfg.Crawler.DownloadDir,
		Share:       Share,
	})

	p := tea.NewProgram(root, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}
	return nil
}

// CheckHealth verifies the crawl backend is reachable
func (a *App) CheckHealth(ctx context.Context) error {
	client := a.getClient()
	health, err := client.CheckHealth(ctx)
	if err != nil {
		logger.LogError(err, "health check against %s failed", client.BaseURL())
		return healthHint(client.BaseURL(), err)
	}
	fmt.Fprint(a.out, report.FormatHealth(client.BaseURL(), health))
	return nil
}

// healthHint adds guidance for connection errors
func healthHint(baseURL string, err error) error {
	var cErr *crawler.CrawlerError
	if errors.As(err, &cErr) && cErr.Type == crawler.ErrorTypeServiceUnavailable {
		return fmt.Errorf("crawl backend unavailable at %s: %w\n\n"+
			"💡 The backend is not running. To start the development backend:\n"+
			"   go run ./cmd/api", baseURL, err)
	}
	return fmt.Errorf("crawl backend unavailable at %s: %w", baseURL, err)
}

// Share copies the result summary to the clipboard
func Share(snap models.JobSnapshot) error {
	if err := clipboard.WriteAll(report.ShareText(snap)); err != nil {
		return fmt.Errorf("failed to copy to clipboard: %w", err)
	}
	return nil
}
