package cli

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"review-crawler-go/pkg/cli/logger"
	"review-crawler-go/pkg/cli/report"
	"review-crawler-go/pkg/models"
	"review-crawler-go/pkg/tracker"
	"review-crawler-go/pkg/utils"
)

// CrawlOptions are the headless crawl flags. Zero values fall back to the
// configured defaults.
type CrawlOptions struct {
	ProductURL string
	Ratings    string // comma-separated, e.g. "5,4"; empty means all
	MaxReviews int
	Format     string // excel or csv
	OutputDir  string
	Copy       bool // copy the summary to the clipboard
	NoDownload bool
}

// RunCrawl validates the request, submits it, reports progress until the job
// is terminal and downloads the artifact.
func (a *App) RunCrawl(ctx context.Context, opts CrawlOptions) error {
	req, format, err := a.buildRequest(opts)
	if err != nil {
		return err
	}

	fmt.Fprintln(a.out, "Starting crawl:")
	fmt.Fprint(a.out, report.FormatRequest(req))

	var (
		mu       sync.Mutex
		lastLine string
	)
	emit := func(s string) {
		mu.Lock()
		defer mu.Unlock()
		fmt.Fprint(a.out, s)
	}

	tr := a.newTracker(tracker.NotifierFuncs{
		OnStarted: func(handle models.JobHandle, message string) {
			emit(report.FormatStarted(handle, message))
		},
		OnProgress: func(snap models.JobSnapshot) {
			line := report.FormatProgressLine(snap)
			if line == lastLine {
				return
			}
			lastLine = line
			emit(line)
		},
	})
	defer tr.Close()

	if _, err := tr.Submit(ctx, req); err != nil {
		var subErr *tracker.SubmitError
		if errors.As(err, &subErr) {
			logger.LogError(subErr.Err, "crawl submission failed")
			return errors.New(subErr.Message)
		}
		return err
	}

	st, err := tr.Wait(ctx)
	if err != nil {
		tr.Reset()
		return fmt.Errorf("crawl interrupted: %w", err)
	}

	switch st.State {
	case tracker.StateCompleted:
		return a.finishCrawl(ctx, *st.Snapshot, format, opts)
	case tracker.StateFailed:
		emit(report.FormatFailure(*st.Failure))
		return errors.New(st.Failure.Message)
	default:
		return fmt.Errorf("crawl ended in unexpected state %s", st.State)
	}
}

func (a *App) buildRequest(opts CrawlOptions) (models.JobRequest, models.ExportFormat, error) {
	ratings, err := utils.ParseRatings(opts.Ratings)
	if err != nil {
		return models.JobRequest{}, "", err
	}

	limit := opts.MaxReviews
	if limit == 0 {
		limit = a.cfg.Defaults.MaxReviews
	}

	req, err := utils.ValidateJobRequest(utils.JobInput{
		ProductURL: opts.ProductURL,
		Ratings:    ratings,
		MaxReviews: limit,
	})
	if err != nil {
		return models.JobRequest{}, "", err
	}

	formatStr := opts.Format
	if formatStr == "" {
		formatStr = a.cfg.Defaults.Format
	}
	format, err := models.ParseExportFormat(formatStr)
	if err != nil {
		return models.JobRequest{}, "", err
	}

	return req, format, nil
}

func (a *App) finishCrawl(ctx context.Context, snap models.JobSnapshot, format models.ExportFormat, opts CrawlOptions) error {
	if snap.DownloadURL == "" {
		snap.DownloadURL = a.getClient().DownloadURL(snap.Handle, format)
	}

	savedTo := ""
	if !opts.NoDownload {
		dir := opts.OutputDir
		if dir == "" {
			dir = a.cfg.Crawler.DownloadDir
		}
		art, err := a.getClient().SaveArtifact(ctx, snap.Handle, format, dir)
		if err != nil {
			return fmt.Errorf("crawl completed but download failed: %w", err)
		}
		logger.Log("saved %s artifact for %s to %s (%d bytes)", format, snap.Handle, art.Path, art.Size)
		savedTo = art.Path
	}

	fmt.Fprint(a.out, report.FormatSuccessMessage(snap, savedTo))

	if opts.Copy {
		if err := Share(snap); err != nil {
			logger.LogError(err, "share failed")
			fmt.Fprint(a.out, report.FormatErrorMessage(err))
		} else {
			fmt.Fprintln(a.out, "✓ Summary copied to clipboard")
		}
	}
	return nil
}
