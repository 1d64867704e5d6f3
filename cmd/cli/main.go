package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"review-crawler-go/pkg/cli"
	"review-crawler-go/pkg/cli/logger"
	"review-crawler-go/pkg/cli/report"
	"review-crawler-go/pkg/config"
)

func main() {
	var (
		productURL = flag.String("url", "", "Product page URL to crawl (runs headless)")
		ratings    = flag.String("ratings", "", "Comma-separated star ratings to keep, e.g. 5,4 (default all)")
		maxReviews = flag.Int("max", 0, "Maximum reviews to collect, 10-1000 (default from config)")
		format     = flag.String("format", "", "Export format: excel or csv (default from config)")
		outDir     = flag.String("out", "", "Directory for the downloaded file (default from config)")
		noDownload = flag.Bool("no-download", false, "Do not download the result file")
		copyResult = flag.Bool("copy", false, "Copy the result summary to the clipboard")
		health     = flag.Bool("health", false, "Check that the crawl backend is reachable")

		// Config commands
		configShow = flag.Bool("config-show", false, "Show current configuration")
		configSet  = flag.String("config-set", "", "Set a config value (format: section.key=value)")
	)
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	defer logger.CloseLog()

	app := cli.NewApp(cfg)

	// Handle config commands first (don't need the backend)
	if *configShow {
		app.ShowConfig()
		return
	}
	if *configSet != "" {
		if err := app.SetConfig(*configSet); err != nil {
			log.Fatalf("failed to set config: %v", err)
		}
		fmt.Println("Configuration updated successfully")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *health {
		hctx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		if err := app.CheckHealth(hctx); err != nil {
			fail(err)
		}
		return
	}

	if *productURL != "" {
		err := app.RunCrawl(ctx, cli.CrawlOptions{
			ProductURL: *productURL,
			Ratings:    *ratings,
			MaxReviews: *maxReviews,
			Format:     *format,
			OutputDir:  *outDir,
			Copy:       *copyResult,
			NoDownload: *noDownload,
		})
		if err != nil {
			fail(err)
		}
		return
	}

	// Interactive TUI mode
	if err := app.Run(); err != nil {
		fail(err)
	}
}

func fail(err error) {
	report.WriteToStderr(report.FormatErrorMessage(err))
	logger.CloseLog()
	os.Exit(1)
}
