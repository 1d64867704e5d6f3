package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"review-crawler-go/pkg/config"
	"review-crawler-go/pkg/crawler"
	"review-crawler-go/pkg/models"
	"review-crawler-go/pkg/services"
	"review-crawler-go/pkg/tracker"

	"github.com/gin-gonic/gin"
)

const productURL = "https://brand.naver.com/shop/products/1"

func newTestRouter(t *testing.T, available int) (*gin.Engine, *services.CrawlService) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := config.DefaultConfig()
	cfg.API.RateLimitRPS = 1000
	cfg.API.RateLimitBurst = 1000

	logger := log.New(io.Discard, "", 0)
	svc := services.NewCrawlService(&services.SimulatedCollector{PageSize: 10, Available: available}, t.TempDir(), logger)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = svc.Shutdown(ctx)
	})
	return NewRouter(svc, cfg, logger), svc
}

func doJSON(t *testing.T, router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	router, _ := newTestRouter(t, 10)
	rec := doJSON(t, router, http.MethodGet, "/api/health", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var health models.HealthResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &health); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if health.Status != "healthy" || health.Service != "naver-review-crawler" {
		t.Fatalf("unexpected health %+v", health)
	}
}

func TestStartCrawl_Validation(t *testing.T) {
	router, _ := newTestRouter(t, 10)
	tests := []struct {
		name string
		body string
	}{
		{"missing url", `{"max_reviews": 10}`},
		{"wrong host", `{"product_url": "https://example.com/p/1"}`},
		{"rating out of range", `{"product_url": "` + productURL + `", "rating_filter": [0]}`},
		{"limit too high", `{"product_url": "` + productURL + `", "max_reviews": 5000}`},
		{"explicit zero limit", `{"product_url": "` + productURL + `", "max_reviews": 0}`},
		{"not json", `product_url=x`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doJSON(t, router, http.MethodPost, "/api/crawl", tt.body)
			if rec.Code != http.StatusUnprocessableEntity {
				t.Fatalf("expected 422, got %d: %s", rec.Code, rec.Body.String())
			}
			if !strings.Contains(rec.Body.String(), `"detail"`) {
				t.Fatalf("expected detail in body, got %s", rec.Body.String())
			}
		})
	}
}

func TestStatus_UnknownTask(t *testing.T) {
	router, _ := newTestRouter(t, 10)
	rec := doJSON(t, router, http.MethodGet, "/api/status/missing", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var st models.TaskStatus
	if err := json.Unmarshal(rec.Body.Bytes(), &st); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if st.Status != "failed" || st.Error == nil || *st.Error != "Invalid task ID" {
		t.Fatalf("unexpected status %+v", st)
	}
}

func TestDownload_Errors(t *testing.T) {
	router, svc := newTestRouter(t, 10)

	rec := doJSON(t, router, http.MethodGet, "/api/download/missing", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown task, got %d", rec.Code)
	}

	id, err := svc.CreateTask(models.CrawlRequest{ProductURL: productURL})
	if err != nil {
		t.Fatalf("CreateTask: %v", err)
	}
	rec = doJSON(t, router, http.MethodGet, "/api/download/"+id, "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for pending task, got %d", rec.Code)
	}
}

func TestRateLimit(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cfg := config.DefaultConfig()
	cfg.API.RateLimitRPS = 0.001
	cfg.API.RateLimitBurst = 1
	svc := services.NewCrawlService(&services.SimulatedCollector{Available: 0}, t.TempDir(), nil)
	router := NewRouter(svc, cfg, log.New(io.Discard, "", 0))

	first := doJSON(t, router, http.MethodGet, "/api/download/x", "")
	second := doJSON(t, router, http.MethodGet, "/api/download/x", "")
	if first.Code == http.StatusTooManyRequests {
		t.Fatalf("first request must pass the limiter")
	}
	if second.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", second.Code)
	}

	// Polling is exempt.
	if rec := doJSON(t, router, http.MethodGet, "/api/status/x", ""); rec.Code != http.StatusOK {
		t.Fatalf("expected status polling to bypass the limiter, got %d", rec.Code)
	}
}

// The CLI client, tracker and dev backend agree on the wire protocol.
func TestEndToEnd_TrackerAgainstBackend(t *testing.T) {
	router, _ := newTestRouter(t, 40)
	server := httptest.NewServer(router)
	defer server.Close()

	client := crawler.NewClient(server.URL, 5*time.Second)
	tr := tracker.New(client, tracker.WithInterval(5*time.Millisecond))
	defer tr.Close()

	filter, _ := models.NewRatingFilter(5, 4)
	handle, err := tr.Submit(context.Background(), models.JobRequest{
		ProductURL: productURL,
		Ratings:    filter,
		MaxReviews: 10,
	})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	st, err := tr.Wait(ctx)
	if err != nil {
		t.Fatalf("Wait: %v", err)
	}
	if st.State != tracker.StateCompleted || st.Snapshot.Collected != 10 || st.Snapshot.Progress != 100 {
		t.Fatalf("unexpected final status %+v", st)
	}
	if st.Snapshot.DownloadURL == "" {
		t.Fatalf("expected a download url on completion")
	}

	dir := t.TempDir()
	art, err := client.SaveArtifact(ctx, handle, models.FormatCSV, dir)
	if err != nil {
		t.Fatalf("SaveArtifact: %v", err)
	}
	if !strings.HasPrefix(art.Filename, "reviews_"+handle.String()) || filepath.Dir(art.Path) != dir {
		t.Fatalf("unexpected artifact %+v", art)
	}
	data, err := os.ReadFile(art.Path)
	if err != nil {
		t.Fatalf("read artifact: %v", err)
	}
	if !bytes.HasPrefix(data, []byte{0xEF, 0xBB, 0xBF}) {
		t.Fatalf("expected CSV with BOM")
	}
	if lines := strings.Count(string(data), "\n"); lines != 11 {
		t.Fatalf("expected header plus 10 rows, got %d lines", lines)
	}
}

func TestEndToEnd_NoReviewsIsJobFailure(t *testing.T) {
	router, _ := newTestRouter(t, 0)
	server := httptest.NewServer(router)
	defer server.Close()

	client := crawler.NewClient(server.URL, 5*time.Second)
	tr := tracker.New(client, tracker.WithInterval(5*time.Millisecond))
	defer tr.Close()

	handle, err := tr.Submit(context.Background(), models.JobRequest{ProductURL: productURL, MaxReviews: 10})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	st, err := tr.Wait(ctx)
	if err != nil {
		t.Fatalf("Wait: %v", err)
	}
	if st.State != tracker.StateFailed || st.Failure == nil || st.Failure.Stage != tracker.StageJob {
		t.Fatalf("unexpected final status %+v", st)
	}

	_, err = client.SaveArtifact(ctx, handle, models.FormatExcel, t.TempDir())
	var cErr *crawler.CrawlerError
	if !errors.As(err, &cErr) || cErr.Type != crawler.ErrorTypeNotReady {
		t.Fatalf("expected not-ready error, got %v", err)
	}
}
