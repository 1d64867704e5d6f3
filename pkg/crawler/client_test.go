package crawler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"review-crawler-go/pkg/models"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL+"/", 2*time.Second)
}

func TestStartCrawl_SendsWireBody(t *testing.T) {
	var got map[string]any
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/crawl" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("unexpected content type %q", ct)
		}
		_ = json.NewDecoder(r.Body).Decode(&got)
		_, _ = w.Write([]byte(`{"task_id":"t-1","status":"pending","message":"started"}`))
	})

	filter, _ := models.NewRatingFilter(1, 5)
	resp, err := client.StartCrawl(context.Background(), models.JobRequest{
		ProductURL: "https://brand.naver.com/x/products/1",
		Ratings:    filter,
		MaxReviews: 100,
	})
	if err != nil {
		t.Fatalf("start crawl: %v", err)
	}
	if resp.TaskID != "t-1" || resp.Status != "pending" {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if got["product_url"] != "https://brand.naver.com/x/products/1" {
		t.Fatalf("unexpected product_url: %v", got["product_url"])
	}
	ratings, ok := got["rating_filter"].([]any)
	if !ok || len(ratings) != 2 || ratings[0].(float64) != 5 || ratings[1].(float64) != 1 {
		t.Fatalf("unexpected rating_filter: %v", got["rating_filter"])
	}
	if got["max_reviews"].(float64) != 100 {
		t.Fatalf("unexpected max_reviews: %v", got["max_reviews"])
	}
}

func TestStartCrawl_NullFilterWhenUnset(t *testing.T) {
	var raw []byte
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		raw, _ = io.ReadAll(r.Body)
		_, _ = w.Write([]byte(`{"task_id":"t-1","status":"pending","message":""}`))
	})

	if _, err := client.StartCrawl(context.Background(), models.JobRequest{ProductURL: "u", MaxReviews: 10}); err != nil {
		t.Fatalf("start crawl: %v", err)
	}
	if !bytes.Contains(raw, []byte(`"rating_filter":null`)) {
		t.Fatalf("expected null filter, got %s", raw)
	}
}

func TestStartCrawl_SurfacesDetailOnNon2xx(t *testing.T) {
	cases := []struct {
		name   string
		status int
		body   string
		want   string
	}{
		{"string detail", http.StatusInternalServerError, `{"detail":"chrome driver crashed"}`, "chrome driver crashed"},
		{"validation list", http.StatusUnprocessableEntity, `{"detail":[{"loc":["body","max_reviews"],"msg":"too large"}]}`, "too large"},
		{"error field", http.StatusBadGateway, `{"error":"upstream down"}`, "upstream down"},
		{"plain text", http.StatusServiceUnavailable, `busy`, "busy"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			})
			_, err := client.StartCrawl(context.Background(), models.JobRequest{ProductURL: "u", MaxReviews: 10})
			var cErr *CrawlerError
			if !errors.As(err, &cErr) {
				t.Fatalf("expected CrawlerError, got %v", err)
			}
			if cErr.Type != ErrorTypeHTTPStatus || cErr.StatusCode != tc.status {
				t.Fatalf("unexpected error: %+v", cErr)
			}
			if cErr.UserMessage() != tc.want {
				t.Fatalf("unexpected message: got %q want %q", cErr.UserMessage(), tc.want)
			}
		})
	}
}

func TestStartCrawl_RejectsMissingTaskID(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"pending"}`))
	})
	_, err := client.StartCrawl(context.Background(), models.JobRequest{ProductURL: "u", MaxReviews: 10})
	var cErr *CrawlerError
	if !errors.As(err, &cErr) || cErr.Type != ErrorTypeInvalidResponse {
		t.Fatalf("expected invalid response error, got %v", err)
	}
}

func TestGetStatus_DecodesSnapshot(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/status/t-9" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		_, _ = w.Write([]byte(`{"task_id":"t-9","status":"failed","progress":20,"collected_count":3,"total_target":100,"message":"crawl failed","error":"timeout waiting for page"}`))
	})

	status, err := client.GetStatus(context.Background(), "t-9")
	if err != nil {
		t.Fatalf("get status: %v", err)
	}
	snap, err := status.Snapshot()
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if snap.State != models.JobFailed || snap.Error != "timeout waiting for page" {
		t.Fatalf("unexpected snapshot: %+v", snap)
	}
}

func TestGetStatus_ServerErrorIsRetryable(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})
	_, err := client.GetStatus(context.Background(), "t")
	var cErr *CrawlerError
	if !errors.As(err, &cErr) || !cErr.IsRetryable() {
		t.Fatalf("expected retryable error, got %v", err)
	}
}

func TestGetStatus_UnreachableServer(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	base := srv.URL
	srv.Close()

	_, err := NewClient(base, time.Second).GetStatus(context.Background(), "t")
	var cErr *CrawlerError
	if !errors.As(err, &cErr) {
		t.Fatalf("expected CrawlerError, got %v", err)
	}
	if !cErr.IsRetryable() {
		t.Fatalf("expected retryable transport error, got %+v", cErr)
	}
}

func TestGetStatus_CancelledContext(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := client.GetStatus(ctx, "t")
	var cErr *CrawlerError
	if !errors.As(err, &cErr) || cErr.Type != ErrorTypeCancelled {
		t.Fatalf("expected cancelled error, got %v", err)
	}
}

func TestDownloadURL(t *testing.T) {
	client := NewClient("http://localhost:8000/", 0)
	got := client.DownloadURL("abc", models.FormatCSV)
	if got != "http://localhost:8000/api/download/abc?format=csv" {
		t.Fatalf("unexpected url %q", got)
	}
	got = client.DownloadURL("abc", models.FormatExcel)
	if !strings.HasSuffix(got, "?format=excel") {
		t.Fatalf("unexpected url %q", got)
	}
}

func TestDownload_StreamsArtifact(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("format") != "csv" {
			t.Errorf("unexpected format %q", r.URL.Query().Get("format"))
		}
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", `attachment; filename="reviews_abc_20250101_120000.csv"`)
		_, _ = w.Write([]byte("number,date\n1,2025.01.01\n"))
	})

	var buf bytes.Buffer
	art, err := client.Download(context.Background(), "abc", models.FormatCSV, &buf)
	if err != nil {
		t.Fatalf("download: %v", err)
	}
	if art.Filename != "reviews_abc_20250101_120000.csv" {
		t.Fatalf("unexpected filename %q", art.Filename)
	}
	if art.Size != int64(buf.Len()) || !strings.HasPrefix(buf.String(), "number,date") {
		t.Fatalf("unexpected body %q (size %d)", buf.String(), art.Size)
	}
}

func TestDownload_NotCompleted(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"detail":"task is not completed"}`))
	})

	var buf bytes.Buffer
	_, err := client.Download(context.Background(), "abc", models.FormatExcel, &buf)
	var cErr *CrawlerError
	if !errors.As(err, &cErr) || cErr.Type != ErrorTypeNotReady {
		t.Fatalf("expected not ready error, got %v", err)
	}
	if buf.Len() != 0 {
		t.Fatalf("expected nothing written, got %q", buf.String())
	}
}

func TestArtifactFilename_Fallback(t *testing.T) {
	if got := artifactFilename("", "abc", models.FormatExcel); got != "reviews_abc.xlsx" {
		t.Fatalf("unexpected fallback %q", got)
	}
	if got := artifactFilename(`attachment; filename="../../etc/passwd"`, "abc", models.FormatCSV); got != "passwd" {
		t.Fatalf("expected base name only, got %q", got)
	}
}

func TestCheckHealth(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"healthy","service":"naver-review-crawler"}`))
	})
	health, err := client.CheckHealth(context.Background())
	if err != nil {
		t.Fatalf("health: %v", err)
	}
	if health.Status != "healthy" {
		t.Fatalf("unexpected health %+v", health)
	}
}

func TestSaveArtifact_WritesUnderServerName(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Disposition", `attachment; filename="reviews_abc.csv"`)
		_, _ = w.Write([]byte("number,date\n"))
	})

	dir := filepath.Join(t.TempDir(), "out")
	art, err := client.SaveArtifact(context.Background(), "abc", models.FormatCSV, dir)
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if art.Path != filepath.Join(dir, "reviews_abc.csv") {
		t.Fatalf("unexpected path %q", art.Path)
	}
	data, err := os.ReadFile(art.Path)
	if err != nil || string(data) != "number,date\n" {
		t.Fatalf("unexpected file contents %q (%v)", data, err)
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Fatalf("expected only the artifact in %s, got %d entries", dir, len(entries))
	}
}

func TestSaveArtifact_NotReadyLeavesNoFile(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	})

	dir := t.TempDir()
	if _, err := client.SaveArtifact(context.Background(), "abc", models.FormatExcel, dir); err == nil {
		t.Fatal("expected error")
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Fatalf("expected empty directory, got %d entries", len(entries))
	}
}
