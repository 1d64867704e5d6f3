package crawler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"review-crawler-go/pkg/models"
)

// Client is an HTTP client for the crawl backend
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new backend client. The timeout bounds each JSON call;
// artifact downloads use the caller's context only.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = "http://localhost:8000"
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// BaseURL returns the backend base URL without a trailing slash.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// buildRequest creates an HTTP request with proper headers
func (c *Client) buildRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return req, nil
}

// doRequest performs an HTTP request and decodes a JSON response
func (c *Client) doRequest(req *http.Request, result any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return classifyTransportError(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return newInvalidResponseError("failed to read response", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return newStatusError(resp.StatusCode, errorDetail(body, resp.Status))
	}

	if result != nil {
		if err := json.Unmarshal(body, result); err != nil {
			return newInvalidResponseError("failed to parse response", err)
		}
	}

	return nil
}

// doJSONRequest performs a JSON request (POST)
func (c *Client) doJSONRequest(ctx context.Context, method, path string, payload any, result any) error {
	var body io.Reader
	if payload != nil {
		jsonData, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(jsonData)
	}

	req, err := c.buildRequest(ctx, method, path, body)
	if err != nil {
		return err
	}

	return c.doRequest(req, result)
}

// doGetRequest performs a GET request
func (c *Client) doGetRequest(ctx context.Context, path string, result any) error {
	req, err := c.buildRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return err
	}

	return c.doRequest(req, result)
}

// StartCrawl submits a crawl job. It is never retried automatically.
func (c *Client) StartCrawl(ctx context.Context, req models.JobRequest) (*models.CrawlResponse, error) {
	var resp models.CrawlResponse
	if err := c.doJSONRequest(ctx, http.MethodPost, "/api/crawl", req.ToCrawlRequest(), &resp); err != nil {
		return nil, err
	}
	if strings.TrimSpace(resp.TaskID) == "" {
		return nil, newInvalidResponseError("crawl response has no task_id", nil)
	}
	return &resp, nil
}

// GetStatus fetches the current status of a job.
func (c *Client) GetStatus(ctx context.Context, handle models.JobHandle) (*models.TaskStatus, error) {
	var status models.TaskStatus
	if err := c.doGetRequest(ctx, "/api/status/"+url.PathEscape(handle.String()), &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// CheckHealth verifies the service is available
func (c *Client) CheckHealth(ctx context.Context) (*models.HealthResponse, error) {
	var health models.HealthResponse
	if err := c.doGetRequest(ctx, "/api/health", &health); err != nil {
		return nil, err
	}
	return &health, nil
}

// DownloadURL builds the artifact URL for a completed job.
func (c *Client) DownloadURL(handle models.JobHandle, format models.ExportFormat) string {
	q := url.Values{}
	q.Set("format", string(format))
	return fmt.Sprintf("%s/api/download/%s?%s", c.baseURL, url.PathEscape(handle.String()), q.Encode())
}

// Download streams the artifact for a completed job into w. The artifact is
// not parsed.
func (c *Client) Download(ctx context.Context, handle models.JobHandle, format models.ExportFormat, w io.Writer) (*Artifact, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.DownloadURL(handle, format), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	// Exports can be large; only the context bounds the transfer.
	streaming := &http.Client{Transport: c.httpClient.Transport}
	resp, err := streaming.Do(req)
	if err != nil {
		return nil, classifyTransportError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		detail := errorDetail(body, resp.Status)
		if resp.StatusCode == http.StatusBadRequest {
			return nil, newNotReadyError(detail)
		}
		return nil, newStatusError(resp.StatusCode, detail)
	}

	n, err := io.Copy(w, resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to write artifact: %w", err)
	}

	return &Artifact{
		Filename:    artifactFilename(resp.Header.Get("Content-Disposition"), handle, format),
		ContentType: resp.Header.Get("Content-Type"),
		Format:      format,
		Size:        n,
	}, nil
}

// artifactFilename prefers the server-provided name and falls back to
// reviews_<handle>.<ext>.
func artifactFilename(disposition string, handle models.JobHandle, format models.ExportFormat) string {
	if disposition != "" {
		if _, params, err := mime.ParseMediaType(disposition); err == nil {
			if name := path.Base(params["filename"]); name != "" && name != "." && name != "/" {
				return name
			}
		}
	}
	return fmt.Sprintf("reviews_%s.%s", handle, format.Extension())
}

// errorDetail extracts a human-readable message from an error response body
func errorDetail(body []byte, fallback string) string {
	var parsed errorBody
	if err := json.Unmarshal(body, &parsed); err == nil {
		switch d := parsed.Detail.(type) {
		case string:
			if d != "" {
				return d
			}
		case []any:
			msgs := make([]string, 0, len(d))
			for _, item := range d {
				if m, ok := item.(map[string]any); ok {
					if msg, ok := m["msg"].(string); ok && msg != "" {
						msgs = append(msgs, msg)
					}
				}
			}
			if len(msgs) > 0 {
				return strings.Join(msgs, "; ")
			}
		}
		if parsed.Error != "" {
			return parsed.Error
		}
	}

	if msg := strings.TrimSpace(string(body)); msg != "" && len(msg) < 512 {
		return msg
	}
	return fallback
}
