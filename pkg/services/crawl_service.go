package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"review-crawler-go/pkg/models"
	"review-crawler-go/pkg/utils"

	"github.com/google/uuid"
)

// DefaultMaxReviews is used when a request leaves max_reviews out.
const DefaultMaxReviews = 100

var (
	ErrTaskNotFound = errors.New("task not found")
	ErrNotCompleted = errors.New("task is not completed")
	ErrFileNotFound = errors.New("result file not found")
)

// Task is one crawl job held by the service.
type Task struct {
	ID         string
	ProductURL string
	Ratings    models.RatingFilter
	MaxReviews int

	Status    models.JobState
	Progress  int
	Collected int
	Message   string
	Error     string

	CSVFile   string
	ExcelFile string
	CreatedAt time.Time
}

// CrawlService keeps crawl tasks in memory and runs them in the background.
type CrawlService struct {
	collector Collector
	outputDir string
	logger    *log.Logger

	mu    sync.RWMutex
	tasks map[string]*Task

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewCrawlService creates a crawl service. A nil logger discards output.
func NewCrawlService(collector Collector, outputDir string, logger *log.Logger) *CrawlService {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &CrawlService{
		collector: collector,
		outputDir: outputDir,
		logger:    logger,
		tasks:     make(map[string]*Task),
		ctx:       ctx,
		cancel:    cancel,
	}
}

// ValidateCrawlRequest checks the parts of a request that struct binding
// cannot express.
func ValidateCrawlRequest(req models.CrawlRequest) error {
	if !strings.HasPrefix(req.ProductURL, utils.RequiredURLPrefix) {
		return fmt.Errorf("only %s product URLs are supported", utils.RequiredURLPrefix)
	}
	if _, err := models.NewRatingFilter(req.RatingFilter...); err != nil {
		return err
	}
	if req.MaxReviews != nil && (*req.MaxReviews < 1 || *req.MaxReviews > models.MaxResultLimit) {
		return fmt.Errorf("max_reviews must be between 1 and %d", models.MaxResultLimit)
	}
	return nil
}

// CreateTask registers a pending task and returns its ID.
func (s *CrawlService) CreateTask(req models.CrawlRequest) (string, error) {
	if err := ValidateCrawlRequest(req); err != nil {
		return "", err
	}
	ratings, _ := models.NewRatingFilter(req.RatingFilter...)
	maxReviews := DefaultMaxReviews
	if req.MaxReviews != nil {
		maxReviews = *req.MaxReviews
	}

	task := &Task{
		ID:         uuid.NewString(),
		ProductURL: req.ProductURL,
		Ratings:    ratings,
		MaxReviews: maxReviews,
		Status:     models.JobPending,
		Message:    "Waiting to start",
		CreatedAt:  time.Now(),
	}

	s.mu.Lock()
	s.tasks[task.ID] = task
	s.mu.Unlock()

	s.logger.Printf("task %s created for %s (ratings=%s, max=%d)", task.ID, task.ProductURL, ratings, maxReviews)
	return task.ID, nil
}

// Start runs the task in the background until it finishes or the service
// shuts down.
func (s *CrawlService) Start(id string) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.Run(s.ctx, id)
	}()
}

// Shutdown cancels running tasks and waits for them to exit.
func (s *CrawlService) Shutdown(ctx context.Context) error {
	s.cancel()
	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run executes a task synchronously. Failures are recorded on the task.
func (s *CrawlService) Run(ctx context.Context, id string) {
	s.mu.RLock()
	task, ok := s.tasks[id]
	s.mu.RUnlock()
	if !ok {
		return
	}

	defer func() {
		if r := recover(); r != nil {
			s.fail(task, fmt.Errorf("panic: %v", r))
		}
	}()

	s.update(task, func(t *Task) {
		t.Status = models.JobProcessing
		t.Message = "Crawl started"
	})

	for _, step := range []struct {
		progress int
		message  string
	}{
		{5, "Starting browser..."},
		{10, "Loading product page..."},
		{15, "Opening review tab..."},
		{20, "Collecting reviews..."},
	} {
		s.update(task, func(t *Task) {
			t.Progress = step.progress
			t.Message = step.message
		})
	}

	reviews, err := s.collector.Collect(ctx, CollectRequest{
		ProductURL: task.ProductURL,
		Ratings:    task.Ratings,
		MaxReviews: task.MaxReviews,
	}, func(collected int) {
		s.update(task, func(t *Task) {
			t.Collected = collected
			t.Progress = collectProgress(collected, t.MaxReviews)
			t.Message = fmt.Sprintf("Collecting reviews... (%d/%d)", collected, t.MaxReviews)
		})
	})
	if err != nil {
		s.fail(task, err)
		return
	}

	s.update(task, func(t *Task) {
		t.Progress = 95
		t.Message = "Saving files..."
	})

	if len(reviews) == 0 {
		s.update(task, func(t *Task) {
			t.Status = models.JobFailed
			t.Message = "No reviews matched the filter"
		})
		s.logger.Printf("task %s found no reviews", id)
		return
	}

	csvPath, excelPath, err := s.save(task.ID, reviews)
	if err != nil {
		s.fail(task, err)
		return
	}

	s.update(task, func(t *Task) {
		t.Collected = len(reviews)
		t.CSVFile = csvPath
		t.ExcelFile = excelPath
		t.Status = models.JobCompleted
		t.Progress = 100
		t.Message = fmt.Sprintf("Crawl complete! %d reviews collected", len(reviews))
	})
	s.logger.Printf("task %s completed with %d reviews", id, len(reviews))
}

// collectProgress maps collection to the 20-90 band.
func collectProgress(collected, target int) int {
	if target <= 0 {
		return 20
	}
	return min(20+collected*70/target, 90)
}

func (s *CrawlService) save(id string, reviews []models.Review) (string, string, error) {
	if err := os.MkdirAll(s.outputDir, 0o755); err != nil {
		return "", "", fmt.Errorf("failed to create output dir: %w", err)
	}
	stamp := time.Now().Format("20060102_150405")
	base := filepath.Join(s.outputDir, fmt.Sprintf("reviews_%s_%s", id, stamp))

	csvPath := base + ".csv"
	if err := writeFile(csvPath, func(w io.Writer) error { return ExportCSV(w, reviews) }); err != nil {
		return "", "", err
	}
	excelPath := base + ".xlsx"
	if err := writeFile(excelPath, func(w io.Writer) error { return ExportExcel(w, reviews) }); err != nil {
		return "", "", err
	}
	return csvPath, excelPath, nil
}

func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return f.Close()
}

func (s *CrawlService) fail(task *Task, err error) {
	s.update(task, func(t *Task) {
		t.Status = models.JobFailed
		t.Error = err.Error()
		t.Message = "Crawl failed: " + err.Error()
	})
	s.logger.Printf("task %s failed: %v", task.ID, err)
}

func (s *CrawlService) update(task *Task, fn func(*Task)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(task)
}

// GetTask returns a copy of the task.
func (s *CrawlService) GetTask(id string) (Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	task, ok := s.tasks[id]
	if !ok {
		return Task{}, ErrTaskNotFound
	}
	return *task, nil
}

// Status returns the wire status of a task. Unknown IDs report a failed
// task rather than an error.
func (s *CrawlService) Status(id string) models.TaskStatus {
	task, err := s.GetTask(id)
	if err != nil {
		invalid := "Invalid task ID"
		return models.TaskStatus{
			TaskID:  id,
			Status:  string(models.JobFailed),
			Message: "Task not found",
			Error:   &invalid,
		}
	}

	st := models.TaskStatus{
		TaskID:         task.ID,
		Status:         string(task.Status),
		Progress:       task.Progress,
		CollectedCount: task.Collected,
		TotalTarget:    task.MaxReviews,
		Message:        task.Message,
	}
	if task.Error != "" {
		st.Error = &task.Error
	}
	if task.Status == models.JobCompleted {
		url := "/api/download/" + task.ID
		st.DownloadURL = &url
	}
	return st
}

// ResultFile returns the artifact path of a completed task.
func (s *CrawlService) ResultFile(id string, format models.ExportFormat) (string, error) {
	task, err := s.GetTask(id)
	if err != nil {
		return "", err
	}
	if task.Status != models.JobCompleted {
		return "", ErrNotCompleted
	}

	path := task.ExcelFile
	if format == models.FormatCSV {
		path = task.CSVFile
	}
	if path == "" {
		return "", ErrFileNotFound
	}
	if _, err := os.Stat(path); err != nil {
		return "", ErrFileNotFound
	}
	return path, nil
}
