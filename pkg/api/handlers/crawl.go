package handlers

import (
	"errors"
	"net/http"
	"path/filepath"
	"strings"

	"review-crawler-go/pkg/models"
	"review-crawler-go/pkg/services"

	"github.com/gin-gonic/gin"
)

// StartCrawl accepts a crawl request and runs it in the background
func StartCrawl(service *services.CrawlService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.CrawlRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": err.Error()})
			return
		}

		id, err := service.CreateTask(req)
		if err != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": err.Error()})
			return
		}
		service.Start(id)

		c.JSON(http.StatusOK, models.CrawlResponse{
			TaskID:  id,
			Status:  string(models.JobPending),
			Message: "Crawl job started",
		})
	}
}

// GetStatus reports task progress. Unknown IDs come back as a failed task.
func GetStatus(service *services.CrawlService) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, service.Status(c.Param("task_id")))
	}
}

// Download serves the result file of a completed task
func Download(service *services.CrawlService) gin.HandlerFunc {
	return func(c *gin.Context) {
		format := models.FormatExcel
		if strings.EqualFold(c.Query("format"), "csv") {
			format = models.FormatCSV
		}

		path, err := service.ResultFile(c.Param("task_id"), format)
		if err != nil {
			switch {
			case errors.Is(err, services.ErrNotCompleted):
				c.JSON(http.StatusBadRequest, gin.H{"detail": "Task has not completed"})
			case errors.Is(err, services.ErrTaskNotFound):
				c.JSON(http.StatusNotFound, gin.H{"detail": "Task not found"})
			default:
				c.JSON(http.StatusNotFound, gin.H{"detail": "File not found"})
			}
			return
		}

		c.Header("Content-Type", format.MediaType())
		c.FileAttachment(path, filepath.Base(path))
	}
}

// HealthCheck reports that the service is up
func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, models.HealthResponse{
		Status:  "healthy",
		Service: "naver-review-crawler",
	})
}
