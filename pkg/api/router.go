package api

import (
	"log"

	"review-crawler-go/pkg/api/handlers"
	"review-crawler-go/pkg/api/middleware"
	"review-crawler-go/pkg/config"
	"review-crawler-go/pkg/services"

	"github.com/gin-gonic/gin"
)

func NewRouter(service *services.CrawlService, cfg *config.Config, logger *log.Logger) *gin.Engine {
	router := gin.New()

	// Middleware
	router.Use(middleware.RequestLogger(logger))
	router.Use(middleware.ErrorHandler(logger))
	router.Use(middleware.CORS(cfg.API.AllowedOrigins))

	api := router.Group("/api")
	{
		api.GET("/health", handlers.HealthCheck)

		// Status polling runs on a fixed cadence and is not rate limited.
		api.GET("/status/:task_id", handlers.GetStatus(service))

		limited := api.Group("")
		limited.Use(middleware.RateLimit(cfg.API.RateLimitRPS, cfg.API.RateLimitBurst))
		{
			limited.POST("/crawl", handlers.StartCrawl(service))
			limited.GET("/download/:task_id", handlers.Download(service))
		}
	}

	return router
}
