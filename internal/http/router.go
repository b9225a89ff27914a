package http

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// requestLogger logs each request through zap in place of gin.Logger.
func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		c.Next()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
		}
		switch {
		case c.Writer.Status() >= 500:
			logger.Error("request", fields...)
		case c.Writer.Status() >= 400:
			logger.Warn("request", fields...)
		default:
			logger.Debug("request", fields...)
		}
	}
}

// NewRouter creates and configures the HTTP router with all endpoints.
// Uses RouterConfig to receive all dependencies; optional ones left nil
// simply leave their routes unregistered.
func NewRouter(cfg RouterConfig) *gin.Engine {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	router := gin.New()
	router.Use(requestLogger(logger.Named("http")))
	router.Use(gin.Recovery())

	health := NewHealthController(cfg.HealthChecks, cfg.Version)
	messages := NewMessagesController(cfg.Books)
	booksController := NewBooksController(cfg.Books)
	sitesController := NewSitesController(cfg.Registry)

	// Health endpoints
	router.GET("/health", health.Status)
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "pong",
		})
	})

	// UI message protocol
	router.POST("/api/messages", messages.Handle)

	// Books API endpoints
	router.GET("/api/books", booksController.GetAllBooks)
	router.GET("/api/books/book", booksController.GetBook)
	router.GET("/api/books/current", booksController.GetCurrentBook)
	router.POST("/api/books/ensure", booksController.EnsureBook)
	router.PUT("/api/books", booksController.SaveBook)
	router.DELETE("/api/books", booksController.DeleteBook)
	router.PATCH("/api/books/order", booksController.ReorderPages)
	router.DELETE("/api/books/pages/:index", booksController.DeletePage)

	// Site registry
	router.GET("/api/sites", sitesController.ListSites)
	router.GET("/api/sites/reader", sitesController.ReaderStatus)

	// Capture ingestion from external clients
	if cfg.Requests != nil {
		captureController := NewCaptureController(cfg.Requests, cfg.Tabs, cfg.TabSetter, cfg.Registry, cfg.Badge)
		router.POST("/api/requests", captureController.IngestRequest)
		router.GET("/api/tabs/active", captureController.GetActiveTab)
		router.POST("/api/tabs/active", captureController.SetActiveTab)
		router.DELETE("/api/tabs/active", captureController.ClearActiveTab)
	}

	// Push notifications
	if cfg.Events != nil {
		eventsController := NewEventsController(cfg.Events, cfg.Keepalive, logger.Named("sse"))
		router.GET("/api/events", eventsController.Stream)
	}

	// PDF export endpoints
	if cfg.Exports != nil {
		exportsController := NewExportsController(cfg.Exports, cfg.ExportQueue, cfg.Tabs, cfg.Registry, logger.Named("export"))
		router.GET("/api/books/export", exportsController.Download)
		router.POST("/api/exports", exportsController.StartExport)
		router.GET("/api/exports", exportsController.ListExports)
		router.GET("/api/exports/:id", exportsController.GetExport)
		router.GET("/api/exports/:id/download", exportsController.DownloadExport)
	}

	// Task management endpoints
	if cfg.TaskStatus != nil {
		tasksController := NewTasksController(cfg.TaskStatus)
		router.GET("/api/tasks/types", tasksController.ListTaskTypes)
		router.GET("/api/tasks/:id", tasksController.GetTaskStatus)
	}

	return router
}
