package http

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mrlokans/pagescraper/internal/assembler"
	"github.com/mrlokans/pagescraper/internal/services"
	"github.com/mrlokans/pagescraper/internal/sites"
	"github.com/mrlokans/pagescraper/internal/tabs"
)

// ExportEnqueuer queues background exports. The backlite task client
// implements it.
type ExportEnqueuer interface {
	EnqueueExport(jobID, bookURL, title string) (string, error)
}

// ExportsController turns books into PDF downloads, either streamed in the
// response or produced by a background job the UI polls.
type ExportsController struct {
	exports  *services.ExportService
	queue    ExportEnqueuer
	tabs     tabs.Provider
	registry *sites.Registry
	logger   *zap.Logger
}

func NewExportsController(exports *services.ExportService, queue ExportEnqueuer, provider tabs.Provider, registry *sites.Registry, logger *zap.Logger) *ExportsController {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportsController{
		exports:  exports,
		queue:    queue,
		tabs:     provider,
		registry: registry,
		logger:   logger,
	}
}

// title picks the document title: the explicit one, else the active tab's
// title when that tab is the book being exported. An empty result makes the
// assembler fall back to the book key.
func (ec *ExportsController) title(ctx context.Context, key, explicit string) string {
	if explicit != "" || ec.tabs == nil {
		return explicit
	}
	tab, err := ec.tabs.ActiveTab(ctx)
	if err != nil {
		return ""
	}
	if tabKey, err := ec.registry.BookKey(tab.URL); err == nil && tabKey == key {
		return tab.Title
	}
	return ""
}

// Download handles GET /api/books/export?url=&title=, streaming the PDF.
func (ec *ExportsController) Download(c *gin.Context) {
	key, ok := requireBookURL(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	title := ec.title(ctx, key, c.Query("title"))

	out := assembler.StreamOutput{
		W: c.Writer,
		Started: func(filename string) {
			c.Header("Content-Type", "application/pdf")
			c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
			c.Status(http.StatusOK)
		},
	}
	log := assembler.ReporterFuncs{
		Log:   func(msg string) { ec.logger.Debug(msg, zap.String("book", key)) },
		Error: func(msg string) { ec.logger.Warn(msg, zap.String("book", key)) },
	}

	doc, err := ec.exports.Export(ctx, key, title, out, log)
	if err != nil {
		if c.Writer.Written() {
			ec.logger.Error("export failed after streaming started", zap.String("book", key), zap.Error(err))
			return
		}
		respondDomainError(c, err, "export book")
		return
	}
	ec.logger.Info("export downloaded",
		zap.String("book", key),
		zap.String("file", doc.Filename),
		zap.Int("placed", doc.Placed),
		zap.Int("attempted", doc.Attempted))
}

type startExportRequest struct {
	URL   string `json:"url" binding:"required"`
	Title string `json:"title"`
}

// StartExport handles POST /api/exports
func (ec *ExportsController) StartExport(c *gin.Context) {
	var req startExportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "url is required")
		return
	}
	title := ec.title(c.Request.Context(), req.URL, req.Title)
	job := ec.exports.NewJob(req.URL, title)

	data := gin.H{"job_id": job.ID()}
	if ec.queue != nil {
		taskID, err := ec.queue.EnqueueExport(job.ID(), req.URL, title)
		if err != nil {
			job.Finish(nil, err)
			respondInternalError(c, err, "enqueue export")
			return
		}
		data["task_id"] = taskID
	} else {
		go func() {
			// The job outcome is recorded on the job itself.
			_, _ = ec.exports.RunJob(context.Background(), job)
		}()
	}

	respondAccepted(c, "export started", data)
}

// ListExports handles GET /api/exports
func (ec *ExportsController) ListExports(c *gin.Context) {
	jobs := ec.exports.Jobs().List()
	c.JSON(http.StatusOK, gin.H{"exports": jobs, "count": len(jobs)})
}

// GetExport handles GET /api/exports/:id, the progress, log and error
// streams of one job.
func (ec *ExportsController) GetExport(c *gin.Context) {
	job, ok := ec.exports.Jobs().Get(c.Param("id"))
	if !ok {
		respondNotFound(c, "export")
		return
	}
	c.JSON(http.StatusOK, job.Snapshot())
}

// DownloadExport handles GET /api/exports/:id/download
func (ec *ExportsController) DownloadExport(c *gin.Context) {
	job, ok := ec.exports.Jobs().Get(c.Param("id"))
	if !ok {
		respondNotFound(c, "export")
		return
	}
	s := job.Snapshot()
	if s.Status != assembler.JobCompleted {
		respondError(c, http.StatusConflict, "export_not_ready", "export is "+string(s.Status))
		return
	}
	if _, err := os.Stat(s.Location); err != nil {
		respondError(c, http.StatusGone, "export_expired", "exported file is no longer available")
		return
	}
	c.FileAttachment(s.Location, s.Filename)
}
