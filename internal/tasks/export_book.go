package tasks

import (
	"context"
	"fmt"
	"time"

	"github.com/mikestefanello/backlite"
	"go.uber.org/zap"

	"github.com/mrlokans/pagescraper/internal/services"
)

// ExportBookQueue is the backlite queue name for background exports.
const ExportBookQueue = "export_book"

// ExportBookTask assembles one stored book into a PDF in the export
// directory. JobID ties the task to the job the caller polls.
type ExportBookTask struct {
	JobID   string `json:"job_id"`
	BookURL string `json:"book_url"`
	Title   string `json:"title,omitempty"`
}

// Config returns the queue configuration for export tasks. Exports are not
// retried: a failed page is already reported per page, and a fatal failure
// (empty book, no valid pages) would fail again.
func (t ExportBookTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        ExportBookQueue,
		MaxAttempts: 1,
		Timeout:     DefaultConfig().ExportTimeout,
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// ExportBookProcessor creates a processor function for ExportBookTask.
func ExportBookProcessor(svc *services.ExportService, logger *zap.Logger) backlite.QueueProcessor[ExportBookTask] {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(ctx context.Context, task ExportBookTask) error {
		if svc == nil {
			return fmt.Errorf("export service not configured")
		}
		if task.BookURL == "" {
			return fmt.Errorf("export task %s: book url is required", task.JobID)
		}

		job := svc.Jobs().Restore(task.JobID, task.BookURL, task.Title)
		logger.Info("export task started", zap.String("job", job.ID()), zap.String("book", task.BookURL))

		if _, err := svc.RunJob(ctx, job); err != nil {
			return fmt.Errorf("export book %s: %w", task.BookURL, err)
		}
		return nil
	}
}

// NewExportBookQueue creates a backlite queue for export tasks.
func NewExportBookQueue(svc *services.ExportService, logger *zap.Logger) backlite.Queue {
	return backlite.NewQueue(ExportBookProcessor(svc, logger))
}

// EnqueueExport queues a background export for a registered job and
// returns the backlite task ID.
func (c *Client) EnqueueExport(jobID, bookURL, title string) (string, error) {
	ids, err := c.Add(ExportBookTask{JobID: jobID, BookURL: bookURL, Title: title}).Save()
	if err != nil {
		return "", fmt.Errorf("enqueue export: %w", err)
	}
	if len(ids) == 0 {
		return "", fmt.Errorf("enqueue export: no task id returned")
	}
	return ids[0], nil
}
