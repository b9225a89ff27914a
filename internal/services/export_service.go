package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/mrlokans/pagescraper/internal/assembler"
)

// ExportService ties the assembler to stored books and the export
// directory. HTTP handlers, background tasks, the MCP server and the CLI all
// export through it.
type ExportService struct {
	books     BookReader
	assembler *assembler.Assembler
	jobs      *assembler.JobRegistry
	dir       string
	logger    *zap.Logger
}

// NewExportService creates a new ExportService. Exported files and their
// reports are written to dir.
func NewExportService(books BookReader, asm *assembler.Assembler, jobs *assembler.JobRegistry, dir string, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if jobs == nil {
		jobs = assembler.NewJobRegistry()
	}
	return &ExportService{
		books:     books,
		assembler: asm,
		jobs:      jobs,
		dir:       dir,
		logger:    logger,
	}
}

func (s *ExportService) Jobs() *assembler.JobRegistry {
	return s.jobs
}

func (s *ExportService) Dir() string {
	return s.dir
}

// Export assembles the stored book into out. A missing book is reported to r
// as a fatal error, like any other assembly failure.
func (s *ExportService) Export(ctx context.Context, key, title string, out assembler.Output, r assembler.Reporter) (*assembler.Document, error) {
	if r == nil {
		r = assembler.NopReporter{}
	}
	book, err := s.books.GetBook(ctx, key)
	if err != nil {
		err = fmt.Errorf("load book %s: %w", key, err)
		r.OnError("Fatal error: " + err.Error())
		return nil, err
	}
	return s.assembler.Assemble(ctx, book, title, out, r)
}

// NewJob registers a pending export of the book.
func (s *ExportService) NewJob(key, title string) *assembler.Job {
	return s.jobs.Create(key, title)
}

// RunJob exports the job's book into the export directory and stores the
// YAML report beside it. The job carries the outcome either way.
func (s *ExportService) RunJob(ctx context.Context, job *assembler.Job) (*assembler.Document, error) {
	log := s.logger.With(zap.String("job", job.ID()))
	trace := assembler.ReporterFuncs{
		Progress: func(percent int) { log.Debug("export progress", zap.Int("percent", percent)) },
		Log:      func(msg string) { log.Debug(msg) },
	}

	job.Start()
	doc, err := s.Export(ctx, job.BookURL(), job.Title(), assembler.DirOutput{Dir: s.dir}, assembler.Tee(job, trace))
	job.Finish(doc, err)

	if path, rerr := assembler.WriteReport(s.dir, job.Snapshot()); rerr != nil {
		s.logger.Warn("failed to write export report", zap.String("job", job.ID()), zap.Error(rerr))
	} else {
		s.logger.Debug("export report written", zap.String("path", path))
	}

	if err != nil {
		s.logger.Error("export failed",
			zap.String("job", job.ID()),
			zap.String("book", job.BookURL()),
			zap.Error(err))
		return nil, err
	}
	s.logger.Info("export finished",
		zap.String("job", job.ID()),
		zap.String("book", job.BookURL()),
		zap.String("file", doc.Location),
		zap.Int("placed", doc.Placed),
		zap.Int("attempted", doc.Attempted))
	return doc, nil
}
