package scheduler

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/mrlokans/pagescraper/internal/assembler"
)

// ExportCleanupConfig configures the retention sweep. A zero Retention
// disables it.
type ExportCleanupConfig struct {
	ExportDir string
	CacheDir  string // page image cache, optional
	AuditDir  string // capture audit entries, optional
	Retention time.Duration
	Schedule  string // standard 5-field cron expression
}

// CleanupResult counts what one sweep removed.
type CleanupResult struct {
	Documents   int `json:"documents"`
	Reports     int `json:"reports"`
	CachedPages int `json:"cached_pages"`
	AuditFiles  int `json:"audit_files"`
	Jobs        int `json:"jobs"`
}

// ExportCleanupScheduler periodically removes exported documents, their
// reports and cached page images older than the retention period, and
// forgets finished jobs of the same age.
type ExportCleanupScheduler struct {
	config ExportCleanupConfig
	jobs   *assembler.JobRegistry
	logger *zap.Logger

	cron       *cron.Cron
	entryID    cron.EntryID
	mu         sync.RWMutex
	isRunning  bool
	cancelFunc context.CancelFunc
	now        func() time.Time
}

// NewExportCleanupScheduler creates a new scheduler instance
func NewExportCleanupScheduler(cfg ExportCleanupConfig, jobs *assembler.JobRegistry, logger *zap.Logger) *ExportCleanupScheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportCleanupScheduler{
		config: cfg,
		jobs:   jobs,
		logger: logger.Named("export_cleanup"),
		cron:   cron.New(cron.WithParser(cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow))),
		now:    time.Now,
	}
}

// Start begins the scheduler if retention is enabled
func (s *ExportCleanupScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}

	if s.config.Retention <= 0 {
		s.logger.Info("export cleanup disabled")
		return nil
	}

	if _, err := cron.ParseStandard(s.config.Schedule); err != nil {
		return fmt.Errorf("invalid cron schedule '%s': %w", s.config.Schedule, err)
	}

	entryID, err := s.cron.AddFunc(s.config.Schedule, func() {
		s.RunNow()
	})
	if err != nil {
		return fmt.Errorf("failed to schedule cleanup job: %w", err)
	}
	s.entryID = entryID

	var cancelCtx context.Context
	cancelCtx, s.cancelFunc = context.WithCancel(ctx)

	s.cron.Start()
	s.isRunning = true

	s.logger.Info("export cleanup started",
		zap.String("schedule", s.config.Schedule),
		zap.Duration("retention", s.config.Retention),
		zap.String("dir", s.config.ExportDir))

	go func() {
		<-cancelCtx.Done()
		s.Stop()
	}()

	return nil
}

// Stop gracefully stops the scheduler
func (s *ExportCleanupScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}

	// Stop accepting new jobs and wait for a running sweep to complete
	ctx := s.cron.Stop()
	<-ctx.Done()

	s.isRunning = false
	if s.cancelFunc != nil {
		s.cancelFunc()
		s.cancelFunc = nil
	}

	s.logger.Info("export cleanup stopped")
}

// IsRunning returns whether the scheduler is active
func (s *ExportCleanupScheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// NextRun returns when the next sweep will occur
func (s *ExportCleanupScheduler) NextRun() *time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isRunning {
		return nil
	}
	for _, entry := range s.cron.Entries() {
		if entry.ID == s.entryID {
			t := entry.Next
			return &t
		}
	}
	return nil
}

// RunNow performs one sweep synchronously.
func (s *ExportCleanupScheduler) RunNow() CleanupResult {
	var result CleanupResult
	if s.config.Retention <= 0 {
		return result
	}
	cutoff := s.now().Add(-s.config.Retention)

	if s.config.ExportDir != "" {
		result.Reports = s.sweep(s.config.ExportDir, cutoff, func(name string) bool {
			return strings.HasSuffix(name, assembler.ReportSuffix)
		})
		result.Documents = s.sweep(s.config.ExportDir, cutoff, func(name string) bool {
			return strings.EqualFold(filepath.Ext(name), ".pdf")
		})
	}
	if s.config.CacheDir != "" {
		result.CachedPages = s.sweep(s.config.CacheDir, cutoff, func(name string) bool {
			return strings.HasPrefix(name, "page_")
		})
	}
	if s.config.AuditDir != "" {
		result.AuditFiles = s.sweep(s.config.AuditDir, cutoff, func(name string) bool {
			return strings.HasSuffix(name, ".json")
		})
	}
	if s.jobs != nil {
		result.Jobs = s.jobs.Prune(s.config.Retention)
	}

	s.logger.Info("export cleanup finished",
		zap.Int("documents", result.Documents),
		zap.Int("reports", result.Reports),
		zap.Int("cached_pages", result.CachedPages),
		zap.Int("audit_files", result.AuditFiles),
		zap.Int("jobs", result.Jobs))
	return result
}

// sweep removes regular files in dir matching match and last modified before
// cutoff. Subdirectories are left alone.
func (s *ExportCleanupScheduler) sweep(dir string, cutoff time.Time, match func(string) bool) int {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Warn("failed to read directory", zap.String("dir", dir), zap.Error(err))
		}
		return 0
	}

	removed := 0
	for _, entry := range entries {
		if !entry.Type().IsRegular() || !match(entry.Name()) {
			continue
		}
		info, err := entry.Info()
		if err != nil || !info.ModTime().Before(cutoff) {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if err := os.Remove(path); err != nil {
			s.logger.Warn("failed to remove expired file", zap.String("path", path), zap.Error(err))
			continue
		}
		removed++
	}
	return removed
}
