package tasks

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/mikestefanello/backlite"
	"go.uber.org/zap"
)

// Client runs the background export queue on its own SQLite file so task
// bookkeeping never contends with book writes.
type Client struct {
	client *backlite.Client
	db     *sql.DB
	path   string
	config Config
	logger *zap.Logger

	started atomic.Bool
}

// DBPath returns the queue database path for a main database path:
// ./pagescraper.db becomes ./pagescraper-tasks.db.
func DBPath(mainDBPath string) string {
	ext := filepath.Ext(mainDBPath)
	return strings.TrimSuffix(mainDBPath, ext) + "-tasks" + ext
}

func NewClient(mainDBPath string, cfg Config, logger *zap.Logger) (*Client, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	path := DBPath(mainDBPath)

	db, err := sql.Open("sqlite3", path+"?_journal=WAL&_timeout=5000&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open task database: %w", err)
	}
	// Each worker holds a connection while it claims and completes a task.
	db.SetMaxOpenConns(cfg.Workers + 5)
	db.SetMaxIdleConns(cfg.Workers + 2)
	db.SetConnMaxLifetime(time.Hour)

	client, err := backlite.NewClient(backlite.ClientConfig{
		DB:              db,
		NumWorkers:      cfg.Workers,
		ReleaseAfter:    cfg.ReleaseAfter,
		CleanupInterval: cfg.CleanupInterval,
		Logger:          &zapLogger{logger: logger.Sugar()},
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create task client: %w", err)
	}
	if err := client.Install(); err != nil {
		db.Close()
		return nil, fmt.Errorf("install task schema: %w", err)
	}

	logger.Debug("task database ready", zap.String("path", path))
	return &Client{
		client: client,
		db:     db,
		path:   path,
		config: cfg,
		logger: logger,
	}, nil
}

// Register adds queues. Call it before Start.
func (c *Client) Register(queues ...backlite.Queue) {
	for _, q := range queues {
		c.client.Register(q)
	}
}

// Start runs the workers until ctx ends or Stop is called. Only the first
// call has an effect.
func (c *Client) Start(ctx context.Context) {
	if !c.started.CompareAndSwap(false, true) {
		return
	}
	c.logger.Info("task queue started", zap.Int("workers", c.config.Workers))
	c.client.Start(ctx)
}

// Stop waits for running exports to finish or ctx to expire. It reports
// whether every worker finished in time.
func (c *Client) Stop(ctx context.Context) bool {
	if !c.started.Load() {
		return true
	}
	start := time.Now()
	ok := c.client.Stop(ctx)
	if ok {
		c.logger.Info("task queue stopped", zap.Duration("took", time.Since(start)))
	} else {
		c.logger.Warn("task queue stop timed out, running exports were abandoned")
	}
	return ok
}

func (c *Client) Close() error {
	return c.db.Close()
}

// Add starts an operation to enqueue one or more tasks.
func (c *Client) Add(tasks ...backlite.Task) *backlite.TaskAddOp {
	return c.client.Add(tasks...)
}

func (c *Client) Status(ctx context.Context, taskID string) (backlite.TaskStatus, error) {
	return c.client.Status(ctx, taskID)
}

// Ping checks the queue database; it backs the "tasks" health check.
func (c *Client) Ping() error {
	return c.db.Ping()
}

// Path is the queue database file.
func (c *Client) Path() string {
	return c.path
}

// zapLogger adapts zap to backlite.Logger. backlite passes slog-style
// key/value pairs, which the sugared w-methods take as is.
type zapLogger struct {
	logger *zap.SugaredLogger
}

func (l *zapLogger) Info(message string, params ...any) {
	l.logger.Infow(message, params...)
}

func (l *zapLogger) Error(message string, params ...any) {
	l.logger.Errorw(message, params...)
}
