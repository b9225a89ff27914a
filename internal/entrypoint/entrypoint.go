package entrypoint

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/mrlokans/pagescraper/internal/config"
	http_controllers "github.com/mrlokans/pagescraper/internal/http"
	"github.com/mrlokans/pagescraper/internal/logging"
	"github.com/mrlokans/pagescraper/internal/mcp"
	"github.com/mrlokans/pagescraper/internal/scheduler"
	"github.com/mrlokans/pagescraper/internal/tasks"
)

// NewLogger builds the process logger from cfg and installs it as the zap
// global, which the HTTP helpers log through.
func NewLogger(cfg *config.Config) (*zap.Logger, error) {
	logger, err := logging.New(cfg.Log)
	if err != nil {
		return nil, err
	}
	zap.ReplaceGlobals(logger)
	return logger, nil
}

// Run starts every long-lived component and blocks until ctx is cancelled or
// one of them fails. Shutdown waits at most the configured timeout.
func Run(ctx context.Context, cfg *config.Config, version string) error {
	logger, err := NewLogger(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("starting pagescraper", zap.String("version", version))

	app, err := Build(cfg, logger)
	if err != nil {
		return err
	}
	defer app.Close()

	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second
	g, ctx := errgroup.WithContext(ctx)

	if app.Browser != nil {
		if err := app.Browser.Start(ctx); err != nil {
			return err
		}
		// Closing the capture window ends the session.
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return nil
			case <-app.Browser.Done():
				logger.Info("capture browser closed")
				return errBrowserClosed
			}
		})
	}

	deletions, unsubscribeDeletions := app.Bus.Subscribe()
	defer unsubscribeDeletions()
	g.Go(func() error {
		app.Listener.WatchDeletions(ctx, deletions)
		return nil
	})

	badgeEvents, unsubscribeBadge := app.Bus.Subscribe()
	defer unsubscribeBadge()
	g.Go(func() error {
		app.Badge.Run(ctx, badgeEvents)
		return nil
	})

	routerCfg := http_controllers.RouterConfig{
		Books:        app.Reconciler,
		Registry:     app.Registry,
		Events:       app.Bus,
		Requests:     app.Listener,
		Tabs:         app.Tabs,
		Badge:        app.Badge,
		Exports:      app.Exports,
		HealthChecks: app.HealthChecks,
		Keepalive:    cfg.HTTP.EventKeepalive,
		Version:      version,
		Logger:       logger.Named("http"),
	}
	if app.TabSetter != nil {
		routerCfg.TabSetter = app.TabSetter
	}

	if cfg.Tasks.Enabled {
		taskClient, err := startTasks(ctx, g, app, timeout)
		if err != nil {
			return err
		}
		routerCfg.ExportQueue = taskClient
		routerCfg.TaskStatus = taskClient
		routerCfg.HealthChecks["tasks"] = taskClient
	}

	cleanup := scheduler.NewExportCleanupScheduler(scheduler.ExportCleanupConfig{
		ExportDir: cfg.Export.Dir,
		CacheDir:  cfg.Assembly.CacheDir,
		AuditDir:  cfg.Capture.AuditDir,
		Retention: cfg.Export.Retention,
		Schedule:  cfg.Export.CleanupSchedule,
	}, app.Exports.Jobs(), logger)
	if err := cleanup.Start(ctx); err != nil {
		return err
	}
	defer cleanup.Stop()

	router := http_controllers.NewRouter(routerCfg)
	if cfg.HTTP.MCPEnabled {
		mcpServer := mcp.NewServer(app.Reconciler, app.Registry, app.Exports, version)
		router.Any(mcp.DefaultEndpoint, gin.WrapH(mcp.NewHTTPServer(mcpServer, mcp.DefaultEndpoint)))
	}

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler: router,
	}
	g.Go(func() error {
		logger.Info("http server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		logger.Info("shutting down server", zap.Duration("timeout", timeout))
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	err = g.Wait()
	if errors.Is(err, errBrowserClosed) {
		err = nil
	}
	logger.Info("server exiting")
	return err
}

var errBrowserClosed = errors.New("capture browser closed")

// startTasks opens the task queue, registers the export queue and stops the
// workers when ctx ends.
func startTasks(ctx context.Context, g *errgroup.Group, app *App, timeout time.Duration) (*tasks.Client, error) {
	cfg := app.Config
	taskCfg := tasks.DefaultConfig()
	if cfg.Tasks.Workers > 0 {
		taskCfg.Workers = cfg.Tasks.Workers
	}
	if cfg.Tasks.ReleaseAfter > 0 {
		taskCfg.ReleaseAfter = cfg.Tasks.ReleaseAfter
	}
	if cfg.Tasks.CleanupInterval > 0 {
		taskCfg.CleanupInterval = cfg.Tasks.CleanupInterval
	}

	client, err := tasks.NewClient(cfg.Database.Path, taskCfg, app.Logger.Named("tasks"))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize task queue: %w", err)
	}
	app.closers = append(app.closers, client.Close)

	client.Register(tasks.NewExportBookQueue(app.Exports, app.Logger.Named("tasks")))

	workerCtx, cancelWorkers := context.WithCancel(context.Background())
	go client.Start(workerCtx)

	g.Go(func() error {
		<-ctx.Done()
		stopCtx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		client.Stop(stopCtx)
		cancelWorkers()
		return nil
	})
	return client, nil
}
