package entrypoint

import (
	"errors"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/mrlokans/pagescraper/internal/assembler"
	"github.com/mrlokans/pagescraper/internal/audit"
	"github.com/mrlokans/pagescraper/internal/capture"
	"github.com/mrlokans/pagescraper/internal/config"
	"github.com/mrlokans/pagescraper/internal/database"
	"github.com/mrlokans/pagescraper/internal/database/books"
	"github.com/mrlokans/pagescraper/internal/events"
	http_controllers "github.com/mrlokans/pagescraper/internal/http"
	"github.com/mrlokans/pagescraper/internal/library"
	"github.com/mrlokans/pagescraper/internal/services"
	"github.com/mrlokans/pagescraper/internal/sites"
	"github.com/mrlokans/pagescraper/internal/storage/bolt"
	"github.com/mrlokans/pagescraper/internal/tabs"
)

// busBuffer is the per-subscriber queue depth of the notification bus.
const busBuffer = 64

// App holds the wired components shared by the server and the CLI commands.
type App struct {
	Config   *config.Config
	Logger   *zap.Logger
	Registry *sites.Registry

	Store        library.Store
	HealthChecks map[string]http_controllers.Pinger

	Bus        *events.Bus
	Tabs       tabs.Provider
	TabSetter  *tabs.Static // nil when the capture browser owns the active tab
	Browser    *capture.Browser
	Reconciler *library.Reconciler
	Listener   *capture.Listener
	Badge      *events.BadgeUpdater

	Fetcher   assembler.Fetcher
	Assembler *assembler.Assembler
	Exports   *services.ExportService

	closers []func() error
}

// Build wires every component. The capture browser is created, not started,
// when cfg.Capture.Enabled is set.
func Build(cfg *config.Config, logger *zap.Logger) (app *App, err error) {
	app = &App{
		Config:       cfg,
		Logger:       logger,
		Registry:     sites.Default(),
		HealthChecks: map[string]http_controllers.Pinger{},
	}
	defer func() {
		if err != nil {
			app.Close()
			app = nil
		}
	}()

	if err := app.openStore(); err != nil {
		return nil, err
	}

	app.Bus = events.NewBus(logger.Named("events"), busBuffer)
	app.closers = append(app.closers, func() error {
		app.Bus.Close()
		return nil
	})

	if cfg.Capture.Enabled {
		app.Browser = capture.NewBrowser(nil, capture.BrowserConfig{
			Headless:    cfg.Capture.Headless,
			StartURL:    cfg.Capture.StartURL,
			UserDataDir: cfg.Capture.UserDataDir,
			UserAgent:   cfg.Assembly.UserAgent,
		}, logger.Named("browser"))
		app.Tabs = app.Browser
	} else {
		app.TabSetter = tabs.NewStatic()
		app.Tabs = app.TabSetter
	}

	app.Reconciler = library.NewReconciler(app.Store, app.Registry, app.Tabs, app.Bus, logger.Named("library"))
	app.Listener = capture.NewListener(
		sites.NewClassifier(app.Registry),
		app.Reconciler,
		app.Tabs,
		sites.NewRecentURLs(cfg.Capture.DedupSize, cfg.Capture.DedupWindow),
		logger.Named("capture"),
	)
	if cfg.Capture.AuditDir != "" {
		app.Listener.SetAuditor(audit.NewAuditor(cfg.Capture.AuditDir, logger.Named("audit")))
	}
	if app.Browser != nil {
		app.Browser.SetListener(app.Listener)
	}
	app.Badge = events.NewBadgeUpdater(logger.Named("badge"), app.Reconciler.CurrentBook)

	if err := app.buildAssembler(); err != nil {
		return nil, err
	}
	return app, nil
}

func (a *App) openStore() error {
	switch a.Config.Store.Backend {
	case config.StoreBackendBolt:
		st, err := bolt.Open(a.Config.Store.BoltPath)
		if err != nil {
			return fmt.Errorf("open bolt store: %w", err)
		}
		a.Store = st
		a.HealthChecks["store"] = st
		a.closers = append(a.closers, st.Close)
		a.Logger.Info("using bolt store", zap.String("path", st.Path()))
	case config.StoreBackendSQLite, "":
		db, err := database.NewDatabase(a.Config.Database.Path, a.Logger.Named("database"))
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		a.Store = books.NewRepository(db.DB)
		a.HealthChecks["database"] = db
		a.closers = append(a.closers, db.Close)
	default:
		return fmt.Errorf("unknown store backend %q", a.Config.Store.Backend)
	}
	return nil
}

func (a *App) buildAssembler() error {
	cfg := a.Config.Assembly

	kind := cfg.Fetcher
	if kind == config.FetcherAuto || kind == "" {
		kind = config.FetcherHTTP
		if a.Browser != nil {
			kind = config.FetcherBrowser
		}
	}
	switch kind {
	case config.FetcherHTTP:
		a.Fetcher = assembler.NewHTTPFetcher(cfg.UserAgent, cfg.PageTimeout)
	case config.FetcherBrowser:
		if a.Browser == nil {
			return errors.New("browser fetcher requires CAPTURE_ENABLED")
		}
		a.Fetcher = a.Browser
	default:
		return fmt.Errorf("unknown fetcher %q", cfg.Fetcher)
	}

	if cfg.CacheDir != "" {
		cached, err := assembler.NewCachingFetcher(a.Fetcher, cfg.CacheDir)
		if err != nil {
			return err
		}
		a.Fetcher = cached
	}

	if err := os.MkdirAll(a.Config.Export.Dir, 0755); err != nil {
		return fmt.Errorf("create export dir: %w", err)
	}

	a.Assembler = assembler.New(a.Registry, a.Fetcher, a.Logger.Named("assembler"), assembler.Options{
		PageTimeout:          cfg.PageTimeout,
		FailOnAllPagesFailed: cfg.FailOnAllPagesFailed,
		SpoolDir:             cfg.SpoolDir,
	})
	a.Exports = services.NewExportService(a.Reconciler, a.Assembler, nil, a.Config.Export.Dir, a.Logger.Named("export"))
	a.Logger.Info("assembler ready",
		zap.String("fetcher", string(kind)),
		zap.String("cache_dir", cfg.CacheDir),
		zap.String("export_dir", a.Config.Export.Dir))
	return nil
}

// Close releases resources in reverse order of acquisition.
func (a *App) Close() {
	if a.Browser != nil {
		a.Browser.Close()
	}
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.Logger.Warn("error during close", zap.Error(err))
		}
	}
	a.closers = nil
}
