package cmd

import (
	"context"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mrlokans/pagescraper/internal/config"
	"github.com/mrlokans/pagescraper/internal/entrypoint"
)

func NewRootCmd(version string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pagescraper",
		Short: "Capture e-book reader pages as you read and assemble them into PDFs",
		Long: `pagescraper watches the network traffic of a browser window pointed at a
supported e-book platform, records every page image the reader loads, and
assembles the captured pages into a PDF on demand.

Configuration is read from the environment, and from a .env file when present.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Load .env file if present (ignore errors)
			_ = godotenv.Load()
		},
		SilenceUsage: true,
	}

	cmd.AddCommand(newServeCmd(version))
	cmd.AddCommand(newCaptureCmd(version))
	cmd.AddCommand(newExportCmd())
	cmd.AddCommand(newBooksCmd())
	cmd.AddCommand(newSitesCmd())
	cmd.AddCommand(newMCPCmd(version))

	return cmd
}

// withApp runs fn against the wired components without the capture browser
// or the HTTP server.
func withApp(ctx context.Context, fn func(ctx context.Context, app *entrypoint.App) error) error {
	cfg := config.NewConfig()
	cfg.Capture.Enabled = false
	if cfg.Assembly.Fetcher == config.FetcherBrowser {
		cfg.Assembly.Fetcher = config.FetcherHTTP
	}

	logger, err := entrypoint.NewLogger(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	app, err := entrypoint.Build(cfg, logger)
	if err != nil {
		logger.Error("failed to initialize", zap.Error(err))
		return err
	}
	defer app.Close()

	return fn(ctx, app)
}
