package cmd

import (
	"github.com/spf13/cobra"

	"github.com/mrlokans/pagescraper/internal/config"
	"github.com/mrlokans/pagescraper/internal/entrypoint"
)

func newServeCmd(version string) *cobra.Command {
	var port int32

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		Long: `Starts the HTTP API, the event stream, the export task queue and the
export cleanup schedule.

Without CAPTURE_ENABLED the active tab and the observed requests are reported
by an external client through /api/tabs/active and /api/requests.`,
		Example: `  # Start on the configured port
  pagescraper serve

  # Start on a custom port
  pagescraper serve --port 9000`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.NewConfig()
			if cmd.Flags().Changed("port") {
				cfg.HTTP.Port = port
			}
			return entrypoint.Run(cmd.Context(), cfg, version)
		},
	}

	cmd.Flags().Int32VarP(&port, "port", "p", 8188, "Port to listen on")

	return cmd
}

func newCaptureCmd(version string) *cobra.Command {
	var (
		startURL string
		headless bool
	)

	cmd := &cobra.Command{
		Use:   "capture [url]",
		Short: "Open a capture browser and serve the HTTP API",
		Long: `Launches Chrome, navigates to url, and records every page image the
reader loads into the book for the current tab. The HTTP API runs alongside;
closing the browser window stops the process.`,
		Example: `  pagescraper capture "https://www.jstor.org/stable/41857568?read-now=1&seq=1"`,
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.NewConfig()
			cfg.Capture.Enabled = true
			if len(args) == 1 {
				cfg.Capture.StartURL = args[0]
			} else if startURL != "" {
				cfg.Capture.StartURL = startURL
			}
			if cmd.Flags().Changed("headless") {
				cfg.Capture.Headless = headless
			}
			return entrypoint.Run(cmd.Context(), cfg, version)
		},
	}

	cmd.Flags().StringVar(&startURL, "url", "", "Page to open on start")
	cmd.Flags().BoolVar(&headless, "headless", false, "Run Chrome without a window")

	return cmd
}
