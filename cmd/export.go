package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/mrlokans/pagescraper/internal/cli"
	"github.com/mrlokans/pagescraper/internal/entrypoint"
)

func newExportCmd() *cobra.Command {
	export := cli.NewExportCommand()

	cmd := &cobra.Command{
		Use:   "export <book-url>",
		Short: "Assemble a captured book into a PDF",
		Long: `Fetches every captured page of the book and writes a PDF named after the
title and the number of pages attempted. Pages that fail to load are skipped
and listed in the summary.

Page images are fetched over plain HTTP, so platforms that need the reader's
session cookies should be exported from a running capture session instead.`,
		Example: `  pagescraper export www.jstor.org/stable/41857568 --title "Sociology" -o ~/Books`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			export.URL = args[0]
			export.Out = cmd.OutOrStdout()
			return withApp(cmd.Context(), func(ctx context.Context, app *entrypoint.App) error {
				return export.Run(ctx, app.Exports)
			})
		},
	}

	cmd.Flags().StringVarP(&export.Title, "title", "t", "", "Document title (defaults to the book key)")
	cmd.Flags().StringVarP(&export.OutputDir, "output", "o", "", "Output directory (defaults to EXPORT_DIR)")
	cmd.Flags().BoolVarP(&export.Verbose, "verbose", "v", false, "Print per-page progress")

	return cmd
}
