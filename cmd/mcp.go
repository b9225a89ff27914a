package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/mrlokans/pagescraper/internal/entrypoint"
	"github.com/mrlokans/pagescraper/internal/mcp"
)

func newMCPCmd(version string) *cobra.Command {
	var httpAddr string

	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Serve captured books to an MCP client",
		Long: `Runs a Model Context Protocol server over stdio, or over streamable HTTP
when --http is given. Tools: list_books, get_book, reorder_pages, delete_page,
clear_book, reader_status and export_book.

Logs go to stderr so they do not interfere with the stdio transport.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(ctx context.Context, app *entrypoint.App) error {
				s := mcp.NewServer(app.Reconciler, app.Registry, app.Exports, version)
				if httpAddr != "" {
					app.Logger.Info("starting MCP server")
					return mcp.NewHTTPServer(s, mcp.DefaultEndpoint).Start(httpAddr)
				}
				return mcp.ServeStdio(s)
			})
		},
	}
	cmd.Flags().StringVar(&httpAddr, "http", "", "HTTP listen address (e.g. ':8189'); stdio when empty")
	return cmd
}
