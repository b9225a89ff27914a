package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/mrlokans/pagescraper/internal/cli"
	"github.com/mrlokans/pagescraper/internal/entrypoint"
)

func newBooksCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "books",
		Short: "Inspect and edit captured books",
	}

	cmd.AddCommand(newBooksListCmd())
	cmd.AddCommand(newBooksShowCmd())
	cmd.AddCommand(newBooksClearCmd())
	cmd.AddCommand(newBooksMoveCmd())
	cmd.AddCommand(newBooksDeletePageCmd())

	return cmd
}

func newBooksListCmd() *cobra.Command {
	list := cli.NewListBooksCommand()

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List captured books",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			list.Out = cmd.OutOrStdout()
			return withApp(cmd.Context(), func(ctx context.Context, app *entrypoint.App) error {
				return list.Run(ctx, app.Reconciler)
			})
		},
	}
	cmd.Flags().StringVarP(&list.Format, "format", "f", cli.FormatText, "Output format: text, json or yaml")
	return cmd
}

func newBooksShowCmd() *cobra.Command {
	show := cli.NewShowBookCommand()

	cmd := &cobra.Command{
		Use:   "show <book-url>",
		Short: "Print a book's pages in order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			show.URL = args[0]
			show.Out = cmd.OutOrStdout()
			return withApp(cmd.Context(), func(ctx context.Context, app *entrypoint.App) error {
				return show.Run(ctx, app.Reconciler)
			})
		},
	}
	cmd.Flags().StringVarP(&show.Format, "format", "f", cli.FormatText, "Output format: text, json or yaml")
	return cmd
}

func newBooksClearCmd() *cobra.Command {
	clearBook := cli.NewClearBookCommand()

	cmd := &cobra.Command{
		Use:   "clear <book-url>",
		Short: "Delete a book and all its pages",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			clearBook.URL = args[0]
			clearBook.Out = cmd.OutOrStdout()
			return withApp(cmd.Context(), func(ctx context.Context, app *entrypoint.App) error {
				return clearBook.Run(ctx, app.Reconciler)
			})
		},
	}
	cmd.Flags().BoolVar(&clearBook.DryRun, "dry-run", false, "Show what would be deleted")
	return cmd
}

func newBooksMoveCmd() *cobra.Command {
	move := cli.NewMovePagesCommand()

	cmd := &cobra.Command{
		Use:   "move <book-url>",
		Short: "Move pages to a new position",
		Example: `  # Move the first two pages to the end of a ten page book
  pagescraper books move www.jstor.org/stable/41857568 --from 0 --to 10 -n 2`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			move.URL = args[0]
			move.Out = cmd.OutOrStdout()
			return withApp(cmd.Context(), func(ctx context.Context, app *entrypoint.App) error {
				return move.Run(ctx, app.Reconciler)
			})
		},
	}
	cmd.Flags().IntVar(&move.From, "from", 0, "Index of the first page to move")
	cmd.Flags().IntVar(&move.To, "to", 0, "Destination index")
	cmd.Flags().IntVarP(&move.NumPages, "num", "n", 1, "Number of pages to move")
	_ = cmd.MarkFlagRequired("from")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}

func newBooksDeletePageCmd() *cobra.Command {
	del := cli.NewDeletePageCommand()

	cmd := &cobra.Command{
		Use:   "delete-page <book-url> --index N",
		Short: "Remove one page from a book",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			del.URL = args[0]
			del.Out = cmd.OutOrStdout()
			return withApp(cmd.Context(), func(ctx context.Context, app *entrypoint.App) error {
				return del.Run(ctx, app.Reconciler)
			})
		},
	}
	cmd.Flags().IntVar(&del.Index, "index", 0, "Index of the page to remove")
	_ = cmd.MarkFlagRequired("index")
	return cmd
}
