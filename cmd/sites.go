package cmd

import (
	"github.com/spf13/cobra"

	"github.com/mrlokans/pagescraper/internal/cli"
	"github.com/mrlokans/pagescraper/internal/sites"
)

func newSitesCmd() *cobra.Command {
	list := cli.NewSitesCommand()

	cmd := &cobra.Command{
		Use:   "sites [url]",
		Short: "List supported reader platforms, or check a URL",
		Example: `  pagescraper sites
  pagescraper sites "https://ebookcentral.proquest.com/lib/uql/reader.action?docID=4785123"`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				list.URL = args[0]
			}
			list.Out = cmd.OutOrStdout()
			return list.Run(sites.Default())
		},
	}
	cmd.Flags().StringVarP(&list.Format, "format", "f", cli.FormatText, "Output format: text, json or yaml")
	return cmd
}
