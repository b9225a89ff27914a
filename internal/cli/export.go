package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/mrlokans/pagescraper/internal/assembler"
	"github.com/mrlokans/pagescraper/internal/services"
)

// ExportCommand assembles a captured book into a PDF on disk
type ExportCommand struct {
	URL       string
	Title     string
	OutputDir string // defaults to the service's export directory
	Verbose   bool
	Out       io.Writer
}

func NewExportCommand() *ExportCommand {
	return &ExportCommand{Out: os.Stdout}
}

func (cmd *ExportCommand) Run(ctx context.Context, exports *services.ExportService) error {
	if cmd.URL == "" {
		return fmt.Errorf("book url is required")
	}
	dir := cmd.OutputDir
	if dir == "" {
		dir = exports.Dir()
	}
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return fmt.Errorf("failed to get absolute path for output: %w", err)
	}

	fmt.Fprintf(cmd.Out, "Exporting %s to %s\n", cmd.URL, absDir)

	var pageErrors []string
	r := assembler.ReporterFuncs{
		Log: func(msg string) {
			if cmd.Verbose {
				fmt.Fprintf(cmd.Out, "  %s\n", msg)
			}
		},
		Error: func(msg string) {
			pageErrors = append(pageErrors, msg)
		},
	}

	doc, err := exports.Export(ctx, cmd.URL, cmd.Title, assembler.DirOutput{Dir: absDir}, r)
	if err != nil {
		return fmt.Errorf("export failed: %w", err)
	}

	fmt.Fprintln(cmd.Out, "\n=== Export Summary ===")
	fmt.Fprintf(cmd.Out, "File: %s\n", doc.Location)
	fmt.Fprintf(cmd.Out, "Pages placed: %d/%d\n", doc.Placed, doc.Attempted)
	if len(pageErrors) > 0 {
		fmt.Fprintf(cmd.Out, "\n%d pages failed:\n", len(pageErrors))
		for _, msg := range pageErrors {
			fmt.Fprintf(cmd.Out, "  [ERROR] %s\n", msg)
		}
	}
	return nil
}
