package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/mrlokans/pagescraper/internal/sites"
)

// SitesCommand lists the supported reader platforms, or checks a single URL
// when URL is set.
type SitesCommand struct {
	URL    string
	Format string
	Out    io.Writer
}

func NewSitesCommand() *SitesCommand {
	return &SitesCommand{Format: FormatText, Out: os.Stdout}
}

type readerCheck struct {
	URL     string `json:"url" yaml:"url"`
	Reader  bool   `json:"reader" yaml:"reader"`
	BookKey string `json:"book_key,omitempty" yaml:"book_key,omitempty"`
}

func (cmd *SitesCommand) Run(registry *sites.Registry) error {
	if cmd.URL != "" {
		return cmd.check(registry)
	}

	info := registry.Info()
	if cmd.Format != FormatText {
		return encode(cmd.Out, cmd.Format, info)
	}
	for _, s := range info {
		fmt.Fprintf(cmd.Out, "%s\n", s.Name)
		fmt.Fprintf(cmd.Out, "  host:    %s\n", s.Host)
		fmt.Fprintf(cmd.Out, "  filter:  %s\n", s.ResourceFilter)
		if s.ReaderMatches != "" {
			fmt.Fprintf(cmd.Out, "  reader:  matches %s\n", s.ReaderMatches)
		} else {
			fmt.Fprintf(cmd.Out, "  reader:  contains %s\n", s.ReaderContains)
		}
	}
	return nil
}

func (cmd *SitesCommand) check(registry *sites.Registry) error {
	res := readerCheck{URL: cmd.URL, Reader: registry.IsReaderPage(cmd.URL)}
	if key, err := registry.BookKey(cmd.URL); err == nil {
		res.BookKey = key
	}
	if cmd.Format != FormatText {
		return encode(cmd.Out, cmd.Format, res)
	}

	if !res.Reader {
		fmt.Fprintf(cmd.Out, "[NO] %s is not a supported reader page\n", cmd.URL)
		return nil
	}
	fmt.Fprintf(cmd.Out, "[OK] %s\n", cmd.URL)
	fmt.Fprintf(cmd.Out, "Book key: %s\n", res.BookKey)
	return nil
}
