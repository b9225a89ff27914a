package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/mrlokans/pagescraper/internal/entities"
)

// BookStore is what the book commands need from the reconciler.
type BookStore interface {
	GetBook(ctx context.Context, key string) (*entities.Book, error)
	ListBooks(ctx context.Context) ([]entities.Book, error)
	DeleteBook(ctx context.Context, key string) error
	ReorderPage(ctx context.Context, key string, oldIndex, newIndex, count int) (*entities.Book, error)
	DeletePage(ctx context.Context, key string, index int) (*entities.Book, error)
}

// ListBooksCommand prints every captured book with its page count
type ListBooksCommand struct {
	Format string
	Out    io.Writer
}

func NewListBooksCommand() *ListBooksCommand {
	return &ListBooksCommand{Format: FormatText, Out: os.Stdout}
}

func (cmd *ListBooksCommand) Run(ctx context.Context, books BookStore) error {
	list, err := books.ListBooks(ctx)
	if err != nil {
		return fmt.Errorf("failed to list books: %w", err)
	}
	if cmd.Format != FormatText {
		return encode(cmd.Out, cmd.Format, list)
	}

	if len(list) == 0 {
		fmt.Fprintln(cmd.Out, "No books captured yet")
		return nil
	}
	for i, b := range list {
		fmt.Fprintf(cmd.Out, "%d. %s (%d pages)\n", i+1, b.URL, len(b.Pages))
	}
	return nil
}

// ShowBookCommand prints one book's page references in order
type ShowBookCommand struct {
	URL    string
	Format string
	Out    io.Writer
}

func NewShowBookCommand() *ShowBookCommand {
	return &ShowBookCommand{Format: FormatText, Out: os.Stdout}
}

func (cmd *ShowBookCommand) Run(ctx context.Context, books BookStore) error {
	if cmd.URL == "" {
		return fmt.Errorf("book url is required")
	}
	book, err := books.GetBook(ctx, cmd.URL)
	if err != nil {
		return fmt.Errorf("failed to load book %s: %w", cmd.URL, err)
	}
	if cmd.Format != FormatText {
		return encode(cmd.Out, cmd.Format, book)
	}

	fmt.Fprintf(cmd.Out, "Book: %s\n", book.URL)
	fmt.Fprintf(cmd.Out, "Pages: %d\n", len(book.Pages))
	for i, ref := range book.Pages {
		fmt.Fprintf(cmd.Out, "  [%d] %s\n", i, ref)
	}
	return nil
}

// ClearBookCommand deletes a book and all its pages
type ClearBookCommand struct {
	URL    string
	DryRun bool
	Out    io.Writer
}

func NewClearBookCommand() *ClearBookCommand {
	return &ClearBookCommand{Out: os.Stdout}
}

func (cmd *ClearBookCommand) Run(ctx context.Context, books BookStore) error {
	if cmd.URL == "" {
		return fmt.Errorf("book url is required")
	}
	book, err := books.GetBook(ctx, cmd.URL)
	if err != nil {
		return fmt.Errorf("failed to load book %s: %w", cmd.URL, err)
	}
	if cmd.DryRun {
		fmt.Fprintf(cmd.Out, "Would delete %s (%d pages)\n", book.URL, len(book.Pages))
		return nil
	}
	if err := books.DeleteBook(ctx, cmd.URL); err != nil {
		return fmt.Errorf("failed to delete book %s: %w", cmd.URL, err)
	}
	fmt.Fprintf(cmd.Out, "Deleted %s (%d pages)\n", book.URL, len(book.Pages))
	return nil
}

// MovePagesCommand moves a run of pages, like dragging them in the page list
type MovePagesCommand struct {
	URL      string
	From     int
	To       int
	NumPages int
	Out      io.Writer
}

func NewMovePagesCommand() *MovePagesCommand {
	return &MovePagesCommand{NumPages: 1, Out: os.Stdout}
}

func (cmd *MovePagesCommand) Run(ctx context.Context, books BookStore) error {
	if cmd.URL == "" {
		return fmt.Errorf("book url is required")
	}
	if cmd.NumPages <= 0 {
		cmd.NumPages = 1
	}
	book, err := books.ReorderPage(ctx, cmd.URL, cmd.From, cmd.To, cmd.NumPages)
	if err != nil {
		return fmt.Errorf("failed to move pages: %w", err)
	}
	fmt.Fprintf(cmd.Out, "Moved %d page(s) from %d to %d in %s\n", cmd.NumPages, cmd.From, cmd.To, book.URL)
	return nil
}

// DeletePageCommand removes a single page
type DeletePageCommand struct {
	URL   string
	Index int
	Out   io.Writer
}

func NewDeletePageCommand() *DeletePageCommand {
	return &DeletePageCommand{Out: os.Stdout}
}

func (cmd *DeletePageCommand) Run(ctx context.Context, books BookStore) error {
	if cmd.URL == "" {
		return fmt.Errorf("book url is required")
	}
	book, err := books.DeletePage(ctx, cmd.URL, cmd.Index)
	if err != nil {
		return fmt.Errorf("failed to delete page: %w", err)
	}
	fmt.Fprintf(cmd.Out, "Deleted page %d, %d pages left in %s\n", cmd.Index, len(book.Pages), book.URL)
	return nil
}
