package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/mrlokans/pagescraper/internal/entities"
	"github.com/mrlokans/pagescraper/internal/library"
	"github.com/mrlokans/pagescraper/internal/services"
	"github.com/mrlokans/pagescraper/internal/sites"
)

const ServerName = "pagescraper"

// Books is the slice of the reconciler the tools drive.
type Books interface {
	GetBook(ctx context.Context, key string) (*entities.Book, error)
	ListBooks(ctx context.Context) ([]entities.Book, error)
	DeleteBook(ctx context.Context, key string) error
	ReorderPage(ctx context.Context, key string, oldIndex, newIndex, count int) (*entities.Book, error)
	DeletePage(ctx context.Context, key string, index int) (*entities.Book, error)
}

type BookRequest struct {
	URL string `json:"url"` // book key
}

type ReorderRequest struct {
	URL      string `json:"url"`
	OldIndex int    `json:"old_index"`
	NewIndex int    `json:"new_index"`
	NumPages int    `json:"num_pages"`
}

type DeletePageRequest struct {
	URL   string `json:"url"`
	Index int    `json:"index"`
}

type ExportRequest struct {
	URL   string `json:"url"`
	Title string `json:"title"`
}

type ReaderStatusRequest struct {
	URL string `json:"url"` // tab URL
}

type ReaderStatusResponse struct {
	URL     string `json:"url"`
	Reader  bool   `json:"reader"`
	BookKey string `json:"book_key,omitempty"`
}

type BookSummary struct {
	URL   string `json:"url"`
	Pages int    `json:"pages"`
}

// NewServer creates an MCP server exposing the captured books to an
// assistant. The export tool is only registered when exports is non-nil.
func NewServer(books Books, registry *sites.Registry, exports *services.ExportService, version string) *server.MCPServer {
	s := server.NewMCPServer(
		ServerName,
		version,
		server.WithToolCapabilities(false),
	)

	s.AddTool(mcp.NewTool("list_books",
		mcp.WithDescription("List captured books with their page counts"),
	), mcp.NewTypedToolHandler(listBooksHandler(books)))

	s.AddTool(mcp.NewTool("get_book",
		mcp.WithDescription("Get a captured book with its ordered page references"),
		mcp.WithString("url", mcp.Required(), mcp.Description("The book key, e.g. www.jstor.org/stable/41857568")),
	), mcp.NewTypedToolHandler(getBookHandler(books)))

	s.AddTool(mcp.NewTool("reorder_pages",
		mcp.WithDescription("Move a run of pages to a new position"),
		mcp.WithString("url", mcp.Required(), mcp.Description("The book key")),
		mcp.WithNumber("old_index", mcp.Required(), mcp.Description("Index of the first page to move")),
		mcp.WithNumber("new_index", mcp.Required(), mcp.Description("Destination index")),
		mcp.WithNumber("num_pages", mcp.Description("Number of pages to move, defaults to 1")),
	), mcp.NewTypedToolHandler(reorderHandler(books)))

	s.AddTool(mcp.NewTool("delete_page",
		mcp.WithDescription("Remove one page from a book"),
		mcp.WithString("url", mcp.Required(), mcp.Description("The book key")),
		mcp.WithNumber("index", mcp.Required(), mcp.Description("Index of the page to remove")),
	), mcp.NewTypedToolHandler(deletePageHandler(books)))

	s.AddTool(mcp.NewTool("clear_book",
		mcp.WithDescription("Delete a book and all its captured pages"),
		mcp.WithString("url", mcp.Required(), mcp.Description("The book key")),
	), mcp.NewTypedToolHandler(clearBookHandler(books)))

	s.AddTool(mcp.NewTool("reader_status",
		mcp.WithDescription("Check whether a URL is a supported e-book reader page"),
		mcp.WithString("url", mcp.Required(), mcp.Description("The reader page URL")),
	), mcp.NewTypedToolHandler(readerStatusHandler(registry)))

	if exports != nil {
		s.AddTool(mcp.NewTool("export_book",
			mcp.WithDescription("Assemble a book into a PDF in the export directory"),
			mcp.WithString("url", mcp.Required(), mcp.Description("The book key")),
			mcp.WithString("title", mcp.Description("Document title, defaults to the book key")),
		), mcp.NewTypedToolHandler(exportHandler(exports)))
	}

	return s
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal response: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

func errorResult(action string, err error) (*mcp.CallToolResult, error) {
	if errors.Is(err, library.ErrBookNotFound) {
		return mcp.NewToolResultError("book not found"), nil
	}
	return mcp.NewToolResultError(fmt.Sprintf("failed to %s: %v", action, err)), nil
}

func listBooksHandler(books Books) func(context.Context, mcp.CallToolRequest, struct{}) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, _ mcp.CallToolRequest, _ struct{}) (*mcp.CallToolResult, error) {
		list, err := books.ListBooks(ctx)
		if err != nil {
			return errorResult("list books", err)
		}
		summaries := make([]BookSummary, 0, len(list))
		for _, b := range list {
			summaries = append(summaries, BookSummary{URL: b.URL, Pages: len(b.Pages)})
		}
		return jsonResult(summaries)
	}
}

func getBookHandler(books Books) func(context.Context, mcp.CallToolRequest, BookRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, _ mcp.CallToolRequest, args BookRequest) (*mcp.CallToolResult, error) {
		if args.URL == "" {
			return mcp.NewToolResultError("url is required"), nil
		}
		book, err := books.GetBook(ctx, args.URL)
		if err != nil {
			return errorResult("get book", err)
		}
		return jsonResult(book)
	}
}

func reorderHandler(books Books) func(context.Context, mcp.CallToolRequest, ReorderRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, _ mcp.CallToolRequest, args ReorderRequest) (*mcp.CallToolResult, error) {
		if args.URL == "" {
			return mcp.NewToolResultError("url is required"), nil
		}
		if args.NumPages <= 0 {
			args.NumPages = 1
		}
		book, err := books.ReorderPage(ctx, args.URL, args.OldIndex, args.NewIndex, args.NumPages)
		if err != nil {
			return errorResult("reorder pages", err)
		}
		return jsonResult(book)
	}
}

func deletePageHandler(books Books) func(context.Context, mcp.CallToolRequest, DeletePageRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, _ mcp.CallToolRequest, args DeletePageRequest) (*mcp.CallToolResult, error) {
		if args.URL == "" {
			return mcp.NewToolResultError("url is required"), nil
		}
		book, err := books.DeletePage(ctx, args.URL, args.Index)
		if err != nil {
			return errorResult("delete page", err)
		}
		return jsonResult(book)
	}
}

func clearBookHandler(books Books) func(context.Context, mcp.CallToolRequest, BookRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, _ mcp.CallToolRequest, args BookRequest) (*mcp.CallToolResult, error) {
		if args.URL == "" {
			return mcp.NewToolResultError("url is required"), nil
		}
		if err := books.DeleteBook(ctx, args.URL); err != nil {
			return errorResult("clear book", err)
		}
		return jsonResult(map[string]bool{"success": true})
	}
}

func readerStatusHandler(registry *sites.Registry) func(context.Context, mcp.CallToolRequest, ReaderStatusRequest) (*mcp.CallToolResult, error) {
	return func(_ context.Context, _ mcp.CallToolRequest, args ReaderStatusRequest) (*mcp.CallToolResult, error) {
		if args.URL == "" {
			return mcp.NewToolResultError("url is required"), nil
		}
		resp := ReaderStatusResponse{URL: args.URL, Reader: registry.IsReaderPage(args.URL)}
		if key, err := registry.BookKey(args.URL); err == nil {
			resp.BookKey = key
		}
		return jsonResult(resp)
	}
}

// exportHandler runs the export inline and returns the job snapshot. Page
// failures are reported in the snapshot, not as a tool error.
func exportHandler(exports *services.ExportService) func(context.Context, mcp.CallToolRequest, ExportRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, _ mcp.CallToolRequest, args ExportRequest) (*mcp.CallToolResult, error) {
		if args.URL == "" {
			return mcp.NewToolResultError("url is required"), nil
		}
		job := exports.NewJob(args.URL, args.Title)
		if _, err := exports.RunJob(ctx, job); err != nil {
			return errorResult("export book", err)
		}
		return jsonResult(job.Snapshot())
	}
}
