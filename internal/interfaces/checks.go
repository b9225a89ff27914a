package interfaces

// This file contains compile-time interface implementation checks.
// These ensure that concrete types satisfy their interfaces at compile time,
// catching missing methods before runtime.
//
// To verify all checks pass: go build ./internal/interfaces/...

import (
	"github.com/mrlokans/pagescraper/internal/assembler"
	"github.com/mrlokans/pagescraper/internal/audit"
	"github.com/mrlokans/pagescraper/internal/capture"
	"github.com/mrlokans/pagescraper/internal/database"
	"github.com/mrlokans/pagescraper/internal/database/books"
	"github.com/mrlokans/pagescraper/internal/events"
	"github.com/mrlokans/pagescraper/internal/http"
	"github.com/mrlokans/pagescraper/internal/library"
	"github.com/mrlokans/pagescraper/internal/mcp"
	"github.com/mrlokans/pagescraper/internal/services"
	"github.com/mrlokans/pagescraper/internal/storage/bolt"
	"github.com/mrlokans/pagescraper/internal/tabs"
	"github.com/mrlokans/pagescraper/internal/tasks"
)

// =============================================================================
// Book Storage
// =============================================================================

// Store implementations
var _ library.Store = (*library.MemoryStore)(nil)
var _ library.Store = (*books.Repository)(nil)
var _ library.Store = (*bolt.Store)(nil)

// Book mutations all go through the reconciler
var _ http.BookService = (*library.Reconciler)(nil)
var _ mcp.Books = (*library.Reconciler)(nil)
var _ services.BookReader = (*library.Reconciler)(nil)
var _ capture.Recorder = (*library.Reconciler)(nil)

// =============================================================================
// Capture
// =============================================================================

// Provider implementations
var _ tabs.Provider = (*tabs.Static)(nil)
var _ tabs.Provider = (*capture.Browser)(nil)

var _ http.TabSetter = (*tabs.Static)(nil)
var _ capture.Auditor = (*audit.Auditor)(nil)
var _ http.RequestHandler = (*capture.Listener)(nil)

// =============================================================================
// Notifications
// =============================================================================

var _ events.Publisher = (*events.Bus)(nil)
var _ http.EventSource = (*events.Bus)(nil)
var _ http.BadgeReader = (*events.BadgeUpdater)(nil)

// =============================================================================
// Assembly
// =============================================================================

// Fetcher implementations
var _ assembler.Fetcher = (*assembler.HTTPFetcher)(nil)
var _ assembler.Fetcher = (*assembler.CachingFetcher)(nil)
var _ assembler.Fetcher = assembler.FetcherFunc(nil)
var _ assembler.Fetcher = (*capture.Browser)(nil)

var _ assembler.Decoder = assembler.ImageDecoder{}
var _ assembler.DocumentWriter = (*assembler.PDFWriter)(nil)

// Output implementations
var _ assembler.Output = assembler.DirOutput{}
var _ assembler.Output = assembler.StreamOutput{}

// Reporter implementations
var _ assembler.Reporter = (*assembler.Job)(nil)
var _ assembler.Reporter = assembler.NopReporter{}
var _ assembler.Reporter = assembler.ReporterFuncs{}
var _ assembler.Invalidator = (*assembler.CachingFetcher)(nil)

// =============================================================================
// Background Work
// =============================================================================

var _ http.ExportEnqueuer = (*tasks.Client)(nil)
var _ http.TaskStatusReader = (*tasks.Client)(nil)

// Health check implementations
var _ http.Pinger = (*database.Database)(nil)
var _ http.Pinger = (*bolt.Store)(nil)
var _ http.Pinger = (*tasks.Client)(nil)
