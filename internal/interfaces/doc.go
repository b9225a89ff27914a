// Package interfaces documents the core abstractions used throughout the application.
//
// This package consolidates interface documentation to help code agents understand
// extension points and how to implement new functionality.
//
// # Interface Categories
//
// ## Book Storage
//
//   - Store: Persistence of books keyed by book URL (internal/library/store.go)
//   - BookService: Reconciler surface driven by the HTTP API (internal/http/books.go)
//   - Books: Reconciler surface driven by MCP tools (internal/mcp/server.go)
//   - BookReader: Read-only access used by exports (internal/services/interfaces.go)
//
// ## Capture
//
//   - Provider: The active tab (internal/tabs/tabs.go)
//   - Recorder: Accepts classified captures (internal/capture/listener.go)
//   - RequestHandler: Completed and pre-send request hooks (internal/http/capture.go)
//   - TabSetter: Tabs reported by an external client (internal/http/capture.go)
//
// ## Assembly
//
//   - Fetcher: Loads page image bytes (internal/assembler/fetcher.go)
//   - Decoder: Turns bytes into a placeable page (internal/assembler/page.go)
//   - DocumentWriter: Accumulates pages into a PDF (internal/assembler/writer.go)
//   - Output: Where the finished document goes (internal/assembler/output.go)
//   - Reporter: Progress, log and error streams (internal/assembler/reporter.go)
//
// ## Notifications and Background Work
//
//   - Publisher / EventSource: Book update fan-out (internal/events, internal/http/events.go)
//   - ExportEnqueuer / TaskStatusReader: Task queue (internal/http/exports.go, internal/http/tasks.go)
//   - Pinger: Health checks (internal/http/health.go)
//
// # Adding a New Reader Platform
//
// Platforms are data, not code paths:
//
//  1. Add a SiteConfig in internal/sites/sites.go
//
//     SiteConfig{
//     Name:           "Example Reader",
//     URLScope:       MustCompilePattern("*://reader.example.com/"),
//     Host:           "reader.example.com",
//     ReaderDomain:   ReaderDomain{URLContains: "reader.example.com/book/"},
//     ResourceFilter: MustCompilePattern("*://reader.example.com/*"),
//     BookKey:        hostAndPath,
//     IsPageImageRequest: func(r Request, u *url.URL) bool {
//     return isType(r, ResourceTypeImage) && strings.HasPrefix(u.Path, "/page/")
//     },
//     PageReference:   func(u *url.URL) (string, bool) { return u.String(), true },
//     IsPageReference: func(ref string) bool { return strings.Contains(ref, "/page/") },
//     }
//
//  2. Append it to the list returned by defaultSites()
//
//  3. Add classifier cases to internal/sites/classifier_test.go
//
// # Adding a New Store Backend
//
//  1. Implement library.Store
//
//     func (s *MyStore) GetBook(ctx context.Context, key string) (*entities.Book, error)
//     func (s *MyStore) PutBook(ctx context.Context, book *entities.Book) error
//     func (s *MyStore) DeleteBook(ctx context.Context, key string) error
//     func (s *MyStore) ListBooks(ctx context.Context) ([]entities.Book, error)
//
//     GetBook must return library.ErrBookNotFound for a missing key.
//
//  2. Add compile-time checks here, including http.Pinger if it has a health check
//
//  3. Select it in entrypoint.openStore
//
// # Compile-Time Interface Checks
//
// All implementations should include compile-time checks to ensure they satisfy
// their interfaces. This catches missing methods at compile time rather than runtime:
//
//	var _ SomeInterface = (*MyImplementation)(nil)
//
// This pattern is used throughout the codebase. See checks.go for examples.
package interfaces
