// Package library owns the persisted book state: it merges captured pages
// into books, reorders and deletes pages, and announces every change on the
// event bus.
//
// All writers (the capture pipeline, the HTTP API, MCP tools) go through a
// Reconciler so the no-duplicates and index-bounds rules live in one place.
// Read-modify-write of a single book is serialised in-process with a keyed
// mutex. Writers in other processes sharing the same store are still
// last-write-wins; the dedup applied on every write keeps repeated captures
// of the same page idempotent in that case.
package library

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/mrlokans/pagescraper/internal/entities"
	"github.com/mrlokans/pagescraper/internal/events"
	"github.com/mrlokans/pagescraper/internal/sites"
	"github.com/mrlokans/pagescraper/internal/tabs"
)

// Reconciler is the single entry point for book mutations.
type Reconciler struct {
	store     Store
	registry  *sites.Registry
	tabs      tabs.Provider
	publisher events.Publisher
	logger    *zap.Logger
	locks     *keyedMutex
}

func NewReconciler(store Store, registry *sites.Registry, tabProvider tabs.Provider, publisher events.Publisher, logger *zap.Logger) *Reconciler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Reconciler{
		store:     store,
		registry:  registry,
		tabs:      tabProvider,
		publisher: publisher,
		logger:    logger,
		locks:     newKeyedMutex(),
	}
}

// ActiveBookKey derives the book key from the active tab.
func (r *Reconciler) ActiveBookKey(ctx context.Context) (string, error) {
	if r.tabs == nil {
		return "", tabs.ErrNoActiveTab
	}
	tab, err := r.tabs.ActiveTab(ctx)
	if err != nil {
		return "", err
	}
	return r.registry.BookKey(tab.URL)
}

// RecordPage adds ref to the book open in the active tab. It reports whether
// the store changed; a page already present is a no-op.
func (r *Reconciler) RecordPage(ctx context.Context, ref string) (bool, error) {
	key, err := r.ActiveBookKey(ctx)
	if err != nil {
		return false, fmt.Errorf("resolve book key: %w", err)
	}
	return r.record(ctx, key, ref)
}

// RecordCapture adds a classified capture whose book key is already known.
func (r *Reconciler) RecordCapture(ctx context.Context, c sites.Capture) (bool, error) {
	if c.BookKey == "" {
		return false, ErrInvalidBook
	}
	return r.record(ctx, c.BookKey, c.PageReference)
}

func (r *Reconciler) record(ctx context.Context, key, ref string) (bool, error) {
	unlock := r.locks.Lock(key)
	defer unlock()

	book, err := r.store.GetBook(ctx, key)
	switch {
	case errors.Is(err, ErrBookNotFound):
		book = &entities.Book{URL: key, Pages: []string{}}
	case err != nil:
		return false, fmt.Errorf("load book %s: %w", key, err)
	}

	if book.HasPage(ref) {
		return false, nil
	}

	book.Pages = Dedupe(append(book.Pages, ref))
	if err := r.put(ctx, book); err != nil {
		return false, err
	}
	r.logger.Info("page captured",
		zap.String("book", key),
		zap.Int("pages", len(book.Pages)))
	return true, nil
}

// ReorderPage moves count pages from oldIndex to newIndex using splice-move
// semantics and returns the updated book.
func (r *Reconciler) ReorderPage(ctx context.Context, key string, oldIndex, newIndex, count int) (*entities.Book, error) {
	unlock := r.locks.Lock(key)
	defer unlock()

	book, err := r.store.GetBook(ctx, key)
	if err != nil {
		return nil, err
	}
	book.Pages = Move(book.Pages, oldIndex, newIndex, count)
	if err := r.put(ctx, book); err != nil {
		return nil, err
	}
	return book, nil
}

// DeleteBook removes the book and broadcasts the deletion. A missing book is
// not an error.
func (r *Reconciler) DeleteBook(ctx context.Context, key string) error {
	unlock := r.locks.Lock(key)
	defer unlock()

	if err := r.store.DeleteBook(ctx, key); err != nil {
		return fmt.Errorf("delete book %s: %w", key, err)
	}
	r.logger.Info("book deleted", zap.String("book", key))
	r.publish(events.BookDeleted(key))
	return nil
}

// SaveBook overwrites the stored book with the caller's page list.
func (r *Reconciler) SaveBook(ctx context.Context, book *entities.Book) (*entities.Book, error) {
	if book == nil || book.URL == "" || book.URL == "undefined" {
		return nil, ErrInvalidBook
	}
	unlock := r.locks.Lock(book.URL)
	defer unlock()

	saved := book.Clone()
	saved.Pages = Dedupe(saved.Pages)
	if existing, err := r.store.GetBook(ctx, saved.URL); err == nil {
		saved.CreatedAt = existing.CreatedAt
	}
	if err := r.put(ctx, saved); err != nil {
		return nil, err
	}
	return saved, nil
}

// DeletePage removes the page at index.
func (r *Reconciler) DeletePage(ctx context.Context, key string, index int) (*entities.Book, error) {
	unlock := r.locks.Lock(key)
	defer unlock()

	book, err := r.store.GetBook(ctx, key)
	if err != nil {
		return nil, err
	}
	pages, err := RemoveAt(book.Pages, index)
	if err != nil {
		return nil, err
	}
	book.Pages = pages
	if err := r.put(ctx, book); err != nil {
		return nil, err
	}
	return book, nil
}

// EnsureBook creates an empty book for key unless one exists. Only creation
// is broadcast.
func (r *Reconciler) EnsureBook(ctx context.Context, key string) (*entities.Book, error) {
	if key == "" || key == "undefined" {
		return nil, ErrInvalidBook
	}
	unlock := r.locks.Lock(key)
	defer unlock()

	book, err := r.store.GetBook(ctx, key)
	if err == nil {
		return book, nil
	}
	if !errors.Is(err, ErrBookNotFound) {
		return nil, err
	}

	book = &entities.Book{URL: key, Pages: []string{}}
	if err := r.put(ctx, book); err != nil {
		return nil, err
	}
	r.logger.Info("book created", zap.String("book", key))
	return book, nil
}

func (r *Reconciler) GetBook(ctx context.Context, key string) (*entities.Book, error) {
	return r.store.GetBook(ctx, key)
}

func (r *Reconciler) ListBooks(ctx context.Context) ([]entities.Book, error) {
	return r.store.ListBooks(ctx)
}

// CurrentBook returns the book for the active tab.
func (r *Reconciler) CurrentBook(ctx context.Context) (*entities.Book, error) {
	key, err := r.ActiveBookKey(ctx)
	if err != nil {
		return nil, err
	}
	return r.store.GetBook(ctx, key)
}

func (r *Reconciler) put(ctx context.Context, book *entities.Book) error {
	if book.Pages == nil {
		book.Pages = []string{}
	}
	if err := r.store.PutBook(ctx, book); err != nil {
		r.logger.Error("failed to save book", zap.String("book", book.URL), zap.Error(err))
		return fmt.Errorf("save book %s: %w", book.URL, err)
	}
	r.publish(events.BookUpdated(book))
	return nil
}

func (r *Reconciler) publish(evt events.BookUpdateEvent) {
	if r.publisher != nil {
		r.publisher.Publish(evt)
	}
}
