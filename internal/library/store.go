package library

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/mrlokans/pagescraper/internal/entities"
)

var (
	ErrBookNotFound = errors.New("book not found")
	ErrInvalidBook  = errors.New("book has no usable url")
	ErrPageIndex    = errors.New("page index out of range")
)

// Store is the flat bookKey -> Book table. Implementations overwrite on
// PutBook and treat DeleteBook of a missing key as success.
type Store interface {
	GetBook(ctx context.Context, key string) (*entities.Book, error)
	PutBook(ctx context.Context, book *entities.Book) error
	DeleteBook(ctx context.Context, key string) error
	ListBooks(ctx context.Context) ([]entities.Book, error)
}

// MemoryStore keeps books in a map. Used by tests and by one-off CLI runs
// that do not need persistence.
type MemoryStore struct {
	mu    sync.RWMutex
	books map[string]*entities.Book
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{books: make(map[string]*entities.Book)}
}

func (s *MemoryStore) GetBook(_ context.Context, key string) (*entities.Book, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.books[key]
	if !ok {
		return nil, ErrBookNotFound
	}
	return b.Clone(), nil
}

func (s *MemoryStore) PutBook(_ context.Context, book *entities.Book) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.books[book.URL] = book.Clone()
	return nil
}

func (s *MemoryStore) DeleteBook(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.books, key)
	return nil
}

func (s *MemoryStore) ListBooks(_ context.Context) ([]entities.Book, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]entities.Book, 0, len(s.books))
	for _, b := range s.books {
		out = append(out, *b.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].URL < out[j].URL })
	return out, nil
}
