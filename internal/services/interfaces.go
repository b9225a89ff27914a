package services

import (
	"context"

	"github.com/mrlokans/pagescraper/internal/entities"
)

// BookReader provides read-only access to captured books.
// Use this interface when you only need to look books up.
type BookReader interface {
	GetBook(ctx context.Context, key string) (*entities.Book, error)
	ListBooks(ctx context.Context) ([]entities.Book, error)
}
