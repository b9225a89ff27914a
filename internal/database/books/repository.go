// Package books is the sqlite-backed book store.
//
// Books are keyed by their book key (the url column); the page list is kept
// as a JSON text column so a book is always read and written whole.
//
//	repo := books.NewRepository(db.DB)
//	book, err := repo.GetBook(ctx, "www.jstor.org/stable/41857568")
package books

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mrlokans/pagescraper/internal/entities"
	"github.com/mrlokans/pagescraper/internal/library"
)

// Repository handles book persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new books repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// GetBook returns library.ErrBookNotFound when no row exists.
func (r *Repository) GetBook(ctx context.Context, key string) (*entities.Book, error) {
	var book entities.Book
	err := r.db.WithContext(ctx).Where("url = ?", key).First(&book).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, library.ErrBookNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get book: %w", err)
	}
	if book.Pages == nil {
		book.Pages = []string{}
	}
	return &book, nil
}

// PutBook upserts the whole record.
func (r *Repository) PutBook(ctx context.Context, book *entities.Book) error {
	book.UpdatedAt = time.Now()
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "url"}},
		DoUpdates: clause.AssignmentColumns([]string{"pages", "updated_at"}),
	}).Create(book).Error
	if err != nil {
		return fmt.Errorf("failed to save book: %w", err)
	}
	return nil
}

// DeleteBook is a no-op for a missing key.
func (r *Repository) DeleteBook(ctx context.Context, key string) error {
	err := r.db.WithContext(ctx).Where("url = ?", key).Delete(&entities.Book{}).Error
	if err != nil {
		return fmt.Errorf("failed to delete book: %w", err)
	}
	return nil
}

// ListBooks returns all books, most recently updated first.
func (r *Repository) ListBooks(ctx context.Context) ([]entities.Book, error) {
	var books []entities.Book
	err := r.db.WithContext(ctx).Order("updated_at DESC, url ASC").Find(&books).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list books: %w", err)
	}
	return books, nil
}
