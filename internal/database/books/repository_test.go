package books

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/pagescraper/internal/database"
	"github.com/mrlokans/pagescraper/internal/entities"
	"github.com/mrlokans/pagescraper/internal/library"
	"github.com/mrlokans/pagescraper/internal/sites"
)

func setupTestRepo(t *testing.T) *Repository {
	t.Helper()
	db, err := database.NewDatabase(filepath.Join(t.TempDir(), "books.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewRepository(db.DB)
}

func TestRepository(t *testing.T) {
	ctx := context.Background()
	repo := setupTestRepo(t)

	t.Run("GetBook on missing key", func(t *testing.T) {
		_, err := repo.GetBook(ctx, "missing")
		assert.ErrorIs(t, err, library.ErrBookNotFound)
	})

	t.Run("PutBook creates and GetBook reads back", func(t *testing.T) {
		require.NoError(t, repo.PutBook(ctx, &entities.Book{URL: "site.com/book/1", Pages: []string{"p1", "p2"}}))

		book, err := repo.GetBook(ctx, "site.com/book/1")
		require.NoError(t, err)
		assert.Equal(t, []string{"p1", "p2"}, book.Pages)
		assert.False(t, book.CreatedAt.IsZero())
	})

	t.Run("PutBook overwrites pages", func(t *testing.T) {
		require.NoError(t, repo.PutBook(ctx, &entities.Book{URL: "site.com/book/1", Pages: []string{"p2", "p1", "p3"}}))

		book, err := repo.GetBook(ctx, "site.com/book/1")
		require.NoError(t, err)
		assert.Equal(t, []string{"p2", "p1", "p3"}, book.Pages)
	})

	t.Run("empty page list round trips as empty", func(t *testing.T) {
		require.NoError(t, repo.PutBook(ctx, &entities.Book{URL: "site.com/book/2", Pages: []string{}}))

		book, err := repo.GetBook(ctx, "site.com/book/2")
		require.NoError(t, err)
		assert.NotNil(t, book.Pages)
		assert.Empty(t, book.Pages)
	})

	t.Run("ListBooks", func(t *testing.T) {
		books, err := repo.ListBooks(ctx)
		require.NoError(t, err)
		assert.Len(t, books, 2)
	})

	t.Run("DeleteBook is idempotent", func(t *testing.T) {
		require.NoError(t, repo.DeleteBook(ctx, "site.com/book/1"))
		require.NoError(t, repo.DeleteBook(ctx, "site.com/book/1"))

		_, err := repo.GetBook(ctx, "site.com/book/1")
		assert.ErrorIs(t, err, library.ErrBookNotFound)
	})
}

func TestRepository_WithReconciler(t *testing.T) {
	ctx := context.Background()
	repo := setupTestRepo(t)
	r := library.NewReconciler(repo, nil, nil, nil, nil)

	for _, ref := range []string{"p1", "p2", "p1"} {
		_, err := r.RecordCapture(ctx, sites.Capture{BookKey: "site.com/book/1", PageReference: ref})
		require.NoError(t, err)
	}
	book, err := repo.GetBook(ctx, "site.com/book/1")
	require.NoError(t, err)
	assert.Equal(t, []string{"p1", "p2"}, book.Pages)

	before := book.UpdatedAt
	time.Sleep(10 * time.Millisecond)
	book, err = r.ReorderPage(ctx, "site.com/book/1", 0, 1, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"p2", "p1"}, book.Pages)

	stored, err := repo.GetBook(ctx, "site.com/book/1")
	require.NoError(t, err)
	assert.True(t, stored.UpdatedAt.After(before))
}
