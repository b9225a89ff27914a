package http

import (
	"context"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/pagescraper/internal/entities"
	"github.com/mrlokans/pagescraper/internal/library"
)

func TestMessagesController_SaveBook(t *testing.T) {
	s := setupServer(t)

	w := s.do(t, "POST", "/api/messages", gin.H{
		"action": "SaveBook",
		"book":   gin.H{"url": jstorKey, "pages": []string{jstorPage2, jstorPage1, jstorPage2}},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	saved := decode[entities.Book](t, w)
	assert.Equal(t, jstorKey, saved.URL)
	assert.Equal(t, []string{jstorPage2, jstorPage1}, saved.Pages)

	stored, err := s.store.GetBook(context.Background(), jstorKey)
	require.NoError(t, err)
	assert.Equal(t, saved.Pages, stored.Pages)
}

func TestMessagesController_SaveBookRejectsUndefined(t *testing.T) {
	s := setupServer(t)

	for _, url := range []string{"", "undefined"} {
		w := s.do(t, "POST", "/api/messages", gin.H{
			"action": "SaveBook",
			"book":   gin.H{"url": url, "pages": []string{}},
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "invalid_book")
	}

	w := s.do(t, "POST", "/api/messages", gin.H{"action": "SaveBook"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestMessagesController_ClearBook(t *testing.T) {
	s := setupServer(t)
	ctx := context.Background()
	require.NoError(t, s.store.PutBook(ctx, &entities.Book{URL: jstorKey, Pages: []string{jstorPage1}}))

	w := s.do(t, "POST", "/api/messages", gin.H{"action": "ClearBook", "bookURL": jstorKey})
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true}`, w.Body.String())

	_, err := s.store.GetBook(ctx, jstorKey)
	assert.ErrorIs(t, err, library.ErrBookNotFound)

	// Clearing again still succeeds.
	w = s.do(t, "POST", "/api/messages", gin.H{"action": "ClearBook", "bookURL": jstorKey})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true}`, w.Body.String())
}

func TestMessagesController_UpdatePageOrder(t *testing.T) {
	s := setupServer(t)
	ctx := context.Background()
	require.NoError(t, s.store.PutBook(ctx, &entities.Book{
		URL:   jstorKey,
		Pages: []string{jstorPage1, jstorPage2, jstorPage3},
	}))

	t.Run("moves one page by default", func(t *testing.T) {
		w := s.do(t, "POST", "/api/messages", gin.H{
			"action":   "UpdatePageOrder",
			"bookURL":  jstorKey,
			"oldIndex": 0,
			"newIndex": 2,
		})
		require.Equal(t, http.StatusOK, w.Code)
		book := decode[entities.Book](t, w)
		assert.Equal(t, []string{jstorPage2, jstorPage3, jstorPage1}, book.Pages)
	})

	t.Run("moves a run of pages", func(t *testing.T) {
		w := s.do(t, "POST", "/api/messages", gin.H{
			"action":   "UpdatePageOrder",
			"bookURL":  jstorKey,
			"oldIndex": 0,
			"newIndex": 1,
			"numPages": 2,
		})
		require.Equal(t, http.StatusOK, w.Code)
		book := decode[entities.Book](t, w)
		assert.Equal(t, []string{jstorPage1, jstorPage2, jstorPage3}, book.Pages)
	})

	t.Run("answers false for a missing book", func(t *testing.T) {
		w := s.do(t, "POST", "/api/messages", gin.H{
			"action":   "UpdatePageOrder",
			"bookURL":  "www.jstor.org/stable/404",
			"oldIndex": 0,
			"newIndex": 1,
		})
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "false", w.Body.String())
	})
}

func TestMessagesController_UnknownAction(t *testing.T) {
	s := setupServer(t)

	w := s.do(t, "POST", "/api/messages", gin.H{"action": "DownloadEverything"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "unknown action: DownloadEverything")

	w = s.do(t, "POST", "/api/messages", gin.H{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
