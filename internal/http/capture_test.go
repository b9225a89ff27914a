package http

import (
	"context"
	"net/http"
	"net/url"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/pagescraper/internal/capture"
	"github.com/mrlokans/pagescraper/internal/tabs"
)

func TestCaptureController_IngestRequest(t *testing.T) {
	s := setupServer(t)
	ctx := context.Background()

	t.Run("no active tab drops the request", func(t *testing.T) {
		w := s.do(t, "POST", "/api/requests", gin.H{"url": jstorPage1, "type": "image"})
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, capture.StatusIgnored, decode[capture.Outcome](t, w).Status)
	})

	t.Run("records with the reported tab", func(t *testing.T) {
		w := s.do(t, "POST", "/api/requests", gin.H{
			"url":  jstorPage2,
			"type": "xmlhttprequest",
			"tab":  gin.H{"url": jstorTab, "title": "Sociology"},
		})
		require.Equal(t, http.StatusOK, w.Code)
		out := decode[capture.Outcome](t, w)
		assert.Equal(t, capture.StatusRecorded, out.Status)
		assert.Equal(t, jstorKey, out.BookKey)

		book, err := s.store.GetBook(ctx, jstorKey)
		require.NoError(t, err)
		assert.Equal(t, []string{jstorPage2}, book.Pages)
	})

	t.Run("extension fetches are ignored", func(t *testing.T) {
		w := s.do(t, "POST", "/api/requests", gin.H{
			"url":       jstorPage3,
			"type":      "xmlhttprequest",
			"initiator": "chrome-extension://abcdefghijklmnop",
		})
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, capture.StatusIgnored, decode[capture.Outcome](t, w).Status)
	})

	t.Run("before stage applies the direct image rule", func(t *testing.T) {
		w := s.do(t, "POST", "/api/requests", gin.H{
			"url":   "https://ebookcentral.proquest.com/lib/uql/docImage.action?encrypted=abc",
			"type":  "image",
			"stage": "before",
			"tab":   gin.H{"url": "https://ebookcentral.proquest.com/lib/uql/reader.action?docID=4785123&ppg=5"},
		})
		require.Equal(t, http.StatusOK, w.Code)
		out := decode[capture.Outcome](t, w)
		assert.Equal(t, capture.StatusRecorded, out.Status)
		assert.Equal(t, "ebookcentral.proquest.com/lib/uql/reader.action?docID=4785123", out.BookKey)
	})

	t.Run("rejects bad input", func(t *testing.T) {
		w := s.do(t, "POST", "/api/requests", gin.H{"type": "image"})
		assert.Equal(t, http.StatusBadRequest, w.Code)

		w = s.do(t, "POST", "/api/requests", gin.H{"url": jstorPage1, "stage": "sometime"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestCaptureController_ActiveTab(t *testing.T) {
	s := setupServer(t)

	w := s.do(t, "GET", "/api/tabs/active", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(t, "POST", "/api/tabs/active", gin.H{"url": jstorTab, "title": "Sociology"})
	require.Equal(t, http.StatusOK, w.Code)
	resp := decode[ActiveTabResponse](t, w)
	assert.True(t, resp.Reader)
	assert.Equal(t, jstorKey, resp.BookKey)

	w = s.do(t, "GET", "/api/tabs/active", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Sociology", decode[ActiveTabResponse](t, w).Tab.Title)

	w = s.do(t, "POST", "/api/tabs/active", gin.H{"title": "no url"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, "DELETE", "/api/tabs/active", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = s.do(t, "GET", "/api/tabs/active", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCaptureController_BrowserOwnedTabs(t *testing.T) {
	s := setupServer(t, func(cfg *RouterConfig) { cfg.TabSetter = nil })

	w := s.do(t, "POST", "/api/tabs/active", gin.H{"url": jstorTab})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "tabs_managed")

	w = s.do(t, "DELETE", "/api/tabs/active", nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "tabs_managed")
}

func TestSitesController(t *testing.T) {
	s := setupServer(t)

	w := s.do(t, "GET", "/api/sites", nil)
	require.Equal(t, http.StatusOK, w.Code)
	response := decode[map[string]any](t, w)
	assert.Equal(t, float64(5), response["count"])

	w = s.do(t, "GET", "/api/sites/reader?url="+url.QueryEscape(jstorTab), nil)
	require.Equal(t, http.StatusOK, w.Code)
	reader := decode[map[string]any](t, w)
	assert.Equal(t, true, reader["reader"])
	assert.Equal(t, jstorKey, reader["book_key"])

	w = s.do(t, "GET", "/api/sites/reader?url=https://example.com/", nil)
	require.Equal(t, http.StatusOK, w.Code)
	reader = decode[map[string]any](t, w)
	assert.Equal(t, false, reader["reader"])
	assert.NotContains(t, reader, "book_key")
}

type fixedBadge string

func (b fixedBadge) Text() string { return string(b) }

func TestCaptureController_ActiveTabBadge(t *testing.T) {
	s := setupServer(t, func(cfg *RouterConfig) { cfg.Badge = fixedBadge("3") })
	s.tab.Set(tabs.Tab{URL: jstorTab})

	w := s.do(t, "GET", "/api/tabs/active", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "3", decode[ActiveTabResponse](t, w).Badge)
}
