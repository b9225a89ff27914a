package http

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/pagescraper/internal/entities"
)

type sseEvent struct {
	name string
	data string
}

// readEvent reads lines until the next complete event, skipping comments.
func readEvent(t *testing.T, r *bufio.Reader) sseEvent {
	t.Helper()
	var evt sseEvent
	for {
		line, err := r.ReadString('\n')
		require.NoError(t, err)
		line = strings.TrimRight(line, "\n")
		switch {
		case line == "":
			if evt.name != "" || evt.data != "" {
				return evt
			}
		case strings.HasPrefix(line, ":"):
		case strings.HasPrefix(line, "event:"):
			evt.name = strings.TrimPrefix(line, "event:")
		case strings.HasPrefix(line, "data:"):
			evt.data = strings.TrimPrefix(line, "data:")
		}
	}
}

func TestEventsController_Stream(t *testing.T) {
	s := setupServer(t, func(cfg *RouterConfig) { cfg.Keepalive = 20 * time.Millisecond })
	srv := httptest.NewServer(s.router)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, "GET", srv.URL+"/api/events", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/event-stream")

	r := bufio.NewReader(resp.Body)
	assert.Equal(t, "connected", readEvent(t, r).name)

	_, err = s.reconciler.SaveBook(ctx, &entities.Book{URL: jstorKey, Pages: []string{jstorPage1}})
	require.NoError(t, err)

	evt := readEvent(t, r)
	assert.Equal(t, "BookWasUpdated", evt.name)
	var payload struct {
		Action  string        `json:"action"`
		BookURL string        `json:"bookURL"`
		Book    entities.Book `json:"book"`
	}
	require.NoError(t, json.Unmarshal([]byte(evt.data), &payload))
	assert.Equal(t, "BookWasUpdated", payload.Action)
	assert.Equal(t, jstorKey, payload.BookURL)
	assert.Equal(t, []string{jstorPage1}, payload.Book.Pages)

	require.NoError(t, s.reconciler.DeleteBook(ctx, jstorKey))
	evt = readEvent(t, r)
	assert.Equal(t, "BookWasUpdated", evt.name)
	assert.Contains(t, evt.data, `"book":false`)
}

func TestEventsController_NotMountedWithoutSource(t *testing.T) {
	s := setupServer(t, func(cfg *RouterConfig) { cfg.Events = nil })
	w := s.do(t, "GET", "/api/events", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
