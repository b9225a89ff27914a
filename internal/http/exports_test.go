package http

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/pagescraper/internal/assembler"
	"github.com/mrlokans/pagescraper/internal/entities"
	"github.com/mrlokans/pagescraper/internal/tabs"
)

func TestExportsController_Download(t *testing.T) {
	s := setupServer(t)
	ctx := context.Background()
	require.NoError(t, s.store.PutBook(ctx, &entities.Book{
		URL:   jstorKey,
		Pages: []string{jstorPage1, jstorPage2, jstorPage3},
	}))

	t.Run("streams the pdf named after the active tab", func(t *testing.T) {
		s.tab.Set(tabs.Tab{URL: jstorTab, Title: "Sociology"})
		defer s.tab.Set(tabs.Tab{})

		w := s.do(t, "GET", "/api/books/export?url="+jstorKey, nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
		assert.Contains(t, w.Header().Get("Content-Disposition"), `filename="Sociology_3pages.pdf"`)

		n, err := api.PageCount(bytes.NewReader(w.Body.Bytes()), nil)
		require.NoError(t, err)
		assert.Equal(t, 2, n)
	})

	t.Run("falls back to the book key", func(t *testing.T) {
		w := s.do(t, "GET", "/api/books/export?url="+jstorKey, nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Header().Get("Content-Disposition"), "_3pages.pdf")
		assert.NotContains(t, w.Header().Get("Content-Disposition"), "Sociology")
	})

	t.Run("explicit title wins", func(t *testing.T) {
		w := s.do(t, "GET", "/api/books/export?url="+jstorKey+"&title=Notes", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Header().Get("Content-Disposition"), `filename="Notes_3pages.pdf"`)
	})

	t.Run("fatal errors are json", func(t *testing.T) {
		require.NoError(t, s.store.PutBook(ctx, &entities.Book{URL: "empty", Pages: []string{}}))
		w := s.do(t, "GET", "/api/books/export?url=empty", nil)
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Contains(t, w.Body.String(), "empty_book")

		require.NoError(t, s.store.PutBook(ctx, &entities.Book{URL: "junk", Pages: []string{"https://example.com/a.png"}}))
		w = s.do(t, "GET", "/api/books/export?url=junk", nil)
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Contains(t, w.Body.String(), "no_valid_pages")

		w = s.do(t, "GET", "/api/books/export?url=missing", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestExportsController_BackgroundJob(t *testing.T) {
	s := setupServer(t)
	require.NoError(t, s.store.PutBook(context.Background(), &entities.Book{
		URL:   jstorKey,
		Pages: []string{jstorPage1, jstorPage2},
	}))

	w := s.do(t, "POST", "/api/exports", gin.H{"url": jstorKey, "title": "Sociology"})
	require.Equal(t, http.StatusAccepted, w.Code)
	resp := decode[SuccessResponse](t, w)
	jobID := resp.Data.(map[string]any)["job_id"].(string)
	require.NotEmpty(t, jobID)

	var snapshot assembler.JobSnapshot
	require.Eventually(t, func() bool {
		w := s.do(t, "GET", "/api/exports/"+jobID, nil)
		if w.Code != http.StatusOK {
			return false
		}
		snapshot = decode[assembler.JobSnapshot](t, w)
		return snapshot.Status == assembler.JobCompleted || snapshot.Status == assembler.JobFailed
	}, 10*time.Second, 20*time.Millisecond)

	assert.Equal(t, assembler.JobCompleted, snapshot.Status)
	assert.Equal(t, 100, snapshot.Progress)
	assert.Equal(t, "Sociology_2pages.pdf", snapshot.Filename)
	assert.Equal(t, 1, snapshot.Placed)
	assert.Equal(t, []string{"Failed to load image: " + jstorPage2}, snapshot.Errors)
	assert.Contains(t, snapshot.Log, "Processing page 1 of 2")
	assert.Contains(t, snapshot.Log, "PDF download complete.")

	w = s.do(t, "GET", "/api/exports/"+jobID+"/download", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "Sociology_2pages.pdf")

	w = s.do(t, "GET", "/api/exports", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(1), decode[map[string]any](t, w)["count"])

	require.NoError(t, os.Remove(snapshot.Location))
	w = s.do(t, "GET", "/api/exports/"+jobID+"/download", nil)
	assert.Equal(t, http.StatusGone, w.Code)
}

type fakeQueue struct {
	jobs []string
	err  error
}

func (q *fakeQueue) EnqueueExport(jobID, bookURL, title string) (string, error) {
	if q.err != nil {
		return "", q.err
	}
	q.jobs = append(q.jobs, jobID)
	return "task-1", nil
}

func TestExportsController_Enqueue(t *testing.T) {
	queue := &fakeQueue{}
	s := setupServer(t, func(cfg *RouterConfig) { cfg.ExportQueue = queue })

	w := s.do(t, "POST", "/api/exports", gin.H{"url": jstorKey})
	require.Equal(t, http.StatusAccepted, w.Code)
	data := decode[SuccessResponse](t, w).Data.(map[string]any)
	assert.Equal(t, "task-1", data["task_id"])
	require.Len(t, queue.jobs, 1)
	assert.Equal(t, queue.jobs[0], data["job_id"])

	w = s.do(t, "GET", "/api/exports/"+queue.jobs[0], nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, assembler.JobPending, decode[assembler.JobSnapshot](t, w).Status)

	w = s.do(t, "GET", "/api/exports/"+queue.jobs[0]+"/download", nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	queue.err = errors.New("database is locked")
	w = s.do(t, "POST", "/api/exports", gin.H{"url": jstorKey})
	assert.Equal(t, http.StatusInternalServerError, w.Code)

	w = s.do(t, "POST", "/api/exports", gin.H{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, "GET", "/api/exports/nope", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
