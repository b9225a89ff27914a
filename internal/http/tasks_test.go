package http

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/mikestefanello/backlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/pagescraper/internal/tasks"
)

type fakeStatuses map[string]backlite.TaskStatus

func (f fakeStatuses) Status(_ context.Context, taskID string) (backlite.TaskStatus, error) {
	if taskID == "broken" {
		return backlite.TaskStatusNotFound, errors.New("database is locked")
	}
	status, ok := f[taskID]
	if !ok {
		return backlite.TaskStatusNotFound, nil
	}
	return status, nil
}

func TestTasksController(t *testing.T) {
	s := setupServer(t, func(cfg *RouterConfig) {
		cfg.TaskStatus = fakeStatuses{"a": backlite.TaskStatusRunning, "b": backlite.TaskStatusSuccess}
	})

	w := s.do(t, "GET", "/api/tasks/types", nil)
	require.Equal(t, http.StatusOK, w.Code)
	types := decode[map[string][]TaskTypeInfo](t, w)["task_types"]
	require.Len(t, types, 1)
	assert.Equal(t, tasks.ExportBookQueue, types[0].Type)

	tests := []struct {
		id       string
		code     int
		expected string
	}{
		{"a", http.StatusOK, "running"},
		{"b", http.StatusOK, "success"},
		{"missing", http.StatusOK, "not_found"},
		{"broken", http.StatusInternalServerError, ""},
	}
	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			w := s.do(t, "GET", "/api/tasks/"+tt.id, nil)
			require.Equal(t, tt.code, w.Code)
			if tt.expected != "" {
				assert.Equal(t, tt.expected, decode[map[string]string](t, w)["status"])
			}
		})
	}
}

func TestTasksController_NotMountedWithoutQueue(t *testing.T) {
	s := setupServer(t)

	w := s.do(t, "GET", "/api/tasks/types", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
