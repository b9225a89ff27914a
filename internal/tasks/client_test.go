package tasks

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/mikestefanello/backlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestDBPath(t *testing.T) {
	tests := []struct {
		main     string
		expected string
	}{
		{"./pagescraper.db", "pagescraper-tasks.db"},
		{"/data/books.sqlite", "/data/books-tasks.sqlite"},
		{"library", "library-tasks"},
	}
	for _, tt := range tests {
		t.Run(tt.main, func(t *testing.T) {
			assert.Equal(t, filepath.Clean(tt.expected), filepath.Clean(DBPath(tt.main)))
		})
	}
}

func TestNewClient(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")

	client, err := NewClient(dbPath, DefaultConfig(), zap.NewNop())
	require.NoError(t, err)

	assert.Equal(t, DBPath(dbPath), client.Path())
	_, err = os.Stat(client.Path())
	assert.NoError(t, err, "queue database should be created")
	assert.NoError(t, client.Ping())

	require.NoError(t, client.Close())
	assert.Error(t, client.Ping())
}

func TestClientStartStop(t *testing.T) {
	client, err := NewClient(filepath.Join(t.TempDir(), "test.db"), DefaultConfig(), zap.NewNop())
	require.NoError(t, err)
	defer client.Close()

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer stopCancel()
	assert.True(t, client.Stop(stopCtx), "stopping an idle client is a no-op")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go client.Start(ctx)
	time.Sleep(50 * time.Millisecond)

	assert.True(t, client.Stop(stopCtx))
}

// TestTask is a simple task for testing
type TestTask struct {
	Value string `json:"value"`
}

func (t TestTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "test_task",
		MaxAttempts: 1,
		Backoff:     time.Second,
		Timeout:     5 * time.Second,
	}
}

func TestTaskEnqueue(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	cfg := DefaultConfig()
	cfg.Workers = 1

	client, err := NewClient(dbPath, cfg, zap.NewNop())
	require.NoError(t, err)
	defer client.Close()

	// Create and register a test queue
	executed := make(chan string, 1)
	queue := backlite.NewQueue(func(ctx context.Context, task TestTask) error {
		executed <- task.Value
		return nil
	})
	client.Register(queue)

	// Start client
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go client.Start(ctx)

	// Enqueue a task
	ids, err := client.Add(TestTask{Value: "hello"}).Save()
	require.NoError(t, err)
	assert.Len(t, ids, 1)

	// Wait for task to be executed
	select {
	case val := <-executed:
		assert.Equal(t, "hello", val)
	case <-time.After(5 * time.Second):
		t.Fatal("task was not executed within timeout")
	}
}

func TestExportBookTaskConfig(t *testing.T) {
	task := ExportBookTask{JobID: "job", BookURL: "www.jstor.org/stable/41857568"}
	cfg := task.Config()

	assert.Equal(t, ExportBookQueue, cfg.Name)
	assert.Equal(t, 1, cfg.MaxAttempts)
	assert.Equal(t, 30*time.Minute, cfg.Timeout)
	assert.NotNil(t, cfg.Retention)
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, 1, cfg.Workers)
	assert.Equal(t, 30*time.Minute, cfg.ExportTimeout)
	assert.Equal(t, 15*time.Minute, cfg.ReleaseAfter)
	assert.Equal(t, time.Hour, cfg.CleanupInterval)
	assert.Equal(t, 24*time.Hour, cfg.RetentionDuration)
}
