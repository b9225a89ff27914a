package audit

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestAuditor(t *testing.T) {
	tempDir := filepath.Join(t.TempDir(), "audit")
	auditor := NewAuditor(tempDir, zap.NewNop())

	t.Run("SaveJSON creates audit directory and saves file", func(t *testing.T) {
		testData := map[string]any{
			"url":    "https://www.jstor.org/stable/get_image/41857568?path=p1",
			"status": "failed",
			"tries":  2,
		}

		filename, err := auditor.SaveJSON(testData)
		require.NoError(t, err)
		assert.Contains(t, filename, ".json")

		fileContent, err := os.ReadFile(filepath.Join(tempDir, filename))
		require.NoError(t, err)

		var savedData map[string]any
		require.NoError(t, json.Unmarshal(fileContent, &savedData))
		assert.Equal(t, testData["url"], savedData["url"])
		assert.Equal(t, float64(2), savedData["tries"])
	})

	t.Run("SaveJSON generates unique filenames", func(t *testing.T) {
		testData := map[string]string{"key": "value"}

		filename1, err := auditor.SaveJSON(testData)
		require.NoError(t, err)
		filename2, err := auditor.SaveJSON(testData)
		require.NoError(t, err)

		assert.NotEqual(t, filename1, filename2)
	})

	t.Run("SaveJSON rejects unmarshalable data", func(t *testing.T) {
		_, err := auditor.SaveJSON(map[string]any{"ch": make(chan int)})
		assert.Error(t, err)
	})
}
