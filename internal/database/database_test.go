package database

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/mrlokans/pagescraper/internal/entities"
)

func TestNewDatabase(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "nested", "test.db")

	db, err := NewDatabase(dbPath, nil)
	require.NoError(t, err)
	defer db.Close()

	assert.NoError(t, db.Ping())
	assert.True(t, db.DB.Migrator().HasTable(&entities.Book{}))
}

func TestDatabase_Close(t *testing.T) {
	db, err := NewDatabase(filepath.Join(t.TempDir(), "test.db"), nil)
	require.NoError(t, err)

	require.NoError(t, db.Close())
	assert.Error(t, db.Ping())
}

func TestDatabase_LogsThroughZap(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	db, err := NewDatabase(filepath.Join(t.TempDir(), "test.db"), zap.New(core))
	require.NoError(t, err)
	defer db.Close()
	logs.TakeAll()

	var book entities.Book
	err = db.DB.Where("url = ?", "site.com/book/404").First(&book).Error
	require.Error(t, err)
	assert.Zero(t, logs.Len(), "a missing row is not logged")

	var n int
	require.Error(t, db.DB.Raw("SELECT count(*) FROM missing_table").Scan(&n).Error)
	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, zapcore.WarnLevel, entry.Level)
	assert.Equal(t, "gorm", entry.LoggerName)
	assert.Contains(t, entry.Message, "missing_table")
}
