package sites

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRecentURLs_SuppressesBurst(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	r := NewRecentURLs(4, 2*time.Second)
	r.now = func() time.Time { return now }

	assert.False(t, r.Seen("a"))
	assert.True(t, r.Seen("a"))

	now = now.Add(3 * time.Second)
	assert.False(t, r.Seen("a"), "outside the window a repeat is new again")
}

func TestRecentURLs_IsBounded(t *testing.T) {
	r := NewRecentURLs(2, 0)

	assert.False(t, r.Seen("a"))
	assert.False(t, r.Seen("b"))
	assert.False(t, r.Seen("c"))
	assert.Equal(t, 2, r.Len())

	assert.False(t, r.Seen("a"), "oldest entry was evicted")
	assert.True(t, r.Seen("c"))
}

func TestRecentURLs_Forget(t *testing.T) {
	r := NewRecentURLs(8, time.Minute)
	r.Seen("a")
	r.Forget()

	assert.Equal(t, 0, r.Len())
	assert.False(t, r.Seen("a"))
}
