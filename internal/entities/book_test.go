package entities

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBook_Clone(t *testing.T) {
	original := &Book{URL: "site.com/book/1", Pages: []string{"p1", "p2"}}

	clone := original.Clone()
	clone.Pages[0] = "changed"
	clone.Pages = append(clone.Pages, "p3")

	assert.Equal(t, []string{"p1", "p2"}, original.Pages)
	assert.Equal(t, "site.com/book/1", clone.URL)
}

func TestBook_CloneNil(t *testing.T) {
	var b *Book
	assert.Nil(t, b.Clone())
	assert.Equal(t, 0, b.PageCount())
}

func TestBook_HasPage(t *testing.T) {
	b := &Book{URL: "k", Pages: []string{"p1", "p2"}}

	assert.True(t, b.HasPage("p2"))
	assert.False(t, b.HasPage("p3"))
}
