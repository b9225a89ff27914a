package entities

import (
	"time"
)

// Book is the persisted aggregate of captured page references for one
// e-book. URL is the book key derived from the reader page and doubles as the
// primary key; Pages keeps capture order (user reorderable) with no duplicates.
type Book struct {
	URL       string    `gorm:"primaryKey;size:2048" json:"url" yaml:"url"`
	Pages     []string  `gorm:"serializer:json;type:text" json:"pages" yaml:"pages"`
	CreatedAt time.Time `json:"created_at,omitempty" yaml:"created_at,omitempty"`
	UpdatedAt time.Time `json:"updated_at,omitempty" yaml:"updated_at,omitempty"`
}

func (Book) TableName() string {
	return "books"
}

// Clone returns a copy whose Pages slice does not alias the receiver's.
func (b *Book) Clone() *Book {
	if b == nil {
		return nil
	}
	c := *b
	c.Pages = append(make([]string, 0, len(b.Pages)), b.Pages...)
	return &c
}

// HasPage reports whether ref is already captured.
func (b *Book) HasPage(ref string) bool {
	for _, p := range b.Pages {
		if p == ref {
			return true
		}
	}
	return false
}

// PageCount is len(Pages), tolerant of a nil receiver.
func (b *Book) PageCount() int {
	if b == nil {
		return 0
	}
	return len(b.Pages)
}
