// Package events broadcasts book-state changes to whoever is listening.
//
// Delivery is best effort. A subscriber that is not draining its channel
// misses events; listeners are expected to re-read authoritative state from
// the book store when they (re)attach.
package events

import (
	"encoding/json"
	"sync"

	"go.uber.org/zap"

	"github.com/mrlokans/pagescraper/internal/entities"
)

// ActionBookWasUpdated is the only push message the UI understands.
const ActionBookWasUpdated = "BookWasUpdated"

// BookUpdateEvent carries the updated book, or a nil Book when the book was
// deleted. On the wire a deletion is "book": false.
type BookUpdateEvent struct {
	Action  string
	BookURL string
	Book    *entities.Book
}

func BookUpdated(book *entities.Book) BookUpdateEvent {
	return BookUpdateEvent{Action: ActionBookWasUpdated, BookURL: book.URL, Book: book.Clone()}
}

func BookDeleted(bookURL string) BookUpdateEvent {
	return BookUpdateEvent{Action: ActionBookWasUpdated, BookURL: bookURL}
}

// Deleted reports whether the event is the deletion sentinel.
func (e BookUpdateEvent) Deleted() bool {
	return e.Book == nil
}

func (e BookUpdateEvent) MarshalJSON() ([]byte, error) {
	var book any = false
	if e.Book != nil {
		book = e.Book
	}
	return json.Marshal(struct {
		Action  string `json:"action"`
		BookURL string `json:"bookURL"`
		Book    any    `json:"book"`
	}{e.Action, e.BookURL, book})
}

// Publisher is what mutating components depend on.
type Publisher interface {
	Publish(evt BookUpdateEvent)
}

type subscriber struct {
	ch chan BookUpdateEvent
}

// Bus fans events out to subscribers over buffered channels.
type Bus struct {
	logger     *zap.Logger
	bufferSize int

	mu     sync.RWMutex
	subs   map[int]*subscriber
	nextID int
	closed bool
}

func NewBus(logger *zap.Logger, bufferSize int) *Bus {
	if logger == nil {
		logger = zap.NewNop()
	}
	if bufferSize <= 0 {
		bufferSize = 16
	}
	return &Bus{
		logger:     logger,
		bufferSize: bufferSize,
		subs:       make(map[int]*subscriber),
	}
}

// Publish never blocks.
func (b *Bus) Publish(evt BookUpdateEvent) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for id, s := range b.subs {
		select {
		case s.ch <- evt:
		default:
			b.logger.Warn("subscriber channel full, dropping event",
				zap.Int("subscriber", id),
				zap.String("book", evt.BookURL))
		}
	}
}

// Subscribe registers a listener. The returned func unsubscribes and closes
// the channel; it is safe to call more than once.
func (b *Bus) Subscribe() (<-chan BookUpdateEvent, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	s := &subscriber{ch: make(chan BookUpdateEvent, b.bufferSize)}
	if b.closed {
		close(s.ch)
		return s.ch, func() {}
	}

	id := b.nextID
	b.nextID++
	b.subs[id] = s

	var once sync.Once
	return s.ch, func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			if _, ok := b.subs[id]; ok {
				delete(b.subs, id)
				close(s.ch)
			}
		})
	}
}

// Subscribers is the number of attached listeners.
func (b *Bus) Subscribers() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

// Close detaches every subscriber.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for id, s := range b.subs {
		close(s.ch)
		delete(b.subs, id)
	}
	b.closed = true
}
