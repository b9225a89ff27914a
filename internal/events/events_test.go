package events

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mrlokans/pagescraper/internal/entities"
)

func TestBookUpdateEvent_JSON(t *testing.T) {
	t.Run("update carries the book", func(t *testing.T) {
		evt := BookUpdated(&entities.Book{URL: "site.com/book/1", Pages: []string{"p1"}})
		data, err := json.Marshal(evt)
		require.NoError(t, err)

		var got map[string]any
		require.NoError(t, json.Unmarshal(data, &got))
		assert.Equal(t, "BookWasUpdated", got["action"])
		book := got["book"].(map[string]any)
		assert.Equal(t, "site.com/book/1", book["url"])
		assert.Equal(t, []any{"p1"}, book["pages"])
	})

	t.Run("deletion is book false", func(t *testing.T) {
		evt := BookDeleted("site.com/book/1")
		assert.True(t, evt.Deleted())

		data, err := json.Marshal(evt)
		require.NoError(t, err)
		assert.JSONEq(t, `{"action":"BookWasUpdated","bookURL":"site.com/book/1","book":false}`, string(data))
	})
}

func TestBookUpdated_SnapshotsBook(t *testing.T) {
	book := &entities.Book{URL: "k", Pages: []string{"a"}}
	evt := BookUpdated(book)
	book.Pages[0] = "changed"

	assert.Equal(t, []string{"a"}, evt.Book.Pages)
}

func TestBus_FanOut(t *testing.T) {
	bus := NewBus(zap.NewNop(), 4)
	a, unsubA := bus.Subscribe()
	b, unsubB := bus.Subscribe()
	defer unsubA()
	defer unsubB()

	bus.Publish(BookDeleted("k"))

	for _, ch := range []<-chan BookUpdateEvent{a, b} {
		select {
		case evt := <-ch:
			assert.Equal(t, "k", evt.BookURL)
		case <-time.After(time.Second):
			t.Fatal("event not delivered")
		}
	}
}

func TestBus_PublishWithoutSubscribers(t *testing.T) {
	bus := NewBus(nil, 1)
	assert.NotPanics(t, func() { bus.Publish(BookDeleted("k")) })
}

func TestBus_FullSubscriberDoesNotBlock(t *testing.T) {
	bus := NewBus(zap.NewNop(), 1)
	ch, unsub := bus.Subscribe()
	defer unsub()

	bus.Publish(BookDeleted("first"))
	bus.Publish(BookDeleted("second"))

	evt := <-ch
	assert.Equal(t, "first", evt.BookURL)
	select {
	case <-ch:
		t.Fatal("second event should have been dropped")
	default:
	}
}

func TestBus_Unsubscribe(t *testing.T) {
	bus := NewBus(zap.NewNop(), 1)
	ch, unsub := bus.Subscribe()
	assert.Equal(t, 1, bus.Subscribers())

	unsub()
	unsub()
	assert.Equal(t, 0, bus.Subscribers())

	_, open := <-ch
	assert.False(t, open)
}

func TestBus_Close(t *testing.T) {
	bus := NewBus(zap.NewNop(), 1)
	ch, unsub := bus.Subscribe()
	bus.Close()
	unsub()

	_, open := <-ch
	assert.False(t, open)

	late, _ := bus.Subscribe()
	_, open = <-late
	assert.False(t, open)
}

func TestBadgeUpdater(t *testing.T) {
	var current *entities.Book
	u := NewBadgeUpdater(zap.NewNop(), func(context.Context) (*entities.Book, error) {
		return current, nil
	})

	u.Refresh(context.Background())
	assert.Equal(t, "", u.Text())

	current = &entities.Book{URL: "k", Pages: []string{"a", "b", "c"}}
	u.Refresh(context.Background())
	assert.Equal(t, "3", u.Text())
}

func TestBadgeUpdater_Run(t *testing.T) {
	bus := NewBus(zap.NewNop(), 4)
	ch, unsub := bus.Subscribe()

	pages := []string{"a"}
	u := NewBadgeUpdater(zap.NewNop(), func(context.Context) (*entities.Book, error) {
		return &entities.Book{URL: "k", Pages: pages}, nil
	})

	done := make(chan struct{})
	go func() {
		u.Run(context.Background(), ch)
		close(done)
	}()

	unsub()
	<-done
	assert.Equal(t, "1", u.Text())
}
