package events

import (
	"context"
	"strconv"
	"sync"

	"go.uber.org/zap"

	"github.com/mrlokans/pagescraper/internal/entities"
)

// CurrentBookFunc returns the book for the active tab, or nil.
type CurrentBookFunc func(ctx context.Context) (*entities.Book, error)

// BadgeUpdater keeps the page-count badge in sync with the book in the active
// tab. Rendering is left to whoever reads Text.
type BadgeUpdater struct {
	logger  *zap.Logger
	current CurrentBookFunc

	mu   sync.RWMutex
	text string
}

func NewBadgeUpdater(logger *zap.Logger, current CurrentBookFunc) *BadgeUpdater {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BadgeUpdater{logger: logger, current: current}
}

// Run consumes events until ctx is done or the channel is closed.
func (u *BadgeUpdater) Run(ctx context.Context, events <-chan BookUpdateEvent) {
	u.Refresh(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-events:
			if !ok {
				return
			}
			u.Refresh(ctx)
		}
	}
}

// Refresh recomputes the badge from the active tab's book. An event for some
// other book still triggers a refresh; the active book is the source of truth.
func (u *BadgeUpdater) Refresh(ctx context.Context) {
	book, err := u.current(ctx)
	if err != nil {
		u.set("")
		return
	}
	u.set(BadgeText(book))
}

func (u *BadgeUpdater) set(text string) {
	u.mu.Lock()
	changed := u.text != text
	u.text = text
	u.mu.Unlock()

	if changed {
		u.logger.Debug("badge updated", zap.String("text", text))
	}
}

func (u *BadgeUpdater) Text() string {
	u.mu.RLock()
	defer u.mu.RUnlock()
	return u.text
}

// BadgeText is the page count, or empty for no book or no pages.
func BadgeText(book *entities.Book) string {
	n := book.PageCount()
	if n == 0 {
		return ""
	}
	return strconv.Itoa(n)
}
