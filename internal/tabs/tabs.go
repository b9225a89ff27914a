// Package tabs tracks the browser tab the user is currently reading in.
//
// The capture pipeline needs the active tab's URL to derive a book key and
// its title to name exported documents. A Provider is implemented by the
// chromedp browser and, for external clients that report tab changes over
// HTTP, by Static.
package tabs

import (
	"context"
	"errors"
	"sync"
)

var ErrNoActiveTab = errors.New("no active tab")

// Tab is a snapshot of the active tab.
type Tab struct {
	URL   string `json:"url" binding:"required"`
	Title string `json:"title"`
}

// Provider resolves the active tab.
type Provider interface {
	ActiveTab(ctx context.Context) (Tab, error)
}

// Static holds the tab last reported by a client.
type Static struct {
	mu  sync.RWMutex
	tab *Tab
}

func NewStatic() *Static {
	return &Static{}
}

func (s *Static) ActiveTab(_ context.Context) (Tab, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.tab == nil || s.tab.URL == "" {
		return Tab{}, ErrNoActiveTab
	}
	return *s.tab, nil
}

// Set replaces the active tab. An empty URL clears it.
func (s *Static) Set(tab Tab) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if tab.URL == "" {
		s.tab = nil
		return
	}
	s.tab = &tab
}
