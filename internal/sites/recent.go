package sites

import (
	"sync"
	"time"
)

// RecentURLs is a small bounded memory of recently seen request URLs, used to
// suppress duplicate event bursts (the same image reported several times as it
// loads). It holds at most size entries; the oldest is evicted first.
type RecentURLs struct {
	mu     sync.Mutex
	size   int
	window time.Duration
	seen   map[string]time.Time
	order  []string
	now    func() time.Time
}

func NewRecentURLs(size int, window time.Duration) *RecentURLs {
	if size <= 0 {
		size = 1
	}
	return &RecentURLs{
		size:   size,
		window: window,
		seen:   make(map[string]time.Time, size),
		now:    time.Now,
	}
}

// Seen records u and reports whether it was already recorded within the
// window. A zero window means "seen at all while still cached".
func (r *RecentURLs) Seen(u string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	if at, ok := r.seen[u]; ok {
		r.seen[u] = now
		return r.window == 0 || now.Sub(at) <= r.window
	}

	if len(r.order) >= r.size {
		oldest := r.order[0]
		r.order = r.order[1:]
		delete(r.seen, oldest)
	}
	r.order = append(r.order, u)
	r.seen[u] = now
	return false
}

// Forget empties the cache.
func (r *RecentURLs) Forget() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seen = make(map[string]time.Time, r.size)
	r.order = nil
}

// Len is the number of cached URLs.
func (r *RecentURLs) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.order)
}
