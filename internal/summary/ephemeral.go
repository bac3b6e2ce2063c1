package summary

import (
	"sync"
	"time"

	"github.com/golang/groupcache/lru"
)

// Ephemeral is the process-local tier. It holds at most maxEntries
// summaries, evicting the least recently used, and drops entries older
// than ttl on read. A zero ttl keeps entries until evicted.
type Ephemeral struct {
	mu    sync.Mutex
	cache *lru.Cache
	ttl   time.Duration
	now   func() time.Time
}

type ephemeralEntry struct {
	summary Summary
	stored  time.Time
}

func NewEphemeral(maxEntries int, ttl time.Duration) *Ephemeral {
	if maxEntries <= 0 {
		maxEntries = 100
	}
	return &Ephemeral{
		cache: lru.New(maxEntries),
		ttl:   ttl,
		now:   time.Now,
	}
}

func (e *Ephemeral) Get(videoID string) (Summary, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	v, ok := e.cache.Get(videoID)
	if !ok {
		return Summary{}, false
	}
	entry := v.(ephemeralEntry)
	if e.ttl > 0 && e.now().Sub(entry.stored) > e.ttl {
		e.cache.Remove(videoID)
		return Summary{}, false
	}
	return entry.summary, true
}

func (e *Ephemeral) Add(videoID string, s Summary) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cache.Add(videoID, ephemeralEntry{summary: s, stored: e.now()})
}

func (e *Ephemeral) Len() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.cache.Len()
}
