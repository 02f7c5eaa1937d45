// ABOUTME: Replay guard for client-generated message ids
// ABOUTME: A reconnecting client may resend sends it never got an ack for

package dedupe

import (
	"container/list"
	"sync"
	"time"
)

type seenEntry struct {
	at      time.Time
	element *list.Element
}

// Guard remembers recently seen client message ids so a resend after a
// reconnect does not persist and deliver the same message twice. Entries
// expire after a TTL and the guard is size-capped; insertion order lives in
// a linked list so eviction of the oldest id is O(1).
//
// Ids are scoped per user: two users may legitimately pick the same id.
type Guard struct {
	mu      sync.Mutex
	seen    map[string]*seenEntry
	order   *list.List // oldest key at the front
	ttl     time.Duration
	maxSize int
	done    chan struct{}
	closed  bool
}

// New creates a Guard and starts its background expiry sweep.
func New(ttl time.Duration, maxSize int) *Guard {
	g := &Guard{
		seen:    make(map[string]*seenEntry),
		order:   list.New(),
		ttl:     ttl,
		maxSize: maxSize,
		done:    make(chan struct{}),
	}
	go g.sweep()
	return g
}

// Seen reports whether this user already sent this client message id within
// the TTL, marking it as seen when it is new. Check and mark are one
// critical section, so two racing resends agree on which one is the replay.
// An empty id is never a replay: clients that don't send ids are not
// deduplicated.
func (g *Guard) Seen(userID, clientMsgID string) bool {
	if clientMsgID == "" {
		return false
	}
	key := userID + "\x00" + clientMsgID

	g.mu.Lock()
	defer g.mu.Unlock()

	if entry, ok := g.seen[key]; ok && time.Since(entry.at) < g.ttl {
		return true
	}
	g.markLocked(key)
	return false
}

// markLocked records the key, refreshing it if present. Must hold mu.
func (g *Guard) markLocked(key string) {
	now := time.Now()

	if entry, ok := g.seen[key]; ok {
		entry.at = now
		g.order.MoveToBack(entry.element)
		return
	}

	if len(g.seen) >= g.maxSize {
		g.evictOldest()
	}

	elem := g.order.PushBack(key)
	g.seen[key] = &seenEntry{at: now, element: elem}
}

// evictOldest drops the front of the insertion list. Must hold mu.
func (g *Guard) evictOldest() {
	front := g.order.Front()
	if front == nil {
		return
	}
	key, _ := front.Value.(string)
	g.order.Remove(front)
	delete(g.seen, key)
}

func (g *Guard) sweep() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			g.expire()
		case <-g.done:
			return
		}
	}
}

func (g *Guard) expire() {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := time.Now()
	for key, entry := range g.seen {
		if now.Sub(entry.at) > g.ttl {
			g.order.Remove(entry.element)
			delete(g.seen, key)
		}
	}
}

// Len returns how many ids the guard currently tracks.
func (g *Guard) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.seen)
}

// Close stops the expiry sweep. Safe to call more than once.
func (g *Guard) Close() {
	g.mu.Lock()
	defer g.mu.Unlock()

	if !g.closed {
		close(g.done)
		g.closed = true
	}
}
