// ABOUTME: Tests for the client message id replay guard
// ABOUTME: Validates TTL expiry, per-user scoping, size cap, and concurrency

package dedupe

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGuard_FirstSendIsNotAReplay(t *testing.T) {
	g := New(5*time.Minute, 100)
	defer g.Close()

	assert.False(t, g.Seen("alice", "msg-1"))
}

func TestGuard_ResendIsAReplay(t *testing.T) {
	g := New(5*time.Minute, 100)
	defer g.Close()

	assert.False(t, g.Seen("alice", "msg-1"))
	assert.True(t, g.Seen("alice", "msg-1"))
}

func TestGuard_IdsAreScopedPerUser(t *testing.T) {
	g := New(5*time.Minute, 100)
	defer g.Close()

	assert.False(t, g.Seen("alice", "msg-1"))
	assert.False(t, g.Seen("bob", "msg-1"), "same id from a different user is not a replay")
}

func TestGuard_EmptyIdNeverDeduplicated(t *testing.T) {
	g := New(5*time.Minute, 100)
	defer g.Close()

	assert.False(t, g.Seen("alice", ""))
	assert.False(t, g.Seen("alice", ""))
	assert.Zero(t, g.Len())
}

func TestGuard_ExpiredIdIsNotAReplay(t *testing.T) {
	g := New(10*time.Millisecond, 100)
	defer g.Close()

	assert.False(t, g.Seen("alice", "msg-1"))
	time.Sleep(20 * time.Millisecond)
	assert.False(t, g.Seen("alice", "msg-1"))
}

func TestGuard_SizeCapEvictsOldest(t *testing.T) {
	g := New(5*time.Minute, 3)
	defer g.Close()

	g.Seen("alice", "msg-1")
	g.Seen("alice", "msg-2")
	g.Seen("alice", "msg-3")
	g.Seen("alice", "msg-4") // evicts msg-1

	assert.Equal(t, 3, g.Len())
	assert.False(t, g.Seen("alice", "msg-1"), "evicted id looks new again")
	assert.True(t, g.Seen("alice", "msg-4"))
}

func TestGuard_ExpireSweep(t *testing.T) {
	g := New(10*time.Millisecond, 100)
	defer g.Close()

	g.Seen("alice", "msg-1")
	g.Seen("alice", "msg-2")
	time.Sleep(20 * time.Millisecond)

	g.expire()
	assert.Zero(t, g.Len())
}

func TestGuard_CloseIsIdempotent(t *testing.T) {
	g := New(time.Minute, 10)
	g.Close()
	g.Close()
}

func TestGuard_ConcurrentSeen(t *testing.T) {
	g := New(5*time.Minute, 1000)
	defer g.Close()

	const goroutines = 16
	var wg sync.WaitGroup
	replays := make([]int, goroutines)
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				if g.Seen("alice", fmt.Sprintf("msg-%d", j)) {
					replays[n]++
				}
			}
		}(i)
	}
	wg.Wait()

	// Each id is marked by exactly one goroutine; every other sighting is
	// a replay.
	total := 0
	for _, n := range replays {
		total += n
	}
	assert.Equal(t, goroutines*50-50, total)
}
