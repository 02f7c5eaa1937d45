// ABOUTME: Tests for the assistant session store.
// ABOUTME: Covers get-or-insert, wholesale updates, clear, and concurrent turns.

package session

import (
	"strconv"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetUnknownKeyReturnsEmptySession(t *testing.T) {
	s := NewStore()

	sess := s.Get("conn-1")
	assert.Empty(t, sess.LastIntent)
	assert.Empty(t, sess.MentionedCity)
	assert.Nil(t, sess.LastResults)

	// The lookup itself creates the entry.
	assert.Equal(t, 1, s.Len())
}

func TestUpdateMergesIntoExisting(t *testing.T) {
	s := NewStore()
	s.Set("conn-1", Session{MentionedCity: "Berlin"})

	s.Update("conn-1", func(sess Session) Session {
		sess.LastIntent = "tour_search"
		sess.LastResults = []TourResult{{ID: "t1", Title: "Old Town Walk"}}
		return sess
	})

	sess := s.Get("conn-1")
	assert.Equal(t, "tour_search", sess.LastIntent)
	assert.Equal(t, "Berlin", sess.MentionedCity)
	assert.Len(t, sess.LastResults, 1)
}

func TestUpdateCreatesIfAbsent(t *testing.T) {
	s := NewStore()

	s.Update("conn-1", func(sess Session) Session {
		sess.MentionedCity = "Rome"
		return sess
	})

	assert.Equal(t, "Rome", s.Get("conn-1").MentionedCity)
}

func TestClear(t *testing.T) {
	s := NewStore()
	s.Set("conn-1", Session{LastIntent: "tour_search"})

	s.Clear("conn-1")
	assert.Empty(t, s.Get("conn-1").LastIntent)

	// Clearing an unknown key must not panic.
	s.Clear("conn-never-seen")
}

func TestSessionsAreIsolatedPerKey(t *testing.T) {
	s := NewStore()
	s.Set("conn-1", Session{MentionedCity: "Paris"})
	s.Set("conn-2", Session{MentionedCity: "Lisbon"})

	assert.Equal(t, "Paris", s.Get("conn-1").MentionedCity)
	assert.Equal(t, "Lisbon", s.Get("conn-2").MentionedCity)
}

// Concurrent turns on the same connection must not crash; last write wins.
func TestConcurrentUpdatesDoNotRace(t *testing.T) {
	s := NewStore()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			s.Update("conn-1", func(sess Session) Session {
				sess.MentionedCity = "city-" + strconv.Itoa(n)
				return sess
			})
			s.Get("conn-1")
		}(i)
	}
	wg.Wait()

	assert.Contains(t, s.Get("conn-1").MentionedCity, "city-")
}
