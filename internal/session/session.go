// ABOUTME: In-memory per-connection dialogue state for the assistant gateway.
// ABOUTME: Get-or-insert semantics; sessions die with their connection.

package session

import (
	"sync"
)

// TourResult is one entry of the result list shown to the user, kept so a
// numeric follow-up ("2") can be resolved against the previous search.
type TourResult struct {
	ID       string
	Title    string
	City     string
	Price    string
	Duration string
	Summary  string
	Score    float32
}

// Session is the dialogue state for one assistant connection. The zero value
// is a valid empty session.
type Session struct {
	LastIntent    string
	MentionedCity string
	LastResults   []TourResult
}

// Store holds one Session per connection ID. All methods are safe for
// concurrent use. Sessions are never persisted: they exist from first lookup
// until Clear (called on disconnect) or process exit.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]Session
}

// NewStore creates an empty session store.
func NewStore() *Store {
	return &Store{sessions: make(map[string]Session)}
}

// Get returns the session for key, creating an empty one if absent.
// It never fails.
func (s *Store) Get(key string) Session {
	s.mu.RLock()
	sess, ok := s.sessions[key]
	s.mu.RUnlock()
	if ok {
		return sess
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok = s.sessions[key]; ok {
		return sess
	}
	s.sessions[key] = Session{}
	return Session{}
}

// Update applies fn to the current session for key (creating an empty one if
// absent) and stores the result wholesale.
func (s *Store) Update(key string, fn func(Session) Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[key] = fn(s.sessions[key])
}

// Set replaces the session for key wholesale.
func (s *Store) Set(key string, sess Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[key] = sess
}

// Clear removes the session for key. Safe to call on unknown keys.
func (s *Store) Clear(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, key)
}

// Len returns the number of live sessions.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
