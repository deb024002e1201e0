package session

import (
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// Session is the server-side string key-value bag bound to one browser
// session. Access is effectively single-writer per session, the mutex only
// guards against the odd concurrent request from the same browser.
type Session struct {
	ID string

	mu     sync.Mutex
	values map[string]string
}

func (s *Session) Set(key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
}

func (s *Session) Get(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	value, ok := s.values[key]
	return value, ok
}

func (s *Session) Remove(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, key)
}

func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values = make(map[string]string)
}

// Store keeps sessions in an expirable LRU: a session not touched within the
// idle TTL is evicted, which is what bounds the lifetime of anything a flow
// parks in it (reset challenges included).
type Store struct {
	sessions *expirable.LRU[string, *Session]
}

func NewStore(maxSessions int, idleTTL time.Duration) *Store {
	return &Store{
		sessions: expirable.NewLRU[string, *Session](maxSessions, nil, idleTTL),
	}
}

// Fetch returns the session for id, creating it if absent or expired. The
// Add call refreshes the idle TTL on every request that touches the session.
func (s *Store) Fetch(id string) *Session {
	if sess, ok := s.sessions.Get(id); ok {
		s.sessions.Add(id, sess)
		return sess
	}
	sess := &Session{ID: id, values: make(map[string]string)}
	s.sessions.Add(id, sess)
	return sess
}

func (s *Store) Len() int {
	return s.sessions.Len()
}
