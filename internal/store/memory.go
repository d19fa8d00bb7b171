// Package store keeps the sessions hosted by the authority server: live
// sessions in memory and their snapshots in SQLite.
package store

import (
	"sync"
	"time"

	"github.com/aaronzipp/wargame-turns/internal/session"
	"github.com/aaronzipp/wargame-turns/internal/sse"
)

// Entry is a hosted session with its viewers and counters.
type Entry struct {
	Session   *session.Session
	Viewers   *sse.Clients
	Stats     *Stats
	CreatedAt time.Time

	unsubscribe func()
}

// NewEntry wraps a session for hosting.
func NewEntry(s *session.Session, viewers *sse.Clients) *Entry {
	return &Entry{
		Session:   s,
		Viewers:   viewers,
		Stats:     NewStats(),
		CreatedAt: time.Now(),
	}
}

// Watch subscribes fn to the session; the subscription ends on Close.
func (e *Entry) Watch(fn func(session.Notification)) {
	e.unsubscribe = e.Session.Subscribe(fn)
}

// Unwatch ends the subscription but leaves the session running.
func (e *Entry) Unwatch() {
	if e.unsubscribe != nil {
		e.unsubscribe()
		e.unsubscribe = nil
	}
}

// Close ends the subscription and disposes the session.
func (e *Entry) Close() {
	e.Unwatch()
	e.Session.Dispose()
}

// SessionStore manages hosted sessions
type SessionStore struct {
	sessions map[string]*Entry
	mu       sync.RWMutex
}

// NewSessionStore creates a new session store
func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: make(map[string]*Entry),
	}
}

// Get retrieves a session by code
func (s *SessionStore) Get(code string) (*Entry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, exists := s.sessions[code]
	return entry, exists
}

// Set stores a session
func (s *SessionStore) Set(code string, entry *Entry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[code] = entry
}

// SetIfAbsent stores the entry unless the code is already taken and
// reports whether it did.
func (s *SessionStore) SetIfAbsent(code string, entry *Entry) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.sessions[code]; exists {
		return false
	}
	s.sessions[code] = entry
	return true
}

// Delete removes a session and returns it
func (s *SessionStore) Delete(code string) (*Entry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, exists := s.sessions[code]
	delete(s.sessions, code)
	return entry, exists
}

// Exists checks if a session code exists
func (s *SessionStore) Exists(code string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, exists := s.sessions[code]
	return exists
}

// Codes lists the hosted session codes
func (s *SessionStore) Codes() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	codes := make([]string, 0, len(s.sessions))
	for code := range s.sessions {
		codes = append(codes, code)
	}
	return codes
}

// CloseAll disposes every hosted session
func (s *SessionStore) CloseAll() {
	s.mu.Lock()
	entries := s.sessions
	s.sessions = make(map[string]*Entry)
	s.mu.Unlock()

	for _, e := range entries {
		e.Close()
	}
}
