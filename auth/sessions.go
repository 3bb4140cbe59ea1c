package auth

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/spektr-org/gccdash/engine"
)

// ============================================================================
// SESSIONS: in-memory, no expiry, removed only by logout
// ============================================================================

// Session is one signed-in browser. It carries the dashboard state of that
// browser between requests.
type Session struct {
	ID        string
	Username  string
	CreatedAt time.Time

	mu    sync.Mutex
	state engine.ViewState
}

// State returns a copy of the session's dashboard state.
func (s *Session) State() engine.ViewState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Update replaces the dashboard state with fn's result. Calls on one session
// are serialized.
func (s *Session) Update(fn func(engine.ViewState) engine.ViewState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = fn(s.state)
}

// Sessions is a concurrency-safe session store.
type Sessions struct {
	now func() time.Time

	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewSessions creates an empty store.
func NewSessions() *Sessions {
	return &Sessions{now: time.Now, sessions: make(map[string]*Session)}
}

// Create starts a session for username with a fresh dashboard state.
func (s *Sessions) Create(username string) *Session {
	sess := &Session{
		ID:        uuid.NewString(),
		Username:  username,
		CreatedAt: s.now(),
		state:     engine.NewViewState(),
	}
	s.mu.Lock()
	s.sessions[sess.ID] = sess
	s.mu.Unlock()
	return sess
}

// Get returns the session with id.
func (s *Sessions) Get(id string) (*Session, bool) {
	if id == "" {
		return nil, false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[id]
	return sess, ok
}

// Delete ends the session with id. Unknown ids are ignored.
func (s *Sessions) Delete(id string) {
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
}

// Len returns the number of live sessions.
func (s *Sessions) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
