package sessions

import "sync"

// Store holds the authenticated identity of the console. It has no side
// effects beyond its own state; persisting tokens is the caller's job.
type Store struct {
	mu              sync.RWMutex
	isAuthenticated bool
	session         *Session
}

func NewStore() *Store {
	return &Store{}
}

// Authenticate marks the console as signed in with the given claims.
func (s *Store) Authenticate(session Session) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.isAuthenticated = true
	s.session = &session
}

// Logout clears the claims and the authentication flag.
func (s *Store) Logout() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.isAuthenticated = false
	s.session = nil
}

func (s *Store) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isAuthenticated
}

// Current returns a copy of the session claims, if authenticated.
func (s *Store) Current() (Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isAuthenticated || s.session == nil {
		return Session{}, false
	}
	return *s.session, true
}
