package service

import "sync"

// Session holds the encryption password of the signed-in user between login
// and logout. It is created by the application and shared by the services;
// nothing else keeps the password.
type Session struct {
	mu       sync.RWMutex
	password string
}

// NewSession returns an empty session.
func NewSession() *Session {
	return &Session{}
}

// SetPassword replaces the session secret. An empty password clears it.
func (s *Session) SetPassword(password string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.password = password
}

// Password returns the session secret and whether one is set.
func (s *Session) Password() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.password, s.password != ""
}

// Clear drops the session secret.
func (s *Session) Clear() {
	s.SetPassword("")
}
