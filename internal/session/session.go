// internal/session/session.go
package session

import (
	"sync"

	"github.com/flasktaskr/flasktaskr/internal/models"
)

// Session is the server-tracked state for one client. The manager hands the
// same pointer to every concurrent request bearing the cookie, so all access
// goes through the mutex.
type Session struct {
	mu            sync.Mutex
	id            string
	expiresAt     int64
	authenticated bool
	userID        int64
	role          models.Role
	name          string
	flashes       []string
}

// ID returns the server-side session identifier.
func (s *Session) ID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.id
}

// Identity is the snapshot the access-control policy evaluates.
func (s *Session) Identity() models.Identity {
	s.mu.Lock()
	defer s.mu.Unlock()
	return models.Identity{
		Authenticated: s.authenticated,
		UserID:        s.userID,
		Role:          s.role,
		Name:          s.name,
	}
}

// Flash queues a single-use notice for the next rendered page.
func (s *Session) Flash(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.flashes = append(s.flashes, msg)
}

// PopFlashes drains the queued notices. Each notice is shown exactly once.
func (s *Session) PopFlashes() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	flashes := s.flashes
	s.flashes = nil
	return flashes
}

func (s *Session) bind(user *models.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.authenticated = true
	s.userID = user.ID
	s.role = user.Role
	s.name = user.Name
}

func (s *Session) clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.authenticated = false
	s.userID = 0
	s.role = ""
	s.name = ""
}

func (s *Session) rotate(id string, expiresAt int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.id = id
	s.expiresAt = expiresAt
}

func (s *Session) expired(now int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.expiresAt <= now
}
