// internal/session/manager.go
package session

import (
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/flasktaskr/flasktaskr/internal/config"
	"github.com/flasktaskr/flasktaskr/internal/models"
)

// Manager keeps session state server-side, keyed by an id that travels to the
// client inside a signed token. The signature only tamper-proofs the cookie;
// identity and flashes never leave the server.
type Manager struct {
	mu         sync.RWMutex
	sessions   map[string]*Session
	secret     []byte
	cookieName string
	ttl        time.Duration
}

func NewManager(cfg config.SessionConfig) *Manager {
	return &Manager{
		sessions:   make(map[string]*Session),
		secret:     []byte(cfg.Secret),
		cookieName: cfg.CookieName,
		ttl:        cfg.TTL,
	}
}

// Resolve returns the session for the request, creating a fresh anonymous one
// when the cookie is absent, expired, or tampered with. It never fails.
func (m *Manager) Resolve(w http.ResponseWriter, r *http.Request) *Session {
	if cookie, err := r.Cookie(m.cookieName); err == nil {
		if id, err := m.verifyToken(cookie.Value); err == nil {
			m.mu.RLock()
			sess, ok := m.sessions[id]
			m.mu.RUnlock()
			if ok && !sess.expired(time.Now().Unix()) {
				return sess
			}
		}
	}

	return m.create(w)
}

// Login binds an authenticated user to the session and rotates the session
// id, so a token handed out before authentication is useless afterwards.
func (m *Manager) Login(w http.ResponseWriter, sess *Session, user *models.User) {
	now := time.Now()
	id := uuid.NewString()

	m.mu.Lock()
	delete(m.sessions, sess.ID())
	sess.rotate(id, now.Add(m.ttl).Unix())
	m.sessions[id] = sess
	m.mu.Unlock()

	sess.bind(user)
	m.setCookie(w, id, now)
}

// Logout clears the identity fields. Logging out an already-anonymous
// session is a no-op, not an error.
func (m *Manager) Logout(sess *Session) {
	sess.clear()
}

func (m *Manager) create(w http.ResponseWriter) *Session {
	now := time.Now()
	sess := &Session{
		id:        uuid.NewString(),
		expiresAt: now.Add(m.ttl).Unix(),
	}

	m.mu.Lock()
	m.prune(now)
	m.sessions[sess.id] = sess
	m.mu.Unlock()

	m.setCookie(w, sess.id, now)
	return sess
}

// prune drops expired sessions. Caller must hold the write lock.
func (m *Manager) prune(now time.Time) {
	for id, sess := range m.sessions {
		if sess.expired(now.Unix()) {
			delete(m.sessions, id)
		}
	}
}

func (m *Manager) setCookie(w http.ResponseWriter, id string, now time.Time) {
	token, err := m.signToken(id, now)
	if err != nil {
		// HS256 signing over static inputs cannot fail at runtime; treat it
		// as a programming error.
		panic(fmt.Sprintf("session: sign token: %v", err))
	}

	http.SetCookie(w, &http.Cookie{
		Name:     m.cookieName,
		Value:    token,
		Path:     "/",
		Expires:  now.Add(m.ttl),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func (m *Manager) signToken(id string, now time.Time) (string, error) {
	claims := jwt.RegisteredClaims{
		Subject:   id,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
}

func (m *Manager) verifyToken(token string) (string, error) {
	parsed, err := jwt.ParseWithClaims(token, &jwt.RegisteredClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil {
		return "", fmt.Errorf("parse session token: %w", err)
	}

	claims, ok := parsed.Claims.(*jwt.RegisteredClaims)
	if !ok || !parsed.Valid || claims.Subject == "" {
		return "", errors.New("invalid session token")
	}

	return claims.Subject, nil
}
