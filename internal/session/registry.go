package session

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	"github.com/employee-lifecycle/portal/internal/assert"
)

const (
	sessionIDLength = 26 // Crockford base32 ULID
	formTokenLength = 64 // hex of 32 random bytes
)

// Session is the portal-side state of one browser: its Auth Store and the
// cookie jar holding the backend session and XSRF-TOKEN cookies
type Session struct {
	ID    string
	Store *Store
	Jar   http.CookieJar

	mu          sync.Mutex
	formToken   string
	lastSeen    time.Time
	validatedAt time.Time
	submitting  bool
	unsubscribe func()
}

// FormToken returns the anti-forgery token embedded in the portal's forms
func (s *Session) FormToken() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.formToken
}

// RotateFormToken replaces the form token, invalidating forms rendered earlier
func (s *Session) RotateFormToken() (string, error) {
	token, err := newFormToken()
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	s.formToken = token
	s.mu.Unlock()
	return token, nil
}

// BeginSubmit marks a login submission in flight. It returns false when one
// is already running, which is the portal's equivalent of a disabled submit button.
func (s *Session) BeginSubmit() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.submitting {
		return false
	}
	s.submitting = true
	return true
}

// EndSubmit re-enables submission
func (s *Session) EndSubmit() {
	s.mu.Lock()
	s.submitting = false
	s.mu.Unlock()
}

// ValidatedAt returns when the backend last confirmed the session
func (s *Session) ValidatedAt() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.validatedAt
}

// MarkValidated records a successful backend confirmation (login or profile fetch)
func (s *Session) MarkValidated(at time.Time) {
	s.mu.Lock()
	s.validatedAt = at
	s.mu.Unlock()
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

func (s *Session) idleSince(now time.Time) time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return now.Sub(s.lastSeen)
}

// Registry maps browser session IDs to their Session
type Registry struct {
	mu          sync.Mutex
	sessions    map[string]*Session
	idleTimeout time.Duration
	logger      zerolog.Logger
	now         func() time.Time
}

// NewRegistry creates an empty registry evicting sessions idle for longer than idleTimeout
func NewRegistry(idleTimeout time.Duration, logger zerolog.Logger) *Registry {
	return &Registry{
		sessions:    make(map[string]*Session),
		idleTimeout: idleTimeout,
		logger:      logger,
		now:         time.Now,
	}
}

// Create starts a new unauthenticated session
func (r *Registry) Create() (*Session, error) {
	now := r.now()

	id, err := ulid.New(ulid.Timestamp(now), rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("failed to generate session id: %w", err)
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}

	token, err := newFormToken()
	if err != nil {
		return nil, err
	}

	assert.Length(id.String(), sessionIDLength)
	assert.Length(token, formTokenLength)

	sess := &Session{
		ID:        id.String(),
		Store:     NewStore(),
		Jar:       jar,
		formToken: token,
		lastSeen:  now,
	}

	sessionLog := r.logger.With().Str("session_id", sess.ID).Logger()
	sess.unsubscribe = sess.Store.Subscribe(func(state State) {
		if state.IsAuthenticated() {
			sessionLog.Info().
				Str("user_id", state.User.ID).
				Str("role", state.User.Role).
				Msg("Session authenticated")
			return
		}
		sessionLog.Info().Msg("Session cleared")
	})

	r.mu.Lock()
	r.sessions[sess.ID] = sess
	r.mu.Unlock()

	return sess, nil
}

// Get returns the live session for id and refreshes its idle timer.
// Sessions past their idle timeout are evicted and reported as missing.
func (r *Registry) Get(id string) (*Session, bool) {
	now := r.now()

	r.mu.Lock()
	sess, ok := r.sessions[id]
	if ok && sess.idleSince(now) > r.idleTimeout {
		delete(r.sessions, id)
		ok = false
	}
	r.mu.Unlock()

	if !ok {
		if sess != nil {
			sess.unsubscribe()
		}
		return nil, false
	}

	sess.touch(now)
	return sess, true
}

// Delete drops a session
func (r *Registry) Delete(id string) {
	r.mu.Lock()
	sess, ok := r.sessions[id]
	delete(r.sessions, id)
	r.mu.Unlock()

	if ok {
		sess.unsubscribe()
	}
}

// Len returns the number of tracked sessions
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Sweep evicts idle sessions and returns how many were removed
func (r *Registry) Sweep() int {
	now := r.now()

	var expired []*Session
	r.mu.Lock()
	for id, sess := range r.sessions {
		if sess.idleSince(now) > r.idleTimeout {
			expired = append(expired, sess)
			delete(r.sessions, id)
		}
	}
	r.mu.Unlock()

	for _, sess := range expired {
		sess.unsubscribe()
	}
	return len(expired)
}

func newFormToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate form token: %w", err)
	}
	return hex.EncodeToString(b), nil
}
