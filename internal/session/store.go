package session

import (
	"sync"

	"github.com/employee-lifecycle/portal/internal/models"
)

// State is a read-only snapshot of a Store
type State struct {
	User *models.User
}

// IsAuthenticated is derived from the presence of a user; there is no separate flag
func (s State) IsAuthenticated() bool {
	return s.User != nil
}

// Store is the single source of truth for one browser's authentication state.
// Mutations are local only; no network calls happen here.
type Store struct {
	mu        sync.RWMutex
	user      *models.User
	listeners map[int]func(State)
	nextID    int
}

// NewStore returns an empty, unauthenticated store
func NewStore() *Store {
	return &Store{listeners: make(map[int]func(State))}
}

// SetUser replaces the current user wholesale and marks the store authenticated
func (s *Store) SetUser(user models.User) {
	s.mu.Lock()
	s.user = &user
	state, listeners := s.snapshotLocked()
	s.mu.Unlock()

	notify(listeners, state)
}

// Logout clears the user. Calling it on an empty store is a no-op.
func (s *Store) Logout() {
	s.mu.Lock()
	s.user = nil
	state, listeners := s.snapshotLocked()
	s.mu.Unlock()

	notify(listeners, state)
}

// User returns a copy of the current user, or nil
func (s *Store) User() *models.User {
	return s.State().User
}

// IsAuthenticated reports whether a user is present
func (s *Store) IsAuthenticated() bool {
	return s.State().IsAuthenticated()
}

// State returns a snapshot safe to read without holding the lock
func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.user == nil {
		return State{}
	}
	user := *s.user
	return State{User: &user}
}

// Subscribe registers fn to be called after every transition and returns a function removing it
func (s *Store) Subscribe(fn func(State)) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

func (s *Store) snapshotLocked() (State, []func(State)) {
	var state State
	if s.user != nil {
		user := *s.user
		state.User = &user
	}

	listeners := make([]func(State), 0, len(s.listeners))
	for _, fn := range s.listeners {
		listeners = append(listeners, fn)
	}
	return state, listeners
}

func notify(listeners []func(State), state State) {
	for _, fn := range listeners {
		fn(state)
	}
}
