// Package testutil provides a fake authentication backend for tests.
package testutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"

	"github.com/employee-lifecycle/portal/internal/models"
)

const (
	SessionCookie = "JSESSIONID"
	CSRFCookie    = "XSRF-TOKEN"
	CSRFHeader    = "X-XSRF-TOKEN"
)

// HRUser is the seeded user matching hr@test.com / password123
var HRUser = models.User{
	ID:        "5f0c7c1e-0d0e-4c57-9b0a-6a1f7f5b2f10",
	Email:     "hr@test.com",
	FirstName: "Helen",
	LastName:  "Reyes",
	Role:      "HR",
}

// Backend is an in-memory stand-in for the session-cookie authentication server.
// It issues a session cookie and a readable XSRF-TOKEN cookie on login and
// rejects logout requests whose X-XSRF-TOKEN header does not match.
type Backend struct {
	*httptest.Server

	mu        sync.Mutex
	users     map[string]backendUser
	sessions  map[string]models.User
	nextID    int
	logins    int
	logouts   int
	meCalls   int
	lastForm  url.Values
	lastCType string
}

type backendUser struct {
	password string
	user     models.User
}

// NewBackend starts a fake backend seeded with HRUser; it is closed on test cleanup
func NewBackend(t *testing.T) *Backend {
	t.Helper()

	b := &Backend{
		users:    map[string]backendUser{},
		sessions: map[string]models.User{},
	}
	b.AddUser(HRUser, "password123")

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/auth/login", b.login)
	mux.HandleFunc("POST /api/auth/logout", b.logout)
	mux.HandleFunc("GET /api/auth/me", b.me)
	b.Server = httptest.NewServer(mux)
	t.Cleanup(b.Server.Close)

	return b
}

// APIURL returns the API root of the backend
func (b *Backend) APIURL() string {
	return b.URL + "/api"
}

// AddUser registers credentials for user
func (b *Backend) AddUser(user models.User, password string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.users[user.Email] = backendUser{password: password, user: user}
}

// ExpireSessions invalidates every issued session, as a server-side timeout would
func (b *Backend) ExpireSessions() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.sessions = map[string]models.User{}
}

// ActiveSessions returns the number of live sessions
func (b *Backend) ActiveSessions() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.sessions)
}

// Calls returns how many login, logout and me requests were received
func (b *Backend) Calls() (logins, logouts, me int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.logins, b.logouts, b.meCalls
}

// LastLogin returns the form and content type of the latest login request
func (b *Backend) LastLogin() (url.Values, string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.lastForm, b.lastCType
}

func (b *Backend) login(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.logins++

	if err := r.ParseForm(); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Malformed form"})
		return
	}
	b.lastForm = r.PostForm
	b.lastCType = r.Header.Get("Content-Type")

	entry, ok := b.users[r.PostForm.Get("email")]
	if !ok || entry.password != r.PostForm.Get("password") {
		writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Success: false, Error: "Invalid credentials"})
		return
	}

	b.nextID++
	sessionID := fmt.Sprintf("session-%d", b.nextID)
	b.sessions[sessionID] = entry.user

	http.SetCookie(w, &http.Cookie{Name: SessionCookie, Value: sessionID, Path: "/", HttpOnly: true})
	http.SetCookie(w, &http.Cookie{Name: CSRFCookie, Value: "csrf-" + sessionID, Path: "/"})
	user := entry.user
	writeJSON(w, http.StatusOK, models.LoginResponse{Success: true, User: &user})
}

func (b *Backend) logout(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.logouts++

	csrf, err := r.Cookie(CSRFCookie)
	if err == nil && r.Header.Get(CSRFHeader) != csrf.Value {
		writeJSON(w, http.StatusForbidden, models.ErrorResponse{Error: "Invalid CSRF token"})
		return
	}

	if cookie, err := r.Cookie(SessionCookie); err == nil {
		delete(b.sessions, cookie.Value)
	}
	http.SetCookie(w, &http.Cookie{Name: SessionCookie, Value: "", Path: "/", MaxAge: -1})
	w.WriteHeader(http.StatusOK)
}

func (b *Backend) me(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.meCalls++

	cookie, err := r.Cookie(SessionCookie)
	if err != nil {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}
	user, ok := b.sessions[cookie.Value]
	if !ok {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}
	writeJSON(w, http.StatusOK, models.LoginResponse{Success: true, User: &user})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
