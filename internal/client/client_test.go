package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// csrfBackend issues a session cookie plus an XSRF-TOKEN cookie on GET /api/csrf
// and records the headers of every other request
func csrfBackend(t *testing.T, seen chan<- *http.Request) *httptest.Server {
	t.Helper()

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/csrf" {
			http.SetCookie(w, &http.Cookie{Name: "JSESSIONID", Value: "sess-1", Path: "/", HttpOnly: true})
			http.SetCookie(w, &http.Cookie{Name: CSRFCookieName, Value: "csrf-abc", Path: "/"})
			w.WriteHeader(http.StatusNoContent)
			return
		}
		seen <- r.Clone(context.Background())
		w.WriteHeader(http.StatusOK)
	}))
}

func TestNew_RejectsRelativeBaseURL(t *testing.T) {
	_, err := New("/api")
	assert.Error(t, err)

	c, err := New("http://backend.test/api/")
	require.NoError(t, err)
	req, err := c.NewRequest(context.Background(), http.MethodGet, "/auth/me", nil)
	require.NoError(t, err)
	assert.Equal(t, "http://backend.test/api/auth/me", req.URL.String())
}

func TestClient_EchoesCSRFTokenOnStateChangingRequests(t *testing.T) {
	seen := make(chan *http.Request, 2)
	srv := csrfBackend(t, seen)
	defer srv.Close()

	c, err := New(srv.URL + "/api")
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, c.Get(ctx, "/csrf", nil))
	assert.Equal(t, "csrf-abc", c.CSRFToken())

	require.NoError(t, c.Get(ctx, "/auth/me", nil))
	get := <-seen
	assert.Empty(t, get.Header.Get(CSRFHeaderName))
	sessionCookie, err := get.Cookie("JSESSIONID")
	require.NoError(t, err)
	assert.Equal(t, "sess-1", sessionCookie.Value)

	require.NoError(t, c.Post(ctx, "/auth/logout", nil))
	post := <-seen
	assert.Equal(t, "csrf-abc", post.Header.Get(CSRFHeaderName))
	assert.Equal(t, "/api/auth/logout", post.URL.Path)
}

func TestClient_NoCSRFHeaderWithoutCookie(t *testing.T) {
	seen := make(chan *http.Request, 1)
	srv := csrfBackend(t, seen)
	defer srv.Close()

	c, err := New(srv.URL + "/api")
	require.NoError(t, err)

	require.NoError(t, c.PostForm(context.Background(), "/auth/login", url.Values{"email": {"a@b.c"}}, nil))
	req := <-seen
	assert.Empty(t, req.Header.Get(CSRFHeaderName))
	assert.Equal(t, "application/x-www-form-urlencoded", req.Header.Get("Content-Type"))
}

func TestClient_MapsErrorStatuses(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        string
		sentinel    error
		wantMessage string
	}{
		{name: "unauthorized", status: http.StatusUnauthorized, body: `{"success":false,"error":"Invalid credentials"}`, sentinel: ErrUnauthorized, wantMessage: "Invalid credentials"},
		{name: "unauthorized empty body", status: http.StatusUnauthorized, body: ``, sentinel: ErrUnauthorized, wantMessage: "fallback"},
		{name: "validation", status: http.StatusBadRequest, body: `{"success":false,"error":"Email is required"}`, sentinel: ErrValidation, wantMessage: "Email is required"},
		{name: "unprocessable", status: http.StatusUnprocessableEntity, body: `{"error":"bad form"}`, sentinel: ErrValidation, wantMessage: "bad form"},
		{name: "server error html", status: http.StatusInternalServerError, body: `<html>oops</html>`, sentinel: nil, wantMessage: "fallback"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			c, err := New(srv.URL + "/api")
			require.NoError(t, err)

			err = c.Get(context.Background(), "/auth/me", nil)
			require.Error(t, err)

			var apiErr *APIError
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, tt.status, apiErr.StatusCode)
			if tt.sentinel != nil {
				assert.ErrorIs(t, err, tt.sentinel)
			} else {
				assert.NotErrorIs(t, err, ErrUnauthorized)
				assert.NotErrorIs(t, err, ErrValidation)
			}
			assert.Equal(t, tt.wantMessage, ErrorMessage(err, "fallback"))
		})
	}
}

func TestClient_TimeoutIsNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(time.Second):
		}
	}))
	defer srv.Close()

	c, err := New(srv.URL+"/api", WithTimeout(50*time.Millisecond))
	require.NoError(t, err)

	err = c.Get(context.Background(), "/auth/me", nil)
	require.Error(t, err)

	var netErr *NetworkError
	require.True(t, errors.As(err, &netErr))
	assert.True(t, netErr.Timeout())
	assert.ErrorIs(t, err, ErrTimeout)
}

func TestClient_ConnectionRefusedIsNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	addr := srv.URL
	srv.Close()

	c, err := New(addr + "/api")
	require.NoError(t, err)

	err = c.Post(context.Background(), "/auth/logout", nil)

	var netErr *NetworkError
	require.True(t, errors.As(err, &netErr))
	assert.False(t, netErr.Timeout())
	assert.NotErrorIs(t, err, ErrTimeout)
}

func TestClient_SetCookiesRestoresSession(t *testing.T) {
	seen := make(chan *http.Request, 1)
	srv := csrfBackend(t, seen)
	defer srv.Close()

	c, err := New(srv.URL + "/api")
	require.NoError(t, err)
	c.SetCookies([]*http.Cookie{{Name: "JSESSIONID", Value: "restored"}, {Name: CSRFCookieName, Value: "tok"}})

	require.NoError(t, c.Post(context.Background(), "/auth/logout", nil))
	req := <-seen
	cookie, err := req.Cookie("JSESSIONID")
	require.NoError(t, err)
	assert.Equal(t, "restored", cookie.Value)
	assert.Equal(t, "tok", req.Header.Get(CSRFHeaderName))
}
