package server

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/employee-lifecycle/portal/internal/client"
	"github.com/employee-lifecycle/portal/internal/models"
	"github.com/employee-lifecycle/portal/internal/session"
)

const (
	sessionKey = "session"
	userKey    = "user"
)

func setSession(c *gin.Context, sess *session.Session) {
	c.Set(sessionKey, sess)
}

// GetSession returns the browser session loaded by sessionMiddleware
func GetSession(c *gin.Context) (*session.Session, bool) {
	value, exists := c.Get(sessionKey)
	if !exists {
		return nil, false
	}

	sess, ok := value.(*session.Session)
	return sess, ok
}

// GetUser returns the user placed in the context by RequireAuth
func GetUser(c *gin.Context) (*models.User, bool) {
	value, exists := c.Get(userKey)
	if !exists {
		return nil, false
	}

	user, ok := value.(*models.User)
	return user, ok
}

// sessionMiddleware loads the browser session named by the session cookie.
// Only routes that need one (the login form) pass create; elsewhere a missing
// or stale cookie leaves the request without a session.
func (s *Server) sessionMiddleware(create bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		var sess *session.Session
		if id, err := c.Cookie(s.config.Session.CookieName); err == nil && id != "" {
			sess, _ = s.sessions.Get(id)
		}

		if sess == nil && !create {
			c.Next()
			return
		}

		if sess == nil {
			created, err := s.sessions.Create()
			if err != nil {
				s.logger.Error().Err(err).Msg("Failed to create portal session")
				c.AbortWithStatus(http.StatusInternalServerError)
				return
			}
			sess = created

			c.SetSameSite(http.SameSiteLaxMode)
			c.SetCookie(s.config.Session.CookieName, sess.ID, 0, "/", "", s.config.Session.CookieSecure, true)
			s.logger.Debug().Str("session_id", sess.ID).Msg("Started portal session")
		}

		setSession(c, sess)
		c.Next()
	}
}

// noStoreMiddleware keeps browsers from replaying authenticated pages after logout
func noStoreMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Cache-Control", "no-store")
		c.Next()
	}
}

// RequireAuth is the protected route guard. It runs on every navigation to a
// guarded route and decides from the session's Auth Store alone, unless
// periodic revalidation against the backend is configured. A request without
// a session is anonymous.
func (s *Server) RequireAuth(requiredRole string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var state session.State
		sess, ok := GetSession(c)
		if ok {
			s.revalidate(c, sess)
			state = sess.Store.State()
		}

		switch Decide(state, requiredRole) {
		case RedirectLogin:
			c.Redirect(http.StatusFound, loginRedirectURL(c.Request.URL.RequestURI()))
			c.Abort()
			return
		case RedirectLanding:
			s.logger.Warn().
				Str("session_id", sess.ID).
				Str("role", state.User.Role).
				Str("required_role", requiredRole).
				Str("path", c.Request.URL.Path).
				Msg("Role not permitted, redirecting to landing page")
			c.Redirect(http.StatusFound, landingPath)
			c.Abort()
			return
		}

		c.Set(userKey, state.User)
		c.Next()
	}
}

// revalidate confirms an authenticated session with the backend when the last
// confirmation is older than the configured interval. A 401 clears the store;
// transport failures keep the cached state.
func (s *Server) revalidate(c *gin.Context, sess *session.Session) {
	interval := s.config.Session.RevalidateInterval
	if interval <= 0 || !sess.Store.IsAuthenticated() {
		return
	}
	if time.Since(sess.ValidatedAt()) < interval {
		return
	}

	svc, err := s.newAuth(sess.Jar)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to build auth service")
		return
	}

	user, err := svc.GetMe(c.Request.Context())
	switch {
	case err == nil:
		if current := sess.Store.User(); current == nil || *current != *user {
			sess.Store.SetUser(*user)
		}
		sess.MarkValidated(time.Now())
	case errors.Is(err, client.ErrUnauthorized):
		s.logger.Info().Str("session_id", sess.ID).Msg("Backend session expired, clearing local state")
		sess.Store.Logout()
	default:
		s.logger.Warn().Err(err).Str("session_id", sess.ID).Msg("Session revalidation failed, keeping cached state")
	}
}

func validFormToken(sess *session.Session, token string) bool {
	expected := sess.FormToken()
	return token != "" && subtle.ConstantTimeCompare([]byte(expected), []byte(token)) == 1
}
