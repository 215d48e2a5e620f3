package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/employee-lifecycle/portal/internal/client"
	"github.com/employee-lifecycle/portal/internal/models"
	"github.com/employee-lifecycle/portal/internal/session"
)

const (
	msgLoginFailed     = "Login failed. Please try again."
	msgLoginInProgress = "A login attempt is already in progress."
	msgFormExpired     = "Your session has expired. Please try again."
)

// LoginForm represents the login form submission
type LoginForm struct {
	Email      string `form:"email"`
	Password   string `form:"password"`
	RememberMe bool   `form:"rememberMe"`
	From       string `form:"from"`
	Token      string `form:"_token"`
}

type loginView struct {
	Title      string
	Error      string
	FormToken  string
	From       string
	Email      string
	RememberMe bool
	Submitting bool
}

type dashboardView struct {
	Title     string
	User      *models.User
	FormToken string
}

func (s *Server) renderLogin(c *gin.Context, status int, sess *session.Session, view loginView) {
	view.Title = "Login"
	view.FormToken = sess.FormToken()
	c.HTML(status, "login.html", view)
}

// loginPage renders the login form, or skips it for an already authenticated browser
func (s *Server) loginPage(c *gin.Context) {
	sess, _ := GetSession(c)
	from := c.Query("from")

	if sess.Store.IsAuthenticated() {
		c.Redirect(http.StatusFound, safeReturnPath(from))
		return
	}

	s.renderLogin(c, http.StatusOK, sess, loginView{From: from})
}

// submitLogin handles the login form. The password is never echoed back.
func (s *Server) submitLogin(c *gin.Context) {
	sess, _ := GetSession(c)

	var form LoginForm
	if err := c.ShouldBind(&form); err != nil {
		s.renderLogin(c, http.StatusBadRequest, sess, loginView{Error: msgLoginFailed})
		return
	}

	view := loginView{
		From:       form.From,
		Email:      form.Email,
		RememberMe: form.RememberMe,
	}

	if !validFormToken(sess, form.Token) {
		s.logger.Warn().Str("session_id", sess.ID).Msg("Login form token mismatch")
		view.Error = msgFormExpired
		s.renderLogin(c, http.StatusForbidden, sess, view)
		return
	}

	if !sess.BeginSubmit() {
		view.Error = msgLoginInProgress
		view.Submitting = true
		s.renderLogin(c, http.StatusConflict, sess, view)
		return
	}
	defer sess.EndSubmit()

	svc, err := s.newAuth(sess.Jar)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to build auth service")
		view.Error = msgLoginFailed
		s.renderLogin(c, http.StatusInternalServerError, sess, view)
		return
	}

	// Remember me is captured but the backend has no use for it yet
	s.logger.Debug().Str("session_id", sess.ID).Bool("remember_me", form.RememberMe).Msg("Login attempt")

	user, err := svc.Login(c.Request.Context(), models.Credentials{
		Email:    form.Email,
		Password: form.Password,
	})
	if err != nil {
		status := loginFailureStatus(err)
		s.logger.Info().Err(err).Str("session_id", sess.ID).Int("status", status).Msg("Login failed")
		view.Error = client.ErrorMessage(err, msgLoginFailed)
		s.renderLogin(c, status, sess, view)
		return
	}

	sess.Store.SetUser(*user)
	sess.MarkValidated(time.Now())
	if _, err := sess.RotateFormToken(); err != nil {
		s.logger.Error().Err(err).Str("session_id", sess.ID).Msg("Failed to rotate form token")
	}

	s.logger.Info().Str("session_id", sess.ID).Str("user_id", user.ID).Str("role", user.Role).Msg("User logged in")
	c.Redirect(http.StatusFound, safeReturnPath(form.From))
}

func loginFailureStatus(err error) int {
	var netErr *client.NetworkError
	switch {
	case errors.Is(err, client.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, client.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.As(err, &netErr):
		return http.StatusBadGateway
	}

	var apiErr *client.APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode < http.StatusInternalServerError {
		return http.StatusUnauthorized
	}
	return http.StatusBadGateway
}

// dashboardPage renders the placeholder dashboard for the guarded user
func (s *Server) dashboardPage(c *gin.Context) {
	sess, _ := GetSession(c)
	user, ok := GetUser(c)
	if !ok {
		c.Redirect(http.StatusFound, loginPath)
		return
	}

	c.HTML(http.StatusOK, "dashboard.html", dashboardView{
		Title:     "Dashboard",
		User:      user,
		FormToken: sess.FormToken(),
	})
}

// logout is the two-step protocol: a best-effort backend call followed by an
// unconditional local clear. It is safe to call repeatedly; the form token is
// only checked while there is a login to end.
func (s *Server) logout(c *gin.Context) {
	sess, ok := GetSession(c)
	if !ok {
		c.Redirect(http.StatusFound, loginPath)
		return
	}

	wasAuthenticated := sess.Store.IsAuthenticated()
	if wasAuthenticated {
		if !validFormToken(sess, c.PostForm("_token")) {
			s.logger.Warn().Str("session_id", sess.ID).Msg("Logout form token mismatch")
			c.String(http.StatusForbidden, msgFormExpired)
			return
		}

		svc, err := s.newAuth(sess.Jar)
		if err == nil {
			err = svc.Logout(c.Request.Context())
		}
		if err != nil {
			s.logger.Warn().Err(err).Str("session_id", sess.ID).Msg("Backend logout failed, clearing local session anyway")
		}
	}

	sess.Store.Logout()
	if wasAuthenticated {
		if _, err := sess.RotateFormToken(); err != nil {
			s.logger.Error().Err(err).Str("session_id", sess.ID).Msg("Failed to rotate form token")
		}
	}

	c.Redirect(http.StatusFound, loginPath)
}
