package server

import (
	"net/url"
	"strings"

	"github.com/employee-lifecycle/portal/internal/session"
)

const (
	loginPath   = "/login"
	landingPath = "/dashboard"
)

// Decision is the outcome of evaluating the route guard
type Decision int

const (
	// Allow lets the navigation through
	Allow Decision = iota
	// RedirectLogin sends an anonymous user to the login page
	RedirectLogin
	// RedirectLanding sends a user lacking the required role to the dashboard
	RedirectLanding
)

func (d Decision) String() string {
	switch d {
	case Allow:
		return "allow"
	case RedirectLogin:
		return "redirect_login"
	case RedirectLanding:
		return "redirect_landing"
	default:
		return "unknown"
	}
}

// Decide evaluates the guard for one navigation. An empty requiredRole only
// requires authentication; otherwise the user's role must match exactly.
func Decide(state session.State, requiredRole string) Decision {
	if !state.IsAuthenticated() {
		return RedirectLogin
	}
	if requiredRole != "" && !state.User.HasRole(requiredRole) {
		return RedirectLanding
	}
	return Allow
}

// loginRedirectURL builds the login URL remembering where the user was headed
func loginRedirectURL(from string) string {
	if from == "" || from == loginPath {
		return loginPath
	}
	return loginPath + "?" + url.Values{"from": {from}}.Encode()
}

// safeReturnPath accepts only same-origin paths, falling back to the landing page
func safeReturnPath(from string) string {
	if from == "" || !strings.HasPrefix(from, "/") {
		return landingPath
	}
	if strings.HasPrefix(from, "//") || strings.HasPrefix(from, `/\`) {
		return landingPath
	}

	u, err := url.Parse(from)
	if err != nil || u.Scheme != "" || u.Host != "" {
		return landingPath
	}
	if u.Path == loginPath {
		return landingPath
	}
	return from
}
