package server

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/employee-lifecycle/portal/internal/models"
	"github.com/employee-lifecycle/portal/internal/session"
)

func TestDecide(t *testing.T) {
	hr := &models.User{ID: "1", Email: "hr@test.com", Role: "HR"}

	tests := []struct {
		name     string
		state    session.State
		role     string
		expected Decision
	}{
		{name: "anonymous", state: session.State{}, expected: RedirectLogin},
		{name: "anonymous with role", state: session.State{}, role: "HR", expected: RedirectLogin},
		{name: "authenticated", state: session.State{User: hr}, expected: Allow},
		{name: "matching role", state: session.State{User: hr}, role: "HR", expected: Allow},
		{name: "role mismatch", state: session.State{User: hr}, role: "ADMIN", expected: RedirectLanding},
		{name: "role is case sensitive", state: session.State{User: hr}, role: "hr", expected: RedirectLanding},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Decide(tt.state, tt.role))
		})
	}
}

func TestSafeReturnPath(t *testing.T) {
	tests := map[string]string{
		"":                          landingPath,
		"/dashboard?tab=1":          "/dashboard?tab=1",
		"/employees/42":             "/employees/42",
		"dashboard":                 landingPath,
		"//evil.example.com":        landingPath,
		`/\evil.example.com`:        landingPath,
		"https://evil.example.com/": landingPath,
		"/login":                    landingPath,
		"/login?from=/dashboard":    landingPath,
	}

	for from, expected := range tests {
		assert.Equal(t, expected, safeReturnPath(from), "from=%q", from)
	}
}

func TestLoginRedirectURL(t *testing.T) {
	assert.Equal(t, "/login", loginRedirectURL(""))
	assert.Equal(t, "/login", loginRedirectURL("/login"))
	assert.Equal(t, "/login?from=%2Fdashboard%3Ftab%3D1", loginRedirectURL("/dashboard?tab=1"))
}

func TestDecisionString(t *testing.T) {
	assert.Equal(t, "allow", Allow.String())
	assert.Equal(t, "redirect_login", RedirectLogin.String())
	assert.Equal(t, "redirect_landing", RedirectLanding.String())
}
