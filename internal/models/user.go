package models

import "strings"

// User identifies the authenticated principal as returned by the backend
type User struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Role      string `json:"role"`
}

// FullName returns "<first> <last>" with surrounding blanks trimmed
func (u User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// HasRole reports whether the user holds the given role
func (u User) HasRole(role string) bool {
	return u.Role == role
}

// Credentials are transient login inputs; they are never stored
type Credentials struct {
	Email    string `validate:"required"`
	Password string `validate:"required"`
}

// LoginResponse is the backend envelope for /auth/login and /auth/me
type LoginResponse struct {
	Success bool  `json:"success"`
	User    *User `json:"user"`
}

// ErrorResponse is the backend envelope for failed requests
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}
