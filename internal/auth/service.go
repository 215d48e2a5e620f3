package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/go-playground/validator/v10"

	"github.com/employee-lifecycle/portal/internal/client"
	"github.com/employee-lifecycle/portal/internal/models"
)

const (
	loginPath  = "/auth/login"
	logoutPath = "/auth/logout"
	mePath     = "/auth/me"
)

var validate = validator.New()

// envelope accepts both the success and the failure shape of the backend body
type envelope struct {
	models.LoginResponse
	Error string `json:"error"`
}

// Service performs the backend authentication calls for one cookie jar.
// It does not catch transport errors; callers decide how to recover.
type Service struct {
	client *client.Client
}

// NewService creates an auth service on top of an API client
func NewService(c *client.Client) *Service {
	return &Service{client: c}
}

// Login submits credentials as a form (not JSON) and returns the authenticated user
func (s *Service) Login(ctx context.Context, creds models.Credentials) (*models.User, error) {
	if err := validateCredentials(creds); err != nil {
		return nil, err
	}

	form := url.Values{}
	form.Set("email", creds.Email)
	form.Set("password", creds.Password)

	var resp envelope
	if err := s.client.PostForm(ctx, loginPath, form, &resp); err != nil {
		return nil, fmt.Errorf("login failed: %w", err)
	}

	return userFromResponse(resp)
}

// Logout asks the backend to invalidate the current session
func (s *Service) Logout(ctx context.Context) error {
	if err := s.client.Post(ctx, logoutPath, nil); err != nil {
		return fmt.Errorf("logout failed: %w", err)
	}
	return nil
}

// GetMe fetches the user of the current session; it fails with client.ErrUnauthorized without one
func (s *Service) GetMe(ctx context.Context) (*models.User, error) {
	var resp envelope
	if err := s.client.Get(ctx, mePath, &resp); err != nil {
		return nil, fmt.Errorf("failed to fetch current user: %w", err)
	}

	return userFromResponse(resp)
}

func userFromResponse(resp envelope) (*models.User, error) {
	if !resp.Success || resp.User == nil {
		message := resp.Error
		if message == "" {
			message = "unexpected response from authentication server"
		}
		return nil, &client.APIError{StatusCode: http.StatusOK, Message: message}
	}
	user := *resp.User
	return &user, nil
}

func validateCredentials(creds models.Credentials) error {
	err := validate.Struct(creds)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return &client.ValidationError{Message: "Invalid credentials format"}
	}

	// Format rules belong to the backend; only presence is checked here
	if fieldErrs[0].Field() == "Email" {
		return &client.ValidationError{Message: "Email is required"}
	}
	return &client.ValidationError{Message: "Password is required"}
}
