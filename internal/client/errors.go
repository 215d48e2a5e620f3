package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/employee-lifecycle/portal/internal/models"
)

var (
	// ErrUnauthorized matches 401 responses (bad credentials or expired session)
	ErrUnauthorized = errors.New("unauthorized")
	// ErrValidation matches backend-reported form errors and local credential checks
	ErrValidation = errors.New("validation failed")
	// ErrTimeout matches requests that did not complete within the client timeout
	ErrTimeout = errors.New("request timed out")
)

// NetworkError wraps transport failures (timeouts, refused connections, DNS)
type NetworkError struct {
	Method string
	URL    string
	Err    error
}

func (e *NetworkError) Error() string {
	if e.Timeout() {
		return fmt.Sprintf("%s %s: request timed out: %v", e.Method, e.URL, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Method, e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// Is lets errors.Is(err, ErrTimeout) match timed out requests
func (e *NetworkError) Is(target error) bool {
	return target == ErrTimeout && e.Timeout()
}

// Timeout reports whether the request failed because a deadline was exceeded
func (e *NetworkError) Timeout() bool {
	var te interface{ Timeout() bool }
	if errors.As(e.Err, &te) && te.Timeout() {
		return true
	}
	return errors.Is(e.Err, context.DeadlineExceeded)
}

// APIError is returned for any non-2xx backend response
type APIError struct {
	StatusCode int
	Message    string // backend "error" field, may be empty
	Body       []byte
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("backend returned status %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("backend returned status %d", e.StatusCode)
}

// Unwrap maps the status code onto the error taxonomy
func (e *APIError) Unwrap() error {
	switch e.StatusCode {
	case http.StatusUnauthorized:
		return ErrUnauthorized
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return ErrValidation
	default:
		return nil
	}
}

// ValidationError is a locally detected credential problem
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func (e *ValidationError) Unwrap() error { return ErrValidation }

func newAPIError(statusCode int, body []byte) *APIError {
	apiErr := &APIError{StatusCode: statusCode, Body: body}

	var envelope models.ErrorResponse
	if err := json.Unmarshal(body, &envelope); err == nil {
		apiErr.Message = strings.TrimSpace(envelope.Error)
	}
	return apiErr
}

// ErrorMessage extracts a human-readable message from err, falling back to fallback
func ErrorMessage(err error, fallback string) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}

	var validationErr *ValidationError
	if errors.As(err, &validationErr) && validationErr.Message != "" {
		return validationErr.Message
	}

	return fallback
}
