package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/zalando/go-keyring"
)

const (
	service = "lifecycle-cli"
)

// ErrNotAuthenticated is returned when no session is stored for a server
var ErrNotAuthenticated = errors.New("not authenticated. Please run 'lifecycle login' first")

// SessionStore persists backend session cookies per server.
// This allows us to mock the keyring in tests.
type SessionStore interface {
	SaveSession(serverURL string, cookies []*http.Cookie) error
	LoadSession(serverURL string) ([]*http.Cookie, error)
	DeleteSession(serverURL string) error
}

// storedCookie keeps only what is needed to replay a cookie to the same server
type storedCookie struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// keyringStore implements SessionStore using the OS keyring
type keyringStore struct{}

// Default is the OS keychain/credential manager backed store
var Default SessionStore = keyringStore{}

// getKeyringKey returns a unique key for storing session cookies per server
func getKeyringKey(serverURL string) string {
	return fmt.Sprintf("session-%s", serverURL)
}

// SaveSession persists the backend cookies securely in the OS keychain/credential manager
func (keyringStore) SaveSession(serverURL string, cookies []*http.Cookie) error {
	stored := make([]storedCookie, 0, len(cookies))
	for _, c := range cookies {
		stored = append(stored, storedCookie{Name: c.Name, Value: c.Value})
	}

	data, err := json.Marshal(stored)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}

	if err := keyring.Set(service, getKeyringKey(serverURL), string(data)); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// LoadSession retrieves the backend cookies from the OS keychain/credential manager
func (keyringStore) LoadSession(serverURL string) ([]*http.Cookie, error) {
	data, err := keyring.Get(service, getKeyringKey(serverURL))
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return nil, ErrNotAuthenticated
		}
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	var stored []storedCookie
	if err := json.Unmarshal([]byte(data), &stored); err != nil {
		return nil, fmt.Errorf("failed to decode stored session: %w", err)
	}

	cookies := make([]*http.Cookie, 0, len(stored))
	for _, c := range stored {
		cookies = append(cookies, &http.Cookie{Name: c.Name, Value: c.Value})
	}
	return cookies, nil
}

// DeleteSession removes the backend cookies from the OS keychain/credential manager
func (keyringStore) DeleteSession(serverURL string) error {
	if err := keyring.Delete(service, getKeyringKey(serverURL)); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return nil // Already deleted
		}
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}
