package commands

import (
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/employee-lifecycle/portal/internal/auth"
	cliauth "github.com/employee-lifecycle/portal/internal/cli/auth"
	"github.com/employee-lifecycle/portal/internal/cli/serverselect"
	"github.com/employee-lifecycle/portal/internal/cli/userconfig"
	"github.com/employee-lifecycle/portal/internal/client"
	"github.com/employee-lifecycle/portal/internal/config"
)

const apiBasePath = "/api"

// deps holds what commands need from the outside world so tests can swap it
type deps struct {
	sessions   cliauth.SessionStore
	httpClient *http.Client
	out        io.Writer
	prompter   Prompter
}

// Option configures command dependencies
type Option func(*deps)

// WithSessionStore replaces the OS keyring session store
func WithSessionStore(store cliauth.SessionStore) Option {
	return func(d *deps) { d.sessions = store }
}

// WithHTTPClient sets the HTTP client used to reach the backend
func WithHTTPClient(hc *http.Client) Option {
	return func(d *deps) { d.httpClient = hc }
}

// WithOutput redirects command output
func WithOutput(w io.Writer) Option {
	return func(d *deps) { d.out = w }
}

// WithPrompter replaces the terminal prompts
func WithPrompter(p Prompter) Option {
	return func(d *deps) { d.prompter = p }
}

func newDeps(opts ...Option) *deps {
	d := &deps{
		sessions:   cliauth.Default,
		httpClient: &http.Client{},
		out:        os.Stdout,
		prompter:   terminalPrompter{},
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// getSelectedServer loads the user config and resolves the server to talk to
func getSelectedServer(serverFlag string) (*userconfig.Server, error) {
	cfg, err := userconfig.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load user config: %w", err)
	}

	return serverselect.ResolveServer(cfg, serverFlag)
}

// newAuthService builds an auth service for server, seeded with cookies
func (d *deps) newAuthService(server *userconfig.Server, cookies []*http.Cookie) (*auth.Service, *client.Client, error) {
	backend := config.BackendConfig{URL: server.URL, BasePath: apiBasePath}

	apiClient, err := client.New(backend.APIBaseURL(), client.WithHTTPClient(d.httpClient))
	if err != nil {
		return nil, nil, err
	}

	if len(cookies) > 0 {
		apiClient.SetCookies(cookies)
	}

	return auth.NewService(apiClient), apiClient, nil
}

func serverLabel(server *userconfig.Server) string {
	return fmt.Sprintf("%s (%s)", server.Alias, server.URL)
}
