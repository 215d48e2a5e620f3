package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"
)

const (
	// DefaultTimeout bounds every request made through the client
	DefaultTimeout = 30 * time.Second

	// CSRFCookieName is the readable anti-forgery cookie set by the backend
	CSRFCookieName = "XSRF-TOKEN"
	// CSRFHeaderName carries the echoed token on state-changing requests
	CSRFHeaderName = "X-XSRF-TOKEN"

	maxResponseBody = 1 << 20
)

// Client represents an HTTP client for the backend API.
// Every request carries the cookies held in its jar, and state-changing
// requests echo the XSRF-TOKEN cookie back as the X-XSRF-TOKEN header.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
}

type options struct {
	httpClient *http.Client
	jar        http.CookieJar
	timeout    time.Duration
}

// Option configures a Client
type Option func(*options)

// WithHTTPClient uses a copy of hc as the underlying transport client
func WithHTTPClient(hc *http.Client) Option {
	return func(o *options) { o.httpClient = hc }
}

// WithCookieJar sets the jar holding the backend session and CSRF cookies
func WithCookieJar(jar http.CookieJar) Option {
	return func(o *options) { o.jar = jar }
}

// WithTimeout overrides DefaultTimeout
func WithTimeout(d time.Duration) Option {
	return func(o *options) { o.timeout = d }
}

// New creates a new API client rooted at baseURL (backend origin plus API root, e.g. http://localhost:8080/api)
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid base URL %q: %w", baseURL, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("base URL must be absolute, got %q", baseURL)
	}

	o := options{timeout: DefaultTimeout}
	for _, opt := range opts {
		opt(&o)
	}

	httpClient := &http.Client{}
	if o.httpClient != nil {
		copied := *o.httpClient
		httpClient = &copied
	}
	if o.timeout > 0 {
		httpClient.Timeout = o.timeout
	}

	switch {
	case o.jar != nil:
		httpClient.Jar = o.jar
	case httpClient.Jar == nil:
		jar, err := cookiejar.New(nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create cookie jar: %w", err)
		}
		httpClient.Jar = jar
	}

	return &Client{baseURL: u, httpClient: httpClient}, nil
}

// Cookies returns the cookies the jar would send to the API root
func (c *Client) Cookies() []*http.Cookie {
	return c.httpClient.Jar.Cookies(c.baseURL)
}

// SetCookies stores cookies for the API root, e.g. a restored session
func (c *Client) SetCookies(cookies []*http.Cookie) {
	c.httpClient.Jar.SetCookies(c.baseURL, cookies)
}

// CSRFToken returns the current XSRF-TOKEN cookie value, or "" if none was issued
func (c *Client) CSRFToken() string {
	for _, cookie := range c.Cookies() {
		if cookie.Name == CSRFCookieName {
			return cookie.Value
		}
	}
	return ""
}

// NewRequest builds a request against path, relative to the API root
func (c *Client) NewRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	endpoint := c.baseURL.String() + "/" + strings.TrimLeft(path, "/")

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if isStateChanging(method) {
		if token := c.CSRFToken(); token != "" {
			req.Header.Set(CSRFHeaderName, token)
		}
	}

	return req, nil
}

// Do sends req and decodes a JSON response body into out (when out is non-nil).
// Transport failures are returned as *NetworkError, non-2xx responses as *APIError.
func (c *Client) Do(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &NetworkError{Method: req.Method, URL: req.URL.String(), Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return &NetworkError{Method: req.Method, URL: req.URL.String(), Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return newAPIError(resp.StatusCode, body)
	}

	if out == nil || len(body) == 0 {
		return nil
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}

// Get issues a GET request against path
func (c *Client) Get(ctx context.Context, path string, out any) error {
	req, err := c.NewRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	return c.Do(req, out)
}

// Post issues a body-less POST request against path
func (c *Client) Post(ctx context.Context, path string, out any) error {
	req, err := c.NewRequest(ctx, http.MethodPost, path, nil)
	if err != nil {
		return err
	}
	return c.Do(req, out)
}

// PostForm issues a POST request with an application/x-www-form-urlencoded body
func (c *Client) PostForm(ctx context.Context, path string, form url.Values, out any) error {
	req, err := c.NewRequest(ctx, http.MethodPost, path, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return c.Do(req, out)
}

func isStateChanging(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodTrace:
		return false
	default:
		return true
	}
}
