package yalealarm

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
)

const (
	// DefaultBaseURL is the Yale Smart Living API base URL. A successful
	// authorization may relocate it via the services endpoint.
	DefaultBaseURL = "https://mob.yalehomesystem.co.uk/yapi"

	// DefaultTimeout is the default HTTP request timeout.
	DefaultTimeout = 5 * time.Second

	// DefaultAreaID is the panel area used for mode and lock commands.
	DefaultAreaID = 1

	// codeSuccess is the response code the API uses to acknowledge a
	// successful command.
	codeSuccess = "000"
)

// Client is a Yale Smart Alarm API client. It owns the credentials, the
// bearer token pair, and the current base host, and performs the one
// re-authentication retry on 401/403 responses.
type Client struct {
	mu           sync.RWMutex
	baseURL      string
	username     string
	password     string
	accessToken  string
	refreshToken string

	areaID      int
	httpClient  *http.Client
	tokenStore  TokenStore
	retryConfig *RetryConfig
	logger      *slog.Logger

	lockAPI *DoorManAPI
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL sets a custom base URL for the API.
func WithBaseURL(url string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimSuffix(url, "/")
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.httpClient = client
	}
}

// WithTimeout sets the HTTP request timeout.
// This option can be applied in any order relative to other options.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if c.httpClient == nil {
			c.httpClient = &http.Client{}
		}
		c.httpClient.Timeout = timeout
	}
}

// WithAreaID sets the panel area for mode and lock commands (default 1).
func WithAreaID(areaID int) Option {
	return func(c *Client) {
		c.areaID = areaID
	}
}

// WithTokenStore configures persistence for the token pair. Tokens are
// loaded on construction when the store holds a complete pair, so a client
// can resume a session with the refresh grant instead of the password.
func WithTokenStore(store TokenStore) Option {
	return func(c *Client) {
		c.tokenStore = store
	}
}

// WithTransientRetry configures exponential-backoff retries of
// network-level failures (refused or reset connections). HTTP responses,
// including error statuses, are never retried at this layer. Pass nil to
// disable.
func WithTransientRetry(config *RetryConfig) Option {
	return func(c *Client) {
		c.retryConfig = config
	}
}

// NewClient creates a new Yale Smart Alarm client. The client does not
// talk to the API until Authenticate or the first request.
// Returns ErrEmptyCredentials if username or password is empty.
func NewClient(username, password string, opts ...Option) (*Client, error) {
	if username == "" || password == "" {
		return nil, ErrEmptyCredentials
	}

	c := &Client{
		baseURL:  DefaultBaseURL,
		username: username,
		password: password,
		areaID:   DefaultAreaID,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
				DisableKeepAlives:   false,
			},
		},
		retryConfig: DefaultRetryConfig(),
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.tokenStore != nil {
		if pair, err := c.tokenStore.LoadTokens(context.Background()); err == nil && pair != nil {
			if pair.AccessToken != "" && pair.RefreshToken != "" {
				c.accessToken = pair.AccessToken
				c.refreshToken = pair.RefreshToken
			}
		}
	}

	c.lockAPI = &DoorManAPI{client: c}

	return c, nil
}

// LockAPI returns the Doorman lock API bound to this client.
func (c *Client) LockAPI() *DoorManAPI {
	return c.lockAPI
}

// Tokens returns the current token pair. Both fields are empty when the
// client holds no session.
func (c *Client) Tokens() TokenPair {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return TokenPair{AccessToken: c.accessToken, RefreshToken: c.refreshToken}
}

// SetTokens installs a previously obtained token pair, for resuming a
// session without re-sending the password. The pair must be complete or
// completely empty; returns ErrPartialTokenPair otherwise.
func (c *Client) SetTokens(pair TokenPair) error {
	if (pair.AccessToken == "") != (pair.RefreshToken == "") {
		return ErrPartialTokenPair
	}
	c.mu.Lock()
	c.accessToken = pair.AccessToken
	c.refreshToken = pair.RefreshToken
	c.mu.Unlock()
	return nil
}

// setTokenPair stores both tokens atomically. Used only by authorize so
// the both-or-neither invariant holds everywhere else.
func (c *Client) setTokenPair(access, refresh string) {
	c.mu.Lock()
	c.accessToken = access
	c.refreshToken = refresh
	c.mu.Unlock()
}

// clearTokens drops the session. The next request re-authenticates with
// the password grant.
func (c *Client) clearTokens() {
	c.setTokenPair("", "")
}

// BaseURL returns the current API base URL, which may differ from
// DefaultBaseURL after services relocation.
func (c *Client) BaseURL() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.baseURL
}

// endpointURL builds the full URL for an endpoint. The panic endpoint is
// served from the host root, so the /yapi path suffix is stripped for it.
func (c *Client) endpointURL(endpoint string) string {
	c.mu.RLock()
	base := c.baseURL
	c.mu.RUnlock()

	if strings.Contains(endpoint, "panic") {
		base = strings.TrimSuffix(base, "/yapi")
	}
	return base + endpoint
}

// bearerHeader returns the Authorization header for the current session.
func (c *Client) bearerHeader() http.Header {
	c.mu.RLock()
	token := c.accessToken
	c.mu.RUnlock()

	h := http.Header{}
	h.Set("Authorization", "Bearer "+token)
	return h
}

// ensureAuthorized authenticates if the client holds no access token.
func (c *Client) ensureAuthorized(ctx context.Context) error {
	c.mu.RLock()
	token := c.accessToken
	c.mu.RUnlock()

	if token != "" {
		return nil
	}
	return c.authorize(ctx)
}

// request performs an authenticated call against an endpoint. On a 401 or
// 403 response it re-authorizes once (refresh grant when a refresh token
// is held, password grant otherwise) and retries the request exactly once.
// A second auth failure propagates as an *APIError.
func (c *Client) request(ctx context.Context, method, endpoint string, form url.Values) ([]byte, error) {
	if err := c.ensureAuthorized(ctx); err != nil {
		return nil, err
	}

	status, body, err := c.send(ctx, method, c.endpointURL(endpoint), form, c.bearerHeader())
	if err != nil {
		return nil, err
	}

	if status == http.StatusUnauthorized || status == http.StatusForbidden {
		// The refresh token must survive here so authorize can use the
		// refresh grant; authorize itself drops it when the server
		// rejects it.
		if err := c.authorize(ctx); err != nil {
			return nil, err
		}
		status, body, err = c.send(ctx, method, c.endpointURL(endpoint), form, c.bearerHeader())
		if err != nil {
			return nil, err
		}
	}

	if status >= 400 {
		return nil, &APIError{StatusCode: status, Message: truncatePreview(body)}
	}
	return body, nil
}

// get performs an authenticated GET request.
func (c *Client) get(ctx context.Context, endpoint string) ([]byte, error) {
	return c.request(ctx, http.MethodGet, endpoint, nil)
}

// post performs an authenticated form-encoded POST request.
func (c *Client) post(ctx context.Context, endpoint string, form url.Values) ([]byte, error) {
	return c.request(ctx, http.MethodPost, endpoint, form)
}

// put performs an authenticated PUT request.
func (c *Client) put(ctx context.Context, endpoint string) ([]byte, error) {
	return c.request(ctx, http.MethodPut, endpoint, nil)
}

// send issues a single logical HTTP request, rebuilding it per attempt so
// transient network failures can be retried with backoff. HTTP responses
// of any status are returned to the caller without retrying.
func (c *Client) send(ctx context.Context, method, url string, form url.Values, header http.Header) (int, []byte, error) {
	var status int
	var body []byte

	attempt := func() error {
		var reqBody io.Reader
		if form != nil {
			reqBody = strings.NewReader(form.Encode())
		}
		req, err := http.NewRequestWithContext(ctx, method, url, reqBody)
		if err != nil {
			return backoff.Permanent(err)
		}
		for k, vs := range header {
			for _, v := range vs {
				req.Header.Add(k, v)
			}
		}
		req.Header.Set("Accept", "application/json")
		if form != nil {
			req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		}

		c.logRequest(ctx, method, url)
		start := time.Now()
		resp, err := c.httpClient.Do(req)
		if err != nil {
			c.logResponse(ctx, method, url, 0, time.Since(start), err)
			if ctx.Err() != nil {
				return backoff.Permanent(err)
			}
			return err
		}
		defer resp.Body.Close()

		b, err := io.ReadAll(resp.Body)
		if err != nil {
			return err
		}

		status = resp.StatusCode
		body = b
		c.logResponse(ctx, method, url, resp.StatusCode, time.Since(start), nil)
		return nil
	}

	var err error
	if c.retryConfig == nil {
		err = attempt()
	} else {
		bo := backoff.WithContext(c.retryConfig.backOff(), ctx)
		err = backoff.RetryNotify(attempt, bo, func(err error, wait time.Duration) {
			c.logRetry(ctx, method, url, err, wait)
		})
	}
	if err != nil {
		return 0, nil, fmt.Errorf("request failed: %w", err)
	}
	return status, body, nil
}

// truncatePreview returns a truncated string for error messages.
func truncatePreview(data []byte) string {
	s := string(data)
	if len(s) > 200 {
		return s[:200] + "..."
	}
	return s
}
