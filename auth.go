package yalealarm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

const (
	endpointToken    = "/o/token/"
	endpointServices = "/services/"

	// appAuthToken is the fixed application credential the vendor app
	// presents to the token endpoint as HTTP Basic auth.
	appAuthToken = "VnVWWDZYVjlXSUNzVHJhcUVpdVNCUHBwZ3ZPakxUeXNsRU1LUHBjdTpkd3RPbE15WEtENUJ5ZW1GWHV0am55eGhrc0U3V0ZFY2p0dFcyOXRaSWNuWHlSWHFsWVBEZ1BSZE1xczF4R3VwVTlxa1o4UE5ubGlQanY5Z2hBZFFtMHpsM0h4V3dlS0ZBcGZzakpMcW1GMm1HR1lXRlpad01MRkw3MGR0bmNndQ=="

	grantTypePassword     = "password"
	grantTypeRefreshToken = "refresh_token"
)

// TokenPair holds the bearer credentials for a session. The tokens are
// opaque to the client; expiry is owned by the server.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// tokenResponse is the token endpoint response body.
type tokenResponse struct {
	AccessToken      string `json:"access_token"`
	RefreshToken     string `json:"refresh_token"`
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

// Authenticate exchanges the configured credentials for a token pair. When
// the client holds a refresh token it tries the refresh grant first and
// falls back to the password grant once if the server rejects it.
// On success the services endpoint is queried and a non-empty relocation
// URL replaces the base host for subsequent calls.
func (c *Client) Authenticate(ctx context.Context) (TokenPair, error) {
	if err := c.authorize(ctx); err != nil {
		return TokenPair{}, err
	}
	return c.Tokens(), nil
}

// authorize obtains a fresh token pair from the token endpoint. The pair
// is stored atomically: after authorize either both tokens are set or the
// previous session is untouched.
func (c *Client) authorize(ctx context.Context) error {
	for {
		c.mu.RLock()
		refresh := c.refreshToken
		c.mu.RUnlock()

		form := url.Values{}
		if refresh != "" {
			form.Set("grant_type", grantTypeRefreshToken)
			form.Set("refresh_token", refresh)
		} else {
			form.Set("grant_type", grantTypePassword)
			form.Set("username", c.username)
			form.Set("password", c.password)
		}

		header := http.Header{}
		header.Set("Authorization", "Basic "+appAuthToken)

		c.logDebug(ctx, "attempting authorization", "grant_type", form.Get("grant_type"))

		status, body, err := c.send(ctx, http.MethodPost, c.endpointURL(endpointToken), form, header)
		if err != nil {
			return err
		}

		switch {
		case status == http.StatusUnauthorized || status == http.StatusForbidden:
			return fmt.Errorf("%w: token endpoint returned status %d", ErrAuthenticationFailed, status)
		case status >= 400:
			return &APIError{StatusCode: status, Message: truncatePreview(body)}
		}

		var tr tokenResponse
		if err := json.Unmarshal(body, &tr); err != nil {
			return fmt.Errorf("failed to parse token response: %w", err)
		}

		if tr.Error != "" {
			if refresh != "" {
				// The refresh token may have expired server-side.
				// Drop it and try again with the password grant.
				c.clearTokens()
				c.logDebug(ctx, "refresh grant rejected, retrying with password", "error", tr.Error)
				continue
			}
			return fmt.Errorf("%w: %s", ErrAuthenticationFailed, tr.Error)
		}

		if tr.AccessToken == "" || tr.RefreshToken == "" {
			return ErrInvalidTokenResponse
		}

		c.setTokenPair(tr.AccessToken, tr.RefreshToken)
		c.persistTokens(ctx)
		c.logDebug(ctx, "authorization successful")

		c.updateServices(ctx)
		return nil
	}
}

// persistTokens saves the current pair to the token store, when one is
// configured. Persistence failures are logged, not fatal: the session is
// valid in memory either way.
func (c *Client) persistTokens(ctx context.Context) {
	if c.tokenStore == nil {
		return
	}
	pair := c.Tokens()
	if err := c.tokenStore.SaveTokens(ctx, &pair); err != nil {
		c.logDebug(ctx, "failed to persist tokens", "error", err.Error())
	}
}

// updateServices queries the services discovery endpoint and adopts a
// non-empty relocation URL as the new base host. Failures here are not
// fatal; the client keeps using the current host.
func (c *Client) updateServices(ctx context.Context) {
	status, body, err := c.send(ctx, http.MethodGet, c.endpointURL(endpointServices), nil, c.bearerHeader())
	if err != nil || status != http.StatusOK {
		c.logDebug(ctx, "unable to fetch services")
		return
	}

	var svc struct {
		Yapi string `json:"yapi"`
	}
	if err := json.Unmarshal(body, &svc); err != nil {
		c.logDebug(ctx, "unable to parse services response")
		return
	}
	if svc.Yapi == "" {
		c.logDebug(ctx, "services URL is empty")
		return
	}

	host := strings.TrimSuffix(svc.Yapi, "/")
	c.mu.Lock()
	c.baseURL = host
	c.mu.Unlock()
	c.logDebug(ctx, "api host updated", "host", host)
}
