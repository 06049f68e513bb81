package yalealarm

import (
	"errors"
	"fmt"
	"net/url"
)

// Sentinel errors returned by the Yale client.
// All errors are defined here for easy discovery and consistent organization.
var (
	// Authentication errors
	ErrAuthenticationFailed = errors.New("yalealarm: authentication failed (check credentials)")
	ErrInvalidTokenResponse = errors.New("yalealarm: token endpoint returned an incomplete token pair")
	ErrEmptyCredentials     = errors.New("yalealarm: username and password cannot be empty")
	ErrPartialTokenPair     = errors.New("yalealarm: access and refresh token must be set together")

	// Lock validation errors
	ErrEmptyPIN     = errors.New("yalealarm: pin code cannot be empty")
	ErrLockNotFound = errors.New("yalealarm: no lock with that name")

	// Configuration validation errors
	ErrConfigTooShort = errors.New("yalealarm: lock configuration data is too short")
)

// APIError represents a non-auth error response from the Yale API.
type APIError struct {
	StatusCode int
	Message    string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("yalealarm: API error %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("yalealarm: API error %d", e.StatusCode)
}

// IsAuthenticationError returns true if the error indicates rejected
// credentials or an unusable token response from the token endpoint.
func IsAuthenticationError(err error) bool {
	return errors.Is(err, ErrAuthenticationFailed) || errors.Is(err, ErrInvalidTokenResponse)
}

// IsTimeout returns true if the error indicates a timeout.
func IsTimeout(err error) bool {
	var netErr interface{ Timeout() bool }
	return errors.As(err, &netErr) && netErr.Timeout()
}

// IsConnectionError returns true for HTTP or network-level failures that are
// neither authentication failures nor timeouts. A data call that still gets
// 401 after the one re-authentication retry lands here.
func IsConnectionError(err error) bool {
	if IsAuthenticationError(err) || IsTimeout(err) {
		return false
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return true
	}
	var urlErr *url.Error
	return errors.As(err, &urlErr)
}

// IsUnknown returns true for errors that fit none of the other categories.
func IsUnknown(err error) bool {
	if err == nil {
		return false
	}
	return !IsAuthenticationError(err) && !IsTimeout(err) && !IsConnectionError(err)
}
