package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"
)

// ErrorKind tells why a call did not produce a usable response.
type ErrorKind string

const (
	// KindTransport means the HTTP exchange did not complete (DNS, connect,
	// TLS, deadline).
	KindTransport ErrorKind = "transport"
	// KindMalformedResponse means a body was received but is not valid JSON.
	KindMalformedResponse ErrorKind = "malformed_response"
	// KindHTTPStatus means the reply status was outside 200-299.
	KindHTTPStatus ErrorKind = "http_status"
)

// APIError is returned for every failure after validation passed. Fields
// other than Kind, Message and URL are set only when they were known when
// the call failed.
type APIError struct {
	Kind            ErrorKind
	Message         string
	URL             string
	StatusCode      int
	Body            map[string]any
	APIStatus       *int
	APIErrorMessage *string
	Request         map[string]any
	RequestID       string
	// RetryAfter is the server's back-off hint on a 429 or 503 reply.
	RetryAfter time.Duration
	Err        error
}

func (e *APIError) Error() string {
	if e.Err != nil && e.Kind == KindTransport {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	if e.APIErrorMessage != nil && *e.APIErrorMessage != "" {
		return fmt.Sprintf("%s: %s", e.Message, *e.APIErrorMessage)
	}
	return e.Message
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// Timeout reports whether the failure was a deadline being exceeded.
func (e *APIError) Timeout() bool {
	if e.Err == nil {
		return false
	}
	if errors.Is(e.Err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(e.Err, &netErr) && netErr.Timeout()
}

func transportError(url string, err error) *APIError {
	return &APIError{
		Kind:    KindTransport,
		Message: fmt.Sprintf("request to %s failed", url),
		URL:     url,
		Err:     err,
	}
}

func statusCodeOf(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}

// IsRateLimitError checks if the error is an HTTP 429 reply.
func IsRateLimitError(err error) bool {
	return statusCodeOf(err) == 429
}

// IsAuthError checks if the error is an HTTP 401 reply.
func IsAuthError(err error) bool {
	return statusCodeOf(err) == 401
}

// IsTransportError checks if the call failed before a reply was received.
func IsTransportError(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Kind == KindTransport
}

// IsNotFoundError checks if the error indicates a resource was not found.
func IsNotFoundError(err error) bool {
	if err == nil {
		return false
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		if apiErr.StatusCode == 404 {
			return true
		}
		return apiErr.APIErrorMessage != nil && strings.Contains(strings.ToLower(*apiErr.APIErrorMessage), "not found")
	}
	return false
}
