package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/siftscience/sift-cli/internal/validation"
)

// ErrorCode represents machine-readable error codes for scripted error handling.
type ErrorCode string

const (
	// ErrBadRequest indicates the API rejected the request (HTTP 400).
	ErrBadRequest ErrorCode = "bad_request"
	// ErrUnauthorized indicates the API key was missing or invalid (HTTP 401).
	ErrUnauthorized ErrorCode = "unauthorized"
	// ErrForbidden indicates the key lacks permission for the account (HTTP 403).
	ErrForbidden ErrorCode = "forbidden"
	// ErrNotFound indicates the requested resource does not exist (HTTP 404).
	ErrNotFound ErrorCode = "not_found"
	// ErrValidation indicates input validation failed, locally or with HTTP 422.
	ErrValidation ErrorCode = "validation_failed"
	// ErrRateLimited indicates too many requests (HTTP 429).
	ErrRateLimited ErrorCode = "rate_limited"
	// ErrServerError indicates an internal server error (HTTP 5xx).
	ErrServerError ErrorCode = "server_error"
	// ErrTimeout indicates the call exceeded its deadline.
	ErrTimeout ErrorCode = "timeout"
	// ErrNetwork indicates the HTTP exchange did not complete.
	ErrNetwork ErrorCode = "network_error"
	// ErrMalformedResponse indicates the reply body was not valid JSON.
	ErrMalformedResponse ErrorCode = "malformed_response"
	// ErrSoftFailure indicates a 2xx reply carrying a non-zero API status.
	ErrSoftFailure ErrorCode = "soft_failure"
	// ErrUnknown indicates an unknown or unclassified error.
	ErrUnknown ErrorCode = "unknown"
)

// IsRetryable returns true if errors with this code may succeed on retry.
func (c ErrorCode) IsRetryable() bool {
	switch c {
	case ErrRateLimited, ErrServerError, ErrTimeout, ErrNetwork:
		return true
	default:
		return false
	}
}

// Suggestion returns a human-readable suggestion for resolving this error.
func (c ErrorCode) Suggestion() string {
	switch c {
	case ErrUnauthorized:
		return "Run 'sift auth login' or set SIFT_API_KEY"
	case ErrForbidden:
		return "Check that the API key belongs to the configured account"
	case ErrNotFound:
		return "Verify the id and the account id"
	case ErrRateLimited:
		return "Wait a moment and retry"
	case ErrValidation:
		return "Check the input values"
	case ErrBadRequest:
		return "Check the payload against the API reference"
	case ErrServerError:
		return "The server encountered an error; try again later"
	case ErrTimeout:
		return "Increase --timeout or check network connectivity"
	case ErrNetwork:
		return "Check network connectivity and --base-url"
	case ErrMalformedResponse:
		return "Check --base-url points at the Sift API"
	case ErrSoftFailure:
		return "Inspect error_message in the response body"
	default:
		return ""
	}
}

// ErrorCodeFromStatus maps an HTTP status code to an ErrorCode.
func ErrorCodeFromStatus(statusCode int) ErrorCode {
	switch statusCode {
	case 400:
		return ErrBadRequest
	case 401:
		return ErrUnauthorized
	case 403:
		return ErrForbidden
	case 404:
		return ErrNotFound
	case 422:
		return ErrValidation
	case 429:
		return ErrRateLimited
	default:
		if statusCode >= 500 && statusCode < 600 {
			return ErrServerError
		}
		return ErrUnknown
	}
}

// StructuredError provides machine-readable error information.
type StructuredError struct {
	Code          ErrorCode      `json:"code"`
	Message       string         `json:"message"`
	Retryable     bool           `json:"retryable"`
	Suggestion    string         `json:"suggestion,omitempty"`
	Context       map[string]any `json:"context,omitempty"`
	AllowedValues []string       `json:"allowed_values,omitempty"`
}

// Error implements the error interface.
func (e *StructuredError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// MarshalJSON implements custom JSON marshaling.
func (e *StructuredError) MarshalJSON() ([]byte, error) {
	type Alias StructuredError
	return json.Marshal((*Alias)(e))
}

// NewStructuredError creates a StructuredError from an ErrorCode and message.
func NewStructuredError(code ErrorCode, message string) *StructuredError {
	return &StructuredError{
		Code:       code,
		Message:    message,
		Retryable:  code.IsRetryable(),
		Suggestion: code.Suggestion(),
	}
}

// NewValidationError creates a StructuredError for input validation failures,
// including the list of allowed values so callers can self-correct.
func NewValidationError(field string, got string, allowed []string) *StructuredError {
	return &StructuredError{
		Code:          ErrValidation,
		Message:       fmt.Sprintf("invalid %s %q: must be one of %s", field, got, strings.Join(allowed, ", ")),
		Retryable:     false,
		Suggestion:    fmt.Sprintf("Use one of: %s", strings.Join(allowed, ", ")),
		AllowedValues: allowed,
		Context:       map[string]any{"field": field, "got": got},
	}
}

// StructuredErrorFromAPIError converts an APIError to a StructuredError.
func StructuredErrorFromAPIError(apiErr *APIError) *StructuredError {
	var code ErrorCode
	switch apiErr.Kind {
	case KindTransport:
		code = ErrNetwork
		if apiErr.Timeout() {
			code = ErrTimeout
		}
	case KindMalformedResponse:
		code = ErrMalformedResponse
	default:
		code = ErrorCodeFromStatus(apiErr.StatusCode)
	}

	ctx := map[string]any{"url": apiErr.URL}
	if apiErr.StatusCode != 0 {
		ctx["status_code"] = apiErr.StatusCode
	}
	if apiErr.APIStatus != nil {
		ctx["api_status"] = *apiErr.APIStatus
	}
	if apiErr.APIErrorMessage != nil {
		ctx["api_error_message"] = *apiErr.APIErrorMessage
	}
	if apiErr.RequestID != "" {
		ctx["request_id"] = apiErr.RequestID
	}
	suggestion := code.Suggestion()
	if apiErr.RetryAfter > 0 {
		ctx["retry_after_seconds"] = int(apiErr.RetryAfter / time.Second)
		suggestion = fmt.Sprintf("Retry after %s", apiErr.RetryAfter)
	}
	return &StructuredError{
		Code:       code,
		Message:    apiErr.Error(),
		Retryable:  code.IsRetryable(),
		Suggestion: suggestion,
		Context:    ctx,
	}
}

// StructuredErrorFromError attempts to convert any error to a StructuredError.
// It handles StructuredError, APIError, validation.Error and generic errors.
func StructuredErrorFromError(err error) *StructuredError {
	if err == nil {
		return nil
	}

	var se *StructuredError
	if errors.As(err, &se) {
		return se
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return StructuredErrorFromAPIError(apiErr)
	}

	var verr *validation.Error
	if errors.As(err, &verr) {
		out := NewStructuredError(ErrValidation, verr.Message)
		out.Context = map[string]any{"field": verr.Field, "kind": string(verr.Kind)}
		if len(verr.Allowed) > 0 {
			out.AllowedValues = verr.Allowed
			out.Suggestion = fmt.Sprintf("Use one of: %s", strings.Join(verr.Allowed, ", "))
		}
		return out
	}

	// Generic error - classify as unknown
	return &StructuredError{
		Code:       ErrUnknown,
		Message:    err.Error(),
		Retryable:  false,
		Suggestion: "",
	}
}
