package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"
)

var clock = time.Now

// isThrottled reports whether a reply status asks the caller to back off.
func isThrottled(status int) bool {
	return status == http.StatusTooManyRequests || status == http.StatusServiceUnavailable
}

// parseRetryAfter reads a Retry-After header given as delta seconds or as an
// HTTP date. A missing, malformed or past value yields 0.
func parseRetryAfter(h http.Header, now time.Time) time.Duration {
	value := strings.TrimSpace(h.Get("Retry-After"))
	if value == "" {
		return 0
	}
	if secs, err := strconv.ParseInt(value, 10, 64); err == nil {
		if secs <= 0 {
			return 0
		}
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(value); err == nil {
		if d := t.Sub(now); d > 0 {
			return d.Round(time.Second)
		}
	}
	return 0
}

// RetryAfter returns how long the server asked the caller to wait before
// retrying a throttled call. It is 0 when err is not a throttled reply or
// the server gave no hint.
func RetryAfter(err error) time.Duration {
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Kind != KindHTTPStatus {
		return 0
	}
	return apiErr.RetryAfter
}
