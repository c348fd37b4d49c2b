package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
)

// Response is the decoded form of one API reply.
//
// Body is set when the reply carried a JSON object. APIStatus and
// APIErrorMessage mirror the "status" and "error_message" fields that most
// v205 endpoints include; Request holds the "request" field when the
// server echoed the submitted payload as a JSON string.
type Response struct {
	URL             string
	HTTPStatusCode  int
	Header          http.Header
	RequestID       string
	Body            map[string]any
	Raw             json.RawMessage
	APIStatus       *int
	APIErrorMessage *string
	Request         map[string]any
}

func isBodilessStatus(code int) bool {
	return code == http.StatusNoContent || code == http.StatusNotModified
}

func isSuccessStatus(code int) bool {
	return code >= 200 && code < 300
}

// newResponse interprets a raw reply. It returns an *APIError when the body
// is not valid JSON or the status is outside 200-299; the status check wins
// when both apply.
func newResponse(url string, status int, header http.Header, raw []byte) (*Response, error) {
	r := &Response{
		URL:            url,
		HTTPStatusCode: status,
		Header:         header,
		RequestID:      requestIDFromHeader(header),
	}

	var decodeErr error
	if !isBodilessStatus(status) && len(bytes.TrimSpace(raw)) > 0 {
		r.Raw = json.RawMessage(raw)
		decodeErr = r.decodeBody(raw)
	}

	if !isSuccessStatus(status) {
		apiErr := r.asError(KindHTTPStatus, fmt.Sprintf("%s returned non-2XX http status code %d", url, status), decodeErr)
		if isThrottled(status) {
			apiErr.RetryAfter = parseRetryAfter(header, clock())
		}
		return nil, apiErr
	}
	if decodeErr != nil {
		return nil, r.asError(KindMalformedResponse, fmt.Sprintf("failed to parse json response from %s", url), decodeErr)
	}
	return r, nil
}

func (r *Response) decodeBody(raw []byte) error {
	var decoded any
	if err := decodeJSON(raw, &decoded); err != nil {
		return err
	}
	body, ok := decoded.(map[string]any)
	if !ok {
		return nil
	}
	r.Body = body

	if status, ok := intValue(body["status"]); ok {
		r.APIStatus = &status
	}
	if msg, ok := body["error_message"].(string); ok {
		r.APIErrorMessage = &msg
	}
	if embedded, ok := body["request"].(string); ok {
		var req map[string]any
		if err := decodeJSON([]byte(embedded), &req); err != nil {
			return fmt.Errorf("embedded request: %w", err)
		}
		r.Request = req
	}
	return nil
}

func (r *Response) asError(kind ErrorKind, message string, cause error) *APIError {
	return &APIError{
		Kind:            kind,
		Message:         message,
		URL:             r.URL,
		StatusCode:      r.HTTPStatusCode,
		Body:            r.Body,
		APIStatus:       r.APIStatus,
		APIErrorMessage: r.APIErrorMessage,
		Request:         r.Request,
		RequestID:       r.RequestID,
		Err:             cause,
	}
}

// intValue accepts JSON numbers holding an integral value. Values beyond
// the int range saturate, so an oversized status still reads as non-zero.
func intValue(v any) (int, bool) {
	n, ok := v.(json.Number)
	if !ok {
		return 0, false
	}
	if i, err := n.Int64(); err == nil && i >= math.MinInt && i <= math.MaxInt {
		return int(i), true
	}
	f, err := n.Float64()
	if err != nil && !(errors.Is(err, strconv.ErrRange) && math.IsInf(f, 0)) {
		return 0, false
	}
	switch {
	case f >= math.MaxInt:
		return math.MaxInt, true
	case f <= math.MinInt:
		return math.MinInt, true
	case f != math.Trunc(f):
		return 0, false
	}
	return int(f), true
}

// IsOK reports whether the call succeeded at the application level:
// a 204 reply, an API status of 0, or no API status and a 200/201 reply.
func (r *Response) IsOK() bool {
	if r == nil {
		return false
	}
	if r.HTTPStatusCode == http.StatusNoContent {
		return true
	}
	if r.APIStatus != nil {
		return *r.APIStatus == 0
	}
	return r.HTTPStatusCode == http.StatusOK || r.HTTPStatusCode == http.StatusCreated
}

// String renders the body and status for logs.
func (r *Response) String() string {
	if r.Body == nil {
		return fmt.Sprintf(`"http_status_code": %d`, r.HTTPStatusCode)
	}
	body, err := encodeJSON(r.Body)
	if err != nil {
		body = []byte(`null`)
	}
	return fmt.Sprintf(`"body": %s, "http_status_code": %d`, body, r.HTTPStatusCode)
}

func requestIDFromHeader(header http.Header) string {
	if header == nil {
		return ""
	}
	return header.Get("X-Request-Id")
}
