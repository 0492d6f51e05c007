package threads

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"unicode/utf8"
)

// Common errors
var (
	// ErrInvalidConfig indicates invalid client configuration
	ErrInvalidConfig = errors.New("invalid threads client configuration")
	// ErrUndecodableResponse indicates a successful response whose body is not JSON
	ErrUndecodableResponse = errors.New("response body is not valid JSON")
)

// Error codes reported in the platform error payload.
const (
	// ErrorCodeInvalidToken is reported for expired, revoked or malformed tokens
	ErrorCodeInvalidToken = 190

	// ErrorTypeOAuth is the error type used for authentication failures
	ErrorTypeOAuth = "OAuthException"
)

// Error is the single error type returned by the client.
//
// Message and Code are always set. The remaining fields are only set when the
// platform answered with a JSON error payload, and are nil otherwise.
type Error struct {
	Message string
	// Code is the HTTP status of the failed response, or 0 when no response
	// was received.
	Code  int
	Cause error

	// Type is error.type from the payload, e.g. "OAuthException".
	Type *string
	// ErrorCode is error.code from the payload. It is the platform's own error
	// code, not the HTTP status.
	ErrorCode *int
	// Subcode is error.error_subcode from the payload.
	Subcode *int
	// TraceID is error.fbtrace_id from the payload.
	TraceID *string
}

// Error implements the error interface
func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// HTTPStatus returns the status of the response that caused the error, or 0
// for transport failures.
func (e *Error) HTTPStatus() int {
	var httpErr *HTTPError
	if errors.As(e.Cause, &httpErr) {
		return httpErr.StatusCode
	}
	return 0
}

// IsOAuthError checks if the platform rejected the request's authentication
func (e *Error) IsOAuthError() bool {
	return e.Type != nil && *e.Type == ErrorTypeOAuth
}

// IsTokenExpired checks if the access token is no longer valid and needs to be
// refreshed or re-issued
func (e *Error) IsTokenExpired() bool {
	return e.ErrorCode != nil && *e.ErrorCode == ErrorCodeInvalidToken
}

// HTTPError is the transport-level failure for a response with a 4xx or 5xx
// status. It carries the response so MapError can extract the error payload.
type HTTPError struct {
	Method     string
	URL        string
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Error implements the error interface
func (e *HTTPError) Error() string {
	msg := fmt.Sprintf("%s %s resulted in a %d %s response", e.Method, e.URL, e.StatusCode, http.StatusText(e.StatusCode))
	if summary := summarize(e.Body); summary != "" {
		msg += ": " + summary
	}
	return msg
}

// MapError converts a failure from the request pipeline into an *Error.
// It never fails: a payload that cannot be read leaves the generic message in
// place and the platform fields unset. MapError returns nil only for a nil err.
func MapError(err error) *Error {
	if err == nil {
		return nil
	}

	var mapped *Error
	if errors.As(err, &mapped) {
		return mapped
	}

	mapped = &Error{
		Message: err.Error(),
		Cause:   err,
	}

	var httpErr *HTTPError
	if !errors.As(err, &httpErr) {
		return mapped
	}
	mapped.Code = httpErr.StatusCode

	payload, ok := parseErrorPayload(httpErr.Header, httpErr.Body)
	if !ok {
		return mapped
	}

	if payload.Message != nil {
		mapped.Message = *payload.Message
	}
	mapped.Type = payload.Type
	mapped.ErrorCode = payload.Code
	mapped.Subcode = payload.Subcode
	mapped.TraceID = payload.TraceID

	return mapped
}

// errorPayload is the "error" object of a platform error response.
type errorPayload struct {
	Message *string `json:"message"`
	Type    *string `json:"type"`
	Code    *int    `json:"code"`
	Subcode *int    `json:"error_subcode"`
	TraceID *string `json:"fbtrace_id"`
}

// parseErrorPayload reads the error object from a JSON response body.
// It reports false when the body is not declared as JSON or does not decode.
func parseErrorPayload(header http.Header, body []byte) (*errorPayload, bool) {
	if !strings.Contains(header.Get("Content-Type"), "application/json") {
		return nil, false
	}

	var envelope struct {
		Error *errorPayload `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, false
	}
	if envelope.Error == nil {
		return &errorPayload{}, true
	}
	return envelope.Error, true
}

// summarize shortens a response body for use in an error message.
func summarize(body []byte) string {
	const limit = 120

	s := strings.TrimSpace(string(body))
	if len(s) > limit {
		cut := limit
		for cut > 0 && !utf8.RuneStart(s[cut]) {
			cut--
		}
		return s[:cut] + " (truncated...)"
	}
	return s
}
