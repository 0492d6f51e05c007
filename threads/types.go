package threads

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Credentials identifies the Threads app making the calls.
type Credentials struct {
	ClientID     string
	ClientSecret string
}

// Response is the decoded result of a successful API call.
// It is built by the client after the body has been decoded and is not
// modified afterwards.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       any

	raw []byte
}

// newResponse decodes payload as JSON. Numbers are kept as json.Number so
// large IDs stay exact. A payload that does not decode yields an error and no
// Response.
func newResponse(statusCode int, header http.Header, payload []byte) (*Response, error) {
	body, err := decodeJSON(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUndecodableResponse, err)
	}

	return &Response{
		StatusCode: statusCode,
		Header:     header.Clone(),
		Body:       body,
		raw:        payload,
	}, nil
}

// decodeJSON decodes a single JSON value with numbers as json.Number
func decodeJSON(payload []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(payload))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	if dec.More() {
		return nil, fmt.Errorf("unexpected data after top-level value")
	}
	return v, nil
}

// Decode unmarshals the raw response payload into v.
func (r *Response) Decode(v any) error {
	return json.Unmarshal(r.raw, v)
}

// Raw returns a copy of the undecoded response payload.
func (r *Response) Raw() []byte {
	out := make([]byte, len(r.raw))
	copy(out, r.raw)
	return out
}

// Token is the payload returned by the token endpoints.
// The short-lived exchange returns AccessToken and UserID, the long-lived
// exchange and refresh return AccessToken, TokenType and ExpiresIn.
type Token struct {
	AccessToken string      `json:"access_token"`
	TokenType   string      `json:"token_type,omitempty"`
	ExpiresIn   int64       `json:"expires_in,omitempty"`
	UserID      json.Number `json:"user_id,omitempty"`
}

// Token decodes the response as a token payload.
func (r *Response) Token() (*Token, error) {
	var token Token
	if err := r.Decode(&token); err != nil {
		return nil, fmt.Errorf("failed to decode token: %w", err)
	}
	if token.AccessToken == "" {
		return nil, fmt.Errorf("response does not contain an access token")
	}
	return &token, nil
}

// ExpiresAt returns the expiry instant relative to issuedAt, or the zero time
// when the token carries no lifetime.
func (t *Token) ExpiresAt(issuedAt time.Time) time.Time {
	if t.ExpiresIn <= 0 {
		return time.Time{}
	}
	return issuedAt.Add(time.Duration(t.ExpiresIn) * time.Second)
}
