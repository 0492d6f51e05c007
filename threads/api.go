package threads

import (
	"context"
)

// API defines the client operations the OAuth helper builds on
type API interface {
	// Credentials returns the app credentials
	Credentials() Credentials

	// Get issues an authenticated GET request
	Get(ctx context.Context, endpoint string, params Params, opts ...CallOption) (*Response, error)

	// Post issues an authenticated POST request
	Post(ctx context.Context, endpoint string, params Params, opts ...CallOption) (*Response, error)

	// SendRequest performs a request without injecting the access token
	SendRequest(ctx context.Context, method, endpoint string, options RequestOptions) (*Response, error)
}

var _ API = (*Client)(nil)
