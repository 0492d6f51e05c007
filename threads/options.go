package threads

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// Option configures a Client.
type Option func(*clientOptions)

// clientOptions holds configuration options for the Client.
type clientOptions struct {
	baseURL        string
	versionCode    string
	accessToken    string
	timeout        time.Duration
	connectTimeout time.Duration
	httpClient     Doer
	logger         zerolog.Logger
}

func defaultOptions() *clientOptions {
	return &clientOptions{
		baseURL:        GraphBaseURL,
		versionCode:    DefaultVersionCode,
		timeout:        DefaultTimeout,
		connectTimeout: DefaultConnectTimeout,
		logger:         zerolog.Nop(),
	}
}

// WithHTTPClient sets the transport used to execute requests.
// Timeouts set with WithTimeout and WithConnectTimeout are ignored when a
// custom transport is provided.
func WithHTTPClient(doer Doer) Option {
	return func(o *clientOptions) {
		o.httpClient = doer
	}
}

// WithTimeout sets the overall request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(o *clientOptions) {
		if timeout > 0 {
			o.timeout = timeout
		}
	}
}

// WithConnectTimeout sets the TCP connect timeout.
func WithConnectTimeout(timeout time.Duration) Option {
	return func(o *clientOptions) {
		if timeout > 0 {
			o.connectTimeout = timeout
		}
	}
}

// WithLogger sets the logger used for request tracing.
func WithLogger(logger zerolog.Logger) Option {
	return func(o *clientOptions) {
		o.logger = logger
	}
}

// WithBaseURL points the client at a different graph host, e.g. a proxy or
// a test server.
func WithBaseURL(baseURL string) Option {
	return func(o *clientOptions) {
		if baseURL != "" {
			o.baseURL = baseURL
		}
	}
}

// WithVersionCode sets the initial API version segment.
func WithVersionCode(code string) Option {
	return func(o *clientOptions) {
		o.versionCode = code
	}
}

// WithAccessToken sets the initial access token.
func WithAccessToken(token string) Option {
	return func(o *clientOptions) {
		o.accessToken = token
	}
}

// RequestOptions describes a single call made through SendRequest.
type RequestOptions struct {
	// Query is encoded into the URL query string.
	Query Params
	// JSON is encoded as the request body. A nil map sends no body.
	JSON Params
	// Headers are added to the request.
	Headers http.Header
	// Version overrides the client's version code for this call.
	// A pointer to "" leaves the version segment out of the URL.
	Version *string
}

// CallOption adjusts the options of a single Get or Post call.
type CallOption func(*RequestOptions)

// WithVersion uses code as the version segment for this call.
func WithVersion(code string) CallOption {
	return func(o *RequestOptions) {
		o.Version = &code
	}
}

// Unversioned leaves the version segment out of the URL, for endpoints that
// live outside the versioned namespace.
func Unversioned() CallOption {
	return WithVersion("")
}

// WithHeader sets a request header for this call.
func WithHeader(key, value string) CallOption {
	return func(o *RequestOptions) {
		if o.Headers == nil {
			o.Headers = make(http.Header)
		}
		o.Headers.Set(key, value)
	}
}
