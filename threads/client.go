package threads

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const (
	// GraphBaseURL is the host serving the Threads Graph API
	GraphBaseURL = "https://graph.threads.net"
	// DefaultVersionCode is the version segment used when none is configured
	DefaultVersionCode = "v1.0"
	// DefaultTimeout bounds a whole request
	DefaultTimeout = 60 * time.Second
	// DefaultConnectTimeout bounds establishing the connection
	DefaultConnectTimeout = 10 * time.Second
)

// Client represents a Threads Graph API client.
//
// The version code and access token are plain fields read by every request.
// Configure them from a single goroutine; changing them while requests are in
// flight is a data race.
type Client struct {
	baseURL     string
	credentials Credentials
	versionCode string
	accessToken string
	httpClient  Doer
	logger      zerolog.Logger
}

// NewClient creates a new Threads client for the given app credentials
func NewClient(clientID, clientSecret string, opts ...Option) (*Client, error) {
	if clientID == "" {
		return nil, fmt.Errorf("%w: client ID is required", ErrInvalidConfig)
	}
	if clientSecret == "" {
		return nil, fmt.Errorf("%w: client secret is required", ErrInvalidConfig)
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}

	baseURL := strings.TrimRight(o.baseURL, "/")
	u, err := url.Parse(baseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("%w: invalid base URL %q", ErrInvalidConfig, o.baseURL)
	}

	client := &Client{
		baseURL: baseURL,
		credentials: Credentials{
			ClientID:     clientID,
			ClientSecret: clientSecret,
		},
		versionCode: o.versionCode,
		accessToken: o.accessToken,
		httpClient:  o.httpClient,
		logger:      o.logger,
	}
	if client.httpClient == nil {
		client.httpClient = newHTTPClient(o.timeout, o.connectTimeout)
	}

	return client, nil
}

// SetVersionCode replaces the version segment used by calls that don't
// specify one
func (c *Client) SetVersionCode(code string) {
	c.versionCode = code
}

// VersionCode returns the current default version segment
func (c *Client) VersionCode() string {
	return c.versionCode
}

// SetAccessToken replaces the token sent with every subsequent request.
// An empty token is not sent.
func (c *Client) SetAccessToken(token string) {
	c.accessToken = token
}

// Credentials returns a copy of the app credentials
func (c *Client) Credentials() Credentials {
	return c.credentials
}

// Get issues a GET request. The access token is sent as the access_token
// query parameter unless params sets that key itself.
func (c *Client) Get(ctx context.Context, endpoint string, params Params, opts ...CallOption) (*Response, error) {
	options := RequestOptions{
		Query: Merge(c.tokenParams(), params),
	}
	for _, opt := range opts {
		opt(&options)
	}

	return c.SendRequest(ctx, http.MethodGet, endpoint, options)
}

// Post issues a POST request with a JSON body. The access token is sent as
// the access_token field unless params sets that key itself.
func (c *Client) Post(ctx context.Context, endpoint string, params Params, opts ...CallOption) (*Response, error) {
	options := RequestOptions{
		JSON: Merge(c.tokenParams(), params),
	}
	for _, opt := range opts {
		opt(&options)
	}

	return c.SendRequest(ctx, http.MethodPost, endpoint, options)
}

// SendRequest performs one HTTP call and decodes the JSON response.
// Every failure, including a success response that is not valid JSON, is
// returned as an *Error.
func (c *Client) SendRequest(ctx context.Context, method, endpoint string, options RequestOptions) (*Response, error) {
	version := c.versionCode
	if options.Version != nil {
		version = *options.Version
	}

	req, err := c.newRequest(ctx, method, c.endpointURL(version, endpoint), options)
	if err != nil {
		return nil, MapError(err)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			urlErr.URL = redactURL(urlErr.URL)
		}
		c.logger.Debug().
			Err(err).
			Str("method", method).
			Str("endpoint", endpoint).
			Str("version", version).
			Dur("duration", time.Since(start)).
			Msg("Threads API request failed")
		return nil, MapError(fmt.Errorf("request failed: %w", err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, MapError(fmt.Errorf("failed to read response body: %w", err))
	}

	c.logger.Debug().
		Str("method", method).
		Str("endpoint", endpoint).
		Str("version", version).
		Int("status", resp.StatusCode).
		Dur("duration", time.Since(start)).
		Msg("Threads API request")

	if resp.StatusCode >= http.StatusBadRequest {
		return nil, MapError(&HTTPError{
			Method:     method,
			URL:        redactURL(req.URL.String()),
			StatusCode: resp.StatusCode,
			Header:     resp.Header,
			Body:       body,
		})
	}

	response, err := newResponse(resp.StatusCode, resp.Header, body)
	if err != nil {
		return nil, MapError(err)
	}
	return response, nil
}

// newRequest builds the HTTP request for SendRequest
func (c *Client) newRequest(ctx context.Context, method, uri string, options RequestOptions) (*http.Request, error) {
	if len(options.Query) > 0 {
		query, err := options.Query.Values()
		if err != nil {
			return nil, err
		}
		if encoded := query.Encode(); encoded != "" {
			uri += "?" + encoded
		}
	}

	var body io.Reader
	if options.JSON != nil {
		payload, err := json.Marshal(options.JSON)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, uri, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	for key, values := range options.Headers {
		for _, value := range values {
			req.Header.Add(key, value)
		}
	}
	if method != http.MethodGet && req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if req.Header.Get("Accept") == "" {
		req.Header.Set("Accept", "application/json")
	}

	return req, nil
}

// endpointURL joins the base URL, the version segment when non-empty, and
// the endpoint
func (c *Client) endpointURL(version, endpoint string) string {
	if version != "" {
		return fmt.Sprintf("%s/%s/%s", c.baseURL, version, endpoint)
	}
	return fmt.Sprintf("%s/%s", c.baseURL, endpoint)
}

// tokenParams returns the access token parameter. An unset token is nil so
// it is left out of query strings and encoded as null in JSON bodies.
func (c *Client) tokenParams() Params {
	if c.accessToken == "" {
		return Params{"access_token": nil}
	}
	return Params{"access_token": c.accessToken}
}
