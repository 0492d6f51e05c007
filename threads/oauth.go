package threads

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// AuthorizeURL is the browser-facing OAuth authorization endpoint
const AuthorizeURL = "https://threads.net/oauth/authorize"

// Grant types accepted by the token endpoints
const (
	GrantTypeAuthorizationCode = "authorization_code"
	GrantTypeExchangeToken     = "th_exchange_token"
	GrantTypeRefreshToken      = "th_refresh_token"
)

// OAuthHelper implements the Threads OAuth flows on top of an API client.
// It keeps no state besides the client.
type OAuthHelper struct {
	api API
}

// NewOAuthHelper creates a helper using api for all token calls
func NewOAuthHelper(api API) *OAuthHelper {
	return &OAuthHelper{api: api}
}

// LoginURL builds the URL the user is sent to in order to authorize the app.
// Parameters are written in a fixed order and state is only included when
// non-nil.
func (h *OAuthHelper) LoginURL(scopes []string, redirectURI string, state *string) string {
	credentials := h.api.Credentials()

	params := [][2]string{
		{"client_id", credentials.ClientID},
		{"redirect_uri", redirectURI},
		{"scope", strings.Join(scopes, ",")},
		{"response_type", "code"},
	}
	if state != nil {
		params = append(params, [2]string{"state", *state})
	}

	pairs := make([]string, 0, len(params))
	for _, p := range params {
		pairs = append(pairs, queryEscape(p[0])+"="+queryEscape(p[1]))
	}

	return AuthorizeURL + "?" + strings.Join(pairs, "&")
}

// ShortLivedAccessToken exchanges an authorization code for a short-lived
// access token. The client's own access token is not sent.
func (h *OAuthHelper) ShortLivedAccessToken(ctx context.Context, code, redirectURI string) (*Response, error) {
	credentials := h.api.Credentials()
	unversioned := ""

	return h.api.SendRequest(ctx, http.MethodPost, "oauth/access_token", RequestOptions{
		JSON: Params{
			"client_id":     credentials.ClientID,
			"client_secret": credentials.ClientSecret,
			"code":          code,
			"grant_type":    GrantTypeAuthorizationCode,
			"redirect_uri":  redirectURI,
		},
		Version: &unversioned,
	})
}

// LongLivedAccessToken exchanges a short-lived token for a long-lived one
func (h *OAuthHelper) LongLivedAccessToken(ctx context.Context, accessToken string) (*Response, error) {
	credentials := h.api.Credentials()

	return h.api.Get(ctx, "access_token", Params{
		"client_secret": credentials.ClientSecret,
		"access_token":  accessToken,
		"grant_type":    GrantTypeExchangeToken,
	}, Unversioned())
}

// RefreshLongLivedAccessToken extends the lifetime of a long-lived token
func (h *OAuthHelper) RefreshLongLivedAccessToken(ctx context.Context, accessToken string) (*Response, error) {
	credentials := h.api.Credentials()

	return h.api.Get(ctx, "refresh_access_token", Params{
		"client_secret": credentials.ClientSecret,
		"access_token":  accessToken,
		"grant_type":    GrantTypeRefreshToken,
	}, Unversioned())
}

// ParseCallback extracts the authorization code and state from the URL the
// user was redirected to. A denied authorization is returned as an error.
func ParseCallback(callbackURL string) (code, state string, err error) {
	u, err := url.Parse(callbackURL)
	if err != nil {
		return "", "", fmt.Errorf("failed to parse callback URL: %w", err)
	}

	query := u.Query()
	if errorCode := query.Get("error"); errorCode != "" {
		reason := query.Get("error_reason")
		description := query.Get("error_description")
		if reason != "" {
			return "", "", fmt.Errorf("authorization error: %s (%s) - %s", errorCode, reason, description)
		}
		return "", "", fmt.Errorf("authorization error: %s - %s", errorCode, description)
	}

	code = query.Get("code")
	if code == "" {
		return "", "", fmt.Errorf("callback missing authorization code")
	}

	return code, query.Get("state"), nil
}

// queryEscape escapes s for a query string, writing spaces as %20
func queryEscape(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
