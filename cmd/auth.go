package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/smarterqueue/threads-go/threads"
)

var (
	// login-url flags
	redirectURI string
	scopes      []string
	state       string

	// token flags
	authCode    string
	callbackURL string
	tokenValue  string
)

// loginURLCmd represents the login-url command
var loginURLCmd = &cobra.Command{
	Use:   "login-url",
	Short: "Print the OAuth authorization URL",
	Long: `Print the URL a user opens to authorize this app. After approving, the
browser is redirected to the redirect URI with a code that 'token exchange'
turns into an access token.`,
	RunE: runLoginURL,
}

// tokenCmd groups the token management commands
var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Exchange and refresh access tokens",
}

var tokenExchangeCmd = &cobra.Command{
	Use:   "exchange",
	Short: "Exchange an authorization code for a short-lived token",
	RunE:  runTokenExchange,
}

var tokenLongLivedCmd = &cobra.Command{
	Use:   "long-lived",
	Short: "Exchange a short-lived token for a long-lived token",
	RunE:  runTokenLongLived,
}

var tokenRefreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Refresh a long-lived token",
	RunE:  runTokenRefresh,
}

func init() {
	rootCmd.AddCommand(loginURLCmd)
	rootCmd.AddCommand(tokenCmd)
	tokenCmd.AddCommand(tokenExchangeCmd, tokenLongLivedCmd, tokenRefreshCmd)

	loginURLCmd.Flags().StringVar(&redirectURI, "redirect-uri", "", "redirect URI, overrides auth.redirect_uri")
	loginURLCmd.Flags().StringSliceVar(&scopes, "scope", nil, "permission scope, repeatable (default auth.scopes)")
	loginURLCmd.Flags().StringVar(&state, "state", "", "opaque state echoed back on the redirect")

	tokenExchangeCmd.Flags().StringVar(&authCode, "code", "", "authorization code")
	tokenExchangeCmd.Flags().StringVar(&callbackURL, "callback", "", "full callback URL to read the code from")
	tokenExchangeCmd.Flags().StringVar(&redirectURI, "redirect-uri", "", "redirect URI used for the login URL")
	tokenExchangeCmd.MarkFlagsOneRequired("code", "callback")
	tokenExchangeCmd.MarkFlagsMutuallyExclusive("code", "callback")

	for _, c := range []*cobra.Command{tokenLongLivedCmd, tokenRefreshCmd} {
		c.Flags().StringVar(&tokenValue, "token", "", "token to exchange (default auth.access_token)")
	}
}

func runLoginURL(cmd *cobra.Command, args []string) error {
	uri := firstNonEmpty(redirectURI, cfg.Auth.RedirectURI)
	if uri == "" {
		return fmt.Errorf("no redirect URI specified, use --redirect-uri or set auth.redirect_uri")
	}

	requested := scopes
	if len(requested) == 0 {
		requested = cfg.Auth.Scopes
	}

	var statePtr *string
	if cmd.Flags().Changed("state") {
		statePtr = &state
	}

	fmt.Fprintln(cmd.OutOrStdout(), oauthHelper.LoginURL(requested, uri, statePtr))
	return nil
}

func runTokenExchange(cmd *cobra.Command, args []string) error {
	code := authCode
	if callbackURL != "" {
		parsed, returnedState, err := threads.ParseCallback(callbackURL)
		if err != nil {
			return err
		}
		code = parsed
		logger.Debug().Str("state", returnedState).Msg("Parsed authorization callback")
	}

	uri := firstNonEmpty(redirectURI, cfg.Auth.RedirectURI)
	if uri == "" {
		return fmt.Errorf("no redirect URI specified, use --redirect-uri or set auth.redirect_uri")
	}

	return printToken(cmd, "short-lived", func(ctx context.Context) (*threads.Response, error) {
		return oauthHelper.ShortLivedAccessToken(ctx, code, uri)
	})
}

func runTokenLongLived(cmd *cobra.Command, args []string) error {
	token, err := tokenArg()
	if err != nil {
		return err
	}

	return printToken(cmd, "long-lived", func(ctx context.Context) (*threads.Response, error) {
		return oauthHelper.LongLivedAccessToken(ctx, token)
	})
}

func runTokenRefresh(cmd *cobra.Command, args []string) error {
	token, err := tokenArg()
	if err != nil {
		return err
	}

	return printToken(cmd, "refreshed", func(ctx context.Context) (*threads.Response, error) {
		return oauthHelper.RefreshLongLivedAccessToken(ctx, token)
	})
}

// tokenOutput is what the token commands print
type tokenOutput struct {
	*threads.Token
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

// printToken runs a token call and prints the token with its expiry
func printToken(cmd *cobra.Command, kind string, call func(ctx context.Context) (*threads.Response, error)) error {
	issuedAt := time.Now()

	resp, err := call(cmd.Context())
	if err != nil {
		return err
	}

	token, err := resp.Token()
	if err != nil {
		return err
	}

	out := tokenOutput{Token: token}
	if expiresAt := token.ExpiresAt(issuedAt); !expiresAt.IsZero() {
		out.ExpiresAt = &expiresAt
	}

	logger.Info().
		Str("kind", kind).
		Int64("expires_in", token.ExpiresIn).
		Msg("Obtained access token")

	return printJSON(cmd.OutOrStdout(), out)
}

// tokenArg returns --token, falling back to the configured access token
func tokenArg() (string, error) {
	token := firstNonEmpty(tokenValue, cfg.Auth.AccessToken)
	if token == "" {
		return "", fmt.Errorf("no token specified, use --token or set auth.access_token")
	}
	return token, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
