// Package threads provides a client for the Threads Graph API.
//
// The client signs every request with an access token, sends GET and POST
// calls to versioned endpoints on https://graph.threads.net and decodes the
// JSON responses. The OAuth helper implements the authorization code flow and
// the long-lived token exchange on top of the same request path.
//
// # Usage
//
//	client, err := threads.NewClient("app-id", "app-secret",
//		threads.WithLogger(logger),
//		threads.WithTimeout(30*time.Second),
//	)
//	if err != nil {
//		log.Fatal(err)
//	}
//	client.SetAccessToken(token)
//
//	resp, err := client.Get(ctx, "me", threads.Params{"fields": "id,username"})
//	if err != nil {
//		log.Fatal(err)
//	}
//	fmt.Println(resp.Body)
//
// Endpoints outside the versioned namespace are called with Unversioned:
//
//	resp, err := client.Get(ctx, "access_token", params, threads.Unversioned())
//
// # OAuth
//
//	oauth := threads.NewOAuthHelper(client)
//	loginURL := oauth.LoginURL([]string{"threads_basic"}, redirectURI, &state)
//
//	// after the redirect
//	code, _, err := threads.ParseCallback(callbackURL)
//	resp, err := oauth.ShortLivedAccessToken(ctx, code, redirectURI)
//	short, err := resp.Token()
//	resp, err = oauth.LongLivedAccessToken(ctx, short.AccessToken)
//
// # Error Handling
//
// Every failed call returns an *Error. Message and Code are always set; the
// platform fields (Type, ErrorCode, Subcode, TraceID) are only set when the
// API answered with a JSON error payload:
//
//	var apiErr *threads.Error
//	if errors.As(err, &apiErr) && apiErr.IsTokenExpired() {
//		// refresh or re-authorize
//	}
//
// The client does not retry or rate limit requests.
package threads
