// Package fleep provides a client for the Fleep.io conversation API.
//
// Fleep authenticates with a dual-token scheme: a login call returns a
// session token as the token_id cookie plus a ticket in the response body,
// and every subsequent call must carry both — the token as a cookie and the
// ticket merged into the JSON request body. The client owns this session
// pair for its lifetime, establishes it lazily on first use, and recovers
// from session expiry (HTTP 401) by re-authenticating once and retrying
// the failed call exactly once.
//
// Credentials come from the FLEEP_EMAIL and FLEEP_PASSWORD environment
// variables; constructing a client without both fails immediately, before
// any network activity.
//
// Example usage:
//
//	creds, err := fleep.CredentialsFromEnv()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	client, err := fleep.NewClient(creds)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	result, err := client.SendMessage(ctx, "conv-1", "Hello from Go!", nil)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// Errors are typed: *ConfigError for missing credentials, *AuthError for
// login failures, and *APIError for authenticated-call failures. A repeated
// 401 after a successful re-login surfaces as *APIError, not *AuthError,
// since the credentials were just proven valid.
package fleep
