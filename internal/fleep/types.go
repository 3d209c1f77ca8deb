package fleep

import (
	"fmt"
	"os"
	"strings"
)

// Environment variables that supply the Fleep account credentials.
const (
	EnvEmail    = "FLEEP_EMAIL"
	EnvPassword = "FLEEP_PASSWORD"
)

// Credentials holds the static account identity used for login.
// They are immutable for the lifetime of a Client and are only ever
// transmitted in the login request body.
type Credentials struct {
	// Email is the Fleep account email address
	Email string

	// Password is the Fleep account password
	Password string
}

// CredentialsFromEnv reads credentials from the FLEEP_EMAIL and
// FLEEP_PASSWORD environment variables. If either is missing or empty,
// a *ConfigError is returned and no network activity is possible.
func CredentialsFromEnv() (Credentials, error) {
	creds := Credentials{
		Email:    os.Getenv(EnvEmail),
		Password: os.Getenv(EnvPassword),
	}
	if err := creds.Validate(); err != nil {
		return Credentials{}, err
	}
	return creds, nil
}

// Validate checks that both credential fields are present.
func (c Credentials) Validate() error {
	var missing []string
	if c.Email == "" {
		missing = append(missing, EnvEmail)
	}
	if c.Password == "" {
		missing = append(missing, EnvPassword)
	}
	if len(missing) > 0 {
		return &ConfigError{Missing: missing}
	}
	return nil
}

// session is the authenticated identity pair issued at login. Both fields
// are always set together and cleared together; a session holding only one
// of them never exists.
type session struct {
	// token is the opaque session token carried as the token_id cookie
	token string

	// ticket is the opaque per-session string merged into every
	// authenticated request body
	ticket string
}

// valid reports whether the session holds a complete token/ticket pair.
func (s session) valid() bool {
	return s.token != "" && s.ticket != ""
}

// ConfigError reports missing credentials at client construction time.
// It is fatal and non-retryable: the client refuses to start without a
// complete credential pair.
type ConfigError struct {
	// Missing lists the environment variable names that were not set
	Missing []string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	if len(e.Missing) == 0 {
		return "fleep: credentials not configured"
	}
	return fmt.Sprintf("fleep: %s must be set", strings.Join(e.Missing, " and "))
}

// AuthError reports a failed login: a transport or HTTP failure on the
// login call, or a login response missing the session cookie or ticket.
type AuthError struct {
	// Reason describes what went wrong (e.g. "missing token_id cookie")
	Reason string

	// StatusCode is the HTTP status of the login response, if one was received
	StatusCode int

	// Cookies lists the names of the cookies that were received, for
	// diagnosing a response that lacked the session cookie
	Cookies []string

	// Err is the underlying error, if any
	Err error
}

// Error implements the error interface.
func (e *AuthError) Error() string {
	msg := "fleep: authentication failed"
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(" (status %d)", e.StatusCode)
	}
	if len(e.Cookies) > 0 {
		msg += fmt.Sprintf(" (received cookies: %s)", strings.Join(e.Cookies, ", "))
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap implements the errors.Unwrap interface.
func (e *AuthError) Unwrap() error {
	return e.Err
}

// APIError reports a failed authenticated call: any non-401 HTTP error, a
// repeated 401 after a successful re-login, or a transport failure. A
// repeated 401 is deliberately an APIError rather than an AuthError since
// the credentials were just proven valid by the re-login.
type APIError struct {
	// Endpoint is the API endpoint path the call targeted
	Endpoint string

	// StatusCode is the HTTP status of the failed response, if one was received
	StatusCode int

	// Err is the underlying error, if any
	Err error
}

// Error implements the error interface.
func (e *APIError) Error() string {
	msg := "fleep: API request failed"
	if e.Endpoint != "" {
		msg += " (" + e.Endpoint + ")"
	}
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(": status %d", e.StatusCode)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap implements the errors.Unwrap interface.
func (e *APIError) Unwrap() error {
	return e.Err
}
