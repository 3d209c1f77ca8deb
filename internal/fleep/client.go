package fleep

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"github.com/fleepio/fleep-mcp/internal/instrumentation"
	"github.com/fleepio/fleep-mcp/internal/logging"
)

const (
	// DefaultBaseURL is the Fleep API base URL
	DefaultBaseURL = "https://fleep.io/api"

	// loginEndpoint is the account login endpoint, relative to the base URL
	loginEndpoint = "account/login"

	// sessionCookie is the cookie name the server uses for the session token
	sessionCookie = "token_id"

	// ticketKey is the body field that must carry the ticket on every
	// authenticated call
	ticketKey = "ticket"
)

// Client maintains one logical session against the Fleep API. It owns the
// session token/ticket pair, performs login, and transparently recovers
// from session expiry by re-authenticating once and retrying the failed
// call once.
type Client struct {
	baseURL    string
	creds      Credentials
	httpClient *http.Client
	logger     *slog.Logger
	metrics    *instrumentation.Metrics

	// mu guards sess. Login runs with mu held so that concurrent callers
	// needing a session coalesce into a single login instead of racing.
	mu   sync.Mutex
	sess session
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the Fleep API base URL.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// WithHTTPClient overrides the HTTP client used for all requests.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithLogger sets the logger for the client.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithMetrics sets the metrics recorder for authentication events.
func WithMetrics(metrics *instrumentation.Metrics) Option {
	return func(c *Client) {
		c.metrics = metrics
	}
}

// NewClient creates a Fleep client with the given credentials. It fails
// with *ConfigError if either credential field is empty; this check happens
// before any network activity. No login is performed here — the first
// authenticated request (or an explicit Authenticate call) establishes the
// session.
func NewClient(creds Credentials, opts ...Option) (*Client, error) {
	if err := creds.Validate(); err != nil {
		return nil, err
	}

	c := &Client{
		baseURL:    DefaultBaseURL,
		creds:      creds,
		httpClient: &http.Client{},
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// Email returns the account email this client authenticates as.
func (c *Client) Email() string {
	return c.creds.Email
}

// Authenticate logs in to the Fleep API and replaces the held session pair.
// It does not retry internally; callers needing retry must invoke it again.
func (c *Client) Authenticate(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loginLocked(ctx)
}

// loginLocked performs the login call and atomically installs the new
// session pair. Callers must hold c.mu.
func (c *Client) loginLocked(ctx context.Context) error {
	sess, err := c.login(ctx)
	if err != nil {
		if c.metrics != nil {
			c.metrics.RecordAuthAttempt(ctx, instrumentation.StatusError)
		}
		return err
	}

	c.sess = sess
	if c.metrics != nil {
		c.metrics.RecordAuthAttempt(ctx, instrumentation.StatusSuccess)
	}
	c.logger.Debug("authenticated with Fleep API",
		logging.UserHash(c.creds.Email),
		slog.String("session_token", logging.SanitizeToken(sess.token)),
	)
	return nil
}

// login sends the login request and extracts the session pair from the
// response. It never touches c.sess.
func (c *Client) login(ctx context.Context) (session, error) {
	payload, err := json.Marshal(map[string]string{
		"email":    c.creds.Email,
		"password": c.creds.Password,
	})
	if err != nil {
		return session{}, &AuthError{Reason: "failed to encode login request", Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/"+loginEndpoint, bytes.NewReader(payload))
	if err != nil {
		return session{}, &AuthError{Reason: "failed to build login request", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return session{}, &AuthError{Reason: "login request failed", Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return session{}, &AuthError{
			Reason:     "login rejected",
			StatusCode: resp.StatusCode,
		}
	}

	// The session token arrives as a cookie; a 2xx response without it is
	// a protocol violation, not a success.
	var token string
	var cookieNames []string
	for _, cookie := range resp.Cookies() {
		cookieNames = append(cookieNames, cookie.Name)
		if cookie.Name == sessionCookie {
			token = cookie.Value
		}
	}
	if token == "" {
		return session{}, &AuthError{
			Reason:     fmt.Sprintf("no %s cookie in login response", sessionCookie),
			StatusCode: resp.StatusCode,
			Cookies:    cookieNames,
		}
	}

	var body map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return session{}, &AuthError{Reason: "failed to decode login response", Err: err}
	}
	ticket, ok := body[ticketKey].(string)
	if !ok || ticket == "" {
		return session{}, &AuthError{
			Reason:     "no ticket in login response",
			StatusCode: resp.StatusCode,
		}
	}

	return session{token: token, ticket: ticket}, nil
}

// ensureSession returns the current session pair, logging in first if the
// client holds none. Concurrent callers serialize here, so at most one
// login is in flight at any time.
func (c *Client) ensureSession(ctx context.Context) (session, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.sess.valid() {
		return c.sess, nil
	}
	if err := c.loginLocked(ctx); err != nil {
		return session{}, err
	}
	return c.sess, nil
}

// invalidate clears the session pair, but only if it still equals the pair
// the failed request used. If another caller already re-authenticated, the
// fresh pair is left in place so callers coalesce on it instead of forcing
// a redundant login.
func (c *Client) invalidate(stale session) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.sess == stale {
		c.sess = session{}
	}
}

// Request executes an authenticated call against the Fleep API.
//
// The endpoint path is joined to the base URL with any leading slashes
// stripped. The ticket is merged into a copy of the caller's body,
// overwriting any caller-supplied value of the same key; the caller's map
// is never mutated. If the server answers 401 the session is treated as
// expired: the pair is cleared, one re-login is performed, and the call is
// reissued exactly once. Any other failure — and a repeated 401 on the
// retry — surfaces as *APIError without further attempts.
func (c *Client) Request(ctx context.Context, method, endpoint string, body map[string]any) (map[string]any, error) {
	sess, err := c.ensureSession(ctx)
	if err != nil {
		return nil, err
	}

	result, status, err := c.do(ctx, method, endpoint, body, sess)
	if err == nil {
		return result, nil
	}
	if status != http.StatusUnauthorized {
		return nil, err
	}

	// Session expired. Drop the rejected pair, log in again, and retry
	// the call once with the fresh cookie and ticket.
	c.logger.Debug("session rejected, re-authenticating",
		slog.String(logging.KeyEndpoint, endpoint),
	)
	c.invalidate(sess)
	if c.metrics != nil {
		c.metrics.RecordSessionRefresh(ctx)
	}
	sess, err = c.ensureSession(ctx)
	if err != nil {
		return nil, err
	}

	result, status, err = c.do(ctx, method, endpoint, body, sess)
	if err != nil {
		return nil, err
	}
	return result, nil
}

// do issues a single authenticated call with the given session pair. It
// returns the decoded response body on success, or the HTTP status (zero
// for transport failures) alongside an *APIError.
func (c *Client) do(ctx context.Context, method, endpoint string, body map[string]any, sess session) (map[string]any, int, error) {
	payload := make(map[string]any, len(body)+1)
	for k, v := range body {
		payload[k] = v
	}
	payload[ticketKey] = sess.ticket

	encoded, err := json.Marshal(payload)
	if err != nil {
		return nil, 0, &APIError{Endpoint: endpoint, Err: err}
	}

	url := c.baseURL + "/" + strings.TrimLeft(endpoint, "/")
	req, err := http.NewRequestWithContext(ctx, method, url, bytes.NewReader(encoded))
	if err != nil {
		return nil, 0, &APIError{Endpoint: endpoint, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.AddCookie(&http.Cookie{Name: sessionCookie, Value: sess.token})

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, &APIError{Endpoint: endpoint, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// Drain so the connection can be reused.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, resp.StatusCode, &APIError{Endpoint: endpoint, StatusCode: resp.StatusCode}
	}

	var result map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, resp.StatusCode, &APIError{Endpoint: endpoint, Err: fmt.Errorf("failed to decode response: %w", err)}
	}
	return result, resp.StatusCode, nil
}

// Close releases the underlying HTTP transport. The client owns the
// transport for its full lifetime; no other component closes it.
func (c *Client) Close() {
	c.httpClient.CloseIdleConnections()
}
