package fleep

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
)

// fakeAPI simulates the Fleep API for client tests. It counts login and
// authenticated calls and can be configured to reject calls with specific
// statuses.
type fakeAPI struct {
	t *testing.T

	mu         sync.Mutex
	loginCalls int
	apiCalls   int

	// ticket and token are the values issued at login. They change on
	// every login so tests can verify the retry uses fresh values.
	ticket string
	token  string

	// loginStatus overrides the login response status (0 means 200)
	loginStatus int

	// omitCookie suppresses the token_id cookie on login responses
	omitCookie bool

	// omitTicket suppresses the ticket field in the login response body
	omitTicket bool

	// rejectFirst makes the first N authenticated calls return 401
	rejectFirst int

	// apiStatus overrides the authenticated-call status (0 means 200)
	apiStatus int

	// lastBody is the decoded body of the most recent authenticated call
	lastBody map[string]any

	// lastPath is the URL path of the most recent authenticated call
	lastPath string

	// lastCookie is the token_id cookie of the most recent authenticated call
	lastCookie string

	server *httptest.Server
}

func newFakeAPI(t *testing.T) *fakeAPI {
	f := &fakeAPI{t: t, ticket: "ticket-1", token: "token-1"}
	f.server = httptest.NewServer(http.HandlerFunc(f.handle))
	t.Cleanup(f.server.Close)
	return f
}

func (f *fakeAPI) handle(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if r.URL.Path == "/account/login" {
		f.loginCalls++
		if f.loginStatus != 0 {
			w.WriteHeader(f.loginStatus)
			return
		}
		if f.loginCalls > 1 {
			// Fresh pair on re-login so retries are distinguishable.
			f.ticket = "ticket-2"
			f.token = "token-2"
		}
		if !f.omitCookie {
			http.SetCookie(w, &http.Cookie{Name: "token_id", Value: f.token})
		}
		http.SetCookie(w, &http.Cookie{Name: "csrf", Value: "zzz"})
		w.Header().Set("Content-Type", "application/json")
		body := map[string]any{"account_id": "acc-1"}
		if !f.omitTicket {
			body["ticket"] = f.ticket
		}
		_ = json.NewEncoder(w).Encode(body)
		return
	}

	f.apiCalls++
	f.lastPath = r.URL.Path
	f.lastCookie = ""
	if cookie, err := r.Cookie("token_id"); err == nil {
		f.lastCookie = cookie.Value
	}
	var body map[string]any
	_ = json.NewDecoder(r.Body).Decode(&body)
	f.lastBody = body

	if f.rejectFirst > 0 {
		f.rejectFirst--
		w.WriteHeader(http.StatusUnauthorized)
		return
	}
	if f.apiStatus != 0 {
		w.WriteHeader(f.apiStatus)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"status": "ok", "path": r.URL.Path})
}

func (f *fakeAPI) newClient(t *testing.T) *Client {
	client, err := NewClient(
		Credentials{Email: "user@example.com", Password: "secret"},
		WithBaseURL(f.server.URL),
	)
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	t.Cleanup(client.Close)
	return client
}

func (f *fakeAPI) counts() (logins, apiCalls int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.loginCalls, f.apiCalls
}

func TestNewClientMissingCredentials(t *testing.T) {
	tests := []struct {
		name     string
		email    string
		password string
		wantErr  bool
	}{
		{
			name:     "both present",
			email:    "user@example.com",
			password: "secret",
			wantErr:  false,
		},
		{
			name:     "missing email",
			email:    "",
			password: "secret",
			wantErr:  true,
		},
		{
			name:     "missing password",
			email:    "user@example.com",
			password: "",
			wantErr:  true,
		},
		{
			name:     "both missing",
			email:    "",
			password: "",
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewClient(Credentials{Email: tt.email, Password: tt.password})
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewClient() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				var configErr *ConfigError
				if !errors.As(err, &configErr) {
					t.Errorf("NewClient() error = %T, want *ConfigError", err)
				}
			}
		})
	}
}

func TestCredentialsFromEnv(t *testing.T) {
	t.Run("both set", func(t *testing.T) {
		t.Setenv(EnvEmail, "user@example.com")
		t.Setenv(EnvPassword, "secret")

		creds, err := CredentialsFromEnv()
		if err != nil {
			t.Fatalf("CredentialsFromEnv() error = %v", err)
		}
		if creds.Email != "user@example.com" || creds.Password != "secret" {
			t.Errorf("CredentialsFromEnv() = %+v", creds)
		}
	})

	t.Run("missing password", func(t *testing.T) {
		t.Setenv(EnvEmail, "user@example.com")
		t.Setenv(EnvPassword, "")

		_, err := CredentialsFromEnv()
		var configErr *ConfigError
		if !errors.As(err, &configErr) {
			t.Fatalf("CredentialsFromEnv() error = %v, want *ConfigError", err)
		}
		if len(configErr.Missing) != 1 || configErr.Missing[0] != EnvPassword {
			t.Errorf("ConfigError.Missing = %v, want [%s]", configErr.Missing, EnvPassword)
		}
	})
}

func TestAuthenticate(t *testing.T) {
	api := newFakeAPI(t)
	client := api.newClient(t)

	if err := client.Authenticate(context.Background()); err != nil {
		t.Fatalf("Authenticate() error = %v", err)
	}

	client.mu.Lock()
	sess := client.sess
	client.mu.Unlock()

	if sess.token != "token-1" || sess.ticket != "ticket-1" {
		t.Errorf("session = %+v, want token-1/ticket-1", sess)
	}
}

func TestAuthenticateMissingCookie(t *testing.T) {
	api := newFakeAPI(t)
	api.omitCookie = true
	client := api.newClient(t)

	err := client.Authenticate(context.Background())
	var authErr *AuthError
	if !errors.As(err, &authErr) {
		t.Fatalf("Authenticate() error = %v, want *AuthError", err)
	}
	// The received cookie set is carried for diagnostics.
	if len(authErr.Cookies) != 1 || authErr.Cookies[0] != "csrf" {
		t.Errorf("AuthError.Cookies = %v, want [csrf]", authErr.Cookies)
	}
	assertSessionAtomic(t, client)
}

func TestAuthenticateMissingTicket(t *testing.T) {
	api := newFakeAPI(t)
	api.omitTicket = true
	client := api.newClient(t)

	err := client.Authenticate(context.Background())
	var authErr *AuthError
	if !errors.As(err, &authErr) {
		t.Fatalf("Authenticate() error = %v, want *AuthError", err)
	}
	assertSessionAtomic(t, client)
}

func TestAuthenticateLoginRejected(t *testing.T) {
	api := newFakeAPI(t)
	api.loginStatus = http.StatusForbidden
	client := api.newClient(t)

	err := client.Authenticate(context.Background())
	var authErr *AuthError
	if !errors.As(err, &authErr) {
		t.Fatalf("Authenticate() error = %v, want *AuthError", err)
	}
	if authErr.StatusCode != http.StatusForbidden {
		t.Errorf("AuthError.StatusCode = %d, want %d", authErr.StatusCode, http.StatusForbidden)
	}
}

func TestAuthenticateTransportError(t *testing.T) {
	client, err := NewClient(
		Credentials{Email: "user@example.com", Password: "secret"},
		WithBaseURL("http://127.0.0.1:1"),
	)
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}

	authErr := client.Authenticate(context.Background())
	var wantErr *AuthError
	if !errors.As(authErr, &wantErr) {
		t.Fatalf("Authenticate() error = %v, want *AuthError", authErr)
	}
	if wantErr.Unwrap() == nil {
		t.Error("AuthError should wrap the transport error")
	}
}

// TestRequestReusesSession verifies that sequential requests share one
// login: the session established by the first request serves the second.
func TestRequestReusesSession(t *testing.T) {
	api := newFakeAPI(t)
	client := api.newClient(t)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if _, err := client.Request(ctx, http.MethodPost, "conversation/create", nil); err != nil {
			t.Fatalf("Request() #%d error = %v", i+1, err)
		}
	}

	logins, apiCalls := api.counts()
	if logins != 1 {
		t.Errorf("login calls = %d, want 1", logins)
	}
	if apiCalls != 2 {
		t.Errorf("api calls = %d, want 2", apiCalls)
	}
}

// TestRequestRecoversFromExpiredSession verifies the 401 path: one
// re-login, one retried call, and the retried call's body is returned.
func TestRequestRecoversFromExpiredSession(t *testing.T) {
	api := newFakeAPI(t)
	client := api.newClient(t)
	ctx := context.Background()

	// Populate the session, then make the server reject it once.
	if err := client.Authenticate(ctx); err != nil {
		t.Fatalf("Authenticate() error = %v", err)
	}
	api.rejectFirst = 1

	result, err := client.Request(ctx, http.MethodPost, "conversation/sync/conv-9", map[string]any{"mk_init_mode": "ic_header"})
	if err != nil {
		t.Fatalf("Request() error = %v", err)
	}
	if result["status"] != "ok" {
		t.Errorf("Request() result = %v, want retried success body", result)
	}

	logins, apiCalls := api.counts()
	if logins != 2 {
		t.Errorf("login calls = %d, want 2 (initial + re-login)", logins)
	}
	if apiCalls != 2 {
		t.Errorf("api calls = %d, want 2 (rejected + retried)", apiCalls)
	}

	// The retry must carry the freshly issued cookie and ticket.
	api.mu.Lock()
	defer api.mu.Unlock()
	if api.lastCookie != "token-2" {
		t.Errorf("retried cookie = %q, want token-2", api.lastCookie)
	}
	if api.lastBody["ticket"] != "ticket-2" {
		t.Errorf("retried ticket = %v, want ticket-2", api.lastBody["ticket"])
	}
}

// TestRequestDoubleUnauthorized verifies that a repeated 401 after the
// re-login is terminal: the failure surfaces as *APIError and no third
// network attempt is made.
func TestRequestDoubleUnauthorized(t *testing.T) {
	api := newFakeAPI(t)
	api.rejectFirst = 2
	client := api.newClient(t)

	_, err := client.Request(context.Background(), http.MethodPost, "message/send/conv-1", map[string]any{"message": "hi"})
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("Request() error = %v, want *APIError", err)
	}
	if apiErr.StatusCode != http.StatusUnauthorized {
		t.Errorf("APIError.StatusCode = %d, want 401", apiErr.StatusCode)
	}

	logins, apiCalls := api.counts()
	if apiCalls != 2 {
		t.Errorf("api calls = %d, want exactly 2", apiCalls)
	}
	if logins != 2 {
		t.Errorf("login calls = %d, want exactly 2", logins)
	}
}

// TestRequestServerErrorNoRetry verifies that non-401 failures surface
// immediately without re-authentication.
func TestRequestServerErrorNoRetry(t *testing.T) {
	api := newFakeAPI(t)
	api.apiStatus = http.StatusInternalServerError
	client := api.newClient(t)

	_, err := client.Request(context.Background(), http.MethodPost, "conversation/create", nil)
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("Request() error = %v, want *APIError", err)
	}
	if apiErr.StatusCode != http.StatusInternalServerError {
		t.Errorf("APIError.StatusCode = %d, want 500", apiErr.StatusCode)
	}

	logins, apiCalls := api.counts()
	if logins != 1 {
		t.Errorf("login calls = %d, want 1 (no re-login on 500)", logins)
	}
	if apiCalls != 1 {
		t.Errorf("api calls = %d, want 1", apiCalls)
	}
}

// TestRequestTicketOverwrite verifies that a caller-supplied ticket is
// replaced with the client's current ticket and that the caller's body map
// is not mutated.
func TestRequestTicketOverwrite(t *testing.T) {
	api := newFakeAPI(t)
	client := api.newClient(t)

	body := map[string]any{"message": "hi", "ticket": "caller-supplied"}
	if _, err := client.Request(context.Background(), http.MethodPost, "message/send/conv-1", body); err != nil {
		t.Fatalf("Request() error = %v", err)
	}

	api.mu.Lock()
	transmitted := api.lastBody["ticket"]
	api.mu.Unlock()
	if transmitted != "ticket-1" {
		t.Errorf("transmitted ticket = %v, want ticket-1", transmitted)
	}
	if body["ticket"] != "caller-supplied" {
		t.Errorf("caller body mutated: ticket = %v", body["ticket"])
	}
}

// TestRequestAuthFailurePropagated verifies that a login failure during a
// request surfaces as *AuthError, not as a generic API error, so credential
// problems stay distinguishable from downstream API problems.
func TestRequestAuthFailurePropagated(t *testing.T) {
	api := newFakeAPI(t)
	api.loginStatus = http.StatusForbidden
	client := api.newClient(t)

	_, err := client.Request(context.Background(), http.MethodPost, "conversation/create", nil)
	var authErr *AuthError
	if !errors.As(err, &authErr) {
		t.Fatalf("Request() error = %v, want *AuthError", err)
	}

	_, apiCalls := api.counts()
	if apiCalls != 0 {
		t.Errorf("api calls = %d, want 0 (no request without a session)", apiCalls)
	}
}

func TestRequestStripsLeadingSlashes(t *testing.T) {
	api := newFakeAPI(t)
	client := api.newClient(t)

	if _, err := client.Request(context.Background(), http.MethodPost, "//conversation/create", nil); err != nil {
		t.Fatalf("Request() error = %v", err)
	}

	api.mu.Lock()
	path := api.lastPath
	api.mu.Unlock()
	if path != "/conversation/create" {
		t.Errorf("request path = %q, want /conversation/create", path)
	}
}

// TestSessionInvalidateCoalesces verifies that invalidation is a no-op when
// the session was already replaced, so concurrent 401 handlers do not force
// redundant logins.
func TestSessionInvalidateCoalesces(t *testing.T) {
	api := newFakeAPI(t)
	client := api.newClient(t)

	stale := session{token: "old-token", ticket: "old-ticket"}
	client.mu.Lock()
	client.sess = session{token: "fresh-token", ticket: "fresh-ticket"}
	client.mu.Unlock()

	client.invalidate(stale)

	client.mu.Lock()
	defer client.mu.Unlock()
	if !client.sess.valid() {
		t.Error("invalidate() cleared a session it did not own")
	}
	_ = api
}

// assertSessionAtomic checks the invariant that the session never holds
// exactly one of the token/ticket pair.
func assertSessionAtomic(t *testing.T, client *Client) {
	t.Helper()
	client.mu.Lock()
	defer client.mu.Unlock()
	if (client.sess.token == "") != (client.sess.ticket == "") {
		t.Errorf("session fields not atomic: token=%q ticket=%q", client.sess.token, client.sess.ticket)
	}
}
