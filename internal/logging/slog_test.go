package logging

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestAnonymizeEmail(t *testing.T) {
	tests := []struct {
		name  string
		email string
	}{
		{name: "regular email", email: "jane@example.com"},
		{name: "another email", email: "bob@example.com"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AnonymizeEmail(tt.email)
			if !strings.HasPrefix(got, "user:") {
				t.Errorf("AnonymizeEmail(%q) = %q, want user: prefix", tt.email, got)
			}
			if strings.Contains(got, tt.email) {
				t.Errorf("AnonymizeEmail(%q) leaked the email: %q", tt.email, got)
			}
			// Stable: same input, same hash.
			if again := AnonymizeEmail(tt.email); again != got {
				t.Errorf("AnonymizeEmail not deterministic: %q != %q", again, got)
			}
		})
	}

	if got := AnonymizeEmail(""); got != "" {
		t.Errorf("AnonymizeEmail(\"\") = %q, want empty", got)
	}

	if AnonymizeEmail("a@example.com") == AnonymizeEmail("b@example.com") {
		t.Error("different emails should hash differently")
	}
}

func TestSanitizeToken(t *testing.T) {
	tests := []struct {
		name  string
		token string
		want  string
	}{
		{name: "empty token", token: "", want: "<empty>"},
		{name: "short token", token: "abc", want: "[token:3 chars]"},
		{name: "long token", token: strings.Repeat("x", 64), want: "[token:64 chars]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SanitizeToken(tt.token); got != tt.want {
				t.Errorf("SanitizeToken(%q) = %q, want %q", tt.token, got, tt.want)
			}
		})
	}
}

func TestErrNilSafe(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	logger.Info("operation done", Err(nil))
	if strings.Contains(buf.String(), KeyError) {
		t.Errorf("Err(nil) should not emit an error attribute: %s", buf.String())
	}
}

func TestWithOperation(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	WithOperation(logger, "login").Info("done")
	if !strings.Contains(buf.String(), "operation=login") {
		t.Errorf("expected operation attribute in output: %s", buf.String())
	}
}

func TestSlogAdapter(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	adapter := NewSlogAdapter(logger)
	adapter.Infof("hello %s", "world")
	adapter.Errorf("failed after %d attempts", 2)

	out := buf.String()
	if !strings.Contains(out, "hello world") {
		t.Errorf("Infof output missing: %s", out)
	}
	if !strings.Contains(out, "failed after 2 attempts") {
		t.Errorf("Errorf output missing: %s", out)
	}
}

func TestSlogAdapterNilLogger(t *testing.T) {
	adapter := NewSlogAdapter(nil)
	if adapter.Logger() == nil {
		t.Error("NewSlogAdapter(nil) should fall back to the default logger")
	}
}
