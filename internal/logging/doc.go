// Package logging provides structured logging helpers built on log/slog.
//
// It defines the attribute keys used across the codebase, convenience
// constructors for common attributes, and sanitizers for sensitive values:
// account emails are logged as anonymized hashes and session tokens are
// logged as length indicators only.
package logging
