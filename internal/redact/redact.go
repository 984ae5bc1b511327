// Package redact provides utilities for redacting sensitive information from
// strings before they are logged or returned in error responses. It prevents
// accidental leakage of credentials, connection strings, and query text that
// might be embedded in error messages.
package redact

import (
	"regexp"
	"strings"
)

// RedactionPlaceholder replaces any matched sensitive fragment.
const RedactionPlaceholder = "[REDACTED]"

var (
	// Database connection strings
	dbConnRegex = regexp.MustCompile(`(?i)(postgres|mysql|db|database|connection)://[^@\s]+@`)

	// Credentials and tokens
	passwordRegex = regexp.MustCompile(`(?i)(password|passwd|pwd)([=:\s]?['"]?)[^'"&\s]{3,}`)
	apiKeyRegex   = regexp.MustCompile(
		`(?i)(api[_-]?key|token|secret|key|auth)(['"\s:=]+)[A-Za-z0-9_\-.~+/]{8,}`,
	)

	// JWT tokens: the standard three-part base64url format
	jwtTokenRegex = regexp.MustCompile(`eyJ[a-zA-Z0-9_-]+\.eyJ[a-zA-Z0-9_-]+\.[a-zA-Z0-9_-]+`)

	// SQL statements embedded in driver errors
	sqlRegex = regexp.MustCompile(
		`(?i)(SELECT|INSERT|UPDATE|DELETE|CREATE|ALTER|DROP)[\s\w,*()]+(?:FROM|INTO|SET|TABLE)(?:[\s\w,*()='"]+)?`,
	)

	patterns = []*regexp.Regexp{
		dbConnRegex,
		passwordRegex,
		apiKeyRegex,
		jwtTokenRegex,
		sqlRegex,
	}
)

// String redacts sensitive fragments from the given string.
func String(s string) string {
	if s == "" {
		return s
	}
	for _, pattern := range patterns {
		s = pattern.ReplaceAllString(s, RedactionPlaceholder)
	}
	return s
}

// Error redacts the message of an error for safe logging. Returns the empty
// string for a nil error.
func Error(err error) string {
	if err == nil {
		return ""
	}
	return strings.TrimSpace(String(err.Error()))
}
