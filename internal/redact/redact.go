// Package redact strips sensitive material from strings before they
// reach logs or error responses. The service carries user identity
// tokens and third-party OAuth credentials through most of its flows,
// so raw error text can never be trusted to be safe.
package redact

import "regexp"

// Placeholders substituted for matched sensitive content.
const (
	CredentialPlaceholder = "[REDACTED_CREDENTIAL]"
	TokenPlaceholder      = "[REDACTED_TOKEN]"
	EmailPlaceholder      = "[REDACTED_EMAIL]"
	HostPlaceholder       = "[REDACTED_HOST]"
)

var (
	// Connection strings with inline credentials.
	connStringRegex = regexp.MustCompile(`(?i)(postgres|postgresql|mysql|redis)://[^@\s]+@`)

	// JWTs: three dot-separated base64url segments starting with eyJ.
	jwtRegex = regexp.MustCompile(`eyJ[A-Za-z0-9_-]+\.eyJ[A-Za-z0-9_-]+\.[A-Za-z0-9_-]+`)

	// Labeled secrets: client_secret=..., refresh_token: "...", etc.
	secretRegex = regexp.MustCompile(
		`(?i)(client[_-]?secret|refresh[_-]?token|access[_-]?token|api[_-]?key|secret|password)(['"\s:=]+)[A-Za-z0-9_\-.~+/]{6,}`,
	)

	emailRegex = regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`)

	hostPortRegex = regexp.MustCompile(
		`\b(?:[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?\.)+[a-zA-Z]{2,}:\d{1,5}\b`,
	)

	replacements = []struct {
		pattern     *regexp.Regexp
		placeholder string
	}{
		{connStringRegex, CredentialPlaceholder},
		{jwtRegex, TokenPlaceholder},
		{secretRegex, CredentialPlaceholder},
		{emailRegex, EmailPlaceholder},
		{hostPortRegex, HostPlaceholder},
	}
)

// String returns input with all recognized sensitive content replaced
// by placeholders.
func String(input string) string {
	if input == "" {
		return input
	}
	result := input
	for _, r := range replacements {
		result = r.pattern.ReplaceAllString(result, r.placeholder)
	}
	return result
}

// Error redacts an error's message. Returns "" for nil.
func Error(err error) string {
	if err == nil {
		return ""
	}
	return String(err.Error())
}
