// internal/security/scrubber.go
// Redaction of credentials in rendered action messages.
package security

import "regexp"

var (
	// key=value or key: value pairs whose key names a credential
	credentialPattern = regexp.MustCompile(`(?i)\b(token|api[_-]?key|password|passwd|secret)(\s*[=:]\s*)\S+`)
	// Bearer token pattern
	bearerPattern = regexp.MustCompile(`Bearer\s+\S{20,}`)
	// Long hex strings (32+ chars), likely API keys
	hexKeyPattern = regexp.MustCompile(`\b[0-9a-fA-F]{32,}\b`)
)

// Scrub redacts credentials from a message before it is logged.
func Scrub(message string) string {
	result := credentialPattern.ReplaceAllString(message, "${1}${2}[REDACTED]")
	result = bearerPattern.ReplaceAllString(result, "Bearer [REDACTED]")
	result = hexKeyPattern.ReplaceAllString(result, "[REDACTED]")
	return result
}
