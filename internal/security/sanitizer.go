// internal/security/sanitizer.go
package security

import "strings"

// MaxValueLength caps an interpolated argument value, in runes
const MaxValueLength = 1024

// SanitizeValue cleans an argument value before it is interpolated into a
// log message: control characters and line breaks are stripped so a
// received command cannot forge extra log lines, and the result is truncated.
func SanitizeValue(s string) string {
	var b strings.Builder
	n := 0
	for _, r := range s {
		if r < 0x20 && r != '\t' || r == 0x7f {
			continue
		}
		if n == MaxValueLength {
			break
		}
		b.WriteRune(r)
		n++
	}
	return b.String()
}

// SanitizeArgs returns a copy of args with every string-rendered value
// sanitized. nil values are kept so templates render them empty.
func SanitizeArgs(args map[string]any, render func(any) string) map[string]any {
	out := make(map[string]any, len(args))
	for k, v := range args {
		if v == nil {
			out[k] = nil
			continue
		}
		out[k] = SanitizeValue(render(v))
	}
	return out
}
