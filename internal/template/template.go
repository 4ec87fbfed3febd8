// internal/template/template.go
package template

import (
	"fmt"
	"regexp"
	"sort"
)

var templateVar = regexp.MustCompile(`\{\{\s*(\w+)\s*\}\}`)

// Expand replaces {{variable}} placeholders with values from data.
// Unknown variables are left in place; nil values render as an empty string.
func Expand(tmpl string, data map[string]any) string {
	return templateVar.ReplaceAllStringFunc(tmpl, func(match string) string {
		varName := templateVar.FindStringSubmatch(match)[1]

		val, ok := data[varName]
		if !ok {
			return match
		}
		if val == nil {
			return ""
		}
		return fmt.Sprintf("%v", val)
	})
}

// Vars returns the distinct variable names used by tmpl, sorted
func Vars(tmpl string) []string {
	seen := make(map[string]bool)
	var vars []string
	for _, m := range templateVar.FindAllStringSubmatch(tmpl, -1) {
		if !seen[m[1]] {
			seen[m[1]] = true
			vars = append(vars, m[1])
		}
	}
	sort.Strings(vars)
	return vars
}
