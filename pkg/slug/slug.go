// Package slug derives URL-safe organization slugs from display names.
package slug

import (
	"fmt"
	"strings"
)

// Make lowercases name and collapses every run of non-alphanumeric
// characters into a single hyphen. The result has no leading or
// trailing hyphens. An empty or fully non-alphanumeric name yields "".
func Make(name string) string {
	var b strings.Builder
	hyphen := false
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			if hyphen && b.Len() > 0 {
				b.WriteByte('-')
			}
			hyphen = false
			b.WriteRune(r)
		default:
			hyphen = true
		}
	}
	return b.String()
}

// WithSuffix returns base for n <= 1, otherwise base-n. Candidate n is
// tried in order during creation so repeated identical names resolve
// deterministically (acme, acme-2, acme-3, ...).
func WithSuffix(base string, n int) string {
	if n <= 1 {
		return base
	}
	return fmt.Sprintf("%s-%d", base, n)
}
