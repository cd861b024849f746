// Package slug derives URL slugs from post titles.
package slug

import "strings"

// Make lowercases the title and collapses every run of non-alphanumeric
// characters into a single dash. Leading and trailing dashes are trimmed,
// so "Hello, World!" becomes "hello-world". An empty result is possible
// for titles with no alphanumeric characters; the caller decides what to
// do with it.
func Make(title string) string {
	var b strings.Builder
	b.Grow(len(title))

	lastDash := true // suppress a leading dash
	for _, r := range strings.ToLower(title) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
