package verification

import (
	"strings"
	"unicode"
)

// normalizeName lowercases and strips all whitespace, including ideographic
// spaces, so "山田 太郎" and "山田　太郎" compare equal.
func normalizeName(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	for _, r := range strings.ToLower(name) {
		if unicode.IsSpace(r) {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// namesMatch compares two names after normalization.
func namesMatch(a, b string) bool {
	return normalizeName(a) == normalizeName(b)
}
