// Package strings normalizes free text coming from forms and registries.
package strings

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// DedupeAndTrimLower folds values to trimmed lower case and keeps the first
// occurrence of each, dropping blanks. A nil slice stays nil.
func DedupeAndTrimLower(values []string) []string {
	if values == nil {
		return nil
	}
	out := make([]string, 0, len(values))
	seen := make(map[string]bool, len(values))
	for _, v := range values {
		v = strings.ToLower(strings.TrimSpace(v))
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}

// Capitalize upper-cases the first rune of s and lower-cases the rest.
// Registries return names in upper case; this is how they are shown to users.
//
//	Capitalize("FIRMA SP. Z O.O.") // "Firma sp. z o.o."
func Capitalize(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return s
	}
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + strings.ToLower(s[size:])
}
