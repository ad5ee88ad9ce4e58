package skill

import "strings"

// NormalizeName trims and collapses inner whitespace. Case is preserved.
func NormalizeName(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// NameKey is the comparison key for case-insensitive uniqueness.
func NameKey(s string) string {
	return strings.ToLower(NormalizeName(s))
}
