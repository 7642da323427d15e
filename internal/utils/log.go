package utils

import "strings"

// TruncateForLog flattens s to a single line and cuts it to limit runes,
// marking the cut with "...". A non-positive limit drops s entirely.
func TruncateForLog(s string, limit int) string {
	if limit <= 0 {
		return ""
	}

	s = strings.Join(strings.Fields(s), " ")

	n := 0
	for i := range s {
		if n == limit {
			return s[:i] + "..."
		}
		n++
	}
	return s
}
