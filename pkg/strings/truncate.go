package strings

import (
	"strings"
)

// DefaultMaxLen is the error column width used by table output.
const DefaultMaxLen = 80

// MinTruncateLen is the smallest maxLen that leaves room for one character
// plus "...".
const MinTruncateLen = 4

// SingleLine truncates s to maxLen runes on a single line. Any run of
// whitespace, including the newlines errors.Join inserts, becomes one space
// and a truncated result ends in "...". maxLen below MinTruncateLen is
// raised to MinTruncateLen.
func SingleLine(s string, maxLen int) string {
	if maxLen < MinTruncateLen {
		maxLen = MinTruncateLen
	}

	s = strings.Join(strings.Fields(s), " ")

	runes := []rune(s)
	if len(runes) > maxLen {
		return string(runes[:maxLen-3]) + "..."
	}
	return s
}
