package logutil

import (
	"strings"
	"unicode/utf8"
)

// TruncateForLog flattens value onto one line and cuts it to at most maxChars
// runes, marking the cut.
func TruncateForLog(value string, maxChars int) string {
	flat := strings.ReplaceAll(strings.TrimSpace(value), "\n", "\\n")
	if maxChars <= 0 || utf8.RuneCountInString(flat) <= maxChars {
		return flat
	}
	cut := 0
	for i := 0; i < maxChars; i++ {
		_, size := utf8.DecodeRuneInString(flat[cut:])
		cut += size
	}
	return flat[:cut] + "... [truncated]"
}
