package notes

import (
	"fmt"
	"strings"
)

// ContentPreview returns the first maxLines lines of text, with "\n..." appended
// when lines were dropped.
func ContentPreview(text string, maxLines int) string {
	if text == "" || maxLines <= 0 {
		return text
	}
	seen := 0
	for i := 0; i < len(text); i++ {
		if text[i] != '\n' {
			continue
		}
		seen++
		if seen == maxLines {
			return text[:i] + "\n..."
		}
	}
	return text
}

// CountLines returns the number of lines in text. Empty text has none.
func CountLines(text string) int {
	if text == "" {
		return 0
	}
	return strings.Count(text, "\n") + 1
}

// NumberedLines prefixes every line with a right-aligned 1-based line number
// and a tab.
func NumberedLines(text string) string {
	if text == "" {
		return ""
	}
	var b strings.Builder
	for i, line := range strings.Split(text, "\n") {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "%6d\t%s", i+1, line)
	}
	return b.String()
}
