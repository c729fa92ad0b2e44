package logutil

import (
	"strings"
	"testing"
	"unicode/utf8"

	"pgregory.net/rapid"
)

func testTruncateForLog_SingleLineAndBounded(t *rapid.T) {
	value := rapid.StringMatching(`[A-Za-z0-9 \n]{0,200}`).Draw(t, "value")
	maxChars := rapid.IntRange(1, 80).Draw(t, "maxChars")

	got := TruncateForLog(value, maxChars)
	if strings.Contains(got, "\n") {
		t.Fatalf("output contains a raw newline: %q", got)
	}
	limit := maxChars + len("... [truncated]")
	if len(got) > limit {
		t.Fatalf("output length %d exceeds %d: %q", len(got), limit, got)
	}
}

func TestTruncateForLog_SingleLineAndBounded(t *testing.T) {
	rapid.Check(t, testTruncateForLog_SingleLineAndBounded)
}

func TestTruncateForLog_KeepsRunesWhole(t *testing.T) {
	got := TruncateForLog("Café über alles", 4)
	if got != "Café... [truncated]" {
		t.Fatalf("got %q", got)
	}
	if !utf8.ValidString(got) {
		t.Fatalf("invalid utf-8: %q", got)
	}
}
