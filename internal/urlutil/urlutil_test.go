package urlutil

import (
	"crypto/tls"
	"fmt"
	"net/http/httptest"
	"strings"
	"testing"

	"pgregory.net/rapid"
)

func testNoteURL_EndsWithIndexPath(t *rapid.T) {
	host := rapid.StringMatching(`[a-z]{1,10}\.example\.com`).Draw(t, "host")
	slashes := rapid.IntRange(0, 3).Draw(t, "trailing_slashes")
	index := rapid.IntRange(-5, 500).Draw(t, "index")

	origin := "https://" + host + strings.Repeat("/", slashes)
	got := NoteURL(origin, index)
	want := fmt.Sprintf("https://%s/notes/%d", host, index)
	if got != want {
		t.Fatalf("NoteURL(%q, %d) = %q, want %q", origin, index, got, want)
	}
}

func TestNoteURL_EndsWithIndexPath(t *testing.T) {
	rapid.Check(t, testNoteURL_EndsWithIndexPath)
}

func TestOrigin(t *testing.T) {
	req := httptest.NewRequest("GET", "/notes", nil)
	req.Host = "notes.example.com"
	if got := Origin(req, "http://fallback"); got != "http://notes.example.com" {
		t.Fatalf("plain origin = %q", got)
	}

	req.Header.Set("X-Forwarded-Proto", "https, http")
	if got := Origin(req, "http://fallback"); got != "https://notes.example.com" {
		t.Fatalf("forwarded origin = %q", got)
	}

	req.Header.Set("X-Forwarded-Proto", "gopher")
	req.TLS = &tls.ConnectionState{}
	if got := Origin(req, "http://fallback"); got != "https://notes.example.com" {
		t.Fatalf("tls origin = %q", got)
	}

	req.Host = ""
	if got := Origin(req, "http://localhost:8080/"); got != "http://localhost:8080" {
		t.Fatalf("fallback origin = %q", got)
	}
	if got := Origin(nil, ""); got != "" {
		t.Fatalf("nil request origin = %q", got)
	}
}
