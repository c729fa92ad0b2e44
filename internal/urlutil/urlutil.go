// Package urlutil builds absolute note URLs for response headers.
package urlutil

import (
	"net/http"
	"strconv"
	"strings"
)

// Origin returns scheme://host for r, honoring X-Forwarded-Proto. It falls
// back to fallback when the request carries no host.
func Origin(r *http.Request, fallback string) string {
	if r == nil || strings.TrimSpace(r.Host) == "" {
		return trimBase(fallback)
	}
	return scheme(r) + "://" + strings.TrimSpace(r.Host)
}

// NotePath is the API path of the note at index.
func NotePath(index int) string {
	return "/notes/" + strconv.Itoa(index)
}

// NoteURL joins origin and the API path of the note at index.
func NoteURL(origin string, index int) string {
	return trimBase(origin) + NotePath(index)
}

func scheme(r *http.Request) string {
	proto := strings.TrimSpace(r.Header.Get("X-Forwarded-Proto"))
	if comma := strings.Index(proto, ","); comma >= 0 {
		proto = strings.TrimSpace(proto[:comma])
	}
	if proto == "http" || proto == "https" {
		return proto
	}
	if r.TLS != nil {
		return "https"
	}
	return "http"
}

func trimBase(base string) string {
	return strings.TrimRight(strings.TrimSpace(base), "/")
}
