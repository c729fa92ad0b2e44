package obs

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"pgregory.net/rapid"
)

func decodeLogLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var entry map[string]any
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			t.Fatalf("log line is not JSON: %q (%v)", line, err)
		}
		out = append(out, entry)
	}
	return out
}

func TestRequestContextMiddleware_GeneratesAndEchoesRequestID(t *testing.T) {
	var seen Correlation
	h := RequestContextMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = CorrelationFromContext(r.Context())
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/notes", nil))

	id := rec.Header().Get("X-Request-Id")
	if !strings.HasPrefix(id, "req-") {
		t.Fatalf("generated request id %q lacks req- prefix", id)
	}
	if seen.RequestID != id {
		t.Fatalf("context request id %q, header %q", seen.RequestID, id)
	}
}

func TestRequestContextMiddleware_UsesTraceparent(t *testing.T) {
	var seen Correlation
	h := RequestContextMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = CorrelationFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/notes", nil)
	req.Header.Set("traceparent", "00-4BF92F3577B34DA6A3CE929D0E0E4736-00f067aa0ba902b7-01")
	req.Header.Set("Mcp-Session-Id", "sess-1")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	const traceID = "4bf92f3577b34da6a3ce929d0e0e4736"
	if seen.TraceID != traceID || seen.RequestID != traceID {
		t.Fatalf("correlation = %+v, want trace and request id %s", seen, traceID)
	}
	if seen.MCPSessionID != "sess-1" {
		t.Fatalf("mcp session id = %q", seen.MCPSessionID)
	}
}

func testExtractTraceID_RejectsMalformed(t *rapid.T) {
	junk := rapid.StringMatching(`[a-z0-9\-]{0,60}`).Draw(t, "junk")
	got := extractTraceID(junk)
	if got == "" {
		return
	}
	if len(got) != 32 || got == strings.Repeat("0", 32) {
		t.Fatalf("extractTraceID(%q) = %q", junk, got)
	}
}

func TestExtractTraceID_RejectsMalformed(t *testing.T) {
	rapid.Check(t, testExtractTraceID_RejectsMalformed)
}

func TestAccessLogMiddleware_LogsStatusAndCorrelation(t *testing.T) {
	var buf bytes.Buffer
	restore := SetOutputForTests(&buf)
	defer restore()

	h := RequestContextMiddleware(AccessLogMiddleware("api", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte("short and stout"))
	})))

	req := httptest.NewRequest(http.MethodGet, "/notes/0", nil)
	req.Header.Set("X-Request-Id", "req-test")
	h.ServeHTTP(httptest.NewRecorder(), req)

	entries := decodeLogLines(t, &buf)
	if len(entries) != 1 {
		t.Fatalf("expected 1 log entry, got %d: %s", len(entries), buf.String())
	}
	e := entries[0]
	if e["msg"] != "http_access" || e["pkg"] != "api" || e["request_id"] != "req-test" {
		t.Fatalf("unexpected access entry: %v", e)
	}
	if status, _ := e["status"].(float64); int(status) != http.StatusTeapot {
		t.Fatalf("status = %v", e["status"])
	}
	if n, _ := e["resp_bytes"].(float64); int(n) != len("short and stout") {
		t.Fatalf("resp_bytes = %v", e["resp_bytes"])
	}
}

func TestRecoverMiddleware_Returns500(t *testing.T) {
	var buf bytes.Buffer
	restore := SetOutputForTests(&buf)
	defer restore()

	h := RecoverMiddleware(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("simulated panic")
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/notes", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Internal server error") {
		t.Fatalf("unexpected body %q", rec.Body.String())
	}
	if !strings.Contains(buf.String(), "simulated panic") {
		t.Fatalf("panic not logged: %s", buf.String())
	}
}

func TestFrom_AddsCorrelationAttrs(t *testing.T) {
	var buf bytes.Buffer
	restore := SetOutputForTests(&buf)
	defer restore()

	ctx := WithCorrelation(context.Background(), Correlation{RequestID: "req-1"})
	ctx = WithCorrelation(ctx, Correlation{TraceID: "abc"})
	From(ctx).Info("hello")

	entries := decodeLogLines(t, &buf)
	if len(entries) != 1 || entries[0]["request_id"] != "req-1" || entries[0]["trace_id"] != "abc" {
		t.Fatalf("unexpected entries: %v", entries)
	}
	if got := RequestIDFromContext(context.Background()); got != "unknown" {
		t.Fatalf("RequestIDFromContext(empty) = %q", got)
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		" WARN ":  slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"bogus":   slog.LevelInfo,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Fatalf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}
