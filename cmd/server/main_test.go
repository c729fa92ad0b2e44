package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/kuitang/note-it/internal/config"
	"github.com/kuitang/note-it/internal/notes"
	"github.com/kuitang/note-it/internal/ratelimit"
)

func testConfig() *config.Config {
	return &config.Config{
		ListenAddr:      ":0",
		ShutdownTimeout: time.Second,
		LogLevel:        "info",
		RateLimitConfig: ratelimit.Config{RPS: 100, Burst: 100, CleanupInterval: time.Hour},
		PreviewLines:    3,
		MCPPath:         "/mcp",
	}
}

func newTestHandler(t *testing.T, cfg *config.Config) (http.Handler, *notes.Store) {
	t.Helper()
	store := notes.NewStore()
	limiter := ratelimit.NewRateLimiter(cfg.RateLimitConfig)
	t.Cleanup(limiter.Stop)
	return buildHandler(cfg, store, limiter), store
}

func TestRun_ShutsDownCleanlyOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.NoError(t, run(ctx, testConfig()))
	goleak.VerifyNone(t)
}

func TestSeedSampleNotes(t *testing.T) {
	store := notes.NewStore()
	seedSampleNotes(store)

	require.Equal(t, 3, store.Count())
	for i, title := range []string{"Note One", "Note Two", "Note Three"} {
		n, err := store.Get(i)
		require.NoError(t, err)
		assert.Equal(t, title, n.Title)
		assert.Equal(t, i == 1, n.Favourite, "note %d favourite", i)
	}
}

func TestBuildHandler_ServesNotesWithRequestID(t *testing.T) {
	handler, store := newTestHandler(t, testConfig())
	seedSampleNotes(store)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/notes/count", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))
	var body struct {
		Count int `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 3, body.Count)
}

func TestBuildHandler_Healthz(t *testing.T) {
	handler, _ := newTestHandler(t, testConfig())

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestBuildHandler_MetricsReportNoteCount(t *testing.T) {
	handler, store := newTestHandler(t, testConfig())
	seedSampleNotes(store)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "noteit_server_notes 3")
}

func TestBuildHandler_MCPAnswersStreamableMethods(t *testing.T) {
	for _, path := range []string{"/mcp", "/tools/notes"} {
		t.Run(path, func(t *testing.T) {
			cfg := testConfig()
			cfg.MCPPath = path
			handler, _ := newTestHandler(t, cfg)

			for _, method := range []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions} {
				rec := httptest.NewRecorder()
				handler.ServeHTTP(rec, httptest.NewRequest(method, path, nil))

				// the mux's own 404/405 carry no CORS headers; only the MCP server sets them
				assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"), "%s %s did not reach the MCP server", method, path)
			}
		})
	}
}

func TestBuildHandler_MCPToolCallAtCustomPath(t *testing.T) {
	cfg := testConfig()
	cfg.MCPPath = "/tools/notes"
	handler, store := newTestHandler(t, cfg)
	seedSampleNotes(store)

	req := httptest.NewRequest(http.MethodPost, cfg.MCPPath,
		strings.NewReader(`{"jsonrpc":"2.0","id":1,"method":"tools/call","params":{"name":"note_get","arguments":{"index":1}}}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json, text/event-stream")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, "body: %s", rec.Body.String())
	assert.Contains(t, rec.Body.String(), "Note Two")

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, "/mcp", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code, "default path must not be mounted when MCP_PATH moves")
}

func TestBuildHandler_MCPMountToggle(t *testing.T) {
	preflight := func(h http.Handler) int {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, "/mcp", nil))
		return rec.Code
	}

	withMCP, _ := newTestHandler(t, testConfig())
	assert.Equal(t, http.StatusNoContent, preflight(withMCP))

	cfg := testConfig()
	cfg.NoMCP = true
	withoutMCP, _ := newTestHandler(t, cfg)
	assert.Equal(t, http.StatusNotFound, preflight(withoutMCP))
}

func TestBuildHandler_RateLimited(t *testing.T) {
	cfg := testConfig()
	cfg.RateLimitConfig = ratelimit.Config{RPS: 0.001, Burst: 1, CleanupInterval: time.Hour}
	handler, _ := newTestHandler(t, cfg)

	send := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/notes", nil)
		req.RemoteAddr = "203.0.113.7:5555"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec
	}

	assert.Equal(t, http.StatusOK, send().Code)
	limited := send()
	assert.Equal(t, http.StatusTooManyRequests, limited.Code)
	assert.True(t, strings.TrimSpace(limited.Header().Get("Retry-After")) != "")
}
