package mcp

import (
	"fmt"
	"net/http"

	"github.com/kuitang/note-it/internal/notes"
	"github.com/kuitang/note-it/internal/obs"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Server wraps the MCP server with notes handling
type Server struct {
	mcpServer   *mcp.Server
	handler     *Handler
	httpHandler http.Handler
}

// NewServer creates an MCP server exposing the note tools over the store.
func NewServer(store *notes.Store, version string) *Server {
	handler := NewHandler(store)

	mcpServer := mcp.NewServer(
		&mcp.Implementation{
			Name:    "note-it",
			Version: version,
		},
		nil,
	)

	for _, tool := range NoteToolDefinitions() {
		mcp.AddTool(mcpServer, tool, handler.createToolHandler(tool.Name))
	}
	registerPrompts(mcpServer)

	// Every request is self-contained, so sessions are not tracked and
	// responses are plain JSON rather than SSE.
	httpHandler := mcp.NewStreamableHTTPHandler(
		func(*http.Request) *mcp.Server {
			return mcpServer
		},
		&mcp.StreamableHTTPOptions{
			JSONResponse: true,
			Stateless:    true,
		},
	)

	return &Server{
		mcpServer:   mcpServer,
		handler:     handler,
		httpHandler: httpHandler,
	}
}

// MCPServer exposes the underlying SDK server, e.g. for in-memory transports.
func (s *Server) MCPServer() *mcp.Server {
	return s.mcpServer
}

// ServeHTTP implements http.Handler for the Streamable HTTP transport.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Accept, Mcp-Session-Id, Last-Event-ID")
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")

	if r.Method == http.MethodOptions {
		w.Header().Set("Access-Control-Max-Age", "86400")
		w.WriteHeader(http.StatusNoContent)
		return
	}

	log := obs.From(r.Context()).With("pkg", "mcp")
	wrapped, recorder := obs.NewResponseRecorder(w)

	defer func() {
		if rec := recover(); rec != nil {
			log.Error("mcp_panic", "method", r.Method, "path", r.URL.Path, "panic", fmt.Sprint(rec))
			if !recorder.WroteHeader() {
				http.Error(w, "Internal server error", http.StatusInternalServerError)
			}
			return
		}
		if !recorder.WroteHeader() {
			log.Error("mcp_no_response", "method", r.Method, "path", r.URL.Path)
			http.Error(w, "MCP handler returned without writing response", http.StatusInternalServerError)
			return
		}
		if recorder.StatusCode() >= http.StatusBadRequest {
			log.Warn("mcp_request_failed", "method", r.Method, "path", r.URL.Path, "status", recorder.StatusCode())
		}
	}()

	s.httpHandler.ServeHTTP(wrapped, r)
}
