// note-it server: an ordered note list over JSON HTTP and MCP.

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/kuitang/note-it/internal/api"
	"github.com/kuitang/note-it/internal/config"
	"github.com/kuitang/note-it/internal/mcp"
	"github.com/kuitang/note-it/internal/metrics"
	"github.com/kuitang/note-it/internal/notes"
	"github.com/kuitang/note-it/internal/obs"
	"github.com/kuitang/note-it/internal/ratelimit"
)

var version = "dev"

func main() {
	flags, err := config.ParseFlags(flag.CommandLine, os.Args[1:])
	if err != nil {
		os.Exit(2)
	}
	cfg := config.MustLoadConfig(flags)

	obs.Init()
	obs.SetLevel(obs.ParseLevel(cfg.LogLevel))
	cfg.PrintStartupSummary(os.Stdout)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		obs.Pkg("server").Error("server_failed", "error", err)
		os.Exit(1)
	}
}

// run serves until ctx is cancelled, then drains in-flight requests within
// cfg.ShutdownTimeout.
func run(ctx context.Context, cfg *config.Config) error {
	log := obs.Pkg("server")

	store := notes.NewStore()
	if cfg.Seed {
		seedSampleNotes(store)
	}

	limiter := ratelimit.NewRateLimiter(cfg.RateLimitConfig)
	defer limiter.Stop()

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           buildHandler(cfg, store, limiter),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info("server_listening", "addr", cfg.ListenAddr, "notes", store.Count(), "mcp", !cfg.NoMCP)
		serveErr <- srv.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("listen on %s: %w", cfg.ListenAddr, err)
	case <-ctx.Done():
	}

	log.Warn("server_shutting_down", "timeout", cfg.ShutdownTimeout.String())
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}
	log.Info("server_stopped")
	return nil
}

// buildHandler wires the routes and the middleware chain around them.
func buildHandler(cfg *config.Config, store *notes.Store, limiter *ratelimit.RateLimiter) http.Handler {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	instr := metrics.NewManager("noteit", "server", reg, store.Count)

	mux := http.NewServeMux()
	mux.Handle("GET /metrics", instr.Handler())
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok"))
	})

	api.NewHandler(store, cfg.PreviewLines, cfg.BaseURL).RegisterRoutes(mux)
	if !cfg.NoMCP {
		mountMCPRoute(mux, cfg.MCPPath, mcp.NewServer(store, version))
	}

	var handler http.Handler = mux
	handler = ratelimit.Middleware(limiter, ratelimit.ClientKey)(handler)
	handler = metrics.RequestMetrics(instr)(handler)
	handler = obs.RecoverMiddleware(handler)
	handler = obs.AccessLogMiddleware("http", handler)
	handler = obs.RequestContextMiddleware(handler)
	return handler
}

// mountMCPRoute registers the Streamable HTTP methods on path.
func mountMCPRoute(mux *http.ServeMux, path string, handler http.Handler) {
	for _, method := range []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions} {
		mux.Handle(method+" "+path, handler)
	}
}

func seedSampleNotes(store *notes.Store) {
	store.Add(notes.NewNote("Note One", "Details of note one"))
	store.Add(notes.NewNote("Note Two", "Details of note two", notes.WithFavourite(true)))
	store.Add(notes.NewNote("Note Three", "Details of note three"))
	obs.Pkg("server").Debug("seeded_sample_notes", "count", store.Count())
}
