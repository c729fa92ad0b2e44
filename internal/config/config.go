// Package config loads note-it server configuration from CLI flags and
// environment variables, validates it, and fills in defaults.
//
// Flags choose behavior (--addr, --no-mcp, --seed); environment variables
// tune it.
package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/kuitang/note-it/internal/ratelimit"
)

// Config holds all application configuration.
type Config struct {
	// Server settings
	ListenAddr      string
	BaseURL         string
	ShutdownTimeout time.Duration
	LogLevel        string

	// Rate limiting
	RateLimitConfig ratelimit.Config

	// Presentation
	PreviewLines int

	// MCP tool surface
	NoMCP   bool   // --no-mcp
	MCPPath string // MCP_PATH

	// Seed the store with the three sample notes at startup (--seed)
	Seed bool
}

// Flags are the CLI switches, parsed before LoadConfig.
type Flags struct {
	Addr  string
	NoMCP bool
	Seed  bool
}

// ValidationError represents a configuration validation error with multiple issues.
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("configuration validation failed:\n  - %s", strings.Join(e.Errors, "\n  - "))
}

// ParseFlags registers and parses the server flags on fs.
func ParseFlags(fs *flag.FlagSet, args []string) (Flags, error) {
	var f Flags
	fs.StringVar(&f.Addr, "addr", "", "Listen address (default :8080, overrides LISTEN_ADDR env var)")
	fs.BoolVar(&f.NoMCP, "no-mcp", false, "Do not mount the MCP endpoint")
	fs.BoolVar(&f.Seed, "seed", false, "Start with three sample notes")
	if err := fs.Parse(args); err != nil {
		return Flags{}, err
	}
	return f, nil
}

// LoadConfig loads configuration from environment variables and CLI flag values.
func LoadConfig(flags Flags) (*Config, error) {
	cfg := &Config{
		NoMCP: flags.NoMCP,
		Seed:  flags.Seed,
	}

	// Server settings
	cfg.ListenAddr = getEnvOrDefault("LISTEN_ADDR", ":8080")
	if flags.Addr != "" {
		cfg.ListenAddr = flags.Addr
	}
	cfg.BaseURL = strings.TrimSpace(os.Getenv("BASE_URL"))
	if cfg.BaseURL == "" {
		cfg.BaseURL = "http://localhost" + cfg.ListenAddr
	}
	cfg.ShutdownTimeout = parseDurationOrDefault("SHUTDOWN_TIMEOUT", 10*time.Second)
	cfg.LogLevel = getEnvOrDefault("LOG_LEVEL", "info")

	// Rate limiting
	cfg.RateLimitConfig = ratelimit.Config{
		RPS:             parseFloat64OrDefault("RATE_LIMIT_RPS", ratelimit.DefaultConfig.RPS),
		Burst:           parseIntOrDefault("RATE_LIMIT_BURST", ratelimit.DefaultConfig.Burst),
		CleanupInterval: parseDurationOrDefault("RATE_LIMIT_CLEANUP_INTERVAL", ratelimit.DefaultConfig.CleanupInterval),
	}

	cfg.PreviewLines = parseIntOrDefault("PREVIEW_LINES", 3)
	cfg.MCPPath = getEnvOrDefault("MCP_PATH", "/mcp")

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks that all configuration values are usable.
func (c *Config) Validate() error {
	var errs []string

	if c.ListenAddr == "" {
		errs = append(errs, "LISTEN_ADDR must not be empty")
	}
	if c.ShutdownTimeout <= 0 {
		errs = append(errs, "SHUTDOWN_TIMEOUT must be positive")
	}
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "warning", "error":
	default:
		errs = append(errs, "LOG_LEVEL must be one of debug, info, warn, error")
	}

	if c.RateLimitConfig.RPS <= 0 {
		errs = append(errs, "RATE_LIMIT_RPS must be positive")
	}
	if c.RateLimitConfig.Burst <= 0 {
		errs = append(errs, "RATE_LIMIT_BURST must be positive")
	}
	if c.RateLimitConfig.CleanupInterval <= 0 {
		errs = append(errs, "RATE_LIMIT_CLEANUP_INTERVAL must be positive")
	}

	if c.PreviewLines < 0 {
		errs = append(errs, "PREVIEW_LINES must not be negative")
	}

	if !c.NoMCP {
		if !strings.HasPrefix(c.MCPPath, "/") {
			errs = append(errs, "MCP_PATH must start with / (or use --no-mcp)")
		} else if c.MCPPath == "/notes" || strings.HasPrefix(c.MCPPath, "/notes/") {
			errs = append(errs, "MCP_PATH must not overlap the /notes API")
		} else if c.MCPPath == "/metrics" || c.MCPPath == "/healthz" {
			errs = append(errs, "MCP_PATH must not reuse "+c.MCPPath)
		}
	}

	if len(errs) > 0 {
		return &ValidationError{Errors: errs}
	}

	return nil
}

// PrintStartupSummary prints a human-readable summary of the configuration.
func (c *Config) PrintStartupSummary(w io.Writer) {
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "note-it server starting...")
	fmt.Fprintf(w, "  Listen:  %s\n", c.ListenAddr)
	fmt.Fprintf(w, "  Base:    %s\n", c.BaseURL)
	if c.NoMCP {
		fmt.Fprintln(w, "  MCP:     disabled (--no-mcp)")
	} else {
		fmt.Fprintf(w, "  MCP:     %s%s\n", c.BaseURL, c.MCPPath)
	}
	fmt.Fprintf(w, "  Limits:  %.1f req/s, burst %d per client\n", c.RateLimitConfig.RPS, c.RateLimitConfig.Burst)
	if c.Seed {
		fmt.Fprintln(w, "  Store:   seeded with sample notes (--seed)")
	} else {
		fmt.Fprintln(w, "  Store:   empty")
	}
	fmt.Fprintln(w, "")
}

// Helper functions for parsing environment variables

func getEnvOrDefault(key, defaultValue string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue
	}
	return value
}

func parseIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}

func parseFloat64OrDefault(key string, defaultValue float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return defaultValue
	}
	return parsed
}

func parseDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}

// MustLoadConfig loads configuration and panics if validation fails.
func MustLoadConfig(flags Flags) *Config {
	cfg, err := LoadConfig(flags)
	if err != nil {
		var validationErr *ValidationError
		if errors.As(err, &validationErr) {
			panic(fmt.Sprintf("Configuration validation failed:\n  - %s", strings.Join(validationErr.Errors, "\n  - ")))
		}
		panic(fmt.Sprintf("Failed to load configuration: %v", err))
	}
	return cfg
}
