// Package config provides centralized configuration management for the application.
// It loads settings from environment variables, an optional config file and
// built-in defaults, and validates everything on startup to fail fast on
// misconfiguration.
package config

import (
	"net"
	"strconv"
	"time"
	"unicode/utf8"
)

// Config holds all application configuration.
//
// Every field has an env tag. Fields with a key tag can also be set from the
// file named by CONFIG_FILE (YAML, TOML or JSON). Environment variables win
// over the file, and the file wins over defaults.
type Config struct {
	Server   ServerConfig
	Export   ExportConfig
	Upload   UploadConfig
	Rate     RateLimitConfig
	Security SecurityConfig
	Logging  LoggingConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Host is the interface to bind to (default: 0.0.0.0)
	Host string `env:"SERVER_HOST" key:"server.host" default:"0.0.0.0"`

	// Port is the port to listen on (default: 8080)
	Port int `env:"SERVER_PORT" key:"server.port" default:"8080"`

	// ReadTimeout is the maximum duration for reading request body (default: 30s)
	ReadTimeout time.Duration `env:"SERVER_READ_TIMEOUT" key:"server.read_timeout" default:"30s"`

	// WriteTimeout is the maximum duration for writing response (default: 2m)
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" key:"server.write_timeout" default:"2m"`

	// IdleTimeout is the keep-alive timeout (default: 60s)
	IdleTimeout time.Duration `env:"SERVER_IDLE_TIMEOUT" key:"server.idle_timeout" default:"60s"`

	// ShutdownTimeout is the maximum duration to wait for graceful shutdown (default: 30s)
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" key:"server.shutdown_timeout" default:"30s"`

	// RequestTimeout is the middleware timeout for requests (default: 90s)
	RequestTimeout time.Duration `env:"SERVER_REQUEST_TIMEOUT" key:"server.request_timeout" default:"90s"`
}

// ExportConfig controls where and how template files are written.
type ExportConfig struct {
	// Output is the export target: a directory, file://dir, gs://bucket/prefix
	// or mem:// (default: exports)
	Output string `env:"EXPORT_OUTPUT" envAlt:"OUTPUT_DIR" key:"export.output" default:"exports"`

	// FilePrefix starts every export file name (default: produtos_export)
	FilePrefix string `env:"EXPORT_FILE_PREFIX" key:"export.file_prefix" default:"produtos_export"`

	// Delimiter is the CSV field separator, a single character (default: ,)
	Delimiter string `env:"EXPORT_DELIMITER" key:"export.delimiter" default:","`

	// UTF8BOM prefixes CSV files with a byte order mark for Excel (default: false)
	UTF8BOM bool `env:"EXPORT_UTF8_BOM" key:"export.utf8_bom" default:"false"`

	// Workers validates rows in parallel when > 1 (default: 1)
	Workers int `env:"EXPORT_WORKERS" key:"export.workers" default:"1"`

	// Report is written next to every export: "", csv or xlsx (default: none)
	Report string `env:"EXPORT_REPORT" key:"export.report"`
}

// UploadConfig holds pricing sheet upload settings.
type UploadConfig struct {
	// MaxFileSize is the maximum allowed file size in bytes (default: 20MB)
	MaxFileSize int64 `env:"UPLOAD_MAX_FILE_SIZE" key:"upload.max_file_size" default:"20971520"`

	// MaxConcurrent is the maximum number of parallel export runs (default: 5)
	MaxConcurrent int `env:"UPLOAD_MAX_CONCURRENT" key:"upload.max_concurrent" default:"5"`

	// MaxWaitTime is how long to wait for an export slot (default: 30s)
	MaxWaitTime time.Duration `env:"UPLOAD_MAX_WAIT_TIME" key:"upload.max_wait_time" default:"30s"`

	// Timeout is the maximum duration for a single export run (default: 5m)
	Timeout time.Duration `env:"UPLOAD_TIMEOUT" key:"upload.timeout" default:"5m"`
}

// RateLimitConfig holds per-IP rate limiting settings.
type RateLimitConfig struct {
	// Enabled controls whether rate limiting is active (default: true)
	Enabled bool `env:"RATE_LIMIT_ENABLED" key:"rate.enabled" default:"true"`

	// RequestsPerMinute is the default rate limit per IP (default: 100)
	RequestsPerMinute int `env:"RATE_LIMIT_REQUESTS_PER_MINUTE" key:"rate.requests_per_minute" default:"100"`

	// UploadLimit is requests per minute for upload endpoints (default: 10)
	UploadLimit int `env:"RATE_LIMIT_UPLOAD" key:"rate.upload" default:"10"`
}

// SecurityConfig holds security-related settings.
type SecurityConfig struct {
	// TrustedProxies is a comma-separated list of trusted proxy CIDRs
	TrustedProxies []string `env:"TRUSTED_PROXIES" key:"security.trusted_proxies"`

	// EnableCSP enables Content-Security-Policy headers (default: true)
	EnableCSP bool `env:"SECURITY_ENABLE_CSP" key:"security.enable_csp" default:"true"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `env:"LOG_LEVEL" key:"logging.level" default:"info"`

	// Format is the log format: text or json (default: text)
	Format string `env:"LOG_FORMAT" key:"logging.format" default:"text"`
}

// Addr returns the server listen address in host:port format.
func (c *ServerConfig) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// DelimiterRune returns the configured CSV separator.
func (c *ExportConfig) DelimiterRune() rune {
	r, _ := utf8.DecodeRuneInString(c.Delimiter)
	if r == utf8.RuneError {
		return ','
	}
	return r
}
