// Package config provides centralized configuration management for the application.
// It loads configuration from environment variables with sensible defaults and
// validates all settings on startup to fail fast on misconfiguration.
package config

import (
	"strconv"
	"time"
)

// Config holds all application configuration.
// All settings can be configured via environment variables.
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Detection DetectionConfig
	Upload    UploadConfig
	Logging   LoggingConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Host is the interface to bind to (default: 0.0.0.0)
	Host string `env:"SERVER_HOST" default:"0.0.0.0"`

	// Port is the port to listen on (default: 8080)
	Port int `env:"SERVER_PORT" default:"8080"`

	// ReadTimeout is the maximum duration for reading request body (default: 30s)
	ReadTimeout time.Duration `env:"SERVER_READ_TIMEOUT" default:"30s"`

	// WriteTimeout is the maximum duration for writing response (default: 60s)
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"60s"`

	// IdleTimeout is the keep-alive timeout (default: 60s)
	IdleTimeout time.Duration `env:"SERVER_IDLE_TIMEOUT" default:"60s"`

	// ShutdownTimeout is the maximum duration to wait for graceful shutdown (default: 30s)
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`

	// RequestTimeout is the middleware timeout for requests (default: 60s)
	RequestTimeout time.Duration `env:"SERVER_REQUEST_TIMEOUT" default:"60s"`
}

// DatabaseConfig holds database connection settings.
type DatabaseConfig struct {
	// URL is the PostgreSQL connection string. Empty disables analysis history.
	// Supports both DATABASE_URL and DB_URL env vars for compatibility
	URL string `env:"DATABASE_URL" envAlt:"DB_URL"`

	// MaxConns is the maximum number of connections in the pool (default: 10)
	MaxConns int `env:"DB_MAX_CONNS" default:"10"`

	// MinConns is the minimum number of connections to keep open (default: 1)
	MinConns int `env:"DB_MIN_CONNS" default:"1"`

	// MaxConnLifetime is the maximum lifetime of a connection (default: 1h)
	MaxConnLifetime time.Duration `env:"DB_MAX_CONN_LIFETIME" default:"1h"`

	// MaxConnIdleTime is the maximum idle time before a connection is closed (default: 30m)
	MaxConnIdleTime time.Duration `env:"DB_MAX_CONN_IDLE_TIME" default:"30m"`
}

// DetectionConfig holds the defaults applied to every analysis.
// Candidate lists accept single characters or the names tab, space, comma,
// semicolon, pipe, colon, quote and apostrophe.
type DetectionConfig struct {
	// Delimiters are the delimiter candidates in priority order
	Delimiters []string `env:"DETECT_DELIMITERS" default:"tab,semicolon,comma"`

	// Enclosures are the enclosure candidates in priority order
	Enclosures []string `env:"DETECT_ENCLOSURES" default:"quote,apostrophe"`

	// LimitRows caps the lines examined per file, 0 for no limit (default: 10000)
	LimitRows int `env:"DETECT_LIMIT_ROWS" default:"10000"`

	// DefaultCharset is used when encoding detection is inconclusive (default: ISO-8859-1)
	DefaultCharset string `env:"DETECT_DEFAULT_CHARSET" default:"ISO-8859-1"`

	// MaxBadHeaders is the number of tolerated leading junk lines (default: 10)
	MaxBadHeaders int `env:"DETECT_MAX_BAD_HEADERS" default:"10"`

	// MaxBadFooters is the number of tolerated trailing junk lines (default: 10)
	MaxBadFooters int `env:"DETECT_MAX_BAD_FOOTERS" default:"10"`

	// BytesPerRow estimates row size to bound the encoding sample (default: 500)
	BytesPerRow int `env:"DETECT_BYTES_PER_ROW" default:"500"`
}

// UploadConfig holds settings for files submitted over HTTP.
type UploadConfig struct {
	// MaxFileSize is the maximum allowed file size in bytes (default: 100MB)
	MaxFileSize int64 `env:"UPLOAD_MAX_FILE_SIZE" default:"104857600"`

	// MaxConcurrent is the maximum number of parallel analyses (default: 4)
	MaxConcurrent int `env:"UPLOAD_MAX_CONCURRENT" default:"4"`

	// MaxWaitTime is how long to wait for an analysis slot (default: 30s)
	MaxWaitTime time.Duration `env:"UPLOAD_MAX_WAIT_TIME" default:"30s"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `env:"LOG_LEVEL" default:"info"`

	// Format is the log format: text or json (default: text)
	Format string `env:"LOG_FORMAT" default:"text"`
}

// Addr returns the server listen address in host:port format.
func (c *ServerConfig) Addr() string {
	return c.Host + ":" + strconv.Itoa(c.Port)
}

// HistoryEnabled reports whether analyses are persisted.
func (c *DatabaseConfig) HistoryEnabled() bool {
	return c.URL != ""
}
