// Package logging configures log/slog for the server and the CLI.
//
// Request-scoped loggers pick up chi's request ID, and analysis-scoped loggers
// additionally carry the analysis ID, so every line written while a file is
// examined can be correlated.
package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/go-chi/chi/v5/middleware"
)

// Setup installs the default slog logger writing to stderr.
//
// Level values: "debug", "info", "warn", "error" (default: "info")
// Format values: "text", "json" (default: "text")
func Setup(level, format string) {
	slog.SetDefault(New(os.Stderr, level, format))
}

// New builds a logger for w without touching the default.
func New(w io.Writer, level, format string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: ParseLevel(level)}

	var handler slog.Handler
	if strings.EqualFold(format, "json") {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler)
}

// ParseLevel converts a string log level to slog.Level. Unknown values map to
// info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

type analysisKey struct{}

// WithAnalysisID stores the analysis ID so later FromContext calls include it.
func WithAnalysisID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, analysisKey{}, id)
}

// AnalysisID returns the ID stored by WithAnalysisID, if any.
func AnalysisID(ctx context.Context) string {
	id, _ := ctx.Value(analysisKey{}).(string)
	return id
}

// FromContext returns the default logger enriched with request_id and
// analysis_id when ctx carries them.
//
//	func handleAnalyze(w http.ResponseWriter, r *http.Request) {
//	    logger := logging.FromContext(r.Context())
//	    logger.Info("upload received", "file", name)
//	}
func FromContext(ctx context.Context) *slog.Logger {
	logger := slog.Default()

	if reqID := middleware.GetReqID(ctx); reqID != "" {
		logger = logger.With("request_id", reqID)
	}
	if id := AnalysisID(ctx); id != "" {
		logger = logger.With("analysis_id", id)
	}

	return logger
}

// WithFields returns a context logger with additional structured fields.
//
//	log := logging.WithFields(ctx, "file", src.Name())
//	log.Info("analysis started")
//	// ...
//	log.Info("analysis finished", "fields", len(meta.Fields))
func WithFields(ctx context.Context, args ...any) *slog.Logger {
	return FromContext(ctx).With(args...)
}
