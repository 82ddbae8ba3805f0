package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5/middleware"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		" INFO ":  slog.LevelInfo,
		"warning": slog.LevelWarn,
		"warn":    slog.LevelWarn,
		"error":   slog.LevelError,
		"loud":    slog.LevelInfo,
		"":        slog.LevelInfo,
	}
	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestNew_Format(t *testing.T) {
	var buf bytes.Buffer
	New(&buf, "info", "json").Info("hello", "file", "a.csv")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("json format produced %q: %v", buf.String(), err)
	}
	if entry["msg"] != "hello" || entry["file"] != "a.csv" {
		t.Errorf("entry = %v", entry)
	}

	buf.Reset()
	New(&buf, "info", "text").Info("hello")
	if !strings.Contains(buf.String(), "msg=hello") {
		t.Errorf("text format produced %q", buf.String())
	}
}

func TestNew_Level(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, "warn", "text")
	log.Info("hidden")
	log.Warn("shown")

	if strings.Contains(buf.String(), "hidden") || !strings.Contains(buf.String(), "shown") {
		t.Errorf("level filtering failed: %q", buf.String())
	}
}

func TestFromContext(t *testing.T) {
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(New(&buf, "debug", "text"))
	t.Cleanup(func() { slog.SetDefault(prev) })

	ctx := context.WithValue(context.Background(), middleware.RequestIDKey, "req-1")
	ctx = WithAnalysisID(ctx, "an-1")

	WithFields(ctx, "file", "a.csv").Info("analysis started")

	out := buf.String()
	for _, want := range []string{"request_id=req-1", "analysis_id=an-1", "file=a.csv"} {
		if !strings.Contains(out, want) {
			t.Errorf("log line missing %q: %s", want, out)
		}
	}

	if AnalysisID(context.Background()) != "" {
		t.Error("AnalysisID() on a bare context should be empty")
	}
}

func TestFromContext_Bare(t *testing.T) {
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(New(&buf, "debug", "text"))
	t.Cleanup(func() { slog.SetDefault(prev) })

	FromContext(context.Background()).Info("plain")
	if strings.Contains(buf.String(), "request_id") || strings.Contains(buf.String(), "analysis_id") {
		t.Errorf("unexpected correlation fields: %s", buf.String())
	}
}
