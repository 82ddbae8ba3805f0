package core

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/JonMunkholm/filemeta/internal/detect/charset"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode string
	}{
		{name: "nil error returns empty", err: nil, wantCode: ""},
		{name: "wrapped not found", err: fmt.Errorf("data.csv: %w", ErrFileNotFound), wantCode: "FILE002"},
		{name: "too large", err: ErrFileTooLarge, wantCode: "FILE001"},
		{name: "empty", err: fmt.Errorf("x: %w", ErrEmptyFile), wantCode: "FILE003"},
		{name: "no file", err: errors.New("no file provided"), wantCode: "FILE004"},
		{name: "read failure", err: errors.New("detect layout of a.csv: read sample line 3: i/o error"), wantCode: "FILE005"},
		{name: "no consistent format", err: fmt.Errorf("%w for file a.csv", ErrNoConsistentFormat), wantCode: "FMT001"},
		{name: "no candidates", err: ErrNoCandidates, wantCode: "FMT002"},
		{name: "invalid option", err: fmt.Errorf("limit_rows %q: %w", "x", ErrInvalidOption), wantCode: "OPT001"},
		{name: "line too long", err: errors.New("read sample line 1: bufio.Scanner: token too long"), wantCode: "FMT003"},
		{name: "unsupported charset", err: fmt.Errorf("default charset: %w", charset.ErrUnsupported), wantCode: "ENC001"},
		{name: "busy", err: ErrTooManyAnalyses, wantCode: "ANL001"},
		{name: "cancelled", err: fmt.Errorf("read: %w", context.Canceled), wantCode: "ANL002"},
		{name: "deadline", err: context.DeadlineExceeded, wantCode: "ANL003"},
		{name: "unknown analysis", err: ErrAnalysisNotFound, wantCode: "ANL004"},
		{name: "history disabled", err: ErrHistoryDisabled, wantCode: "ANL005"},
		{name: "database refused", err: errors.New("dial tcp 127.0.0.1:5432: connect: connection refused"), wantCode: "DB001"},
		{name: "reset beats read", err: errors.New("read tcp: connection reset by peer"), wantCode: "DB002"},
		{name: "unknown", err: errors.New("something odd"), wantCode: "ERR000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MapError(tt.err)
			if got.Code != tt.wantCode {
				t.Errorf("MapError() code = %q, want %q", got.Code, tt.wantCode)
			}
			if tt.err != nil && (got.Message == "" || got.Action == "") {
				t.Errorf("MapError() = %+v, want message and action", got)
			}
		})
	}
}

func TestFormatUserError(t *testing.T) {
	if got := FormatUserError(nil); got != "" {
		t.Errorf("FormatUserError(nil) = %q, want empty", got)
	}

	got := FormatUserError(ErrNoCandidates)
	want := "No usable delimiter candidates were given (Code: FMT002). Provide at least one single-character delimiter"
	if got != want {
		t.Errorf("FormatUserError() = %q, want %q", got, want)
	}
}

func TestIsUserFacing(t *testing.T) {
	if IsUserFacing(nil) {
		t.Error("nil should not be user facing")
	}
	if !IsUserFacing(ErrEmptyFile) {
		t.Error("ErrEmptyFile should be user facing")
	}
	if IsUserFacing(errors.New("panic in handler")) {
		t.Error("unmatched errors should not be user facing")
	}
}
