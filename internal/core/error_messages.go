package core

// error_messages.go maps technical errors to user-facing messages with codes
// for support reference.
//
// Codes are grouped by category:
//
//	FILE001 - File too large          FMT001 - No consistent format
//	FILE002 - File not found          FMT002 - No usable delimiter candidates
//	FILE003 - Empty file              FMT003 - Line too long
//	FILE004 - No file provided        ENC001 - Unsupported charset
//	FILE005 - Read failure            OPT001 - Invalid option value
//
//	ANL001 - System busy              DB001 - Connection refused
//	ANL002 - Request cancelled        DB002 - Connection reset
//	ANL003 - Request timeout          DB003 - Storage timeout
//	ANL004 - Analysis not found
//	ANL005 - History disabled
//
//	ERR000 - Unknown error; check application logs for the original error.
//
// Known sentinels are matched with errors.Is first. Remaining errors are
// matched case-insensitively by substring; the first matching pattern wins.

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/JonMunkholm/filemeta/internal/detect/charset"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened (user-friendly)
	Action  string // What to do about it
	Code    string // Error code for support reference
}

type sentinelMessage struct {
	target error
	msg    UserMessage
}

var sentinelMessages = []sentinelMessage{
	{ErrFileTooLarge, UserMessage{
		Message: "File exceeds the maximum size limit",
		Action:  "Upload a smaller sample of the file",
		Code:    "FILE001",
	}},
	{ErrFileNotFound, UserMessage{
		Message: "The file does not exist",
		Action:  "Check the file path and try again",
		Code:    "FILE002",
	}},
	{ErrEmptyFile, UserMessage{
		Message: "The file contains no data",
		Action:  "Provide a file with at least two lines of data",
		Code:    "FILE003",
	}},
	{ErrNoConsistentFormat, UserMessage{
		Message: "Could not determine a consistent format for the file",
		Action:  "Check that the delimiter is among the candidates or raise the bad line tolerance",
		Code:    "FMT001",
	}},
	{ErrNoCandidates, UserMessage{
		Message: "No usable delimiter candidates were given",
		Action:  "Provide at least one single-character delimiter",
		Code:    "FMT002",
	}},
	{ErrInvalidOption, UserMessage{
		Message: "An analysis option has an invalid value",
		Action:  "Row limits and bad line counts must be whole numbers",
		Code:    "OPT001",
	}},
	{charset.ErrUnsupported, UserMessage{
		Message: "The character set name is not recognized",
		Action:  "Use an IANA charset name such as UTF-8 or ISO-8859-1",
		Code:    "ENC001",
	}},
	{ErrTooManyAnalyses, UserMessage{
		Message: "Too many analyses in progress",
		Action:  "Please wait a moment and try again",
		Code:    "ANL001",
	}},
	{context.Canceled, UserMessage{
		Message: "Request was cancelled",
		Action:  "Please try again",
		Code:    "ANL002",
	}},
	{context.DeadlineExceeded, UserMessage{
		Message: "Request timed out",
		Action:  "Lower the row limit or try a smaller file",
		Code:    "ANL003",
	}},
	{ErrAnalysisNotFound, UserMessage{
		Message: "The analysis does not exist",
		Action:  "Check the analysis ID",
		Code:    "ANL004",
	}},
	{ErrHistoryDisabled, UserMessage{
		Message: "Analysis history is not enabled",
		Action:  "Configure DATABASE_URL to keep past analyses",
		Code:    "ANL005",
	}},
}

// errorPattern defines a pattern to match and its corresponding user message.
type errorPattern struct {
	pattern string
	msg     UserMessage
}

var errorPatterns = []errorPattern{
	{
		pattern: "no file provided",
		msg: UserMessage{
			Message: "No file was selected",
			Action:  "Please select a file to analyze",
			Code:    "FILE004",
		},
	},
	{
		pattern: "token too long",
		msg: UserMessage{
			Message: "The file contains a line longer than 1MB",
			Action:  "Check that the file is delimited text",
			Code:    "FMT003",
		},
	},
	{
		pattern: "connection refused",
		msg: UserMessage{
			Message: "Unable to connect to database",
			Action:  "Please try again in a few moments",
			Code:    "DB001",
		},
	},
	{
		pattern: "connection reset",
		msg: UserMessage{
			Message: "Database connection was interrupted",
			Action:  "Please try again",
			Code:    "DB002",
		},
	},
	{
		pattern: "timeout",
		msg: UserMessage{
			Message: "Operation timed out",
			Action:  "Please try again later",
			Code:    "DB003",
		},
	},
	{
		pattern: "read ",
		msg: UserMessage{
			Message: "The file could not be read",
			Action:  "Check the file and try again",
			Code:    "FILE005",
		},
	},
}

// defaultMessage is returned when no pattern matches (ERR000).
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
//
//	msg := MapError(fmt.Errorf("analyze %s: %w", name, ErrNoConsistentFormat))
//	// msg.Code == "FMT001"
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	for _, sm := range sentinelMessages {
		if errors.Is(err, sm.target) {
			return sm.msg
		}
	}

	errStr := strings.ToLower(err.Error())
	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}

	return defaultMessage
}

// FormatUserError creates a formatted error string for display.
// The format is: "Message (Code: XXX). Action"
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err maps to something more specific than ERR000.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}
