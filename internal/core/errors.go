package core

import "errors"

var (
	// ErrFileNotFound is returned when the source does not exist.
	ErrFileNotFound = errors.New("file not found")

	// ErrEmptyFile is returned when the source holds no non-blank lines.
	ErrEmptyFile = errors.New("empty file")

	// ErrFileTooLarge is returned by callers enforcing an upload size limit.
	ErrFileTooLarge = errors.New("file too large")

	// ErrNoConsistentFormat is returned when no delimiter candidate explains
	// the data.
	ErrNoConsistentFormat = errors.New("could not determine a consistent format")

	// ErrNoCandidates is returned when candidate filtering leaves no delimiter.
	ErrNoCandidates = errors.New("no usable delimiter candidates")

	// ErrInvalidOption is returned for option values that cannot be parsed.
	ErrInvalidOption = errors.New("invalid option")

	// ErrTooManyAnalyses is returned when all analysis slots are occupied and
	// the wait timeout expires. Clients should retry after a short delay.
	ErrTooManyAnalyses = errors.New("too many concurrent analyses, please try again later")

	// ErrAnalysisNotFound is returned by history lookups for unknown IDs.
	ErrAnalysisNotFound = errors.New("analysis not found")

	// ErrHistoryDisabled is returned by history lookups when no store is configured.
	ErrHistoryDisabled = errors.New("analysis history is not enabled")
)
