package delimiter

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"unicode/utf8"
)

// DefaultMaxBadLines is the default tolerance for bad header and footer lines.
const DefaultMaxBadLines = 10

var (
	ErrNoDelimiterCandidates = errors.New("at least one delimiter candidate is required")
	ErrInvalidCandidate      = errors.New("invalid candidate character")
	ErrNoInput               = errors.New("no input stream configured")
	ErrNegativeLimit         = errors.New("limits must not be negative")
)

// Builder assembles a validated Detector. The zero value is not ready for
// use; call NewBuilder.
type Builder struct {
	delimiters    []rune
	enclosures    []rune
	input         io.Reader
	log           *slog.Logger
	maxBadHeaders int
	maxBadFooters int
	rowLimit      int
}

// NewBuilder returns a Builder with the default bad line tolerances and no
// row limit.
func NewBuilder() *Builder {
	return &Builder{
		maxBadHeaders: DefaultMaxBadLines,
		maxBadFooters: DefaultMaxBadLines,
	}
}

// WithDelimiterCandidates replaces the ordered delimiter candidates.
func (b *Builder) WithDelimiterCandidates(candidates ...rune) *Builder {
	b.delimiters = append([]rune(nil), candidates...)
	return b
}

// WithEnclosureCandidates replaces the ordered enclosure candidates. An empty
// list still evaluates NoEnclosure.
func (b *Builder) WithEnclosureCandidates(candidates ...rune) *Builder {
	b.enclosures = append([]rune(nil), candidates...)
	return b
}

// WithInput sets the decoded character stream. The caller keeps ownership.
func (b *Builder) WithInput(r io.Reader) *Builder {
	b.input = r
	return b
}

func (b *Builder) WithLogger(log *slog.Logger) *Builder {
	b.log = log
	return b
}

// WithMaxBadLines sets how many non-conforming leading and trailing lines are
// tolerated.
func (b *Builder) WithMaxBadLines(header, footer int) *Builder {
	b.maxBadHeaders = header
	b.maxBadFooters = footer
	return b
}

// WithRowLimit caps the number of lines examined. 0 means unlimited.
func (b *Builder) WithRowLimit(n int) *Builder {
	b.rowLimit = n
	return b
}

// Build validates the configuration and returns a Detector.
func (b *Builder) Build() (*Detector, error) {
	if b.input == nil {
		return nil, ErrNoInput
	}
	if b.maxBadHeaders < 0 || b.maxBadFooters < 0 || b.rowLimit < 0 {
		return nil, fmt.Errorf("%w: header=%d footer=%d rows=%d",
			ErrNegativeLimit, b.maxBadHeaders, b.maxBadFooters, b.rowLimit)
	}

	delimiters, err := normalizeCandidates("delimiter", b.delimiters)
	if err != nil {
		return nil, err
	}
	if len(delimiters) == 0 {
		return nil, ErrNoDelimiterCandidates
	}

	enclosures, err := normalizeCandidates("enclosure", b.enclosures)
	if err != nil {
		return nil, err
	}

	log := b.log
	if log == nil {
		log = slog.Default()
	}

	return &Detector{
		delimiters:    delimiters,
		enclosures:    append([]rune{NoEnclosure}, enclosures...),
		maxBadHeaders: b.maxBadHeaders,
		maxBadFooters: b.maxBadFooters,
		rowLimit:      b.rowLimit,
		input:         b.input,
		log:           log,
	}, nil
}

// normalizeCandidates rejects characters that cannot separate or wrap fields
// on a single line and drops duplicates, keeping the first occurrence.
func normalizeCandidates(kind string, candidates []rune) ([]rune, error) {
	seen := make(map[rune]bool, len(candidates))
	out := make([]rune, 0, len(candidates))
	for _, c := range candidates {
		switch {
		case c == NoEnclosure, c == '\n', c == '\r', c == utf8.RuneError, !utf8.ValidRune(c):
			return nil, fmt.Errorf("%w: %s %q", ErrInvalidCandidate, kind, c)
		}
		if seen[c] {
			continue
		}
		seen[c] = true
		out = append(out, c)
	}
	return out, nil
}
