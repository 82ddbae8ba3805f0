package core

import (
	"log/slog"
	"strings"
	"unicode/utf8"
)

// candidateNames are accepted in place of characters that are awkward to pass
// through environment variables, flags or form fields.
var candidateNames = map[string]rune{
	"tab":        '\t',
	`\t`:         '\t',
	"space":      ' ',
	"comma":      ',',
	"semicolon":  ';',
	"pipe":       '|',
	"colon":      ':',
	"quote":      '"',
	"apostrophe": '\'',
}

// ParseCandidates turns raw candidate strings into characters, keeping their
// order. Empty and multi-character candidates are skipped with a warning, as
// are line breaks. Duplicates are dropped.
func ParseCandidates(kind string, raw []string, log *slog.Logger) []rune {
	if log == nil {
		log = slog.Default()
	}

	out := make([]rune, 0, len(raw))
	seen := make(map[rune]bool, len(raw))
	for _, s := range raw {
		c, ok := parseCandidate(s)
		switch {
		case s == "":
			log.Warn("ignoring empty candidate", "kind", kind)
			continue
		case !ok:
			log.Warn("ignoring non-character candidate", "kind", kind, "candidate", s)
			continue
		case c == '\n' || c == '\r':
			log.Warn("ignoring line break candidate", "kind", kind)
			continue
		}
		if seen[c] {
			continue
		}
		seen[c] = true
		out = append(out, c)
	}
	return out
}

func parseCandidate(s string) (rune, bool) {
	if c, ok := candidateNames[strings.ToLower(s)]; ok {
		return c, true
	}
	if utf8.RuneCountInString(s) != 1 {
		return 0, false
	}
	c, _ := utf8.DecodeRuneInString(s)
	if c == utf8.RuneError {
		return 0, false
	}
	return c, true
}

// CandidateName is the inverse of ParseCandidates for display: well-known
// characters are printed by name.
func CandidateName(c rune) string {
	switch c {
	case 0:
		return ""
	case '\t':
		return "tab"
	case ' ':
		return "space"
	}
	return string(c)
}
