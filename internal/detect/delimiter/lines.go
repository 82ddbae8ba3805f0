package delimiter

import (
	"bufio"
	"io"
	"strings"
)

// maxLineBytes bounds a single line.
const maxLineBytes = 1 << 20

// LineScanner yields the non-blank lines of a decoded stream: exactly the lines
// a Detector examines, so header and data counts from a Result can be replayed
// against a fresh stream.
type LineScanner struct {
	sc   *bufio.Scanner
	line string
	n    int
}

// NewLineScanner returns a scanner over r. Lines longer than 1MB fail with
// bufio.ErrTooLong.
func NewLineScanner(r io.Reader) *LineScanner {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	return &LineScanner{sc: sc}
}

// Scan advances to the next non-blank line. Trailing carriage returns are
// removed.
func (l *LineScanner) Scan() bool {
	for l.sc.Scan() {
		line := l.sc.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		l.line = line
		l.n++
		return true
	}
	return false
}

// Text is the line returned by the last call to Scan.
func (l *LineScanner) Text() string { return l.line }

// Count is the number of lines returned so far.
func (l *LineScanner) Count() int { return l.n }

// Err returns the first read error, if any.
func (l *LineScanner) Err() error { return l.sc.Err() }
