// Package delimiter infers the field delimiter, enclosure character and the
// amount of leading/trailing junk of a delimited text stream.
//
// A Detector is assembled with a Builder, reads at most RowLimit non-blank
// lines from its input, and evaluates every delimiter candidate against every
// enclosure candidate (plus NoEnclosure). A candidate survives when all lines
// between a bounded block of bad header lines and a bounded block of bad
// footer lines share one non-zero delimiter count. Among survivors the highest
// field count wins, ties going to the earlier candidate.
//
//	d, err := delimiter.NewBuilder().
//	    WithDelimiterCandidates('\t', ';', ',').
//	    WithEnclosureCandidates('"', '\'').
//	    WithInput(r).
//	    Build()
//	if err != nil {
//	    return err
//	}
//	res, ok, err := d.Detect()
package delimiter

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
)

// NoEnclosure is the sentinel enclosure meaning fields are not quoted. It is
// always evaluated, ahead of any configured enclosure candidate.
const NoEnclosure rune = 0

// malformed marks a line whose enclosure usage is broken under a hypothesis.
const malformed = -1

// ErrDetectorUsed is returned when Detect is called a second time.
var ErrDetectorUsed = errors.New("delimiter detector already consumed its input")

// Detector evaluates delimiter and enclosure candidates against a line stream.
// It is configured once by a Builder and runs exactly once.
type Detector struct {
	delimiters    []rune
	enclosures    []rune // enclosures[0] is NoEnclosure
	maxBadHeaders int
	maxBadFooters int
	rowLimit      int
	input         io.Reader
	log           *slog.Logger
	used          bool
}

// layout is a header/data/footer partition of the sample.
type layout struct {
	frequency  int
	dataLines  int
	badHeaders int
	badFooters int
}

// hypothesis is one delimiter/enclosure pairing evaluated over the sample.
type hypothesis struct {
	enclosure rune
	layout    layout
	valid     bool
	wrapped   int // enclosed fields across the data lines
}

// Detect reads the sample and returns the best-fitting layout. ok is false when
// no candidate explains the data consistently; that is a normal outcome, not an
// error. Errors are returned only for failures reading the input.
func (d *Detector) Detect() (Result, bool, error) {
	if d.used {
		return Result{}, false, ErrDetectorUsed
	}
	d.used = true

	lines, err := d.readSample()
	if err != nil {
		return Result{}, false, err
	}
	if len(lines) < 2 {
		d.log.Debug("sample too short to establish a dominant frequency", "lines", len(lines))
		return Result{}, false, nil
	}

	var (
		best  Result
		found bool
	)
	for _, delim := range d.delimiters {
		res, ok := d.evaluateDelimiter(lines, delim)
		if !ok {
			d.log.Debug("delimiter candidate rejected", "delimiter", string(delim))
			continue
		}
		d.log.Debug("delimiter candidate accepted", "delimiter", string(delim), "fields", res.FieldCount())
		if !found || res.DataLineFrequency > best.DataLineFrequency {
			best, found = res, true
		}
	}
	return best, found, nil
}

// readSample collects up to rowLimit non-blank lines. Blank lines are not
// examined and do not count towards the limit.
func (d *Detector) readSample() ([]string, error) {
	ls := NewLineScanner(d.input)

	var lines []string
	for ls.Scan() {
		lines = append(lines, ls.Text())
		if d.rowLimit > 0 && len(lines) >= d.rowLimit {
			break
		}
	}
	if err := ls.Err(); err != nil {
		return nil, fmt.Errorf("read sample line %d: %w", ls.Count()+1, err)
	}
	return lines, nil
}

// evaluateDelimiter runs every enclosure hypothesis for delim and keeps the
// one that best explains the sample.
func (d *Detector) evaluateDelimiter(lines []string, delim rune) (Result, bool) {
	hyps := make([]hypothesis, 0, len(d.enclosures))
	for _, enc := range d.enclosures {
		if enc == delim {
			continue
		}
		hyps = append(hyps, d.evaluate(lines, delim, enc))
	}

	base := hyps[0]
	baseLines := 0
	if base.valid {
		baseLines = base.layout.dataLines
	}

	// An enclosure must wrap at least one field and must not cost data lines.
	var chosen *hypothesis
	for i := 1; i < len(hyps); i++ {
		h := &hyps[i]
		if !h.valid || h.wrapped == 0 || h.layout.dataLines < baseLines {
			continue
		}
		if chosen == nil || h.wrapped > chosen.wrapped {
			chosen = h
		}
	}
	if chosen == nil {
		if !base.valid {
			return Result{}, false
		}
		chosen = &base
	}

	l := chosen.layout
	return Result{
		Delimiter:           delim,
		Enclosure:           chosen.enclosure,
		ConsistentEnclosure: base.valid && base.layout == l,
		DataLineFrequency:   l.frequency,
		DataLines:           l.dataLines,
		BadHeaders:          l.badHeaders,
		BadFooters:          l.badFooters,
	}, true
}

func (d *Detector) evaluate(lines []string, delim, enc rune) hypothesis {
	stats := make([]lineStats, len(lines))
	freqs := make([]int, len(lines))
	for i, line := range lines {
		stats[i] = measureLine(line, delim, enc)
		freqs[i] = stats[i].freq
	}

	l, ok := d.fit(freqs)
	h := hypothesis{enclosure: enc, layout: l, valid: ok}
	if ok {
		for _, st := range stats[l.badHeaders : l.badHeaders+l.dataLines] {
			h.wrapped += st.wrapped
		}
	}
	return h
}

// fit partitions freqs into bad headers, a data block that shares the
// dominant frequency, and bad footers. A mismatch inside the data block
// rejects the hypothesis outright.
func (d *Detector) fit(freqs []int) (layout, bool) {
	dominant := dominantFrequency(freqs)
	if dominant == malformed {
		return layout{}, false
	}

	head := 0
	for head < len(freqs) && freqs[head] != dominant {
		head++
	}
	tail := len(freqs)
	for tail > head && freqs[tail-1] != dominant {
		tail--
	}
	for _, f := range freqs[head:tail] {
		if f != dominant {
			return layout{}, false
		}
	}

	l := layout{
		frequency:  dominant,
		dataLines:  tail - head,
		badHeaders: head,
		badFooters: len(freqs) - tail,
	}
	if l.dataLines == 0 || l.badHeaders > d.maxBadHeaders || l.badFooters > d.maxBadFooters {
		return layout{}, false
	}
	return l, true
}

// dominantFrequency returns the most common non-zero frequency. Ties go to
// the value seen first. Lines without the delimiter are never data and do
// not vote. It returns malformed when no line carries the delimiter.
func dominantFrequency(freqs []int) int {
	counts := make(map[int]int)
	var order []int
	for _, f := range freqs {
		if f <= 0 {
			continue
		}
		if counts[f] == 0 {
			order = append(order, f)
		}
		counts[f]++
	}

	best, bestCount := malformed, 0
	for _, f := range order {
		if counts[f] > bestCount {
			best, bestCount = f, counts[f]
		}
	}
	return best
}
