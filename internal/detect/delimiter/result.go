package delimiter

import "fmt"

// Result is the layout that best explains a sampled line stream.
type Result struct {
	// Delimiter is the winning field separator.
	Delimiter rune `json:"delimiter"`

	// Enclosure is the winning quoting character, NoEnclosure when fields are
	// not quoted.
	Enclosure rune `json:"enclosure"`

	// ConsistentEnclosure reports whether splitting the same lines without
	// any enclosure gives the same layout. false means the plain split
	// disagrees: the enclosure shields delimiters inside quoted fields, which
	// is still a valid, correctly quoted file.
	ConsistentEnclosure bool `json:"consistentEnclosure"`

	// DataLineFrequency is the delimiter count on every data line.
	DataLineFrequency int `json:"dataLineFrequency"`

	DataLines  int `json:"dataLines"`
	BadHeaders int `json:"badHeaders"`
	BadFooters int `json:"badFooters"`
}

// HasEnclosure reports whether a quoting character was detected.
func (r Result) HasEnclosure() bool {
	return r.Enclosure != NoEnclosure
}

// FieldCount is the number of fields on a data line.
func (r Result) FieldCount() int {
	return r.DataLineFrequency + 1
}

// Lines is the number of lines the result accounts for.
func (r Result) Lines() int {
	return r.BadHeaders + r.DataLines + r.BadFooters
}

func (r Result) String() string {
	enc := "none"
	if r.HasEnclosure() {
		enc = fmt.Sprintf("%q", r.Enclosure)
	}
	return fmt.Sprintf("delimiter=%q enclosure=%s fields=%d data=%d headers=%d footers=%d",
		r.Delimiter, enc, r.FieldCount(), r.DataLines, r.BadHeaders, r.BadFooters)
}
