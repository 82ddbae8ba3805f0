package core

import (
	"fmt"
	"strings"
	"time"

	"github.com/JonMunkholm/filemeta/internal/config"
	"github.com/JonMunkholm/filemeta/internal/detect/delimiter"
)

// FieldType is the inferred data type of a column.
type FieldType int

const (
	TypeString FieldType = iota
	TypeBoolean
	TypeInteger
	TypeNumber
	TypeDate
)

var fieldTypeNames = [...]string{
	TypeString:  "String",
	TypeBoolean: "Boolean",
	TypeInteger: "Integer",
	TypeNumber:  "Number",
	TypeDate:    "Date",
}

func (t FieldType) String() string {
	if t < 0 || int(t) >= len(fieldTypeNames) {
		return fmt.Sprintf("FieldType(%d)", int(t))
	}
	return fieldTypeNames[t]
}

// MarshalText encodes the type by name.
func (t FieldType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText decodes a type name, case-insensitively.
func (t *FieldType) UnmarshalText(b []byte) error {
	for i, name := range fieldTypeNames {
		if strings.EqualFold(name, string(b)) {
			*t = FieldType(i)
			return nil
		}
	}
	return fmt.Errorf("unknown field type %q", b)
}

// FieldMeta describes one column. Length and Precision are -1 when they do
// not apply to the type.
type FieldMeta struct {
	Name           string    `json:"name"`
	Type           FieldType `json:"type"`
	Length         int       `json:"length"`
	Precision      int       `json:"precision"`
	ConversionMask string    `json:"conversion_mask,omitempty"`
	DecimalSymbol  string    `json:"decimal_symbol,omitempty"`
	GroupingSymbol string    `json:"grouping_symbol,omitempty"`
}

// FileMetadata is the outcome of analyzing one file.
type FileMetadata struct {
	ID         string      `json:"id"`
	FileName   string      `json:"file_name"`
	Charset    string      `json:"charset"`
	Delimiter  string      `json:"delimiter"`
	Enclosure  string      `json:"enclosure"`
	FieldCount int         `json:"field_count"`
	BadHeaders int         `json:"bad_headers"`
	BadFooters int         `json:"bad_footers"`
	DataLines  int         `json:"data_lines"`
	HasHeader  bool        `json:"has_header"`
	Fields     []FieldMeta `json:"fields"`
	AnalyzedAt time.Time   `json:"analyzed_at"`
}

// Options controls a single analysis. Candidate lists hold raw strings as
// they come from configuration, flags or form values; see ParseCandidates.
type Options struct {
	Delimiters     []string
	Enclosures     []string
	LimitRows      int // 0 examines every line
	DefaultCharset string
	MaxBadHeaders  int
	MaxBadFooters  int
	BytesPerRow    int // estimated row size bounding the encoding sample
}

// DefaultBytesPerRow is used when Options.BytesPerRow is not positive.
const DefaultBytesPerRow = 500

// DefaultOptions returns the options used when nothing else is configured.
func DefaultOptions() Options {
	return Options{
		Delimiters:     []string{"tab", ";", ","},
		Enclosures:     []string{`"`, "'"},
		LimitRows:      10000,
		DefaultCharset: "ISO-8859-1",
		MaxBadHeaders:  delimiter.DefaultMaxBadLines,
		MaxBadFooters:  delimiter.DefaultMaxBadLines,
		BytesPerRow:    DefaultBytesPerRow,
	}
}

// OptionsFromConfig converts the detection section of the configuration.
func OptionsFromConfig(c config.DetectionConfig) Options {
	return Options{
		Delimiters:     append([]string(nil), c.Delimiters...),
		Enclosures:     append([]string(nil), c.Enclosures...),
		LimitRows:      c.LimitRows,
		DefaultCharset: c.DefaultCharset,
		MaxBadHeaders:  c.MaxBadHeaders,
		MaxBadFooters:  c.MaxBadFooters,
		BytesPerRow:    c.BytesPerRow,
	}
}

// sampleLimit is the byte ceiling for encoding detection; 0 means unbounded.
func (o Options) sampleLimit() int64 {
	if o.LimitRows <= 0 {
		return 0
	}
	per := o.BytesPerRow
	if per <= 0 {
		per = DefaultBytesPerRow
	}
	return int64(o.LimitRows) * int64(per)
}
