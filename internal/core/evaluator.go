package core

// evaluator.go infers a column's type from its values.
//
// Every candidate type starts out possible and is ruled out by the first
// value it cannot represent. Empty values rule nothing out. The advised type
// is the first candidate still standing in the order Boolean, Integer,
// Number, Date, String.

import (
	"regexp"
	"strings"
	"time"
	"unicode/utf8"
)

// integerRegex matches integers that fit a signed 64-bit value.
var integerRegex = regexp.MustCompile(`^[+-]?\d{1,18}$`)

var booleanValues = map[string]bool{
	"true": true, "false": true,
	"yes": true, "no": true,
	"y": true, "n": true,
	"t": true, "f": true,
}

// numberFormat is one decimal/grouping symbol convention.
type numberFormat struct {
	decimal  rune
	grouping rune
	pattern  *regexp.Regexp
}

func newNumberFormat(decimal, grouping rune) numberFormat {
	d := regexp.QuoteMeta(string(decimal))
	g := regexp.QuoteMeta(string(grouping))
	return numberFormat{
		decimal:  decimal,
		grouping: grouping,
		pattern:  regexp.MustCompile(`^[+-]?(\d{1,3}(` + g + `\d{3})+|\d+)?(` + d + `\d+)?$`),
	}
}

var numberFormats = []numberFormat{
	newNumberFormat('.', ','),
	newNumberFormat(',', '.'),
}

// dateFormat pairs a Go layout with the equivalent pattern in the
// SimpleDateFormat notation reported to users.
type dateFormat struct {
	layout string
	mask   string
}

// dateFormats are tried in order; the first one matching every value wins.
// Zero-padded layouts come before their unpadded forms so padded columns
// report the stricter mask.
var dateFormats = []dateFormat{
	{"2006-01-02T15:04:05Z07:00", "yyyy-MM-dd'T'HH:mm:ssXXX"},
	{"2006-01-02T15:04:05", "yyyy-MM-dd'T'HH:mm:ss"},
	{"2006-01-02 15:04:05", "yyyy-MM-dd HH:mm:ss"},
	{"2006-01-02 15:04", "yyyy-MM-dd HH:mm"},
	{"2006-01-02", "yyyy-MM-dd"},
	{"2006/01/02", "yyyy/MM/dd"},
	{"2006.01.02", "yyyy.MM.dd"},
	{"01/02/2006 15:04:05", "MM/dd/yyyy HH:mm:ss"},
	{"01/02/2006", "MM/dd/yyyy"},
	{"1/2/2006", "M/d/yyyy"},
	{"01-02-2006", "MM-dd-yyyy"},
	{"1-2-2006", "M-d-yyyy"},
	{"02/01/2006", "dd/MM/yyyy"},
	{"02.01.2006", "dd.MM.yyyy"},
	{"2.1.2006", "d.M.yyyy"},
	{"02-01-2006", "dd-MM-yyyy"},
	{"Jan 2, 2006", "MMM d, yyyy"},
	{"2 Jan 2006", "d MMM yyyy"},
	{"02-Jan-2006", "dd-MMM-yyyy"},
	{"20060102", "yyyyMMdd"},
	{"01/02/06", "MM/dd/yy"},
	{"1/2/06", "M/d/yy"},
	{"02.01.06", "dd.MM.yy"},
}

type numberState struct {
	alive     bool
	precision int
	grouped   bool
}

// FieldEvaluator accumulates the values of one column.
type FieldEvaluator struct {
	count   int // non-empty values
	maxLen  int
	boolean bool
	integer bool
	numbers []numberState
	dates   []bool
}

// NewFieldEvaluator returns an evaluator with every type still possible.
func NewFieldEvaluator() *FieldEvaluator {
	e := &FieldEvaluator{
		boolean: true,
		integer: true,
		numbers: make([]numberState, len(numberFormats)),
		dates:   make([]bool, len(dateFormats)),
	}
	for i := range e.numbers {
		e.numbers[i].alive = true
	}
	for i := range e.dates {
		e.dates[i] = true
	}
	return e
}

// Evaluate feeds one raw value. Surrounding blanks are ignored.
func (e *FieldEvaluator) Evaluate(raw string) {
	v := strings.TrimSpace(raw)
	if v == "" {
		return
	}
	e.count++
	if n := utf8.RuneCountInString(v); n > e.maxLen {
		e.maxLen = n
	}

	if e.boolean && !booleanValues[strings.ToLower(v)] {
		e.boolean = false
	}
	if e.integer && !integerRegex.MatchString(v) {
		e.integer = false
	}

	hasDigit := strings.ContainsAny(v, "0123456789")
	for i, nf := range numberFormats {
		st := &e.numbers[i]
		if !st.alive {
			continue
		}
		if !hasDigit || !nf.pattern.MatchString(v) {
			st.alive = false
			continue
		}
		if idx := strings.LastIndexByte(v, byte(nf.decimal)); idx >= 0 {
			if p := len(v) - idx - 1; p > st.precision {
				st.precision = p
			}
		}
		if strings.ContainsRune(v, nf.grouping) {
			st.grouped = true
		}
	}

	for i, df := range dateFormats {
		if e.dates[i] {
			if _, err := time.Parse(df.layout, v); err != nil {
				e.dates[i] = false
			}
		}
	}
}

// Count is the number of non-empty values seen.
func (e *FieldEvaluator) Count() int { return e.count }

// Advice returns the inferred metadata. Name is left empty.
func (e *FieldEvaluator) Advice() FieldMeta {
	meta := FieldMeta{Type: TypeString, Length: e.maxLen, Precision: -1}
	if e.count == 0 {
		return meta
	}

	switch {
	case e.boolean:
		return FieldMeta{Type: TypeBoolean, Length: -1, Precision: -1}

	case e.integer:
		return FieldMeta{Type: TypeInteger, Length: e.maxLen, Precision: 0, ConversionMask: "#"}
	}

	for i, st := range e.numbers {
		if !st.alive {
			continue
		}
		nf := numberFormats[i]
		mask := "#"
		if st.grouped {
			mask = "#,##0"
		}
		if st.precision > 0 {
			mask += "." + strings.Repeat("0", st.precision)
		}
		return FieldMeta{
			Type:           TypeNumber,
			Length:         e.maxLen,
			Precision:      st.precision,
			ConversionMask: mask,
			DecimalSymbol:  string(nf.decimal),
			GroupingSymbol: string(nf.grouping),
		}
	}

	for i, alive := range e.dates {
		if alive {
			return FieldMeta{Type: TypeDate, Length: -1, Precision: -1, ConversionMask: dateFormats[i].mask}
		}
	}

	return meta
}
