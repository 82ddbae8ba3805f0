package delimiter

// tokenizer.go splits a single line into fields under one delimiter/enclosure
// hypothesis. Detection uses it to count separators; callers sampling the
// data afterwards use SplitFields so their fields line up with what was counted.
//
// Enclosure rules:
//   - A field is enclosed when its first non-blank character is the enclosure.
//   - A doubled enclosure inside an enclosed field is a literal enclosure.
//   - After the closing enclosure only blanks may follow before the delimiter.
//   - An enclosure inside a bare field, or one that is never closed, makes the
//     whole line malformed for that hypothesis.

import "strings"

// Field is one token of a split line.
type Field struct {
	Value   string
	Wrapped bool
}

// splitLine tokenizes line. ok is false when enclosure usage is malformed.
func splitLine(line string, delim, enc rune) (fields []Field, ok bool) {
	if enc == NoEnclosure {
		parts := strings.Split(line, string(delim))
		fields = make([]Field, len(parts))
		for i, p := range parts {
			fields[i] = Field{Value: p}
		}
		return fields, true
	}

	rs := []rune(line)
	n := len(rs)
	i := 0
	for {
		j := skipBlanks(rs, i, delim)

		if j < n && rs[j] == enc {
			var b strings.Builder
			j++
			closed := false
			for j < n {
				if rs[j] == enc {
					if j+1 < n && rs[j+1] == enc {
						b.WriteRune(enc)
						j += 2
						continue
					}
					closed = true
					j++
					break
				}
				b.WriteRune(rs[j])
				j++
			}
			if !closed {
				return nil, false
			}

			fields = append(fields, Field{Value: b.String(), Wrapped: true})

			j = skipBlanks(rs, j, delim)
			if j == n {
				return fields, true
			}
			if rs[j] != delim {
				return nil, false
			}
			i = j + 1
			continue
		}

		// Bare field: keep leading blanks, they belong to the value.
		j = i
		for j < n && rs[j] != delim {
			if rs[j] == enc {
				return nil, false
			}
			j++
		}
		fields = append(fields, Field{Value: string(rs[i:j])})
		if j == n {
			return fields, true
		}
		i = j + 1
	}
}

// skipBlanks advances past spaces and tabs, unless the blank is the delimiter.
func skipBlanks(rs []rune, i int, delim rune) int {
	for i < len(rs) && (rs[i] == ' ' || rs[i] == '\t') && rs[i] != delim {
		i++
	}
	return i
}

// lineStats is the per-line outcome of a hypothesis.
type lineStats struct {
	freq    int // separating delimiters; -1 when malformed
	wrapped int // fields wrapped in the enclosure
}

func measureLine(line string, delim, enc rune) lineStats {
	if enc == NoEnclosure {
		return lineStats{freq: strings.Count(line, string(delim))}
	}
	fields, ok := splitLine(line, delim, enc)
	if !ok {
		return lineStats{freq: malformed}
	}
	st := lineStats{freq: len(fields) - 1}
	for _, f := range fields {
		if f.Wrapped {
			st.wrapped++
		}
	}
	return st
}

// SplitFields splits line with the given delimiter and enclosure, removing
// enclosures and unescaping doubled enclosure characters. Lines that are
// malformed under the enclosure fall back to a plain delimiter split.
func SplitFields(line string, delim, enc rune) []string {
	fields, ok := splitLine(line, delim, enc)
	if !ok {
		fields, _ = splitLine(line, delim, NoEnclosure)
	}
	out := make([]string, len(fields))
	for i, f := range fields {
		out[i] = f.Value
	}
	return out
}
