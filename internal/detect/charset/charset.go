// Package charset sniffs the character encoding of a byte stream and turns
// encoding names into decoders that produce UTF-8.
package charset

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// ErrUnsupported is returned by Lookup for names with no known decoder.
var ErrUnsupported = errors.New("unsupported charset")

// Prober names that differ from their IANA registration.
var aliases = map[string]string{
	"gb-18030":   "GB18030",
	"ibm420_ltr": "IBM420",
	"ibm420_rtl": "IBM420",
	"ibm424_ltr": "IBM424",
	"ibm424_rtl": "IBM424",
}

var (
	UTF8      = Charset{name: "UTF-8", enc: unicode.UTF8BOM}
	ISO8859_1 = mustLookup("ISO-8859-1")
)

// Charset is a named character encoding. The zero value is not usable.
type Charset struct {
	name string
	enc  encoding.Encoding
}

// Lookup resolves an IANA or WHATWG charset name.
func Lookup(name string) (Charset, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Charset{}, fmt.Errorf("%w: empty name", ErrUnsupported)
	}
	if strings.EqualFold(name, "utf-8") || strings.EqualFold(name, "utf8") {
		return UTF8, nil
	}
	if alias, ok := aliases[strings.ToLower(name)]; ok {
		name = alias
	}

	enc, err := ianaindex.IANA.Encoding(name)
	if err != nil || enc == nil {
		enc, err = htmlindex.Get(name)
		if err != nil || enc == nil {
			return Charset{}, fmt.Errorf("%w: %s", ErrUnsupported, name)
		}
	}

	canonical := name
	if n, err := ianaindex.IANA.Name(enc); err == nil && n != "" {
		canonical = n
	}
	return Charset{name: canonical, enc: enc}, nil
}

func mustLookup(name string) Charset {
	c, err := Lookup(name)
	if err != nil {
		panic(err)
	}
	return c
}

// Name is the canonical charset name.
func (c Charset) Name() string { return c.name }

func (c Charset) String() string { return c.name }

// NewReader decodes r from this charset into UTF-8. Invalid input sequences
// become U+FFFD.
func (c Charset) NewReader(r io.Reader) io.Reader {
	return transform.NewReader(r, c.enc.NewDecoder())
}
