package core

// streaming.go provides the readers wrapped around decoded text:
//
//   - BOMSkippingReader: drops a leading byte order mark (U+FEFF in UTF-8)
//   - CountingReader: tracks bytes read and tells empty input from junk
//
// Decoders that ignore the byte order mark pass it through as U+FEFF, so it
// is stripped from the decoded text.

import (
	"bytes"
	"context"
	"io"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// BOMSkippingReader wraps an io.Reader and skips the UTF-8 BOM if present.
type BOMSkippingReader struct {
	reader  io.Reader
	checked bool
	head    []byte // bytes read while checking that are not a BOM
}

// NewBOMSkippingReader creates a new BOM-skipping reader.
func NewBOMSkippingReader(r io.Reader) *BOMSkippingReader {
	return &BOMSkippingReader{reader: r}
}

// Read implements io.Reader. On the first read, it checks for and skips the BOM.
func (r *BOMSkippingReader) Read(p []byte) (int, error) {
	if !r.checked {
		r.checked = true

		var buf [3]byte
		n, err := io.ReadFull(r.reader, buf[:])
		if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
			return 0, err
		}
		if n < 3 || !bytes.Equal(buf[:], utf8BOM) {
			r.head = append(r.head, buf[:n]...)
		}
	}

	if len(r.head) > 0 {
		n := copy(p, r.head)
		r.head = r.head[n:]
		return n, nil
	}

	return r.reader.Read(p)
}

// CountingReader wraps an io.Reader to track bytes read and whether any of
// them was something other than whitespace.
type CountingReader struct {
	reader    io.Reader
	BytesRead int64
	sawText   bool
}

// NewCountingReader creates a counting reader.
func NewCountingReader(r io.Reader) *CountingReader {
	return &CountingReader{reader: r}
}

// Read implements io.Reader.
func (r *CountingReader) Read(p []byte) (int, error) {
	n, err := r.reader.Read(p)
	r.BytesRead += int64(n)
	if !r.sawText && len(bytes.TrimSpace(p[:n])) > 0 {
		r.sawText = true
	}
	return n, err
}

// SawText reports whether a non-whitespace byte has been read.
func (r *CountingReader) SawText() bool { return r.sawText }

// contextReader fails reads once ctx is done, so line-oriented consumers
// that know nothing about contexts still stop on cancellation.
type contextReader struct {
	ctx    context.Context
	reader io.Reader
}

func (r contextReader) Read(p []byte) (int, error) {
	if err := r.ctx.Err(); err != nil {
		return 0, err
	}
	return r.reader.Read(p)
}
