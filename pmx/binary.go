package pmx

import (
	"fmt"
	"io"
	"math"
	"unicode/utf8"

	"github.com/anaminus/parse"
	"github.com/pmxutil/pmxfile/errors"
	"golang.org/x/text/encoding/unicode"
)

// maxPrealloc bounds the capacity reserved ahead of time for a list or string
// whose length was read from the source.
const maxPrealloc = 4096

// textChunk is the number of bytes of a string read at once.
const textChunk = 1 << 16

var utf16le = unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)

////////////////////////////////////////////////////////////////

// binaryReader reads the primitive values of the format. Index widths and the
// text encoding are taken from header.
type binaryReader struct {
	*parse.BinaryReader
	header Header
	warn   errors.Errors
}

func newBinaryReader(r io.Reader) *binaryReader {
	return &binaryReader{BinaryReader: parse.NewBinaryReader(r)}
}

// warnf records a non-fatal warning at the current offset.
func (r *binaryReader) warnf(format string, v ...interface{}) {
	r.warn = append(r.warn, Warning{Offset: r.N(), Msg: fmt.Sprintf(format, v...)})
}

func (r *binaryReader) f32(v *float32) (failed bool) {
	var bits uint32
	if r.Number(&bits) {
		return true
	}
	*v = math.Float32frombits(bits)
	return false
}

func (r *binaryReader) floats(v []float32) (failed bool) {
	for i := range v {
		if r.f32(&v[i]) {
			return true
		}
	}
	return false
}

// count reads a non-negative i32 length.
func (r *binaryReader) count(n *int) (failed bool) {
	var c int32
	if r.Number(&c) {
		return true
	}
	if c < 0 {
		return r.Add(0, ErrNegativeLength)
	}
	*n = int(c)
	return false
}

// text reads a length-prefixed string in the encoding of the header.
func (r *binaryReader) text(s *string) (failed bool) {
	var n int
	if r.count(&n) {
		return true
	}
	b := make([]byte, 0, min(n, textChunk))
	for len(b) < n {
		i := len(b)
		b = append(b, make([]byte, min(n-i, textChunk))...)
		if r.Bytes(b[i:]) {
			return true
		}
	}

	if r.header.Encoding == UTF8 {
		if !utf8.Valid(b) {
			return r.Add(0, ErrInvalidText)
		}
		*s = string(b)
		return false
	}
	d, err := utf16le.NewDecoder().Bytes(b)
	if err != nil {
		return r.Add(0, ErrInvalidText)
	}
	*s = string(d)
	return false
}

// vertexIndex reads an unsigned vertex index.
func (r *binaryReader) vertexIndex(v *int32) (failed bool) {
	switch r.header.VertexIndex {
	case 1:
		var x uint8
		if r.Number(&x) {
			return true
		}
		*v = int32(x)
	case 2:
		var x uint16
		if r.Number(&x) {
			return true
		}
		*v = int32(x)
	default:
		return r.Number(v)
	}
	return false
}

// index reads a signed index of width w.
func (r *binaryReader) index(w IndexWidth, v *int32) (failed bool) {
	switch w {
	case 1:
		var x int8
		if r.Number(&x) {
			return true
		}
		*v = int32(x)
	case 2:
		var x int16
		if r.Number(&x) {
			return true
		}
		*v = int32(x)
	default:
		return r.Number(v)
	}
	return false
}

// readList reads a count followed by that many elements. An empty list is
// decoded as nil.
func readList[S ~[]T, T any](r *binaryReader, list *S, read func(*T) bool) (failed bool) {
	var n int
	if r.count(&n) {
		return true
	}
	if n == 0 {
		*list = nil
		return false
	}
	l := make(S, 0, min(n, maxPrealloc))
	for i := 0; i < n; i++ {
		var v T
		if read(&v) {
			return true
		}
		l = append(l, v)
	}
	*list = l
	return false
}

// decodeError returns the error of r, with the offset at which it occurred.
// An exhausted source is reported as ErrTruncatedInput.
func decodeError(r *binaryReader, err error) error {
	r.Add(0, err)
	err = r.Err()
	if err == nil {
		return nil
	}
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		err = ErrTruncatedInput
	}
	return DataError{Offset: r.N(), Cause: err}
}

////////////////////////////////////////////////////////////////

// binaryWriter writes the primitive values of the format. Index widths and
// the text encoding are taken from header.
type binaryWriter struct {
	*parse.BinaryWriter
	header Header
}

func newBinaryWriter(w io.Writer, h Header) *binaryWriter {
	return &binaryWriter{BinaryWriter: parse.NewBinaryWriter(w), header: h}
}

func (w *binaryWriter) f32(v float32) (failed bool) {
	return w.Number(math.Float32bits(v))
}

func (w *binaryWriter) floats(v []float32) (failed bool) {
	for _, f := range v {
		if w.f32(f) {
			return true
		}
	}
	return false
}

// count writes n as an i32 length.
func (w *binaryWriter) count(field string, n int) (failed bool) {
	if n < 0 || n > math.MaxInt32 {
		return w.Add(0, ValueTooWideError{Field: field, Width: 4, Value: int64(n)})
	}
	return w.Number(int32(n))
}

// text writes a length-prefixed string in the encoding of the header.
func (w *binaryWriter) text(s string) (failed bool) {
	var b []byte
	if w.header.Encoding == UTF8 {
		if !utf8.ValidString(s) {
			return w.Add(0, ErrInvalidText)
		}
		b = []byte(s)
	} else {
		var err error
		if b, err = utf16le.NewEncoder().Bytes([]byte(s)); err != nil {
			return w.Add(0, ErrInvalidText)
		}
	}
	if w.count("text length", len(b)) {
		return true
	}
	return w.Bytes(b)
}

// vertexIndex writes an unsigned vertex index.
func (w *binaryWriter) vertexIndex(field string, v int32) (failed bool) {
	switch w.header.VertexIndex {
	case 1:
		if v < 0 || v > math.MaxUint8 {
			return w.Add(0, ValueTooWideError{Field: field, Width: 1, Value: int64(v)})
		}
		return w.Number(uint8(v))
	case 2:
		if v < 0 || v > math.MaxUint16 {
			return w.Add(0, ValueTooWideError{Field: field, Width: 2, Value: int64(v)})
		}
		return w.Number(uint16(v))
	}
	return w.Number(v)
}

// index writes a signed index of width iw.
func (w *binaryWriter) index(iw IndexWidth, field string, v int32) (failed bool) {
	switch iw {
	case 1:
		if v < math.MinInt8 || v > math.MaxInt8 {
			return w.Add(0, ValueTooWideError{Field: field, Width: 1, Value: int64(v)})
		}
		return w.Number(int8(v))
	case 2:
		if v < math.MinInt16 || v > math.MaxInt16 {
			return w.Add(0, ValueTooWideError{Field: field, Width: 2, Value: int64(v)})
		}
		return w.Number(int16(v))
	}
	return w.Number(v)
}

// writeList writes the length of list followed by each element.
func writeList[S ~[]T, T any](w *binaryWriter, field string, list S, write func(*T) bool) (failed bool) {
	if w.count(field, len(list)) {
		return true
	}
	for i := range list {
		if write(&list[i]) {
			return true
		}
	}
	return false
}

// encodeError returns the error of w. Errors that did not originate from the
// codec are reported as a SinkError.
func encodeError(w *binaryWriter) error {
	err := w.Err()
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrValueTooWide) || errors.Is(err, ErrInvalidText) ||
		errors.Is(err, ErrUnrecognizedDiscriminant) || errors.Is(err, ErrSinkFailure) {
		return err
	}
	return SinkError{Cause: err}
}
