package pmx

import (
	"bytes"
	"encoding/binary"
	"io"
	"math"
	"testing"

	"github.com/pmxutil/pmxfile/errors"
)

// app concatenates values into a little-endian byte string. An int is a
// single byte.
func app(bs ...interface{}) []byte {
	var s []byte
	for _, b := range bs {
		switch b := b.(type) {
		case string:
			s = append(s, b...)
		case []byte:
			s = append(s, b...)
		case byte:
			s = append(s, b)
		case int:
			s = append(s, byte(b))
		case int8:
			s = append(s, byte(b))
		case int16:
			s = binary.LittleEndian.AppendUint16(s, uint16(b))
		case uint16:
			s = binary.LittleEndian.AppendUint16(s, b)
		case int32:
			s = binary.LittleEndian.AppendUint32(s, uint32(b))
		case float32:
			s = binary.LittleEndian.AppendUint32(s, math.Float32bits(b))
		default:
			panic("app: unsupported type")
		}
	}
	return s
}

// str returns a length-prefixed UTF-8 string.
func str(s string) []byte {
	return app(int32(len(s)), s)
}

// writer fails once more than n bytes have been written to it.
type writer int

func (w writer) set(n int) *writer {
	v := writer(n)
	return &v
}

func (w *writer) Write(b []byte) (n int, err error) {
	if *w <= 0 {
		return 0, io.EOF
	}
	*(*int)(w) -= len(b)
	if *w < 0 {
		return len(b) + *(*int)(w), io.ErrUnexpectedEOF
	}
	return len(b), nil
}

func newTestReader(h Header, b ...interface{}) *binaryReader {
	r := newBinaryReader(bytes.NewReader(app(b...)))
	r.header = h
	return r
}

var header8 = Header{
	Encoding:      UTF8,
	VertexIndex:   1,
	TextureIndex:  1,
	MaterialIndex: 1,
	BoneIndex:     1,
	MorphIndex:    1,
	RigidIndex:    1,
}

func TestReadText(t *testing.T) {
	var s string
	r := newTestReader(header8, str("モデル"))
	if r.text(&s) {
		t.Fatal("unexpected error:", r.Err())
	}
	if s != "モデル" {
		t.Errorf("expected %q, got %q", "モデル", s)
	}

	h := header8
	h.Encoding = UTF16LE
	r = newTestReader(h, int32(6), []byte{0xE2, 0x30, 0xC7, 0x30, 0xEB, 0x30})
	if r.text(&s) {
		t.Fatal("unexpected error:", r.Err())
	}
	if s != "モデル" {
		t.Errorf("expected %q, got %q", "モデル", s)
	}

	r = newTestReader(header8, int32(2), []byte{0xFF, 0xFE})
	if !r.text(&s) || !errors.Is(r.Err(), ErrInvalidText) {
		t.Error("expected error (ErrInvalidText), got:", r.Err())
	}

	r = newTestReader(header8, int32(-1))
	if !r.text(&s) || !errors.Is(r.Err(), ErrNegativeLength) {
		t.Error("expected error (ErrNegativeLength), got:", r.Err())
	}

	r = newTestReader(header8, int32(10), "abc")
	if !r.text(&s) {
		t.Error("expected error")
	} else if err := decodeError(r, nil); !errors.Is(err, ErrTruncatedInput) {
		t.Error("expected error (ErrTruncatedInput), got:", err)
	}
}

func TestReadIndex(t *testing.T) {
	var v int32

	r := newTestReader(header8, 0xFF)
	if r.vertexIndex(&v) || v != 255 {
		t.Errorf("expected unsigned vertex index 255, got %d (%v)", v, r.Err())
	}
	r = newTestReader(header8, 0xFF)
	if r.index(1, &v) || v != -1 {
		t.Errorf("expected signed index -1, got %d (%v)", v, r.Err())
	}

	h := header8
	h.VertexIndex = 2
	r = newTestReader(h, uint16(0xFFFF))
	if r.vertexIndex(&v) || v != 65535 {
		t.Errorf("expected unsigned vertex index 65535, got %d (%v)", v, r.Err())
	}
	r = newTestReader(h, int16(-2))
	if r.index(2, &v) || v != -2 {
		t.Errorf("expected signed index -2, got %d (%v)", v, r.Err())
	}
	r = newTestReader(h, int32(-70000))
	if r.index(4, &v) || v != -70000 {
		t.Errorf("expected signed index -70000, got %d (%v)", v, r.Err())
	}
}

func TestReadList(t *testing.T) {
	var list []int32
	r := newTestReader(header8, int32(0))
	if readList(r, &list, r.vertexIndex) {
		t.Fatal("unexpected error:", r.Err())
	}
	if list != nil {
		t.Error("expected nil list, got", list)
	}

	r = newTestReader(header8, int32(3), 1, 2, 3)
	if readList(r, &list, r.vertexIndex) {
		t.Fatal("unexpected error:", r.Err())
	}
	if len(list) != 3 || list[0] != 1 || list[2] != 3 {
		t.Error("unexpected list", list)
	}

	// A huge count must not be allocated up front.
	r = newTestReader(header8, int32(math.MaxInt32), 1)
	if !readList(r, &list, r.vertexIndex) {
		t.Error("expected error")
	}
}

func TestWriteIndex(t *testing.T) {
	for _, c := range []struct {
		width IndexWidth
		value int32
		ok    bool
	}{
		{1, 127, true},
		{1, 128, false},
		{1, -128, true},
		{1, -129, false},
		{2, 32767, true},
		{2, 32768, false},
		{4, math.MaxInt32, true},
	} {
		var buf bytes.Buffer
		w := newBinaryWriter(&buf, header8)
		failed := w.index(c.width, "bone index", c.value)
		if c.ok && failed {
			t.Errorf("width %d, value %d: unexpected error: %v", c.width, c.value, w.Err())
		}
		if !c.ok && (!failed || !errors.Is(w.Err(), ErrValueTooWide)) {
			t.Errorf("width %d, value %d: expected error (ErrValueTooWide), got: %v", c.width, c.value, w.Err())
		}
		if c.ok && buf.Len() != int(c.width) {
			t.Errorf("width %d, value %d: wrote %d bytes", c.width, c.value, buf.Len())
		}
	}

	var buf bytes.Buffer
	w := newBinaryWriter(&buf, header8)
	if !w.vertexIndex("face vertex index", 256) {
		t.Error("expected error for vertex index 256 with width 1")
	}
	var vtw ValueTooWideError
	if !errors.As(w.Err(), &vtw) || vtw.Value != 256 || vtw.Width != 1 {
		t.Error("expected ValueTooWideError, got:", w.Err())
	}
}

func TestWriteText(t *testing.T) {
	var buf bytes.Buffer
	w := newBinaryWriter(&buf, header8)
	if w.text("モデル") {
		t.Fatal("unexpected error:", w.Err())
	}
	if !bytes.Equal(buf.Bytes(), str("モデル")) {
		t.Errorf("unexpected UTF-8 bytes % X", buf.Bytes())
	}

	h := header8
	h.Encoding = UTF16LE
	buf.Reset()
	w = newBinaryWriter(&buf, h)
	if w.text("モデル") {
		t.Fatal("unexpected error:", w.Err())
	}
	if exp := app(int32(6), []byte{0xE2, 0x30, 0xC7, 0x30, 0xEB, 0x30}); !bytes.Equal(buf.Bytes(), exp) {
		t.Errorf("unexpected UTF-16 bytes % X", buf.Bytes())
	}

	buf.Reset()
	w = newBinaryWriter(&buf, header8)
	if !w.text("\xFF") || !errors.Is(w.Err(), ErrInvalidText) {
		t.Error("expected error (ErrInvalidText), got:", w.Err())
	}
}
