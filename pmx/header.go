package pmx

import (
	"bytes"
	"math"

	"github.com/pmxutil/pmxfile/errors"
)

// magic is the signature at the start of every PMX file.
const magic = "PMX "

// configLen is the expected length of the config block of the header.
const configLen = 8

// Version is the version of the format.
type Version uint8

const (
	V20 Version = iota // Version 2.0.
	V21                // Version 2.1, which adds soft bodies and extended joints.
)

// Float returns the version number as stored in the header.
func (v Version) Float() float32 {
	if v == V21 {
		return 2.1
	}
	return 2.0
}

func (v Version) String() string {
	switch v {
	case V20:
		return "2.0"
	case V21:
		return "2.1"
	}
	return "Invalid"
}

// MarshalText implements encoding.TextMarshaler.
func (v Version) MarshalText() ([]byte, error) {
	return []byte(v.String()), nil
}

// Encoding is the text encoding of the strings in a file.
type Encoding uint8

const (
	UTF16LE Encoding = 0
	UTF8    Encoding = 1
)

func (e Encoding) String() string {
	switch e {
	case UTF16LE:
		return "UTF-16LE"
	case UTF8:
		return "UTF-8"
	}
	return "Invalid"
}

// MarshalText implements encoding.TextMarshaler.
func (e Encoding) MarshalText() ([]byte, error) {
	return []byte(e.String()), nil
}

// IndexWidth is the number of bytes used to encode the indexes of one domain.
type IndexWidth uint8

// Valid returns whether w is one of 1, 2, or 4.
func (w IndexWidth) Valid() bool {
	return w == 1 || w == 2 || w == 4
}

// vertexIndexWidth returns the smallest width that can address n vertices.
// Vertex indexes of width 1 and 2 are unsigned.
func vertexIndexWidth(n int) IndexWidth {
	switch {
	case n < 0x100:
		return 1
	case n < 0x10000:
		return 2
	}
	return 4
}

// signedIndexWidth returns the smallest width that can address n elements
// with a signed index.
func signedIndexWidth(n int) IndexWidth {
	switch {
	case n < 128:
		return 1
	case n < 32768:
		return 2
	}
	return 4
}

// Header contains the global parameters of a file.
type Header struct {
	Version  Version
	Encoding Encoding

	// AdditionalUV is the number of additional UV channels per vertex, from
	// 0 to 4.
	AdditionalUV int

	VertexIndex   IndexWidth
	TextureIndex  IndexWidth
	MaterialIndex IndexWidth
	BoneIndex     IndexWidth
	MorphIndex    IndexWidth
	RigidIndex    IndexWidth
}

// rawHeader is the header as it appears in a file.
type rawHeader struct {
	Magic     [4]byte
	Version   float32
	ConfigLen uint8
	Config    [configLen]byte
}

var widthFields = [6]string{"vertex", "texture", "material", "bone", "morph", "rigid"}

// header translates the raw header. warn is non-nil if the header contains
// irregularities that do not prevent decoding.
func (raw *rawHeader) header() (h Header, warn, err error) {
	if !bytes.Equal(raw.Magic[:], []byte(magic)) {
		return h, nil, ErrMagicMismatch
	}

	switch v := raw.Version; {
	case v < 2.0 || v >= 2.2 || math.IsNaN(float64(v)):
		return h, nil, UnsupportedVersionError(v)
	case v < 2.05:
		h.Version = V20
	default:
		h.Version = V21
	}

	if raw.ConfigLen != configLen {
		warn = errors.Errorf("config length is %d, expected %d", raw.ConfigLen, configLen)
	}

	switch e := Encoding(raw.Config[0]); e {
	case UTF16LE, UTF8:
		h.Encoding = e
	default:
		return h, warn, ErrInvalidEncoding
	}

	if raw.Config[1] > 4 {
		return h, warn, ErrInvalidAdditionalUV
	}
	h.AdditionalUV = int(raw.Config[1])

	widths := [6]*IndexWidth{
		&h.VertexIndex,
		&h.TextureIndex,
		&h.MaterialIndex,
		&h.BoneIndex,
		&h.MorphIndex,
		&h.RigidIndex,
	}
	for i, w := range widths {
		*w = IndexWidth(raw.Config[2+i])
		if !w.Valid() {
			return h, warn, IndexWidthError{Field: widthFields[i], Width: raw.Config[2+i]}
		}
	}
	return h, warn, nil
}

// raw returns the raw form of the header.
func (h Header) raw() rawHeader {
	raw := rawHeader{
		Version:   h.Version.Float(),
		ConfigLen: configLen,
		Config: [configLen]byte{
			byte(h.Encoding),
			byte(h.AdditionalUV),
			byte(h.VertexIndex),
			byte(h.TextureIndex),
			byte(h.MaterialIndex),
			byte(h.BoneIndex),
			byte(h.MorphIndex),
			byte(h.RigidIndex),
		},
	}
	copy(raw.Magic[:], magic)
	return raw
}
