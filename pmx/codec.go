// Package pmx implements a decoder and encoder for the binary PMX model
// format, versions 2.0 and 2.1.
//
// The format is read in stages with NewReader, one stage per section, and
// written with a Writer that accumulates sections before producing the file.
// The Decoder and Encoder types, and the Decode and Encode functions, convert
// directly between byte streams and pmxfile.Model structures.
package pmx

import (
	"io"

	"github.com/pmxutil/pmxfile"
	"github.com/pmxutil/pmxfile/errors"
	"go.uber.org/zap"
)

// Decoder decodes a stream of bytes into a pmxfile.Model.
type Decoder struct {
	// Logger receives a debug entry for each section, and an entry for each
	// warning. If nil, nothing is logged.
	Logger *zap.Logger
}

// Decode reads a model from r. The header of the file is also returned. warn
// holds irregularities that did not prevent decoding.
func (d Decoder) Decode(r io.Reader) (model *pmxfile.Model, header *Header, warn, err error) {
	st, err := newReader(r, d.Logger)
	if err != nil {
		return nil, nil, nil, err
	}
	h := st.Header()
	header = &h
	fail := func(err error) (*pmxfile.Model, *Header, error, error) {
		return nil, header, st.Warn(), err
	}

	m := &pmxfile.Model{AdditionalUV: h.AdditionalUV}
	info, vs, err := st.Read()
	if err != nil {
		return fail(err)
	}
	m.Info = info
	vertices, fs, err := vs.Read()
	if err != nil {
		return fail(err)
	}
	m.Vertices = vertices
	faces, ts, err := fs.Read()
	if err != nil {
		return fail(err)
	}
	m.Faces = faces
	textures, ms, err := ts.Read()
	if err != nil {
		return fail(err)
	}
	m.Textures = textures
	materials, bs, err := ms.Read()
	if err != nil {
		return fail(err)
	}
	m.Materials = materials
	bones, mos, err := bs.Read()
	if err != nil {
		return fail(err)
	}
	m.Bones = bones
	morphs, frs, err := mos.Read()
	if err != nil {
		return fail(err)
	}
	m.Morphs = morphs
	frames, rs, err := frs.Read()
	if err != nil {
		return fail(err)
	}
	m.Frames = frames
	rigids, js, err := rs.Read()
	if err != nil {
		return fail(err)
	}
	m.Rigids = rigids
	joints, sbs, err := js.Read()
	if err != nil {
		return fail(err)
	}
	m.Joints = joints
	if sbs != nil {
		if m.SoftBodies, err = sbs.Read(); err != nil {
			return fail(err)
		}
	}
	return m, header, st.Warn(), nil
}

// Encoder encodes a pmxfile.Model into a stream of bytes.
type Encoder struct {
	// UTF16 selects UTF-16LE for text. Otherwise, text is encoded as UTF-8.
	UTF16 bool

	// Logger receives a debug entry for each section. If nil, nothing is
	// logged.
	Logger *zap.Logger
}

// Encode writes model to w.
func (e Encoder) Encode(w io.Writer, model *pmxfile.Model) error {
	if model == nil {
		return errors.New("nil model")
	}
	pw := NewWriter(w, e.UTF16)
	if e.Logger != nil {
		pw.logger = e.Logger
	}
	pw.SetModelInfo(model.Info)
	if err := pw.SetAdditionalUV(model.AdditionalUV); err != nil {
		return err
	}
	pw.AddVertices(model.Vertices...)
	pw.AddFaces(model.Faces...)
	pw.AddTextures(model.Textures...)
	pw.AddMaterials(model.Materials...)
	pw.AddBones(model.Bones...)
	pw.AddMorphs(model.Morphs...)
	pw.AddFrames(model.Frames...)
	pw.AddRigids(model.Rigids...)
	pw.AddJoints(model.Joints...)
	pw.AddSoftBodies(model.SoftBodies...)
	return pw.Write()
}

// Decode reads a model from r. Warnings are discarded.
func Decode(r io.Reader) (*pmxfile.Model, error) {
	model, _, _, err := Decoder{}.Decode(r)
	return model, err
}

// Encode writes model to w, with text encoded as UTF-16LE.
func Encode(w io.Writer, model *pmxfile.Model) error {
	return Encoder{UTF16: true}.Encode(w, model)
}
