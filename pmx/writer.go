package pmx

import (
	"bufio"
	"io"
	"math"

	"github.com/pmxutil/pmxfile"
	"github.com/pmxutil/pmxfile/errors"
	"go.uber.org/zap"
)

// Writer accumulates the sections of a model and writes them as a PMX file.
// Header parameters are not decided until Write is called: the version is
// the lowest that supports every feature in use, and each index width is the
// smallest that can address its collection.
type Writer struct {
	w      io.Writer
	utf16  bool
	logger *zap.Logger

	hasInfo  bool
	model    pmxfile.Model
	consumed bool
}

// NewWriter returns a Writer that writes to w. Text is encoded as UTF-16LE if
// utf16 is true, and as UTF-8 otherwise.
func NewWriter(w io.Writer, utf16 bool) *Writer {
	return &Writer{w: w, utf16: utf16, logger: zap.NewNop()}
}

// SetModelInfo sets the names and comments of the model, replacing any
// previous value.
func (w *Writer) SetModelInfo(info pmxfile.ModelInfo) {
	w.model.Info = info
	w.hasInfo = true
}

// SetAdditionalUV sets the number of additional UV channels written per
// vertex. Returns ErrInvalidAdditionalUV if n is not between 0 and 4.
func (w *Writer) SetAdditionalUV(n int) error {
	if n < 0 || n > 4 {
		return ErrInvalidAdditionalUV
	}
	w.model.AdditionalUV = n
	return nil
}

// AddVertices appends vertices.
func (w *Writer) AddVertices(v ...pmxfile.Vertex) { w.model.Vertices = append(w.model.Vertices, v...) }

// AddFaces appends faces.
func (w *Writer) AddFaces(f ...pmxfile.Face) { w.model.Faces = append(w.model.Faces, f...) }

// AddTextures appends texture paths.
func (w *Writer) AddTextures(t ...string) { w.model.Textures = append(w.model.Textures, t...) }

// AddMaterials appends materials.
func (w *Writer) AddMaterials(m ...pmxfile.Material) {
	w.model.Materials = append(w.model.Materials, m...)
}

// AddBones appends bones.
func (w *Writer) AddBones(b ...pmxfile.Bone) { w.model.Bones = append(w.model.Bones, b...) }

// AddMorphs appends morphs.
func (w *Writer) AddMorphs(m ...pmxfile.Morph) { w.model.Morphs = append(w.model.Morphs, m...) }

// AddFrames appends display frames.
func (w *Writer) AddFrames(f ...pmxfile.Frame) { w.model.Frames = append(w.model.Frames, f...) }

// AddRigids appends rigid bodies.
func (w *Writer) AddRigids(r ...pmxfile.Rigid) { w.model.Rigids = append(w.model.Rigids, r...) }

// AddJoints appends joints.
func (w *Writer) AddJoints(j ...pmxfile.Joint) { w.model.Joints = append(w.model.Joints, j...) }

// AddSoftBodies appends soft bodies. Any soft body causes the file to be
// written as version 2.1.
func (w *Writer) AddSoftBodies(b ...pmxfile.SoftBody) {
	w.model.SoftBodies = append(w.model.SoftBodies, b...)
}

// Header returns the header that Write would produce for the current
// content.
func (w *Writer) Header() Header {
	m := &w.model
	h := Header{
		Version:       V20,
		Encoding:      UTF8,
		AdditionalUV:  m.AdditionalUV,
		VertexIndex:   vertexIndexWidth(len(m.Vertices)),
		TextureIndex:  signedIndexWidth(len(m.Textures)),
		MaterialIndex: signedIndexWidth(len(m.Materials)),
		BoneIndex:     signedIndexWidth(len(m.Bones)),
		MorphIndex:    signedIndexWidth(len(m.Morphs)),
		RigidIndex:    signedIndexWidth(len(m.Rigids)),
	}
	if w.utf16 {
		h.Encoding = UTF16LE
	}
	if m.RequiresV21() {
		h.Version = V21
	}
	return h
}

// checkLengths verifies that every section can be counted by an i32.
func (w *Writer) checkLengths() error {
	m := &w.model
	for _, c := range []struct {
		field string
		n     int
	}{
		{"vertex count", len(m.Vertices)},
		{"face vertex count", len(m.Faces) * 3},
		{"texture count", len(m.Textures)},
		{"material count", len(m.Materials)},
		{"bone count", len(m.Bones)},
		{"morph count", len(m.Morphs)},
		{"frame count", len(m.Frames)},
		{"rigid count", len(m.Rigids)},
		{"joint count", len(m.Joints)},
		{"soft body count", len(m.SoftBodies)},
	} {
		if c.n > math.MaxInt32 || c.n < 0 {
			return ValueTooWideError{Field: c.field, Width: 4, Value: int64(c.n)}
		}
	}
	return nil
}

// Write writes the accumulated model. No byte is written if model info was
// never set or a section is too large to be counted. The Writer is consumed
// by Write, whether or not it succeeds; subsequent calls return
// ErrWriterConsumed.
func (w *Writer) Write() error {
	if w.consumed {
		return ErrWriterConsumed
	}
	w.consumed = true
	if w.w == nil {
		return errors.New("nil writer")
	}
	if !w.hasInfo {
		return ErrMissingModelInfo
	}
	if err := w.checkLengths(); err != nil {
		return err
	}

	h := w.Header()
	w.logger.Debug("write header",
		zap.Stringer("version", h.Version),
		zap.Stringer("encoding", h.Encoding),
		zap.Uint8("vertexIndex", uint8(h.VertexIndex)),
		zap.Uint8("boneIndex", uint8(h.BoneIndex)),
	)

	bw := bufio.NewWriter(w.w)
	fw := newBinaryWriter(bw, h)
	m := &w.model

	raw := h.raw()
	if fw.rawHeader(&raw) {
		return encodeError(fw)
	}
	for _, section := range []struct {
		name  string
		count int
		write func() bool
	}{
		{"model info", 1, func() bool { return fw.modelInfo(&m.Info) }},
		{"vertices", len(m.Vertices), func() bool { return writeList(fw, "vertex count", m.Vertices, fw.vertex) }},
		{"faces", len(m.Faces), func() bool { return fw.faces(m.Faces) }},
		{"textures", len(m.Textures), func() bool { return writeList(fw, "texture count", m.Textures, fw.texture) }},
		{"materials", len(m.Materials), func() bool { return writeList(fw, "material count", m.Materials, fw.material) }},
		{"bones", len(m.Bones), func() bool { return writeList(fw, "bone count", m.Bones, fw.bone) }},
		{"morphs", len(m.Morphs), func() bool { return writeList(fw, "morph count", m.Morphs, fw.morph) }},
		{"frames", len(m.Frames), func() bool { return writeList(fw, "frame count", m.Frames, fw.frame) }},
		{"rigids", len(m.Rigids), func() bool { return writeList(fw, "rigid count", m.Rigids, fw.rigid) }},
		{"joints", len(m.Joints), func() bool { return writeList(fw, "joint count", m.Joints, fw.joint) }},
		{"soft bodies", len(m.SoftBodies), func() bool {
			if h.Version != V21 {
				return false
			}
			return writeList(fw, "soft body count", m.SoftBodies, fw.softBody)
		}},
	} {
		if section.write() {
			return SectionError{Section: section.name, Cause: encodeError(fw)}
		}
		w.logger.Debug("write section",
			zap.String("section", section.name),
			zap.Int("count", section.count),
			zap.Int64("offset", fw.N()),
		)
	}

	if err := bw.Flush(); err != nil {
		return SinkError{Cause: err}
	}
	return nil
}
