package pmx

import (
	"bytes"
	"io"

	"github.com/pmxutil/pmxfile"
	"github.com/pmxutil/pmxfile/errors"
	"go.uber.org/zap"
)

// session is the state of a read. It is owned by exactly one stage at a time.
type session struct {
	r      *binaryReader
	logger *zap.Logger
	// Number of warnings already logged.
	logged int
}

// finish reports the outcome of reading a section.
func (s *session) finish(section string, count int, failed bool) error {
	for _, w := range s.r.warn[s.logged:] {
		s.logger.Warn("decode warning", zap.String("section", section), zap.Error(w))
	}
	s.logged = len(s.r.warn)
	if failed {
		err := SectionError{Section: section, Cause: decodeError(s.r, nil)}
		s.logger.Debug("section failed", zap.String("section", section), zap.Error(err))
		return err
	}
	s.logger.Debug("read section",
		zap.String("section", section),
		zap.Int("count", count),
		zap.Int64("offset", s.r.N()),
	)
	return nil
}

// stage holds what is common to every stage of a read.
type stage struct {
	s      *session
	header Header
	warn   *errors.Errors
}

// Header returns the header of the file being read.
func (st *stage) Header() Header {
	return st.header
}

// Warn returns the non-fatal warnings accumulated by the read so far, or nil
// if there are none.
func (st *stage) Warn() error {
	if st.warn == nil {
		return nil
	}
	return st.warn.Return()
}

// take moves the session out of the stage, leaving the stage consumed.
func (st *stage) take() (*session, error) {
	if st.s == nil {
		return nil, ErrStageConsumed
	}
	s := st.s
	st.s = nil
	return s, nil
}

func (st *stage) next(s *session) stage {
	return stage{s: s, header: st.header, warn: st.warn}
}

////////////////////////////////////////////////////////////////

// NewReader reads and validates the header of a PMX file from r, and returns
// the first stage of the read. Each stage reads one section of the file and
// returns the stage of the following section, so sections can only be read
// once and in order.
//
// A bad signature fails with ErrMagicMismatch before any byte following the
// signature is consumed.
func NewReader(r io.Reader) (*ModelInfoStage, error) {
	return newReader(r, nil)
}

func newReader(r io.Reader, logger *zap.Logger) (*ModelInfoStage, error) {
	if r == nil {
		return nil, errors.New("nil reader")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	br := newBinaryReader(r)
	var raw rawHeader
	if br.Bytes(raw.Magic[:]) {
		return nil, decodeError(br, nil)
	}
	if !bytes.Equal(raw.Magic[:], []byte(magic)) {
		return nil, decodeError(br, ErrMagicMismatch)
	}
	if br.rawHeader(&raw) {
		return nil, decodeError(br, nil)
	}
	h, warn, err := raw.header()
	if err != nil {
		return nil, decodeError(br, err)
	}
	if warn != nil {
		br.warnf("%s", warn)
	}
	br.header = h

	s := &session{r: br, logger: logger}
	s.finish("header", 1, false)
	logger.Debug("header",
		zap.Stringer("version", h.Version),
		zap.Stringer("encoding", h.Encoding),
		zap.Int("additionalUV", h.AdditionalUV),
	)
	return &ModelInfoStage{stage{s: s, header: h, warn: &br.warn}}, nil
}

// ModelInfoStage reads the names and comments of the model.
type ModelInfoStage struct{ stage }

// Read reads the model info and returns the next stage.
func (st *ModelInfoStage) Read() (pmxfile.ModelInfo, *VerticesStage, error) {
	var info pmxfile.ModelInfo
	if st == nil {
		return info, nil, ErrStageConsumed
	}
	s, err := st.take()
	if err != nil {
		return info, nil, err
	}
	failed := s.r.modelInfo(&info)
	if err := s.finish("model info", 1, failed); err != nil {
		return info, nil, err
	}
	return info, &VerticesStage{st.next(s)}, nil
}

// VerticesStage reads the vertex section.
type VerticesStage struct{ stage }

// Read reads the vertices and returns the next stage.
func (st *VerticesStage) Read() ([]pmxfile.Vertex, *FacesStage, error) {
	if st == nil {
		return nil, nil, ErrStageConsumed
	}
	s, err := st.take()
	if err != nil {
		return nil, nil, err
	}
	var vertices []pmxfile.Vertex
	failed := readList(s.r, &vertices, s.r.vertex)
	if !failed && st.header.Version == V20 {
		for _, v := range vertices {
			if _, ok := v.Weight.(pmxfile.QDEF); ok {
				s.r.warnf("QDEF weight in version %s file", st.header.Version)
				break
			}
		}
	}
	if err := s.finish("vertices", len(vertices), failed); err != nil {
		return nil, nil, err
	}
	return vertices, &FacesStage{st.next(s)}, nil
}

// FacesStage reads the face section.
type FacesStage struct{ stage }

// Read reads the faces and returns the next stage.
func (st *FacesStage) Read() ([]pmxfile.Face, *TexturesStage, error) {
	if st == nil {
		return nil, nil, ErrStageConsumed
	}
	s, err := st.take()
	if err != nil {
		return nil, nil, err
	}
	var faces []pmxfile.Face
	failed := s.r.faces(&faces)
	if err := s.finish("faces", len(faces), failed); err != nil {
		return nil, nil, err
	}
	return faces, &TexturesStage{st.next(s)}, nil
}

// TexturesStage reads the texture section.
type TexturesStage struct{ stage }

// Read reads the texture paths and returns the next stage. Paths are returned
// as stored, without separator normalization.
func (st *TexturesStage) Read() ([]string, *MaterialsStage, error) {
	if st == nil {
		return nil, nil, ErrStageConsumed
	}
	s, err := st.take()
	if err != nil {
		return nil, nil, err
	}
	var textures []string
	failed := readList(s.r, &textures, s.r.text)
	if err := s.finish("textures", len(textures), failed); err != nil {
		return nil, nil, err
	}
	return textures, &MaterialsStage{st.next(s)}, nil
}

// MaterialsStage reads the material section.
type MaterialsStage struct{ stage }

// Read reads the materials and returns the next stage.
func (st *MaterialsStage) Read() ([]pmxfile.Material, *BonesStage, error) {
	if st == nil {
		return nil, nil, ErrStageConsumed
	}
	s, err := st.take()
	if err != nil {
		return nil, nil, err
	}
	var materials []pmxfile.Material
	failed := readList(s.r, &materials, s.r.material)
	if err := s.finish("materials", len(materials), failed); err != nil {
		return nil, nil, err
	}
	return materials, &BonesStage{st.next(s)}, nil
}

// BonesStage reads the bone section.
type BonesStage struct{ stage }

// Read reads the bones and returns the next stage.
func (st *BonesStage) Read() ([]pmxfile.Bone, *MorphsStage, error) {
	if st == nil {
		return nil, nil, ErrStageConsumed
	}
	s, err := st.take()
	if err != nil {
		return nil, nil, err
	}
	var bones []pmxfile.Bone
	failed := readList(s.r, &bones, s.r.bone)
	if err := s.finish("bones", len(bones), failed); err != nil {
		return nil, nil, err
	}
	return bones, &MorphsStage{st.next(s)}, nil
}

// MorphsStage reads the morph section.
type MorphsStage struct{ stage }

// Read reads the morphs and returns the next stage. Flip and impulse morphs
// are accepted in a version 2.0 file, with a warning.
func (st *MorphsStage) Read() ([]pmxfile.Morph, *FramesStage, error) {
	if st == nil {
		return nil, nil, ErrStageConsumed
	}
	s, err := st.take()
	if err != nil {
		return nil, nil, err
	}
	var morphs []pmxfile.Morph
	failed := readList(s.r, &morphs, s.r.morph)
	if !failed && st.header.Version == V20 {
		for _, m := range morphs {
			if t := m.Data.MorphType(); t.V21() {
				s.r.warnf("%s morph in version %s file", t, st.header.Version)
				break
			}
		}
	}
	if err := s.finish("morphs", len(morphs), failed); err != nil {
		return nil, nil, err
	}
	return morphs, &FramesStage{st.next(s)}, nil
}

// FramesStage reads the display frame section.
type FramesStage struct{ stage }

// Read reads the display frames and returns the next stage.
func (st *FramesStage) Read() ([]pmxfile.Frame, *RigidsStage, error) {
	if st == nil {
		return nil, nil, ErrStageConsumed
	}
	s, err := st.take()
	if err != nil {
		return nil, nil, err
	}
	var frames []pmxfile.Frame
	failed := readList(s.r, &frames, s.r.frame)
	if err := s.finish("frames", len(frames), failed); err != nil {
		return nil, nil, err
	}
	return frames, &RigidsStage{st.next(s)}, nil
}

// RigidsStage reads the rigid body section.
type RigidsStage struct{ stage }

// Read reads the rigid bodies and returns the next stage.
func (st *RigidsStage) Read() ([]pmxfile.Rigid, *JointsStage, error) {
	if st == nil {
		return nil, nil, ErrStageConsumed
	}
	s, err := st.take()
	if err != nil {
		return nil, nil, err
	}
	var rigids []pmxfile.Rigid
	failed := readList(s.r, &rigids, s.r.rigid)
	if err := s.finish("rigids", len(rigids), failed); err != nil {
		return nil, nil, err
	}
	return rigids, &JointsStage{st.next(s)}, nil
}

// JointsStage reads the joint section.
type JointsStage struct{ stage }

// Read reads the joints. The returned stage is nil if the file has version
// 2.0, in which case the read is complete and no further bytes are consumed.
func (st *JointsStage) Read() ([]pmxfile.Joint, *SoftBodiesStage, error) {
	if st == nil {
		return nil, nil, ErrStageConsumed
	}
	s, err := st.take()
	if err != nil {
		return nil, nil, err
	}
	var joints []pmxfile.Joint
	failed := readList(s.r, &joints, s.r.joint)
	if err := s.finish("joints", len(joints), failed); err != nil {
		return nil, nil, err
	}
	if st.header.Version != V21 {
		return joints, nil, nil
	}
	return joints, &SoftBodiesStage{st.next(s)}, nil
}

// SoftBodiesStage reads the soft body section of a version 2.1 file.
type SoftBodiesStage struct{ stage }

// Read reads the soft bodies, completing the read.
func (st *SoftBodiesStage) Read() ([]pmxfile.SoftBody, error) {
	if st == nil {
		return nil, ErrStageConsumed
	}
	s, err := st.take()
	if err != nil {
		return nil, err
	}
	var bodies []pmxfile.SoftBody
	failed := readList(s.r, &bodies, s.r.softBody)
	if err := s.finish("soft bodies", len(bodies), failed); err != nil {
		return nil, err
	}
	return bodies, nil
}
