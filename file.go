// The pmxfile package handles the decoding, encoding, and manipulation of PMX
// model data structures.
//
// PMX is the model format of the MikuMikuDance ecosystem. A PMX file
// describes a skinned mesh together with its rig: vertices, faces, textures,
// materials, bones with inverse kinematics chains, morphs, display frames,
// rigid bodies, joints, and (since version 2.1) soft bodies.
//
// Such data structures begin with a Model struct, which holds one slice per
// file section. Every section element is a plain value; cross references
// between sections (a bone's parent, a material's texture, a joint's rigid
// bodies) are stored as integer indexes and are not resolved or validated by
// this package.
//
// Tagged unions of the format are represented as interfaces with one concrete
// type per variant. For example, every skinning scheme implements the Weight
// interface, and every joint kind implements the JointParams interface.
//
// Models can be decoded from and encoded to the binary format with the "pmx"
// sub-package.
package pmxfile

////////////////////////////////////////////////////////////////

// Vec2 is a two-component float vector.
type Vec2 [2]float32

// Vec3 is a three-component float vector.
type Vec3 [3]float32

// Vec4 is a four-component float vector.
type Vec4 [4]float32

////////////////////////////////////////////////////////////////

// Model represents the complete content of a PMX file.
type Model struct {
	// Info contains the names and comments of the model.
	Info ModelInfo

	// AdditionalUV is the number of additional UV channels (0 to 4) stored
	// with each vertex. Only the first AdditionalUV entries of
	// Vertex.AddUV are meaningful.
	AdditionalUV int

	Vertices   []Vertex
	Faces      []Face
	Textures   []string
	Materials  []Material
	Bones      []Bone
	Morphs     []Morph
	Frames     []Frame
	Rigids     []Rigid
	Joints     []Joint
	SoftBodies []SoftBody
}

// RequiresV21 returns whether the model uses any feature introduced by
// version 2.1 of the format: QDEF skinning, flip or impulse morphs,
// cone-twist, slider or hinge joints, or soft bodies.
func (m *Model) RequiresV21() bool {
	if len(m.SoftBodies) > 0 {
		return true
	}
	for _, v := range m.Vertices {
		if _, ok := v.Weight.(QDEF); ok {
			return true
		}
	}
	for _, morph := range m.Morphs {
		if morph.Data != nil && morph.Data.MorphType().V21() {
			return true
		}
	}
	for _, j := range m.Joints {
		if j.Params != nil && j.Params.JointType().V21() {
			return true
		}
	}
	return false
}

// ModelInfo contains the names and comments embedded in a model.
type ModelInfo struct {
	Name      string
	NameEN    string
	Comment   string
	CommentEN string
}

// Vertex is a single mesh vertex.
type Vertex struct {
	Position Vec3
	Normal   Vec3
	UV       Vec2

	// AddUV holds the additional UV channels. The number of channels stored
	// in a file is determined by the file header, not by this array.
	AddUV [4]Vec4

	// Weight describes how the vertex is skinned to bones.
	Weight Weight

	// EdgeScale is the edge magnification of the vertex.
	EdgeScale float32
}

// Face is a triangle referring to three vertices.
//
// In version 2.1, materials drawn as points or lines reuse the face layout:
// a line is stored as A-B-A and a point as A-A-A.
type Face [3]int32

////////////////////////////////////////////////////////////////

// MaterialFlags is the draw-mode bit set of a material.
type MaterialFlags uint8

const (
	MaterialDisableCulling MaterialFlags = 1 << iota
	MaterialGroundShadow
	MaterialDrawShadow
	MaterialReceiveShadow
	MaterialHasEdge
	MaterialVertexColor // 2.1
	MaterialPointDraw   // 2.1
	MaterialLineDraw    // 2.1
)

// SphereKind indicates how a sphere texture is applied.
type SphereKind uint8

const (
	SphereMul        SphereKind = 1
	SphereAdd        SphereKind = 2
	SphereSubTexture SphereKind = 3
)

func (k SphereKind) String() string {
	switch k {
	case SphereMul:
		return "Mul"
	case SphereAdd:
		return "Add"
	case SphereSubTexture:
		return "SubTexture"
	}
	return "Invalid"
}

// SphereMode describes the sphere texture of a material.
type SphereMode struct {
	Kind    SphereKind
	Texture int32
}

// Material describes how a run of faces is drawn.
type Material struct {
	Name   string
	NameEN string

	Diffuse        Vec4
	Specular       Vec3
	SpecularFactor float32
	Ambient        Vec3

	DrawMode MaterialFlags

	EdgeColor Vec4
	EdgeSize  float32

	// Texture is an index into the texture list, or -1.
	Texture int32

	// Sphere is the sphere texture mode, or nil if the material has none.
	Sphere *SphereMode

	// Toon selects the toon texture. A nil Toon is encoded as ToonShared(0).
	Toon Toon

	Memo string

	// FaceVertexCount is the number of face vertices (three per face)
	// drawn with the material.
	FaceVertexCount int32
}

////////////////////////////////////////////////////////////////

// FrameTarget indicates what a display frame element refers to.
type FrameTarget uint8

const (
	FrameBone  FrameTarget = 0
	FrameMorph FrameTarget = 1
)

func (t FrameTarget) String() string {
	switch t {
	case FrameBone:
		return "Bone"
	case FrameMorph:
		return "Morph"
	}
	return "Invalid"
}

// FrameElement refers to a bone or a morph shown in a display frame.
type FrameElement struct {
	Target FrameTarget
	Index  int32
}

// Frame groups bones and morphs for display in an editor.
type Frame struct {
	Name   string
	NameEN string

	// Special is 1 for the built-in frames ("Root" and facial morphs).
	Special uint8

	Elements []FrameElement
}
