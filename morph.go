package pmxfile

// Panel is the control panel of an editor in which a morph is shown.
type Panel uint8

const (
	PanelSystem Panel = iota
	PanelBottomLeft
	PanelTopLeft
	PanelTopRight
	PanelBottomRight
)

var panelStrings = map[Panel]string{
	PanelSystem:      "System",
	PanelBottomLeft:  "BottomLeft",
	PanelTopLeft:     "TopLeft",
	PanelTopRight:    "TopRight",
	PanelBottomRight: "BottomRight",
}

func (p Panel) String() string {
	s, ok := panelStrings[p]
	if !ok {
		return "Invalid"
	}
	return s
}

// MorphType identifies the kind of offsets held by a morph. Its value is the
// tag used by the binary format.
type MorphType uint8

const (
	MorphGroup MorphType = iota
	MorphVertex
	MorphBone
	MorphUV
	MorphUV1
	MorphUV2
	MorphUV3
	MorphUV4
	MorphMaterial
	MorphFlip
	MorphImpulse
)

var morphTypeStrings = map[MorphType]string{
	MorphGroup:    "Group",
	MorphVertex:   "Vertex",
	MorphBone:     "Bone",
	MorphUV:       "UV",
	MorphUV1:      "UV1",
	MorphUV2:      "UV2",
	MorphUV3:      "UV3",
	MorphUV4:      "UV4",
	MorphMaterial: "Material",
	MorphFlip:     "Flip",
	MorphImpulse:  "Impulse",
}

// String returns a string representation of the type. If the type is not
// valid, then the returned value will be "Invalid".
func (t MorphType) String() string {
	s, ok := morphTypeStrings[t]
	if !ok {
		return "Invalid"
	}
	return s
}

// V21 returns whether the morph type was introduced by version 2.1.
func (t MorphType) V21() bool {
	return t == MorphFlip || t == MorphImpulse
}

// Morph is a named deformation applied at a blend weight.
type Morph struct {
	Name   string
	NameEN string
	Panel  Panel
	Data   MorphData
}

// MorphData is the list of offsets of a morph. Each implementation holds a
// homogeneous list of one offset kind.
type MorphData interface {
	// MorphType returns the type tag of the offsets.
	MorphType() MorphType
	// Len returns the number of offsets.
	Len() int
}

// GroupMorph applies another morph scaled by Factor.
type GroupMorph struct {
	Morph  int32
	Factor float32
}

// VertexMorph moves a vertex.
type VertexMorph struct {
	Vertex int32
	Offset Vec3
}

// BoneMorph moves and rotates a bone. Rotation is a quaternion.
type BoneMorph struct {
	Bone        int32
	Translation Vec3
	Rotation    Vec4
}

// UVMorph offsets one UV channel of a vertex.
type UVMorph struct {
	Vertex int32
	Offset Vec4
}

// MaterialMorph changes the colors of a material, or of every material when
// Material is -1.
type MaterialMorph struct {
	Material int32

	// Formula is 0 to multiply and 1 to add.
	Formula uint8

	Diffuse        Vec4
	Specular       Vec3
	SpecularFactor float32
	Ambient        Vec3
	EdgeColor      Vec4
	EdgeSize       float32
	TextureFactor  Vec4
	SphereFactor   Vec4
	ToonFactor     Vec4
}

// FlipMorph selects one of several morphs by the blend weight. (2.1)
type FlipMorph struct {
	Morph  int32
	Factor float32
}

// ImpulseMorph applies a velocity and torque to a rigid body. (2.1)
type ImpulseMorph struct {
	Rigid    int32
	Local    bool
	Velocity Vec3
	Torque   Vec3
}

// GroupMorphs is the MorphData of a group morph.
type GroupMorphs []GroupMorph

// VertexMorphs is the MorphData of a vertex morph.
type VertexMorphs []VertexMorph

// BoneMorphs is the MorphData of a bone morph.
type BoneMorphs []BoneMorph

// UVMorphs is the MorphData of a UV morph. Channel 0 is the base UV, and
// channels 1 to 4 are the additional UV channels.
type UVMorphs struct {
	Channel int
	Offsets []UVMorph
}

// MaterialMorphs is the MorphData of a material morph.
type MaterialMorphs []MaterialMorph

// FlipMorphs is the MorphData of a flip morph.
type FlipMorphs []FlipMorph

// ImpulseMorphs is the MorphData of an impulse morph.
type ImpulseMorphs []ImpulseMorph

func (GroupMorphs) MorphType() MorphType    { return MorphGroup }
func (VertexMorphs) MorphType() MorphType   { return MorphVertex }
func (BoneMorphs) MorphType() MorphType     { return MorphBone }
func (MaterialMorphs) MorphType() MorphType { return MorphMaterial }
func (FlipMorphs) MorphType() MorphType     { return MorphFlip }
func (ImpulseMorphs) MorphType() MorphType  { return MorphImpulse }

// MorphType returns the tag of the channel. Channels outside 0 to 4 are
// clamped.
func (m UVMorphs) MorphType() MorphType {
	switch {
	case m.Channel < 0:
		return MorphUV
	case m.Channel > 4:
		return MorphUV4
	}
	return MorphUV + MorphType(m.Channel)
}

func (m GroupMorphs) Len() int    { return len(m) }
func (m VertexMorphs) Len() int   { return len(m) }
func (m BoneMorphs) Len() int     { return len(m) }
func (m UVMorphs) Len() int       { return len(m.Offsets) }
func (m MaterialMorphs) Len() int { return len(m) }
func (m FlipMorphs) Len() int     { return len(m) }
func (m ImpulseMorphs) Len() int  { return len(m) }
