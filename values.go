package pmxfile

// WeightType identifies a vertex skinning scheme. Its value is the tag used
// by the binary format.
type WeightType byte

const (
	WeightBDEF1 WeightType = iota
	WeightBDEF2
	WeightBDEF4
	WeightSDEF
	WeightQDEF
)

var weightTypeStrings = map[WeightType]string{
	WeightBDEF1: "BDEF1",
	WeightBDEF2: "BDEF2",
	WeightBDEF4: "BDEF4",
	WeightSDEF:  "SDEF",
	WeightQDEF:  "QDEF",
}

// String returns a string representation of the type. If the type is not
// valid, then the returned value will be "Invalid".
func (t WeightType) String() string {
	s, ok := weightTypeStrings[t]
	if !ok {
		return "Invalid"
	}
	return s
}

// Weight holds the bone weights of a vertex for a particular WeightType.
type Weight interface {
	// Type returns the skinning scheme of the weight.
	Type() WeightType
}

// BDEF1 binds a vertex to a single bone with a weight of 1.
type BDEF1 struct {
	Bone int32
}

// BDEF2 blends two bones. The weight of the second bone is 1-Weight.
type BDEF2 struct {
	Bones  [2]int32
	Weight float32
}

// BDEF4 blends four bones. The weights are not required to sum to 1.
type BDEF4 struct {
	Bones   [4]int32
	Weights [4]float32
}

// SDEF is spherical deformation between two bones, controlled by the center C
// and the reference points R0 and R1.
type SDEF struct {
	Bones  [2]int32
	Weight float32
	C      Vec3
	R0     Vec3
	R1     Vec3
}

// QDEF is dual-quaternion deformation. It has the same layout as BDEF4.
// (2.1)
type QDEF struct {
	Bones   [4]int32
	Weights [4]float32
}

func (BDEF1) Type() WeightType { return WeightBDEF1 }
func (BDEF2) Type() WeightType { return WeightBDEF2 }
func (BDEF4) Type() WeightType { return WeightBDEF4 }
func (SDEF) Type() WeightType  { return WeightSDEF }
func (QDEF) Type() WeightType  { return WeightQDEF }

////////////////////////////////////////////////////////////////

// Toon selects the toon texture of a material. It is either ToonTexture or
// ToonShared.
type Toon interface {
	// Shared returns whether the toon refers to one of the built-in
	// textures.
	Shared() bool
}

// ToonTexture refers to an entry of the model's texture list.
type ToonTexture int32

// ToonShared selects a built-in toon texture, toon01.bmp to toon10.bmp,
// by the values 0 to 9.
type ToonShared uint8

func (ToonTexture) Shared() bool { return false }
func (ToonShared) Shared() bool  { return true }

////////////////////////////////////////////////////////////////

// Connection describes where the tail of a bone is displayed. It is either
// ConnectBone or ConnectOffset.
type Connection interface {
	// ToBone returns whether the tail points at another bone.
	ToBone() bool
}

// ConnectBone displays the tail of a bone at another bone.
type ConnectBone int32

// ConnectOffset displays the tail of a bone at an offset from its position.
type ConnectOffset Vec3

func (ConnectBone) ToBone() bool   { return true }
func (ConnectOffset) ToBone() bool { return false }
