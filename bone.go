package pmxfile

// BoneFlags is the 16-bit flag word stored with each bone. It is derived from
// the structured fields of a Bone; see Bone.Flags.
type BoneFlags uint16

const (
	BoneConnectToBone      BoneFlags = 0x0001
	BoneRotatable          BoneFlags = 0x0002
	BoneTranslatable       BoneFlags = 0x0004
	BoneVisible            BoneFlags = 0x0008
	BoneEnabled            BoneFlags = 0x0010
	BoneIK                 BoneFlags = 0x0020
	BoneInheritLocal       BoneFlags = 0x0080
	BoneInheritRotation    BoneFlags = 0x0100
	BoneInheritTranslation BoneFlags = 0x0200
	BoneFixedAxis          BoneFlags = 0x0400
	BoneLocalAxis          BoneFlags = 0x0800
	BonePhysicsAfterDeform BoneFlags = 0x1000
	BoneExternalParent     BoneFlags = 0x2000
)

// Has returns whether all bits of mask are set.
func (f BoneFlags) Has(mask BoneFlags) bool {
	return f&mask == mask
}

// InheritMode selects which transforms a bone inherits from another bone.
type InheritMode uint8

const (
	InheritNone InheritMode = iota
	InheritRotate
	InheritTranslate
	InheritBoth
)

func (m InheritMode) String() string {
	switch m {
	case InheritNone:
		return "None"
	case InheritRotate:
		return "Rotate"
	case InheritTranslate:
		return "Translate"
	case InheritBoth:
		return "Both"
	}
	return "Invalid"
}

// Inherit describes how a bone follows the transform of another bone.
type Inherit struct {
	// Local inherits the local transform of the source bone.
	Local bool

	Mode InheritMode

	// Bone and Weight are meaningful only when Mode is not InheritNone.
	Bone   int32
	Weight float32
}

// LocalAxis is the local coordinate frame of a bone.
type LocalAxis struct {
	X Vec3
	Z Vec3
}

// AngleLimit bounds the rotation of an IK link, in radians.
type AngleLimit struct {
	Min Vec3
	Max Vec3
}

// IKLink is one bone of an IK chain.
type IKLink struct {
	Bone  int32
	Limit *AngleLimit
}

// IK makes a chain of bones reach a target bone.
type IK struct {
	Target     int32
	Loops      int32
	LimitAngle float32
	Links      []IKLink
}

// Bone is a single bone of the rig.
type Bone struct {
	Name   string
	NameEN string

	Position    Vec3
	Parent      int32
	DeformDepth int32

	// Connection is where the tail of the bone is displayed. A nil
	// Connection is encoded as a zero offset.
	Connection Connection

	Rotatable    bool
	Translatable bool
	Visible      bool
	Enabled      bool

	Inherit Inherit

	FixedAxis *Vec3
	LocalAxis *LocalAxis

	PhysicsAfterDeform bool

	// ExternalParent is the key of the external parent deform, if any.
	ExternalParent *int32

	IK *IK
}

// Flags computes the flag word of the bone from its structured fields.
func (b *Bone) Flags() BoneFlags {
	var f BoneFlags
	if b.Connection != nil && b.Connection.ToBone() {
		f |= BoneConnectToBone
	}
	if b.Rotatable {
		f |= BoneRotatable
	}
	if b.Translatable {
		f |= BoneTranslatable
	}
	if b.Visible {
		f |= BoneVisible
	}
	if b.Enabled {
		f |= BoneEnabled
	}
	if b.IK != nil {
		f |= BoneIK
	}
	if b.Inherit.Local {
		f |= BoneInheritLocal
	}
	switch b.Inherit.Mode {
	case InheritRotate:
		f |= BoneInheritRotation
	case InheritTranslate:
		f |= BoneInheritTranslation
	case InheritBoth:
		f |= BoneInheritRotation | BoneInheritTranslation
	}
	if b.FixedAxis != nil {
		f |= BoneFixedAxis
	}
	if b.LocalAxis != nil {
		f |= BoneLocalAxis
	}
	if b.PhysicsAfterDeform {
		f |= BonePhysicsAfterDeform
	}
	if b.ExternalParent != nil {
		f |= BoneExternalParent
	}
	return f
}

// SetFlags sets the boolean fields of the bone from f. Bits that govern the
// presence of structured data (connection, inheritance, axes, external
// parent, IK) are left to the caller, since their payload is not contained in
// the flag word.
func (b *Bone) SetFlags(f BoneFlags) {
	b.Rotatable = f.Has(BoneRotatable)
	b.Translatable = f.Has(BoneTranslatable)
	b.Visible = f.Has(BoneVisible)
	b.Enabled = f.Has(BoneEnabled)
	b.Inherit.Local = f.Has(BoneInheritLocal)
	b.PhysicsAfterDeform = f.Has(BonePhysicsAfterDeform)
}

// InheritModeOf returns the inheritance mode selected by f.
func InheritModeOf(f BoneFlags) InheritMode {
	switch {
	case f.Has(BoneInheritRotation | BoneInheritTranslation):
		return InheritBoth
	case f.Has(BoneInheritRotation):
		return InheritRotate
	case f.Has(BoneInheritTranslation):
		return InheritTranslate
	}
	return InheritNone
}
