package pmx

import (
	"github.com/pmxutil/pmxfile"
)

func (w *binaryWriter) rawHeader(raw *rawHeader) (failed bool) {
	if w.Bytes(raw.Magic[:]) {
		return true
	}
	if w.f32(raw.Version) {
		return true
	}
	if w.Number(raw.ConfigLen) {
		return true
	}
	return w.Bytes(raw.Config[:])
}

func (w *binaryWriter) modelInfo(info *pmxfile.ModelInfo) (failed bool) {
	for _, s := range []string{info.Name, info.NameEN, info.Comment, info.CommentEN} {
		if w.text(s) {
			return true
		}
	}
	return false
}

func (w *binaryWriter) names(name, nameEN string) (failed bool) {
	if w.text(name) {
		return true
	}
	return w.text(nameEN)
}

func (w *binaryWriter) boneIndex(v int32) (failed bool) {
	return w.index(w.header.BoneIndex, "bone index", v)
}

func (w *binaryWriter) textureIndex(v int32) (failed bool) {
	return w.index(w.header.TextureIndex, "texture index", v)
}

func (w *binaryWriter) u8flag(b bool) (failed bool) {
	if b {
		return w.Number(uint8(1))
	}
	return w.Number(uint8(0))
}

////////////////////////////////////////////////////////////////

func (w *binaryWriter) vertex(v *pmxfile.Vertex) (failed bool) {
	if w.floats(v.Position[:]) || w.floats(v.Normal[:]) || w.floats(v.UV[:]) {
		return true
	}
	for i := 0; i < w.header.AdditionalUV; i++ {
		if w.floats(v.AddUV[i][:]) {
			return true
		}
	}
	if w.weight(v.Weight) {
		return true
	}
	return w.f32(v.EdgeScale)
}

// weight writes a skinning weight. A nil weight is written as BDEF1 bound to
// bone -1.
func (w *binaryWriter) weight(weight pmxfile.Weight) (failed bool) {
	if weight == nil {
		weight = pmxfile.BDEF1{Bone: -1}
	}
	if w.Number(uint8(weight.Type())) {
		return true
	}
	switch v := weight.(type) {
	case pmxfile.BDEF1:
		return w.boneIndex(v.Bone)
	case pmxfile.BDEF2:
		if w.boneIndex(v.Bones[0]) || w.boneIndex(v.Bones[1]) {
			return true
		}
		return w.f32(v.Weight)
	case pmxfile.BDEF4:
		for _, b := range v.Bones {
			if w.boneIndex(b) {
				return true
			}
		}
		return w.floats(v.Weights[:])
	case pmxfile.SDEF:
		if w.boneIndex(v.Bones[0]) || w.boneIndex(v.Bones[1]) {
			return true
		}
		if w.f32(v.Weight) {
			return true
		}
		return w.floats(v.C[:]) || w.floats(v.R0[:]) || w.floats(v.R1[:])
	case pmxfile.QDEF:
		for _, b := range v.Bones {
			if w.boneIndex(b) {
				return true
			}
		}
		return w.floats(v.Weights[:])
	}
	return w.Add(0, DiscriminantError{Field: "weight type", Value: int64(weight.Type())})
}

func (w *binaryWriter) faces(faces []pmxfile.Face) (failed bool) {
	if w.count("face vertex count", len(faces)*3) {
		return true
	}
	for _, f := range faces {
		for _, v := range f {
			if w.vertexIndex("face vertex index", v) {
				return true
			}
		}
	}
	return false
}

func (w *binaryWriter) texture(path *string) (failed bool) {
	return w.text(*path)
}

func (w *binaryWriter) material(m *pmxfile.Material) (failed bool) {
	if w.names(m.Name, m.NameEN) {
		return true
	}
	if w.floats(m.Diffuse[:]) || w.floats(m.Specular[:]) || w.f32(m.SpecularFactor) || w.floats(m.Ambient[:]) {
		return true
	}
	if w.Number(uint8(m.DrawMode)) {
		return true
	}
	if w.floats(m.EdgeColor[:]) || w.f32(m.EdgeSize) {
		return true
	}
	if w.textureIndex(m.Texture) {
		return true
	}

	if m.Sphere == nil {
		if w.textureIndex(-1) || w.Number(uint8(0)) {
			return true
		}
	} else {
		switch m.Sphere.Kind {
		case pmxfile.SphereMul, pmxfile.SphereAdd, pmxfile.SphereSubTexture:
		default:
			return w.Add(0, DiscriminantError{Field: "sphere mode", Value: int64(m.Sphere.Kind)})
		}
		if w.textureIndex(m.Sphere.Texture) || w.Number(uint8(m.Sphere.Kind)) {
			return true
		}
	}

	switch toon := m.Toon.(type) {
	case pmxfile.ToonTexture:
		if w.Number(uint8(0)) || w.textureIndex(int32(toon)) {
			return true
		}
	case pmxfile.ToonShared:
		if w.Number(uint8(1)) || w.Number(uint8(toon)) {
			return true
		}
	case nil:
		if w.Number(uint8(1)) || w.Number(uint8(0)) {
			return true
		}
	default:
		return w.Add(0, DiscriminantError{Field: "toon mode", Value: -1})
	}

	if w.text(m.Memo) {
		return true
	}
	return w.Number(m.FaceVertexCount)
}

////////////////////////////////////////////////////////////////

// bone writes a bone. The flag word is computed from the fields of the bone,
// and the optional blocks are written in the order expected by the reader.
func (w *binaryWriter) bone(b *pmxfile.Bone) (failed bool) {
	if w.names(b.Name, b.NameEN) {
		return true
	}
	if w.floats(b.Position[:]) {
		return true
	}
	if w.boneIndex(b.Parent) {
		return true
	}
	if w.Number(b.DeformDepth) {
		return true
	}
	if w.Number(uint16(b.Flags())) {
		return true
	}

	switch c := b.Connection.(type) {
	case pmxfile.ConnectBone:
		if w.boneIndex(int32(c)) {
			return true
		}
	case pmxfile.ConnectOffset:
		if w.floats(c[:]) {
			return true
		}
	default:
		if w.floats(make([]float32, 3)) {
			return true
		}
	}

	if b.Inherit.Mode != pmxfile.InheritNone {
		if w.boneIndex(b.Inherit.Bone) || w.f32(b.Inherit.Weight) {
			return true
		}
	}

	if b.FixedAxis != nil {
		if w.floats(b.FixedAxis[:]) {
			return true
		}
	}

	if b.LocalAxis != nil {
		if w.floats(b.LocalAxis.X[:]) || w.floats(b.LocalAxis.Z[:]) {
			return true
		}
	}

	if b.ExternalParent != nil {
		if w.Number(*b.ExternalParent) {
			return true
		}
	}

	if b.IK != nil {
		if w.ik(b.IK) {
			return true
		}
	}
	return false
}

func (w *binaryWriter) ik(ik *pmxfile.IK) (failed bool) {
	if w.boneIndex(ik.Target) {
		return true
	}
	if w.Number(ik.Loops) || w.f32(ik.LimitAngle) {
		return true
	}
	return writeList(w, "IK link count", ik.Links, w.ikLink)
}

func (w *binaryWriter) ikLink(link *pmxfile.IKLink) (failed bool) {
	if w.boneIndex(link.Bone) {
		return true
	}
	if w.u8flag(link.Limit != nil) {
		return true
	}
	if link.Limit != nil {
		return w.floats(link.Limit.Min[:]) || w.floats(link.Limit.Max[:])
	}
	return false
}

////////////////////////////////////////////////////////////////

// morph writes a morph. A morph without data is written as an empty group
// morph.
func (w *binaryWriter) morph(m *pmxfile.Morph) (failed bool) {
	if w.names(m.Name, m.NameEN) {
		return true
	}
	if m.Panel > pmxfile.PanelBottomRight {
		return w.Add(0, DiscriminantError{Field: "morph panel", Value: int64(m.Panel)})
	}
	if w.Number(uint8(m.Panel)) {
		return true
	}
	data := m.Data
	if data == nil {
		data = pmxfile.GroupMorphs(nil)
	}
	if w.Number(uint8(data.MorphType())) {
		return true
	}
	const field = "morph offset count"
	switch d := data.(type) {
	case pmxfile.GroupMorphs:
		return writeList(w, field, d, w.groupMorph)
	case pmxfile.VertexMorphs:
		return writeList(w, field, d, w.vertexMorph)
	case pmxfile.BoneMorphs:
		return writeList(w, field, d, w.boneMorph)
	case pmxfile.UVMorphs:
		return writeList(w, field, d.Offsets, w.uvMorph)
	case pmxfile.MaterialMorphs:
		return writeList(w, field, d, w.materialMorph)
	case pmxfile.FlipMorphs:
		return writeList(w, field, d, w.flipMorph)
	case pmxfile.ImpulseMorphs:
		return writeList(w, field, d, w.impulseMorph)
	}
	return w.Add(0, DiscriminantError{Field: "morph type", Value: int64(data.MorphType())})
}

func (w *binaryWriter) groupMorph(m *pmxfile.GroupMorph) (failed bool) {
	if w.index(w.header.MorphIndex, "morph index", m.Morph) {
		return true
	}
	return w.f32(m.Factor)
}

func (w *binaryWriter) vertexMorph(m *pmxfile.VertexMorph) (failed bool) {
	if w.vertexIndex("morph vertex index", m.Vertex) {
		return true
	}
	return w.floats(m.Offset[:])
}

func (w *binaryWriter) boneMorph(m *pmxfile.BoneMorph) (failed bool) {
	if w.boneIndex(m.Bone) {
		return true
	}
	return w.floats(m.Translation[:]) || w.floats(m.Rotation[:])
}

func (w *binaryWriter) uvMorph(m *pmxfile.UVMorph) (failed bool) {
	if w.vertexIndex("morph vertex index", m.Vertex) {
		return true
	}
	return w.floats(m.Offset[:])
}

func (w *binaryWriter) materialMorph(m *pmxfile.MaterialMorph) (failed bool) {
	if w.index(w.header.MaterialIndex, "material index", m.Material) {
		return true
	}
	if w.Number(m.Formula) {
		return true
	}
	if w.floats(m.Diffuse[:]) || w.floats(m.Specular[:]) || w.f32(m.SpecularFactor) {
		return true
	}
	if w.floats(m.Ambient[:]) || w.floats(m.EdgeColor[:]) || w.f32(m.EdgeSize) {
		return true
	}
	return w.floats(m.TextureFactor[:]) || w.floats(m.SphereFactor[:]) || w.floats(m.ToonFactor[:])
}

func (w *binaryWriter) flipMorph(m *pmxfile.FlipMorph) (failed bool) {
	if w.index(w.header.MorphIndex, "morph index", m.Morph) {
		return true
	}
	return w.f32(m.Factor)
}

func (w *binaryWriter) impulseMorph(m *pmxfile.ImpulseMorph) (failed bool) {
	if w.index(w.header.RigidIndex, "rigid index", m.Rigid) {
		return true
	}
	if w.u8flag(m.Local) {
		return true
	}
	return w.floats(m.Velocity[:]) || w.floats(m.Torque[:])
}

////////////////////////////////////////////////////////////////

func (w *binaryWriter) frame(f *pmxfile.Frame) (failed bool) {
	if w.names(f.Name, f.NameEN) {
		return true
	}
	if w.Number(f.Special) {
		return true
	}
	return writeList(w, "frame element count", f.Elements, w.frameElement)
}

func (w *binaryWriter) frameElement(e *pmxfile.FrameElement) (failed bool) {
	switch e.Target {
	case pmxfile.FrameBone:
		return w.Number(uint8(e.Target)) || w.boneIndex(e.Index)
	case pmxfile.FrameMorph:
		return w.Number(uint8(e.Target)) || w.index(w.header.MorphIndex, "morph index", e.Index)
	}
	return w.Add(0, DiscriminantError{Field: "frame target", Value: int64(e.Target)})
}

////////////////////////////////////////////////////////////////

func (w *binaryWriter) rigid(b *pmxfile.Rigid) (failed bool) {
	if w.names(b.Name, b.NameEN) {
		return true
	}
	if b.Shape > pmxfile.ShapeCapsule {
		return w.Add(0, DiscriminantError{Field: "rigid shape", Value: int64(b.Shape)})
	}
	if b.CalcMethod > pmxfile.CalcDynamicWithBone {
		return w.Add(0, DiscriminantError{Field: "rigid calc method", Value: int64(b.CalcMethod)})
	}
	if w.boneIndex(b.Bone) {
		return true
	}
	if w.Number(b.Group) || w.Number(b.NoCollisionMask) || w.Number(uint8(b.Shape)) {
		return true
	}
	if w.floats(b.Size[:]) || w.floats(b.Position[:]) || w.floats(b.Rotation[:]) {
		return true
	}
	for _, v := range []float32{b.Mass, b.MoveResist, b.RotationResist, b.Repulsion, b.Friction} {
		if w.f32(v) {
			return true
		}
	}
	return w.Number(uint8(b.CalcMethod))
}

func (w *binaryWriter) joint(j *pmxfile.Joint) (failed bool) {
	if w.names(j.Name, j.NameEN) {
		return true
	}
	raw := jointToRaw(j.Params)
	return w.jointRaw(&raw)
}

////////////////////////////////////////////////////////////////

func (w *binaryWriter) softBody(b *pmxfile.SoftBody) (failed bool) {
	if w.names(b.Name, b.NameEN) {
		return true
	}
	if b.Form > pmxfile.SoftBodyRope {
		return w.Add(0, DiscriminantError{Field: "soft body form", Value: int64(b.Form)})
	}
	if b.AeroModel < 0 || b.AeroModel > pmxfile.AeroFOneSided {
		return w.Add(0, DiscriminantError{Field: "aero model", Value: int64(b.AeroModel)})
	}
	if w.Number(uint8(b.Form)) {
		return true
	}
	if w.index(w.header.MaterialIndex, "material index", b.Material) {
		return true
	}
	if w.Number(b.Group) || w.Number(b.NoCollisionMask) || w.Number(uint8(b.Flags)) {
		return true
	}
	if w.Number(b.BLinkDistance) || w.Number(b.Clusters) {
		return true
	}
	if w.f32(b.Mass) || w.f32(b.CollisionMargin) {
		return true
	}
	if w.Number(int32(b.AeroModel)) {
		return true
	}

	c := &b.Config
	cl := &b.Cluster
	st := &b.Stiffness
	if w.floats([]float32{
		c.VCF, c.DP, c.DG, c.LF, c.PR, c.VC,
		c.DF, c.MT, c.CHR, c.KHR, c.SHR, c.AHR,
		cl.SRHR, cl.SKHR, cl.SSHR, cl.SRSplit, cl.SKSplit, cl.SSSplit,
	}) {
		return true
	}
	it := &b.Iteration
	for _, v := range []int32{it.Velocity, it.Position, it.Drift, it.Cluster} {
		if w.Number(v) {
			return true
		}
	}
	if w.floats([]float32{st.LST, st.AST, st.VST}) {
		return true
	}

	if writeList(w, "anchor count", b.Anchors, w.softBodyAnchor) {
		return true
	}
	return writeList(w, "pin vertex count", b.PinVertices, w.pinVertex)
}

func (w *binaryWriter) softBodyAnchor(a *pmxfile.SoftBodyAnchor) (failed bool) {
	if w.index(w.header.RigidIndex, "rigid index", a.Rigid) {
		return true
	}
	if w.vertexIndex("anchor vertex index", a.Vertex) {
		return true
	}
	return w.u8flag(a.NearMode)
}

func (w *binaryWriter) pinVertex(v *int32) (failed bool) {
	return w.vertexIndex("pin vertex index", *v)
}
