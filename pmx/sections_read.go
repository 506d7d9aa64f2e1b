package pmx

import (
	"github.com/pmxutil/pmxfile"
)

func (r *binaryReader) rawHeader(raw *rawHeader) (failed bool) {
	// The magic is checked by the caller before the rest is consumed.
	if r.f32(&raw.Version) {
		return true
	}
	if r.Number(&raw.ConfigLen) {
		return true
	}
	return r.Bytes(raw.Config[:])
}

func (r *binaryReader) modelInfo(info *pmxfile.ModelInfo) (failed bool) {
	for _, s := range []*string{&info.Name, &info.NameEN, &info.Comment, &info.CommentEN} {
		if r.text(s) {
			return true
		}
	}
	return false
}

func (r *binaryReader) names(name, nameEN *string) (failed bool) {
	if r.text(name) {
		return true
	}
	return r.text(nameEN)
}

func (r *binaryReader) boneIndex(v *int32) (failed bool) {
	return r.index(r.header.BoneIndex, v)
}

////////////////////////////////////////////////////////////////

func (r *binaryReader) vertex(v *pmxfile.Vertex) (failed bool) {
	if r.floats(v.Position[:]) {
		return true
	}
	if r.floats(v.Normal[:]) {
		return true
	}
	if r.floats(v.UV[:]) {
		return true
	}
	for i := 0; i < r.header.AdditionalUV; i++ {
		if r.floats(v.AddUV[i][:]) {
			return true
		}
	}
	if r.weight(&v.Weight) {
		return true
	}
	return r.f32(&v.EdgeScale)
}

func (r *binaryReader) weight(w *pmxfile.Weight) (failed bool) {
	var tag uint8
	if r.Number(&tag) {
		return true
	}
	switch pmxfile.WeightType(tag) {
	case pmxfile.WeightBDEF1:
		var v pmxfile.BDEF1
		if r.boneIndex(&v.Bone) {
			return true
		}
		*w = v
	case pmxfile.WeightBDEF2:
		var v pmxfile.BDEF2
		if r.boneIndex(&v.Bones[0]) || r.boneIndex(&v.Bones[1]) {
			return true
		}
		if r.f32(&v.Weight) {
			return true
		}
		*w = v
	case pmxfile.WeightBDEF4, pmxfile.WeightQDEF:
		var bones [4]int32
		var weights [4]float32
		for i := range bones {
			if r.boneIndex(&bones[i]) {
				return true
			}
		}
		if r.floats(weights[:]) {
			return true
		}
		if pmxfile.WeightType(tag) == pmxfile.WeightQDEF {
			*w = pmxfile.QDEF{Bones: bones, Weights: weights}
		} else {
			*w = pmxfile.BDEF4{Bones: bones, Weights: weights}
		}
	case pmxfile.WeightSDEF:
		var v pmxfile.SDEF
		if r.boneIndex(&v.Bones[0]) || r.boneIndex(&v.Bones[1]) {
			return true
		}
		if r.f32(&v.Weight) {
			return true
		}
		if r.floats(v.C[:]) || r.floats(v.R0[:]) || r.floats(v.R1[:]) {
			return true
		}
		*w = v
	default:
		return r.Add(0, DiscriminantError{Field: "weight type", Value: int64(tag)})
	}
	return false
}

// faces reads the face section. The stored count is the number of face
// vertices; indexes left over after the last whole face are discarded.
func (r *binaryReader) faces(faces *[]pmxfile.Face) (failed bool) {
	var n int
	if r.count(&n) {
		return true
	}
	rem := n % 3
	if rem != 0 {
		r.warnf("face vertex count %d is not a multiple of 3", n)
	}
	n /= 3
	var list []pmxfile.Face
	if n > 0 {
		list = make([]pmxfile.Face, 0, min(n, maxPrealloc))
	}
	for i := 0; i < n; i++ {
		var f pmxfile.Face
		for j := range f {
			if r.vertexIndex(&f[j]) {
				return true
			}
		}
		list = append(list, f)
	}
	var discard int32
	for i := 0; i < rem; i++ {
		if r.vertexIndex(&discard) {
			return true
		}
	}
	*faces = list
	return false
}

func (r *binaryReader) material(m *pmxfile.Material) (failed bool) {
	if r.names(&m.Name, &m.NameEN) {
		return true
	}
	if r.floats(m.Diffuse[:]) || r.floats(m.Specular[:]) || r.f32(&m.SpecularFactor) || r.floats(m.Ambient[:]) {
		return true
	}
	if r.Number((*uint8)(&m.DrawMode)) {
		return true
	}
	if r.floats(m.EdgeColor[:]) || r.f32(&m.EdgeSize) {
		return true
	}
	if r.index(r.header.TextureIndex, &m.Texture) {
		return true
	}

	// The sphere texture precedes its mode, and is discarded when the mode is
	// 0.
	var sphere int32
	if r.index(r.header.TextureIndex, &sphere) {
		return true
	}
	var mode uint8
	if r.Number(&mode) {
		return true
	}
	switch kind := pmxfile.SphereKind(mode); kind {
	case 0:
		m.Sphere = nil
	case pmxfile.SphereMul, pmxfile.SphereAdd, pmxfile.SphereSubTexture:
		m.Sphere = &pmxfile.SphereMode{Kind: kind, Texture: sphere}
	default:
		return r.Add(0, DiscriminantError{Field: "sphere mode", Value: int64(mode)})
	}

	var toon uint8
	if r.Number(&toon) {
		return true
	}
	switch toon {
	case 0:
		var tex int32
		if r.index(r.header.TextureIndex, &tex) {
			return true
		}
		m.Toon = pmxfile.ToonTexture(tex)
	case 1:
		var shared uint8
		if r.Number(&shared) {
			return true
		}
		m.Toon = pmxfile.ToonShared(shared)
	default:
		return r.Add(0, DiscriminantError{Field: "toon mode", Value: int64(toon)})
	}

	if r.text(&m.Memo) {
		return true
	}
	return r.Number(&m.FaceVertexCount)
}

////////////////////////////////////////////////////////////////

// bone reads a bone. The optional blocks follow the flag word in a fixed
// order: connection, inheritance, fixed axis, local axis, external parent,
// IK. The writer emits them in the same order.
func (r *binaryReader) bone(b *pmxfile.Bone) (failed bool) {
	if r.names(&b.Name, &b.NameEN) {
		return true
	}
	if r.floats(b.Position[:]) {
		return true
	}
	if r.boneIndex(&b.Parent) {
		return true
	}
	if r.Number(&b.DeformDepth) {
		return true
	}
	var flags pmxfile.BoneFlags
	if r.Number((*uint16)(&flags)) {
		return true
	}
	b.SetFlags(flags)

	if flags.Has(pmxfile.BoneConnectToBone) {
		var v int32
		if r.boneIndex(&v) {
			return true
		}
		b.Connection = pmxfile.ConnectBone(v)
	} else {
		var v pmxfile.Vec3
		if r.floats(v[:]) {
			return true
		}
		b.Connection = pmxfile.ConnectOffset(v)
	}

	if b.Inherit.Mode = pmxfile.InheritModeOf(flags); b.Inherit.Mode != pmxfile.InheritNone {
		if r.boneIndex(&b.Inherit.Bone) {
			return true
		}
		if r.f32(&b.Inherit.Weight) {
			return true
		}
	}

	if flags.Has(pmxfile.BoneFixedAxis) {
		b.FixedAxis = new(pmxfile.Vec3)
		if r.floats(b.FixedAxis[:]) {
			return true
		}
	}

	if flags.Has(pmxfile.BoneLocalAxis) {
		b.LocalAxis = new(pmxfile.LocalAxis)
		if r.floats(b.LocalAxis.X[:]) || r.floats(b.LocalAxis.Z[:]) {
			return true
		}
	}

	if flags.Has(pmxfile.BoneExternalParent) {
		b.ExternalParent = new(int32)
		if r.Number(b.ExternalParent) {
			return true
		}
	}

	if flags.Has(pmxfile.BoneIK) {
		b.IK = new(pmxfile.IK)
		if r.ik(b.IK) {
			return true
		}
	}
	return false
}

func (r *binaryReader) ik(ik *pmxfile.IK) (failed bool) {
	if r.boneIndex(&ik.Target) {
		return true
	}
	if r.Number(&ik.Loops) {
		return true
	}
	if r.f32(&ik.LimitAngle) {
		return true
	}
	return readList(r, &ik.Links, r.ikLink)
}

func (r *binaryReader) ikLink(link *pmxfile.IKLink) (failed bool) {
	if r.boneIndex(&link.Bone) {
		return true
	}
	var limited uint8
	if r.Number(&limited) {
		return true
	}
	if limited == 1 {
		link.Limit = new(pmxfile.AngleLimit)
		if r.floats(link.Limit.Min[:]) || r.floats(link.Limit.Max[:]) {
			return true
		}
	}
	return false
}

////////////////////////////////////////////////////////////////

func (r *binaryReader) morph(m *pmxfile.Morph) (failed bool) {
	if r.names(&m.Name, &m.NameEN) {
		return true
	}
	var panel uint8
	if r.Number(&panel) {
		return true
	}
	if panel > uint8(pmxfile.PanelBottomRight) {
		return r.Add(0, DiscriminantError{Field: "morph panel", Value: int64(panel)})
	}
	m.Panel = pmxfile.Panel(panel)

	var tag uint8
	if r.Number(&tag) {
		return true
	}
	switch t := pmxfile.MorphType(tag); t {
	case pmxfile.MorphGroup:
		var d pmxfile.GroupMorphs
		failed = readList(r, &d, r.groupMorph)
		m.Data = d
	case pmxfile.MorphVertex:
		var d pmxfile.VertexMorphs
		failed = readList(r, &d, r.vertexMorph)
		m.Data = d
	case pmxfile.MorphBone:
		var d pmxfile.BoneMorphs
		failed = readList(r, &d, r.boneMorph)
		m.Data = d
	case pmxfile.MorphUV, pmxfile.MorphUV1, pmxfile.MorphUV2, pmxfile.MorphUV3, pmxfile.MorphUV4:
		d := pmxfile.UVMorphs{Channel: int(t - pmxfile.MorphUV)}
		failed = readList(r, &d.Offsets, r.uvMorph)
		m.Data = d
	case pmxfile.MorphMaterial:
		var d pmxfile.MaterialMorphs
		failed = readList(r, &d, r.materialMorph)
		m.Data = d
	case pmxfile.MorphFlip:
		var d pmxfile.FlipMorphs
		failed = readList(r, &d, r.flipMorph)
		m.Data = d
	case pmxfile.MorphImpulse:
		var d pmxfile.ImpulseMorphs
		failed = readList(r, &d, r.impulseMorph)
		m.Data = d
	default:
		return r.Add(0, DiscriminantError{Field: "morph type", Value: int64(tag)})
	}
	return failed
}

func (r *binaryReader) groupMorph(m *pmxfile.GroupMorph) (failed bool) {
	if r.index(r.header.MorphIndex, &m.Morph) {
		return true
	}
	return r.f32(&m.Factor)
}

func (r *binaryReader) vertexMorph(m *pmxfile.VertexMorph) (failed bool) {
	if r.vertexIndex(&m.Vertex) {
		return true
	}
	return r.floats(m.Offset[:])
}

func (r *binaryReader) boneMorph(m *pmxfile.BoneMorph) (failed bool) {
	if r.boneIndex(&m.Bone) {
		return true
	}
	if r.floats(m.Translation[:]) {
		return true
	}
	return r.floats(m.Rotation[:])
}

func (r *binaryReader) uvMorph(m *pmxfile.UVMorph) (failed bool) {
	if r.vertexIndex(&m.Vertex) {
		return true
	}
	return r.floats(m.Offset[:])
}

func (r *binaryReader) materialMorph(m *pmxfile.MaterialMorph) (failed bool) {
	if r.index(r.header.MaterialIndex, &m.Material) {
		return true
	}
	if r.Number(&m.Formula) {
		return true
	}
	if r.floats(m.Diffuse[:]) || r.floats(m.Specular[:]) || r.f32(&m.SpecularFactor) {
		return true
	}
	if r.floats(m.Ambient[:]) || r.floats(m.EdgeColor[:]) {
		return true
	}
	if r.f32(&m.EdgeSize) {
		return true
	}
	return r.floats(m.TextureFactor[:]) || r.floats(m.SphereFactor[:]) || r.floats(m.ToonFactor[:])
}

func (r *binaryReader) flipMorph(m *pmxfile.FlipMorph) (failed bool) {
	if r.index(r.header.MorphIndex, &m.Morph) {
		return true
	}
	return r.f32(&m.Factor)
}

func (r *binaryReader) impulseMorph(m *pmxfile.ImpulseMorph) (failed bool) {
	if r.index(r.header.RigidIndex, &m.Rigid) {
		return true
	}
	var local uint8
	if r.Number(&local) {
		return true
	}
	m.Local = local != 0
	if r.floats(m.Velocity[:]) {
		return true
	}
	return r.floats(m.Torque[:])
}

////////////////////////////////////////////////////////////////

func (r *binaryReader) frame(f *pmxfile.Frame) (failed bool) {
	if r.names(&f.Name, &f.NameEN) {
		return true
	}
	if r.Number(&f.Special) {
		return true
	}
	return readList(r, &f.Elements, r.frameElement)
}

func (r *binaryReader) frameElement(e *pmxfile.FrameElement) (failed bool) {
	var target uint8
	if r.Number(&target) {
		return true
	}
	switch e.Target = pmxfile.FrameTarget(target); e.Target {
	case pmxfile.FrameBone:
		return r.boneIndex(&e.Index)
	case pmxfile.FrameMorph:
		return r.index(r.header.MorphIndex, &e.Index)
	}
	return r.Add(0, DiscriminantError{Field: "frame target", Value: int64(target)})
}

////////////////////////////////////////////////////////////////

func (r *binaryReader) rigid(b *pmxfile.Rigid) (failed bool) {
	if r.names(&b.Name, &b.NameEN) {
		return true
	}
	if r.boneIndex(&b.Bone) {
		return true
	}
	if r.Number(&b.Group) {
		return true
	}
	if r.Number(&b.NoCollisionMask) {
		return true
	}
	var shape uint8
	if r.Number(&shape) {
		return true
	}
	if shape > uint8(pmxfile.ShapeCapsule) {
		return r.Add(0, DiscriminantError{Field: "rigid shape", Value: int64(shape)})
	}
	b.Shape = pmxfile.RigidShape(shape)
	if r.floats(b.Size[:]) || r.floats(b.Position[:]) || r.floats(b.Rotation[:]) {
		return true
	}
	for _, v := range []*float32{&b.Mass, &b.MoveResist, &b.RotationResist, &b.Repulsion, &b.Friction} {
		if r.f32(v) {
			return true
		}
	}
	var calc uint8
	if r.Number(&calc) {
		return true
	}
	if calc > uint8(pmxfile.CalcDynamicWithBone) {
		return r.Add(0, DiscriminantError{Field: "rigid calc method", Value: int64(calc)})
	}
	b.CalcMethod = pmxfile.RigidCalcMethod(calc)
	return false
}

func (r *binaryReader) joint(j *pmxfile.Joint) (failed bool) {
	if r.names(&j.Name, &j.NameEN) {
		return true
	}
	var raw jointRaw
	if r.jointRaw(&raw) {
		return true
	}
	params, err := jointFromRaw(&raw)
	if err != nil {
		return r.Add(0, err)
	}
	j.Params = params
	return false
}

////////////////////////////////////////////////////////////////

func (r *binaryReader) softBody(b *pmxfile.SoftBody) (failed bool) {
	if r.names(&b.Name, &b.NameEN) {
		return true
	}
	var form uint8
	if r.Number(&form) {
		return true
	}
	if form > uint8(pmxfile.SoftBodyRope) {
		return r.Add(0, DiscriminantError{Field: "soft body form", Value: int64(form)})
	}
	b.Form = pmxfile.SoftBodyForm(form)
	if r.index(r.header.MaterialIndex, &b.Material) {
		return true
	}
	if r.Number(&b.Group) || r.Number(&b.NoCollisionMask) || r.Number((*uint8)(&b.Flags)) {
		return true
	}
	if r.Number(&b.BLinkDistance) || r.Number(&b.Clusters) {
		return true
	}
	if r.f32(&b.Mass) || r.f32(&b.CollisionMargin) {
		return true
	}
	var aero int32
	if r.Number(&aero) {
		return true
	}
	if aero < 0 || aero > int32(pmxfile.AeroFOneSided) {
		return r.Add(0, DiscriminantError{Field: "aero model", Value: int64(aero)})
	}
	b.AeroModel = pmxfile.AeroModel(aero)

	c := &b.Config
	for _, v := range []*float32{
		&c.VCF, &c.DP, &c.DG, &c.LF, &c.PR, &c.VC,
		&c.DF, &c.MT, &c.CHR, &c.KHR, &c.SHR, &c.AHR,
	} {
		if r.f32(v) {
			return true
		}
	}
	cl := &b.Cluster
	for _, v := range []*float32{&cl.SRHR, &cl.SKHR, &cl.SSHR, &cl.SRSplit, &cl.SKSplit, &cl.SSSplit} {
		if r.f32(v) {
			return true
		}
	}
	it := &b.Iteration
	for _, v := range []*int32{&it.Velocity, &it.Position, &it.Drift, &it.Cluster} {
		if r.Number(v) {
			return true
		}
	}
	st := &b.Stiffness
	for _, v := range []*float32{&st.LST, &st.AST, &st.VST} {
		if r.f32(v) {
			return true
		}
	}

	if readList(r, &b.Anchors, r.softBodyAnchor) {
		return true
	}
	return readList(r, &b.PinVertices, r.vertexIndex)
}

func (r *binaryReader) softBodyAnchor(a *pmxfile.SoftBodyAnchor) (failed bool) {
	if r.index(r.header.RigidIndex, &a.Rigid) {
		return true
	}
	if r.vertexIndex(&a.Vertex) {
		return true
	}
	var near uint8
	if r.Number(&near) {
		return true
	}
	switch near {
	case 0:
		a.NearMode = false
	case 1:
		a.NearMode = true
	default:
		return r.Add(0, DiscriminantError{Field: "anchor near mode", Value: int64(near)})
	}
	return false
}
