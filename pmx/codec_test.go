package pmx

import (
	"bytes"
	"reflect"
	"strings"
	"testing"

	"github.com/pmxutil/pmxfile"
	"github.com/pmxutil/pmxfile/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func int32p(v int32) *int32 { return &v }

// fullModel returns a model that exercises every section and variant.
func fullModel() *pmxfile.Model {
	m := &pmxfile.Model{
		Info: pmxfile.ModelInfo{
			Name:      "モデル",
			NameEN:    "Model",
			Comment:   "コメント\r\n2行目",
			CommentEN: "Comment",
		},
		AdditionalUV: 2,
		Textures:     []string{"tex\\body.png", "toon.bmp"},
	}

	weights := []pmxfile.Weight{
		pmxfile.BDEF1{Bone: 0},
		pmxfile.BDEF2{Bones: [2]int32{0, 1}, Weight: 0.75},
		pmxfile.BDEF4{Bones: [4]int32{0, 1, 2, -1}, Weights: [4]float32{0.5, 0.25, 0.25, 0}},
		pmxfile.SDEF{
			Bones:  [2]int32{1, 2},
			Weight: 0.5,
			C:      pmxfile.Vec3{0, 1, 0},
			R0:     pmxfile.Vec3{0, 0.5, 0},
			R1:     pmxfile.Vec3{0, 1.5, 0},
		},
		pmxfile.QDEF{Bones: [4]int32{2, 1, 0, -1}, Weights: [4]float32{1, 0, 0, 0}},
	}
	for i, w := range weights {
		f := float32(i)
		m.Vertices = append(m.Vertices, pmxfile.Vertex{
			Position:  pmxfile.Vec3{f, f + 1, f + 2},
			Normal:    pmxfile.Vec3{0, 1, 0},
			UV:        pmxfile.Vec2{f / 8, 1 - f/8},
			AddUV:     [4]pmxfile.Vec4{{1, 2, 3, 4}, {5, 6, 7, f}},
			Weight:    w,
			EdgeScale: 1,
		})
	}
	m.Faces = []pmxfile.Face{{0, 1, 2}, {2, 3, 4}, {4, 4, 4}}

	m.Materials = []pmxfile.Material{
		{
			Name:            "体",
			NameEN:          "body",
			Diffuse:         pmxfile.Vec4{1, 1, 1, 1},
			Specular:        pmxfile.Vec3{0.5, 0.5, 0.5},
			SpecularFactor:  5,
			Ambient:         pmxfile.Vec3{0.25, 0.25, 0.25},
			DrawMode:        pmxfile.MaterialDrawShadow | pmxfile.MaterialHasEdge,
			EdgeColor:       pmxfile.Vec4{0, 0, 0, 1},
			EdgeSize:        1,
			Texture:         0,
			Sphere:          &pmxfile.SphereMode{Kind: pmxfile.SphereAdd, Texture: 1},
			Toon:            pmxfile.ToonTexture(1),
			Memo:            "memo",
			FaceVertexCount: 6,
		},
		{
			Name:            "point",
			Texture:         -1,
			Toon:            pmxfile.ToonShared(3),
			DrawMode:        pmxfile.MaterialPointDraw,
			FaceVertexCount: 3,
		},
	}

	m.Bones = []pmxfile.Bone{
		{
			Name:         "センター",
			NameEN:       "center",
			Parent:       -1,
			Connection:   pmxfile.ConnectBone(1),
			Rotatable:    true,
			Translatable: true,
			Visible:      true,
			Enabled:      true,
		},
		{
			Name:        "arm",
			Position:    pmxfile.Vec3{1, 10, 0},
			Parent:      0,
			DeformDepth: 1,
			Connection:  pmxfile.ConnectOffset{1, 0, 0},
			Rotatable:   true,
			Visible:     true,
			Enabled:     true,
			Inherit: pmxfile.Inherit{
				Local:  true,
				Mode:   pmxfile.InheritBoth,
				Bone:   0,
				Weight: 0.5,
			},
			FixedAxis: &pmxfile.Vec3{1, 0, 0},
			LocalAxis: &pmxfile.LocalAxis{
				X: pmxfile.Vec3{1, 0, 0},
				Z: pmxfile.Vec3{0, 0, 1},
			},
			PhysicsAfterDeform: true,
			ExternalParent:     int32p(7),
		},
		{
			Name:         "IK",
			Parent:       0,
			Connection:   pmxfile.ConnectOffset{},
			Rotatable:    true,
			Translatable: true,
			Visible:      true,
			Enabled:      true,
			IK: &pmxfile.IK{
				Target:     1,
				Loops:      40,
				LimitAngle: 2,
				Links: []pmxfile.IKLink{
					{Bone: 1, Limit: &pmxfile.AngleLimit{
						Min: pmxfile.Vec3{-3, 0, 0},
						Max: pmxfile.Vec3{-0.5, 0, 0},
					}},
					{Bone: 0},
				},
			},
		},
	}

	m.Morphs = []pmxfile.Morph{
		{Name: "group", Panel: pmxfile.PanelSystem, Data: pmxfile.GroupMorphs{{Morph: 1, Factor: 0.5}}},
		{Name: "vertex", Panel: pmxfile.PanelTopLeft, Data: pmxfile.VertexMorphs{{Vertex: 4, Offset: pmxfile.Vec3{0, 0.1, 0}}}},
		{Name: "bone", Panel: pmxfile.PanelBottomRight, Data: pmxfile.BoneMorphs{
			{Bone: 1, Translation: pmxfile.Vec3{0, 1, 0}, Rotation: pmxfile.Vec4{0, 0, 0, 1}},
		}},
		{Name: "uv2", Panel: pmxfile.PanelTopRight, Data: pmxfile.UVMorphs{
			Channel: 2,
			Offsets: []pmxfile.UVMorph{{Vertex: 0, Offset: pmxfile.Vec4{0.5, 0, 0, 0}}},
		}},
		{Name: "material", Panel: pmxfile.PanelBottomLeft, Data: pmxfile.MaterialMorphs{{
			Material:      -1,
			Formula:       1,
			Diffuse:       pmxfile.Vec4{1, 0, 0, 1},
			EdgeSize:      2,
			TextureFactor: pmxfile.Vec4{1, 1, 1, 1},
		}}},
		{Name: "flip", Panel: pmxfile.PanelBottomRight, Data: pmxfile.FlipMorphs{{Morph: 0, Factor: 1}}},
		{Name: "impulse", Panel: pmxfile.PanelBottomRight, Data: pmxfile.ImpulseMorphs{{
			Rigid:    0,
			Local:    true,
			Velocity: pmxfile.Vec3{0, 0, 1},
			Torque:   pmxfile.Vec3{1, 0, 0},
		}}},
	}

	m.Frames = []pmxfile.Frame{
		{Name: "Root", NameEN: "Root", Special: 1, Elements: []pmxfile.FrameElement{
			{Target: pmxfile.FrameBone, Index: 0},
		}},
		{Name: "表情", NameEN: "Exp", Special: 1, Elements: []pmxfile.FrameElement{
			{Target: pmxfile.FrameMorph, Index: 1},
			{Target: pmxfile.FrameMorph, Index: 2},
		}},
		{Name: "empty"},
	}

	m.Rigids = []pmxfile.Rigid{
		{
			Name:            "head",
			Bone:            0,
			Group:           3,
			NoCollisionMask: 0xFFFE,
			Shape:           pmxfile.ShapeCapsule,
			Size:            pmxfile.Vec3{1, 2, 0},
			Position:        pmxfile.Vec3{0, 15, 0},
			Mass:            1,
			MoveResist:      0.5,
			RotationResist:  0.5,
			Friction:        0.5,
			CalcMethod:      pmxfile.CalcDynamicWithBone,
		},
		{Name: "static", Bone: -1, Shape: pmxfile.ShapeBox, CalcMethod: pmxfile.CalcStatic},
	}

	for _, params := range testJoints {
		m.Joints = append(m.Joints, pmxfile.Joint{Name: params.JointType().String(), Params: params})
	}

	m.SoftBodies = []pmxfile.SoftBody{{
		Name:            "skirt",
		NameEN:          "skirt",
		Form:            pmxfile.SoftBodyTriMesh,
		Material:        0,
		Group:           2,
		NoCollisionMask: 0xFFFF,
		Flags:           pmxfile.SoftBodyBLink | pmxfile.SoftBodyClusters,
		BLinkDistance:   2,
		Clusters:        4,
		Mass:            1,
		CollisionMargin: 0.05,
		AeroModel:       pmxfile.AeroVTwoSided,
		Config:          pmxfile.SoftBodyConfig{VCF: 1, DP: 0.1, DF: 0.2, CHR: 1, KHR: 0.1, SHR: 1, AHR: 0.7},
		Cluster:         pmxfile.SoftBodyCluster{SRHR: 0.1, SKHR: 1, SSHR: 0.5, SRSplit: 0.5, SKSplit: 0.5, SSSplit: 0.5},
		Iteration:       pmxfile.SoftBodyIteration{Velocity: 0, Position: 1, Drift: 0, Cluster: 4},
		Stiffness:       pmxfile.SoftBodyMaterial{LST: 1, AST: 1, VST: 1},
		Anchors: []pmxfile.SoftBodyAnchor{
			{Rigid: 0, Vertex: 3, NearMode: true},
			{Rigid: 1, Vertex: 4},
		},
		PinVertices: []int32{0, 1},
	}}
	return m
}

func TestRoundTrip(t *testing.T) {
	for _, utf16 := range []bool{true, false} {
		model := fullModel()
		var buf bytes.Buffer
		if err := (Encoder{UTF16: utf16}).Encode(&buf, model); err != nil {
			t.Fatalf("utf16=%t: unexpected encode error: %v", utf16, err)
		}

		got, h, warn, err := Decoder{}.Decode(bytes.NewReader(buf.Bytes()))
		if err != nil {
			t.Fatalf("utf16=%t: unexpected decode error: %v", utf16, err)
		}
		if warn != nil {
			t.Errorf("utf16=%t: unexpected warning: %v", utf16, warn)
		}
		if h.Version != V21 {
			t.Errorf("utf16=%t: expected version 2.1, got %s", utf16, h.Version)
		}
		if (h.Encoding == UTF16LE) != utf16 {
			t.Errorf("utf16=%t: unexpected encoding %s", utf16, h.Encoding)
		}
		if h.AdditionalUV != 2 {
			t.Errorf("utf16=%t: expected 2 additional UVs, got %d", utf16, h.AdditionalUV)
		}

		for i := range got.Vertices {
			if !reflect.DeepEqual(got.Vertices[i], model.Vertices[i]) {
				t.Errorf("utf16=%t: vertex %d: expected %+v, got %+v", utf16, i, model.Vertices[i], got.Vertices[i])
			}
		}
		for i := range got.Bones {
			if !reflect.DeepEqual(got.Bones[i], model.Bones[i]) {
				t.Errorf("utf16=%t: bone %d: expected %+v, got %+v", utf16, i, model.Bones[i], got.Bones[i])
			}
		}
		if !reflect.DeepEqual(got, model) {
			t.Errorf("utf16=%t: decoded model does not match encoded model", utf16)
		}

		// Encoding the decoded model reproduces the same bytes.
		var again bytes.Buffer
		if err := (Encoder{UTF16: utf16}).Encode(&again, got); err != nil {
			t.Fatalf("utf16=%t: unexpected encode error: %v", utf16, err)
		}
		if !bytes.Equal(again.Bytes(), buf.Bytes()) {
			t.Errorf("utf16=%t: re-encoded bytes differ", utf16)
		}
	}
}

func TestBoneFlagsEncoding(t *testing.T) {
	bone := pmxfile.Bone{
		Parent:     -1,
		Connection: pmxfile.ConnectOffset{},
		Rotatable:  true,
		Visible:    true,
		Enabled:    true,
		Inherit:    pmxfile.Inherit{Mode: pmxfile.InheritBoth, Bone: 5, Weight: 0.5},
		IK:         &pmxfile.IK{Target: 1, Loops: 10, LimitAngle: 1},
	}
	var buf bytes.Buffer
	w := newBinaryWriter(&buf, header8)
	if w.bone(&bone) {
		t.Fatal("unexpected error:", w.Err())
	}
	exp := app(
		str(""), str(""),
		float32(0), float32(0), float32(0),
		int8(-1), int32(0),
		uint16(0x33A),
		float32(0), float32(0), float32(0),
		5, float32(0.5),
		1, int32(10), float32(1), int32(0),
	)
	if !bytes.Equal(buf.Bytes(), exp) {
		t.Errorf("unexpected bone bytes:\n% X\nexpected:\n% X", buf.Bytes(), exp)
	}
}

func TestNilDefaults(t *testing.T) {
	model := &pmxfile.Model{
		Vertices:  []pmxfile.Vertex{{}},
		Materials: []pmxfile.Material{{}},
		Bones:     []pmxfile.Bone{{}},
		Morphs:    []pmxfile.Morph{{}},
		Joints:    []pmxfile.Joint{{}},
	}
	var buf bytes.Buffer
	if err := Encode(&buf, model); err != nil {
		t.Fatal("unexpected error:", err)
	}
	got, err := Decode(&buf)
	if err != nil {
		t.Fatal("unexpected error:", err)
	}
	if w, ok := got.Vertices[0].Weight.(pmxfile.BDEF1); !ok || w.Bone != -1 {
		t.Errorf("expected BDEF1(-1), got %+v", got.Vertices[0].Weight)
	}
	if got.Materials[0].Sphere != nil {
		t.Error("expected no sphere")
	}
	if toon, ok := got.Materials[0].Toon.(pmxfile.ToonShared); !ok || toon != 0 {
		t.Errorf("expected shared toon 0, got %+v", got.Materials[0].Toon)
	}
	if c, ok := got.Bones[0].Connection.(pmxfile.ConnectOffset); !ok || c != (pmxfile.ConnectOffset{}) {
		t.Errorf("expected zero offset, got %+v", got.Bones[0].Connection)
	}
	if d, ok := got.Morphs[0].Data.(pmxfile.GroupMorphs); !ok || len(d) != 0 {
		t.Errorf("expected empty group morph, got %+v", got.Morphs[0].Data)
	}
	if p, ok := got.Joints[0].Params.(pmxfile.Spring6DOF); !ok || p != (pmxfile.Spring6DOF{}) {
		t.Errorf("expected empty spring joint, got %+v", got.Joints[0].Params)
	}
}

func TestDecoderLogger(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	data := minimalFile(2.0,
		int32(0),
		int32(1), 0, // face vertex count not a multiple of 3
		int32(0), int32(0), int32(0), int32(0), int32(0), int32(0), int32(0),
	)
	_, _, warn, err := Decoder{Logger: zap.New(core)}.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatal("unexpected error:", err)
	}
	if warn == nil {
		t.Error("expected warning")
	}
	if n := logs.FilterLevelExact(zapcore.WarnLevel).Len(); n != 1 {
		t.Errorf("expected 1 logged warning, got %d", n)
	}
	if n := logs.FilterMessage("read section").Len(); n != 11 {
		t.Errorf("expected 11 section entries, got %d", n)
	}
}

func TestDump(t *testing.T) {
	var buf bytes.Buffer
	if err := Encode(&buf, fullModel()); err != nil {
		t.Fatal("unexpected error:", err)
	}
	var out strings.Builder
	warn, err := Decoder{}.Dump(&out, &buf)
	if err != nil || warn != nil {
		t.Fatal("unexpected error:", err, warn)
	}
	s := out.String()
	for _, exp := range []string{
		"Magic: PMX ",
		"Version: 2.1",
		"Encoding: UTF-16LE",
		"Vertices: (count:5)",
		"Bones: (count:3)",
		`Name: (len:12) "センター"`,
		"SoftBodies: (count:1)",
	} {
		if !strings.Contains(s, exp) {
			t.Errorf("expected dump to contain %q", exp)
		}
	}

	if !strings.Contains(s, "Magic: PMX  (50 4D 58 20)") {
		t.Errorf("expected dump of signature bytes")
	}

	_, err = Decoder{}.Dump(&out, bytes.NewReader([]byte("PMY ")))
	if !errors.Is(err, ErrMagicMismatch) {
		t.Error("expected error (ErrMagicMismatch), got:", err)
	}
}

func TestDumpWarnings(t *testing.T) {
	data := minimalFile(2.0,
		int32(0),
		int32(4), 0, 0, 0, 0,
		int32(0), int32(0), int32(0), int32(0), int32(0), int32(0), int32(0),
	)
	data = append(data, "xyz"...)

	var out strings.Builder
	warn, err := Decoder{}.Dump(&out, bytes.NewReader(data))
	if err != nil {
		t.Fatal("unexpected error:", err)
	}
	errs, ok := warn.(errors.Errors)
	if !ok || len(errs) != 2 {
		t.Fatalf("expected 2 warnings, got: %v", warn)
	}
	if !strings.Contains(errs[1].Error(), "3 trailing bytes") {
		t.Error("unexpected warning", errs[1])
	}
	if !strings.Contains(out.String(), "Faces: (count:1)") {
		t.Error("expected one face in dump")
	}
}
