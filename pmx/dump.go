package pmx

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"strconv"
	"unicode"

	"github.com/pmxutil/pmxfile"
	"github.com/pmxutil/pmxfile/errors"
)

// Dump writes to w a readable representation of the model decoded from r.
func (d Decoder) Dump(w io.Writer, r io.Reader) (warn, err error) {
	if r == nil {
		return nil, errors.New("nil reader")
	}
	if w == nil {
		return nil, errors.New("nil writer")
	}

	// The signature is read ahead so that the bytes actually present are
	// dumped, then put back in front of the stream.
	var sig [4]byte
	n, _ := io.ReadFull(r, sig[:])
	m, h, warn, err := d.Decode(io.MultiReader(bytes.NewReader(sig[:n]), r))
	if err != nil {
		return warn, err
	}
	if n, _ := io.Copy(io.Discard, r); n > 0 {
		warn = errors.Union(warn, errors.Errorf("%d trailing bytes not dumped", n))
	}

	bw := bufio.NewWriter(w)
	dumpHeader(bw, 0, sig, h)
	bw.WriteString("\nModelInfo: {")
	dumpField(bw, 1, "Name", m.Info.Name)
	dumpField(bw, 1, "NameEN", m.Info.NameEN)
	dumpField(bw, 1, "Comment", m.Info.Comment)
	dumpField(bw, 1, "CommentEN", m.Info.CommentEN)
	bw.WriteString("\n}")

	dumpList(bw, "Vertices", m.Vertices, func(w *bufio.Writer, indent int, v *pmxfile.Vertex) {
		dumpNewline(w, indent)
		fmt.Fprintf(w, "Position: %v", v.Position)
		dumpNewline(w, indent)
		fmt.Fprintf(w, "Normal: %v", v.Normal)
		dumpNewline(w, indent)
		fmt.Fprintf(w, "UV: %v", v.UV)
		for i := 0; i < h.AdditionalUV; i++ {
			dumpNewline(w, indent)
			fmt.Fprintf(w, "AddUV%d: %v", i+1, v.AddUV[i])
		}
		dumpNewline(w, indent)
		if v.Weight == nil {
			w.WriteString("Weight: <nil>")
		} else {
			fmt.Fprintf(w, "Weight: %s %+v", v.Weight.Type(), v.Weight)
		}
		dumpNewline(w, indent)
		fmt.Fprintf(w, "EdgeScale: %g", v.EdgeScale)
	})

	dumpNewline(bw, 0)
	fmt.Fprintf(bw, "Faces: (count:%d) {", len(m.Faces))
	for i, f := range m.Faces {
		dumpNewline(bw, 1)
		fmt.Fprintf(bw, "#%d: %v", i, f)
	}
	bw.WriteString("\n}")

	dumpNewline(bw, 0)
	fmt.Fprintf(bw, "Textures: (count:%d) {", len(m.Textures))
	for i, t := range m.Textures {
		dumpNewline(bw, 1)
		fmt.Fprintf(bw, "#%d: ", i)
		dumpString(bw, 1, t)
	}
	bw.WriteString("\n}")

	dumpList(bw, "Materials", m.Materials, func(w *bufio.Writer, indent int, v *pmxfile.Material) {
		dumpField(w, indent, "Name", v.Name)
		dumpField(w, indent, "NameEN", v.NameEN)
		dumpNewline(w, indent)
		fmt.Fprintf(w, "Diffuse: %v", v.Diffuse)
		dumpNewline(w, indent)
		fmt.Fprintf(w, "Specular: %v * %g", v.Specular, v.SpecularFactor)
		dumpNewline(w, indent)
		fmt.Fprintf(w, "Ambient: %v", v.Ambient)
		dumpNewline(w, indent)
		fmt.Fprintf(w, "DrawMode: %08b", v.DrawMode)
		dumpNewline(w, indent)
		fmt.Fprintf(w, "Edge: %v * %g", v.EdgeColor, v.EdgeSize)
		dumpNewline(w, indent)
		fmt.Fprintf(w, "Texture: %d", v.Texture)
		dumpNewline(w, indent)
		if v.Sphere == nil {
			w.WriteString("Sphere: none")
		} else {
			fmt.Fprintf(w, "Sphere: %s %d", v.Sphere.Kind, v.Sphere.Texture)
		}
		dumpNewline(w, indent)
		switch t := v.Toon.(type) {
		case pmxfile.ToonTexture:
			fmt.Fprintf(w, "Toon: texture %d", t)
		case pmxfile.ToonShared:
			fmt.Fprintf(w, "Toon: shared %d", t)
		}
		dumpField(w, indent, "Memo", v.Memo)
		dumpNewline(w, indent)
		fmt.Fprintf(w, "FaceVertexCount: %d", v.FaceVertexCount)
	})

	dumpList(bw, "Bones", m.Bones, func(w *bufio.Writer, indent int, v *pmxfile.Bone) {
		dumpField(w, indent, "Name", v.Name)
		dumpField(w, indent, "NameEN", v.NameEN)
		dumpNewline(w, indent)
		fmt.Fprintf(w, "Position: %v", v.Position)
		dumpNewline(w, indent)
		fmt.Fprintf(w, "Parent: %d", v.Parent)
		dumpNewline(w, indent)
		fmt.Fprintf(w, "DeformDepth: %d", v.DeformDepth)
		dumpNewline(w, indent)
		fmt.Fprintf(w, "Flags: %016b", v.Flags())
		dumpNewline(w, indent)
		switch c := v.Connection.(type) {
		case pmxfile.ConnectBone:
			fmt.Fprintf(w, "Connection: bone %d", c)
		case pmxfile.ConnectOffset:
			fmt.Fprintf(w, "Connection: offset %v", pmxfile.Vec3(c))
		}
		if v.Inherit.Mode != pmxfile.InheritNone {
			dumpNewline(w, indent)
			fmt.Fprintf(w, "Inherit: %s bone %d * %g", v.Inherit.Mode, v.Inherit.Bone, v.Inherit.Weight)
		}
		if v.FixedAxis != nil {
			dumpNewline(w, indent)
			fmt.Fprintf(w, "FixedAxis: %v", *v.FixedAxis)
		}
		if v.LocalAxis != nil {
			dumpNewline(w, indent)
			fmt.Fprintf(w, "LocalAxis: X %v Z %v", v.LocalAxis.X, v.LocalAxis.Z)
		}
		if v.ExternalParent != nil {
			dumpNewline(w, indent)
			fmt.Fprintf(w, "ExternalParent: %d", *v.ExternalParent)
		}
		if ik := v.IK; ik != nil {
			dumpNewline(w, indent)
			fmt.Fprintf(w, "IK: target %d, loops %d, limit %g {", ik.Target, ik.Loops, ik.LimitAngle)
			for _, link := range ik.Links {
				dumpNewline(w, indent+1)
				fmt.Fprintf(w, "Bone %d", link.Bone)
				if link.Limit != nil {
					fmt.Fprintf(w, " limit %v..%v", link.Limit.Min, link.Limit.Max)
				}
			}
			dumpNewline(w, indent)
			w.WriteByte('}')
		}
	})

	dumpList(bw, "Morphs", m.Morphs, func(w *bufio.Writer, indent int, v *pmxfile.Morph) {
		dumpField(w, indent, "Name", v.Name)
		dumpField(w, indent, "NameEN", v.NameEN)
		dumpNewline(w, indent)
		fmt.Fprintf(w, "Panel: %s", v.Panel)
		dumpNewline(w, indent)
		fmt.Fprintf(w, "Type: %s (count:%d)", v.Data.MorphType(), v.Data.Len())
	})

	dumpList(bw, "Frames", m.Frames, func(w *bufio.Writer, indent int, v *pmxfile.Frame) {
		dumpField(w, indent, "Name", v.Name)
		dumpField(w, indent, "NameEN", v.NameEN)
		dumpNewline(w, indent)
		fmt.Fprintf(w, "Special: %d", v.Special)
		for _, e := range v.Elements {
			dumpNewline(w, indent)
			fmt.Fprintf(w, "%s %d", e.Target, e.Index)
		}
	})

	dumpList(bw, "Rigids", m.Rigids, func(w *bufio.Writer, indent int, v *pmxfile.Rigid) {
		dumpField(w, indent, "Name", v.Name)
		dumpField(w, indent, "NameEN", v.NameEN)
		dumpNewline(w, indent)
		fmt.Fprintf(w, "Bone: %d", v.Bone)
		dumpNewline(w, indent)
		fmt.Fprintf(w, "Group: %d, Mask: %016b", v.Group, v.NoCollisionMask)
		dumpNewline(w, indent)
		fmt.Fprintf(w, "Shape: %s %v", v.Shape, v.Size)
		dumpNewline(w, indent)
		fmt.Fprintf(w, "Position: %v, Rotation: %v", v.Position, v.Rotation)
		dumpNewline(w, indent)
		fmt.Fprintf(w, "Mass: %g, MoveResist: %g, RotationResist: %g, Repulsion: %g, Friction: %g",
			v.Mass, v.MoveResist, v.RotationResist, v.Repulsion, v.Friction)
		dumpNewline(w, indent)
		fmt.Fprintf(w, "CalcMethod: %s", v.CalcMethod)
	})

	dumpList(bw, "Joints", m.Joints, func(w *bufio.Writer, indent int, v *pmxfile.Joint) {
		dumpField(w, indent, "Name", v.Name)
		dumpField(w, indent, "NameEN", v.NameEN)
		dumpNewline(w, indent)
		if v.Params == nil {
			w.WriteString("Params: <nil>")
			return
		}
		fmt.Fprintf(w, "%s: %+v", v.Params.JointType(), v.Params)
	})

	if h.Version == V21 {
		dumpList(bw, "SoftBodies", m.SoftBodies, func(w *bufio.Writer, indent int, v *pmxfile.SoftBody) {
			dumpField(w, indent, "Name", v.Name)
			dumpField(w, indent, "NameEN", v.NameEN)
			dumpNewline(w, indent)
			fmt.Fprintf(w, "Form: %s, Material: %d, AeroModel: %s", v.Form, v.Material, v.AeroModel)
			dumpNewline(w, indent)
			fmt.Fprintf(w, "Config: %+v", v.Config)
			dumpNewline(w, indent)
			fmt.Fprintf(w, "Cluster: %+v", v.Cluster)
			dumpNewline(w, indent)
			fmt.Fprintf(w, "Iteration: %+v", v.Iteration)
			dumpNewline(w, indent)
			fmt.Fprintf(w, "Stiffness: %+v", v.Stiffness)
			dumpNewline(w, indent)
			fmt.Fprintf(w, "Anchors: %+v", v.Anchors)
			dumpNewline(w, indent)
			fmt.Fprintf(w, "PinVertices: %v", v.PinVertices)
		})
	}
	bw.WriteByte('\n')

	if err := bw.Flush(); err != nil {
		return warn, err
	}
	return warn, nil
}

func dumpHeader(w *bufio.Writer, indent int, sig [4]byte, h *Header) {
	w.WriteString("Header: {")
	dumpNewline(w, indent+1)
	w.WriteString("Magic: ")
	dumpSig(w, sig)
	dumpNewline(w, indent+1)
	fmt.Fprintf(w, "Version: %s", h.Version)
	dumpNewline(w, indent+1)
	fmt.Fprintf(w, "Encoding: %s", h.Encoding)
	dumpNewline(w, indent+1)
	fmt.Fprintf(w, "AdditionalUV: %d", h.AdditionalUV)
	dumpNewline(w, indent+1)
	fmt.Fprintf(w, "IndexWidths: vertex %d, texture %d, material %d, bone %d, morph %d, rigid %d",
		h.VertexIndex, h.TextureIndex, h.MaterialIndex, h.BoneIndex, h.MorphIndex, h.RigidIndex)
	dumpNewline(w, indent)
	w.WriteByte('}')
}

// dumpList writes a top-level section with one indented block per element.
func dumpList[T any](w *bufio.Writer, name string, list []T, dump func(w *bufio.Writer, indent int, v *T)) {
	dumpNewline(w, 0)
	fmt.Fprintf(w, "%s: (count:%d) {", name, len(list))
	for i := range list {
		dumpNewline(w, 1)
		fmt.Fprintf(w, "#%d: {", i)
		dump(w, 2, &list[i])
		dumpNewline(w, 1)
		w.WriteByte('}')
	}
	dumpNewline(w, 0)
	w.WriteByte('}')
}

func dumpField(w *bufio.Writer, indent int, name, s string) {
	dumpNewline(w, indent)
	w.WriteString(name)
	w.WriteString(": ")
	dumpString(w, indent, s)
}

func dumpNewline(w *bufio.Writer, indent int) {
	w.WriteByte('\n')
	for i := 0; i < indent; i++ {
		w.WriteByte('\t')
	}
}

func dumpSig(w *bufio.Writer, sig [4]byte) {
	for _, c := range sig {
		if unicode.IsPrint(rune(c)) {
			w.WriteByte(c)
		} else {
			w.WriteByte('.')
		}
	}
	fmt.Fprintf(w, " (% 02X)", sig)
}

func dumpString(w *bufio.Writer, indent int, s string) {
	for _, r := range s {
		if !unicode.IsGraphic(r) {
			dumpBytes(w, indent, []byte(s))
			return
		}
	}
	fmt.Fprintf(w, "(len:%d) ", len(s))
	w.WriteString(strconv.Quote(s))
}

func dumpBytes(w *bufio.Writer, indent int, b []byte) {
	fmt.Fprintf(w, "(len:%d)", len(b))
	const width = 16
	for j := 0; j < len(b); j += width {
		dumpNewline(w, indent+1)
		w.WriteString("| ")
		for i := j; i < j+width; {
			if i < len(b) {
				s := strconv.FormatUint(uint64(b[i]), 16)
				if len(s) == 1 {
					w.WriteString("0")
				}
				w.WriteString(s)
			} else if len(b) < width {
				break
			} else {
				w.WriteString("  ")
			}
			i++
			if i%8 == 0 && i < j+width {
				w.WriteString("  ")
			} else {
				w.WriteString(" ")
			}
		}
		w.WriteString("|")
		n := len(b)
		if j+width < n {
			n = j + width
		}
		for i := j; i < n; i++ {
			if 32 <= b[i] && b[i] <= 126 {
				w.WriteRune(rune(b[i]))
			} else {
				w.WriteByte('.')
			}
		}
		w.WriteByte('|')
	}
}
