// The pmxfile-stat command displays stats for a PMX file.
package main

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/pmxutil/pmxfile"
	"github.com/pmxutil/pmxfile/errors"
	"github.com/pmxutil/pmxfile/internal/logger"
	"github.com/pmxutil/pmxfile/pmx"
	"go.uber.org/zap"
	"golang.org/x/crypto/blake2b"
)

const usage = `usage: pmxfile-stat [-debug] [INPUT] [OUTPUT]

Reads a PMX file from INPUT, and writes to OUTPUT statistics for the file.

INPUT and OUTPUT are paths to files. If INPUT is "-" or unspecified, then stdin
is used. If OUTPUT is "-" or unspecified, then stdout is used. Warnings and
errors are written to stderr.
`

type Stats struct {
	// Size of the file in bytes.
	Size int

	// BLAKE2b-256 digest of the file, in hex.
	Digest string

	// Bytes following the last section.
	TrailingBytes int `json:",omitempty"`

	Header *pmx.Header `json:",omitempty"`

	Name   string
	NameEN string `json:",omitempty"`

	VertexCount   int
	FaceCount     int
	TextureCount  int
	MaterialCount int
	BoneCount     int
	MorphCount    int
	FrameCount    int
	RigidCount    int
	JointCount    int
	SoftBodyCount int `json:",omitempty"`

	// Number of vertices per skinning scheme.
	WeightCount map[string]int

	// Number of morphs per type.
	MorphTypeCount map[string]int

	// Number of joints per type.
	JointTypeCount map[string]int

	// Number of bones with an IK chain.
	IKCount int

	// Number of warnings produced while decoding.
	WarningCount int `json:",omitempty"`
}

func (s *Stats) Fill(m *pmxfile.Model) {
	if m == nil {
		return
	}
	s.Name = m.Info.Name
	s.NameEN = m.Info.NameEN
	s.VertexCount = len(m.Vertices)
	s.FaceCount = len(m.Faces)
	s.TextureCount = len(m.Textures)
	s.MaterialCount = len(m.Materials)
	s.BoneCount = len(m.Bones)
	s.MorphCount = len(m.Morphs)
	s.FrameCount = len(m.Frames)
	s.RigidCount = len(m.Rigids)
	s.JointCount = len(m.Joints)
	s.SoftBodyCount = len(m.SoftBodies)

	s.WeightCount = map[string]int{}
	for _, v := range m.Vertices {
		if v.Weight != nil {
			s.WeightCount[v.Weight.Type().String()]++
		}
	}
	s.MorphTypeCount = map[string]int{}
	for _, morph := range m.Morphs {
		if morph.Data != nil {
			s.MorphTypeCount[morph.Data.MorphType().String()]++
		}
	}
	s.JointTypeCount = map[string]int{}
	for _, j := range m.Joints {
		if j.Params != nil {
			s.JointTypeCount[j.Params.JointType().String()]++
		}
	}
	s.IKCount = 0
	for _, b := range m.Bones {
		if b.IK != nil {
			s.IKCount++
		}
	}
}

func main() {
	err := run(os.Args[1:], os.Stdin, os.Stdout)
	if errors.Is(err, flag.ErrHelp) {
		return
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// run writes the statistics of the input. If the input fails to decode, the
// statistics gathered so far are still written, and the decode error is
// returned.
func run(args []string, stdin io.Reader, stdout io.Writer) (err error) {
	var input io.Reader = stdin
	var output io.Writer = stdout

	flags := flag.NewFlagSet("pmxfile-stat", flag.ContinueOnError)
	debug := flags.Bool("debug", false, "log each decoded section to stderr")
	flags.Usage = func() { fmt.Fprint(flags.Output(), usage) }
	if err := flags.Parse(args); err != nil {
		return err
	}
	if *debug {
		logger.Init("debug", "")
		defer logger.Sync()
	}
	files := flags.Args()
	if len(files) >= 1 && files[0] != "-" {
		in, err := os.Open(files[0])
		if err != nil {
			return fmt.Errorf("open input: %w", err)
		}
		input = in
		defer in.Close()
	}
	if len(files) >= 2 && files[1] != "-" {
		out, err := os.Create(files[1])
		if err != nil {
			return fmt.Errorf("create output: %w", err)
		}
		defer out.Close()
		defer func() {
			if serr := out.Sync(); serr != nil && err == nil {
				err = fmt.Errorf("sync output: %w", serr)
			}
		}()
		output = out
	}

	data, err := io.ReadAll(input)
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}
	sum := blake2b.Sum256(data)
	stats := Stats{
		Size:   len(data),
		Digest: hex.EncodeToString(sum[:]),
	}

	r := bytes.NewReader(data)
	model, header, warn, derr := pmx.Decoder{Logger: logger.Log}.Decode(r)
	if warn != nil {
		fmt.Fprintln(os.Stderr, fmt.Errorf("decode warning: %w", warn))
		if errs, ok := warn.(errors.Errors); ok {
			stats.WarningCount = len(errs)
		} else {
			stats.WarningCount = 1
		}
	}
	if derr == nil {
		stats.TrailingBytes = r.Len()
	}
	logger.Log.Debug("decoded", zap.Int("size", len(data)), zap.Int("trailing", stats.TrailingBytes))

	stats.Header = header
	stats.Fill(model)

	je := json.NewEncoder(output)
	je.SetEscapeHTML(false)
	je.SetIndent("", "\t")
	if err := je.Encode(stats); err != nil {
		return fmt.Errorf("write error: %w", err)
	}
	if derr != nil {
		return fmt.Errorf("decode error: %w", derr)
	}
	return nil
}
