package main

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/pmxutil/pmxfile"
	"github.com/pmxutil/pmxfile/errors"
	"github.com/pmxutil/pmxfile/pmx"
)

func TestRun(t *testing.T) {
	var in bytes.Buffer
	m := &pmxfile.Model{
		Info:     pmxfile.ModelInfo{Name: "model"},
		Textures: []string{"a.png", "b.png"},
	}
	if err := pmx.Encode(&in, m); err != nil {
		t.Fatal("unexpected error:", err)
	}
	size := in.Len()

	var out bytes.Buffer
	if err := run(nil, &in, &out); err != nil {
		t.Fatal("unexpected error:", err)
	}
	var stats map[string]interface{}
	if err := json.Unmarshal(out.Bytes(), &stats); err != nil {
		t.Fatal("unexpected error:", err)
	}
	if stats["Size"] != float64(size) {
		t.Errorf("expected size %d, got %v", size, stats["Size"])
	}
	if d, _ := stats["Digest"].(string); len(d) != 64 {
		t.Error("expected 32-byte hex digest, got", stats["Digest"])
	}
}

func TestRunDecodeError(t *testing.T) {
	var out bytes.Buffer
	err := run(nil, bytes.NewReader([]byte("PMY \x00\x00\x00\x40")), &out)
	if !errors.Is(err, pmx.ErrMagicMismatch) {
		t.Error("expected error (ErrMagicMismatch), got:", err)
	}
	if out.Len() == 0 {
		t.Error("expected stats to be written")
	}
}
