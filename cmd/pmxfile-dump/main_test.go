package main

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/pmxutil/pmxfile"
	"github.com/pmxutil/pmxfile/pmx"
)

func TestRun(t *testing.T) {
	var in bytes.Buffer
	if err := pmx.Encode(&in, &pmxfile.Model{Info: pmxfile.ModelInfo{Name: "model"}}); err != nil {
		t.Fatal("unexpected error:", err)
	}
	var out strings.Builder
	if err := run(nil, &in, &out); err != nil {
		t.Fatal("unexpected error:", err)
	}
	if !strings.Contains(out.String(), `Name: (len:5) "model"`) {
		t.Errorf("unexpected dump:\n%s", out.String())
	}

	out.Reset()
	err := run(nil, strings.NewReader("PMY "), &out)
	if !errors.Is(err, pmx.ErrMagicMismatch) {
		t.Error("expected error (ErrMagicMismatch), got:", err)
	}
}
