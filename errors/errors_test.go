package errors

import (
	"testing"
)

func TestErrors_Error(t *testing.T) {
	if s := (Errors{}).Error(); s != "no errors" {
		t.Error("unexpected message", s)
	}
	a := New("a")
	if s := (Errors{a}).Error(); s != "a" {
		t.Error("unexpected message", s)
	}
	exp := "2 errors:\n\ta\n\tb\n\tc"
	if s := (Errors{a, New("b\nc")}).Error(); s != exp {
		t.Errorf("expected %q, got %q", exp, s)
	}
}

func TestErrors_Return(t *testing.T) {
	var errs Errors
	if errs.Return() != nil {
		t.Error("expected nil from empty list")
	}
	errs = errs.Append(nil, New("a"), nil)
	if len(errs) != 1 {
		t.Fatal("expected 1 error, got", len(errs))
	}
	if errs.Return() == nil {
		t.Error("expected non-nil error")
	}
}

func TestErrors_Is(t *testing.T) {
	target := New("target")
	errs := Errors{New("other"), Errorf("wrapped: %w", target)}
	if !Is(errs, target) {
		t.Error("expected list to match target")
	}
	if Is(errs, New("target")) {
		t.Error("unexpected match")
	}
}

func TestUnion(t *testing.T) {
	if Union(nil, Errors{}, nil) != nil {
		t.Error("expected nil union")
	}
	a, b, c := New("a"), New("b"), New("c")
	u, ok := Union(a, Errors{b, c}, nil).(Errors)
	if !ok || len(u) != 3 || u[0] != a || u[2] != c {
		t.Error("unexpected union", u)
	}
}
