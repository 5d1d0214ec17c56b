package py

import (
	stderrors "errors"
	"testing"

	"github.com/hosackm/ziggy-pydust"
	"github.com/hosackm/ziggy-pydust/errors"
)

func TestFromBorrowsWrappers(t *testing.T) {
	rt := newFake(t)

	owner, err := Create(rt, "shared")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	defer owner.Decref()
	obj := owner.Obj()

	inputs := []struct {
		name string
		v    any
	}{
		{"object", obj},
		{"ref", owner},
		{"ref pointer", &owner},
		{"handle", obj.Handle()},
		{"typed wrapper", Str{obj}},
	}
	for _, tt := range inputs {
		t.Run(tt.name, func(t *testing.T) {
			before := obj.RefCount()
			ref, err := From(rt, tt.v)
			if err != nil {
				t.Fatalf("From(%s): %v", tt.name, err)
			}
			if ref.Owned() {
				t.Error("coerced wrapper came back owned")
			}
			if ref.Handle() != obj.Handle() {
				t.Errorf("coerced handle = %d, want %d", ref.Handle(), obj.Handle())
			}
			if got := obj.RefCount(); got != before {
				t.Errorf("coercing a wrapper changed refcount: %d -> %d", before, got)
			}
			ref.Decref() // no-op on borrowed
			if got := obj.RefCount(); got != before {
				t.Errorf("releasing a borrowed ref changed refcount: %d -> %d", before, got)
			}
		})
	}
}

func TestFromCreatesNativeValues(t *testing.T) {
	rt := newFake(t)

	cases := []struct {
		name string
		v    any
		want string // repr of the created object
	}{
		{"int", 12, "12"},
		{"int64", int64(-3), "-3"},
		{"uint32", uint32(9), "9"},
		{"float", 2.5, "2.5"},
		{"string", "hi", "'hi'"},
		{"slice", []any{1, "two", 3.0}, "(1, 'two', 3.0)"},
		{"nested slice", []any{[]any{1, 2}}, "((1, 2),)"},
	}
	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			snap := rt.Snapshot()
			ref, err := From(rt, tt.v)
			if err != nil {
				t.Fatalf("From(%v): %v", tt.v, err)
			}
			if !ref.Owned() {
				t.Error("created ref not owned")
			}
			got, err := Repr(rt, ref)
			if err != nil {
				t.Fatalf("Repr: %v", err)
			}
			s, err := got.Value()
			if err != nil {
				t.Fatalf("Value: %v", err)
			}
			if s != tt.want {
				t.Errorf("repr = %q, want %q", s, tt.want)
			}
			got.Decref()
			ref.Decref()
			rt.AssertNoLeaks(t, snap)
		})
	}
}

func TestFromNilYieldsNone(t *testing.T) {
	rt := newFake(t)
	snap := rt.Snapshot()

	ref, err := From(rt, nil)
	if err != nil {
		t.Fatalf("From(nil): %v", err)
	}
	if ref.Handle() != rt.None() {
		t.Errorf("From(nil) handle = %d, want None", ref.Handle())
	}
	if !ref.Owned() {
		t.Error("None ref must hold an acquired reference")
	}
	ref.Decref()
	rt.AssertNoLeaks(t, snap)
}

func TestFromBoolYieldsSingletons(t *testing.T) {
	rt := newFake(t)
	snap := rt.Snapshot()

	for _, tt := range []struct {
		v    bool
		want pydust.Handle
	}{
		{true, rt.True()},
		{false, rt.False()},
	} {
		ref, err := From(rt, tt.v)
		if err != nil {
			t.Fatalf("From(%v): %v", tt.v, err)
		}
		if ref.Handle() != tt.want {
			t.Errorf("From(%v) handle = %d, want %d", tt.v, ref.Handle(), tt.want)
		}
		ref.Decref()
	}
	rt.AssertNoLeaks(t, snap)
}

func TestFromMap(t *testing.T) {
	rt := newFake(t)
	snap := rt.Snapshot()

	ref, err := From(rt, map[string]any{"a": 1, "b": "two"})
	if err != nil {
		t.Fatalf("From(map): %v", err)
	}
	d, err := AsDict(ref.Obj())
	if err != nil {
		t.Fatalf("AsDict: %v", err)
	}
	n, err := d.Len()
	if err != nil {
		t.Fatalf("Len: %v", err)
	}
	if n != 2 {
		t.Errorf("dict length = %d, want 2", n)
	}
	v, err := d.Get("b")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	s, _ := rt.UnicodeUTF8(v.Handle())
	if s != "two" {
		t.Errorf("dict[b] = %q, want %q", s, "two")
	}
	ref.Decref()
	rt.AssertNoLeaks(t, snap)
}

func TestFromUnsupportedType(t *testing.T) {
	rt := newFake(t)
	snap := rt.Snapshot()

	type opaque struct{ n int }
	_, err := From(rt, opaque{1})
	if err == nil {
		t.Fatal("From(struct) succeeded, want error")
	}
	if !stderrors.Is(err, &errors.Error{Kind: errors.KindUnsupported}) {
		t.Errorf("error kind = %v, want unsupported", err)
	}
	rt.AssertNoLeaks(t, snap)
}

func TestFromSliceReleasesOnElementFailure(t *testing.T) {
	rt := newFake(t)
	snap := rt.Snapshot()

	type opaque struct{}
	_, err := From(rt, []any{1, 2, opaque{}})
	if err == nil {
		t.Fatal("From with bad element succeeded, want error")
	}
	rt.AssertNoLeaks(t, snap)
}

func TestLeakCheckerCatchesOmittedRelease(t *testing.T) {
	rt := newFake(t)
	snap := rt.Snapshot()

	ref, err := Create(rt, int64(99))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if leaks := rt.Leaks(snap); len(leaks) != 1 {
		t.Fatalf("leak report has %d entries, want 1", len(leaks))
	}
	ref.Decref()
	rt.AssertNoLeaks(t, snap)
}
