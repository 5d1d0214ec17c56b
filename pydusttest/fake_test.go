package pydusttest

import (
	"testing"

	"github.com/hosackm/ziggy-pydust"
)

func TestOverReleasePanics(t *testing.T) {
	f := New()
	defer f.Close()

	h := f.NewLong(1)
	f.DecRef(h)

	defer func() {
		if recover() == nil {
			t.Error("releasing a dead handle did not panic")
		}
	}()
	f.DecRef(h)
}

func TestSingletonOverReleasePanics(t *testing.T) {
	f := New()
	defer f.Close()

	defer func() {
		if recover() == nil {
			t.Error("dropping the runtime's own singleton reference did not panic")
		}
	}()
	f.DecRef(f.None())
}

func TestUseAfterFreePanics(t *testing.T) {
	f := New()
	defer f.Close()

	h := f.NewString("gone")
	f.DecRef(h)

	defer func() {
		if recover() == nil {
			t.Error("touching a destroyed handle did not panic")
		}
	}()
	f.Length(h)
}

func TestContainerReleasesItems(t *testing.T) {
	f := New()
	defer f.Close()
	snap := f.Snapshot()

	a := f.NewLong(1)
	b := f.NewString("x")
	tup := f.NewTuple([]pydust.Handle{a, b})
	f.DecRef(a)
	f.DecRef(b)

	if f.RefCount(a) != 1 || f.RefCount(b) != 1 {
		t.Fatal("tuple did not take its own references")
	}

	f.DecRef(tup)
	f.AssertNoLeaks(t, snap)
}

func TestFailNextConsumesOnce(t *testing.T) {
	f := New()
	defer f.Close()

	s := f.NewString("ab")
	defer f.DecRef(s)

	f.FailNext("length")
	if got := f.Length(s); got != -1 {
		t.Fatalf("injected failure returned %d, want -1", got)
	}
	if !f.ErrOccurred() {
		t.Fatal("injected failure raised nothing")
	}
	f.ErrClear()

	if got := f.Length(s); got != 2 {
		t.Fatalf("second call returned %d, want 2", got)
	}
}

func TestBoolConstructorPropagatesTruthFailure(t *testing.T) {
	f := New()
	defer f.Close()

	boolType := f.BuiltinTypeHandle(pydust.TypeBool)
	arg := f.NewLong(1)
	defer f.DecRef(arg)

	f.FailNext("is_true")
	if h := f.Call(boolType, []pydust.Handle{arg}); h != pydust.Null {
		t.Fatalf("bool() under injected failure returned %d, want null", h)
	}
	if !f.ErrOccurred() {
		t.Fatal("failed construction raised nothing")
	}
	f.ErrClear()

	h := f.Call(boolType, []pydust.Handle{arg})
	if h != f.True() {
		t.Fatalf("bool(1) = %d, want the True singleton", h)
	}
	f.DecRef(h)
}

func TestCallRecording(t *testing.T) {
	f := New()
	defer f.Close()
	f.AddModule("m")

	f.ResetCalls()
	h := f.Import("m")
	f.AttrLookup(h, "x")

	want := []string{"import:m", "attr_lookup:x"}
	got := f.Calls()
	if len(got) != len(want) {
		t.Fatalf("calls = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("calls = %v, want %v", got, want)
		}
	}
	f.DecRef(h)
}

func TestDictKeyUnification(t *testing.T) {
	f := New()
	defer f.Close()

	d := f.NewDict()
	defer f.DecRef(d)

	one := f.NewLong(1)
	defer f.DecRef(one)
	v := f.NewString("v")
	defer f.DecRef(v)

	if f.DictSetItem(d, one, v) != 0 {
		t.Fatal("set failed")
	}

	// True and 1.0 hash to the same slot as 1.
	if got := f.DictGetItem(d, f.True()); got != v {
		t.Error("d[True] did not find d[1]")
	}
	fl := f.NewFloat(1.0)
	defer f.DecRef(fl)
	if got := f.DictGetItem(d, fl); got != v {
		t.Error("d[1.0] did not find d[1]")
	}
}

func TestReprRendering(t *testing.T) {
	f := New()
	defer f.Close()

	cases := []struct {
		name string
		h    pydust.Handle
		want string
	}{
		{"float keeps a point", f.NewFloat(3.0), "3.0"},
		{"string quoted", f.NewString("s"), "'s'"},
		{"single tuple", f.NewTuple([]pydust.Handle{f.True()}), "(True,)"},
		{"class", f.BuiltinTypeHandle(pydust.TypeInt), "<class 'int'>"},
	}
	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			r := f.Repr(tt.h)
			got, ok := f.UnicodeUTF8(r)
			if !ok {
				t.Fatal("repr is not a string")
			}
			if got != tt.want {
				t.Errorf("repr = %q, want %q", got, tt.want)
			}
			f.DecRef(r)
		})
	}
}

func TestLeakReportNamesGainedReferences(t *testing.T) {
	f := New()
	defer f.Close()
	snap := f.Snapshot()

	f.IncRef(f.None()) // an extra singleton reference is a leak too
	if leaks := f.Leaks(snap); len(leaks) != 1 {
		t.Fatalf("leak report = %v, want one entry", leaks)
	}
	f.DecRef(f.None())
	f.AssertNoLeaks(t, snap)
}

func TestClosedRuntimePanics(t *testing.T) {
	f := New()
	f.Close()

	defer func() {
		if recover() == nil {
			t.Error("call after Close did not panic")
		}
	}()
	f.NewLong(1)
}
