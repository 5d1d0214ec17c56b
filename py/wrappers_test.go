package py

import (
	stderrors "errors"
	"testing"

	"github.com/hosackm/ziggy-pydust/errors"
)

func TestDict(t *testing.T) {
	rt := newFake(t)
	snap := rt.Snapshot()

	d, err := NewDict(rt)
	if err != nil {
		t.Fatalf("NewDict: %v", err)
	}

	if err := d.Set("count", 3); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := d.Set("name", "spindle"); err != nil {
		t.Fatalf("Set: %v", err)
	}

	n, err := d.Len()
	if err != nil {
		t.Fatalf("Len: %v", err)
	}
	if n != 2 {
		t.Errorf("Len = %d, want 2", n)
	}

	v, err := d.Get("count")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got := rt.IntAsInt64(v.Handle()); got != 3 {
		t.Errorf("d[count] = %d, want 3", got)
	}

	ok, err := d.Contains("name")
	if err != nil {
		t.Fatalf("Contains: %v", err)
	}
	if !ok {
		t.Error("Contains(name) = false, want true")
	}

	_, err = d.Get("absent")
	if !errors.IsNotFound(err) {
		t.Fatalf("Get(absent) error = %v, want not found", err)
	}

	// Overwriting a key must drop the reference to the old value.
	if err := d.Set("count", 4); err != nil {
		t.Fatalf("Set overwrite: %v", err)
	}

	d.Decref()
	rt.AssertNoLeaks(t, snap)
}

func TestDictUnhashableKey(t *testing.T) {
	rt := newFake(t)
	snap := rt.Snapshot()

	d, err := NewDict(rt)
	if err != nil {
		t.Fatalf("NewDict: %v", err)
	}
	err = d.Set([]any{1}, "v")
	if !errors.IsForeignRaised(err) {
		t.Fatalf("Set with unhashable key = %v, want foreign raise", err)
	}
	rt.ErrClear()
	d.Decref()
	rt.AssertNoLeaks(t, snap)
}

func TestTuple(t *testing.T) {
	rt := newFake(t)
	snap := rt.Snapshot()

	tup, err := NewTuple(rt, 1, "two", 3.0)
	if err != nil {
		t.Fatalf("NewTuple: %v", err)
	}

	n, err := tup.Len()
	if err != nil {
		t.Fatalf("Len: %v", err)
	}
	if n != 3 {
		t.Errorf("Len = %d, want 3", n)
	}

	item, err := tup.Get(1)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if s, _ := rt.UnicodeUTF8(item.Handle()); s != "two" {
		t.Errorf("tup[1] = %q, want %q", s, "two")
	}

	_, err = tup.Get(7)
	if !errors.IsForeignRaised(err) {
		t.Fatalf("Get(7) error = %v, want foreign raise", err)
	}
	exc, _, _ := rt.PendingExc()
	if exc != "IndexError" {
		t.Errorf("pending exception = %q, want IndexError", exc)
	}
	rt.ErrClear()

	tup.Decref()
	rt.AssertNoLeaks(t, snap)
}

func TestLongInt64(t *testing.T) {
	rt := newFake(t)
	snap := rt.Snapshot()

	ref, err := Create(rt, int64(123))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	l, err := AsLong(ref.Obj())
	if err != nil {
		t.Fatalf("AsLong: %v", err)
	}
	v, err := l.Int64()
	if err != nil {
		t.Fatalf("Int64: %v", err)
	}
	if v != 123 {
		t.Errorf("Int64 = %d, want 123", v)
	}
	ref.Decref()
	rt.AssertNoLeaks(t, snap)
}

func TestLongMinusOneIsNotAnError(t *testing.T) {
	rt := newFake(t)

	ref, err := Create(rt, int64(-1))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	defer ref.Decref()

	l := Long{ref.Obj()}
	v, err := l.Int64()
	if err != nil {
		t.Fatalf("Int64(-1) reported an error: %v", err)
	}
	if v != -1 {
		t.Errorf("Int64 = %d, want -1", v)
	}
}

func TestLongConversionFailure(t *testing.T) {
	rt := newFake(t)

	ref, err := Create(rt, "not a number")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	defer ref.Decref()

	l := Long{ref.Obj()} // bypass the checked cast on purpose
	_, err = l.Int64()
	if !errors.IsForeignRaised(err) {
		t.Fatalf("Int64(str) error = %v, want foreign raise", err)
	}
	rt.ErrClear()
}

func TestFloatFloat64(t *testing.T) {
	rt := newFake(t)

	ref, err := Create(rt, 2.75)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	defer ref.Decref()

	f, err := AsFloat(ref.Obj())
	if err != nil {
		t.Fatalf("AsFloat: %v", err)
	}
	v, err := f.Float64()
	if err != nil {
		t.Fatalf("Float64: %v", err)
	}
	if v != 2.75 {
		t.Errorf("Float64 = %v, want 2.75", v)
	}
}

func TestBoolValue(t *testing.T) {
	rt := newFake(t)

	for _, want := range []bool{true, false} {
		ref, err := From(rt, want)
		if err != nil {
			t.Fatalf("From(%v): %v", want, err)
		}
		b, err := AsBool(ref.Obj())
		if err != nil {
			t.Fatalf("AsBool: %v", err)
		}
		if got := b.Value(); got != want {
			t.Errorf("Value = %v, want %v", got, want)
		}
		ref.Decref()
	}
}

func TestStrValue(t *testing.T) {
	rt := newFake(t)

	ref, err := Create(rt, "héllo")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	defer ref.Decref()

	s, err := AsStr(ref.Obj())
	if err != nil {
		t.Fatalf("AsStr: %v", err)
	}
	v, err := s.Value()
	if err != nil {
		t.Fatalf("Value: %v", err)
	}
	if v != "héllo" {
		t.Errorf("Value = %q, want %q", v, "héllo")
	}
}

func TestDowncastMismatch(t *testing.T) {
	rt := newFake(t)
	snap := rt.Snapshot()

	ref, err := Create(rt, "text")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	_, err = AsLong(ref.Obj())
	if err == nil {
		t.Fatal("AsLong on a str succeeded")
	}
	var be *errors.Error
	if !stderrors.As(err, &be) || be.Kind != errors.KindUnsupported {
		t.Errorf("error = %v, want unsupported", err)
	}
	if rt.ErrOccurred() {
		t.Error("failed downcast left a pending foreign error")
	}

	ref.Decref()
	rt.AssertNoLeaks(t, snap)
}

func TestDowncastBoolIsInt(t *testing.T) {
	rt := newFake(t)

	ref, err := From(rt, true)
	if err != nil {
		t.Fatalf("From(true): %v", err)
	}
	defer ref.Decref()

	// bool subtypes int, so the long downcast accepts it.
	if _, err := AsLong(ref.Obj()); err != nil {
		t.Errorf("AsLong(True): %v", err)
	}
	if _, err := AsBool(ref.Obj()); err != nil {
		t.Errorf("AsBool(True): %v", err)
	}
}
