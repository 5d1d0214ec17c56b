package py

import (
	"testing"

	"github.com/hosackm/ziggy-pydust/pydusttest"
)

func newFake(t *testing.T) *pydusttest.Fake {
	t.Helper()
	rt := pydusttest.New()
	t.Cleanup(func() { rt.Close() })
	return rt
}

func TestIncrefDecref(t *testing.T) {
	rt := newFake(t)
	snap := rt.Snapshot()

	ref, err := Create(rt, int64(7))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	o := ref.Obj()

	if got := o.RefCount(); got != 1 {
		t.Fatalf("fresh object refcount = %d, want 1", got)
	}

	o.Incref()
	if got := o.RefCount(); got != 2 {
		t.Fatalf("after Incref refcount = %d, want 2", got)
	}

	o.Decref()
	if got := o.RefCount(); got != 1 {
		t.Fatalf("after Decref refcount = %d, want 1", got)
	}

	ref.Decref()
	rt.AssertNoLeaks(t, snap)
}

func TestRefDecrefIdempotent(t *testing.T) {
	rt := newFake(t)
	snap := rt.Snapshot()

	ref, err := Create(rt, "text")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	ref.Decref()
	ref.Decref() // second release must be a no-op, not a double free
	ref.Decref()

	rt.AssertNoLeaks(t, snap)
}

func TestBorrowedRefNeverReleases(t *testing.T) {
	rt := newFake(t)

	owner, err := Create(rt, int64(5))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	defer owner.Decref()

	borrowed := Borrowed(owner.Obj())
	before := owner.Obj().RefCount()
	borrowed.Decref()
	if got := owner.Obj().RefCount(); got != before {
		t.Errorf("Decref of borrowed Ref changed refcount: %d -> %d", before, got)
	}
}

func TestStealTransfersOwnership(t *testing.T) {
	rt := newFake(t)
	snap := rt.Snapshot()

	ref, err := Create(rt, int64(42))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	o := ref.Steal()
	ref.Decref() // must be inert after Steal

	if got := o.RefCount(); got != 1 {
		t.Fatalf("stolen object refcount = %d, want 1", got)
	}
	o.Decref()
	rt.AssertNoLeaks(t, snap)
}

func TestStealBorrowedPanics(t *testing.T) {
	rt := newFake(t)

	owner, err := Create(rt, int64(1))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	defer owner.Decref()

	defer func() {
		if recover() == nil {
			t.Error("Steal of a borrowed Ref did not panic")
		}
	}()
	b := Borrowed(owner.Obj())
	b.Steal()
}

func TestNewRefAcquires(t *testing.T) {
	rt := newFake(t)

	owner, err := Create(rt, "x")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	defer owner.Decref()

	before := owner.Obj().RefCount()
	promoted := owner.Obj().NewRef()
	if got := owner.Obj().RefCount(); got != before+1 {
		t.Fatalf("NewRef refcount = %d, want %d", got, before+1)
	}
	promoted.Decref()
	if got := owner.Obj().RefCount(); got != before {
		t.Fatalf("after releasing NewRef refcount = %d, want %d", got, before)
	}
}

func TestSingletonAcquireReleaseBalance(t *testing.T) {
	rt := newFake(t)

	const n = 5
	none := NewObject(rt, rt.None())
	before := none.RefCount()

	for i := 0; i < n; i++ {
		none.Incref()
	}
	if got := none.RefCount(); got != before+n {
		t.Fatalf("after %d acquires refcount = %d, want %d", n, got, before+n)
	}

	for i := 0; i < n; i++ {
		none.Decref()
		if got := none.RefCount(); got < 1 {
			t.Fatalf("singleton refcount dropped to %d", got)
		}
	}
	if got := none.RefCount(); got != before {
		t.Fatalf("after balanced release refcount = %d, want %d", got, before)
	}
}
