package py

import (
	stderrors "errors"
	"testing"

	"github.com/hosackm/ziggy-pydust"
	"github.com/hosackm/ziggy-pydust/errors"
	"github.com/hosackm/ziggy-pydust/pydusttest"
)

// buildShapes populates a three-level hierarchy Base <- Mid <- Leaf where
// every level overrides describe.
func buildShapes(rt *pydusttest.Fake) (base, mid, leaf pydust.Handle) {
	mod := rt.AddModule("shapes")
	base = rt.AddType(mod, "Base", pydust.Null)
	mid = rt.AddType(mod, "Mid", base)
	leaf = rt.AddType(mod, "Leaf", mid)

	says := func(what string) pydusttest.CallFunc {
		return func(rt *pydusttest.Fake, _ []pydust.Handle) pydust.Handle {
			return rt.NewString(what)
		}
	}
	rt.DefMethod(base, "describe", says("base"))
	rt.DefMethod(mid, "describe", says("mid"))
	rt.DefMethod(leaf, "describe", says("leaf"))
	return base, mid, leaf
}

func callDescribe(t *testing.T, rt pydust.Runtime, recv any) string {
	t.Helper()
	method, err := GetAttr(rt, recv, "describe")
	if err != nil {
		t.Fatalf("GetAttr(describe): %v", err)
	}
	res, err := Call(rt, method)
	if err != nil {
		t.Fatalf("Call(describe): %v", err)
	}
	defer res.Decref()
	s, err := AsStr(res)
	if err != nil {
		t.Fatalf("AsStr: %v", err)
	}
	v, err := s.Value()
	if err != nil {
		t.Fatalf("Value: %v", err)
	}
	return v
}

func TestSuperSkipsDeclaredSupertype(t *testing.T) {
	rt := newFake(t)
	_, _, leafCls := buildShapes(rt)
	snap := rt.Snapshot()

	inst := rt.NewInstance(leafCls)

	// Plain dispatch finds the leaf override.
	if got := callDescribe(t, rt, inst); got != "leaf" {
		t.Errorf("instance dispatch = %q, want %q", got, "leaf")
	}

	// Leaf declares Mid as its supertype, so resolution through super
	// starts after Mid and lands on Base, skipping Mid's override.
	sup, err := Super[shapeLeaf](rt, inst)
	if err != nil {
		t.Fatalf("Super: %v", err)
	}
	if got := callDescribe(t, rt, sup); got != "base" {
		t.Errorf("super dispatch = %q, want %q", got, "base")
	}

	sup.Decref()
	rt.DecRef(inst)
	rt.AssertNoLeaks(t, snap)
}

func TestSuperFromMiddle(t *testing.T) {
	rt := newFake(t)
	_, midCls, _ := buildShapes(rt)
	snap := rt.Snapshot()

	inst := rt.NewInstance(midCls)

	// Mid declares Base, and nothing sits above Base's override.
	sup, err := Super[shapeMid](rt, inst)
	if err != nil {
		t.Fatalf("Super: %v", err)
	}
	if got := callDescribe(t, rt, sup); got != "base" {
		t.Errorf("super dispatch = %q, want %q", got, "base")
	}

	sup.Decref()
	rt.DecRef(inst)
	rt.AssertNoLeaks(t, snap)
}

func TestSuperWithoutDeclaredSupertype(t *testing.T) {
	rt := newFake(t)
	baseCls, _, _ := buildShapes(rt)

	inst := rt.NewInstance(baseCls)
	defer rt.DecRef(inst)

	_, err := Super[shapeBase](rt, inst)
	if err == nil {
		t.Fatal("Super on a type without a supertype succeeded")
	}
	var be *errors.Error
	if !stderrors.As(err, &be) || be.Kind != errors.KindUnsupported {
		t.Errorf("error = %v, want unsupported", err)
	}
}

func TestSuperInstanceMismatch(t *testing.T) {
	rt := newFake(t)
	buildShapes(rt)
	snap := rt.Snapshot()

	// An int is not an instance of Mid; the super constructor raises.
	_, err := Super[shapeLeaf](rt, 5)
	if !errors.IsForeignRaised(err) {
		t.Fatalf("Super with foreign instance = %v, want foreign raise", err)
	}
	rt.ErrClear()
	rt.AssertNoLeaks(t, snap)
}

func TestIsInstanceWalksUserHierarchy(t *testing.T) {
	rt := newFake(t)
	baseCls, _, leafCls := buildShapes(rt)
	snap := rt.Snapshot()

	inst := rt.NewInstance(leafCls)

	got, err := IsInstance(rt, inst, baseCls)
	if err != nil {
		t.Fatalf("IsInstance: %v", err)
	}
	if !got {
		t.Error("leaf instance not recognized as Base")
	}

	rt.DecRef(inst)
	rt.AssertNoLeaks(t, snap)
}
