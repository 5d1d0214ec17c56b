package py

import (
	"fmt"

	pydust "github.com/hosackm/ziggy-pydust"
	"github.com/hosackm/ziggy-pydust/errors"
)

// From normalizes v to a handle. It is the single entry point every
// operation routes through, with two modes that must never be conflated:
//
//   - borrow-through: v already carries a handle (a Ref, an Object or
//     wrapper, or a raw pydust.Handle). The same underlying object is
//     returned as a borrowed Ref; no reference count changes.
//   - own-new: v is a native Go value. A new foreign object is created and
//     returned as an owned Ref the caller must release.
//
// Either way, `defer ref.Decref()` after a successful From is correct.
func From(rt pydust.Runtime, v any) (Ref, error) {
	switch x := v.(type) {
	case Ref:
		return Borrowed(x.Obj()), nil
	case *Ref:
		return Borrowed(x.Obj()), nil
	case Holder:
		return Borrowed(x.Obj()), nil
	case pydust.Handle:
		return Borrowed(NewObject(rt, x)), nil
	default:
		return Create(rt, v)
	}
}

// Create converts a native Go value into a foreign object, always
// returning an owned Ref. Singletons (nil, booleans) are acquired before
// being handed out, so the owned contract holds for them too.
func Create(rt pydust.Runtime, v any) (Ref, error) {
	switch x := v.(type) {
	case nil:
		return singleton(rt, rt.None()), nil
	case bool:
		if x {
			return singleton(rt, rt.True()), nil
		}
		return singleton(rt, rt.False()), nil
	case int:
		return createLong(rt, int64(x))
	case int32:
		return createLong(rt, int64(x))
	case int64:
		return createLong(rt, x)
	case uint32:
		return createLong(rt, int64(x))
	case float32:
		return createFloat(rt, float64(x))
	case float64:
		return createFloat(rt, x)
	case string:
		h := rt.NewString(x)
		if h == pydust.Null {
			return Ref{}, errors.ForeignRaised(errors.PhaseCreate, "str")
		}
		return Owned(NewObject(rt, h)), nil
	case []any:
		return createTuple(rt, x)
	case map[string]any:
		return createDict(rt, x)
	case Holder, Ref, *Ref, pydust.Handle:
		// Promote an existing handle to a new owned reference.
		ref, err := From(rt, v)
		if err != nil {
			return Ref{}, err
		}
		return ref.Obj().NewRef(), nil
	default:
		return Ref{}, errors.Unsupported(errors.PhaseCoerce, fmt.Sprintf("%T", v),
			"no conversion to a Python object")
	}
}

// singleton hands out a process-wide object: acquire first, never let the
// caller's release drop it to zero.
func singleton(rt pydust.Runtime, h pydust.Handle) Ref {
	o := NewObject(rt, h)
	o.Incref()
	return Owned(o)
}

func createLong(rt pydust.Runtime, v int64) (Ref, error) {
	h := rt.NewLong(v)
	if h == pydust.Null {
		return Ref{}, errors.ForeignRaised(errors.PhaseCreate, "int")
	}
	return Owned(NewObject(rt, h)), nil
}

func createFloat(rt pydust.Runtime, v float64) (Ref, error) {
	h := rt.NewFloat(v)
	if h == pydust.Null {
		return Ref{}, errors.ForeignRaised(errors.PhaseCreate, "float")
	}
	return Owned(NewObject(rt, h)), nil
}

func createTuple(rt pydust.Runtime, items []any) (Ref, error) {
	refs := make([]Ref, 0, len(items))
	release := func() {
		for i := range refs {
			refs[i].Decref()
		}
	}

	handles := make([]pydust.Handle, 0, len(items))
	for _, it := range items {
		ref, err := From(rt, it)
		if err != nil {
			release()
			return Ref{}, err
		}
		refs = append(refs, ref)
		handles = append(handles, ref.Handle())
	}

	h := rt.NewTuple(handles)
	release() // the tuple holds its own references now
	if h == pydust.Null {
		return Ref{}, errors.ForeignRaised(errors.PhaseCreate, "tuple")
	}
	return Owned(NewObject(rt, h)), nil
}

func createDict(rt pydust.Runtime, m map[string]any) (Ref, error) {
	dh := rt.NewDict()
	if dh == pydust.Null {
		return Ref{}, errors.ForeignRaised(errors.PhaseCreate, "dict")
	}
	dict := Owned(NewObject(rt, dh))

	for k, v := range m {
		kh := rt.NewString(k)
		if kh == pydust.Null {
			dict.Decref()
			return Ref{}, errors.ForeignRaised(errors.PhaseCreate, "str")
		}
		key := Owned(NewObject(rt, kh))

		val, err := From(rt, v)
		if err != nil {
			key.Decref()
			dict.Decref()
			return Ref{}, err
		}

		rc := rt.DictSetItem(dh, key.Handle(), val.Handle())
		key.Decref()
		val.Decref()
		if rc < 0 {
			dict.Decref()
			return Ref{}, errors.ForeignRaised(errors.PhaseCreate, "dict_set")
		}
	}
	return dict, nil
}
