package py

import (
	pydust "github.com/hosackm/ziggy-pydust"
	"github.com/hosackm/ziggy-pydust/errors"
	"github.com/hosackm/ziggy-pydust/registry"
)

// IsNone reports whether v is the absence singleton. Pure identity
// comparison; no reference counts change and no foreign call can fail.
func IsNone(v Holder) bool {
	o := v.Obj()
	return o.h == o.rt.None()
}

// Callable reports whether v can be called. Never fails and has no
// ownership implications.
func Callable(v Holder) bool {
	o := v.Obj()
	return o.rt.CallableCheck(o.h) != 0
}

// RefCount reads v's reference count without mutating it.
func RefCount(v Holder) int64 {
	return v.Obj().RefCount()
}

// Len returns the foreign length of v.
func Len(rt pydust.Runtime, v any) (int64, error) {
	ref, err := From(rt, v)
	if err != nil {
		return 0, err
	}
	defer ref.Decref()
	return checkLen(rt.Length(ref.Handle()), "len")
}

// IsTrue evaluates v's truthiness.
func IsTrue(rt pydust.Runtime, v any) (bool, error) {
	ref, err := From(rt, v)
	if err != nil {
		return false, err
	}
	defer ref.Decref()
	return checkTri(rt.IsTrue(ref.Handle()), errors.PhaseCall, "is_true")
}

// Contains reports whether container holds item.
func Contains(rt pydust.Runtime, container, item any) (bool, error) {
	c, err := From(rt, container)
	if err != nil {
		return false, err
	}
	defer c.Decref()

	it, err := From(rt, item)
	if err != nil {
		return false, err
	}
	defer it.Decref()

	return checkTri(rt.Contains(c.Handle(), it.Handle()), errors.PhaseCall, "contains")
}

// Compare evaluates `a op b` with Python comparison semantics.
func Compare(rt pydust.Runtime, a any, op pydust.CompareOp, b any) (bool, error) {
	left, err := From(rt, a)
	if err != nil {
		return false, err
	}
	defer left.Decref()

	right, err := From(rt, b)
	if err != nil {
		return false, err
	}
	defer right.Decref()

	return checkTri(rt.RichCompareBool(left.Handle(), right.Handle(), op),
		errors.PhaseCall, "richcompare")
}

// IsInstance reports whether v is an instance of cls.
func IsInstance(rt pydust.Runtime, v, cls any) (bool, error) {
	obj, err := From(rt, v)
	if err != nil {
		return false, err
	}
	defer obj.Decref()

	class, err := From(rt, cls)
	if err != nil {
		return false, err
	}
	defer class.Decref()

	return checkTri(rt.IsInstance(obj.Handle(), class.Handle()), errors.PhaseCall, "isinstance")
}

// StrOf returns str(v) as an owned Str the caller must Decref.
func StrOf(rt pydust.Runtime, v any) (Str, error) {
	ref, err := From(rt, v)
	if err != nil {
		return Str{}, err
	}
	defer ref.Decref()

	o, err := checkOwned(rt, rt.Str(ref.Handle()), errors.PhaseCall, "str")
	if err != nil {
		return Str{}, err
	}
	return Str{o}, nil
}

// Repr returns repr(v) as an owned Str the caller must Decref.
func Repr(rt pydust.Runtime, v any) (Str, error) {
	ref, err := From(rt, v)
	if err != nil {
		return Str{}, err
	}
	defer ref.Decref()

	o, err := checkOwned(rt, rt.Repr(ref.Handle()), errors.PhaseCall, "repr")
	if err != nil {
		return Str{}, err
	}
	return Str{o}, nil
}

// DictOf coerces v to a mapping by calling the dict constructor with v as
// its sole argument. The result is owned.
func DictOf(rt pydust.Runtime, v any) (Dict, error) {
	ref, err := From(rt, v)
	if err != nil {
		return Dict{}, err
	}
	defer ref.Decref()

	ctor := rt.BuiltinTypeHandle(pydust.TypeDict) // borrowed, statically known
	o, err := checkOwned(rt, rt.Call(ctor, []pydust.Handle{ref.Handle()}),
		errors.PhaseCreate, "dict")
	if err != nil {
		return Dict{}, err
	}
	return Dict{o}, nil
}

// TupleOf converts a sequence to a tuple. The result is owned.
func TupleOf(rt pydust.Runtime, v any) (Tuple, error) {
	ref, err := From(rt, v)
	if err != nil {
		return Tuple{}, err
	}
	defer ref.Decref()

	o, err := checkOwned(rt, rt.SequenceToTuple(ref.Handle()), errors.PhaseCreate, "tuple")
	if err != nil {
		return Tuple{}, err
	}
	return Tuple{o}, nil
}

// TypeOf returns type(v) as an owned Type. Failure is defensive: the
// runtime normally answers for any valid handle.
func TypeOf(rt pydust.Runtime, v any) (Type, error) {
	ref, err := From(rt, v)
	if err != nil {
		return Type{}, err
	}
	defer ref.Decref()

	o, err := checkOwned(rt, rt.TypeOf(ref.Handle()), errors.PhaseCall, "type_of")
	if err != nil {
		return Type{}, err
	}
	return Type{o}, nil
}

// Call invokes fn with the given positional arguments, coercing each one.
// The result is owned.
func Call(rt pydust.Runtime, fn any, args ...any) (Object, error) {
	f, err := From(rt, fn)
	if err != nil {
		return Object{}, err
	}
	defer f.Decref()

	refs := make([]Ref, 0, len(args))
	defer func() {
		for i := range refs {
			refs[i].Decref()
		}
	}()

	handles := make([]pydust.Handle, 0, len(args))
	for _, a := range args {
		ref, err := From(rt, a)
		if err != nil {
			return Object{}, err
		}
		refs = append(refs, ref)
		handles = append(handles, ref.Handle())
	}

	return checkOwned(rt, rt.Call(f.Handle(), handles), errors.PhaseCall, "call")
}

// Import imports the named module and returns it owned: the caller must
// Decref it, and borrowed attributes fetched from it die with it.
func Import(rt pydust.Runtime, name string) (Module, error) {
	o, err := checkOwned(rt, rt.Import(name), errors.PhaseImport, name)
	if err != nil {
		return Module{}, err
	}
	return Module{o}, nil
}

// GetAttr fetches an attribute with module-dict semantics. The result is
// borrowed and valid only while the holder retains obj; Incref it to keep
// it longer. A missing attribute without a foreign raise is NotFound.
func GetAttr(rt pydust.Runtime, obj any, name string) (Object, error) {
	ref, err := From(rt, obj)
	if err != nil {
		return Object{}, err
	}
	defer ref.Decref()

	h := rt.AttrLookup(ref.Handle(), name)
	if h == pydust.Null {
		if rt.ErrOccurred() {
			return Object{}, errors.ForeignRaised(errors.PhaseLookup, "attr_lookup")
		}
		return Object{}, errors.NotFound(errors.PhaseLookup, "attribute", name)
	}
	return NewObject(rt, h), nil
}

// Self resolves the foreign counterpart of the native type T: the identity
// record names T's module and identifier, the module is imported, and the
// attribute is fetched by that name. The result is owned (acquired before
// the module reference is dropped).
//
// Resolution is identity-by-name on the registered record; nothing checks
// that the attribute is in fact T's counterpart.
func Self[T any](rt pydust.Runtime) (Object, error) {
	rec := registry.Lookup[T]()

	mod, err := Import(rt, rec.Module)
	if err != nil {
		return Object{}, err
	}
	defer mod.Decref()

	attr, err := GetAttr(rt, mod, rec.Name)
	if err != nil {
		return Object{}, err
	}

	attr.Incref() // outlive the module reference
	return attr, nil
}

// Super builds the bound-dispatch object for the native type T and the
// live instance self: method resolution through the result starts after
// T's declared supertype in the instance's resolution order. The result is
// owned.
//
// Only single-parent chains are supported; T must declare a supertype in
// its identity record, registered in the same module.
func Super[T any](rt pydust.Runtime, self any) (Object, error) {
	rec := registry.Lookup[T]()
	if rec.Super == "" {
		return Object{}, errors.Unsupported(errors.PhaseLookup, rec.Name,
			"type declares no supertype")
	}

	inst, err := From(rt, self)
	if err != nil {
		return Object{}, err
	}
	defer inst.Decref()

	mod, err := Import(rt, rec.Module)
	if err != nil {
		return Object{}, err
	}
	defer mod.Decref()

	sup, err := GetAttr(rt, mod, rec.Super)
	if err != nil {
		return Object{}, err
	}

	ctor := rt.BuiltinTypeHandle(pydust.TypeSuper) // borrowed, statically known
	return checkOwned(rt, rt.Call(ctor, []pydust.Handle{sup.Handle(), inst.Handle()}),
		errors.PhaseCall, "super")
}
