package py

import (
	pydust "github.com/hosackm/ziggy-pydust"
)

// Object is a handle paired with the runtime that issued it. It carries no
// ownership information; see Ref for the tagged form.
type Object struct {
	rt pydust.Runtime
	h  pydust.Handle
}

// NewObject wraps a raw handle. Ownership of h is whatever the producing
// call documented; NewObject does not change it.
func NewObject(rt pydust.Runtime, h pydust.Handle) Object {
	return Object{rt: rt, h: h}
}

// Runtime returns the runtime that issued the handle.
func (o Object) Runtime() pydust.Runtime { return o.rt }

// Handle returns the raw handle.
func (o Object) Handle() pydust.Handle { return o.h }

// IsNull reports whether the object is the null sentinel.
func (o Object) IsNull() bool { return o.h == pydust.Null }

// Obj implements Holder.
func (o Object) Obj() Object { return o }

// Incref acquires one reference: call it to retain a borrowed handle
// beyond its supplying call.
func (o Object) Incref() {
	o.rt.IncRef(o.h)
}

// Decref releases one owned reference. Releasing the last reference may
// run interpreter finalizers; do not hold native locks across it.
func (o Object) Decref() {
	o.rt.DecRef(o.h)
}

// RefCount reads the current reference count without mutating it.
func (o Object) RefCount() int64 {
	return o.rt.RefCount(o.h)
}

// NewRef acquires a reference and returns it as an owned Ref.
func (o Object) NewRef() Ref {
	o.Incref()
	return Owned(o)
}

// Holder is anything carrying exactly one foreign object: Object itself
// and every typed wrapper.
type Holder interface {
	Obj() Object
}

// Ref is an ownership-tagged reference. The zero Ref is a released,
// borrowed null.
type Ref struct {
	obj   Object
	owned bool
}

// Owned tags o as owned: the holder must release it exactly once.
func Owned(o Object) Ref {
	return Ref{obj: o, owned: true}
}

// Borrowed tags o as borrowed: the holder must not release it.
func Borrowed(o Object) Ref {
	return Ref{obj: o}
}

// Obj implements Holder.
func (r Ref) Obj() Object { return r.obj }

// Handle returns the underlying raw handle.
func (r Ref) Handle() pydust.Handle { return r.obj.h }

// Owned reports whether the Ref still owns a reference.
func (r Ref) Owned() bool { return r.owned }

// Decref releases the reference when owned, and is idempotent: a scoped
//
//	defer ref.Decref()
//
// stays correct next to an explicit early release on another path.
func (r *Ref) Decref() {
	if !r.owned {
		return
	}
	r.owned = false
	r.obj.Decref()
}

// Steal transfers ownership to the caller: the Ref forgets the reference
// and its Decref becomes a no-op. Calling Steal on a borrowed Ref panics;
// it would fabricate ownership that was never acquired.
func (r *Ref) Steal() Object {
	if !r.owned {
		panic("py: Steal of a borrowed or already-released Ref")
	}
	r.owned = false
	return r.obj
}
