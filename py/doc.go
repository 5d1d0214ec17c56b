// Package py implements the object bridge: coercion of Go values to
// interpreter handles, the ownership discipline around them, and the
// builtin operation catalog (length, truthiness, containment, instance
// checks, stringification, imports, attribute lookup, dynamic-dispatch
// supertype resolution).
//
// # Ownership
//
// Object is a naked handle plus its runtime; it carries no ownership tag.
// Ref pairs an Object with one: owned Refs release exactly once, borrowed
// Refs never release. Every coercion returns a Ref so call sites can write
//
//	ref, err := py.From(rt, v)
//	if err != nil {
//	    return err
//	}
//	defer ref.Decref()
//
// and be correct for both modes: Decref is a no-op on borrowed Refs and
// idempotent on owned ones.
//
// Operations returning wrappers (StrOf, DictOf, TupleOf, TypeOf, Import,
// Call, Self, Super) hand the caller an owned object that must be released
// with Decref exactly once. GetAttr is the exception: it returns a borrowed
// attribute valid only while the holder retains the object it was fetched
// from; use Incref to keep it longer.
//
// # Failure
//
// Every fallible operation checks the ABI sentinel immediately and returns
// a KindForeignRaised error, releasing any owned intermediate handles
// first. The pending-error slot is left untouched for FetchRaised.
package py
