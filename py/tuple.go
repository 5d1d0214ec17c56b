package py

import (
	pydust "github.com/hosackm/ziggy-pydust"
	"github.com/hosackm/ziggy-pydust/errors"
)

// Tuple is a sequence-shaped wrapper around an immutable foreign sequence.
type Tuple struct {
	Object
}

// NewTuple creates a tuple from the given values, coercing each. The
// result is owned.
func NewTuple(rt pydust.Runtime, items ...any) (Tuple, error) {
	ref, err := createTuple(rt, items)
	if err != nil {
		return Tuple{}, err
	}
	return Tuple{ref.Steal()}, nil
}

// Len returns the number of elements.
func (t Tuple) Len() (int64, error) {
	return checkLen(t.rt.Length(t.h), "len")
}

// Get returns the element at index i as a borrowed object, valid while the
// tuple retains it.
func (t Tuple) Get(i int64) (Object, error) {
	h := t.rt.TupleGetItem(t.h, i)
	if h == pydust.Null {
		return Object{}, errors.ForeignRaised(errors.PhaseLookup, "tuple_get")
	}
	return NewObject(t.rt, h), nil
}
