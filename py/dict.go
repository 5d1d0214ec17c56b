package py

import (
	pydust "github.com/hosackm/ziggy-pydust"
	"github.com/hosackm/ziggy-pydust/errors"
)

// Dict is a mapping-shaped wrapper. It holds exactly one handle; ownership
// follows the call that produced it.
type Dict struct {
	Object
}

// NewDict creates an empty mapping. The result is owned.
func NewDict(rt pydust.Runtime) (Dict, error) {
	o, err := checkOwned(rt, rt.NewDict(), errors.PhaseCreate, "dict")
	if err != nil {
		return Dict{}, err
	}
	return Dict{o}, nil
}

// Set stores v under k, coercing both.
func (d Dict) Set(k, v any) error {
	key, err := From(d.rt, k)
	if err != nil {
		return err
	}
	defer key.Decref()

	val, err := From(d.rt, v)
	if err != nil {
		return err
	}
	defer val.Decref()

	return checkStatus(d.rt.DictSetItem(d.h, key.Handle(), val.Handle()),
		errors.PhaseCall, "dict_set")
}

// Get returns the value stored under k as a borrowed object, valid while
// the dict retains it. A missing key without a foreign raise is NotFound.
func (d Dict) Get(k any) (Object, error) {
	key, err := From(d.rt, k)
	if err != nil {
		return Object{}, err
	}
	defer key.Decref()

	h := d.rt.DictGetItem(d.h, key.Handle())
	if h == pydust.Null {
		if d.rt.ErrOccurred() {
			return Object{}, errors.ForeignRaised(errors.PhaseLookup, "dict_get")
		}
		name := "?"
		if s, ok := k.(string); ok {
			name = s
		}
		return Object{}, errors.NotFound(errors.PhaseLookup, "key", name)
	}
	return NewObject(d.rt, h), nil
}

// Contains reports whether k is a key of the mapping.
func (d Dict) Contains(k any) (bool, error) {
	return Contains(d.rt, d, k)
}

// Len returns the number of entries.
func (d Dict) Len() (int64, error) {
	return checkLen(d.rt.Length(d.h), "len")
}
