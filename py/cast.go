package py

import (
	pydust "github.com/hosackm/ziggy-pydust"
	"github.com/hosackm/ziggy-pydust/errors"
)

// downcast verifies v's shape against a statically-known builtin type.
// A mismatch is a native rejection, not a foreign raise: nothing was put
// in the pending-error slot.
func downcast(v Holder, bt pydust.BuiltinType, name string) (Object, error) {
	o := v.Obj()
	switch o.rt.IsInstance(o.h, o.rt.BuiltinTypeHandle(bt)) {
	case 1:
		return o, nil
	case 0:
		return Object{}, errors.New(errors.PhaseCoerce, errors.KindUnsupported).
			Op("as_" + name).
			PyType(name).
			Detail("object is not a %s", name).
			Build()
	default:
		return Object{}, errors.ForeignRaised(errors.PhaseCoerce, "isinstance")
	}
}

// AsDict checks that v is a mapping and returns it as a Dict. The wrapper
// shares v's handle; no reference counts change.
func AsDict(v Holder) (Dict, error) {
	o, err := downcast(v, pydust.TypeDict, "dict")
	if err != nil {
		return Dict{}, err
	}
	return Dict{o}, nil
}

// AsTuple checks that v is a tuple and returns it as a Tuple.
func AsTuple(v Holder) (Tuple, error) {
	o, err := downcast(v, pydust.TypeTuple, "tuple")
	if err != nil {
		return Tuple{}, err
	}
	return Tuple{o}, nil
}

// AsStr checks that v is a string object and returns it as a Str.
func AsStr(v Holder) (Str, error) {
	o, err := downcast(v, pydust.TypeStr, "str")
	if err != nil {
		return Str{}, err
	}
	return Str{o}, nil
}

// AsLong checks that v is an integer and returns it as a Long.
func AsLong(v Holder) (Long, error) {
	o, err := downcast(v, pydust.TypeInt, "int")
	if err != nil {
		return Long{}, err
	}
	return Long{o}, nil
}

// AsFloat checks that v is a float and returns it as a Float.
func AsFloat(v Holder) (Float, error) {
	o, err := downcast(v, pydust.TypeFloat, "float")
	if err != nil {
		return Float{}, err
	}
	return Float{o}, nil
}

// AsBool checks that v is a boolean and returns it as a Bool.
func AsBool(v Holder) (Bool, error) {
	o, err := downcast(v, pydust.TypeBool, "bool")
	if err != nil {
		return Bool{}, err
	}
	return Bool{o}, nil
}

// AsType checks that v is a class object and returns it as a Type.
func AsType(v Holder) (Type, error) {
	o, err := downcast(v, pydust.TypeType, "type")
	if err != nil {
		return Type{}, err
	}
	return Type{o}, nil
}
