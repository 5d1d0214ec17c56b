package pydusttest

import (
	"math"
	"strconv"
	"strings"

	pydust "github.com/hosackm/ziggy-pydust"
)

// typeNameOf renders the type name of a value for error messages.
func (f *Fake) typeNameOf(h pydust.Handle) string {
	t := f.get(h).typ
	if t == pydust.Null {
		return "object"
	}
	return f.get(t).name
}

// strText renders str(h).
func (f *Fake) strText(h pydust.Handle) string {
	if o := f.get(h); o.kind == kindStr {
		return o.s
	}
	return f.reprText(h)
}

// reprText renders repr(h).
func (f *Fake) reprText(h pydust.Handle) string {
	o := f.get(h)
	switch o.kind {
	case kindNone:
		return "None"
	case kindNotImplemented:
		return "NotImplemented"
	case kindBool:
		if o.i != 0 {
			return "True"
		}
		return "False"
	case kindInt:
		return strconv.FormatInt(o.i, 10)
	case kindFloat:
		s := strconv.FormatFloat(o.f, 'g', -1, 64)
		if !strings.ContainsAny(s, ".eE") && !math.IsInf(o.f, 0) && !math.IsNaN(o.f) {
			s += ".0"
		}
		return s
	case kindStr:
		return "'" + o.s + "'"
	case kindTuple:
		parts := make([]string, len(o.items))
		for i, it := range o.items {
			parts[i] = f.reprText(it)
		}
		if len(parts) == 1 {
			return "(" + parts[0] + ",)"
		}
		return "(" + strings.Join(parts, ", ") + ")"
	case kindDict:
		parts := make([]string, 0, len(o.keys))
		for _, k := range o.keys {
			parts = append(parts, o.keyRepr[k]+": "+f.reprText(o.attrs[k]))
		}
		return "{" + strings.Join(parts, ", ") + "}"
	case kindType:
		return "<class '" + o.name + "'>"
	case kindModule:
		return "<module '" + o.name + "'>"
	case kindFunc:
		return "<function " + o.name + ">"
	case kindSuper:
		return "<super: " + f.get(o.cls).name + ">"
	case kindInstance:
		return "<" + f.typeNameOf(h) + " object>"
	}
	return "<unknown>"
}

// hashKey maps a hashable value to its dictionary key. Numeric values that
// compare equal share a key, matching Python hashing (d[True] is d[1]).
func (f *Fake) hashKey(h pydust.Handle) (string, bool) {
	o := f.get(h)
	switch o.kind {
	case kindNone:
		return "n", true
	case kindBool, kindInt:
		return "i:" + strconv.FormatInt(o.i, 10), true
	case kindFloat:
		if o.f == math.Trunc(o.f) && !math.IsInf(o.f, 0) {
			return "i:" + strconv.FormatInt(int64(o.f), 10), true
		}
		return "f:" + strconv.FormatFloat(o.f, 'g', -1, 64), true
	case kindStr:
		return "s:" + o.s, true
	default:
		return "", false
	}
}

// eq implements == semantics: identity, then numeric or string equality.
func (f *Fake) eq(a, b pydust.Handle) bool {
	if a == b {
		return true
	}
	x, y := f.get(a), f.get(b)
	if xv, ok := numeric(x); ok {
		if yv, yok := numeric(y); yok {
			return xv == yv
		}
		return false
	}
	if x.kind == kindStr && y.kind == kindStr {
		return x.s == y.s
	}
	return false
}

// order compares two values when an ordering exists between their types.
func (f *Fake) order(a, b pydust.Handle) (int, bool) {
	x, y := f.get(a), f.get(b)
	if xv, ok := numeric(x); ok {
		if yv, yok := numeric(y); yok {
			switch {
			case xv < yv:
				return -1, true
			case xv > yv:
				return 1, true
			}
			return 0, true
		}
		return 0, false
	}
	if x.kind == kindStr && y.kind == kindStr {
		return strings.Compare(x.s, y.s), true
	}
	return 0, false
}

func numeric(o *object) (float64, bool) {
	switch o.kind {
	case kindBool, kindInt:
		return float64(o.i), true
	case kindFloat:
		return o.f, true
	}
	return 0, false
}
