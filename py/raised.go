package py

import (
	pydust "github.com/hosackm/ziggy-pydust"
)

// Raised is the pending interpreter error, drained from the runtime's
// error slot. All three objects are owned; Close releases them.
//
// Fetching belongs to consumers (CLIs, tests, embedders) at the point
// where the error is displayed. Core operations never drain the slot:
// they only translate sentinels and propagate KindForeignRaised upward.
type Raised struct {
	Type      Object
	Value     Object
	Traceback Object

	rt     pydust.Runtime
	closed bool
}

// FetchRaised drains the pending-error slot. It returns false when no
// error is pending.
func FetchRaised(rt pydust.Runtime) (*Raised, bool) {
	if !rt.ErrOccurred() {
		return nil, false
	}
	typ, val, tb := rt.ErrFetch()
	return &Raised{
		Type:      NewObject(rt, typ),
		Value:     NewObject(rt, val),
		Traceback: NewObject(rt, tb),
		rt:        rt,
	}, true
}

// Close releases the fetched triple. Safe to call more than once.
func (r *Raised) Close() {
	if r.closed {
		return
	}
	r.closed = true
	for _, o := range []Object{r.Type, r.Value, r.Traceback} {
		if !o.IsNull() {
			o.Decref()
		}
	}
}

// String renders the error as "ExcType: message" for display.
func (r *Raised) String() string {
	var name, msg string
	if !r.Type.IsNull() {
		if n, ok := r.rt.TypeName(r.Type.h); ok {
			name = n
		} else {
			r.rt.ErrClear() // display must not leave a new pending error
		}
	}
	if !r.Value.IsNull() {
		if s, err := StrOf(r.rt, r.Value); err == nil {
			defer s.Decref()
			msg, _ = s.Value()
		} else {
			r.rt.ErrClear()
		}
	}
	switch {
	case name == "" && msg == "":
		return "unknown foreign error"
	case name == "":
		return msg
	case msg == "":
		return name
	}
	return name + ": " + msg
}
