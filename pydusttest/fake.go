package pydusttest

import (
	"fmt"

	pydust "github.com/hosackm/ziggy-pydust"
)

type kind uint8

const (
	kindNone kind = iota
	kindBool
	kindInt
	kindFloat
	kindStr
	kindTuple
	kindDict
	kindType
	kindModule
	kindSuper
	kindFunc
	kindInstance
	kindNotImplemented
)

// CallFunc is the body of a fake function object. It receives borrowed
// argument handles and returns an owned handle, or Null after setting a
// pending error on the runtime.
type CallFunc func(rt *Fake, args []pydust.Handle) pydust.Handle

type object struct {
	refs     int64
	kind     kind
	typ      pydust.Handle // owned by instances, borrowed-static otherwise
	immortal bool

	i     int64
	f     float64
	s     string
	items []pydust.Handle // tuple elements, owned

	attrs   map[string]pydust.Handle // dict/module/type members, values owned
	keys    []string                 // insertion order of attrs
	keyRepr map[string]string        // dict key renderings, by hash key

	name string        // type, module, function name
	base pydust.Handle // type's single base, Null for object

	cls, inst pydust.Handle // super payload, owned
	fn        CallFunc
}

type pending struct {
	exc string
	msg string
}

// Fake is an in-memory pydust.Runtime. It is not safe for concurrent use;
// the real interpreter is single-threaded and so is this one.
type Fake struct {
	heap map[pydust.Handle]*object
	next pydust.Handle

	singletons map[string]pydust.Handle
	types      map[pydust.BuiltinType]pydust.Handle
	namedTypes map[string]pydust.Handle
	modules    map[string]pydust.Handle

	err      *pending
	calls    []string
	failures map[string]bool
	closed   bool
}

var _ pydust.Runtime = (*Fake)(nil)

// New builds an isolated fake runtime with the builtin types, singletons
// and an empty module registry.
func New() *Fake {
	f := &Fake{
		heap:       make(map[pydust.Handle]*object),
		singletons: make(map[string]pydust.Handle),
		types:      make(map[pydust.BuiltinType]pydust.Handle),
		namedTypes: make(map[string]pydust.Handle),
		modules:    make(map[string]pydust.Handle),
		failures:   make(map[string]bool),
	}

	objectType := f.alloc(&object{kind: kindType, name: "object", immortal: true})
	f.types[pydust.TypeObject] = objectType

	builtin := func(bt pydust.BuiltinType, name string, base pydust.Handle) pydust.Handle {
		h := f.alloc(&object{kind: kindType, name: name, base: base, immortal: true})
		f.types[bt] = h
		return h
	}
	typeType := builtin(pydust.TypeType, "type", objectType)
	intType := builtin(pydust.TypeInt, "int", objectType)
	builtin(pydust.TypeFloat, "float", objectType)
	builtin(pydust.TypeStr, "str", objectType)
	builtin(pydust.TypeBool, "bool", intType) // bool subclasses int
	builtin(pydust.TypeTuple, "tuple", objectType)
	builtin(pydust.TypeDict, "dict", objectType)
	noneType := builtin(pydust.TypeNone, "NoneType", objectType)
	builtin(pydust.TypeSuper, "super", objectType)
	for _, h := range f.types {
		f.get(h).typ = typeType
	}

	f.singletons["None"] = f.alloc(&object{kind: kindNone, typ: noneType, immortal: true})
	f.singletons["True"] = f.alloc(&object{kind: kindBool, typ: f.types[pydust.TypeBool], i: 1, immortal: true})
	f.singletons["False"] = f.alloc(&object{kind: kindBool, typ: f.types[pydust.TypeBool], i: 0, immortal: true})
	f.singletons["NotImplemented"] = f.alloc(&object{kind: kindNotImplemented, typ: objectType, immortal: true})

	return f
}

// alloc stores o with an initial count of one and returns its handle.
func (f *Fake) alloc(o *object) pydust.Handle {
	f.next++
	o.refs = 1
	f.heap[f.next] = o
	return f.next
}

// get returns the live object behind h, panicking on a dead or unknown
// handle. Use-after-free in bridge code is a bug the fake should catch
// loudly, not model.
func (f *Fake) get(h pydust.Handle) *object {
	o, ok := f.heap[h]
	if !ok {
		panic(fmt.Sprintf("pydusttest: use of dead or unknown handle %d", h))
	}
	return o
}

func (f *Fake) record(op string) {
	if f.closed {
		panic("pydusttest: use of closed runtime: " + op)
	}
	f.calls = append(f.calls, op)
}

// failNow consumes a FailNext injection for op, setting a pending
// RuntimeError when one was armed.
func (f *Fake) failNow(op string) bool {
	if !f.failures[op] {
		return false
	}
	delete(f.failures, op)
	f.setError("RuntimeError", "injected failure: "+op)
	return true
}

func (f *Fake) setError(exc, msg string) {
	f.err = &pending{exc: exc, msg: msg}
}

// namedType returns the lazily-created static type object for name. Used
// for exception types and the module/function types, which the ABI never
// exposes as builtins.
func (f *Fake) namedType(name string) pydust.Handle {
	if h, ok := f.namedTypes[name]; ok {
		return h
	}
	h := f.alloc(&object{
		kind:     kindType,
		typ:      f.types[pydust.TypeType],
		name:     name,
		base:     f.types[pydust.TypeObject],
		immortal: true,
	})
	f.namedTypes[name] = h
	return h
}

// FailNext arms a one-shot failure for the named ABI operation: the next
// call of op returns its sentinel with a pending RuntimeError. Operation
// names follow the ABI method in snake case: "import", "attr_lookup",
// "length", "str", "repr", "call", "isinstance", "sequence_to_tuple",
// "type_of", "is_true", "contains", "richcompare", "new_long", "new_float",
// "new_string", "new_tuple", "new_dict", "dict_set".
func (f *Fake) FailNext(op string) {
	f.failures[op] = true
}

// FailNextImport is shorthand for FailNext("import").
func (f *Fake) FailNextImport() {
	f.FailNext("import")
}

// Calls returns the recorded ABI operations since construction or the last
// ResetCalls. Import and attribute lookups carry their argument, e.g.
// "import:pkg.sub" and "attr_lookup:Widget".
func (f *Fake) Calls() []string {
	out := make([]string, len(f.calls))
	copy(out, f.calls)
	return out
}

// ResetCalls clears the recorded operation log.
func (f *Fake) ResetCalls() {
	f.calls = nil
}

// AddModule registers an importable module and returns its borrowed handle.
// The runtime keeps its own reference for its lifetime.
func (f *Fake) AddModule(name string) pydust.Handle {
	if h, ok := f.modules[name]; ok {
		return h
	}
	h := f.alloc(&object{
		kind:     kindModule,
		typ:      f.namedType("module"),
		name:     name,
		attrs:    make(map[string]pydust.Handle),
		immortal: true,
	})
	f.modules[name] = h
	return h
}

// SetAttr stores v as an attribute of owner (a module, type or instance),
// acquiring its own reference to v.
func (f *Fake) SetAttr(owner pydust.Handle, name string, v pydust.Handle) {
	o := f.get(owner)
	if o.attrs == nil {
		o.attrs = make(map[string]pydust.Handle)
	}
	f.get(v).refs++ // attribute table holds a reference
	if old, ok := o.attrs[name]; ok {
		f.DecRef(old)
	} else {
		o.keys = append(o.keys, name)
	}
	o.attrs[name] = v
}

// AddType creates a class object named name with the given base (Null means
// object), publishes it as an attribute of module, and returns its borrowed
// handle.
func (f *Fake) AddType(module pydust.Handle, name string, base pydust.Handle) pydust.Handle {
	if base == pydust.Null {
		base = f.types[pydust.TypeObject]
	}
	h := f.alloc(&object{
		kind:     kindType,
		typ:      f.types[pydust.TypeType],
		name:     name,
		base:     base,
		immortal: true,
	})
	f.SetAttr(module, name, h)
	return h
}

// NewFunction creates a function object and returns an owned handle.
func (f *Fake) NewFunction(name string, fn CallFunc) pydust.Handle {
	return f.alloc(&object{
		kind: kindFunc,
		typ:  f.namedType("function"),
		name: name,
		fn:   fn,
	})
}

// DefMethod defines a method on a class object, donating the function
// object to the class.
func (f *Fake) DefMethod(typ pydust.Handle, name string, fn CallFunc) {
	fh := f.NewFunction(name, fn)
	f.SetAttr(typ, name, fh)
	f.DecRef(fh) // attribute table keeps the only reference
}

// AttrNames returns the attribute names of a module, type or instance in
// insertion order. Harness introspection; not part of the ABI.
func (f *Fake) AttrNames(h pydust.Handle) []string {
	o := f.get(h)
	out := make([]string, len(o.keys))
	copy(out, o.keys)
	return out
}

// NewInstance creates an instance of the given class object and returns an
// owned handle.
func (f *Fake) NewInstance(cls pydust.Handle) pydust.Handle {
	c := f.get(cls)
	if c.kind != kindType {
		panic(fmt.Sprintf("pydusttest: NewInstance of non-type %q", f.reprText(cls)))
	}
	c.refs++ // instance holds its class
	return f.alloc(&object{kind: kindInstance, typ: cls})
}

// IncRef implements pydust.Runtime.
func (f *Fake) IncRef(h pydust.Handle) {
	f.get(h).refs++
}

// DecRef implements pydust.Runtime. Dropping the last reference destroys
// the object and releases everything it owns. Over-releasing a
// runtime-held immortal (singletons, builtin types, modules) panics.
func (f *Fake) DecRef(h pydust.Handle) {
	o := f.get(h)
	o.refs--
	if o.refs > 0 {
		return
	}
	if o.refs < 0 || o.immortal {
		panic(fmt.Sprintf("pydusttest: over-released handle %d (%s)", h, f.reprText(h)))
	}
	f.destroy(h, o)
}

func (f *Fake) destroy(h pydust.Handle, o *object) {
	delete(f.heap, h)
	for _, it := range o.items {
		f.DecRef(it)
	}
	for _, v := range o.attrs {
		f.DecRef(v)
	}
	if o.kind == kindSuper {
		f.DecRef(o.cls)
		f.DecRef(o.inst)
	}
	if o.kind == kindInstance {
		f.DecRef(o.typ)
	}
}

// RefCount implements pydust.Runtime.
func (f *Fake) RefCount(h pydust.Handle) int64 {
	return f.get(h).refs
}

// None implements pydust.Runtime.
func (f *Fake) None() pydust.Handle { return f.singletons["None"] }

// True implements pydust.Runtime.
func (f *Fake) True() pydust.Handle { return f.singletons["True"] }

// False implements pydust.Runtime.
func (f *Fake) False() pydust.Handle { return f.singletons["False"] }

// NotImplemented implements pydust.Runtime.
func (f *Fake) NotImplemented() pydust.Handle { return f.singletons["NotImplemented"] }

// BuiltinTypeHandle implements pydust.Runtime.
func (f *Fake) BuiltinTypeHandle(t pydust.BuiltinType) pydust.Handle {
	h, ok := f.types[t]
	if !ok {
		panic(fmt.Sprintf("pydusttest: unknown builtin type %d", t))
	}
	return h
}

// ErrOccurred implements pydust.Runtime.
func (f *Fake) ErrOccurred() bool { return f.err != nil }

// ErrClear implements pydust.Runtime.
func (f *Fake) ErrClear() { f.err = nil }

// ErrFetch implements pydust.Runtime. The returned triple is owned; the
// traceback slot is always None here.
func (f *Fake) ErrFetch() (typ, value, traceback pydust.Handle) {
	if f.err == nil {
		return pydust.Null, pydust.Null, pydust.Null
	}
	typ = f.namedType(f.err.exc)
	f.get(typ).refs++
	value = f.newStr(f.err.msg)
	traceback = f.None()
	f.get(traceback).refs++
	f.err = nil
	return typ, value, traceback
}

// PendingExc returns the pending exception type name and message without
// clearing the slot. Test introspection only; not part of the ABI.
func (f *Fake) PendingExc() (exc, msg string, ok bool) {
	if f.err == nil {
		return "", "", false
	}
	return f.err.exc, f.err.msg, true
}

// Close implements pydust.Runtime.
func (f *Fake) Close() error {
	f.closed = true
	return nil
}
