package pydusttest

import (
	"strconv"
	"strings"

	pydust "github.com/hosackm/ziggy-pydust"
)

// Creation.

func (f *Fake) newStr(s string) pydust.Handle {
	return f.alloc(&object{kind: kindStr, typ: f.types[pydust.TypeStr], s: s})
}

// NewLong implements pydust.Runtime.
func (f *Fake) NewLong(v int64) pydust.Handle {
	f.record("new_long")
	if f.failNow("new_long") {
		return pydust.Null
	}
	return f.alloc(&object{kind: kindInt, typ: f.types[pydust.TypeInt], i: v})
}

// NewFloat implements pydust.Runtime.
func (f *Fake) NewFloat(v float64) pydust.Handle {
	f.record("new_float")
	if f.failNow("new_float") {
		return pydust.Null
	}
	return f.alloc(&object{kind: kindFloat, typ: f.types[pydust.TypeFloat], f: v})
}

// NewString implements pydust.Runtime.
func (f *Fake) NewString(s string) pydust.Handle {
	f.record("new_string")
	if f.failNow("new_string") {
		return pydust.Null
	}
	return f.newStr(s)
}

// NewTuple implements pydust.Runtime. Items are borrowed; the tuple takes
// its own references.
func (f *Fake) NewTuple(items []pydust.Handle) pydust.Handle {
	f.record("new_tuple")
	if f.failNow("new_tuple") {
		return pydust.Null
	}
	owned := make([]pydust.Handle, len(items))
	for i, it := range items {
		f.get(it).refs++
		owned[i] = it
	}
	return f.alloc(&object{kind: kindTuple, typ: f.types[pydust.TypeTuple], items: owned})
}

// NewDict implements pydust.Runtime.
func (f *Fake) NewDict() pydust.Handle {
	f.record("new_dict")
	if f.failNow("new_dict") {
		return pydust.Null
	}
	return f.alloc(&object{
		kind:    kindDict,
		typ:     f.types[pydust.TypeDict],
		attrs:   make(map[string]pydust.Handle),
		keyRepr: make(map[string]string),
	})
}

// Object protocol.

// Length implements pydust.Runtime.
func (f *Fake) Length(h pydust.Handle) int64 {
	f.record("length")
	if f.failNow("length") {
		return -1
	}
	o := f.get(h)
	switch o.kind {
	case kindStr:
		return int64(len(o.s))
	case kindTuple:
		return int64(len(o.items))
	case kindDict:
		return int64(len(o.attrs))
	default:
		f.setError("TypeError", "object of type '"+f.typeNameOf(h)+"' has no len()")
		return -1
	}
}

// CallableCheck implements pydust.Runtime.
func (f *Fake) CallableCheck(h pydust.Handle) int32 {
	f.record("callable_check")
	switch f.get(h).kind {
	case kindType, kindFunc:
		return 1
	default:
		return 0
	}
}

// IsInstance implements pydust.Runtime.
func (f *Fake) IsInstance(obj, cls pydust.Handle) int32 {
	f.record("isinstance")
	if f.failNow("isinstance") {
		return -1
	}
	if f.get(cls).kind != kindType {
		f.setError("TypeError", "isinstance() arg 2 must be a type")
		return -1
	}
	if f.isInstanceOf(obj, cls) {
		return 1
	}
	return 0
}

// isInstanceOf walks obj's type chain looking for cls.
func (f *Fake) isInstanceOf(obj, cls pydust.Handle) bool {
	for _, t := range f.typeChain(f.get(obj).typ) {
		if t == cls {
			return true
		}
	}
	return false
}

// typeChain returns the single-parent resolution order starting at t.
func (f *Fake) typeChain(t pydust.Handle) []pydust.Handle {
	var chain []pydust.Handle
	for t != pydust.Null {
		chain = append(chain, t)
		t = f.get(t).base
	}
	return chain
}

// IsTrue implements pydust.Runtime.
func (f *Fake) IsTrue(h pydust.Handle) int32 {
	f.record("is_true")
	if f.failNow("is_true") {
		return -1
	}
	o := f.get(h)
	truth := func(b bool) int32 {
		if b {
			return 1
		}
		return 0
	}
	switch o.kind {
	case kindNone:
		return 0
	case kindBool, kindInt:
		return truth(o.i != 0)
	case kindFloat:
		return truth(o.f != 0)
	case kindStr:
		return truth(len(o.s) != 0)
	case kindTuple:
		return truth(len(o.items) != 0)
	case kindDict:
		return truth(len(o.attrs) != 0)
	default:
		return 1
	}
}

// Contains implements pydust.Runtime.
func (f *Fake) Contains(container, item pydust.Handle) int32 {
	f.record("contains")
	if f.failNow("contains") {
		return -1
	}
	c := f.get(container)
	switch c.kind {
	case kindTuple:
		for _, it := range c.items {
			if f.eq(it, item) {
				return 1
			}
		}
		return 0
	case kindDict:
		key, ok := f.hashKey(item)
		if !ok {
			f.setError("TypeError", "unhashable type: '"+f.typeNameOf(item)+"'")
			return -1
		}
		if _, present := c.attrs[key]; present {
			return 1
		}
		return 0
	case kindStr:
		it := f.get(item)
		if it.kind != kindStr {
			f.setError("TypeError", "'in <string>' requires string as left operand")
			return -1
		}
		if strings.Contains(c.s, it.s) {
			return 1
		}
		return 0
	default:
		f.setError("TypeError", "argument of type '"+f.typeNameOf(container)+"' is not a container")
		return -1
	}
}

// RichCompareBool implements pydust.Runtime.
func (f *Fake) RichCompareBool(a, b pydust.Handle, op pydust.CompareOp) int32 {
	f.record("richcompare")
	if f.failNow("richcompare") {
		return -1
	}
	truth := func(v bool) int32 {
		if v {
			return 1
		}
		return 0
	}
	switch op {
	case pydust.EQ:
		return truth(f.eq(a, b))
	case pydust.NE:
		return truth(!f.eq(a, b))
	}
	cmp, ok := f.order(a, b)
	if !ok {
		f.setError("TypeError", "'"+op.String()+"' not supported between '"+
			f.typeNameOf(a)+"' and '"+f.typeNameOf(b)+"'")
		return -1
	}
	switch op {
	case pydust.LT:
		return truth(cmp < 0)
	case pydust.LE:
		return truth(cmp <= 0)
	case pydust.GT:
		return truth(cmp > 0)
	case pydust.GE:
		return truth(cmp >= 0)
	}
	f.setError("SystemError", "bad comparison op")
	return -1
}

// Str implements pydust.Runtime.
func (f *Fake) Str(h pydust.Handle) pydust.Handle {
	f.record("str")
	if f.failNow("str") {
		return pydust.Null
	}
	return f.newStr(f.strText(h))
}

// Repr implements pydust.Runtime.
func (f *Fake) Repr(h pydust.Handle) pydust.Handle {
	f.record("repr")
	if f.failNow("repr") {
		return pydust.Null
	}
	return f.newStr(f.reprText(h))
}

// TypeOf implements pydust.Runtime.
func (f *Fake) TypeOf(h pydust.Handle) pydust.Handle {
	f.record("type_of")
	if f.failNow("type_of") {
		return pydust.Null
	}
	t := f.get(h).typ
	f.get(t).refs++
	return t
}

// SequenceToTuple implements pydust.Runtime.
func (f *Fake) SequenceToTuple(h pydust.Handle) pydust.Handle {
	f.record("sequence_to_tuple")
	if f.failNow("sequence_to_tuple") {
		return pydust.Null
	}
	o := f.get(h)
	switch o.kind {
	case kindTuple:
		items := make([]pydust.Handle, len(o.items))
		for i, it := range o.items {
			f.get(it).refs++
			items[i] = it
		}
		return f.alloc(&object{kind: kindTuple, typ: f.types[pydust.TypeTuple], items: items})
	case kindStr:
		items := make([]pydust.Handle, 0, len(o.s))
		for _, r := range o.s {
			items = append(items, f.newStr(string(r)))
		}
		return f.alloc(&object{kind: kindTuple, typ: f.types[pydust.TypeTuple], items: items})
	case kindDict:
		// iterating a dict yields its keys
		items := make([]pydust.Handle, 0, len(o.keys))
		for _, k := range o.keys {
			items = append(items, f.newStr(o.keyRepr[k]))
		}
		return f.alloc(&object{kind: kindTuple, typ: f.types[pydust.TypeTuple], items: items})
	default:
		f.setError("TypeError", "'"+f.typeNameOf(h)+"' object is not iterable")
		return pydust.Null
	}
}

// Call implements pydust.Runtime.
func (f *Fake) Call(fn pydust.Handle, args []pydust.Handle) pydust.Handle {
	f.record("call")
	if f.failNow("call") {
		return pydust.Null
	}
	o := f.get(fn)
	switch o.kind {
	case kindFunc:
		return o.fn(f, args)
	case kindType:
		return f.construct(fn, args)
	default:
		f.setError("TypeError", "'"+f.typeNameOf(fn)+"' object is not callable")
		return pydust.Null
	}
}

// construct dispatches a call on a type object.
func (f *Fake) construct(cls pydust.Handle, args []pydust.Handle) pydust.Handle {
	switch cls {
	case f.types[pydust.TypeDict]:
		return f.constructDict(args)
	case f.types[pydust.TypeStr]:
		if len(args) == 0 {
			return f.newStr("")
		}
		return f.newStr(f.strText(args[0]))
	case f.types[pydust.TypeInt]:
		return f.constructInt(args)
	case f.types[pydust.TypeFloat]:
		return f.constructFloat(args)
	case f.types[pydust.TypeBool]:
		h := f.False()
		if len(args) > 0 {
			switch f.IsTrue(args[0]) {
			case -1:
				return pydust.Null
			case 1:
				h = f.True()
			}
		}
		f.get(h).refs++
		return h
	case f.types[pydust.TypeTuple]:
		if len(args) == 0 {
			return f.alloc(&object{kind: kindTuple, typ: f.types[pydust.TypeTuple]})
		}
		return f.SequenceToTuple(args[0])
	case f.types[pydust.TypeType]:
		if len(args) != 1 {
			f.setError("TypeError", "type() takes 1 argument here")
			return pydust.Null
		}
		return f.TypeOf(args[0])
	case f.types[pydust.TypeSuper]:
		return f.constructSuper(args)
	default:
		// User-declared class: a bare instance, no attribute storage.
		f.get(cls).refs++
		return f.alloc(&object{kind: kindInstance, typ: cls})
	}
}

func (f *Fake) constructDict(args []pydust.Handle) pydust.Handle {
	d := f.NewDict()
	if len(args) == 0 {
		return d
	}
	if len(args) > 1 {
		f.DecRef(d)
		f.setError("TypeError", "dict expected at most 1 argument")
		return pydust.Null
	}
	src := f.get(args[0])
	switch src.kind {
	case kindDict:
		for _, k := range src.keys {
			o := f.get(d)
			v := src.attrs[k]
			f.get(v).refs++
			o.attrs[k] = v
			o.keys = append(o.keys, k)
			o.keyRepr[k] = src.keyRepr[k]
		}
		return d
	case kindTuple:
		for _, pair := range src.items {
			p := f.get(pair)
			if p.kind != kindTuple || len(p.items) != 2 {
				f.DecRef(d)
				f.setError("TypeError", "dict update sequence elements must be pairs")
				return pydust.Null
			}
			if f.DictSetItem(d, p.items[0], p.items[1]) < 0 {
				f.DecRef(d)
				return pydust.Null
			}
		}
		return d
	default:
		f.DecRef(d)
		f.setError("TypeError", "'"+f.typeNameOf(args[0])+"' object is not a mapping")
		return pydust.Null
	}
}

func (f *Fake) constructInt(args []pydust.Handle) pydust.Handle {
	if len(args) == 0 {
		return f.alloc(&object{kind: kindInt, typ: f.types[pydust.TypeInt]})
	}
	o := f.get(args[0])
	switch o.kind {
	case kindInt, kindBool:
		return f.alloc(&object{kind: kindInt, typ: f.types[pydust.TypeInt], i: o.i})
	case kindFloat:
		return f.alloc(&object{kind: kindInt, typ: f.types[pydust.TypeInt], i: int64(o.f)})
	case kindStr:
		v, err := strconv.ParseInt(strings.TrimSpace(o.s), 10, 64)
		if err != nil {
			f.setError("ValueError", "invalid literal for int(): "+strconv.Quote(o.s))
			return pydust.Null
		}
		return f.alloc(&object{kind: kindInt, typ: f.types[pydust.TypeInt], i: v})
	default:
		f.setError("TypeError", "int() argument must be a number or string")
		return pydust.Null
	}
}

func (f *Fake) constructFloat(args []pydust.Handle) pydust.Handle {
	if len(args) == 0 {
		return f.alloc(&object{kind: kindFloat, typ: f.types[pydust.TypeFloat]})
	}
	o := f.get(args[0])
	switch o.kind {
	case kindFloat:
		return f.alloc(&object{kind: kindFloat, typ: f.types[pydust.TypeFloat], f: o.f})
	case kindInt, kindBool:
		return f.alloc(&object{kind: kindFloat, typ: f.types[pydust.TypeFloat], f: float64(o.i)})
	case kindStr:
		v, err := strconv.ParseFloat(strings.TrimSpace(o.s), 64)
		if err != nil {
			f.setError("ValueError", "could not convert string to float: "+strconv.Quote(o.s))
			return pydust.Null
		}
		return f.alloc(&object{kind: kindFloat, typ: f.types[pydust.TypeFloat], f: v})
	default:
		f.setError("TypeError", "float() argument must be a number or string")
		return pydust.Null
	}
}

// constructSuper builds the bound-dispatch object: attribute lookups
// through it resolve strictly after cls in the instance's resolution order.
func (f *Fake) constructSuper(args []pydust.Handle) pydust.Handle {
	if len(args) != 2 {
		f.setError("TypeError", "super() takes exactly 2 arguments here")
		return pydust.Null
	}
	cls, inst := args[0], args[1]
	if f.get(cls).kind != kindType {
		f.setError("TypeError", "super() argument 1 must be a type")
		return pydust.Null
	}
	if !f.isInstanceOf(inst, cls) {
		f.setError("TypeError", "super(type, obj): obj must be an instance or subtype of type")
		return pydust.Null
	}
	f.get(cls).refs++
	f.get(inst).refs++
	return f.alloc(&object{
		kind: kindSuper,
		typ:  f.types[pydust.TypeSuper],
		cls:  cls,
		inst: inst,
	})
}

// Import implements pydust.Runtime.
func (f *Fake) Import(name string) pydust.Handle {
	f.record("import:" + name)
	if f.failNow("import") {
		return pydust.Null
	}
	h, ok := f.modules[name]
	if !ok {
		f.setError("ImportError", "no module named "+strconv.Quote(name))
		return pydust.Null
	}
	f.get(h).refs++
	return h
}

// AttrLookup implements pydust.Runtime. Module-dict semantics: borrowed
// result, Null without a pending error when the attribute is absent.
func (f *Fake) AttrLookup(obj pydust.Handle, name string) pydust.Handle {
	f.record("attr_lookup:" + name)
	if f.failNow("attr_lookup") {
		return pydust.Null
	}
	o := f.get(obj)
	switch o.kind {
	case kindModule:
		return o.attrs[name]
	case kindType:
		return f.lookupInChain(f.typeChain(obj), name)
	case kindInstance:
		return f.lookupInChain(f.typeChain(o.typ), name)
	case kindSuper:
		// Resolution starts strictly after the bound class.
		chain := f.typeChain(f.get(o.inst).typ)
		for i, t := range chain {
			if t == o.cls {
				return f.lookupInChain(chain[i+1:], name)
			}
		}
		return pydust.Null
	default:
		return pydust.Null
	}
}

func (f *Fake) lookupInChain(chain []pydust.Handle, name string) pydust.Handle {
	for _, t := range chain {
		if v, ok := f.get(t).attrs[name]; ok {
			return v
		}
	}
	return pydust.Null
}

// DictSetItem implements pydust.Runtime.
func (f *Fake) DictSetItem(d, k, v pydust.Handle) int32 {
	f.record("dict_set")
	if f.failNow("dict_set") {
		return -1
	}
	o := f.get(d)
	if o.kind != kindDict {
		f.setError("TypeError", "'"+f.typeNameOf(d)+"' object does not support item assignment")
		return -1
	}
	key, ok := f.hashKey(k)
	if !ok {
		f.setError("TypeError", "unhashable type: '"+f.typeNameOf(k)+"'")
		return -1
	}
	f.get(v).refs++
	if old, present := o.attrs[key]; present {
		f.DecRef(old)
	} else {
		o.keys = append(o.keys, key)
		o.keyRepr[key] = f.reprText(k)
	}
	o.attrs[key] = v
	return 0
}

// DictGetItem implements pydust.Runtime.
func (f *Fake) DictGetItem(d, k pydust.Handle) pydust.Handle {
	f.record("dict_get")
	o := f.get(d)
	if o.kind != kindDict {
		f.setError("TypeError", "'"+f.typeNameOf(d)+"' object is not subscriptable")
		return pydust.Null
	}
	key, ok := f.hashKey(k)
	if !ok {
		f.setError("TypeError", "unhashable type: '"+f.typeNameOf(k)+"'")
		return pydust.Null
	}
	return o.attrs[key] // Null without raise when missing
}

// TupleGetItem implements pydust.Runtime.
func (f *Fake) TupleGetItem(t pydust.Handle, i int64) pydust.Handle {
	f.record("tuple_get")
	o := f.get(t)
	if o.kind != kindTuple {
		f.setError("TypeError", "expected a tuple, got '"+f.typeNameOf(t)+"'")
		return pydust.Null
	}
	if i < 0 || i >= int64(len(o.items)) {
		f.setError("IndexError", "tuple index out of range")
		return pydust.Null
	}
	return o.items[i]
}

// Scalar extraction.

// IntAsInt64 implements pydust.Runtime. A genuine -1 value and the failure
// sentinel are indistinguishable; callers probe ErrOccurred.
func (f *Fake) IntAsInt64(h pydust.Handle) int64 {
	f.record("int_as_int64")
	o := f.get(h)
	switch o.kind {
	case kindInt, kindBool:
		return o.i
	default:
		f.setError("TypeError", "an integer is required, not '"+f.typeNameOf(h)+"'")
		return -1
	}
}

// FloatAsDouble implements pydust.Runtime.
func (f *Fake) FloatAsDouble(h pydust.Handle) float64 {
	f.record("float_as_double")
	o := f.get(h)
	switch o.kind {
	case kindFloat:
		return o.f
	case kindInt, kindBool:
		return float64(o.i)
	default:
		f.setError("TypeError", "a float is required, not '"+f.typeNameOf(h)+"'")
		return -1
	}
}

// UnicodeUTF8 implements pydust.Runtime.
func (f *Fake) UnicodeUTF8(h pydust.Handle) (string, bool) {
	f.record("unicode_utf8")
	o := f.get(h)
	if o.kind != kindStr {
		f.setError("TypeError", "expected str, got '"+f.typeNameOf(h)+"'")
		return "", false
	}
	return o.s, true
}

// TypeName implements pydust.Runtime.
func (f *Fake) TypeName(h pydust.Handle) (string, bool) {
	f.record("type_name")
	o := f.get(h)
	if o.kind != kindType {
		f.setError("TypeError", "expected a type, got '"+f.typeNameOf(h)+"'")
		return "", false
	}
	return o.name, true
}
