package pydust

// Handle is an opaque reference to an object on the interpreter heap.
// Handle 0 is the null sentinel and never refers to a live object.
//
// A handle carries no ownership information by itself; whether the holder
// must release it is a property of the call that produced it. See py.Ref
// for the ownership-tagged form.
type Handle uint32

// Null is the handle-returning failure sentinel.
const Null Handle = 0

// CompareOp selects the relation for RichCompareBool. Values match
// CPython's Py_LT..Py_GE constants.
type CompareOp int32

const (
	LT CompareOp = 0
	LE CompareOp = 1
	EQ CompareOp = 2
	NE CompareOp = 3
	GT CompareOp = 4
	GE CompareOp = 5
)

func (op CompareOp) String() string {
	switch op {
	case LT:
		return "<"
	case LE:
		return "<="
	case EQ:
		return "=="
	case NE:
		return "!="
	case GT:
		return ">"
	case GE:
		return ">="
	}
	return "??"
}

// BuiltinType names the statically-addressed type objects every runtime
// exposes. Their handles are borrowed and live for the runtime's lifetime.
type BuiltinType int32

const (
	TypeObject BuiltinType = iota
	TypeType
	TypeInt
	TypeFloat
	TypeStr
	TypeBool
	TypeTuple
	TypeDict
	TypeNone
	TypeSuper
)

func (t BuiltinType) String() string {
	switch t {
	case TypeObject:
		return "object"
	case TypeType:
		return "type"
	case TypeInt:
		return "int"
	case TypeFloat:
		return "float"
	case TypeStr:
		return "str"
	case TypeBool:
		return "bool"
	case TypeTuple:
		return "tuple"
	case TypeDict:
		return "dict"
	case TypeNone:
		return "NoneType"
	case TypeSuper:
		return "super"
	}
	return "unknown"
}

// Runtime is the C-ABI surface of the interpreter, kept deliberately raw:
// integer-returning calls report failure as -1, handle-returning calls as
// Null, and the detailed error lives in the runtime's pending-error slot
// until a collaborator fetches or clears it. No method here interprets
// sentinels; that is the bridge's job (package py).
//
// Ownership of returned handles follows CPython conventions and is noted
// per method. Callers must not assume success after a sentinel: the next
// ABI call may clobber the pending-error slot.
type Runtime interface {
	// IncRef increments the reference count of h. Used to retain a
	// borrowed handle beyond its supplying call and to hand out
	// singletons.
	IncRef(h Handle)

	// DecRef decrements the reference count of h, destroying the object
	// when it reaches zero. Destruction may run arbitrary interpreter
	// code (finalizers); callers must not hold native locks across it.
	DecRef(h Handle)

	// RefCount reads the current reference count of h without mutating
	// it. Introspection only; never fails for a live handle.
	RefCount(h Handle) int64

	// Singletons. All returned handles are borrowed and process-wide;
	// a holder handing one out must IncRef it first.
	None() Handle
	True() Handle
	False() Handle
	NotImplemented() Handle

	// BuiltinTypeHandle returns the borrowed, statically-known type
	// object for t.
	BuiltinTypeHandle(t BuiltinType) Handle

	// Creation. Each returns an owned handle, or Null with a pending
	// error on failure.
	NewLong(v int64) Handle
	NewFloat(v float64) Handle
	NewString(s string) Handle
	NewTuple(items []Handle) Handle // items are borrowed, not stolen
	NewDict() Handle

	// Object protocol. Integer returns use -1 as the failure sentinel,
	// handle returns use Null.
	Length(h Handle) int64
	CallableCheck(h Handle) int32          // 0 or 1, never fails
	IsInstance(obj, cls Handle) int32      // -1 on failure
	IsTrue(h Handle) int32                 // -1 on failure
	Contains(container, item Handle) int32 // -1 on failure
	RichCompareBool(a, b Handle, op CompareOp) int32

	Str(h Handle) Handle             // owned
	Repr(h Handle) Handle            // owned
	TypeOf(h Handle) Handle          // owned
	SequenceToTuple(h Handle) Handle // owned
	Call(fn Handle, args []Handle) Handle

	// Import returns an owned handle to the named module.
	Import(name string) Handle

	// AttrLookup fetches an attribute with module-dict semantics: the
	// result is borrowed, valid only while the holder retains obj, and
	// Null without a pending error means the attribute is legitimately
	// absent.
	AttrLookup(obj Handle, name string) Handle

	// Container item access. Both getters return borrowed handles;
	// DictGetItem returning Null without a pending error means the key is
	// legitimately missing.
	DictSetItem(d, k, v Handle) int32 // -1 on failure
	DictGetItem(d, k Handle) Handle
	TupleGetItem(t Handle, i int64) Handle // Null on failure

	// Scalar extraction. IntAsInt64 and FloatAsDouble return -1 both as
	// a legitimate value and as the failure sentinel; callers must probe
	// ErrOccurred to disambiguate. The bool-returning extractors report
	// failure as ok=false with a pending error set.
	IntAsInt64(h Handle) int64
	FloatAsDouble(h Handle) float64
	UnicodeUTF8(h Handle) (s string, ok bool)
	TypeName(h Handle) (s string, ok bool)

	// Pending-error slot. ErrOccurred is probed only immediately after a
	// sentinel; ErrFetch returns the owned (type, value, traceback)
	// triple and clears the slot. These belong to the error-surfacing
	// collaborator, never to sentinel translation itself.
	ErrOccurred() bool
	ErrFetch() (typ, value, traceback Handle)
	ErrClear()

	// Close tears down the interpreter. No Runtime method may be called
	// afterwards.
	Close() error
}
