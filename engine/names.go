package engine

// Exported symbols of the interpreter shim. The guest is a wasm32-wasi
// CPython build wrapped in a thin C shim whose exports take and return
// flat integers: handles are guest pointers, strings travel as
// (pointer, length) pairs through guest memory, and struct-like results
// land in caller-allocated guest buffers.
const (
	expInitialize = "pd_initialize"
	expFinalize   = "pd_finalize"

	expAlloc = "pd_alloc"
	expFree  = "pd_free"

	expIncRef   = "pd_incref"
	expDecRef   = "pd_decref"
	expRefCount = "pd_refcount"

	expNone           = "pd_none"
	expTrue           = "pd_true"
	expFalse          = "pd_false"
	expNotImplemented = "pd_not_implemented"
	expBuiltinType    = "pd_builtin_type"

	expLongNew  = "pd_long_new"
	expFloatNew = "pd_float_new"
	expStrNew   = "pd_str_new"
	expTupleNew = "pd_tuple_new"
	expDictNew  = "pd_dict_new"

	expLength        = "pd_length"
	expCallableCheck = "pd_callable_check"
	expIsInstance    = "pd_isinstance"
	expIsTrue        = "pd_is_true"
	expContains      = "pd_contains"
	expRichCompare   = "pd_richcompare"

	expStr           = "pd_str"
	expRepr          = "pd_repr"
	expTypeOf        = "pd_type_of"
	expSequenceTuple = "pd_sequence_tuple"
	expCall          = "pd_call"

	expImport     = "pd_import"
	expAttrLookup = "pd_attr_lookup"

	expDictSet  = "pd_dict_set"
	expDictGet  = "pd_dict_get"
	expTupleGet = "pd_tuple_get"

	expIntAsInt64    = "pd_int_as_i64"
	expFloatAsDouble = "pd_float_as_f64"
	expUnicodeUTF8   = "pd_unicode_utf8"
	expTypeName      = "pd_type_name"

	expErrOccurred = "pd_err_occurred"
	expErrFetch    = "pd_err_fetch"
	expErrClear    = "pd_err_clear"
)

// requiredExports is the full table New resolves; a missing symbol fails
// the load with its name.
var requiredExports = []string{
	expInitialize,
	expFinalize,
	expAlloc,
	expFree,
	expIncRef,
	expDecRef,
	expRefCount,
	expNone,
	expTrue,
	expFalse,
	expNotImplemented,
	expBuiltinType,
	expLongNew,
	expFloatNew,
	expStrNew,
	expTupleNew,
	expDictNew,
	expLength,
	expCallableCheck,
	expIsInstance,
	expIsTrue,
	expContains,
	expRichCompare,
	expStr,
	expRepr,
	expTypeOf,
	expSequenceTuple,
	expCall,
	expImport,
	expAttrLookup,
	expDictSet,
	expDictGet,
	expTupleGet,
	expIntAsInt64,
	expFloatAsDouble,
	expUnicodeUTF8,
	expTypeName,
	expErrOccurred,
	expErrFetch,
	expErrClear,
}
