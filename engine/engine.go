// Package engine hosts a CPython interpreter compiled to wasm32-wasi and
// exposes it as a pydust.Runtime. The guest is sandboxed: it sees only the
// memory wazero gives it and the directories mounted through Config.
package engine

import (
	"context"
	"encoding/binary"
	"io"
	"sync"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"github.com/tetratelabs/wazero/imports/wasi_snapshot_preview1"
	"go.uber.org/zap"

	pydust "github.com/hosackm/ziggy-pydust"
	"github.com/hosackm/ziggy-pydust/errors"
)

// Compilation cache shared across runtimes; compiling a CPython build is
// expensive and the machine code is reusable.
var (
	globalCache     wazero.CompilationCache
	globalCacheOnce sync.Once
)

// Config holds configuration for runtime creation.
type Config struct {
	// MemoryLimitPages caps guest memory in 64KB pages. 0 means the
	// wazero default (65536 pages = 4GB).
	MemoryLimitPages uint32 `env:"PYRUN_MEMORY_PAGES"`

	// StdlibDir, when set, is mounted read-only at /usr/local/lib/python
	// so the interpreter can import its standard library.
	StdlibDir string `env:"PYRUN_STDLIB_DIR"`

	// Stdout and Stderr receive the guest's output streams. Nil discards.
	Stdout io.Writer
	Stderr io.Writer
}

// WazeroRuntime implements pydust.Runtime on top of a wazero-hosted
// interpreter. It is single-threaded by contract: callers serialize all
// access, including Close.
type WazeroRuntime struct {
	ctx     context.Context
	runtime wazero.Runtime
	module  api.Module
	memory  api.Memory
	fns     map[string]api.Function
	closed  bool
	faulted bool
}

var _ pydust.Runtime = (*WazeroRuntime)(nil)

// New compiles and instantiates the interpreter from wasmBytes, resolves
// the shim's export table and runs the interpreter initializer. The
// returned runtime is bound to ctx: cancelling it aborts in-flight guest
// calls.
func New(ctx context.Context, wasmBytes []byte, cfg *Config) (*WazeroRuntime, error) {
	globalCacheOnce.Do(func() {
		globalCache = wazero.NewCompilationCache()
	})

	runtimeCfg := wazero.NewRuntimeConfig().
		WithCompilationCache(globalCache).
		WithCloseOnContextDone(true)
	if cfg != nil && cfg.MemoryLimitPages > 0 {
		runtimeCfg = runtimeCfg.WithMemoryLimitPages(cfg.MemoryLimitPages)
	}

	runtime := wazero.NewRuntimeWithConfig(ctx, runtimeCfg)
	wasi_snapshot_preview1.MustInstantiate(ctx, runtime)

	compiled, err := runtime.CompileModule(ctx, wasmBytes)
	if err != nil {
		_ = runtime.Close(ctx)
		return nil, errors.Load("compile interpreter module", err)
	}

	moduleCfg := wazero.NewModuleConfig().
		WithName("python").
		WithStartFunctions() // reactor module; initialization is explicit
	if cfg != nil {
		if cfg.Stdout != nil {
			moduleCfg = moduleCfg.WithStdout(cfg.Stdout)
		}
		if cfg.Stderr != nil {
			moduleCfg = moduleCfg.WithStderr(cfg.Stderr)
		}
		if cfg.StdlibDir != "" {
			moduleCfg = moduleCfg.WithFSConfig(
				wazero.NewFSConfig().WithReadOnlyDirMount(cfg.StdlibDir, "/usr/local/lib/python"))
		}
	}

	module, err := runtime.InstantiateModule(ctx, compiled, moduleCfg)
	if err != nil {
		_ = runtime.Close(ctx)
		return nil, errors.Load("instantiate interpreter module", err)
	}

	r := &WazeroRuntime{
		ctx:     ctx,
		runtime: runtime,
		module:  module,
		memory:  module.Memory(),
		fns:     make(map[string]api.Function, len(requiredExports)),
	}
	if r.memory == nil {
		_ = runtime.Close(ctx)
		return nil, errors.Load("interpreter module exports no memory", nil)
	}

	for _, name := range requiredExports {
		fn := module.ExportedFunction(name)
		if fn == nil {
			_ = runtime.Close(ctx)
			return nil, errors.Load("missing interpreter export "+name, nil)
		}
		r.fns[name] = fn
	}

	// WASI reactors export _initialize; older shim builds may not.
	if initFn := module.ExportedFunction("_initialize"); initFn != nil {
		if _, err := initFn.Call(ctx); err != nil {
			_ = runtime.Close(ctx)
			return nil, errors.Load("run _initialize", err)
		}
	}

	if status, ok := r.invoke(expInitialize); !ok || int32(uint32(status)) != 0 {
		_ = runtime.Close(ctx)
		return nil, errors.Load("interpreter initialization failed", nil)
	}

	Logger().Info("interpreter started",
		zap.Uint32("memory_pages", r.memory.Size()/65536))
	return r, nil
}

// invoke calls the named export and returns its first result. ok is false
// when the runtime is closed, a prior call trapped, or this call trapped;
// the caller maps that to its sentinel. A trap leaves the guest's internal
// state unknown, so it poisons the runtime: every call after it fails
// without entering the guest, and ErrOccurred reports true so the
// -1-ambiguity probes cannot mistake a trap sentinel for a value.
func (r *WazeroRuntime) invoke(name string, params ...uint64) (uint64, bool) {
	if r.closed {
		Logger().Warn("guest call after close", zap.String("fn", name))
		return 0, false
	}
	if r.faulted {
		Logger().Warn("guest call after trap", zap.String("fn", name))
		return 0, false
	}
	debugf("guest call %s", name)
	results, err := r.fns[name].Call(r.ctx, params...)
	if err != nil {
		r.faulted = true
		Logger().Error("guest call trapped", zap.String("fn", name), zap.Error(err))
		return 0, false
	}
	if len(results) == 0 {
		return 0, true
	}
	return results[0], true
}

// alloc reserves n bytes of guest memory through the shim allocator.
func (r *WazeroRuntime) alloc(n uint32) (uint32, bool) {
	ptr, ok := r.invoke(expAlloc, uint64(n))
	if !ok || ptr == 0 {
		return 0, false
	}
	return uint32(ptr), true
}

func (r *WazeroRuntime) freeGuest(ptr uint32) {
	if ptr != 0 {
		r.invoke(expFree, uint64(ptr)) //nolint:errcheck
	}
}

// writeBytes copies data into a fresh guest allocation. The caller frees.
func (r *WazeroRuntime) writeBytes(data []byte) (uint32, bool) {
	if len(data) == 0 {
		// The shim accepts (0, 0) as the empty string.
		return 0, true
	}
	ptr, ok := r.alloc(uint32(len(data)))
	if !ok {
		return 0, false
	}
	if !r.memory.Write(ptr, data) {
		r.freeGuest(ptr)
		return 0, false
	}
	return ptr, true
}

// writeHandles copies a handle vector into guest memory as little-endian
// 32-bit words. The caller frees.
func (r *WazeroRuntime) writeHandles(hs []pydust.Handle) (uint32, bool) {
	if len(hs) == 0 {
		return 0, true
	}
	buf := make([]byte, 4*len(hs))
	for i, h := range hs {
		binary.LittleEndian.PutUint32(buf[i*4:], uint32(h))
	}
	return r.writeBytes(buf)
}

// stringCall runs a (handle, lenOut) -> dataPtr export and reads the
// borrowed guest bytes it points at.
func (r *WazeroRuntime) stringCall(name string, h pydust.Handle) (string, bool) {
	lenPtr, ok := r.alloc(4)
	if !ok {
		return "", false
	}
	defer r.freeGuest(lenPtr)

	dataPtr, ok := r.invoke(name, uint64(h), uint64(lenPtr))
	if !ok || dataPtr == 0 {
		return "", false
	}
	n, ok := r.memory.ReadUint32Le(lenPtr)
	if !ok {
		return "", false
	}
	data, ok := r.memory.Read(uint32(dataPtr), n)
	if !ok {
		return "", false
	}
	return string(data), true
}

// handleCall maps a handle-returning export, folding traps into Null.
func (r *WazeroRuntime) handleCall(name string, params ...uint64) pydust.Handle {
	res, ok := r.invoke(name, params...)
	if !ok {
		return pydust.Null
	}
	return pydust.Handle(uint32(res))
}

// triCall maps an int32-returning export, folding traps into -1.
func (r *WazeroRuntime) triCall(name string, params ...uint64) int32 {
	res, ok := r.invoke(name, params...)
	if !ok {
		return -1
	}
	return int32(uint32(res))
}

// IncRef implements pydust.Runtime.
func (r *WazeroRuntime) IncRef(h pydust.Handle) {
	r.invoke(expIncRef, uint64(h)) //nolint:errcheck
}

// DecRef implements pydust.Runtime.
func (r *WazeroRuntime) DecRef(h pydust.Handle) {
	r.invoke(expDecRef, uint64(h)) //nolint:errcheck
}

// RefCount implements pydust.Runtime.
func (r *WazeroRuntime) RefCount(h pydust.Handle) int64 {
	res, ok := r.invoke(expRefCount, uint64(h))
	if !ok {
		return 0
	}
	return int64(res)
}

// None implements pydust.Runtime.
func (r *WazeroRuntime) None() pydust.Handle { return r.handleCall(expNone) }

// True implements pydust.Runtime.
func (r *WazeroRuntime) True() pydust.Handle { return r.handleCall(expTrue) }

// False implements pydust.Runtime.
func (r *WazeroRuntime) False() pydust.Handle { return r.handleCall(expFalse) }

// NotImplemented implements pydust.Runtime.
func (r *WazeroRuntime) NotImplemented() pydust.Handle {
	return r.handleCall(expNotImplemented)
}

// BuiltinTypeHandle implements pydust.Runtime.
func (r *WazeroRuntime) BuiltinTypeHandle(t pydust.BuiltinType) pydust.Handle {
	return r.handleCall(expBuiltinType, uint64(uint32(t)))
}

// NewLong implements pydust.Runtime.
func (r *WazeroRuntime) NewLong(v int64) pydust.Handle {
	return r.handleCall(expLongNew, uint64(v))
}

// NewFloat implements pydust.Runtime.
func (r *WazeroRuntime) NewFloat(v float64) pydust.Handle {
	return r.handleCall(expFloatNew, api.EncodeF64(v))
}

// NewString implements pydust.Runtime.
func (r *WazeroRuntime) NewString(s string) pydust.Handle {
	ptr, ok := r.writeBytes([]byte(s))
	if !ok {
		return pydust.Null
	}
	defer r.freeGuest(ptr)
	return r.handleCall(expStrNew, uint64(ptr), uint64(uint32(len(s))))
}

// NewTuple implements pydust.Runtime. Items are borrowed; the guest
// acquires its own references.
func (r *WazeroRuntime) NewTuple(items []pydust.Handle) pydust.Handle {
	ptr, ok := r.writeHandles(items)
	if !ok {
		return pydust.Null
	}
	defer r.freeGuest(ptr)
	return r.handleCall(expTupleNew, uint64(ptr), uint64(uint32(len(items))))
}

// NewDict implements pydust.Runtime.
func (r *WazeroRuntime) NewDict() pydust.Handle { return r.handleCall(expDictNew) }

// Length implements pydust.Runtime.
func (r *WazeroRuntime) Length(h pydust.Handle) int64 {
	res, ok := r.invoke(expLength, uint64(h))
	if !ok {
		return -1
	}
	return int64(res)
}

// CallableCheck implements pydust.Runtime.
func (r *WazeroRuntime) CallableCheck(h pydust.Handle) int32 {
	res, ok := r.invoke(expCallableCheck, uint64(h))
	if !ok {
		return 0
	}
	return int32(uint32(res))
}

// IsInstance implements pydust.Runtime.
func (r *WazeroRuntime) IsInstance(obj, cls pydust.Handle) int32 {
	return r.triCall(expIsInstance, uint64(obj), uint64(cls))
}

// IsTrue implements pydust.Runtime.
func (r *WazeroRuntime) IsTrue(h pydust.Handle) int32 {
	return r.triCall(expIsTrue, uint64(h))
}

// Contains implements pydust.Runtime.
func (r *WazeroRuntime) Contains(container, item pydust.Handle) int32 {
	return r.triCall(expContains, uint64(container), uint64(item))
}

// RichCompareBool implements pydust.Runtime.
func (r *WazeroRuntime) RichCompareBool(a, b pydust.Handle, op pydust.CompareOp) int32 {
	return r.triCall(expRichCompare, uint64(a), uint64(b), uint64(uint32(op)))
}

// Str implements pydust.Runtime.
func (r *WazeroRuntime) Str(h pydust.Handle) pydust.Handle {
	return r.handleCall(expStr, uint64(h))
}

// Repr implements pydust.Runtime.
func (r *WazeroRuntime) Repr(h pydust.Handle) pydust.Handle {
	return r.handleCall(expRepr, uint64(h))
}

// TypeOf implements pydust.Runtime.
func (r *WazeroRuntime) TypeOf(h pydust.Handle) pydust.Handle {
	return r.handleCall(expTypeOf, uint64(h))
}

// SequenceToTuple implements pydust.Runtime.
func (r *WazeroRuntime) SequenceToTuple(h pydust.Handle) pydust.Handle {
	return r.handleCall(expSequenceTuple, uint64(h))
}

// Call implements pydust.Runtime.
func (r *WazeroRuntime) Call(fn pydust.Handle, args []pydust.Handle) pydust.Handle {
	ptr, ok := r.writeHandles(args)
	if !ok {
		return pydust.Null
	}
	defer r.freeGuest(ptr)
	return r.handleCall(expCall, uint64(fn), uint64(ptr), uint64(uint32(len(args))))
}

// Import implements pydust.Runtime.
func (r *WazeroRuntime) Import(name string) pydust.Handle {
	ptr, ok := r.writeBytes([]byte(name))
	if !ok {
		return pydust.Null
	}
	defer r.freeGuest(ptr)
	return r.handleCall(expImport, uint64(ptr), uint64(uint32(len(name))))
}

// AttrLookup implements pydust.Runtime. The shim reports a legitimately
// absent attribute as Null with a clear error slot.
func (r *WazeroRuntime) AttrLookup(obj pydust.Handle, name string) pydust.Handle {
	ptr, ok := r.writeBytes([]byte(name))
	if !ok {
		return pydust.Null
	}
	defer r.freeGuest(ptr)
	return r.handleCall(expAttrLookup, uint64(obj), uint64(ptr), uint64(uint32(len(name))))
}

// DictSetItem implements pydust.Runtime.
func (r *WazeroRuntime) DictSetItem(d, k, v pydust.Handle) int32 {
	return r.triCall(expDictSet, uint64(d), uint64(k), uint64(v))
}

// DictGetItem implements pydust.Runtime.
func (r *WazeroRuntime) DictGetItem(d, k pydust.Handle) pydust.Handle {
	return r.handleCall(expDictGet, uint64(d), uint64(k))
}

// TupleGetItem implements pydust.Runtime.
func (r *WazeroRuntime) TupleGetItem(t pydust.Handle, i int64) pydust.Handle {
	return r.handleCall(expTupleGet, uint64(t), uint64(i))
}

// IntAsInt64 implements pydust.Runtime.
func (r *WazeroRuntime) IntAsInt64(h pydust.Handle) int64 {
	res, ok := r.invoke(expIntAsInt64, uint64(h))
	if !ok {
		return -1
	}
	return int64(res)
}

// FloatAsDouble implements pydust.Runtime.
func (r *WazeroRuntime) FloatAsDouble(h pydust.Handle) float64 {
	res, ok := r.invoke(expFloatAsDouble, uint64(h))
	if !ok {
		return -1
	}
	return api.DecodeF64(res)
}

// UnicodeUTF8 implements pydust.Runtime.
func (r *WazeroRuntime) UnicodeUTF8(h pydust.Handle) (string, bool) {
	return r.stringCall(expUnicodeUTF8, h)
}

// TypeName implements pydust.Runtime.
func (r *WazeroRuntime) TypeName(h pydust.Handle) (string, bool) {
	return r.stringCall(expTypeName, h)
}

// ErrOccurred implements pydust.Runtime. A trapped runtime always reports
// a pending error: the guest cannot be asked anything after a trap.
func (r *WazeroRuntime) ErrOccurred() bool {
	if r.faulted {
		return true
	}
	res, ok := r.invoke(expErrOccurred)
	return ok && uint32(res) != 0
}

// ErrFetch implements pydust.Runtime. The shim writes the owned triple
// into a 12-byte guest buffer as three little-endian handles.
func (r *WazeroRuntime) ErrFetch() (typ, value, traceback pydust.Handle) {
	out, ok := r.alloc(12)
	if !ok {
		return pydust.Null, pydust.Null, pydust.Null
	}
	defer r.freeGuest(out)

	if _, ok := r.invoke(expErrFetch, uint64(out)); !ok {
		return pydust.Null, pydust.Null, pydust.Null
	}
	buf, ok := r.memory.Read(out, 12)
	if !ok {
		return pydust.Null, pydust.Null, pydust.Null
	}
	return pydust.Handle(binary.LittleEndian.Uint32(buf[0:])),
		pydust.Handle(binary.LittleEndian.Uint32(buf[4:])),
		pydust.Handle(binary.LittleEndian.Uint32(buf[8:]))
}

// ErrClear implements pydust.Runtime.
func (r *WazeroRuntime) ErrClear() {
	r.invoke(expErrClear) //nolint:errcheck
}

// Close implements pydust.Runtime. It finalizes the interpreter, tears
// down the wazero runtime and marks the receiver unusable.
func (r *WazeroRuntime) Close() error {
	if r.closed {
		return nil
	}
	if r.faulted {
		Logger().Warn("skipping interpreter finalization after trap")
	} else if _, ok := r.invoke(expFinalize); !ok {
		Logger().Warn("interpreter finalization failed")
	}
	r.closed = true
	if err := r.runtime.Close(r.ctx); err != nil {
		return errors.Wrap(errors.PhaseRuntime, errors.KindClosed, err, "close wazero runtime")
	}
	Logger().Info("interpreter stopped")
	return nil
}
