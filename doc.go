// Package pydust provides a Go bridge to a reference-counted CPython
// interpreter exposed through a fixed C-ABI surface.
//
// The interpreter hands out objects only as opaque handles. Every ABI call
// either succeeds, or reports failure through a sentinel value (-1 for
// integer and boolean returns, 0 for handle returns) while recording the
// real error in the interpreter's pending-error slot. This package defines
// that surface; everything above it is built from three disciplines:
//
//   - ownership: handles are owned (release exactly once) or borrowed
//     (never release unless explicitly acquired first)
//   - coercion: every operation normalizes its input to a handle through a
//     single entry point that either borrows through an existing handle or
//     creates a newly owned one
//   - translation: every sentinel is turned into a structured error before
//     it can be mistaken for a result
//
// The package layout:
//
//	pydust/          Root package: Handle, Runtime ABI, sentinel contract
//	├── py/          Coercion, builtin operations, typed wrappers
//	├── registry/    Static native-type identity records
//	├── errors/      Structured error taxonomy
//	├── engine/      wazero-hosted CPython backend (wasm32-wasi, no cgo)
//	└── pydusttest/  In-memory fake runtime with leak detection
//
// # Quick Start
//
// Operations live in py and run against any Runtime:
//
//	rt := pydusttest.New()
//	defer rt.Close()
//
//	mod, err := py.Import(rt, "math")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer mod.Decref()
//
//	pi, err := py.GetAttr(rt, mod, "pi")
//
// # Threading
//
// The interpreter is single-threaded under its own global lock, held by the
// embedding context. Nothing in this module spawns goroutines or suspends;
// callers serialize all access to one Runtime.
package pydust
