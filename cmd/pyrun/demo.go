package main

import (
	pydust "github.com/hosackm/ziggy-pydust"
	"github.com/hosackm/ziggy-pydust/pydusttest"
)

// demoModule is what pyrun imports when no interpreter build is given.
const demoModule = "fleet"

// demoRuntime builds an in-process runtime with a small sample module so
// the tool is usable without a wasm interpreter build.
func demoRuntime() pydust.Runtime {
	rt := pydusttest.New()

	fleet := rt.AddModule(demoModule)

	greeting := rt.NewString("hello from the fleet module")
	rt.SetAttr(fleet, "greeting", greeting)
	rt.DecRef(greeting)

	answer := rt.NewLong(42)
	rt.SetAttr(fleet, "answer", answer)
	rt.DecRef(answer)

	pi := rt.NewFloat(3.14159)
	rt.SetAttr(fleet, "pi", pi)
	rt.DecRef(pi)

	scale := rt.NewFunction("scale", func(rt *pydusttest.Fake, args []pydust.Handle) pydust.Handle {
		if len(args) == 0 {
			return rt.NewLong(0)
		}
		n := rt.IntAsInt64(args[0])
		if n == -1 && rt.ErrOccurred() {
			return pydust.Null
		}
		return rt.NewLong(n * 2)
	})
	rt.SetAttr(fleet, "scale", scale)
	rt.DecRef(scale)

	widget := rt.AddType(fleet, "Widget", pydust.Null)
	rt.DefMethod(widget, "describe", func(rt *pydusttest.Fake, _ []pydust.Handle) pydust.Handle {
		return rt.NewString("a demo widget")
	})

	// builtins.dir, enough of it for -list and the TUI.
	builtins := rt.AddModule("builtins")
	dir := rt.NewFunction("dir", func(rt *pydusttest.Fake, args []pydust.Handle) pydust.Handle {
		if len(args) == 0 {
			return rt.NewTuple(nil)
		}
		names := rt.AttrNames(args[0])
		items := make([]pydust.Handle, len(names))
		for i, n := range names {
			items[i] = rt.NewString(n)
		}
		tup := rt.NewTuple(items)
		for _, it := range items {
			rt.DecRef(it)
		}
		return tup
	})
	rt.SetAttr(builtins, "dir", dir)
	rt.DecRef(dir)

	return rt
}
