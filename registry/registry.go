// Package registry maps native Go types to their Python-visible identity:
// the qualified module that declares them, their identifier inside that
// module, and optionally a single declared supertype.
//
// Records are registered during package init and never mutated afterwards.
// Looking up an unregistered type is a programming error and panics; no
// foreign call may be attempted for a type whose identity is unresolved.
package registry

import (
	"fmt"
	"reflect"
	"sync"
)

// Record is the compile-time identity of a native type.
type Record struct {
	// Module is the qualified foreign module path, e.g. "pkg.sub".
	Module string

	// Name is the declared identifier within Module.
	Name string

	// Super is the identifier of the declared supertype within the same
	// module, or empty for types with no declared supertype. Only
	// single-parent chains are supported; diamond hierarchies are
	// rejected at registration.
	Super string
}

var (
	mu      sync.RWMutex
	records = make(map[reflect.Type]Record)
)

func typeOf[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

// Register records the identity of T. It panics on invalid or duplicate
// registration: identity is fixed at build time and a conflict is a
// programming error, not a runtime condition.
func Register[T any](rec Record) {
	t := typeOf[T]()

	if rec.Module == "" {
		panic(fmt.Sprintf("registry: type %v registered without a module", t))
	}
	if rec.Name == "" {
		panic(fmt.Sprintf("registry: type %v registered without a name", t))
	}
	if rec.Super == rec.Name {
		panic(fmt.Sprintf("registry: type %v declares itself as its supertype", t))
	}

	mu.Lock()
	defer mu.Unlock()
	if prev, ok := records[t]; ok {
		panic(fmt.Sprintf("registry: type %v already registered as %s.%s", t, prev.Module, prev.Name))
	}
	records[t] = rec
}

// Lookup returns the identity record of T, panicking if T was never
// registered.
func Lookup[T any]() Record {
	t := typeOf[T]()

	mu.RLock()
	rec, ok := records[t]
	mu.RUnlock()

	if !ok {
		panic(fmt.Sprintf("registry: type %v has no identity record", t))
	}
	return rec
}

// ModuleOf returns the qualified module containing T.
func ModuleOf[T any]() string {
	return Lookup[T]().Module
}

// NameOf returns T's declared identifier.
func NameOf[T any]() string {
	return Lookup[T]().Name
}

// SuperOf returns the identifier of T's declared supertype and whether one
// was declared.
func SuperOf[T any]() (string, bool) {
	rec := Lookup[T]()
	return rec.Super, rec.Super != ""
}

// Registered reports whether T has an identity record.
func Registered[T any]() bool {
	mu.RLock()
	defer mu.RUnlock()
	_, ok := records[typeOf[T]()]
	return ok
}
