package py

// Module wraps an imported module object. Import returns it owned; every
// attribute fetched from it is borrowed and dies with the module unless
// explicitly acquired.
type Module struct {
	Object
}

// Attr fetches a module attribute with module-dict semantics: the result
// is borrowed, and absence without a foreign raise is NotFound.
func (m Module) Attr(name string) (Object, error) {
	return GetAttr(m.rt, m, name)
}
