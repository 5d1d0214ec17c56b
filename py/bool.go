package py

// Bool is a boolean-shaped wrapper over one of the two boolean singletons.
type Bool struct {
	Object
}

// Value reports the native truth value by identity against the True
// singleton. Never fails.
func (b Bool) Value() bool {
	return b.h == b.rt.True()
}
