package py

import (
	"github.com/hosackm/ziggy-pydust/errors"
)

// Type wraps a class object.
type Type struct {
	Object
}

// Name returns the class's declared name.
func (t Type) Name() (string, error) {
	name, ok := t.rt.TypeName(t.h)
	if !ok {
		return "", errors.ForeignRaised(errors.PhaseConvert, "type_name")
	}
	return name, nil
}
