package py

import (
	"github.com/hosackm/ziggy-pydust/errors"
)

// Float is a float-shaped wrapper.
type Float struct {
	Object
}

// Float64 extracts the native value, with the same -1.0 ambiguity
// discipline as Long.Int64.
func (f Float) Float64() (float64, error) {
	v := f.rt.FloatAsDouble(f.h)
	if v == -1 && f.rt.ErrOccurred() {
		return 0, errors.ForeignRaised(errors.PhaseConvert, "float_as_double")
	}
	return v, nil
}
