package py

import (
	"github.com/hosackm/ziggy-pydust/errors"
)

// Long is an integer-shaped wrapper.
type Long struct {
	Object
}

// Int64 extracts the native value. -1 is both a legitimate result and the
// failure sentinel, so the pending-error slot is probed only in that case.
func (l Long) Int64() (int64, error) {
	v := l.rt.IntAsInt64(l.h)
	if v == -1 && l.rt.ErrOccurred() {
		return 0, errors.ForeignRaised(errors.PhaseConvert, "int_as_int64")
	}
	return v, nil
}
