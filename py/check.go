package py

import (
	pydust "github.com/hosackm/ziggy-pydust"
	"github.com/hosackm/ziggy-pydust/errors"
)

// Sentinel translation. Each helper inspects a raw ABI result immediately
// after the call that produced it and converts the failure encoding into
// the error taxonomy. None of them touches the pending-error slot.

// checkLen translates a negative-length sentinel.
func checkLen(n int64, op string) (int64, error) {
	if n < 0 {
		return 0, errors.ForeignRaised(errors.PhaseCall, op)
	}
	return n, nil
}

// checkTri translates a -1/0/1 tri-state result.
func checkTri(v int32, phase errors.Phase, op string) (bool, error) {
	if v < 0 {
		return false, errors.ForeignRaised(phase, op)
	}
	return v != 0, nil
}

// checkStatus translates a 0/-1 status result.
func checkStatus(v int32, phase errors.Phase, op string) error {
	if v < 0 {
		return errors.ForeignRaised(phase, op)
	}
	return nil
}

// checkOwned translates a null-handle sentinel, wrapping a successful
// result as an owned object.
func checkOwned(rt pydust.Runtime, h pydust.Handle, phase errors.Phase, op string) (Object, error) {
	if h == pydust.Null {
		return Object{}, errors.ForeignRaised(phase, op)
	}
	return NewObject(rt, h), nil
}
