package py

import (
	"github.com/hosackm/ziggy-pydust/errors"
)

// Str is a text-shaped wrapper.
type Str struct {
	Object
}

// Value extracts the native UTF-8 string.
func (s Str) Value() (string, error) {
	text, ok := s.rt.UnicodeUTF8(s.h)
	if !ok {
		return "", errors.ForeignRaised(errors.PhaseConvert, "unicode_utf8")
	}
	return text, nil
}
