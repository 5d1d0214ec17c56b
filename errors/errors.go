package errors

import (
	"fmt"
	"strings"
)

// Phase indicates where in processing the error occurred
type Phase string

const (
	PhaseCoerce  Phase = "coerce"  // normalizing input to a handle
	PhaseCreate  Phase = "create"  // building a new foreign object
	PhaseCall    Phase = "call"    // invoking a foreign operation
	PhaseImport  Phase = "import"  // module import
	PhaseLookup  Phase = "lookup"  // attribute/item lookup
	PhaseConvert Phase = "convert" // extracting a native value
	PhaseRuntime Phase = "runtime" // runtime lifecycle
	PhaseLoad    Phase = "load"    // interpreter loading
)

// Kind categorizes the error
type Kind string

const (
	// KindForeignRaised means the interpreter recorded a detailed error in
	// its pending-error slot after returning a failure sentinel. The native
	// error carries no payload; the detail stays in the slot until a
	// surfacing collaborator fetches it.
	KindForeignRaised Kind = "foreign_raised"

	// KindNotFound means a lookup legitimately produced "absent" without
	// the interpreter raising.
	KindNotFound Kind = "not_found"

	// KindUnsupported means a native-side rejection: no conversion or
	// downcast exists for the given value. No foreign call was made.
	KindUnsupported Kind = "unsupported"

	KindClosed       Kind = "closed"
	KindInvalidInput Kind = "invalid_input"
	KindInvalidData  Kind = "invalid_data"
)

// Error is the structured error type used throughout the bridge
type Error struct {
	Cause  error
	Phase  Phase
	Kind   Kind
	OpName string
	GoType string
	PyType string
	Detail string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if e.OpName != "" {
		b.WriteString(" in ")
		b.WriteString(e.OpName)
	}

	if e.GoType != "" || e.PyType != "" {
		b.WriteString(": ")
		if e.GoType != "" && e.PyType != "" {
			b.WriteString("Go type ")
			b.WriteString(e.GoType)
			b.WriteString(", Python type ")
			b.WriteString(e.PyType)
		} else if e.GoType != "" {
			b.WriteString("Go type ")
			b.WriteString(e.GoType)
		} else {
			b.WriteString("Python type ")
			b.WriteString(e.PyType)
		}
	}

	if e.Detail != "" {
		if e.GoType != "" || e.PyType != "" {
			b.WriteString(" - ")
		} else {
			b.WriteString(": ")
		}
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error. Two Errors match when their
// Kinds are equal and the target's Phase is either equal or left unset.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		if e.Kind != t.Kind {
			return false
		}
		return t.Phase == "" || e.Phase == t.Phase
	}
	return false
}

// IsForeignRaised reports whether err carries a pending interpreter error.
func IsForeignRaised(err error) bool {
	if e, ok := err.(*Error); ok {
		return e.Kind == KindForeignRaised
	}
	return false
}

// IsNotFound reports whether err is a legitimate "absent" result.
func IsNotFound(err error) bool {
	if e, ok := err.(*Error); ok {
		return e.Kind == KindNotFound
	}
	return false
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Op sets the ABI operation name
func (b *Builder) Op(name string) *Builder {
	b.err.OpName = name
	return b
}

// GoType sets the Go type name
func (b *Builder) GoType(t string) *Builder {
	b.err.GoType = t
	return b
}

// PyType sets the Python type name
func (b *Builder) PyType(t string) *Builder {
	b.err.PyType = t
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Convenience constructors for common error patterns

// ForeignRaised signals that op observed a failure sentinel and the
// interpreter holds the detailed error. Deliberately payload-free.
func ForeignRaised(phase Phase, op string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindForeignRaised,
		OpName: op,
	}
}

// NotFound creates a not-found error for a lookup that produced "absent"
// without the interpreter raising.
func NotFound(phase Phase, what, name string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNotFound,
		Detail: fmt.Sprintf("%s %q not found", what, name),
	}
}

// Unsupported creates a native-side rejection for a Go value with no
// conversion or downcast path.
func Unsupported(phase Phase, goType, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindUnsupported,
		GoType: goType,
		Detail: detail,
	}
}

// Closed creates an error for an operation attempted on a closed runtime
func Closed(op string) *Error {
	return &Error{
		Phase:  PhaseRuntime,
		Kind:   KindClosed,
		OpName: op,
		Detail: "runtime is closed",
	}
}

// InvalidInput creates an invalid input error
func InvalidInput(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidInput,
		Detail: detail,
	}
}

// Wrap wraps an existing error with additional context
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Detail: detail,
		Cause:  cause,
	}
}

// Load creates an interpreter loading error
func Load(detail string, cause error) *Error {
	return &Error{
		Phase:  PhaseLoad,
		Kind:   KindInvalidData,
		Detail: detail,
		Cause:  cause,
	}
}
