// Package errors provides structured error types for the pydust bridge.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error
// category). The Error type includes context: the ABI operation name, the Go
// and Python type names involved, and a cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseCoerce, errors.KindUnsupported).
//		Op("from").
//		GoType("chan int").
//		Detail("no conversion to a Python object").
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.ForeignRaised(errors.PhaseCall, "len")
//	err := errors.NotFound(errors.PhaseLookup, "attribute", "Widget")
//
// KindForeignRaised deliberately carries no payload: the interpreter already
// holds the detailed error in its pending-error slot, and surfacing that slot
// belongs to a separate collaborator (py.FetchRaised), not to this package.
//
// All errors implement the standard error interface and support errors.Is/As.
package errors
