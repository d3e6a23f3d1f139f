package reactive

import (
	"errors"
	"fmt"
)

// ErrUnknownProperty is returned in strict mode when a key is written or
// watched on a VM that does not proxy it.
var ErrUnknownProperty = errors.New("zvue: unknown property")

// ErrReaderStack is the panic value raised when the active reader stack is
// popped out of order. It indicates a WithReader misuse, never bad data.
var ErrReaderStack = errors.New("zvue: active reader stack corrupted")

// NotifyError collects the reader failures of one isolated notification pass.
type NotifyError struct {
	Key  string
	Errs []error
}

// Error implements the error interface.
func (e *NotifyError) Error() string {
	return fmt.Sprintf("zvue: %d reader update(s) failed for %q: %v", len(e.Errs), e.Key, errors.Join(e.Errs...))
}

// Unwrap returns the individual reader failures for errors.Is/As support.
func (e *NotifyError) Unwrap() []error {
	return e.Errs
}

// PanicError wraps a value recovered from a reader's Update.
type PanicError struct {
	Reader uint64
	Value  any
}

// Error implements the error interface.
func (e *PanicError) Error() string {
	return fmt.Sprintf("reader %d panicked: %v", e.Reader, e.Value)
}

// Unwrap returns the recovered value when it is itself an error.
func (e *PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}
