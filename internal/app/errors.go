package app

import (
	"errors"
	"fmt"
)

var (
	// ErrNotTerminal is returned when the editor is started without a
	// terminal on standard input and output.
	ErrNotTerminal = errors.New("not a terminal")

	// ErrUnknownFormat indicates an unsupported dump format.
	ErrUnknownFormat = errors.New("unknown format")

	// ErrInvalidArgument indicates a malformed command-line argument.
	ErrInvalidArgument = errors.New("invalid argument")
)

// OperationError records which file operation failed. Context names the
// step within it, such as the rename of a save.
type OperationError struct {
	Op      string // Operation name (e.g., "load", "save", "watch")
	Target  string // Target of the operation, usually a file path
	Context string // Additional context
	Err     error  // Underlying error
}

func NewOperationError(op, target string, err error) *OperationError {
	return &OperationError{
		Op:     op,
		Target: target,
		Err:    err,
	}
}

// WithContext sets the step and returns e. A nil e stays nil.
func (e *OperationError) WithContext(ctx string) *OperationError {
	if e == nil {
		return nil
	}
	e.Context = ctx
	return e
}

func (e *OperationError) Error() string {
	if e == nil {
		return ""
	}

	msg := e.Op
	if e.Target != "" {
		msg = fmt.Sprintf("%s %s", e.Op, e.Target)
	}
	if e.Context != "" {
		msg = fmt.Sprintf("%s (%s)", msg, e.Context)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *OperationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is matches both the wrapper itself and the wrapped error.
func (e *OperationError) Is(target error) bool {
	if e == nil {
		return false
	}
	if t, ok := target.(*OperationError); ok {
		return e == t
	}
	return errors.Is(e.Err, target)
}
