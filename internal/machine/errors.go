package machine

import (
	"errors"
	"fmt"
)

// Construction errors.
var (
	ErrInvalidWiring       = errors.New("invalid wiring")
	ErrInvalidNotch        = errors.New("invalid notch")
	ErrPlugboardConflict   = errors.New("plugboard conflict")
	ErrDuplicateSymbol     = fmt.Errorf("%w: duplicate symbol", ErrPlugboardConflict)
	ErrSelfPair            = fmt.Errorf("%w: self pair", ErrPlugboardConflict)
	ErrSymbolNotInAlphabet = fmt.Errorf("%w: symbol not in alphabet", ErrPlugboardConflict)
	ErrLengthMismatch      = errors.New("length mismatch")
)

// Runtime errors.
var (
	ErrInvalidSymbol = errors.New("invalid symbol")
	ErrOutOfRange    = errors.New("signal out of range")
)

// Error records which component rejected which value.
type Error struct {
	Component string
	Value     string
	Err       error
}

func (e *Error) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("%s: %v", e.Component, e.Err)
	}
	return fmt.Sprintf("%s: %v: %s", e.Component, e.Err, e.Value)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(component string, err error, format string, args ...any) error {
	return &Error{Component: component, Value: fmt.Sprintf(format, args...), Err: err}
}
