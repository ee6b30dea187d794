package h5go

import (
	"errors"
	"fmt"
)

// Common errors
var (
	// ErrInvalidHandle matches any *InvalidHandleError.
	ErrInvalidHandle = errors.New("h5go: invalid handle id")

	// ErrWrongType matches any *WrongTypeError.
	ErrWrongType = errors.New("h5go: wrong identifier type")
)

// InvalidHandleError is returned by NewHandle when the id is not a live,
// reference-counted library object.
type InvalidHandleError struct {
	ID ID
}

func (e *InvalidHandleError) Error() string {
	return fmt.Sprintf("h5go: invalid handle id: %d", e.ID)
}

// Is reports whether target is ErrInvalidHandle.
func (e *InvalidHandleError) Is(target error) bool {
	return target == ErrInvalidHandle
}

// WrongTypeError is returned by FromID when the id's category is not one the
// requested wrapper accepts.
type WrongTypeError struct {
	Expected string // wrapper type name
	ID       ID
	Got      IDType
}

func (e *WrongTypeError) Error() string {
	return fmt.Sprintf("h5go: invalid %s id: %d (got %s)", e.Expected, e.ID, e.Got)
}

// Is reports whether target is ErrWrongType.
func (e *WrongTypeError) Is(target error) bool {
	return target == ErrWrongType
}

// IsInvalidHandle returns true if err is or wraps an *InvalidHandleError.
func IsInvalidHandle(err error) bool {
	return errors.Is(err, ErrInvalidHandle)
}

// IsWrongType returns true if err is or wraps a *WrongTypeError.
func IsWrongType(err error) bool {
	return errors.Is(err, ErrWrongType)
}
