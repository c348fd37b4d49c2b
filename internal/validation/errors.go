// Package validation holds the precondition checks run before any request is
// built. Every check is synchronous, performs no I/O and never modifies the
// value it inspects.
package validation

import (
	"errors"
	"fmt"
)

// Kind classifies a validation failure.
type Kind string

const (
	// KindType means the value has the wrong shape (e.g. a number where a
	// string is required, or no mapping at all).
	KindType Kind = "type"
	// KindValue means the shape is right but the content is not acceptable
	// (empty string, empty mapping, value outside an allowed set).
	KindValue Kind = "value"
)

// Sentinels for errors.Is matching on the failure kind.
var (
	ErrType  = errors.New("validation: wrong type")
	ErrValue = errors.New("validation: invalid value")
)

// Error is returned by every check in this package.
type Error struct {
	Field   string
	Kind    Kind
	Message string
	Allowed []string
}

func (e *Error) Error() string {
	return e.Message
}

// Is lets callers match on ErrType / ErrValue.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrType:
		return e.Kind == KindType
	case ErrValue:
		return e.Kind == KindValue
	}
	return false
}

func typeError(field, format string, args ...any) *Error {
	return &Error{Field: field, Kind: KindType, Message: fmt.Sprintf(format, args...)}
}

func valueError(field, format string, args ...any) *Error {
	return &Error{Field: field, Kind: KindValue, Message: fmt.Sprintf(format, args...)}
}

// IsTypeError reports whether err is a validation failure of kind type.
func IsTypeError(err error) bool {
	return errors.Is(err, ErrType)
}

// IsValueError reports whether err is a validation failure of kind value.
func IsValueError(err error) bool {
	return errors.Is(err, ErrValue)
}
