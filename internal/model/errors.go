package model

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a failure so callers can react without parsing messages.
type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	// KindAcquisition covers empty or unreachable data sources.
	KindAcquisition
	// KindFormat covers unsupported files and missing or malformed columns.
	KindFormat
	// KindInvariant marks an internal pipeline bug such as misaligned arrays.
	KindInvariant
)

func (k ErrorKind) String() string {
	switch k {
	case KindAcquisition:
		return "acquisition"
	case KindFormat:
		return "format"
	case KindInvariant:
		return "invariant"
	default:
		return "unknown"
	}
}

var (
	ErrNoData            = errors.New("no data")
	ErrUnsupportedFormat = errors.New("unsupported format")
	ErrMissingColumn     = errors.New("missing column")
	ErrShapeMismatch     = errors.New("shape mismatch")
	ErrNotFitted         = errors.New("model not fitted")
	ErrInvalidMode       = errors.New("invalid analysis mode")
	ErrInvalidInput      = errors.New("invalid input")
)

// Error is a classified failure raised by an operation.
type Error struct {
	Kind ErrorKind
	Op   string
	Err  error
}

// NewError wraps err with a kind and the failing operation.
func NewError(kind ErrorKind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

func (e *Error) Error() string {
	if e.Op == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf returns the kind of the first classified error in the chain.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}
