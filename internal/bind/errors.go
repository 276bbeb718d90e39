package bind

import (
	"errors"
	"fmt"
	"strings"
)

type ErrorKind string

const (
	FieldMissing           ErrorKind = "ConfigurationFieldMissing"
	TypeMismatch           ErrorKind = "ConfigurationTypeMismatch"
	UnknownAlgorithm       ErrorKind = "UnknownAlgorithm"
	UnsupportedCombination ErrorKind = "UnsupportedParameterCombination"
	EmptyPipeline          ErrorKind = "EmptyPipeline"
)

// Sentinels matched by errors.Is against any *Error of the same kind.
var (
	ErrFieldMissing           = errors.New(string(FieldMissing))
	ErrTypeMismatch           = errors.New(string(TypeMismatch))
	ErrUnknownAlgorithm       = errors.New(string(UnknownAlgorithm))
	ErrUnsupportedCombination = errors.New(string(UnsupportedCombination))
	ErrEmptyPipeline          = errors.New(string(EmptyPipeline))
)

var sentinels = map[ErrorKind]error{
	FieldMissing:           ErrFieldMissing,
	TypeMismatch:           ErrTypeMismatch,
	UnknownAlgorithm:       ErrUnknownAlgorithm,
	UnsupportedCombination: ErrUnsupportedCombination,
	EmptyPipeline:          ErrEmptyPipeline,
}

// Error locates a configuration problem precisely enough to fix the
// document without reading code.
type Error struct {
	Kind ErrorKind
	// Path is the node location, e.g. "components[2]".
	Path string
	// Index is the component position, or -1 when not known.
	Index      int
	Field      string
	Expected   string
	Actual     string
	Identifier string
	Detail     string
	Err        error
}

func (e *Error) Error() string {
	var b strings.Builder
	loc := e.Path
	if e.Field != "" {
		if loc != "" {
			loc += "."
		}
		loc += e.Field
	}
	if loc != "" {
		b.WriteString(loc)
		b.WriteString(": ")
	}
	b.WriteString(string(e.Kind))

	switch e.Kind {
	case FieldMissing:
		fmt.Fprintf(&b, ": %s field %q is required", e.Expected, e.Field)
		if e.Identifier != "" {
			fmt.Fprintf(&b, " by %s", e.Identifier)
		}
	case TypeMismatch:
		fmt.Fprintf(&b, ": expected %s, got %s", e.Expected, e.Actual)
	case UnknownAlgorithm:
		fmt.Fprintf(&b, ": %q is not a registered trainer", e.Identifier)
	case UnsupportedCombination:
		if e.Identifier != "" {
			fmt.Fprintf(&b, ": %s", e.Identifier)
		}
	}
	if e.Detail != "" {
		fmt.Fprintf(&b, " (%s)", e.Detail)
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

func (e *Error) Is(target error) bool {
	return sentinels[e.Kind] == target
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(kind ErrorKind, path string) *Error {
	return &Error{Kind: kind, Path: path, Index: -1}
}

func Missing(path, field string, expected string) *Error {
	e := newError(FieldMissing, path)
	e.Field = field
	e.Expected = expected
	return e
}

func Mismatch(path, field, expected, actual string) *Error {
	e := newError(TypeMismatch, path)
	e.Field = field
	e.Expected = expected
	e.Actual = actual
	return e
}

func Unknown(path, identifier string) *Error {
	e := newError(UnknownAlgorithm, path)
	e.Identifier = identifier
	return e
}

func Unsupported(path, identifier string, err error) *Error {
	e := newError(UnsupportedCombination, path)
	e.Identifier = identifier
	e.Err = err
	return e
}

func Empty(detail string) *Error {
	e := newError(EmptyPipeline, "")
	e.Detail = detail
	return e
}

// Locate sets the component index on every *Error in err's tree.
func Locate(err error, index int) error {
	visit(err, func(e *Error) {
		e.Index = index
	})
	return err
}

// Each calls fn for every *Error in err's tree, including joined errors.
func Each(err error, fn func(*Error)) {
	visit(err, fn)
}

func visit(err error, fn func(*Error)) {
	if err == nil {
		return
	}
	if e, ok := err.(*Error); ok {
		fn(e)
		return
	}
	switch u := err.(type) {
	case interface{ Unwrap() []error }:
		for _, inner := range u.Unwrap() {
			visit(inner, fn)
		}
	case interface{ Unwrap() error }:
		visit(u.Unwrap(), fn)
	}
}
