// Package spiceerr defines the error taxonomy shared by every stage of the
// operating-point pipeline. Each stage returns an *Error carrying a Kind, an
// optional netlist line and a reason; the wrapped sentinel can be tested with
// errors.Is.
package spiceerr

import (
	"context"
	"errors"
	"fmt"
)

type Kind string

const (
	KindParse     Kind = "ParseError"
	KindTopology  Kind = "TopologyError"
	KindValue     Kind = "ValueError"
	KindDuplicate Kind = "DuplicateError"
	KindSingular  Kind = "SingularMatrixError"
	KindQuery     Kind = "QueryError"
	KindLimit     Kind = "LimitError"
	KindTimeout   Kind = "TimeoutError"
	KindRequest   Kind = "RequestError"
	KindInternal  Kind = "InternalError"
)

var (
	ErrMalformedLine      = errors.New("malformed line")
	ErrUnknownComponent   = errors.New("unknown component")
	ErrInvalidValue       = errors.New("invalid value")
	ErrDuplicateComponent = errors.New("duplicate component")
	ErrFloatingNode       = errors.New("floating node")
	ErrNoReferenceNode    = errors.New("no reference node")
	ErrSingularMatrix     = errors.New("singular matrix")
	ErrUnknownNode        = errors.New("unknown node")
	ErrInvalidQuery       = errors.New("invalid query")
	ErrTooLarge           = errors.New("circuit too large")
	ErrBadRequest         = errors.New("bad request")
)

// Error is a classified pipeline failure. Line is 1-based; zero means the
// error is not tied to a netlist line.
type Error struct {
	Kind   Kind
	Line   int
	Reason string
	Err    error
}

func (e *Error) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, e.Reason)
	}
	return e.Reason
}

func (e *Error) Unwrap() error { return e.Err }

func New(kind Kind, line int, sentinel error, format string, args ...any) *Error {
	return &Error{
		Kind:   kind,
		Line:   line,
		Reason: fmt.Sprintf(format, args...),
		Err:    sentinel,
	}
}

// KindOf classifies any error returned by the pipeline. Context errors map to
// KindTimeout; errors that are not *Error map to KindInternal.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return KindTimeout
	}
	return KindInternal
}

// LineOf returns the netlist line attached to err, or 0.
func LineOf(err error) int {
	var e *Error
	if errors.As(err, &e) {
		return e.Line
	}
	return 0
}
