// Package diag implements the error taxonomy from spec §7: a small closed
// set of error kinds, each naming the vertex (and where applicable the
// dependency, key, or expression fragment) responsible, plus a multi-error
// accumulator for validation passes that want to report every problem they
// find rather than stopping at the first.
package diag

import (
	"fmt"

	multierror "github.com/hashicorp/go-multierror"
)

// Kind is one of the six error kinds spec §7 defines.
type Kind string

const (
	KindValidation Kind = "validation"
	KindResolution Kind = "resolution"
	KindDispatch   Kind = "dispatch"
	KindContract   Kind = "contract"
	KindStoreIO    Kind = "store_io"
	KindCancelled  Kind = "cancelled"
)

// Error is the core's single error type. Vertex is empty when an error
// is not associated with any one vertex (e.g. a parameter-binding failure
// reported by registry.Bind).
type Error struct {
	Kind    Kind
	Vertex  string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Vertex != "" {
		if e.Cause != nil {
			return fmt.Sprintf("%s: vertex %q: %s: %v", e.Kind, e.Vertex, e.Message, e.Cause)
		}
		return fmt.Sprintf("%s: vertex %q: %s", e.Kind, e.Vertex, e.Message)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

// New builds an Error with no associated vertex.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Newf builds an Error with no associated vertex from a format string.
func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// ForVertex builds an Error naming the offending vertex.
func ForVertex(kind Kind, vertex, message string) *Error {
	return &Error{Kind: kind, Vertex: vertex, Message: message}
}

// ForVertexf builds an Error naming the offending vertex from a format
// string.
func ForVertexf(kind Kind, vertex, format string, args ...any) *Error {
	return &Error{Kind: kind, Vertex: vertex, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a cause to an existing Error-shaped failure, preserving its
// kind and vertex.
func Wrap(kind Kind, vertex, message string, cause error) *Error {
	return &Error{Kind: kind, Vertex: vertex, Message: message, Cause: cause}
}

// Is reports whether err is a *Error of the given kind.
func Is(err error, kind Kind) bool {
	var e *Error
	if !asError(err, &e) {
		return false
	}
	return e.Kind == kind
}

func asError(err error, target **Error) bool {
	for err != nil {
		if e, ok := err.(*Error); ok {
			*target = e
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}

// Multi accumulates multiple validation failures into a single error,
// backed by hashicorp/go-multierror the way the teacher's remote-state
// backends accumulate per-object failures.
type Multi struct {
	err *multierror.Error
}

// Append records err, ignoring a nil error.
func (m *Multi) Append(err error) {
	if err == nil {
		return
	}
	m.err = multierror.Append(m.err, err)
}

// HasErrors reports whether any error has been appended.
func (m *Multi) HasErrors() bool {
	return m.err != nil && m.err.Len() > 0
}

// ErrorOrNil returns the accumulated error, or nil if nothing was appended.
func (m *Multi) ErrorOrNil() error {
	if m.err == nil {
		return nil
	}
	return m.err.ErrorOrNil()
}
