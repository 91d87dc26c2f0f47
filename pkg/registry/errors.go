package registry

import "fmt"

// Kind is the error taxonomy of spec §7, as a closed set of sentinel
// categories rather than distinct Go error types.
type Kind string

const (
	KindIllegalInput Kind = "illegal_input"
	KindIllegalState Kind = "illegal_state"
	KindNotFound     Kind = "not_found"
)

// Error is the registry's control-path error type. It carries a Kind so
// callers (CLI, and any transport built atop this package) can render
// or map it without string matching.
type Error struct {
	Kind    Kind
	Op      string
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("registry: %s: %s: %s", e.Op, e.Kind, e.Message)
}

func illegalInput(op, format string, args ...any) *Error {
	return &Error{Kind: KindIllegalInput, Op: op, Message: fmt.Sprintf(format, args...)}
}

func illegalState(op, format string, args ...any) *Error {
	return &Error{Kind: KindIllegalState, Op: op, Message: fmt.Sprintf(format, args...)}
}

func notFound(op, jobID string) *Error {
	return &Error{Kind: KindNotFound, Op: op, Message: fmt.Sprintf("no such job %q", jobID)}
}

// IsIllegalInput reports whether err is a registry Error of kind
// illegal_input.
func IsIllegalInput(err error) bool { return isKind(err, KindIllegalInput) }

// IsIllegalState reports whether err is a registry Error of kind
// illegal_state.
func IsIllegalState(err error) bool { return isKind(err, KindIllegalState) }

// IsNotFound reports whether err is a registry Error of kind not_found.
func IsNotFound(err error) bool { return isKind(err, KindNotFound) }

func isKind(err error, k Kind) bool {
	rerr, ok := err.(*Error)
	return ok && rerr.Kind == k
}
