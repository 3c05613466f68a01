package kudu

import "fmt"

// StatusCode classifies the error kinds the core produces. See
// SPEC_FULL.md §7 for the propagation policy around each kind.
type StatusCode int

const (
	// CodeOK is never carried by a non-nil Status; it exists so zero-value
	// comparisons behave predictably.
	CodeOK StatusCode = iota
	// CodeInvalidArgument marks caller-supplied input the core rejected
	// outright (no master address, empty alter, bad flush mode, negative
	// session timeout).
	CodeInvalidArgument
	// CodeIllegalState marks an operation forbidden in the object's
	// current state (SetFlushMode while buffered, Apply with an unset
	// key, CountBufferedOperations outside ManualFlush).
	CodeIllegalState
	// CodeNotFound marks a tablet with no replicas.
	CodeNotFound
	// CodeTimedOut marks a retry-driver deadline expiry, or ctx ending
	// before Table.open sees a tablet assigned. An RPC that exceeds its own
	// timeout is not reported with this code: its transport error comes
	// back as CodePassthrough.
	CodeTimedOut
	// CodePassthrough marks a status translated verbatim from an RPC
	// response's embedded error.
	CodePassthrough
)

func (c StatusCode) String() string {
	switch c {
	case CodeOK:
		return "OK"
	case CodeInvalidArgument:
		return "InvalidArgument"
	case CodeIllegalState:
		return "IllegalState"
	case CodeNotFound:
		return "NotFound"
	case CodeTimedOut:
		return "TimedOut"
	case CodePassthrough:
		return "Passthrough"
	default:
		return "Unknown"
	}
}

// Status is the error type returned across the core's public surface. It
// is always non-nil when returned as an error; callers that want the kind
// use Code().
type Status struct {
	code StatusCode
	msg  string
}

func (s *Status) Error() string {
	if s == nil {
		return "<nil status>"
	}
	return fmt.Sprintf("%s: %s", s.code, s.msg)
}

// Code reports the status kind. Safe to call on a nil *Status, returning
// CodeOK.
func (s *Status) Code() StatusCode {
	if s == nil {
		return CodeOK
	}
	return s.code
}

// InvalidArgument builds a CodeInvalidArgument status.
func InvalidArgument(format string, args ...any) *Status {
	return &Status{code: CodeInvalidArgument, msg: fmt.Sprintf(format, args...)}
}

// IllegalState builds a CodeIllegalState status.
func IllegalState(format string, args ...any) *Status {
	return &Status{code: CodeIllegalState, msg: fmt.Sprintf(format, args...)}
}

// NotFound builds a CodeNotFound status.
func NotFound(format string, args ...any) *Status {
	return &Status{code: CodeNotFound, msg: fmt.Sprintf(format, args...)}
}

// TimedOut builds a CodeTimedOut status.
func TimedOut(format string, args ...any) *Status {
	return &Status{code: CodeTimedOut, msg: fmt.Sprintf(format, args...)}
}

// Passthrough wraps a server-side error message verbatim.
func Passthrough(serverMsg string) *Status {
	return &Status{code: CodePassthrough, msg: serverMsg}
}

// Is reports whether target shares this status's code, so that
// errors.Is(err, kudu.ErrNotFound) works against any *Status of that kind
// regardless of its message. A nil receiver only matches a nil target.
func (s *Status) Is(target error) bool {
	t, ok := target.(*Status)
	if !ok {
		return false
	}
	return s.Code() == t.Code()
}

// Sentinel Status values for errors.Is comparisons, e.g.
// errors.Is(err, kudu.ErrNotFound). Their message text is never
// meaningful — only their code is compared by Status.Is.
var (
	ErrInvalidArgument = &Status{code: CodeInvalidArgument}
	ErrIllegalState    = &Status{code: CodeIllegalState}
	ErrNotFound        = &Status{code: CodeNotFound}
	ErrTimedOut        = &Status{code: CodeTimedOut}
	ErrPassthrough     = &Status{code: CodePassthrough}
)

// IsOK reports whether err is nil, i.e. the call succeeded.
func IsOK(err error) bool { return err == nil }

// CodeOf extracts the StatusCode from err, or CodeOK if err is nil, or
// CodePassthrough if err is some other error type entirely (defensive:
// every internal path should only ever hand back a *Status).
func CodeOf(err error) StatusCode {
	if err == nil {
		return CodeOK
	}
	if s, ok := err.(*Status); ok {
		return s.Code()
	}
	return CodePassthrough
}
