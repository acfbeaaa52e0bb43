package room

import "errors"

// ErrorKind discriminates the two failure classes the room core raises.
type ErrorKind int

const (
	// KindNotFound means the referenced room does not exist.
	KindNotFound ErrorKind = iota
	// KindInvalidRequest means an ordered precondition failed.
	KindInvalidRequest
)

// Error is a tagged domain error: a kind plus a human-readable reason
// matching the specific rule that was violated. Both kinds are raised
// synchronously to the caller and never retried or swallowed by the core.
type Error struct {
	Kind    ErrorKind
	Message string
}

// Error implements the error interface.
func (e *Error) Error() string { return e.Message }

// NotFound builds a KindNotFound error with the given reason.
func NotFound(msg string) *Error {
	return &Error{Kind: KindNotFound, Message: msg}
}

// InvalidRequest builds a KindInvalidRequest error with the given reason.
func InvalidRequest(msg string) *Error {
	return &Error{Kind: KindInvalidRequest, Message: msg}
}

// IsNotFound reports whether err is a room Error of kind KindNotFound.
func IsNotFound(err error) bool {
	var re *Error
	return errors.As(err, &re) && re.Kind == KindNotFound
}

// IsInvalidRequest reports whether err is a room Error of kind
// KindInvalidRequest.
func IsInvalidRequest(err error) bool {
	var re *Error
	return errors.As(err, &re) && re.Kind == KindInvalidRequest
}

// IsDomain reports whether err belongs to the room error taxonomy at all.
// The inbound gateway uses this to decide between notifying the acting
// player and logging a transport fault.
func IsDomain(err error) bool {
	var re *Error
	return errors.As(err, &re)
}
