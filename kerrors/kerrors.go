// Package kerrors defines the small error-kind taxonomy shared by every
// component package so the action dispatcher can always recover a failed
// action into a human-readable message without type-switching on each
// package's own sentinel errors.
package kerrors

import "fmt"

// Kind classifies why an operation failed.
type Kind int

const (
	// InputFormat marks malformed input: bad base64, wrong byte length, an
	// unrecognized poly tag, a missing JSON key.
	InputFormat Kind = iota
	// Domain marks a value that is well-formed but mathematically invalid
	// for the requested operation: inverting zero, dividing by the zero
	// polynomial, a degree that isn't a multiple of d in EDF.
	Domain
	// Protocol marks a failure talking to the padding-oracle server: a
	// short read, a send failure, no candidate validating.
	Protocol
	// Dispatch marks an unknown action name, or an action whose handler
	// panicked.
	Dispatch
)

func (k Kind) String() string {
	switch k {
	case InputFormat:
		return "input-format"
	case Domain:
		return "domain"
	case Protocol:
		return "protocol"
	case Dispatch:
		return "dispatch"
	default:
		return "unknown"
	}
}

// Error is a sentinel error carrying a Kind alongside its message.
type Error struct {
	Kind Kind
	Msg  string
}

func (e *Error) Error() string { return e.Msg }

// New builds an *Error for the given kind.
func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}

// Newf builds an *Error with a formatted message.
func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// Wrap annotates err with a prefix under the given kind, producing the message
// "prefix: <err's message>". Only err's message is kept: the result does not
// unwrap to err.
func Wrap(kind Kind, prefix string, err error) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf("%s: %s", prefix, err)}
}
