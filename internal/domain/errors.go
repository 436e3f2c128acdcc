package domain

import (
	"errors"
	"fmt"
)

// Error kinds. Every error surfaced by the synchronization layer wraps exactly one.
var (
	// ErrValidation: malformed input caught before or at the backend boundary.
	ErrValidation = errors.New("validation error")
	// ErrNotFound: the operation referenced an id the backend no longer has.
	ErrNotFound = errors.New("not found")
	// ErrTransport: the channel is unavailable or the call did not complete.
	ErrTransport = errors.New("transport error")
	// ErrBackend: the backend executed the operation but reported failure.
	ErrBackend = errors.New("backend error")
)

// Wire names of the error kinds.
const (
	KindValidation = "validation"
	KindNotFound   = "not_found"
	KindTransport  = "transport"
	KindBackend    = "backend"
)

type kindError struct {
	kind error
	msg  string
}

func (e *kindError) Error() string { return e.kind.Error() + ": " + e.msg }
func (e *kindError) Unwrap() error { return e.kind }

// Message returns the text without the kind prefix.
func (e *kindError) Message() string { return e.msg }

func Validationf(format string, args ...any) error {
	return &kindError{kind: ErrValidation, msg: fmt.Sprintf(format, args...)}
}

func NotFoundf(format string, args ...any) error {
	return &kindError{kind: ErrNotFound, msg: fmt.Sprintf(format, args...)}
}

func Transportf(format string, args ...any) error {
	return &kindError{kind: ErrTransport, msg: fmt.Sprintf(format, args...)}
}

func Backendf(format string, args ...any) error {
	return &kindError{kind: ErrBackend, msg: fmt.Sprintf(format, args...)}
}

// KindOf returns the wire name of err's kind. Unclassified errors are backend errors.
func KindOf(err error) string {
	switch {
	case errors.Is(err, ErrValidation):
		return KindValidation
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrTransport):
		return KindTransport
	default:
		return KindBackend
	}
}

// FromKind rebuilds an error of the named kind carrying msg.
func FromKind(kind, msg string) error {
	switch kind {
	case KindValidation:
		return Validationf("%s", msg)
	case KindNotFound:
		return NotFoundf("%s", msg)
	case KindTransport:
		return Transportf("%s", msg)
	default:
		return Backendf("%s", msg)
	}
}

// MessageOf returns err's text without the kind prefix when it has one.
func MessageOf(err error) string {
	var ke *kindError
	if errors.As(err, &ke) {
		return ke.Message()
	}
	return err.Error()
}
