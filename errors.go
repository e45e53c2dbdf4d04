package hm3301

import (
	"errors"
	"fmt"
)

type ErrorKind int

const (
	KindTransport ErrorKind = iota + 1
	KindInvalidInputData
	KindChecksumFailed
)

func (k ErrorKind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindInvalidInputData:
		return "invalid input data"
	case KindChecksumFailed:
		return "checksum failed"
	}
	return fmt.Sprintf("ErrorKind(%d)", int(k))
}

// Error is the only error type returned by the driver.
// Err is set only for KindTransport, and it is never inspected here
type Error struct {
	Kind   ErrorKind
	Err    error
	Detail string
}

var (
	ErrInvalidInputData = &Error{Kind: KindInvalidInputData}
	ErrChecksumFailed   = &Error{Kind: KindChecksumFailed}
)

func (e *Error) Error() string {
	msg := "hm3301: " + e.Kind.String()
	if e.Detail != "" {
		msg += " (" + e.Detail + ")"
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches on kind only, so errors.Is(err, ErrChecksumFailed) works for any detail
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

func transportError(err error) *Error {
	return &Error{Kind: KindTransport, Err: err}
}

func invalidInput(format string, a ...interface{}) *Error {
	return &Error{Kind: KindInvalidInputData, Detail: fmt.Sprintf(format, a...)}
}

// IsTransport reports whether err came from the bus transport
func IsTransport(err error) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == KindTransport
	}
	return false
}
