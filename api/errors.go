// Package api
// Author: momentics <momentics@gmail.com>
//
// Common error types and error handling utilities for layer8-ws.
//
// Every failure surfaced by the frame socket and the Layer8 streamer is an
// *Error carrying one of the codes below. Clean end-of-data is io.EOF and is
// never wrapped.

package api

import (
	"errors"
	"fmt"
)

// ErrorCode represents specific error conditions in the library.
type ErrorCode int

const (
	ErrCodeOK ErrorCode = iota
	ErrCodeIO
	ErrCodeProtocol
	ErrCodeEncoding
	ErrCodeCrypto
	ErrCodeEnvelope
	ErrCodeNestedFrameMissing
	ErrCodeInvalidArgument
)

func (c ErrorCode) String() string {
	switch c {
	case ErrCodeOK:
		return "ok"
	case ErrCodeIO:
		return "io"
	case ErrCodeProtocol:
		return "protocol"
	case ErrCodeEncoding:
		return "encoding"
	case ErrCodeCrypto:
		return "crypto"
	case ErrCodeEnvelope:
		return "envelope"
	case ErrCodeNestedFrameMissing:
		return "nested frame missing"
	case ErrCodeInvalidArgument:
		return "invalid argument"
	default:
		return fmt.Sprintf("code(%d)", int(c))
	}
}

// Kind sentinels, usable with errors.Is against any *Error of the same code.
var (
	ErrIO                 = &Error{Code: ErrCodeIO, Message: "i/o failure"}
	ErrProtocol           = &Error{Code: ErrCodeProtocol, Message: "protocol violation"}
	ErrEncoding           = &Error{Code: ErrCodeEncoding, Message: "invalid encoding"}
	ErrCrypto             = &Error{Code: ErrCodeCrypto, Message: "crypto failure"}
	ErrEnvelope           = &Error{Code: ErrCodeEnvelope, Message: "envelope failure"}
	ErrNestedFrameMissing = &Error{Code: ErrCodeNestedFrameMissing, Message: "nested frame missing"}
	ErrInvalidArgument    = &Error{Code: ErrCodeInvalidArgument, Message: "invalid argument"}
)

// Error represents a structured error with code and context.
type Error struct {
	Code    ErrorCode
	Message string
	Context map[string]any
	Err     error
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := e.Message
	if e.Err != nil {
		msg = msg + ": " + e.Err.Error()
	}
	if len(e.Context) == 0 {
		return msg
	}
	return fmt.Sprintf("%s (context: %+v)", msg, e.Context)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is a kind sentinel (or any *Error) with the same code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code == e.Code && (t.Message == e.Message || isSentinel(t))
}

func isSentinel(e *Error) bool {
	switch e {
	case ErrIO, ErrProtocol, ErrEncoding, ErrCrypto, ErrEnvelope, ErrNestedFrameMissing, ErrInvalidArgument:
		return true
	}
	return false
}

// NewError creates a new structured error.
func NewError(code ErrorCode, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Context: make(map[string]any),
	}
}

// Wrap creates a structured error around cause.
func Wrap(code ErrorCode, message string, cause error) *Error {
	return &Error{Code: code, Message: message, Err: cause}
}

// WithContext adds context information to the error.
func (e *Error) WithContext(key string, value any) *Error {
	if e.Context == nil {
		e.Context = make(map[string]any)
	}
	e.Context[key] = value
	return e
}

// CodeOf extracts the ErrorCode of err, or ErrCodeOK if err carries none.
func CodeOf(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ErrCodeOK
}
