// errors.go - Application error taxonomy.
//
// Every fallible core operation returns an *AppError so that exactly one
// component (the error mapper) decides the HTTP status, the error template,
// and the log severity for each kind.
package server

import (
	"errors"
	"fmt"
)

// ErrorKind classifies an AppError.
type ErrorKind int

const (
	// KindIO covers read/write failures on streams and files. These are
	// critical and usually indicate an environment or configuration problem.
	KindIO ErrorKind = iota
	// KindInvalid covers malformed client input: bad request lines, broken
	// headers, unparseable multipart bodies, disallowed filenames.
	KindInvalid
	// KindNotFound covers requests for files or pages that do not exist.
	KindNotFound
	// KindNotPermitted covers attempts to reach a resource outside the
	// uploads directory, typically a path traversal attempt.
	KindNotPermitted
	// KindUnknown covers everything else.
	KindUnknown
)

func (k ErrorKind) String() string {
	switch k {
	case KindIO:
		return "io"
	case KindInvalid:
		return "invalid"
	case KindNotFound:
		return "not_found"
	case KindNotPermitted:
		return "not_permitted"
	default:
		return "unknown"
	}
}

// AppError is a classified error with a descriptive message.
type AppError struct {
	Kind    ErrorKind
	Message string
}

func (e *AppError) Error() string {
	return e.Kind.String() + ": " + e.Message
}

// IOError builds an AppError of kind KindIO.
func IOError(format string, args ...any) *AppError {
	return &AppError{Kind: KindIO, Message: fmt.Sprintf(format, args...)}
}

// InvalidError builds an AppError of kind KindInvalid.
func InvalidError(format string, args ...any) *AppError {
	return &AppError{Kind: KindInvalid, Message: fmt.Sprintf(format, args...)}
}

// NotFoundError builds an AppError of kind KindNotFound.
func NotFoundError(format string, args ...any) *AppError {
	return &AppError{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

// NotPermittedError builds an AppError of kind KindNotPermitted.
func NotPermittedError(format string, args ...any) *AppError {
	return &AppError{Kind: KindNotPermitted, Message: fmt.Sprintf(format, args...)}
}

// UnknownError builds an AppError of kind KindUnknown.
func UnknownError(format string, args ...any) *AppError {
	return &AppError{Kind: KindUnknown, Message: fmt.Sprintf(format, args...)}
}

// AsAppError normalizes any error into an *AppError. Errors that are not
// already classified become KindUnknown so the boundary mapping stays total.
func AsAppError(err error) *AppError {
	if err == nil {
		return nil
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return &AppError{Kind: KindUnknown, Message: err.Error()}
}
