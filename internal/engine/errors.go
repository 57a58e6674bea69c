package engine

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorKind is the classified category of an engine failure. The underlying
// provider exposes no typed error taxonomy, so classification happens once
// here, by message inspection, and the rest of the system switches on the
// kind instead of re-parsing strings.
type ErrorKind int

// Engine error categories.
const (
	KindUnknown ErrorKind = iota
	KindAuth
	KindQuota
	KindFile
	KindPermission
)

// String returns the category name.
func (k ErrorKind) String() string {
	switch k {
	case KindAuth:
		return "auth"
	case KindQuota:
		return "quota"
	case KindFile:
		return "file"
	case KindPermission:
		return "permission"
	default:
		return "unknown"
	}
}

// Error wraps a provider failure with its classified kind and the operation
// that produced it.
type Error struct {
	Kind ErrorKind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("engine %s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Message returns a user-facing description for the classified failure.
func (e *Error) Message() string {
	switch e.Kind {
	case KindAuth:
		return "Invalid or missing API key. Please check your GEMINI_API_KEY environment variable."
	case KindQuota:
		return "API quota exceeded or rate limit reached. Please try again later."
	case KindFile:
		return fmt.Sprintf("File processing error: %v. Please ensure files are uploaded and in ACTIVE state.", e.Err)
	case KindPermission:
		return fmt.Sprintf("Permission denied: %v. Please check file access permissions.", e.Err)
	default:
		return e.Err.Error()
	}
}

// Classify determines the error category from the provider's message text.
func Classify(err error) ErrorKind {
	if err == nil {
		return KindUnknown
	}
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "api key") || strings.Contains(msg, "authentication") || strings.Contains(msg, "unauthenticated"):
		return KindAuth
	case strings.Contains(msg, "quota") || strings.Contains(msg, "rate limit") || strings.Contains(msg, "resource exhausted"):
		return KindQuota
	case strings.Contains(msg, "permission") || strings.Contains(msg, "access denied"):
		return KindPermission
	case strings.Contains(msg, "file") || strings.Contains(msg, "not found"):
		return KindFile
	default:
		return KindUnknown
	}
}

// wrapErr classifies err and wraps it with the operation name.
func wrapErr(op string, err error) *Error {
	return &Error{Kind: Classify(err), Op: op, Err: err}
}

// KindOf returns the classified kind of err, or KindUnknown when err is not
// an engine error.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}
