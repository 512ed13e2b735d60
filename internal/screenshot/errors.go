package screenshot

import (
	"errors"
	"fmt"
)

// Kind classifies a screenshot failure so callers can branch on it
type Kind string

const (
	KindPlatformUnsupported Kind = "platform_unsupported"
	KindCaptureFailed       Kind = "capture_failed"
	KindResizeFailed        Kind = "resize_failed"
	KindEncodeFailed        Kind = "encode_failed"
	KindTimeout             Kind = "timeout"
)

// Error is the single error type returned by every pipeline stage
type Error struct {
	Kind   Kind
	Reason string
	Err    error
}

// Sentinels for errors.Is checks; matching is by Kind only
var (
	ErrPlatformUnsupported = &Error{Kind: KindPlatformUnsupported}
	ErrCaptureFailed       = &Error{Kind: KindCaptureFailed}
	ErrResizeFailed        = &Error{Kind: KindResizeFailed}
	ErrEncodeFailed        = &Error{Kind: KindEncodeFailed}
	ErrTimeout             = &Error{Kind: KindTimeout}
)

// Error implements the error interface
func (e *Error) Error() string {
	switch e.Kind {
	case KindPlatformUnsupported:
		return "platform not supported"
	case KindCaptureFailed:
		return "capture failed: " + e.Reason
	case KindResizeFailed:
		return "resize failed: " + e.Reason
	case KindEncodeFailed:
		return "encoding failed: " + e.Reason
	case KindTimeout:
		return "timeout exceeded"
	default:
		return fmt.Sprintf("%s: %s", e.Kind, e.Reason)
	}
}

// Unwrap returns the underlying cause, if any
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is a screenshot error of the same kind
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// CaptureFailed wraps a platform capture error
func CaptureFailed(reason string, err error) *Error {
	return newError(KindCaptureFailed, reason, err)
}

// ResizeFailed wraps a decode or resample error
func ResizeFailed(reason string, err error) *Error {
	return newError(KindResizeFailed, reason, err)
}

// EncodeFailed wraps a codec error
func EncodeFailed(reason string, err error) *Error {
	return newError(KindEncodeFailed, reason, err)
}

// Timeout is for callers that put a deadline around the pipeline. The
// pipeline itself never returns it.
func Timeout(err error) *Error {
	return &Error{Kind: KindTimeout, Err: err}
}

func newError(kind Kind, reason string, err error) *Error {
	if err != nil {
		reason = fmt.Sprintf("%s: %v", reason, err)
	}
	return &Error{Kind: kind, Reason: reason, Err: err}
}

// KindOf extracts the Kind of err, or "" when err is not a screenshot error
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}
