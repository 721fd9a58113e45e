package errors

import (
	stderrors "errors"
	"fmt"
)

// Kind classifies how far a failure is allowed to propagate
type Kind string

const (
	// KindFatal aborts the run before or right after the session starts
	KindFatal Kind = "fatal"
	// KindAsset drops a single image and lets the post continue
	KindAsset Kind = "asset"
	// KindPost discards one post's partial record
	KindPost Kind = "post"
	// KindBestEffort marks expected misses such as an absent selector
	KindBestEffort Kind = "best_effort"
)

// Error carries a failure together with its propagation kind
type Error struct {
	Kind    Kind
	Op      string
	Message string
	Err     error
}

func (e *Error) Error() string {
	msg := e.Message
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Err != nil {
		return fmt.Sprintf("%s error: %s: %v", e.Kind, msg, e.Err)
	}
	return fmt.Sprintf("%s error: %s", e.Kind, msg)
}

// Unwrap returns the underlying cause
func (e *Error) Unwrap() error {
	return e.Err
}

// New creates an Error of the given kind
func New(kind Kind, op, message string, err error) *Error {
	return &Error{Kind: kind, Op: op, Message: message, Err: err}
}

// Fatal creates an error that must stop the process
func Fatal(op, message string, err error) *Error {
	return New(KindFatal, op, message, err)
}

// Asset creates a per-asset error
func Asset(op, message string, err error) *Error {
	return New(KindAsset, op, message, err)
}

// Post creates a per-post error
func Post(op, message string, err error) *Error {
	return New(KindPost, op, message, err)
}

// BestEffort creates an error for an expected, absorbable miss
func BestEffort(op, message string, err error) *Error {
	return New(KindBestEffort, op, message, err)
}

// KindOf reports the kind of the first classified error in the chain.
// Unclassified errors are treated as per-post failures.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var e *Error
	if stderrors.As(err, &e) {
		return e.Kind
	}
	return KindPost
}

// IsFatal checks whether err must abort the run
func IsFatal(err error) bool {
	return err != nil && KindOf(err) == KindFatal
}

// IsBestEffort checks whether err is an expected miss that should not be logged as a failure
func IsBestEffort(err error) bool {
	return err != nil && KindOf(err) == KindBestEffort
}
