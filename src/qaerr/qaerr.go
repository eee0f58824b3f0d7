// Package qaerr holds the errors the forum's integrity rules report to their
// callers. Every failure a caller is expected to handle matches one of the
// sentinels below with errors.Is.
package qaerr

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrUnauthenticated       = errors.New("you must be signed in to do that")
	ErrForbidden             = errors.New("you are not allowed to do that")
	ErrNotFound              = errors.New("not found")
	ErrThreadLocked          = errors.New("This thread is locked. No new answers can be added.")
	ErrContentFlagged        = errors.New("content was flagged by moderation")
	ErrModerationUnavailable = errors.New("content moderation is currently unavailable")
	ErrValidationFailed      = errors.New("validation failed")
)

// Redacting an answer requires replacement text. Also matches
// ErrValidationFailed.
var ErrMissingRedactionBody = &ValidationError{
	Field:   "redacted_body",
	Message: "must be provided when content is redacted",
}

// A field-level validation failure.
type ValidationError struct {
	Field   string
	Message string
}

func Validation(field, format string, args ...any) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: fmt.Sprintf(format, args...),
	}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Message)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidationFailed
}

type NotFoundError struct {
	What string
	ID   int
}

func NotFound(what string, id int) *NotFoundError {
	return &NotFoundError{What: what, ID: id}
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.What, e.ID)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// Content rejected by the classifier. Carries the provider's category scores
// for logging.
type FlaggedError struct {
	Categories []string
	Scores     map[string]float64
}

func (e *FlaggedError) Error() string {
	if len(e.Categories) == 0 {
		return ErrContentFlagged.Error()
	}
	cats := append([]string(nil), e.Categories...)
	sort.Strings(cats)
	return fmt.Sprintf("%s (%s)", ErrContentFlagged.Error(), strings.Join(cats, ", "))
}

func (e *FlaggedError) Is(target error) bool {
	return target == ErrContentFlagged
}

// The classifier could not produce a verdict. Cause is the transport, status or
// decoding failure behind it.
type UnavailableError struct {
	Cause error
}

func (e *UnavailableError) Error() string {
	if e.Cause == nil {
		return ErrModerationUnavailable.Error()
	}
	return fmt.Sprintf("%s: %v", ErrModerationUnavailable.Error(), e.Cause)
}

func (e *UnavailableError) Is(target error) bool {
	return target == ErrModerationUnavailable
}

func (e *UnavailableError) Unwrap() error {
	return e.Cause
}
