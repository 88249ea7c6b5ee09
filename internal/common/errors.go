package common

import (
	"errors"
	"fmt"
)

// AppError represents application-specific errors
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Pipeline error taxonomy. Stage packages wrap these sentinels in an AppError
// so callers can branch with errors.Is regardless of the message detail.
var (
	// validation
	ErrSizeExceeded    = errors.New("file size exceeded")
	ErrUnknownType     = errors.New("unknown file type")
	ErrUnsupportedType = errors.New("unsupported file type")
	ErrCorruptFile     = errors.New("corrupt file")

	// extraction
	ErrPrecondition     = errors.New("precondition violated")
	ErrExtractionFailed = errors.New("extraction failed")

	// insight
	ErrEmptyInput         = errors.New("empty input")
	ErrServiceUnavailable = errors.New("completion service unavailable")
	ErrMalformedResponse  = errors.New("malformed completion response")

	// general
	ErrNotFound     = errors.New("resource not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrDatabase     = errors.New("database error")
)

// NewAppError builds an AppError around one of the sentinel errors above.
func NewAppError(code, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}
