// Package errors defines the application error taxonomy and the centralized
// handler reporting failures to logs and sentry.
package errors

import "fmt"

type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// AppError carries an error code, an operator-facing message, a user-facing
// message, and handling hints.
type AppError struct {
	Code        string
	Message     string
	UserMessage string
	Severity    Severity
	Retryable   bool
	cause       error
}

func (e *AppError) Error() string {
	if e == nil {
		return ""
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.cause
}

// NewValidationError marks malformed or disallowed input. Moderation
// commands fail this way without ever reaching the user as an error.
func NewValidationError(msg string) *AppError {
	return &AppError{
		Code:        "E100",
		Message:     msg,
		UserMessage: fmt.Sprintf("Invalid request. %s", msg),
		Severity:    SeverityLow,
		Retryable:   false,
	}
}

// NewStorageError marks database or redis failures.
func NewStorageError(cause error) *AppError {
	var underlying string
	if cause != nil {
		underlying = cause.Error()
	}

	return &AppError{
		Code:        "E200",
		Message:     fmt.Sprintf("storage error: %s", underlying),
		UserMessage: "Temporary problem, please try again later.",
		Severity:    SeverityHigh,
		Retryable:   true,
		cause:       cause,
	}
}

// NewProviderError marks language-model backend failures.
func NewProviderError(cause error) *AppError {
	return &AppError{
		Code:        "E300",
		Message:     "language-model backend error",
		UserMessage: "The assistant is temporarily unavailable.",
		Severity:    SeverityMedium,
		Retryable:   true,
		cause:       cause,
	}
}

// NewConfigError marks configuration persistence failures. These are
// best-effort by design and never abort the operation that triggered them.
func NewConfigError(cause error) *AppError {
	return &AppError{
		Code:        "E400",
		Message:     "configuration persistence error",
		UserMessage: "",
		Severity:    SeverityMedium,
		Retryable:   false,
		cause:       cause,
	}
}
