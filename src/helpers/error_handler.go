package helpers

import (
	"astrografia/src/logger"
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"
)

// -----------------------------------------------------------------------------
// Custom Error Types
// -----------------------------------------------------------------------------

type AstrografiaError struct {
	Message string
	Cause   error
}

func (e *AstrografiaError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AstrografiaError) Unwrap() error {
	return e.Cause
}

// ValidationError is a user-correctable input problem. Field names the offending input.
type ValidationError struct {
	AstrografiaError
	Field string
}

// UnknownTimezoneError is a ValidationError for an unresolvable IANA zone.
type UnknownTimezoneError struct {
	ValidationError
	Timezone string
}

func (e *UnknownTimezoneError) Unwrap() error {
	return &e.ValidationError
}

type ConfigurationError struct{ AstrografiaError }
type NetworkError struct{ AstrografiaError }
type DatabaseError struct{ AstrografiaError }
type InternalComputationError struct{ AstrografiaError }
type NotFoundError struct{ AstrografiaError }
type ConflictError struct{ AstrografiaError }
type AuthError struct{ AstrografiaError }
type NarrativeError struct{ AstrografiaError }

// -----------------------------------------------------------------------------
// Constructors
// -----------------------------------------------------------------------------

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{AstrografiaError: AstrografiaError{Message: message}, Field: field}
}

func NewUnknownTimezoneError(tz string, cause error) *UnknownTimezoneError {
	return &UnknownTimezoneError{
		ValidationError: ValidationError{
			AstrografiaError: AstrografiaError{Message: fmt.Sprintf("invalid or unknown timezone: %s", tz), Cause: cause},
			Field:            "tz",
		},
		Timezone: tz,
	}
}

func NewInternalComputationError(message string, cause error) *InternalComputationError {
	return &InternalComputationError{AstrografiaError{Message: message, Cause: cause}}
}

func NewConfigurationError(message string, cause error) *ConfigurationError {
	return &ConfigurationError{AstrografiaError{Message: message, Cause: cause}}
}

func NewNotFoundError(message string) *NotFoundError {
	return &NotFoundError{AstrografiaError{Message: message}}
}

func NewConflictError(message string) *ConflictError {
	return &ConflictError{AstrografiaError{Message: message}}
}

func NewAuthError(message string) *AuthError {
	return &AuthError{AstrografiaError{Message: message}}
}

func NewDatabaseError(message string, cause error) *DatabaseError {
	return &DatabaseError{AstrografiaError{Message: message, Cause: cause}}
}

func NewNetworkError(message string, cause error) *NetworkError {
	return &NetworkError{AstrografiaError{Message: message, Cause: cause}}
}

// -----------------------------------------------------------------------------
// Predicates
// -----------------------------------------------------------------------------

func IsValidation(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}

func IsNotFound(err error) bool {
	var target *NotFoundError
	return errors.As(err, &target)
}

func IsConflict(err error) bool {
	var target *ConflictError
	return errors.As(err, &target)
}

func IsAuth(err error) bool {
	var target *AuthError
	return errors.As(err, &target)
}

func IsConfiguration(err error) bool {
	var target *ConfigurationError
	return errors.As(err, &target)
}

func IsInternal(err error) bool {
	var target *InternalComputationError
	return errors.As(err, &target)
}

// -----------------------------------------------------------------------------
// Retry Logic
// -----------------------------------------------------------------------------

// RetryWithBackoff attempts to execute the operation up to maxRetries times with exponential backoff.
// Validation errors and context cancellation stop the loop immediately.
func RetryWithBackoff(ctx context.Context, maxRetries int, baseDelay time.Duration, fn func() (interface{}, error)) (interface{}, error) {
	if maxRetries <= 0 {
		maxRetries = 1
	}
	var lastErr error

	for attempt := 0; attempt < maxRetries; attempt++ {
		res, err := fn()
		if err == nil {
			return res, nil
		}

		lastErr = err
		if IsValidation(err) || attempt == maxRetries-1 {
			break
		}

		delay := baseDelay * (1 << attempt)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}
	}

	return nil, lastErr
}

// -----------------------------------------------------------------------------
// Error Handler
// -----------------------------------------------------------------------------

type ErrorHandler struct {
	Logger    *logger.Logger
	BaseDelay time.Duration

	errorCount atomic.Int64
}

func NewErrorHandler(log *logger.Logger) *ErrorHandler {
	if log == nil {
		log = logger.NewLogger(nil, "ErrorHandler")
	}
	return &ErrorHandler{
		Logger:    log,
		BaseDelay: time.Second,
	}
}

// -----------------------------------------------------------------------------

func (e *ErrorHandler) ResetErrorCount() {
	e.errorCount.Store(0)
}

// -----------------------------------------------------------------------------

// ErrorCount is the number of operations that exhausted their retries,
// decremented by later successes.
func (e *ErrorHandler) ErrorCount() int {
	return int(e.errorCount.Load())
}

// -----------------------------------------------------------------------------

// ExecuteWithRetry encapsulates logic to execute a function, retry on failure, and categorize errors.
func (e *ErrorHandler) ExecuteWithRetry(ctx context.Context, operation string, fn func() (interface{}, error), maxRetries int) (interface{}, error) {
	if maxRetries <= 0 {
		maxRetries = 1
	}

	for attempt := 0; attempt < maxRetries; attempt++ {
		res, err := fn()
		if err == nil {
			if n := e.errorCount.Load(); n > 0 {
				e.errorCount.CompareAndSwap(n, n-1)
			}
			return res, nil
		}

		if IsValidation(err) {
			return nil, err
		}

		if attempt == maxRetries-1 {
			e.errorCount.Add(1)
			e.Logger.Error("%s failed (attempt %d/%d): %v", operation, attempt+1, maxRetries, err)
			return nil, categorize(operation, err)
		}

		e.Logger.Warning("%s failed (attempt %d/%d): %v", operation, attempt+1, maxRetries, err)
		delay := e.BaseDelay * time.Duration(1<<attempt)
		select {
		case <-ctx.Done():
			return nil, categorize(operation, ctx.Err())
		case <-time.After(delay):
		}
	}

	return nil, &AstrografiaError{Message: fmt.Sprintf("%s failed after %d attempts", operation, maxRetries)}
}

// -----------------------------------------------------------------------------

func categorize(operation string, err error) error {
	msg := fmt.Sprintf("%s failed", operation)
	lowerOp := strings.ToLower(operation)
	switch {
	case strings.Contains(lowerOp, "narrat") || strings.Contains(lowerOp, "interpret"):
		return &NarrativeError{AstrografiaError{Message: msg, Cause: err}}
	case strings.Contains(lowerOp, "network") || strings.Contains(lowerOp, "fetch"):
		return &NetworkError{AstrografiaError{Message: msg, Cause: err}}
	case strings.Contains(lowerOp, "database") || strings.Contains(lowerOp, "save"):
		return &DatabaseError{AstrografiaError{Message: msg, Cause: err}}
	default:
		return &AstrografiaError{Message: msg, Cause: err}
	}
}

// -----------------------------------------------------------------------------

func (e *ErrorHandler) Handle(err error, context string) {
	if err != nil {
		e.Logger.Error("Error in %s: %v", context, err)
	}
}
