package errors

import (
	"errors"
	"fmt"
)

// ErrorType represents different types of errors in the system
type ErrorType string

const (
	// ErrorTypeNotFound indicates a resource was not found
	ErrorTypeNotFound ErrorType = "NOT_FOUND"

	// ErrorTypeValidation indicates a validation error
	ErrorTypeValidation ErrorType = "VALIDATION"

	// ErrorTypeInternal indicates an internal server error
	ErrorTypeInternal ErrorType = "INTERNAL"

	// ErrorTypeExternal indicates an error from an external service
	ErrorTypeExternal ErrorType = "EXTERNAL"

	// ErrorTypeFeatureComputation indicates a single prediction's features
	// could not be computed (unresolvable patient, malformed dates). Local to
	// one request.
	ErrorTypeFeatureComputation ErrorType = "FEATURE_COMPUTATION"

	// ErrorTypeModelUnavailable indicates no active model exists yet. Fatal
	// to the calling operation, not to the process.
	ErrorTypeModelUnavailable ErrorType = "MODEL_UNAVAILABLE"

	// ErrorTypeInsufficientData indicates the cleaned training dataset is too
	// small or single-class. Training-path only.
	ErrorTypeInsufficientData ErrorType = "INSUFFICIENT_DATA"

	// ErrorTypeDegenerateTraining indicates the stratified split could not
	// preserve both label classes. Training-path only.
	ErrorTypeDegenerateTraining ErrorType = "DEGENERATE_TRAINING"

	// ErrorTypeConcurrentTraining indicates a training trigger arrived while
	// a job was already running. Coalesced, never surfaced to callers.
	ErrorTypeConcurrentTraining ErrorType = "CONCURRENT_TRAINING"
)

// AppError represents an application error
type AppError struct {
	Type    ErrorType
	Message string
	Err     error
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap implements the unwrap interface
func (e *AppError) Unwrap() error {
	return e.Err
}

// IsType reports whether err is an AppError of the given type anywhere in
// its chain.
func IsType(err error, t ErrorType) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type == t
	}
	return false
}

// NewNotFoundError creates a new not found error
func NewNotFoundError(message string) *AppError {
	return &AppError{
		Type:    ErrorTypeNotFound,
		Message: message,
	}
}

// NewValidationError creates a new validation error
func NewValidationError(message string) *AppError {
	return &AppError{
		Type:    ErrorTypeValidation,
		Message: message,
	}
}

// NewInternalError creates a new internal error
func NewInternalError(message string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeInternal,
		Message: message,
		Err:     err,
	}
}

// NewExternalError creates a new external service error
func NewExternalError(message string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeExternal,
		Message: message,
		Err:     err,
	}
}

// NewFeatureComputationError creates a new feature computation error
func NewFeatureComputationError(message string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeFeatureComputation,
		Message: message,
		Err:     err,
	}
}

// NewModelUnavailableError creates a new model unavailable error
func NewModelUnavailableError(message string) *AppError {
	return &AppError{
		Type:    ErrorTypeModelUnavailable,
		Message: message,
	}
}

// NewInsufficientDataError creates a new insufficient data error
func NewInsufficientDataError(message string) *AppError {
	return &AppError{
		Type:    ErrorTypeInsufficientData,
		Message: message,
	}
}

// NewDegenerateTrainingError creates a new degenerate training error
func NewDegenerateTrainingError(message string) *AppError {
	return &AppError{
		Type:    ErrorTypeDegenerateTraining,
		Message: message,
	}
}

// NewConcurrentTrainingError creates a new concurrent training error
func NewConcurrentTrainingError(message string) *AppError {
	return &AppError{
		Type:    ErrorTypeConcurrentTraining,
		Message: message,
	}
}
