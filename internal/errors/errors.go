package errors

import (
	"errors"
	"fmt"
)

// ErrorType classifies application errors. The pipeline stages raise these
// directly; the HTTP layer maps them onto status codes.
type ErrorType string

const (
	ErrTypeEmptyInput      ErrorType = "EMPTY_INPUT"
	ErrTypeMissingColumn   ErrorType = "MISSING_COLUMN"
	ErrTypeParseFailure    ErrorType = "PARSE_FAILURE"
	ErrTypeDateParse       ErrorType = "DATE_PARSE"
	ErrTypeNoUpload        ErrorType = "NO_UPLOAD_AVAILABLE"
	ErrTypeDatasetNotFound ErrorType = "DATASET_NOT_FOUND"
	ErrTypeValidation      ErrorType = "VALIDATION"
	ErrTypePermission      ErrorType = "PERMISSION"
	ErrTypeNotFound        ErrorType = "NOT_FOUND"
	ErrTypeStorage         ErrorType = "STORAGE"
	ErrTypeConfig          ErrorType = "CONFIG"
)

// AppError is the application error type carried across stage boundaries.
type AppError struct {
	Type    ErrorType
	Message string
	Cause   error
	Context map[string]interface{}
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// Unwrap allows errors.Is and errors.As to work with AppError
func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithContext adds context to the error
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// NewAppError creates a new application error
func NewAppError(errType ErrorType, message string, cause error) *AppError {
	return &AppError{
		Type:    errType,
		Message: message,
		Cause:   cause,
		Context: make(map[string]interface{}),
	}
}

// IsType reports whether err is an AppError of the given type.
func IsType(err error, errType ErrorType) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type == errType
	}
	return false
}

// TypeOf returns the error type of err, or empty string for foreign errors.
func TypeOf(err error) ErrorType {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type
	}
	return ""
}

// Helper constructors for the pipeline error taxonomy

// NewEmptyInputError signals zero rows at stage entry.
func NewEmptyInputError(message string) *AppError {
	return NewAppError(ErrTypeEmptyInput, message, nil)
}

// NewMissingColumnError signals a required canonical column absent after
// standardization.
func NewMissingColumnError(column string) *AppError {
	return NewAppError(ErrTypeMissingColumn,
		fmt.Sprintf("unable to detect a %q column in the dataset", column), nil).
		WithContext("column", column)
}

// NewParseFailureError signals that parsing left zero usable rows.
func NewParseFailureError(message string) *AppError {
	return NewAppError(ErrTypeParseFailure, message, nil)
}

// NewDateParseError signals that no row carried a parseable date.
func NewDateParseError(message string) *AppError {
	return NewAppError(ErrTypeDateParse, message, nil)
}

// NewNoUploadError signals that no explicit filename was given and no prior
// upload could be resolved.
func NewNoUploadError(message string) *AppError {
	return NewAppError(ErrTypeNoUpload, message, nil)
}

// NewDatasetNotFoundError signals a grain request with no backing file.
func NewDatasetNotFoundError(grain string) *AppError {
	return NewAppError(ErrTypeDatasetNotFound,
		fmt.Sprintf("no validated datasets found for granularity=%q", grain), nil).
		WithContext("granularity", grain)
}

// NewValidationError creates a validation error
func NewValidationError(message string) *AppError {
	return NewAppError(ErrTypeValidation, message, nil)
}

// NewPermissionError creates a permission error
func NewPermissionError(message string) *AppError {
	return NewAppError(ErrTypePermission, message, nil)
}

// NewNotFoundError creates a not found error
func NewNotFoundError(resource string) *AppError {
	return NewAppError(ErrTypeNotFound, fmt.Sprintf("%s not found", resource), nil)
}

// NewStorageError creates a storage-related error
func NewStorageError(message string, cause error) *AppError {
	return NewAppError(ErrTypeStorage, message, cause)
}

// NewConfigError creates a configuration error
func NewConfigError(message string, cause error) *AppError {
	return NewAppError(ErrTypeConfig, message, cause)
}
