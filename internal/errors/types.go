// Package errors provides the structured error type used by dashvars outside
// of the pure scanning core. Absence of a reference is never an error; these
// types describe I/O, configuration, store and contract failures.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorType represents different categories of errors.
type ErrorType string

const (
	ErrorTypeValidation      ErrorType = "validation"
	ErrorTypeInvalidArgument ErrorType = "invalid_argument"
	ErrorTypeNotFound        ErrorType = "not_found"
	ErrorTypeIO              ErrorType = "io"
	ErrorTypeConfig          ErrorType = "config"
	ErrorTypeInternal        ErrorType = "internal"
)

// Common error codes.
const (
	ErrCodeInvalidPath      = "ERR_INVALID_PATH"
	ErrCodePathTraversal    = "ERR_PATH_TRAVERSAL"
	ErrCodeConfigInvalid    = "ERR_CONFIG_INVALID"
	ErrCodeFileNotFound     = "ERR_FILE_NOT_FOUND"
	ErrCodeParseFailed      = "ERR_PARSE_FAILED"
	ErrCodeVariableNotFound = "ERR_VARIABLE_NOT_FOUND"
	ErrCodeUnknownProperty  = "ERR_UNKNOWN_PROPERTY"
	ErrCodeInvalidValue     = "ERR_INVALID_VALUE"
	ErrCodeMissingInput     = "ERR_MISSING_INPUT"
	ErrCodeInternalError    = "ERR_INTERNAL"
)

// DashvarsError is a structured error type with context.
type DashvarsError struct {
	Type     ErrorType
	Code     string
	Message  string
	Cause    error
	Context  map[string]interface{}
	FilePath string
	Line     int
}

// Error implements the error interface.
func (e *DashvarsError) Error() string {
	var parts []string

	if e.Code != "" {
		parts = append(parts, fmt.Sprintf("[%s]", e.Code))
	}

	if e.FilePath != "" {
		location := e.FilePath
		if e.Line > 0 {
			location += fmt.Sprintf(":%d", e.Line)
		}
		parts = append(parts, location)
	}

	parts = append(parts, e.Message)

	result := strings.Join(parts, " ")

	if e.Cause != nil {
		result += fmt.Sprintf(": %v", e.Cause)
	}

	return result
}

// Unwrap returns the underlying cause error.
func (e *DashvarsError) Unwrap() error {
	return e.Cause
}

// Is reports a match when target is a DashvarsError with the same type and code.
func (e *DashvarsError) Is(target error) bool {
	var t *DashvarsError
	if errors.As(target, &t) {
		return e.Type == t.Type && e.Code == t.Code
	}

	return false
}

// WithContext adds context information to the error.
func (e *DashvarsError) WithContext(key string, value interface{}) *DashvarsError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value

	return e
}

// WithLocation adds file location information.
func (e *DashvarsError) WithLocation(filePath string, line int) *DashvarsError {
	e.FilePath = filePath
	e.Line = line

	return e
}

// NewValidationError creates a validation error.
func NewValidationError(code, message string) *DashvarsError {
	return &DashvarsError{
		Type:    ErrorTypeValidation,
		Code:    code,
		Message: message,
	}
}

// NewInvalidArgumentError creates an error describing a broken calling
// contract. Such errors indicate a caller bug and are raised with panic.
func NewInvalidArgumentError(code, message string) *DashvarsError {
	return &DashvarsError{
		Type:    ErrorTypeInvalidArgument,
		Code:    code,
		Message: message,
	}
}

// NewNotFoundError creates a not-found error.
func NewNotFoundError(code, message string) *DashvarsError {
	return &DashvarsError{
		Type:    ErrorTypeNotFound,
		Code:    code,
		Message: message,
	}
}

// NewIOError creates an I/O error.
func NewIOError(code, message string, cause error) *DashvarsError {
	return &DashvarsError{
		Type:    ErrorTypeIO,
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// NewConfigError creates a configuration error.
func NewConfigError(code, message string) *DashvarsError {
	return &DashvarsError{
		Type:    ErrorTypeConfig,
		Code:    code,
		Message: message,
	}
}

// NewInternalError creates an internal error.
func NewInternalError(code, message string, cause error) *DashvarsError {
	return &DashvarsError{
		Type:    ErrorTypeInternal,
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// IsType reports whether err is a DashvarsError of the given type.
func IsType(err error, errType ErrorType) bool {
	var de *DashvarsError
	if errors.As(err, &de) {
		return de.Type == errType
	}

	return false
}

// IsNotFound checks if an error is a not-found error.
func IsNotFound(err error) bool {
	return IsType(err, ErrorTypeNotFound)
}

// ErrInvalidPath creates a path validation error.
func ErrInvalidPath(path string) *DashvarsError {
	return NewValidationError(ErrCodeInvalidPath, "invalid path: "+path)
}

// ErrPathTraversal creates a path traversal error.
func ErrPathTraversal(path string) *DashvarsError {
	return NewValidationError(ErrCodePathTraversal, "path traversal attempt: "+path)
}

// ErrVariableNotFound creates an error for an unknown variable id.
func ErrVariableNotFound(id int) *DashvarsError {
	return NewNotFoundError(
		ErrCodeVariableNotFound,
		fmt.Sprintf("variable not found: %d", id),
	).WithContext("id", id)
}

// ErrUnknownProperty creates an error for an unknown variable property.
func ErrUnknownProperty(property string) *DashvarsError {
	return NewValidationError(
		ErrCodeUnknownProperty,
		"unknown variable property: "+property,
	).WithContext("property", property)
}
