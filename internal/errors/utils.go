package errors

import (
	"errors"
	"fmt"
)

// Wrap wraps an error with additional context, creating a DashvarsError if the input is not already one
func Wrap(err error, errType ErrorType, code, message string) *DashvarsError {
	if err == nil {
		return nil
	}

	// Keep location and context of an inner DashvarsError
	var de *DashvarsError
	if errors.As(err, &de) {
		return &DashvarsError{
			Type:     errType,
			Code:     code,
			Message:  message,
			Cause:    de,
			Context:  de.Context,
			FilePath: de.FilePath,
			Line:     de.Line,
		}
	}

	return &DashvarsError{
		Type:    errType,
		Code:    code,
		Message: message,
		Cause:   err,
	}
}

// WrapValidation wraps an error as a validation error
func WrapValidation(err error, code, message string) *DashvarsError {
	return Wrap(err, ErrorTypeValidation, code, message)
}

// WrapIO wraps an error as an I/O error
func WrapIO(err error, code, message string) *DashvarsError {
	return Wrap(err, ErrorTypeIO, code, message)
}

// WrapConfig wraps an error as a configuration error
func WrapConfig(err error, code, message string) *DashvarsError {
	return Wrap(err, ErrorTypeConfig, code, message)
}

// FormatError formats an error for user display
func FormatError(err error) string {
	if err == nil {
		return ""
	}

	var de *DashvarsError
	if errors.As(err, &de) {
		return de.Error()
	}

	return err.Error()
}

// ExtractCause extracts the root cause from a wrapped error
func ExtractCause(err error) error {
	for err != nil {
		var de *DashvarsError
		if !errors.As(err, &de) {
			return err
		}
		if de.Cause == nil {
			return de
		}
		err = de.Cause
	}
	return nil
}

// CombineErrors combines multiple errors into a single error with context
func CombineErrors(errs ...error) error {
	var nonNil []error
	for _, err := range errs {
		if err != nil {
			nonNil = append(nonNil, err)
		}
	}

	switch len(nonNil) {
	case 0:
		return nil
	case 1:
		return nonNil[0]
	}

	messages := make([]string, 0, len(nonNil))
	for _, err := range nonNil {
		messages = append(messages, err.Error())
	}

	return &DashvarsError{
		Type:    ErrorTypeInternal,
		Code:    "ERR_MULTIPLE_ERRORS",
		Message: fmt.Sprintf("multiple errors occurred: %d errors", len(nonNil)),
		Context: map[string]interface{}{
			"error_count": len(nonNil),
			"errors":      messages,
		},
	}
}
