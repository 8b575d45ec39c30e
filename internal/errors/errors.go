package errors

import (
	"fmt"
	"sort"
	"sync"
	"time"
)

// FileError is a problem tied to a single dashboard file
type FileError struct {
	File      string
	Message   string
	Severity  ErrorSeverity
	Cause     error
	Timestamp time.Time
}

// ErrorSeverity represents the severity of an error
type ErrorSeverity int

const (
	ErrorSeverityInfo ErrorSeverity = iota
	ErrorSeverityWarning
	ErrorSeverityError
)

// String returns the string representation of the severity
func (s ErrorSeverity) String() string {
	switch s {
	case ErrorSeverityInfo:
		return "info"
	case ErrorSeverityWarning:
		return "warning"
	case ErrorSeverityError:
		return "error"
	default:
		return "unknown"
	}
}

// Error implements the error interface
func (fe *FileError) Error() string {
	if fe.Cause != nil {
		return fmt.Sprintf("%s: %s: %s: %v", fe.File, fe.Severity, fe.Message, fe.Cause)
	}
	return fmt.Sprintf("%s: %s: %s", fe.File, fe.Severity, fe.Message)
}

// Unwrap returns the underlying cause error.
func (fe *FileError) Unwrap() error {
	return fe.Cause
}

// ErrorCollector collects per-file errors while a batch of dashboards is processed
type ErrorCollector struct {
	fileErrors []FileError
	mutex      sync.RWMutex
}

// NewErrorCollector creates a new error collector
func NewErrorCollector() *ErrorCollector {
	return &ErrorCollector{
		fileErrors: make([]FileError, 0),
	}
}

// Add adds a file error to the collector
func (ec *ErrorCollector) Add(err FileError) {
	ec.mutex.Lock()
	defer ec.mutex.Unlock()
	err.Timestamp = time.Now()
	ec.fileErrors = append(ec.fileErrors, err)
}

// AddError records err against file with error severity. nil errors are ignored.
func (ec *ErrorCollector) AddError(file string, err error) {
	if err == nil {
		return
	}
	ec.Add(FileError{
		File:     file,
		Message:  "failed to process dashboard",
		Severity: ErrorSeverityError,
		Cause:    err,
	})
}

// GetErrors returns all collected errors sorted by file
func (ec *ErrorCollector) GetErrors() []FileError {
	ec.mutex.RLock()
	defer ec.mutex.RUnlock()
	result := make([]FileError, len(ec.fileErrors))
	copy(result, ec.fileErrors)
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].File < result[j].File
	})
	return result
}

// HasErrors returns true if there are any errors at error severity
func (ec *ErrorCollector) HasErrors() bool {
	ec.mutex.RLock()
	defer ec.mutex.RUnlock()
	for _, err := range ec.fileErrors {
		if err.Severity >= ErrorSeverityError {
			return true
		}
	}
	return false
}

// Clear clears all errors
func (ec *ErrorCollector) Clear() {
	ec.mutex.Lock()
	defer ec.mutex.Unlock()
	ec.fileErrors = ec.fileErrors[:0]
}

// GetErrorsByFile returns errors for a specific file
func (ec *ErrorCollector) GetErrorsByFile(file string) []FileError {
	ec.mutex.RLock()
	defer ec.mutex.RUnlock()
	var fileErrors []FileError
	for _, err := range ec.fileErrors {
		if err.File == file {
			fileErrors = append(fileErrors, err)
		}
	}
	return fileErrors
}

// Err folds the collected errors into a single error, or nil.
func (ec *ErrorCollector) Err() error {
	collected := ec.GetErrors()
	errs := make([]error, 0, len(collected))
	for i := range collected {
		if collected[i].Severity >= ErrorSeverityError {
			errs = append(errs, &collected[i])
		}
	}
	return CombineErrors(errs...)
}
