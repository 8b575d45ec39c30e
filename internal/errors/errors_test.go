package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorSeverityString(t *testing.T) {
	testCases := []struct {
		severity ErrorSeverity
		expected string
	}{
		{ErrorSeverityInfo, "info"},
		{ErrorSeverityWarning, "warning"},
		{ErrorSeverityError, "error"},
		{ErrorSeverity(99), "unknown"},
	}

	for _, tc := range testCases {
		t.Run(tc.expected, func(t *testing.T) {
			assert.Equal(t, tc.expected, tc.severity.String())
		})
	}
}

func TestDashvarsErrorFormatting(t *testing.T) {
	err := NewValidationError(ErrCodeInvalidValue, "bad value").
		WithLocation("dash.json", 12)
	assert.Equal(t, "[ERR_INVALID_VALUE] dash.json:12 bad value", err.Error())

	wrapped := NewIOError(ErrCodeFileNotFound, "cannot read", fmt.Errorf("boom"))
	assert.Equal(t, "[ERR_FILE_NOT_FOUND] cannot read: boom", wrapped.Error())
}

func TestDashvarsErrorIs(t *testing.T) {
	err := ErrVariableNotFound(7)
	assert.True(t, errors.Is(err, NewNotFoundError(ErrCodeVariableNotFound, "")))
	assert.False(t, errors.Is(err, NewNotFoundError(ErrCodeUnknownProperty, "")))
	assert.True(t, IsNotFound(err))
	assert.Equal(t, 7, err.Context["id"])
}

func TestWrap(t *testing.T) {
	assert.Nil(t, Wrap(nil, ErrorTypeIO, "X", "y"))

	inner := NewValidationError(ErrCodeInvalidPath, "bad").WithLocation("a.yml", 3)
	outer := WrapIO(inner, ErrCodeFileNotFound, "load failed")
	require.NotNil(t, outer)
	assert.Equal(t, ErrorTypeIO, outer.Type)
	assert.Equal(t, "a.yml", outer.FilePath)
	assert.Equal(t, 3, outer.Line)
	assert.True(t, errors.Is(outer, inner))

	root := fmt.Errorf("root cause")
	chain := WrapConfig(WrapValidation(root, "A", "a"), "B", "b")
	assert.Equal(t, root, ExtractCause(chain))
}

func TestFormatError(t *testing.T) {
	assert.Equal(t, "", FormatError(nil))
	assert.Equal(t, "plain", FormatError(fmt.Errorf("plain")))
	assert.Equal(t, "[ERR_INTERNAL] oops", FormatError(NewInternalError(ErrCodeInternalError, "oops", nil)))
}

func TestCombineErrors(t *testing.T) {
	assert.NoError(t, CombineErrors(nil, nil))

	single := fmt.Errorf("one")
	assert.Equal(t, single, CombineErrors(nil, single))

	combined := CombineErrors(fmt.Errorf("one"), fmt.Errorf("two"))
	var de *DashvarsError
	require.True(t, errors.As(combined, &de))
	assert.Equal(t, 2, de.Context["error_count"])
}

func TestErrorCollector(t *testing.T) {
	collector := NewErrorCollector()
	assert.False(t, collector.HasErrors())
	assert.NoError(t, collector.Err())

	collector.AddError("b.json", nil)
	collector.Add(FileError{File: "b.json", Message: "no templating list", Severity: ErrorSeverityWarning})
	assert.False(t, collector.HasErrors())

	collector.AddError("a.json", fmt.Errorf("unexpected EOF"))
	assert.True(t, collector.HasErrors())

	all := collector.GetErrors()
	require.Len(t, all, 2)
	assert.Equal(t, "a.json", all[0].File)
	assert.False(t, all[0].Timestamp.IsZero())

	assert.Len(t, collector.GetErrorsByFile("b.json"), 1)
	assert.EqualError(t, collector.Err(), "a.json: error: failed to process dashboard: unexpected EOF")

	collector.Clear()
	assert.Empty(t, collector.GetErrors())
}
