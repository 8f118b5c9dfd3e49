package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError_Error(t *testing.T) {
	err := NewValidationError("bad input")
	assert.Equal(t, "VALIDATION: bad input", err.Error())

	wrapped := NewDatabaseError("write failed", errors.New("disk full"))
	assert.Contains(t, wrapped.Error(), "DATABASE: write failed")
	assert.Contains(t, wrapped.Error(), "disk full")
}

func TestAppError_Unwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := NewActionFailureError("perform failed", cause)

	assert.True(t, errors.Is(err, cause))
}

func TestTypeHelpers(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		check func(error) bool
	}{
		{"not implemented", NewNotImplementedError("NodesInArea"), IsNotImplemented},
		{"invalid reference", NewInvalidReferenceError("n-42"), IsInvalidReference},
		{"inconsistent graph", NewInconsistentGraphError("edge endpoint missing"), IsInconsistentGraph},
		{"action failure", NewActionFailureError("boom", nil), IsActionFailure},
		{"validation", NewValidationError("empty id"), IsValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, tt.check(tt.err))
			assert.False(t, tt.check(errors.New("plain error")))
		})
	}
}

func TestTypeHelpers_WrappedError(t *testing.T) {
	inner := NewInvalidReferenceError("n-1")
	outer := fmt.Errorf("loading node: %w", inner)

	assert.True(t, IsInvalidReference(outer))
	assert.False(t, IsNotImplemented(outer))
}
