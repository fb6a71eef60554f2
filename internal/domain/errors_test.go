package domain

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorStatuses(t *testing.T) {
	tests := []struct {
		err    *Error
		kind   ErrorKind
		status int
	}{
		{NotFound("x"), KindNotFound, http.StatusBadRequest},
		{AlreadyExists("x"), KindAlreadyExists, http.StatusConflict},
		{Forbidden("x"), KindForbidden, http.StatusForbidden},
		{ValidationFailed("x"), KindValidationFailed, http.StatusBadRequest},
		{DatabaseError("x"), KindDatabaseError, http.StatusInternalServerError},
		{InsufficientStock("x"), KindInsufficientStock, http.StatusBadRequest},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.kind, tt.err.Kind)
		assert.Equal(t, tt.status, tt.err.Status)
	}
}

func TestWithCause_UnwrapsButHidesMessage(t *testing.T) {
	cause := errors.New("pq: connection refused")
	err := DatabaseError("failed to load cart").WithCause(cause)

	assert.Equal(t, "failed to load cart", err.Error())
	assert.ErrorIs(t, err, cause)
}

func TestAsError_ThroughWrapping(t *testing.T) {
	inner := NotFound("cart not found")
	wrapped := fmt.Errorf("get cart: %w", inner)

	de, ok := AsError(wrapped)
	require.True(t, ok)
	assert.Equal(t, KindNotFound, de.Kind)

	_, ok = AsError(errors.New("plain"))
	assert.False(t, ok)
}

func TestIsKind(t *testing.T) {
	err := Forbidden("no")
	assert.True(t, IsKind(err, KindForbidden))
	assert.False(t, IsKind(err, KindNotFound))
	assert.False(t, IsKind(nil, KindForbidden))
}
