package util

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToDomainErrorPassesThrough(t *testing.T) {
	err := NewInvalidRole("superuser")

	derr := ToDomainError(err)
	require.NotNil(t, derr)
	assert.Equal(t, "INVALID_ROLE", derr.Code)
	assert.Equal(t, http.StatusBadRequest, derr.HTTPStatus)
	assert.Equal(t, "superuser", derr.Details["role"])
}

func TestToDomainErrorHidesInternalDetail(t *testing.T) {
	cause := errors.New("pq: connection refused")

	derr := ToDomainError(cause)
	require.NotNil(t, derr)
	assert.Equal(t, "INTERNAL_ERROR", derr.Code)
	assert.Equal(t, http.StatusInternalServerError, derr.HTTPStatus)
	assert.NotContains(t, derr.Message, "connection refused")
	assert.ErrorIs(t, derr, cause)
}

func TestToDomainErrorNil(t *testing.T) {
	assert.Nil(t, ToDomainError(nil))
}

func TestMapErrorWrapsOnce(t *testing.T) {
	original := NewConflict("email taken")

	mapped := MapError(original)
	var derr *DomainError
	require.ErrorAs(t, mapped, &derr)
	assert.Equal(t, "CONFLICT", derr.Code)
}
