package apperrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusCode(t *testing.T) {
	cause := errors.New("connection refused")

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", NewValidationError("%s is required", "user_id"), http.StatusBadRequest},
		{"missing data", NewMissingDataError("no transactions in receipt"), http.StatusBadRequest},
		{"not found", NewNotFoundError("recipe"), http.StatusNotFound},
		{"external", NewExternalServiceError("completion failed", cause), http.StatusInternalServerError},
		{"store", NewStoreError("failed to save recipe", cause), http.StatusInternalServerError},
		{"wrapped", fmt.Errorf("handler: %w", NewNotFoundError("label")), http.StatusNotFound},
		{"plain", cause, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StatusCode(tt.err))
		})
	}
}

func TestAppErrorUnwrap(t *testing.T) {
	cause := errors.New("boom")
	err := NewStoreError("failed to delete label", cause)

	assert.ErrorIs(t, err, cause)
	assert.True(t, Is(err, CodeStore))
	assert.False(t, Is(err, CodeNotFound))
	assert.Equal(t, "STORE_ERROR: failed to delete label: boom", err.Error())
	assert.Equal(t, "recipe not found", NewNotFoundError("recipe").Message)
}
