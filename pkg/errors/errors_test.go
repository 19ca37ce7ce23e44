package errors

import (
	"database/sql"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusCode(t *testing.T) {
	tests := []struct {
		err  *AppError
		want int
	}{
		{NotFound("appointment", nil), http.StatusNotFound},
		{BadRequest("bad", nil), http.StatusBadRequest},
		{Validation("amount", "must not be negative"), http.StatusBadRequest},
		{Unauthorized(nil), http.StatusUnauthorized},
		{Forbidden("nope"), http.StatusForbidden},
		{Conflict("taken"), http.StatusConflict},
		{Internal(fmt.Errorf("boom")), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.err.StatusCode(), tt.err.Message)
	}
}

func TestAsThroughWrapping(t *testing.T) {
	err := fmt.Errorf("failed to get appointment: %w", NotFound("appointment", sql.ErrNoRows))

	appErr, ok := As(err)
	assert.True(t, ok)
	assert.Equal(t, "appointment not found", appErr.Message)
	assert.True(t, Is(err, ErrNotFound))
	assert.False(t, Is(err, ErrForbidden))
	assert.ErrorIs(t, err, sql.ErrNoRows)
}
