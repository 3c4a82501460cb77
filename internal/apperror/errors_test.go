package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConstructors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		err         *AppError
		wantStatus  int
		wantMessage string
		wantCause   error
	}{
		{
			name:        "not found names the resource",
			err:         NotFound("goal"),
			wantStatus:  http.StatusNotFound,
			wantMessage: "goal not found",
			wantCause:   ErrNotFound,
		},
		{
			name:        "bad request",
			err:         BadRequest("invalid id"),
			wantStatus:  http.StatusBadRequest,
			wantMessage: "invalid id",
			wantCause:   ErrBadRequest,
		},
		{
			name:        "conflict",
			err:         Conflict("email already registered"),
			wantStatus:  http.StatusConflict,
			wantMessage: "email already registered",
			wantCause:   ErrConflict,
		},
		{
			name:        "unauthorized with message",
			err:         Unauthorized("invalid token"),
			wantStatus:  http.StatusUnauthorized,
			wantMessage: "invalid token",
			wantCause:   ErrUnauthorized,
		},
		{
			name:        "unauthorized default message",
			err:         Unauthorized(""),
			wantStatus:  http.StatusUnauthorized,
			wantMessage: "unauthorized",
			wantCause:   ErrUnauthorized,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.wantStatus, tt.err.StatusCode)
			assert.Equal(t, tt.wantMessage, tt.err.Error())
			assert.ErrorIs(t, tt.err, tt.wantCause)
		})
	}
}

func TestValidationError_IncludesField(t *testing.T) {
	t.Parallel()

	err := ValidationError("message", "message is required")

	assert.Equal(t, http.StatusBadRequest, err.StatusCode)
	assert.Equal(t, "message", err.Field)
	assert.Equal(t, "message: message is required", err.Error())
	assert.ErrorIs(t, err, ErrValidation)
}

func TestInternal_KeepsCauseOutOfMessage(t *testing.T) {
	t.Parallel()

	cause := errors.New("pq: connection refused")
	err := Internal(cause)

	assert.Equal(t, http.StatusInternalServerError, err.StatusCode)
	assert.Equal(t, "an internal error occurred", err.Message)
	assert.NotContains(t, err.Error(), "pq:")
	assert.ErrorIs(t, err, cause)
}

func TestGetStatusCode(t *testing.T) {
	t.Parallel()

	notFound := NotFound("goal")

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"app error", notFound, http.StatusNotFound},
		{"app error wrapped once", fmt.Errorf("fetching goal: %w", notFound), http.StatusNotFound},
		{"app error wrapped twice", fmt.Errorf("deposit: %w", fmt.Errorf("fetching goal: %w", notFound)), http.StatusNotFound},
		{"bare sentinel", ErrConflict, http.StatusConflict},
		{"plain error", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, GetStatusCode(tt.err))
		})
	}
}

func TestGetMessage(t *testing.T) {
	t.Parallel()

	// The client-safe message survives wrapping; wrap text stays internal.
	wrapped := fmt.Errorf("loading user row: %w", NotFound("user"))
	assert.Equal(t, "user not found", GetMessage(wrapped))

	assert.Equal(t, "boom", GetMessage(errors.New("boom")))
}
