package apperror_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"go-hrdesk/internal/shared/apperror"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
)

func TestToHTTP(t *testing.T) {
	t.Run("app error keeps its code and status", func(t *testing.T) {
		sentinel := apperror.New(apperror.CodeConflict, "already there", http.StatusConflict)
		got := apperror.ToHTTP(fmt.Errorf("create: %w", sentinel))

		assert.Equal(t, http.StatusConflict, got.Status)
		assert.Equal(t, apperror.CodeConflict, got.Code)
		assert.Equal(t, "already there", got.Message)
	})

	t.Run("unknown error is hidden behind internal error", func(t *testing.T) {
		got := apperror.ToHTTP(errors.New("pq: connection reset"))

		assert.Equal(t, http.StatusInternalServerError, got.Status)
		assert.Equal(t, "INTERNAL_ERROR", got.Code)
		assert.Equal(t, "Internal server error", got.Message)
	})

	t.Run("validation errors become field messages", func(t *testing.T) {
		type payload struct {
			Reason string `validate:"required"`
		}
		err := validator.New().Struct(payload{})
		got := apperror.ToHTTP(err)

		assert.Equal(t, http.StatusBadRequest, got.Status)
		assert.Equal(t, apperror.CodeValidation, got.Code)
		assert.Equal(t, "Reason is required", got.Message)
	})
}

func TestAppError_IsMatchesWrappedSentinel(t *testing.T) {
	sentinel := apperror.New(apperror.CodeNotFound, "leave not found", http.StatusNotFound)
	wrapped := sentinel.WithCause(errors.New("record not found"))

	assert.True(t, errors.Is(wrapped, sentinel))
	assert.False(t, errors.Is(wrapped, apperror.ErrNotFound))
	assert.Contains(t, wrapped.Error(), "record not found")
}

func TestAppError_WithDetails(t *testing.T) {
	sentinel := apperror.New(apperror.CodeInsufficientBalance, "insufficient leave balance", http.StatusUnprocessableEntity)
	detailed := sentinel.WithDetails(map[string]float64{"requested": 3, "available": 1})

	assert.ErrorIs(t, detailed, sentinel)
	assert.Nil(t, sentinel.Details)

	got := apperror.ToHTTP(detailed)
	assert.Equal(t, http.StatusUnprocessableEntity, got.Status)
	assert.Equal(t, map[string]float64{"requested": 3, "available": 1}, got.Details)
}
