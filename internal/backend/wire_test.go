package backend

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Freeeeeet/practice_scheduler/internal/conflict"
	"github.com/Freeeeeet/practice_scheduler/internal/model"
	"github.com/Freeeeeet/practice_scheduler/internal/status"
)

func TestEncodeError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code int
		kind string
	}{
		{"conflict", fmt.Errorf("move: %w", &conflict.Conflict{Kind: conflict.KindBreak}), http.StatusConflict, CodeConflict},
		{"illegal", &status.IllegalTransitionError{From: model.StatusBilled, To: model.StatusPlanned}, http.StatusUnprocessableEntity, CodeIllegalTransition},
		{"action", &status.ActionNotAllowedError{Action: status.ActionMenu}, http.StatusUnprocessableEntity, CodeActionNotAllowed},
		{"not mutable", &status.NotMutableError{AppointmentID: 1}, http.StatusUnprocessableEntity, CodeNotMutable},
		{"not found", fmt.Errorf("get: %w", ErrNotFound), http.StatusNotFound, CodeNotFound},
		{"duration", model.ErrInvalidDuration, http.StatusBadRequest, CodeValidation},
		{"validation", fmt.Errorf("bad body: %w", ErrValidation), http.StatusBadRequest, CodeValidation},
		{"other", errors.New("db exploded"), http.StatusInternalServerError, CodeInternal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, body := EncodeError(tt.err)
			assert.Equal(t, tt.code, code)
			assert.Equal(t, tt.kind, body.Code)
		})
	}
}

func TestEncodeError_HidesInternalDetail(t *testing.T) {
	_, body := EncodeError(errors.New("pq: password authentication failed"))
	assert.Equal(t, "internal error", body.Error)
}
