package domain

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorStatus(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantMsg    string
		wantIs     error
	}{
		{"not found", NewNotFoundError("draft not found"), http.StatusNotFound, "draft not found", ErrNotFound},
		{"bad request", NewBadRequestError("bad index"), http.StatusBadRequest, "bad index", ErrInvalidInput},
		{"wrapped app error", fmt.Errorf("load: %w", NewNotFoundError("gone")), http.StatusNotFound, "gone", ErrNotFound},
		{"internal without cause", NewInternalError("save failed", nil), http.StatusInternalServerError, "save failed", ErrInternalError},
		{"plain error", errors.New("dial tcp: refused"), http.StatusInternalServerError, "Internal server error", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, msg := ErrorStatus(tt.err)
			assert.Equal(t, tt.wantStatus, status)
			assert.Equal(t, tt.wantMsg, msg)
			if tt.wantIs != nil {
				assert.True(t, errors.Is(tt.err, tt.wantIs))
			}
		})
	}
}

func TestAppError_Error(t *testing.T) {
	cause := errors.New("connection reset")
	err := NewInternalError("failed to save draft", cause)
	assert.Equal(t, "failed to save draft: connection reset", err.Error())
	assert.True(t, errors.Is(err, cause))
}
