package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"courtside/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteServiceError_StatusMapping(t *testing.T) {
	tests := []struct {
		err    error
		status int
	}{
		{service.ErrValidation, http.StatusBadRequest},
		{service.ErrInsufficientBalance, http.StatusBadRequest},
		{service.ErrInvalidWinner, http.StatusBadRequest},
		{service.ErrInvalidCredentials, http.StatusUnauthorized},
		{service.ErrSelfMatch, http.StatusForbidden},
		{service.ErrSelfJudge, http.StatusForbidden},
		{service.ErrNotFound, http.StatusNotFound},
		{service.ErrInvalidState, http.StatusConflict},
		{service.ErrConflict, http.StatusConflict},
		{errors.New("database exploded"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			w := httptest.NewRecorder()
			writeServiceError(w, tt.err)
			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
		})
	}
}

func TestWriteServiceError_WrappedErrors(t *testing.T) {
	// Services wrap sentinels with context; the mapping must still hold
	w := httptest.NewRecorder()
	writeServiceError(w, fmt.Errorf("%w: have 10, need 100", service.ErrInsufficientBalance))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var body errorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Contains(t, body.Error, "insufficient balance")
}

func TestWriteServiceError_HidesInternalDetail(t *testing.T) {
	w := httptest.NewRecorder()
	writeServiceError(w, errors.New("pq: connection refused on 10.0.0.5"))

	var body errorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "internal server error", body.Error)
}
