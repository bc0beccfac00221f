package webapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"akari/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRespondServiceError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"not found", fmt.Errorf("user 1: %w", models.ErrNotFound), http.StatusNotFound},
		{"invalid argument", fmt.Errorf("bad input: %w", models.ErrInvalidArgument), http.StatusBadRequest},
		{"invalid state", fmt.Errorf("already resolved: %w", models.ErrInvalidState), http.StatusConflict},
		{"unauthorized", fmt.Errorf("not allowed: %w", models.ErrUnauthorized), http.StatusForbidden},
		{"insufficient balance", fmt.Errorf("broke: %w", models.ErrInsufficientBalance), http.StatusUnprocessableEntity},
		{"unknown", fmt.Errorf("database exploded"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()

			respondServiceError(rec, tt.err)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

			var body ErrorResponse
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
			assert.NotEmpty(t, body.Error)
		})
	}
}

func TestRespondServiceError_HidesInternalDetail(t *testing.T) {
	rec := httptest.NewRecorder()

	respondServiceError(rec, fmt.Errorf("pq: connection refused to 10.0.0.3"))

	var body ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.NotContains(t, body.Error, "10.0.0.3")
}
