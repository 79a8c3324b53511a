package dto

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetHTTPStatus(t *testing.T) {
	tests := []struct {
		code     string
		expected int
	}{
		{ErrCodeValidation, http.StatusBadRequest},
		{"EMPTY_CART", http.StatusBadRequest},
		{"INVALID_SIZE", http.StatusBadRequest},
		{"INVALID_CREDENTIALS", http.StatusUnauthorized},
		{ErrCodeForbidden, http.StatusForbidden},
		{"NOT_FOUND", http.StatusNotFound},
		{"ALREADY_EXISTS", http.StatusConflict},
		{"CONCURRENT_MODIFICATION", http.StatusConflict},
		{"TOTAL_MISMATCH", http.StatusUnprocessableEntity},
		{"FILE_TOO_LARGE", http.StatusRequestEntityTooLarge},
		{ErrCodeRateLimited, http.StatusTooManyRequests},
		{"SOMETHING_ELSE", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.expected, GetHTTPStatus(tt.code))
		})
	}
}

func TestNewErrorResponseWithRequestID(t *testing.T) {
	raw, err := json.Marshal(NewErrorResponseWithRequestID("EMPTY_CART", "Order must contain at least one item", "req-1"))
	require.NoError(t, err)

	assert.JSONEq(t, `{
		"success": false,
		"error": {"code": "EMPTY_CART", "message": "Order must contain at least one item", "request_id": "req-1"}
	}`, string(raw))
}

func TestNewSuccessResponseWithMeta(t *testing.T) {
	resp := NewSuccessResponseWithMeta([]int{1, 2}, 41, 2, 20)
	require.NotNil(t, resp.Meta)
	assert.Equal(t, 3, resp.Meta.TotalPages)
	assert.True(t, resp.Success)

	empty := NewSuccessResponseWithMeta(nil, 0, 1, 0)
	assert.Equal(t, 0, empty.Meta.TotalPages)
}

func TestNewValidationErrorResponse(t *testing.T) {
	resp := NewValidationErrorResponse("Request validation failed", "", []ValidationDetail{{Field: "email", Message: "Invalid email format"}})
	assert.False(t, resp.Success)
	assert.Equal(t, ErrCodeValidation, resp.Error.Code)
	assert.Len(t, resp.Error.Details, 1)
}
