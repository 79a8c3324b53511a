package dto

import "net/http"

// Transport-level error codes. Domain errors keep their own codes.
const (
	ErrCodeInternal     = "INTERNAL_ERROR"
	ErrCodeValidation   = "VALIDATION_ERROR"
	ErrCodeBadRequest   = "BAD_REQUEST"
	ErrCodeUnauthorized = "UNAUTHORIZED"
	ErrCodeForbidden    = "FORBIDDEN"
	ErrCodeNotFound     = "NOT_FOUND"
	ErrCodeRateLimited  = "RATE_LIMIT_EXCEEDED"
	ErrCodeTooLarge     = "REQUEST_TOO_LARGE"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeInternal: http.StatusInternalServerError,

	// Input errors -> 400 Bad Request
	ErrCodeValidation:   http.StatusBadRequest,
	ErrCodeBadRequest:   http.StatusBadRequest,
	"INVALID_INPUT":     http.StatusBadRequest,
	"INVALID_QUERY":     http.StatusBadRequest,
	"INVALID_TITLE":     http.StatusBadRequest,
	"INVALID_SLUG":      http.StatusBadRequest,
	"INVALID_PRICE":     http.StatusBadRequest,
	"INVALID_TYPE":      http.StatusBadRequest,
	"INVALID_GENDER":    http.StatusBadRequest,
	"INVALID_SIZE":      http.StatusBadRequest,
	"INVALID_STOCK":     http.StatusBadRequest,
	"INVALID_QUANTITY":  http.StatusBadRequest,
	"INVALID_ADDRESS":   http.StatusBadRequest,
	"INVALID_NAME":      http.StatusBadRequest,
	"INVALID_EMAIL":     http.StatusBadRequest,
	"INVALID_PASSWORD":  http.StatusBadRequest,
	"INVALID_ROLE":      http.StatusBadRequest,
	"INVALID_FILE":      http.StatusBadRequest,
	"INVALID_FILE_TYPE": http.StatusBadRequest,
	"INVALID_USER":      http.StatusBadRequest,
	"EMPTY_CART":        http.StatusBadRequest,

	// Auth errors
	ErrCodeUnauthorized:   http.StatusUnauthorized,
	"INVALID_CREDENTIALS": http.StatusUnauthorized,
	"INVALID_TOKEN":       http.StatusUnauthorized,
	"TOKEN_EXPIRED":       http.StatusUnauthorized,
	ErrCodeForbidden:      http.StatusForbidden,
	"ACCOUNT_DISABLED":    http.StatusForbidden,
	"CANNOT_DEMOTE_SELF":  http.StatusForbidden,

	// Resource errors
	ErrCodeNotFound:     http.StatusNotFound,
	"PRODUCT_NOT_FOUND": http.StatusNotFound,
	"ALREADY_EXISTS":    http.StatusConflict,
	"EMAIL_TAKEN":       http.StatusConflict,

	"CONCURRENT_MODIFICATION": http.StatusConflict,

	// Business rule errors -> 422 Unprocessable Entity
	"INVALID_STATE":       http.StatusUnprocessableEntity,
	"TOTAL_MISMATCH":      http.StatusUnprocessableEntity,
	"ALREADY_PAID":        http.StatusUnprocessableEntity,
	"INVALID_TRANSACTION": http.StatusUnprocessableEntity,

	ErrCodeTooLarge:  http.StatusRequestEntityTooLarge,
	"FILE_TOO_LARGE": http.StatusRequestEntityTooLarge,

	ErrCodeRateLimited: http.StatusTooManyRequests,

	"UPLOAD_FAILED": http.StatusBadGateway,
}

// GetHTTPStatus returns the HTTP status code for an error code.
// Unknown codes are treated as internal errors.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}
