package shopapi

import (
	"fmt"
	"net/http"

	"github.com/tidwall/gjson"
)

// APIError is a non-success response from the API
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

// Error implements the error interface
func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("shopapi: %d %s: %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("shopapi: %d: %s", e.StatusCode, e.Message)
}

// RemoteMessage returns the message the server put in the error body
func (e *APIError) RemoteMessage() string {
	return e.Message
}

// IsNotFound reports whether the API answered 404
func (e *APIError) IsNotFound() bool {
	return e.StatusCode == http.StatusNotFound
}

// parseAPIError reads {"error":{"code","message"}} or a bare {"message"} body.
// Bodies that are not JSON leave Message empty.
func parseAPIError(status int, body []byte) *APIError {
	apiErr := &APIError{StatusCode: status}
	if !gjson.ValidBytes(body) {
		return apiErr
	}

	parsed := gjson.ParseBytes(body)
	apiErr.Code = parsed.Get("error.code").String()
	if msg := parsed.Get("error.message"); msg.Exists() {
		apiErr.Message = msg.String()
	} else {
		apiErr.Message = parsed.Get("message").String()
	}
	return apiErr
}
