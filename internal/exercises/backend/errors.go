package backend

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Error is a non-2xx (or success=false) answer of the exercises backend.
type Error struct {
	StatusCode int
	Message    string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("exercises backend: status %d", e.StatusCode)
	}
	return fmt.Sprintf("exercises backend: status %d: %s", e.StatusCode, e.Message)
}

func IsNotFound(err error) bool {
	var backendErr *Error
	return errors.As(err, &backendErr) && backendErr.StatusCode == http.StatusNotFound
}

func newError(statusCode int, body []byte) *Error {
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	message := ""
	if err := json.Unmarshal(body, &payload); err == nil {
		message = payload.Message
		if message == "" {
			message = payload.Error
		}
	} else {
		message = strings.TrimSpace(string(body))
	}
	if message == "" {
		message = http.StatusText(statusCode)
	}
	return &Error{
		StatusCode: statusCode,
		Message:    message,
	}
}
