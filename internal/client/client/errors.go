package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	ErrUnavailable           = errors.New("server unavailable")
	ErrUnauthorized          = errors.New("unauthorized")
	ErrNotFound              = errors.New("not found")
	ErrInvalidServerResponse = errors.New("invalid server response")
)

// APIError is a non-2xx response. It unwraps to ErrUnauthorized,
// ErrNotFound or ErrUnavailable when the status code calls for it.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%d %s", e.StatusCode, e.Message)
}

func (e *APIError) Unwrap() error {
	switch {
	case e.StatusCode == http.StatusUnauthorized, e.StatusCode == http.StatusForbidden:
		return ErrUnauthorized
	case e.StatusCode == http.StatusNotFound:
		return ErrNotFound
	case e.StatusCode >= http.StatusInternalServerError:
		return ErrUnavailable
	default:
		return nil
	}
}

// UnavailableMessage is shown for transport failures. The underlying
// error is logged, not shown.
const UnavailableMessage = "Unable to reach the server. Please try again later"

// Message returns the server-provided message for err when it is an
// APIError, a fixed text for transport failures, or err's text otherwise.
func Message(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	if errors.Is(err, ErrUnavailable) {
		return UnavailableMessage
	}
	return err.Error()
}

// parseError builds an APIError from a failed response. The backend reports
// failures as {"message": ...}, {"error": ...} or {"error": {"message": ...}}.
func parseError(statusCode int, body []byte) *APIError {
	apiErr := &APIError{StatusCode: statusCode}

	var payload struct {
		Message string          `json:"message"`
		Error   json.RawMessage `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		apiErr.Message = payload.Message
		if apiErr.Message == "" && len(payload.Error) > 0 {
			var s string
			var nested struct {
				Message string `json:"message"`
			}
			if json.Unmarshal(payload.Error, &s) == nil {
				apiErr.Message = s
			} else if json.Unmarshal(payload.Error, &nested) == nil {
				apiErr.Message = nested.Message
			}
		}
	}

	if apiErr.Message == "" {
		apiErr.Message = strings.TrimSpace(string(body))
	}
	if apiErr.Message == "" || len(apiErr.Message) > 200 {
		apiErr.Message = http.StatusText(statusCode)
	}
	return apiErr
}
