package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrSessionInvalidated is matched (errors.Is) by 401 errors that caused the session to be cleared
var ErrSessionInvalidated = errors.New("session invalidated by the backend")

// ClientError represents an error encountered when communicating with the CCA backend.
// StatusCode 0 = network, validation or internal error, >0 = HTTP response received
type ClientError struct {
	StatusCode         int    `json:"status_code"`
	UserMessage        string `json:"user_message"`
	LogMessage         string `json:"log_message"`
	SessionInvalidated bool   `json:"session_invalidated,omitempty"`
}

func (e *ClientError) Error() string {
	return e.LogMessage
}

// UserError returns the user-friendly message
func (e *ClientError) UserError() string {
	return e.UserMessage
}

func (e *ClientError) Unwrap() error {
	if e.SessionInvalidated {
		return ErrSessionInvalidated
	}
	return nil
}

// UserMessage returns the user-friendly message for any error returned by the client
func UserMessage(err error) string {
	var ce *ClientError
	if errors.As(err, &ce) {
		return ce.UserError()
	}
	return "An error occurred. Please try again."
}

// StatusCode returns the HTTP status of the backend response that caused err, or 0
func StatusCode(err error) int {
	var ce *ClientError
	if errors.As(err, &ce) {
		return ce.StatusCode
	}
	return 0
}

// NewClientConnectionError creates a ClientError for network/connection issues
func NewClientConnectionError(err error) *ClientError {
	return &ClientError{
		StatusCode:  0,
		UserMessage: "Unable to reach the CCA service. Please check your connection and try again.",
		LogMessage:  fmt.Sprintf("network error: %v", err),
	}
}

// NewClientInternalError creates a ClientError for internal errors, supply the error and an explanation of what was being done when the error occurred
func NewClientInternalError(err error, while string) *ClientError {
	return &ClientError{
		StatusCode:  0,
		UserMessage: "An error occurred. Please try again later.",
		LogMessage:  fmt.Sprintf("internal error: %v while %v", err, while),
	}
}

// NewClientValidationError creates a ClientError for a request rejected before it was sent
func NewClientValidationError(userMessage string, err error) *ClientError {
	return &ClientError{
		StatusCode:  0,
		UserMessage: userMessage,
		LogMessage:  fmt.Sprintf("invalid request: %v", err),
	}
}

// backendError is the error body returned by the CCA backend
type backendError struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Error   string `json:"error"`
}

// NewClientApiError creates a ClientError from a non-2xx response sent by the CCA backend
func NewClientApiError(statusCode int, body []byte, path string, sessionInvalidated bool) *ClientError {
	var serverErr backendError
	_ = json.Unmarshal(body, &serverErr)

	serverMsg := serverErr.Message
	if serverMsg == "" {
		serverMsg = serverErr.Error
	}

	var userMsg string
	switch statusCode {
	case http.StatusUnauthorized:
		if strings.HasPrefix(path, "/auth/") {
			userMsg = "Login failed. Please check your email and password and try again."
		} else {
			userMsg = "Your session has expired. Please sign in again."
		}
	case http.StatusForbidden:
		userMsg = "You don't have permission to access this resource."
	case http.StatusNotFound:
		userMsg = "The requested item could not be found."
	case http.StatusBadRequest, http.StatusConflict, http.StatusUnprocessableEntity:
		// validation and conflict messages from the backend are written for end users
		if serverMsg != "" {
			userMsg = serverMsg
		} else {
			userMsg = "Invalid request. Please check your input and try again."
		}
	case http.StatusTooManyRequests:
		userMsg = "Too many requests. Please try again in a few moments."
	case http.StatusInternalServerError, http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		userMsg = "The service is temporarily unavailable. Please try again later."
	default:
		userMsg = "An error occurred. Please try again."
	}

	logMsg := fmt.Sprintf("cca api status %d for %s", statusCode, path)
	if serverMsg != "" {
		logMsg += fmt.Sprintf(" - %s", serverMsg)
	}

	return &ClientError{
		StatusCode:         statusCode,
		UserMessage:        userMsg,
		LogMessage:         logMsg,
		SessionInvalidated: sessionInvalidated,
	}
}
