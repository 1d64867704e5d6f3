package crawler

import (
	"context"
	"errors"
	"fmt"
	"net"
	"syscall"
)

// ErrorType categorizes different types of crawler backend errors
type ErrorType string

const (
	ErrorTypeServiceUnavailable ErrorType = "service_unavailable"
	ErrorTypeTimeout            ErrorType = "timeout"
	ErrorTypeNetwork            ErrorType = "network"
	ErrorTypeHTTPStatus         ErrorType = "http_status"
	ErrorTypeInvalidResponse    ErrorType = "invalid_response"
	ErrorTypeCancelled          ErrorType = "cancelled"
	ErrorTypeNotReady           ErrorType = "not_ready"
)

// CrawlerError represents a structured error from the crawler backend
type CrawlerError struct {
	Type       ErrorType
	Message    string
	StatusCode int
	Cause      error
}

// Error implements the error interface
func (e *CrawlerError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Type, e.Message)
	if e.StatusCode != 0 {
		msg = fmt.Sprintf("%s: %s (status %d)", e.Type, e.Message, e.StatusCode)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s (%v)", msg, e.Cause)
	}
	return msg
}

// Unwrap returns the underlying error for error unwrapping
func (e *CrawlerError) Unwrap() error {
	return e.Cause
}

// IsRetryable returns true if the error is likely to succeed on retry
func (e *CrawlerError) IsRetryable() bool {
	switch e.Type {
	case ErrorTypeServiceUnavailable, ErrorTypeNetwork, ErrorTypeTimeout:
		return true
	case ErrorTypeHTTPStatus:
		return e.StatusCode >= 500
	default:
		return false
	}
}

// UserMessage returns a user-friendly error message
func (e *CrawlerError) UserMessage() string {
	switch e.Type {
	case ErrorTypeServiceUnavailable:
		return "Crawler service unavailable. Please check if the backend is running."
	case ErrorTypeTimeout:
		return "The crawler service did not respond in time. Please try again."
	case ErrorTypeNetwork:
		return "Network error while talking to the crawler service. Please check your connection."
	case ErrorTypeHTTPStatus:
		if e.Message != "" {
			return e.Message
		}
		return fmt.Sprintf("Crawler service returned status %d.", e.StatusCode)
	case ErrorTypeInvalidResponse:
		return "Received invalid response from crawler service. Please try again."
	case ErrorTypeCancelled:
		return "Request was cancelled."
	case ErrorTypeNotReady:
		return "The result is not ready yet."
	default:
		return e.Message
	}
}

// classifyTransportError maps an http.Client error to a CrawlerError.
func classifyTransportError(err error) *CrawlerError {
	switch {
	case errors.Is(err, context.Canceled):
		return newCancelledError(err)
	case errors.Is(err, context.DeadlineExceeded):
		return newTimeoutError(err)
	case errors.Is(err, syscall.ECONNREFUSED):
		return newServiceUnavailableError(err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return newTimeoutError(err)
	}
	return newNetworkError(err)
}

func newServiceUnavailableError(cause error) *CrawlerError {
	return &CrawlerError{
		Type:    ErrorTypeServiceUnavailable,
		Message: "Service not available",
		Cause:   cause,
	}
}

func newTimeoutError(cause error) *CrawlerError {
	return &CrawlerError{
		Type:    ErrorTypeTimeout,
		Message: "Request timed out",
		Cause:   cause,
	}
}

func newNetworkError(cause error) *CrawlerError {
	return &CrawlerError{
		Type:    ErrorTypeNetwork,
		Message: "Network error",
		Cause:   cause,
	}
}

func newStatusError(statusCode int, detail string) *CrawlerError {
	return &CrawlerError{
		Type:       ErrorTypeHTTPStatus,
		Message:    detail,
		StatusCode: statusCode,
	}
}

func newInvalidResponseError(message string, cause error) *CrawlerError {
	return &CrawlerError{
		Type:    ErrorTypeInvalidResponse,
		Message: message,
		Cause:   cause,
	}
}

func newCancelledError(cause error) *CrawlerError {
	return &CrawlerError{
		Type:    ErrorTypeCancelled,
		Message: "Operation cancelled",
		Cause:   cause,
	}
}

func newNotReadyError(detail string) *CrawlerError {
	return &CrawlerError{
		Type:       ErrorTypeNotReady,
		Message:    detail,
		StatusCode: 400,
	}
}
