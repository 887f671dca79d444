package common

import (
	"fmt"
	"strings"
	"time"
)

// ValidationError reports missing or malformed caller input.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string {
	return e.Msg
}

// Validationf builds a ValidationError with a formatted message.
func Validationf(format string, args ...interface{}) *ValidationError {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// ExtractionError reports an unreadable or empty document, naming the file.
type ExtractionError struct {
	File string
	Msg  string
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("failed to extract %s: %s", e.File, e.Msg)
}

// UpstreamAuthError reports a missing configured credential for an upstream service.
type UpstreamAuthError struct {
	Service string
}

func (e *UpstreamAuthError) Error() string {
	return fmt.Sprintf("missing API credentials for %s", e.Service)
}

// UpstreamAPIError reports a non-2xx response from an upstream API.
// StatusCode is 0 when no HTTP status is available (SDK-level failures).
type UpstreamAPIError struct {
	Service    string
	StatusCode int
	Endpoint   string
	Body       string
}

func (e *UpstreamAPIError) Error() string {
	return fmt.Sprintf("%s API error: %s (status: %d, endpoint: %s)", e.Service, e.Body, e.StatusCode, e.Endpoint)
}

// TimeoutError reports an upstream call that exceeded its deadline.
type TimeoutError struct {
	Service  string
	Deadline time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("%s call exceeded deadline of %s", e.Service, e.Deadline)
}

// ModelUnavailableError reports that every candidate model was exhausted.
// Available carries a best-effort live enumeration for diagnostics.
type ModelUnavailableError struct {
	Tried     []string
	Available []string
}

func (e *ModelUnavailableError) Error() string {
	msg := fmt.Sprintf("all candidate models failed: %s", strings.Join(e.Tried, ", "))
	if len(e.Available) > 0 {
		msg += fmt.Sprintf(" (models available to this key: %s)", strings.Join(e.Available, ", "))
	}
	return msg
}

// NoTextError reports a generation that completed without extractable text,
// typically safety filtering. Distinct from a transport failure.
type NoTextError struct {
	Model        string
	FinishReason string
}

func (e *NoTextError) Error() string {
	if e.FinishReason != "" {
		return fmt.Sprintf("model %s generated no text (finish reason: %s)", e.Model, e.FinishReason)
	}
	return fmt.Sprintf("model %s generated no text", e.Model)
}
