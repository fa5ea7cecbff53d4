package errors

import (
	"errors"
	"fmt"
	"time"
)

// ErrorType represents the type of error
type ErrorType string

const (
	// ErrorTypeNetwork represents network-related errors
	ErrorTypeNetwork ErrorType = "network"
	// ErrorTypeRateLimit represents rate limiting errors
	ErrorTypeRateLimit ErrorType = "rate_limit"
	// ErrorTypeParsing represents feed or markup parsing errors
	ErrorTypeParsing ErrorType = "parsing"
	// ErrorTypeNotify represents notification delivery errors
	ErrorTypeNotify ErrorType = "notify"
	// ErrorTypeConfiguration represents configuration errors
	ErrorTypeConfiguration ErrorType = "configuration"
)

// SourceError represents an error attributed to one monitored source
type SourceError struct {
	Type       ErrorType
	Source     string
	Message    string
	Err        error
	RetryAfter time.Duration
	Time       time.Time
}

// Error implements the error interface
func (e *SourceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %s - %v", e.Type, e.Source, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Type, e.Source, e.Message)
}

// Unwrap returns the underlying error
func (e *SourceError) Unwrap() error {
	return e.Err
}

// New creates a new SourceError
func New(errType ErrorType, source, message string, err error) *SourceError {
	return &SourceError{
		Type:    errType,
		Source:  source,
		Message: message,
		Err:     err,
		Time:    time.Now(),
	}
}

// NewNetwork creates a new network error
func NewNetwork(source, message string, err error) *SourceError {
	return New(ErrorTypeNetwork, source, message, err)
}

// NewParsing creates a new parsing error
func NewParsing(source, message string, err error) *SourceError {
	return New(ErrorTypeParsing, source, message, err)
}

// NewRateLimit creates a new rate limit error carrying the server's retry hint
func NewRateLimit(source string, retryAfter time.Duration) *SourceError {
	e := New(ErrorTypeRateLimit, source, fmt.Sprintf("rate limited; retry after %v", retryAfter), nil)
	e.RetryAfter = retryAfter
	return e
}

// NewNotify creates a new notification error
func NewNotify(source, message string, err error) *SourceError {
	return New(ErrorTypeNotify, source, message, err)
}

// NewConfiguration creates a new configuration error
func NewConfiguration(message string, err error) *SourceError {
	return New(ErrorTypeConfiguration, "", message, err)
}

// RetryAfterHint reports whether err is a rate-limit error and returns its
// retry hint. A zero hint means the server supplied none.
func RetryAfterHint(err error) (time.Duration, bool) {
	var se *SourceError
	if errors.As(err, &se) && se.Type == ErrorTypeRateLimit {
		return se.RetryAfter, true
	}
	return 0, false
}
