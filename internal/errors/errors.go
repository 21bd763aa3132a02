package errors

import (
	"fmt"
	"time"
)

/**
 * Custom error types for the CAPTCHA Solver Worker
 *
 * Every failure surfaced to a caller is one of these structured errors;
 * raw faults from pipeline stages never leave the solver.
 */

// ErrorCode enum for structured error handling
type ErrorCode string

const (
	// Terminal request errors
	ErrorDecodeFailed     ErrorCode = "DECODE_FAILED"
	ErrorPreprocessFailed ErrorCode = "PREPROCESS_FAILED"

	// Per-mode recognition errors (absorbed, never terminal)
	ErrorRecognitionFailed ErrorCode = "RECOGNITION_FAILED"

	// Non-exceptional outcome: the pipeline ran but produced no usable answer
	ErrorNoWinner ErrorCode = "NO_WINNER"
)

// SolveError represents a structured solve error
type SolveError struct {
	Code      ErrorCode
	Message   string
	RequestID string
	Timestamp time.Time
	Details   map[string]interface{}
	Cause     error
}

func (e *SolveError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *SolveError) Unwrap() error {
	return e.Cause
}

// Factory functions for common errors

func NewDecodeFailedError(requestID string, cause error) *SolveError {
	return &SolveError{
		Code:      ErrorDecodeFailed,
		Message:   "Failed to decode image payload",
		RequestID: requestID,
		Timestamp: time.Now(),
		Cause:     cause,
	}
}

func NewPreprocessFailedError(requestID string, cause error) *SolveError {
	return &SolveError{
		Code:      ErrorPreprocessFailed,
		Message:   "Failed to preprocess image",
		RequestID: requestID,
		Timestamp: time.Now(),
		Cause:     cause,
	}
}

func NewRecognitionFailedError(requestID string, mode string, cause error) *SolveError {
	return &SolveError{
		Code:      ErrorRecognitionFailed,
		Message:   fmt.Sprintf("Recognition failed for mode: %s", mode),
		RequestID: requestID,
		Timestamp: time.Now(),
		Details: map[string]interface{}{
			"mode": mode,
		},
		Cause: cause,
	}
}

func NewNoWinnerError(requestID string, attempts int) *SolveError {
	return &SolveError{
		Code:      ErrorNoWinner,
		Message:   "No recognition attempt produced a qualifying candidate",
		RequestID: requestID,
		Timestamp: time.Now(),
		Details: map[string]interface{}{
			"attempts": attempts,
		},
	}
}

// ToMap converts error to map for structured responses
func (e *SolveError) ToMap() map[string]interface{} {
	result := map[string]interface{}{
		"error_code": string(e.Code),
		"message":    e.Message,
		"timestamp":  e.Timestamp,
	}

	for k, v := range e.Details {
		result[k] = v
	}

	if e.Cause != nil {
		result["cause"] = e.Cause.Error()
	}

	return result
}
