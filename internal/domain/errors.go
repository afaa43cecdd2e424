package domain

import (
	"errors"
	"fmt"
)

// RequestError means the backend answered with a status outside 2xx.
type RequestError struct {
	StatusCode int
	StatusText string
	// Detail is the backend's own error description, when it sent one.
	// It is logged, never rendered.
	Detail string
}

func (e *RequestError) Error() string {
	return "Server error: " + e.StatusText
}

// ParseError means the response body was not JSON or not a Prediction
// Response.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid prediction response: %v", e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// NetworkError means the request to the backend never completed.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error: %v", e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// Outcome classifies how a submission ended.
type Outcome string

const (
	OutcomeSuccess      Outcome = "success"
	OutcomeRequestError Outcome = "request_error"
	OutcomeParseError   Outcome = "parse_error"
	OutcomeNetworkError Outcome = "network_error"
	OutcomeStale        Outcome = "stale"
	OutcomeInternal     Outcome = "internal_error"
)

// OutcomeOf classifies err. A nil error is a success; anything outside the
// taxonomy is internal.
func OutcomeOf(err error) Outcome {
	var (
		reqErr   *RequestError
		parseErr *ParseError
		netErr   *NetworkError
	)
	switch {
	case err == nil:
		return OutcomeSuccess
	case errors.As(err, &reqErr):
		return OutcomeRequestError
	case errors.As(err, &parseErr):
		return OutcomeParseError
	case errors.As(err, &netErr):
		return OutcomeNetworkError
	default:
		return OutcomeInternal
	}
}
