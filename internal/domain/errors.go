package domain

import (
	"errors"
	"fmt"
)

// ValidationError reports form input rejected before any network call.
type ValidationError struct {
	Field string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s must not be empty", e.Field)
}

// NetworkError means no response reached the client.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s: backend unreachable: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// ServerError means a response arrived but was not a usable success.
type ServerError struct {
	Op         string
	StatusCode int
	Status     string
	Body       string
	Err        error
}

func (e *ServerError) Error() string {
	msg := fmt.Sprintf("%s failed: %s", e.Op, e.Status)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	if e.Body != "" {
		msg += ": " + e.Body
	}
	return msg
}

func (e *ServerError) Unwrap() error { return e.Err }

// IsValidation reports whether err is a client-side validation failure.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// Kind names the error class for logging: validation, network, server or unknown.
func Kind(err error) string {
	var (
		v *ValidationError
		n *NetworkError
		s *ServerError
	)
	switch {
	case err == nil:
		return ""
	case errors.As(err, &v):
		return "validation"
	case errors.As(err, &n):
		return "network"
	case errors.As(err, &s):
		return "server"
	default:
		return "unknown"
	}
}
