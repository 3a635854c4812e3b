package service

import (
	"errors"
	"sort"
	"strings"
)

var (
	// ErrNotFound is returned when the requested record does not exist or is hidden from the caller.
	ErrNotFound = errors.New("service: not found")
	// ErrForbidden is returned when the principal lacks permission for an operation.
	ErrForbidden = errors.New("service: forbidden")
	// ErrUnauthenticated is returned when an operation needs a signed-in principal.
	ErrUnauthenticated = errors.New("service: unauthenticated")
	// ErrInvalidCredentials is returned when a login does not match any account.
	ErrInvalidCredentials = errors.New("service: invalid credentials")
)

// NonFieldErrors keys errors that concern the request as a whole.
const NonFieldErrors = "non_field_errors"

// ValidationError captures field level validation issues that callers can surface to users.
type ValidationError struct {
	Fields map[string][]string
}

// Error implements the error interface.
func (v *ValidationError) Error() string {
	if v == nil || len(v.Fields) == 0 {
		return "validation failed"
	}
	keys := make([]string, 0, len(v.Fields))
	for k := range v.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+strings.Join(v.Fields[k], "; "))
	}
	return "validation failed: " + strings.Join(parts, ", ")
}

// HasErrors reports whether any field level issues were recorded.
func (v *ValidationError) HasErrors() bool {
	return v != nil && len(v.Fields) > 0
}

// Add records a message against field.
func (v *ValidationError) Add(field, message string) {
	if v.Fields == nil {
		v.Fields = make(map[string][]string)
	}
	v.Fields[field] = append(v.Fields[field], message)
}

// fieldError returns a ValidationError with a single message.
func fieldError(field, message string) *ValidationError {
	v := &ValidationError{}
	v.Add(field, message)
	return v
}
