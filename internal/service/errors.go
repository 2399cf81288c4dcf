package service

import "fmt"

// ValidationError marks malformed or missing input the caller can fix.
// Handlers map it to 400 without treating it as an internal failure.
type ValidationError struct {
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return e.Message
}

func invalidf(format string, args ...any) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}
