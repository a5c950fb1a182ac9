// Package common provides shared utilities and types used across the application.
package common

import (
	"errors"
	"fmt"
)

// Common application errors.
var (
	// Input errors.
	ErrEmptyText        = errors.New("document text is empty")
	ErrUnsupportedInput = errors.New("unsupported input file")

	// Extraction errors.
	ErrNothingExtracted = errors.New("no fields could be extracted")
	ErrNoExtractor      = errors.New("unable to identify document type")

	// Schema errors.
	ErrSchemaNotFound = errors.New("schema not found")

	// LLM errors.
	ErrEmptyResponse = errors.New("empty response from LLM")

	// Configuration errors.
	ErrMissingConfig    = errors.New("missing configuration")
	ErrInvalidConfig    = errors.New("invalid configuration")
	ErrUnknownCategory  = errors.New("unknown mask category")
	ErrUnknownProvider  = errors.New("unsupported LLM provider")
	ErrAnalyzerRequired = errors.New("AI fallback enabled without an analyzer")
)

// UserError represents an error that should be shown to the user.
type UserError struct {
	Err         error
	UserMessage string
}

func (e *UserError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.UserMessage, e.Err)
	}
	return e.UserMessage
}

func (e *UserError) Unwrap() error {
	return e.Err
}

// NewUserError creates a new user-friendly error.
func NewUserError(userMessage string, err error) error {
	return &UserError{
		UserMessage: userMessage,
		Err:         err,
	}
}

// IsConfigError reports whether err stems from a construction-time configuration problem.
func IsConfigError(err error) bool {
	return errors.Is(err, ErrInvalidConfig) ||
		errors.Is(err, ErrMissingConfig) ||
		errors.Is(err, ErrUnknownCategory) ||
		errors.Is(err, ErrUnknownProvider) ||
		errors.Is(err, ErrAnalyzerRequired)
}
