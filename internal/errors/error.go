package errors

import (
	"fmt"
)

// Category represents the type of error.
type Category string

const (
	CategoryRuntime  Category = "runtime"
	CategoryTemplate Category = "template"
	CategoryData     Category = "data"
	CategoryConfig   Category = "config"
	CategorySource   Category = "source"
	CategoryServer   Category = "server"
	CategoryCLI      Category = "cli"
)

// ZvueError is a structured error with a code, a category, and a hint.
type ZvueError struct {
	// Code is a unique error identifier (e.g., "Z001").
	Code string

	// Category is the error type.
	Category Category

	// Message is a short description of the error.
	Message string

	// Detail is a longer explanation of the error.
	Detail string

	// File is the template, data, or config file involved, if any.
	File string

	// Suggestion is a hint on how to fix the error.
	Suggestion string

	// Wrapped is the underlying error, if any.
	Wrapped error
}

// Error implements the error interface.
func (e *ZvueError) Error() string {
	msg := e.Message
	if e.Code != "" {
		msg = fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	if e.Wrapped != nil {
		msg += ": " + e.Wrapped.Error()
	}
	return msg
}

// Unwrap returns the wrapped error for errors.Is/As support.
func (e *ZvueError) Unwrap() error {
	return e.Wrapped
}

// WithFile records the file the error is about.
func (e *ZvueError) WithFile(file string) *ZvueError {
	e.File = file
	return e
}

// WithSuggestion adds a fix suggestion to the error.
func (e *ZvueError) WithSuggestion(s string) *ZvueError {
	e.Suggestion = s
	return e
}

// WithDetail adds a detailed explanation to the error.
func (e *ZvueError) WithDetail(d string) *ZvueError {
	e.Detail = d
	return e
}

// Wrap wraps another error.
func (e *ZvueError) Wrap(err error) *ZvueError {
	e.Wrapped = err
	return e
}

// New creates a ZvueError from a registered error code.
func New(code string) *ZvueError {
	template, ok := registry[code]
	if !ok {
		return &ZvueError{
			Code:    code,
			Message: "Unknown error",
		}
	}
	return &ZvueError{
		Code:     code,
		Category: template.Category,
		Message:  template.Message,
		Detail:   template.Detail,
	}
}

// Newf creates a new ZvueError with a formatted message (no code).
func Newf(category Category, format string, args ...any) *ZvueError {
	return &ZvueError{
		Category: category,
		Message:  fmt.Sprintf(format, args...),
	}
}

// FromError wraps a standard error in a ZvueError. An error that already is
// (or wraps) a ZvueError is returned as that ZvueError.
func FromError(err error, code string) *ZvueError {
	if err == nil {
		return nil
	}
	if ze, ok := As(err); ok {
		return ze
	}
	return New(code).Wrap(err)
}
