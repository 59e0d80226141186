// Package errors provides structured, actionable errors for urlstate.
//
// Only two failure classes exist in this module: configuration errors raised
// when a codec is constructed with colliding or empty tokens, and usage
// errors from calling a disabled layout. Parsing never fails; serialization
// never fails. Each error carries a stable code, a category, and an optional
// fix suggestion.
package errors

import (
	"fmt"
	"strings"
)

// Category represents the type of error.
type Category string

const (
	CategoryConfig Category = "config"
	CategoryUsage  Category = "usage"
	CategoryCLI    Category = "cli"
)

// Error is a structured error with a stable code and a fix suggestion.
type Error struct {
	// Code is a unique error identifier (e.g. "C002").
	Code string

	// Category is the error type (config, usage, cli).
	Category Category

	// Message is a short description of the error.
	Message string

	// Suggestion is a hint on how to fix the error.
	Suggestion string

	// Wrapped is the underlying error, if any.
	Wrapped error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("urlstate: %s: %s", e.Code, e.Message)
	}
	return "urlstate: " + e.Message
}

// Unwrap returns the wrapped error for errors.Is/As support.
func (e *Error) Unwrap() error {
	return e.Wrapped
}

// WithSuggestion adds a fix suggestion to the error.
func (e *Error) WithSuggestion(s string) *Error {
	e.Suggestion = s
	return e
}

// Wrap wraps another error.
func (e *Error) Wrap(err error) *Error {
	e.Wrapped = err
	return e
}

// Format renders the error with its suggestion, one concern per line.
func (e *Error) Format() string {
	var b strings.Builder
	b.WriteString(e.Error())
	if e.Suggestion != "" {
		b.WriteString("\n  hint: ")
		b.WriteString(e.Suggestion)
	}
	return b.String()
}

// New creates an Error from a registered error code with formatted detail.
func New(code string, args ...any) *Error {
	template, ok := registry[code]
	if !ok {
		return &Error{Code: code, Message: "unknown error"}
	}
	msg := template.Message
	if len(args) > 0 {
		msg = fmt.Sprintf(template.Message, args...)
	}
	return &Error{
		Code:       code,
		Category:   template.Category,
		Message:    msg,
		Suggestion: template.Suggestion,
	}
}

// Newf creates an Error with a formatted message and no code.
func Newf(category Category, format string, args ...any) *Error {
	return &Error{
		Category: category,
		Message:  fmt.Sprintf(format, args...),
	}
}
