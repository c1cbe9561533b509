package config

import (
	"errors"
	"fmt"
)

// Errors returned by validation.
var (
	// ErrInvalidStyle indicates an unsupported outline style.
	ErrInvalidStyle = errors.New("invalid outline style")

	// ErrInvalidColor indicates a colour that cannot be parsed.
	ErrInvalidColor = errors.New("invalid color")

	// ErrInvalidPolicy indicates an unknown update policy.
	ErrInvalidPolicy = errors.New("invalid update policy")

	// ErrInvalidDuration indicates a debounce that is negative or unparsable.
	ErrInvalidDuration = errors.New("invalid duration")

	// ErrInvalidLogLevel indicates an unknown log level.
	ErrInvalidLogLevel = errors.New("invalid log level")
)

// ParseError represents an error while parsing a settings file.
type ParseError struct {
	Path    string
	Line    int
	Column  int
	Message string
	Err     error
}

func (e *ParseError) Error() string {
	if e.Line > 0 && e.Column > 0 {
		return fmt.Sprintf("parse error in %s at line %d, column %d: %s", e.Path, e.Line, e.Column, e.Message)
	}
	return fmt.Sprintf("parse error in %s: %s", e.Path, e.Message)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// ValidationError describes an invalid setting value.
type ValidationError struct {
	Key   string
	Value any
	Err   error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("setting %s = %v: %v", e.Key, e.Value, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}
