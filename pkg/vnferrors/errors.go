// Package vnferrors defines the error taxonomy used across the placement
// searcher: configuration errors, input parse errors, usage errors (caller
// misuse of the accepter) and internal invariant violations.
package vnferrors

import "fmt"

// Code distinguishes the error kinds named in the error-handling design:
// configuration, parse, usage and invariant errors are all fatal to the
// run, but callers report and log them differently.
type Code string

const (
	CodeConfig    Code = "config"
	CodeParse     Code = "parse"
	CodeUsage     Code = "usage"
	CodeInvariant Code = "invariant"
)

// BaseError is the common shape for every error kind below: a code, a
// human message, an optional field name the error is about, and an
// optional wrapped cause.
type BaseError struct {
	Code    Code
	Message string
	Field   string
	Cause   error
}

func (e *BaseError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s (field %q)", e.Code, e.Message, e.Field)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *BaseError) Unwrap() error { return e.Cause }

// ConfigError reports an unknown operator name, a missing config section,
// or an out-of-range numeric setting. The offending field is always named.
type ConfigError struct{ *BaseError }

func NewConfigError(field, message string) *ConfigError {
	return &ConfigError{&BaseError{Code: CodeConfig, Message: message, Field: field}}
}

// ParseError reports a malformed input-file row, premature EOF, or a
// token of the wrong type. Position is a 1-based line number within the
// input file, 0 if not applicable.
type ParseError struct {
	*BaseError
	Line int
}

func NewParseError(line int, message string) *ParseError {
	return &ParseError{&BaseError{Code: CodeParse, Message: message}, line}
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("parse: %s (line %d)", e.Message, e.Line)
	}
	return fmt.Sprintf("parse: %s", e.Message)
}

// UsageError reports caller misuse of an API that only a programming bug
// could trigger, e.g. accepting a request the accepter has never heard of,
// or accepting one that is already accepted. Never data-dependent.
type UsageError struct{ *BaseError }

func NewUsageError(message string) *UsageError {
	return &UsageError{&BaseError{Code: CodeUsage, Message: message}}
}

// InvariantError reports a failed internal assertion, such as a
// successful accept producing an invalid placement. Always a bug report.
type InvariantError struct{ *BaseError }

func NewInvariantError(message string) *InvariantError {
	return &InvariantError{&BaseError{Code: CodeInvariant, Message: message}}
}
