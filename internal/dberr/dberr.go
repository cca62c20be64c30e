// Package dberr defines the error kinds returned while reading a database file.
//
// Every error produced by the reader matches one of the sentinels below with
// errors.Is. The typed errors carry the context worth printing and unwrap to
// their sentinel.
package dberr

import (
	"errors"
	"fmt"
)

var (
	// ErrTruncatedInput means the source ran out of bytes mid-decode.
	ErrTruncatedInput = errors.New("truncated input")
	// ErrUnsupportedSerialType means a record header carried a reserved code.
	ErrUnsupportedSerialType = errors.New("unsupported serial type")
	// ErrTableNotFound means no catalog row matched the requested table.
	ErrTableNotFound = errors.New("table not found")
	// ErrColumnNotFound means the creation statement has no such column.
	ErrColumnNotFound = errors.New("column not found")
	// ErrMalformedDefinition means a creation statement lacks a parseable column list.
	ErrMalformedDefinition = errors.New("malformed definition")
	// ErrUnrecognizedCommand means the command text matches no supported shape.
	ErrUnrecognizedCommand = errors.New("unrecognized command")
	// ErrCorrupt means the file contradicts the format (bad magic, bad page type, cycles).
	ErrCorrupt = errors.New("corrupt database")
	// ErrUnsupported means the file uses a feature this reader does not implement.
	ErrUnsupported = errors.New("unsupported")
)

// SerialTypeError reports a serial type code that cannot be decoded.
type SerialTypeError struct {
	Code uint64
}

func (e *SerialTypeError) Error() string {
	return fmt.Sprintf("unsupported serial type: %d", e.Code)
}

func (e *SerialTypeError) Unwrap() error {
	return ErrUnsupportedSerialType
}

// NotFoundError reports a missing table or column.
type NotFoundError struct {
	Resource string // "table" or "column"
	ID       string
	Err      error
}

func (e *NotFoundError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
	}
	return fmt.Sprintf("%s not found", e.Resource)
}

func (e *NotFoundError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	switch e.Resource {
	case "table":
		return ErrTableNotFound
	case "column":
		return ErrColumnNotFound
	}
	return nil
}

// ParseError reports text that could not be split into its expected parts.
type ParseError struct {
	Format  string // what was being parsed, e.g. "create table"
	Input   string
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse %s: %s: %q", e.Format, e.Message, e.Input)
}

func (e *ParseError) Unwrap() error {
	return ErrMalformedDefinition
}

// CommandError carries the original command text for display.
type CommandError struct {
	Command string
	Err     error // parser error, if any
}

func (e *CommandError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("unrecognized command: %s (%v)", e.Command, e.Err)
	}
	return fmt.Sprintf("unrecognized command: %s", e.Command)
}

func (e *CommandError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrUnrecognizedCommand, e.Err}
	}
	return []error{ErrUnrecognizedCommand}
}

// UnsupportedError reports a format feature outside the reader's scope.
type UnsupportedError struct {
	Feature string
	Reason  string
}

func (e *UnsupportedError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("unsupported %s: %s", e.Feature, e.Reason)
	}
	return fmt.Sprintf("unsupported %s", e.Feature)
}

func (e *UnsupportedError) Unwrap() error {
	return ErrUnsupported
}
