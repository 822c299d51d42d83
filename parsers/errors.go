package parsers

import (
	"errors"
	"fmt"
)

var (
	// ErrUnterminatedQuote is reported when a quoted section is still open at the end of a line.
	ErrUnterminatedQuote = errors.New("parsers: unterminated quoted field")
	// ErrNilMapper is returned when Read or Write is called without a mapping function.
	ErrNilMapper = errors.New("parsers: mapping function is nil")

	errNilStream = errors.New("parsers: stream is nil")
)

// ConfigurationError reports an invalid dialect option.
type ConfigurationError struct {
	Option string
	Value  string
	Err    error
}

func (e *ConfigurationError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("parsers: invalid %s %q: %v", e.Option, e.Value, e.Err)
}

func (e *ConfigurationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// IOError wraps failures of the underlying stream: reading, writing, decoding,
// encoding or closing.
type IOError struct {
	Op  string
	Err error
}

func (e *IOError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("parsers: %s: %v", e.Op, e.Err)
}

func (e *IOError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// MalformedRecordError contains location information for a line that could not be tokenized.
// Line is 1-based and counts the header line; Column is the 1-based rune offset.
type MalformedRecordError struct {
	Line   int
	Column int
	Err    error
}

func (e *MalformedRecordError) Error() string {
	if e == nil {
		return ""
	}
	if e.Column > 0 {
		return fmt.Sprintf("parsers: malformed record on line %d, column %d: %v", e.Line, e.Column, e.Err)
	}
	return fmt.Sprintf("parsers: malformed record on line %d: %v", e.Line, e.Err)
}

func (e *MalformedRecordError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}
