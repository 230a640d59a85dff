package lang

import (
	"errors"
	"log/slog"
	"strconv"
	"strings"
)

// Predefined errors (sentinel values).
var (
	ErrParse             = NewError("parse error")
	ErrUnexpectedToken   = NewError("unexpected token")
	ErrMissingValue      = NewError("missing value")
	ErrInvalidValue      = NewError("invalid value")
	ErrVariableNotFound  = NewError("variable not found")
	ErrCircularReference = NewError("circular cross-file reference")
	ErrMaxDepthExceeded  = NewError("maximum cross-file depth exceeded")
	ErrTypeConversion    = NewError("type conversion failed")
	ErrValidation        = NewError("validation failed")
	ErrReadInput         = NewError("failed to read input")
	ErrSerialize         = NewError("serialization failed")
	ErrOperator          = NewError("operator execution failed")

	// ErrOperatorNotFound and ErrOperatorParams are the two error kinds an
	// [OperatorEngine] must distinguish; callers branch on them.
	ErrOperatorNotFound = NewError("operator not found")
	ErrOperatorParams   = NewError("invalid operator parameters")
)

// Error represents an error with optional structured logging attributes.
// It implements both error and slog.LogValuer interfaces.
type Error struct {
	msg   string
	err   error       // wrapped error (for errors.Unwrap)
	attrs []slog.Attr // attributes for structured logging
}

// NewError creates a new Error with a message.
func NewError(msg string) *Error {
	return &Error{msg: msg}
}

// WrapError wraps a standard error into an Error.
func WrapError(err error) *Error {
	ee := &Error{}
	if errors.As(err, &ee) {
		return ee
	}

	return &Error{err: err}
}

// Error implements the error interface.
func (e *Error) Error() string {
	part := make([]string, 0, 2)

	if e.msg != "" {
		part = append(part, e.msg)
	}

	if e.err != nil {
		part = append(part, e.err.Error())
	}

	return strings.Join(part, ": ")
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *Error) Unwrap() error { return e.err }

// Is reports whether target is the same sentinel. Wrapping and adding
// attributes produce new instances, so identity is matched on message.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)

	return ok && t.msg == e.msg
}

// LogValue implements slog.LogValuer for rich structured logging.
func (e *Error) LogValue() slog.Value {
	attrs := make([]slog.Attr, 0, len(e.attrs)+2)

	if e.msg != "" {
		attrs = append(attrs, slog.String("error", e.msg))
	}

	if e.err != nil {
		attrs = append(attrs, slog.String("cause", e.err.Error()))
	}

	return slog.GroupValue(append(attrs, e.attrs...)...)
}

// Wrap creates a new Error wrapping another error.
func (e *Error) Wrap(err error) *Error {
	return &Error{
		msg:   e.msg,
		err:   err,
		attrs: e.attrs,
	}
}

// With adds attributes to the error for structured logging.
// A new Error instance is created to maintain immutability.
func (e *Error) With(attrs ...slog.Attr) *Error {
	newAttrs := make([]slog.Attr, len(e.attrs)+len(attrs))
	copy(newAttrs, e.attrs)
	copy(newAttrs[len(e.attrs):], attrs)

	return &Error{
		msg:   e.msg,
		err:   e.err,
		attrs: newAttrs,
	}
}

// AtLine attaches a 1-based line number attribute.
func (e *Error) AtLine(line int) *Error {
	return e.With(slog.Int("line", line))
}

// SyntaxError reports a line of input that matched no production.
// Line numbers are 1-based.
type SyntaxError struct {
	Line int
	Text string // the offending logical line, trimmed
}

// Error implements the error interface.
func (e *SyntaxError) Error() string {
	return "line " + strconv.Itoa(e.Line) + ": invalid syntax: " +
		strconv.Quote(e.Text)
}

// LineOf extracts the 1-based line number carried by a parse-class error.
// It returns 0 when the error carries no position.
func LineOf(err error) int {
	se := &SyntaxError{}
	if errors.As(err, &se) {
		return se.Line
	}

	return 0
}
