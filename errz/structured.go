// Package errz defines the structured runtime errors raised while simulating
// a compiled program.
package errz

import (
	"bytes"
	"fmt"
	"strings"
)

// ErrorKind represents the category of an error.
type ErrorKind int

const (
	// ErrSyntax indicates a command that could not be parsed.
	ErrSyntax ErrorKind = iota
	// ErrName indicates an unknown function, tag or objective.
	ErrName
	// ErrValue indicates an invalid value, path or selector.
	ErrValue
	// ErrRuntime indicates a general runtime error.
	ErrRuntime
	// ErrLimit indicates the command budget or call depth was exceeded.
	ErrLimit
	// ErrHalted indicates an observer stopped execution.
	ErrHalted
)

// String returns the string representation of the error kind.
func (k ErrorKind) String() string {
	switch k {
	case ErrSyntax:
		return "syntax error"
	case ErrName:
		return "name error"
	case ErrValue:
		return "value error"
	case ErrRuntime:
		return "runtime error"
	case ErrLimit:
		return "limit error"
	case ErrHalted:
		return "halted"
	default:
		return "error"
	}
}

// SourceLocation identifies a command inside a rendered function.
type SourceLocation struct {
	Function string
	// Line is 1-based.
	Line    int
	Command string
}

// IsZero reports whether the location is unset.
func (l SourceLocation) IsZero() bool {
	return l.Function == "" && l.Line == 0
}

// StackFrame is one active function call.
type StackFrame struct {
	Function string
	Line     int
}

// FormatStackTrace renders frames innermost first.
func FormatStackTrace(frames []StackFrame) string {
	var b strings.Builder
	b.WriteString("Stack trace (most recent call first):\n")
	for i := len(frames) - 1; i >= 0; i-- {
		f := frames[i]
		b.WriteString(fmt.Sprintf("  at %s:%d\n", f.Function, f.Line))
	}
	return b.String()
}

// StructuredError is a runtime error with the failing command and the call
// stack at the time it was raised.
type StructuredError struct {
	Message  string
	Kind     ErrorKind
	Location SourceLocation
	Stack    []StackFrame
	Cause    error
}

// Error implements the error interface.
func (e *StructuredError) Error() string {
	if e.Location.IsZero() {
		return fmt.Sprintf("%s: %s", e.Kind.String(), e.Message)
	}
	return fmt.Sprintf("%s: %s (%s:%d)", e.Kind.String(), e.Message, e.Location.Function, e.Location.Line)
}

// Unwrap returns the underlying cause of the error.
func (e *StructuredError) Unwrap() error {
	return e.Cause
}

// FriendlyErrorMessage returns the error with the failing command and the
// stack trace.
func (e *StructuredError) FriendlyErrorMessage() string {
	var msg bytes.Buffer
	msg.WriteString(e.Error())
	msg.WriteString("\n")
	if e.Location.Command != "" {
		msg.WriteString(" | ")
		msg.WriteString(e.Location.Command)
		msg.WriteString("\n")
	}
	if len(e.Stack) > 0 {
		msg.WriteString("\n")
		msg.WriteString(FormatStackTrace(e.Stack))
	}
	return msg.String()
}

// NewStructuredErrorf creates a new StructuredError with a formatted message.
func NewStructuredErrorf(kind ErrorKind, loc SourceLocation, stack []StackFrame, format string, args ...any) *StructuredError {
	return &StructuredError{
		Message:  fmt.Sprintf(format, args...),
		Kind:     kind,
		Location: loc,
		Stack:    stack,
	}
}

// WithCause wraps the error with a cause.
func (e *StructuredError) WithCause(cause error) *StructuredError {
	e.Cause = cause
	return e
}

// KindOf returns the kind of a structured error, and false for other errors.
func KindOf(err error) (ErrorKind, bool) {
	for err != nil {
		if se, ok := err.(*StructuredError); ok {
			return se.Kind, true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return 0, false
		}
		err = u.Unwrap()
	}
	return 0, false
}
