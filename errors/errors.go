// Package errors defines the compile error taxonomy, compile warnings and
// their formatting.
//
// Every fatal condition is a *CompileError carrying a Kind. Fatal errors abort
// the current compilation; warnings are collected by Diagnostics and never
// stop it.
package errors

import (
	goerrors "errors"
	"fmt"
	"strings"
)

// Kind categorizes a fatal compile error.
type Kind int

const (
	// IncompatibleType means no conversion rule applies to a source and
	// destination pair, or a concrete destination received a non-concrete
	// source.
	IncompatibleType Kind = iota + 1
	// Unsupported means the combination is recognized but not implemented.
	Unsupported
	// MalformedTemplate means a command template's placeholder count does
	// not match its argument count.
	MalformedTemplate
	// InvariantViolation is a programmer error against the graph, such as
	// writing to an ended subroutine.
	InvariantViolation
	// InvalidName means a restricted symbol does not match its charset.
	InvalidName
	// SyntaxError is raised by the program document front end.
	SyntaxError
	// UndefinedName is raised when a program references an unknown name.
	UndefinedName
)

var kindNames = map[Kind]string{
	IncompatibleType:   "incompatible type",
	Unsupported:        "unsupported",
	MalformedTemplate:  "malformed template",
	InvariantViolation: "invariant violation",
	InvalidName:        "invalid name",
	SyntaxError:        "syntax error",
	UndefinedName:      "undefined name",
}

var kindCodes = map[Kind]ErrorCode{
	IncompatibleType:   E2001,
	Unsupported:        E2002,
	MalformedTemplate:  E2003,
	InvariantViolation: E2004,
	InvalidName:        E2005,
	SyntaxError:        E1001,
	UndefinedName:      E2006,
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "error"
}

// CompileError represents a fatal compilation error with optional context.
type CompileError struct {
	Code     ErrorCode
	Kind     Kind
	Message  string
	Filename string
	Line     int
	Column   int
	// Context is the compiled-context stack at the point of failure,
	// outermost first.
	Context []string
	Note    string
}

// Error implements the error interface.
func (e *CompileError) Error() string {
	var b strings.Builder
	b.WriteString("compile error: ")
	b.WriteString(e.Message)
	if e.Filename != "" || e.Line > 0 {
		b.WriteString("\n\nlocation: ")
		if e.Filename != "" {
			b.WriteString(e.Filename)
			b.WriteString(":")
		}
		fmt.Fprintf(&b, "%d:%d", e.Line, e.Column)
		fmt.Fprintf(&b, " (line %d, column %d)", e.Line, e.Column)
	}
	return b.String()
}

// IsFatal reports whether the error aborts compilation. All compile errors do.
func (e *CompileError) IsFatal() bool {
	return true
}

// FriendlyErrorMessage returns a human-friendly error message.
func (e *CompileError) FriendlyErrorMessage() string {
	return NewFormatter(false).Format(e.ToFormatted())
}

// ToFormatted converts to the FormattedError type for display.
func (e *CompileError) ToFormatted() *FormattedError {
	return &FormattedError{
		Code:     e.Code,
		Kind:     "error",
		Message:  e.Message,
		Filename: e.Filename,
		Line:     e.Line,
		Column:   e.Column,
		Note:     e.Note,
		Stack:    e.Context,
	}
}

// WithLocation returns a copy of the error positioned at the given location.
func (e *CompileError) WithLocation(filename string, line, column int) *CompileError {
	cp := *e
	cp.Filename = filename
	cp.Line = line
	cp.Column = column
	return &cp
}

func newError(kind Kind, format string, args ...any) *CompileError {
	return &CompileError{
		Code:    kindCodes[kind],
		Kind:    kind,
		Message: fmt.Sprintf(format, args...),
	}
}

func IncompatibleTypef(format string, args ...any) *CompileError {
	return newError(IncompatibleType, format, args...)
}

func Unsupportedf(format string, args ...any) *CompileError {
	return newError(Unsupported, format, args...)
}

func MalformedTemplatef(format string, args ...any) *CompileError {
	return newError(MalformedTemplate, format, args...)
}

func InvariantViolationf(format string, args ...any) *CompileError {
	return newError(InvariantViolation, format, args...)
}

func InvalidNamef(format string, args ...any) *CompileError {
	return newError(InvalidName, format, args...)
}

func Syntaxf(format string, args ...any) *CompileError {
	return newError(SyntaxError, format, args...)
}

// Undefinedf reports an unknown variable. Use UndefinedFunctionf for calls.
func Undefinedf(format string, args ...any) *CompileError {
	return newError(UndefinedName, format, args...)
}

func UndefinedFunctionf(format string, args ...any) *CompileError {
	err := newError(UndefinedName, format, args...)
	err.Code = E2007
	return err
}

// Is reports whether any error in err's chain is a CompileError of the given
// kind. Errors aggregated with go-multierror are searched as well.
func Is(err error, kind Kind) bool {
	if err == nil {
		return false
	}
	var ce *CompileError
	if goerrors.As(err, &ce) && ce.Kind == kind {
		return true
	}
	if wrapped, ok := err.(interface{ WrappedErrors() []error }); ok {
		for _, inner := range wrapped.WrappedErrors() {
			if Is(inner, kind) {
				return true
			}
		}
	}
	return false
}

// As is a convenience wrapper around the standard library's errors.As.
func As(err error, target any) bool {
	return goerrors.As(err, target)
}

// CompileErrors holds multiple compile errors.
type CompileErrors struct {
	Errors []*CompileError
}

// Error implements the error interface.
func (e *CompileErrors) Error() string {
	if len(e.Errors) == 0 {
		return ""
	}
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	return fmt.Sprintf("%s (and %d more errors)", e.Errors[0].Error(), len(e.Errors)-1)
}

// WrappedErrors exposes the collected errors to Is.
func (e *CompileErrors) WrappedErrors() []error {
	errs := make([]error, len(e.Errors))
	for i, err := range e.Errors {
		errs[i] = err
	}
	return errs
}

// FriendlyErrorMessage returns a human-friendly error message for all errors.
func (e *CompileErrors) FriendlyErrorMessage() string {
	var formatted []*FormattedError
	for _, err := range e.Errors {
		formatted = append(formatted, err.ToFormatted())
	}
	return NewFormatter(false).FormatMultiple(formatted)
}

// Add adds a compile error to the collection.
func (e *CompileErrors) Add(err *CompileError) {
	e.Errors = append(e.Errors, err)
}

// Count returns the number of errors.
func (e *CompileErrors) Count() int {
	return len(e.Errors)
}

// HasErrors returns true if there are any errors.
func (e *CompileErrors) HasErrors() bool {
	return len(e.Errors) > 0
}

// ToError returns the errors as a single error, or nil if empty.
func (e *CompileErrors) ToError() error {
	if len(e.Errors) == 0 {
		return nil
	}
	if len(e.Errors) == 1 {
		return e.Errors[0]
	}
	return e
}
