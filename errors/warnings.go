package errors

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"
)

// WarningKind categorizes a non-fatal compile finding.
type WarningKind int

const (
	// Precision means a conversion proceeds but may narrow precision.
	Precision WarningKind = iota + 1
	// TypeAssumption means a conversion assumed type equality across an
	// Any or non-concrete boundary.
	TypeAssumption
)

func (k WarningKind) String() string {
	switch k {
	case Precision:
		return "precision"
	case TypeAssumption:
		return "type assumption"
	default:
		return "warning"
	}
}

// Code returns the warning code for the kind.
func (k WarningKind) Code() ErrorCode {
	switch k {
	case Precision:
		return W1001
	case TypeAssumption:
		return W1002
	default:
		return ""
	}
}

// Warning is a non-fatal compile finding.
type Warning struct {
	Code    ErrorCode
	Kind    WarningKind
	Message string
	// Context is the compiled-context stack when the warning was issued,
	// outermost first.
	Context []string
}

func (w *Warning) String() string {
	if len(w.Context) == 0 {
		return fmt.Sprintf("warning[%s]: %s", w.Code, w.Message)
	}
	return fmt.Sprintf("warning[%s]: %s (in %s)", w.Code, w.Message, strings.Join(w.Context, " > "))
}

// ToFormatted converts to the FormattedError type for display.
func (w *Warning) ToFormatted() *FormattedError {
	return &FormattedError{
		Code:    w.Code,
		Kind:    "warning",
		Message: w.Message,
		Stack:   w.Context,
	}
}

// Diagnostics collects warnings issued during one compilation and tracks the
// compiled-context stack they are reported against. It is not safe for
// concurrent use; a compilation is single-threaded.
type Diagnostics struct {
	logger   zerolog.Logger
	context  []string
	warnings []*Warning
}

// NewDiagnostics returns a collector logging every warning to logger.
func NewDiagnostics(logger zerolog.Logger) *Diagnostics {
	return &Diagnostics{logger: logger}
}

// Enter pushes a frame onto the compiled-context stack. The returned function
// pops it again.
func (d *Diagnostics) Enter(frame string) func() {
	d.context = append(d.context, frame)
	depth := len(d.context)
	return func() {
		d.context = d.context[:depth-1]
	}
}

// Context returns a copy of the current compiled-context stack.
func (d *Diagnostics) Context() []string {
	ctx := make([]string, len(d.context))
	copy(ctx, d.context)
	return ctx
}

// Warn records a warning of the given kind.
func (d *Diagnostics) Warn(kind WarningKind, format string, args ...any) *Warning {
	w := &Warning{
		Code:    kind.Code(),
		Kind:    kind,
		Message: fmt.Sprintf(format, args...),
		Context: d.Context(),
	}
	d.warnings = append(d.warnings, w)
	d.logger.Warn().
		Str("code", string(w.Code)).
		Strs("context", w.Context).
		Msg(w.Message)
	return w
}

// Warnings returns all warnings recorded so far.
func (d *Diagnostics) Warnings() []*Warning {
	return d.warnings
}

// Logger returns the logger warnings are written to.
func (d *Diagnostics) Logger() zerolog.Logger {
	return d.logger
}
