package errors

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
)

// Formatter formats errors and warnings in a Rust-like layout.
type Formatter struct {
	// UseColor enables ANSI color codes in output.
	UseColor bool
}

// NewFormatter creates a new formatter.
func NewFormatter(useColor bool) *Formatter {
	return &Formatter{UseColor: useColor}
}

// Colors used for formatting
var (
	colorError    = color.New(color.FgRed)
	colorWarning  = color.New(color.FgYellow, color.Bold)
	colorHeader   = color.New(color.FgHiRed, color.Bold)
	colorCode     = color.New(color.FgHiBlack)
	colorLocation = color.New(color.FgCyan)
	colorPipe     = color.New(color.FgHiBlack)
	colorHint     = color.New(color.FgHiYellow)
	colorNote     = color.New(color.FgHiBlue)
)

// FormattedError represents an error or warning ready for display.
type FormattedError struct {
	Code     ErrorCode
	Kind     string // "error" or "warning"
	Message  string
	Filename string
	Line     int
	Column   int
	Hint     string
	Note     string
	Stack    []string // compiled-context frames, outermost first
}

func (f *Formatter) paint(c *color.Color, s string) string {
	if !f.UseColor {
		return s
	}
	c.EnableColor()
	return c.Sprint(s)
}

// Format formats a single error or warning.
func (f *Formatter) Format(err *FormattedError) string {
	return f.FormatWithPrefix(err, "")
}

// FormatWithPrefix formats the error with an optional prefix like "1/5".
func (f *Formatter) FormatWithPrefix(err *FormattedError, prefix string) string {
	var b strings.Builder

	label := "error"
	header := colorHeader
	if err.Kind == "warning" {
		label = "warning"
		header = colorWarning
	}
	b.WriteString(f.paint(header, label))
	if err.Code != "" {
		b.WriteString(f.paint(colorCode, fmt.Sprintf("[%s]", err.Code)))
	} else if prefix != "" {
		b.WriteString(f.paint(colorCode, fmt.Sprintf("[%s]", prefix)))
	}
	b.WriteString(f.paint(colorError, ": "))
	b.WriteString(err.Message)
	b.WriteString("\n")

	if err.Filename != "" || err.Line > 0 {
		loc := err.Filename
		if err.Line > 0 {
			if loc != "" {
				loc += ":"
			}
			loc += fmt.Sprintf("%d:%d", err.Line, err.Column)
		}
		b.WriteString("  ")
		b.WriteString(f.paint(colorLocation, "--> "+loc))
		b.WriteString("\n")
	}
	if err.Hint != "" {
		b.WriteString(f.paint(colorPipe, "   = "))
		b.WriteString(f.paint(colorHint, "hint: "))
		b.WriteString(err.Hint)
		b.WriteString("\n")
	}
	if err.Note != "" {
		b.WriteString(f.paint(colorPipe, "   = "))
		b.WriteString(f.paint(colorNote, "note: "))
		b.WriteString(err.Note)
		b.WriteString("\n")
	}
	if len(err.Stack) > 0 {
		b.WriteString(f.paint(colorPipe, "   = "))
		b.WriteString(f.paint(colorNote, "while compiling:\n"))
		for i := len(err.Stack) - 1; i >= 0; i-- {
			b.WriteString(f.paint(colorPipe, "     "))
			b.WriteString("in ")
			b.WriteString(err.Stack[i])
			b.WriteString("\n")
		}
	}
	return b.String()
}

// FormatMultiple formats multiple errors with consistent styling.
func (f *Formatter) FormatMultiple(errs []*FormattedError) string {
	if len(errs) == 0 {
		return ""
	}
	if len(errs) == 1 {
		return f.Format(errs[0])
	}
	var b strings.Builder
	total := len(errs)
	for i, err := range errs {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(f.FormatWithPrefix(err, fmt.Sprintf("%d/%d", i+1, total)))
	}
	b.WriteString("\n")
	b.WriteString(f.paint(colorHeader, fmt.Sprintf("found %d errors", total)))
	b.WriteString("\n")
	return b.String()
}

// FormatError formats any error. Compile errors, collections of them and
// errors aggregated with go-multierror get the full layout; anything else is
// printed as a plain message.
func (f *Formatter) FormatError(err error) string {
	var formatted []*FormattedError
	collect(err, &formatted)
	if len(formatted) == 0 {
		return f.Format(&FormattedError{Kind: "error", Message: err.Error()})
	}
	return f.FormatMultiple(formatted)
}

func collect(err error, out *[]*FormattedError) {
	if wrapped, ok := err.(interface{ WrappedErrors() []error }); ok {
		for _, inner := range wrapped.WrappedErrors() {
			collect(inner, out)
		}
		return
	}
	var ce *CompileError
	if As(err, &ce) {
		*out = append(*out, ce.ToFormatted())
		return
	}
	*out = append(*out, &FormattedError{Kind: "error", Message: err.Error()})
}

// FormatWarnings formats a list of warnings.
func (f *Formatter) FormatWarnings(warnings []*Warning) string {
	var b strings.Builder
	for _, w := range warnings {
		b.WriteString(f.Format(w.ToFormatted()))
	}
	return b.String()
}
