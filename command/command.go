// Package command defines the instructions emitted into instruction blocks.
//
// Commands are rendered at emission time, once every symbol they reference
// can be resolved. A Literal is a template with %s placeholders, a Call
// invokes an instruction block, a Composed command joins several fragments
// on one line and a Dynamic command computes its text from resolved names.
package command

import (
	"strings"

	"github.com/deepnoodle-ai/datapack/errors"
	"github.com/deepnoodle-ai/datapack/symbol"
)

// Target is anything a Call may reference by path.
type Target interface {
	Path() []string
}

// Wrapper is implemented by compile-time-only groupings that designate an
// entry point. A Call never targets a Wrapper directly.
type Wrapper interface {
	Target
	EntryTarget() Target
}

// Renderer supplies what commands need to produce their final text.
type Renderer interface {
	symbol.Resolver
	// PathOf returns the callable path of a target.
	PathOf(t Target) (string, error)
}

// Command is one emitted instruction or instruction fragment.
type Command interface {
	Render(r Renderer) (string, error)
	// Symbols returns every symbol the command references.
	Symbols() []*symbol.Symbol
}

// Literal is a command template with positional %s placeholders.
type Literal struct {
	Template string
	Args     []symbol.Name
}

// New returns a literal command.
func New(template string, args ...symbol.Name) *Literal {
	return &Literal{Template: template, Args: args}
}

// Text returns a literal command with no placeholders. Percent signs in text
// are escaped.
func Text(text string) *Literal {
	return &Literal{Template: symbol.Escape(text)}
}

func (l *Literal) Render(r Renderer) (string, error) {
	if n := symbol.Placeholders(l.Template); n != len(l.Args) {
		return "", errors.MalformedTemplatef("template %q has %d placeholders but %d arguments", l.Template, n, len(l.Args))
	}
	args := make([]string, len(l.Args))
	for i, arg := range l.Args {
		text, err := symbol.Text(arg, r)
		if err != nil {
			return "", err
		}
		args[i] = text
	}
	return symbol.Format(l.Template, args)
}

func (l *Literal) Symbols() []*symbol.Symbol {
	return symbol.Collect(l.Args...)
}

// Comment returns a comment line preceded by a blank line.
func Comment(text string) *Literal {
	return Text("\n# " + text)
}

// Say returns a say command.
func Say(message string) *Literal {
	return Text("say " + message)
}

// Call invokes an instruction block.
type Call struct {
	Target Target
}

// NewCall returns a call of target. Targeting a Wrapper is an invariant
// violation; call its entry point instead.
func NewCall(target Target) (*Call, error) {
	if w, ok := target.(Wrapper); ok {
		return nil, errors.InvariantViolationf(
			"call target %s is a compile-time grouping; call its entry point %s instead",
			symbol.JoinPath(w.Path()), symbol.JoinPath(w.EntryTarget().Path()))
	}
	if target == nil {
		return nil, errors.InvariantViolationf("call target is nil")
	}
	return &Call{Target: target}, nil
}

func (c *Call) Render(r Renderer) (string, error) {
	path, err := r.PathOf(c.Target)
	if err != nil {
		return "", err
	}
	return "function " + path, nil
}

func (c *Call) Symbols() []*symbol.Symbol {
	return nil
}

// Composed renders its parts on one line, separated by spaces.
type Composed struct {
	Parts []Command
}

// Compose returns the concatenation of parts.
func Compose(parts ...Command) *Composed {
	return &Composed{Parts: parts}
}

func (c *Composed) Render(r Renderer) (string, error) {
	texts := make([]string, 0, len(c.Parts))
	for _, part := range c.Parts {
		text, err := part.Render(r)
		if err != nil {
			return "", err
		}
		texts = append(texts, text)
	}
	return strings.Join(texts, " "), nil
}

func (c *Composed) Symbols() []*symbol.Symbol {
	var out []*symbol.Symbol
	for _, part := range c.Parts {
		out = append(out, part.Symbols()...)
	}
	return out
}

// ResolveFunc returns the final text of a name.
type ResolveFunc func(n symbol.Name) (string, error)

// Dynamic is a command whose text is computed at emission time.
type Dynamic struct {
	Build func(resolve ResolveFunc) (string, error)
	// Refs lists the names Build may resolve, so they are collected before
	// rendering starts.
	Refs []symbol.Name
}

// NewDynamic returns a deferred command.
func NewDynamic(build func(resolve ResolveFunc) (string, error), refs ...symbol.Name) *Dynamic {
	return &Dynamic{Build: build, Refs: refs}
}

func (d *Dynamic) Render(r Renderer) (string, error) {
	return d.Build(func(n symbol.Name) (string, error) {
		return symbol.Text(n, r)
	})
}

func (d *Dynamic) Symbols() []*symbol.Symbol {
	return symbol.Collect(d.Refs...)
}

// IsComment reports whether the command renders only a comment. Comments do
// not change state.
func IsComment(c Command) bool {
	l, ok := c.(*Literal)
	if !ok {
		return false
	}
	return strings.HasPrefix(strings.TrimSpace(l.Template), "#")
}
