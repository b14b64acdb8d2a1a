package std

import (
	"fmt"

	"github.com/deepnoodle-ai/datapack/command"
	"github.com/deepnoodle-ai/datapack/errors"
	"github.com/deepnoodle-ai/datapack/namespace"
	"github.com/deepnoodle-ai/datapack/symbol"
	"github.com/deepnoodle-ai/datapack/types"
	"github.com/deepnoodle-ai/datapack/value"
)

// ArgStack is the stack function arguments are passed on.
const ArgStack = 0

// Stacks is the stack library. Stack n is the list "stack<n>" in the
// stack storage; its top is the last element.
type Stacks struct {
	NS *namespace.Namespace
	// Storage is the id of the storage the stacks live in.
	Storage *symbol.Symbol
	// Ret receives the element copied by peek_any.
	Ret *value.StructuredVar

	push    *namespace.Template
	pop     *namespace.Template
	peek    *namespace.Template
	peekAny *namespace.Template
}

func (l *Library) installStacks() (*Stacks, error) {
	ns := l.Root.CreateNamespace("stack")
	s := &Stacks{NS: ns}
	s.Storage = l.Root.Env().Symbols.PathOf(ns)
	s.Ret = value.InStorage(s.Storage, "ret", types.Any)

	s.push = ns.CreateTemplate("push", s.template("Push the argument register onto stack %d.",
		func(fn *namespace.Subroutine, n int) error {
			if err := fn.Add(command.New(fmt.Sprintf("data modify storage %%s stack%d append value 0", n), s.Storage)); err != nil {
				return err
			}
			return fn.Move(l.Arg, s.top(n, types.Int))
		}))
	s.pop = ns.CreateTemplate("pop", s.template("Pop the top of stack %d into the return register.",
		func(fn *namespace.Subroutine, n int) error {
			if err := fn.Move(s.top(n, types.Int), l.Ret); err != nil {
				return err
			}
			return fn.Add(command.New(fmt.Sprintf("data remove storage %%s stack%d[-1]", n), s.Storage))
		}))
	s.peek = ns.CreateTemplate("peek", s.template("Copy the top of stack %d into the return register.",
		func(fn *namespace.Subroutine, n int) error {
			return fn.Move(s.top(n, types.Int), l.Ret)
		}))
	s.peekAny = ns.CreateTemplate("peek_any", s.template("Copy the top of stack %d, whatever its type, into the stack return slot.",
		func(fn *namespace.Subroutine, n int) error {
			return fn.Move(s.top(n, types.Any), s.Ret)
		}))
	return s, nil
}

func (s *Stacks) template(description string, build func(fn *namespace.Subroutine, n int) error) namespace.TemplateFunc {
	return func(t *namespace.Template, args namespace.Args) (*namespace.Subroutine, error) {
		n, ok := args["stack"].(int)
		if !ok || n < 0 {
			return nil, errors.InvariantViolationf("stack template %s needs a non-negative int stack argument, got %v",
				t.Name(), args["stack"])
		}
		fn := t.CreateFunction(fmt.Sprintf("stack%d", n), namespace.WithDescription(fmt.Sprintf(description, n)))
		if err := build(fn, n); err != nil {
			return nil, err
		}
		return fn, nil
	}
}

// Slot returns stack n as a list variable.
func (s *Stacks) Slot(n int) *value.StructuredVar {
	return value.InStorage(s.Storage, fmt.Sprintf("stack%d", n), types.List)
}

func (s *Stacks) top(n int, typ types.DataType) *value.StructuredVar {
	return value.InStorage(s.Storage, fmt.Sprintf("stack%d[-1]", n), typ)
}

// Push returns the function pushing the argument register onto stack n.
func (s *Stacks) Push(n int) (*namespace.Subroutine, error) {
	return s.push.Instantiate(namespace.Args{"stack": n})
}

// Pop returns the function popping stack n into the return register.
func (s *Stacks) Pop(n int) (*namespace.Subroutine, error) {
	return s.pop.Instantiate(namespace.Args{"stack": n})
}

// Peek returns the function copying the top of stack n into the return
// register.
func (s *Stacks) Peek(n int) (*namespace.Subroutine, error) {
	return s.peek.Instantiate(namespace.Args{"stack": n})
}

// PeekAny returns the function copying the top of stack n into Ret.
func (s *Stacks) PeekAny(n int) (*namespace.Subroutine, error) {
	return s.peekAny.Instantiate(namespace.Args{"stack": n})
}
