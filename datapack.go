// Package datapack compiles structured programs into command-function
// packs.
//
// A Compilation owns everything one pack is built from: the symbol
// allocator, the diagnostics collector, the environment and, unless
// disabled, the standard library. Program documents are compiled into it
// with Compile, hand-built namespaces are added with Namespace, and Emit
// renders all of them into one listing:
//
//	listing, warnings, err := datapack.Build(ctx, source)
package datapack

import (
	"context"

	"github.com/gofrs/uuid"
	"github.com/rs/zerolog"

	"github.com/deepnoodle-ai/datapack/compiler"
	"github.com/deepnoodle-ai/datapack/emit"
	"github.com/deepnoodle-ai/datapack/errors"
	"github.com/deepnoodle-ai/datapack/namespace"
	"github.com/deepnoodle-ai/datapack/parser"
	"github.com/deepnoodle-ai/datapack/std"
	"github.com/deepnoodle-ai/datapack/symbol"
)

// Compilation is the state of building one pack. It is not safe for
// concurrent use.
type Compilation struct {
	id       uuid.UUID
	logger   zerolog.Logger
	diag     *errors.Diagnostics
	env      *namespace.Env
	lib      *std.Library
	roots    []*namespace.Namespace
	programs []*Program
	filename string
}

// New returns an empty compilation with the standard library installed.
func New(opts ...Option) (*Compilation, error) {
	o := collectOptions(opts...)
	id, err := uuid.NewV4()
	if err != nil {
		return nil, err
	}
	logger := o.logger.With().Str("compilation", id.String()).Logger()
	c := &Compilation{
		id:       id,
		logger:   logger,
		diag:     errors.NewDiagnostics(logger),
		filename: o.filename,
	}
	c.env = namespace.NewEnv(symbol.NewAllocator(), c.diag)
	if o.withoutStd {
		if o.objective != "" {
			c.env.Objective = symbol.Lit(o.objective)
		}
		return c, nil
	}
	var stdOpts []std.Option
	if o.library != "" {
		stdOpts = append(stdOpts, std.WithName(o.library))
	}
	if o.objective != "" {
		stdOpts = append(stdOpts, std.WithObjective(o.objective))
	}
	if !o.greeting {
		stdOpts = append(stdOpts, std.WithoutGreeting())
	}
	if c.lib, err = std.Install(c.env, stdOpts...); err != nil {
		return nil, err
	}
	logger.Debug().Str("library", c.lib.Root.Name()).Msg("installed standard library")
	return c, nil
}

// ID returns the identifier the compilation's log lines carry.
func (c *Compilation) ID() uuid.UUID {
	return c.id
}

// Env returns the environment shared by every namespace of the
// compilation.
func (c *Compilation) Env() *namespace.Env {
	return c.env
}

// Library returns the standard library, or nil if it was disabled.
func (c *Compilation) Library() *std.Library {
	return c.lib
}

// Namespace creates a root namespace to be filled by hand. It is emitted
// along with compiled programs.
func (c *Compilation) Namespace(name string) *namespace.Namespace {
	root := namespace.New(c.env, name)
	c.roots = append(c.roots, root)
	return root
}

// Compile parses a program document and compiles it into a new root
// namespace.
func (c *Compilation) Compile(ctx context.Context, source string) (*Program, error) {
	var parserOpts []parser.Option
	if c.filename != "" {
		parserOpts = append(parserOpts, parser.WithFilename(c.filename))
	}
	tree, err := parser.Parse(ctx, source, parserOpts...)
	if err != nil {
		return nil, err
	}
	root, err := compiler.Compile(ctx, tree, &compiler.Config{
		Env:      c.env,
		Lib:      c.lib,
		Filename: c.filename,
	})
	if err != nil {
		return nil, err
	}
	c.roots = append(c.roots, root)
	p := &Program{root: root, tree: tree, source: source, filename: c.filename}
	c.programs = append(c.programs, p)
	c.logger.Debug().
		Str("namespace", tree.Namespace).
		Int("functions", len(tree.Functions)).
		Int("classes", len(tree.Classes)).
		Msg("compiled program")
	return p, nil
}

// Programs returns the compiled programs in compilation order.
func (c *Compilation) Programs() []*Program {
	return c.programs
}

// Emit renders the standard library and every root namespace, in creation
// order, into one listing.
func (c *Compilation) Emit() (*emit.Listing, error) {
	roots := make([]*namespace.Namespace, 0, len(c.roots)+1)
	if c.lib != nil {
		roots = append(roots, c.lib.Root)
	}
	roots = append(roots, c.roots...)
	return emit.Program(roots, emit.WithLogger(c.logger))
}

// Warnings returns the warnings issued so far.
func (c *Compilation) Warnings() []*errors.Warning {
	return c.diag.Warnings()
}

// Build compiles one program document and emits it with the standard
// library.
func Build(ctx context.Context, source string, opts ...Option) (*emit.Listing, []*errors.Warning, error) {
	c, err := New(opts...)
	if err != nil {
		return nil, nil, err
	}
	if _, err := c.Compile(ctx, source); err != nil {
		return nil, c.Warnings(), err
	}
	listing, err := c.Emit()
	if err != nil {
		return nil, c.Warnings(), err
	}
	return listing, c.Warnings(), nil
}
