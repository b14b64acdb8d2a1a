// Package std is the runtime library programs are compiled against: the
// default objectives, the argument and return registers, objects, stacks
// and debugging helpers. It is built only on the public namespace and
// conversion API.
package std

import (
	"github.com/deepnoodle-ai/datapack/command"
	"github.com/deepnoodle-ai/datapack/convert"
	"github.com/deepnoodle-ai/datapack/errors"
	"github.com/deepnoodle-ai/datapack/namespace"
	"github.com/deepnoodle-ai/datapack/symbol"
	"github.com/deepnoodle-ai/datapack/text"
	"github.com/deepnoodle-ai/datapack/types"
	"github.com/deepnoodle-ai/datapack/value"
)

// DefaultName is the name of the library's root namespace.
const DefaultName = "dp_std"

// LoadTag is the tag the game runs when a pack is loaded.
const LoadTag = namespace.ExternalTag("minecraft:load")

// Library is an installed standard library.
type Library struct {
	Root *namespace.Namespace

	// Objective holds every score created with ScoreVar.
	Objective *symbol.Symbol
	// TempObjective holds the conversion engine's temporaries.
	TempObjective *symbol.Symbol

	// Arg and Ret are the argument and return registers.
	Arg *value.ScoreboardVar
	Ret *value.ScoreboardVar

	// Data is the library's command storage.
	Data symbol.Name

	Load   *namespace.Subroutine
	Text   *text.Builder
	Object *Objects
	Stack  *Stacks
	Debug  *Debug
}

// Option configures Install.
type Option func(*config)

type config struct {
	name      string
	objective string
	greeting  bool
}

// WithName sets the root namespace name.
func WithName(name string) Option {
	return func(c *config) {
		c.name = name
	}
}

// WithObjective sets the base text of the default objective.
func WithObjective(name string) Option {
	return func(c *config) {
		c.objective = name
	}
}

// WithoutGreeting omits the chat message the load functions print.
func WithoutGreeting() Option {
	return func(c *config) {
		c.greeting = false
	}
}

// Install creates the library in a new root namespace and makes it the
// environment's source of objectives, registers and temporaries.
func Install(env *namespace.Env, opts ...Option) (*Library, error) {
	cfg := config{name: DefaultName, objective: "main", greeting: true}
	for _, opt := range opts {
		opt(&cfg)
	}
	root := namespace.New(env, cfg.name)
	lib := &Library{
		Root:          root,
		Objective:     env.Symbols.Objective(cfg.objective, root),
		TempObjective: env.Symbols.Objective("temp", root),
		Data:          symbol.Lit(cfg.name + ":data"),
	}
	env.Objective = lib.Objective
	env.Convert = convert.New(convert.Config{
		Allocator:     env.Symbols,
		Owner:         root,
		TempObjective: lib.TempObjective,
		Diagnostics:   env.Diagnostics,
	})
	lib.Arg = root.ScoreVar("arg")
	lib.Ret = root.ScoreVar("ret")
	env.Return = lib.Ret
	lib.Text = text.New(env.Convert, value.InStorage(lib.Data, "text", types.Compound))

	lib.Load = root.CreateFunction("load",
		namespace.WithTags(LoadTag),
		namespace.WithDescription("Create the library objectives."))
	if err := lib.Load.Add(
		command.Comment("create the objectives"),
		command.New("scoreboard objectives add %s dummy", lib.Objective),
		command.New("scoreboard objectives add %s dummy", lib.TempObjective),
	); err != nil {
		return nil, err
	}
	if cfg.greeting {
		if err := lib.log(lib.Load, " * Loaded "+cfg.name+"!"); err != nil {
			return nil, err
		}
	}
	lib.Load.End()

	var err error
	if lib.Object, err = lib.installObjects(cfg); err != nil {
		return nil, err
	}
	if lib.Stack, err = lib.installStacks(); err != nil {
		return nil, err
	}
	if lib.Debug, err = lib.installDebug(); err != nil {
		return nil, err
	}
	return lib, nil
}

func (l *Library) log(fn *namespace.Subroutine, parts ...any) error {
	cmds, err := l.Text.Log(l.Root.Name(), parts...)
	if err != nil {
		return err
	}
	return fn.Add(cmds...)
}

// Print appends a tellraw of parts to every player.
func (l *Library) Print(fn *namespace.Subroutine, parts ...any) error {
	cmds, err := l.Text.Print(symbol.Lit("@a"), parts...)
	if err != nil {
		return err
	}
	return fn.Add(cmds...)
}

// Call appends a call of callee from caller, passing arg, if not nil, in
// the argument register. The result, if any, is in Ret afterwards.
func (l *Library) Call(caller, callee *namespace.Subroutine, arg value.Value) error {
	if arg != nil {
		if err := caller.Move(arg, l.Arg); err != nil {
			return err
		}
	}
	return caller.Call(callee.Entry())
}

// CallCommands is Call as a command list, for use outside a subroutine.
func (l *Library) CallCommands(callee *namespace.Subroutine, arg value.Value) ([]command.Command, error) {
	var out []command.Command
	if arg != nil {
		cmds, err := l.Root.Env().Convert.Move(arg, l.Arg)
		if err != nil {
			return nil, err
		}
		out = append(out, cmds...)
	}
	call, err := command.NewCall(callee.Entry())
	if err != nil {
		return nil, err
	}
	return append(out, call), nil
}

func method(c *namespace.Class, name string) (*namespace.Subroutine, error) {
	e, ok := c.Get(name)
	if !ok {
		return nil, errors.UndefinedFunctionf("class %s has no method %q", symbol.JoinPath(c.Path()), name)
	}
	s, ok := e.(*namespace.Subroutine)
	if !ok {
		return nil, errors.InvariantViolationf("%s of class %s is not a function", name, symbol.JoinPath(c.Path()))
	}
	return s, nil
}
