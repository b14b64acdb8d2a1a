package std

import (
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/deepnoodle-ai/datapack/emit"
	"github.com/deepnoodle-ai/datapack/errors"
	"github.com/deepnoodle-ai/datapack/namespace"
	"github.com/deepnoodle-ai/datapack/symbol"
)

func install(t *testing.T, opts ...Option) *Library {
	t.Helper()
	env := namespace.NewEnv(symbol.NewAllocator(), errors.NewDiagnostics(zerolog.Nop()))
	lib, err := Install(env, opts...)
	require.Nil(t, err)
	return lib
}

func render(t *testing.T, lib *Library) *emit.Listing {
	t.Helper()
	listing, err := emit.Program([]*namespace.Namespace{lib.Root})
	require.Nil(t, err)
	return listing
}

func pathOf(s *namespace.Subroutine) string {
	return symbol.JoinPath(s.Entry().Path())
}

func TestInstall(t *testing.T) {
	lib := install(t)
	env := lib.Root.Env()
	require.Equal(t, lib.Objective, env.Objective)
	require.Equal(t, lib.Ret, env.Return)
	require.Equal(t, DefaultName, lib.Root.Name())

	listing := render(t, lib)
	load, ok := listing.Function(pathOf(lib.Load))
	require.True(t, ok)
	require.Equal(t, []string{
		"\n# create the objectives",
		"scoreboard objectives add dp_std.main dummy",
		"scoreboard objectives add dp_std.temp dummy",
	}, load.Lines[:3])
	require.True(t, strings.HasPrefix(load.Lines[3], "tellraw @a "))
	require.Contains(t, listing.Tags["minecraft:load"], pathOf(lib.Load))
}

func TestInstallOptions(t *testing.T) {
	lib := install(t, WithName("lib"), WithObjective("vars"), WithoutGreeting())
	listing := render(t, lib)
	load, ok := listing.Function(pathOf(lib.Load))
	require.True(t, ok)
	require.Equal(t, []string{
		"\n# create the objectives",
		"scoreboard objectives add lib.vars dummy",
		"scoreboard objectives add lib.temp dummy",
	}, load.Lines)
	require.Equal(t, []string{"lib"}, listing.Namespaces())
}

func TestStackTemplates(t *testing.T) {
	lib := install(t, WithoutGreeting())
	push, err := lib.Stack.Push(2)
	require.Nil(t, err)
	again, err := lib.Stack.Push(2)
	require.Nil(t, err)
	require.Same(t, push, again)

	pop, err := lib.Stack.Pop(2)
	require.Nil(t, err)
	require.NotSame(t, push, pop)

	_, err = lib.Stack.Push(-1)
	require.True(t, errors.Is(err, errors.InvariantViolation))

	listing := render(t, lib)
	fn, ok := listing.Function(pathOf(push))
	require.True(t, ok)
	require.Equal(t, "data modify storage dp_std:stack stack2 append value 0", fn.Lines[0])
	require.Equal(t, "Push the argument register onto stack 2.", fn.Description)
	require.Equal(t, "stack2", lib.Stack.Slot(2).Path)
}

func TestCallCommands(t *testing.T) {
	lib := install(t, WithoutGreeting())
	peek, err := lib.Stack.Peek(0)
	require.Nil(t, err)
	cmds, err := lib.CallCommands(peek, nil)
	require.Nil(t, err)
	require.Len(t, cmds, 1)
}

func TestMissingMethod(t *testing.T) {
	lib := install(t, WithoutGreeting())
	_, err := method(lib.Object.Class, "nope")
	require.True(t, errors.Is(err, errors.UndefinedName))
}
