package datapack_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/deepnoodle-ai/datapack"
	"github.com/deepnoodle-ai/datapack/errors"
	"github.com/deepnoodle-ai/datapack/value"
	"github.com/deepnoodle-ai/datapack/vm"
)

const counter = `
namespace: demo
vars:
  i: score
functions:
  - name: main
    tags: ["minecraft:load"]
    body:
      - set: {var: i, value: 0}
      - while:
          cond: i < 3
          body:
            - add: {var: i, value: 1}
`

func TestBuild(t *testing.T) {
	listing, _, err := datapack.Build(context.Background(), counter)
	require.Nil(t, err)
	require.Equal(t, []string{"demo", "dp_std"}, listing.Namespaces())

	// The library loads first, so its objectives exist when main runs.
	load := listing.Tags["minecraft:load"]
	require.Equal(t, "dp_std:load/load", load[0])
	require.Equal(t, "demo:main/main", load[len(load)-1])

	m, err := vm.RunListing(context.Background(), listing, nil)
	require.Nil(t, err)
	i, ok := m.Score("demo.i", "dp_std.main")
	require.True(t, ok)
	require.Equal(t, int32(3), i)
}

func TestBuildOptions(t *testing.T) {
	listing, _, err := datapack.Build(context.Background(), counter,
		datapack.WithNamespace("lib"),
		datapack.WithObjective("vars"),
		datapack.WithGreeting())
	require.Nil(t, err)
	require.Equal(t, []string{"demo", "lib"}, listing.Namespaces())

	m, err := vm.RunListing(context.Background(), listing, nil)
	require.Nil(t, err)
	i, _ := m.Score("demo.i", "lib.vars")
	require.Equal(t, int32(3), i)
	require.Contains(t, m.Chat(), "[lib]  * Loaded lib!")
}

func TestWithoutStd(t *testing.T) {
	listing, _, err := datapack.Build(context.Background(), counter,
		datapack.WithoutStd(), datapack.WithObjective("vars"))
	require.Nil(t, err)
	require.Equal(t, []string{"demo"}, listing.Namespaces())

	m, err := vm.RunListing(context.Background(), listing, nil)
	require.Nil(t, err)
	i, _ := m.Score("demo.i", "vars")
	require.Equal(t, int32(3), i)

	_, _, err = datapack.Build(context.Background(), `
namespace: demo
functions:
  - name: main
    body:
      - return: 1
`, datapack.WithoutStd())
	require.True(t, errors.Is(err, errors.InvariantViolation))
}

func TestCompileErrorsCarryFilename(t *testing.T) {
	_, _, err := datapack.Build(context.Background(), `
namespace: demo
functions:
  - name: main
    body:
      - call: missing
`, datapack.WithFilename("demo.yaml"))
	var ce *errors.CompileError
	require.True(t, errors.As(err, &ce))
	require.Equal(t, "demo.yaml", ce.Filename)
	require.Equal(t, 6, ce.Line)
}

func TestCompilation(t *testing.T) {
	var buf bytes.Buffer
	c, err := datapack.New(datapack.WithLogger(zerolog.New(&buf).Level(zerolog.DebugLevel)))
	require.Nil(t, err)

	prog, err := c.Compile(context.Background(), counter)
	require.Nil(t, err)
	require.Equal(t, "demo", prog.Root().Name())
	require.Equal(t, []string{"main"}, prog.FunctionNames())
	require.Equal(t, counter, prog.Source())
	require.Len(t, c.Programs(), 1)

	// Hand-built namespaces share the compilation's environment.
	extra := c.Namespace("extra")
	fn := extra.CreateFunction("reset")
	require.Nil(t, fn.Move(value.Int(0), extra.ScoreVar("n")))
	fn.End()

	listing, err := c.Emit()
	require.Nil(t, err)
	reset, ok := listing.Function("extra:reset/reset")
	require.True(t, ok)
	require.Equal(t, []string{"scoreboard players set extra.n dp_std.main 0"}, reset.Lines)

	require.Contains(t, buf.String(), `"compilation":"`+c.ID().String()+`"`)
	require.Contains(t, buf.String(), "emitted program")
}
