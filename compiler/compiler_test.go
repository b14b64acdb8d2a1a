package compiler_test

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/deepnoodle-ai/datapack/compiler"
	"github.com/deepnoodle-ai/datapack/emit"
	"github.com/deepnoodle-ai/datapack/errors"
	"github.com/deepnoodle-ai/datapack/namespace"
	"github.com/deepnoodle-ai/datapack/parser"
	"github.com/deepnoodle-ai/datapack/std"
	"github.com/deepnoodle-ai/datapack/symbol"
	"github.com/deepnoodle-ai/datapack/vm"
)

const objective = "dp_std.main"

type result struct {
	listing *emit.Listing
	diag    *errors.Diagnostics
}

func compile(t *testing.T, src string) (*result, error) {
	t.Helper()
	ctx := context.Background()
	diag := errors.NewDiagnostics(zerolog.Nop())
	env := namespace.NewEnv(symbol.NewAllocator(), diag)
	lib, err := std.Install(env, std.WithoutGreeting())
	require.Nil(t, err)
	prog, err := parser.Parse(ctx, src, parser.WithFilename("test.yaml"))
	require.Nil(t, err)
	root, err := compiler.Compile(ctx, prog, &compiler.Config{Env: env, Lib: lib, Filename: "test.yaml"})
	if err != nil {
		return nil, err
	}
	listing, err := emit.Program([]*namespace.Namespace{lib.Root, root})
	require.Nil(t, err)
	return &result{listing: listing, diag: diag}, nil
}

func mustCompile(t *testing.T, src string) *result {
	t.Helper()
	r, err := compile(t, src)
	require.Nil(t, err)
	return r
}

func run(t *testing.T, r *result, path string, scores map[string]int32) *vm.VirtualMachine {
	t.Helper()
	m, err := vm.RunListing(context.Background(), r.listing, nil)
	require.Nil(t, err)
	for name, v := range scores {
		m.SetScore("demo."+name, objective, v)
	}
	require.Nil(t, m.Run(context.Background(), path))
	return m
}

func get(m *vm.VirtualMachine, name string) int32 {
	v, _ := m.Score("demo."+name, objective)
	return v
}

func compileError(t *testing.T, src string) *errors.CompileError {
	t.Helper()
	_, err := compile(t, src)
	require.NotNil(t, err)
	var ce *errors.CompileError
	require.True(t, errors.As(err, &ce), "%T: %v", err, err)
	return ce
}

func TestWhileLoop(t *testing.T) {
	r := mustCompile(t, `
namespace: demo
vars:
  i: score
  total: score
functions:
  - name: main
    body:
      - set: {var: i, value: 0}
      - set: {var: total, value: 0}
      - while:
          cond: i < 5
          body:
            - add: {var: i, value: 1}
            - add: {var: total, value: i}
      - print: ["total: ", total]
`)
	m := run(t, r, "demo:main/main", nil)
	require.Equal(t, int32(5), get(m, "i"))
	require.Equal(t, int32(15), get(m, "total"))
	require.Equal(t, []string{"total: 15"}, m.Chat())
}

func TestIfElse(t *testing.T) {
	r := mustCompile(t, `
namespace: demo
vars:
  x: score
  r: score
  after: score
functions:
  - name: main
    body:
      - if:
          cond: x >= 3
          then:
            - set: {var: r, value: 1}
          else:
            - set: {var: r, value: 2}
      - add: {var: after, value: 1}
`)
	for x, want := range map[int32]int32{2: 2, 3: 1, 7: 1} {
		m := run(t, r, "demo:main/main", map[string]int32{"x": x})
		require.Equal(t, want, get(m, "r"), "x=%d", x)
		require.Equal(t, int32(1), get(m, "after"), "x=%d", x)
	}
}

func TestCallWithArgumentAndReturn(t *testing.T) {
	r := mustCompile(t, `
namespace: demo
vars:
  n: score
  out: score
functions:
  - name: main
    body:
      - call: {function: square, arg: 7}
      - set: {var: out, value: ret}
  - name: square
    description: Square the argument.
    body:
      - set: {var: n, value: arg}
      - op: {var: n, op: "*=", value: n}
      - return: n
`)
	m := run(t, r, "demo:main/main", nil)
	require.Equal(t, int32(49), get(m, "out"))

	fn, ok := r.listing.Function("demo:square/square")
	require.True(t, ok)
	require.Equal(t, "Square the argument.", fn.Description)
}

func TestEarlyReturn(t *testing.T) {
	r := mustCompile(t, `
namespace: demo
vars:
  x: score
  fallthrough: score
functions:
  - name: pick
    body:
      - if:
          cond: x matches 1
          then:
            - return: 10
      - add: {var: fallthrough, value: 1}
      - return: 20
`)
	m := run(t, r, "demo:pick/pick", map[string]int32{"x": 1})
	ret, _ := m.Score("dp_std.ret", objective)
	require.Equal(t, int32(10), ret)
	require.Equal(t, int32(0), get(m, "fallthrough"))

	m = run(t, r, "demo:pick/pick", map[string]int32{"x": 0})
	ret, _ = m.Score("dp_std.ret", objective)
	require.Equal(t, int32(20), ret)
	require.Equal(t, int32(1), get(m, "fallthrough"))
}

func TestObjects(t *testing.T) {
	r := mustCompile(t, `
namespace: demo
vars:
  p: {object: point}
  px: score
classes:
  - name: point
    inherits: [object]
    attributes:
      x: int
    functions:
      - name: get_x
        body:
          - return: self.x
functions:
  - name: main
    body:
      - new: {class: point, var: p}
      - set: {var: p.x, value: 3}
      - call: {function: point.get_x, arg: p}
      - set: {var: px, value: ret}
`)
	m := run(t, r, "demo:main/main", nil)
	require.Equal(t, int32(1), get(m, "p"))
	require.Equal(t, int32(3), get(m, "px"))
	require.Len(t, m.Entities(), 1)
}

func TestStorageVariables(t *testing.T) {
	r := mustCompile(t, `
namespace: demo
vars:
  hp: {storage: "demo:data", path: hp, type: int}
  speed: {storage: "demo:data", path: speed, type: double}
  flag: score
functions:
  - name: main
    body:
      - set: {var: hp, value: 20}
      - set: {var: speed, value: 1.5}
      - if:
          cond: exists hp
          then:
            - set: {var: flag, value: 1}
`)
	m := run(t, r, "demo:main/main", nil)
	hp, ok := m.Storage("demo:data", "hp")
	require.True(t, ok)
	require.Equal(t, int32(20), hp)
	speed, ok := m.Storage("demo:data", "speed")
	require.True(t, ok)
	require.Equal(t, 1.5, speed)
	require.Equal(t, int32(1), get(m, "flag"))
}

func TestCommandsAndTags(t *testing.T) {
	r := mustCompile(t, `
namespace: demo
functions:
  - name: tick
    tags: ["minecraft:tick", ticking]
    body:
      - cmd: /say hi
`)
	fn, ok := r.listing.Function("demo:tick/tick")
	require.True(t, ok)
	require.Contains(t, fn.Lines, "say hi")
	require.Equal(t, []string{"demo:tick/tick"}, r.listing.Tags["minecraft:tick"])
	require.Equal(t, []string{"demo:tick/tick"}, r.listing.Tags["demo:ticking"])
}

func TestIfInsideWhile(t *testing.T) {
	r := mustCompile(t, `
namespace: demo
vars:
  i: score
  hits: score
  after: score
functions:
  - name: main
    body:
      - set: {var: i, value: 0}
      - while:
          cond: i < 5
          body:
            - if:
                cond: i matches 0..1
                then:
                  - add: {var: hits, value: 1}
            - add: {var: i, value: 1}
            - add: {var: after, value: 1}
`)
	m := run(t, r, "demo:main/main", nil)
	require.Equal(t, int32(5), get(m, "i"))
	require.Equal(t, int32(2), get(m, "hits"))
	require.Equal(t, int32(5), get(m, "after"))
}

func TestUndefinedVariable(t *testing.T) {
	err := compileError(t, `
namespace: demo
vars:
  total: score
functions:
  - name: main
    body:
      - set: {var: totl, value: 1}
`)
	require.Equal(t, errors.UndefinedName, err.Kind)
	require.Equal(t, errors.E2006, err.Code)
	require.Equal(t, "test.yaml", err.Filename)
	require.Equal(t, 8, err.Line)
	require.Contains(t, err.Note, "total")
	require.Equal(t, []string{"function main"}, err.Context)
}

func TestUndefinedFunction(t *testing.T) {
	err := compileError(t, `
namespace: demo
functions:
  - name: main
    body:
      - call: mian
`)
	require.Equal(t, errors.E2007, err.Code)
	require.Contains(t, err.Note, "main")
}

func TestRedefinedFunction(t *testing.T) {
	err := compileError(t, `
namespace: demo
functions:
  - name: main
    body: []
  - name: main
    body: []
`)
	require.Equal(t, errors.SyntaxError, err.Kind)
	require.Contains(t, err.Message, "redefined")
	require.Equal(t, 6, err.Line)
}

func TestConditionNeedsScore(t *testing.T) {
	err := compileError(t, `
namespace: demo
vars:
  hp: {storage: "demo:data", path: hp}
functions:
  - name: main
    body:
      - while:
          cond: hp < 3
          body: []
`)
	require.Equal(t, errors.Unsupported, err.Kind)
}

func TestUnreachableStatement(t *testing.T) {
	err := compileError(t, `
namespace: demo
functions:
  - name: main
    body:
      - return:
      - cmd: say never
`)
	require.Contains(t, err.Message, "unreachable")
	require.Equal(t, 7, err.Line)
}

func TestErrorsCollectedPerFunction(t *testing.T) {
	_, err := compile(t, `
namespace: demo
functions:
  - name: a
    body:
      - set: {var: x, value: 1}
  - name: b
    body:
      - call: nowhere
`)
	var errs *errors.CompileErrors
	require.True(t, errors.As(err, &errs))
	require.Equal(t, 2, errs.Count())
	require.True(t, errors.Is(err, errors.UndefinedName))
}

func TestReservedNames(t *testing.T) {
	err := compileError(t, `
namespace: dp_std
functions: []
`)
	require.Equal(t, errors.InvalidName, err.Kind)

	err = compileError(t, `
namespace: demo
vars:
  ret: score
`)
	require.Equal(t, errors.E1004, err.Code)
}

func TestLiteralRange(t *testing.T) {
	err := compileError(t, `
namespace: demo
vars:
  b: {storage: "demo:data", path: b, type: byte}
functions:
  - name: main
    body:
      - set: {var: b, value: 300}
`)
	require.Equal(t, errors.IncompatibleType, err.Kind)
}
