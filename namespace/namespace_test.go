package namespace

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/deepnoodle-ai/datapack/command"
	"github.com/deepnoodle-ai/datapack/errors"
	"github.com/deepnoodle-ai/datapack/symbol"
	"github.com/deepnoodle-ai/datapack/value"
)

func newRoot(name string) *Namespace {
	return New(NewEnv(symbol.NewAllocator(), nil), name)
}

func TestPaths(t *testing.T) {
	root := newRoot("demo")
	lib := root.CreateNamespace("lib")
	fn := lib.CreateFunction("util")
	require.Equal(t, []string{"demo", "lib", "util"}, fn.Path())
	require.Equal(t, []string{"demo", "lib", "util", "util"}, fn.Entry().Path())
	require.Equal(t, lib, fn.Parent())

	e, ok := root.Lookup("lib/util/util")
	require.True(t, ok)
	require.Equal(t, fn.Entry(), e)
	_, ok = root.Lookup("lib/missing")
	require.False(t, ok)
}

func TestEntryName(t *testing.T) {
	root := newRoot("demo")
	fn := root.CreateFunction("tick",
		WithEntryName("run"),
		WithDescription("runs every tick"),
		WithTags(ExternalTag("minecraft:tick")))
	require.Equal(t, "run", fn.Entry().Name())
	require.Equal(t, "runs every tick", fn.Entry().Description())
	require.Len(t, fn.Entry().Tags(), 1)
	require.Equal(t, []string{"minecraft", "tick"}, fn.Entry().Tags()[0].Path())
	require.Equal(t, fn.Entry(), fn.Current())
}

func TestAddAfterEnd(t *testing.T) {
	root := newRoot("demo")
	fn := root.CreateFunction("main")
	require.Nil(t, fn.Add(command.Text("say hi")))
	fn.End()
	fn.End()
	require.True(t, fn.Ended())

	err := fn.Add(command.Text("say again"))
	require.True(t, errors.Is(err, errors.InvariantViolation))
	_, err = fn.If(value.RawCondition(symbol.Lit("entity"), symbol.Lit("@p")))
	require.True(t, errors.Is(err, errors.InvariantViolation))
	require.Len(t, fn.Entry().Commands(), 1)
}

func TestCallRejectsSubroutine(t *testing.T) {
	root := newRoot("demo")
	callee := root.CreateFunction("callee")
	callee.End()
	fn := root.CreateFunction("main")
	err := fn.Call(callee)
	require.True(t, errors.Is(err, errors.InvariantViolation))
	require.Nil(t, fn.Call(callee.Entry()))
}

func TestBlocksRequireEnd(t *testing.T) {
	root := newRoot("demo")
	a := root.CreateFunction("a")
	root.CreateFunction("b")
	inner := root.CreateNamespace("inner").CreateFunction("c")
	a.End()

	_, err := root.Blocks()
	require.NotNil(t, err)
	require.True(t, errors.Is(err, errors.InvariantViolation))
	require.Contains(t, err.Error(), "demo:b")
	require.Contains(t, err.Error(), "demo:inner/c")

	inner.End()
	fn, _ := root.Get("b")
	fn.(*Subroutine).End()
	blocks, err := root.Blocks()
	require.Nil(t, err)
	require.Len(t, blocks, 3)
}

func TestDuplicateName(t *testing.T) {
	root := newRoot("demo")
	root.CreateBlock("x")
	root.CreateBlock("x")
	_, err := root.Blocks()
	require.True(t, errors.Is(err, errors.InvariantViolation))
	require.Len(t, root.Children(), 1)
}

func TestIfStructure(t *testing.T) {
	root := newRoot("demo")
	fn := root.CreateFunction("main")
	entry := fn.Current()
	body, err := fn.If(value.RawCondition(symbol.Lit("entity"), symbol.Lit("@p")))
	require.Nil(t, err)

	require.Equal(t, "if1", body.Name())
	require.Equal(t, "branch", body.Entry().Name())
	require.Len(t, entry.Commands(), 4)
	require.NotSame(t, entry, fn.Current())
	require.Equal(t, "if1-continue", fn.Current().Name())
	require.Equal(t, fn.Current(), body.Continuation())

	body.End()
	require.Equal(t, fn.Current(), body.Entry().Continuation())
}

func TestIfElseStructure(t *testing.T) {
	root := newRoot("demo")
	fn := root.CreateFunction("main")
	then, els, err := fn.IfElse(value.RawCondition(symbol.Lit("entity"), symbol.Lit("@p")))
	require.Nil(t, err)
	require.Equal(t, "if1", then.Name())
	require.Equal(t, "if1-else", els.Name())
	require.Equal(t, fn.Current(), then.Continuation())
	require.Equal(t, fn.Current(), els.Continuation())
}

func TestWhileStructure(t *testing.T) {
	root := newRoot("demo")
	fn := root.CreateFunction("main")
	entry := fn.Current()
	body, err := fn.While(value.RawCondition(symbol.Lit("entity"), symbol.Lit("@p")))
	require.Nil(t, err)

	check, ok := body.Get("check-cond")
	require.True(t, ok)
	require.Equal(t, check, body.Continuation())
	require.Len(t, check.(*Block).Commands(), 3)
	require.Len(t, body.Entry().Commands(), 1)
	require.Len(t, entry.Commands(), 2)
	require.Equal(t, "while1-continue", fn.Current().Name())
}

func TestIfInLoopBody(t *testing.T) {
	root := newRoot("demo")
	fn := root.CreateFunction("main")
	cond := value.RawCondition(symbol.Lit("entity"), symbol.Lit("@p"))

	// Outside a loop the branch is called directly.
	plain, err := fn.If(cond)
	require.Nil(t, err)
	plain.End()
	_, ok := fn.Get("if1-then")
	require.False(t, ok)

	body, err := fn.While(cond)
	require.Nil(t, err)
	then, err := body.If(cond)
	require.Nil(t, err)
	require.Equal(t, "if2", then.Name())

	// In a loop body the branch is called through a block that sets the
	// condition temp again once the branch returns.
	through, ok := body.Get("if2-then")
	require.True(t, ok)
	require.Len(t, through.(*Block).Commands(), 2)
	require.Nil(t, through.(*Block).Continuation())

	nested, err := then.If(cond)
	require.Nil(t, err)
	nested.End()
	_, ok = then.Get(nested.Name() + "-then")
	require.True(t, ok)
}

func TestReturnSeversContinuation(t *testing.T) {
	root := newRoot("demo")
	fn := root.CreateFunction("main")
	body, err := fn.If(value.RawCondition(symbol.Lit("entity"), symbol.Lit("@p")))
	require.Nil(t, err)
	require.NotNil(t, body.Continuation())

	require.Nil(t, body.Return(nil))
	body.End()
	require.Nil(t, body.Entry().Continuation())

	err = fn.Return(value.Int(1))
	require.True(t, errors.Is(err, errors.InvariantViolation))

	ret := value.Score(symbol.Lit("ret"), symbol.Lit("dp"))
	fn.Env().Return = ret
	require.Nil(t, fn.Return(value.Int(1)))
	require.Nil(t, fn.Continuation())
}

func TestClassLookup(t *testing.T) {
	root := newRoot("demo")
	base := root.CreateClass("base")
	base.CreateBlock("greet")
	base.CreateBlock("only_base")
	left := root.CreateClass("left", base)
	left.CreateBlock("greet")
	right := root.CreateClass("right")
	right.CreateBlock("only_base")
	right.CreateBlock("only_right")
	child := root.CreateClass("child", left, right)

	e, ok := child.Get("greet")
	require.True(t, ok)
	require.Equal(t, []string{"demo", "left", "greet"}, e.Path())

	// depth-first: base is searched before right
	e, ok = child.Get("only_base")
	require.True(t, ok)
	require.Equal(t, []string{"demo", "base", "only_base"}, e.Path())

	e, ok = child.Get("only_right")
	require.True(t, ok)
	require.Equal(t, []string{"demo", "right", "only_right"}, e.Path())

	_, ok = child.Get("missing")
	require.False(t, ok)

	require.True(t, child.IsSubclassOf(base))
	require.False(t, base.IsSubclassOf(child))
}

func TestTemplateMemoizes(t *testing.T) {
	root := newRoot("demo")
	builds := 0
	tmpl := root.CreateTemplate("push", func(t *Template, args Args) (*Subroutine, error) {
		builds++
		fn := t.CreateFunction("push_" + args.Key())
		return fn, fn.Add(command.Text("say push"))
	})

	a, err := tmpl.Instantiate(Args{"stack": 1, "kind": "int"})
	require.Nil(t, err)
	b, err := tmpl.Instantiate(Args{"kind": "int", "stack": 1})
	require.Nil(t, err)
	c, err := tmpl.Instantiate(Args{"stack": 2, "kind": "int"})
	require.Nil(t, err)

	require.Same(t, a, b)
	require.NotSame(t, a, c)
	require.Equal(t, 2, builds)
	require.Equal(t, 2, tmpl.Instances())
	require.True(t, a.Ended())

	blocks, err := root.Blocks()
	require.Nil(t, err)
	require.Len(t, blocks, 2)
}

func TestTemplateMustOwnInstance(t *testing.T) {
	root := newRoot("demo")
	tmpl := root.CreateTemplate("bad", func(_ *Template, _ Args) (*Subroutine, error) {
		return root.CreateFunction("elsewhere"), nil
	})
	_, err := tmpl.Instantiate(nil)
	require.True(t, errors.Is(err, errors.InvariantViolation))
}

func TestScoreVarsDiverge(t *testing.T) {
	root := newRoot("demo")
	a := root.ScoreVar("_cond")
	b := root.ScoreVar("_cond")
	require.False(t, a.Equal(b))

	table := symbol.NewTable()
	pa, err := symbol.Text(a.Player, table)
	require.Nil(t, err)
	pb, err := symbol.Text(b.Player, table)
	require.Nil(t, err)
	require.Equal(t, "demo._cond", pa)
	require.Equal(t, "demo._cond.2", pb)
}
