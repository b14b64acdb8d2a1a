package emit

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/deepnoodle-ai/datapack/command"
	"github.com/deepnoodle-ai/datapack/errors"
	"github.com/deepnoodle-ai/datapack/namespace"
	"github.com/deepnoodle-ai/datapack/symbol"
	"github.com/deepnoodle-ai/datapack/value"
)

func newRoot(name string) *namespace.Namespace {
	return namespace.New(namespace.NewEnv(symbol.NewAllocator(), nil), name)
}

func lines(l *Listing) map[string][]string {
	out := map[string][]string{}
	for _, f := range l.Functions {
		out[f.Path] = f.Lines
	}
	return out
}

func TestIfLowering(t *testing.T) {
	root := newRoot("demo")
	main := root.CreateFunction("main")
	require.Nil(t, main.Add(command.Say("start")))
	x := value.Score(symbol.Lit("x"), symbol.Lit("dp"))
	body, err := main.If(value.ScoreMatches(x, "1"))
	require.Nil(t, err)
	require.Nil(t, body.Add(command.Say("yes")))
	body.End()
	require.Nil(t, main.Add(command.Say("end")))
	main.End()

	listing, err := Program([]*namespace.Namespace{root})
	require.Nil(t, err)

	want := map[string][]string{
		"demo:main/main": {
			"say start",
			"scoreboard players set demo.main._cond dp 0",
			"execute if score x dp matches 1 run scoreboard players set demo.main._cond dp 1",
			"execute if score demo.main._cond dp matches 1 run function demo:main/if1/branch",
			"execute unless score demo.main._cond dp matches 1 run function demo:main/if1-continue",
		},
		"demo:main/if1/branch": {
			"say yes",
			"function demo:main/if1-continue",
		},
		"demo:main/if1-continue": {
			"say end",
		},
	}
	if diff := cmp.Diff(want, lines(listing)); diff != "" {
		t.Errorf("listing mismatch (-want +got):\n%s", diff)
	}

	var order []string
	for _, f := range listing.Functions {
		order = append(order, f.Path)
	}
	require.Equal(t, []string{"demo:main/main", "demo:main/if1/branch", "demo:main/if1-continue"}, order)
	fn, ok := listing.Function("demo:main/if1/branch")
	require.True(t, ok)
	require.Equal(t, "If-branch of main", fn.Description)
}

func TestWhileLowering(t *testing.T) {
	root := newRoot("demo")
	count := root.CreateFunction("count")
	i := value.Score(symbol.Lit("i"), symbol.Lit("dp"))
	require.Nil(t, count.Move(value.Int(0), i))
	body, err := count.While(value.ScoreMatches(i, "..4"))
	require.Nil(t, err)
	require.Nil(t, body.AddInPlace(i, value.Int(1)))
	body.End()
	require.Nil(t, count.Add(command.Say("done")))
	count.End()

	listing, err := Program([]*namespace.Namespace{root})
	require.Nil(t, err)

	want := map[string][]string{
		"demo:count/count": {
			"scoreboard players set i dp 0",
			"scoreboard players set demo.count._iteration_number dp 1",
			"function demo:count/while1/check-cond",
		},
		"demo:count/while1/loop": {
			"scoreboard players add demo.count._iteration_number dp 1",
			"scoreboard players add i dp 1",
			"function demo:count/while1/check-cond",
		},
		"demo:count/while1/check-cond": {
			"execute if score i dp matches ..4 run function demo:count/while1/loop",
			"scoreboard players remove demo.count._iteration_number dp 1",
			"execute unless score i dp matches ..4 if score demo.count._iteration_number dp matches 0 run function demo:count/while1-continue",
		},
		"demo:count/while1-continue": {
			"say done",
		},
	}
	if diff := cmp.Diff(want, lines(listing)); diff != "" {
		t.Errorf("listing mismatch (-want +got):\n%s", diff)
	}
}

func TestTempsDiverge(t *testing.T) {
	root := newRoot("demo")
	main := root.CreateFunction("main")
	cond := value.RawCondition(symbol.Lit("entity"), symbol.Lit("@p"))
	first, err := main.If(cond)
	require.Nil(t, err)
	first.End()
	second, err := main.If(cond)
	require.Nil(t, err)
	second.End()
	main.End()

	listing, err := Program([]*namespace.Namespace{root})
	require.Nil(t, err)
	fn, ok := listing.Function("demo:main/if1-continue")
	require.True(t, ok)
	require.Equal(t, "scoreboard players set demo.main._cond.2 dp 0", fn.Lines[0])
	_, ok = listing.Function("demo:main/if3/branch")
	require.True(t, ok)
}

func TestTags(t *testing.T) {
	root := newRoot("demo")
	tick := root.CreateFunctionTag("tick")
	a := root.CreateFunction("init", namespace.WithTags(namespace.ExternalTag("minecraft:load")))
	a.End()
	b := root.CreateFunction("update", namespace.WithTags(tick, namespace.ExternalTag("minecraft:load")))
	b.End()

	listing, err := Program([]*namespace.Namespace{root})
	require.Nil(t, err)
	require.Equal(t, map[string][]string{
		"minecraft:load": {"demo:init/init", "demo:update/update"},
		"demo:tick":      {"demo:update/update"},
	}, listing.Tags)
	require.Equal(t, []string{"demo"}, listing.Namespaces())
}

func TestReserved(t *testing.T) {
	root := newRoot("demo")
	main := root.CreateFunction("main")
	v := root.ScoreVar("x")
	require.Nil(t, main.Move(value.Int(1), v))
	main.End()

	listing, err := Program([]*namespace.Namespace{root}, WithReserved("demo.x"))
	require.Nil(t, err)
	fn, _ := listing.Function("demo:main/main")
	require.Equal(t, []string{"scoreboard players set demo.x.2 dp 1"}, fn.Lines)
}

func TestErrors(t *testing.T) {
	root := newRoot("demo")
	root.CreateFunction("open")
	_, err := Program([]*namespace.Namespace{root})
	require.True(t, errors.Is(err, errors.InvariantViolation))

	root = newRoot("demo")
	main := root.CreateFunction("main")
	require.Nil(t, main.Add(command.New("say %s %s", symbol.Lit("one"))))
	main.End()
	_, err = Program([]*namespace.Namespace{root})
	require.True(t, errors.Is(err, errors.MalformedTemplate))

	root = newRoot("demo")
	main = root.CreateFunction("main")
	bad := root.Env().Symbols.Objective("has space", root)
	require.Nil(t, main.Add(command.New("scoreboard objectives add %s dummy", bad)))
	main.End()
	_, err = Program([]*namespace.Namespace{root})
	require.True(t, errors.Is(err, errors.InvalidName))
}

func TestDeterministic(t *testing.T) {
	build := func() *Listing {
		root := newRoot("demo")
		main := root.CreateFunction("main")
		for i := 0; i < 3; i++ {
			body, err := main.While(value.ScoreMatches(root.ScoreVar("n"), "1.."))
			require.Nil(t, err)
			body.End()
		}
		main.End()
		listing, err := Program([]*namespace.Namespace{root})
		require.Nil(t, err)
		return listing
	}
	if diff := cmp.Diff(lines(build()), lines(build())); diff != "" {
		t.Errorf("emission is not deterministic:\n%s", diff)
	}
}

func TestFunctionText(t *testing.T) {
	fn := &Function{Description: "line one\nline two", Lines: []string{"say hi"}}
	require.Equal(t, "# line one\n# line two\n\nsay hi\n", fn.Text())
}
