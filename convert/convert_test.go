package convert

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/deepnoodle-ai/datapack/command"
	"github.com/deepnoodle-ai/datapack/errors"
	"github.com/deepnoodle-ai/datapack/symbol"
	"github.com/deepnoodle-ai/datapack/types"
	"github.com/deepnoodle-ai/datapack/value"
)

type owner []string

func (o owner) Path() []string { return o }

type renderer struct {
	*symbol.Table
}

func (r renderer) PathOf(t command.Target) (string, error) {
	return symbol.JoinPath(t.Path()), nil
}

func render(t *testing.T, cmds []command.Command) []string {
	t.Helper()
	r := renderer{symbol.NewTable()}
	var lines []string
	for _, c := range cmds {
		text, err := c.Render(r)
		require.Nil(t, err)
		lines = append(lines, text)
	}
	return lines
}

func newEngine() (*Engine, *errors.Diagnostics) {
	diag := errors.NewDiagnostics(zerolog.Nop())
	return New(Config{
		Owner:         owner{"std"},
		TempObjective: symbol.Lit("temp"),
		Diagnostics:   diag,
	}), diag
}

func score(player string) *value.ScoreboardVar {
	return value.Score(symbol.Lit(player), symbol.Lit("obj"))
}

func storage(path string, typ types.DataType) *value.StructuredVar {
	return value.InStorage(symbol.Lit("demo:data"), path, typ)
}

func TestScoreToScore(t *testing.T) {
	e, _ := newEngine()
	cmds, err := e.Move(score("a"), score("b"))
	require.Nil(t, err)
	require.Equal(t, []string{"scoreboard players operation b obj = a obj"}, render(t, cmds))
}

func TestIdentityMoveIsNoop(t *testing.T) {
	e, _ := newEngine()
	s := score("a")
	cmds, err := e.Move(s, score("a"))
	require.Nil(t, err)
	for _, c := range cmds {
		require.True(t, command.IsComment(c))
	}
}

func TestConstMoves(t *testing.T) {
	e, _ := newEngine()

	cmds, err := e.Move(value.Int(42), score("a"))
	require.Nil(t, err)
	require.Equal(t, []string{"scoreboard players set a obj 42"}, render(t, cmds))

	// Scores take bare integers, whatever the constant's storage type.
	for want, c := range map[string]*value.Const{
		"5":     value.Byte(5),
		"-300":  value.Short(-300),
		"70000": value.Long(70000),
	} {
		cmds, err = e.Move(c, score("a"))
		require.Nil(t, err, c.Text)
		require.Equal(t, []string{"scoreboard players set a obj " + want}, render(t, cmds))
	}
	cmds, err = e.Move(value.Long(1<<40), score("a"))
	require.True(t, errors.Is(err, errors.IncompatibleType))
	require.Nil(t, cmds)

	cmds, err = e.Move(value.Double(1.5), storage("x", types.Double))
	require.Nil(t, err)
	require.Equal(t, []string{"data modify storage demo:data x set value 1.5d"}, render(t, cmds))

	cmds, err = e.Move(value.String("hi"), storage("s", types.Any))
	require.Nil(t, err)
	require.Equal(t, []string{`data modify storage demo:data s set value "hi"`}, render(t, cmds))

	_, err = e.Move(value.Double(1.5), score("a"))
	require.True(t, errors.Is(err, errors.IncompatibleType))

	_, err = e.Move(value.Int(1), storage("x", types.Long))
	require.True(t, errors.Is(err, errors.IncompatibleType))
}

func TestAnySourceIntoConcreteDestination(t *testing.T) {
	e, _ := newEngine()
	anyConst := value.NewConst(types.Any, "1")

	cmds, err := e.Move(anyConst, score("a"))
	require.True(t, errors.Is(err, errors.IncompatibleType))
	require.Nil(t, cmds)

	cmds, err = e.Move(anyConst, storage("x", types.Int))
	require.True(t, errors.Is(err, errors.IncompatibleType))
	require.Nil(t, cmds)
}

func TestScoreToStructured(t *testing.T) {
	e, _ := newEngine()
	cmds, err := e.MoveScaled(score("a"), storage("x", types.Double), 0.5)
	require.Nil(t, err)
	require.Equal(t, []string{
		"execute store result storage demo:data x double 0.5 run scoreboard players get a obj",
	}, render(t, cmds))

	_, err = e.Move(score("a"), storage("x", types.Number))
	require.True(t, errors.Is(err, errors.IncompatibleType))
	_, err = e.Move(score("a"), storage("x", types.String))
	require.True(t, errors.Is(err, errors.IncompatibleType))
}

func TestStructuredToScore(t *testing.T) {
	e, _ := newEngine()
	for _, typ := range []types.DataType{types.Double, types.String, types.Compound, types.Any} {
		cmds, err := e.Move(storage("x", typ), score("a"))
		require.Nil(t, err, typ.String())
		require.Equal(t, []string{
			"execute store result score a obj run data get storage demo:data x 1",
		}, render(t, cmds))
	}
}

func TestStructuredSameType(t *testing.T) {
	e, diag := newEngine()
	cmds, err := e.Move(storage("x", types.Int), storage("y", types.Int))
	require.Nil(t, err)
	require.Equal(t, []string{
		"data modify storage demo:data y set from storage demo:data x",
	}, render(t, cmds))
	require.Empty(t, diag.Warnings())

	_, err = e.Move(storage("x", types.Any), storage("y", types.Int))
	require.Nil(t, err)
	require.Len(t, diag.Warnings(), 1)
	require.Equal(t, errors.TypeAssumption, diag.Warnings()[0].Kind)

	_, err = e.Move(storage("x", types.Int), storage("y", types.Number))
	require.Nil(t, err)
	require.Len(t, diag.Warnings(), 2)

	_, err = e.MoveScaled(storage("x", types.Int), storage("y", types.Int), 2)
	require.True(t, errors.Is(err, errors.Unsupported))
}

func TestStructuredNumberConversion(t *testing.T) {
	e, diag := newEngine()
	cmds, err := e.Move(storage("x", types.Int), storage("y", types.Float))
	require.Nil(t, err)
	require.Equal(t, []string{
		"execute store result storage demo:data y float 0.0000000001 run data get storage demo:data x 10000000000",
	}, render(t, cmds))
	require.Empty(t, diag.Warnings())

	_, err = e.Move(storage("x", types.Number), storage("y", types.Double))
	require.Nil(t, err)
	require.Len(t, diag.Warnings(), 1)
	require.Equal(t, errors.Precision, diag.Warnings()[0].Kind)

	_, err = e.Move(storage("x", types.Double), storage("y", types.String))
	require.True(t, errors.Is(err, errors.IncompatibleType))
	_, err = e.Move(storage("x", types.Double), storage("y", types.WholeNumber))
	require.True(t, errors.Is(err, errors.IncompatibleType))
}

func TestStructuredLength(t *testing.T) {
	e, _ := newEngine()
	cmds, err := e.MoveScaled(storage("items", types.ListOf(types.KindInt)), storage("n", types.Int), 1)
	require.Nil(t, err)
	require.Equal(t, []string{
		"execute store result storage demo:data n int 1 run data get storage demo:data items 1",
	}, render(t, cmds))
}

func TestRoundTripThroughScore(t *testing.T) {
	for _, typ := range []types.DataType{types.Byte, types.Short, types.Int, types.Long, types.Float, types.Double} {
		e, _ := newEngine()
		src := storage("src", typ)
		dst := storage("dst", typ)
		tmp := score("tmp")
		_, err := e.Move(src, tmp)
		require.Nil(t, err, typ.String())
		_, err = e.Move(tmp, dst)
		require.Nil(t, err, typ.String())
	}
}

type staged struct {
	via *value.ScoreboardVar
	e   *Engine
}

func (s staged) ToPrimitive(dst value.Variable) ([]command.Command, error) {
	return s.e.Move(s.via, dst)
}

func (s staged) FromPrimitive(src value.Value) ([]command.Command, error) {
	return s.e.Move(src, s.via)
}

func (s staged) String() string { return "staged" }

func TestDerived(t *testing.T) {
	e, _ := newEngine()
	d := value.NewDerived(types.Int, staged{via: score("via"), e: e})

	cmds, err := e.Move(d, score("a"))
	require.Nil(t, err)
	require.Equal(t, []string{"scoreboard players operation a obj = via obj"}, render(t, cmds))

	cmds, err = e.Move(value.Int(3), d)
	require.Nil(t, err)
	require.Equal(t, []string{"scoreboard players set via obj 3"}, render(t, cmds))

	_, err = e.Move(d, d)
	require.True(t, errors.Is(err, errors.IncompatibleType))
}

func TestAddConst(t *testing.T) {
	e, _ := newEngine()

	cmds, err := e.AddConst(score("a"), value.Int(5))
	require.Nil(t, err)
	require.Equal(t, []string{"scoreboard players add a obj 5"}, render(t, cmds))

	cmds, err = e.AddConst(score("a"), value.Int(-3))
	require.Nil(t, err)
	require.Equal(t, []string{"scoreboard players remove a obj 3"}, render(t, cmds))

	cmds, err = e.AddConst(storage("n", types.Int), value.Int(2))
	require.Nil(t, err)
	require.Equal(t, []string{
		"execute store result score std.add_const_temp temp run data get storage demo:data n 1",
		"scoreboard players add std.add_const_temp temp 2",
		"execute store result storage demo:data n int 1 run scoreboard players get std.add_const_temp temp",
	}, render(t, cmds))

	_, err = e.AddConst(storage("f", types.Float), value.Int(1))
	require.True(t, errors.Is(err, errors.Unsupported))
	_, err = e.AddConst(storage("n", types.Number), value.Int(1))
	require.True(t, errors.Is(err, errors.Unsupported))
	_, err = e.AddConst(score("a"), value.Double(0.5))
	require.True(t, errors.Is(err, errors.IncompatibleType))
}

func TestAddConstToDouble(t *testing.T) {
	e, _ := newEngine()
	cmds, err := e.AddConst(storage("d", types.Double), value.Double(-0.25))
	require.Nil(t, err)
	require.Equal(t, []string{
		`summon minecraft:marker 0 0 0 {Tags:["std.add_const_marker"]}`,
		"data modify entity @e[tag=std.add_const_marker,limit=1] Pos[0] set from storage demo:data d",
		"execute as @e[tag=std.add_const_marker,limit=1] at @s run tp @s ~-0.25 ~ ~",
		"data modify storage demo:data d set from entity @e[tag=std.add_const_marker,limit=1] Pos[0]",
		"kill @e[tag=std.add_const_marker,limit=1]",
	}, render(t, cmds))
}

func TestAddInPlace(t *testing.T) {
	e, _ := newEngine()

	cmds, err := e.AddInPlace(score("a"), score("b"))
	require.Nil(t, err)
	require.Equal(t, []string{"scoreboard players operation a obj += b obj"}, render(t, cmds))

	cmds, err = e.AddInPlace(score("a"), storage("n", types.Short))
	require.Nil(t, err)
	require.Len(t, cmds, 2)

	_, err = e.AddInPlace(score("a"), storage("n", types.Double))
	require.True(t, errors.Is(err, errors.IncompatibleType))
	_, err = e.AddInPlace(storage("n", types.Int), score("a"))
	require.True(t, errors.Is(err, errors.Unsupported))
}

func TestOperations(t *testing.T) {
	e, _ := newEngine()
	op, err := ParseOperation("*=")
	require.Nil(t, err)
	cmds, err := e.ExprOp(score("a"), op, value.Int(3))
	require.Nil(t, err)
	require.Equal(t, []string{
		"scoreboard players set std.expr_op_temp temp 3",
		"scoreboard players operation a obj *= std.expr_op_temp temp",
	}, render(t, cmds))

	_, err = ParseOperation("**")
	require.True(t, errors.Is(err, errors.Unsupported))
}
