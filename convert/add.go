package convert

import (
	"fmt"
	"math"

	"github.com/deepnoodle-ai/datapack/command"
	"github.com/deepnoodle-ai/datapack/errors"
	"github.com/deepnoodle-ai/datapack/types"
	"github.com/deepnoodle-ai/datapack/value"
)

// AddInPlace returns the commands that add delta to dst.
func (e *Engine) AddInPlace(dst value.Variable, delta value.Value) ([]command.Command, error) {
	if c, ok := delta.(*value.Const); ok {
		return e.AddConst(dst, c)
	}
	switch dst := dst.(type) {
	case *value.ScoreboardVar:
		switch delta := delta.(type) {
		case *value.ScoreboardVar:
			return e.ScoreOp(dst, OpAdd, delta)
		case *value.StructuredVar:
			if !delta.Type().IsA(types.WholeNumber) {
				return nil, errors.IncompatibleTypef("cannot add %s to %s: the increment must be a whole number", delta, dst)
			}
			return e.ExprOp(dst, OpAdd, delta)
		case *value.Derived:
			return e.ExprOp(dst, OpAdd, delta)
		}
	case *value.StructuredVar:
		return nil, errors.Unsupportedf("adding %s to structured variable %s is not supported", delta, dst)
	}
	return nil, errors.IncompatibleTypef("cannot add %s to %s", delta, dst)
}

// AddConst returns the commands that add a numeric constant to dst.
func (e *Engine) AddConst(dst value.Variable, delta *value.Const) ([]command.Command, error) {
	if !delta.Type().IsA(types.Number) {
		return nil, errors.IncompatibleTypef("cannot add non-number %s to %s", delta, dst)
	}
	n, err := delta.Number()
	if err != nil {
		return nil, errors.IncompatibleTypef("cannot add %s to %s: %v", delta, dst, err)
	}
	switch dst := dst.(type) {
	case *value.ScoreboardVar:
		if n != math.Trunc(n) {
			return nil, errors.IncompatibleTypef("cannot add fractional %s to score %s", delta, dst)
		}
		return one(addToScore(dst, int64(n))), nil
	case *value.StructuredVar:
		t := dst.Type()
		if !t.IsA(types.Number) {
			return nil, errors.IncompatibleTypef("cannot add %s to non-number %s", delta, dst)
		}
		switch {
		case t == types.Double:
			return e.addToDouble(dst, n)
		case t.IsConcrete() && t.IsA(types.WholeNumber):
			if n != math.Trunc(n) {
				return nil, errors.IncompatibleTypef("cannot add fractional %s to %s", delta, dst)
			}
			temp := e.Temp("add_const_temp")
			var out []command.Command
			read, err := e.Move(dst, temp)
			if err != nil {
				return nil, err
			}
			out = append(out, read...)
			out = append(out, addToScore(temp, int64(n)))
			write, err := e.Move(temp, dst)
			if err != nil {
				return nil, err
			}
			return append(out, write...), nil
		}
		return nil, errors.Unsupportedf("adding to %s variable %s is not supported", t, dst)
	}
	return nil, errors.Unsupportedf("adding %s to %s is not supported", delta, dst)
}

func addToScore(dst *value.ScoreboardVar, n int64) command.Command {
	if n < 0 {
		return command.New(fmt.Sprintf("scoreboard players remove %%s %%s %d", -n), dst.Player, dst.Objective)
	}
	return command.New(fmt.Sprintf("scoreboard players add %%s %%s %d", n), dst.Player, dst.Objective)
}

// addToDouble adds to a double by moving it into the x coordinate of a
// temporary marker and teleporting the marker by the increment.
func (e *Engine) addToDouble(dst *value.StructuredVar, n float64) ([]command.Command, error) {
	tag := e.tempTag("add_const_marker")
	marker := e.alloc.Composite("@e[tag=%s,limit=1]", tag)
	pos := value.OnEntity(marker, "Pos[0]", types.Double)

	in, err := e.Move(dst, pos)
	if err != nil {
		return nil, err
	}
	back, err := e.Move(pos, dst)
	if err != nil {
		return nil, err
	}
	out := []command.Command{
		command.New(`summon minecraft:marker 0 0 0 {Tags:["%s"]}`, tag),
	}
	out = append(out, in...)
	out = append(out, command.New(fmt.Sprintf("execute as %%s at @s run tp @s ~%s ~ ~", FormatScale(n)), marker))
	out = append(out, back...)
	out = append(out, command.New("kill %s", marker))
	return out, nil
}
