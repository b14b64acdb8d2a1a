package convert

import (
	"fmt"

	"github.com/deepnoodle-ai/datapack/command"
	"github.com/deepnoodle-ai/datapack/errors"
	"github.com/deepnoodle-ai/datapack/value"
)

// Operation is a scoreboard players operation operator.
type Operation string

const (
	OpMod    Operation = "%="
	OpMul    Operation = "*="
	OpAdd    Operation = "+="
	OpSub    Operation = "-="
	OpDiv    Operation = "/="
	OpMin    Operation = "<"
	OpAssign Operation = "="
	OpMax    Operation = ">"
	OpSwap   Operation = "><"
)

var operations = map[Operation]bool{
	OpMod: true, OpMul: true, OpAdd: true, OpSub: true, OpDiv: true,
	OpMin: true, OpAssign: true, OpMax: true, OpSwap: true,
}

// ParseOperation validates an operator.
func ParseOperation(s string) (Operation, error) {
	op := Operation(s)
	if !operations[op] {
		return "", errors.Unsupportedf("unknown scoreboard operation %q", s)
	}
	return op, nil
}

// ScoreOp applies op to dst with other as the operand.
func (e *Engine) ScoreOp(dst *value.ScoreboardVar, op Operation, other *value.ScoreboardVar) ([]command.Command, error) {
	if !operations[op] {
		return nil, errors.Unsupportedf("unknown scoreboard operation %q", string(op))
	}
	return one(command.New(
		fmt.Sprintf("scoreboard players operation %%s %%s %s %%s %%s", op),
		dst.Player, dst.Objective, other.Player, other.Objective)), nil
}

// ExprOp applies op to dst with any numeric value as the operand. Values
// other than scores are first moved into a temporary score.
func (e *Engine) ExprOp(dst *value.ScoreboardVar, op Operation, other value.Value) ([]command.Command, error) {
	if s, ok := other.(*value.ScoreboardVar); ok {
		return e.ScoreOp(dst, op, s)
	}
	temp := e.Temp("expr_op_temp")
	out, err := e.Move(other, temp)
	if err != nil {
		return nil, err
	}
	apply, err := e.ScoreOp(dst, op, temp)
	if err != nil {
		return nil, err
	}
	return append(out, apply...), nil
}
