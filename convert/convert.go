// Package convert synthesizes the commands that move a value between storage
// backends.
//
// Move dispatches on the (source, destination) kind pair, first match wins:
//
//	Derived      -> primitive   src.ToPrimitive(dst)
//	primitive    -> Derived     dst.FromPrimitive(src)
//	Score        -> Score       scoreboard operation, identity is a no-op
//	Score        -> Structured  execute store result, scaled
//	Const        -> Score       scoreboard players set
//	Const        -> Structured  data modify set value
//	Structured   -> Score       execute store result score, scaled
//	Structured   -> Structured  set from, or store through the scoreboard
//
// Moves are all-or-nothing: on error no commands are returned.
package convert

import (
	"fmt"
	"math"
	"strconv"

	"github.com/deepnoodle-ai/datapack/command"
	"github.com/deepnoodle-ai/datapack/errors"
	"github.com/deepnoodle-ai/datapack/symbol"
	"github.com/deepnoodle-ai/datapack/types"
	"github.com/deepnoodle-ai/datapack/value"
)

// PrecisionScale is the factor applied when a number is moved between two
// structured slots of different numeric types. The value is scaled up when
// read into the intermediate integer and scaled back down when stored.
//
// The intermediate is an int32 score, so only magnitudes up to
// MaxInt32/PrecisionScale (about 0.2147) survive; larger values, whole
// numbers included, saturate to ±0.2147483647.
const PrecisionScale = 1e10

// Config holds what an Engine needs to allocate temporaries.
type Config struct {
	Allocator *symbol.Allocator
	// Owner qualifies temporary players and tags.
	Owner symbol.Owner
	// TempObjective is the objective temporary scores live in.
	TempObjective symbol.Name
	// Diagnostics receives warnings. It may be nil.
	Diagnostics *errors.Diagnostics
}

// Engine is the conversion engine of one compilation.
type Engine struct {
	alloc   *symbol.Allocator
	owner   symbol.Owner
	tempObj symbol.Name
	diag    *errors.Diagnostics
	temps   map[string]*value.ScoreboardVar
	tags    map[string]*symbol.Symbol
}

// New returns an engine.
func New(cfg Config) *Engine {
	alloc := cfg.Allocator
	if alloc == nil {
		alloc = symbol.NewAllocator()
	}
	return &Engine{
		alloc:   alloc,
		owner:   cfg.Owner,
		tempObj: cfg.TempObjective,
		diag:    cfg.Diagnostics,
		temps:   map[string]*value.ScoreboardVar{},
		tags:    map[string]*symbol.Symbol{},
	}
}

// Temp returns the temporary score used for the given purpose. Temporaries
// only hold a value within one command sequence, so each purpose has one.
func (e *Engine) Temp(purpose string) *value.ScoreboardVar {
	if v, ok := e.temps[purpose]; ok {
		return v
	}
	v := value.Score(e.alloc.Player(purpose, e.owner), e.tempObj)
	e.temps[purpose] = v
	return v
}

func (e *Engine) tempTag(purpose string) *symbol.Symbol {
	if t, ok := e.tags[purpose]; ok {
		return t
	}
	t := e.alloc.Tag(purpose, e.owner)
	e.tags[purpose] = t
	return t
}

func (e *Engine) warn(kind errors.WarningKind, format string, args ...any) {
	if e.diag == nil {
		return
	}
	e.diag.Warn(kind, format, args...)
}

// Move returns the commands that copy src into dst.
func (e *Engine) Move(src value.Value, dst value.Variable) ([]command.Command, error) {
	return e.MoveScaled(src, dst, 1)
}

// MoveScaled is Move with a scale factor applied on the paths that go
// through an execute store. Other paths require a scale of 1.
func (e *Engine) MoveScaled(src value.Value, dst value.Variable, scale float64) ([]command.Command, error) {
	if d, ok := src.(*value.Derived); ok {
		if _, ok := dst.(*value.Derived); ok {
			return nil, incompatible(src, dst)
		}
		if err := unitScale(scale, src, dst); err != nil {
			return nil, err
		}
		return d.Impl.ToPrimitive(dst)
	}
	if d, ok := dst.(*value.Derived); ok {
		if err := unitScale(scale, src, dst); err != nil {
			return nil, err
		}
		return d.Impl.FromPrimitive(src)
	}

	switch dst := dst.(type) {
	case *value.ScoreboardVar:
		switch src := src.(type) {
		case *value.ScoreboardVar:
			if err := unitScale(scale, src, dst); err != nil {
				return nil, err
			}
			return one(scoreToScore(src, dst)), nil
		case *value.Const:
			if err := unitScale(scale, src, dst); err != nil {
				return nil, err
			}
			if !src.Type().IsA(types.WholeNumber) {
				return nil, incompatible(src, dst)
			}
			cmd, err := constToScore(src, dst)
			if err != nil {
				return nil, err
			}
			return one(cmd), nil
		case *value.StructuredVar:
			return one(structuredToScore(src, dst, scale)), nil
		}
	case *value.StructuredVar:
		switch src := src.(type) {
		case *value.ScoreboardVar:
			if !dst.Type().IsConcrete() || !dst.Type().IsA(types.Number) {
				return nil, incompatible(src, dst)
			}
			return one(scoreToStructured(src, dst, scale)), nil
		case *value.Const:
			if err := unitScale(scale, src, dst); err != nil {
				return nil, err
			}
			if dst.Type() != types.Any && dst.Type() != src.Type() {
				return nil, incompatible(src, dst)
			}
			return one(constToStructured(src, dst)), nil
		case *value.StructuredVar:
			return e.structuredToStructured(src, dst, scale)
		}
	}
	return nil, incompatible(src, dst)
}

func (e *Engine) structuredToStructured(src, dst *value.StructuredVar, scale float64) ([]command.Command, error) {
	st, dt := src.Type(), dst.Type()
	if st == types.Any || dt == types.Any || st.IsA(dt) {
		if st == types.Any && dt != types.Any {
			e.warn(errors.TypeAssumption, "assuming the type of %s matches destination %s", src, dst)
		}
		if !dt.IsConcrete() && dt != types.Any {
			e.warn(errors.TypeAssumption, "assuming non-concrete destination %s has the type of %s", dst, src)
		}
		if err := unitScale(scale, src, dst); err != nil {
			return nil, err
		}
		return one(structuredCopy(src, dst)), nil
	}
	if !dt.IsConcrete() {
		return nil, errors.IncompatibleTypef("destination %s is not a concrete type", dst)
	}
	if st.IsA(types.Number) && dt.IsA(types.Number) {
		if dt == types.Double && !st.IsConcrete() {
			e.warn(errors.Precision,
				"moving %s %s to double %s goes through the scoreboard; a double source is rounded to float precision",
				st, src, dst)
		}
		if err := unitScale(scale, src, dst); err != nil {
			return nil, err
		}
		return one(storeThrough(src, dst, PrecisionScale, 1/PrecisionScale)), nil
	}
	if st.IsAny(types.Compound, types.List, types.String) && dt.IsA(types.Number) {
		return one(storeThrough(src, dst, 1, scale)), nil
	}
	return nil, incompatible(src, dst)
}

func one(c command.Command) []command.Command {
	return []command.Command{c}
}

func incompatible(src value.Value, dst value.Variable) error {
	return errors.IncompatibleTypef("cannot move %s value %s into %s variable %s", src.Type(), src, dst.Type(), dst)
}

func unitScale(scale float64, src value.Value, dst value.Variable) error {
	if scale != 1 {
		return errors.Unsupportedf("scale %s is not supported when moving %s into %s", FormatScale(scale), src, dst)
	}
	return nil
}

// FormatScale renders a scale factor in plain decimal notation; the target
// does not accept exponents.
func FormatScale(scale float64) string {
	return strconv.FormatFloat(scale, 'f', -1, 64)
}

// location renders "<container> %s <path>" for a structured variable, with
// the target as the only placeholder.
func location(v *value.StructuredVar) string {
	return fmt.Sprintf("%s %%s %s", v.Container, symbol.Escape(v.Path))
}

func scoreToScore(src, dst *value.ScoreboardVar) command.Command {
	if src.Equal(dst) {
		return command.Comment("scores are equal")
	}
	return command.New("scoreboard players operation %s %s = %s %s",
		dst.Player, dst.Objective, src.Player, src.Objective)
}

// constToScore sets a score to a whole number constant. Scores are int32,
// so the constant is rendered without its storage suffix and must fit.
func constToScore(src *value.Const, dst *value.ScoreboardVar) (command.Command, error) {
	n, err := src.Number()
	if err != nil {
		return nil, incompatible(src, dst)
	}
	if n < math.MinInt32 || n > math.MaxInt32 {
		return nil, errors.IncompatibleTypef("%s does not fit in score %s", src, dst)
	}
	return command.New("scoreboard players set %s %s "+strconv.FormatInt(int64(n), 10), dst.Player, dst.Objective), nil
}

func scoreToStructured(src *value.ScoreboardVar, dst *value.StructuredVar, scale float64) command.Command {
	return command.New(
		fmt.Sprintf("execute store result %s %s %s run scoreboard players get %%s %%s",
			location(dst), dst.Type().Storage(), FormatScale(scale)),
		dst.Target, src.Player, src.Objective)
}

func constToStructured(src *value.Const, dst *value.StructuredVar) command.Command {
	return command.New(
		fmt.Sprintf("data modify %s set value %s", location(dst), symbol.Escape(src.Text)),
		dst.Target)
}

func structuredToScore(src *value.StructuredVar, dst *value.ScoreboardVar, scale float64) command.Command {
	return command.New(
		fmt.Sprintf("execute store result score %%s %%s run data get %s %s", location(src), FormatScale(scale)),
		dst.Player, dst.Objective, src.Target)
}

func structuredCopy(src, dst *value.StructuredVar) command.Command {
	return command.New(
		fmt.Sprintf("data modify %s set from %s", location(dst), location(src)),
		dst.Target, src.Target)
}

// storeThrough reads src scaled by readScale into the result of an execute
// store, which writes it into dst scaled by storeScale.
func storeThrough(src, dst *value.StructuredVar, readScale, storeScale float64) command.Command {
	return command.New(
		fmt.Sprintf("execute store result %s %s %s run data get %s %s",
			location(dst), dst.Type().Storage(), FormatScale(storeScale), location(src), FormatScale(readScale)),
		dst.Target, src.Target)
}
