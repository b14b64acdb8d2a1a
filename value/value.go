// Package value defines the expressions and variables the conversion engine
// moves data between.
//
// The set of value kinds is closed: *Const, *ScoreboardVar, *StructuredVar
// and *Derived. Each carries exactly one data type fixed at construction.
package value

import (
	"fmt"
	"strconv"

	"github.com/deepnoodle-ai/datapack/command"
	"github.com/deepnoodle-ai/datapack/symbol"
	"github.com/deepnoodle-ai/datapack/types"
)

// Value is something that has a value. Only Variables can be assigned to.
type Value interface {
	Type() types.DataType
	String() string
	value()
}

// Variable is a Value with a storage location.
type Variable interface {
	Value
	variable()
}

// IsType reports whether v's type is a subtype of any of preds.
func IsType(v Value, preds ...types.DataType) bool {
	return v.Type().IsAny(preds...)
}

// Const is a compile-time literal. Text is already in target literal syntax.
type Const struct {
	typ  types.DataType
	Text string
}

// NewConst returns a constant of the given type.
func NewConst(typ types.DataType, text string) *Const {
	return &Const{typ: typ, Text: text}
}

func Int(n int64) *Const   { return NewConst(types.Int, strconv.FormatInt(n, 10)) }
func Byte(n int8) *Const   { return NewConst(types.Byte, fmt.Sprintf("%db", n)) }
func Short(n int16) *Const { return NewConst(types.Short, fmt.Sprintf("%ds", n)) }
func Long(n int64) *Const  { return NewConst(types.Long, fmt.Sprintf("%dL", n)) }

func Float(f float32) *Const {
	return NewConst(types.Float, strconv.FormatFloat(float64(f), 'f', -1, 32)+"f")
}

func Double(f float64) *Const {
	return NewConst(types.Double, strconv.FormatFloat(f, 'f', -1, 64)+"d")
}

// String returns a string constant, quoted for the target.
func String(s string) *Const {
	return NewConst(types.String, strconv.Quote(s))
}

func (c *Const) Type() types.DataType { return c.typ }

func (c *Const) String() string {
	return fmt.Sprintf("Const[%s](%s)", c.typ, c.Text)
}

func (*Const) value() {}

// Number returns the numeric value of a numeric constant, stripping any type
// suffix.
func (c *Const) Number() (float64, error) {
	text := c.Text
	if n := len(text); n > 1 {
		switch text[n-1] {
		case 'b', 'B', 's', 'S', 'l', 'L', 'f', 'F', 'd', 'D':
			text = text[:n-1]
		}
	}
	f, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return 0, fmt.Errorf("constant %s is not numeric", c.Text)
	}
	return f, nil
}

// ScoreboardVar addresses one slot of the flat integer scoreboard store.
type ScoreboardVar struct {
	Player    symbol.Name
	Objective symbol.Name
}

// Score returns a scoreboard variable.
func Score(player, objective symbol.Name) *ScoreboardVar {
	return &ScoreboardVar{Player: player, Objective: objective}
}

// Type is always WholeNumber; scoreboards hold integers only.
func (s *ScoreboardVar) Type() types.DataType { return types.WholeNumber }

func (s *ScoreboardVar) String() string {
	return fmt.Sprintf("%s@%s", s.Player, s.Objective)
}

// Equal reports whether both variables address the same slot.
func (s *ScoreboardVar) Equal(other *ScoreboardVar) bool {
	return other != nil && s.Player == other.Player && s.Objective == other.Objective
}

// Names returns the player and objective, in template order.
func (s *ScoreboardVar) Names() []symbol.Name {
	return []symbol.Name{s.Player, s.Objective}
}

func (*ScoreboardVar) value()    {}
func (*ScoreboardVar) variable() {}

// Container is the kind of structured data holder.
type Container uint8

const (
	Block Container = iota
	Entity
	Storage
)

func (c Container) String() string {
	switch c {
	case Block:
		return "block"
	case Entity:
		return "entity"
	case Storage:
		return "storage"
	default:
		return fmt.Sprintf("container(%d)", uint8(c))
	}
}

// ParseContainer parses "block", "entity" or "storage".
func ParseContainer(s string) (Container, error) {
	switch s {
	case "block":
		return Block, nil
	case "entity":
		return Entity, nil
	case "storage":
		return Storage, nil
	}
	return 0, fmt.Errorf("unknown container kind %q", s)
}

// StructuredVar addresses a typed slot inside a hierarchical data store.
type StructuredVar struct {
	Container Container
	Target    symbol.Name
	Path      string
	typ       types.DataType
}

// Structured returns a structured variable.
func Structured(container Container, target symbol.Name, path string, typ types.DataType) *StructuredVar {
	return &StructuredVar{Container: container, Target: target, Path: path, typ: typ}
}

// InStorage returns a variable in command storage.
func InStorage(id symbol.Name, path string, typ types.DataType) *StructuredVar {
	return Structured(Storage, id, path, typ)
}

// OnEntity returns a variable in an entity's data.
func OnEntity(selector symbol.Name, path string, typ types.DataType) *StructuredVar {
	return Structured(Entity, selector, path, typ)
}

// AtBlock returns a variable in a block entity's data.
func AtBlock(pos symbol.Name, path string, typ types.DataType) *StructuredVar {
	return Structured(Block, pos, path, typ)
}

func (s *StructuredVar) Type() types.DataType { return s.typ }

func (s *StructuredVar) String() string {
	return fmt.Sprintf("StructuredVar[%s](%s, %s, %q)", s.typ, s.Container, s.Target, s.Path)
}

// WithType returns a copy of the variable with a different type tag.
func (s *StructuredVar) WithType(typ types.DataType) *StructuredVar {
	cp := *s
	cp.typ = typ
	return &cp
}

// Sub returns the variable at a child path.
func (s *StructuredVar) Sub(path string, typ types.DataType) *StructuredVar {
	p := path
	if s.Path != "" {
		if len(path) > 0 && path[0] == '[' {
			p = s.Path + path
		} else {
			p = s.Path + "." + path
		}
	}
	return Structured(s.Container, s.Target, p, typ)
}

func (*StructuredVar) value()    {}
func (*StructuredVar) variable() {}

// Materializer stages a derived value through a primitive variable. Both
// methods return the complete command sequence for the move.
type Materializer interface {
	ToPrimitive(dst Variable) ([]command.Command, error)
	FromPrimitive(src Value) ([]command.Command, error)
	String() string
}

// Derived is a composite value with no direct storage address.
type Derived struct {
	typ  types.DataType
	Impl Materializer
}

// NewDerived returns a derived variable of the given type.
func NewDerived(typ types.DataType, impl Materializer) *Derived {
	return &Derived{typ: typ, Impl: impl}
}

func (d *Derived) Type() types.DataType { return d.typ }

func (d *Derived) String() string {
	return fmt.Sprintf("Derived[%s](%s)", d.typ, d.Impl)
}

func (*Derived) value()    {}
func (*Derived) variable() {}
