package ast

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// OperandKind tells what an operand refers to.
type OperandKind int

const (
	// Ident names a variable, or an object attribute as "var.attr".
	Ident OperandKind = iota
	Int
	Float
	String
)

// Operand is a value in a statement: a variable reference or a literal.
type Operand struct {
	At    Position
	Kind  OperandKind
	Name  string
	Int   int64
	Float float64
	Str   string
}

func (o *Operand) Pos() Position { return o.At }

func (o *Operand) String() string {
	switch o.Kind {
	case Int:
		return strconv.FormatInt(o.Int, 10)
	case Float:
		return strconv.FormatFloat(o.Float, 'g', -1, 64)
	case String:
		return strconv.Quote(o.Str)
	default:
		return o.Name
	}
}

// Attribute splits an "obj.attr" identifier. The second return value is
// false for plain identifiers.
func (o *Operand) Attribute() (string, string, bool) {
	if o.Kind != Ident {
		return "", "", false
	}
	return strings.Cut(o.Name, ".")
}

// Cond is a loop or branch condition, e.g. "i < 5", "i matches 1..3" or
// "exists hp".
type Cond struct {
	At    Position
	Left  *Operand
	Op    string
	Right *Operand
	// Range is the right-hand side of a matches condition.
	Range string
}

func (c *Cond) Pos() Position { return c.At }

func (c *Cond) String() string {
	switch c.Op {
	case "exists":
		return "exists " + c.Left.String()
	case "matches":
		return fmt.Sprintf("%s matches %s", c.Left, c.Range)
	default:
		return fmt.Sprintf("%s %s %s", c.Left, c.Op, c.Right)
	}
}

// Set assigns a value to a variable.
type Set struct {
	At    Position
	Var   *Operand
	Value *Operand
}

func (s *Set) stmtNode()      {}
func (s *Set) Pos() Position  { return s.At }
func (s *Set) String() string { return fmt.Sprintf("set %s = %s", s.Var, s.Value) }

// Add adds a value to a variable in place.
type Add struct {
	At    Position
	Var   *Operand
	Value *Operand
}

func (s *Add) stmtNode()      {}
func (s *Add) Pos() Position  { return s.At }
func (s *Add) String() string { return fmt.Sprintf("add %s += %s", s.Var, s.Value) }

// Op applies a scoreboard operation, e.g. "*=", to a score.
type Op struct {
	At       Position
	Var      *Operand
	Operator string
	Value    *Operand
}

func (s *Op) stmtNode()      {}
func (s *Op) Pos() Position  { return s.At }
func (s *Op) String() string { return fmt.Sprintf("op %s %s %s", s.Var, s.Operator, s.Value) }

// While is a loop.
type While struct {
	At   Position
	Cond *Cond
	Body []Stmt
}

func (s *While) stmtNode()      {}
func (s *While) Pos() Position  { return s.At }
func (s *While) String() string { return fmt.Sprintf("while %s (%d statements)", s.Cond, len(s.Body)) }

// If is a branch with an optional else branch.
type If struct {
	At   Position
	Cond *Cond
	Then []Stmt
	Else []Stmt
}

func (s *If) stmtNode()     {}
func (s *If) Pos() Position { return s.At }

func (s *If) String() string {
	if s.Else == nil {
		return fmt.Sprintf("if %s (%d statements)", s.Cond, len(s.Then))
	}
	return fmt.Sprintf("if %s (%d statements, else %d)", s.Cond, len(s.Then), len(s.Else))
}

// Call calls a function or a class method written "class.method". Arg, if
// set, is passed in the argument register.
type Call struct {
	At       Position
	Function string
	Arg      *Operand
}

func (s *Call) stmtNode()     {}
func (s *Call) Pos() Position { return s.At }

func (s *Call) String() string {
	if s.Arg == nil {
		return "call " + s.Function
	}
	return fmt.Sprintf("call %s(%s)", s.Function, s.Arg)
}

// Return leaves the function, moving Value, if set, into the return
// register.
type Return struct {
	At    Position
	Value *Operand
}

func (s *Return) stmtNode()     {}
func (s *Return) Pos() Position { return s.At }

func (s *Return) String() string {
	if s.Value == nil {
		return "return"
	}
	return "return " + s.Value.String()
}

// Cmd is a raw command passed through unchanged.
type Cmd struct {
	At      Position
	Command string
}

func (s *Cmd) stmtNode()      {}
func (s *Cmd) Pos() Position  { return s.At }
func (s *Cmd) String() string { return "cmd " + s.Command }

// Print shows a chat message. Parts are *Text, *Style or *Operand.
type Print struct {
	At     Position
	Target string
	Parts  []Node
}

func (s *Print) stmtNode()     {}
func (s *Print) Pos() Position { return s.At }

func (s *Print) String() string {
	parts := make([]string, len(s.Parts))
	for i, p := range s.Parts {
		parts[i] = p.String()
	}
	return fmt.Sprintf("print %s [%s]", s.Target, strings.Join(parts, ", "))
}

// Text is literal message text.
type Text struct {
	At    Position
	Value string
}

func (t *Text) Pos() Position  { return t.At }
func (t *Text) String() string { return strconv.Quote(t.Value) }

// Style changes the style of the following message parts. A nil value
// removes the key.
type Style struct {
	At     Position
	Values map[string]any
}

func (s *Style) Pos() Position { return s.At }

func (s *Style) String() string {
	keys := make([]string, 0, len(s.Values))
	for k := range s.Values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s: %v", k, s.Values[k])
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// New creates an object of a class and stores its id in Var.
type New struct {
	At    Position
	Class string
	Var   *Operand
}

func (s *New) stmtNode()      {}
func (s *New) Pos() Position  { return s.At }
func (s *New) String() string { return fmt.Sprintf("new %s -> %s", s.Class, s.Var) }
