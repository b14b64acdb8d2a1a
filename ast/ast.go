// Package ast defines the tree a program document is parsed into.
package ast

import (
	"fmt"
	"strings"
)

// Position points to a location in the source document.
type Position struct {
	Line   int // 1-indexed line number
	Column int // 1-indexed column number
}

// IsValid returns true if this position has been set.
func (p Position) IsValid() bool {
	return p.Line > 0
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// NoPos is the zero value Position, representing an unset position.
var NoPos = Position{}

// Node represents a portion of the tree. All nodes have position
// information indicating where they appear in the source document.
type Node interface {
	// Pos returns the position of the node in the document.
	Pos() Position

	// String returns a human friendly representation of the Node.
	String() string
}

// Stmt represents a statement of a function body.
type Stmt interface {
	Node
	stmtNode()
}

// Program is the root node of a document.
type Program struct {
	At        Position
	Namespace string
	Vars      []*VarDecl
	Functions []*Function
	Classes   []*Class
}

func (p *Program) Pos() Position { return p.At }

func (p *Program) String() string {
	return fmt.Sprintf("program %s (%d vars, %d functions, %d classes)",
		p.Namespace, len(p.Vars), len(p.Functions), len(p.Classes))
}

// VarKind is the storage backend of a declared variable.
type VarKind int

const (
	// ScoreVar is a scoreboard slot.
	ScoreVar VarKind = iota
	// StorageVar is a path in command storage.
	StorageVar
	// EntityVar is a path in an entity's data.
	EntityVar
	// BlockVar is a path in a block entity's data.
	BlockVar
)

func (k VarKind) String() string {
	switch k {
	case ScoreVar:
		return "score"
	case StorageVar:
		return "storage"
	case EntityVar:
		return "entity"
	case BlockVar:
		return "block"
	default:
		return "unknown"
	}
}

// VarDecl declares a program variable.
type VarDecl struct {
	At   Position
	Name string
	Kind VarKind
	// Objective overrides the default objective of a score.
	Objective string
	// Target is the storage id, selector or block position.
	Target string
	Path   string
	// Type is a type name understood by types.Parse.
	Type string
	// Class is set for scores holding the id of an object.
	Class string
}

func (v *VarDecl) Pos() Position { return v.At }

func (v *VarDecl) String() string {
	switch v.Kind {
	case ScoreVar:
		if v.Class != "" {
			return fmt.Sprintf("%s: object %s", v.Name, v.Class)
		}
		return v.Name + ": score"
	default:
		return fmt.Sprintf("%s: %s %s %s (%s)", v.Name, v.Kind, v.Target, v.Path, v.Type)
	}
}

// Function is a function or method declaration.
type Function struct {
	At          Position
	Name        string
	Description string
	Tags        []string
	Body        []Stmt
}

func (f *Function) Pos() Position { return f.At }

func (f *Function) String() string {
	return fmt.Sprintf("function %s (%d statements)", f.Name, len(f.Body))
}

// Class declares an object class.
type Class struct {
	At       Position
	Name     string
	Inherits []string
	// Attributes maps attribute names to type names.
	Attributes map[string]string
	Functions  []*Function
}

func (c *Class) Pos() Position { return c.At }

func (c *Class) String() string {
	if len(c.Inherits) == 0 {
		return "class " + c.Name
	}
	return fmt.Sprintf("class %s(%s)", c.Name, strings.Join(c.Inherits, ", "))
}
