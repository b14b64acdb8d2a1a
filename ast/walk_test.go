package ast

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func ident(name string) *Operand {
	return &Operand{Kind: Ident, Name: name}
}

func TestInspect(t *testing.T) {
	prog := &Program{
		Namespace: "demo",
		Functions: []*Function{{
			Name: "main",
			Body: []Stmt{
				&Set{Var: ident("i"), Value: &Operand{Kind: Int, Int: 0}},
				&While{
					Cond: &Cond{Left: ident("i"), Op: "<", Right: &Operand{Kind: Int, Int: 5}},
					Body: []Stmt{
						&Add{Var: ident("i"), Value: &Operand{Kind: Int, Int: 1}},
						&If{
							Cond: &Cond{Left: ident("i"), Op: "matches", Range: "3"},
							Then: []Stmt{&Call{Function: "hit", Arg: ident("i")}},
							Else: []Stmt{&Print{Parts: []Node{&Text{Value: "miss"}, ident("i")}}},
						},
					},
				},
			},
		}},
	}

	var idents []string
	Inspect(prog, func(n Node) bool {
		if op, ok := n.(*Operand); ok && op.Kind == Ident {
			idents = append(idents, op.Name)
		}
		return true
	})
	require.Equal(t, []string{"i", "i", "i", "i", "i", "i"}, idents)

	// Returning false skips the children of a node.
	var stmts int
	Inspect(prog, func(n Node) bool {
		if _, ok := n.(Stmt); ok {
			stmts++
		}
		_, isWhile := n.(*While)
		return !isWhile
	})
	require.Equal(t, 2, stmts)
}

func TestStrings(t *testing.T) {
	require.Equal(t, "i < 5", (&Cond{Left: ident("i"), Op: "<", Right: &Operand{Kind: Int, Int: 5}}).String())
	require.Equal(t, "exists hp", (&Cond{Left: ident("hp"), Op: "exists"}).String())
	require.Equal(t, `"a b"`, (&Operand{Kind: String, Str: "a b"}).String())
	require.Equal(t, "1.5", (&Operand{Kind: Float, Float: 1.5}).String())
	require.Equal(t, "call f(2)", (&Call{Function: "f", Arg: &Operand{Kind: Int, Int: 2}}).String())
	require.Equal(t, `print @a ["x", {bold: true}]`,
		(&Print{Target: "@a", Parts: []Node{&Text{Value: "x"}, &Style{Values: map[string]any{"bold": true}}}}).String())
	require.Equal(t, "hp: storage demo:data a.b (int)",
		(&VarDecl{Name: "hp", Kind: StorageVar, Target: "demo:data", Path: "a.b", Type: "int"}).String())
	require.Equal(t, "class b(a)", (&Class{Name: "b", Inherits: []string{"a"}}).String())
	require.Equal(t, "3:7", Position{Line: 3, Column: 7}.String())
	require.False(t, NoPos.IsValid())
}

func TestAttribute(t *testing.T) {
	obj, attr, ok := ident("p.x").Attribute()
	require.True(t, ok)
	require.Equal(t, "p", obj)
	require.Equal(t, "x", attr)

	_, _, ok = ident("p").Attribute()
	require.False(t, ok)
	_, _, ok = (&Operand{Kind: String, Str: "p.x"}).Attribute()
	require.False(t, ok)
}
