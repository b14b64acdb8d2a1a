package parser_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/deepnoodle-ai/datapack/ast"
	"github.com/deepnoodle-ai/datapack/errors"
	"github.com/deepnoodle-ai/datapack/parser"
)

func parse(t *testing.T, src string) *ast.Program {
	t.Helper()
	prog, err := parser.Parse(context.Background(), src)
	require.Nil(t, err)
	return prog
}

func parseErrors(t *testing.T, src string) []*errors.CompileError {
	t.Helper()
	_, err := parser.Parse(context.Background(), src, parser.WithFilename("bad.yaml"))
	require.NotNil(t, err)
	var many *errors.CompileErrors
	if errors.As(err, &many) {
		return many.Errors
	}
	var one *errors.CompileError
	require.True(t, errors.As(err, &one), "%T: %v", err, err)
	return []*errors.CompileError{one}
}

func TestProgram(t *testing.T) {
	prog := parse(t, `
namespace: demo
vars:
  i: score
  kills: {objective: kills}
  hp: {storage: "demo:data", path: player.hp, type: double}
  me: {entity: "@s", path: Health}
  p: {object: point}
classes:
  - name: point
    inherits: [object]
    attributes: {x: int, y: int}
functions:
  - name: main
    description: Entry point.
    tags: ["minecraft:load"]
    body:
      - set: {var: i, value: 0}
`)
	require.Equal(t, "demo", prog.Namespace)
	require.Len(t, prog.Vars, 5)

	i := prog.Vars[0]
	require.Equal(t, "i", i.Name)
	require.Equal(t, ast.ScoreVar, i.Kind)
	require.Equal(t, ast.Position{Line: 4, Column: 3}, i.Pos())

	require.Equal(t, "kills", prog.Vars[1].Objective)

	hp := prog.Vars[2]
	require.Equal(t, ast.StorageVar, hp.Kind)
	require.Equal(t, "demo:data", hp.Target)
	require.Equal(t, "player.hp", hp.Path)
	require.Equal(t, "double", hp.Type)

	me := prog.Vars[3]
	require.Equal(t, ast.EntityVar, me.Kind)
	require.Equal(t, "int", me.Type)

	require.Equal(t, "point", prog.Vars[4].Class)

	require.Len(t, prog.Classes, 1)
	cls := prog.Classes[0]
	require.Equal(t, []string{"object"}, cls.Inherits)
	require.Equal(t, map[string]string{"x": "int", "y": "int"}, cls.Attributes)

	require.Len(t, prog.Functions, 1)
	fn := prog.Functions[0]
	require.Equal(t, "main", fn.Name)
	require.Equal(t, "Entry point.", fn.Description)
	require.Equal(t, []string{"minecraft:load"}, fn.Tags)
	require.Len(t, fn.Body, 1)
}

func body(t *testing.T, stmts string) []ast.Stmt {
	t.Helper()
	prog := parse(t, "namespace: demo\nfunctions:\n  - name: main\n    body:\n"+stmts)
	require.Len(t, prog.Functions, 1)
	return prog.Functions[0].Body
}

func TestStatements(t *testing.T) {
	stmts := body(t, `
      - set: {var: x, value: 1.5}
      - add: {var: p.x, value: -2}
      - op: {var: x, op: "%=", value: y}
      - while:
          cond: i <= 10
          body:
            - call: tick
      - if:
          cond: exists hp
          then: []
          else:
            - return: x
      - call: {function: point.move, arg: "text"}
      - cmd: /say hi
      - new: {class: point, var: p}
      - return:
`)
	require.Len(t, stmts, 9)

	set := stmts[0].(*ast.Set)
	require.Equal(t, "x", set.Var.Name)
	require.Equal(t, ast.Float, set.Value.Kind)
	require.Equal(t, 1.5, set.Value.Float)

	add := stmts[1].(*ast.Add)
	obj, attr, ok := add.Var.Attribute()
	require.True(t, ok)
	require.Equal(t, "p", obj)
	require.Equal(t, "x", attr)
	require.Equal(t, int64(-2), add.Value.Int)

	op := stmts[2].(*ast.Op)
	require.Equal(t, "%=", op.Operator)
	require.Equal(t, ast.Ident, op.Value.Kind)

	loop := stmts[3].(*ast.While)
	require.Equal(t, "i <= 10", loop.Cond.String())
	require.Equal(t, int64(10), loop.Cond.Right.Int)
	require.Equal(t, "tick", loop.Body[0].(*ast.Call).Function)

	branch := stmts[4].(*ast.If)
	require.Equal(t, "exists", branch.Cond.Op)
	require.Empty(t, branch.Then)
	require.Len(t, branch.Else, 1)
	require.Equal(t, "return x", branch.Else[0].String())

	call := stmts[5].(*ast.Call)
	require.Equal(t, "point.move", call.Function)
	require.Equal(t, ast.String, call.Arg.Kind)
	require.Equal(t, "text", call.Arg.Str)

	require.Equal(t, "say hi", stmts[6].(*ast.Cmd).Command)
	require.Equal(t, "new point -> p", stmts[7].String())
	require.Nil(t, stmts[8].(*ast.Return).Value)
}

func TestIfWithoutElse(t *testing.T) {
	stmts := body(t, `
      - if:
          cond: a == b
          then:
            - cmd: say yes
`)
	branch := stmts[0].(*ast.If)
	require.Nil(t, branch.Else)
	require.Equal(t, "=", branch.Cond.Op)
	require.Equal(t, "b", branch.Cond.Right.Name)
}

func TestPrintParts(t *testing.T) {
	stmts := body(t, `
      - print:
          target: "@p"
          parts: [{color: red}, "score: ", total, {color: null}, 'done']
`)
	p := stmts[0].(*ast.Print)
	require.Equal(t, "@p", p.Target)
	require.Len(t, p.Parts, 5)
	require.Equal(t, map[string]any{"color": "red"}, p.Parts[0].(*ast.Style).Values)
	require.Equal(t, "score: ", p.Parts[1].(*ast.Text).Value)
	require.Equal(t, "total", p.Parts[2].(*ast.Operand).Name)
	require.Equal(t, map[string]any{"color": nil}, p.Parts[3].(*ast.Style).Values)
	require.Equal(t, "done", p.Parts[4].(*ast.Text).Value)

	stmts = body(t, `
      - print: "hello"
`)
	p = stmts[0].(*ast.Print)
	require.Equal(t, "@a", p.Target)
	require.Equal(t, "hello", p.Parts[0].(*ast.Text).Value)
}

func TestConditions(t *testing.T) {
	tests := []struct {
		cond string
		want string
	}{
		{"i < 5", "i < 5"},
		{"i == j", "i = j"},
		{"i matches 1..3", "i matches 1..3"},
		{"i matches ..-2", "i matches ..-2"},
		{"exists hp", "exists hp"},
	}
	for _, tt := range tests {
		t.Run(tt.cond, func(t *testing.T) {
			stmts := body(t, "      - while:\n          cond: "+tt.cond+"\n          body: []\n")
			require.Equal(t, tt.want, stmts[0].(*ast.While).Cond.String())
		})
	}
}

func TestInvalidConditions(t *testing.T) {
	for _, cond := range []string{"i", "i ~ 5", "i matches 1...3", "i < 5 < 6"} {
		t.Run(cond, func(t *testing.T) {
			errs := parseErrors(t, "namespace: demo\nfunctions:\n  - name: main\n    body:\n"+
				"      - while:\n          cond: "+cond+"\n          body: []\n")
			require.Equal(t, errors.E1003, errs[0].Code)
		})
	}
}

func TestUnknownStatement(t *testing.T) {
	errs := parseErrors(t, `namespace: demo
functions:
  - name: main
    body:
      - sett: {var: x, value: 1}
`)
	require.Len(t, errs, 1)
	err := errs[0]
	require.Equal(t, errors.E1002, err.Code)
	require.Equal(t, errors.SyntaxError, err.Kind)
	require.Equal(t, "bad.yaml", err.Filename)
	require.Equal(t, 5, err.Line)
	require.Equal(t, 9, err.Column)
	require.Contains(t, err.Note, "set")
}

func TestErrorsAreCollected(t *testing.T) {
	errs := parseErrors(t, `namespace: demo
vars:
  1bad: score
  both: {storage: "a:b", entity: "@s", path: x}
functions:
  - name: main
    body:
      - set: {var: x}
  - name: other
    bdy: []
`)
	require.Len(t, errs, 4)
	require.Equal(t, errors.E1004, errs[0].Code)
	require.Equal(t, 3, errs[0].Line)
	require.Equal(t, errors.E1004, errs[1].Code)
	require.Contains(t, errs[2].Message, `set needs "value"`)
	require.Contains(t, errs[3].Message, `unknown function key "bdy"`)
	require.Contains(t, errs[3].Note, "body")
}

func TestInvalidDocuments(t *testing.T) {
	errs := parseErrors(t, "namespace: [demo\n")
	require.Equal(t, errors.E1001, errs[0].Code)
	require.Contains(t, errs[0].Message, "invalid document")

	errs = parseErrors(t, "")
	require.Contains(t, errs[0].Message, "empty document")

	errs = parseErrors(t, "functions: []\n")
	require.Contains(t, errs[0].Message, "no namespace")

	errs = parseErrors(t, "namespace: demo\nnamespace: other\n")
	require.Contains(t, errs[0].Message, "namespace")
}

func TestMaxDepth(t *testing.T) {
	src := `namespace: demo
functions:
  - name: main
    body:
      - while:
          cond: i < 1
          body:
            - while:
                cond: i < 1
                body: []
`
	_, err := parser.Parse(context.Background(), src, parser.WithMaxDepth(1))
	require.NotNil(t, err)
	require.Contains(t, err.Error(), "nested deeper than 1")

	_, err = parser.Parse(context.Background(), src, parser.WithMaxDepth(2))
	require.Nil(t, err)
}

func TestCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := parser.Parse(ctx, "namespace: demo\nfunctions:\n  - name: main\n    body: []\n")
	require.ErrorIs(t, err, context.Canceled)
}
