// Package parser reads a YAML program document into the tree defined by
// package ast.
//
// The document is decoded into a yaml.Node tree first so every reported
// error can point at the line and column it was found at. Parsing does not
// stop at the first error; all errors found are returned together.
package parser

import (
	"context"
	"regexp"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/deepnoodle-ai/datapack/ast"
	"github.com/deepnoodle-ai/datapack/errors"
)

// DefaultMaxDepth is the default maximum nesting depth of statements.
const DefaultMaxDepth = 100

// Option is a configuration function for a Parser.
type Option func(*Parser)

// WithFilename sets the file name used in error locations.
func WithFilename(filename string) Option {
	return func(p *Parser) {
		p.filename = filename
	}
}

// WithMaxDepth sets the maximum nesting depth of while and if statements.
func WithMaxDepth(depth int) Option {
	return func(p *Parser) {
		p.maxDepth = depth
	}
}

// Parser turns one document into a program. A parser should be used only
// once.
type Parser struct {
	ctx      context.Context
	filename string
	maxDepth int
	depth    int
	errs     errors.CompileErrors
}

// New returns a parser configured with options.
func New(options ...Option) *Parser {
	p := &Parser{maxDepth: DefaultMaxDepth}
	for _, opt := range options {
		opt(p)
	}
	return p
}

// Parse the provided input as a program document and return the tree.
func Parse(ctx context.Context, input string, options ...Option) (*ast.Program, error) {
	return New(options...).Parse(ctx, input)
}

var yamlLine = regexp.MustCompile(`line (\d+)`)

// Parse parses input.
func (p *Parser) Parse(ctx context.Context, input string) (*ast.Program, error) {
	p.ctx = ctx
	var doc yaml.Node
	if err := yaml.Unmarshal([]byte(input), &doc); err != nil {
		line := 0
		if m := yamlLine.FindStringSubmatch(err.Error()); m != nil {
			line, _ = strconv.Atoi(m[1])
		}
		msg := strings.TrimPrefix(err.Error(), "yaml: ")
		return nil, errors.Syntaxf("invalid document: %s", msg).WithLocation(p.filename, line, 0)
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil, errors.Syntaxf("empty document").WithLocation(p.filename, 1, 1)
	}
	prog := p.program(doc.Content[0])
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := p.errs.ToError(); err != nil {
		return nil, err
	}
	return prog, nil
}

func pos(n *yaml.Node) ast.Position {
	return ast.Position{Line: n.Line, Column: n.Column}
}

// fail records an error positioned at n.
func (p *Parser) fail(n *yaml.Node, code errors.ErrorCode, format string, args ...any) {
	err := errors.Syntaxf(format, args...).WithLocation(p.filename, n.Line, n.Column)
	err.Code = code
	p.errs.Add(err)
}

// unknownKey reports a mapping key that is not one of allowed.
func (p *Parser) unknownKey(key *yaml.Node, what string, allowed []string) {
	err := errors.Syntaxf("unknown %s key %q", what, key.Value).WithLocation(p.filename, key.Line, key.Column)
	err.Code = errors.E1001
	if hint := errors.FormatSuggestions(errors.SuggestSimilar(key.Value, allowed)); hint != "" {
		err.Note = hint
	}
	p.errs.Add(err)
}

// entries returns the key/value pairs of a mapping node, or reports an
// error and returns nil.
func (p *Parser) entries(n *yaml.Node, what string) [][2]*yaml.Node {
	if n.Kind != yaml.MappingNode {
		p.fail(n, errors.E1001, "%s must be a mapping", what)
		return nil
	}
	out := make([][2]*yaml.Node, 0, len(n.Content)/2)
	seen := map[string]bool{}
	for i := 0; i+1 < len(n.Content); i += 2 {
		k := n.Content[i]
		if seen[k.Value] {
			p.fail(k, errors.E1001, "duplicate %s key %q", what, k.Value)
			continue
		}
		seen[k.Value] = true
		out = append(out, [2]*yaml.Node{k, n.Content[i+1]})
	}
	return out
}

func (p *Parser) str(n *yaml.Node, what string) string {
	if n.Kind != yaml.ScalarNode || n.Tag == "!!null" {
		p.fail(n, errors.E1001, "%s must be a string", what)
		return ""
	}
	return n.Value
}

func (p *Parser) strs(n *yaml.Node, what string) []string {
	if n.Kind == yaml.ScalarNode {
		return []string{p.str(n, what)}
	}
	if n.Kind != yaml.SequenceNode {
		p.fail(n, errors.E1001, "%s must be a list of strings", what)
		return nil
	}
	out := make([]string, 0, len(n.Content))
	for _, item := range n.Content {
		out = append(out, p.str(item, what))
	}
	return out
}

func (p *Parser) seq(n *yaml.Node, what string) []*yaml.Node {
	if n.Kind == yaml.ScalarNode && n.Tag == "!!null" {
		return nil
	}
	if n.Kind != yaml.SequenceNode {
		p.fail(n, errors.E1001, "%s must be a list", what)
		return nil
	}
	return n.Content
}

var programKeys = []string{"namespace", "vars", "functions", "classes"}

func (p *Parser) program(n *yaml.Node) *ast.Program {
	prog := &ast.Program{At: pos(n)}
	for _, kv := range p.entries(n, "program") {
		key, val := kv[0], kv[1]
		switch key.Value {
		case "namespace":
			prog.Namespace = p.str(val, "namespace")
		case "vars":
			for _, d := range p.entries(val, "vars") {
				if v := p.varDecl(d[0], d[1]); v != nil {
					prog.Vars = append(prog.Vars, v)
				}
			}
		case "functions":
			for _, f := range p.seq(val, "functions") {
				if fn := p.function(f); fn != nil {
					prog.Functions = append(prog.Functions, fn)
				}
			}
		case "classes":
			for _, c := range p.seq(val, "classes") {
				if cls := p.class(c); cls != nil {
					prog.Classes = append(prog.Classes, cls)
				}
			}
		default:
			p.unknownKey(key, "program", programKeys)
		}
	}
	if prog.Namespace == "" && n.Kind == yaml.MappingNode {
		p.fail(n, errors.E1001, "program has no namespace")
	}
	return prog
}

var (
	identPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
	refPattern   = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)
	rangePattern = regexp.MustCompile(`^(-?\d+|-?\d+\.\.|\.\.-?\d+|-?\d+\.\.-?\d+)$`)
)

var varKeys = []string{"score", "objective", "storage", "entity", "block", "path", "type", "object"}

func (p *Parser) varDecl(key, val *yaml.Node) *ast.VarDecl {
	if !identPattern.MatchString(key.Value) {
		p.fail(key, errors.E1004, "invalid variable name %q", key.Value)
		return nil
	}
	v := &ast.VarDecl{At: pos(key), Name: key.Value, Kind: ast.ScoreVar}
	if val.Kind == yaml.ScalarNode {
		if val.Value != "score" {
			p.fail(val, errors.E1004, "variable %s: expected \"score\" or a mapping", v.Name)
			return nil
		}
		return v
	}
	backends := 0
	for _, kv := range p.entries(val, "variable") {
		k, x := kv[0], kv[1]
		switch k.Value {
		case "score":
			if x.Tag != "!!bool" || x.Value != "true" {
				p.fail(x, errors.E1004, "variable %s: score must be true", v.Name)
			}
		case "objective":
			v.Objective = p.str(x, "objective")
		case "storage":
			v.Kind, v.Target = ast.StorageVar, p.str(x, "storage")
			backends++
		case "entity":
			v.Kind, v.Target = ast.EntityVar, p.str(x, "entity")
			backends++
		case "block":
			v.Kind, v.Target = ast.BlockVar, p.str(x, "block")
			backends++
		case "path":
			v.Path = p.str(x, "path")
		case "type":
			v.Type = p.str(x, "type")
		case "object":
			v.Class = p.str(x, "object")
		default:
			p.unknownKey(k, "variable", varKeys)
		}
	}
	switch {
	case backends > 1:
		p.fail(val, errors.E1004, "variable %s has more than one of storage, entity and block", v.Name)
	case v.Kind == ast.ScoreVar && (v.Path != "" || v.Type != ""):
		p.fail(val, errors.E1004, "variable %s: path and type need storage, entity or block", v.Name)
	case v.Kind != ast.ScoreVar && v.Path == "":
		p.fail(val, errors.E1004, "variable %s has no path", v.Name)
	case v.Kind != ast.ScoreVar && (v.Class != "" || v.Objective != ""):
		p.fail(val, errors.E1004, "variable %s: object and objective need a score", v.Name)
	}
	if v.Kind != ast.ScoreVar && v.Type == "" {
		v.Type = "int"
	}
	return v
}

var functionKeys = []string{"name", "description", "tags", "body"}

func (p *Parser) function(n *yaml.Node) *ast.Function {
	if err := p.ctx.Err(); err != nil {
		return nil
	}
	fn := &ast.Function{At: pos(n)}
	for _, kv := range p.entries(n, "function") {
		k, v := kv[0], kv[1]
		switch k.Value {
		case "name":
			fn.Name = p.str(v, "function name")
		case "description":
			fn.Description = p.str(v, "description")
		case "tags":
			fn.Tags = p.strs(v, "tags")
		case "body":
			fn.Body = p.block(v)
		default:
			p.unknownKey(k, "function", functionKeys)
		}
	}
	if n.Kind != yaml.MappingNode {
		return nil
	}
	if !identPattern.MatchString(fn.Name) {
		p.fail(n, errors.E1004, "invalid function name %q", fn.Name)
		return nil
	}
	return fn
}

var classKeys = []string{"name", "inherits", "attributes", "functions"}

func (p *Parser) class(n *yaml.Node) *ast.Class {
	c := &ast.Class{At: pos(n), Attributes: map[string]string{}}
	for _, kv := range p.entries(n, "class") {
		k, v := kv[0], kv[1]
		switch k.Value {
		case "name":
			c.Name = p.str(v, "class name")
		case "inherits":
			c.Inherits = p.strs(v, "inherits")
		case "attributes":
			for _, a := range p.entries(v, "attributes") {
				if !identPattern.MatchString(a[0].Value) {
					p.fail(a[0], errors.E1004, "invalid attribute name %q", a[0].Value)
					continue
				}
				c.Attributes[a[0].Value] = p.str(a[1], "attribute type")
			}
		case "functions":
			for _, f := range p.seq(v, "functions") {
				if fn := p.function(f); fn != nil {
					c.Functions = append(c.Functions, fn)
				}
			}
		default:
			p.unknownKey(k, "class", classKeys)
		}
	}
	if n.Kind != yaml.MappingNode {
		return nil
	}
	if !identPattern.MatchString(c.Name) {
		p.fail(n, errors.E1004, "invalid class name %q", c.Name)
		return nil
	}
	return c
}

func (p *Parser) block(n *yaml.Node) []ast.Stmt {
	var out []ast.Stmt
	for _, s := range p.seq(n, "body") {
		if stmt := p.statement(s); stmt != nil {
			out = append(out, stmt)
		}
	}
	return out
}

var statementKeys = []string{"set", "add", "op", "while", "if", "call", "return", "cmd", "print", "new"}

func (p *Parser) statement(n *yaml.Node) ast.Stmt {
	if n.Kind != yaml.MappingNode || len(n.Content) != 2 {
		p.fail(n, errors.E1002, "a statement is a mapping with exactly one key, one of: %s",
			strings.Join(statementKeys, ", "))
		return nil
	}
	key, val := n.Content[0], n.Content[1]
	at := pos(key)
	switch key.Value {
	case "set", "add":
		args := p.fields(val, key.Value, "var", "value")
		if args == nil {
			return nil
		}
		dst, src := p.ref(args["var"]), p.operand(args["value"])
		if dst == nil || src == nil {
			return nil
		}
		if key.Value == "set" {
			return &ast.Set{At: at, Var: dst, Value: src}
		}
		return &ast.Add{At: at, Var: dst, Value: src}
	case "op":
		args := p.fields(val, "op", "var", "op", "value")
		if args == nil {
			return nil
		}
		dst, src := p.ref(args["var"]), p.operand(args["value"])
		if dst == nil || src == nil {
			return nil
		}
		return &ast.Op{At: at, Var: dst, Operator: p.str(args["op"], "operator"), Value: src}
	case "while":
		args := p.fields(val, "while", "cond", "body")
		if args == nil {
			return nil
		}
		cond := p.cond(args["cond"])
		body := p.nested(key, args["body"])
		if cond == nil {
			return nil
		}
		return &ast.While{At: at, Cond: cond, Body: body}
	case "if":
		args := p.fields(val, "if", "cond", "then", "?else")
		if args == nil {
			return nil
		}
		cond := p.cond(args["cond"])
		stmt := &ast.If{At: at, Cond: cond, Then: p.nested(key, args["then"])}
		if e, ok := args["else"]; ok {
			stmt.Else = p.nested(key, e)
			if stmt.Else == nil {
				stmt.Else = []ast.Stmt{}
			}
		}
		if cond == nil {
			return nil
		}
		return stmt
	case "call":
		if val.Kind == yaml.ScalarNode {
			return &ast.Call{At: at, Function: p.callee(val)}
		}
		args := p.fields(val, "call", "function", "?arg")
		if args == nil {
			return nil
		}
		call := &ast.Call{At: at, Function: p.callee(args["function"])}
		if a, ok := args["arg"]; ok {
			call.Arg = p.operand(a)
		}
		return call
	case "return":
		if val.Kind == yaml.ScalarNode && val.Tag == "!!null" {
			return &ast.Return{At: at}
		}
		op := p.operand(val)
		if op == nil {
			return nil
		}
		return &ast.Return{At: at, Value: op}
	case "cmd":
		cmd := strings.TrimSpace(p.str(val, "cmd"))
		cmd = strings.TrimPrefix(cmd, "/")
		if cmd == "" {
			p.fail(val, errors.E1002, "cmd must not be empty")
			return nil
		}
		return &ast.Cmd{At: at, Command: cmd}
	case "print":
		return p.print(at, val)
	case "new":
		args := p.fields(val, "new", "class", "var")
		if args == nil {
			return nil
		}
		dst := p.ref(args["var"])
		if dst == nil {
			return nil
		}
		return &ast.New{At: at, Class: p.str(args["class"], "class"), Var: dst}
	}
	err := errors.Syntaxf("unknown statement %q", key.Value).WithLocation(p.filename, key.Line, key.Column)
	err.Code = errors.E1002
	err.Note = errors.FormatSuggestions(errors.SuggestSimilar(key.Value, statementKeys))
	p.errs.Add(err)
	return nil
}

// fields decodes a statement mapping. Names starting with "?" are
// optional.
func (p *Parser) fields(n *yaml.Node, stmt string, names ...string) map[string]*yaml.Node {
	entries := p.entries(n, stmt)
	if entries == nil {
		return nil
	}
	out := map[string]*yaml.Node{}
	allowed := make([]string, len(names))
	for i, name := range names {
		allowed[i] = strings.TrimPrefix(name, "?")
	}
	ok := true
	for _, kv := range entries {
		k := kv[0].Value
		known := false
		for _, a := range allowed {
			known = known || a == k
		}
		if !known {
			p.unknownKey(kv[0], stmt, allowed)
			ok = false
			continue
		}
		out[k] = kv[1]
	}
	for _, name := range names {
		if strings.HasPrefix(name, "?") {
			continue
		}
		if _, found := out[name]; !found {
			p.fail(n, errors.E1002, "%s needs %q", stmt, name)
			ok = false
		}
	}
	if !ok {
		return nil
	}
	return out
}

func (p *Parser) nested(key, body *yaml.Node) []ast.Stmt {
	p.depth++
	defer func() { p.depth-- }()
	if p.depth > p.maxDepth {
		p.fail(key, errors.E1002, "statements nested deeper than %d levels", p.maxDepth)
		return nil
	}
	return p.block(body)
}

func (p *Parser) callee(n *yaml.Node) string {
	name := p.str(n, "function")
	if name != "" && !refPattern.MatchString(name) {
		p.fail(n, errors.E1002, "invalid function reference %q", name)
	}
	return name
}

// ref parses a variable reference.
func (p *Parser) ref(n *yaml.Node) *ast.Operand {
	op := p.operand(n)
	if op != nil && op.Kind != ast.Ident {
		p.fail(n, errors.E1002, "expected a variable, got %s", op)
		return nil
	}
	return op
}

// operand parses a scalar: an integer, a float, a quoted string or a
// variable reference.
func (p *Parser) operand(n *yaml.Node) *ast.Operand {
	if n.Kind != yaml.ScalarNode {
		p.fail(n, errors.E1002, "expected a number, string or variable")
		return nil
	}
	at := pos(n)
	switch n.Tag {
	case "!!int":
		v, err := strconv.ParseInt(n.Value, 0, 64)
		if err != nil {
			p.fail(n, errors.E1002, "invalid integer %q", n.Value)
			return nil
		}
		return &ast.Operand{At: at, Kind: ast.Int, Int: v}
	case "!!float":
		v, err := strconv.ParseFloat(n.Value, 64)
		if err != nil {
			p.fail(n, errors.E1002, "invalid float %q", n.Value)
			return nil
		}
		return &ast.Operand{At: at, Kind: ast.Float, Float: v}
	case "!!str":
		if n.Style&(yaml.DoubleQuotedStyle|yaml.SingleQuotedStyle) != 0 {
			return &ast.Operand{At: at, Kind: ast.String, Str: n.Value}
		}
		return p.ident(n, n.Value)
	}
	p.fail(n, errors.E1002, "expected a number, string or variable, got %q", n.Value)
	return nil
}

func (p *Parser) ident(n *yaml.Node, name string) *ast.Operand {
	if !refPattern.MatchString(name) {
		p.fail(n, errors.E1002, "invalid variable reference %q", name)
		return nil
	}
	return &ast.Operand{At: pos(n), Kind: ast.Ident, Name: name}
}

var condOps = map[string]string{
	"<": "<", "<=": "<=", "=": "=", "==": "=", ">=": ">=", ">": ">", "matches": "matches",
}

// cond parses "<var> <op> <var|int>", "<var> matches <range>" or
// "exists <var>".
func (p *Parser) cond(n *yaml.Node) *ast.Cond {
	if n.Kind != yaml.ScalarNode {
		p.fail(n, errors.E1003, "a condition is a string like \"i < 5\"")
		return nil
	}
	at := pos(n)
	f := strings.Fields(n.Value)
	if len(f) == 2 && f[0] == "exists" {
		left := p.ident(n, f[1])
		if left == nil {
			return nil
		}
		return &ast.Cond{At: at, Left: left, Op: "exists"}
	}
	if len(f) != 3 {
		p.fail(n, errors.E1003, "invalid condition %q", n.Value)
		return nil
	}
	op, ok := condOps[f[1]]
	if !ok {
		p.fail(n, errors.E1003, "invalid comparison %q in condition %q", f[1], n.Value)
		return nil
	}
	left := p.ident(n, f[0])
	if left == nil {
		return nil
	}
	c := &ast.Cond{At: at, Left: left, Op: op}
	if op == "matches" {
		if !rangePattern.MatchString(f[2]) {
			p.fail(n, errors.E1003, "invalid range %q", f[2])
			return nil
		}
		c.Range = f[2]
		return c
	}
	if v, err := strconv.ParseInt(f[2], 10, 32); err == nil {
		c.Right = &ast.Operand{At: at, Kind: ast.Int, Int: v}
		return c
	}
	if c.Right = p.ident(n, f[2]); c.Right == nil {
		return nil
	}
	return c
}

func (p *Parser) print(at ast.Position, n *yaml.Node) ast.Stmt {
	stmt := &ast.Print{At: at, Target: "@a"}
	parts := n
	if n.Kind == yaml.MappingNode {
		args := p.fields(n, "print", "?target", "parts")
		if args == nil {
			return nil
		}
		if t, ok := args["target"]; ok {
			stmt.Target = p.str(t, "target")
		}
		parts = args["parts"]
	}
	items := []*yaml.Node{parts}
	if parts.Kind == yaml.SequenceNode {
		items = parts.Content
	}
	for _, item := range items {
		switch {
		case item.Kind == yaml.MappingNode:
			style := &ast.Style{At: pos(item), Values: map[string]any{}}
			for _, kv := range p.entries(item, "style") {
				var v any
				if err := kv[1].Decode(&v); err != nil {
					p.fail(kv[1], errors.E1002, "invalid style value: %s", err)
					continue
				}
				style.Values[kv[0].Value] = v
			}
			stmt.Parts = append(stmt.Parts, style)
		case item.Kind == yaml.ScalarNode && item.Tag == "!!str" &&
			item.Style&(yaml.DoubleQuotedStyle|yaml.SingleQuotedStyle) != 0:
			stmt.Parts = append(stmt.Parts, &ast.Text{At: pos(item), Value: item.Value})
		default:
			if op := p.operand(item); op != nil {
				stmt.Parts = append(stmt.Parts, op)
			}
		}
	}
	return stmt
}

