// Package compiler lowers a parsed program document onto the namespace
// graph.
//
// # Two-Pass Compilation Strategy
//
// The compiler uses a two-pass approach to handle forward references. This
// allows functions to call functions that are declared later in the
// document.
//
// Pass 1: collectDeclarations
//
// Creates the program's root namespace, every declared variable, every class
// with its methods and every function. Subroutines are created empty, so
// their entry blocks can already be called.
//
// Pass 2: compile
//
// Compiles each function body into its subroutine, lowering statements
// through the conversion engine and the control-flow API, then ends the
// subroutine.
//
// Errors are collected per function: compilation of a function stops at its
// first error and continues with the next function.
package compiler

import (
	"context"
	"fmt"
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/deepnoodle-ai/datapack/ast"
	"github.com/deepnoodle-ai/datapack/command"
	"github.com/deepnoodle-ai/datapack/convert"
	"github.com/deepnoodle-ai/datapack/errors"
	"github.com/deepnoodle-ai/datapack/namespace"
	"github.com/deepnoodle-ai/datapack/std"
	"github.com/deepnoodle-ai/datapack/symbol"
	"github.com/deepnoodle-ai/datapack/text"
	"github.com/deepnoodle-ai/datapack/types"
	"github.com/deepnoodle-ai/datapack/value"
)

// Config holds compiler configuration options.
type Config struct {
	// Env is the environment of the compilation. Required.
	Env *namespace.Env

	// Lib is the installed standard library. Without it, return values,
	// call arguments and objects are unavailable.
	Lib *std.Library

	// Filename is the source filename, used for error messages.
	Filename string
}

// Compiler compiles one program.
type Compiler struct {
	ctx      context.Context
	env      *namespace.Env
	lib      *std.Library
	filename string
	text     *text.Builder

	root      *namespace.Namespace
	vars      map[string]*variable
	functions map[string]*namespace.Subroutine
	classes   map[string]*class

	// State of the function being compiled
	fn   *namespace.Subroutine
	self *variable

	errs errors.CompileErrors
}

type variable struct {
	decl  *ast.VarDecl
	value value.Variable
	// class is set for variables holding an object id.
	class *class
}

type class struct {
	decl    *ast.Class
	ns      *namespace.Class
	parents []*class
	attrs   map[string]types.DataType
}

// attribute resolves an attribute in the class itself, then in each parent
// depth-first, left to right.
func (c *class) attribute(name string) (types.DataType, bool) {
	if t, ok := c.attrs[name]; ok {
		return t, true
	}
	for _, p := range c.parents {
		if t, ok := p.attribute(name); ok {
			return t, true
		}
	}
	return types.DataType{}, false
}

func (c *class) isSubclassOf(other *class) bool {
	return c.ns.IsSubclassOf(other.ns)
}

// Names reserved for the argument and return registers and for the object
// a method runs on.
const (
	argName  = "arg"
	retName  = "ret"
	selfName = "self"
)

// New returns a compiler for cfg.
func New(cfg *Config) (*Compiler, error) {
	if cfg == nil || cfg.Env == nil {
		return nil, errors.InvariantViolationf("compiler needs an environment")
	}
	c := &Compiler{
		env:       cfg.Env,
		lib:       cfg.Lib,
		filename:  cfg.Filename,
		vars:      map[string]*variable{},
		functions: map[string]*namespace.Subroutine{},
		classes:   map[string]*class{},
	}
	if c.lib != nil {
		c.text = c.lib.Text
	} else {
		c.text = text.New(cfg.Env.Convert, nil)
	}
	return c, nil
}

// Compile compiles prog into a new root namespace.
func Compile(ctx context.Context, prog *ast.Program, cfg *Config) (*namespace.Namespace, error) {
	c, err := New(cfg)
	if err != nil {
		return nil, err
	}
	return c.Compile(ctx, prog)
}

// Compile compiles prog and returns its root namespace.
func (c *Compiler) Compile(ctx context.Context, prog *ast.Program) (*namespace.Namespace, error) {
	c.ctx = ctx

	// First pass: declarations, so calls may refer to later functions
	if err := c.collectDeclarations(prog); err != nil {
		return nil, err
	}

	// Second pass: function bodies
	for _, fn := range prog.Functions {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		c.compileFunction(fn, c.functions[fn.Name], nil)
	}
	for _, decl := range prog.Classes {
		cls := c.classes[decl.Name]
		for _, fn := range decl.Functions {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			sub, _ := cls.ns.Namespace.Get(fn.Name)
			c.compileFunction(fn, sub.(*namespace.Subroutine), cls)
		}
	}
	if err := c.errs.ToError(); err != nil {
		return nil, err
	}
	// Check for failures recorded by the graph itself
	if err := c.env.Err(); err != nil {
		return nil, err
	}
	return c.root, nil
}

var namespacePattern = regexp.MustCompile(`^[a-z0-9_.\-]+$`)

func (c *Compiler) collectDeclarations(prog *ast.Program) error {
	if !namespacePattern.MatchString(prog.Namespace) {
		return c.errorAt(prog, errors.InvalidNamef(
			"invalid namespace %q: use lowercase letters, digits, '_', '-' and '.'", prog.Namespace))
	}
	if c.lib != nil && prog.Namespace == c.lib.Root.Name() {
		return c.errorAt(prog, errors.InvalidNamef(
			"namespace %q is taken by the standard library", prog.Namespace))
	}
	c.root = namespace.New(c.env, prog.Namespace)

	for _, decl := range prog.Classes {
		if err := c.declareClass(decl); err != nil {
			return err
		}
	}
	for _, decl := range prog.Vars {
		if err := c.declareVar(decl); err != nil {
			return err
		}
	}
	for _, fn := range prog.Functions {
		if _, found := c.functions[fn.Name]; found {
			return c.errorAt(fn, errors.Syntaxf("function %q redefined", fn.Name))
		}
		if _, found := c.classes[fn.Name]; found {
			return c.errorAt(fn, errors.Syntaxf("function %q has the name of a class", fn.Name))
		}
		opts := []namespace.FunctionOption{}
		if fn.Description != "" {
			opts = append(opts, namespace.WithDescription(fn.Description))
		}
		for _, tag := range fn.Tags {
			opts = append(opts, namespace.WithTags(c.tag(tag)))
		}
		c.functions[fn.Name] = c.root.CreateFunction(fn.Name, opts...)
	}
	return nil
}

// tag returns the tag named by s. Names with a namespace, like
// "minecraft:load", are external; others are tags of the program.
func (c *Compiler) tag(s string) command.Target {
	if strings.Contains(s, ":") {
		return namespace.ExternalTag(s)
	}
	return c.root.CreateFunctionTag(s)
}

func (c *Compiler) declareClass(decl *ast.Class) error {
	if _, found := c.classes[decl.Name]; found {
		return c.errorAt(decl, errors.Syntaxf("class %q redefined", decl.Name))
	}
	cls := &class{decl: decl, attrs: map[string]types.DataType{}}
	var parents []*namespace.Class
	for _, name := range decl.Inherits {
		if name == "object" {
			if c.lib == nil {
				return c.errorAt(decl, errors.Unsupportedf("class %s inherits object, which needs the standard library", decl.Name))
			}
			parents = append(parents, c.lib.Object.Class)
			continue
		}
		parent, ok := c.classes[name]
		if !ok {
			err := errors.Undefinedf("class %s inherits unknown class %q", decl.Name, name)
			err.Note = errors.FormatSuggestions(errors.SuggestSimilar(name, c.classNames()))
			return c.errorAt(decl, err)
		}
		cls.parents = append(cls.parents, parent)
		parents = append(parents, parent.ns)
	}
	for name, typeName := range decl.Attributes {
		t, err := types.Parse(typeName)
		if err != nil {
			return c.errorAt(decl, errors.Syntaxf("attribute %s.%s: %s", decl.Name, name, err))
		}
		cls.attrs[name] = t
	}
	cls.ns = c.root.CreateClass(decl.Name, parents...)
	seen := map[string]bool{}
	for _, fn := range decl.Functions {
		if seen[fn.Name] {
			return c.errorAt(fn, errors.Syntaxf("method %s.%s redefined", decl.Name, fn.Name))
		}
		seen[fn.Name] = true
		opts := []namespace.FunctionOption{}
		if fn.Description != "" {
			opts = append(opts, namespace.WithDescription(fn.Description))
		}
		for _, tag := range fn.Tags {
			opts = append(opts, namespace.WithTags(c.tag(tag)))
		}
		cls.ns.CreateFunction(fn.Name, opts...)
	}
	c.classes[decl.Name] = cls
	return nil
}

func (c *Compiler) declareVar(decl *ast.VarDecl) error {
	switch decl.Name {
	case argName, retName, selfName:
		err := errors.InvalidNamef("variable name %q is reserved", decl.Name)
		err.Code = errors.E1004
		return c.errorAt(decl, err)
	}
	v := &variable{decl: decl}
	switch decl.Kind {
	case ast.ScoreVar:
		if decl.Objective != "" {
			v.value = c.root.ScoreVarIn(decl.Name, symbol.Lit(decl.Objective))
		} else {
			v.value = c.root.ScoreVar(decl.Name)
		}
		if decl.Class != "" {
			cls, ok := c.classes[decl.Class]
			if !ok {
				err := errors.Undefinedf("variable %s holds unknown class %q", decl.Name, decl.Class)
				err.Note = errors.FormatSuggestions(errors.SuggestSimilar(decl.Class, c.classNames()))
				return c.errorAt(decl, err)
			}
			v.class = cls
		}
	default:
		t, err := types.Parse(decl.Type)
		if err != nil {
			return c.errorAt(decl, errors.Syntaxf("variable %s: %s", decl.Name, err))
		}
		container, err := value.ParseContainer(decl.Kind.String())
		if err != nil {
			return c.errorAt(decl, errors.Syntaxf("variable %s: %s", decl.Name, err))
		}
		v.value = value.Structured(container, symbol.Lit(decl.Target), decl.Path, t)
	}
	c.vars[decl.Name] = v
	return nil
}

func (c *Compiler) classNames() []string {
	names := make([]string, 0, len(c.classes)+1)
	for name := range c.classes {
		names = append(names, name)
	}
	if c.lib != nil {
		names = append(names, "object")
	}
	sort.Strings(names)
	return names
}

func (c *Compiler) compileFunction(decl *ast.Function, sub *namespace.Subroutine, cls *class) {
	frame := "function " + decl.Name
	if cls != nil {
		frame = fmt.Sprintf("method %s.%s", cls.decl.Name, decl.Name)
	}
	leave := c.enter(frame)
	defer leave()

	c.fn, c.self = sub, nil
	if cls != nil && c.lib != nil {
		// Methods receive the object id in the argument register.
		c.self = &variable{value: sub.ScoreVar(selfName), class: cls}
		if err := sub.Move(c.lib.Arg, c.self.value); err != nil {
			c.errs.Add(c.located(decl, err))
			return
		}
	}
	if err := c.compileBody(decl.Body); err != nil {
		c.errs.Add(c.located(decl, err))
	}
	sub.End()
}

// compileBody compiles stmts into the current function.
func (c *Compiler) compileBody(stmts []ast.Stmt) error {
	for i, stmt := range stmts {
		if err := c.compileStmt(stmt); err != nil {
			return err
		}
		if _, ok := stmt.(*ast.Return); ok && i < len(stmts)-1 {
			return c.errorAt(stmts[i+1], errors.Syntaxf("statement after return is unreachable"))
		}
	}
	return nil
}

// compileNested compiles stmts into sub, which is ended afterwards.
func (c *Compiler) compileNested(sub *namespace.Subroutine, stmts []ast.Stmt) error {
	outer := c.fn
	c.fn = sub
	defer func() { c.fn = outer }()
	if err := c.compileBody(stmts); err != nil {
		return err
	}
	sub.End()
	return nil
}

func (c *Compiler) compileStmt(stmt ast.Stmt) error {
	var err error
	switch s := stmt.(type) {
	case *ast.Set:
		err = c.compileSet(s)
	case *ast.Add:
		err = c.compileAdd(s)
	case *ast.Op:
		err = c.compileOp(s)
	case *ast.While:
		err = c.compileWhile(s)
	case *ast.If:
		err = c.compileIf(s)
	case *ast.Call:
		err = c.compileCall(s)
	case *ast.Return:
		err = c.compileReturn(s)
	case *ast.Cmd:
		err = c.fn.Add(command.Text(s.Command))
	case *ast.Print:
		err = c.compilePrint(s)
	case *ast.New:
		err = c.compileNew(s)
	default:
		err = errors.Syntaxf("unknown statement %s", stmt)
	}
	if err != nil {
		return c.errorAt(stmt, err)
	}
	return nil
}

func (c *Compiler) compileSet(s *ast.Set) error {
	dst, err := c.variable(s.Var)
	if err != nil {
		return err
	}
	src, err := c.operand(s.Value, dst.Type())
	if err != nil {
		return err
	}
	return c.fn.Move(src, dst)
}

func (c *Compiler) compileAdd(s *ast.Add) error {
	dst, err := c.variable(s.Var)
	if err != nil {
		return err
	}
	delta, err := c.operand(s.Value, dst.Type())
	if err != nil {
		return err
	}
	return c.fn.AddInPlace(dst, delta)
}

func (c *Compiler) compileWhile(s *ast.While) error {
	cond, err := c.condition(s.Cond)
	if err != nil {
		return err
	}
	body, err := c.fn.While(cond)
	if err != nil {
		return err
	}
	return c.compileNested(body, s.Body)
}

func (c *Compiler) compileIf(s *ast.If) error {
	cond, err := c.condition(s.Cond)
	if err != nil {
		return err
	}
	if s.Else == nil {
		then, err := c.fn.If(cond)
		if err != nil {
			return err
		}
		return c.compileNested(then, s.Then)
	}
	then, els, err := c.fn.IfElse(cond)
	if err != nil {
		return err
	}
	if err := c.compileNested(then, s.Then); err != nil {
		return err
	}
	return c.compileNested(els, s.Else)
}

func (c *Compiler) compileCall(s *ast.Call) error {
	callee, err := c.callee(s.Function)
	if err != nil {
		return err
	}
	if s.Arg == nil {
		return c.fn.Call(callee.EntryTarget())
	}
	if c.lib == nil {
		return errors.Unsupportedf("call arguments need the standard library")
	}
	arg, err := c.operand(s.Arg, types.Any)
	if err != nil {
		return err
	}
	return c.lib.Call(c.fn, callee, arg)
}

// callee resolves "function" or "class.method".
func (c *Compiler) callee(name string) (*namespace.Subroutine, error) {
	className, method, isMethod := strings.Cut(name, ".")
	if !isMethod {
		if sub, ok := c.functions[name]; ok {
			return sub, nil
		}
		names := make([]string, 0, len(c.functions))
		for n := range c.functions {
			names = append(names, n)
		}
		err := errors.UndefinedFunctionf("undefined function %q", name)
		err.Note = errors.FormatSuggestions(errors.SuggestSimilar(name, names))
		return nil, err
	}
	cls, ok := c.classes[className]
	if !ok {
		err := errors.UndefinedFunctionf("undefined class %q", className)
		err.Note = errors.FormatSuggestions(errors.SuggestSimilar(className, c.classNames()))
		return nil, err
	}
	e, ok := cls.ns.Get(method)
	if !ok {
		return nil, errors.UndefinedFunctionf("class %s has no method %q", className, method)
	}
	sub, ok := e.(*namespace.Subroutine)
	if !ok {
		return nil, errors.UndefinedFunctionf("%s of class %s is not a method", method, className)
	}
	return sub, nil
}

func (c *Compiler) compileReturn(s *ast.Return) error {
	if s.Value == nil {
		return c.fn.Return(nil)
	}
	v, err := c.operand(s.Value, types.Any)
	if err != nil {
		return err
	}
	return c.fn.Return(v)
}

func (c *Compiler) compilePrint(s *ast.Print) error {
	parts := make([]any, 0, len(s.Parts))
	for _, p := range s.Parts {
		switch p := p.(type) {
		case *ast.Text:
			parts = append(parts, p.Value)
		case *ast.Style:
			style := text.Style{}
			for k, v := range p.Values {
				if v == nil {
					style[k] = text.Unset
				} else {
					style[k] = v
				}
			}
			parts = append(parts, style)
		case *ast.Operand:
			v, err := c.operand(p, types.Any)
			if err != nil {
				return err
			}
			parts = append(parts, v)
		}
	}
	cmds, err := c.text.Print(symbol.Lit(s.Target), parts...)
	if err != nil {
		return err
	}
	return c.fn.Add(cmds...)
}

func (c *Compiler) compileNew(s *ast.New) error {
	if c.lib == nil {
		return errors.Unsupportedf("objects need the standard library")
	}
	cls, ok := c.classes[s.Class]
	if !ok {
		err := errors.Undefinedf("undefined class %q", s.Class)
		err.Note = errors.FormatSuggestions(errors.SuggestSimilar(s.Class, c.classNames()))
		return err
	}
	v, err := c.lookup(s.Var)
	if err != nil {
		return err
	}
	if v.class != nil && !cls.isSubclassOf(v.class) {
		return errors.IncompatibleTypef("cannot store a %s object in %s, which holds %s objects",
			s.Class, s.Var.Name, v.class.decl.Name)
	}
	return c.lib.NewObject(c.fn, cls.ns, v.value)
}

// enter pushes a compiled-context frame for warnings.
func (c *Compiler) enter(frame string) func() {
	if c.env.Diagnostics == nil {
		return func() {}
	}
	return c.env.Diagnostics.Enter(frame)
}

func (c *Compiler) context() []string {
	if c.env.Diagnostics == nil {
		return nil
	}
	return c.env.Diagnostics.Context()
}

// errorAt positions a compile error at n unless it already has a location.
func (c *Compiler) errorAt(n ast.Node, err error) error {
	var ce *errors.CompileError
	if !errors.As(err, &ce) || ce.Line > 0 {
		return err
	}
	pos := n.Pos()
	located := ce.WithLocation(c.filename, pos.Line, pos.Column)
	if len(located.Context) == 0 {
		located.Context = c.context()
	}
	return located
}

// located is errorAt returning a *CompileError for collection.
func (c *Compiler) located(n ast.Node, err error) *errors.CompileError {
	var ce *errors.CompileError
	if errors.As(c.errorAt(n, err), &ce) {
		return ce
	}
	return &errors.CompileError{
		Code:     errors.E2004,
		Kind:     errors.InvariantViolation,
		Message:  err.Error(),
		Filename: c.filename,
		Line:     n.Pos().Line,
		Column:   n.Pos().Column,
		Context:  c.context(),
	}
}

func (c *Compiler) compileOp(s *ast.Op) error {
	dst, err := c.variable(s.Var)
	if err != nil {
		return err
	}
	score, ok := dst.(*value.ScoreboardVar)
	if !ok {
		return errors.Unsupportedf("operation %s needs a score variable, got %s", s.Operator, s.Var.Name)
	}
	op, err := convert.ParseOperation(s.Operator)
	if err != nil {
		return err
	}
	other, err := c.operand(s.Value, types.Int)
	if err != nil {
		return err
	}
	cmds, err := c.env.Convert.ExprOp(score, op, other)
	if err != nil {
		return err
	}
	return c.fn.Add(cmds...)
}

// lookup resolves a plain identifier.
func (c *Compiler) lookup(op *ast.Operand) (*variable, error) {
	if op.Kind != ast.Ident {
		return nil, errors.Syntaxf("expected a variable, got %s", op)
	}
	switch op.Name {
	case argName, retName:
		if c.lib == nil {
			return nil, errors.Unsupportedf("%s needs the standard library", op.Name)
		}
		if op.Name == argName {
			return &variable{value: c.lib.Arg}, nil
		}
		return &variable{value: c.lib.Ret}, nil
	case selfName:
		if c.self == nil {
			return nil, errors.Undefinedf("self is only defined in methods")
		}
		return c.self, nil
	}
	if v, ok := c.vars[op.Name]; ok {
		return v, nil
	}
	names := make([]string, 0, len(c.vars))
	for name := range c.vars {
		names = append(names, name)
	}
	err := errors.Undefinedf("undefined variable %q", op.Name)
	err.Note = errors.FormatSuggestions(errors.SuggestSimilar(op.Name, names))
	return nil, err
}

// variable resolves a variable or an "obj.attr" object attribute.
func (c *Compiler) variable(op *ast.Operand) (value.Variable, error) {
	objName, attr, isAttr := op.Attribute()
	if !isAttr {
		v, err := c.lookup(op)
		if err != nil {
			return nil, err
		}
		return v.value, nil
	}
	obj, err := c.lookup(&ast.Operand{At: op.At, Kind: ast.Ident, Name: objName})
	if err != nil {
		return nil, err
	}
	if obj.class == nil {
		return nil, errors.IncompatibleTypef("%s does not hold an object", objName)
	}
	typ, ok := obj.class.attribute(attr)
	if !ok {
		names := make([]string, 0, len(obj.class.attrs))
		for name := range obj.class.attrs {
			names = append(names, name)
		}
		err := errors.Undefinedf("class %s has no attribute %q", obj.class.decl.Name, attr)
		err.Note = errors.FormatSuggestions(errors.SuggestSimilar(attr, names))
		return nil, err
	}
	return c.lib.Attribute(obj.value, attr, typ), nil
}

// operand resolves a statement operand. Number literals take the kind of
// want when it is concrete.
func (c *Compiler) operand(op *ast.Operand, want types.DataType) (value.Value, error) {
	switch op.Kind {
	case ast.Int:
		return intLiteral(op.Int, want)
	case ast.Float:
		if want.Kind() == types.KindFloat {
			return value.Float(float32(op.Float)), nil
		}
		return value.Double(op.Float), nil
	case ast.String:
		return value.String(op.Str), nil
	default:
		return c.variable(op)
	}
}

func intLiteral(n int64, want types.DataType) (value.Value, error) {
	inRange := func(lo, hi int64) error {
		if n < lo || n > hi {
			return errors.IncompatibleTypef("%d does not fit in a %s", n, want)
		}
		return nil
	}
	switch want.Kind() {
	case types.KindByte:
		if err := inRange(math.MinInt8, math.MaxInt8); err != nil {
			return nil, err
		}
		return value.Byte(int8(n)), nil
	case types.KindShort:
		if err := inRange(math.MinInt16, math.MaxInt16); err != nil {
			return nil, err
		}
		return value.Short(int16(n)), nil
	case types.KindLong:
		return value.Long(n), nil
	case types.KindFloat:
		return value.Float(float32(n)), nil
	case types.KindDouble, types.KindFloatingPoint:
		return value.Double(float64(n)), nil
	}
	if n < math.MinInt32 || n > math.MaxInt32 {
		return nil, errors.IncompatibleTypef("%d does not fit in an int", n)
	}
	return value.Int(n), nil
}

// condition lowers a loop or branch condition. Comparisons need a score on
// the left; comparisons with a literal become a matches range.
func (c *Compiler) condition(cond *ast.Cond) (value.Condition, error) {
	left, err := c.variable(cond.Left)
	if err != nil {
		return value.Condition{}, err
	}
	if cond.Op == "exists" {
		sv, ok := left.(*value.StructuredVar)
		if !ok {
			return value.Condition{}, errors.Unsupportedf("exists needs a storage, entity or block variable, got %s", cond.Left)
		}
		return value.DataExists(sv), nil
	}
	score, ok := left.(*value.ScoreboardVar)
	if !ok {
		return value.Condition{}, errors.Unsupportedf("condition %s needs a score variable on the left", cond)
	}
	if cond.Op == "matches" {
		return value.ScoreMatches(score, cond.Range), nil
	}
	switch cond.Right.Kind {
	case ast.Int:
		rng, err := literalRange(cond.Op, cond.Right.Int)
		if err != nil {
			return value.Condition{}, err
		}
		return value.ScoreMatches(score, rng), nil
	case ast.Ident:
		right, err := c.variable(cond.Right)
		if err != nil {
			return value.Condition{}, err
		}
		other, ok := right.(*value.ScoreboardVar)
		if !ok {
			return value.Condition{}, errors.Unsupportedf("condition %s needs a score variable on the right", cond)
		}
		return value.ScoreCompare(score, cond.Op, other), nil
	}
	return value.Condition{}, errors.Unsupportedf("condition %s compares with a %s", cond, cond.Right)
}

func literalRange(op string, n int64) (string, error) {
	switch op {
	case "<":
		return fmt.Sprintf("..%d", n-1), nil
	case "<=":
		return fmt.Sprintf("..%d", n), nil
	case "=":
		return strconv.FormatInt(n, 10), nil
	case ">=":
		return fmt.Sprintf("%d..", n), nil
	case ">":
		return fmt.Sprintf("%d..", n+1), nil
	}
	return "", errors.Unsupportedf("unknown comparison %q", op)
}
