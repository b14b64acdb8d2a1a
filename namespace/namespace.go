// Package namespace implements the graph of namespaces, subroutines and
// instruction blocks a program is compiled into, and the lowering of if and
// while into that graph.
//
// The graph is a single-owner tree. Every entity is created through a factory
// on its parent and is never removed. Parents are back-references used only
// to compute paths.
package namespace

import (
	"strings"

	"github.com/hashicorp/go-multierror"

	"github.com/deepnoodle-ai/datapack/command"
	"github.com/deepnoodle-ai/datapack/errors"
	"github.com/deepnoodle-ai/datapack/symbol"
	"github.com/deepnoodle-ai/datapack/value"
)

// Entity is a named member of the graph.
type Entity interface {
	Name() string
	Path() []string
}

type node struct {
	name   string
	parent *Namespace
}

func (n *node) Name() string {
	return n.name
}

// Path returns the names from the root down to this entity.
func (n *node) Path() []string {
	if n.parent == nil {
		return []string{n.name}
	}
	return append(n.parent.Path(), n.name)
}

// Parent returns the containing namespace, or nil for a root.
func (n *node) Parent() *Namespace {
	return n.parent
}

// Namespace is an ordered mapping from child name to entity.
type Namespace struct {
	node
	env      *Env
	order    []string
	children map[string]Entity
}

// New returns a root namespace.
func New(env *Env, name string) *Namespace {
	ns := &Namespace{}
	ns.init(env, name, nil)
	return ns
}

func (ns *Namespace) init(env *Env, name string, parent *Namespace) {
	ns.node = node{name: name, parent: parent}
	ns.env = env
	ns.children = map[string]Entity{}
}

// Env returns the compilation environment.
func (ns *Namespace) Env() *Env {
	return ns.env
}

func (ns *Namespace) add(name string, e Entity) {
	if _, ok := ns.children[name]; ok {
		ns.env.Fail(errors.InvariantViolationf("%s already has a child named %q", symbol.JoinPath(ns.Path()), name))
		return
	}
	ns.order = append(ns.order, name)
	ns.children[name] = e
}

// Get returns the direct child with the given name.
func (ns *Namespace) Get(name string) (Entity, bool) {
	e, ok := ns.children[name]
	return e, ok
}

// Lookup follows a slash-separated path of child names.
func (ns *Namespace) Lookup(path string) (Entity, bool) {
	var cur Entity = ns
	for _, part := range strings.Split(path, "/") {
		c, ok := cur.(container)
		if !ok {
			return nil, false
		}
		next, ok := c.Get(part)
		if !ok {
			return nil, false
		}
		cur = next
	}
	return cur, true
}

type container interface {
	Get(name string) (Entity, bool)
}

// Children returns the children in creation order.
func (ns *Namespace) Children() []Entity {
	out := make([]Entity, 0, len(ns.order))
	for _, name := range ns.order {
		out = append(out, ns.children[name])
	}
	return out
}

// CreateNamespace creates a child namespace.
func (ns *Namespace) CreateNamespace(name string) *Namespace {
	child := &Namespace{}
	child.init(ns.env, name, ns)
	ns.add(name, child)
	return child
}

// CreateBlock creates a child instruction block.
func (ns *Namespace) CreateBlock(name string) *Block {
	b := &Block{node: node{name: name, parent: ns}}
	ns.add(name, b)
	return b
}

// CreateFunctionTag creates a function tag named after this namespace. Tags
// are not children; they only take the namespace's path.
func (ns *Namespace) CreateFunctionTag(name string) *FunctionTag {
	return &FunctionTag{node: node{name: name, parent: ns}}
}

// ScoreVar returns a score with a fresh player symbol owned by this namespace
// in the environment's objective.
func (ns *Namespace) ScoreVar(player string) *value.ScoreboardVar {
	return ns.ScoreVarIn(player, ns.env.Objective)
}

// ScoreVarIn is ScoreVar with an explicit objective.
func (ns *Namespace) ScoreVarIn(player string, objective symbol.Name) *value.ScoreboardVar {
	return value.Score(ns.env.Symbols.Player(player, ns), objective)
}

// Blocks returns every instruction block below ns in creation order. Every
// subroutine found must have been ended.
func (ns *Namespace) Blocks() ([]*Block, error) {
	var result *multierror.Error
	if err := ns.env.Err(); err != nil {
		result = multierror.Append(result, err)
	}
	var out []*Block
	ns.collect(&out, &result)
	return out, result.ErrorOrNil()
}

func (ns *Namespace) collect(out *[]*Block, result **multierror.Error) {
	for _, name := range ns.order {
		switch child := ns.children[name].(type) {
		case *Block:
			*out = append(*out, child)
		case *Subroutine:
			if !child.ended {
				*result = multierror.Append(*result,
					errors.InvariantViolationf("function %s was not ended", symbol.JoinPath(child.Path())))
			}
			child.collect(out, result)
		case *Class:
			child.collect(out, result)
		case *Template:
			child.collect(out, result)
		case *Namespace:
			child.collect(out, result)
		}
	}
}

// FunctionTag is a tag functions may be added to.
type FunctionTag struct {
	node
}

// ExternalTag is a tag defined outside the pack, e.g. "minecraft:load".
type ExternalTag string

// Path splits the tag into its namespace and path parts.
func (t ExternalTag) Path() []string {
	ns, rest, ok := strings.Cut(string(t), ":")
	if !ok {
		return []string{"minecraft", string(t)}
	}
	return append([]string{ns}, strings.Split(rest, "/")...)
}

// Block is a single instruction list, written out as one function file.
type Block struct {
	node
	tags         []command.Target
	description  string
	commands     []command.Command
	continuation *Block
}

// Add appends commands.
func (b *Block) Add(cmds ...command.Command) {
	b.commands = append(b.commands, cmds...)
}

// Commands returns the commands in order, without the continuation call.
func (b *Block) Commands() []command.Command {
	return b.commands
}

// Tag adds the block to a tag, a *FunctionTag or an ExternalTag.
func (b *Block) Tag(tags ...command.Target) {
	b.tags = append(b.tags, tags...)
}

// Tags returns the tags the block belongs to.
func (b *Block) Tags() []command.Target {
	return b.tags
}

func (b *Block) Describe(description string) {
	b.description = description
}

func (b *Block) Description() string {
	return b.description
}

// Continuation returns the block invoked after this block's commands, or nil.
func (b *Block) Continuation() *Block {
	return b.continuation
}
