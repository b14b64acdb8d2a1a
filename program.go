package datapack

import (
	"github.com/deepnoodle-ai/datapack/ast"
	"github.com/deepnoodle-ai/datapack/namespace"
)

// Program is a program document compiled into a Compilation.
type Program struct {
	root *namespace.Namespace
	tree *ast.Program

	// Metadata
	source   string
	filename string
}

// Source returns the original program document.
func (p *Program) Source() string {
	return p.source
}

// Filename returns the filename associated with this program, if any.
func (p *Program) Filename() string {
	return p.filename
}

// Root returns the namespace the program was compiled into.
func (p *Program) Root() *namespace.Namespace {
	return p.root
}

// FunctionNames returns the names of the program's top-level functions in
// declaration order.
func (p *Program) FunctionNames() []string {
	names := make([]string, len(p.tree.Functions))
	for i, fn := range p.tree.Functions {
		names[i] = fn.Name
	}
	return names
}
