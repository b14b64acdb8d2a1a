package ast

// Visitor defines the interface for tree traversal. If Visit returns nil,
// children of the node are not visited. Otherwise, the returned Visitor
// is used to visit children.
type Visitor interface {
	Visit(node Node) (w Visitor)
}

// Walk traverses a tree in depth-first order. It starts by calling
// v.Visit(node); if the returned visitor w is not nil, Walk is invoked
// recursively with visitor w for each of the non-nil children of node.
func Walk(v Visitor, node Node) {
	if v = v.Visit(node); v == nil {
		return
	}

	switch n := node.(type) {
	case *Program:
		for _, d := range n.Vars {
			Walk(v, d)
		}
		for _, f := range n.Functions {
			Walk(v, f)
		}
		for _, c := range n.Classes {
			Walk(v, c)
		}
	case *Class:
		for _, f := range n.Functions {
			Walk(v, f)
		}
	case *Function:
		walkStmts(v, n.Body)

	// Statements
	case *Set:
		walkOperands(v, n.Var, n.Value)
	case *Add:
		walkOperands(v, n.Var, n.Value)
	case *Op:
		walkOperands(v, n.Var, n.Value)
	case *While:
		Walk(v, n.Cond)
		walkStmts(v, n.Body)
	case *If:
		Walk(v, n.Cond)
		walkStmts(v, n.Then)
		walkStmts(v, n.Else)
	case *Call:
		walkOperands(v, n.Arg)
	case *Return:
		walkOperands(v, n.Value)
	case *New:
		walkOperands(v, n.Var)
	case *Print:
		for _, p := range n.Parts {
			Walk(v, p)
		}

	case *Cond:
		walkOperands(v, n.Left, n.Right)
	}
}

func walkStmts(v Visitor, stmts []Stmt) {
	for _, s := range stmts {
		Walk(v, s)
	}
}

func walkOperands(v Visitor, ops ...*Operand) {
	for _, o := range ops {
		if o != nil {
			Walk(v, o)
		}
	}
}

type inspector func(Node) bool

func (f inspector) Visit(node Node) Visitor {
	if f(node) {
		return f
	}
	return nil
}

// Inspect traverses a tree in depth-first order. It calls f(node) for each
// node; if f returns true, Inspect continues with the children of node.
func Inspect(node Node, f func(Node) bool) {
	Walk(inspector(f), node)
}
