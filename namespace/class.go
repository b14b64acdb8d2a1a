package namespace

// Class is a namespace whose member lookup falls back to its parents.
type Class struct {
	Namespace
	parents []*Class
}

// CreateClass creates a child class inheriting from parents, searched in
// the given order.
func (ns *Namespace) CreateClass(name string, parents ...*Class) *Class {
	c := &Class{parents: parents}
	c.init(ns.env, name, ns)
	ns.add(name, c)
	return c
}

// Parents returns the direct parents in declaration order.
func (c *Class) Parents() []*Class {
	return c.parents
}

// Get resolves name in the class itself, then in each parent depth-first,
// left to right.
func (c *Class) Get(name string) (Entity, bool) {
	if e, ok := c.Namespace.Get(name); ok {
		return e, true
	}
	for _, p := range c.parents {
		if e, ok := p.Get(name); ok {
			return e, true
		}
	}
	return nil, false
}

// IsSubclassOf reports whether c is other or inherits from it.
func (c *Class) IsSubclassOf(other *Class) bool {
	if c == other {
		return true
	}
	for _, p := range c.parents {
		if p.IsSubclassOf(other) {
			return true
		}
	}
	return false
}
