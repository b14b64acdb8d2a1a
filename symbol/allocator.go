package symbol

// Allocator creates symbols for one compilation. Creation order defines both
// symbol identity and the order in which the Table resolves collisions, so a
// compilation driven by the same calls always yields the same names.
type Allocator struct {
	next int
}

// NewAllocator returns an allocator whose first symbol gets id 0.
func NewAllocator() *Allocator {
	return &Allocator{}
}

// Seeded returns an allocator whose first symbol gets the given id.
func Seeded(first int) *Allocator {
	return &Allocator{next: first}
}

func (a *Allocator) alloc(kind Kind, text string, owner Owner, args []Name) *Symbol {
	s := &Symbol{id: a.next, kind: kind, text: text, owner: owner, args: args}
	a.next++
	return s
}

// String creates an ordinary unique string.
func (a *Allocator) String(text string, owner Owner) *Symbol {
	return a.alloc(KindString, text, owner, nil)
}

// Tag creates a restricted unique entity tag.
func (a *Allocator) Tag(text string, owner Owner) *Symbol {
	return a.alloc(KindTag, text, owner, nil)
}

// Objective creates a restricted unique scoreboard objective.
func (a *Allocator) Objective(text string, owner Owner) *Symbol {
	return a.alloc(KindObjective, text, owner, nil)
}

// Player creates a restricted unique scoreboard player name.
func (a *Allocator) Player(text string, owner Owner) *Symbol {
	return a.alloc(KindPlayer, text, owner, nil)
}

// Composite creates a symbol that renders format with each %s replaced by
// the final text of the corresponding argument.
func (a *Allocator) Composite(format string, args ...Name) *Symbol {
	return a.alloc(KindComposite, format, nil, args)
}

// PathOf creates a symbol resolving to the path of owner.
func (a *Allocator) PathOf(owner Owner) *Symbol {
	return a.alloc(KindPath, "", owner, nil)
}

// Count returns the number of symbols allocated so far.
func (a *Allocator) Count() int {
	return a.next
}
