// Package symbol implements compile-time identifiers whose final text is
// only decided at emission time.
//
// A Symbol has a base text, an optional owner whose path qualifies it, and a
// Kind. Symbols are compared by identity: two symbols created from the same
// text are distinct and may resolve to different strings. The Table resolves
// symbols to unique strings, appending ".2", ".3", ... on collision.
package symbol

import (
	"fmt"
	"regexp"
	"strings"
)

// Kind selects how a symbol is qualified and checked.
type Kind uint8

const (
	// KindString is an ordinary unique string, qualified by the slash path
	// of its owner.
	KindString Kind = iota
	// KindTag, KindObjective and KindPlayer are restricted unique strings,
	// qualified with dots only and limited to RestrictedPattern.
	KindTag
	KindObjective
	KindPlayer
	// KindComposite is a template over other names. It is never
	// collision-checked.
	KindComposite
	// KindPath resolves to the path of its owner.
	KindPath
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindTag:
		return "tag"
	case KindObjective:
		return "objective"
	case KindPlayer:
		return "player"
	case KindComposite:
		return "composite"
	case KindPath:
		return "path"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Restricted reports whether symbols of this kind are charset-limited.
func (k Kind) Restricted() bool {
	return k == KindTag || k == KindObjective || k == KindPlayer
}

// RestrictedPattern is the charset restricted symbols must match.
var RestrictedPattern = regexp.MustCompile(`^[a-zA-Z0-9_+\-.]+$`)

// Owner is anything with a root-first path, typically a namespace entity.
type Owner interface {
	Path() []string
}

// Name is either a literal token (Lit) or a *Symbol. It is the argument type
// of command templates.
type Name interface {
	String() string
	name()
}

// Lit is a literal token that renders as itself.
type Lit string

func (l Lit) String() string { return string(l) }

func (Lit) name() {}

// Symbol is a not-yet-finalized name.
type Symbol struct {
	id    int
	kind  Kind
	text  string
	owner Owner
	args  []Name
}

func (s *Symbol) name() {}

// ID returns the creation-order identifier assigned by the allocator.
func (s *Symbol) ID() int { return s.id }

// Kind returns the symbol kind.
func (s *Symbol) Kind() Kind { return s.kind }

// Text returns the base text, or the format of a composite symbol.
func (s *Symbol) Text() string { return s.text }

// Owner returns the owning entity, if any.
func (s *Symbol) Owner() Owner { return s.owner }

// Args returns the operands of a composite symbol.
func (s *Symbol) Args() []Name { return s.args }

func (s *Symbol) String() string {
	return fmt.Sprintf("%s[%d](%q)", s.kind, s.id, s.text)
}

// JoinPath renders a path as "first:rest/joined". This is the form function
// and storage identifiers take in the target.
func JoinPath(path []string) string {
	if len(path) == 0 {
		return ""
	}
	if len(path) == 1 {
		return path[0] + ":"
	}
	return path[0] + ":" + strings.Join(path[1:], "/")
}

// JoinRestricted renders a path using dots only, which keeps it inside
// RestrictedPattern when each part does.
func JoinRestricted(path []string) string {
	return strings.Join(path, ".")
}

// Collect returns every symbol the names depend on, including the operands of
// composite symbols, without duplicates and in first-seen order.
func Collect(names ...Name) []*Symbol {
	var out []*Symbol
	seen := map[*Symbol]bool{}
	var walk func(n Name)
	walk = func(n Name) {
		s, ok := n.(*Symbol)
		if !ok || seen[s] {
			return
		}
		seen[s] = true
		for _, arg := range s.args {
			walk(arg)
		}
		out = append(out, s)
	}
	for _, n := range names {
		walk(n)
	}
	return out
}

// Resolver maps a symbol to its final text.
type Resolver interface {
	Resolve(s *Symbol) (string, error)
}

// Text returns the final text of a name.
func Text(n Name, r Resolver) (string, error) {
	switch n := n.(type) {
	case Lit:
		return string(n), nil
	case *Symbol:
		return r.Resolve(n)
	default:
		return "", fmt.Errorf("unknown name type %T", n)
	}
}
