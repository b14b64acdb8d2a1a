package vm

import (
	"fmt"
	"strconv"
	"strings"
)

// Entity is a simulated entity. Only markers are summoned by compiled
// programs, so entities carry NBT and scores but no behavior.
type Entity struct {
	ID   int
	Type string
	NBT  Compound

	scores map[string]int32
}

func newEntity(id int, typ string, pos [3]float64) *Entity {
	return &Entity{
		ID:   id,
		Type: typ,
		NBT: Compound{
			"Pos":  &List{Items: []any{pos[0], pos[1], pos[2]}},
			"Tags": &List{},
		},
		scores: map[string]int32{},
	}
}

// Tags returns the scoreboard tags of the entity.
func (e *Entity) Tags() []string {
	l, ok := e.NBT["Tags"].(*List)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(l.Items))
	for _, item := range l.Items {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// HasTag reports whether the entity has tag.
func (e *Entity) HasTag(tag string) bool {
	for _, t := range e.Tags() {
		if t == tag {
			return true
		}
	}
	return false
}

func (e *Entity) addTag(tag string) bool {
	if e.HasTag(tag) {
		return false
	}
	l, ok := e.NBT["Tags"].(*List)
	if !ok {
		l = &List{}
		e.NBT["Tags"] = l
	}
	l.Items = append(l.Items, tag)
	return true
}

func (e *Entity) removeTag(tag string) bool {
	l, ok := e.NBT["Tags"].(*List)
	if !ok {
		return false
	}
	for i, item := range l.Items {
		if item == tag {
			l.Items = append(l.Items[:i], l.Items[i+1:]...)
			return true
		}
	}
	return false
}

// Score returns the entity's score for objective.
func (e *Entity) Score(objective string) (int32, bool) {
	v, ok := e.scores[objective]
	return v, ok
}

// Pos returns the entity position.
func (e *Entity) Pos() [3]float64 {
	var pos [3]float64
	l, ok := e.NBT["Pos"].(*List)
	if !ok {
		return pos
	}
	for i := 0; i < 3 && i < len(l.Items); i++ {
		pos[i], _ = numeric(l.Items[i])
	}
	return pos
}

func (e *Entity) setPos(pos [3]float64) {
	e.NBT["Pos"] = &List{Items: []any{pos[0], pos[1], pos[2]}}
}

// selector is a parsed target selector such as @e[tag=a,limit=1].
type selector struct {
	kind    byte
	tags    []string
	notTags []string
	types   []string
	limit   int
}

func isSelector(s string) bool {
	return len(s) >= 2 && s[0] == '@'
}

func parseSelector(s string) (*selector, error) {
	if !isSelector(s) {
		return nil, fmt.Errorf("invalid selector %q", s)
	}
	sel := &selector{kind: s[1], limit: -1}
	switch sel.kind {
	case 's', 'e', 'a', 'p', 'r', 'n':
	default:
		return nil, fmt.Errorf("unknown selector %q", s)
	}
	rest := s[2:]
	if rest == "" {
		return sel, nil
	}
	if !strings.HasPrefix(rest, "[") || !strings.HasSuffix(rest, "]") {
		return nil, fmt.Errorf("invalid selector arguments in %q", s)
	}
	body := rest[1 : len(rest)-1]
	if body == "" {
		return sel, nil
	}
	for _, arg := range strings.Split(body, ",") {
		key, val, ok := strings.Cut(arg, "=")
		if !ok {
			return nil, fmt.Errorf("invalid selector argument %q in %q", arg, s)
		}
		key, val = strings.TrimSpace(key), strings.TrimSpace(val)
		switch key {
		case "tag":
			if strings.HasPrefix(val, "!") {
				sel.notTags = append(sel.notTags, val[1:])
			} else {
				sel.tags = append(sel.tags, val)
			}
		case "type":
			sel.types = append(sel.types, strings.TrimPrefix(val, "minecraft:"))
		case "limit":
			n, err := strconv.Atoi(val)
			if err != nil || n < 1 {
				return nil, fmt.Errorf("invalid limit %q in %q", val, s)
			}
			sel.limit = n
		case "sort":
		default:
			return nil, fmt.Errorf("unsupported selector argument %q in %q", key, s)
		}
	}
	return sel, nil
}

func (sel *selector) matches(e *Entity) bool {
	for _, t := range sel.tags {
		if !e.HasTag(t) {
			return false
		}
	}
	for _, t := range sel.notTags {
		if e.HasTag(t) {
			return false
		}
	}
	for _, t := range sel.types {
		if strings.TrimPrefix(e.Type, "minecraft:") != t {
			return false
		}
	}
	return true
}

// selectEntities returns the entities a selector targets. There are no
// players, so @a, @p, @r and @n never match.
func (vm *VirtualMachine) selectEntities(s string, ctx execContext) ([]*Entity, error) {
	sel, err := parseSelector(s)
	if err != nil {
		return nil, err
	}
	var candidates []*Entity
	switch sel.kind {
	case 's':
		if ctx.self != nil {
			candidates = []*Entity{ctx.self}
		}
	case 'e':
		candidates = vm.entities
	}
	var out []*Entity
	for _, e := range candidates {
		if !sel.matches(e) {
			continue
		}
		out = append(out, e)
		if sel.limit > 0 && len(out) == sel.limit {
			break
		}
	}
	return out, nil
}
