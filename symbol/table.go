package symbol

import (
	"fmt"
	"strings"

	"github.com/deepnoodle-ai/datapack/errors"
)

// Table resolves symbols to their final, collision-free text. One table is
// used per emission; it remembers every string it handed out and caches
// each symbol's result so resolving the same symbol twice is stable.
type Table struct {
	used     map[string]struct{}
	resolved map[*Symbol]string
	active   map[*Symbol]bool
}

// NewTable returns an empty table.
func NewTable() *Table {
	return &Table{
		used:     map[string]struct{}{},
		resolved: map[*Symbol]string{},
		active:   map[*Symbol]bool{},
	}
}

// Reserve marks names as taken so no symbol resolves to them.
func (t *Table) Reserve(names ...string) {
	for _, n := range names {
		t.used[n] = struct{}{}
	}
}

// IsUsed reports whether name was already handed out or reserved.
func (t *Table) IsUsed(name string) bool {
	_, ok := t.used[name]
	return ok
}

// Resolve returns the final text of s.
func (t *Table) Resolve(s *Symbol) (string, error) {
	if out, ok := t.resolved[s]; ok {
		return out, nil
	}
	if t.active[s] {
		return "", errors.InvariantViolationf("symbol %s refers to itself", s)
	}
	t.active[s] = true
	defer delete(t.active, s)

	var out string
	switch s.kind {
	case KindComposite:
		args := make([]string, len(s.args))
		for i, arg := range s.args {
			text, err := Text(arg, t)
			if err != nil {
				return "", err
			}
			args[i] = text
		}
		formatted, err := Format(s.text, args)
		if err != nil {
			return "", err
		}
		out = formatted
	case KindPath:
		if s.owner == nil {
			return "", errors.InvariantViolationf("path symbol %d has no owner", s.id)
		}
		out = JoinPath(s.owner.Path())
	default:
		if s.kind.Restricted() && !RestrictedPattern.MatchString(s.text) {
			return "", errors.InvalidNamef("%s %q must match %s", s.kind, s.text, RestrictedPattern)
		}
		out = t.unique(s)
		t.used[out] = struct{}{}
	}
	t.resolved[s] = out
	return out, nil
}

func (t *Table) unique(s *Symbol) string {
	qualify := func(text string) string {
		if s.owner == nil {
			return text
		}
		if s.kind.Restricted() {
			return JoinRestricted(s.owner.Path()) + "." + text
		}
		return JoinPath(s.owner.Path()) + "." + text
	}
	out := qualify(s.text)
	for i := 2; t.IsUsed(out); i++ {
		out = qualify(fmt.Sprintf("%s.%d", s.text, i))
	}
	return out
}

// Format substitutes args into the %s placeholders of template. "%%" renders
// a literal percent sign. The number of placeholders must equal len(args).
func Format(template string, args []string) (string, error) {
	var b strings.Builder
	n := 0
	for i := 0; i < len(template); i++ {
		c := template[i]
		if c != '%' || i+1 >= len(template) {
			b.WriteByte(c)
			continue
		}
		switch template[i+1] {
		case 's':
			if n < len(args) {
				b.WriteString(args[n])
			}
			n++
			i++
		case '%':
			b.WriteByte('%')
			i++
		default:
			b.WriteByte(c)
		}
	}
	if n != len(args) {
		return "", errors.MalformedTemplatef("template %q has %d placeholders but %d arguments", template, n, len(args))
	}
	return b.String(), nil
}

// Placeholders returns the number of %s placeholders in template.
func Placeholders(template string) int {
	n := 0
	for i := 0; i+1 < len(template); i++ {
		if template[i] != '%' {
			continue
		}
		if template[i+1] == 's' {
			n++
		}
		i++
	}
	return n
}

// Escape doubles every percent sign so text can be embedded in a template.
func Escape(text string) string {
	return strings.ReplaceAll(text, "%", "%%")
}
