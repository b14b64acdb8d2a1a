package namespace

import (
	"fmt"
	"sort"
	"strings"

	"github.com/deepnoodle-ai/datapack/errors"
	"github.com/deepnoodle-ai/datapack/symbol"
)

// Args are the keyword arguments of a template instantiation. Values must
// print deterministically with %v.
type Args map[string]any

// Key returns a canonical string for the arguments.
func (a Args) Key() string {
	keys := make([]string, 0, len(a))
	for k := range a {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s=%v", k, a[k])
	}
	return strings.Join(parts, ",")
}

// TemplateFunc builds one instance. It must create the subroutine inside t.
type TemplateFunc func(t *Template, args Args) (*Subroutine, error)

// Template memoizes subroutine instantiation by arguments, so identical
// arguments share one generated subroutine.
type Template struct {
	Namespace
	fn        TemplateFunc
	instances map[string]*Subroutine
}

// CreateTemplate creates a child template.
func (ns *Namespace) CreateTemplate(name string, fn TemplateFunc) *Template {
	t := &Template{fn: fn, instances: map[string]*Subroutine{}}
	t.init(ns.env, name, ns)
	ns.add(name, t)
	return t
}

// Instantiate returns the subroutine for args, building and ending it on
// first use.
func (t *Template) Instantiate(args Args) (*Subroutine, error) {
	key := args.Key()
	if s, ok := t.instances[key]; ok {
		return s, nil
	}
	s, err := t.fn(t, args)
	if err != nil {
		return nil, err
	}
	if s == nil || s.parent != &t.Namespace {
		return nil, errors.InvariantViolationf("template %s must create its instance inside itself",
			symbol.JoinPath(t.Path()))
	}
	s.End()
	t.instances[key] = s
	return s, nil
}

// Instances returns the number of distinct instantiations.
func (t *Template) Instances() int {
	return len(t.instances)
}
