// Package text builds tellraw messages from literal text, style directives
// and values.
package text

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/deepnoodle-ai/datapack/command"
	"github.com/deepnoodle-ai/datapack/convert"
	"github.com/deepnoodle-ai/datapack/errors"
	"github.com/deepnoodle-ai/datapack/symbol"
	"github.com/deepnoodle-ai/datapack/value"
)

// Style updates the style of every following part. A key mapped to Unset is
// removed from the current style.
type Style map[string]any

type unset struct{}

// Unset removes a style key.
var Unset = unset{}

// Component is a raw JSON text component passed through as is.
type Component map[string]any

// Builder turns message parts into commands. Derived values cannot be
// addressed by a text component, so they are first staged below scratch.
type Builder struct {
	engine  *convert.Engine
	scratch *value.StructuredVar
}

// New returns a builder. Scratch is the structured slot derived values are
// staged under.
func New(engine *convert.Engine, scratch *value.StructuredVar) *Builder {
	return &Builder{engine: engine, scratch: scratch}
}

// part is a component whose fields may still reference symbols.
type part struct {
	style  map[string]any
	fields map[string]symbol.Name
	nested map[string]map[string]symbol.Name
}

// Print returns the commands that show parts to target. Parts are strings,
// Style, Component or value.Value.
func (b *Builder) Print(target symbol.Name, parts ...any) ([]command.Command, error) {
	var out []command.Command
	var comps []part
	style := map[string]any{}
	refs := []symbol.Name{target}
	staged := 0

	snapshot := func() map[string]any {
		s := make(map[string]any, len(style))
		for k, v := range style {
			s[k] = v
		}
		return s
	}

	for _, p := range parts {
		switch p := p.(type) {
		case string:
			comps = append(comps, part{style: snapshot(), fields: map[string]symbol.Name{"text": symbol.Lit(p)}})
		case Style:
			for k, v := range p {
				if _, ok := v.(unset); ok {
					delete(style, k)
				} else {
					style[k] = v
				}
			}
		case Component:
			s := snapshot()
			for k, v := range p {
				s[k] = v
			}
			comps = append(comps, part{style: s})
		case value.Value:
			v := p
			if d, ok := v.(*value.Derived); ok {
				if b.scratch == nil {
					return nil, errors.Unsupportedf("cannot print derived value %s without a scratch slot", d)
				}
				slot := b.scratch.Sub(fmt.Sprintf("text%d", staged), d.Type())
				staged++
				cmds, err := b.engine.Move(d, slot)
				if err != nil {
					return nil, err
				}
				out = append(out, cmds...)
				v = slot
			}
			c, err := valuePart(v)
			if err != nil {
				return nil, err
			}
			c.style = snapshot()
			refs = append(refs, c.names()...)
			comps = append(comps, c)
		default:
			return nil, errors.Unsupportedf("cannot print %T; use a string, Style, Component or value", p)
		}
	}

	out = append(out, command.NewDynamic(func(resolve command.ResolveFunc) (string, error) {
		who, err := resolve(target)
		if err != nil {
			return "", err
		}
		raw, err := render(comps, resolve)
		if err != nil {
			return "", err
		}
		return "tellraw " + who + " " + raw, nil
	}, refs...))
	return out, nil
}

// Log prints "[prefix] parts..." to every player.
func (b *Builder) Log(prefix string, parts ...any) ([]command.Command, error) {
	all := []any{Style{"color": "light_purple"}, "[" + prefix + "]", Style{"color": Unset}, " "}
	return b.Print(symbol.Lit("@a"), append(all, parts...)...)
}

func valuePart(v value.Value) (part, error) {
	switch v := v.(type) {
	case *value.Const:
		text := v.Text
		if s, err := strconv.Unquote(v.Text); err == nil {
			text = s
		}
		return part{fields: map[string]symbol.Name{"text": symbol.Lit(text)}}, nil
	case *value.ScoreboardVar:
		return part{nested: map[string]map[string]symbol.Name{
			"score": {"name": v.Player, "objective": v.Objective},
		}}, nil
	case *value.StructuredVar:
		return part{fields: map[string]symbol.Name{
			"nbt":               symbol.Lit(v.Path),
			v.Container.String(): v.Target,
		}}, nil
	}
	return part{}, errors.Unsupportedf("cannot print %s", v)
}

func (p part) names() []symbol.Name {
	var out []symbol.Name
	for _, n := range p.fields {
		out = append(out, n)
	}
	for _, m := range p.nested {
		for _, n := range m {
			out = append(out, n)
		}
	}
	return out
}

func render(comps []part, resolve command.ResolveFunc) (string, error) {
	list := []any{""}
	for _, c := range comps {
		obj := map[string]any{}
		for k, v := range c.style {
			obj[k] = v
		}
		for k, n := range c.fields {
			s, err := resolve(n)
			if err != nil {
				return "", err
			}
			obj[k] = s
		}
		for k, m := range c.nested {
			inner := map[string]string{}
			for ik, n := range m {
				s, err := resolve(n)
				if err != nil {
					return "", err
				}
				inner[ik] = s
			}
			obj[k] = inner
		}
		list = append(list, obj)
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(list); err != nil {
		return "", err
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}
