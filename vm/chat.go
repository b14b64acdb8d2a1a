package vm

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// renderText flattens a raw JSON text component into plain text. Styles
// are dropped; score and nbt components are read from the current state.
func (vm *VirtualMachine) renderText(raw string, ctx execContext) (string, error) {
	var comp any
	if err := json.Unmarshal([]byte(raw), &comp); err != nil {
		return "", fmt.Errorf("invalid text component: %w", err)
	}
	var b strings.Builder
	if err := vm.renderComponent(&b, comp, ctx); err != nil {
		return "", err
	}
	return b.String(), nil
}

func (vm *VirtualMachine) renderComponent(b *strings.Builder, comp any, ctx execContext) error {
	switch c := comp.(type) {
	case string:
		b.WriteString(c)
	case float64:
		b.WriteString(strconv.FormatFloat(c, 'f', -1, 64))
	case bool:
		b.WriteString(strconv.FormatBool(c))
	case []any:
		for _, item := range c {
			if err := vm.renderComponent(b, item, ctx); err != nil {
				return err
			}
		}
	case map[string]any:
		if err := vm.renderObject(b, c, ctx); err != nil {
			return err
		}
		if extra, ok := c["extra"].([]any); ok {
			for _, item := range extra {
				if err := vm.renderComponent(b, item, ctx); err != nil {
					return err
				}
			}
		}
	case nil:
	default:
		return fmt.Errorf("unsupported text component %v", comp)
	}
	return nil
}

func (vm *VirtualMachine) renderObject(b *strings.Builder, c map[string]any, ctx execContext) error {
	if text, ok := c["text"]; ok {
		return vm.renderComponent(b, text, ctx)
	}
	if key, ok := c["translate"].(string); ok {
		b.WriteString(key)
		return nil
	}
	if score, ok := c["score"].(map[string]any); ok {
		name, _ := score["name"].(string)
		objective, _ := score["objective"].(string)
		if v, ok, err := vm.singleScore(name, objective, ctx); err != nil {
			return err
		} else if ok {
			b.WriteString(strconv.FormatInt(int64(v), 10))
		}
		return nil
	}
	if path, ok := c["nbt"].(string); ok {
		var target []string
		switch {
		case c["storage"] != nil:
			target = []string{"storage", fmt.Sprint(c["storage"])}
		case c["entity"] != nil:
			target = []string{"entity", fmt.Sprint(c["entity"])}
		case c["block"] != nil:
			target = append([]string{"block"}, strings.Fields(fmt.Sprint(c["block"]))...)
		default:
			return fmt.Errorf("nbt component %q has no source", path)
		}
		root, _, found, err := vm.dataTarget(target, ctx)
		if err != nil || !found {
			return err
		}
		nodes, err := parsePath(path)
		if err != nil {
			return err
		}
		v, ok := getPath(root, nodes)
		if !ok {
			return nil
		}
		if s, ok := v.(string); ok {
			b.WriteString(s)
		} else {
			b.WriteString(FormatSNBT(v))
		}
		return nil
	}
	if sel, ok := c["selector"].(string); ok {
		ents, err := vm.selectEntities(sel, ctx)
		if err != nil {
			return err
		}
		names := make([]string, len(ents))
		for i, e := range ents {
			names[i] = strings.TrimPrefix(e.Type, "minecraft:")
		}
		b.WriteString(strings.Join(names, ", "))
	}
	return nil
}
