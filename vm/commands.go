package vm

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/deepnoodle-ai/datapack/errz"
)

// dispatch runs a tokenized command. Commands return (result, ok, err). A command that fails in game terms,
// such as a condition that does not hold or a selector that matches
// nothing, returns ok false and a nil error. Errors are reserved for
// malformed commands and resource limits.
func (vm *VirtualMachine) dispatch(args []string, ctx execContext) (int32, bool, error) {
	switch args[0] {
	case "scoreboard":
		return vm.scoreboard(args[1:], ctx)
	case "execute":
		return vm.execute(args[1:], ctx)
	case "data":
		return vm.data(args[1:], ctx)
	case "function":
		return vm.function(args[1:], ctx)
	case "summon":
		return vm.summon(args[1:], ctx)
	case "kill":
		return vm.kill(args[1:], ctx)
	case "tag":
		return vm.tag(args[1:], ctx)
	case "tp", "teleport":
		return vm.teleport(args[1:], ctx)
	case "tellraw":
		return vm.tellraw(args[1:], ctx)
	case "say":
		return vm.say(args[1:], ctx)
	case "gamerule":
		return vm.gamerule(args[1:])
	}
	return 0, false, vm.errorf(errz.ErrName, "unknown command %q", args[0])
}

func (vm *VirtualMachine) need(args []string, n int, usage string) error {
	if len(args) < n {
		return vm.errorf(errz.ErrSyntax, "expected %s", usage)
	}
	return nil
}

func boolResult(ok bool) int32 {
	if ok {
		return 1
	}
	return 0
}

// scoreHolder is a fake player name or an entity.
type scoreHolder struct {
	entity *Entity
	name   string
}

func (vm *VirtualMachine) holders(s string, ctx execContext) ([]scoreHolder, error) {
	if !isSelector(s) {
		return []scoreHolder{{name: s}}, nil
	}
	ents, err := vm.selectEntities(s, ctx)
	if err != nil {
		return nil, err
	}
	out := make([]scoreHolder, len(ents))
	for i, e := range ents {
		out[i] = scoreHolder{entity: e}
	}
	return out, nil
}

func (vm *VirtualMachine) getScore(h scoreHolder, objective string) (int32, bool) {
	if h.entity != nil {
		return h.entity.Score(objective)
	}
	v, ok := vm.scores[objective][h.name]
	return v, ok
}

func (vm *VirtualMachine) setScore(h scoreHolder, objective string, v int32) {
	if h.entity != nil {
		h.entity.scores[objective] = v
		return
	}
	m, ok := vm.scores[objective]
	if !ok {
		m = map[string]int32{}
		vm.scores[objective] = m
	}
	m[h.name] = v
}

func (vm *VirtualMachine) resetScore(h scoreHolder, objective string) {
	if h.entity != nil {
		delete(h.entity.scores, objective)
		return
	}
	delete(vm.scores[objective], h.name)
}

// objective checks that an objective exists, adding it unless objectives
// are strict.
func (vm *VirtualMachine) objective(name string) error {
	if vm.objectives[name] {
		return nil
	}
	if vm.strictObjectives {
		return vm.errorf(errz.ErrName, "unknown objective %s", name)
	}
	vm.objectives[name] = true
	return nil
}

func (vm *VirtualMachine) scoreboard(args []string, ctx execContext) (int32, bool, error) {
	if err := vm.need(args, 2, "scoreboard objectives|players ..."); err != nil {
		return 0, false, err
	}
	switch args[0] {
	case "objectives":
		return vm.scoreboardObjectives(args[1:])
	case "players":
		return vm.scoreboardPlayers(args[1:], ctx)
	}
	return 0, false, vm.errorf(errz.ErrSyntax, "unknown scoreboard subcommand %q", args[0])
}

func (vm *VirtualMachine) scoreboardObjectives(args []string) (int32, bool, error) {
	switch args[0] {
	case "add":
		if err := vm.need(args, 3, "scoreboard objectives add <name> <criteria>"); err != nil {
			return 0, false, err
		}
		if vm.objectives[args[1]] {
			return 0, false, nil
		}
		vm.objectives[args[1]] = true
		return int32(len(vm.objectives)), true, nil
	case "remove":
		if err := vm.need(args, 2, "scoreboard objectives remove <name>"); err != nil {
			return 0, false, err
		}
		name := args[1]
		if !vm.objectives[name] {
			return 0, false, nil
		}
		delete(vm.objectives, name)
		delete(vm.scores, name)
		for _, e := range vm.entities {
			delete(e.scores, name)
		}
		return int32(len(vm.objectives)), true, nil
	}
	return 0, false, vm.errorf(errz.ErrSyntax, "unknown objectives subcommand %q", args[0])
}

func (vm *VirtualMachine) scoreboardPlayers(args []string, ctx execContext) (int32, bool, error) {
	sub := args[0]
	switch sub {
	case "set", "add", "remove":
		if err := vm.need(args, 4, "scoreboard players "+sub+" <targets> <objective> <score>"); err != nil {
			return 0, false, err
		}
		n, err := strconv.ParseInt(args[3], 10, 32)
		if err != nil {
			return 0, false, vm.errorf(errz.ErrValue, "invalid score %q", args[3])
		}
		if err := vm.objective(args[2]); err != nil {
			return 0, false, err
		}
		hs, err := vm.holders(args[1], ctx)
		if err != nil {
			return 0, false, vm.errorf(errz.ErrValue, "%v", err)
		}
		var last int32
		for _, h := range hs {
			cur, _ := vm.getScore(h, args[2])
			switch sub {
			case "set":
				last = int32(n)
			case "add":
				last = cur + int32(n)
			case "remove":
				last = cur - int32(n)
			}
			vm.setScore(h, args[2], last)
		}
		return last, len(hs) > 0, nil

	case "get":
		if err := vm.need(args, 3, "scoreboard players get <target> <objective>"); err != nil {
			return 0, false, err
		}
		if err := vm.objective(args[2]); err != nil {
			return 0, false, err
		}
		hs, err := vm.holders(args[1], ctx)
		if err != nil {
			return 0, false, vm.errorf(errz.ErrValue, "%v", err)
		}
		if len(hs) != 1 {
			return 0, false, nil
		}
		v, ok := vm.getScore(hs[0], args[2])
		return v, ok, nil

	case "reset":
		if err := vm.need(args, 2, "scoreboard players reset <targets> [objective]"); err != nil {
			return 0, false, err
		}
		hs, err := vm.holders(args[1], ctx)
		if err != nil {
			return 0, false, vm.errorf(errz.ErrValue, "%v", err)
		}
		for _, h := range hs {
			if len(args) > 2 {
				vm.resetScore(h, args[2])
				continue
			}
			for obj := range vm.objectives {
				vm.resetScore(h, obj)
			}
		}
		return int32(len(hs)), len(hs) > 0, nil

	case "operation":
		if err := vm.need(args, 6, "scoreboard players operation <targets> <objective> <op> <source> <objective>"); err != nil {
			return 0, false, err
		}
		if err := vm.objective(args[2]); err != nil {
			return 0, false, err
		}
		if err := vm.objective(args[5]); err != nil {
			return 0, false, err
		}
		targets, err := vm.holders(args[1], ctx)
		if err != nil {
			return 0, false, vm.errorf(errz.ErrValue, "%v", err)
		}
		sources, err := vm.holders(args[4], ctx)
		if err != nil {
			return 0, false, vm.errorf(errz.ErrValue, "%v", err)
		}
		var last int32
		ok := len(targets) > 0 && len(sources) > 0
		for _, t := range targets {
			for _, s := range sources {
				a, _ := vm.getScore(t, args[2])
				b, _ := vm.getScore(s, args[5])
				if args[3] == "><" {
					vm.setScore(t, args[2], b)
					vm.setScore(s, args[5], a)
					last = b
					continue
				}
				v, valid, err := operate(args[3], a, b)
				if err != nil {
					return 0, false, vm.errorf(errz.ErrSyntax, "%v", err)
				}
				if !valid {
					ok = false
					continue
				}
				vm.setScore(t, args[2], v)
				last = v
			}
		}
		return last, ok, nil
	}
	return 0, false, vm.errorf(errz.ErrSyntax, "unknown players subcommand %q", sub)
}

// operate applies a scoreboard operation. Division and modulo floor like
// the game does; dividing by zero fails and leaves the target unchanged.
func operate(op string, a, b int32) (int32, bool, error) {
	switch op {
	case "=":
		return b, true, nil
	case "+=":
		return a + b, true, nil
	case "-=":
		return a - b, true, nil
	case "*=":
		return a * b, true, nil
	case "/=":
		if b == 0 {
			return a, false, nil
		}
		return floorDiv(a, b), true, nil
	case "%=":
		if b == 0 {
			return a, false, nil
		}
		return a - floorDiv(a, b)*b, true, nil
	case "<":
		if b < a {
			return b, true, nil
		}
		return a, true, nil
	case ">":
		if b > a {
			return b, true, nil
		}
		return a, true, nil
	}
	return 0, false, fmt.Errorf("unknown operation %q", op)
}

func floorDiv(a, b int32) int32 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

// parseRange parses "n", "n..", "..m" and "n..m".
func parseRange(s string) (lo, hi int64, err error) {
	lo, hi = math.MinInt64, math.MaxInt64
	a, b, isRange := strings.Cut(s, "..")
	if !isRange {
		n, err := strconv.ParseInt(s, 10, 32)
		return n, n, err
	}
	if a != "" {
		if lo, err = strconv.ParseInt(a, 10, 32); err != nil {
			return 0, 0, err
		}
	}
	if b != "" {
		if hi, err = strconv.ParseInt(b, 10, 32); err != nil {
			return 0, 0, err
		}
	}
	if a == "" && b == "" {
		return 0, 0, fmt.Errorf("empty range")
	}
	return lo, hi, nil
}

// storeTarget is an execute store clause, applied after run.
type storeTarget struct {
	success bool
	args    []string
}

func (vm *VirtualMachine) execute(args []string, ctx execContext) (int32, bool, error) {
	ctxs := []execContext{ctx}
	var stores []storeTarget
	i := 0
	for i < len(args) {
		switch sub := args[i]; sub {
		case "as", "at":
			if err := vm.need(args[i:], 2, "execute "+sub+" <targets>"); err != nil {
				return 0, false, err
			}
			var next []execContext
			for _, c := range ctxs {
				ents, err := vm.selectEntities(args[i+1], c)
				if err != nil {
					return 0, false, vm.errorf(errz.ErrValue, "%v", err)
				}
				for _, e := range ents {
					n := c
					if sub == "as" {
						n.self = e
					} else {
						n.pos = e.Pos()
					}
					next = append(next, n)
				}
			}
			ctxs = next
			i += 2

		case "positioned":
			if err := vm.need(args[i:], 4, "execute positioned <x> <y> <z>"); err != nil {
				return 0, false, err
			}
			for k := range ctxs {
				pos, err := coords(args[i+1:i+4], ctxs[k].pos)
				if err != nil {
					return 0, false, vm.errorf(errz.ErrValue, "%v", err)
				}
				ctxs[k].pos = pos
			}
			i += 4

		case "if", "unless":
			var next []execContext
			n := 0
			for _, c := range ctxs {
				used, pass, err := vm.condition(args[i+1:], c)
				if err != nil {
					return 0, false, err
				}
				n = used
				if pass == (sub == "if") {
					next = append(next, c)
				}
			}
			if len(ctxs) == 0 {
				used, _, err := vm.condition(args[i+1:], ctx)
				if err != nil {
					return 0, false, err
				}
				n = used
			}
			ctxs = next
			i += 1 + n

		case "store":
			if err := vm.need(args[i:], 3, "execute store result|success <target>"); err != nil {
				return 0, false, err
			}
			var n int
			switch args[i+2] {
			case "score":
				n = 3
			case "storage", "entity":
				n = 5
			case "block":
				n = 7
			default:
				return 0, false, vm.errorf(errz.ErrSyntax, "unsupported store target %q", args[i+2])
			}
			if err := vm.need(args[i+2:], n, "execute store "+args[i+2]+" arguments"); err != nil {
				return 0, false, err
			}
			mode := args[i+1]
			if mode != "result" && mode != "success" {
				return 0, false, vm.errorf(errz.ErrSyntax, "expected result or success, got %q", mode)
			}
			stores = append(stores, storeTarget{success: mode == "success", args: args[i+2 : i+2+n]})
			i += 2 + n

		case "run":
			if err := vm.need(args[i:], 2, "execute run <command>"); err != nil {
				return 0, false, err
			}
			return vm.runEach(ctxs, args[i+1:], stores)

		default:
			return 0, false, vm.errorf(errz.ErrSyntax, "unknown execute subcommand %q", sub)
		}
	}
	// a chain ending in a condition yields the number of passing contexts
	n := int32(len(ctxs))
	for _, c := range ctxs {
		for _, s := range stores {
			if err := vm.store(s, c, 1, true); err != nil {
				return 0, false, err
			}
		}
	}
	return n, n > 0, nil
}

func (vm *VirtualMachine) runEach(ctxs []execContext, cmd []string, stores []storeTarget) (int32, bool, error) {
	var last int32
	anyOK := false
	for _, c := range ctxs {
		r, ok, err := vm.dispatch(cmd, c)
		if err != nil {
			return 0, false, err
		}
		for _, s := range stores {
			if err := vm.store(s, c, r, ok); err != nil {
				return 0, false, err
			}
		}
		if ok {
			anyOK = true
			last = r
		}
	}
	return last, anyOK, nil
}

func (vm *VirtualMachine) store(s storeTarget, ctx execContext, result int32, ok bool) error {
	v := result
	if s.success {
		v = boolResult(ok)
	} else if !ok {
		v = 0
	}
	args := s.args
	switch args[0] {
	case "score":
		if err := vm.objective(args[2]); err != nil {
			return err
		}
		hs, err := vm.holders(args[1], ctx)
		if err != nil {
			return vm.errorf(errz.ErrValue, "%v", err)
		}
		for _, h := range hs {
			vm.setScore(h, args[2], v)
		}
		return nil
	}
	root, used, found, err := vm.dataTarget(args, ctx)
	if err != nil {
		return err
	}
	if !found {
		return nil
	}
	rest := args[used:]
	path, err := parsePath(rest[0])
	if err != nil {
		return vm.errorf(errz.ErrValue, "%v", err)
	}
	scale, err := strconv.ParseFloat(rest[2], 64)
	if err != nil {
		return vm.errorf(errz.ErrValue, "invalid scale %q", rest[2])
	}
	tag, err := typed(rest[1], float64(v)*scale)
	if err != nil {
		return vm.errorf(errz.ErrValue, "%v", err)
	}
	if err := setPath(root, path, tag); err != nil {
		return vm.errorf(errz.ErrValue, "cannot store into %s: %v", rest[0], err)
	}
	return nil
}

// condition evaluates an execute if/unless clause and returns the number
// of arguments it consumed.
func (vm *VirtualMachine) condition(args []string, ctx execContext) (int, bool, error) {
	if err := vm.need(args, 2, "execute if <condition>"); err != nil {
		return 0, false, err
	}
	switch args[0] {
	case "score":
		if err := vm.need(args, 5, "execute if score <target> <objective> <op> ..."); err != nil {
			return 0, false, err
		}
		if err := vm.objective(args[2]); err != nil {
			return 0, false, err
		}
		a, ok, err := vm.singleScore(args[1], args[2], ctx)
		if err != nil {
			return 0, false, err
		}
		if args[3] == "matches" {
			lo, hi, err := parseRange(args[4])
			if err != nil {
				return 0, false, vm.errorf(errz.ErrValue, "invalid range %q", args[4])
			}
			return 5, ok && int64(a) >= lo && int64(a) <= hi, nil
		}
		if err := vm.need(args, 6, "execute if score <target> <objective> <op> <source> <objective>"); err != nil {
			return 0, false, err
		}
		if err := vm.objective(args[5]); err != nil {
			return 0, false, err
		}
		b, okB, err := vm.singleScore(args[4], args[5], ctx)
		if err != nil {
			return 0, false, err
		}
		if !ok || !okB {
			return 6, false, nil
		}
		var pass bool
		switch args[3] {
		case "<":
			pass = a < b
		case "<=":
			pass = a <= b
		case "=":
			pass = a == b
		case ">=":
			pass = a >= b
		case ">":
			pass = a > b
		default:
			return 0, false, vm.errorf(errz.ErrSyntax, "unknown comparison %q", args[3])
		}
		return 6, pass, nil

	case "data":
		root, used, found, err := vm.dataTarget(args[1:], ctx)
		if err != nil {
			return 0, false, err
		}
		if err := vm.need(args[1+used:], 1, "execute if data <target> <path>"); err != nil {
			return 0, false, err
		}
		if !found {
			return used + 2, false, nil
		}
		path, err := parsePath(args[1+used])
		if err != nil {
			return 0, false, vm.errorf(errz.ErrValue, "%v", err)
		}
		_, ok := getPath(root, path)
		return used + 2, ok, nil

	case "entity":
		ents, err := vm.selectEntities(args[1], ctx)
		if err != nil {
			return 0, false, vm.errorf(errz.ErrValue, "%v", err)
		}
		return 2, len(ents) > 0, nil
	}
	return 0, false, vm.errorf(errz.ErrSyntax, "unsupported condition %q", args[0])
}

func (vm *VirtualMachine) singleScore(holder, objective string, ctx execContext) (int32, bool, error) {
	hs, err := vm.holders(holder, ctx)
	if err != nil {
		return 0, false, vm.errorf(errz.ErrValue, "%v", err)
	}
	if len(hs) != 1 {
		return 0, false, nil
	}
	v, ok := vm.getScore(hs[0], objective)
	return v, ok, nil
}

// dataTarget resolves "storage <id>", "entity <selector>" or
// "block <x> <y> <z>" and returns the compound and the number of arguments
// used. Found is false when an entity selector matches nothing.
func (vm *VirtualMachine) dataTarget(args []string, ctx execContext) (Compound, int, bool, error) {
	if err := vm.need(args, 2, "storage|entity|block <target>"); err != nil {
		return nil, 0, false, err
	}
	switch args[0] {
	case "storage":
		root, ok := vm.storage[args[1]]
		if !ok {
			root = Compound{}
			vm.storage[args[1]] = root
		}
		return root, 2, true, nil
	case "entity":
		ents, err := vm.selectEntities(args[1], ctx)
		if err != nil {
			return nil, 0, false, vm.errorf(errz.ErrValue, "%v", err)
		}
		if len(ents) != 1 {
			return nil, 2, false, nil
		}
		return ents[0].NBT, 2, true, nil
	case "block":
		if err := vm.need(args, 4, "block <x> <y> <z>"); err != nil {
			return nil, 0, false, err
		}
		pos, err := coords(args[1:4], ctx.pos)
		if err != nil {
			return nil, 0, false, vm.errorf(errz.ErrValue, "%v", err)
		}
		key := fmt.Sprintf("%d %d %d", int(math.Floor(pos[0])), int(math.Floor(pos[1])), int(math.Floor(pos[2])))
		root, ok := vm.blocks[key]
		if !ok {
			root = Compound{}
			vm.blocks[key] = root
		}
		return root, 4, true, nil
	}
	return nil, 0, false, vm.errorf(errz.ErrSyntax, "unknown data target %q", args[0])
}

func (vm *VirtualMachine) data(args []string, ctx execContext) (int32, bool, error) {
	if err := vm.need(args, 3, "data get|modify|remove|merge <target> ..."); err != nil {
		return 0, false, err
	}
	sub := args[0]
	root, used, found, err := vm.dataTarget(args[1:], ctx)
	if err != nil {
		return 0, false, err
	}
	rest := args[1+used:]
	if !found {
		return 0, false, nil
	}
	switch sub {
	case "get":
		if len(rest) == 0 {
			return int32(len(root)), true, nil
		}
		path, err := parsePath(rest[0])
		if err != nil {
			return 0, false, vm.errorf(errz.ErrValue, "%v", err)
		}
		v, ok := getPath(root, path)
		if !ok {
			return 0, false, nil
		}
		scale := 1.0
		if len(rest) > 1 {
			if scale, err = strconv.ParseFloat(rest[1], 64); err != nil {
				return 0, false, vm.errorf(errz.ErrValue, "invalid scale %q", rest[1])
			}
		}
		return measure(v, scale), true, nil

	case "remove":
		if err := vm.need(rest, 1, "data remove <target> <path>"); err != nil {
			return 0, false, err
		}
		path, err := parsePath(rest[0])
		if err != nil {
			return 0, false, vm.errorf(errz.ErrValue, "%v", err)
		}
		ok := removePath(root, path)
		return boolResult(ok), ok, nil

	case "merge":
		if err := vm.need(rest, 1, "data merge <target> <nbt>"); err != nil {
			return 0, false, err
		}
		v, err := ParseSNBT(strings.Join(rest, " "))
		if err != nil {
			return 0, false, vm.errorf(errz.ErrValue, "%v", err)
		}
		c, ok := v.(Compound)
		if !ok {
			return 0, false, vm.errorf(errz.ErrValue, "data merge needs a compound")
		}
		for k, item := range c {
			root[k] = item
		}
		return 1, true, nil

	case "modify":
		return vm.modify(root, rest, ctx)
	}
	return 0, false, vm.errorf(errz.ErrSyntax, "unknown data subcommand %q", sub)
}

func (vm *VirtualMachine) modify(root Compound, args []string, ctx execContext) (int32, bool, error) {
	if err := vm.need(args, 3, "data modify <target> <path> <action> value|from ..."); err != nil {
		return 0, false, err
	}
	path, err := parsePath(args[0])
	if err != nil {
		return 0, false, vm.errorf(errz.ErrValue, "%v", err)
	}
	action := args[1]
	src := args[2:]
	if len(src) < 2 {
		return 0, false, vm.errorf(errz.ErrSyntax, "expected value or from after %s", action)
	}
	var v any
	switch src[0] {
	case "value":
		if v, err = ParseSNBT(strings.Join(src[1:], " ")); err != nil {
			return 0, false, vm.errorf(errz.ErrValue, "%v", err)
		}
	case "from":
		from, used, found, err := vm.dataTarget(src[1:], ctx)
		if err != nil {
			return 0, false, err
		}
		if !found {
			return 0, false, nil
		}
		v = from
		if len(src) > 1+used {
			fromPath, err := parsePath(src[1+used])
			if err != nil {
				return 0, false, vm.errorf(errz.ErrValue, "%v", err)
			}
			got, ok := getPath(from, fromPath)
			if !ok {
				return 0, false, nil
			}
			v = got
		}
		v = clone(v)
	default:
		return 0, false, vm.errorf(errz.ErrSyntax, "expected value or from, got %q", src[0])
	}

	switch action {
	case "set":
		if err := setPath(root, path, v); err != nil {
			return 0, false, nil
		}
	case "append":
		if err := appendPath(root, path, v); err != nil {
			return 0, false, nil
		}
	case "prepend":
		if err := appendPath(root, path, v); err != nil {
			return 0, false, nil
		}
		cur, _ := getPath(root, path)
		l := cur.(*List)
		copy(l.Items[1:], l.Items[:len(l.Items)-1])
		l.Items[0] = v
	case "merge":
		src, ok := v.(Compound)
		if !ok {
			return 0, false, vm.errorf(errz.ErrValue, "data modify merge needs a compound")
		}
		cur, ok := getPath(root, path)
		if !ok {
			cur = Compound{}
			if err := setPath(root, path, cur); err != nil {
				return 0, false, nil
			}
		}
		dst, ok := cur.(Compound)
		if !ok {
			return 0, false, nil
		}
		for k, item := range src {
			dst[k] = item
		}
	default:
		return 0, false, vm.errorf(errz.ErrSyntax, "unsupported data modify action %q", action)
	}
	return 1, true, nil
}

func (vm *VirtualMachine) function(args []string, ctx execContext) (int32, bool, error) {
	if err := vm.need(args, 1, "function <name>"); err != nil {
		return 0, false, err
	}
	caller := vm.loc.Function
	name := args[0]
	if !strings.HasPrefix(name, "#") {
		return vm.call(name, caller, ctx)
	}
	paths, ok := vm.tags[name[1:]]
	if !ok {
		return 0, false, vm.errorf(errz.ErrName, "unknown function tag %s", name)
	}
	for _, path := range paths {
		if _, _, err := vm.call(path, caller, ctx); err != nil {
			return 0, false, err
		}
	}
	return int32(len(paths)), true, nil
}

// coords parses absolute and ~relative coordinates.
func coords(args []string, base [3]float64) ([3]float64, error) {
	var out [3]float64
	for i := 0; i < 3; i++ {
		s := args[i]
		if strings.HasPrefix(s, "^") {
			return out, fmt.Errorf("local coordinates are not supported")
		}
		rel := strings.HasPrefix(s, "~")
		if rel {
			s = s[1:]
		}
		var f float64
		if s != "" {
			var err error
			if f, err = strconv.ParseFloat(s, 64); err != nil {
				return out, fmt.Errorf("invalid coordinate %q", args[i])
			}
		}
		if rel {
			f += base[i]
		}
		out[i] = f
	}
	return out, nil
}

func (vm *VirtualMachine) summon(args []string, ctx execContext) (int32, bool, error) {
	if err := vm.need(args, 1, "summon <entity> [<x> <y> <z>] [<nbt>]"); err != nil {
		return 0, false, err
	}
	pos := ctx.pos
	rest := args[1:]
	if len(rest) >= 3 {
		p, err := coords(rest[:3], ctx.pos)
		if err != nil {
			return 0, false, vm.errorf(errz.ErrValue, "%v", err)
		}
		pos = p
		rest = rest[3:]
	}
	vm.nextEntityID++
	e := newEntity(vm.nextEntityID, args[0], pos)
	if len(rest) > 0 {
		v, err := ParseSNBT(strings.Join(rest, " "))
		if err != nil {
			return 0, false, vm.errorf(errz.ErrValue, "%v", err)
		}
		c, ok := v.(Compound)
		if !ok {
			return 0, false, vm.errorf(errz.ErrValue, "summon data must be a compound")
		}
		for k, item := range c {
			switch k {
			case "Pos":
			case "Tags":
				if l, ok := item.(*List); ok {
					for _, t := range l.Items {
						if s, ok := t.(string); ok {
							e.addTag(s)
						}
					}
				}
			default:
				e.NBT[k] = item
			}
		}
	}
	vm.entities = append(vm.entities, e)
	return 1, true, nil
}

func (vm *VirtualMachine) kill(args []string, ctx execContext) (int32, bool, error) {
	sel := "@s"
	if len(args) > 0 {
		sel = args[0]
	}
	ents, err := vm.selectEntities(sel, ctx)
	if err != nil {
		return 0, false, vm.errorf(errz.ErrValue, "%v", err)
	}
	dead := map[*Entity]bool{}
	for _, e := range ents {
		dead[e] = true
	}
	alive := vm.entities[:0]
	for _, e := range vm.entities {
		if !dead[e] {
			alive = append(alive, e)
		}
	}
	vm.entities = alive
	return int32(len(ents)), len(ents) > 0, nil
}

func (vm *VirtualMachine) tag(args []string, ctx execContext) (int32, bool, error) {
	if err := vm.need(args, 2, "tag <targets> add|remove|list [<name>]"); err != nil {
		return 0, false, err
	}
	ents, err := vm.selectEntities(args[0], ctx)
	if err != nil {
		return 0, false, vm.errorf(errz.ErrValue, "%v", err)
	}
	if args[1] == "list" {
		n := 0
		for _, e := range ents {
			n += len(e.Tags())
		}
		return int32(n), true, nil
	}
	if err := vm.need(args, 3, "tag <targets> add|remove <name>"); err != nil {
		return 0, false, err
	}
	changed := 0
	for _, e := range ents {
		switch args[1] {
		case "add":
			if e.addTag(args[2]) {
				changed++
			}
		case "remove":
			if e.removeTag(args[2]) {
				changed++
			}
		default:
			return 0, false, vm.errorf(errz.ErrSyntax, "unknown tag subcommand %q", args[1])
		}
	}
	return int32(changed), changed > 0, nil
}

func (vm *VirtualMachine) teleport(args []string, ctx execContext) (int32, bool, error) {
	var targets []*Entity
	var dest []string
	switch {
	case len(args) == 3 && !isSelector(args[0]):
		if ctx.self != nil {
			targets = []*Entity{ctx.self}
		}
		dest = args
	case len(args) >= 2 && isSelector(args[0]):
		ents, err := vm.selectEntities(args[0], ctx)
		if err != nil {
			return 0, false, vm.errorf(errz.ErrValue, "%v", err)
		}
		targets = ents
		dest = args[1:]
	default:
		return 0, false, vm.errorf(errz.ErrSyntax, "expected tp [<targets>] <x> <y> <z> or tp <targets> <destination>")
	}
	var pos [3]float64
	switch {
	case len(dest) == 1 && isSelector(dest[0]):
		to, err := vm.selectEntities(dest[0], ctx)
		if err != nil {
			return 0, false, vm.errorf(errz.ErrValue, "%v", err)
		}
		if len(to) != 1 {
			return 0, false, nil
		}
		pos = to[0].Pos()
	case len(dest) >= 3:
		p, err := coords(dest[:3], ctx.pos)
		if err != nil {
			return 0, false, vm.errorf(errz.ErrValue, "%v", err)
		}
		pos = p
	default:
		return 0, false, vm.errorf(errz.ErrSyntax, "invalid teleport destination")
	}
	for _, e := range targets {
		e.setPos(pos)
	}
	return int32(len(targets)), len(targets) > 0, nil
}

func (vm *VirtualMachine) say(args []string, ctx execContext) (int32, bool, error) {
	who := "Server"
	if ctx.self != nil {
		who = strings.TrimPrefix(ctx.self.Type, "minecraft:")
	}
	vm.chat = append(vm.chat, fmt.Sprintf("[%s] %s", who, strings.Join(args, " ")))
	return 1, true, nil
}

func (vm *VirtualMachine) tellraw(args []string, ctx execContext) (int32, bool, error) {
	if err := vm.need(args, 2, "tellraw <targets> <message>"); err != nil {
		return 0, false, err
	}
	msg, err := vm.renderText(strings.Join(args[1:], " "), ctx)
	if err != nil {
		return 0, false, vm.errorf(errz.ErrValue, "%v", err)
	}
	vm.chat = append(vm.chat, msg)
	return 1, true, nil
}

func (vm *VirtualMachine) gamerule(args []string) (int32, bool, error) {
	if err := vm.need(args, 1, "gamerule <rule> [<value>]"); err != nil {
		return 0, false, err
	}
	name := args[0]
	if len(args) == 1 {
		n, _ := strconv.Atoi(vm.gamerules[name])
		return int32(n), true, nil
	}
	if name == "maxCommandChainLength" {
		n, err := strconv.Atoi(args[1])
		if err != nil {
			return 0, false, vm.errorf(errz.ErrValue, "invalid value %q for %s", args[1], name)
		}
		vm.maxCommands = n
	}
	vm.gamerules[name] = args[1]
	return 1, true, nil
}
