// Package vm provides a VirtualMachine that executes rendered function
// listings. It simulates the scoreboard, storage, marker entities and chat
// for the commands compiled programs emit, which makes generated code
// testable without a game server.
package vm

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/deepnoodle-ai/datapack/emit"
	"github.com/deepnoodle-ai/datapack/errz"
)

const (
	// DefaultMaxCommands is the default command budget of one run, the same
	// as the game's default maxCommandChainLength.
	DefaultMaxCommands = 65536

	// DefaultMaxDepth is the default maximum function call depth.
	DefaultMaxDepth = 1024

	// DefaultContextCheckInterval is the number of commands between checks
	// of ctx.Done().
	DefaultContextCheckInterval = 1000

	// LoadTag is the function tag Load runs.
	LoadTag = "minecraft:load"
)

// execContext is the executor and position a command runs with.
type execContext struct {
	self *Entity
	pos  [3]float64
}

type VirtualMachine struct {
	functions    map[string][]string
	tags         map[string][]string
	objectives   map[string]bool
	scores       map[string]map[string]int32
	storage      map[string]Compound
	blocks       map[string]Compound
	entities     []*Entity
	nextEntityID int
	chat         []string
	gamerules    map[string]string

	maxCommands          int
	maxDepth             int
	contextCheckInterval int
	strictObjectives     bool
	observer             Observer

	running  bool
	runMutex sync.Mutex

	// per run
	ctx       context.Context
	count     int
	frames    []errz.StackFrame
	loc       errz.SourceLocation
	obsConfig ObserverConfig
}

// New creates a Virtual Machine holding the functions and tags of listing.
// A nil listing gives an empty machine; functions can be added with Define.
func New(listing *emit.Listing, options ...Option) *VirtualMachine {
	vm := &VirtualMachine{
		functions:            map[string][]string{},
		tags:                 map[string][]string{},
		objectives:           map[string]bool{},
		scores:               map[string]map[string]int32{},
		storage:              map[string]Compound{},
		blocks:               map[string]Compound{},
		gamerules:            map[string]string{},
		maxCommands:          DefaultMaxCommands,
		maxDepth:             DefaultMaxDepth,
		contextCheckInterval: DefaultContextCheckInterval,
	}
	for _, opt := range options {
		opt(vm)
	}
	if listing != nil {
		for _, f := range listing.Functions {
			vm.Define(f.Path, f.Lines...)
		}
		for tag, paths := range listing.Tags {
			vm.tags[tag] = append([]string(nil), paths...)
		}
	}
	return vm
}

// Define adds or replaces a function. Lines may hold several commands
// separated by newlines; blank lines and comments are dropped.
func (vm *VirtualMachine) Define(path string, lines ...string) {
	var cmds []string
	for _, line := range lines {
		for _, sub := range strings.Split(line, "\n") {
			sub = strings.TrimSpace(sub)
			if sub == "" || strings.HasPrefix(sub, "#") {
				continue
			}
			cmds = append(cmds, sub)
		}
	}
	vm.functions[path] = cmds
}

// Tag appends functions to a function tag.
func (vm *VirtualMachine) Tag(tag string, paths ...string) {
	vm.tags[tag] = append(vm.tags[tag], paths...)
}

// Function returns the commands of a function.
func (vm *VirtualMachine) Function(path string) ([]string, bool) {
	cmds, ok := vm.functions[path]
	return cmds, ok
}

func (vm *VirtualMachine) start(ctx context.Context) error {
	vm.runMutex.Lock()
	defer vm.runMutex.Unlock()
	if vm.running {
		return fmt.Errorf("vm is already running")
	}
	vm.running = true
	vm.ctx = ctx
	vm.count = 0
	vm.frames = vm.frames[:0]
	vm.loc = errz.SourceLocation{}
	if vm.observer != nil {
		vm.obsConfig = NormalizeConfig(vm.observer.Config())
	}
	return nil
}

func (vm *VirtualMachine) stop() {
	vm.runMutex.Lock()
	defer vm.runMutex.Unlock()
	vm.running = false
	vm.ctx = nil
}

// run sets up the guarantees every entry point shares: it is an error to
// start a run while another is active, and panics are returned as errors.
func (vm *VirtualMachine) run(ctx context.Context, fn func() error) (err error) {
	if err := vm.start(ctx); err != nil {
		return err
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
		vm.stop()
	}()
	return fn()
}

// Run calls the function at path, e.g. "demo:main/main".
func (vm *VirtualMachine) Run(ctx context.Context, path string) error {
	return vm.run(ctx, func() error {
		_, _, err := vm.call(path, "", execContext{})
		return err
	})
}

// Load runs the functions tagged minecraft:load, in tag order.
func (vm *VirtualMachine) Load(ctx context.Context) error {
	return vm.run(ctx, func() error {
		for _, path := range vm.tags[LoadTag] {
			if _, _, err := vm.call(path, "", execContext{}); err != nil {
				return err
			}
		}
		return nil
	})
}

// Exec runs a single command outside of any function and returns its
// result. A command that fails without an error, such as a condition that
// does not hold, returns ok false.
func (vm *VirtualMachine) Exec(ctx context.Context, command string) (result int32, ok bool, err error) {
	err = vm.run(ctx, func() error {
		var e error
		result, ok, e = vm.exec("", 1, command, execContext{})
		return e
	})
	return result, ok, err
}

// Commands returns the number of commands executed by the last run.
func (vm *VirtualMachine) Commands() int {
	return vm.count
}

func (vm *VirtualMachine) errorf(kind errz.ErrorKind, format string, args ...any) *errz.StructuredError {
	stack := make([]errz.StackFrame, len(vm.frames))
	copy(stack, vm.frames)
	return errz.NewStructuredErrorf(kind, vm.loc, stack, format, args...)
}

func (vm *VirtualMachine) call(path, caller string, ctx execContext) (int32, bool, error) {
	cmds, ok := vm.functions[path]
	if !ok {
		return 0, false, vm.errorf(errz.ErrName, "unknown function %s", path)
	}
	if len(vm.frames) >= vm.maxDepth {
		return 0, false, vm.errorf(errz.ErrLimit, "maximum call depth of %d exceeded calling %s", vm.maxDepth, path)
	}
	vm.frames = append(vm.frames, errz.StackFrame{Function: path})
	if vm.observer != nil && vm.obsConfig.ObserveCalls {
		if !vm.observer.OnCall(CallEvent{Function: path, Caller: caller, Depth: len(vm.frames)}) {
			return 0, false, vm.errorf(errz.ErrHalted, "execution halted by observer")
		}
	}
	for i, cmd := range cmds {
		vm.frames[len(vm.frames)-1].Line = i + 1
		if _, _, err := vm.exec(path, i+1, cmd, ctx); err != nil {
			return 0, false, err
		}
	}
	vm.frames = vm.frames[:len(vm.frames)-1]
	if vm.observer != nil && vm.obsConfig.ObserveReturns {
		if !vm.observer.OnReturn(ReturnEvent{Function: path, Depth: len(vm.frames)}) {
			return 0, false, vm.errorf(errz.ErrHalted, "execution halted by observer")
		}
	}
	return int32(len(cmds)), true, nil
}

func (vm *VirtualMachine) exec(function string, line int, cmd string, ctx execContext) (int32, bool, error) {
	prev := vm.loc
	vm.loc = errz.SourceLocation{Function: function, Line: line, Command: cmd}
	result, ok, err := vm.step(cmd, ctx)
	vm.loc = prev
	return result, ok, err
}

func (vm *VirtualMachine) step(cmd string, ctx execContext) (int32, bool, error) {
	vm.count++
	if vm.maxCommands > 0 && vm.count > vm.maxCommands {
		return 0, false, vm.errorf(errz.ErrLimit, "command budget of %d exceeded", vm.maxCommands)
	}
	if vm.contextCheckInterval > 0 && vm.count%vm.contextCheckInterval == 0 && vm.ctx != nil {
		if err := vm.ctx.Err(); err != nil {
			return 0, false, vm.errorf(errz.ErrHalted, "execution cancelled").WithCause(err)
		}
	}
	if vm.observer != nil && vm.shouldObserve() {
		event := CommandEvent{
			Function: vm.loc.Function,
			Line:     vm.loc.Line,
			Command:  cmd,
			Depth:    len(vm.frames),
			Count:    vm.count,
		}
		if !vm.observer.OnCommand(event) {
			return 0, false, vm.errorf(errz.ErrHalted, "execution halted by observer")
		}
	}
	args, err := tokenize(cmd)
	if err != nil {
		return 0, false, vm.errorf(errz.ErrSyntax, "%v", err)
	}
	if len(args) == 0 {
		return 0, false, vm.errorf(errz.ErrSyntax, "empty command")
	}
	return vm.dispatch(args, ctx)
}

func (vm *VirtualMachine) shouldObserve() bool {
	switch vm.obsConfig.StepMode {
	case StepAll:
		return true
	case StepSampled:
		return vm.count%vm.obsConfig.SampleInterval == 0
	}
	return false
}

// tokenize splits a command on spaces that are outside brackets, braces
// and quoted strings.
func tokenize(line string) ([]string, error) {
	var out []string
	depth := 0
	start := -1
	var quote byte
	for i := 0; i < len(line); i++ {
		c := line[i]
		if quote != 0 {
			switch c {
			case '\\':
				i++
			case quote:
				quote = 0
			}
			continue
		}
		switch c {
		case '"', '\'':
			if start < 0 {
				start = i
				quote = c
			} else if depth > 0 {
				quote = c
			}
		case '[', '{':
			if start < 0 {
				start = i
			}
			depth++
		case ']', '}':
			depth--
			if depth < 0 {
				return nil, fmt.Errorf("unbalanced %q in %q", c, line)
			}
		case ' ', '\t':
			if depth == 0 && start >= 0 {
				out = append(out, line[start:i])
				start = -1
			}
		default:
			if start < 0 {
				start = i
			}
		}
	}
	if quote != 0 {
		return nil, fmt.Errorf("unterminated string in %q", line)
	}
	if depth != 0 {
		return nil, fmt.Errorf("unbalanced brackets in %q", line)
	}
	if start >= 0 {
		out = append(out, line[start:])
	}
	return out, nil
}

// Score returns the score of a fake player, or of the first entity a
// selector matches.
func (vm *VirtualMachine) Score(holder, objective string) (int32, bool) {
	hs, err := vm.holders(holder, execContext{})
	if err != nil || len(hs) == 0 {
		return 0, false
	}
	return vm.getScore(hs[0], objective)
}

// SetScore sets the score of a fake player, creating the objective.
func (vm *VirtualMachine) SetScore(holder, objective string, v int32) {
	vm.objectives[objective] = true
	vm.setScore(scoreHolder{name: holder}, objective, v)
}

// Objectives returns the names of the existing objectives, sorted.
func (vm *VirtualMachine) Objectives() []string {
	out := make([]string, 0, len(vm.objectives))
	for name := range vm.objectives {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Scores returns a copy of the fake player scores of an objective.
func (vm *VirtualMachine) Scores(objective string) map[string]int32 {
	out := make(map[string]int32, len(vm.scores[objective]))
	for holder, v := range vm.scores[objective] {
		out[holder] = v
	}
	return out
}

// Storage returns the tag at path in a storage, or the whole storage for
// an empty path.
func (vm *VirtualMachine) Storage(id, path string) (any, bool) {
	root, ok := vm.storage[id]
	if !ok {
		return nil, false
	}
	if path == "" {
		return root, true
	}
	nodes, err := parsePath(path)
	if err != nil {
		return nil, false
	}
	return getPath(root, nodes)
}

// Entities returns the living entities in summon order.
func (vm *VirtualMachine) Entities() []*Entity {
	return append([]*Entity(nil), vm.entities...)
}

// Chat returns the messages shown by tellraw and say.
func (vm *VirtualMachine) Chat() []string {
	return append([]string(nil), vm.chat...)
}

// GameRule returns the value of a game rule set by a program.
func (vm *VirtualMachine) GameRule(name string) (string, bool) {
	v, ok := vm.gamerules[name]
	return v, ok
}
