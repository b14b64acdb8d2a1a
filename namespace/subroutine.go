package namespace

import (
	"fmt"

	"github.com/deepnoodle-ai/datapack/command"
	"github.com/deepnoodle-ai/datapack/errors"
	"github.com/deepnoodle-ai/datapack/symbol"
	"github.com/deepnoodle-ai/datapack/value"
)

// Subroutine is a function: a namespace with an entry block, a cursor block
// new commands are appended to and a continuation to resume after it
// returns. A Subroutine is a compile-time grouping; calls target its entry.
type Subroutine struct {
	Namespace
	entry        *Block
	current      *Block
	continuation *Block
	ended        bool
	// reentrant is set for loop bodies and everything nested in them: a
	// later iteration may enter them again while an earlier call is live.
	reentrant bool
}

// FunctionOption configures a subroutine at creation.
type FunctionOption func(*functionConfig)

type functionConfig struct {
	entryName   string
	description string
	tags        []command.Target
}

// WithEntryName names the entry block. The default is the function name.
func WithEntryName(name string) FunctionOption {
	return func(c *functionConfig) {
		c.entryName = name
	}
}

// WithDescription sets the entry block description.
func WithDescription(description string) FunctionOption {
	return func(c *functionConfig) {
		c.description = description
	}
}

// WithTags adds the entry block to tags.
func WithTags(tags ...command.Target) FunctionOption {
	return func(c *functionConfig) {
		c.tags = append(c.tags, tags...)
	}
}

// CreateFunction creates a child subroutine.
func (ns *Namespace) CreateFunction(name string, opts ...FunctionOption) *Subroutine {
	cfg := functionConfig{entryName: name}
	for _, opt := range opts {
		opt(&cfg)
	}
	s := &Subroutine{}
	s.init(ns.env, name, ns)
	ns.add(name, s)
	s.entry = s.CreateBlock(cfg.entryName)
	s.entry.Tag(cfg.tags...)
	s.entry.Describe(cfg.description)
	s.current = s.entry
	return s
}

// Entry returns the entry block.
func (s *Subroutine) Entry() *Block {
	return s.entry
}

// EntryTarget returns the entry block as a call target.
func (s *Subroutine) EntryTarget() command.Target {
	return s.entry
}

// Current returns the block new commands are appended to.
func (s *Subroutine) Current() *Block {
	return s.current
}

// Continuation returns the block resumed after the subroutine returns.
func (s *Subroutine) Continuation() *Block {
	return s.continuation
}

// Ended reports whether End was called.
func (s *Subroutine) Ended() bool {
	return s.ended
}

// Describe sets the entry block description.
func (s *Subroutine) Describe(description string) {
	s.entry.Describe(description)
}

func (s *Subroutine) checkOpen() error {
	if s.ended {
		return errors.InvariantViolationf("function %s was already ended", symbol.JoinPath(s.Path()))
	}
	return nil
}

// Add appends commands to the current block.
func (s *Subroutine) Add(cmds ...command.Command) error {
	if err := s.checkOpen(); err != nil {
		return err
	}
	s.current.Add(cmds...)
	return nil
}

// Comment appends a comment.
func (s *Subroutine) Comment(text string) error {
	return s.Add(command.Comment(text))
}

// Call appends a call of target. Target must be an instruction block.
func (s *Subroutine) Call(target command.Target) error {
	call, err := command.NewCall(target)
	if err != nil {
		return err
	}
	return s.Add(call)
}

// Move appends the commands that copy src into dst.
func (s *Subroutine) Move(src value.Value, dst value.Variable) error {
	if err := s.checkOpen(); err != nil {
		return err
	}
	cmds, err := s.env.Convert.Move(src, dst)
	if err != nil {
		return err
	}
	return s.Add(cmds...)
}

// AddInPlace appends the commands that add delta to dst.
func (s *Subroutine) AddInPlace(dst value.Variable, delta value.Value) error {
	if err := s.checkOpen(); err != nil {
		return err
	}
	cmds, err := s.env.Convert.AddInPlace(dst, delta)
	if err != nil {
		return err
	}
	return s.Add(cmds...)
}

// End closes the subroutine: the current block resumes the subroutine's
// continuation and no more commands may be added. End is idempotent.
func (s *Subroutine) End() {
	if s.ended {
		return
	}
	s.current.continuation = s.continuation
	s.ended = true
}

// Return moves v, if not nil, into the return register and severs the
// continuation so falling off the end does not resume enclosing control
// flow.
func (s *Subroutine) Return(v value.Value) error {
	if err := s.checkOpen(); err != nil {
		return err
	}
	if v != nil {
		if s.env.Return == nil {
			return errors.InvariantViolationf("function %s returns a value but no return register is installed",
				symbol.JoinPath(s.Path()))
		}
		if err := s.Move(v, s.env.Return); err != nil {
			return err
		}
	}
	s.continuation = nil
	return nil
}

func call(b *Block) command.Command {
	return &command.Call{Target: b}
}

// guarded returns "execute <clause> <cond> run <then>".
func guarded(clause string, cond value.Condition, then command.Command) command.Command {
	tmpl, args := cond.Template()
	return command.Compose(command.New("execute "+clause+" "+tmpl+" run", args...), then)
}

// If lowers an if statement. It returns the branch body, which the caller
// fills and ends; commands added to s afterwards go to the block that runs
// once the branch or the skipped branch completes.
func (s *Subroutine) If(cond value.Condition) (*Subroutine, error) {
	then, _, err := s.branch(cond, false)
	return then, err
}

// IfElse lowers an if statement with an else branch. Both bodies resume the
// same continuation.
func (s *Subroutine) IfElse(cond value.Condition) (*Subroutine, *Subroutine, error) {
	return s.branch(cond, true)
}

func (s *Subroutine) branch(cond value.Condition, withElse bool) (*Subroutine, *Subroutine, error) {
	if err := s.checkOpen(); err != nil {
		return nil, nil, err
	}
	name := fmt.Sprintf("if%d", len(s.order))
	then := s.CreateFunction(name,
		WithEntryName("branch"),
		WithDescription("If-branch of "+s.name))
	then.reentrant = s.reentrant
	var els *Subroutine
	if withElse {
		els = s.CreateFunction(name+"-else",
			WithEntryName("branch"),
			WithDescription("Else-branch of "+s.name))
		els.reentrant = s.reentrant
	}

	// The temp is keyed globally, not per call frame.
	temp := s.ScoreVar("_cond")
	isTrue := value.ScoreMatches(temp, "1")

	enter := call(then.entry)
	if s.reentrant {
		// Iterations entered through the branch overwrite the temp before
		// the branch call returns. Calling the branch through a block that
		// sets the temp again keeps the guard below from firing too.
		restore, err := s.env.Convert.Move(value.Int(1), temp)
		if err != nil {
			return nil, nil, err
		}
		through := s.CreateBlock(name + "-then")
		through.Add(call(then.entry))
		through.Add(restore...)
		enter = call(through)
	}
	cont := s.CreateBlock(name + "-continue")

	var cmds []command.Command
	reset, err := s.env.Convert.Move(value.Int(0), temp)
	if err != nil {
		return nil, nil, err
	}
	set, err := s.env.Convert.Move(value.Int(1), temp)
	if err != nil {
		return nil, nil, err
	}
	cmds = append(cmds, reset...)
	for _, c := range set {
		cmds = append(cmds, guarded("if", cond, c))
	}
	cmds = append(cmds, guarded("if", isTrue, enter))
	if els != nil {
		cmds = append(cmds, guarded("unless", isTrue, call(els.entry)))
		els.continuation = cont
	} else {
		cmds = append(cmds, guarded("unless", isTrue, call(cont)))
	}
	s.current.Add(cmds...)

	then.continuation = cont
	s.current = cont
	return then, els, nil
}

// While lowers a while loop. It returns the loop body, which the caller
// fills and ends.
//
// The loop body is entered from a check block and resumes the check block
// when it ends, so each iteration nests one level deeper. An iteration
// counter, incremented on entry to the body and decremented after each
// check returns, reads zero only in the outermost check frame, which is
// the only one allowed to call the continuation.
func (s *Subroutine) While(cond value.Condition) (*Subroutine, error) {
	if err := s.checkOpen(); err != nil {
		return nil, err
	}
	name := fmt.Sprintf("while%d", len(s.order))
	body := s.CreateFunction(name,
		WithEntryName("loop"),
		WithDescription("While-loop of "+s.name))
	body.reentrant = true
	counter := s.ScoreVar("_iteration_number")

	inc, err := s.env.Convert.AddConst(counter, value.Int(1))
	if err != nil {
		return nil, err
	}
	dec, err := s.env.Convert.AddConst(counter, value.Int(-1))
	if err != nil {
		return nil, err
	}
	// One outstanding check frame, the one called below.
	prime, err := s.env.Convert.Move(value.Int(1), counter)
	if err != nil {
		return nil, err
	}
	body.entry.Add(inc...)

	check := body.CreateBlock("check-cond")
	cont := s.CreateBlock(name + "-continue")

	condTmpl, condArgs := cond.Template()
	zeroTmpl, zeroArgs := value.ScoreMatches(counter, "0").Template()
	check.Add(guarded("if", cond, call(body.entry)))
	check.Add(dec...)
	check.Add(command.Compose(
		command.New("execute unless "+condTmpl+" if "+zeroTmpl+" run", append(condArgs, zeroArgs...)...),
		call(cont)))

	s.current.Add(prime...)
	s.current.Add(call(check))

	body.continuation = check
	s.current = cont
	return body, nil
}
