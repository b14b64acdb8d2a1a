package namespace

import (
	"github.com/deepnoodle-ai/datapack/convert"
	"github.com/deepnoodle-ai/datapack/errors"
	"github.com/deepnoodle-ai/datapack/symbol"
	"github.com/deepnoodle-ai/datapack/value"
)

// Env is the state shared by every entity of one compilation.
type Env struct {
	// Symbols allocates every symbol of the compilation.
	Symbols *symbol.Allocator

	// Convert moves values between storage backends.
	Convert *convert.Engine

	// Diagnostics collects warnings.
	Diagnostics *errors.Diagnostics

	// Objective is the objective of scores created with ScoreVar.
	Objective symbol.Name

	// Return receives the value of a return statement. Nil until a
	// library installs a return register.
	Return value.Variable

	// Set on a graph error that factories cannot return
	failure error
}

// NewEnv returns an environment with the default objectives "dp" and
// "dp_temp". Libraries usually replace them with their own symbols.
func NewEnv(alloc *symbol.Allocator, diag *errors.Diagnostics) *Env {
	if alloc == nil {
		alloc = symbol.NewAllocator()
	}
	return &Env{
		Symbols:     alloc,
		Diagnostics: diag,
		Objective:   symbol.Lit("dp"),
		Convert: convert.New(convert.Config{
			Allocator:     alloc,
			TempObjective: symbol.Lit("dp_temp"),
			Diagnostics:   diag,
		}),
	}
}

// Fail records err unless an earlier failure was recorded.
func (e *Env) Fail(err error) {
	if e.failure == nil {
		e.failure = err
	}
}

// Err returns the first recorded failure.
func (e *Env) Err() error {
	return e.failure
}
