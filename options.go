package datapack

import (
	"github.com/rs/zerolog"
)

// Option configures a Compilation.
type Option func(*options)

type options struct {
	logger     zerolog.Logger
	objective  string
	library    string
	withoutStd bool
	greeting   bool
	filename   string
}

func collectOptions(opts ...Option) *options {
	o := &options{logger: zerolog.Nop()}
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}
	return o
}

// WithLogger sets the logger that receives warnings and emission events.
// Every line carries the id of the compilation in the "compilation" field.
func WithLogger(logger zerolog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithObjective sets the objective scores are created in. With the standard
// library the name is qualified by the library namespace; without it the
// name is used as is. The default is "main" or "dp" respectively.
func WithObjective(name string) Option {
	return func(o *options) {
		o.objective = name
	}
}

// WithNamespace sets the name of the standard library namespace.
func WithNamespace(name string) Option {
	return func(o *options) {
		o.library = name
	}
}

// WithoutStd compiles without the standard library. Programs then cannot
// return values, pass arguments or create objects.
func WithoutStd() Option {
	return func(o *options) {
		o.withoutStd = true
	}
}

// WithGreeting makes the library's load function announce itself in chat.
func WithGreeting() Option {
	return func(o *options) {
		o.greeting = true
	}
}

// WithFilename sets the filename used in error messages.
func WithFilename(filename string) Option {
	return func(o *options) {
		o.filename = filename
	}
}
