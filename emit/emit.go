// Package emit turns a finished namespace graph into rendered function
// listings.
package emit

import (
	"sort"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/rs/zerolog"

	"github.com/deepnoodle-ai/datapack/command"
	"github.com/deepnoodle-ai/datapack/errors"
	"github.com/deepnoodle-ai/datapack/namespace"
	"github.com/deepnoodle-ai/datapack/symbol"
)

// Function is one rendered instruction block.
type Function struct {
	// Path is the callable path, e.g. "demo:main/if1/branch".
	Path string
	// Parts is the entity path, root first.
	Parts       []string
	Description string
	Tags        []string
	Lines       []string
}

// Listing is a rendered program.
type Listing struct {
	Functions []*Function
	// Tags maps a tag path to the paths of its functions, in emission
	// order.
	Tags map[string][]string

	byPath map[string]*Function
}

// Function returns the function with the given callable path.
func (l *Listing) Function(path string) (*Function, bool) {
	f, ok := l.byPath[path]
	return f, ok
}

// Namespaces returns the distinct root names of the listing, sorted.
func (l *Listing) Namespaces() []string {
	seen := map[string]bool{}
	var out []string
	for _, f := range l.Functions {
		if len(f.Parts) == 0 || seen[f.Parts[0]] {
			continue
		}
		seen[f.Parts[0]] = true
		out = append(out, f.Parts[0])
	}
	sort.Strings(out)
	return out
}

// Option configures emission.
type Option func(*options)

type options struct {
	logger   zerolog.Logger
	reserved []string
}

// WithLogger sets the logger emission statistics are written to.
func WithLogger(logger zerolog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithReserved keeps symbols from resolving to any of names.
func WithReserved(names ...string) Option {
	return func(o *options) {
		o.reserved = append(o.reserved, names...)
	}
}

type renderer struct {
	*symbol.Table
}

func (r renderer) PathOf(t command.Target) (string, error) {
	if w, ok := t.(command.Wrapper); ok {
		return "", errors.InvariantViolationf("cannot call %s directly; call its entry point",
			symbol.JoinPath(w.Path()))
	}
	return symbol.JoinPath(t.Path()), nil
}

// Program renders every block below roots. Symbols are resolved in creation
// order, so the same graph always yields the same names.
func Program(roots []*namespace.Namespace, opts ...Option) (*Listing, error) {
	o := options{logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(&o)
	}

	var result *multierror.Error
	var blocks []*namespace.Block
	for _, root := range roots {
		b, err := root.Blocks()
		if err != nil {
			result = multierror.Append(result, err)
		}
		blocks = append(blocks, b...)
	}
	if err := result.ErrorOrNil(); err != nil {
		return nil, err
	}

	table := symbol.NewTable()
	table.Reserve(o.reserved...)
	symbols := collectSymbols(blocks)
	for _, s := range symbols {
		if _, err := table.Resolve(s); err != nil {
			result = multierror.Append(result, err)
		}
	}
	if err := result.ErrorOrNil(); err != nil {
		return nil, err
	}

	r := renderer{table}
	listing := &Listing{
		Tags:   map[string][]string{},
		byPath: map[string]*Function{},
	}
	for _, b := range blocks {
		fn, err := renderBlock(r, b)
		if err != nil {
			result = multierror.Append(result, err)
			continue
		}
		listing.Functions = append(listing.Functions, fn)
		listing.byPath[fn.Path] = fn
		for _, tag := range fn.Tags {
			listing.Tags[tag] = append(listing.Tags[tag], fn.Path)
		}
	}
	if err := result.ErrorOrNil(); err != nil {
		return nil, err
	}
	o.logger.Debug().
		Int("functions", len(listing.Functions)).
		Int("symbols", len(symbols)).
		Int("tags", len(listing.Tags)).
		Msg("emitted program")
	return listing, nil
}

func collectSymbols(blocks []*namespace.Block) []*symbol.Symbol {
	seen := map[*symbol.Symbol]bool{}
	var out []*symbol.Symbol
	for _, b := range blocks {
		for _, c := range b.Commands() {
			for _, s := range c.Symbols() {
				if !seen[s] {
					seen[s] = true
					out = append(out, s)
				}
			}
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].ID() < out[j].ID()
	})
	return out
}

func renderBlock(r renderer, b *namespace.Block) (*Function, error) {
	fn := &Function{
		Path:        symbol.JoinPath(b.Path()),
		Parts:       b.Path(),
		Description: b.Description(),
	}
	for _, tag := range b.Tags() {
		fn.Tags = append(fn.Tags, symbol.JoinPath(tag.Path()))
	}
	for _, c := range b.Commands() {
		text, err := c.Render(r)
		if err != nil {
			return nil, err
		}
		fn.Lines = append(fn.Lines, text)
	}
	if cont := b.Continuation(); cont != nil {
		fn.Lines = append(fn.Lines, "function "+symbol.JoinPath(cont.Path()))
	}
	return fn, nil
}

// Text renders a function as file contents, with its description as a
// comment header.
func (f *Function) Text() string {
	var b strings.Builder
	if f.Description != "" {
		for _, line := range strings.Split(f.Description, "\n") {
			b.WriteString("# ")
			b.WriteString(line)
			b.WriteByte('\n')
		}
		b.WriteByte('\n')
	}
	for _, line := range f.Lines {
		b.WriteString(line)
		b.WriteByte('\n')
	}
	return b.String()
}
