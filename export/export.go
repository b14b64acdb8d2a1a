// Package export writes an emitted listing to disk as a data pack.
//
// A pack directory holds a pack.mcmeta file and one data/<namespace> tree
// per namespace:
//
//	pack.mcmeta
//	data/demo/functions/main/main.mcfunction
//	data/minecraft/tags/functions/load.json
package export

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/spf13/afero"

	"github.com/deepnoodle-ai/datapack/emit"
)

const (
	// DefaultPackFormat is the pack format written when Config leaves it
	// unset.
	DefaultPackFormat = 15
	// DefaultFunctionDir is the name of the function directory before pack
	// format 45, which renamed it to "function".
	DefaultFunctionDir = "functions"
)

// Config controls the layout and metadata of a written pack.
type Config struct {
	PackFormat  int
	Description string
	// FunctionDir names the directory functions and function tags are
	// written to.
	FunctionDir string
	// Clean removes the pack's data directory before writing.
	Clean bool
}

func (c Config) withDefaults() Config {
	if c.PackFormat == 0 {
		c.PackFormat = DefaultPackFormat
	}
	if c.FunctionDir == "" {
		c.FunctionDir = DefaultFunctionDir
	}
	return c
}

// Summary lists what Write wrote.
type Summary struct {
	// Files are the written paths relative to the pack directory, sorted.
	Files     []string
	Functions int
	Tags      int
}

type meta struct {
	Pack struct {
		PackFormat  int    `json:"pack_format"`
		Description string `json:"description"`
	} `json:"pack"`
}

type tagFile struct {
	Values []string `json:"values"`
}

// Write writes listing as a pack rooted at dir. Every function and tag is
// attempted; the errors of all failed writes are returned together.
func Write(fs afero.Fs, dir string, listing *emit.Listing, cfg Config) (*Summary, error) {
	cfg = cfg.withDefaults()
	if cfg.Clean {
		if err := fs.RemoveAll(filepath.Join(dir, "data")); err != nil {
			return nil, err
		}
	}
	w := &writer{fs: fs, dir: dir}

	var m meta
	m.Pack.PackFormat = cfg.PackFormat
	m.Pack.Description = cfg.Description
	w.json("pack.mcmeta", m)

	summary := &Summary{}
	for _, fn := range listing.Functions {
		if len(fn.Parts) < 2 {
			w.fail(fmt.Errorf("function %s has no path below its namespace", fn.Path))
			continue
		}
		rel := filepath.Join(append([]string{"data", fn.Parts[0], cfg.FunctionDir}, fn.Parts[1:]...)...) + ".mcfunction"
		if w.file(rel, []byte(fn.Text())) {
			summary.Functions++
		}
	}

	tags := make([]string, 0, len(listing.Tags))
	for tag := range listing.Tags {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	for _, tag := range tags {
		ns, path, ok := strings.Cut(tag, ":")
		if !ok || ns == "" || path == "" {
			w.fail(fmt.Errorf("invalid tag %q", tag))
			continue
		}
		rel := filepath.Join("data", ns, "tags", cfg.FunctionDir, filepath.FromSlash(path)+".json")
		if w.json(rel, tagFile{Values: listing.Tags[tag]}) {
			summary.Tags++
		}
	}

	sort.Strings(w.written)
	summary.Files = w.written
	return summary, w.result.ErrorOrNil()
}

type writer struct {
	fs      afero.Fs
	dir     string
	written []string
	result  *multierror.Error
}

func (w *writer) fail(err error) {
	w.result = multierror.Append(w.result, err)
}

func (w *writer) file(rel string, data []byte) bool {
	path := filepath.Join(w.dir, rel)
	if err := w.fs.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		w.fail(err)
		return false
	}
	if err := afero.WriteFile(w.fs, path, data, 0o644); err != nil {
		w.fail(err)
		return false
	}
	w.written = append(w.written, filepath.ToSlash(rel))
	return true
}

func (w *writer) json(rel string, v any) bool {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		w.fail(fmt.Errorf("%s: %w", rel, err))
		return false
	}
	return w.file(rel, append(data, '\n'))
}
