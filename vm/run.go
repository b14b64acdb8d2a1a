package vm

import (
	"context"

	"github.com/deepnoodle-ai/datapack/emit"
)

// RunListing loads a listing into a new Virtual Machine, runs its load
// functions and then each of paths in order. The machine is returned even
// on error so its state can be inspected.
func RunListing(ctx context.Context, listing *emit.Listing, paths []string, options ...Option) (*VirtualMachine, error) {
	machine := New(listing, options...)
	if err := machine.Load(ctx); err != nil {
		return machine, err
	}
	for _, path := range paths {
		if err := machine.Run(ctx, path); err != nil {
			return machine, err
		}
	}
	return machine, nil
}
