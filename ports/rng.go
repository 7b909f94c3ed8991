package ports

import (
	"context"

	"phaseshift/domain/gf2"
)

// StatePort draws the initial register state for each experiment
type StatePort interface {
	// NewSeed picks a seed for runs that did not ask for one
	NewSeed() int64
	// InitialState returns the starting state of experiment index for a
	// register of n cells. Equal seed, index and n always give the same state.
	InitialState(ctx context.Context, seed int64, index, n int) (gf2.Vector, error)
}
