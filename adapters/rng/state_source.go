// Package rng draws initial register states from seeded math/rand streams.
package rng

import (
	"context"
	"math/rand"
	"time"

	"phaseshift/domain/gf2"
	"phaseshift/internal/errors"
)

// StateSource derives one independent stream per experiment from a run
// seed, so experiments can be drawn in any order or in parallel
type StateSource struct {
	clock func() time.Time
}

// NewStateSource creates a source that seeds from the wall clock when asked
func NewStateSource() *StateSource {
	return &StateSource{clock: time.Now}
}

// NewSeed returns a non-zero seed for runs that did not ask for one
func (s *StateSource) NewSeed() int64 {
	seed := s.clock().UnixNano()
	if seed == 0 {
		seed = 1
	}
	return seed
}

// InitialState draws n uniformly random bits for experiment index of the run seeded with seed
func (s *StateSource) InitialState(ctx context.Context, seed int64, index, n int) (gf2.Vector, error) {
	if err := ctx.Err(); err != nil {
		return gf2.Vector{}, err
	}
	if index < 0 {
		return gf2.Vector{}, errors.ValidationError("experiment index must be >= 0")
	}
	r := rand.New(rand.NewSource(seed + int64(index)))
	return gf2.VectorFromWord(n, r.Uint64())
}
