package lfsr

import (
	"fmt"

	"phaseshift/domain/gf2"
	"phaseshift/internal/errors"
)

// Period clocks the register from start until it returns to start and
// reports the number of clocks taken. The walk gives up after limit clocks.
// The zero state is a fixed point with period 1.
func Period(tm gf2.Matrix, start gf2.Vector, limit uint64) (uint64, error) {
	if !tm.IsSquare() || tm.Cols() != start.Len() {
		return 0, errors.DimensionError(fmt.Sprintf("state of length %d does not fit %dx%d matrix", start.Len(), tm.Rows(), tm.Cols()))
	}
	state := start
	for steps := uint64(1); steps <= limit; steps++ {
		state = Advance(tm, state)
		if state.Equal(start) {
			return steps, nil
		}
	}
	return 0, errors.ValidationError(fmt.Sprintf("no return to %s within %d clocks", start, limit))
}

// MaximalPeriod returns 2^n - 1, the period of a primitive degree-n register
func MaximalPeriod(n int) uint64 {
	if n >= 64 {
		return ^uint64(0)
	}
	return uint64(1)<<uint(n) - 1
}
