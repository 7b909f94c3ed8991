package lfsr

import (
	"fmt"

	"phaseshift/domain/gf2"
	"phaseshift/internal/errors"
)

// BuildPhaseShifter returns the nc x n matrix whose row i is the last row of
// tm^(cs*i). Dotted with the current state, row i gives the bit the register
// shifts out cs*i clocks later. Row 0 always selects the last cell.
func BuildPhaseShifter(tm gf2.Matrix, nc, cs int) (gf2.Matrix, error) {
	if !tm.IsSquare() {
		return gf2.Matrix{}, errors.DimensionError(
			fmt.Sprintf("transition matrix must be square, got %dx%d", tm.Rows(), tm.Cols()))
	}
	n := tm.Rows()
	if err := ValidatePhaseOffsets(n, nc, cs); err != nil {
		return gf2.Matrix{}, err
	}

	// Row i+1 = row i * tm^cs, which equals the last row of tm^(cs*(i+1))
	// without a full exponentiation per channel.
	step, err := gf2.Power(tm, uint64(cs))
	if err != nil {
		return gf2.Matrix{}, errors.Wrap(err, "raising transition matrix")
	}
	rows := make([]gf2.Vector, nc)
	if rows[0], err = gf2.Basis(n, n-1); err != nil {
		return gf2.Matrix{}, err
	}
	for i := 1; i < nc; i++ {
		rows[i] = gf2.VecMul(rows[i-1], step)
	}
	return gf2.FromVectors(rows)
}

// PhaseShifterRow computes a single row directly as the last row of tm^(cs*i)
func PhaseShifterRow(tm gf2.Matrix, cs, i int) (gf2.Vector, error) {
	if cs < 0 || i < 0 {
		return gf2.Vector{}, errors.ValidationError(fmt.Sprintf("negative offset cs=%d i=%d", cs, i))
	}
	m, err := gf2.Power(tm, uint64(cs)*uint64(i))
	if err != nil {
		return gf2.Vector{}, err
	}
	return m.Row(m.Rows() - 1), nil
}
