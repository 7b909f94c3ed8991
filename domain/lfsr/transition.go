package lfsr

import (
	"phaseshift/domain/gf2"
)

// BuildTransitionMatrix returns the companion matrix that clocks the register
// once: state' = tm * state. Row i < n-1 shifts cell i+1 into cell i; the
// last row holds every coefficient except the constant term.
func BuildTransitionMatrix(p Polynomial) (gf2.Matrix, error) {
	p, err := NewPolynomial(p)
	if err != nil {
		return gf2.Matrix{}, err
	}
	n := p.Degree()

	rows := make([]gf2.Vector, n)
	for i := 0; i < n-1; i++ {
		if rows[i], err = gf2.Basis(n, i+1); err != nil {
			return gf2.Matrix{}, err
		}
	}
	if rows[n-1], err = gf2.VectorFromBits(p[:n]); err != nil {
		return gf2.Matrix{}, err
	}
	return gf2.FromVectors(rows)
}

// Advance clocks the register once and returns the new state
func Advance(tm gf2.Matrix, state gf2.Vector) gf2.Vector {
	return gf2.MulVec(tm, state)
}
