// Package lfsr builds a linear-feedback shift register from a polynomial over
// GF(2), derives phase-shifted tap vectors from it and clocks it to produce
// multi-channel signed integer streams.
package lfsr

import (
	"fmt"
	"strings"

	"phaseshift/domain/gf2"
	"phaseshift/internal/errors"
)

// Polynomial holds GF(2) coefficients from the highest power down to the
// constant term. Index 0 is always 1, so len-1 is the degree.
// Primitivity is assumed, not checked.
type Polynomial []uint8

// NewPolynomial validates coeffs and copies them into a Polynomial
func NewPolynomial(coeffs []uint8) (Polynomial, error) {
	n := len(coeffs) - 1
	if n < 1 {
		return nil, errors.ValidationError(fmt.Sprintf("polynomial needs degree >= 1, got %d coefficients", len(coeffs)))
	}
	if n > gf2.MaxWidth {
		return nil, errors.ValidationError(fmt.Sprintf("degree %d exceeds the %d-cell register limit", n, gf2.MaxWidth))
	}
	if coeffs[0] != 1 {
		return nil, errors.ValidationError("leading coefficient must be 1")
	}
	for i, c := range coeffs {
		if c > 1 {
			return nil, errors.ValidationError(fmt.Sprintf("coefficient %d is %d, not a GF(2) value", i, c))
		}
	}
	p := make(Polynomial, len(coeffs))
	copy(p, coeffs)
	return p, nil
}

// Degree returns the register length
func (p Polynomial) Degree() int {
	return len(p) - 1
}

// String renders p like X^3 + X + 1
func (p Polynomial) String() string {
	n := p.Degree()
	terms := make([]string, 0, len(p))
	for i, c := range p {
		if c == 0 {
			continue
		}
		switch power := n - i; power {
		case 0:
			terms = append(terms, "1")
		case 1:
			terms = append(terms, "X")
		default:
			terms = append(terms, fmt.Sprintf("X^%d", power))
		}
	}
	if len(terms) == 0 {
		return "0"
	}
	return strings.Join(terms, " + ")
}
