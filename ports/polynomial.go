package ports

import (
	"context"

	"phaseshift/domain/lfsr"
)

// PolynomialPort looks up primitive polynomials by degree and 1-indexed entry
type PolynomialPort interface {
	Polynomial(ctx context.Context, degree, entry int) (lfsr.Polynomial, error)
}
