// Package polyfile reads primitive polynomials from per-degree text files.
//
// Each line holds one polynomial such as
//
//	Primitive(X^10 + X^3 + 1) mod 2 ;
//
// or just the bare sum of terms.
package polyfile

import (
	"fmt"
	"strconv"
	"strings"

	"phaseshift/domain/lfsr"
	"phaseshift/internal/errors"
)

const (
	wrapperOpen  = "Primitive("
	wrapperClose = ") mod 2 ;"
)

// term is one parsed summand: a power of X, or a constant
type term struct {
	power    int
	constant bool
	value    uint8
}

func parseTerm(raw string) (term, error) {
	s := strings.TrimSpace(raw)
	switch {
	case s == "":
		return term{}, errors.ParseError("empty term")
	case s == "X" || s == "x":
		return term{power: 1}, nil
	case strings.HasPrefix(s, "X^") || strings.HasPrefix(s, "x^"):
		power, err := strconv.Atoi(strings.TrimSpace(s[2:]))
		if err != nil || power < 0 {
			return term{}, errors.ParseError(fmt.Sprintf("bad exponent in term %q", s))
		}
		return term{power: power}, nil
	case s == "0" || s == "1":
		return term{constant: true, value: s[0] - '0'}, nil
	}
	return term{}, errors.ParseError(fmt.Sprintf("unrecognized term %q", s))
}

// Parse converts a polynomial expression into coefficients, highest power first
func Parse(line string) (lfsr.Polynomial, error) {
	expr := strings.TrimSpace(line)
	expr = strings.TrimSpace(strings.TrimSuffix(strings.TrimPrefix(expr, wrapperOpen), wrapperClose))
	if expr == "" {
		return nil, errors.ParseError("empty polynomial expression")
	}

	parts := strings.Split(expr, "+")
	terms := make([]term, 0, len(parts))
	degree := 0
	for _, part := range parts {
		t, err := parseTerm(part)
		if err != nil {
			return nil, errors.Wrapf(err, "parsing %q", expr)
		}
		if !t.constant && t.power > degree {
			degree = t.power
		}
		terms = append(terms, t)
	}

	coeffs := make([]uint8, degree+1)
	for _, t := range terms {
		if t.constant {
			coeffs[degree] = t.value
			continue
		}
		coeffs[degree-t.power] = 1
	}

	p, err := lfsr.NewPolynomial(coeffs)
	if err != nil {
		return nil, errors.WithCode(errors.CodeParseError, errors.Wrapf(err, "polynomial %q", expr))
	}
	return p, nil
}
