package analysis

import (
	"gonum.org/v1/gonum/stat/distuv"

	"phaseshift/internal/errors"
)

// Uniformity is a chi-square goodness-of-fit test of a histogram's bin
// counts against equal counts in every bin
type Uniformity struct {
	ChiSquare float64 `json:"chi_square"`
	DoF       int     `json:"dof"`
	PValue    float64 `json:"p_value"`
}

// ChiSquareUniformity tests h against the uniform distribution over its bins.
// A single bin is trivially uniform.
func ChiSquareUniformity(h Histogram) (Uniformity, error) {
	if h.Bins() == 0 {
		return Uniformity{}, errors.ValidationError("histogram has no bins")
	}
	var total float64
	for _, c := range h.Counts {
		total += c
	}
	if total == 0 {
		return Uniformity{}, errors.ValidationError("histogram is empty")
	}

	dof := h.Bins() - 1
	if dof == 0 {
		return Uniformity{DoF: 0, PValue: 1}, nil
	}

	expected := total / float64(h.Bins())
	var chi2 float64
	for _, c := range h.Counts {
		d := c - expected
		chi2 += d * d / expected
	}
	return Uniformity{
		ChiSquare: chi2,
		DoF:       dof,
		PValue:    distuv.ChiSquared{K: float64(dof)}.Survival(chi2),
	}, nil
}
