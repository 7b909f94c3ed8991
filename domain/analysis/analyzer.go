// Package analysis measures how evenly an integer stream covers its values.
package analysis

import (
	"fmt"
	"math"
	"sort"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"phaseshift/internal/errors"
)

// FrequencyStats summarizes the bin counts of one histogram
type FrequencyStats struct {
	Min    float64 `json:"min_frequency"`
	Max    float64 `json:"max_frequency"`
	Mean   float64 `json:"mean_frequency"`
	Median float64 `json:"median_frequency"`
	StdDev float64 `json:"stddev_frequency"`
}

// Histogram is an equal-width histogram. Counts[k] covers
// [Edges[k], Edges[k+1]); the last bin also includes its right edge.
type Histogram struct {
	Edges    []float64 `json:"edges"`
	Counts   []float64 `json:"counts"`
	Distinct int       `json:"distinct"`
	Samples  int       `json:"samples"`
}

// Bins returns the number of bins
func (h Histogram) Bins() int { return len(h.Counts) }

// ExperimentStats is the analysis of one experiment
type ExperimentStats struct {
	Index     int            `json:"index"`
	Samples   int            `json:"samples"`
	Distinct  int            `json:"distinct"`
	MinValue  int64          `json:"min_value"`
	MaxValue  int64          `json:"max_value"`
	Frequency FrequencyStats `json:"frequency"`
	Uniform   Uniformity     `json:"uniformity"`
}

// Summary is the outcome of analyzing a batch of experiments
type Summary struct {
	Experiments   int               `json:"experiments"`
	Average       FrequencyStats    `json:"average"`
	MeanPValue    float64           `json:"mean_p_value"`
	PerExperiment []ExperimentStats `json:"per_experiment"`
	// Last is the histogram of the final experiment, kept for plotting
	Last Histogram `json:"last_histogram"`
}

// BuildHistogram bins values into as many equal-width bins as there are
// distinct values, spanning [min, max]. When every value is equal the span
// is widened to [v-0.5, v+0.5].
func BuildHistogram(values []int64) (Histogram, error) {
	if len(values) == 0 {
		return Histogram{}, errors.ValidationError("cannot build a histogram of an empty experiment")
	}
	x := make([]float64, len(values))
	for i, v := range values {
		x[i] = float64(v)
	}
	sort.Float64s(x)

	distinct := 1
	for i := 1; i < len(x); i++ {
		if x[i] != x[i-1] {
			distinct++
		}
	}

	lo, hi := x[0], x[len(x)-1]
	if lo == hi {
		lo, hi = lo-0.5, hi+0.5
	}
	edges := floats.Span(make([]float64, distinct+1), lo, hi)

	// stat.Histogram treats the last divider as exclusive; nudge it so the
	// maximum lands in the final bin.
	dividers := make([]float64, len(edges))
	copy(dividers, edges)
	dividers[len(dividers)-1] = math.Nextafter(hi, math.Inf(1))

	counts := stat.Histogram(nil, dividers, x, nil)
	return Histogram{
		Edges:    edges,
		Counts:   counts,
		Distinct: distinct,
		Samples:  len(values),
	}, nil
}

// Frequencies computes min, max, mean, median and population standard
// deviation of a histogram's bin counts
func Frequencies(h Histogram) (FrequencyStats, error) {
	counts := stats.Float64Data(h.Counts)
	var fs FrequencyStats
	var err error
	if fs.Min, err = stats.Min(counts); err != nil {
		return fs, errors.Wrap(err, "min frequency")
	}
	if fs.Max, err = stats.Max(counts); err != nil {
		return fs, errors.Wrap(err, "max frequency")
	}
	if fs.Mean, err = stats.Mean(counts); err != nil {
		return fs, errors.Wrap(err, "mean frequency")
	}
	if fs.Median, err = stats.Median(counts); err != nil {
		return fs, errors.Wrap(err, "median frequency")
	}
	if fs.StdDev, err = stats.StandardDeviationPopulation(counts); err != nil {
		return fs, errors.Wrap(err, "stddev frequency")
	}
	return fs, nil
}

// AnalyzeExperiment builds the histogram of one experiment and its statistics
func AnalyzeExperiment(index int, values []int64) (ExperimentStats, Histogram, error) {
	h, err := BuildHistogram(values)
	if err != nil {
		return ExperimentStats{}, Histogram{}, errors.Wrapf(err, "experiment %d", index)
	}
	fs, err := Frequencies(h)
	if err != nil {
		return ExperimentStats{}, Histogram{}, errors.Wrapf(err, "experiment %d", index)
	}
	u, err := ChiSquareUniformity(h)
	if err != nil {
		return ExperimentStats{}, Histogram{}, errors.Wrapf(err, "experiment %d", index)
	}
	minValue, maxValue := values[0], values[0]
	for _, v := range values[1:] {
		if v < minValue {
			minValue = v
		}
		if v > maxValue {
			maxValue = v
		}
	}
	return ExperimentStats{
		Index:     index,
		Samples:   len(values),
		Distinct:  h.Distinct,
		MinValue:  minValue,
		MaxValue:  maxValue,
		Frequency: fs,
		Uniform:   u,
	}, h, nil
}

// Analyze computes per-experiment frequency statistics, averages each of
// them across experiments and keeps the final experiment's histogram
func Analyze(experiments [][]int64) (*Summary, error) {
	if len(experiments) == 0 {
		return nil, errors.ValidationError("no experiment data to analyze")
	}

	summary := &Summary{
		Experiments:   len(experiments),
		PerExperiment: make([]ExperimentStats, len(experiments)),
	}
	for i, values := range experiments {
		es, h, err := AnalyzeExperiment(i, values)
		if err != nil {
			return nil, err
		}
		summary.PerExperiment[i] = es
		summary.Last = h
	}

	avg, err := Average(summary.PerExperiment)
	if err != nil {
		return nil, err
	}
	summary.Average = avg

	pvalues := make(stats.Float64Data, len(summary.PerExperiment))
	for i, es := range summary.PerExperiment {
		pvalues[i] = es.Uniform.PValue
	}
	if summary.MeanPValue, err = stats.Mean(pvalues); err != nil {
		return nil, errors.Wrap(err, "mean p-value")
	}
	return summary, nil
}

// Average takes the arithmetic mean of each statistic across experiments
func Average(per []ExperimentStats) (FrequencyStats, error) {
	if len(per) == 0 {
		return FrequencyStats{}, errors.ValidationError("no experiments to average")
	}
	column := func(pick func(FrequencyStats) float64) (float64, error) {
		data := make(stats.Float64Data, len(per))
		for i, es := range per {
			data[i] = pick(es.Frequency)
		}
		return stats.Mean(data)
	}

	var avg FrequencyStats
	fields := []struct {
		name string
		dst  *float64
		pick func(FrequencyStats) float64
	}{
		{"min", &avg.Min, func(f FrequencyStats) float64 { return f.Min }},
		{"max", &avg.Max, func(f FrequencyStats) float64 { return f.Max }},
		{"mean", &avg.Mean, func(f FrequencyStats) float64 { return f.Mean }},
		{"median", &avg.Median, func(f FrequencyStats) float64 { return f.Median }},
		{"stddev", &avg.StdDev, func(f FrequencyStats) float64 { return f.StdDev }},
	}
	for _, f := range fields {
		v, err := column(f.pick)
		if err != nil {
			return FrequencyStats{}, errors.Wrap(err, fmt.Sprintf("averaging %s frequency", f.name))
		}
		*f.dst = v
	}
	return avg, nil
}
