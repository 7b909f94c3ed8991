// Package experiment describes one batch of phase-shifter experiments:
// the settings that define it and the result it produced.
package experiment

import (
	"fmt"
	"time"

	"phaseshift/domain/analysis"
	"phaseshift/domain/core"
	"phaseshift/domain/lfsr"
	"phaseshift/internal/errors"
)

// Settings fully determine a batch, together with the polynomial source
type Settings struct {
	Degree      int                `json:"degree"`
	Entry       int                `json:"entry"`
	CS          int                `json:"cs"`
	NC          int                `json:"nc"`
	Method      lfsr.ChannelMethod `json:"method"`
	Layout      lfsr.Layout        `json:"layout"`
	Cycles      int                `json:"cycles"`
	Experiments int                `json:"experiments"`
	Seed        int64              `json:"seed"`
	// Polynomial, when set, is used instead of looking up Degree/Entry
	Polynomial lfsr.Polynomial `json:"-"`
}

// Validate applies every check that does not need the polynomial itself
func (s Settings) Validate() error {
	if s.Entry < 1 && s.Polynomial == nil {
		return errors.ValidationError(fmt.Sprintf("entry is 1-indexed, got %d", s.Entry))
	}
	if s.Cycles < 1 {
		return errors.ValidationError(fmt.Sprintf("cycles must be >= 1, got %d", s.Cycles))
	}
	if s.Experiments < 1 {
		return errors.ValidationError(fmt.Sprintf("experiments must be >= 1, got %d", s.Experiments))
	}
	if err := lfsr.ValidatePhaseOffsets(s.Degree, s.NC, s.CS); err != nil {
		return err
	}
	if err := lfsr.ValidateChannels(s.Method, s.NC, s.Layout); err != nil {
		return err
	}
	if s.Polynomial != nil && s.Polynomial.Degree() != s.Degree {
		return errors.ValidationError(fmt.Sprintf("polynomial %s has degree %d, settings say %d",
			s.Polynomial, s.Polynomial.Degree(), s.Degree))
	}
	return nil
}

// Fingerprint identifies the stream-defining parameters. Equal fingerprints
// with equal polynomials emit identical data.
func (s Settings) Fingerprint(p lfsr.Polynomial) core.Hash {
	return core.ComputeFingerprint(map[string]interface{}{
		"polynomial":   p.String(),
		"cs":           s.CS,
		"nc":           s.NC,
		"method":       s.Method.String(),
		"num_integers": s.Layout.NumIntegers,
		"bit_width":    s.Layout.BitWidth,
		"cycles":       s.Cycles,
		"experiments":  s.Experiments,
		"seed":         s.Seed,
	})
}

// Result is everything a finished batch produced
type Result struct {
	RunID       core.RunID        `json:"run_id"`
	Settings    Settings          `json:"settings"`
	Polynomial  lfsr.Polynomial   `json:"-"`
	Expression  string            `json:"polynomial"`
	Fingerprint core.Hash         `json:"fingerprint"`
	Summary     *analysis.Summary `json:"summary"`
	Artifacts   []core.Artifact   `json:"artifacts,omitempty"`
	StartedAt   time.Time         `json:"started_at"`
	FinishedAt  time.Time         `json:"finished_at"`
}

// Duration is the wall time spent on the batch
func (r *Result) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

// HistogramName is the conventional base name for a run's histogram files
func HistogramName(cs int) string {
	return fmt.Sprintf("histogram_cs_%d", cs)
}

// ReportName is the conventional base name for a run's report files
func ReportName(cs int) string {
	return fmt.Sprintf("report_cs_%d", cs)
}
