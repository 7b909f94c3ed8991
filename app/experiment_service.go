package app

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"phaseshift/domain/analysis"
	"phaseshift/domain/core"
	"phaseshift/domain/experiment"
	"phaseshift/domain/gf2"
	"phaseshift/domain/lfsr"
	"phaseshift/internal"
	"phaseshift/internal/errors"
	"phaseshift/ports"
)

// ExperimentService runs batches of phase-shifter experiments end to end:
// polynomial lookup, matrix construction, simulation, analysis and rendering.
type ExperimentService struct {
	polynomials ports.PolynomialPort
	states      ports.StatePort
	renderers   []ports.RendererPort
	workers     int
	logger      *internal.Logger
}

// Machine is the prepared, read-only part of a run
type Machine struct {
	Polynomial lfsr.Polynomial
	TM         gf2.Matrix
	PS         gf2.Matrix
	Simulator  *lfsr.Simulator
}

// NewExperimentService creates an experiment service. workers <= 0 uses GOMAXPROCS.
func NewExperimentService(polynomials ports.PolynomialPort, states ports.StatePort, workers int, logger *internal.Logger, renderers ...ports.RendererPort) *ExperimentService {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if logger == nil {
		logger = internal.NewDefaultLogger()
	}
	return &ExperimentService{
		polynomials: polynomials,
		states:      states,
		renderers:   renderers,
		workers:     workers,
		logger:      logger.With("ExperimentService"),
	}
}

// Workers returns the concurrency limit used by Execute
func (s *ExperimentService) Workers() int { return s.workers }

// Setup validates settings and builds the matrices and simulator. Every
// check runs before any simulation starts.
func (s *ExperimentService) Setup(ctx context.Context, settings experiment.Settings) (*Machine, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}

	p := settings.Polynomial
	if p == nil {
		if s.polynomials == nil {
			return nil, errors.ConfigInvalid("no polynomial source configured")
		}
		var err error
		p, err = s.polynomials.Polynomial(ctx, settings.Degree, settings.Entry)
		if err != nil {
			return nil, err
		}
	}
	s.logger.Debug("Using polynomial %s", p)

	tm, err := lfsr.BuildTransitionMatrix(p)
	if err != nil {
		return nil, err
	}
	ps, err := lfsr.BuildPhaseShifter(tm, settings.NC, settings.CS)
	if err != nil {
		return nil, err
	}
	sim, err := lfsr.NewSimulator(tm, ps, settings.Method, settings.Layout)
	if err != nil {
		return nil, err
	}
	return &Machine{Polynomial: p, TM: tm, PS: ps, Simulator: sim}, nil
}

// Execute runs settings.Experiments independent experiments on m and
// returns one flattened integer stream per experiment, in index order.
func (s *ExperimentService) Execute(ctx context.Context, m *Machine, settings experiment.Settings) ([][]int64, error) {
	if s.states == nil {
		return nil, errors.ConfigInvalid("no initial state source configured")
	}

	results := make([][]int64, settings.Experiments)
	sem := semaphore.NewWeighted(int64(s.workers))
	g, gctx := errgroup.WithContext(ctx)

	for k := 0; k < settings.Experiments; k++ {
		if err := sem.Acquire(gctx, 1); err != nil {
			break
		}
		g.Go(func() error {
			defer sem.Release(1)

			state, err := s.states.InitialState(gctx, settings.Seed, k, m.Simulator.Degree())
			if err != nil {
				if errors.IsContextError(err) {
					return err
				}
				return errors.Wrapf(err, "experiment %d: drawing initial state", k)
			}
			cycles, err := m.Simulator.Run(state, settings.Cycles)
			if err != nil {
				return errors.Wrapf(err, "experiment %d", k)
			}
			results[k] = lfsr.Flatten(cycles)
			s.logger.Trace("Experiment %d finished with %d integers", k, len(results[k]))
			return gctx.Err()
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

// Run executes a full batch and renders into outDir. An empty outDir skips rendering.
func (s *ExperimentService) Run(ctx context.Context, settings experiment.Settings, outDir string) (*experiment.Result, error) {
	startTime := time.Now()

	m, err := s.Setup(ctx, settings)
	if err != nil {
		return nil, err
	}
	settings.Polynomial = m.Polynomial
	if settings.Seed == 0 && s.states != nil {
		settings.Seed = s.states.NewSeed()
	}

	s.logger.Info("Running %d experiments of %d cycles (degree=%d cs=%d nc=%d method=%s bits=%dx%d workers=%d)",
		settings.Experiments, settings.Cycles, settings.Degree, settings.CS, settings.NC,
		settings.Method, settings.Layout.NumIntegers, settings.Layout.BitWidth, s.workers)

	data, err := s.Execute(ctx, m, settings)
	if err != nil {
		return nil, err
	}

	summary, err := analysis.Analyze(data)
	if err != nil {
		return nil, err
	}

	result := &experiment.Result{
		RunID:       core.NewRunID(),
		Settings:    settings,
		Polynomial:  m.Polynomial,
		Expression:  m.Polynomial.String(),
		Fingerprint: settings.Fingerprint(m.Polynomial),
		Summary:     summary,
		StartedAt:   startTime,
	}

	if outDir != "" {
		artifacts, err := s.Render(ctx, result, outDir)
		if err != nil {
			return nil, err
		}
		result.Artifacts = artifacts
	}

	result.FinishedAt = time.Now()
	s.logger.Info("Run %s finished in %v (fingerprint %s)", result.RunID, result.Duration(), result.Fingerprint.Short())
	return result, nil
}

// Render hands result to every configured renderer
func (s *ExperimentService) Render(ctx context.Context, result *experiment.Result, outDir string) ([]core.Artifact, error) {
	if len(s.renderers) == 0 {
		return nil, nil
	}
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return nil, errors.Wrapf(err, "creating output directory %s", outDir)
	}

	var artifacts []core.Artifact
	for _, r := range s.renderers {
		written, err := r.Render(ctx, result, outDir)
		if err != nil {
			return nil, errors.Wrapf(err, "%s renderer", r.Name())
		}
		for _, a := range written {
			s.logger.Debug("Wrote %s %s", a.Kind, a.Path)
		}
		artifacts = append(artifacts, written...)
	}
	return artifacts, nil
}

// Period measures the cycle length of the register for polynomial degree/entry,
// starting from the state with only the last cell set
func (s *ExperimentService) Period(ctx context.Context, degree, entry int, limit uint64) (lfsr.Polynomial, uint64, error) {
	if s.polynomials == nil {
		return nil, 0, errors.ConfigInvalid("no polynomial source configured")
	}
	p, err := s.polynomials.Polynomial(ctx, degree, entry)
	if err != nil {
		return nil, 0, err
	}
	tm, err := lfsr.BuildTransitionMatrix(p)
	if err != nil {
		return nil, 0, err
	}
	start, err := gf2.Basis(degree, degree-1)
	if err != nil {
		return nil, 0, err
	}
	period, err := lfsr.Period(tm, start, limit)
	if err != nil {
		return p, 0, err
	}
	return p, period, nil
}

// FormatSummary renders the averaged statistics the way the command line prints them
func FormatSummary(summary *analysis.Summary) string {
	avg := summary.Average
	return fmt.Sprintf("Averaged Statistics after %d Experiments:\n"+
		"Average Minimum Frequency: %g\n"+
		"Average Maximum Frequency: %g\n"+
		"Average Mean Frequency: %.2f\n"+
		"Average Median Frequency: %g\n"+
		"Average Standard Deviation of Frequencies: %.2f\n"+
		"Mean Uniformity p-value: %.4f\n",
		summary.Experiments, avg.Min, avg.Max, avg.Mean, avg.Median, avg.StdDev, summary.MeanPValue)
}
