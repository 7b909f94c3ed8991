package experiment

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"phaseshift/domain/lfsr"
	"phaseshift/internal/errors"
)

func validSettings() Settings {
	return Settings{
		Degree: 10, Entry: 1, CS: 20, NC: 20, Method: lfsr.Consecutive,
		Layout: lfsr.Layout{NumIntegers: 5, BitWidth: 4}, Cycles: 10, Experiments: 2, Seed: 1,
	}
}

func TestSettingsValidate(t *testing.T) {
	require.NoError(t, validSettings().Validate())

	tests := []struct {
		name   string
		modify func(*Settings)
	}{
		{"zero entry", func(s *Settings) { s.Entry = 0 }},
		{"zero cycles", func(s *Settings) { s.Cycles = 0 }},
		{"zero experiments", func(s *Settings) { s.Experiments = 0 }},
		{"offsets overflow", func(s *Settings) { s.NC, s.CS = 10, 200; s.Layout = lfsr.Layout{NumIntegers: 5, BitWidth: 2} }},
		{"channels missing", func(s *Settings) { s.Layout.NumIntegers = 6 }},
		{"polynomial degree", func(s *Settings) { s.Polynomial = lfsr.Polynomial{1, 0, 1, 1} }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := validSettings()
			tt.modify(&s)
			err := s.Validate()
			require.Error(t, err)
			assert.True(t, errors.HasCode(err, errors.CodeValidationError), "got %v", err)
		})
	}
}

func TestExplicitPolynomialAllowsZeroEntry(t *testing.T) {
	s := validSettings()
	s.Entry = 0
	s.Polynomial = lfsr.Polynomial{1, 0, 0, 0, 0, 0, 0, 1, 0, 0, 1}
	assert.NoError(t, s.Validate())
}

func TestFingerprint(t *testing.T) {
	p := lfsr.Polynomial{1, 0, 0, 0, 0, 0, 0, 1, 0, 0, 1}
	a := validSettings()
	b := validSettings()
	assert.Equal(t, a.Fingerprint(p), b.Fingerprint(p))

	b.Seed = 2
	assert.NotEqual(t, a.Fingerprint(p), b.Fingerprint(p))

	b = validSettings()
	b.Method = lfsr.Separated
	assert.NotEqual(t, a.Fingerprint(p), b.Fingerprint(p))
}

func TestNamesAndDuration(t *testing.T) {
	assert.Equal(t, "histogram_cs_40", HistogramName(40))
	assert.Equal(t, "report_cs_7", ReportName(7))

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	r := &Result{StartedAt: start, FinishedAt: start.Add(1500 * time.Millisecond)}
	assert.Equal(t, 1500*time.Millisecond, r.Duration())
}
