package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"phaseshift/domain/lfsr"
	"phaseshift/internal/errors"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, DefaultRunConfig(), cfg.Run)
	assert.Equal(t, "./polynomials", cfg.Paths.PolynomialsDir)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, []string{"png"}, cfg.Output.Renderers)

	// 8 integers of 8 bits need 64 channels, but degree 10 defaults to 20
	_, err = cfg.Run.Settings()
	assert.True(t, errors.HasCode(err, errors.CodeValidationError), "got %v", err)
}

func TestDefaultsFitAtDegree32(t *testing.T) {
	r := DefaultRunConfig()
	r.Degree = 32

	s, err := r.Settings()
	require.NoError(t, err)
	assert.Equal(t, 64, s.CS)
	assert.Equal(t, 64, s.NC)
	assert.Equal(t, lfsr.Consecutive, s.Method)
	assert.Equal(t, lfsr.Layout{NumIntegers: 8, BitWidth: 8}, s.Layout)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("PHASESHIFT_DEGREE", "16")
	t.Setenv("PHASESHIFT_ENTRY", "3")
	t.Setenv("PHASESHIFT_CS", "100")
	t.Setenv("PHASESHIFT_NC", "40")
	t.Setenv("PHASESHIFT_METHOD", "separated")
	t.Setenv("PHASESHIFT_NUM_INTEGERS", "10")
	t.Setenv("PHASESHIFT_BIT_WIDTH", "4")
	t.Setenv("PHASESHIFT_SEED", "1234")
	t.Setenv("PHASESHIFT_RENDERERS", "png, xlsx,md")
	t.Setenv("PHASESHIFT_WORKERS", "3")

	cfg, err := Load()
	require.NoError(t, err)

	s, err := cfg.Run.Settings()
	require.NoError(t, err)
	assert.Equal(t, 16, s.Degree)
	assert.Equal(t, 3, s.Entry)
	assert.Equal(t, 100, s.CS)
	assert.Equal(t, 40, s.NC)
	assert.Equal(t, lfsr.Separated, s.Method)
	assert.Equal(t, int64(1234), s.Seed)
	assert.Equal(t, []string{"png", "xlsx", "md"}, cfg.Output.Renderers)
	assert.Equal(t, 3, cfg.Server.Workers)
}

func TestMalformedNumbersFallBack(t *testing.T) {
	t.Setenv("PHASESHIFT_CYCLES", "lots")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 100, cfg.Run.Cycles)
}

func TestRunValidation(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*RunConfig)
		code   string
	}{
		{"degree below range", func(r *RunConfig) { r.Degree = 9 }, errors.CodeConfigInvalid},
		{"degree above range", func(r *RunConfig) { r.Degree = 65 }, errors.CodeConfigInvalid},
		{"single bit integers", func(r *RunConfig) { r.Degree, r.NC, r.CS, r.NumIntegers, r.BitWidth = 10, 20, 20, 10, 1 }, errors.CodeConfigInvalid},
		{"bad method", func(r *RunConfig) { r.Method = "diagonal" }, errors.CodeConfigInvalid},
		{"too many offsets", func(r *RunConfig) { r.NC, r.CS, r.NumIntegers, r.BitWidth = 10, 200, 5, 2 }, errors.CodeValidationError},
		{"too few channels", func(r *RunConfig) { r.NC = 20; r.NumIntegers = 8; r.BitWidth = 8 }, errors.CodeValidationError},
		{"zero cycles", func(r *RunConfig) { r.Cycles = 0 }, errors.CodeValidationError},
		{"zero experiments", func(r *RunConfig) { r.Experiments = 0 }, errors.CodeValidationError},
		{"zero entry", func(r *RunConfig) { r.Entry = 0 }, errors.CodeValidationError},
		{"channels above ceiling", func(r *RunConfig) { r.Degree, r.NC, r.CS = 64, MaxChannels + 1, 1 }, errors.CodeConfigInvalid},
		{"huge channel count", func(r *RunConfig) { r.Degree, r.NC, r.CS = 64, 1 << 30, 1 }, errors.CodeConfigInvalid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := DefaultRunConfig()
			r.NumIntegers, r.BitWidth = 5, 4
			require.NoError(t, r.Validate())
			tt.modify(&r)
			err := r.Validate()
			require.Error(t, err)
			assert.True(t, errors.HasCode(err, tt.code), "got %v", err)
		})
	}
}

func TestPhaseOffsetLimit(t *testing.T) {
	r := DefaultRunConfig()
	r.NumIntegers, r.BitWidth = 5, 2

	r.NC, r.CS = 10, 102 // 1020 < 1024
	assert.NoError(t, r.Validate())

	r.NC, r.CS = 10, 103 // 1030 >= 1024
	assert.Error(t, r.Validate())
}

func TestChannelCeilingAllowsLimit(t *testing.T) {
	r := DefaultRunConfig()
	r.Degree, r.NC, r.CS = 64, MaxChannels, 1
	assert.NoError(t, r.Validate())
}

func TestUnknownRendererRejected(t *testing.T) {
	t.Setenv("PHASESHIFT_RENDERERS", "png,svg")

	_, err := Load()
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.CodeConfigInvalid), "got %v", err)
	assert.Contains(t, err.Error(), "svg")
}
