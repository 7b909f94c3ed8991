package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"phaseshift/internal/config"
	"phaseshift/internal/errors"
)

func TestApplyPositional(t *testing.T) {
	rc := config.DefaultRunConfig()
	require.NoError(t, applyPositional(&rc, []string{"16", "2", "0", "40", "separated", "10", "4", "500", "3"}))

	assert.Equal(t, config.RunConfig{
		Degree: 16, Entry: 2, CS: 0, NC: 40, Method: "separated",
		NumIntegers: 10, BitWidth: 4, Cycles: 500, Experiments: 3,
	}, rc)

	s, err := rc.Settings()
	require.NoError(t, err)
	assert.Equal(t, 32, s.CS)
}

func TestApplyPositionalPartial(t *testing.T) {
	rc := config.DefaultRunConfig()
	require.NoError(t, applyPositional(&rc, []string{"12"}))
	assert.Equal(t, 12, rc.Degree)
	assert.Equal(t, config.DefaultRunConfig().Entry, rc.Entry)
	assert.Equal(t, config.DefaultRunConfig().Cycles, rc.Cycles)
}

func TestApplyPositionalErrors(t *testing.T) {
	rc := config.DefaultRunConfig()
	err := applyPositional(&rc, []string{"10", "one"})
	assert.True(t, errors.HasCode(err, errors.CodeConfigInvalid))
	assert.Contains(t, err.Error(), "entry")

	err = applyPositional(&rc, make([]string, 10))
	assert.Error(t, err)
}
