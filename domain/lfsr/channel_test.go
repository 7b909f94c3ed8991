package lfsr

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"phaseshift/internal/errors"
)

func TestParseChannelMethod(t *testing.T) {
	m, err := ParseChannelMethod("consecutive")
	require.NoError(t, err)
	assert.Equal(t, Consecutive, m)

	m, err = ParseChannelMethod(" Separated ")
	require.NoError(t, err)
	assert.Equal(t, Separated, m)

	_, err = ParseChannelMethod("interleaved")
	assert.True(t, errors.HasCode(err, errors.CodeValidationError))
}

func TestChannelMethodJSON(t *testing.T) {
	var payload struct {
		Method ChannelMethod `json:"method"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"method":"separated"}`), &payload))
	assert.Equal(t, Separated, payload.Method)

	out, err := json.Marshal(payload)
	require.NoError(t, err)
	assert.JSONEq(t, `{"method":"separated"}`, string(out))
}

func TestChannelRows(t *testing.T) {
	l := Layout{NumIntegers: 3, BitWidth: 4}

	assert.Equal(t, 0, Consecutive.Row(0, 0, l))
	assert.Equal(t, 5, Consecutive.Row(1, 1, l))
	assert.Equal(t, 11, Consecutive.Row(2, 3, l))

	assert.Equal(t, 0, Separated.Row(0, 0, l))
	assert.Equal(t, 4, Separated.Row(1, 1, l))
	assert.Equal(t, 11, Separated.Row(2, 3, l))
}

func TestChannelRowsCoverEachRowOnce(t *testing.T) {
	l := Layout{NumIntegers: 5, BitWidth: 3}
	for _, m := range []ChannelMethod{Consecutive, Separated} {
		seen := map[int]int{}
		for i := 0; i < l.NumIntegers; i++ {
			for j := 0; j < l.BitWidth; j++ {
				seen[m.Row(i, j, l)]++
			}
		}
		assert.Len(t, seen, 15, m.String())
		for row, count := range seen {
			assert.Equal(t, 1, count, "%s row %d", m, row)
			assert.Less(t, row, 15)
		}
		assert.Equal(t, 14, m.MaxRow(l))
	}
}

func TestValidateChannels(t *testing.T) {
	l := Layout{NumIntegers: 10, BitWidth: 2}
	assert.NoError(t, ValidateChannels(Consecutive, 20, l))
	assert.NoError(t, ValidateChannels(Separated, 20, l))

	err := ValidateChannels(Consecutive, 19, l)
	assert.True(t, errors.HasCode(err, errors.CodeValidationError))
	err = ValidateChannels(Separated, 19, l)
	assert.True(t, errors.HasCode(err, errors.CodeValidationError))

	assert.Error(t, ValidateChannels(Consecutive, 20, Layout{NumIntegers: 0, BitWidth: 8}))
	assert.Error(t, ValidateChannels(Consecutive, 200, Layout{NumIntegers: 1, BitWidth: 65}))
	assert.Error(t, ValidateChannels(ChannelMethod(7), 20, l))
}

func TestValidatePhaseOffsets(t *testing.T) {
	assert.NoError(t, ValidatePhaseOffsets(10, 20, 20))

	// 10 * 200 = 2000 >= 1024
	err := ValidatePhaseOffsets(10, 10, 200)
	assert.True(t, errors.HasCode(err, errors.CodeValidationError))

	// boundary: 1023 passes, 1024 fails
	assert.NoError(t, ValidatePhaseOffsets(10, 1, 1023))
	assert.Error(t, ValidatePhaseOffsets(10, 1, 1024))
	assert.Error(t, ValidatePhaseOffsets(10, 2, 512))

	assert.NoError(t, ValidatePhaseOffsets(64, 128, 128))
	assert.Error(t, ValidatePhaseOffsets(64, 1<<40, 1<<40))
	assert.Error(t, ValidatePhaseOffsets(10, 0, 20))
	assert.Error(t, ValidatePhaseOffsets(65, 1, 1))
}
