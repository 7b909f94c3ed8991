package rng

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitialStateDeterministic(t *testing.T) {
	ctx := context.Background()
	a := NewStateSource()
	b := NewStateSource()

	for i := 0; i < 10; i++ {
		va, err := a.InitialState(ctx, 99, i, 20)
		require.NoError(t, err)
		vb, err := b.InitialState(ctx, 99, i, 20)
		require.NoError(t, err)
		assert.True(t, va.Equal(vb), "experiment %d", i)
		assert.Equal(t, 20, va.Len())
	}
}

func TestInitialStateVariesByExperiment(t *testing.T) {
	src := NewStateSource()
	seen := map[uint64]bool{}
	for i := 0; i < 50; i++ {
		v, err := src.InitialState(context.Background(), 7, i, 64)
		require.NoError(t, err)
		seen[v.Word()] = true
	}
	assert.Greater(t, len(seen), 45)
}

func TestInitialStateVariesBySeed(t *testing.T) {
	src := NewStateSource()
	a, err := src.InitialState(context.Background(), 1000, 0, 64)
	require.NoError(t, err)
	b, err := src.InitialState(context.Background(), 2000, 0, 64)
	require.NoError(t, err)
	assert.False(t, a.Equal(b))
}

func TestInitialStateErrors(t *testing.T) {
	src := NewStateSource()
	_, err := src.InitialState(context.Background(), 1, -1, 10)
	assert.Error(t, err)
	_, err = src.InitialState(context.Background(), 1, 0, 65)
	assert.Error(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = src.InitialState(ctx, 1, 0, 10)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewSeed(t *testing.T) {
	src := &StateSource{clock: func() time.Time { return time.Unix(0, 0) }}
	assert.Equal(t, int64(1), src.NewSeed())

	assert.NotZero(t, NewStateSource().NewSeed())
}
