package lfsr

import (
	"fmt"

	"phaseshift/domain/gf2"
	"phaseshift/internal/errors"
)

// Simulator clocks a register and reads integers through a phase shifter.
// It holds only read-only matrices, so one Simulator may serve many
// experiments at once.
type Simulator struct {
	tm     gf2.Matrix
	ps     gf2.Matrix
	method ChannelMethod
	layout Layout
}

// NewSimulator checks that tm, ps and the channel layout agree
func NewSimulator(tm, ps gf2.Matrix, method ChannelMethod, layout Layout) (*Simulator, error) {
	if !tm.IsSquare() {
		return nil, errors.DimensionError(fmt.Sprintf("transition matrix must be square, got %dx%d", tm.Rows(), tm.Cols()))
	}
	if ps.Cols() != tm.Cols() {
		return nil, errors.DimensionError(fmt.Sprintf("phase shifter has %d columns, register has %d cells", ps.Cols(), tm.Cols()))
	}
	if err := ValidateChannels(method, ps.Rows(), layout); err != nil {
		return nil, err
	}
	return &Simulator{tm: tm, ps: ps, method: method, layout: layout}, nil
}

// Degree returns the register length
func (s *Simulator) Degree() int { return s.tm.Rows() }

// Layout returns the per-cycle output shape
func (s *Simulator) Layout() Layout { return s.layout }

// Method returns the channel selection method
func (s *Simulator) Method() ChannelMethod { return s.method }

// Step clocks state once and returns the new state together with the
// integers read from it
func (s *Simulator) Step(state gf2.Vector) (gf2.Vector, []int64) {
	next := Advance(s.tm, state)
	return next, s.Read(next)
}

// Read extracts one cycle's integers from state without clocking
func (s *Simulator) Read(state gf2.Vector) []int64 {
	out := make([]int64, s.layout.NumIntegers)
	for i := range out {
		var word uint64
		for j := 0; j < s.layout.BitWidth; j++ {
			tap := s.ps.Row(s.method.Row(i, j, s.layout))
			word = word<<1 | uint64(gf2.Dot(tap, state))
		}
		out[i] = signExtend(word, s.layout.BitWidth)
	}
	return out
}

// Stream starts a run of cycles clocks from initial
func (s *Simulator) Stream(initial gf2.Vector, cycles int) (*Stream, error) {
	if initial.Len() != s.Degree() {
		return nil, errors.DimensionError(fmt.Sprintf("initial state has %d cells, register has %d", initial.Len(), s.Degree()))
	}
	if cycles < 0 {
		return nil, errors.ValidationError(fmt.Sprintf("cycles must be >= 0, got %d", cycles))
	}
	return &Stream{sim: s, state: initial, remaining: cycles}, nil
}

// maxPrealloc bounds the up-front allocation in Run; longer runs grow by append
const maxPrealloc = 1 << 16

// Run collects every cycle of a stream
func (s *Simulator) Run(initial gf2.Vector, cycles int) ([][]int64, error) {
	stream, err := s.Stream(initial, cycles)
	if err != nil {
		return nil, err
	}
	out := make([][]int64, 0, min(cycles, maxPrealloc))
	for {
		values, ok := stream.Next()
		if !ok {
			return out, nil
		}
		out = append(out, values)
	}
}

// Stream is a finite, single-use sequence of per-cycle integer tuples
type Stream struct {
	sim       *Simulator
	state     gf2.Vector
	remaining int
}

// Next clocks the register and returns that cycle's integers.
// It returns false once the requested number of cycles has been produced.
func (st *Stream) Next() ([]int64, bool) {
	if st.remaining <= 0 {
		return nil, false
	}
	st.remaining--
	var values []int64
	st.state, values = st.sim.Step(st.state)
	return values, true
}

// State returns the register state after the most recent Next
func (st *Stream) State() gf2.Vector { return st.state }

// Remaining returns how many cycles are left
func (st *Stream) Remaining() int { return st.remaining }

// Flatten concatenates per-cycle tuples into one slice
func Flatten(cycles [][]int64) []int64 {
	total := 0
	for _, c := range cycles {
		total += len(c)
	}
	out := make([]int64, 0, total)
	for _, c := range cycles {
		out = append(out, c...)
	}
	return out
}
