package lfsr

import (
	"fmt"
	"math/bits"
	"strings"

	"phaseshift/domain/gf2"
	"phaseshift/internal/errors"
)

// ChannelMethod selects which phase-shifter row feeds bit j of integer i
type ChannelMethod int

const (
	// Consecutive gives each integer a contiguous block of rows: i*bitWidth + j
	Consecutive ChannelMethod = iota
	// Separated interleaves integers across rows: i + j*numIntegers
	Separated
)

// ParseChannelMethod maps "consecutive" or "separated" to a ChannelMethod
func ParseChannelMethod(s string) (ChannelMethod, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "consecutive":
		return Consecutive, nil
	case "separated":
		return Separated, nil
	}
	return 0, errors.ValidationError(fmt.Sprintf("unknown channel method %q (want consecutive or separated)", s))
}

func (m ChannelMethod) String() string {
	switch m {
	case Consecutive:
		return "consecutive"
	case Separated:
		return "separated"
	}
	return fmt.Sprintf("ChannelMethod(%d)", int(m))
}

// MarshalText implements encoding.TextMarshaler
func (m ChannelMethod) MarshalText() ([]byte, error) {
	switch m {
	case Consecutive, Separated:
		return []byte(m.String()), nil
	}
	return nil, errors.ValidationError(fmt.Sprintf("unknown channel method %d", int(m)))
}

// UnmarshalText implements encoding.TextUnmarshaler
func (m *ChannelMethod) UnmarshalText(text []byte) error {
	parsed, err := ParseChannelMethod(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// Layout is the shape of one cycle's output: NumIntegers values of BitWidth bits
type Layout struct {
	NumIntegers int `json:"num_integers"`
	BitWidth    int `json:"bit_width"`
}

// Validate checks that the layout is non-empty and each value fits an int64
func (l Layout) Validate() error {
	if l.NumIntegers < 1 {
		return errors.ValidationError(fmt.Sprintf("num_integers must be >= 1, got %d", l.NumIntegers))
	}
	if l.BitWidth < 1 || l.BitWidth > 64 {
		return errors.ValidationError(fmt.Sprintf("bit_width must be in [1, 64], got %d", l.BitWidth))
	}
	return nil
}

// Row maps output slot (i, j) to a phase-shifter row
func (m ChannelMethod) Row(i, j int, l Layout) int {
	switch m {
	case Separated:
		return i + j*l.NumIntegers
	default:
		return i*l.BitWidth + j
	}
}

// MaxRow returns the largest row index the method touches for l.
// Both methods cover rows [0, NumIntegers*BitWidth) exactly once.
func (m ChannelMethod) MaxRow(l Layout) int {
	return m.Row(l.NumIntegers-1, l.BitWidth-1, l)
}

// ValidateChannels fails unless every row the method touches exists in a
// phase shifter with nc rows
func ValidateChannels(m ChannelMethod, nc int, l Layout) error {
	if err := l.Validate(); err != nil {
		return err
	}
	if m != Consecutive && m != Separated {
		return errors.ValidationError(fmt.Sprintf("unknown channel method %d", int(m)))
	}
	if maxRow := m.MaxRow(l); maxRow >= nc {
		return errors.ValidationError(fmt.Sprintf(
			"%s layout of %d x %d-bit integers needs channel %d but only %d channels exist",
			m, l.NumIntegers, l.BitWidth, maxRow, nc))
	}
	return nil
}

// ValidatePhaseOffsets enforces nc*cs < 2^degree so the nc phase offsets
// stay distinct within the register's period of 2^degree - 1.
func ValidatePhaseOffsets(degree, nc, cs int) error {
	if degree < 1 || degree > gf2.MaxWidth {
		return errors.ValidationError(fmt.Sprintf("degree must be in [1, %d], got %d", gf2.MaxWidth, degree))
	}
	if nc < 1 {
		return errors.ValidationError(fmt.Sprintf("nc must be >= 1, got %d", nc))
	}
	if cs < 0 {
		return errors.ValidationError(fmt.Sprintf("cs must be >= 0, got %d", cs))
	}
	hi, lo := bits.Mul64(uint64(nc), uint64(cs))
	if hi != 0 || (degree < 64 && lo >= uint64(1)<<uint(degree)) {
		return errors.ValidationError(fmt.Sprintf("nc x cs (%d x %d) must be smaller than 2^%d", nc, cs, degree))
	}
	return nil
}
