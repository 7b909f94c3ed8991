package lfsr

import (
	"fmt"

	"phaseshift/internal/errors"
)

// signExtend interprets the low width bits of word as a two's complement value
func signExtend(word uint64, width int) int64 {
	shift := uint(64 - width)
	return int64(word<<shift) >> shift
}

// BitsToSignedInteger reads bits most significant first, bits[0] being the
// sign bit: the unsigned value minus 2^len(bits) when bits[0] is 1.
// A single bit decodes to 0 or -1.
func BitsToSignedInteger(bits []uint8) (int64, error) {
	if len(bits) < 1 || len(bits) > 64 {
		return 0, errors.ValidationError(fmt.Sprintf("bit count must be in [1, 64], got %d", len(bits)))
	}
	var word uint64
	for j, b := range bits {
		if b > 1 {
			return 0, errors.ValidationError(fmt.Sprintf("bit %d is %d", j, b))
		}
		word = word<<1 | uint64(b)
	}
	return signExtend(word, len(bits)), nil
}

// SignedIntegerToBits encodes v as width bits, sign bit first
func SignedIntegerToBits(v int64, width int) ([]uint8, error) {
	if width < 1 || width > 64 {
		return nil, errors.ValidationError(fmt.Sprintf("bit width must be in [1, 64], got %d", width))
	}
	if width < 64 {
		lo, hi := -(int64(1) << uint(width-1)), int64(1)<<uint(width-1)-1
		if v < lo || v > hi {
			return nil, errors.ValidationError(fmt.Sprintf("%d does not fit in %d bits", v, width))
		}
	}
	out := make([]uint8, width)
	word := uint64(v)
	for j := width - 1; j >= 0; j-- {
		out[j] = uint8(word & 1)
		word >>= 1
	}
	return out, nil
}
