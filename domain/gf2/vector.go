// Package gf2 implements vectors and matrices over GF(2).
//
// Every row and every vector is packed into a single uint64 with column j
// stored at bit j, so widths are limited to MaxWidth. Addition is XOR and
// multiplication is AND; values are immutable once built.
package gf2

import (
	"fmt"
	"math/bits"
	"strings"

	"phaseshift/internal/errors"
)

// MaxWidth is the widest vector or matrix row a word can hold
const MaxWidth = 64

// Vector is a binary vector of fixed length
type Vector struct {
	n    int
	word uint64
}

func mask(n int) uint64 {
	if n >= MaxWidth {
		return ^uint64(0)
	}
	return (uint64(1) << uint(n)) - 1
}

func checkWidth(n int) error {
	if n < 1 || n > MaxWidth {
		return errors.DimensionError(fmt.Sprintf("width %d outside [1, %d]", n, MaxWidth))
	}
	return nil
}

// NewVector returns the zero vector of length n
func NewVector(n int) (Vector, error) {
	if err := checkWidth(n); err != nil {
		return Vector{}, err
	}
	return Vector{n: n}, nil
}

// VectorFromWord builds a length-n vector from the low n bits of word
func VectorFromWord(n int, word uint64) (Vector, error) {
	if err := checkWidth(n); err != nil {
		return Vector{}, err
	}
	return Vector{n: n, word: word & mask(n)}, nil
}

// VectorFromBits builds a vector from a slice of 0/1 values, index 0 first
func VectorFromBits(values []uint8) (Vector, error) {
	if err := checkWidth(len(values)); err != nil {
		return Vector{}, err
	}
	var word uint64
	for j, b := range values {
		switch b {
		case 0:
		case 1:
			word |= uint64(1) << uint(j)
		default:
			return Vector{}, errors.ValidationError(fmt.Sprintf("element %d is %d, not a GF(2) value", j, b))
		}
	}
	return Vector{n: len(values), word: word}, nil
}

// Basis returns the standard basis vector e_i of length n
func Basis(n, i int) (Vector, error) {
	if err := checkWidth(n); err != nil {
		return Vector{}, err
	}
	if i < 0 || i >= n {
		return Vector{}, errors.DimensionError(fmt.Sprintf("basis index %d outside [0, %d)", i, n))
	}
	return Vector{n: n, word: uint64(1) << uint(i)}, nil
}

// Len returns the number of elements
func (v Vector) Len() int { return v.n }

// Word returns the packed representation
func (v Vector) Word() uint64 { return v.word }

// At returns element i
func (v Vector) At(i int) uint8 {
	return uint8(v.word>>uint(i)) & 1
}

// IsZero reports whether every element is 0
func (v Vector) IsZero() bool { return v.word == 0 }

// Equal reports whether v and w have the same length and elements
func (v Vector) Equal(w Vector) bool {
	return v.n == w.n && v.word == w.word
}

// Add returns v + w (XOR). Panics if lengths differ.
func (v Vector) Add(w Vector) Vector {
	if v.n != w.n {
		panic(fmt.Sprintf("gf2: adding vectors of length %d and %d", v.n, w.n))
	}
	return Vector{n: v.n, word: v.word ^ w.word}
}

// Bits unpacks v into a slice of 0/1 values
func (v Vector) Bits() []uint8 {
	out := make([]uint8, v.n)
	for j := range out {
		out[j] = v.At(j)
	}
	return out
}

// String formats v like [0 1 1]
func (v Vector) String() string {
	var sb strings.Builder
	sb.WriteByte('[')
	for j := 0; j < v.n; j++ {
		if j > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteByte('0' + v.At(j))
	}
	sb.WriteByte(']')
	return sb.String()
}

// Dot returns the inner product of a and b mod 2. Panics if lengths differ.
func Dot(a, b Vector) uint8 {
	if a.n != b.n {
		panic(fmt.Sprintf("gf2: dot of vectors of length %d and %d", a.n, b.n))
	}
	return uint8(bits.OnesCount64(a.word&b.word) & 1)
}
