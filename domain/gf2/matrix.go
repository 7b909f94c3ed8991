package gf2

import (
	"fmt"
	"math/bits"
	"strings"

	"phaseshift/internal/errors"
)

// Matrix is a rows x cols binary matrix, cols <= MaxWidth
type Matrix struct {
	rows, cols int
	data       []uint64
}

// New returns the rows x cols zero matrix
func New(rows, cols int) (Matrix, error) {
	if rows < 1 {
		return Matrix{}, errors.DimensionError(fmt.Sprintf("matrix needs at least one row, got %d", rows))
	}
	if err := checkWidth(cols); err != nil {
		return Matrix{}, err
	}
	return Matrix{rows: rows, cols: cols, data: make([]uint64, rows)}, nil
}

// Identity returns the n x n identity matrix
func Identity(n int) (Matrix, error) {
	m, err := New(n, n)
	if err != nil {
		return Matrix{}, err
	}
	for i := range m.data {
		m.data[i] = uint64(1) << uint(i)
	}
	return m, nil
}

// FromVectors stacks equal-length vectors as the rows of a matrix
func FromVectors(rows []Vector) (Matrix, error) {
	if len(rows) == 0 {
		return Matrix{}, errors.DimensionError("matrix needs at least one row")
	}
	cols := rows[0].n
	m, err := New(len(rows), cols)
	if err != nil {
		return Matrix{}, err
	}
	for i, r := range rows {
		if r.n != cols {
			return Matrix{}, errors.DimensionError(fmt.Sprintf("row %d has length %d, want %d", i, r.n, cols))
		}
		m.data[i] = r.word
	}
	return m, nil
}

// FromBits builds a matrix from nested 0/1 slices
func FromBits(values [][]uint8) (Matrix, error) {
	rows := make([]Vector, len(values))
	for i, r := range values {
		v, err := VectorFromBits(r)
		if err != nil {
			return Matrix{}, errors.Wrapf(err, "row %d", i)
		}
		rows[i] = v
	}
	return FromVectors(rows)
}

// Rows returns the number of rows
func (m Matrix) Rows() int { return m.rows }

// Cols returns the number of columns
func (m Matrix) Cols() int { return m.cols }

// IsSquare reports whether m is n x n
func (m Matrix) IsSquare() bool { return m.rows == m.cols }

// At returns element (i, j)
func (m Matrix) At(i, j int) uint8 {
	return uint8(m.data[i]>>uint(j)) & 1
}

// Row returns row i as a vector
func (m Matrix) Row(i int) Vector {
	return Vector{n: m.cols, word: m.data[i]}
}

// Equal reports whether m and o have the same shape and elements
func (m Matrix) Equal(o Matrix) bool {
	if m.rows != o.rows || m.cols != o.cols {
		return false
	}
	for i := range m.data {
		if m.data[i] != o.data[i] {
			return false
		}
	}
	return true
}

// Bits unpacks m into nested 0/1 slices
func (m Matrix) Bits() [][]uint8 {
	out := make([][]uint8, m.rows)
	for i := range out {
		out[i] = m.Row(i).Bits()
	}
	return out
}

// String formats m one row per line
func (m Matrix) String() string {
	lines := make([]string, m.rows)
	for i := range lines {
		lines[i] = m.Row(i).String()
	}
	return strings.Join(lines, "\n")
}

// Multiply returns a*b mod 2
func Multiply(a, b Matrix) (Matrix, error) {
	if a.cols != b.rows {
		return Matrix{}, errors.DimensionError(
			fmt.Sprintf("cannot multiply %dx%d by %dx%d", a.rows, a.cols, b.rows, b.cols))
	}
	c := Matrix{rows: a.rows, cols: b.cols, data: make([]uint64, a.rows)}
	for i, row := range a.data {
		c.data[i] = combineRows(row, b.data)
	}
	return c, nil
}

// combineRows XORs together the rows of data selected by the set bits of sel
func combineRows(sel uint64, data []uint64) uint64 {
	var acc uint64
	for sel != 0 {
		k := bits.TrailingZeros64(sel)
		acc ^= data[k]
		sel &= sel - 1
	}
	return acc
}

// Power returns a^k mod 2 by square-and-multiply. Power(a, 0) is the identity.
func Power(a Matrix, k uint64) (Matrix, error) {
	if !a.IsSquare() {
		return Matrix{}, errors.DimensionError(
			fmt.Sprintf("cannot raise non-square %dx%d matrix to a power", a.rows, a.cols))
	}
	result, err := Identity(a.rows)
	if err != nil {
		return Matrix{}, err
	}
	base := a
	for k > 0 {
		if k&1 == 1 {
			if result, err = Multiply(result, base); err != nil {
				return Matrix{}, err
			}
		}
		k >>= 1
		if k > 0 {
			if base, err = Multiply(base, base); err != nil {
				return Matrix{}, err
			}
		}
	}
	return result, nil
}

// MulVec returns a*v mod 2 with v as a column vector. Panics if a.Cols() != v.Len()
// or the result would be wider than MaxWidth.
func MulVec(a Matrix, v Vector) Vector {
	if a.cols != v.n || a.rows > MaxWidth {
		panic(fmt.Sprintf("gf2: %dx%d matrix times vector of length %d", a.rows, a.cols, v.n))
	}
	var word uint64
	for i, row := range a.data {
		word |= uint64(bits.OnesCount64(row&v.word)&1) << uint(i)
	}
	return Vector{n: a.rows, word: word}
}

// VecMul returns v*a mod 2 with v as a row vector. Panics if v.Len() != a.Rows().
func VecMul(v Vector, a Matrix) Vector {
	if v.n != a.rows {
		panic(fmt.Sprintf("gf2: vector of length %d times %dx%d matrix", v.n, a.rows, a.cols))
	}
	return Vector{n: a.cols, word: combineRows(v.word, a.data)}
}
