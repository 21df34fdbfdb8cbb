// Copyright 2023 Sneller, Inc.
//
//  Licensed under the Apache License, Version 2.0 (the "License");
//  you may not use this file except in compliance with the License.
//  You may obtain a copy of the License at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
//  Unless required by applicable law or agreed to in writing, software
//  distributed under the License is distributed on an "AS IS" BASIS,
//  WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
//  See the License for the specific language governing permissions and
//  limitations under the License.

// Package matrix implements small dense matrices
// stored in column-major order.
package matrix

import (
	"errors"
	"fmt"
	"math"

	"github.com/SnellerInc/smallvec"

	"golang.org/x/exp/constraints"
)

// Scalar is the set of element types a Dense can hold.
type Scalar interface {
	constraints.Integer | constraints.Float
}

// ErrShape is returned when matrix dimensions
// are incompatible with an operation.
var ErrShape = errors.New("matrix: dimension mismatch")

// Dense is a rows x cols matrix. Elements are
// stored column by column, so up to 16 elements
// (a 4x4 matrix) are kept inline.
type Dense[T Scalar] struct {
	rows, cols int
	data       smallvec.Vec[T, [16]T]
}

// elements returns rows*cols, or false if either
// dimension is negative or the product overflows an int.
func elements(rows, cols int) (int, bool) {
	if rows < 0 || cols < 0 {
		return 0, false
	}
	if rows != 0 && cols > math.MaxInt/rows {
		return 0, false
	}
	return rows * cols, true
}

// NewDense returns a zeroed rows x cols matrix.
// It panics if the dimensions are negative or
// rows*cols does not fit in an int.
func NewDense[T Scalar](rows, cols int) *Dense[T] {
	n, ok := elements(rows, cols)
	if !ok {
		panic(fmt.Sprintf("matrix: invalid dimensions %dx%d", rows, cols))
	}
	d := &Dense[T]{rows: rows, cols: cols}
	d.data.Reserve(n)
	var zero T
	for i := 0; i < n; i++ {
		d.data.Append(zero)
	}
	return d
}

// NewDenseFrom returns a rows x cols matrix
// holding the column-major values in data.
func NewDenseFrom[T Scalar](rows, cols int, data []T) (*Dense[T], error) {
	if n, ok := elements(rows, cols); !ok || n != len(data) {
		return nil, fmt.Errorf("%w: %d values for a %dx%d matrix", ErrShape, len(data), rows, cols)
	}
	d := &Dense[T]{rows: rows, cols: cols}
	d.data.AppendSlice(data...)
	return d, nil
}

func (d *Dense[T]) Rows() int { return d.rows }
func (d *Dense[T]) Cols() int { return d.cols }

// Len returns rows*cols.
func (d *Dense[T]) Len() int { return d.data.Len() }

// OnHeap returns true if the elements did
// not fit in the inline storage.
func (d *Dense[T]) OnHeap() bool { return d.data.OnHeap() }

func (d *Dense[T]) index(r, c int) int {
	if uint(r) >= uint(d.rows) || uint(c) >= uint(d.cols) {
		panic(fmt.Sprintf("matrix: index [%d,%d] out of range for %dx%d", r, c, d.rows, d.cols))
	}
	return c*d.rows + r
}

// At returns the element at row r, column c.
func (d *Dense[T]) At(r, c int) T {
	return d.data.At(d.index(r, c))
}

// Set stores x at row r, column c.
func (d *Dense[T]) Set(r, c int, x T) {
	d.data.Set(d.index(r, c), x)
}

// Elem returns the element at linear
// column-major index i.
func (d *Dense[T]) Elem(i int) any {
	return d.data.At(i)
}

// Col returns column c. The result aliases
// the matrix until the next modification.
func (d *Dense[T]) Col(c int) []T {
	if uint(c) >= uint(d.cols) {
		panic(fmt.Sprintf("matrix: column %d out of range for %d columns", c, d.cols))
	}
	return d.data.Slice()[c*d.rows : (c+1)*d.rows]
}

// Transpose returns a new cols x rows matrix.
func (d *Dense[T]) Transpose() *Dense[T] {
	t := NewDense[T](d.cols, d.rows)
	for c := 0; c < d.cols; c++ {
		for r := 0; r < d.rows; r++ {
			t.Set(c, r, d.At(r, c))
		}
	}
	return t
}

// Mul returns the product d*b.
func (d *Dense[T]) Mul(b *Dense[T]) (*Dense[T], error) {
	if d.cols != b.rows {
		return nil, fmt.Errorf("%w: %dx%d * %dx%d", ErrShape, d.rows, d.cols, b.rows, b.cols)
	}
	out := NewDense[T](d.rows, b.cols)
	for c := 0; c < b.cols; c++ {
		bc := b.Col(c)
		for r := 0; r < d.rows; r++ {
			var sum T
			for k := 0; k < d.cols; k++ {
				sum += d.At(r, k) * bc[k]
			}
			out.Set(r, c, sum)
		}
	}
	return out, nil
}

// Summary returns the one-line description
// a debugger shows next to the matrix.
func (d *Dense[T]) Summary() string {
	return d.data.Summary()
}
