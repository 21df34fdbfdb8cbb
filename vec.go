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

// Package smallvec implements a growable vector
// that keeps its first few elements in an array
// embedded in the vector itself and only allocates
// a heap buffer once that array is full.
package smallvec

import (
	"fmt"
	"unsafe"

	"github.com/SnellerInc/smallvec/ints"

	"golang.org/x/exp/slices"
)

// Inline is the set of array types that can
// serve as the inline storage of a Vec.
// The length of the array is the inline capacity.
type Inline[T any] interface {
	~[1]T | ~[2]T | ~[4]T | ~[8]T | ~[16]T | ~[32]T | ~[64]T
}

type mode uint8

const (
	inlineMode mode = iota
	heapMode
)

func (m mode) String() string {
	if m == heapMode {
		return "heap"
	}
	return "inline"
}

// noCopy lets 'go vet' flag copies of a Vec.
type noCopy struct{}

func (*noCopy) Lock()   {}
func (*noCopy) Unlock() {}

// Vec is an ordered sequence of T with room
// for len(A) elements inline. For example
//
//	var v smallvec.Vec[int, [4]int]
//
// holds up to four ints without allocating.
// The zero value is an empty vector ready to use.
//
// Once the length exceeds the inline capacity the
// elements move to a heap buffer, and they stay
// there for the life of the vector even if elements
// are removed later.
//
// A Vec must not be copied after first use;
// see Clone and MoveTo. A Vec is not safe for
// concurrent mutation.
type Vec[T any, A Inline[T]] struct {
	noCopy noCopy
	mode mode
	n    int
	// inline is in use iff mode == inlineMode
	inline A
	// heap is in use iff mode == heapMode;
	// len(heap) == cap(heap) is the capacity
	heap []T
}

// InlineCap returns the inline capacity of v.
func (v *Vec[T, A]) InlineCap() int { return len(v.inline) }

// Len returns the number of elements in v.
func (v *Vec[T, A]) Len() int { return v.n }

// Cap returns the number of elements v can
// hold before it has to allocate.
func (v *Vec[T, A]) Cap() int {
	if v.mode == heapMode {
		return len(v.heap)
	}
	return len(v.inline)
}

// OnHeap returns true if the elements of v
// live in a heap buffer rather than inline.
func (v *Vec[T, A]) OnHeap() bool { return v.mode == heapMode }

// Storage returns "inline" or "heap".
func (v *Vec[T, A]) Storage() string { return v.mode.String() }

// buf returns the whole active storage region,
// including the unused tail.
func (v *Vec[T, A]) buf() []T {
	if v.mode == heapMode {
		return v.heap
	}
	return unsafe.Slice((*T)(unsafe.Pointer(&v.inline)), len(v.inline))
}

// Slice returns the elements of v.
// The returned slice aliases the storage of v
// and is only valid until the next call that
// modifies v.
func (v *Vec[T, A]) Slice() []T {
	return v.buf()[:v.n:v.n]
}

// grow makes room for at least need elements.
// Heap capacity doubles and is kept a multiple of
// the inline capacity.
func (v *Vec[T, A]) grow(need int) {
	size := ints.Max(2*v.Cap(), ints.AlignUp(need, len(v.inline)))
	nb := make([]T, size)
	copy(nb, v.buf()[:v.n])
	if v.mode == inlineMode {
		// drop references so the GC can
		// collect what the inline array pointed to
		var zero A
		v.inline = zero
		v.mode = heapMode
	}
	v.heap = nb
}

// Reserve ensures v can hold n elements
// without further allocation.
func (v *Vec[T, A]) Reserve(n int) {
	if n > v.Cap() {
		v.grow(n)
	}
}

// Append adds x as the last element of v.
func (v *Vec[T, A]) Append(x T) {
	if v.n == v.Cap() {
		v.grow(v.n + 1)
	}
	v.buf()[v.n] = x
	v.n++
}

// AppendSlice appends each of xs to v in order.
func (v *Vec[T, A]) AppendSlice(xs ...T) {
	v.Reserve(v.n + len(xs))
	copy(v.buf()[v.n:], xs)
	v.n += len(xs)
}

func (v *Vec[T, A]) check(i int) {
	if uint(i) >= uint(v.n) {
		panic(fmt.Sprintf("smallvec: index out of range [%d] with length %d", i, v.n))
	}
}

// At returns the element at index i.
// It panics if i is out of range.
func (v *Vec[T, A]) At(i int) T {
	v.check(i)
	return v.buf()[i]
}

// Elem is At with the result boxed in an interface.
func (v *Vec[T, A]) Elem(i int) any {
	return v.At(i)
}

// Set replaces the element at index i with x.
func (v *Vec[T, A]) Set(i int, x T) {
	v.check(i)
	v.buf()[i] = x
}

// Insert inserts xs at index i, shifting
// the elements at i and after up.
// It panics if i > v.Len().
func (v *Vec[T, A]) Insert(i int, xs ...T) {
	if i < 0 || i > v.n {
		panic(fmt.Sprintf("smallvec: insert index %d out of range [0:%d]", i, v.n))
	}
	v.Reserve(v.n + len(xs))
	b := v.buf()
	copy(b[i+len(xs):], b[i:v.n])
	copy(b[i:], xs)
	v.n += len(xs)
}

// Delete removes the elements in [i, j).
// The storage mode of v does not change.
func (v *Vec[T, A]) Delete(i, j int) {
	if i < 0 || j > v.n || i > j {
		panic(fmt.Sprintf("smallvec: delete range [%d:%d] out of range [0:%d]", i, j, v.n))
	}
	rest := slices.Delete(v.buf()[:v.n], i, j)
	clear(v.buf()[len(rest):v.n])
	v.n = len(rest)
}

// Pop removes and returns the last element.
// The second result is false if v was empty.
func (v *Vec[T, A]) Pop() (T, bool) {
	var zero T
	if v.n == 0 {
		return zero, false
	}
	v.n--
	b := v.buf()
	x := b[v.n]
	b[v.n] = zero
	return x, true
}

// Truncate shrinks v to its first n elements.
// It is a no-op if n >= v.Len().
func (v *Vec[T, A]) Truncate(n int) {
	if n < 0 {
		panic("smallvec: negative length")
	}
	if n >= v.n {
		return
	}
	clear(v.buf()[n:v.n])
	v.n = n
}

// Each calls fn for each element in order
// until fn returns false.
func (v *Vec[T, A]) Each(fn func(i int, x T) bool) {
	b := v.buf()
	for i := 0; i < v.n; i++ {
		if !fn(i, b[i]) {
			return
		}
	}
}

// Clone returns an independent copy of v.
// The copy spills to the heap only if its
// length requires it.
func (v *Vec[T, A]) Clone() *Vec[T, A] {
	c := new(Vec[T, A])
	c.AppendSlice(v.Slice()...)
	return c
}

// MoveTo transfers the contents and storage of v
// into dst, releasing whatever dst held before.
// Afterwards v is an empty inline vector.
func (v *Vec[T, A]) MoveTo(dst *Vec[T, A]) {
	if dst == v {
		return
	}
	dst.Release()
	dst.mode, dst.n, dst.inline, dst.heap = v.mode, v.n, v.inline, v.heap
	v.mode, v.n, v.heap = inlineMode, 0, nil
	var zero A
	v.inline = zero
}

// Release ends the life of the contents of v:
// the heap buffer, if any, is dropped and v
// returns to the zero state.
func (v *Vec[T, A]) Release() {
	var zero A
	v.inline = zero
	v.heap = nil
	v.mode = inlineMode
	v.n = 0
}

// Equal reports whether a and b hold
// the same elements in the same order.
func Equal[T comparable, A Inline[T]](a, b *Vec[T, A]) bool {
	return slices.Equal(a.Slice(), b.Slice())
}

// Index returns the index of the first
// occurrence of x in v, or -1 if absent.
func Index[T comparable, A Inline[T]](v *Vec[T, A], x T) int {
	return slices.Index(v.Slice(), x)
}
