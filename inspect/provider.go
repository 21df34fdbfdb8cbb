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

// Package inspect presents containers the way a
// debugger would: as a summary line plus a list of
// named "synthetic" children, one per element.
package inspect

import (
	"fmt"
	"strconv"
	"strings"
)

// Child is one synthetic child of a container.
type Child struct {
	Name  string
	Value any
}

// Provider produces the synthetic children
// of a single container value.
type Provider interface {
	// NumChildren is the number of children.
	NumChildren() int
	// HasChildren is true if NumChildren
	// would return a positive value.
	HasChildren() bool
	// ChildAt returns child i. The second
	// result is false if i is out of range.
	ChildAt(i int) (Child, bool)
	// ChildIndex maps a child name back to
	// its index, or returns -1.
	ChildIndex(name string) int
	// Update refreshes any cached state after
	// the underlying value has changed.
	Update()
	// Summary is the one-line description
	// of the value.
	Summary() string
}

func sizeSummary(n int) string {
	return "size = " + strconv.Itoa(n)
}

// sequence is the view a VecProvider needs;
// *smallvec.Vec implements it.
type sequence interface {
	Len() int
	InlineCap() int
	OnHeap() bool
	Storage() string
	Elem(i int) any
}

// VecProvider presents a small vector
// with children named [0], [1], ...
type VecProvider struct {
	v sequence
	n int
}

// NewVecProvider returns a provider for v.
func NewVecProvider(v sequence) *VecProvider {
	p := &VecProvider{v: v}
	p.Update()
	return p
}

func (p *VecProvider) Update()           { p.n = p.v.Len() }
func (p *VecProvider) NumChildren() int  { return p.n }
func (p *VecProvider) HasChildren() bool { return p.n > 0 }
func (p *VecProvider) Summary() string   { return sizeSummary(p.n) }

// Storage reports whether the vector is
// currently using inline or heap storage.
func (p *VecProvider) Storage() string { return p.v.Storage() }

func (p *VecProvider) ChildAt(i int) (Child, bool) {
	if i < 0 || i >= p.n || i >= p.v.Len() {
		return Child{}, false
	}
	return Child{Name: "[" + strconv.Itoa(i) + "]", Value: p.v.Elem(i)}, true
}

func (p *VecProvider) ChildIndex(name string) int {
	inner, ok := brackets(name)
	if !ok {
		return -1
	}
	i, err := strconv.Atoi(inner)
	if err != nil || i < 0 || i >= p.n || strconv.Itoa(i) != inner {
		return -1
	}
	return i
}

// grid is the view a MatrixProvider needs;
// *matrix.Dense implements it.
type grid interface {
	Rows() int
	Cols() int
	Elem(i int) any
}

// MatrixProvider presents a column-major
// matrix with children named [row,col].
type MatrixProvider struct {
	m          grid
	rows, cols int
}

// NewMatrixProvider returns a provider for m.
func NewMatrixProvider(m grid) *MatrixProvider {
	p := &MatrixProvider{m: m}
	p.Update()
	return p
}

func (p *MatrixProvider) Update() {
	p.rows, p.cols = p.m.Rows(), p.m.Cols()
}

func (p *MatrixProvider) NumChildren() int  { return p.rows * p.cols }
func (p *MatrixProvider) HasChildren() bool { return p.NumChildren() > 0 }
func (p *MatrixProvider) Summary() string   { return sizeSummary(p.NumChildren()) }

func (p *MatrixProvider) ChildAt(i int) (Child, bool) {
	if i < 0 || i >= p.NumChildren() {
		return Child{}, false
	}
	row, col := i%p.rows, i/p.rows
	return Child{
		Name:  fmt.Sprintf("[%d,%d]", row, col),
		Value: p.m.Elem(i),
	}, true
}

func (p *MatrixProvider) ChildIndex(name string) int {
	inner, ok := brackets(name)
	if !ok {
		return -1
	}
	rs, cs, ok := strings.Cut(inner, ",")
	if !ok {
		return -1
	}
	r, err := strconv.Atoi(rs)
	if err != nil || r < 0 || r >= p.rows {
		return -1
	}
	c, err := strconv.Atoi(cs)
	if err != nil || c < 0 || c >= p.cols {
		return -1
	}
	i := c*p.rows + r
	// only the spelling ChildAt produces
	if child, _ := p.ChildAt(i); child.Name != name {
		return -1
	}
	return i
}

func brackets(name string) (string, bool) {
	if len(name) < 2 || name[0] != '[' || name[len(name)-1] != ']' {
		return "", false
	}
	return name[1 : len(name)-1], true
}
