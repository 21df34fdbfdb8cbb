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

// Package ints holds the integer arithmetic
// behind vector growth and output limits.
package ints

import (
	"golang.org/x/exp/constraints"
)

// Min returns the smaller of x and y.
func Min[T constraints.Integer](x, y T) T {
	if y < x {
		return y
	}
	return x
}

// Max returns the larger of x and y.
func Max[T constraints.Integer](x, y T) T {
	if y > x {
		return y
	}
	return x
}

// Clamp limits x to the range [lo, hi].
// When lo > hi the result is lo.
func Clamp[T constraints.Integer](x, lo, hi T) T {
	switch {
	case x < lo:
		return lo
	case x > hi:
		return Max(lo, hi)
	}
	return x
}

// IsAligned reports whether v is a
// multiple of alignment.
func IsAligned[T constraints.Integer](v, alignment T) bool {
	return v%alignment == 0
}

// AlignUp rounds v up to a multiple of
// alignment, which must be positive.
func AlignUp[T constraints.Integer](v, alignment T) T {
	if r := v % alignment; r != 0 {
		return v + alignment - r
	}
	return v
}
