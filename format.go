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

package smallvec

import (
	"fmt"
	"strconv"
)

// Format implements fmt.Formatter by formatting
// the elements of v as a slice.
func (v *Vec[T, A]) Format(state fmt.State, verb rune) {
	fmt.Fprintf(state, fmt.FormatString(state, verb), v.Slice())
}

// Summary returns the one-line description
// a debugger shows next to the vector.
func (v *Vec[T, A]) Summary() string {
	return "size = " + strconv.Itoa(v.n)
}
