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

// Command svdemo builds a small vector and stops
// at a marker line, giving a debugger something
// to inspect.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/SnellerInc/smallvec"
)

// marker is printed where a breakpoint
// is expected to be set.
const marker = "pause"

func run(w io.Writer) error {
	var vec smallvec.Vec[int, [4]int]
	vec.Append(10)
	vec.Append(20)
	vec.Append(30)
	_, err := fmt.Fprintln(w, marker) // breakpoint here
	return err
}

func main() {
	if err := run(os.Stdout); err != nil {
		os.Exit(1)
	}
}
