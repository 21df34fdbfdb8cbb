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

package main

import (
	"fmt"
	"os"

	"github.com/SnellerInc/smallvec"
	"github.com/SnellerInc/smallvec/matrix"

	"sigs.k8s.io/yaml"
)

type vectorSpec struct {
	Name   string  `json:"name"`
	Inline int     `json:"inline"`
	Values []int64 `json:"values"`
}

type matrixSpec struct {
	Name   string    `json:"name"`
	Rows   int       `json:"rows"`
	Cols   int       `json:"cols"`
	Values []float64 `json:"values"`
}

// scenario describes the containers to build.
// Matrix values are listed column by column.
type scenario struct {
	Vectors  []vectorSpec `json:"vectors"`
	Matrices []matrixSpec `json:"matrices"`
}

// defaultScenario mirrors svdemo.
var defaultScenario = scenario{
	Vectors: []vectorSpec{{Name: "vec", Inline: 4, Values: []int64{10, 20, 30}}},
}

func loadScenario(path string) (*scenario, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return parseScenario(buf)
}

func parseScenario(buf []byte) (*scenario, error) {
	s := new(scenario)
	if err := yaml.UnmarshalStrict(buf, s); err != nil {
		return nil, fmt.Errorf("parsing scenario: %w", err)
	}
	if len(s.Vectors) == 0 && len(s.Matrices) == 0 {
		return nil, fmt.Errorf("scenario defines no containers")
	}
	return s, nil
}

type named struct {
	name  string
	value any
}

func fill[A smallvec.Inline[int64]](values []int64) any {
	v := new(smallvec.Vec[int64, A])
	v.AppendSlice(values...)
	return v
}

func newVector(spec *vectorSpec) (any, error) {
	switch spec.Inline {
	case 1:
		return fill[[1]int64](spec.Values), nil
	case 2:
		return fill[[2]int64](spec.Values), nil
	case 4:
		return fill[[4]int64](spec.Values), nil
	case 8:
		return fill[[8]int64](spec.Values), nil
	case 16:
		return fill[[16]int64](spec.Values), nil
	case 32:
		return fill[[32]int64](spec.Values), nil
	case 64:
		return fill[[64]int64](spec.Values), nil
	default:
		return nil, fmt.Errorf("vector %q: unsupported inline capacity %d (want 1, 2, 4, 8, 16, 32 or 64)", spec.Name, spec.Inline)
	}
}

// build constructs every container in s,
// vectors first, in the order listed.
func (s *scenario) build() ([]named, error) {
	var out []named
	for i := range s.Vectors {
		spec := &s.Vectors[i]
		v, err := newVector(spec)
		if err != nil {
			return nil, err
		}
		out = append(out, named{name: nameOr(spec.Name, "vec", i), value: v})
	}
	for i := range s.Matrices {
		spec := &s.Matrices[i]
		m, err := matrix.NewDenseFrom(spec.Rows, spec.Cols, spec.Values)
		if err != nil {
			return nil, fmt.Errorf("matrix %q: %w", spec.Name, err)
		}
		out = append(out, named{name: nameOr(spec.Name, "mat", i), value: m})
	}
	return out, nil
}

func nameOr(name, prefix string, i int) string {
	if name != "" {
		return name
	}
	return fmt.Sprintf("%s%d", prefix, i)
}
