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

package inspect

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// ErrNoProvider is returned by Registry.Lookup
// when no registered pattern matches a value.
var ErrNoProvider = errors.New("inspect: no provider for type")

// Constructor builds a Provider for v.
// v is guaranteed to have a type whose name
// matched the pattern the constructor was
// registered under.
type Constructor func(v any) (Provider, error)

type entry struct {
	rx   *regexp.Regexp
	ctor Constructor
}

// Registry maps type name patterns to provider
// constructors. Patterns are regular expressions
// matched against the Go type string of a value,
// e.g. "*smallvec.Vec[int,[4]int]".
//
// A Registry is not safe for concurrent
// registration; populate it up front.
type Registry struct {
	entries map[string]entry
	// order preserves registration order,
	// which is also lookup order
	order []string
}

// Register adds a constructor for types
// matching pattern. Registering the same
// pattern twice replaces the constructor.
func (r *Registry) Register(pattern string, ctor Constructor) error {
	rx, err := regexp.Compile(pattern)
	if err != nil {
		return fmt.Errorf("inspect: bad pattern %q: %w", pattern, err)
	}
	if r.entries == nil {
		r.entries = make(map[string]entry)
	}
	if _, ok := r.entries[pattern]; !ok {
		r.order = append(r.order, pattern)
	}
	r.entries[pattern] = entry{rx: rx, ctor: ctor}
	return nil
}

// Patterns returns the registered patterns, sorted.
func (r *Registry) Patterns() []string {
	p := maps.Keys(r.entries)
	slices.Sort(p)
	return p
}

// TypeName returns the string a Registry
// matches patterns against.
func TypeName(v any) string {
	if v == nil {
		return "<nil>"
	}
	return reflect.TypeOf(v).String()
}

// Lookup returns a provider for v built by the
// first pattern, in registration order, that
// matches the type of v.
func (r *Registry) Lookup(v any) (Provider, error) {
	name := TypeName(v)
	for _, pat := range r.order {
		e := r.entries[pat]
		if e.rx.MatchString(name) {
			return e.ctor(v)
		}
	}
	return nil, fmt.Errorf("%w %s", ErrNoProvider, name)
}

// Patterns used by Default.
const (
	VecPattern    = `^\*smallvec\.Vec\[.+\]$`
	MatrixPattern = `^\*matrix\.Dense\[.+\]$`
)

// Default returns a Registry populated with
// the providers for *smallvec.Vec and *matrix.Dense.
func Default() *Registry {
	r := new(Registry)
	must(r.Register(VecPattern, func(v any) (Provider, error) {
		s, ok := v.(sequence)
		if !ok {
			return nil, fmt.Errorf("inspect: %s is not a sequence", TypeName(v))
		}
		return NewVecProvider(s), nil
	}))
	must(r.Register(MatrixPattern, func(v any) (Provider, error) {
		g, ok := v.(grid)
		if !ok {
			return nil, fmt.Errorf("inspect: %s is not a matrix", TypeName(v))
		}
		return NewMatrixProvider(g), nil
	}))
	return r
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}
