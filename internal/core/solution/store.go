// Copyright 2020 CUE Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package solution is the Solution Store (spec.md §4.5): a mapping from
// variable id to an optional expression, grouped into an ordered,
// non-empty list of solution sets whose first member is the "main" set.
package solution

import (
	"context"

	"refinecheck.dev/refine/internal/core/refx"
)

// Set is a mapping from variable-id to an optional bound expression
// (spec.md §4.5).
type Set struct {
	bindings map[string]refx.Expr
}

// NewSet returns an empty solution set.
func NewSet() *Set {
	return &Set{bindings: map[string]refx.Expr{}}
}

// Set records a binding for key (a variable id, spec.md §3, or a
// refinement-variable id).
func (s *Set) Set(key string, e refx.Expr) {
	s.bindings[key] = e
}

// Get returns the binding for key, if any.
func (s *Set) Get(key string) (refx.Expr, bool) {
	e, ok := s.bindings[key]
	return e, ok
}

// Has reports whether key is bound in this set.
func (s *Set) Has(key string) bool {
	_, ok := s.bindings[key]
	return ok
}

// IsEmpty reports whether this set has no bindings.
func (s *Set) IsEmpty() bool {
	return len(s.bindings) == 0
}

// Each calls fn for every non-empty binding in this set. Iteration order
// is unspecified, matching a plain Go map.
func (s *Set) Each(fn func(key string, e refx.Expr)) {
	for k, v := range s.bindings {
		fn(k, v)
	}
}

// Solution is an ordered, non-empty list of solution sets, the first
// being the "main" set (spec.md §4.5).
type Solution struct {
	sets []*Set
}

// New returns a Solution with a single empty main set.
func New() *Solution {
	return &Solution{sets: []*Set{NewSet()}}
}

// NewWithSets returns a Solution over the given sets; sets must be
// non-empty, the first one becoming "main".
func NewWithSets(sets []*Set) *Solution {
	if len(sets) == 0 {
		sets = []*Set{NewSet()}
	}
	return &Solution{sets: sets}
}

// Main returns the first ("main") solution set.
func (s *Solution) Main() *Set { return s.sets[0] }

// Len reports how many solution sets this solution holds.
func (s *Solution) Len() int { return len(s.sets) }

// At returns the solution set at index i. It panics if i is out of
// range, matching the bounds-checked-access requirement of spec.md §4.5
// (a caller that indexes past Len is a programmer error, not a
// recoverable diagnostic).
func (s *Solution) At(i int) *Set { return s.sets[i] }

// Set writes a binding into every solution set (spec.md §4.5 "Setting a
// variable in a solution writes it to every set").
func (s *Solution) Set(ctx context.Context, key string, e refx.Expr) error {
	for _, set := range s.sets {
		if err := ctx.Err(); err != nil {
			return err
		}
		set.Set(key, e)
	}
	return nil
}

// IsEmpty reports whether every solution set is empty.
func (s *Solution) IsEmpty() bool {
	for _, set := range s.sets {
		if !set.IsEmpty() {
			return false
		}
	}
	return true
}

// Each iterates every solution set in order, calling fn once per set.
func (s *Solution) Each(fn func(i int, set *Set)) {
	for i, set := range s.sets {
		fn(i, set)
	}
}
