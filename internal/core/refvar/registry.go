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

// Package refvar is the refinement-variable registry (spec.md §4.2
// "Variable registration"): it owns the identity, scope and bound/free
// bookkeeping for refinement variables as the parser adapter encounters
// bare names, interning one *refx.Var per (scope, name) pair exactly
// once. It depends on refx, not the reverse, so refx.VarExpr can carry a
// *refx.Var without a package cycle.
//
// Unlike this corpus's cue/internal/runtime (a process-wide shared
// index), a Registry is scoped to a single parse: spec.md §5 forbids the
// core from owning any globally visible cache, so there is no package-
// level singleton here — every caller constructs its own Registry.
package refvar

import (
	"fmt"

	"refinecheck.dev/refine/internal/core/refx"
)

// Registry interns refinement variables declared within one scope.
type Registry struct {
	scopeID string
	byName  map[string]*refx.Var
	order   []*refx.Var
}

// New creates a Registry for the given scope id (spec.md §3 Refinement
// variable identity "(name, scopeId, bound?)").
func New(scopeID string) *Registry {
	return &Registry{scopeID: scopeID, byName: map[string]*refx.Var{}}
}

// ScopeID returns the scope this registry interns variables under.
func (r *Registry) ScopeID() string { return r.scopeID }

// Resolve returns the *refx.Var for name in this scope, creating a new
// free variable of elemType on first sight. If name was already seen
// with a different element type, it returns the existing variable and
// ok=false so the caller (the parser adapter) can report a variable type
// conflict naming both element types (spec.md §4.2, §7 category 2); the
// adapter then produces no expression for that occurrence.
//
// isValue records whether this occurrence is inside a refinement's value
// expression as opposed to its condition expression; once a variable is
// known to be a value occurrence it stays one (spec.md §4.2).
func (r *Registry) Resolve(name string, elemType refx.Type, isValue bool) (v *refx.Var, ok bool) {
	if existing, found := r.byName[name]; found {
		if existing.ElemType != elemType {
			return existing, false
		}
		if isValue {
			existing.IsValue = true
		}
		return existing, true
	}
	v = &refx.Var{
		Name:     name,
		ScopeID:  r.scopeID,
		ElemType: elemType,
		IsValue:  isValue,
	}
	r.byName[name] = v
	r.order = append(r.order, v)
	return v, true
}

// Lookup returns the variable already registered under name, if any,
// without creating one.
func (r *Registry) Lookup(name string) (*refx.Var, bool) {
	v, ok := r.byName[name]
	return v, ok
}

// Vars returns the variables registered so far, in first-seen order.
func (r *Registry) Vars() []*refx.Var {
	out := make([]*refx.Var, len(r.order))
	copy(out, r.order)
	return out
}

// ScopeIDGen produces fresh, readable scope identifiers for anonymous
// scopes (e.g. one per function signature being checked). It is not a
// package-level singleton; callers that need stable ids across a single
// type-check pass own one instance.
type ScopeIDGen struct {
	prefix string
	n      int
}

// NewScopeIDGen creates a generator that prefixes every id with prefix,
// e.g. a function's qualified name.
func NewScopeIDGen(prefix string) *ScopeIDGen {
	return &ScopeIDGen{prefix: prefix}
}

// Next returns the next scope id from this generator.
func (g *ScopeIDGen) Next() string {
	g.n++
	return fmt.Sprintf("%s#%d", g.prefix, g.n)
}
