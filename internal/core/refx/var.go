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

package refx

import "fmt"

// Var is a refinement variable's identity and attached state (spec.md
// §3). Its identity is (Name, ScopeID, Bound); ID encodes that triple the
// same way this corpus's adt.Feature encodes a label: a single
// comparable, loggable string rather than a struct compared field by
// field.
//
// Var lives in this package, not in the variable-registry package,
// because VarExpr must hold a *Var without the registry needing to know
// about expression nodes — the registry (package refvar) depends on
// refx, not the other way around.
type Var struct {
	Name     string
	ScopeID  string
	ElemType Type

	Bound bool

	// IsValue records whether any occurrence of this variable was seen
	// inside a refinement's value expression (true), as opposed to only in
	// condition expressions (false); spec.md §4.2 "Variable registration".
	IsValue bool

	// Conditions are predicates attached post-hoc (spec.md §3
	// TypeRefinement, §4.3 rule 5) that the evaluator consults to
	// discharge comparisons and substitutions (spec.md §4.4).
	Conditions []Expr
}

// ID is the variable's globally unique identity string, "name@scopeId"
// with a trailing "*" when the variable is bound (spec.md §3).
func (v *Var) ID() string {
	if v.Bound {
		return fmt.Sprintf("%s@%s*", v.Name, v.ScopeID)
	}
	return fmt.Sprintf("%s@%s", v.Name, v.ScopeID)
}

// SameIdentity reports whether v and o denote the same variable
// regardless of the transient Bound bit — used by BoundTransform /
// FreeTransform, which flip that bit in place conceptually but must still
// recognize the variable as "the same one" for scoping purposes.
func (v *Var) SameIdentity(o *Var) bool {
	return v.Name == o.Name && v.ScopeID == o.ScopeID
}
