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

// Package check is the Consistency Checker (spec.md §4.3): it enforces
// the five rules that relate a scope's pre- and post-condition
// refinements to each other, and propagates conditions onto the
// variables the evaluator later consults.
package check

import (
	"github.com/mpvl/unique"

	"refinecheck.dev/refine/internal/core/refx"
	"refinecheck.dev/refine/internal/core/refinement"
	"refinecheck.dev/refine/internal/diag"
	"refinecheck.dev/refine/internal/source"
)

var noRange = source.Range{Start: source.NoPos, End: source.NoPos}

// Check enforces spec.md §4.3 rules 1-5 over the pre/post-condition
// refinements of one scope, and returns the deduplicated list of unique
// variables referenced in the scope.
func Check(pre, post []*refinement.TypeRefinement, scopeID string, sink *diag.Sink) []*refx.Var {
	checkPreconditionAtoms(pre, sink)
	checkPostconditionConditions(post, sink)
	checkVariableTyping(pre, post, sink)
	vars := dedupVars(checkValueCoverage(pre, post, sink))
	propagateConditions(pre, scopeID, vars)
	return vars
}

// checkPreconditionAtoms enforces rule 1: a precondition's value must be
// a precondition atom.
func checkPreconditionAtoms(pre []*refinement.TypeRefinement, sink *diag.Sink) {
	for _, r := range pre {
		if !refinement.IsPreconditionAtom(r.Value) {
			sink.Reportf(diag.Error, noRange, diag.TplNonAtomPrecondition)
		}
	}
}

// checkPostconditionConditions enforces rule 2: a postcondition must not
// carry a condition expression.
func checkPostconditionConditions(post []*refinement.TypeRefinement, sink *diag.Sink) {
	for _, r := range post {
		if r.Condition != nil {
			sink.Reportf(diag.Error, noRange, diag.TplPostconditionHasCond)
		}
	}
}

// checkVariableTyping enforces rule 3: a variable name appearing in both
// pre- and post-conditions under this scope must have the same declared
// element-type everywhere; the first conflicting occurrence is flagged.
func checkVariableTyping(pre, post []*refinement.TypeRefinement, sink *diag.Sink) {
	seen := map[string]refx.Type{}
	flagged := map[string]bool{}
	check := func(r *refinement.TypeRefinement) {
		for name, v := range r.Vars {
			want, ok := seen[name]
			if !ok {
				seen[name] = v.ElemType
				continue
			}
			if want != v.ElemType && !flagged[name] {
				flagged[name] = true
				sink.Reportf(diag.Error, noRange, diag.TplVariableTypeConflict, name, want, v.ElemType)
			}
		}
	}
	for _, r := range pre {
		check(r)
	}
	for _, r := range post {
		check(r)
	}
}

// checkValueCoverage enforces rule 4: every variable referenced must
// appear in at least one value position, never only in a condition.
// Violations are reported at every usage site. Returns every *refx.Var
// referenced anywhere in pre or post, value or condition position.
func checkValueCoverage(pre, post []*refinement.TypeRefinement, sink *diag.Sink) []*refx.Var {
	var all []*refx.Var
	valueOnly := map[string]bool{}
	for _, r := range append(append([]*refinement.TypeRefinement{}, pre...), post...) {
		for _, v := range refx.CollectFreeVars(r.Value) {
			all = append(all, v)
			valueOnly[v.ID()] = true
		}
		if r.Condition != nil {
			for _, v := range refx.CollectFreeVars(r.Condition) {
				all = append(all, v)
			}
		}
	}
	for _, v := range all {
		if !valueOnly[v.ID()] {
			sink.Reportf(diag.Error, noRange, diag.TplValueCoverage, v.Name)
		}
	}
	return all
}

// propagateConditions enforces rule 5: every precondition expression
// that carries a condition is gathered and, for every variable in scope,
// stored onto that variable's Conditions list.
func propagateConditions(pre []*refinement.TypeRefinement, scopeID string, vars []*refx.Var) {
	var conditions []refx.Expr
	for _, r := range pre {
		if r.Condition != nil {
			conditions = append(conditions, r.Condition)
		}
	}
	if len(conditions) == 0 {
		return
	}
	for _, v := range vars {
		if v.ScopeID != scopeID {
			continue
		}
		v.Conditions = append(v.Conditions, conditions...)
	}
}

func dedupVars(vars []*refx.Var) []*refx.Var {
	ids := make([]string, len(vars))
	byID := make(map[string]*refx.Var, len(vars))
	for i, v := range vars {
		ids[i] = v.ID()
		byID[v.ID()] = v
	}
	unique.Sort(unique.StringSlice{P: &ids})
	out := make([]*refx.Var, len(ids))
	for i, id := range ids {
		out[i] = byID[id]
	}
	return out
}
