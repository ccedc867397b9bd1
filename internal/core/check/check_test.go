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

package check

import (
	"testing"

	"refinecheck.dev/refine/internal/core/refinement"
	"refinecheck.dev/refine/internal/core/refx"
	"refinecheck.dev/refine/internal/diag"
)

var intClass = refinement.ClassDescriptor{Domain: refx.Int, ClassID: "int"}

func newVar(name, scope string, t refx.Type) *refx.Var {
	return &refx.Var{Name: name, ScopeID: scope, ElemType: t}
}

func TestCheckPreconditionAtoms(t *testing.T) {
	sink := &diag.Sink{}
	nonAtom := &refinement.TypeRefinement{
		Class: intClass,
		Value: &refx.BinaryExpr{Op: refx.OpAdd, X: refx.NewNumber(1), Y: refx.NewNumber(2), T: refx.Int},
		Vars:  map[string]*refx.Var{},
	}
	Check([]*refinement.TypeRefinement{nonAtom}, nil, "s1", sink)
	if sink.Len() != 1 {
		t.Fatalf("expected one nonAtomPrecondition diagnostic, got %d: %v", sink.Len(), sink.Diagnostics())
	}
	if sink.Diagnostics()[0].Template != diag.TplNonAtomPrecondition {
		t.Fatalf("unexpected diagnostic template %v", sink.Diagnostics()[0].Template)
	}
}

func TestCheckPostconditionConditions(t *testing.T) {
	sink := &diag.Sink{}
	post := &refinement.TypeRefinement{
		Class:     intClass,
		Value:     refx.NewNumber(1),
		Condition: &refx.Boolean{Val: true},
		Vars:      map[string]*refx.Var{},
	}
	Check(nil, []*refinement.TypeRefinement{post}, "s1", sink)
	if sink.Len() != 1 || sink.Diagnostics()[0].Template != diag.TplPostconditionHasCond {
		t.Fatalf("expected postconditionHasCondition diagnostic, got %v", sink.Diagnostics())
	}
}

func TestCheckVariableTypingConflict(t *testing.T) {
	sink := &diag.Sink{}
	n1 := newVar("n", "s1", refx.Int)
	n2 := newVar("n", "s1", refx.Str)
	pre := &refinement.TypeRefinement{Class: intClass, Value: &refx.VarExpr{V: n1}, Vars: map[string]*refx.Var{"n": n1}}
	post := &refinement.TypeRefinement{Class: intClass, Value: &refx.VarExpr{V: n2}, Vars: map[string]*refx.Var{"n": n2}}

	Check([]*refinement.TypeRefinement{pre}, []*refinement.TypeRefinement{post}, "s1", sink)

	found := false
	for _, d := range sink.Diagnostics() {
		if d.Template == diag.TplVariableTypeConflict {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a variableTypeConflict diagnostic, got %v", sink.Diagnostics())
	}
}

func TestCheckValueCoverageMissing(t *testing.T) {
	sink := &diag.Sink{}
	n := newVar("n", "s1", refx.Int)
	pre := &refinement.TypeRefinement{
		Class:     intClass,
		Value:     refx.NewNumber(1),
		Condition: &refx.BinaryExpr{Op: refx.OpGtr, X: &refx.VarExpr{V: n}, Y: refx.NewNumber(0), T: refx.Bool},
		Vars:      map[string]*refx.Var{"n": n},
	}
	vars := Check([]*refinement.TypeRefinement{pre}, nil, "s1", sink)

	found := false
	for _, d := range sink.Diagnostics() {
		if d.Template == diag.TplValueCoverage {
			found = true
		}
	}
	if !found {
		t.Fatalf("n appears only in a condition; expected a valueCoverageMissing diagnostic")
	}
	if len(vars) != 1 || vars[0].Name != "n" {
		t.Fatalf("Check should still return n in the variable list, got %v", vars)
	}
}

func TestCheckValueCoverageSatisfied(t *testing.T) {
	sink := &diag.Sink{}
	n := newVar("n", "s1", refx.Int)
	pre := &refinement.TypeRefinement{
		Class: intClass,
		Value: &refx.VarExpr{V: n},
		Vars:  map[string]*refx.Var{"n": n},
	}
	Check([]*refinement.TypeRefinement{pre}, nil, "s1", sink)
	for _, d := range sink.Diagnostics() {
		if d.Template == diag.TplValueCoverage {
			t.Fatalf("n appears in a value position; should not be flagged")
		}
	}
}

func TestPropagateConditionsOntoScopeVars(t *testing.T) {
	sink := &diag.Sink{}
	n := newVar("n", "s1", refx.Int)
	cond := &refx.BinaryExpr{Op: refx.OpGtr, X: &refx.VarExpr{V: n}, Y: refx.NewNumber(4), T: refx.Bool}
	pre := &refinement.TypeRefinement{
		Class:     intClass,
		Value:     &refx.VarExpr{V: n},
		Condition: cond,
		Vars:      map[string]*refx.Var{"n": n},
	}
	Check([]*refinement.TypeRefinement{pre}, nil, "s1", sink)
	if len(n.Conditions) != 1 || !refx.Equal(n.Conditions[0], cond) {
		t.Fatalf("n's precondition with a Condition should be propagated onto n.Conditions, got %v", n.Conditions)
	}
}

func TestPropagateConditionsRespectsScopeBoundary(t *testing.T) {
	sink := &diag.Sink{}
	n := newVar("n", "other-scope", refx.Int)
	cond := &refx.BinaryExpr{Op: refx.OpGtr, X: &refx.VarExpr{V: n}, Y: refx.NewNumber(4), T: refx.Bool}
	pre := &refinement.TypeRefinement{
		Class:     intClass,
		Value:     &refx.VarExpr{V: n},
		Condition: cond,
		Vars:      map[string]*refx.Var{"n": n},
	}
	Check([]*refinement.TypeRefinement{pre}, nil, "s1", sink)
	if len(n.Conditions) != 0 {
		t.Fatalf("a variable outside the checked scope should not receive propagated conditions, got %v", n.Conditions)
	}
}

func TestCheckDedupesVariables(t *testing.T) {
	sink := &diag.Sink{}
	n := newVar("n", "s1", refx.Int)
	pre := &refinement.TypeRefinement{Class: intClass, Value: &refx.VarExpr{V: n}, Vars: map[string]*refx.Var{"n": n}}
	post := &refinement.TypeRefinement{Class: intClass, Value: &refx.VarExpr{V: n}, Vars: map[string]*refx.Var{"n": n}}

	vars := Check([]*refinement.TypeRefinement{pre}, []*refinement.TypeRefinement{post}, "s1", sink)
	if len(vars) != 1 {
		t.Fatalf("the same variable referenced in pre and post should be deduplicated, got %v", vars)
	}
}
