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

// Package refinement holds TypeRefinement itself (spec.md §3, §4.6): the
// value a type carries on top of its nominal shape, plus the two
// convenience constructors the rest of the type checker uses to build
// one.
package refinement

import (
	"refinecheck.dev/refine/internal/core/refeval"
	"refinecheck.dev/refine/internal/core/refx"
)

// ClassDescriptor names a refinement class (spec.md §3 TypeRefinement):
// its domain, a stable id used in equality and diagnostics, whether
// literal printing is permitted for values of this class, and a
// human-facing name.
type ClassDescriptor struct {
	Domain               refx.Type
	ClassID              string
	AllowLiteralPrinting bool
	Name                 string
}

// TypeRefinement is a refinement attached to a type (spec.md §3).
type TypeRefinement struct {
	Class       ClassDescriptor
	Value       refx.Expr
	IsEnforced  bool
	Condition   refx.Expr // optional; nil means absent
	Vars        map[string]*refx.Var
}

// Equal reports whether two refinements are equal: equal class id, equal
// isEnforced, structurally equal value expressions, and equal (or both
// absent) condition expressions (spec.md §3).
func Equal(a, b *TypeRefinement) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Class.ClassID != b.Class.ClassID || a.IsEnforced != b.IsEnforced {
		return false
	}
	if !refx.Equal(a.Value, b.Value) {
		return false
	}
	if (a.Condition == nil) != (b.Condition == nil) {
		return false
	}
	if a.Condition == nil {
		return true
	}
	return refx.Equal(a.Condition, b.Condition)
}

// IsPreconditionAtom reports whether e qualifies as a "precondition atom"
// (spec.md §4.3 rule 1): a literal, a wildcard, a bare variable, or a
// tuple composed entirely of such atoms.
func IsPreconditionAtom(e refx.Expr) bool {
	switch v := e.(type) {
	case *refx.Number, *refx.String, *refx.Bytes, *refx.Boolean, *refx.Wildcard, *refx.VarExpr:
		return true
	case *refx.Tuple:
		for _, elt := range v.Elts {
			if !IsPreconditionAtom(elt.Value) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// FromLiteral builds a refinement whose value expression is a single
// literal node (spec.md §4.6). An IntTuple-domain class cannot be
// constructed this way — a tuple always needs its own entries spelled
// out — so the second return value is false in that case.
func FromLiteral(class ClassDescriptor, literal refx.Expr, isEnforced bool) (*TypeRefinement, bool) {
	if class.Domain == refx.IntTuple {
		return nil, false
	}
	return &TypeRefinement{
		Class:      class,
		Value:      literal,
		IsEnforced: isEnforced,
		Vars:       map[string]*refx.Var{},
	}, true
}

// FromBinaryOp builds a refinement from a binary operator applied to two
// refinements of the same class, and immediately evaluates the result
// (spec.md §4.6). It panics if left and right belong to different
// classes — a programmer error the caller is expected to have already
// excluded by construction, not a recoverable domain diagnostic.
func FromBinaryOp(op refx.Op, left, right *TypeRefinement) *TypeRefinement {
	if left.Class.ClassID != right.Class.ClassID {
		panic("refinement: FromBinaryOp across different refinement classes")
	}
	expr := &refx.BinaryExpr{Op: op, X: left.Value, Y: right.Value, T: left.Class.Domain}
	merged := mergeVars(left.Vars, right.Vars)
	return &TypeRefinement{
		Class:      left.Class,
		Value:      refeval.Eval(expr, nil),
		IsEnforced: left.IsEnforced && right.IsEnforced,
		Vars:       merged,
	}
}

func mergeVars(a, b map[string]*refx.Var) map[string]*refx.Var {
	out := make(map[string]*refx.Var, len(a)+len(b))
	for k, v := range a {
		out[k] = v
	}
	for k, v := range b {
		out[k] = v
	}
	return out
}
