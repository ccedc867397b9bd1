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

// Package refeval is the evaluator/simplifier (spec.md §4.4): a pure,
// deterministic structural rewrite with a small algebraic repertoire
// (wildcard absorption, logical short-circuit, arithmetic folding, sum
// normalization, condition-discharged comparisons, shape functions). It
// is built on top of refx.Apply the same way this corpus's
// internal/core/eval.Evaluate is built on top of adt's own structural
// walk, but as a pure tree rewrite instead of a graph unification engine
// — this domain has no disjunction or unification to perform.
package refeval

import (
	"refinecheck.dev/refine/internal/diag"
	"refinecheck.dev/refine/internal/core/refx"
)

// Options configures one evaluation (spec.md §4.4).
type Options struct {
	// ReplaceUnknownVars causes a free variable with no known equivalence
	// to collapse to Wildcard instead of being left unevaluated.
	ReplaceUnknownVars bool
	Errors             *diag.Sink
	Warnings           *diag.Sink
}

// Eval simplifies e under opts (nil means default Options{}). It never
// mutates e; unaffected subtrees are returned by the same pointer
// (spec.md §8 P2).
func Eval(e refx.Expr, opts *Options) refx.Expr {
	if opts == nil {
		opts = &Options{}
	}
	ev := &evaluator{opts: opts, inProgress: map[string]bool{}}
	return refx.Apply(ev, e)
}

type evaluator struct {
	refx.NoopTransformer
	opts       *Options
	inProgress map[string]bool
}

// TransformVar substitutes a variable by an equivalence found in its
// attached conditions before any enclosing operator is rewritten
// (spec.md §4.4 "Variable substitution during evaluation"), with cycle
// protection via inProgress (spec.md §8 P3).
func (ev *evaluator) TransformVar(n *refx.VarExpr) refx.Expr {
	id := n.V.ID()
	if ev.inProgress[id] {
		return n
	}
	if eq, ok := findEquivalence(n.V); ok {
		ev.inProgress[id] = true
		result := refx.Apply(ev, eq)
		delete(ev.inProgress, id)
		return result
	}
	if ev.opts.ReplaceUnknownVars && !n.V.Bound {
		return &refx.Wildcard{Of: n.V.ElemType}
	}
	return n
}

func (ev *evaluator) TransformUnary(n *refx.UnaryExpr) refx.Expr {
	if isWildcard(n.X) {
		return &refx.Wildcard{Of: n.T}
	}
	switch n.Op {
	case refx.OpNot:
		if b, ok := n.X.(*refx.Boolean); ok {
			return &refx.Boolean{Val: !b.Val}
		}
	case refx.OpPos:
		if num, ok := n.X.(*refx.Number); ok {
			return num
		}
	case refx.OpNeg:
		if num, ok := n.X.(*refx.Number); ok {
			return &refx.Number{Val: negDecimal(num.Val)}
		}
	}
	return n
}

func (ev *evaluator) TransformBinary(n *refx.BinaryExpr) refx.Expr {
	switch n.Op {
	case refx.OpAnd:
		return evalAnd(n)
	case refx.OpOr:
		return evalOr(n)
	}

	if isWildcard(n.X) || isWildcard(n.Y) {
		return &refx.Wildcard{Of: n.T}
	}

	switch n.Op {
	case refx.OpEql, refx.OpNeq, refx.OpLss, refx.OpLeq, refx.OpGtr, refx.OpGeq:
		return ev.evalComparison(n)
	case refx.OpAdd, refx.OpSub, refx.OpMul, refx.OpQuo, refx.OpRem:
		return ev.evalArith(n)
	}
	return n
}

func (ev *evaluator) TransformTuple(n *refx.Tuple) refx.Expr {
	return flattenUnpacked(n)
}

func (ev *evaluator) TransformCall(n *refx.Call) refx.Expr {
	return ev.evalCall(n)
}

func evalAnd(n *refx.BinaryExpr) refx.Expr {
	x, y := n.X, n.Y
	if b, ok := x.(*refx.Boolean); ok && !b.Val {
		return x
	}
	if b, ok := y.(*refx.Boolean); ok && !b.Val {
		return y
	}
	if b, ok := x.(*refx.Boolean); ok && b.Val {
		return y
	}
	if b, ok := y.(*refx.Boolean); ok && b.Val {
		return x
	}
	if isWildcard(x) || isWildcard(y) {
		return &refx.Wildcard{Of: refx.Bool}
	}
	return n
}

func evalOr(n *refx.BinaryExpr) refx.Expr {
	x, y := n.X, n.Y
	if b, ok := x.(*refx.Boolean); ok && b.Val {
		return x
	}
	if b, ok := y.(*refx.Boolean); ok && b.Val {
		return y
	}
	if b, ok := x.(*refx.Boolean); ok && !b.Val {
		return y
	}
	if b, ok := y.(*refx.Boolean); ok && !b.Val {
		return x
	}
	if isWildcard(x) || isWildcard(y) {
		return &refx.Wildcard{Of: refx.Bool}
	}
	return n
}

// findEquivalence searches v's attached conditions for a conjunct of the
// form `v == E` and returns E (spec.md §4.4).
func findEquivalence(v *refx.Var) (refx.Expr, bool) {
	for _, cond := range v.Conditions {
		for _, conj := range conjuncts(cond) {
			bin, ok := conj.(*refx.BinaryExpr)
			if !ok || bin.Op != refx.OpEql {
				continue
			}
			if lv, ok := bin.X.(*refx.VarExpr); ok && lv.V.SameIdentity(v) {
				return bin.Y, true
			}
			if rv, ok := bin.Y.(*refx.VarExpr); ok && rv.V.SameIdentity(v) {
				return bin.X, true
			}
		}
	}
	return nil, false
}

// conjuncts flattens an `and`-tree into its leaf conjuncts.
func conjuncts(e refx.Expr) []refx.Expr {
	bin, ok := e.(*refx.BinaryExpr)
	if !ok || bin.Op != refx.OpAnd {
		return []refx.Expr{e}
	}
	return append(conjuncts(bin.X), conjuncts(bin.Y)...)
}

func isWildcard(e refx.Expr) bool {
	_, ok := e.(*refx.Wildcard)
	return ok
}
