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

package refeval

import (
	"math/big"

	"golang.org/x/exp/slices"

	"refinecheck.dev/refine/internal/core/refx"
)

// sumTerm is one variable term of a flattened +/- chain.
type sumTerm struct {
	v        *refx.Var
	negative bool
}

// trySumNormalize flattens x op y (op is Add or Sub) into an ordered sum
// of numeric and variable terms and re-folds it into a canonical chain
// (spec.md §4.4 "Sum normalization", §8 P6). It returns ok=false when
// either side is not purely +/- over numeric atoms and int variables
// (e.g. it involves *, //, a Call, or a non-Int type), in which case the
// caller falls back to its other folding rules.
func trySumNormalize(x, y refx.Expr, op refx.Op) (refx.Expr, bool) {
	lt, lsum, ok := collectSum(x, false)
	if !ok {
		return nil, false
	}
	rt, rsum, ok := collectSum(y, op == refx.OpSub)
	if !ok {
		return nil, false
	}
	terms := append(lt, rt...)
	total := new(big.Int).Add(lsum, rsum)
	return buildSum(terms, total), true
}

func collectSum(e refx.Expr, negate bool) ([]sumTerm, *big.Int, bool) {
	switch v := e.(type) {
	case *refx.Number:
		n := toBigInt(v)
		if negate {
			n.Neg(n)
		}
		return nil, n, true
	case *refx.VarExpr:
		if v.V.ElemType != refx.Int {
			return nil, nil, false
		}
		return []sumTerm{{v: v.V, negative: negate}}, big.NewInt(0), true
	case *refx.UnaryExpr:
		switch v.Op {
		case refx.OpNeg:
			return collectSum(v.X, !negate)
		case refx.OpPos:
			return collectSum(v.X, negate)
		}
		return nil, nil, false
	case *refx.BinaryExpr:
		if v.Op != refx.OpAdd && v.Op != refx.OpSub {
			return nil, nil, false
		}
		lt, lsum, ok := collectSum(v.X, negate)
		if !ok {
			return nil, nil, false
		}
		rNegate := negate
		if v.Op == refx.OpSub {
			rNegate = !negate
		}
		rt, rsum, ok := collectSum(v.Y, rNegate)
		if !ok {
			return nil, nil, false
		}
		return append(lt, rt...), new(big.Int).Add(lsum, rsum), true
	default:
		return nil, nil, false
	}
}

// buildSum merges cancelling occurrences of the same variable, sorts the
// survivors into a stable order, and re-folds the result into a
// right-leaning +/- chain (spec.md §4.4). Two sums that differ only by
// the order or grouping of their original terms always produce the same
// structural result (spec.md §8 P6).
func buildSum(terms []sumTerm, numeric *big.Int) refx.Expr {
	order := make([]string, 0, len(terms))
	rep := map[string]*refx.Var{}
	net := map[string]int{}
	for _, t := range terms {
		id := t.v.ScopeID + "\x00" + t.v.Name
		if _, seen := rep[id]; !seen {
			rep[id] = t.v
			order = append(order, id)
		}
		if t.negative {
			net[id]--
		} else {
			net[id]++
		}
	}

	type finalTerm struct {
		v        *refx.Var
		negative bool
	}
	var finals []finalTerm
	for _, id := range order {
		n := net[id]
		if n == 0 {
			continue
		}
		neg := n < 0
		count := n
		if neg {
			count = -n
		}
		for i := 0; i < count; i++ {
			finals = append(finals, finalTerm{v: rep[id], negative: neg})
		}
	}
	slices.SortStableFunc(finals, func(a, b finalTerm) bool {
		if a.v.ScopeID != b.v.ScopeID {
			return a.v.ScopeID < b.v.ScopeID
		}
		if a.v.Name != b.v.Name {
			return a.v.Name < b.v.Name
		}
		return !a.negative && b.negative
	})

	type part struct {
		expr     refx.Expr
		negative bool
	}
	var parts []part
	if numeric.Sign() != 0 {
		neg := numeric.Sign() < 0
		abs := new(big.Int).Abs(numeric)
		parts = append(parts, part{expr: fromBigInt(abs), negative: neg})
	}
	for _, f := range finals {
		parts = append(parts, part{expr: &refx.VarExpr{V: f.v}, negative: f.negative})
	}

	if len(parts) == 0 {
		return refx.NewNumber(0)
	}
	if len(parts) == 1 {
		if parts[0].negative {
			return &refx.UnaryExpr{Op: refx.OpNeg, X: parts[0].expr, T: refx.Int}
		}
		return parts[0].expr
	}

	var acc refx.Expr
	if parts[0].negative {
		acc = &refx.UnaryExpr{Op: refx.OpNeg, X: parts[0].expr, T: refx.Int}
	} else {
		acc = parts[0].expr
	}
	for _, p := range parts[1:] {
		if p.negative {
			acc = &refx.BinaryExpr{Op: refx.OpSub, X: acc, Y: p.expr, T: refx.Int}
		} else {
			acc = &refx.BinaryExpr{Op: refx.OpAdd, X: acc, Y: p.expr, T: refx.Int}
		}
	}
	return acc
}
