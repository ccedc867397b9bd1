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

	"refinecheck.dev/refine/internal/core/refx"
)

// evalArith folds +, -, *, //, % over numeric literals, applies the
// identity laws (+0, -0, *1, *0), concatenates String/Bytes operands of
// +, and otherwise defers to sum normalization for pure +/- chains over
// numeric atoms and variables (spec.md §4.4).
func (ev *evaluator) evalArith(n *refx.BinaryExpr) refx.Expr {
	x, y, op := n.X, n.Y, n.Op

	if op == refx.OpAdd {
		if sx, ok := x.(*refx.String); ok {
			if sy, ok := y.(*refx.String); ok {
				return &refx.String{Val: sx.Val + sy.Val}
			}
		}
		if bx, ok := x.(*refx.Bytes); ok {
			if by, ok := y.(*refx.Bytes); ok {
				out := make([]byte, 0, len(bx.Val)+len(by.Val))
				out = append(out, bx.Val...)
				out = append(out, by.Val...)
				return &refx.Bytes{Val: out}
			}
		}
	}

	if op == refx.OpAdd || op == refx.OpSub {
		if out, ok := trySumNormalize(x, y, op); ok {
			return out
		}
	}

	if nx, ok := x.(*refx.Number); ok {
		if isZeroNumber(nx) {
			switch op {
			case refx.OpAdd:
				return y
			case refx.OpMul:
				return refx.NewNumber(0)
			}
		}
		if isOneNumber(nx) && op == refx.OpMul {
			return y
		}
	}
	if ny, ok := y.(*refx.Number); ok {
		if isZeroNumber(ny) {
			switch op {
			case refx.OpAdd, refx.OpSub:
				return x
			case refx.OpMul:
				return refx.NewNumber(0)
			}
		}
		if isOneNumber(ny) && op == refx.OpMul {
			return x
		}
	}

	nx, okx := x.(*refx.Number)
	ny, oky := y.(*refx.Number)
	if !okx || !oky {
		return n
	}
	return foldNumbers(op, nx, ny, n.T)
}

func foldNumbers(op refx.Op, a, b *refx.Number, t refx.Type) refx.Expr {
	av, bv := toBigInt(a), toBigInt(b)
	switch op {
	case refx.OpAdd:
		return fromBigInt(new(big.Int).Add(av, bv))
	case refx.OpSub:
		return fromBigInt(new(big.Int).Sub(av, bv))
	case refx.OpMul:
		return fromBigInt(new(big.Int).Mul(av, bv))
	case refx.OpQuo:
		if bv.Sign() == 0 {
			return &refx.Wildcard{Of: refx.Int}
		}
		q, _ := floorDivMod(av, bv)
		return fromBigInt(q)
	case refx.OpRem:
		if bv.Sign() == 0 {
			return &refx.Wildcard{Of: refx.Int}
		}
		_, r := floorDivMod(av, bv)
		return fromBigInt(r)
	}
	return &refx.Wildcard{Of: t}
}

// evalComparison folds literal-vs-literal comparisons and discharges a
// comparison against a variable's attached conditions (spec.md §4.4
// Comparisons). It never chains transitively across more than one
// attached condition.
func (ev *evaluator) evalComparison(n *refx.BinaryExpr) refx.Expr {
	x, y, op := n.X, n.Y, n.Op

	if (op == refx.OpLeq || op == refx.OpGeq) && refx.Equal(x, y) {
		return &refx.Boolean{Val: true}
	}

	if isConcreteLiteral(x) && isConcreteLiteral(y) {
		eq := refx.Equal(x, y)
		switch op {
		case refx.OpEql:
			return &refx.Boolean{Val: eq}
		case refx.OpNeq:
			return &refx.Boolean{Val: !eq}
		}
		if nx, ok := x.(*refx.Number); ok {
			if ny, ok := y.(*refx.Number); ok {
				return &refx.Boolean{Val: compareNumbers(op, nx, ny)}
			}
		}
	}

	if v, ok := x.(*refx.VarExpr); ok {
		if k, ok := y.(*refx.Number); ok && impliedByConditions(v.V.Conditions, v.V, op, k) {
			return &refx.Boolean{Val: true}
		}
	}
	if v, ok := y.(*refx.VarExpr); ok {
		if k, ok := x.(*refx.Number); ok && impliedByConditions(v.V.Conditions, v.V, op.Invert(), k) {
			return &refx.Boolean{Val: true}
		}
	}

	return n
}

func compareNumbers(op refx.Op, a, b *refx.Number) bool {
	c := toBigInt(a).Cmp(toBigInt(b))
	switch op {
	case refx.OpLss:
		return c < 0
	case refx.OpLeq:
		return c <= 0
	case refx.OpGtr:
		return c > 0
	case refx.OpGeq:
		return c >= 0
	}
	return false
}

func isConcreteLiteral(e refx.Expr) bool {
	switch v := e.(type) {
	case *refx.Number, *refx.String, *refx.Bytes, *refx.Boolean:
		return true
	case *refx.Tuple:
		for _, elt := range v.Elts {
			if elt.Unpacked || !isConcreteLiteral(elt.Value) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// impliedByConditions reports whether v's attached conditions include a
// same-directional bound (< or <=, or > or >=) against a literal Number
// that implies the one-step (non-transitive) query "v op k" (spec.md §4.4
// "Comparisons"), e.g. a condition n > 4 implies the query n > 3.
func impliedByConditions(conditions []refx.Expr, v *refx.Var, op refx.Op, k *refx.Number) bool {
	kEff, kIsLower, ok := boundEffective(op, k)
	if !ok {
		return false
	}
	for _, cond := range conditions {
		for _, conj := range conjunctsOf(cond) {
			bin, ok := conj.(*refx.BinaryExpr)
			if !ok {
				continue
			}
			cOp, cNum, cVarMatches := normalizeBoundConjunct(bin, v)
			if !cVarMatches {
				continue
			}
			cEff, cIsLower, ok := boundEffective(cOp, cNum)
			if !ok || cIsLower != kIsLower {
				continue
			}
			if cIsLower {
				if cEff.Cmp(kEff) >= 0 {
					return true
				}
			} else {
				if cEff.Cmp(kEff) <= 0 {
					return true
				}
			}
		}
	}
	return false
}

// normalizeBoundConjunct recognizes "v op k" or "k op v" (the latter via
// operator inversion) and reports whether the variable side matches v.
func normalizeBoundConjunct(bin *refx.BinaryExpr, v *refx.Var) (op refx.Op, k *refx.Number, matches bool) {
	if lv, ok := bin.X.(*refx.VarExpr); ok && lv.V.SameIdentity(v) {
		if rk, ok := bin.Y.(*refx.Number); ok {
			return bin.Op, rk, true
		}
	}
	if rv, ok := bin.Y.(*refx.VarExpr); ok && rv.V.SameIdentity(v) {
		if lk, ok := bin.X.(*refx.Number); ok {
			return bin.Op.Invert(), lk, true
		}
	}
	return 0, nil, false
}

// boundEffective reduces "v op k" to its smallest (lower-bound) or
// largest (upper-bound) satisfying integer, so that two bounds of the
// same kind can be compared for implication regardless of strictness.
func boundEffective(op refx.Op, k *refx.Number) (eff *big.Int, isLower bool, ok bool) {
	kv := toBigInt(k)
	switch op {
	case refx.OpGtr:
		return new(big.Int).Add(kv, big.NewInt(1)), true, true
	case refx.OpGeq:
		return new(big.Int).Set(kv), true, true
	case refx.OpLss:
		return new(big.Int).Sub(kv, big.NewInt(1)), false, true
	case refx.OpLeq:
		return new(big.Int).Set(kv), false, true
	default:
		return nil, false, false
	}
}

func conjunctsOf(e refx.Expr) []refx.Expr {
	bin, ok := e.(*refx.BinaryExpr)
	if !ok || bin.Op != refx.OpAnd {
		return []refx.Expr{e}
	}
	return append(conjunctsOf(bin.X), conjunctsOf(bin.Y)...)
}
