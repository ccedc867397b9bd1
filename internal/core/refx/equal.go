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

import "bytes"

// Equal reports whether a and b are structurally equal: same variant,
// same payload, same children, recursively. This is the "structural
// equality" spec.md refers to throughout (§3 TypeRefinement equality,
// §8 P1/P6 idempotence and sum-normalization properties).
//
// Equal does not consider positions or any other non-semantic metadata;
// two nodes built from different source locations but the same shape are
// equal.
func Equal(a, b Expr) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	switch x := a.(type) {
	case *Number:
		y, ok := b.(*Number)
		return ok && x.Val.Cmp(y.Val) == 0
	case *String:
		y, ok := b.(*String)
		return ok && x.Val == y.Val
	case *Bytes:
		y, ok := b.(*Bytes)
		return ok && bytes.Equal(x.Val, y.Val)
	case *Boolean:
		y, ok := b.(*Boolean)
		return ok && x.Val == y.Val
	case *Wildcard:
		y, ok := b.(*Wildcard)
		return ok && x.Of == y.Of
	case *VarExpr:
		y, ok := b.(*VarExpr)
		return ok && x.V.SameIdentity(y.V) && x.V.Bound == y.V.Bound
	case *UnaryExpr:
		y, ok := b.(*UnaryExpr)
		return ok && x.Op == y.Op && Equal(x.X, y.X)
	case *BinaryExpr:
		y, ok := b.(*BinaryExpr)
		return ok && x.Op == y.Op && Equal(x.X, y.X) && Equal(x.Y, y.Y)
	case *Tuple:
		y, ok := b.(*Tuple)
		if !ok || len(x.Elts) != len(y.Elts) {
			return false
		}
		for i, e := range x.Elts {
			if e.Unpacked != y.Elts[i].Unpacked || !Equal(e.Value, y.Elts[i].Value) {
				return false
			}
		}
		return true
	case *Call:
		y, ok := b.(*Call)
		if !ok || x.Name != y.Name || len(x.Args) != len(y.Args) {
			return false
		}
		for i, arg := range x.Args {
			if !Equal(arg, y.Args[i]) {
				return false
			}
		}
		return true
	default:
		return false
	}
}
