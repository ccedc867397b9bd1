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

	"github.com/cockroachdb/apd/v2"

	"refinecheck.dev/refine/internal/core/refx"
)

// toBigInt converts a Number's decimal payload to a big.Int. Every Number
// in this engine is integral (Exponent == 0, spec.md §3 "arbitrary-
// precision integer"), so round-tripping through the decimal's exact
// string form is lossless; all integer arithmetic in the evaluator is
// done on big.Int, and apd's Context arithmetic is not used.
func toBigInt(n *refx.Number) *big.Int {
	z := new(big.Int)
	z.SetString(n.Val.String(), 10)
	return z
}

// fromBigInt builds a Number from an arbitrary-precision integer.
func fromBigInt(z *big.Int) *refx.Number {
	d := new(apd.Decimal)
	d.SetString(z.String())
	return &refx.Number{Val: d}
}

func negDecimal(d *apd.Decimal) *apd.Decimal {
	z := new(apd.Decimal)
	z.Neg(d)
	return z
}

func isZeroNumber(n *refx.Number) bool {
	return n.Val.Sign() == 0
}

func isOneNumber(n *refx.Number) bool {
	return toBigInt(n).Cmp(big.NewInt(1)) == 0
}

// floorDivMod returns a's floor-division quotient and modulo by b, with
// the modulo's sign following the divisor (spec.md §4.4 "//" and "%" are
// floor division and its matching modulo, not truncated division).
func floorDivMod(a, b *big.Int) (q, r *big.Int) {
	q, r = new(big.Int), new(big.Int)
	q.QuoRem(a, b, r)
	if r.Sign() != 0 && (r.Sign() < 0) != (b.Sign() < 0) {
		q.Sub(q, big.NewInt(1))
		r.Add(r, b)
	}
	return q, r
}
