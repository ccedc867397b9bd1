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
	"refinecheck.dev/refine/internal/core/refx"
	"refinecheck.dev/refine/internal/diag"
	"refinecheck.dev/refine/internal/source"
)

// noRange is used for diagnostics raised from the evaluator: refx.Expr
// carries no source position (that information lives only on the
// source.Expr the parser adapter consumed), so shape-function errors
// report at the unknown range.
var noRange = source.Range{Start: source.NoPos, End: source.NoPos}

func (ev *evaluator) errf(tpl diag.Template, args ...interface{}) {
	ev.opts.Errors.Reportf(diag.Error, noRange, tpl, args...)
}

// flattenUnpacked splices any Tuple entry whose Unpacked bit is set and
// whose value is itself a Tuple (spec.md §4.4 "Tuple unpack flattening").
// An unpacked entry whose value is not a concrete Tuple (a Var, Wildcard,
// or Call result not yet reduced to a tuple) is left in place: it is not
// yet known how many entries it contributes.
func flattenUnpacked(n *refx.Tuple) refx.Expr {
	changed := false
	var out []refx.TupleElt
	for _, elt := range n.Elts {
		if elt.Unpacked {
			if inner, ok := elt.Value.(*refx.Tuple); ok {
				changed = true
				out = append(out, inner.Elts...)
				continue
			}
		}
		out = append(out, elt)
	}
	if !changed {
		return n
	}
	return &refx.Tuple{Elts: out}
}

func (ev *evaluator) evalCall(n *refx.Call) refx.Expr {
	switch n.Name {
	case "len":
		return ev.callLen(n)
	case "index":
		return ev.callIndex(n)
	case "swap":
		return ev.callSwap(n)
	case "permute":
		return ev.callPermute(n)
	case "concat":
		return ev.callConcat(n)
	case "splice":
		return ev.callSplice(n)
	case "broadcast":
		return ev.callBroadcast(n)
	case "reshape":
		return ev.callReshape(n)
	}
	return n
}

// knownTuple reports whether e is a Tuple with no unpacked entries
// remaining (spec.md "fully-known tuple").
func knownTuple(e refx.Expr) (*refx.Tuple, bool) {
	t, ok := e.(*refx.Tuple)
	if !ok {
		return nil, false
	}
	for _, elt := range t.Elts {
		if elt.Unpacked {
			return t, false
		}
	}
	return t, true
}

func hasUnpacked(e refx.Expr) bool {
	t, ok := e.(*refx.Tuple)
	if !ok {
		return false
	}
	for _, elt := range t.Elts {
		if elt.Unpacked {
			return true
		}
	}
	return false
}

// resolveIndex implements spec.md §4.4 "Index resolution". allowEqualLen
// permits i == L (valid for an insertion index such as splice's i or
// index's own length-equal case is never valid for index/swap but is for
// splice).
func resolveIndex(i int64, l int, allowEqualLen bool, unpacked bool) (idx int, unknown, outOfRange bool) {
	resolved := i
	if i < 0 {
		resolved = int64(l) + i
	}
	upper := int64(l)
	if allowEqualLen {
		upper++
	}
	if resolved < 0 || resolved >= upper {
		if unpacked {
			return 0, true, false
		}
		return 0, false, true
	}
	return int(resolved), false, false
}

func (ev *evaluator) callLen(n *refx.Call) refx.Expr {
	arg := n.Args[0]
	if isWildcard(arg) {
		return &refx.Wildcard{Of: refx.Int}
	}
	t, ok := knownTuple(arg)
	if !ok {
		return n
	}
	return refx.NewNumber(int64(len(t.Elts)))
}

func (ev *evaluator) callIndex(n *refx.Call) refx.Expr {
	tArg, iArg := n.Args[0], n.Args[1]
	if isWildcard(tArg) || isWildcard(iArg) {
		return &refx.Wildcard{Of: refx.Int}
	}
	t, full := knownTuple(tArg)
	if t == nil {
		return n
	}
	num, ok := iArg.(*refx.Number)
	if !ok {
		return n
	}
	i, exact := num.Int64()
	if !exact {
		return n
	}
	idx, unknown, oor := resolveIndex(i, len(t.Elts), false, !full)
	if unknown {
		return &refx.Wildcard{Of: refx.Int}
	}
	if oor {
		ev.errf(diag.TplIndexOutOfRange, i, len(t.Elts))
		return &refx.Wildcard{Of: refx.Int}
	}
	return t.Elts[idx].Value
}

func (ev *evaluator) callSwap(n *refx.Call) refx.Expr {
	tArg, iArg, jArg := n.Args[0], n.Args[1], n.Args[2]
	if isWildcard(tArg) || isWildcard(iArg) || isWildcard(jArg) {
		return &refx.Wildcard{Of: refx.IntTuple}
	}
	t, full := knownTuple(tArg)
	if t == nil {
		return n
	}
	ni, oki := iArg.(*refx.Number)
	nj, okj := jArg.(*refx.Number)
	if !oki || !okj {
		return n
	}
	iv, iexact := ni.Int64()
	jv, jexact := nj.Int64()
	if !iexact || !jexact {
		return n
	}
	i, iUnknown, iOOR := resolveIndex(iv, len(t.Elts), false, !full)
	j, jUnknown, jOOR := resolveIndex(jv, len(t.Elts), false, !full)
	if iUnknown || jUnknown {
		return &refx.Wildcard{Of: refx.IntTuple}
	}
	if iOOR || jOOR {
		ev.errf(diag.TplIndexOutOfRange, iv, jv, len(t.Elts))
		return &refx.Wildcard{Of: refx.IntTuple}
	}
	elts := append([]refx.TupleElt(nil), t.Elts...)
	elts[i], elts[j] = elts[j], elts[i]
	return &refx.Tuple{Elts: elts}
}

func (ev *evaluator) callPermute(n *refx.Call) refx.Expr {
	tArg, idxArg := n.Args[0], n.Args[1]
	if isWildcard(tArg) || isWildcard(idxArg) {
		return &refx.Wildcard{Of: refx.IntTuple}
	}
	t, full := knownTuple(tArg)
	idxT, idxFull := knownTuple(idxArg)
	if t == nil || idxT == nil || !full || !idxFull {
		return n
	}
	if len(idxT.Elts) != len(t.Elts) {
		ev.errf(diag.TplPermuteLength, len(idxT.Elts), len(t.Elts))
		return &refx.Wildcard{Of: refx.IntTuple}
	}
	seen := make(map[int64]bool, len(idxT.Elts))
	indices := make([]int64, len(idxT.Elts))
	for i, elt := range idxT.Elts {
		num, ok := elt.Value.(*refx.Number)
		if !ok {
			return n
		}
		v, exact := num.Int64()
		if !exact {
			return n
		}
		if seen[v] {
			ev.errf(diag.TplPermuteDuplicate, v)
			return &refx.Wildcard{Of: refx.IntTuple}
		}
		seen[v] = true
		indices[i] = v
	}
	elts := make([]refx.TupleElt, len(t.Elts))
	for i, v := range indices {
		if v < 0 || v >= int64(len(t.Elts)) {
			ev.errf(diag.TplIndexOutOfRange, v, len(t.Elts))
			return &refx.Wildcard{Of: refx.IntTuple}
		}
		elts[i] = t.Elts[v]
	}
	return &refx.Tuple{Elts: elts}
}

func (ev *evaluator) callConcat(n *refx.Call) refx.Expr {
	t1Arg, t2Arg, dArg := n.Args[0], n.Args[1], n.Args[2]
	if isWildcard(t1Arg) || isWildcard(t2Arg) || isWildcard(dArg) {
		return &refx.Wildcard{Of: refx.IntTuple}
	}
	t1, full1 := knownTuple(t1Arg)
	t2, full2 := knownTuple(t2Arg)
	if t1 == nil || t2 == nil || !full1 || !full2 {
		return n
	}
	if len(t1.Elts) != len(t2.Elts) {
		ev.errf(diag.TplConcatMismatch)
		return &refx.Wildcard{Of: refx.IntTuple}
	}
	dNum, ok := dArg.(*refx.Number)
	if !ok {
		return n
	}
	dv, exact := dNum.Int64()
	if !exact {
		return n
	}
	d, unknown, oor := resolveIndex(dv, len(t1.Elts), false, false)
	if unknown || oor {
		ev.errf(diag.TplIndexOutOfRange, dv, len(t1.Elts))
		return &refx.Wildcard{Of: refx.IntTuple}
	}
	elts := make([]refx.TupleElt, len(t1.Elts))
	for i := range t1.Elts {
		if i == d {
			sum := Eval(&refx.BinaryExpr{Op: refx.OpAdd, X: t1.Elts[i].Value, Y: t2.Elts[i].Value, T: refx.Int}, nil)
			elts[i] = refx.TupleElt{Value: sum}
			continue
		}
		if !refx.Equal(t1.Elts[i].Value, t2.Elts[i].Value) {
			ev.errf(diag.TplConcatMismatch)
			return &refx.Wildcard{Of: refx.IntTuple}
		}
		elts[i] = t1.Elts[i]
	}
	return &refx.Tuple{Elts: elts}
}

func (ev *evaluator) callSplice(n *refx.Call) refx.Expr {
	t1Arg, iArg, nArg, t2Arg := n.Args[0], n.Args[1], n.Args[2], n.Args[3]
	if isWildcard(t1Arg) || isWildcard(iArg) || isWildcard(nArg) || isWildcard(t2Arg) {
		return &refx.Wildcard{Of: refx.IntTuple}
	}
	t1, full1 := knownTuple(t1Arg)
	t2, full2 := knownTuple(t2Arg)
	if t1 == nil || t2 == nil || !full1 || !full2 {
		return n
	}
	iNum, okI := iArg.(*refx.Number)
	nNum, okN := nArg.(*refx.Number)
	if !okI || !okN {
		return n
	}
	iv, iexact := iNum.Int64()
	dropCount, nexact := nNum.Int64()
	if !iexact || !nexact {
		return n
	}
	i, unknown, oor := resolveIndex(iv, len(t1.Elts), true, false)
	if unknown || oor {
		ev.errf(diag.TplIndexOutOfRange, iv, len(t1.Elts))
		return &refx.Wildcard{Of: refx.IntTuple}
	}
	end := i + int(dropCount)
	if dropCount < 0 || end > len(t1.Elts) {
		ev.errf(diag.TplIndexOutOfRange, iv+dropCount, len(t1.Elts))
		return &refx.Wildcard{Of: refx.IntTuple}
	}
	var elts []refx.TupleElt
	elts = append(elts, t1.Elts[:i]...)
	elts = append(elts, t2.Elts...)
	elts = append(elts, t1.Elts[end:]...)
	return &refx.Tuple{Elts: elts}
}

func (ev *evaluator) callBroadcast(n *refx.Call) refx.Expr {
	t1Arg, t2Arg := n.Args[0], n.Args[1]
	if isWildcard(t1Arg) || isWildcard(t2Arg) {
		return &refx.Wildcard{Of: refx.IntTuple}
	}
	t1, ok1 := t1Arg.(*refx.Tuple)
	t2, ok2 := t2Arg.(*refx.Tuple)
	if !ok1 || !ok2 || hasUnpacked(t1Arg) || hasUnpacked(t2Arg) {
		return n
	}
	la, lb := len(t1.Elts), len(t2.Elts)
	l := la
	if lb > l {
		l = lb
	}
	out := make([]refx.TupleElt, l)
	for k := 0; k < l; k++ {
		ia, ib := la-1-k, lb-1-k
		var ea, eb refx.Expr
		if ia >= 0 {
			ea = t1.Elts[ia].Value
		}
		if ib >= 0 {
			eb = t2.Elts[ib].Value
		}
		pos := l - 1 - k
		switch {
		case ea == nil:
			out[pos] = refx.TupleElt{Value: eb}
		case eb == nil:
			out[pos] = refx.TupleElt{Value: ea}
		default:
			na, aok := ea.(*refx.Number)
			nb, bok := eb.(*refx.Number)
			switch {
			case aok && isOneNumber(na):
				out[pos] = refx.TupleElt{Value: eb}
			case bok && isOneNumber(nb):
				out[pos] = refx.TupleElt{Value: ea}
			case aok && bok:
				if !refx.Equal(ea, eb) {
					ev.errf(diag.TplBroadcastIncompatible, na, nb)
					return &refx.Wildcard{Of: refx.IntTuple}
				}
				out[pos] = refx.TupleElt{Value: ea}
			case refx.Equal(ea, eb):
				out[pos] = refx.TupleElt{Value: ea}
			default:
				out[pos] = refx.TupleElt{Value: ea}
			}
		}
	}
	return &refx.Tuple{Elts: out}
}

func (ev *evaluator) callReshape(n *refx.Call) refx.Expr {
	srcArg, dstArg := n.Args[0], n.Args[1]
	if isWildcard(srcArg) || isWildcard(dstArg) {
		return dstArg
	}
	src, okSrc := knownTuple(srcArg)
	dst, okDst := dstArg.(*refx.Tuple)
	if !okSrc || !okDst || hasUnpacked(dstArg) {
		return n
	}

	srcProduct := int64(1)
	for _, elt := range src.Elts {
		num, ok := elt.Value.(*refx.Number)
		if !ok {
			return n
		}
		v, exact := num.Int64()
		if !exact {
			return n
		}
		srcProduct *= v
	}

	freeIdx := -1
	dstProduct := int64(1)
	for i, elt := range dst.Elts {
		num, ok := elt.Value.(*refx.Number)
		if !ok {
			return n
		}
		v, exact := num.Int64()
		if !exact {
			return n
		}
		if v == -1 {
			if freeIdx != -1 {
				ev.errf(diag.TplReshapeMultipleFree)
				return &refx.Wildcard{Of: refx.IntTuple}
			}
			freeIdx = i
			continue
		}
		dstProduct *= v
	}

	elts := append([]refx.TupleElt(nil), dst.Elts...)
	if freeIdx >= 0 {
		if dstProduct == 0 || srcProduct%dstProduct != 0 {
			ev.errf(diag.TplReshapeMismatch, srcProduct, dstProduct)
			return &refx.Wildcard{Of: refx.IntTuple}
		}
		elts[freeIdx] = refx.TupleElt{Value: refx.NewNumber(srcProduct / dstProduct)}
		return &refx.Tuple{Elts: elts}
	}
	if srcProduct != dstProduct {
		ev.errf(diag.TplReshapeMismatch, srcProduct, dstProduct)
		return &refx.Wildcard{Of: refx.IntTuple}
	}
	return dst
}
