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
	"testing"

	"refinecheck.dev/refine/internal/core/refx"
	"refinecheck.dev/refine/internal/diag"
)

func tuple(vals ...int64) *refx.Tuple {
	elts := make([]refx.TupleElt, len(vals))
	for i, v := range vals {
		elts[i] = refx.TupleElt{Value: refx.NewNumber(v)}
	}
	return &refx.Tuple{Elts: elts}
}

func call(name string, t refx.Type, args ...refx.Expr) *refx.Call {
	return &refx.Call{Name: name, Args: args, T: t}
}

func tupleInts(t *testing.T, e refx.Expr) []int64 {
	t.Helper()
	tup, ok := e.(*refx.Tuple)
	if !ok {
		t.Fatalf("expected a *refx.Tuple, got %T (%v)", e, e)
	}
	out := make([]int64, len(tup.Elts))
	for i, elt := range tup.Elts {
		num, ok := elt.Value.(*refx.Number)
		if !ok {
			t.Fatalf("element %d is not a Number: %v", i, elt.Value)
		}
		v, _ := num.Int64()
		out[i] = v
	}
	return out
}

func TestLen(t *testing.T) {
	got := Eval(call("len", refx.Int, tuple(3, 1, 4)), nil)
	if !refx.Equal(got, refx.NewNumber(3)) {
		t.Fatalf("len((3,1,4)) = %v, want 3", got)
	}
}

func TestIndexPositiveAndNegative(t *testing.T) {
	if got := Eval(call("index", refx.Int, tuple(3, 1, 4), refx.NewNumber(1)), nil); !refx.Equal(got, refx.NewNumber(1)) {
		t.Fatalf("index((3,1,4), 1) = %v, want 1", got)
	}
	if got := Eval(call("index", refx.Int, tuple(3, 1, 4), refx.NewNumber(-1)), nil); !refx.Equal(got, refx.NewNumber(4)) {
		t.Fatalf("index((3,1,4), -1) = %v, want 4", got)
	}
}

func TestIndexOutOfRangeReportsAndWildcards(t *testing.T) {
	sink := &diag.Sink{}
	opts := &Options{Errors: sink}
	got := Eval(call("index", refx.Int, tuple(3, 1, 4), refx.NewNumber(5)), opts)
	if _, ok := got.(*refx.Wildcard); !ok {
		t.Fatalf("out-of-range index should evaluate to Wildcard, got %v", got)
	}
	if sink.Len() != 1 {
		t.Fatalf("expected one diagnostic, got %d", sink.Len())
	}
}

func TestSwap(t *testing.T) {
	got := Eval(call("swap", refx.IntTuple, tuple(3, 1, 4), refx.NewNumber(0), refx.NewNumber(2)), nil)
	if got2 := tupleInts(t, got); got2[0] != 4 || got2[2] != 3 {
		t.Fatalf("swap((3,1,4), 0, 2) = %v, want (4,1,3)", got2)
	}
}

func TestPermute(t *testing.T) {
	got := Eval(call("permute", refx.IntTuple, tuple(10, 20, 30), tuple(2, 0, 1)), nil)
	want := []int64{30, 10, 20}
	got2 := tupleInts(t, got)
	for i := range want {
		if got2[i] != want[i] {
			t.Fatalf("permute = %v, want %v", got2, want)
		}
	}
}

func TestPermuteDuplicateIndexErrors(t *testing.T) {
	sink := &diag.Sink{}
	got := Eval(call("permute", refx.IntTuple, tuple(10, 20), tuple(0, 0)), &Options{Errors: sink})
	if _, ok := got.(*refx.Wildcard); !ok {
		t.Fatalf("duplicate permute index should wildcard, got %v", got)
	}
	if sink.Len() != 1 {
		t.Fatalf("expected one diagnostic, got %d", sink.Len())
	}
}

func TestPermuteLengthMismatch(t *testing.T) {
	sink := &diag.Sink{}
	got := Eval(call("permute", refx.IntTuple, tuple(10, 20), tuple(0)), &Options{Errors: sink})
	if _, ok := got.(*refx.Wildcard); !ok {
		t.Fatalf("permute length mismatch should wildcard, got %v", got)
	}
	if sink.Len() != 1 {
		t.Fatalf("expected one diagnostic, got %d", sink.Len())
	}
}

func TestConcat(t *testing.T) {
	got := Eval(call("concat", refx.IntTuple, tuple(3, 1, 4), tuple(3, 2, 4), refx.NewNumber(1)), nil)
	want := []int64{3, 3, 4}
	got2 := tupleInts(t, got)
	for i := range want {
		if got2[i] != want[i] {
			t.Fatalf("concat = %v, want %v", got2, want)
		}
	}
}

func TestConcatMismatchOnNonConcatDims(t *testing.T) {
	sink := &diag.Sink{}
	got := Eval(call("concat", refx.IntTuple, tuple(3, 1, 4), tuple(3, 2, 5), refx.NewNumber(1)), &Options{Errors: sink})
	if _, ok := got.(*refx.Wildcard); !ok {
		t.Fatalf("mismatched non-concat dims should wildcard, got %v", got)
	}
	if sink.Len() != 1 {
		t.Fatalf("expected one diagnostic, got %d", sink.Len())
	}
}

func TestSplice(t *testing.T) {
	got := Eval(call("splice", refx.IntTuple, tuple(1, 2, 3, 4), refx.NewNumber(1), refx.NewNumber(2), tuple(9, 9, 9)), nil)
	want := []int64{1, 9, 9, 9, 4}
	got2 := tupleInts(t, got)
	if len(got2) != len(want) {
		t.Fatalf("splice = %v, want %v", got2, want)
	}
	for i := range want {
		if got2[i] != want[i] {
			t.Fatalf("splice = %v, want %v", got2, want)
		}
	}
}

func TestSpliceInsertionAtLength(t *testing.T) {
	got := Eval(call("splice", refx.IntTuple, tuple(1, 2), refx.NewNumber(2), refx.NewNumber(0), tuple(3)), nil)
	want := []int64{1, 2, 3}
	got2 := tupleInts(t, got)
	if len(got2) != len(want) {
		t.Fatalf("splice insertion at len = %v, want %v", got2, want)
	}
}

func TestBroadcastLiteralOneAbsorption(t *testing.T) {
	got := Eval(call("broadcast", refx.IntTuple, tuple(3, 1, 4), tuple(1, 6, 4)), nil)
	want := []int64{3, 6, 4}
	got2 := tupleInts(t, got)
	for i := range want {
		if got2[i] != want[i] {
			t.Fatalf("broadcast((3,1,4),(1,6,4)) = %v, want %v", got2, want)
		}
	}
}

func TestBroadcastRankPadding(t *testing.T) {
	got := Eval(call("broadcast", refx.IntTuple, tuple(5), tuple(2, 5)), nil)
	want := []int64{2, 5}
	got2 := tupleInts(t, got)
	for i := range want {
		if got2[i] != want[i] {
			t.Fatalf("broadcast((5),(2,5)) = %v, want %v", got2, want)
		}
	}
}

func TestBroadcastIncompatibleErrors(t *testing.T) {
	sink := &diag.Sink{}
	got := Eval(call("broadcast", refx.IntTuple, tuple(3), tuple(4)), &Options{Errors: sink})
	if _, ok := got.(*refx.Wildcard); !ok {
		t.Fatalf("incompatible broadcast should wildcard, got %v", got)
	}
	if sink.Len() != 1 {
		t.Fatalf("expected one diagnostic, got %d", sink.Len())
	}
}

func TestReshapeExact(t *testing.T) {
	got := Eval(call("reshape", refx.IntTuple, tuple(2, 3), tuple(6)), nil)
	want := []int64{6}
	got2 := tupleInts(t, got)
	for i := range want {
		if got2[i] != want[i] {
			t.Fatalf("reshape((2,3),(6)) = %v, want %v", got2, want)
		}
	}
}

func TestReshapeFreeSlot(t *testing.T) {
	got := Eval(call("reshape", refx.IntTuple, tuple(2, 3, 4), tuple(-1, 4)), nil)
	want := []int64{6, 4}
	got2 := tupleInts(t, got)
	for i := range want {
		if got2[i] != want[i] {
			t.Fatalf("reshape((2,3,4),(-1,4)) = %v, want %v", got2, want)
		}
	}
}

func TestReshapeMultipleFreeSlotsErrors(t *testing.T) {
	sink := &diag.Sink{}
	got := Eval(call("reshape", refx.IntTuple, tuple(2, 3), tuple(-1, -1)), &Options{Errors: sink})
	if _, ok := got.(*refx.Wildcard); !ok {
		t.Fatalf("multiple free slots should wildcard, got %v", got)
	}
	if sink.Len() != 1 {
		t.Fatalf("expected one diagnostic, got %d", sink.Len())
	}
}

func TestReshapeMismatchErrors(t *testing.T) {
	sink := &diag.Sink{}
	got := Eval(call("reshape", refx.IntTuple, tuple(2, 3), tuple(5)), &Options{Errors: sink})
	if _, ok := got.(*refx.Wildcard); !ok {
		t.Fatalf("product mismatch should wildcard, got %v", got)
	}
	if sink.Len() != 1 {
		t.Fatalf("expected one diagnostic, got %d", sink.Len())
	}
}
