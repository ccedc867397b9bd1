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

package refdebug

import (
	"testing"

	"refinecheck.dev/refine/internal/core/refx"
)

func TestNodeStringLiterals(t *testing.T) {
	tests := []struct {
		name string
		e    refx.Expr
		want string
	}{
		{"number", refx.NewNumber(5), "5"},
		{"string", &refx.String{Val: "hi"}, `"hi"`},
		{"bytes", &refx.Bytes{Val: []byte("hi")}, `b"hi"`},
		{"true", &refx.Boolean{Val: true}, "True"},
		{"false", &refx.Boolean{Val: false}, "False"},
		{"wildcard", &refx.Wildcard{Of: refx.Int}, "_"},
		{"nil", nil, "<nil>"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := NodeString(tc.e); got != tc.want {
				t.Errorf("NodeString(%v) = %q, want %q", tc.e, got, tc.want)
			}
		})
	}
}

func TestNodeStringVar(t *testing.T) {
	v := &refx.Var{Name: "n", ScopeID: "s1", ElemType: refx.Int}
	got := NodeString(&refx.VarExpr{V: v})
	if got != "n" {
		t.Fatalf("NodeString(VarExpr) = %q, want %q", got, "n")
	}
}

func TestNodeStringUnary(t *testing.T) {
	got := NodeString(&refx.UnaryExpr{Op: refx.OpNeg, X: refx.NewNumber(3), T: refx.Int})
	if got != "-3" {
		t.Fatalf("NodeString(-3) = %q, want %q", got, "-3")
	}
	gotNot := NodeString(&refx.UnaryExpr{Op: refx.OpNot, X: &refx.Boolean{Val: true}, T: refx.Bool})
	if gotNot != "not True" {
		t.Fatalf("NodeString(not True) = %q, want %q", gotNot, "not True")
	}
}

func TestNodeStringBinary(t *testing.T) {
	got := NodeString(&refx.BinaryExpr{Op: refx.OpAdd, X: refx.NewNumber(1), Y: refx.NewNumber(2), T: refx.Int})
	if got != "1 + 2" {
		t.Fatalf("NodeString(1+2) = %q, want %q", got, "1 + 2")
	}
}

func TestNodeStringTuple(t *testing.T) {
	tup := &refx.Tuple{Elts: []refx.TupleElt{
		{Value: refx.NewNumber(1)},
		{Value: refx.NewNumber(2), Unpacked: true},
	}}
	got := NodeString(tup)
	if got != "(1, *2)" {
		t.Fatalf("NodeString(tuple) = %q, want %q", got, "(1, *2)")
	}
}

func TestNodeStringCall(t *testing.T) {
	c := &refx.Call{Name: "len", Args: []refx.Expr{refx.NewNumber(1), refx.NewNumber(2)}, T: refx.Int}
	got := NodeString(c)
	if got != "len(1, 2)" {
		t.Fatalf("NodeString(call) = %q, want %q", got, "len(1, 2)")
	}
}
