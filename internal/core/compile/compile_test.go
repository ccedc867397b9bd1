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

package compile

import (
	"testing"

	"refinecheck.dev/refine/internal/core/refvar"
	"refinecheck.dev/refine/internal/core/refx"
	"refinecheck.dev/refine/internal/diag"
	"refinecheck.dev/refine/internal/source"
)

func newAdapter(domain refx.Type) (*Adapter, *diag.Sink) {
	sink := &diag.Sink{}
	return &Adapter{Domain: domain, Scope: refvar.New("s1"), Diags: sink}, sink
}

func TestCompileNumberLiteral(t *testing.T) {
	a, sink := newAdapter(refx.Int)
	e, ok := a.CompileValue(&source.NumberLit{Text: "42"})
	if !ok || sink.Len() != 0 {
		t.Fatalf("CompileValue(42) failed, diags=%v", sink.Diagnostics())
	}
	n, ok := e.(*refx.Number)
	if !ok {
		t.Fatalf("expected *refx.Number, got %T", e)
	}
	if got, _ := n.Int64(); got != 42 {
		t.Fatalf("value = %d, want 42", got)
	}
}

func TestCompileNumberRejectsFloatAndImaginary(t *testing.T) {
	a, sink := newAdapter(refx.Int)
	if _, ok := a.CompileValue(&source.NumberLit{Text: "1.5", Float: true}); ok {
		t.Fatalf("float literal should be rejected")
	}
	if sink.Len() != 1 {
		t.Fatalf("expected one diagnostic, got %d", sink.Len())
	}

	a2, sink2 := newAdapter(refx.Int)
	if _, ok := a2.CompileValue(&source.NumberLit{Text: "1", Imaginary: true}); ok {
		t.Fatalf("imaginary literal should be rejected")
	}
	if sink2.Len() != 1 {
		t.Fatalf("expected one diagnostic, got %d", sink2.Len())
	}
}

func TestCompileWildcardName(t *testing.T) {
	a, _ := newAdapter(refx.Int)
	e, ok := a.CompileValue(&source.Name{Value: "_"})
	if !ok {
		t.Fatalf("compiling `_` should succeed")
	}
	w, ok := e.(*refx.Wildcard)
	if !ok || w.Of != refx.Int {
		t.Fatalf("expected Wildcard{Of: Int}, got %#v", e)
	}
}

func TestCompileNameInternsOncePerScope(t *testing.T) {
	a, _ := newAdapter(refx.Int)
	e1, ok1 := a.CompileValue(&source.Name{Value: "n"})
	e2, ok2 := a.CompileValue(&source.Name{Value: "n"})
	if !ok1 || !ok2 {
		t.Fatalf("compiling the same bare name twice should succeed both times")
	}
	v1 := e1.(*refx.VarExpr).V
	v2 := e2.(*refx.VarExpr).V
	if v1 != v2 {
		t.Fatalf("the same name in one scope should resolve to the same *refx.Var")
	}
}

func TestCompileNameTypeConflict(t *testing.T) {
	a, sink := newAdapter(refx.Unknown)
	if _, ok := a.CompileValue(&source.Name{Value: "n"}); !ok {
		t.Fatalf("first occurrence of n should compile fine")
	}
	// Second occurrence of n, this time expected to be Str: domain
	// conflict should be reported.
	if _, ok := a.compile(&source.Name{Value: "n"}, refx.Str, true); ok {
		t.Fatalf("conflicting element type for n should fail")
	}
	if sink.Len() != 1 {
		t.Fatalf("expected exactly one conflict diagnostic, got %d", sink.Len())
	}
}

func TestCompileBinaryArithmetic(t *testing.T) {
	a, sink := newAdapter(refx.Int)
	e, ok := a.CompileValue(&source.BinaryExpr{
		Op: "+",
		X:  &source.NumberLit{Text: "1"},
		Y:  &source.NumberLit{Text: "2"},
	})
	if !ok || sink.Len() != 0 {
		t.Fatalf("compiling 1 + 2 failed: %v", sink.Diagnostics())
	}
	bin, ok := e.(*refx.BinaryExpr)
	if !ok || bin.Op != refx.OpAdd || bin.T != refx.Int {
		t.Fatalf("unexpected node %#v", e)
	}
}

func TestCompileComparisonIsAlwaysBool(t *testing.T) {
	a, _ := newAdapter(refx.Bool)
	e, ok := a.CompileCondition(&source.BinaryExpr{
		Op: ">",
		X:  &source.Name{Value: "n"},
		Y:  &source.NumberLit{Text: "0"},
	})
	if !ok {
		t.Fatalf("compiling n > 0 as a condition should succeed")
	}
	bin := e.(*refx.BinaryExpr)
	if bin.Op != refx.OpGtr || bin.T != refx.Bool {
		t.Fatalf("unexpected node %#v", e)
	}
}

func TestCompileTuple(t *testing.T) {
	a, sink := newAdapter(refx.IntTuple)
	e, ok := a.CompileValue(&source.TupleExpr{
		Elts: []source.TupleElt{
			{Value: &source.NumberLit{Text: "1"}},
			{Value: &source.NumberLit{Text: "2"}},
		},
	})
	if !ok || sink.Len() != 0 {
		t.Fatalf("compiling (1, 2) failed: %v", sink.Diagnostics())
	}
	tup, ok := e.(*refx.Tuple)
	if !ok || len(tup.Elts) != 2 {
		t.Fatalf("unexpected node %#v", e)
	}
}

func TestCompileCallArityAndUnknownName(t *testing.T) {
	a, sink := newAdapter(refx.Int)
	if _, ok := a.CompileValue(&source.CallExpr{Name: "nope", Args: nil}); ok {
		t.Fatalf("unknown function should fail")
	}
	if sink.Len() != 1 {
		t.Fatalf("expected unknown-function diagnostic, got %d", sink.Len())
	}

	a2, sink2 := newAdapter(refx.Int)
	if _, ok := a2.CompileValue(&source.CallExpr{Name: "len", Args: nil}); ok {
		t.Fatalf("wrong arity should fail")
	}
	if sink2.Len() != 1 {
		t.Fatalf("expected wrong-arity diagnostic, got %d", sink2.Len())
	}
}

func TestCompileCallRejectsKeywordAndUnpack(t *testing.T) {
	a, _ := newAdapter(refx.Int)
	if _, ok := a.CompileValue(&source.CallExpr{Name: "len", HasKeyword: true}); ok {
		t.Fatalf("keyword argument should be rejected")
	}
	a2, _ := newAdapter(refx.Int)
	if _, ok := a2.CompileValue(&source.CallExpr{Name: "len", HasUnpack: true}); ok {
		t.Fatalf("unpacked argument should be rejected")
	}
}

func TestCompileOuterBindingTakesPrecedence(t *testing.T) {
	outerVar := &refx.Var{Name: "n", ScopeID: "outer", ElemType: refx.Str}
	a := &Adapter{
		Domain: refx.Int,
		Scope:  refvar.New("inner"),
		Outer:  map[string]*refx.Var{"n": outerVar},
		Diags:  &diag.Sink{},
	}
	e, ok := a.compile(&source.Name{Value: "n"}, refx.Str, true)
	if !ok {
		t.Fatalf("outer-bound name should compile")
	}
	v := e.(*refx.VarExpr).V
	if v != outerVar {
		t.Fatalf("expected the outer variable to be reused, got a fresh one")
	}
}

func TestCompileStringExprSourceReparses(t *testing.T) {
	a, sink := newAdapter(refx.Int)
	lit := &source.StringLit{Value: "n + 1"}
	e, ok := a.CompileValue(&source.StringExprSource{
		Literal: lit,
		Reparse: func(text string) (source.Expr, error) {
			return &source.BinaryExpr{
				Op: "+",
				X:  &source.Name{Value: "n"},
				Y:  &source.NumberLit{Text: "1"},
			}, nil
		},
	})
	if !ok || sink.Len() != 0 {
		t.Fatalf("reparsed string source should compile: %v", sink.Diagnostics())
	}
	if _, ok := e.(*refx.BinaryExpr); !ok {
		t.Fatalf("expected a BinaryExpr from the reparsed text, got %T", e)
	}
}
