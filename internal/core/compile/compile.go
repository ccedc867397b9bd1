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

// Package compile is the parser adapter (spec.md §4.2): it turns a
// parsed source expression into a refinement AST, registering variables
// in a refvar.Registry and validating domain/arity/operator rules along
// the way. It keeps this corpus's internal/core/compile.go shape — a
// small "compiler" struct that accumulates diagnostics through an errf
// helper rather than returning an error from every call — generalized
// from "ast.Expr -> adt.Expr" to "source.Expr -> refx.Expr".
package compile

import (
	"math/big"

	"github.com/cockroachdb/apd/v2"

	"refinecheck.dev/refine/internal/core/builtin"
	"refinecheck.dev/refine/internal/core/refvar"
	"refinecheck.dev/refine/internal/core/refx"
	"refinecheck.dev/refine/internal/diag"
	"refinecheck.dev/refine/internal/source"
)

// Adapter compiles source expressions for one refinement (a single value
// or condition expression belonging to one TypeRefinement) into the
// refinement AST.
type Adapter struct {
	// Domain is the target refinement domain (spec.md §4.2 "IntRefinement,
	// StrRefinement, BytesRefinement, BoolRefinement, IntTupleRefinement").
	Domain refx.Type

	// Scope interns bare names first seen in this refinement.
	Scope *refvar.Registry

	// Outer holds variables bound by an enclosing scope; an outer
	// binding always takes precedence over creating a new local one
	// (spec.md §4.2 "other bare name").
	Outer map[string]*refx.Var

	// Diags receives every reported failure (spec.md §4.2 "Failure
	// semantics"); it may be nil to discard diagnostics.
	Diags *diag.Sink
}

// CompileValue compiles e as a refinement's value expression. Variables
// registered while compiling a value expression are marked IsValue=true
// (spec.md §4.2).
func (a *Adapter) CompileValue(e source.Expr) (refx.Expr, bool) {
	return a.compile(e, a.Domain, true)
}

// CompileCondition compiles e as a refinement's condition expression,
// always of Bool type.
func (a *Adapter) CompileCondition(e source.Expr) (refx.Expr, bool) {
	return a.compile(e, refx.Bool, false)
}

func (a *Adapter) errf(rng source.Range, tpl diag.Template, args ...interface{}) (refx.Expr, bool) {
	a.Diags.Reportf(diag.Error, rng, tpl, args...)
	return nil, false
}

// compile is the single recursive entry point. want is the expected
// element type, or refx.Unknown to ask compile to infer it from the
// expression itself (used for equality operands and arithmetic operands,
// which only need to agree with each other, not with a type fixed in
// advance).
func (a *Adapter) compile(e source.Expr, want refx.Type, isValue bool) (refx.Expr, bool) {
	if e == nil {
		return nil, false
	}

	switch n := e.(type) {
	case *source.StringExprSource:
		return a.compileStringSource(n, want, isValue)

	case *source.NumberLit:
		return a.compileNumber(n, want)

	case *source.StringLit:
		return a.compileStringLit(n, want)

	case *source.BoolLit:
		if want != refx.Unknown && want != refx.Bool {
			return a.errf(n.Range, diag.TplDomainMismatch, refx.Bool, want)
		}
		return &refx.Boolean{Val: n.Value}, true

	case *source.Name:
		return a.compileName(n, want, isValue)

	case *source.UnaryExpr:
		return a.compileUnary(n, want, isValue)

	case *source.BinaryExpr:
		return a.compileBinary(n, want, isValue)

	case *source.TupleExpr:
		return a.compileTuple(n, want, isValue)

	case *source.CallExpr:
		return a.compileCall(n, want, isValue)

	case *source.ParenExpr:
		return a.compile(n.X, want, isValue)

	default:
		return a.errf(e.Pos(), diag.TplUnsupportedOperator, "unknown source expression")
	}
}

func (a *Adapter) compileStringSource(n *source.StringExprSource, want refx.Type, isValue bool) (refx.Expr, bool) {
	reparsed, err := n.Reparse(n.Literal.Value)
	if err != nil {
		return a.errf(n.Literal.Pos().Add(n.Offset), diag.TplUnsupportedOperator, err.Error())
	}
	return a.compile(reparsed, want, isValue)
}

func (a *Adapter) compileNumber(n *source.NumberLit, want refx.Type) (refx.Expr, bool) {
	if n.Imaginary {
		return a.errf(n.Range, diag.TplImaginaryLiteral, n.Text)
	}
	if n.Float {
		return a.errf(n.Range, diag.TplFloatLiteral, n.Text)
	}
	if want != refx.Unknown && want != refx.Int {
		return a.errf(n.Range, diag.TplDomainMismatch, refx.Int, want)
	}
	i, ok := new(big.Int).SetString(n.Text, 10)
	if !ok {
		return a.errf(n.Range, diag.TplUnsupportedOperator, "malformed integer literal %q", n.Text)
	}
	dec := new(apd.Decimal)
	if _, _, err := dec.SetString(i.String()); err != nil {
		return a.errf(n.Range, diag.TplUnsupportedOperator, "malformed integer literal %q", n.Text)
	}
	return &refx.Number{Val: dec}, true
}

func (a *Adapter) compileStringLit(n *source.StringLit, want refx.Type) (refx.Expr, bool) {
	wantBytes := want == refx.BytesT
	wantStr := want == refx.Str
	if want != refx.Unknown && !wantBytes && !wantStr {
		return a.errf(n.Range, diag.TplDomainMismatch, "str-or-bytes", want)
	}
	if want != refx.Unknown && n.IsBytes != wantBytes {
		return a.errf(n.Range, diag.TplDomainMismatch, "bytes-flag mismatch", want)
	}
	if n.IsBytes {
		return &refx.Bytes{Val: []byte(n.Value)}, true
	}
	return &refx.String{Val: n.Value}, true
}

func (a *Adapter) compileName(n *source.Name, want refx.Type, isValue bool) (refx.Expr, bool) {
	if n.Value == "" {
		return a.errf(n.Range, diag.TplEmptyName)
	}
	if n.Value == "_" {
		of := want
		if of == refx.Unknown {
			of = a.Domain
		}
		return &refx.Wildcard{Of: of}, true
	}
	if v, ok := a.Outer[n.Value]; ok {
		if want != refx.Unknown && v.ElemType != want {
			return a.errf(n.Range, diag.TplDomainMismatch, v.ElemType, want)
		}
		return &refx.VarExpr{V: v}, true
	}
	elemType := want
	if elemType == refx.Unknown {
		elemType = a.Domain
		if elemType == refx.IntTuple {
			// A bare name standing alone (not itself a tuple literal)
			// is never itself an IntTuple; default to Int, the common
			// case for shape-variable conditions like `n > 0`.
			elemType = refx.Int
		}
	}
	v, ok := a.Scope.Resolve(n.Value, elemType, isValue)
	if !ok {
		return a.errf(n.Range, diag.TplVariableTypeConflict, n.Value, v.ElemType, elemType)
	}
	return &refx.VarExpr{V: v}, true
}

func (a *Adapter) compileUnary(n *source.UnaryExpr, want refx.Type, isValue bool) (refx.Expr, bool) {
	switch n.Op {
	case "+", "-":
		if lit, ok := n.X.(*source.NumberLit); ok {
			x, ok := a.compileNumber(lit, refx.Int)
			if !ok {
				return nil, false
			}
			num := x.(*refx.Number)
			if n.Op == "-" {
				neg := new(apd.Decimal)
				neg.Neg(num.Val)
				return &refx.Number{Val: neg}, true
			}
			return num, true
		}
		if want != refx.Unknown && want != refx.Int {
			return a.errf(n.Range, diag.TplDomainMismatch, refx.Int, want)
		}
		x, ok := a.compile(n.X, refx.Int, isValue)
		if !ok {
			return nil, false
		}
		op := refx.OpPos
		if n.Op == "-" {
			op = refx.OpNeg
		}
		return &refx.UnaryExpr{Op: op, X: x, T: refx.Int}, true

	case "not":
		if want != refx.Unknown && want != refx.Bool {
			return a.errf(n.Range, diag.TplDomainMismatch, refx.Bool, want)
		}
		x, ok := a.compile(n.X, refx.Bool, isValue)
		if !ok {
			return nil, false
		}
		return &refx.UnaryExpr{Op: refx.OpNot, X: x, T: refx.Bool}, true

	default:
		return a.errf(n.Range, diag.TplUnsupportedOperator, n.Op)
	}
}

func (a *Adapter) compileBinary(n *source.BinaryExpr, want refx.Type, isValue bool) (refx.Expr, bool) {
	switch n.Op {
	case "and", "or":
		if want != refx.Unknown && want != refx.Bool {
			return a.errf(n.Range, diag.TplDomainMismatch, refx.Bool, want)
		}
		x, ok1 := a.compile(n.X, refx.Bool, isValue)
		y, ok2 := a.compile(n.Y, refx.Bool, isValue)
		if !ok1 || !ok2 {
			return nil, false
		}
		op := refx.OpAnd
		if n.Op == "or" {
			op = refx.OpOr
		}
		return &refx.BinaryExpr{Op: op, X: x, Y: y, T: refx.Bool}, true

	case "==", "!=", "<", "<=", ">", ">=":
		if want != refx.Unknown && want != refx.Bool {
			return a.errf(n.Range, diag.TplDomainMismatch, refx.Bool, want)
		}
		isOrder := n.Op != "==" && n.Op != "!="
		operandWant := refx.Unknown
		if isOrder {
			operandWant = refx.Int
		}
		x, ok1 := a.compile(n.X, operandWant, isValue)
		if !ok1 {
			return nil, false
		}
		y, ok2 := a.compile(n.Y, x.Type(), isValue)
		if !ok2 {
			return nil, false
		}
		return &refx.BinaryExpr{Op: compareOp(n.Op), X: x, Y: y, T: refx.Bool}, true

	case "+", "-", "*", "//", "%":
		allowStrBytes := n.Op == "+"
		operandWant := refx.Unknown
		if !allowStrBytes {
			operandWant = refx.Int
		}
		x, ok1 := a.compile(n.X, operandWant, isValue)
		if !ok1 {
			return nil, false
		}
		if !allowStrBytes && x.Type() != refx.Int {
			return a.errf(n.Range, diag.TplDomainMismatch, refx.Int, x.Type())
		}
		if allowStrBytes && x.Type() != refx.Int && x.Type() != refx.Str && x.Type() != refx.BytesT {
			return a.errf(n.Range, diag.TplDomainMismatch, "int-str-or-bytes", x.Type())
		}
		y, ok2 := a.compile(n.Y, x.Type(), isValue)
		if !ok2 {
			return nil, false
		}
		if want != refx.Unknown && want != x.Type() {
			return a.errf(n.Range, diag.TplDomainMismatch, want, x.Type())
		}
		return &refx.BinaryExpr{Op: arithOp(n.Op), X: x, Y: y, T: x.Type()}, true

	default:
		return a.errf(n.Range, diag.TplUnsupportedOperator, n.Op)
	}
}

func compareOp(s string) refx.Op {
	switch s {
	case "==":
		return refx.OpEql
	case "!=":
		return refx.OpNeq
	case "<":
		return refx.OpLss
	case "<=":
		return refx.OpLeq
	case ">":
		return refx.OpGtr
	default:
		return refx.OpGeq
	}
}

func arithOp(s string) refx.Op {
	switch s {
	case "+":
		return refx.OpAdd
	case "-":
		return refx.OpSub
	case "*":
		return refx.OpMul
	case "//":
		return refx.OpQuo
	default:
		return refx.OpRem
	}
}

func (a *Adapter) compileTuple(n *source.TupleExpr, want refx.Type, isValue bool) (refx.Expr, bool) {
	if want != refx.Unknown && want != refx.IntTuple {
		return a.errf(n.Range, diag.TplDomainMismatch, refx.IntTuple, want)
	}
	elts := make([]refx.TupleElt, 0, len(n.Elts))
	for _, elt := range n.Elts {
		elemWant := refx.Int
		if elt.Unpacked {
			elemWant = refx.IntTuple
		}
		v, ok := a.compile(elt.Value, elemWant, isValue)
		if !ok {
			return nil, false
		}
		elts = append(elts, refx.TupleElt{Value: v, Unpacked: elt.Unpacked})
	}
	return &refx.Tuple{Elts: elts}, true
}

func (a *Adapter) compileCall(n *source.CallExpr, want refx.Type, isValue bool) (refx.Expr, bool) {
	if n.HasKeyword {
		return a.errf(n.Range, diag.TplKeywordArgument, n.Name)
	}
	if n.HasUnpack {
		return a.errf(n.Range, diag.TplUnpackedArgument, n.Name)
	}
	sig, ok := builtin.Lookup(n.Name)
	if !ok {
		return a.errf(n.Range, diag.TplUnknownFunction, n.Name)
	}
	if len(n.Args) != len(sig.Params) {
		return a.errf(n.Range, diag.TplWrongArity, n.Name, len(sig.Params), len(n.Args))
	}
	if want != refx.Unknown && want != sig.Returns {
		return a.errf(n.Range, diag.TplDomainMismatch, sig.Returns, want)
	}
	args := make([]refx.Expr, len(n.Args))
	for i, argSrc := range n.Args {
		arg, ok := a.compile(argSrc, sig.Params[i], isValue)
		if !ok {
			return nil, false
		}
		args[i] = arg
	}
	return &refx.Call{Name: n.Name, Args: args, T: sig.Returns}, true
}
