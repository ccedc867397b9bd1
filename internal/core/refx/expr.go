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

// Package refx is the refinement-expression AST (spec.md §3, §4.1): a
// small, closed variant set plus the structural-rewrite walker every
// derived pass builds on. It is modeled on the tagged-variant style of
// this corpus's internal/core/adt package (Node/Value/Expr marker
// methods dispatched by a closed type switch), scaled down to the
// handful of variants a refinement needs instead of a full value graph.
package refx

import (
	"github.com/cockroachdb/apd/v2"
)

// Type is the element-type of a refinement expression (spec.md §3).
type Type int

const (
	Unknown Type = iota
	Int
	Str
	BytesT
	Bool
	IntTuple
)

func (t Type) String() string {
	switch t {
	case Int:
		return "int"
	case Str:
		return "str"
	case BytesT:
		return "bytes"
	case Bool:
		return "bool"
	case IntTuple:
		return "int-tuple"
	default:
		return "unknown"
	}
}

// Op is a unary or binary operator tag.
type Op int

const (
	NoOp Op = iota

	OpPos // +x
	OpNeg // -x
	OpNot // not x

	OpAdd // x + y
	OpSub // x - y
	OpMul // x * y
	OpQuo // x // y (floor division)
	OpRem // x % y

	OpEql // x == y
	OpNeq // x != y
	OpLss // x < y
	OpLeq // x <= y
	OpGtr // x > y
	OpGeq // x >= y

	OpAnd // x and y
	OpOr  // x or y
)

func (op Op) String() string {
	switch op {
	case OpPos:
		return "+"
	case OpNeg:
		return "-"
	case OpNot:
		return "not"
	case OpAdd:
		return "+"
	case OpSub:
		return "-"
	case OpMul:
		return "*"
	case OpQuo:
		return "//"
	case OpRem:
		return "%"
	case OpEql:
		return "=="
	case OpNeq:
		return "!="
	case OpLss:
		return "<"
	case OpLeq:
		return "<="
	case OpGtr:
		return ">"
	case OpGeq:
		return ">="
	case OpAnd:
		return "and"
	case OpOr:
		return "or"
	default:
		return "<bad op>"
	}
}

// Invert returns the operator that results from swapping the operands of
// a comparison, e.g. Invert(Lss) is Gtr. Used by the evaluator (spec.md
// §4.4 Comparisons) to check a condition attached to the right operand.
func (op Op) Invert() Op {
	switch op {
	case OpLss:
		return OpGtr
	case OpLeq:
		return OpGeq
	case OpGtr:
		return OpLss
	case OpGeq:
		return OpLeq
	case OpEql:
		return OpEql
	case OpNeq:
		return OpNeq
	default:
		return op
	}
}

// Expr is any node of the refinement expression tree. All Expr values are
// immutable after construction (spec.md §3 Lifecycle); transformers
// return fresh nodes or, when nothing changed, the original node.
type Expr interface {
	// Type is the statically known element-type of this node, assigned
	// at parse-adapter time.
	Type() Type
	exprNode()
}

// Number is an arbitrary-precision integer literal.
type Number struct {
	Val *apd.Decimal
}

func (*Number) Type() Type { return Int }
func (*Number) exprNode()  {}

// NewNumber builds a Number from an int64, a convenience used throughout
// the evaluator and tests.
func NewNumber(n int64) *Number {
	d := new(apd.Decimal)
	d.SetInt64(n)
	return &Number{Val: d}
}

// Int64 reports n's value as an int64 and whether the conversion was
// exact (it always is for the tuple shapes this engine deals with, but
// callers doing index arithmetic should still check).
func (n *Number) Int64() (int64, bool) {
	i, err := n.Val.Int64()
	return i, err == nil
}

// String is a unicode string literal.
type String struct {
	Val string
}

func (*String) Type() Type { return Str }
func (*String) exprNode()  {}

// Bytes is a byte-string literal.
type Bytes struct {
	Val []byte
}

func (*Bytes) Type() Type { return BytesT }
func (*Bytes) exprNode()  {}

// Boolean is a literal true/false.
type Boolean struct {
	Val bool
}

func (*Boolean) Type() Type { return Bool }
func (*Boolean) exprNode()  {}

// Wildcard is the "unknown but compatible" top value. It is absorptive:
// any node containing a Wildcard simplifies through it (spec.md §3, §4.4).
type Wildcard struct {
	Of Type // the type the wildcard stands in for
}

func (w *Wildcard) Type() Type { return w.Of }
func (*Wildcard) exprNode()    {}

// VarExpr references a refinement variable.
type VarExpr struct {
	V *Var
}

func (e *VarExpr) Type() Type { return e.V.ElemType }
func (*VarExpr) exprNode()    {}

// UnaryExpr applies Op to X.
type UnaryExpr struct {
	Op Op
	X  Expr
	T  Type
}

func (e *UnaryExpr) Type() Type { return e.T }
func (*UnaryExpr) exprNode()    {}

// BinaryExpr applies Op to X and Y.
type BinaryExpr struct {
	Op   Op
	X, Y Expr
	T    Type
}

func (e *BinaryExpr) Type() Type { return e.T }
func (*BinaryExpr) exprNode()    {}

// TupleElt is one entry of a Tuple.
type TupleElt struct {
	Value    Expr
	Unpacked bool
}

// Tuple represents an integer-tuple shape, an ordered sequence of
// (expr, isUnpacked) pairs (spec.md §3).
type Tuple struct {
	Elts []TupleElt
}

func (*Tuple) Type() Type { return IntTuple }
func (*Tuple) exprNode()  {}

// Call is an invocation of one of the built-in shape functions (spec.md
// §4.4). Name and Args are validated against the built-in table by the
// parser adapter before a Call node is ever constructed.
type Call struct {
	Name string
	Args []Expr
	T    Type
}

func (e *Call) Type() Type { return e.T }
func (*Call) exprNode()    {}

