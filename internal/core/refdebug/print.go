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

// Package refdebug renders a refx.Expr back to surface syntax for
// diagnostics, logging and test failure output, the same role this
// corpus's internal/core/debug package plays for adt values.
package refdebug

import (
	"fmt"
	"strings"

	"refinecheck.dev/refine/internal/core/refx"
)

// NodeString renders e as surface-syntax-like text. It is meant for
// diagnostics and test output, not for round-tripping through the parser
// adapter.
func NodeString(e refx.Expr) string {
	var b strings.Builder
	writeNode(&b, e)
	return b.String()
}

func writeNode(b *strings.Builder, e refx.Expr) {
	switch n := e.(type) {
	case nil:
		b.WriteString("<nil>")
	case *refx.Number:
		b.WriteString(n.Val.String())
	case *refx.String:
		fmt.Fprintf(b, "%q", n.Val)
	case *refx.Bytes:
		fmt.Fprintf(b, "b%q", string(n.Val))
	case *refx.Boolean:
		if n.Val {
			b.WriteString("True")
		} else {
			b.WriteString("False")
		}
	case *refx.Wildcard:
		b.WriteString("_")
	case *refx.VarExpr:
		b.WriteString(n.V.Name)
	case *refx.UnaryExpr:
		b.WriteString(n.Op.String())
		if n.Op == refx.OpNot {
			b.WriteByte(' ')
		}
		writeNode(b, n.X)
	case *refx.BinaryExpr:
		writeNode(b, n.X)
		b.WriteByte(' ')
		b.WriteString(n.Op.String())
		b.WriteByte(' ')
		writeNode(b, n.Y)
	case *refx.Tuple:
		b.WriteByte('(')
		for i, elt := range n.Elts {
			if i > 0 {
				b.WriteString(", ")
			}
			if elt.Unpacked {
				b.WriteByte('*')
			}
			writeNode(b, elt.Value)
		}
		b.WriteByte(')')
	case *refx.Call:
		b.WriteString(n.Name)
		b.WriteByte('(')
		for i, a := range n.Args {
			if i > 0 {
				b.WriteString(", ")
			}
			writeNode(b, a)
		}
		b.WriteByte(')')
	default:
		fmt.Fprintf(b, "<unknown %T>", e)
	}
}
