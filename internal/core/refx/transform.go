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

// Transformer is the overridable-hook set of the generic structural
// rewrite walker (spec.md §4.1). A derived pass embeds NoopTransformer
// and overrides only the variants it cares about, the same "override
// what you need, inherit the rest" idiom this corpus's astutil.Cursor
// visitor uses, simplified here to a closed type switch because the
// refinement AST, unlike a general source AST, has a fixed small set of
// variants.
type Transformer interface {
	TransformNumber(*Number) Expr
	TransformString(*String) Expr
	TransformBytes(*Bytes) Expr
	TransformBoolean(*Boolean) Expr
	TransformWildcard(*Wildcard) Expr
	TransformVar(*VarExpr) Expr
	TransformUnary(*UnaryExpr) Expr
	TransformBinary(*BinaryExpr) Expr
	TransformTuple(*Tuple) Expr
	TransformCall(*Call) Expr
}

// NoopTransformer implements Transformer with the identity function on
// every variant. Embed it to get a Transformer that only needs to
// override the handful of hooks relevant to one pass.
type NoopTransformer struct{}

func (NoopTransformer) TransformNumber(n *Number) Expr     { return n }
func (NoopTransformer) TransformString(n *String) Expr     { return n }
func (NoopTransformer) TransformBytes(n *Bytes) Expr       { return n }
func (NoopTransformer) TransformBoolean(n *Boolean) Expr   { return n }
func (NoopTransformer) TransformWildcard(n *Wildcard) Expr { return n }
func (NoopTransformer) TransformVar(n *VarExpr) Expr       { return n }
func (NoopTransformer) TransformUnary(n *UnaryExpr) Expr   { return n }
func (NoopTransformer) TransformBinary(n *BinaryExpr) Expr { return n }
func (NoopTransformer) TransformTuple(n *Tuple) Expr       { return n }
func (NoopTransformer) TransformCall(n *Call) Expr         { return n }

// Apply is the single generic walker (spec.md §4.1). For composite
// variants it rewrites children first; if no child changed, the node
// passed to the variant's hook is the original node reference, so a
// no-op hook (NoopTransformer) yields back the exact same pointer —
// physical-identity preservation (spec.md §8 P2) that lets callers cheap
// structural-share unaffected subtrees.
func Apply(t Transformer, e Expr) Expr {
	if e == nil {
		return nil
	}
	switch n := e.(type) {
	case *Number:
		return t.TransformNumber(n)
	case *String:
		return t.TransformString(n)
	case *Bytes:
		return t.TransformBytes(n)
	case *Boolean:
		return t.TransformBoolean(n)
	case *Wildcard:
		return t.TransformWildcard(n)
	case *VarExpr:
		return t.TransformVar(n)

	case *UnaryExpr:
		x := Apply(t, n.X)
		out := n
		if x != n.X {
			out = &UnaryExpr{Op: n.Op, X: x, T: n.T}
		}
		return t.TransformUnary(out)

	case *BinaryExpr:
		x := Apply(t, n.X)
		y := Apply(t, n.Y)
		out := n
		if x != n.X || y != n.Y {
			out = &BinaryExpr{Op: n.Op, X: x, Y: y, T: n.T}
		}
		return t.TransformBinary(out)

	case *Tuple:
		changed := false
		elts := make([]TupleElt, len(n.Elts))
		for i, elt := range n.Elts {
			v := Apply(t, elt.Value)
			if v != elt.Value {
				changed = true
			}
			elts[i] = TupleElt{Value: v, Unpacked: elt.Unpacked}
		}
		out := n
		if changed {
			out = &Tuple{Elts: elts}
		}
		return t.TransformTuple(out)

	case *Call:
		changed := false
		args := make([]Expr, len(n.Args))
		for i, a := range n.Args {
			v := Apply(t, a)
			if v != a {
				changed = true
			}
			args[i] = v
		}
		out := n
		if changed {
			out = &Call{Name: n.Name, Args: args, T: n.T}
		}
		return t.TransformCall(out)

	default:
		panic("refx: Apply called on unknown Expr type")
	}
}

// boundFreeTransform toggles the Bound bit on VarExpr nodes whose
// variable's ScopeID is in scopeIDs. target is the bit to set when a
// variable's scope matches.
type boundFreeTransform struct {
	NoopTransformer
	scopeIDs map[string]bool
	target   bool
}

func (b *boundFreeTransform) TransformVar(n *VarExpr) Expr {
	if !b.scopeIDs[n.V.ScopeID] || n.V.Bound == b.target {
		return n
	}
	v := *n.V
	v.Bound = b.target
	return &VarExpr{V: &v}
}

func scopeSet(scopeIDs []string) map[string]bool {
	m := make(map[string]bool, len(scopeIDs))
	for _, id := range scopeIDs {
		m[id] = true
	}
	return m
}

// BoundTransform marks as bound every Var whose scope is in scopeIDs
// (spec.md §4.1): those variables have been captured by an outer
// generalization and can no longer be substitution targets.
func BoundTransform(e Expr, scopeIDs []string) Expr {
	return Apply(&boundFreeTransform{scopeIDs: scopeSet(scopeIDs), target: true}, e)
}

// FreeTransform is the dual of BoundTransform: marks matching variables
// as free (substitutable) again.
func FreeTransform(e Expr, scopeIDs []string) Expr {
	return Apply(&boundFreeTransform{scopeIDs: scopeSet(scopeIDs), target: false}, e)
}

// collectFreeVars accumulates the unique free variables reachable from a
// root, keyed by Var.ID() to dedup occurrences of the same variable.
type collectFreeVars struct {
	NoopTransformer
	seen map[string]*Var
	out  []*Var
}

func (c *collectFreeVars) TransformVar(n *VarExpr) Expr {
	if n.V.Bound {
		return n
	}
	id := n.V.ID()
	if _, ok := c.seen[id]; !ok {
		c.seen[id] = n.V
		c.out = append(c.out, n.V)
	}
	return n
}

// CollectFreeVars collects the unique free variables reachable from root
// (spec.md §4.1), in first-encountered order.
func CollectFreeVars(root Expr) []*Var {
	c := &collectFreeVars{seen: map[string]*Var{}}
	Apply(c, root)
	return c.out
}

// applySolvedVars replaces Var(v) by solved[v.ID()] where present, and
// optionally replaces any remaining free variable with a Wildcard
// (spec.md §4.1). inProgress is a pending-substitution set, keyed by
// variable id, that breaks substitution cycles: a variable that maps
// transitively back to itself is returned unchanged the second time it
// is entered, rather than recursing forever (spec.md §8 P3).
type applySolvedVars struct {
	NoopTransformer
	solved         map[string]Expr
	replaceUnsolved bool
	inProgress      map[string]bool
}

func (a *applySolvedVars) TransformVar(n *VarExpr) Expr {
	id := n.V.ID()
	if a.inProgress[id] {
		return n
	}
	repl, ok := a.solved[id]
	if !ok {
		if a.replaceUnsolved && !n.V.Bound {
			return &Wildcard{Of: n.V.ElemType}
		}
		return n
	}
	a.inProgress[id] = true
	defer delete(a.inProgress, id)
	return Apply(a, repl)
}

// ApplySolvedVars replaces Var(v) by solved[v.ID()] when present,
// optionally replacing remaining free variables with Wildcard
// (replaceUnsolved). Substitution cycles (spec.md §8 P3) terminate by
// returning the original Var node when a variable is re-entered while its
// own substitution is still being expanded.
func ApplySolvedVars(root Expr, solved map[string]Expr, replaceUnsolved bool) Expr {
	a := &applySolvedVars{
		solved:          solved,
		replaceUnsolved: replaceUnsolved,
		inProgress:      map[string]bool{},
	}
	return Apply(a, root)
}
