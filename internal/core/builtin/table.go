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

// Package builtin holds the stable built-in shape-function signature
// table (spec.md §4.4, §6 "Stable built-in function signatures"). It is
// its own package, independent of both the parser adapter (which needs
// arity/type checking at parse time) and the evaluator (which needs the
// same signatures to know how many arguments to evaluate), so neither
// has to import the other just to share this table.
package builtin

import "refinecheck.dev/refine/internal/core/refx"

// Signature describes one built-in function: its fixed parameter types
// and its return type. All built-ins in this engine take a fixed arity
// (spec.md never describes a variadic shape function).
type Signature struct {
	Name    string
	Params  []refx.Type
	Returns refx.Type
}

// Table is the stable compatibility surface named in spec.md §6: names,
// arity, argument order and element types of these built-ins must not
// change without a spec revision.
var Table = map[string]Signature{
	"len":       {"len", []refx.Type{refx.IntTuple}, refx.Int},
	"index":     {"index", []refx.Type{refx.IntTuple, refx.Int}, refx.Int},
	"swap":      {"swap", []refx.Type{refx.IntTuple, refx.Int, refx.Int}, refx.IntTuple},
	"permute":   {"permute", []refx.Type{refx.IntTuple, refx.IntTuple}, refx.IntTuple},
	"concat":    {"concat", []refx.Type{refx.IntTuple, refx.IntTuple, refx.Int}, refx.IntTuple},
	"splice":    {"splice", []refx.Type{refx.IntTuple, refx.Int, refx.Int, refx.IntTuple}, refx.IntTuple},
	"broadcast": {"broadcast", []refx.Type{refx.IntTuple, refx.IntTuple}, refx.IntTuple},
	"reshape":   {"reshape", []refx.Type{refx.IntTuple, refx.IntTuple}, refx.IntTuple},
}

// Lookup returns the signature for name, and whether it is a known
// built-in.
func Lookup(name string) (Signature, bool) {
	sig, ok := Table[name]
	return sig, ok
}
