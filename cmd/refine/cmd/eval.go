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

package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"refinecheck.dev/refine/internal/core/compile"
	"refinecheck.dev/refine/internal/core/refdebug"
	"refinecheck.dev/refine/internal/core/refeval"
	"refinecheck.dev/refine/internal/core/refvar"
	"refinecheck.dev/refine/internal/core/refx"
	"refinecheck.dev/refine/internal/diag"
	"refinecheck.dev/refine/internal/source"
)

// newEvalCmd builds `refine eval`: it reads a JSON-encoded source
// expression node (the shape a real tokenizer/parser would hand the
// adapter — spec.md §1 scopes the parser itself out of this engine) from
// a file or stdin, compiles it through the parser adapter, evaluates it,
// and prints the simplified result and any diagnostics.
func newEvalCmd(root *Command) *cobra.Command {
	var domainFlag string

	c := &cobra.Command{
		Use:   "eval [file]",
		Short: "compile and evaluate a refinement expression node",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cc *cobra.Command, args []string) error {
			data, err := readInput(args)
			if err != nil {
				return err
			}
			node, err := decodeSourceExpr(data)
			if err != nil {
				return fmt.Errorf("decoding input: %w", err)
			}

			domain := domainFlag
			if domain == "" {
				domain = root.cfg.Domain
			}
			want, err := parseDomain(domain)
			if err != nil {
				return err
			}

			sink := &diag.Sink{}
			adapter := &compile.Adapter{
				Domain: want,
				Scope:  refvar.New("cli"),
				Diags:  sink,
			}
			expr, ok := adapter.CompileValue(node)
			if !ok {
				printDiagnostics(cc, sink)
				return ErrPrintedError
			}

			result := refeval.Eval(expr, &refeval.Options{
				ReplaceUnknownVars: root.cfg.ReplaceUnknownVars,
				Errors:             sink,
				Warnings:           sink,
			})

			fmt.Fprintln(cc.OutOrStdout(), refdebug.NodeString(result))
			printDiagnostics(cc, sink)
			return nil
		},
	}
	c.Flags().StringVar(&domainFlag, "domain", "", "refinement domain: int, str, bytes, bool, int-tuple")
	return c
}

func parseDomain(s string) (refx.Type, error) {
	switch s {
	case "int":
		return refx.Int, nil
	case "str":
		return refx.Str, nil
	case "bytes":
		return refx.BytesT, nil
	case "bool":
		return refx.Bool, nil
	case "int-tuple":
		return refx.IntTuple, nil
	default:
		return refx.Unknown, fmt.Errorf("unknown domain %q", s)
	}
}

func readInput(args []string) ([]byte, error) {
	if len(args) == 1 {
		return os.ReadFile(args[0])
	}
	return io.ReadAll(os.Stdin)
}

func printDiagnostics(cc *cobra.Command, sink *diag.Sink) {
	for _, d := range sink.Diagnostics() {
		fmt.Fprintln(cc.ErrOrStderr(), d.String())
	}
}

// jsonExpr is the wire shape decodeSourceExpr accepts: a small, explicit
// tagged union mirroring source.Expr's variant set.
type jsonExpr struct {
	Kind string `json:"kind"`

	// name
	Value string `json:"value,omitempty"`

	// number
	Text      string `json:"text,omitempty"`
	Imaginary bool   `json:"imaginary,omitempty"`
	Float     bool   `json:"float,omitempty"`

	// string
	IsBytes bool `json:"isBytes,omitempty"`

	// bool
	Bool bool `json:"bool,omitempty"`

	// unary/binary
	Op string     `json:"op,omitempty"`
	X  *jsonExpr  `json:"x,omitempty"`
	Y  *jsonExpr  `json:"y,omitempty"`

	// tuple
	Elts []jsonTupleElt `json:"elts,omitempty"`

	// call
	Name       string      `json:"name,omitempty"`
	Args       []*jsonExpr `json:"args,omitempty"`
	HasKeyword bool        `json:"hasKeyword,omitempty"`
	HasUnpack  bool        `json:"hasUnpack,omitempty"`
}

type jsonTupleElt struct {
	Value    *jsonExpr `json:"value"`
	Unpacked bool      `json:"unpacked,omitempty"`
}

func decodeSourceExpr(data []byte) (source.Expr, error) {
	var je jsonExpr
	if err := json.Unmarshal(data, &je); err != nil {
		return nil, err
	}
	return je.toSource()
}

func (je *jsonExpr) toSource() (source.Expr, error) {
	if je == nil {
		return nil, fmt.Errorf("missing expression node")
	}
	switch je.Kind {
	case "name":
		return &source.Name{Value: je.Value}, nil
	case "number":
		return &source.NumberLit{Text: je.Text, Imaginary: je.Imaginary, Float: je.Float}, nil
	case "string":
		return &source.StringLit{Value: je.Value, IsBytes: je.IsBytes}, nil
	case "bool":
		return &source.BoolLit{Value: je.Bool}, nil
	case "unary":
		x, err := je.X.toSource()
		if err != nil {
			return nil, err
		}
		return &source.UnaryExpr{Op: je.Op, X: x}, nil
	case "binary":
		x, err := je.X.toSource()
		if err != nil {
			return nil, err
		}
		y, err := je.Y.toSource()
		if err != nil {
			return nil, err
		}
		return &source.BinaryExpr{Op: je.Op, X: x, Y: y}, nil
	case "tuple":
		elts := make([]source.TupleElt, len(je.Elts))
		for i, e := range je.Elts {
			v, err := e.Value.toSource()
			if err != nil {
				return nil, err
			}
			elts[i] = source.TupleElt{Value: v, Unpacked: e.Unpacked}
		}
		return &source.TupleExpr{Elts: elts}, nil
	case "call":
		args := make([]source.Expr, len(je.Args))
		for i, a := range je.Args {
			v, err := a.toSource()
			if err != nil {
				return nil, err
			}
			args[i] = v
		}
		return &source.CallExpr{Name: je.Name, Args: args, HasKeyword: je.HasKeyword, HasUnpack: je.HasUnpack}, nil
	default:
		return nil, fmt.Errorf("unknown expression kind %q", je.Kind)
	}
}
