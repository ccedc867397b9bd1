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
	"os"

	"github.com/spf13/cobra"

	"refinecheck.dev/refine/internal/core/check"
	"refinecheck.dev/refine/internal/core/compile"
	"refinecheck.dev/refine/internal/core/refinement"
	"refinecheck.dev/refine/internal/core/refvar"
	"refinecheck.dev/refine/internal/core/refx"
	"refinecheck.dev/refine/internal/diag"
)

// refinementFile is one entry of the JSON arrays --pre/--post accept: a
// value expression node and an optional condition expression node,
// mirroring eval.go's jsonExpr wire shape.
type refinementFile struct {
	Value     *jsonExpr `json:"value"`
	Condition *jsonExpr `json:"condition,omitempty"`
}

// newCheckCmd builds `refine check`: it runs the Consistency Checker
// (spec.md §4.3) over a scope's pre- and post-condition refinements,
// read from --pre/--post JSON files, and prints the deduplicated
// variable list plus any rule violations.
func newCheckCmd(root *Command) *cobra.Command {
	var preFile, postFile, domainFlag string

	c := &cobra.Command{
		Use:   "check",
		Short: "run the consistency checker over a scope's refinements",
		RunE: func(cc *cobra.Command, args []string) error {
			domain := domainFlag
			if domain == "" {
				domain = root.cfg.Domain
			}
			want, err := parseDomain(domain)
			if err != nil {
				return err
			}

			sink := &diag.Sink{}
			scope := refvar.New("cli")
			adapter := &compile.Adapter{Domain: want, Scope: scope, Diags: sink}

			pre, err := loadRefinements(preFile, adapter)
			if err != nil {
				return err
			}
			post, err := loadRefinements(postFile, adapter)
			if err != nil {
				return err
			}

			vars := check.Check(pre, post, "cli", sink)
			for _, v := range vars {
				fmt.Fprintf(cc.OutOrStdout(), "%s: %s\n", v.Name, v.ElemType)
			}
			printDiagnostics(cc, sink)
			if sink.Len() > 0 {
				return ErrPrintedError
			}
			return nil
		},
	}
	c.Flags().StringVar(&preFile, "pre", "", "path to a JSON array of precondition refinements")
	c.Flags().StringVar(&postFile, "post", "", "path to a JSON array of postcondition refinements")
	c.Flags().StringVar(&domainFlag, "domain", "", "refinement domain: int, str, bytes, bool, int-tuple")
	return c
}

// loadRefinements reads path, empty meaning "no refinements supplied", and
// compiles each entry's value/condition nodes through adapter into a
// refinement.TypeRefinement. An entry whose value fails to compile is
// skipped; the adapter has already reported why via adapter.Diags.
func loadRefinements(path string, adapter *compile.Adapter) ([]*refinement.TypeRefinement, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var entries []refinementFile
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, err
	}

	var out []*refinement.TypeRefinement
	for _, e := range entries {
		node, err := e.Value.toSource()
		if err != nil {
			return nil, err
		}
		value, ok := adapter.CompileValue(node)
		if !ok {
			continue
		}
		r := &refinement.TypeRefinement{Value: value, Vars: varsByName(adapter.Scope.Vars())}
		if e.Condition != nil {
			cnode, err := e.Condition.toSource()
			if err != nil {
				return nil, err
			}
			if cond, ok := adapter.CompileCondition(cnode); ok {
				r.Condition = cond
			}
		}
		out = append(out, r)
	}
	return out, nil
}

func varsByName(vars []*refx.Var) map[string]*refx.Var {
	out := make(map[string]*refx.Var, len(vars))
	for _, v := range vars {
		out[v.Name] = v
	}
	return out
}
