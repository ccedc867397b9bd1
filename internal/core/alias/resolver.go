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

// Package alias is the alias resolver (spec.md §4.7): it walks chains of
// symbol re-exports across modules, producing the "real" declaration
// behind a name while respecting import visibility rules, cycle
// tolerance, and a transition policy for typed vs. untyped packages. It
// is grounded on the traversal shape of this corpus's
// cue/build.Instance.LookupImport/Dependencies walk, generalized from
// "resolve one import path" to "resolve a chain of possibly-cyclic
// aliases with a visited set".
package alias

import "refinecheck.dev/refine/internal/core/decl"

// Result is the alias resolver's output (spec.md §4.7). Unresolved is set
// when resolution failed outright (the spec's "null output"). A native
// library reference is reported as IsNativeSentinel with Declaration nil,
// distinct from Unresolved.
type Result struct {
	Declaration *decl.Declaration
	IsPrivate   bool

	// PrivatePyTypedImporter/PrivatePyTypedImported record the first
	// typed-package transition boundary (spec.md §4.7 step 10, S8): the
	// module that imported a private typed symbol, and the module of the
	// first subsequently-encountered non-private typed symbol. Both are
	// empty when no such transition occurred.
	PrivatePyTypedImporter string
	PrivatePyTypedImported string

	IsNativeSentinel bool
	Unresolved       bool
}

// Resolve walks the alias chain starting at start (spec.md §4.7
// algorithm). lookup is consulted only for aliases that carry a path and
// LoadSymbolsFromPath; same-file aliases use Declaration.TargetSymbol
// directly. resolveLocalNames controls whether a locally-renamed alias is
// stepped through or returned as-is; allowExternallyHiddenAccess controls
// whether a non-exported symbol may still be traversed.
func Resolve(lookup decl.ImportLookup, start *decl.Declaration, resolveLocalNames, allowExternallyHiddenAccess bool) Result {
	visited := map[*decl.Declaration]bool{}
	isPrivate := false
	sawTypedTransition := false
	var importer, imported string

	current := start
	for {
		// Step 1.
		if current.Kind != decl.KindAlias || current.TargetSymbolName == "" {
			return Result{Declaration: current, IsPrivate: isPrivate, PrivatePyTypedImporter: importer, PrivatePyTypedImported: imported}
		}
		// Step 2.
		if !resolveLocalNames && current.UsesLocalName {
			return Result{Declaration: current, IsPrivate: isPrivate, PrivatePyTypedImporter: importer, PrivatePyTypedImported: imported}
		}

		// Steps 3-4.
		var table decl.SymbolTable
		inTyped := false
		if current.TargetFilePath != "" && current.LoadSymbolsFromPath {
			t, typed, ok := lookup(current.TargetFilePath)
			if ok {
				table, inTyped = t, typed
			}
		} else if current.TargetSymbol != nil {
			table = decl.SymbolTable{current.TargetSymbolName: current.TargetSymbol}
		}
		var sym *decl.Symbol
		if table != nil {
			sym = table[current.TargetSymbolName]
		}

		// Step 5.
		if sym == nil {
			if fb := current.SubmoduleFallback; fb != nil {
				if fb.Kind == decl.KindAlias && fb.TargetFilePath != "" && fb.LoadSymbolsFromPath {
					if _, _, ok := lookup(fb.TargetFilePath); !ok {
						return Result{Unresolved: true}
					}
				}
				current = fb
				continue
			}
			if current.IsNativeLib {
				return Result{IsNativeSentinel: true, IsPrivate: isPrivate}
			}
			return Result{Unresolved: true}
		}

		// Step 6.
		if sym.IsPrivateMember() {
			isPrivate = true
		}
		// Step 7.
		if sym.IsExternallyHiddenMember() && !allowExternallyHiddenAccess {
			return Result{Unresolved: true}
		}

		// Step 8.
		candidates := sym.GetTypedDeclarations()
		if len(candidates) == 0 {
			candidates = sym.GetDeclarations()
		}
		candidates = filterExceptionSuite(candidates, sym)
		if len(candidates) == 0 {
			return Result{Unresolved: true}
		}

		// Step 9.
		next := lastUnvisitedOrLast(candidates, visited)

		// Step 10.
		if inTyped {
			if !sawTypedTransition {
				sawTypedTransition = true
				if sym.IsPrivatePyTypedImportMember() {
					importer = next.FilePath
				}
			} else if !sym.IsPrivatePyTypedImportMember() && imported == "" {
				imported = next.FilePath
			}
		}

		// Step 11.
		if visited[next] {
			if next.FilePath == start.FilePath && current.SubmoduleFallback != nil {
				current = current.SubmoduleFallback
				continue
			}
			return Result{Declaration: next, IsPrivate: isPrivate, PrivatePyTypedImporter: importer, PrivatePyTypedImported: imported}
		}

		// Step 12.
		visited[next] = true
		current = next
	}
}

func filterExceptionSuite(cands []*decl.Declaration, sym *decl.Symbol) []*decl.Declaration {
	if len(sym.InExceptionSuite) == 0 {
		return cands
	}
	out := make([]*decl.Declaration, 0, len(cands))
	for _, d := range cands {
		if !sym.InExceptionSuite[d] {
			out = append(out, d)
		}
	}
	if len(out) == 0 {
		return cands
	}
	return out
}

func lastUnvisitedOrLast(cands []*decl.Declaration, visited map[*decl.Declaration]bool) *decl.Declaration {
	for i := len(cands) - 1; i >= 0; i-- {
		if !visited[cands[i]] {
			return cands[i]
		}
	}
	return cands[len(cands)-1]
}
