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

// Package decl holds the declaration and symbol shapes the alias
// resolver (package alias) walks (spec.md §3 "Declaration"/"Symbol",
// §4.7). It is grounded on this corpus's cue/build.Instance, which plays
// the analogous role of "a named entity with a set of importable
// declarations" for CUE packages.
package decl

// Kind tags the variant of a Declaration.
type Kind int

const (
	KindAlias Kind = iota
	KindClass
	KindFunction
	KindVariable
	KindParameter
)

// Declaration is an ownership-bearing descriptor of what a symbol means
// in one file (spec.md §3). Fields beyond Kind and FilePath are
// meaningful only for alias declarations, mirroring the source system's
// single concrete type carrying optional alias-specific fields.
type Declaration struct {
	Kind     Kind
	FilePath string

	// Alias-specific fields (spec.md §3, §4.7).
	TargetSymbolName  string // empty means absent
	TargetFilePath    string // empty means absent
	LoadSymbolsFromPath bool
	SubmoduleFallback *Declaration
	UsesLocalName     bool
	IsNativeLib       bool

	// TargetSymbol is the already-resolved Symbol this alias points to
	// when no cross-file lookup is needed (TargetFilePath == ""): a
	// same-file re-export. Cross-file aliases instead go through
	// ImportLookup via TargetFilePath.
	TargetSymbol *Symbol

	// IsPrivateTypedImport marks an alias declaration that re-exports a
	// symbol from a typed package without itself being part of that
	// package's public typed surface (spec.md §4.7 step 10, S8).
	IsPrivateTypedImport bool
}

// The alias resolver's visited set has no separate key type: since
// declarations are owned by their Symbol and never copied, it keys the
// set on *Declaration pointer identity — see alias.Resolve.

// Symbol is a named entity: its ordered declarations plus visibility
// bits (spec.md §3).
type Symbol struct {
	Name                string
	Declarations        []*Declaration
	TypedDeclarations   []*Declaration
	IsPrivate           bool
	IsExternallyHidden  bool
	IsPrivatePyTypedImport bool

	// InExceptionSuite marks, by declaration pointer, which declarations
	// of this symbol live inside an exception-suite fallback handler
	// (spec.md §4.7 step 8).
	InExceptionSuite map[*Declaration]bool
}

// GetDeclarations returns every declaration of this symbol.
func (s *Symbol) GetDeclarations() []*Declaration { return s.Declarations }

// GetTypedDeclarations returns only the declarations carrying an
// explicit type annotation.
func (s *Symbol) GetTypedDeclarations() []*Declaration { return s.TypedDeclarations }

// IsPrivateMember reports whether this symbol is private.
func (s *Symbol) IsPrivateMember() bool { return s.IsPrivate }

// IsExternallyHiddenMember reports whether this symbol is hidden from
// external (cross-module) access.
func (s *Symbol) IsExternallyHiddenMember() bool { return s.IsExternallyHidden }

// IsPrivatePyTypedImportMember reports whether this symbol is a private
// re-export from within a typed package (spec.md §4.7 step 10).
func (s *Symbol) IsPrivatePyTypedImportMember() bool { return s.IsPrivatePyTypedImport }

// SymbolTable maps a symbol name to its Symbol within one file or module.
type SymbolTable map[string]*Symbol

// ImportLookup resolves a file path or module name to the symbol table
// it exports, and whether that module is part of a "py-typed" package
// (spec.md §4.7, §6). A false ok means the module could not be found.
type ImportLookup func(filePathOrModule string) (table SymbolTable, isInTypedPackage bool, ok bool)
