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

package decl

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

// ptrIdentity compares *Symbol and *Declaration by pointer identity so
// cmp.Diff doesn't need to walk the Declaration<->Symbol back-references.
var ptrIdentity = cmp.Options{
	cmp.Comparer(func(a, b *Symbol) bool { return a == b }),
	cmp.Comparer(func(a, b *Declaration) bool { return a == b }),
}

func TestSymbolAccessors(t *testing.T) {
	d1 := &Declaration{Kind: KindVariable, FilePath: "a.py"}
	d2 := &Declaration{Kind: KindVariable, FilePath: "a.py", TargetSymbolName: "x"}
	s := &Symbol{
		Name:                   "x",
		Declarations:           []*Declaration{d1, d2},
		TypedDeclarations:      []*Declaration{d2},
		IsPrivate:              true,
		IsExternallyHidden:     true,
		IsPrivatePyTypedImport: true,
	}

	if got := s.GetDeclarations(); !cmp.Equal(got, []*Declaration{d1, d2}, ptrIdentity) {
		t.Fatalf("GetDeclarations() diff (-got +want):\n%s", cmp.Diff(got, []*Declaration{d1, d2}, ptrIdentity))
	}
	if got := s.GetTypedDeclarations(); !cmp.Equal(got, []*Declaration{d2}, ptrIdentity) {
		t.Fatalf("GetTypedDeclarations() diff (-got +want):\n%s", cmp.Diff(got, []*Declaration{d2}, ptrIdentity))
	}
	if !s.IsPrivateMember() {
		t.Fatalf("IsPrivateMember() = false, want true")
	}
	if !s.IsExternallyHiddenMember() {
		t.Fatalf("IsExternallyHiddenMember() = false, want true")
	}
	if !s.IsPrivatePyTypedImportMember() {
		t.Fatalf("IsPrivatePyTypedImportMember() = false, want true")
	}
}

func TestSymbolAccessorsDefaults(t *testing.T) {
	s := &Symbol{Name: "y"}
	if s.IsPrivateMember() || s.IsExternallyHiddenMember() || s.IsPrivatePyTypedImportMember() {
		t.Fatalf("zero-value Symbol should report false for all visibility bits")
	}
	if s.GetDeclarations() != nil {
		t.Fatalf("zero-value Symbol.GetDeclarations() = %v, want nil", s.GetDeclarations())
	}
}

func TestSymbolTableLookup(t *testing.T) {
	sym := &Symbol{Name: "Foo"}
	table := SymbolTable{"Foo": sym}
	if table["Foo"] != sym {
		t.Fatalf("table lookup returned wrong symbol")
	}
	if table["Missing"] != nil {
		t.Fatalf("missing key should yield nil, not a zero Symbol")
	}
}

func TestDeclarationAliasFields(t *testing.T) {
	target := &Symbol{Name: "real"}
	d := &Declaration{
		Kind:                KindAlias,
		FilePath:            "b.py",
		TargetSymbolName:    "real",
		UsesLocalName:       true,
		TargetSymbol:        target,
		IsPrivateTypedImport: true,
	}
	want := &Declaration{
		Kind:                KindAlias,
		FilePath:            "b.py",
		TargetSymbolName:    "real",
		UsesLocalName:       true,
		TargetSymbol:        target,
		IsPrivateTypedImport: true,
	}
	if diff := cmp.Diff(want, d, ptrIdentity); diff != "" {
		t.Fatalf("Declaration mismatch (-want +got):\n%s", diff)
	}
}
