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

// Package diag defines the diagnostic value the refinement engine reports
// through instead of raw errors (spec.md §6, §7): a category, a stable
// message template id, a source range, and an optional addendum chain.
// The core never renders localized strings; it only ever appends to a
// Sink.
package diag

import (
	"fmt"

	"refinecheck.dev/refine/internal/source"
)

// Category classifies how serious a Diagnostic is.
type Category int

const (
	Error Category = iota
	Warning
	Information
)

func (c Category) String() string {
	switch c {
	case Error:
		return "error"
	case Warning:
		return "warning"
	case Information:
		return "information"
	default:
		return "unknown"
	}
}

// Template is a stable identifier for a diagnostic message. The core never
// interpolates or localizes text itself; callers map a Template (plus
// Args) to a rendered string.
type Template string

const (
	TplUnsupportedOperator   Template = "refine.unsupportedOperator"
	TplDomainMismatch        Template = "refine.domainMismatch"
	TplWrongArity            Template = "refine.wrongArity"
	TplKeywordArgument       Template = "refine.keywordArgument"
	TplUnpackedArgument      Template = "refine.unpackedArgument"
	TplImaginaryLiteral      Template = "refine.imaginaryLiteral"
	TplFloatLiteral          Template = "refine.floatLiteral"
	TplEmptyName             Template = "refine.emptyName"
	TplUnknownFunction       Template = "refine.unknownFunction"
	TplVariableTypeConflict  Template = "refine.variableTypeConflict"
	TplNonAtomPrecondition   Template = "refine.nonAtomPrecondition"
	TplPostconditionHasCond  Template = "refine.postconditionHasCondition"
	TplValueCoverage         Template = "refine.valueCoverageMissing"
	TplBroadcastIncompatible Template = "refine.broadcastIncompatible"
	TplIndexOutOfRange       Template = "refine.indexOutOfRange"
	TplPermuteDuplicate      Template = "refine.permuteDuplicateIndex"
	TplPermuteLength         Template = "refine.permuteLengthMismatch"
	TplConcatMismatch        Template = "refine.concatMismatch"
	TplReshapeMismatch       Template = "refine.reshapeProductMismatch"
	TplReshapeMultipleFree   Template = "refine.reshapeMultipleFreeSlots"
	TplAliasUnresolved       Template = "refine.aliasUnresolved"
)

// Addendum gives extra structured context for a Diagnostic: the inferred
// vs. expected type, the parameter that failed, or a shape-function
// reason, chained so a renderer can print "because" clauses.
type Addendum struct {
	Template Template
	Args     []interface{}
	Next     *Addendum
}

// Diagnostic is one reported problem. It is never an `error`: the engine
// recovers locally after reporting (spec.md §7).
type Diagnostic struct {
	Category Category
	Template Template
	Args     []interface{}
	Range    source.Range
	Addendum *Addendum
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s: %s %v", d.Category, d.Template, d.Args)
}

// Sink accumulates diagnostics produced while parsing, checking, or
// evaluating refinement expressions. nil is a valid Sink that silently
// discards everything.
type Sink struct {
	diags []Diagnostic
}

// Report appends a diagnostic. Calling Report on a nil *Sink is a no-op,
// matching the "errors are optional" shape of the evaluator's Options.
func (s *Sink) Report(d Diagnostic) {
	if s == nil {
		return
	}
	s.diags = append(s.diags, d)
}

// Reportf is a convenience for the common case of a template with no
// addendum.
func (s *Sink) Reportf(cat Category, rng source.Range, tpl Template, args ...interface{}) {
	s.Report(Diagnostic{Category: cat, Template: tpl, Args: args, Range: rng})
}

// Diagnostics returns the accumulated diagnostics in report order.
func (s *Sink) Diagnostics() []Diagnostic {
	if s == nil {
		return nil
	}
	return s.diags
}

// Len reports how many diagnostics have been accumulated.
func (s *Sink) Len() int {
	if s == nil {
		return 0
	}
	return len(s.diags)
}
