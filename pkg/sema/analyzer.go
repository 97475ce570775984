// Package sema implements semantic analysis of cabs programs: scoping,
// identifier resolution and structural type checking. Analysis is fail-fast
// and returns the first *Error found.
package sema

import (
	"fmt"
	"io"

	"github.com/raymyers/ralph-sema/pkg/cabs"
)

// DefaultMaxDepth bounds nested statements and expressions
const DefaultMaxDepth = 1000

// Options configures an analysis pass
type Options struct {
	MaxDepth int       // nesting limit; DefaultMaxDepth when zero
	Trace    io.Writer // receives scope and declaration events when set
}

// Analyzer walks a program against one scope stack
type Analyzer struct {
	scopes   *ScopeStack
	defined  map[string]bool // functions with a body
	depth    int
	maxDepth int
}

// New creates an analyzer with a fresh global scope
func New(opts Options) *Analyzer {
	a := &Analyzer{
		scopes:   NewScopeStack(),
		defined:  make(map[string]bool),
		maxDepth: opts.MaxDepth,
	}
	if a.maxDepth <= 0 {
		a.maxDepth = DefaultMaxDepth
	}
	if opts.Trace != nil {
		a.scopes.SetTrace(opts.Trace)
	}
	return a
}

// Analyze checks a whole translation unit and returns the first error
func Analyze(prog *cabs.Program, opts Options) error {
	return New(opts).AnalyzeProgram(prog)
}

// Scopes exposes the analyzer's scope stack
func (a *Analyzer) Scopes() *ScopeStack {
	return a.scopes
}

// AnalyzeProgram checks every definition in order, stopping at the first error
func (a *Analyzer) AnalyzeProgram(prog *cabs.Program) error {
	for _, def := range prog.Definitions {
		if err := a.AnalyzeDefinition(def); err != nil {
			return err
		}
	}
	return nil
}

// AnalyzeDefinition checks one top-level definition in the global scope.
// Symbols it declares stay visible to later definitions.
func (a *Analyzer) AnalyzeDefinition(def cabs.Definition) error {
	switch d := def.(type) {
	case cabs.FunDef:
		return a.analyzeFunDef(d)
	case cabs.Declaration:
		return a.analyzeDeclaration(d)
	}
	return fmt.Errorf("sema: unexpected definition %T", def)
}

// enter guards recursion; every successful enter must be paired with leave
func (a *Analyzer) enter(n cabs.Node) error {
	if a.depth >= a.maxDepth {
		return &Error{Kind: NestingTooDeep, Node: n, Detail: fmt.Sprintf("nesting deeper than %d levels", a.maxDepth)}
	}
	a.depth++
	return nil
}

func (a *Analyzer) leave() {
	a.depth--
}
