// Package driver wires the middle-end passes into a fixed pipeline, owns
// the shared compiler state, and translates the diagnostic sink's state
// into structured trace lines after each pass. It is the only package that
// logs; every pass reports through the diagnostic sink instead.
package driver

import (
	"github.com/vinelang/vinec/internal/ast"
	"github.com/vinelang/vinec/internal/diagnostics"
	"github.com/vinelang/vinec/internal/graph"
	"github.com/vinelang/vinec/internal/netconf"
	"github.com/vinelang/vinec/internal/session"
	"github.com/vinelang/vinec/internal/symbols"
	"github.com/vinelang/vinec/internal/typetable"
)

// State is the compiler-state container owned by the driver and borrowed
// mutably by each pass for the duration of its Run call.
// Nothing here is package-level/global; every field is reachable only
// through the CompilerSession that created it.
type State struct {
	Session *session.CompilerSession
	Types   *typetable.Table
	Symbols *symbols.SymbolTable
	Diags   *diagnostics.Sink

	// CallGraph (caller -> callee) and StructGraph (container -> member
	// struct) are built by the type-check pass and consumed by the
	// inliner and DCE.
	CallGraph   *graph.Graph
	StructGraph *graph.Graph

	// CallCounts tracks how many surviving CallExpr nodes target each
	// function, keyed by fully-qualified callee name. Const-prop's
	// monomorphizer gives each specialized callee its own independent
	// entry; the inliner
	// decrements this map as it inlines.
	CallCounts map[string]int

	// InlineHints is populated by an analysis pass walking the call graph
	// before the inliner runs, pre-marking callees its heuristic should
	// treat as eligible.
	InlineHints map[string]bool

	Net netconf.Constants
}

// NewState creates a fresh State for one compilation, with empty tables and
// the default network constants.
func NewState(sess *session.CompilerSession) *State {
	return &State{
		Session:     sess,
		Types:       typetable.New(),
		Symbols:     symbols.NewProgramScope(),
		Diags:       diagnostics.NewSink(),
		CallGraph:   graph.New(),
		StructGraph: graph.New(),
		CallCounts:  make(map[string]int),
		InlineHints: make(map[string]bool),
		Net:         netconf.Default(),
	}
}

// Pass is the interface every middle-end stage implements:
// NAME plus a do_pass(input, &mut State) -> Result<Output> entry point,
// specialized here to Program -> Program since every pass in this
// pipeline's data flow both consumes and produces a Program.
type Pass interface {
	Name() string
	Run(prog *ast.Program, st *State) (*ast.Program, error)
}

// PassFunc adapts a plain function to the Pass interface for passes with no
// extra configuration, rather than requiring a struct type per pass.
type PassFunc struct {
	NameStr string
	Fn      func(*ast.Program, *State) (*ast.Program, error)
}

func (p PassFunc) Name() string { return p.NameStr }
func (p PassFunc) Run(prog *ast.Program, st *State) (*ast.Program, error) {
	return p.Fn(prog, st)
}
