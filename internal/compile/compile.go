// Package compile assembles the fixed middle-end pass sequence into the
// single entry point downstream callers (a CLI, test harness, or code
// generator driver) invoke: a literal ordered slice of passes built once,
// not computed. It is the only package that
// imports every internal/passes/* package together, which is exactly why
// it cannot live inside internal/driver itself: internal/driver.Pass and
// internal/driver.State are imported BY each pass package, so a
// DefaultPipeline living in internal/driver and importing those same pass
// packages back would be an import cycle. This package sits one layer
// above driver instead, depending on it and on every pass, never the
// reverse.
package compile

import (
	"github.com/vinelang/vinec/internal/ast"
	"github.com/vinelang/vinec/internal/driver"
	"github.com/vinelang/vinec/internal/passes/constprop"
	"github.com/vinelang/vinec/internal/passes/cse"
	"github.com/vinelang/vinec/internal/passes/dce"
	"github.com/vinelang/vinec/internal/passes/destructure"
	"github.com/vinelang/vinec/internal/passes/flatten"
	"github.com/vinelang/vinec/internal/passes/inline"
	"github.com/vinelang/vinec/internal/passes/lowering"
	"github.com/vinelang/vinec/internal/passes/ssa"
	"github.com/vinelang/vinec/internal/passes/typecheck"
	"github.com/vinelang/vinec/internal/session"
)

// DefaultPipeline assembles the fixed sequence, one driver.Pass per
// arrow in:
//
//	typecheck -> const-prop/unroll/monomorphize -> storage+optional lowering
//	-> SSA(rename) -> destructure -> SSA -> write-transform -> SSA
//	-> flatten -> inline-analyze -> inline -> SSA
//	-> const-prop (SSA form) -> SSA -> CSE -> DCE
//
// Each SSA re-run after the first passes renameDefs=false, since
// destructure, write-transform, flatten, and inline each introduce their
// own already-unique temporaries that a renaming pass must not reshuffle. The second const-prop invocation uses NewSSAForm,
// not New: by then every Definition is single-assignment, so
// constprop's own env is safe to populate from a `DeclMut` binding's
// folded value exactly as it already does for `DeclConst` — the
// plain-`New` pre-SSA invocation must not do this, since a `DeclMut`
// binding there can still be invalidated by a later `Assign`.
func DefaultPipeline() *driver.Pipeline {
	return driver.New(
		typecheck.New(),
		constprop.New(),
		lowering.New(),
		ssa.New(true),
		destructure.New(),
		ssa.New(false),
		destructure.NewWriteTransform(),
		ssa.New(false),
		flatten.New(),
		inline.Analyze(),
		inline.New(),
		ssa.New(false),
		constprop.NewSSAForm(),
		ssa.New(false),
		cse.New(),
		dce.New(),
	)
}

// Program runs prog through DefaultPipeline's fixed sequence against a
// fresh driver.State seeded from sess, returning the final lowered Program
// and the State carrying the accumulated diagnostics, tables, and graphs a
// caller may want to inspect after the run. This is the single entry
// point visible from the outside: everything upstream of it (parsing,
// initial symbol-table construction) and downstream (code generation) is
// an external collaborator.
func Program(prog *ast.Program, sess *session.CompilerSession) (*ast.Program, *driver.State, error) {
	st := driver.NewState(sess)
	result, err := DefaultPipeline().Run(prog, st)
	return result.Program, result.State, err
}
