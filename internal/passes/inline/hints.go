package inline

import (
	"github.com/vinelang/vinec/internal/ast"
	"github.com/vinelang/vinec/internal/driver"
)

// trivialBodyThreshold is the statement-count budget under which a
// Fn-variant function is pre-marked as inline-eligible regardless of its
// call count or caller context: a function this small costs less to
// duplicate at every call site than to keep as a standalone call, the
// same trivial-function heuristic most inlining compilers apply
// unconditionally. Chosen to match the flattener's own guard/phi
// bookkeeping overhead (a single-assert, single-return body already
// costs 2-3 statements before flattening touches it), so this never
// fires on a body that only looks small before guards are introduced.
const trivialBodyThreshold = 3

// Analyze pre-marks callees the inliner's heuristic should treat as
// eligible: a pass run ahead of the inliner that pre-populates
// st.InlineHints for every Fn-variant function whose (already flattened)
// body is at or under trivialBodyThreshold statements. Uses the
// same call-graph-qualified-key scheme internal/passes/typecheck
// establishes, so the inliner's shouldInline lookup (keyed the same way) finds
// these hints directly.
func Analyze() driver.Pass {
	return driver.PassFunc{NameStr: "inline-analyze", Fn: RunAnalyze}
}

func RunAnalyze(prog *ast.Program, st *driver.State) (*ast.Program, error) {
	for _, sc := range prog.Scopes {
		for _, fn := range sc.Functions {
			markIfTrivial(st, qualify(sc.ProgramID, fn.Name), fn)
		}
	}
	for _, m := range prog.Modules {
		key := "module:" + m.Name
		for _, fn := range m.Functions {
			markIfTrivial(st, qualify(key, fn.Name), fn)
		}
	}
	return prog, nil
}

func markIfTrivial(st *driver.State, qualified string, fn *ast.Function) {
	if fn.Variant != ast.VariantFn || fn.Body == nil {
		return
	}
	if countStatements(fn.Body) <= trivialBodyThreshold {
		st.InlineHints[qualified] = true
	}
}

func countStatements(b *ast.Block) int {
	if b == nil {
		return 0
	}
	n := 0
	for _, s := range b.Statements {
		n++
		switch stmt := s.(type) {
		case *ast.Block:
			n += countStatements(stmt)
		case *ast.Conditional:
			n += countStatements(stmt.Then)
			n += countStatements(stmt.Otherwise)
		case *ast.Iteration:
			n += countStatements(stmt.Body)
		}
	}
	return n
}
