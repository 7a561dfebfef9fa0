// Package inline implements call-graph post-order function inlining. By
// the time this pass runs, every synchronous function body has already
// been flattened into straight-line code and SSA'd, so an inlined callee's
// statements can simply be spliced in as a caller-local prefix
// (ast.Reconstructor's Prefix mechanism) without needing to merge
// control-flow graphs. Built on the same ast.Reconstructor framework every
// other pass in this pipeline uses, plus the ssa package's renamer, which
// re-runs over each rewritten body to freshen all locals.
package inline

import (
	"fmt"

	"github.com/vinelang/vinec/internal/ast"
	"github.com/vinelang/vinec/internal/diagnostics"
	"github.com/vinelang/vinec/internal/driver"
	"github.com/vinelang/vinec/internal/passes/ssa"
	"github.com/vinelang/vinec/internal/session"
)

// New returns the inlining pass.
func New() driver.Pass {
	return driver.PassFunc{NameStr: "inline", Fn: Run}
}

// inliner carries the flat function namespace this core's typecheck pass
// already establishes (internal/passes/typecheck registers every function,
// scope or module, directly on the shared root symbol table by unqualified
// name) — the same flat namespace this pass's call-site rewriting walks by
// unqualified ast.CallExpr.Callee.
type inliner struct {
	st          *driver.State
	functions   map[string]*ast.Function
	moduleNames map[string]bool
}

// qualify mirrors internal/passes/typecheck's unexported helper of the same
// name: the call graph and call-count map are keyed "programID/name" (or
// bare name for the empty program ID module namespace is never empty here,
// since module keys are always "module:Name").
func qualify(programID, name string) string {
	if programID == "" {
		return name
	}
	return programID + "/" + name
}

func onChainVariant(v ast.FunctionVariant) bool {
	switch v {
	case ast.VariantTransition, ast.VariantAsyncTransition, ast.VariantFinalFn, ast.VariantConstructor:
		return true
	default:
		return false
	}
}

// Run processes module functions first (FinalFn and module functions are
// always inlined since they cannot exist standalone, so a module function
// called from a ProgramScope must already be in its final, inlinable form),
// then every ProgramScope in call-graph post order.
func Run(prog *ast.Program, st *driver.State) (*ast.Program, error) {
	in := &inliner{st: st, functions: make(map[string]*ast.Function), moduleNames: make(map[string]bool)}

	for _, m := range prog.Modules {
		for _, fn := range m.Functions {
			in.functions[fn.Name] = fn
			in.moduleNames[fn.Name] = true
		}
	}
	for _, sc := range prog.Scopes {
		for _, fn := range sc.Functions {
			in.functions[fn.Name] = fn
		}
		if sc.Constructor != nil {
			in.functions[sc.Constructor.Name] = sc.Constructor
		}
	}

	newModules := make([]*ast.Module, len(prog.Modules))
	for i, m := range prog.Modules {
		nm, err := in.processModule(m)
		if err != nil {
			return nil, err
		}
		newModules[i] = nm
	}

	newScopes := make([]*ast.ProgramScope, len(prog.Scopes))
	for i, sc := range prog.Scopes {
		ns, err := in.processScope(sc)
		if err != nil {
			return nil, err
		}
		newScopes[i] = ns
	}

	out := *prog
	out.Scopes = newScopes
	out.Modules = newModules
	return &out, nil
}

// order computes the call-graph post order restricted to roots, failing
// fatally if the
// restricted graph isn't acyclic — a safety net behind the type checker's
// own cycle
// check, which already refuses to let a cyclic program reach this pass.
func (in *inliner) order(roots []string) ([]string, error) {
	if cycle, found := in.st.CallGraph.DetectCycle(roots...); found {
		in.st.Diags.Error(diagnostics.ErrInlinerPrecondition, session.Span{}, "cannot compute call-graph post-order: cycle %v", cycle)
		return nil, fmt.Errorf("inline: cyclic call graph: %v", cycle)
	}
	return in.st.CallGraph.PostOrder(roots...), nil
}

func (in *inliner) processModule(m *ast.Module) (*ast.Module, error) {
	key := "module:" + m.Name
	local := make(map[string]string, len(m.Functions))
	roots := make([]string, 0, len(m.Functions))
	for _, fn := range m.Functions {
		q := qualify(key, fn.Name)
		local[q] = fn.Name
		roots = append(roots, q)
	}
	order, err := in.order(roots)
	if err != nil {
		return nil, err
	}
	if err := in.rewriteInOrder(order, local, key); err != nil {
		return nil, err
	}

	fns := make([]*ast.Function, len(m.Functions))
	for i, fn := range m.Functions {
		fns[i] = in.functions[fn.Name]
	}
	cp := *m
	cp.Functions = fns
	return &cp, nil
}

func (in *inliner) processScope(sc *ast.ProgramScope) (*ast.ProgramScope, error) {
	key := sc.ProgramID
	local := make(map[string]string, len(sc.Functions)+1)
	roots := make([]string, 0, len(sc.Functions)+1)
	for _, fn := range sc.Functions {
		q := qualify(key, fn.Name)
		local[q] = fn.Name
		roots = append(roots, q)
	}
	if sc.Constructor != nil {
		q := qualify(key, sc.Constructor.Name)
		local[q] = sc.Constructor.Name
		roots = append(roots, q)
	}
	order, err := in.order(roots)
	if err != nil {
		return nil, err
	}
	if err := in.rewriteInOrder(order, local, key); err != nil {
		return nil, err
	}

	fns := make([]*ast.Function, len(sc.Functions))
	for i, fn := range sc.Functions {
		fns[i] = in.functions[fn.Name]
	}
	var ctor *ast.Function
	if sc.Constructor != nil {
		ctor = in.functions[sc.Constructor.Name]
	}
	cp := *sc
	cp.Functions = fns
	cp.Constructor = ctor
	return &cp, nil
}

// rewriteInOrder rewrites exactly the functions local to this
// scope/module's own `local` set, in the order the call graph's post order
// presents them — skipping every other node PostOrder visits along the
// way (external calls, other programs' functions reached transitively),
// since this pass only ever inlines a call local to the current program.
func (in *inliner) rewriteInOrder(order []string, local map[string]string, programKey string) error {
	for _, q := range order {
		name, ok := local[q]
		if !ok {
			continue
		}
		fn := in.functions[name]
		if fn == nil || fn.Body == nil {
			continue
		}
		rewritten, err := in.rewriteFunction(fn, programKey)
		if err != nil {
			return err
		}
		in.functions[name] = rewritten
	}
	return nil
}

func (in *inliner) rewriteFunction(fn *ast.Function, programKey string) (*ast.Function, error) {
	callerOnChain := onChainVariant(fn.Variant)
	var firstErr error
	hook := func(e ast.Expression) ast.ExprResult {
		call, ok := e.(*ast.CallExpr)
		if !ok {
			return ast.ExprResult{Expr: e}
		}
		res, err := in.maybeInline(call, programKey, callerOnChain)
		if err != nil && firstErr == nil {
			firstErr = err
		}
		return res
	}
	body := ast.ReconstructBlock(fn.Body, hook, nil)
	if firstErr != nil {
		return nil, firstErr
	}
	cp := *fn
	cp.Body = body
	return &cp, nil
}

func (in *inliner) maybeInline(call *ast.CallExpr, programKey string, callerOnChain bool) (ast.ExprResult, error) {
	callee, ok := in.functions[call.Callee]
	if !ok || callee.Body == nil {
		return ast.ExprResult{Expr: call}, nil
	}
	qualified := qualify(programKey, call.Callee)
	isModuleFn := in.moduleNames[call.Callee]
	if !in.shouldInline(callee, qualified, isModuleFn, callerOnChain) {
		return ast.ExprResult{Expr: call}, nil
	}
	if in.st.CallCounts[qualified] > 0 {
		in.st.CallCounts[qualified]--
	}
	return in.expand(callee, call)
}

// shouldInline applies the priority-ordered rule set. The `@no_inline`
// vs `FinalFn` interaction is resolved as "variant rule wins", extended
// here to the `inline fn` variant too: an `inline fn` is inlined
// unconditionally, the same "cannot exist standalone" rationale that
// applies to FinalFn and module functions.
func (in *inliner) shouldInline(fn *ast.Function, qualified string, isModuleFn, callerOnChain bool) bool {
	if fn.Variant == ast.VariantFinalFn || fn.Variant == ast.VariantInline || isModuleFn {
		return true
	}
	if fn.Annotations.NoInline {
		return false
	}
	if fn.Variant != ast.VariantFn {
		return false
	}
	if in.st.CallCounts[qualified] == 1 {
		return true
	}
	if callerOnChain {
		return true
	}
	if len(fn.ConstParams) > 0 {
		return true
	}
	if allUnitOrNoArgs(fn.Inputs) {
		return true
	}
	if len(fn.Inputs) > in.st.Net.MaxFunctionInputs {
		return true
	}
	if mentionsOptional(fn) {
		return true
	}
	if in.st.InlineHints[qualified] {
		return true
	}
	return false
}

func allUnitOrNoArgs(params []ast.Param) bool {
	if len(params) == 0 {
		return true
	}
	for _, p := range params {
		if _, ok := p.Type.(ast.UnitType); !ok {
			return false
		}
	}
	return true
}

func mentionsOptional(fn *ast.Function) bool {
	for _, p := range fn.Inputs {
		if _, ok := p.Type.(ast.OptionalType); ok {
			return true
		}
	}
	_, ok := fn.Output.(ast.OptionalType)
	return ok
}

// expand substitutes call's arguments for callee's parameters, freshens
// every local the substituted body introduces via a re-SSA pass, and
// strips the trailing Return: its Value becomes the call
// expression's replacement, its preceding statements become the
// ast.Reconstructor Prefix spliced before the caller's current statement
// (step 3e). A tuple-returning call whose destination was already split
// into per-element TupleAccessExpr reads by the destructurer (long before
// this pass) needs no special handling here — the Return's TupleExpr value
// simply becomes the tuple those accesses already read from; the later
// SSA-form const-prop pass folds a TupleAccessExpr over a literal
// TupleExpr the same way it folds array access.
func (in *inliner) expand(callee *ast.Function, call *ast.CallExpr) (ast.ExprResult, error) {
	subst := make(map[string]ast.Expression, len(callee.Inputs)+len(callee.ConstParams))
	for i, p := range callee.ConstParams {
		if i < len(call.ConstArgs) {
			subst[p.Name] = call.ConstArgs[i]
		}
	}
	for i, p := range callee.Inputs {
		if i < len(call.Args) {
			subst[p.Name] = call.Args[i]
		}
	}
	substHook := func(e ast.Expression) ast.ExprResult {
		if id, ok := e.(*ast.Identifier); ok {
			if v, ok := subst[id.Name]; ok {
				return ast.ExprResult{Expr: v, Changed: true}
			}
		}
		return ast.ExprResult{Expr: e}
	}
	substituted := ast.ReconstructBlock(callee.Body, substHook, nil)

	wrapper := &ast.Function{Name: "$inlined", Body: substituted}
	freshProg := &ast.Program{Scopes: []*ast.ProgramScope{{ProgramID: "$inline", Functions: []*ast.Function{wrapper}}}}
	renamed, err := ssa.Run(freshProg, in.st, true)
	if err != nil {
		return ast.ExprResult{}, fmt.Errorf("inline: re-SSA of %q: %w", callee.Name, err)
	}
	stmts := renamed.Scopes[0].Functions[0].Body.Statements

	var resultExpr ast.Expression = &ast.UnitExpr{}
	var prefix []ast.Statement
	if n := len(stmts); n > 0 {
		if ret, ok := stmts[n-1].(*ast.Return); ok {
			prefix = stmts[:n-1]
			if ret.Value != nil {
				resultExpr = ret.Value
			}
		} else {
			prefix = stmts
		}
	}
	return ast.ExprResult{Expr: resultExpr, Prefix: prefix, Changed: true}, nil
}
