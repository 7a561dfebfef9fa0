// Package ssa implements SSA formation: every Definition/Assign
// left-hand side is given a freshly-uniquified name, every right-hand-side
// identifier is rewritten through a per-scope rename table, and each
// ConditionalStatement's two branches are reconciled at the join by
// emitting one phi (a plain ternary Definition) per name reassigned in
// either branch. Built on the same ast.Reconstructor framework constprop
// and lowering use, with its own rename-table side-state in
// place of ast.Reconstructor's single hook signature (there is no single
// ExprHook/StmtHook pair that can thread a mutable per-block scope through
// without a field on the pass's own struct, the same reason constprop
// carries its own env).
package ssa

import (
	"fmt"
	"sort"

	"github.com/vinelang/vinec/internal/ast"
	"github.com/vinelang/vinec/internal/driver"
)

// New returns the SSA pass. renameDefs controls whether source-level `let`
// bindings are also uniquified: true on the pipeline's first SSA run, false
// on every re-SSA run after that, which must preserve the names introduced
// by flattening/destructuring/inlining rather than rename them again.
func New(renameDefs bool) driver.Pass {
	return driver.PassFunc{
		NameStr: "ssa",
		Fn: func(prog *ast.Program, st *driver.State) (*ast.Program, error) {
			return Run(prog, st, renameDefs)
		},
	}
}

type renamer struct {
	st         *driver.State
	renameDefs bool
	scope      *scope
}

func Run(prog *ast.Program, st *driver.State, renameDefs bool) (*ast.Program, error) {
	r := &renamer{st: st, renameDefs: renameDefs}

	newScopes := make([]*ast.ProgramScope, len(prog.Scopes))
	for i, sc := range prog.Scopes {
		newScopes[i] = r.renameProgramScope(sc)
	}
	newModules := make([]*ast.Module, len(prog.Modules))
	for i, m := range prog.Modules {
		newModules[i] = r.renameModule(m)
	}

	out := *prog
	out.Scopes = newScopes
	out.Modules = newModules
	return &out, nil
}

func (r *renamer) renameProgramScope(sc *ast.ProgramScope) *ast.ProgramScope {
	fns := make([]*ast.Function, len(sc.Functions))
	for i, fn := range sc.Functions {
		fns[i] = r.renameFunction(fn)
	}
	var ctor *ast.Function
	if sc.Constructor != nil {
		ctor = r.renameFunction(sc.Constructor)
	}
	cp := *sc
	cp.Functions = fns
	cp.Constructor = ctor
	return &cp
}

func (r *renamer) renameModule(m *ast.Module) *ast.Module {
	fns := make([]*ast.Function, len(m.Functions))
	for i, fn := range m.Functions {
		fns[i] = r.renameFunction(fn)
	}
	cp := *m
	cp.Functions = fns
	return &cp
}

// renameFunction seeds a root scope binding every const-parameter and input
// name to itself: this pass only uniquifies names it (or a prior pass)
// introduces via Definition/Assign, never a function's declared signature.
func (r *renamer) renameFunction(fn *ast.Function) *ast.Function {
	root := newScope(nil)
	for _, p := range fn.ConstParams {
		root.table[p.Name] = p.Name
	}
	for _, p := range fn.Inputs {
		root.table[p.Name] = p.Name
	}
	body, _ := r.renameBlock(fn.Body, root)
	cp := *fn
	cp.Body = body
	return &cp
}

func (r *renamer) renameBlock(b *ast.Block, parent *scope) (*ast.Block, *scope) {
	if b == nil {
		return nil, newScope(parent)
	}
	sc := newScope(parent)
	prev := r.scope
	r.scope = sc
	var out []ast.Statement
	for _, s := range b.Statements {
		out = append(out, r.renameStmt(s)...)
	}
	r.scope = prev
	cp := *b
	cp.Statements = out
	return &cp, sc
}

func (r *renamer) renameStmt(s ast.Statement) []ast.Statement {
	switch n := s.(type) {
	case *ast.Definition:
		return r.renameDefinition(n)
	case *ast.Const:
		return r.renameConst(n)
	case *ast.Assign:
		return r.renameAssign(n)
	case *ast.ExpressionStatement:
		rv := r.decompose(n.Value)
		cp := *n
		cp.Value = rv.Expr
		return append(rv.Prefix, &cp)
	case *ast.Return:
		if n.Value == nil {
			return []ast.Statement{n}
		}
		rv := r.decompose(n.Value)
		cp := *n
		cp.Value = rv.Expr
		return append(rv.Prefix, &cp)
	case *ast.Assert:
		rv := r.decompose(n.Condition)
		cp := *n
		cp.Condition = rv.Expr
		return append(rv.Prefix, &cp)
	case *ast.Block:
		nb, childScope := r.renameBlock(n, r.scope)
		// A bare nested block runs unconditionally (it is not a branch), so
		// any outer name it reassigns propagates directly into the
		// enclosing scope instead of needing a phi.
		for name := range childScope.reassigned {
			if v, ok := childScope.table[name]; ok {
				r.scope.bind(name, v, true)
			}
		}
		return []ast.Statement{nb}
	case *ast.Conditional:
		return r.renameConditional(n)
	case *ast.Iteration:
		return r.renameIteration(n)
	default:
		return []ast.Statement{s}
	}
}

func (r *renamer) renameDefinition(n *ast.Definition) []ast.Statement {
	rv := ast.ReconstructExpr(n.Value, r.exprHook)
	switch t := n.Target.(type) {
	case ast.SingleTarget:
		newName := t.Name
		if r.renameDefs {
			newName = r.fresh(t.Name)
		}
		r.scope.bind(t.Name, newName, false)
		cp := *n
		cp.Target = ast.SingleTarget{Name: newName}
		cp.Value = rv.Expr
		return append(rv.Prefix, &cp)
	case ast.MultipleTarget:
		names := make([]string, len(t.Names))
		for i, nm := range t.Names {
			newName := nm
			if r.renameDefs {
				newName = r.fresh(nm)
			}
			r.scope.bind(nm, newName, false)
			names[i] = newName
		}
		cp := *n
		cp.Target = ast.MultipleTarget{Names: names}
		cp.Value = rv.Expr
		return append(rv.Prefix, &cp)
	default:
		return []ast.Statement{n}
	}
}

func (r *renamer) renameConst(n *ast.Const) []ast.Statement {
	rv := ast.ReconstructExpr(n.Value, r.exprHook)
	newName := n.Name
	if r.renameDefs {
		newName = r.fresh(n.Name)
	}
	r.scope.bind(n.Name, newName, false)
	cp := *n
	cp.Name = newName
	cp.Value = rv.Expr
	return append(rv.Prefix, &cp)
}

// renameAssign always freshens its target, regardless of renameDefs: unlike
// a `let`, two Assigns to the same source name must never share one SSA
// name. A compound place (arr[i] = v, s.m = v) is left standing — turning
// that into a proper SSA rebinding is the write-transformer's job,
// which runs after this pass; here its nested subexpressions are still
// renamed so reads of already-SSA'd names resolve correctly.
func (r *renamer) renameAssign(n *ast.Assign) []ast.Statement {
	rv := ast.ReconstructExpr(n.Value, r.exprHook)
	if id, ok := n.Place.(*ast.Identifier); ok {
		newName := r.fresh(id.Name)
		r.scope.bind(id.Name, newName, true)
		cp := *n
		cp.Place = &ast.Identifier{Name: newName}
		cp.Value = rv.Expr
		return append(rv.Prefix, &cp)
	}
	rp := ast.ReconstructExpr(n.Place, r.exprHook)
	cp := *n
	cp.Place = rp.Expr
	cp.Value = rv.Expr
	out := append(append([]ast.Statement{}, rv.Prefix...), rp.Prefix...)
	return append(out, &cp)
}

func (r *renamer) renameConditional(n *ast.Conditional) []ast.Statement {
	condRes := r.decompose(n.Condition)

	thenBlock, thenScope := r.renameBlock(n.Then, r.scope)
	var elseBlock *ast.Block
	elseScope := newScope(r.scope)
	if n.Otherwise != nil {
		elseBlock, elseScope = r.renameBlock(n.Otherwise, r.scope)
	}

	reassigned := make(map[string]bool)
	for k := range thenScope.reassigned {
		reassigned[k] = true
	}
	for k := range elseScope.reassigned {
		reassigned[k] = true
	}
	names := make([]string, 0, len(reassigned))
	for k := range reassigned {
		names = append(names, k)
	}
	sort.Strings(names)

	var phis []ast.Statement
	for _, name := range names {
		thenVal, ok := thenScope.table[name]
		if !ok {
			thenVal, _ = r.scope.lookup(name)
		}
		elseVal, ok := elseScope.table[name]
		if !ok {
			elseVal, _ = r.scope.lookup(name)
		}
		phiName := r.fresh(name)
		phis = append(phis, &ast.Definition{
			Target: ast.SingleTarget{Name: phiName},
			Kind:   ast.DeclMut,
			Value: &ast.TernaryExpr{
				Condition: condRes.Expr,
				Then:      &ast.Identifier{Name: thenVal},
				Otherwise: &ast.Identifier{Name: elseVal},
			},
		})
		r.scope.bind(name, phiName, true)
	}

	cp := *n
	cp.Condition = condRes.Expr
	cp.Then = thenBlock
	cp.Otherwise = elseBlock

	out := append([]ast.Statement{}, condRes.Prefix...)
	out = append(out, &cp)
	return append(out, phis...)
}

// renameIteration binds the loop variable fresh in its own scope (the loop
// body is emitted once, not unrolled — an unroll-eligible loop was already
// unrolled by constprop) and otherwise behaves like renameBlock.
func (r *renamer) renameIteration(n *ast.Iteration) []ast.Statement {
	startRes := r.decompose(n.Start)
	stopRes := r.decompose(n.Stop)

	loopScope := newScope(r.scope)
	varName := n.Variable
	if r.renameDefs {
		varName = r.fresh(n.Variable)
	}
	loopScope.bind(n.Variable, varName, false)

	prev := r.scope
	r.scope = loopScope
	var bodyStmts []ast.Statement
	for _, s := range n.Body.Statements {
		bodyStmts = append(bodyStmts, r.renameStmt(s)...)
	}
	r.scope = prev

	bodyCp := *n.Body
	bodyCp.Statements = bodyStmts

	cp := *n
	cp.Variable = varName
	cp.Start = startRes.Expr
	cp.Stop = stopRes.Expr
	cp.Body = &bodyCp

	out := append(append([]ast.Statement{}, startRes.Prefix...), stopRes.Prefix...)
	return append(out, &cp)
}

func (r *renamer) exprHook(e ast.Expression) ast.ExprResult {
	if id, ok := e.(*ast.Identifier); ok {
		if u, ok := r.scope.lookup(id.Name); ok && u != id.Name {
			return ast.ExprResult{Expr: &ast.Identifier{Name: u}, Changed: true}
		}
	}
	return ast.ExprResult{Expr: e}
}

// decompose renames e bottom-up, then — if what's left is anything other
// than an atom (a name or a literal) — hoists it into a fresh anonymous
// definition and returns a reference to that definition's name: complex
// right-hand sides are decomposed. Used at every
// use position that isn't already a Definition/Const binder (Return value,
// Assert condition, ExpressionStatement value, Conditional condition,
// Iteration bounds).
func (r *renamer) decompose(e ast.Expression) ast.ExprResult {
	res := ast.ReconstructExpr(e, r.exprHook)
	if !isAtom(res.Expr) {
		tmp := r.fresh("$tmp")
		def := &ast.Definition{Target: ast.SingleTarget{Name: tmp}, Kind: ast.DeclMut, Value: res.Expr}
		res.Prefix = append(res.Prefix, def)
		res.Expr = &ast.Identifier{Name: tmp}
		res.Changed = true
	}
	return res
}

func isAtom(e ast.Expression) bool {
	switch e.(type) {
	case *ast.Identifier, *ast.BooleanLiteral, *ast.IntegerLiteral, *ast.FieldLiteral,
		*ast.ScalarLiteral, *ast.GroupLiteral, *ast.AddressLiteral, *ast.StringLiteral,
		*ast.UnitExpr, *ast.ErrExpr:
		return true
	default:
		return false
	}
}

func (r *renamer) fresh(base string) string {
	return fmt.Sprintf("%s$%d", base, r.st.Session.Nodes.Fresh())
}
