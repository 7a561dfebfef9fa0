// Package destructure implements tuple-let destructuring and the
// write-transformer. Both are plain ast.Reconstructor-based
// rewrites, built on the same framework constprop, lowering,
// and ssa already use; each is exposed as its own
// driver.Pass because the pipeline re-runs SSA formation between them.
package destructure

import (
	"fmt"

	"github.com/vinelang/vinec/internal/ast"
	"github.com/vinelang/vinec/internal/driver"
)

// New returns the tuple-destructuring pass.
func New() driver.Pass {
	return driver.PassFunc{NameStr: "destructure", Fn: Run}
}

// destructurer rewrites `let (a, b, c) = expr;` into an anonymous
// single-target binding of expr plus one per-element TupleAccessExpr
// extraction. A multi-return CallExpr is handled by the exact
// same rule, since its result is just a TupleType-valued expression like
// any other.
type destructurer struct {
	st *driver.State
}

func Run(prog *ast.Program, st *driver.State) (*ast.Program, error) {
	d := &destructurer{st: st}

	newScopes := make([]*ast.ProgramScope, len(prog.Scopes))
	for i, sc := range prog.Scopes {
		newScopes[i] = d.rewriteScope(sc)
	}
	newModules := make([]*ast.Module, len(prog.Modules))
	for i, m := range prog.Modules {
		newModules[i] = d.rewriteModule(m)
	}
	out := *prog
	out.Scopes = newScopes
	out.Modules = newModules
	return &out, nil
}

func (d *destructurer) rewriteScope(sc *ast.ProgramScope) *ast.ProgramScope {
	fns := make([]*ast.Function, len(sc.Functions))
	for i, fn := range sc.Functions {
		fns[i] = d.rewriteFunction(fn)
	}
	var ctor *ast.Function
	if sc.Constructor != nil {
		ctor = d.rewriteFunction(sc.Constructor)
	}
	cp := *sc
	cp.Functions = fns
	cp.Constructor = ctor
	return &cp
}

func (d *destructurer) rewriteModule(m *ast.Module) *ast.Module {
	fns := make([]*ast.Function, len(m.Functions))
	for i, fn := range m.Functions {
		fns[i] = d.rewriteFunction(fn)
	}
	cp := *m
	cp.Functions = fns
	return &cp
}

func (d *destructurer) rewriteFunction(fn *ast.Function) *ast.Function {
	cp := *fn
	cp.Body = ast.ReconstructBlock(fn.Body, passthrough, d.stmtHook)
	return &cp
}

func passthrough(e ast.Expression) ast.ExprResult { return ast.ExprResult{Expr: e} }

func (d *destructurer) stmtHook(s ast.Statement) ([]ast.Statement, bool) {
	def, ok := s.(*ast.Definition)
	if !ok {
		return nil, false
	}
	multi, ok := def.Target.(ast.MultipleTarget)
	if !ok {
		return nil, false
	}

	rv := ast.ReconstructExpr(def.Value, passthrough)
	tmp := d.fresh("$tup")
	out := append([]ast.Statement{}, rv.Prefix...)
	out = append(out, &ast.Definition{
		Target: ast.SingleTarget{Name: tmp},
		Kind:   def.Kind,
		Value:  rv.Expr,
	})
	for i, name := range multi.Names {
		out = append(out, &ast.Definition{
			Target: ast.SingleTarget{Name: name},
			Kind:   def.Kind,
			Value:  &ast.TupleAccessExpr{Tuple: &ast.Identifier{Name: tmp}, Index: i},
		})
	}
	return out, true
}

func (d *destructurer) fresh(base string) string {
	return fmt.Sprintf("%s$%d", base, d.st.Session.Nodes.Fresh())
}
