// Package flatten dissolves every conditional in a
// synchronous function body into straight-line, guard-multiplexed code.
// By the time this pass runs the body is already SSA'd, so
// both arms of a dissolved conditional can execute unconditionally — their
// definitions use distinct unique names — and only a final guarded
// ternary-select (for Return) or an OR'd guard condition (for Assert)
// determines which arm's effect is actually observed. This is the
// "arithmetize everything, select outputs via boolean multiplexing"
// encoding the target VM's circuit form requires, not an optimization.
package flatten

import (
	"fmt"

	"github.com/vinelang/vinec/internal/ast"
	"github.com/vinelang/vinec/internal/driver"
	"github.com/vinelang/vinec/internal/passes/typeenv"
)

// New returns the flattening pass.
func New() driver.Pass {
	return driver.PassFunc{NameStr: "flatten", Fn: Run}
}

func Run(prog *ast.Program, st *driver.State) (*ast.Program, error) {
	newScopes := make([]*ast.ProgramScope, len(prog.Scopes))
	for i, sc := range prog.Scopes {
		newScopes[i] = rewriteScope(st, sc)
	}
	newModules := make([]*ast.Module, len(prog.Modules))
	for i, m := range prog.Modules {
		newModules[i] = rewriteModule(st, m)
	}
	out := *prog
	out.Scopes = newScopes
	out.Modules = newModules
	return &out, nil
}

func rewriteScope(st *driver.State, sc *ast.ProgramScope) *ast.ProgramScope {
	fns := make([]*ast.Function, len(sc.Functions))
	for i, fn := range sc.Functions {
		fns[i] = rewriteFunction(st, fn)
	}
	var ctor *ast.Function
	if sc.Constructor != nil {
		ctor = rewriteFunction(st, sc.Constructor)
	}
	cp := *sc
	cp.Functions = fns
	cp.Constructor = ctor
	return &cp
}

func rewriteModule(st *driver.State, m *ast.Module) *ast.Module {
	fns := make([]*ast.Function, len(m.Functions))
	for i, fn := range m.Functions {
		fns[i] = rewriteFunction(st, fn)
	}
	cp := *m
	cp.Functions = fns
	return &cp
}

// isAsync reports whether fn's body is left alone by conditional
// dissolution.
func isAsync(v ast.FunctionVariant) bool {
	return v == ast.VariantAsyncFn || v == ast.VariantAsyncTransition
}

func rewriteFunction(st *driver.State, fn *ast.Function) *ast.Function {
	if fn.Body == nil {
		return fn
	}
	env := typeenv.New(st.Symbols)
	env.SeedFunction(fn)

	if isAsync(fn.Variant) {
		cp := *fn
		cp.Body = ast.ReconstructBlock(fn.Body, ternaryHook(env, st), nil)
		return &cp
	}

	f := &flattener{st: st, env: env, ternary: ternaryHook(env, st)}
	stmts := f.processStatements(fn.Body.Statements)
	stmts = append(stmts, f.finalReturn(fn)...)

	body := *fn.Body
	body.Statements = stmts
	cp := *fn
	cp.Body = &body
	return &cp
}

// returnEntry is one recorded Return, deferred until the end of the
// function body: Guard is the condition under which this
// return's path actually executed, BooleanLiteral{true} for an
// unconditional return so the OR-folds below short-circuit correctly.
type returnEntry struct {
	Guard ast.Expression
	Value ast.Expression // nil for a unit-returning function
}

type flattener struct {
	st      *driver.State
	env     *typeenv.Env
	ternary ast.ExprHook
	guard   []string
	rets    []returnEntry
}

func (f *flattener) fresh(base string) string {
	return fmt.Sprintf("%s$%d", base, f.st.Session.Nodes.Fresh())
}

// constructGuard ANDs the active guard stack together; nil means
// "unconditionally reached".
func (f *flattener) constructGuard() ast.Expression {
	if len(f.guard) == 0 {
		return nil
	}
	var acc ast.Expression = &ast.Identifier{Name: f.guard[0]}
	for _, name := range f.guard[1:] {
		acc = &ast.BinaryExpr{Op: ast.OpBoolAnd, Left: acc, Right: &ast.Identifier{Name: name}}
	}
	return acc
}

func orFold(exprs []ast.Expression) ast.Expression {
	var filtered []ast.Expression
	for _, e := range exprs {
		if e != nil {
			filtered = append(filtered, e)
		}
	}
	if len(filtered) == 0 {
		return nil
	}
	acc := filtered[0]
	for _, e := range filtered[1:] {
		acc = &ast.BinaryExpr{Op: ast.OpBoolOr, Left: acc, Right: e}
	}
	return acc
}

func (f *flattener) hook(e ast.Expression) ast.ExprResult {
	return f.ternary(e)
}

func (f *flattener) processStatements(stmts []ast.Statement) []ast.Statement {
	var out []ast.Statement
	for _, s := range stmts {
		out = append(out, f.processStmt(s)...)
	}
	return out
}

func (f *flattener) processStmt(s ast.Statement) []ast.Statement {
	switch n := s.(type) {
	case *ast.Definition:
		rv := ast.ReconstructExpr(n.Value, f.hook)
		ty := n.TypeAnnotation
		if ty == nil {
			ty = f.env.Infer(rv.Expr)
		}
		if single, ok := n.Target.(ast.SingleTarget); ok {
			f.env.Declare(single.Name, ty)
		}
		cp := *n
		cp.Value = rv.Expr
		return append(rv.Prefix, &cp)
	case *ast.Const:
		rv := ast.ReconstructExpr(n.Value, f.hook)
		ty := n.TypeAnnotation
		if ty == nil {
			ty = f.env.Infer(rv.Expr)
		}
		f.env.Declare(n.Name, ty)
		cp := *n
		cp.Value = rv.Expr
		return append(rv.Prefix, &cp)
	case *ast.Assign:
		rp := ast.ReconstructExpr(n.Place, f.hook)
		rv := ast.ReconstructExpr(n.Value, f.hook)
		out := append(append([]ast.Statement{}, rp.Prefix...), rv.Prefix...)
		cp := *n
		cp.Place = rp.Expr
		cp.Value = rv.Expr
		return append(out, &cp)
	case *ast.ExpressionStatement:
		rv := ast.ReconstructExpr(n.Value, f.hook)
		cp := *n
		cp.Value = rv.Expr
		return append(rv.Prefix, &cp)
	case *ast.Assert:
		return f.processAssert(n)
	case *ast.Return:
		return f.processReturn(n)
	case *ast.Block:
		// A bare nested block runs unconditionally — same guard level.
		cp := *n
		cp.Statements = f.processStatements(n.Statements)
		return []ast.Statement{&cp}
	case *ast.Conditional:
		return f.processConditional(n)
	case *ast.Iteration:
		return f.processIteration(n)
	default:
		return []ast.Statement{s}
	}
}

func (f *flattener) processAssert(n *ast.Assert) []ast.Statement {
	rc := ast.ReconstructExpr(n.Condition, f.hook)

	var notGuard ast.Expression
	if g := f.constructGuard(); g != nil {
		notGuard = &ast.UnaryExpr{Op: ast.OpNot, Operand: g}
	}
	var returnedGuards []ast.Expression
	for _, r := range f.rets {
		returnedGuards = append(returnedGuards, r.Guard)
	}
	returnedSoFar := orFold(returnedGuards)

	rewritten := orFold([]ast.Expression{notGuard, returnedSoFar, rc.Expr})
	cp := *n
	cp.Condition = rewritten
	return append(rc.Prefix, &cp)
}

func (f *flattener) processReturn(n *ast.Return) []ast.Statement {
	guard := f.constructGuard()
	if guard == nil {
		guard = &ast.BooleanLiteral{Value: true}
	}
	var value ast.Expression
	if n.Value != nil {
		rv := ast.ReconstructExpr(n.Value, f.hook)
		value = rv.Expr
		f.rets = append(f.rets, returnEntry{Guard: guard, Value: value})
		return rv.Prefix
	}
	f.rets = append(f.rets, returnEntry{Guard: guard, Value: nil})
	return nil
}

func (f *flattener) processConditional(n *ast.Conditional) []ast.Statement {
	rc := ast.ReconstructExpr(n.Condition, f.hook)
	condName := f.fresh("$cond")
	condDef := &ast.Definition{Target: ast.SingleTarget{Name: condName}, Kind: ast.DeclMut, Value: rc.Expr}
	out := append(append([]ast.Statement{}, rc.Prefix...), condDef)

	f.guard = append(f.guard, condName)
	out = append(out, f.processStatements(n.Then.Statements)...)
	f.guard = f.guard[:len(f.guard)-1]

	if n.Otherwise != nil {
		negName := f.fresh("$ncond")
		negDef := &ast.Definition{
			Target: ast.SingleTarget{Name: negName}, Kind: ast.DeclMut,
			Value: &ast.UnaryExpr{Op: ast.OpNot, Operand: &ast.Identifier{Name: condName}},
		}
		out = append(out, negDef)
		f.guard = append(f.guard, negName)
		out = append(out, f.processStatements(n.Otherwise.Statements)...)
		f.guard = f.guard[:len(f.guard)-1]
	}
	return out
}

// processIteration recursively flattens the loop body in place; the loop
// itself is real control flow (bounded iteration, not a branch) and is
// never dissolved into a guard. A function may not return or finalize from
// inside a loop body, so the returns-accumulator never
// observes entries recorded mid-loop.
func (f *flattener) processIteration(n *ast.Iteration) []ast.Statement {
	rs := ast.ReconstructExpr(n.Start, f.hook)
	re := ast.ReconstructExpr(n.Stop, f.hook)
	f.env.Declare(n.Variable, n.VarType)

	body := *n.Body
	body.Statements = f.processStatements(n.Body.Statements)
	cp := *n
	cp.Start = rs.Expr
	cp.Stop = re.Expr
	cp.Body = &body
	out := append(append([]ast.Statement{}, rs.Prefix...), re.Prefix...)
	return append(out, &cp)
}

// finalReturn folds every deferred Return into a single trailing one, the
// rightmost-declared entry acting as the innermost fallback:
// whichever recorded Guard is true first, reading outer-to-inner, wins.
func (f *flattener) finalReturn(fn *ast.Function) []ast.Statement {
	if len(f.rets) == 0 {
		return nil
	}
	if _, unit := fn.Output.(ast.UnitType); unit {
		return []ast.Statement{&ast.Return{}}
	}
	acc := f.rets[len(f.rets)-1].Value
	for i := len(f.rets) - 2; i >= 0; i-- {
		acc = &ast.TernaryExpr{Condition: f.rets[i].Guard, Then: f.rets[i].Value, Otherwise: acc}
	}
	return []ast.Statement{&ast.Return{Value: acc}}
}
