package destructure

import (
	"fmt"
	"math/big"
	"sort"

	"github.com/vinelang/vinec/internal/ast"
	"github.com/vinelang/vinec/internal/driver"
	"github.com/vinelang/vinec/internal/passes/typeenv"
)

// NewWriteTransform returns the write-transformer: it replaces
// `arr[i] = v` and `s.m = v` mutation with rebinding, a prerequisite for
// pure SSA over composites. Per-identifier maps (arrays/structs below) track
// the current member identifiers of an aggregate; a write updates the map
// without touching the tree, and a read rematerializes a fresh composite
// expression from the map, emitted as a preceding Assign so the next SSA
// pass's phi-at-join logic picks it up the same way it
// reconciles any other reassigned name.
func NewWriteTransform() driver.Pass {
	return driver.PassFunc{NameStr: "write-transform", Fn: RunWriteTransform}
}

func RunWriteTransform(prog *ast.Program, st *driver.State) (*ast.Program, error) {
	newScopes := make([]*ast.ProgramScope, len(prog.Scopes))
	for i, sc := range prog.Scopes {
		newScopes[i] = wtRewriteScope(st, sc)
	}
	newModules := make([]*ast.Module, len(prog.Modules))
	for i, m := range prog.Modules {
		newModules[i] = wtRewriteModule(st, m)
	}
	out := *prog
	out.Scopes = newScopes
	out.Modules = newModules
	return &out, nil
}

func wtRewriteScope(st *driver.State, sc *ast.ProgramScope) *ast.ProgramScope {
	fns := make([]*ast.Function, len(sc.Functions))
	for i, fn := range sc.Functions {
		fns[i] = wtRewriteFunction(st, fn)
	}
	var ctor *ast.Function
	if sc.Constructor != nil {
		ctor = wtRewriteFunction(st, sc.Constructor)
	}
	cp := *sc
	cp.Functions = fns
	cp.Constructor = ctor
	return &cp
}

func wtRewriteModule(st *driver.State, m *ast.Module) *ast.Module {
	fns := make([]*ast.Function, len(m.Functions))
	for i, fn := range m.Functions {
		fns[i] = wtRewriteFunction(st, fn)
	}
	cp := *m
	cp.Functions = fns
	return &cp
}

func wtRewriteFunction(st *driver.State, fn *ast.Function) *ast.Function {
	env := typeenv.New(st.Symbols)
	env.SeedFunction(fn)
	w := newWriter(st, env)
	cp := *fn
	if fn.Body != nil {
		body := *fn.Body
		body.Statements = w.processStatements(fn.Body.Statements)
		cp.Body = &body
	}
	return &cp
}

// writer carries the per-identifier member maps for one function (or one
// forked branch of it — see fork/processBranch below).
type writer struct {
	st  *driver.State
	env *typeenv.Env

	arrays      map[string][]ast.Expression
	structs     map[string]map[string]ast.Expression
	structOrder map[string][]string
	structName  map[string]string

	dirty map[string]bool
}

func newWriter(st *driver.State, env *typeenv.Env) *writer {
	return &writer{
		st:          st,
		env:         env,
		arrays:      make(map[string][]ast.Expression),
		structs:     make(map[string]map[string]ast.Expression),
		structOrder: make(map[string][]string),
		structName:  make(map[string]string),
		dirty:       make(map[string]bool),
	}
}

func (w *writer) fork() *writer {
	arrays := make(map[string][]ast.Expression, len(w.arrays))
	for k, v := range w.arrays {
		arrays[k] = append([]ast.Expression{}, v...)
	}
	structs := make(map[string]map[string]ast.Expression, len(w.structs))
	for k, v := range w.structs {
		cp := make(map[string]ast.Expression, len(v))
		for kk, vv := range v {
			cp[kk] = vv
		}
		structs[k] = cp
	}
	structOrder := make(map[string][]string, len(w.structOrder))
	for k, v := range w.structOrder {
		structOrder[k] = append([]string{}, v...)
	}
	structName := make(map[string]string, len(w.structName))
	for k, v := range w.structName {
		structName[k] = v
	}
	return &writer{
		st: w.st, env: w.env,
		arrays: arrays, structs: structs, structOrder: structOrder, structName: structName,
		dirty: make(map[string]bool),
	}
}

func (w *writer) processStatements(stmts []ast.Statement) []ast.Statement {
	var out []ast.Statement
	for _, s := range stmts {
		out = append(out, w.processStmt(s)...)
	}
	return out
}

func (w *writer) processStmt(s ast.Statement) []ast.Statement {
	switch n := s.(type) {
	case *ast.Definition:
		rv := ast.ReconstructExpr(n.Value, w.exprHook)
		ty := n.TypeAnnotation
		if ty == nil {
			ty = w.env.Infer(rv.Expr)
		}
		if single, ok := n.Target.(ast.SingleTarget); ok {
			w.env.Declare(single.Name, ty)
		}
		cp := *n
		cp.Value = rv.Expr
		return append(rv.Prefix, &cp)
	case *ast.Const:
		rv := ast.ReconstructExpr(n.Value, w.exprHook)
		ty := n.TypeAnnotation
		if ty == nil {
			ty = w.env.Infer(rv.Expr)
		}
		w.env.Declare(n.Name, ty)
		cp := *n
		cp.Value = rv.Expr
		return append(rv.Prefix, &cp)
	case *ast.Assign:
		return w.processAssign(n)
	case *ast.ExpressionStatement:
		rv := ast.ReconstructExpr(n.Value, w.exprHook)
		cp := *n
		cp.Value = rv.Expr
		return append(rv.Prefix, &cp)
	case *ast.Return:
		if n.Value == nil {
			return []ast.Statement{n}
		}
		rv := ast.ReconstructExpr(n.Value, w.exprHook)
		cp := *n
		cp.Value = rv.Expr
		return append(rv.Prefix, &cp)
	case *ast.Assert:
		rv := ast.ReconstructExpr(n.Condition, w.exprHook)
		cp := *n
		cp.Condition = rv.Expr
		return append(rv.Prefix, &cp)
	case *ast.Block:
		// A bare nested block runs unconditionally, so its writes stay
		// visible in the enclosing scope directly (same treatment ssa.go
		// gives a bare Block).
		cp := *n
		cp.Statements = w.processStatements(n.Statements)
		return []ast.Statement{&cp}
	case *ast.Conditional:
		return w.processConditional(n)
	case *ast.Iteration:
		return w.processIteration(n)
	default:
		return []ast.Statement{s}
	}
}

// processAssign handles the two compound-place shapes the write-transformer
// targets: `arr[literal] = v` and `s.field = v`, both rooted at
// a bare identifier. Anything else (a nested chain, a dynamic index whose
// value isn't known here, or an aggregate whose type this pass's best-effort
// typeenv can't resolve) is left standing — a decided simplification
// recorded in DESIGN.md, since a full treatment would need the dataflow
// this core defers to the interpreter/codegen stage.
func (w *writer) processAssign(n *ast.Assign) []ast.Statement {
	if aa, ok := n.Place.(*ast.ArrayAccessExpr); ok {
		if base, ok := aa.Array.(*ast.Identifier); ok {
			if lit, ok := aa.Index.(*ast.IntegerLiteral); ok {
				if at, ok := w.env.Lookup(base.Name).(ast.ArrayType); ok {
					idx := int(lit.Value.Int64())
					if idx >= 0 && idx < int(at.Length) {
						rv := ast.ReconstructExpr(n.Value, w.exprHook)
						w.ensureArrayInit(base.Name, base, at)
						tmp := w.fresh("$mem")
						w.arrays[base.Name][idx] = &ast.Identifier{Name: tmp}
						w.dirty[base.Name] = true
						def := &ast.Definition{Target: ast.SingleTarget{Name: tmp}, Kind: ast.DeclMut, Value: rv.Expr}
						return append(rv.Prefix, def)
					}
				}
			}
		}
	}
	if ma, ok := n.Place.(*ast.MemberAccessExpr); ok {
		if base, ok := ma.Value.(*ast.Identifier); ok {
			if ct, ok := w.env.Lookup(base.Name).(ast.CompositeType); ok {
				if members, ok := w.env.StructMembers(ct); ok {
					rv := ast.ReconstructExpr(n.Value, w.exprHook)
					w.ensureStructInit(base.Name, base, ct.Path, members)
					tmp := w.fresh("$mem")
					w.structs[base.Name][ma.Field] = &ast.Identifier{Name: tmp}
					w.dirty[base.Name] = true
					def := &ast.Definition{Target: ast.SingleTarget{Name: tmp}, Kind: ast.DeclMut, Value: rv.Expr}
					return append(rv.Prefix, def)
				}
			}
		}
	}

	rp := ast.ReconstructExpr(n.Place, w.exprHook)
	rv := ast.ReconstructExpr(n.Value, w.exprHook)
	out := append(append([]ast.Statement{}, rp.Prefix...), rv.Prefix...)
	cp := *n
	cp.Place = rp.Expr
	cp.Value = rv.Expr
	return append(out, &cp)
}

func (w *writer) ensureArrayInit(name string, base *ast.Identifier, at ast.ArrayType) {
	if _, ok := w.arrays[name]; ok {
		return
	}
	slots := make([]ast.Expression, at.Length)
	for i := range slots {
		slots[i] = &ast.ArrayAccessExpr{Array: base, Index: &ast.IntegerLiteral{Value: big.NewInt(int64(i)), Width: 32, Signed: false}}
	}
	w.arrays[name] = slots
}

func (w *writer) ensureStructInit(name string, base *ast.Identifier, path string, members []ast.Member) {
	if _, ok := w.structs[name]; ok {
		return
	}
	fields := make(map[string]ast.Expression, len(members))
	order := make([]string, len(members))
	for i, m := range members {
		fields[m.Name] = &ast.MemberAccessExpr{Value: base, Field: m.Name}
		order[i] = m.Name
	}
	w.structs[name] = fields
	w.structOrder[name] = order
	w.structName[name] = path
}

// exprHook rematerializes a read of a tracked aggregate identifier: the
// identifier itself is left as-is (so every other reference to the name
// continues to resolve normally), but a preceding Assign rebuilds it from
// the currently-tracked member identifiers, which the next SSA pass's
// phi-at-join logic will reconcile like any other reassignment.
func (w *writer) exprHook(e ast.Expression) ast.ExprResult {
	id, ok := e.(*ast.Identifier)
	if !ok {
		return ast.ExprResult{Expr: e}
	}
	if elems, ok := w.arrays[id.Name]; ok {
		rebuild := &ast.ArrayExpr{Elements: append([]ast.Expression{}, elems...)}
		assign := &ast.Assign{Place: &ast.Identifier{Name: id.Name}, Value: rebuild}
		return ast.ExprResult{Expr: &ast.Identifier{Name: id.Name}, Prefix: []ast.Statement{assign}, Changed: true}
	}
	if fields, ok := w.structs[id.Name]; ok {
		cp := make(map[string]ast.Expression, len(fields))
		for k, v := range fields {
			cp[k] = v
		}
		rebuild := &ast.CompositeInitExpr{Name: w.structName[id.Name], FieldOrder: append([]string{}, w.structOrder[id.Name]...), Fields: cp}
		assign := &ast.Assign{Place: &ast.Identifier{Name: id.Name}, Value: rebuild}
		return ast.ExprResult{Expr: &ast.Identifier{Name: id.Name}, Prefix: []ast.Statement{assign}, Changed: true}
	}
	return ast.ExprResult{Expr: e}
}

// processBranch runs stmts in a forked copy of w's tracking state (a
// conditional arm or loop body is its own control-flow path, so its writes
// must not leak into sibling paths) and, before returning, force-flushes
// every aggregate the branch touched into a real Assign: pass-local
// tracking state cannot silently cross back out of the branch the way a
// real AST node can, the same reason ssa.go's decompose() hoists non-atomic
// expressions before a block boundary rather than carrying them across it.
func (w *writer) processBranch(stmts []ast.Statement) ([]ast.Statement, []string) {
	child := w.fork()
	out := child.processStatements(stmts)

	var names []string
	for n := range child.dirty {
		names = append(names, n)
	}
	sort.Strings(names)
	for _, name := range names {
		if elems, ok := child.arrays[name]; ok {
			out = append(out, &ast.Assign{
				Place: &ast.Identifier{Name: name},
				Value: &ast.ArrayExpr{Elements: append([]ast.Expression{}, elems...)},
			})
			continue
		}
		if fields, ok := child.structs[name]; ok {
			cp := make(map[string]ast.Expression, len(fields))
			for k, v := range fields {
				cp[k] = v
			}
			out = append(out, &ast.Assign{
				Place: &ast.Identifier{Name: name},
				Value: &ast.CompositeInitExpr{Name: child.structName[name], FieldOrder: append([]string{}, child.structOrder[name]...), Fields: cp},
			})
		}
	}
	return out, names
}

func (w *writer) processConditional(n *ast.Conditional) []ast.Statement {
	rc := ast.ReconstructExpr(n.Condition, w.exprHook)
	thenOut, thenDirty := w.processBranch(n.Then.Statements)
	var otherwiseOut []ast.Statement
	var otherDirty []string
	if n.Otherwise != nil {
		otherwiseOut, otherDirty = w.processBranch(n.Otherwise.Statements)
	}
	for _, name := range thenDirty {
		delete(w.arrays, name)
		delete(w.structs, name)
	}
	for _, name := range otherDirty {
		delete(w.arrays, name)
		delete(w.structs, name)
	}

	thenBlock := *n.Then
	thenBlock.Statements = thenOut
	cp := *n
	cp.Condition = rc.Expr
	cp.Then = &thenBlock
	if n.Otherwise != nil {
		otherwiseBlock := *n.Otherwise
		otherwiseBlock.Statements = otherwiseOut
		cp.Otherwise = &otherwiseBlock
	}
	return append(rc.Prefix, &cp)
}

func (w *writer) processIteration(n *ast.Iteration) []ast.Statement {
	rs := ast.ReconstructExpr(n.Start, w.exprHook)
	re := ast.ReconstructExpr(n.Stop, w.exprHook)
	w.env.Declare(n.Variable, n.VarType)

	bodyOut, dirty := w.processBranch(n.Body.Statements)
	for _, name := range dirty {
		delete(w.arrays, name)
		delete(w.structs, name)
	}

	bodyBlock := *n.Body
	bodyBlock.Statements = bodyOut
	cp := *n
	cp.Start = rs.Expr
	cp.Stop = re.Expr
	cp.Body = &bodyBlock
	out := append(append([]ast.Statement{}, rs.Prefix...), re.Prefix...)
	return append(out, &cp)
}

func (w *writer) fresh(base string) string {
	return fmt.Sprintf("%s$%d", base, w.st.Session.Nodes.Fresh())
}
