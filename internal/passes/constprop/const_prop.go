package constprop

import (
	"math/big"

	"github.com/vinelang/vinec/internal/ast"
	"github.com/vinelang/vinec/internal/driver"
	"github.com/vinelang/vinec/internal/value"
)

// New returns the pass in its pre-SSA mode: constant propagation,
// bounded loop unrolling, and const-generic monomorphization,
// tracking only `DeclConst`/block-`Const` bindings as substitutable names
// (a `DeclMut` binding can still be reassigned by a later `Assign` at this
// point in the pipeline, so its value is folded once inline but never
// trusted for a later read).
func New() driver.Pass {
	return driver.PassFunc{NameStr: "constprop", Fn: Run}
}

// NewSSAForm returns the pipeline's second, post-SSA invocation: by that
// point every `Definition` — `DeclConst` or `DeclMut` alike — has been
// through SSA formation and is therefore assigned exactly once along every
// path, so it is just as safe to track as a substitutable constant as an
// explicit `const` is pre-SSA. This is "SSA constant propagation."
func NewSSAForm() driver.Pass {
	return driver.PassFunc{NameStr: "constprop-ssa", Fn: RunSSAForm}
}

// folder carries the per-Run state: the shared compiler State, the
// current env (valid only across one statement's worth of expression
// folding — see env.go), and the specializations discovered so far so a
// call-site reached twice with the same literal arguments shares one
// specialized function instead of cloning it again.
type folder struct {
	st            *driver.State
	env           *env
	monomorphized map[string]*ast.Function
	byProgram     map[string][]*ast.Function

	// ssaForm is true only for the pipeline's post-SSA invocation
	// (NewSSAForm/RunSSAForm): it relaxes foldStmt's Definition case to
	// track a `DeclMut` binding's folded value exactly like a `DeclConst`
	// one, since SSA's single-assignment invariant makes every
	// name just as trustworthy as an explicit const at that point.
	ssaForm bool

	// activeProgramID is where monomorphize files a freshly-specialized
	// function so Run's second pass can attach it to the right
	// scope/module. It's a field rather than a foldFunction parameter
	// because monomorphize is reached indirectly, through f.hook, several
	// calls deep below foldStmt/foldBlock.
	activeProgramID string
}

// Run folds every ProgramScope and Module in prog, in place conceptually
// but functionally: every touched node is rebuilt, untouched subtrees keep
// their original pointer and NodeID. This is the pre-SSA mode;
// see RunSSAForm for the pipeline's later, SSA-aware invocation.
func Run(prog *ast.Program, st *driver.State) (*ast.Program, error) {
	return run(prog, st, false)
}

// RunSSAForm is Run's post-SSA-formation counterpart; see NewSSAForm.
func RunSSAForm(prog *ast.Program, st *driver.State) (*ast.Program, error) {
	return run(prog, st, true)
}

func run(prog *ast.Program, st *driver.State, ssaForm bool) (*ast.Program, error) {
	f := &folder{
		st:            st,
		monomorphized: make(map[string]*ast.Function),
		byProgram:     make(map[string][]*ast.Function),
		ssaForm:       ssaForm,
	}

	newScopes := make([]*ast.ProgramScope, len(prog.Scopes))
	for i, scope := range prog.Scopes {
		newScopes[i] = f.foldScope(scope)
	}
	for i, scope := range newScopes {
		if extra, ok := f.byProgram[scope.ProgramID]; ok {
			cp := *scope
			cp.Functions = append(append([]*ast.Function{}, scope.Functions...), extra...)
			newScopes[i] = &cp
		}
	}

	newModules := make([]*ast.Module, len(prog.Modules))
	for i, m := range prog.Modules {
		newModules[i] = f.foldModule(m)
	}
	for i, m := range newModules {
		key := "module:" + m.Name
		if extra, ok := f.byProgram[key]; ok {
			cp := *m
			cp.Functions = append(append([]*ast.Function{}, m.Functions...), extra...)
			newModules[i] = &cp
		}
	}

	out := *prog
	out.Scopes = newScopes
	out.Modules = newModules
	return &out, nil
}

func (f *folder) foldScope(scope *ast.ProgramScope) *ast.ProgramScope {
	programEnv := newEnv(nil)

	newConsts := make([]*ast.Const, len(scope.Consts))
	for i, c := range scope.Consts {
		f.env = programEnv
		rv := ast.ReconstructExpr(c.Value, f.hook)
		cp := *c
		cp.Value = rv.Expr
		newConsts[i] = &cp
		if v, ok := literalToValue(rv.Expr); ok {
			programEnv.define(c.Name, v)
		}
	}

	f.activeProgramID = scope.ProgramID

	newFns := make([]*ast.Function, len(scope.Functions))
	for i, fn := range scope.Functions {
		newFns[i] = f.foldFunction(fn, programEnv)
	}
	var newConstructor *ast.Function
	if scope.Constructor != nil {
		newConstructor = f.foldFunction(scope.Constructor, programEnv)
	}

	cp := *scope
	cp.Consts = newConsts
	cp.Functions = newFns
	cp.Constructor = newConstructor
	return &cp
}

func (f *folder) foldModule(m *ast.Module) *ast.Module {
	moduleEnv := newEnv(nil)

	newConsts := make([]*ast.Const, len(m.Consts))
	for i, c := range m.Consts {
		f.env = moduleEnv
		rv := ast.ReconstructExpr(c.Value, f.hook)
		cp := *c
		cp.Value = rv.Expr
		newConsts[i] = &cp
		if v, ok := literalToValue(rv.Expr); ok {
			moduleEnv.define(c.Name, v)
		}
	}

	f.activeProgramID = "module:" + m.Name

	newFns := make([]*ast.Function, len(m.Functions))
	for i, fn := range m.Functions {
		newFns[i] = f.foldFunction(fn, moduleEnv)
	}

	cp := *m
	cp.Consts = newConsts
	cp.Functions = newFns
	return &cp
}

func (f *folder) foldFunction(fn *ast.Function, parent *env) *ast.Function {
	fnEnv := newEnv(parent)
	body := f.foldBlock(fn.Body, fnEnv)
	cp := *fn
	cp.Body = body
	return &cp
}

func (f *folder) foldBlock(b *ast.Block, parent *env) *ast.Block {
	if b == nil {
		return nil
	}
	e := newEnv(parent)
	var out []ast.Statement
	for _, s := range b.Statements {
		out = append(out, f.foldStmt(s, e)...)
	}
	cp := *b
	cp.Statements = out
	return &cp
}

func (f *folder) foldStmt(s ast.Statement, e *env) []ast.Statement {
	f.env = e
	switch n := s.(type) {
	case *ast.Definition:
		rv := ast.ReconstructExpr(n.Value, f.hook)
		cp := *n
		cp.Value = rv.Expr
		if n.Kind == ast.DeclConst || f.ssaForm {
			if target, ok := n.Target.(ast.SingleTarget); ok {
				if v, ok := literalToValue(rv.Expr); ok {
					e.define(target.Name, v)
				}
			}
		}
		return append(rv.Prefix, &cp)

	case *ast.Const:
		rv := ast.ReconstructExpr(n.Value, f.hook)
		cp := *n
		cp.Value = rv.Expr
		if v, ok := literalToValue(rv.Expr); ok {
			e.define(n.Name, v)
		}
		return append(rv.Prefix, &cp)

	case *ast.Assign:
		rp := ast.ReconstructExpr(n.Place, f.hook)
		rv := ast.ReconstructExpr(n.Value, f.hook)
		cp := *n
		cp.Place = rp.Expr
		cp.Value = rv.Expr
		out := append([]ast.Statement{}, rp.Prefix...)
		out = append(out, rv.Prefix...)
		return append(out, &cp)

	case *ast.ExpressionStatement:
		rv := ast.ReconstructExpr(n.Value, f.hook)
		cp := *n
		cp.Value = rv.Expr
		return append(rv.Prefix, &cp)

	case *ast.Return:
		if n.Value == nil {
			return []ast.Statement{n}
		}
		rv := ast.ReconstructExpr(n.Value, f.hook)
		cp := *n
		cp.Value = rv.Expr
		return append(rv.Prefix, &cp)

	case *ast.Assert:
		rv := ast.ReconstructExpr(n.Condition, f.hook)
		cp := *n
		cp.Condition = rv.Expr
		return append(rv.Prefix, &cp)

	case *ast.Block:
		return []ast.Statement{f.foldBlock(n, e)}

	case *ast.Conditional:
		rv := ast.ReconstructExpr(n.Condition, f.hook)
		thenB := f.foldBlock(n.Then, e)
		var otherwise *ast.Block
		if n.Otherwise != nil {
			otherwise = f.foldBlock(n.Otherwise, e)
		}
		cp := *n
		cp.Condition = rv.Expr
		cp.Then = thenB
		cp.Otherwise = otherwise
		return append(rv.Prefix, &cp)

	case *ast.Iteration:
		return f.foldIteration(n, e)

	default:
		return []ast.Statement{s}
	}
}

// maxUnroll bounds how far this pass will unroll a compile-time-bounded
// loop in one shot. The bound itself is always a compile-time const by
// the time this runs, so this only guards against
// a pathologically large const range, not attacker-controlled input.
const maxUnroll = 1 << 16

// foldIteration unrolls n when Start/Stop both fold to known integers:
// each iteration gets its own nested env binding Variable to
// that iteration's literal, and its body is folded (and, transitively,
// further unrolled/monomorphized) under that binding. A loop whose bounds
// don't fold — or whose range exceeds maxUnroll — is left standing, body
// folded under an env that leaves Variable unbound.
func (f *folder) foldIteration(n *ast.Iteration, parent *env) []ast.Statement {
	f.env = parent
	rs := ast.ReconstructExpr(n.Start, f.hook)
	re := ast.ReconstructExpr(n.Stop, f.hook)
	prefix := append(append([]ast.Statement{}, rs.Prefix...), re.Prefix...)

	startV, sok := literalToValue(rs.Expr)
	stopV, tok := literalToValue(re.Expr)
	it, isInt := n.VarType.(ast.IntegerType)

	if !sok || !tok || !isInt || startV.Kind != value.KindInt || stopV.Kind != value.KindInt {
		body := f.foldBlock(n.Body, parent)
		cp := *n
		cp.Start = rs.Expr
		cp.Stop = re.Expr
		cp.Body = body
		return append(prefix, &cp)
	}

	start := startV.Int.Int64()
	stop := stopV.Int.Int64()
	if n.Inclusive {
		stop++
	}
	if stop-start > maxUnroll {
		body := f.foldBlock(n.Body, parent)
		cp := *n
		cp.Start = rs.Expr
		cp.Stop = re.Expr
		cp.Body = body
		return append(prefix, &cp)
	}

	out := append([]ast.Statement{}, prefix...)
	for i := start; i < stop; i++ {
		iterEnv := newEnv(parent)
		iterEnv.define(n.Variable, value.Int(big.NewInt(i), it.Width, it.Signed))
		for _, st := range n.Body.Statements {
			out = append(out, f.foldStmt(st, iterEnv)...)
		}
	}
	return out
}
