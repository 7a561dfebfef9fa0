package constprop

import (
	"strings"

	"github.com/vinelang/vinec/internal/ast"
	"github.com/vinelang/vinec/internal/value"
)

// monomorphize specializes calleeName's const parameters to vals: a call
// whose const-generic arguments all reduce to compile-time constants is
// replaced by a call to a freshly synthesized, specialized copy of the
// callee. It returns the
// specialized function's name, or "" if calleeName doesn't resolve to a
// known, const-parameterized function (an imported stub, for instance,
// is left untouched — specializing across a program boundary is out of
// this core's scope).
//
// Repeated calls with the same (calleeName, vals) share one
// specialization; each specialization gets its own independent call-count
// entry, not a re-derived one.
func (f *folder) monomorphize(calleeName string, vals []value.Value) string {
	sym, ok := f.st.Symbols.Find(calleeName)
	if !ok || sym.Function == nil || len(sym.Function.ConstParams) == 0 {
		return ""
	}
	fn := sym.Function

	specName := calleeName + "$" + specSuffix(vals)
	if _, exists := f.monomorphized[specName]; exists {
		f.st.CallCounts[specName]++
		return specName
	}

	substEnv := make(map[string]value.Value, len(fn.ConstParams))
	for i, p := range fn.ConstParams {
		if i < len(vals) {
			substEnv[p.Name] = vals[i]
		}
	}

	specFn := *fn
	specFn.Name = specName
	specFn.ConstParams = nil
	specFn.Body = substituteConsts(fn.Body, substEnv)

	f.monomorphized[specName] = &specFn
	f.st.CallCounts[specName] = 1
	f.st.Symbols.DefineFunction(&specFn)
	f.byProgram[f.activeProgramID] = append(f.byProgram[f.activeProgramID], &specFn)

	return specName
}

// substituteConsts replaces every Identifier in b naming a const param
// with its specialized literal value, via the same bottom-up reconstructor
// every other pass uses. It only substitutes — it doesn't also fold the
// rest of the body the way f.hook does, since the specialized function is
// spliced into the program after this Run has already finished walking
// it; the pipeline's next const-prop invocation folds it fully, by which
// point it's an ordinary
// function with no const params left to specialize further.
func substituteConsts(b *ast.Block, substEnv map[string]value.Value) *ast.Block {
	hook := func(e ast.Expression) ast.ExprResult {
		if id, ok := e.(*ast.Identifier); ok {
			if v, ok := substEnv[id.Name]; ok {
				return ast.ExprResult{Expr: v.ToExpression(), Changed: true}
			}
		}
		return ast.ExprResult{Expr: e}
	}
	return ast.ReconstructBlock(b, hook, nil)
}

// specSuffix names a specialization deterministically from its
// const-argument values so repeated call sites with the same literal
// arguments collapse onto one specialized function.
func specSuffix(vals []value.Value) string {
	parts := make([]string, len(vals))
	for i, v := range vals {
		parts[i] = sanitize(v.String())
	}
	return strings.Join(parts, "_")
}

func sanitize(s string) string {
	return strings.NewReplacer("-", "neg", " ", "", "(", "", ")", "").Replace(s)
}
