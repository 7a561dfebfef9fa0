package constprop

import (
	"github.com/consensys/gnark-crypto/ecc/bls12-377/fr"

	"github.com/vinelang/vinec/internal/ast"
	"github.com/vinelang/vinec/internal/diagnostics"
	"github.com/vinelang/vinec/internal/value"
)

// ConstPropOutput is what this pass attaches to ast.ExprResult.Output for
// every expression it touches, letting a later pass that reuses
// ast.ReconstructExpr (monomorphize.go's substituteConsts, for instance)
// recover the folded Value without re-deriving it from the rewritten
// literal node.
type ConstPropOutput struct {
	Value   *value.Value
	Changed bool
}

// literalToValue converts an already-reconstructed literal-shaped
// expression into the Value it denotes, or reports false if e is not
// (yet) foldable — e.g. it still contains an Identifier this pass's
// current env doesn't bind. Composite literals fold only when every
// element/field does.
func literalToValue(e ast.Expression) (value.Value, bool) {
	switch n := e.(type) {
	case *ast.BooleanLiteral:
		return value.Bool(n.Value), true
	case *ast.IntegerLiteral:
		return value.Int(n.Value, n.Width, n.Signed), true
	case *ast.FieldLiteral:
		return value.Field(n.Value), true
	case *ast.ScalarLiteral:
		return value.Scalar(n.Value), true
	case *ast.GroupLiteral:
		if n.IsGenerator {
			return value.Generator(), true
		}
		var x fr.Element
		x.SetBigInt(n.Value)
		return value.Value{Kind: value.KindGroup, Group: value.GroupElement{X: x}}, true
	case *ast.AddressLiteral:
		return value.Address(n.Raw), true
	case *ast.UnitExpr:
		return value.Unit(), true
	case *ast.ArrayExpr:
		elems := make([]value.Value, len(n.Elements))
		for i, el := range n.Elements {
			v, ok := literalToValue(el)
			if !ok {
				return value.Value{}, false
			}
			elems[i] = v
		}
		return value.Array(elems), true
	case *ast.TupleExpr:
		elems := make([]value.Value, len(n.Elements))
		for i, el := range n.Elements {
			v, ok := literalToValue(el)
			if !ok {
				return value.Value{}, false
			}
			elems[i] = v
		}
		return value.Tuple(elems), true
	case *ast.CompositeInitExpr:
		fields := make(map[string]value.Value, len(n.Fields))
		for _, name := range n.FieldOrder {
			v, ok := literalToValue(n.Fields[name])
			if !ok {
				return value.Value{}, false
			}
			fields[name] = v
		}
		return value.Struct(append([]string{}, n.FieldOrder...), fields), true
	default:
		return value.Value{}, false
	}
}

// hook is the bottom-up rewrite rule set applied to every function body:
// it substitutes identifiers known to the current env,
// evaluates operators/casts/ternaries/accesses once every operand is a
// known constant, and monomorphizes const-generic calls whose ConstArgs
// all fold. Anything it can't fold passes through unchanged, to be folded
// further (or not at all) by a later const-prop invocation over SSA form.
func (f *folder) hook(e ast.Expression) ast.ExprResult {
	switch n := e.(type) {
	case *ast.Identifier:
		if v, ok := f.env.lookup(n.Name); ok {
			return ast.ExprResult{Expr: v.ToExpression(), Changed: true, Output: ConstPropOutput{Value: &v, Changed: true}}
		}

	case *ast.BinaryExpr:
		lv, lok := literalToValue(n.Left)
		rv, rok := literalToValue(n.Right)
		if lok && rok {
			res, err := value.Binary(n.Op, lv, rv)
			if err != nil {
				f.st.Diags.Error(value.Code(err), n.GetSpan(), "%s", err.Error())
				return ast.ExprResult{Expr: &ast.ErrExpr{}, Changed: true}
			}
			return ast.ExprResult{Expr: res.ToExpression(), Changed: true, Output: ConstPropOutput{Value: &res, Changed: true}}
		}

	case *ast.UnaryExpr:
		ov, ok := literalToValue(n.Operand)
		if ok {
			res, err := value.Unary(n.Op, ov)
			if err != nil {
				f.st.Diags.Error(value.Code(err), n.GetSpan(), "%s", err.Error())
				return ast.ExprResult{Expr: &ast.ErrExpr{}, Changed: true}
			}
			return ast.ExprResult{Expr: res.ToExpression(), Changed: true, Output: ConstPropOutput{Value: &res, Changed: true}}
		}

	case *ast.CastExpr:
		ov, ok := literalToValue(n.Operand)
		if ok {
			res, err := value.Cast(ov, n.Target)
			if err != nil {
				f.st.Diags.Error(value.Code(err), n.GetSpan(), "%s", err.Error())
				return ast.ExprResult{Expr: &ast.ErrExpr{}, Changed: true}
			}
			return ast.ExprResult{Expr: res.ToExpression(), Changed: true, Output: ConstPropOutput{Value: &res, Changed: true}}
		}

	case *ast.TernaryExpr:
		cv, ok := literalToValue(n.Condition)
		if ok && cv.Kind == value.KindBool {
			if cv.Bool {
				return ast.ExprResult{Expr: n.Then, Changed: true}
			}
			return ast.ExprResult{Expr: n.Otherwise, Changed: true}
		}

	case *ast.ArrayAccessExpr:
		av, aok := literalToValue(n.Array)
		iv, iok := literalToValue(n.Index)
		if aok && iok && av.Kind == value.KindArray {
			idx := iv.Int.Int64()
			if idx < 0 || idx >= int64(len(av.Array)) {
				f.st.Diags.Error(diagnostics.ErrArrayIndexOutOfBounds, n.GetSpan(), "array index %d out of bounds for length %d", idx, len(av.Array))
				break
			}
			elem := av.Array[idx]
			return ast.ExprResult{Expr: elem.ToExpression(), Changed: true, Output: ConstPropOutput{Value: &elem, Changed: true}}
		}

	case *ast.TupleAccessExpr:
		tv, ok := literalToValue(n.Tuple)
		if ok && tv.Kind == value.KindTuple && n.Index >= 0 && n.Index < len(tv.Tuple) {
			elem := tv.Tuple[n.Index]
			return ast.ExprResult{Expr: elem.ToExpression(), Changed: true, Output: ConstPropOutput{Value: &elem, Changed: true}}
		}

	case *ast.MemberAccessExpr:
		sv, ok := literalToValue(n.Value)
		if ok && sv.Kind == value.KindStruct {
			if fv, has := sv.Struct[n.Field]; has {
				return ast.ExprResult{Expr: fv.ToExpression(), Changed: true, Output: ConstPropOutput{Value: &fv, Changed: true}}
			}
		}

	case *ast.CallExpr:
		if len(n.ConstArgs) > 0 {
			vals := make([]value.Value, len(n.ConstArgs))
			allKnown := true
			for i, a := range n.ConstArgs {
				v, ok := literalToValue(a)
				if !ok {
					allKnown = false
					break
				}
				vals[i] = v
			}
			if allKnown {
				if specName := f.monomorphize(n.Callee, vals); specName != "" {
					cp := *n
					cp.Callee = specName
					cp.ConstArgs = nil
					return ast.ExprResult{Expr: &cp, Changed: true}
				}
			}
		}
	}
	return ast.ExprResult{Expr: e}
}
