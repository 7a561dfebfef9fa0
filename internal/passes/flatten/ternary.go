package flatten

import (
	"fmt"
	"math/big"

	"github.com/vinelang/vinec/internal/ast"
	"github.com/vinelang/vinec/internal/driver"
	"github.com/vinelang/vinec/internal/passes/typeenv"
)

func bigInt(i int) *big.Int { return big.NewInt(int64(i)) }

// ternaryHook expands a composite-typed TernaryExpr into one leaf ternary
// per element/field/slot, each bound through its own fresh Definition
// (for example `let p = Point{x: cond ? 1 : 3,
// ...}` only works once every field of the composite is itself a scalar
// ternary). A scalar-typed ternary passes through unchanged — it already
// satisfies TernaryExpr's final invariant once the flattener has run.
func ternaryHook(env *typeenv.Env, st *driver.State) ast.ExprHook {
	var expand func(e ast.Expression) ast.ExprResult

	fresh := func(base string) string {
		return fmt.Sprintf("%s$%d", base, st.Session.Nodes.Fresh())
	}

	expand = func(e ast.Expression) ast.ExprResult {
		te, ok := e.(*ast.TernaryExpr)
		if !ok {
			return ast.ExprResult{Expr: e}
		}
		ty := env.Infer(te.Then)
		if ty == nil {
			ty = env.Infer(te.Otherwise)
		}
		switch t := ty.(type) {
		case ast.ArrayType:
			var prefix []ast.Statement
			elems := make([]ast.Expression, t.Length)
			for i := 0; i < int(t.Length); i++ {
				leaf := &ast.TernaryExpr{
					Condition: te.Condition,
					Then:      arrayElementAt(te.Then, i),
					Otherwise: arrayElementAt(te.Otherwise, i),
				}
				sub := expand(leaf)
				prefix = append(prefix, sub.Prefix...)
				name := fresh("$ternary")
				prefix = append(prefix, &ast.Definition{Target: ast.SingleTarget{Name: name}, Kind: ast.DeclMut, Value: sub.Expr})
				elems[i] = &ast.Identifier{Name: name}
			}
			return ast.ExprResult{Expr: &ast.ArrayExpr{Elements: elems}, Prefix: prefix, Changed: true}

		case ast.CompositeType:
			members, ok := env.StructMembers(t)
			if !ok {
				return ast.ExprResult{Expr: e}
			}
			var prefix []ast.Statement
			fields := make(map[string]ast.Expression, len(members))
			order := make([]string, len(members))
			for i, m := range members {
				order[i] = m.Name
				leaf := &ast.TernaryExpr{
					Condition: te.Condition,
					Then:      memberAt(te.Then, m.Name),
					Otherwise: memberAt(te.Otherwise, m.Name),
				}
				sub := expand(leaf)
				prefix = append(prefix, sub.Prefix...)
				name := fresh("$ternary")
				prefix = append(prefix, &ast.Definition{Target: ast.SingleTarget{Name: name}, Kind: ast.DeclMut, Value: sub.Expr})
				fields[m.Name] = &ast.Identifier{Name: name}
			}
			return ast.ExprResult{Expr: &ast.CompositeInitExpr{Name: t.Path, FieldOrder: order, Fields: fields}, Prefix: prefix, Changed: true}

		case ast.TupleType:
			var prefix []ast.Statement
			elems := make([]ast.Expression, len(t.Elems))
			for i := range t.Elems {
				leaf := &ast.TernaryExpr{
					Condition: te.Condition,
					Then:      tupleElementAt(te.Then, i),
					Otherwise: tupleElementAt(te.Otherwise, i),
				}
				sub := expand(leaf)
				prefix = append(prefix, sub.Prefix...)
				name := fresh("$ternary")
				prefix = append(prefix, &ast.Definition{Target: ast.SingleTarget{Name: name}, Kind: ast.DeclMut, Value: sub.Expr})
				elems[i] = &ast.Identifier{Name: name}
			}
			return ast.ExprResult{Expr: &ast.TupleExpr{Elements: elems}, Prefix: prefix, Changed: true}

		default:
			return ast.ExprResult{Expr: e}
		}
	}

	return expand
}

func arrayElementAt(e ast.Expression, i int) ast.Expression {
	if arr, ok := e.(*ast.ArrayExpr); ok && i < len(arr.Elements) {
		return arr.Elements[i]
	}
	return &ast.ArrayAccessExpr{Array: e, Index: &ast.IntegerLiteral{Value: bigInt(i), Width: 32, Signed: false}}
}

func memberAt(e ast.Expression, field string) ast.Expression {
	if ci, ok := e.(*ast.CompositeInitExpr); ok {
		if v, ok := ci.Fields[field]; ok {
			return v
		}
	}
	return &ast.MemberAccessExpr{Value: e, Field: field}
}

func tupleElementAt(e ast.Expression, i int) ast.Expression {
	if tup, ok := e.(*ast.TupleExpr); ok && i < len(tup.Elements) {
		return tup.Elements[i]
	}
	return &ast.TupleAccessExpr{Tuple: e, Index: i}
}
