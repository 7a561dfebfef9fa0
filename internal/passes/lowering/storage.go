package lowering

import (
	"strings"

	"github.com/vinelang/vinec/internal/ast"
	"github.com/vinelang/vinec/internal/symbols"
)

// exprHook rewrites the two surface forms a mapping operation may take —
// method-call sugar (`balances.get(addr)`, `balances.set(addr, amt)`, ...)
// and index sugar (`balances[addr]` as a read) — into explicit
// IntrinsicExpr calls, and expands a `get_or_use(self, default)` call on an
// Optional-valued `self` into its {flag, value} ternary form. The
// mapping name is threaded through as a StringLiteral first argument
// rather than a second Callee-qualification scheme, so every mapping
// intrinsic has a uniform three-shape Args layout downstream passes can
// pattern-match on directly.
func (l *lowerer) exprHook(e ast.Expression) ast.ExprResult {
	switch n := e.(type) {
	case *ast.CallExpr:
		if dot := strings.LastIndex(n.Callee, "."); dot >= 0 {
			mappingName, op := n.Callee[:dot], n.Callee[dot+1:]
			if sym, ok := l.st.Symbols.Find(mappingName); ok && sym.Kind == symbols.MappingSymbol {
				if intrinsic, ok := mappingIntrinsic(op, mappingName, n.Args); ok {
					return ast.ExprResult{Expr: intrinsic, Changed: true}
				}
			}
		}
		if n.Callee == "get_or_use" && len(n.Args) == 2 {
			self, def := n.Args[0], n.Args[1]
			return ast.ExprResult{
				Expr: &ast.TernaryExpr{
					Condition: &ast.MemberAccessExpr{Value: self, Field: "flag"},
					Then:      &ast.MemberAccessExpr{Value: self, Field: "value"},
					Otherwise: def,
				},
				Changed: true,
			}
		}

	case *ast.ArrayAccessExpr:
		if id, ok := n.Array.(*ast.Identifier); ok {
			if sym, ok := l.st.Symbols.Find(id.Name); ok && sym.Kind == symbols.MappingSymbol {
				return ast.ExprResult{
					Expr:    &ast.IntrinsicExpr{Op: ast.IntrinsicMappingGet, Args: []ast.Expression{&ast.StringLiteral{Value: id.Name}, n.Index}},
					Changed: true,
				}
			}
		}
	}
	return ast.ExprResult{Expr: e}
}

func mappingIntrinsic(op, mappingName string, args []ast.Expression) (ast.Expression, bool) {
	name := &ast.StringLiteral{Value: mappingName}
	switch op {
	case "get":
		if len(args) != 1 {
			return nil, false
		}
		return &ast.IntrinsicExpr{Op: ast.IntrinsicMappingGet, Args: []ast.Expression{name, args[0]}}, true
	case "get_or_use":
		if len(args) != 2 {
			return nil, false
		}
		return &ast.IntrinsicExpr{Op: ast.IntrinsicMappingGetOrUse, Args: []ast.Expression{name, args[0], args[1]}}, true
	case "set":
		if len(args) != 2 {
			return nil, false
		}
		return &ast.IntrinsicExpr{Op: ast.IntrinsicMappingSet, Args: []ast.Expression{name, args[0], args[1]}}, true
	case "contains":
		if len(args) != 1 {
			return nil, false
		}
		return &ast.IntrinsicExpr{Op: ast.IntrinsicMappingContains, Args: []ast.Expression{name, args[0]}}, true
	case "remove":
		if len(args) != 1 {
			return nil, false
		}
		return &ast.IntrinsicExpr{Op: ast.IntrinsicMappingRemove, Args: []ast.Expression{name, args[0]}}, true
	default:
		return nil, false
	}
}

// stmtHook additionally rewrites `mapping[key] = value` (the index-sugar
// write form, which ReconstructBlock's default per-statement rewrite
// would otherwise leave as a plain Assign to an ArrayAccessExpr place) and
// rewrites TypeAnnotation on Definition/Const, which ast.ReconstructBlock's
// default rewrite leaves untouched since the generic framework has no
// per-pass notion of "also rewrite this node's declared type."
func (l *lowerer) stmtHook(s ast.Statement) ([]ast.Statement, bool) {
	switch n := s.(type) {
	case *ast.Assign:
		if aa, ok := n.Place.(*ast.ArrayAccessExpr); ok {
			if id, ok := aa.Array.(*ast.Identifier); ok {
				if sym, ok := l.st.Symbols.Find(id.Name); ok && sym.Kind == symbols.MappingSymbol {
					key := ast.ReconstructExpr(aa.Index, l.exprHook)
					val := ast.ReconstructExpr(n.Value, l.exprHook)
					call := &ast.IntrinsicExpr{Op: ast.IntrinsicMappingSet, Args: []ast.Expression{&ast.StringLiteral{Value: id.Name}, key.Expr, val.Expr}}
					out := append(append([]ast.Statement{}, key.Prefix...), val.Prefix...)
					return append(out, &ast.ExpressionStatement{Value: call}), true
				}
			}
		}
		return nil, false

	case *ast.Definition:
		r := ast.ReconstructExpr(n.Value, l.exprHook)
		cp := *n
		cp.Value = r.Expr
		if n.TypeAnnotation != nil {
			cp.TypeAnnotation = l.rewriteType(n.TypeAnnotation)
		}
		return append(r.Prefix, &cp), true

	case *ast.Const:
		r := ast.ReconstructExpr(n.Value, l.exprHook)
		cp := *n
		cp.Value = r.Expr
		if n.TypeAnnotation != nil {
			cp.TypeAnnotation = l.rewriteType(n.TypeAnnotation)
		}
		return append(r.Prefix, &cp), true

	case *ast.Iteration:
		rs := ast.ReconstructExpr(n.Start, l.exprHook)
		re := ast.ReconstructExpr(n.Stop, l.exprHook)
		body := ast.ReconstructBlock(n.Body, l.exprHook, l.stmtHook)
		cp := *n
		cp.Start = rs.Expr
		cp.Stop = re.Expr
		cp.VarType = l.rewriteType(n.VarType)
		cp.Body = body
		out := append(append([]ast.Statement{}, rs.Prefix...), re.Prefix...)
		return append(out, &cp), true
	}
	return nil, false
}
