package driver

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/vinelang/vinec/internal/ast"
)

// Dump renders prog's final, post-DCE restricted statement subset,
// one line per statement, in the same spirit as a bytecode disassembler
// (one line per instruction, offset then mnemonic). This is purely a
// debugging aid for humans reading driver output; the code generator
// consumes the AST directly, never this text.
func Dump(prog *ast.Program) string {
	var sb strings.Builder
	for _, scope := range prog.Scopes {
		fmt.Fprintf(&sb, "== %s ==\n", scope.ProgramID)
		for _, fn := range scope.Functions {
			dumpFunction(&sb, fn)
		}
		if scope.Constructor != nil {
			dumpFunction(&sb, scope.Constructor)
		}
	}
	for _, m := range prog.Modules {
		fmt.Fprintf(&sb, "== module %s ==\n", m.Name)
		for _, fn := range m.Functions {
			dumpFunction(&sb, fn)
		}
	}
	return sb.String()
}

func dumpFunction(sb *strings.Builder, fn *ast.Function) {
	fmt.Fprintf(sb, "%s %s(%s) -> %s\n", fn.Variant, fn.Name, dumpParams(fn.Inputs), fn.Output)
	line := 0
	dumpBlock(sb, fn.Body, &line, 1)
}

func dumpParams(params []ast.Param) string {
	parts := make([]string, len(params))
	for i, p := range params {
		parts[i] = fmt.Sprintf("%s: %s", p.Name, p.Type)
	}
	return strings.Join(parts, ", ")
}

func dumpBlock(sb *strings.Builder, b *ast.Block, line *int, indent int) {
	if b == nil {
		return
	}
	prefix := strings.Repeat("  ", indent)
	for _, stmt := range b.Statements {
		fmt.Fprintf(sb, "%04d %s%s\n", *line, prefix, dumpStatement(stmt))
		*line++
		switch n := stmt.(type) {
		case *ast.Block:
			dumpBlock(sb, n, line, indent+1)
		case *ast.Conditional:
			dumpBlock(sb, n.Then, line, indent+1)
			dumpBlock(sb, n.Otherwise, line, indent+1)
		case *ast.Iteration:
			dumpBlock(sb, n.Body, line, indent+1)
		}
	}
}

func dumpStatement(s ast.Statement) string {
	switch n := s.(type) {
	case *ast.Definition:
		return fmt.Sprintf("LET %s = %s", targetString(n.Target), dumpExpr(n.Value))
	case *ast.Assign:
		return fmt.Sprintf("SET %s = %s", dumpExpr(n.Place), dumpExpr(n.Value))
	case *ast.Assert:
		return fmt.Sprintf("ASSERT %s", dumpExpr(n.Condition))
	case *ast.ExpressionStatement:
		return fmt.Sprintf("EXPR %s", dumpExpr(n.Value))
	case *ast.Return:
		if n.Value == nil {
			return "RETURN"
		}
		return fmt.Sprintf("RETURN %s", dumpExpr(n.Value))
	case *ast.Const:
		return fmt.Sprintf("CONST %s = %s", n.Name, dumpExpr(n.Value))
	case *ast.Conditional:
		return fmt.Sprintf("IF %s", dumpExpr(n.Condition))
	case *ast.Iteration:
		return fmt.Sprintf("FOR %s in %s..%s", n.Variable, dumpExpr(n.Start), dumpExpr(n.Stop))
	case *ast.Block:
		return "BLOCK"
	default:
		return "<unknown statement>"
	}
}

func targetString(t ast.DefinitionTarget) string {
	switch d := t.(type) {
	case ast.SingleTarget:
		return d.Name
	case ast.MultipleTarget:
		return "(" + strings.Join(d.Names, ", ") + ")"
	default:
		return "?"
	}
}

func dumpExpr(e ast.Expression) string {
	switch n := e.(type) {
	case *ast.Identifier:
		return n.Name
	case *ast.IntegerLiteral:
		return n.Value.String()
	case *ast.BooleanLiteral:
		return strconv.FormatBool(n.Value)
	case *ast.BinaryExpr:
		return fmt.Sprintf("(%s %s %s)", dumpExpr(n.Left), binOpSymbol(n.Op), dumpExpr(n.Right))
	case *ast.UnaryExpr:
		return fmt.Sprintf("(%s %s)", unOpSymbol(n.Op), dumpExpr(n.Operand))
	case *ast.CallExpr:
		return fmt.Sprintf("%s(...)", n.Callee)
	case *ast.TernaryExpr:
		return fmt.Sprintf("(%s ? %s : %s)", dumpExpr(n.Condition), dumpExpr(n.Then), dumpExpr(n.Otherwise))
	default:
		return "<expr>"
	}
}

func binOpSymbol(op ast.BinaryOp) string {
	switch op {
	case ast.OpAdd:
		return "+"
	case ast.OpSub:
		return "-"
	case ast.OpMul:
		return "*"
	case ast.OpDiv:
		return "/"
	case ast.OpEq:
		return "=="
	case ast.OpNeq:
		return "!="
	case ast.OpLt:
		return "<"
	case ast.OpGt:
		return ">"
	case ast.OpBoolAnd:
		return "&&"
	case ast.OpBoolOr:
		return "||"
	default:
		return "?"
	}
}

func unOpSymbol(op ast.UnaryOp) string {
	switch op {
	case ast.OpNegate:
		return "-"
	case ast.OpNot:
		return "!"
	default:
		return "?"
	}
}
