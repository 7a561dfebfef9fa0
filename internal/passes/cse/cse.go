// Package cse implements common-subexpression elimination:
// within a straight-line block, a map from canonicalized
// expression to defining identifier lets a later Definition whose RHS
// exactly repeats an earlier one collapse to a copy of that earlier
// identifier instead of recomputing it. There is no reference value-
// numbering pass to ground this one on, so it's built straight from the
// algorithm description; the canonicalization key is a plain structural
// string encoding, the same flat-text-key approach the constprop
// package's specSuffix uses for monomorphization cache keys.
package cse

import (
	"fmt"
	"strings"

	"github.com/vinelang/vinec/internal/ast"
	"github.com/vinelang/vinec/internal/driver"
)

// New returns the CSE pass.
func New() driver.Pass {
	return driver.PassFunc{NameStr: "cse", Fn: Run}
}

func Run(prog *ast.Program, st *driver.State) (*ast.Program, error) {
	newScopes := make([]*ast.ProgramScope, len(prog.Scopes))
	for i, sc := range prog.Scopes {
		newScopes[i] = rewriteScope(sc)
	}
	newModules := make([]*ast.Module, len(prog.Modules))
	for i, m := range prog.Modules {
		newModules[i] = rewriteModule(m)
	}
	out := *prog
	out.Scopes = newScopes
	out.Modules = newModules
	return &out, nil
}

func rewriteScope(sc *ast.ProgramScope) *ast.ProgramScope {
	fns := make([]*ast.Function, len(sc.Functions))
	for i, fn := range sc.Functions {
		fns[i] = rewriteFunction(fn)
	}
	var ctor *ast.Function
	if sc.Constructor != nil {
		ctor = rewriteFunction(sc.Constructor)
	}
	cp := *sc
	cp.Functions = fns
	cp.Constructor = ctor
	return &cp
}

func rewriteModule(m *ast.Module) *ast.Module {
	fns := make([]*ast.Function, len(m.Functions))
	for i, fn := range m.Functions {
		fns[i] = rewriteFunction(fn)
	}
	cp := *m
	cp.Functions = fns
	return &cp
}

func rewriteFunction(fn *ast.Function) *ast.Function {
	if fn.Body == nil {
		return fn
	}
	cp := *fn
	cp.Body = rewriteBlock(fn.Body)
	return &cp
}

// rewriteBlock starts a fresh "seen" table per block: reuse stays
// intra-block only. A nested
// Block, Conditional arm, or Iteration body gets its own table, since a
// loop body's or a conditional arm's repeated/optional execution makes an
// outer-scope cache entry unsound to reuse inside it.
func rewriteBlock(b *ast.Block) *ast.Block {
	if b == nil {
		return nil
	}
	seen := make(map[string]string)
	var out []ast.Statement
	for _, s := range b.Statements {
		out = append(out, rewriteStmt(s, seen)...)
	}
	cp := *b
	cp.Statements = out
	return &cp
}

func rewriteStmt(s ast.Statement, seen map[string]string) []ast.Statement {
	switch n := s.(type) {
	case *ast.Definition:
		single, ok := n.Target.(ast.SingleTarget)
		if !ok || !ast.IsPure(n.Value) {
			return []ast.Statement{s}
		}
		key := canon(n.Value)
		if existing, ok := seen[key]; ok {
			cp := *n
			cp.Value = &ast.Identifier{Name: existing}
			return []ast.Statement{&cp}
		}
		seen[key] = single.Name
		return []ast.Statement{s}
	case *ast.Block:
		cp := *n
		inner := rewriteBlock(n)
		cp.Statements = inner.Statements
		return []ast.Statement{&cp}
	case *ast.Conditional:
		cp := *n
		cp.Then = rewriteBlock(n.Then)
		if n.Otherwise != nil {
			cp.Otherwise = rewriteBlock(n.Otherwise)
		}
		return []ast.Statement{&cp}
	case *ast.Iteration:
		cp := *n
		cp.Body = rewriteBlock(n.Body)
		return []ast.Statement{&cp}
	default:
		return []ast.Statement{s}
	}
}

// canon renders a pure expression's structure into a string two
// syntactically-identical (same operator, same operand identifiers/
// literals) expressions always share, regardless of NodeID or Span.
func canon(e ast.Expression) string {
	var sb strings.Builder
	writeCanon(&sb, e)
	return sb.String()
}

func writeCanon(sb *strings.Builder, e ast.Expression) {
	switch n := e.(type) {
	case *ast.UnitExpr:
		sb.WriteString("unit")
	case *ast.BooleanLiteral:
		fmt.Fprintf(sb, "bool:%v", n.Value)
	case *ast.IntegerLiteral:
		fmt.Fprintf(sb, "int:%d:%v:%s", n.Width, n.Signed, n.Value.String())
	case *ast.FieldLiteral:
		fmt.Fprintf(sb, "field:%s", n.Value.String())
	case *ast.ScalarLiteral:
		fmt.Fprintf(sb, "scalar:%s", n.Value.String())
	case *ast.GroupLiteral:
		fmt.Fprintf(sb, "group:%v:%s", n.IsGenerator, n.Value.String())
	case *ast.AddressLiteral:
		fmt.Fprintf(sb, "addr:%s", n.Raw)
	case *ast.StringLiteral:
		fmt.Fprintf(sb, "str:%q", n.Value)
	case *ast.Identifier:
		fmt.Fprintf(sb, "id:%s", n.Name)
	case *ast.BinaryExpr:
		fmt.Fprintf(sb, "bin(%d,", n.Op)
		writeCanon(sb, n.Left)
		sb.WriteByte(',')
		writeCanon(sb, n.Right)
		sb.WriteByte(')')
	case *ast.UnaryExpr:
		fmt.Fprintf(sb, "un(%d,", n.Op)
		writeCanon(sb, n.Operand)
		sb.WriteByte(')')
	case *ast.ArrayExpr:
		sb.WriteString("arr(")
		for i, el := range n.Elements {
			if i > 0 {
				sb.WriteByte(',')
			}
			writeCanon(sb, el)
		}
		sb.WriteByte(')')
	case *ast.RepeatExpr:
		sb.WriteString("rep(")
		writeCanon(sb, n.Value)
		sb.WriteByte(',')
		writeCanon(sb, n.Count)
		sb.WriteByte(')')
	case *ast.TupleExpr:
		sb.WriteString("tup(")
		for i, el := range n.Elements {
			if i > 0 {
				sb.WriteByte(',')
			}
			writeCanon(sb, el)
		}
		sb.WriteByte(')')
	case *ast.TupleAccessExpr:
		sb.WriteString("tupacc(")
		writeCanon(sb, n.Tuple)
		fmt.Fprintf(sb, ",%d)", n.Index)
	case *ast.CompositeInitExpr:
		fmt.Fprintf(sb, "comp(%s;", n.Name)
		for _, name := range n.FieldOrder {
			fmt.Fprintf(sb, "%s=", name)
			writeCanon(sb, n.Fields[name])
			sb.WriteByte(';')
		}
		sb.WriteByte(')')
	case *ast.MemberAccessExpr:
		sb.WriteString("memb(")
		writeCanon(sb, n.Value)
		fmt.Fprintf(sb, ".%s)", n.Field)
	case *ast.TernaryExpr:
		sb.WriteString("tern(")
		writeCanon(sb, n.Condition)
		sb.WriteByte(',')
		writeCanon(sb, n.Then)
		sb.WriteByte(',')
		writeCanon(sb, n.Otherwise)
		sb.WriteByte(')')
	default:
		// Not one of IsPure's recursively-pure leaf/compound kinds; callers
		// only ever reach canon() on an already-IsPure-gated expression, so
		// this never actually fires, but a pointer-keyed fallback avoids
		// ever accidentally unifying two unrelated impure nodes.
		fmt.Fprintf(sb, "node:%p", e)
	}
}
