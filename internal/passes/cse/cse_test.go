package cse_test

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vinelang/vinec/internal/ast"
	"github.com/vinelang/vinec/internal/driver"
	"github.com/vinelang/vinec/internal/passes/cse"
	"github.com/vinelang/vinec/internal/session"
)

func newState() *driver.State {
	return driver.NewState(session.NewCompilerSession())
}

func u32(v int64) *ast.IntegerLiteral {
	return &ast.IntegerLiteral{Value: big.NewInt(v), Width: 32, Signed: false}
}

func TestRepeatedPureExpressionCollapsesToACopy(t *testing.T) {
	body := &ast.Block{Statements: []ast.Statement{
		&ast.Definition{Target: ast.SingleTarget{Name: "t1"}, Kind: ast.DeclMut,
			Value: &ast.BinaryExpr{Op: ast.OpEq, Left: &ast.Identifier{Name: "a"}, Right: &ast.Identifier{Name: "b"}}},
		&ast.Definition{Target: ast.SingleTarget{Name: "t2"}, Kind: ast.DeclMut,
			Value: &ast.BinaryExpr{Op: ast.OpEq, Left: &ast.Identifier{Name: "a"}, Right: &ast.Identifier{Name: "b"}}},
		&ast.Return{Value: &ast.Identifier{Name: "t2"}},
	}}
	fn := &ast.Function{Name: "main", Output: ast.BoolType{}, Body: body}
	prog := &ast.Program{Scopes: []*ast.ProgramScope{{ProgramID: "foo.aleo", Functions: []*ast.Function{fn}}}}

	out, err := cse.Run(prog, newState())
	require.NoError(t, err)

	stmts := out.Scopes[0].Functions[0].Body.Statements
	t2 := stmts[1].(*ast.Definition)
	ident, ok := t2.Value.(*ast.Identifier)
	require.True(t, ok, "the duplicate definition should collapse to a copy of t1")
	assert.Equal(t, "t1", ident.Name)
}

func TestDistinctExpressionsAreNotUnified(t *testing.T) {
	body := &ast.Block{Statements: []ast.Statement{
		&ast.Definition{Target: ast.SingleTarget{Name: "t1"}, Kind: ast.DeclMut,
			Value: &ast.BinaryExpr{Op: ast.OpEq, Left: &ast.Identifier{Name: "a"}, Right: &ast.Identifier{Name: "b"}}},
		&ast.Definition{Target: ast.SingleTarget{Name: "t2"}, Kind: ast.DeclMut,
			Value: &ast.BinaryExpr{Op: ast.OpEq, Left: &ast.Identifier{Name: "a"}, Right: &ast.Identifier{Name: "c"}}},
		&ast.Return{Value: &ast.Identifier{Name: "t2"}},
	}}
	fn := &ast.Function{Name: "main", Output: ast.BoolType{}, Body: body}
	prog := &ast.Program{Scopes: []*ast.ProgramScope{{ProgramID: "foo.aleo", Functions: []*ast.Function{fn}}}}

	out, err := cse.Run(prog, newState())
	require.NoError(t, err)

	stmts := out.Scopes[0].Functions[0].Body.Statements
	t2 := stmts[1].(*ast.Definition)
	bin, ok := t2.Value.(*ast.BinaryExpr)
	require.True(t, ok, "a genuinely different RHS must not be unified")
	assert.Equal(t, "c", bin.Right.(*ast.Identifier).Name)
}

func TestImpureArithmeticIsNeverDeduped(t *testing.T) {
	body := &ast.Block{Statements: []ast.Statement{
		&ast.Definition{Target: ast.SingleTarget{Name: "t1"}, Kind: ast.DeclMut,
			Value: &ast.BinaryExpr{Op: ast.OpAdd, Left: &ast.Identifier{Name: "a"}, Right: &ast.Identifier{Name: "b"}}},
		&ast.Definition{Target: ast.SingleTarget{Name: "t2"}, Kind: ast.DeclMut,
			Value: &ast.BinaryExpr{Op: ast.OpAdd, Left: &ast.Identifier{Name: "a"}, Right: &ast.Identifier{Name: "b"}}},
		&ast.Return{Value: &ast.Identifier{Name: "t2"}},
	}}
	fn := &ast.Function{Name: "main", Output: ast.IntegerType{Width: 32}, Body: body}
	prog := &ast.Program{Scopes: []*ast.ProgramScope{{ProgramID: "foo.aleo", Functions: []*ast.Function{fn}}}}

	out, err := cse.Run(prog, newState())
	require.NoError(t, err)

	stmts := out.Scopes[0].Functions[0].Body.Statements
	t2 := stmts[1].(*ast.Definition)
	_, ok := t2.Value.(*ast.BinaryExpr)
	assert.True(t, ok, "a trapping arithmetic op is never pure, so it is never deduped")
}

func TestLoopBodyGetsItsOwnTable(t *testing.T) {
	body := &ast.Block{Statements: []ast.Statement{
		&ast.Definition{Target: ast.SingleTarget{Name: "t1"}, Kind: ast.DeclMut,
			Value: &ast.BinaryExpr{Op: ast.OpEq, Left: &ast.Identifier{Name: "a"}, Right: &ast.Identifier{Name: "b"}}},
		&ast.Iteration{
			Variable: "i", VarType: ast.IntegerType{Width: 32},
			Start: u32(0), Stop: u32(4),
			Body: &ast.Block{Statements: []ast.Statement{
				&ast.Definition{Target: ast.SingleTarget{Name: "t2"}, Kind: ast.DeclMut,
					Value: &ast.BinaryExpr{Op: ast.OpEq, Left: &ast.Identifier{Name: "a"}, Right: &ast.Identifier{Name: "b"}}},
			}},
		},
		&ast.Return{},
	}}
	fn := &ast.Function{Name: "main", Output: ast.UnitType{}, Body: body}
	prog := &ast.Program{Scopes: []*ast.ProgramScope{{ProgramID: "foo.aleo", Functions: []*ast.Function{fn}}}}

	out, err := cse.Run(prog, newState())
	require.NoError(t, err)

	loop := out.Scopes[0].Functions[0].Body.Statements[1].(*ast.Iteration)
	t2 := loop.Body.Statements[0].(*ast.Definition)
	_, ok := t2.Value.(*ast.BinaryExpr)
	assert.True(t, ok, "the loop body's own table must not see t1 from the enclosing block")
}
