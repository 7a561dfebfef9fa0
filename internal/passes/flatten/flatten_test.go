package flatten_test

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vinelang/vinec/internal/ast"
	"github.com/vinelang/vinec/internal/driver"
	"github.com/vinelang/vinec/internal/passes/flatten"
	"github.com/vinelang/vinec/internal/session"
)

func newState() *driver.State {
	return driver.NewState(session.NewCompilerSession())
}

func u32(v int64) *ast.IntegerLiteral {
	return &ast.IntegerLiteral{Value: big.NewInt(v), Width: 32, Signed: false}
}

func TestConditionalDissolvesIntoGuardedStraightLineCode(t *testing.T) {
	body := &ast.Block{Statements: []ast.Statement{
		&ast.Conditional{
			Condition: &ast.Identifier{Name: "cond"},
			Then: &ast.Block{Statements: []ast.Statement{
				&ast.Return{Value: u32(1)},
			}},
		},
		&ast.Return{Value: u32(2)},
	}}
	fn := &ast.Function{
		Name:   "main",
		Inputs: []ast.Param{{Name: "cond", Type: ast.BoolType{}}},
		Output: ast.IntegerType{Width: 32},
		Body:   body,
	}
	prog := &ast.Program{Scopes: []*ast.ProgramScope{{ProgramID: "foo.aleo", Functions: []*ast.Function{fn}}}}

	st := newState()
	out, err := flatten.Run(prog, st)
	require.NoError(t, err)

	stmts := out.Scopes[0].Functions[0].Body.Statements
	// $cond$N = cond; then a single trailing synthesized Return.
	condDef := stmts[0].(*ast.Definition)
	condName := condDef.Target.(ast.SingleTarget).Name
	assert.Equal(t, "cond", condDef.Value.(*ast.Identifier).Name)

	last := stmts[len(stmts)-1].(*ast.Return)
	tern := last.Value.(*ast.TernaryExpr)
	assert.Equal(t, condName, tern.Condition.(*ast.Identifier).Name)
	assert.Equal(t, int64(1), tern.Then.(*ast.IntegerLiteral).Value.Int64())
	assert.Equal(t, int64(2), tern.Otherwise.(*ast.IntegerLiteral).Value.Int64())

	// No Conditional or Return survives mid-body.
	for _, s := range stmts[:len(stmts)-1] {
		_, isCond := s.(*ast.Conditional)
		_, isRet := s.(*ast.Return)
		assert.False(t, isCond)
		assert.False(t, isRet)
	}
}

func TestAssertGuardRewriteOmitsVacuousTerms(t *testing.T) {
	body := &ast.Block{Statements: []ast.Statement{
		&ast.Assert{Kind: ast.AssertPlain, Condition: &ast.Identifier{Name: "ok"}},
	}}
	fn := &ast.Function{Name: "main", Output: ast.UnitType{}, Body: body}
	prog := &ast.Program{Scopes: []*ast.ProgramScope{{ProgramID: "foo.aleo", Functions: []*ast.Function{fn}}}}

	st := newState()
	out, err := flatten.Run(prog, st)
	require.NoError(t, err)

	stmts := out.Scopes[0].Functions[0].Body.Statements
	assertStmt := stmts[0].(*ast.Assert)
	// top-level, no guard, no prior returns: condition passes through unchanged.
	assert.Equal(t, "ok", assertStmt.Condition.(*ast.Identifier).Name)
}

func TestAssertInsideGuardIsORedWithNotGuard(t *testing.T) {
	body := &ast.Block{Statements: []ast.Statement{
		&ast.Conditional{
			Condition: &ast.Identifier{Name: "cond"},
			Then: &ast.Block{Statements: []ast.Statement{
				&ast.Assert{Kind: ast.AssertPlain, Condition: &ast.Identifier{Name: "ok"}},
			}},
		},
	}}
	fn := &ast.Function{
		Name:   "main",
		Inputs: []ast.Param{{Name: "cond", Type: ast.BoolType{}}},
		Output: ast.UnitType{},
		Body:   body,
	}
	prog := &ast.Program{Scopes: []*ast.ProgramScope{{ProgramID: "foo.aleo", Functions: []*ast.Function{fn}}}}

	st := newState()
	out, err := flatten.Run(prog, st)
	require.NoError(t, err)

	stmts := out.Scopes[0].Functions[0].Body.Statements
	var assertStmt *ast.Assert
	for _, s := range stmts {
		if a, ok := s.(*ast.Assert); ok {
			assertStmt = a
		}
	}
	require.NotNil(t, assertStmt)
	or := assertStmt.Condition.(*ast.BinaryExpr)
	assert.Equal(t, ast.OpBoolOr, or.Op)
	notGuard := or.Left.(*ast.UnaryExpr)
	assert.Equal(t, ast.OpNot, notGuard.Op)
	assert.Equal(t, "ok", or.Right.(*ast.Identifier).Name)
}

func TestCompositeTernaryExpandsMemberwise(t *testing.T) {
	pointTy := ast.CompositeType{Path: "Point"}
	body := &ast.Block{Statements: []ast.Statement{
		&ast.Definition{
			Target: ast.SingleTarget{Name: "p"},
			Kind:   ast.DeclMut,
			Value: &ast.TernaryExpr{
				Condition: &ast.Identifier{Name: "cond"},
				Then:      &ast.CompositeInitExpr{Name: "Point", Fields: map[string]ast.Expression{"x": u32(1), "y": u32(2)}},
				Otherwise: &ast.CompositeInitExpr{Name: "Point", Fields: map[string]ast.Expression{"x": u32(3), "y": u32(4)}},
			},
		},
	}}
	fn := &ast.Function{
		Name:   "main",
		Inputs: []ast.Param{{Name: "cond", Type: ast.BoolType{}}},
		Output: pointTy,
		Body:   body,
	}
	prog := &ast.Program{Scopes: []*ast.ProgramScope{{ProgramID: "foo.aleo", Functions: []*ast.Function{fn}}}}

	st := newState()
	st.Symbols.DefineStruct(&ast.Composite{Name: "Point", Members: []ast.Member{
		{Name: "x", Type: ast.IntegerType{Width: 32}},
		{Name: "y", Type: ast.IntegerType{Width: 32}},
	}})
	out, err := flatten.Run(prog, st)
	require.NoError(t, err)

	stmts := out.Scopes[0].Functions[0].Body.Statements
	// two scalar-ternary temp bindings ($ternary$N for x and y), then the
	// "p" Definition referencing them via a CompositeInitExpr of identifiers.
	require.True(t, len(stmts) >= 3)
	pDef := stmts[len(stmts)-1].(*ast.Definition)
	assert.Equal(t, "p", pDef.Target.(ast.SingleTarget).Name)
	composite := pDef.Value.(*ast.CompositeInitExpr)
	_, xIsIdent := composite.Fields["x"].(*ast.Identifier)
	_, yIsIdent := composite.Fields["y"].(*ast.Identifier)
	assert.True(t, xIsIdent)
	assert.True(t, yIsIdent)

	for _, s := range stmts[:len(stmts)-1] {
		def := s.(*ast.Definition)
		tern, ok := def.Value.(*ast.TernaryExpr)
		require.True(t, ok)
		_, isInt := tern.Then.(*ast.IntegerLiteral)
		assert.True(t, isInt, "leaf ternary operands should be scalar")
	}
}

func TestAsyncFunctionBodyIsNotFlattened(t *testing.T) {
	body := &ast.Block{Statements: []ast.Statement{
		&ast.Conditional{
			Condition: &ast.Identifier{Name: "cond"},
			Then: &ast.Block{Statements: []ast.Statement{
				&ast.Return{Value: u32(1)},
			}},
		},
	}}
	fn := &ast.Function{
		Name:    "finalize_x",
		Variant: ast.VariantAsyncTransition,
		Inputs:  []ast.Param{{Name: "cond", Type: ast.BoolType{}}},
		Output:  ast.IntegerType{Width: 32},
		Body:    body,
	}
	prog := &ast.Program{Scopes: []*ast.ProgramScope{{ProgramID: "foo.aleo", Functions: []*ast.Function{fn}}}}

	st := newState()
	out, err := flatten.Run(prog, st)
	require.NoError(t, err)

	stmts := out.Scopes[0].Functions[0].Body.Statements
	require.Len(t, stmts, 1)
	_, stillConditional := stmts[0].(*ast.Conditional)
	assert.True(t, stillConditional, "async bodies must not be dissolved")
}
